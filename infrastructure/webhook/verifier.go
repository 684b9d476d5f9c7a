package webhook

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"social-scheduler/infrastructure/logger"

	"github.com/golang-jwt/jwt"
)

// SignatureHeader carries the scheduler's signed JWT on every callback.
const SignatureHeader = "Upstash-Signature"

// DefaultIssuer is the iss claim the scheduler signs with.
const DefaultIssuer = "Upstash"

var (
	errMissingSignature = errors.New("missing signature")
	errBodyMismatch     = errors.New("body hash mismatch")
	errURLMismatch      = errors.New("url mismatch")
	errIssuerMismatch   = errors.New("issuer mismatch")
	errMissingExpiry    = errors.New("missing exp claim")
)

type signatureClaims struct {
	Body string `json:"body"`
	jwt.StandardClaims
}

// Verifier checks callback signatures against the current key, then the next one, so keys
// can be rotated without dropping triggers.
type Verifier struct {
	currentKey string
	nextKey    string
	issuer     string
}

func NewVerifier(currentKey, nextKey, issuer string) *Verifier {
	if issuer == "" {
		issuer = DefaultIssuer
	}
	return &Verifier{currentKey: currentKey, nextKey: nextKey, issuer: issuer}
}

// Verify reports whether signature is valid for the exact raw body and callback URL.
func (v *Verifier) Verify(body []byte, signature, url string) bool {
	if v.currentKey == "" && v.nextKey == "" {
		logger.GetLogger().Error("webhook signing keys are not configured")
		return false
	}
	err := v.verifyWithKey(v.currentKey, body, signature, url)
	if err == nil {
		return true
	}
	if v.nextKey != "" {
		nextErr := v.verifyWithKey(v.nextKey, body, signature, url)
		if nextErr == nil {
			return true
		}
		err = fmt.Errorf("current key: %v; next key: %w", err, nextErr)
	}
	logger.GetLogger().WithField("error", err).WithField("url", url).Warn("webhook signature rejected")
	return false
}

func (v *Verifier) verifyWithKey(key string, body []byte, signature, url string) error {
	if key == "" {
		return errors.New("empty key")
	}
	signature = strings.TrimSpace(signature)
	if signature == "" {
		return errMissingSignature
	}

	claims := &signatureClaims{}
	_, err := jwt.ParseWithClaims(signature, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method %s", t.Method.Alg())
		}
		return []byte(key), nil
	})
	if err != nil {
		return err
	}

	// StandardClaims.Valid accepts a token without exp.
	if claims.ExpiresAt == 0 {
		return errMissingExpiry
	}
	if claims.Issuer != v.issuer {
		return errIssuerMismatch
	}
	if claims.Subject != url {
		return errURLMismatch
	}
	if strings.TrimRight(claims.Body, "=") != BodyHash(body) {
		return errBodyMismatch
	}
	return nil
}

// BodyHash is the unpadded base64url SHA-256 of the raw body, as carried in the body claim.
func BodyHash(body []byte) string {
	sum := sha256.Sum256(body)
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

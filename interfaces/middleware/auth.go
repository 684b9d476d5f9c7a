package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"social-scheduler/domain/dto"
	"social-scheduler/infrastructure/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
)

// UserIDKey is the gin context key holding the authenticated user id.
const UserIDKey = "user_id"

// UserClaims are the claims of the API bearer token.
type UserClaims struct {
	UserID   string `json:"user_id"`
	UserName string `json:"user_name,omitempty"`
	jwt.StandardClaims
}

// Owner returns the user id carried by the token.
func (c UserClaims) Owner() string {
	switch {
	case c.UserID != "":
		return c.UserID
	case c.StandardClaims.Subject != "":
		return c.StandardClaims.Subject
	}
	return c.Issuer
}

// Auth rejects every request when secretKey is empty; HMAC accepts an empty key.
func Auth(secretKey string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		res := dto.Res{ResponseCode: "401", ResponseMessage: "Unauthorized"}

		if secretKey == "" {
			logger.GetLogger().Error("bearer secret key is not configured")
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, res)
			return
		}

		authorization := ctx.GetHeader("Authorization")
		token, found := strings.CutPrefix(authorization, "Bearer ")
		if !found || strings.TrimSpace(token) == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, res)
			return
		}

		claims, err := getClaims(strings.TrimSpace(token), secretKey)
		if err != nil {
			res.ResponseMessage = message(err)
			logger.GetLogger().WithField("error", err).Debug("rejected bearer token")
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, res)
			return
		}
		userID := claims.Owner()
		if userID == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, res)
			return
		}
		ctx.Set(UserIDKey, userID)
		ctx.Next()
	}
}

func message(err error) string {
	var ve *jwt.ValidationError
	if errors.As(err, &ve) {
		if ve.Errors&jwt.ValidationErrorMalformed != 0 {
			return "That's not even a token"
		}
		if ve.Errors&(jwt.ValidationErrorExpired|jwt.ValidationErrorNotValidYet) != 0 {
			// Token is either expired or not active yet
			return "Timing is everything"
		}
	}
	return fmt.Sprintf("Couldn't handle this token: %v", err)
}

func getClaims(token, secretKey string) (*UserClaims, error) {
	claims := &UserClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secretKey), nil
	})
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// UserID returns the authenticated user id set by Auth.
func UserID(ctx *gin.Context) string {
	return ctx.GetString(UserIDKey)
}

package http

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"social-scheduler/domain/dto"
	"social-scheduler/domain/model"
	"social-scheduler/infrastructure/logger"
	"social-scheduler/infrastructure/webhook"
	"social-scheduler/usecase"

	"github.com/gin-gonic/gin"
)

// ISignatureVerifier checks a trigger signature over the raw body and the exact callback URL.
type ISignatureVerifier interface {
	Verify(body []byte, signature, url string) bool
}

type IWebhookHandler interface {
	Twitter(ctx *gin.Context)
	LinkedIn(ctx *gin.Context)
	YouTube(ctx *gin.Context)
}

type WebhookHandler struct {
	verifier        ISignatureVerifier
	publishUsecase  usecase.IPublishUsecase
	callbackBaseURL string
	maxBodyBytes    int64
}

// NewWebhookHandler builds the trigger endpoints. When callbackBaseURL is empty the URL that was
// signed is rebuilt from the request.
func NewWebhookHandler(verifier ISignatureVerifier, uc usecase.IPublishUsecase, callbackBaseURL string) IWebhookHandler {
	return &WebhookHandler{
		verifier:        verifier,
		publishUsecase:  uc,
		callbackBaseURL: strings.TrimRight(callbackBaseURL, "/"),
		maxBodyBytes:    1 << 20,
	}
}

// Twitter handles POST /api/webhooks/twitter
func (h *WebhookHandler) Twitter(ctx *gin.Context) { h.handle(ctx, model.KindTweet) }

// LinkedIn handles POST /api/webhooks/linkedin
func (h *WebhookHandler) LinkedIn(ctx *gin.Context) { h.handle(ctx, model.KindLinkedInPost) }

// YouTube handles POST /api/webhooks/youtube
func (h *WebhookHandler) YouTube(ctx *gin.Context) { h.handle(ctx, model.KindYouTubeVideo) }

func (h *WebhookHandler) handle(ctx *gin.Context, kind model.Kind) {
	log := logger.GetLogger().WithField("kind", kind)

	raw, err := io.ReadAll(io.LimitReader(ctx.Request.Body, h.maxBodyBytes))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.WebhookResponse{Success: false, Error: "unreadable body"})
		return
	}

	url := h.signedURL(ctx)
	if !h.verifier.Verify(raw, ctx.GetHeader(webhook.SignatureHeader), url) {
		log.WithField("url", url).Warn("trigger rejected: invalid signature")
		ctx.JSON(http.StatusUnauthorized, dto.WebhookResponse{Success: false, Error: "invalid signature"})
		return
	}

	id, ok, err := dto.ParseTriggerID(kind, raw)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.WebhookResponse{Success: false, Error: err.Error()})
		return
	}
	if !ok {
		ctx.JSON(http.StatusBadRequest, dto.WebhookResponse{Success: false, Error: "missing " + kind.TriggerField()})
		return
	}

	out, err := h.publishUsecase.HandleTrigger(ctx.Request.Context(), kind, id)
	switch {
	case errors.Is(err, model.ErrNotFound):
		ctx.JSON(http.StatusNotFound, dto.WebhookResponse{Success: false, Error: "scheduled item not found"})
		return
	case err != nil:
		log.WithField("error", err).WithField("item_id", id).Error("trigger handling failed")
		ctx.JSON(http.StatusInternalServerError, dto.WebhookResponse{Success: false, Error: err.Error()})
		return
	}

	if out.Failed() {
		msg := "publish failed"
		if out.Result != nil && out.Result.Error != "" {
			msg = out.Result.Error
		}
		ctx.JSON(http.StatusInternalServerError, dto.WebhookResponse{Success: false, Error: msg, Result: out})
		return
	}
	res := dto.WebhookResponse{Success: true, Result: out}
	if out.Idempotent {
		res.Message = "already handled"
	}
	ctx.JSON(http.StatusOK, res)
}

func (h *WebhookHandler) signedURL(ctx *gin.Context) string {
	if h.callbackBaseURL != "" {
		return h.callbackBaseURL + ctx.Request.URL.RequestURI()
	}
	scheme := "http"
	if ctx.Request.TLS != nil {
		scheme = "https"
	}
	if proto := ctx.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = strings.TrimSpace(strings.Split(proto, ",")[0])
	}
	host := ctx.Request.Host
	if fwd := ctx.GetHeader("X-Forwarded-Host"); fwd != "" {
		host = strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	return scheme + "://" + host + ctx.Request.URL.RequestURI()
}

package handlers

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"github.com/fasthttp/router"

	"github.com/aivisualpro/SYMXSystems-sub002/internal/services"
	"github.com/aivisualpro/SYMXSystems-sub002/pkg/logger"
	"github.com/aivisualpro/SYMXSystems-sub002/pkg/xhttp"
)

const signatureHeader = "x-provider-signature"

type WebhookService interface {
	Process(ctx context.Context, payload []byte) (string, error)
}

type WebhookHandler struct {
	svc    WebhookService
	secret string
}

func RegisterWebhookRoutes(e *router.Group, h *WebhookHandler) {
	e.POST("/webhooks/provider", h.HandleProviderEvent)
}

func NewWebhookHandler(svc WebhookService, secret string) *WebhookHandler {
	return &WebhookHandler{
		svc:    svc,
		secret: secret,
	}
}

// HandleProviderEvent verifies the provider's HMAC signature and applies
// the event. Internal reconciliation failures still answer 200: the
// provider retries on non-2xx and a retry storm never fixes a database
// problem.
func (h *WebhookHandler) HandleProviderEvent(ctx *xhttp.RequestCtx) {
	body := ctx.PostBody()

	signature := string(ctx.Request.Header.Peek(signatureHeader))
	if !h.validSignature(body, signature) {
		writeError(ctx, xhttp.StatusUnauthorized, "invalid signature")
		return
	}

	event, err := h.svc.Process(ctx, body)
	if err != nil {
		if errors.Is(err, services.ErrBadEnvelope) {
			writeError(ctx, xhttp.StatusBadRequest, err.Error())
			return
		}
		if errors.Is(err, services.ErrUnknownEvent) {
			logger.Warn("Ignoring unknown webhook event", "event", event)
			writeJSON(ctx, xhttp.StatusOK, map[string]string{"status": "ignored"})
			return
		}
		logger.Error("Webhook processing failed", "event", event, "error", err)
		writeJSON(ctx, xhttp.StatusOK, map[string]string{"status": "error"})
		return
	}

	writeJSON(ctx, xhttp.StatusOK, map[string]string{"status": "ok"})
}

func (h *WebhookHandler) validSignature(body []byte, signature string) bool {
	// no secret configured means verification is off (local runs)
	if h.secret == "" {
		return true
	}
	if signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(h.secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

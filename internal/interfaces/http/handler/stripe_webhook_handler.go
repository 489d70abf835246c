package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	shopapp "github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/application/shop"
)

// Stripe event payloads stay well under this.
const maxWebhookPayloadSize = 64 << 10

// StripeWebhookHandler takes Stripe payment events for shop orders. The
// route is public; the signature authenticates the caller.
type StripeWebhookHandler struct {
	webhooks *shopapp.WebhookService
}

func NewStripeWebhookHandler(webhooks *shopapp.WebhookService) *StripeWebhookHandler {
	return &StripeWebhookHandler{webhooks: webhooks}
}

// StripeWebhookResponse acknowledges a delivery.
type StripeWebhookResponse struct {
	Received  bool   `json:"received" example:"true"`
	EventID   string `json:"event_id,omitempty" example:"evt_1NqX2kLk"`
	EventType string `json:"event_type,omitempty" example:"checkout.session.completed"`
	Duplicate bool   `json:"duplicate,omitempty"`
	Message   string `json:"message,omitempty"`
}

func webhookReject(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, StripeWebhookResponse{Message: msg})
}

// HandleStripeWebhook godoc
//
//	@ID				handleStripeWebhook
//	@Summary		Receive a Stripe event
//	@Description	Applies checkout, payment failure and refund events to orders, once per event ID. A 5xx asks Stripe to redeliver.
//	@Tags			webhooks
//	@Accept			json
//	@Produce		json
//	@Param			Stripe-Signature	header		string	true	"Stripe webhook signature"
//	@Success		200					{object}	StripeWebhookResponse
//	@Failure		400					{object}	StripeWebhookResponse
//	@Failure		413					{object}	StripeWebhookResponse
//	@Failure		500					{object}	StripeWebhookResponse
//	@Router			/public/webhooks/stripe [post]
func (h *StripeWebhookHandler) HandleStripeWebhook(c *gin.Context) {
	signature := c.GetHeader("Stripe-Signature")
	if signature == "" {
		webhookReject(c, http.StatusBadRequest, "Missing Stripe-Signature header")
		return
	}
	// verification needs the exact bytes Stripe signed
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookPayloadSize+1))
	switch {
	case err != nil:
		webhookReject(c, http.StatusBadRequest, "Unreadable body")
		return
	case len(payload) > maxWebhookPayloadSize:
		webhookReject(c, http.StatusRequestEntityTooLarge, "Payload too large")
		return
	}

	result, err := h.webhooks.ProcessWebhook(c.Request.Context(), payload, signature)
	switch {
	case errors.Is(err, shopapp.ErrInvalidSignature):
		webhookReject(c, http.StatusBadRequest, "Signature verification failed")
		return
	case err != nil:
		_ = c.Error(err)
		webhookReject(c, http.StatusInternalServerError, "Event not applied")
		return
	}
	c.JSON(http.StatusOK, StripeWebhookResponse{
		Received:  true,
		EventID:   result.EventID,
		EventType: result.EventType,
		Duplicate: result.Duplicate,
		Message:   result.Message,
	})
}

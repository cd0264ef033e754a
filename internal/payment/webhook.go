package payment

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/noah-isme/shop-stripe/internal/common"
	"github.com/noah-isme/shop-stripe/internal/obs"
)

// Fulfiller processes a verified completed checkout session.
type Fulfiller interface {
	Fulfill(ctx context.Context, session stripe.CheckoutSession) error
}

// Webhook handles Stripe event deliveries: it verifies the signature, filters
// for completed checkout sessions, and hands them to the fulfillment engine.
// Responses are plain text because Stripe only inspects the status code.
type Webhook struct {
	Secret       string
	Engine       Fulfiller
	Log          zerolog.Logger
	MaxBodyBytes int64
}

// Handle processes one webhook delivery.
func (h Webhook) Handle(w http.ResponseWriter, r *http.Request) {
	if h.Engine == nil || h.Secret == "" {
		common.Text(w, http.StatusInternalServerError, "Webhook unavailable")
		return
	}
	maxBytes := h.MaxBodyBytes
	if maxBytes <= 0 {
		maxBytes = 65536
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.ack(w, http.StatusBadRequest, "Invalid payload", "invalid_payload")
		return
	}

	event, err := webhook.ConstructEventWithOptions(body, r.Header.Get("Stripe-Signature"), h.Secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		if isSignatureError(err) {
			h.Log.Warn().Err(err).Msg("webhook signature verification failed")
			h.ack(w, http.StatusBadRequest, "Invalid signature", "invalid_signature")
			return
		}
		h.ack(w, http.StatusBadRequest, "Invalid payload", "invalid_payload")
		return
	}

	if event.Type != stripe.EventTypeCheckoutSessionCompleted {
		h.Log.Debug().Str("event_type", string(event.Type)).Msg("webhook event ignored")
		h.ack(w, http.StatusOK, "Event ignored", "ignored")
		return
	}

	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		h.ack(w, http.StatusBadRequest, "Invalid payload", "invalid_payload")
		return
	}

	if err := h.Engine.Fulfill(r.Context(), session); err != nil {
		if app, ok := common.AsAppError(err); ok {
			h.Log.Warn().Err(err).Str("reference", session.ClientReferenceID).Msg("webhook fulfillment rejected")
			h.ack(w, app.HTTPStatus, app.Message, "rejected")
			return
		}
		h.Log.Error().Err(err).Str("reference", session.ClientReferenceID).Msg("webhook fulfillment failed")
		h.ack(w, http.StatusInternalServerError, "Fulfillment failed", "error")
		return
	}
	h.ack(w, http.StatusOK, "Order fulfilled", "fulfilled")
}

func (h Webhook) ack(w http.ResponseWriter, status int, body, result string) {
	if obs.PaymentWebhookTotal != nil {
		obs.PaymentWebhookTotal.WithLabelValues(result).Inc()
	}
	common.Text(w, status, body)
}

func isSignatureError(err error) bool {
	return errors.Is(err, webhook.ErrNotSigned) ||
		errors.Is(err, webhook.ErrInvalidHeader) ||
		errors.Is(err, webhook.ErrTooOld) ||
		errors.Is(err, webhook.ErrNoValidSignature)
}

package payment

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/shop-stripe/internal/cart"
	"github.com/noah-isme/shop-stripe/internal/common"
	"github.com/noah-isme/shop-stripe/internal/order"
)

// Handler exposes the checkout, return-page, and refund HTTP endpoints.
type Handler struct {
	Gateway  Gateway
	Orders   OrderStore
	Validate *validator.Validate
	Label    string
}

type checkoutReq struct {
	BasketID string `json:"basketId" validate:"required_without=OrderID,excluded_with=OrderID"`
	OrderID  string `json:"orderId" validate:"required_without=BasketID,excluded_with=BasketID"`
	Currency string `json:"currency" validate:"omitempty,len=3,alpha"`
}

type checkoutResp struct {
	URL      string `json:"url"`
	Provider string `json:"provider"`
	Label    string `json:"label"`
}

// Checkout opens a hosted checkout session for a basket or an order and
// returns the redirect URL the shop frontend should send the buyer to.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Validate == nil {
		common.JSONError(w, http.StatusInternalServerError, "PAYMENT_NOT_CONFIGURED", "payment handler unavailable", nil)
		return
	}
	var req checkoutReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid body", nil)
		return
	}
	req.BasketID = strings.TrimSpace(req.BasketID)
	req.OrderID = strings.TrimSpace(req.OrderID)
	req.Currency = strings.TrimSpace(req.Currency)
	if err := h.Validate.Struct(req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "exactly one of basketId or orderId is required", nil)
		return
	}

	var (
		url string
		err error
	)
	if req.BasketID != "" {
		url, err = h.Gateway.BasketPayment(r.Context(), req.BasketID, req.Currency)
	} else {
		url, err = h.Gateway.OrderPayment(r.Context(), req.OrderID, req.Currency)
	}
	if err != nil {
		var pe *PaymentError
		switch {
		case errors.Is(err, cart.ErrNotFound):
			common.JSONError(w, http.StatusNotFound, "BASKET_NOT_FOUND", "basket not found", nil)
		case errors.Is(err, order.ErrNotFound):
			common.JSONError(w, http.StatusNotFound, "ORDER_NOT_FOUND", "order not found", nil)
		case errors.As(err, &pe):
			common.JSONError(w, http.StatusBadGateway, "PAYMENT_FAILED", "payment provider rejected the session", nil)
		default:
			common.JSONError(w, http.StatusInternalServerError, "CHECKOUT_ERROR", "could not start checkout", nil)
		}
		return
	}
	common.JSON(w, http.StatusOK, checkoutResp{URL: url, Provider: Identifier, Label: h.Label})
}

// Success is the landing page Stripe redirects to after a completed payment.
// Fulfillment happens via the webhook; this page only informs the buyer.
func (h *Handler) Success(w http.ResponseWriter, r *http.Request) {
	h.renderReturn(w, r, "Payment received. Your order is being processed.")
}

// Cancel is the landing page for abandoned checkouts.
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.renderReturn(w, r, "Payment canceled. Your basket is unchanged.")
}

func (h *Handler) renderReturn(w http.ResponseWriter, r *http.Request, message string) {
	if next := strings.TrimSpace(r.URL.Query().Get("next")); next != "" && strings.HasPrefix(next, "/") {
		http.Redirect(w, r, next, http.StatusSeeOther)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "<!doctype html><html><body><p>%s</p></body></html>", message)
}

type refundResp struct {
	OrderID  string `json:"orderId"`
	Refunded int    `json:"refunded"`
	Failed   int    `json:"failed"`
}

// Refund reverses all captured Stripe payments on an order. Partial success
// is reported rather than rolled back, mirroring how refunds behave upstream.
func (h *Handler) Refund(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Orders == nil {
		common.JSONError(w, http.StatusInternalServerError, "PAYMENT_NOT_CONFIGURED", "payment handler unavailable", nil)
		return
	}
	orderID := strings.TrimSpace(chi.URLParam(r, "orderId"))
	if orderID == "" {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "orderId is required", nil)
		return
	}
	o, err := h.Orders.Get(r.Context(), orderID)
	if errors.Is(err, order.ErrNotFound) {
		common.JSONError(w, http.StatusNotFound, "ORDER_NOT_FOUND", "order not found", nil)
		return
	}
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "ORDER_FETCH_ERROR", "could not load order", nil)
		return
	}

	resp := refundResp{OrderID: o.ID}
	for _, p := range o.Payments {
		if p.Method != Identifier {
			continue
		}
		if h.Gateway.Refund(r.Context(), p) {
			resp.Refunded++
		} else {
			resp.Failed++
		}
	}
	if resp.Refunded == 0 && resp.Failed == 0 {
		common.JSONError(w, http.StatusConflict, "NOTHING_TO_REFUND", "order has no stripe payments", nil)
		return
	}
	common.JSON(w, http.StatusOK, resp)
}

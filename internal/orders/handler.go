package orders

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/joao-fontenele/storefront/internal/domain"
)

type Handler struct {
	processor *Processor
	logger    *slog.Logger
}

func NewHandler(processor *Processor, logger *slog.Logger) *Handler {
	return &Handler{
		processor: processor,
		logger:    logger,
	}
}

type checkoutRequest struct {
	UserID       string            `json:"userId"`
	CartItems    []domain.CartLine `json:"cartItems"`
	DiscountCode string            `json:"discountCode"`
}

type checkoutResponse struct {
	Success         bool                 `json:"success"`
	Message         string               `json:"message"`
	Order           *domain.Order        `json:"order,omitempty"`
	NewDiscountCode *domain.DiscountCode `json:"newDiscountCode,omitempty"`
	Error           Kind                 `json:"error,omitempty"`
	ProductID       string               `json:"productId,omitempty"`
	ProductName     string               `json:"productName,omitempty"`
	Indeterminate   bool                 `json:"indeterminate,omitempty"`
}

func (h *Handler) HandleCheckout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, checkoutResponse{
			Message: "Invalid request. userId and non-empty cartItems are required.",
			Error:   KindValidation,
		})
		return
	}

	outcome, err := h.processor.Checkout(r.Context(), req.UserID, req.CartItems, req.DiscountCode)
	if err != nil {
		resp := checkoutResponse{Message: err.Error()}
		var oe *Error
		if errors.As(err, &oe) {
			resp.Error = oe.Kind
			resp.ProductID = oe.ProductID
			resp.ProductName = oe.ProductName
			resp.Indeterminate = oe.Indeterminate()
		} else {
			h.logger.Error("checkout failed unexpectedly", "error", err, "user_id", req.UserID)
			resp.Message = "internal server error"
		}
		h.writeJSON(w, statusFor(err), resp)
		return
	}

	h.writeJSON(w, http.StatusOK, checkoutResponse{
		Success:         true,
		Message:         "Order placed successfully",
		Order:           &outcome.Order,
		NewDiscountCode: outcome.NewDiscountCode,
	})
}

type generateDiscountCodeRequest struct {
	UserID string `json:"userId"`
}

func (h *Handler) HandleGenerateDiscountCode(w http.ResponseWriter, r *http.Request) {
	var req generateDiscountCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	eligibility, err := h.processor.GenerateDiscountCode(r.Context(), req.UserID)
	if err != nil {
		h.writeFailure(w, err, "failed to check discount eligibility")
		return
	}

	message := "User is not eligible for a discount"
	if eligibility.Eligible {
		message = "Discount code found"
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"message":      message,
		"isEligible":   eligibility.Eligible,
		"discountCode": eligibility.Code,
	})
}

type setDiscountOrderRequest struct {
	UserID        string `json:"userId"`
	DiscountOrder int    `json:"discountOrder"`
}

func (h *Handler) HandleSetDiscountOrder(w http.ResponseWriter, r *http.Request) {
	var req setDiscountOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid discount order. Must be a positive number.")
		return
	}

	if err := h.processor.SetDiscountCadence(r.Context(), req.UserID, req.DiscountOrder); err != nil {
		h.writeFailure(w, err, "failed to set discount order")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"message":       "Discount order updated successfully",
		"discountOrder": req.DiscountOrder,
	})
}

func (h *Handler) HandleGetDiscountOrder(w http.ResponseWriter, r *http.Request) {
	cadence, err := h.processor.DiscountCadence(r.Context())
	if err != nil {
		h.writeFailure(w, err, "failed to get discount order")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]int{"discountOrder": cadence})
}

func (h *Handler) HandleListDiscountCodes(w http.ResponseWriter, r *http.Request) {
	codes, err := h.processor.DiscountCodes(r.Context())
	if err != nil {
		h.writeFailure(w, err, "failed to list discount codes")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"discountCodes": codes})
}

func (h *Handler) HandleListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.processor.AllOrders(r.Context())
	if err != nil {
		h.writeFailure(w, err, "failed to list orders")
		return
	}

	h.logger.Info("orders listed", "count", len(orders))
	h.writeJSON(w, http.StatusOK, map[string]any{"orders": orders})
}

func (h *Handler) HandleUserOrders(w http.ResponseWriter, r *http.Request) {
	userID := userIDFrom(r)
	if userID == "" {
		h.writeError(w, http.StatusBadRequest, "User ID is required")
		return
	}

	orders, err := h.processor.UserOrders(r.Context(), userID)
	if err != nil {
		h.writeFailure(w, err, "failed to get user orders")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"orders": orders})
}

func (h *Handler) HandleUserOrderCount(w http.ResponseWriter, r *http.Request) {
	userID := userIDFrom(r)
	if userID == "" {
		h.writeError(w, http.StatusBadRequest, "User ID is required")
		return
	}

	count, err := h.processor.UserOrderCount(r.Context(), userID)
	if err != nil {
		h.writeFailure(w, err, "failed to count user orders")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]int{"orderCount": count})
}

func userIDFrom(r *http.Request) string {
	if id := r.PathValue("userId"); id != "" {
		return id
	}
	return r.URL.Query().Get("userId")
}

func statusFor(err error) int {
	switch KindOf(err) {
	case KindValidation, KindInvalidDiscountCode:
		return http.StatusBadRequest
	case KindUserNotFound, KindProductNotFound:
		return http.StatusNotFound
	case KindInsufficientStock:
		return http.StatusConflict
	case KindUnauthorized:
		return http.StatusForbidden
	case KindStoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeFailure renders errors from the processor; anything it does not
// recognise is logged and hidden behind a generic message.
func (h *Handler) writeFailure(w http.ResponseWriter, err error, logMsg string) {
	status := statusFor(err)
	if KindOf(err) == "" || status == http.StatusInternalServerError {
		h.logger.Error(logMsg, "error", err)
	}
	if KindOf(err) == "" {
		h.writeError(w, status, "internal server error")
		return
	}
	h.writeError(w, status, err.Error())
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}

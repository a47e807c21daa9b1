// Package worker reacts to placed orders outside the request path.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/joao-fontenele/storefront/internal/domain"
)

// Sender delivers one email.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// NotificationHandler emails the customer a confirmation for every placed
// order, including the discount code the order earned, if any.
type NotificationHandler struct {
	sender Sender
	logger *slog.Logger
}

func NewNotificationHandler(sender Sender, logger *slog.Logger) *NotificationHandler {
	return &NotificationHandler{
		sender: sender,
		logger: logger,
	}
}

func (h *NotificationHandler) Handle(ctx context.Context, event domain.OrderPlacedEvent) error {
	h.logger.Info("processing order placed event", "order_id", event.OrderID, "user_id", event.UserID)

	if event.Email == "" {
		h.logger.Warn("order has no email address, skipping confirmation", "order_id", event.OrderID)
		return nil
	}

	if err := h.sender.Send(ctx, confirmation(event)); err != nil {
		h.logger.Error("failed to send confirmation email", "error", err, "order_id", event.OrderID)
		return fmt.Errorf("send confirmation email: %w", err)
	}

	h.logger.Info("order confirmation sent", "order_id", event.OrderID, "discount_code", event.NewDiscountCode != nil)
	return nil
}

func confirmation(event domain.OrderPlacedEvent) Message {
	var b strings.Builder

	name := event.UserName
	if name == "" {
		name = "there"
	}
	fmt.Fprintf(&b, "Hi %s,\n\n", name)
	fmt.Fprintf(&b, "Your order %s with %d item(s) has been placed. Total charged: %s.\n",
		event.OrderID, event.ItemCount, event.FinalAmount.StringFixed(2))

	if code := event.NewDiscountCode; code != nil {
		fmt.Fprintf(&b, "\nThanks for being a loyal customer! Use code %s for %d%% off your next order.\n",
			code.Code, code.Discount)
	}

	return Message{
		To:      event.Email,
		Subject: "Order Confirmation: " + event.OrderID,
		Body:    b.String(),
	}
}

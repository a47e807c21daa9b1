package worker

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/joao-fontenele/storefront/internal/domain"
)

type recordingSender struct {
	sent []Message
	err  error
}

func (s *recordingSender) Send(_ context.Context, msg Message) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}

func testEvent() domain.OrderPlacedEvent {
	return domain.OrderPlacedEvent{
		OrderID:     "o-1",
		UserID:      "u-1",
		UserName:    "Ana",
		Email:       "ana@example.com",
		ItemCount:   2,
		FinalAmount: decimal.RequireFromString("54"),
		Timestamp:   time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestNotificationHandler_Handle(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("sends a confirmation", func(t *testing.T) {
		sender := &recordingSender{}
		h := NewNotificationHandler(sender, logger)

		if err := h.Handle(context.Background(), testEvent()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(sender.sent) != 1 {
			t.Fatalf("expected 1 email, got %d", len(sender.sent))
		}
		msg := sender.sent[0]
		if msg.To != "ana@example.com" {
			t.Errorf("expected recipient ana@example.com, got %s", msg.To)
		}
		if msg.Subject != "Order Confirmation: o-1" {
			t.Errorf("unexpected subject: %s", msg.Subject)
		}
		if !strings.Contains(msg.Body, "54.00") {
			t.Errorf("expected body to mention the total, got %q", msg.Body)
		}
		if strings.Contains(msg.Body, "next order") {
			t.Errorf("did not expect a discount code mention, got %q", msg.Body)
		}
	})

	t.Run("mentions the earned discount code", func(t *testing.T) {
		sender := &recordingSender{}
		h := NewNotificationHandler(sender, logger)

		event := testEvent()
		event.NewDiscountCode = &domain.DiscountCode{Code: "AB12CD34", Discount: 10, IsAvailable: true}

		if err := h.Handle(context.Background(), event); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(sender.sent[0].Body, "AB12CD34") || !strings.Contains(sender.sent[0].Body, "10% off") {
			t.Errorf("expected body to mention the code, got %q", sender.sent[0].Body)
		}
	})

	t.Run("skips events without an address", func(t *testing.T) {
		sender := &recordingSender{}
		h := NewNotificationHandler(sender, logger)

		event := testEvent()
		event.Email = ""

		if err := h.Handle(context.Background(), event); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(sender.sent) != 0 {
			t.Errorf("expected no email, got %d", len(sender.sent))
		}
	})

	t.Run("propagates send failures for redelivery", func(t *testing.T) {
		boom := errors.New("boom")
		h := NewNotificationHandler(&recordingSender{err: boom}, logger)

		err := h.Handle(context.Background(), testEvent())
		if !errors.Is(err, boom) {
			t.Errorf("expected wrapped send error, got %v", err)
		}
	})
}

func TestMailer_Send(t *testing.T) {
	t.Run("posts to /send", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/send" {
				t.Errorf("expected /send, got %s", r.URL.Path)
			}
			if r.Method != http.MethodPost {
				t.Errorf("expected POST, got %s", r.Method)
			}
			var msg Message
			if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
				t.Errorf("failed to decode body: %v", err)
			}
			if msg.To != "ana@example.com" {
				t.Errorf("expected recipient ana@example.com, got %s", msg.To)
			}
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		m := NewMailer(server.URL, server.Client())
		if err := m.Send(context.Background(), Message{To: "ana@example.com", Subject: "hi"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("non-200 is an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
		}))
		defer server.Close()

		m := NewMailer(server.URL, server.Client())
		if err := m.Send(context.Background(), Message{To: "x"}); err == nil {
			t.Error("expected error for status 400")
		}
	})

	t.Run("unreachable service", func(t *testing.T) {
		m := NewMailer("http://localhost:99999", &http.Client{})
		if err := m.Send(context.Background(), Message{To: "x"}); err == nil {
			t.Error("expected error for unreachable service")
		}
	})
}

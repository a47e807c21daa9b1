//go:build integration

package test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/joao-fontenele/storefront/internal/api"
	"github.com/joao-fontenele/storefront/internal/discount"
	"github.com/joao-fontenele/storefront/internal/domain"
	"github.com/joao-fontenele/storefront/internal/inventory"
	"github.com/joao-fontenele/storefront/internal/messaging"
	"github.com/joao-fontenele/storefront/internal/orders"
	"github.com/joao-fontenele/storefront/internal/store"
	"github.com/joao-fontenele/storefront/internal/telemetry"
	"github.com/joao-fontenele/storefront/internal/users"
	"github.com/joao-fontenele/storefront/internal/worker"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seedDocument() *domain.Snapshot {
	snap := domain.NewSnapshot()
	snap.Products = []domain.Product{
		{ProductID: "p-1", Name: "Mug", Quantity: 10, Price: decimal.NewFromInt(20)},
	}
	snap.Users = []domain.User{
		{UserID: "u-1", Name: "Ana", Email: "ana@example.com", Password: "pw", Role: domain.RoleUser, Orders: []domain.Order{}},
	}
	return snap
}

func newProcessor(t *testing.T, s store.Store, publisher orders.Publisher) *orders.Processor {
	t.Helper()

	metrics, err := telemetry.NewCheckoutMetrics(noop.NewMeterProvider().Meter("test"))
	if err != nil {
		t.Fatalf("failed to create metrics: %v", err)
	}
	return orders.NewProcessor(store.NewWriter(s), discount.NewEngine(), publisher, metrics, discardLogger())
}

func TestPostgresStore_RoundTrip(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pg := SetupPostgres(ctx, t)
	defer pg.Cleanup()

	db, err := OpenDB(ctx, pg.ConnStr)
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	s := store.NewPostgresStore(db, store.DefaultDocumentID)

	initial, err := s.Read(ctx)
	if err != nil {
		t.Fatalf("failed to read seeded document: %v", err)
	}
	if initial.DiscountOrder != domain.DefaultDiscountOrder {
		t.Fatalf("expected default cadence %d, got %d", domain.DefaultDiscountOrder, initial.DiscountOrder)
	}
	if initial.Version != 1 {
		t.Fatalf("expected version 1, got %d", initial.Version)
	}

	seed := seedDocument()
	seed.Version = initial.Version
	if err := s.Write(ctx, seed); err != nil {
		t.Fatalf("failed to write document: %v", err)
	}
	if seed.Version != 2 {
		t.Fatalf("expected writer's version to advance to 2, got %d", seed.Version)
	}

	got, err := s.Read(ctx)
	if err != nil {
		t.Fatalf("failed to read document: %v", err)
	}
	if len(got.Products) != 1 || !got.Products[0].Price.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("unexpected products after roundtrip: %+v", got.Products)
	}

	stale := initial
	stale.DiscountOrder = 9
	if err := s.Write(ctx, stale); !errors.Is(err, store.ErrVersionConflict) {
		t.Fatalf("expected version conflict for stale write, got %v", err)
	}
}

func TestPostgresStore_MissingDocument(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pg := SetupPostgres(ctx, t)
	defer pg.Cleanup()

	db, err := OpenDB(ctx, pg.ConnStr)
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	s := store.NewPostgresStore(db, "tenant-2")

	snap, err := s.Read(ctx)
	if err != nil {
		t.Fatalf("failed to read missing document: %v", err)
	}
	if snap.Version != 0 {
		t.Fatalf("expected version 0 for a missing document, got %d", snap.Version)
	}

	snap.Products = seedDocument().Products
	if err := s.Write(ctx, snap); err != nil {
		t.Fatalf("failed to create document: %v", err)
	}

	again, err := s.Read(ctx)
	if err != nil {
		t.Fatalf("failed to read created document: %v", err)
	}
	if len(again.Products) != 1 {
		t.Fatalf("expected 1 product, got %d", len(again.Products))
	}
}

func TestCheckoutOverPostgres(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pg := SetupPostgres(ctx, t)
	defer pg.Cleanup()

	s := pg.SeededStore(ctx, t, seedDocument())

	writer := store.NewWriter(s)
	logger := discardLogger()
	processor := newProcessor(t, s, nil)

	mux := http.NewServeMux()
	api.Register(mux, api.Handlers{
		Orders:    orders.NewHandler(processor, logger),
		Inventory: inventory.NewHandler(inventory.NewCatalog(writer), logger),
		Users:     users.NewHandler(users.NewDirectory(writer), logger),
	}, logger, nil)

	body := `{"userId":"u-1","cartItems":[{"productId":"p-1","quantity":3,"orderedPrice":20}]}`
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api?action=checkout", strings.NewReader(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	snap, err := s.Read(ctx)
	if err != nil {
		t.Fatalf("failed to read document: %v", err)
	}
	if snap.Products[0].Quantity != 7 {
		t.Fatalf("expected quantity 7, got %d", snap.Products[0].Quantity)
	}
	if len(snap.Users[0].Orders) != 1 {
		t.Fatalf("expected 1 order, got %d", len(snap.Users[0].Orders))
	}
	if !snap.Users[0].Orders[0].FinalAmount.Equal(decimal.NewFromInt(60)) {
		t.Fatalf("expected final amount 60, got %s", snap.Users[0].Orders[0].FinalAmount)
	}
}

// TestCheckout_ConcurrentProcesses runs two processors, each with its own
// Writer as separate service instances would have, against one document.
// The version check must keep every placed order and its stock decrement.
func TestCheckout_ConcurrentProcesses(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pg := SetupPostgres(ctx, t)
	defer pg.Cleanup()

	s := pg.SeededStore(ctx, t, seedDocument())

	processors := []*orders.Processor{newProcessor(t, s, nil), newProcessor(t, s, nil)}
	lines := []domain.CartLine{{ProductID: "p-1", Quantity: 1, OrderedPrice: decimal.NewFromInt(20)}}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		placed   int
		conflict int
	)
	for i := range 10 {
		wg.Add(1)
		go func(p *orders.Processor) {
			defer wg.Done()
			_, err := p.Checkout(ctx, "u-1", lines, "")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				placed++
			case orders.KindOf(err) == orders.KindPersistence && errors.Is(err, store.ErrVersionConflict):
				conflict++
			default:
				t.Errorf("unexpected checkout error: %v", err)
			}
		}(processors[i%2])
	}
	wg.Wait()

	snap, err := s.Read(ctx)
	if err != nil {
		t.Fatalf("failed to read document: %v", err)
	}

	if placed+conflict != 10 {
		t.Fatalf("expected 10 outcomes, got %d placed and %d conflicts", placed, conflict)
	}
	if got := len(snap.Users[0].Orders); got != placed {
		t.Fatalf("expected %d stored orders, got %d", placed, got)
	}
	if got := snap.Products[0].Quantity; got != 10-placed {
		t.Fatalf("expected quantity %d, got %d", 10-placed, got)
	}
}

type emailCapture struct {
	mu     sync.Mutex
	emails []worker.Message
}

func (e *emailCapture) handler(w http.ResponseWriter, r *http.Request) {
	var msg worker.Message
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	e.mu.Lock()
	e.emails = append(e.emails, msg)
	e.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, `{"status":"sent"}`)
}

func (e *emailCapture) getEmails() []worker.Message {
	e.mu.Lock()
	defer e.mu.Unlock()
	result := make([]worker.Message, len(e.emails))
	copy(result, e.emails)
	return result
}

func TestOrderPlacedFlow(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	brokers, cleanup := SetupKafka(ctx, t)
	defer cleanup()

	topic := messaging.TopicOrderPlaced
	producer := messaging.NewProducer(brokers, topic, messaging.WithBatchTimeout(10*time.Millisecond), messaging.WithSyncWrites())
	defer func() { _ = producer.Close() }()

	seed := seedDocument()
	seed.DiscountOrder = 1
	processor := newProcessor(t, store.NewMemoryStore(seed), producer)

	conn, err := kafka.DialContext(ctx, "tcp", brokers[0])
	if err != nil {
		t.Fatalf("failed to dial kafka: %v", err)
	}
	err = conn.CreateTopics(kafka.TopicConfig{Topic: topic, NumPartitions: 1, ReplicationFactor: 1})
	_ = conn.Close()
	if err != nil {
		t.Fatalf("failed to create topic: %v", err)
	}

	lines := []domain.CartLine{{ProductID: "p-1", Quantity: 2, OrderedPrice: decimal.NewFromInt(20)}}
	outcome, err := processor.Checkout(ctx, "u-1", lines, "")
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}
	if outcome.NewDiscountCode == nil {
		t.Fatal("expected a discount code with cadence 1")
	}

	emailCap := &emailCapture{}
	emailMux := http.NewServeMux()
	emailMux.HandleFunc("POST /send", emailCap.handler)
	emailServer := httptest.NewServer(emailMux)
	defer emailServer.Close()

	logger := discardLogger()
	notifications := worker.NewNotificationHandler(worker.NewMailer(emailServer.URL, emailServer.Client()), logger)
	consumer := messaging.NewConsumer(brokers, topic, "integration-test", logger, messaging.WithStartOffset(kafka.FirstOffset))
	defer func() { _ = consumer.Close() }()

	consumeCtx, stop := context.WithCancel(ctx)
	defer stop()

	done := make(chan error, 1)
	go func() {
		done <- consumer.Consume(consumeCtx, messaging.JSON(func(ctx context.Context, event domain.OrderPlacedEvent) error {
			if err := notifications.Handle(ctx, event); err != nil {
				return err
			}
			stop()
			return nil
		}))
	}()

	select {
	case err := <-done:
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Fatalf("consumer failed: %v", err)
		}
	case <-ctx.Done():
		t.Fatal("timed out waiting for the order placed event")
	}

	emails := emailCap.getEmails()
	if len(emails) != 1 {
		t.Fatalf("expected 1 email, got %d", len(emails))
	}
	if emails[0].To != "ana@example.com" {
		t.Fatalf("expected email to ana@example.com, got %s", emails[0].To)
	}
	if !strings.Contains(emails[0].Subject, outcome.Order.OrderID) {
		t.Fatalf("expected subject to contain order id %s, got %s", outcome.Order.OrderID, emails[0].Subject)
	}
	if !strings.Contains(emails[0].Body, outcome.NewDiscountCode.Code) {
		t.Fatalf("expected body to mention code %s, got %s", outcome.NewDiscountCode.Code, emails[0].Body)
	}
}

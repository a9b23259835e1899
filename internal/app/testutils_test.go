package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/cinex/seat-reservation-engine/api"
	"github.com/cinex/seat-reservation-engine/internal/domain"
	"github.com/cinex/seat-reservation-engine/internal/notify"
	"github.com/cinex/seat-reservation-engine/internal/payment"
	"github.com/cinex/seat-reservation-engine/internal/repository"
	"github.com/cinex/seat-reservation-engine/internal/reservation"
	appvalidator "github.com/cinex/seat-reservation-engine/internal/validator"
	"github.com/go-chi/chi/v5"
)

const (
	testShowingID  = "show-1"
	testPriceCents = 1250
)

var testSeats = []domain.Seat{
	{ID: "A1", Row: "A", Number: 1},
	{ID: "A2", Row: "A", Number: 2},
	{ID: "A3", Row: "A", Number: 3},
	{ID: "B1", Row: "B", Number: 1},
}

func newTestApplication(opts ...func(*Application)) *Application {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store := repository.NewMemorySeatMapStore()
	store.AddShowing(testShowingID, testSeats)

	showings := repository.NewMemoryShowingRepository()
	showings.Add(&domain.Showing{
		ID:         testShowingID,
		PriceCents: testPriceCents,
		TotalSeats: len(testSeats),
		StartsAt:   time.Now().Add(24 * time.Hour),
	})

	holds := repository.NewMemoryHoldRepository()
	bookings := repository.NewMemoryBookingRepository()
	notifier := notify.NewMemoryNotifier(store, logger)

	holdManager := reservation.NewHoldManager(store, holds, notifier, logger)
	engine := reservation.NewEngine(store, holds, bookings, showings, notifier, logger)
	coordinator := reservation.NewCoordinator(
		engine,
		holdManager,
		holds,
		showings,
		payment.NewMockGateway(),
		logger,
		0,
		"usd",
	)

	app := &Application{
		config:         Config{Env: "test"},
		logger:         logger,
		validator:      appvalidator.NewValidator(),
		sessionManager: scs.New(),
		store:          store,
		showings:       showings,
		bookings:       bookings,
		holds:          holds,
		notifier:       notifier,
		holdManager:    holdManager,
		engine:         engine,
		coordinator:    coordinator,
	}

	for _, opt := range opts {
		opt(app)
	}

	return app
}

func executeRequest(t *testing.T, method, url string, body any) (*httptest.ResponseRecorder, *http.Request) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(jsonData)
	}

	r := httptest.NewRequest(method, url, reader)
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	return w, r
}

// withSession loads a fresh session into the request context so handlers can
// read and write session data without the LoadAndSave middleware.
func withSession(t *testing.T, app *Application, r *http.Request) *http.Request {
	t.Helper()

	ctx, err := app.sessionManager.Load(r.Context(), "")
	if err != nil {
		t.Fatalf("failed to load session: %v", err)
	}

	return r.WithContext(ctx)
}

func withURLParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}

	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func decodeValidationIssues(t *testing.T, w *httptest.ResponseRecorder) map[string]bool {
	t.Helper()

	var resp api.ValidationErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode validation error response: %v", err)
	}

	issues := make(map[string]bool)
	for _, vErr := range resp.ValidationErrors {
		issues[vErr.Issue] = true
	}

	return issues
}

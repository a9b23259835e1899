package integration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"testing"
	"time"

	"github.com/cinex/seat-reservation-engine/api"
	"github.com/cinex/seat-reservation-engine/internal/domain"
	"github.com/cinex/seat-reservation-engine/internal/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type ReservationsSuite struct {
	BaseSuite
	showingID string
}

func TestReservationsSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}

	suite.Run(t, new(ReservationsSuite))
}

// SetupTest seeds a fresh showing so tests never share seat state.
func (s *ReservationsSuite) SetupTest() {
	s.Require().NotNil(s.app, "test application was not initialized")

	s.showingID = "show-" + uuid.New().String()

	showings := repository.NewPostgresShowingRepository(s.app.DB)
	err := showings.Create(context.Background(), &domain.Showing{
		ID:         s.showingID,
		PriceCents: testPriceCents,
		TotalSeats: 4,
		StartsAt:   time.Now().Add(24 * time.Hour),
	}, []domain.Seat{
		{ID: "A1", Row: "A", Number: 1},
		{ID: "A2", Row: "A", Number: 2},
		{ID: "A3", Row: "A", Number: 3},
		{ID: "B1", Row: "B", Number: 1},
	})
	s.Require().NoError(err)
}

// newClient returns an HTTP client with its own cookie jar, representing one
// viewing session.
func (s *ReservationsSuite) newClient() *http.Client {
	jar, err := cookiejar.New(nil)
	s.Require().NoError(err)

	return &http.Client{Jar: jar, Timeout: 10 * time.Second}
}

func (s *ReservationsSuite) doJSON(client *http.Client, method, path string, body any, out any) *http.Response {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, s.server.URL+path, reader)
	s.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")

	res, err := client.Do(req)
	s.Require().NoError(err)

	if out != nil && res.StatusCode < 300 {
		defer res.Body.Close()
		s.Require().NoError(json.NewDecoder(res.Body).Decode(out))
	} else {
		res.Body.Close()
	}

	return res
}

func (s *ReservationsSuite) seatStatus(resp api.SeatMapResponse, seatID string) string {
	for _, row := range resp.SeatRows {
		for _, seat := range row.Seats {
			if seat.Id == seatID {
				return seat.Status
			}
		}
	}

	s.Failf("seat not found", "seat %s missing from seat map", seatID)
	return ""
}

func (s *ReservationsSuite) TestHoldCheckoutCancelFlow() {
	client := s.newClient()

	var seatMap api.SeatMapResponse
	res := s.doJSON(client, http.MethodGet, "/showings/"+s.showingID+"/seats", nil, &seatMap)
	s.Require().Equal(http.StatusOK, res.StatusCode)
	s.Equal("available", s.seatStatus(seatMap, "A1"))

	var holdResp api.HoldResponse
	res = s.doJSON(client, http.MethodPost, "/showings/"+s.showingID+"/holds", api.CreateHoldRequest{
		SeatIdList: []string{"A1", "A2"},
	}, &holdResp)
	s.Require().Equal(http.StatusCreated, res.StatusCode)
	s.NotEmpty(holdResp.Hold.Token)

	res = s.doJSON(client, http.MethodGet, "/showings/"+s.showingID+"/seats", nil, &seatMap)
	s.Require().Equal(http.StatusOK, res.StatusCode)
	s.Equal("held", s.seatStatus(seatMap, "A1"))
	s.Equal("held", s.seatStatus(seatMap, "A2"))

	var bookingResp api.BookingResponse
	res = s.doJSON(client, http.MethodPost, "/checkout", api.CheckoutRequest{
		PaymentMethodRef: "pm_card",
	}, &bookingResp)
	s.Require().Equal(http.StatusCreated, res.StatusCode)
	s.Equal(int64(2*testPriceCents), bookingResp.Booking.AmountCents)
	s.Equal([]string{"A1", "A2"}, bookingResp.Booking.SeatIds)

	res = s.doJSON(client, http.MethodGet, "/showings/"+s.showingID+"/seats", nil, &seatMap)
	s.Require().Equal(http.StatusOK, res.StatusCode)
	s.Equal("booked", s.seatStatus(seatMap, "A1"))

	var fetched api.BookingResponse
	res = s.doJSON(client, http.MethodGet, "/bookings/"+bookingResp.Booking.BookingId, nil, &fetched)
	s.Require().Equal(http.StatusOK, res.StatusCode)
	s.Equal(bookingResp.Booking.BookingId, fetched.Booking.BookingId)

	var cancelled api.BookingResponse
	res = s.doJSON(client, http.MethodPost, "/bookings/"+bookingResp.Booking.BookingId+"/cancel", nil, &cancelled)
	s.Require().Equal(http.StatusOK, res.StatusCode)
	s.Equal("cancelled", cancelled.Booking.Status)

	res = s.doJSON(client, http.MethodGet, "/showings/"+s.showingID+"/seats", nil, &seatMap)
	s.Require().Equal(http.StatusOK, res.StatusCode)
	s.Equal("available", s.seatStatus(seatMap, "A1"))
	s.Equal("available", s.seatStatus(seatMap, "A2"))
}

func (s *ReservationsSuite) TestOverlappingHoldsConflict() {
	first := s.newClient()
	second := s.newClient()

	res := s.doJSON(first, http.MethodPost, "/showings/"+s.showingID+"/holds", api.CreateHoldRequest{
		SeatIdList: []string{"A1", "A2"},
	}, nil)
	s.Require().Equal(http.StatusCreated, res.StatusCode)

	res = s.doJSON(second, http.MethodPost, "/showings/"+s.showingID+"/holds", api.CreateHoldRequest{
		SeatIdList: []string{"A2", "A3"},
	}, nil)
	s.Equal(http.StatusConflict, res.StatusCode)

	// The losing request must not have touched A3.
	var seatMap api.SeatMapResponse
	res = s.doJSON(second, http.MethodGet, "/showings/"+s.showingID+"/seats", nil, &seatMap)
	s.Require().Equal(http.StatusOK, res.StatusCode)
	s.Equal("available", s.seatStatus(seatMap, "A3"))
}

func (s *ReservationsSuite) TestDeclinedPaymentFreesSeats() {
	client := s.newClient()

	res := s.doJSON(client, http.MethodPost, "/showings/"+s.showingID+"/holds", api.CreateHoldRequest{
		SeatIdList: []string{"A1"},
	}, nil)
	s.Require().Equal(http.StatusCreated, res.StatusCode)

	res = s.doJSON(client, http.MethodPost, "/checkout", api.CheckoutRequest{
		PaymentMethodRef: "pm_declined_visa",
	}, nil)
	s.Equal(http.StatusPaymentRequired, res.StatusCode)

	var seatMap api.SeatMapResponse
	res = s.doJSON(client, http.MethodGet, "/showings/"+s.showingID+"/seats", nil, &seatMap)
	s.Require().Equal(http.StatusOK, res.StatusCode)
	s.Equal("available", s.seatStatus(seatMap, "A1"))
}

func (s *ReservationsSuite) TestRenewAndReleaseHold() {
	client := s.newClient()

	var holdResp api.HoldResponse
	res := s.doJSON(client, http.MethodPost, "/showings/"+s.showingID+"/holds", api.CreateHoldRequest{
		SeatIdList: []string{"B1"},
		TtlSeconds: 60,
	}, &holdResp)
	s.Require().Equal(http.StatusCreated, res.StatusCode)

	var renewed api.HoldResponse
	res = s.doJSON(client, http.MethodPatch, "/holds/"+holdResp.Hold.Token, api.RenewHoldRequest{
		TtlSeconds: 300,
	}, &renewed)
	s.Require().Equal(http.StatusOK, res.StatusCode)
	s.True(renewed.Hold.ExpiresAt.After(holdResp.Hold.ExpiresAt))

	res = s.doJSON(client, http.MethodDelete, "/holds/"+holdResp.Hold.Token, nil, nil)
	s.Require().Equal(http.StatusNoContent, res.StatusCode)

	var seatMap api.SeatMapResponse
	res = s.doJSON(client, http.MethodGet, "/showings/"+s.showingID+"/seats", nil, &seatMap)
	s.Require().Equal(http.StatusOK, res.StatusCode)
	s.Equal("available", s.seatStatus(seatMap, "B1"))
}

func (s *ReservationsSuite) TestExpiredHoldsAreSwept() {
	ctx := context.Background()
	client := s.newClient()

	var holdResp api.HoldResponse
	res := s.doJSON(client, http.MethodPost, "/showings/"+s.showingID+"/holds", api.CreateHoldRequest{
		SeatIdList: []string{"A1"},
		TtlSeconds: 30,
	}, &holdResp)
	s.Require().Equal(http.StatusCreated, res.StatusCode)

	// Force the hold to expire instead of waiting out the TTL, then let the
	// running sweep reclaim the seat.
	holds := repository.NewRedisHoldRepository(s.app.App.Redis())
	s.Require().NoError(holds.UpdateExpiry(ctx, holdResp.Hold.Token, time.Now().Add(-time.Second)))

	s.Require().Eventually(func() bool {
		var seatMap api.SeatMapResponse
		res := s.doJSON(client, http.MethodGet, "/showings/"+s.showingID+"/seats", nil, &seatMap)
		if res.StatusCode != http.StatusOK {
			return false
		}
		return s.seatStatus(seatMap, "A1") == "available"
	}, 15*time.Second, 500*time.Millisecond, "expired hold was never swept")
}

func (s *ReservationsSuite) TestSeatMapForUnknownShowing() {
	client := s.newClient()

	res := s.doJSON(client, http.MethodGet, fmt.Sprintf("/showings/%s/seats", uuid.New()), nil, nil)
	s.Equal(http.StatusNotFound, res.StatusCode)
}

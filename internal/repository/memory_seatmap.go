package repository

import (
	"context"
	"sync"
	"time"

	"github.com/cinex/seat-reservation-engine/internal/domain"
)

// MemorySeatMapStore keeps seat maps in memory behind one mutex per
// showing. Locking is scoped to the touched showing only, so concurrent
// traffic against different showings never contends.
type MemorySeatMapStore struct {
	mu       sync.RWMutex
	showings map[string]*memoryShowingSeats
}

type memoryShowingSeats struct {
	mu    sync.Mutex
	seats []domain.Seat
	index map[string]int // seat ID -> position in seats
}

func NewMemorySeatMapStore() *MemorySeatMapStore {
	return &MemorySeatMapStore{
		showings: make(map[string]*memoryShowingSeats),
	}
}

// AddShowing registers a showing's seat map. Seats must be ordered by row
// then number; status defaults to available when unset.
func (s *MemorySeatMapStore) AddShowing(showingID string, seats []domain.Seat) {
	entry := &memoryShowingSeats{
		seats: make([]domain.Seat, len(seats)),
		index: make(map[string]int, len(seats)),
	}

	for i, seat := range seats {
		if seat.Status == "" {
			seat.Status = domain.SeatAvailable
		}
		entry.seats[i] = seat
		entry.index[seat.ID] = i
	}

	s.mu.Lock()
	s.showings[showingID] = entry
	s.mu.Unlock()
}

func (s *MemorySeatMapStore) showing(showingID string) (*memoryShowingSeats, error) {
	s.mu.RLock()
	entry, ok := s.showings[showingID]
	s.mu.RUnlock()

	if !ok {
		return nil, domain.ErrShowingNotFound
	}

	return entry, nil
}

func (s *MemorySeatMapStore) GetSeatMap(ctx context.Context, showingID string) (*domain.SeatMap, error) {
	entry, err := s.showing(showingID)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	seats := make([]domain.Seat, len(entry.seats))
	copy(seats, entry.seats)

	return &domain.SeatMap{ShowingID: showingID, Seats: seats}, nil
}

func (s *MemorySeatMapStore) TransitionSeats(
	ctx context.Context,
	showingID string,
	seatIDs []string,
	from, to domain.SeatStatus,
	token string,
	heldUntil time.Time,
) error {

	entry, err := s.showing(showingID)
	if err != nil {
		return err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	// Precondition pass: either every seat transitions or none do.
	for _, seatID := range seatIDs {
		i, ok := entry.index[seatID]
		if !ok {
			return domain.ErrSeatConflict
		}

		seat := entry.seats[i]
		if seat.Status != from {
			return domain.ErrSeatConflict
		}
		if from == domain.SeatHeld && seat.HoldToken != token {
			return domain.ErrSeatConflict
		}
	}

	for _, seatID := range seatIDs {
		i := entry.index[seatID]

		entry.seats[i].Status = to
		if to == domain.SeatHeld {
			until := heldUntil
			entry.seats[i].HoldToken = token
			entry.seats[i].HeldUntil = &until
		} else {
			entry.seats[i].HoldToken = ""
			entry.seats[i].HeldUntil = nil
		}
	}

	return nil
}

func (s *MemorySeatMapStore) ExtendHeldUntil(
	ctx context.Context,
	showingID string,
	seatIDs []string,
	token string,
	heldUntil time.Time,
) error {

	entry, err := s.showing(showingID)
	if err != nil {
		return err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	for _, seatID := range seatIDs {
		i, ok := entry.index[seatID]
		if !ok {
			return domain.ErrSeatConflict
		}

		seat := entry.seats[i]
		if seat.Status != domain.SeatHeld || seat.HoldToken != token {
			return domain.ErrSeatConflict
		}
	}

	for _, seatID := range seatIDs {
		i := entry.index[seatID]
		until := heldUntil
		entry.seats[i].HeldUntil = &until
	}

	return nil
}

package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cinex/seat-reservation-engine/internal/domain"
)

type MemoryHoldRepository struct {
	mu    sync.RWMutex
	holds map[string]*domain.Hold
}

func NewMemoryHoldRepository() *MemoryHoldRepository {
	return &MemoryHoldRepository{
		holds: make(map[string]*domain.Hold),
	}
}

func (r *MemoryHoldRepository) Create(ctx context.Context, hold *domain.Hold) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *hold
	copied.SeatIDs = append([]string(nil), hold.SeatIDs...)
	r.holds[hold.Token] = &copied

	return nil
}

func (r *MemoryHoldRepository) GetByToken(ctx context.Context, token string) (*domain.Hold, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	hold, ok := r.holds[token]
	if !ok {
		return nil, domain.ErrHoldNotFound
	}

	copied := *hold
	copied.SeatIDs = append([]string(nil), hold.SeatIDs...)

	return &copied, nil
}

func (r *MemoryHoldRepository) UpdateExpiry(ctx context.Context, token string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	hold, ok := r.holds[token]
	if !ok {
		return domain.ErrHoldNotFound
	}

	hold.ExpiresAt = expiresAt

	return nil
}

func (r *MemoryHoldRepository) MarkPaymentPending(ctx context.Context, token string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	hold, ok := r.holds[token]
	if !ok {
		return domain.ErrHoldNotFound
	}

	hold.PaymentPending = true
	hold.ExpiresAt = expiresAt

	return nil
}

func (r *MemoryHoldRepository) Delete(ctx context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.holds, token)

	return nil
}

func (r *MemoryHoldRepository) ExpiredBefore(ctx context.Context, cutoff time.Time, limit int) ([]*domain.Hold, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	expired := make([]*domain.Hold, 0)

	for _, hold := range r.holds {
		if hold.PaymentPending {
			continue
		}
		if !hold.ExpiresAt.After(cutoff) {
			copied := *hold
			copied.SeatIDs = append([]string(nil), hold.SeatIDs...)
			expired = append(expired, &copied)
		}
	}

	sort.Slice(expired, func(i, j int) bool {
		return expired[i].ExpiresAt.Before(expired[j].ExpiresAt)
	})

	if len(expired) > limit {
		expired = expired[:limit]
	}

	return expired, nil
}

package repository

import (
	"context"
	"sync"

	"github.com/cinex/seat-reservation-engine/internal/domain"
)

type MemoryShowingRepository struct {
	mu       sync.RWMutex
	showings map[string]*domain.Showing
}

func NewMemoryShowingRepository() *MemoryShowingRepository {
	return &MemoryShowingRepository{
		showings: make(map[string]*domain.Showing),
	}
}

func (r *MemoryShowingRepository) Add(showing *domain.Showing) {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *showing
	r.showings[showing.ID] = &copied
}

func (r *MemoryShowingRepository) GetByID(ctx context.Context, showingID string) (*domain.Showing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	showing, ok := r.showings[showingID]
	if !ok {
		return nil, domain.ErrShowingNotFound
	}

	copied := *showing

	return &copied, nil
}

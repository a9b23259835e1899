package mocks

import (
	"context"

	"github.com/cinex/seat-reservation-engine/internal/domain"
)

type MockShowingRepo struct {
	GetByIDFunc func(ctx context.Context, showingID string) (*domain.Showing, error)
}

func (m *MockShowingRepo) GetByID(ctx context.Context, showingID string) (*domain.Showing, error) {
	return m.GetByIDFunc(ctx, showingID)
}

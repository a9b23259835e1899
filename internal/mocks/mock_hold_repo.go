package mocks

import (
	"context"
	"time"

	"github.com/cinex/seat-reservation-engine/internal/domain"
)

type MockHoldRepo struct {
	CreateFunc             func(ctx context.Context, hold *domain.Hold) error
	GetByTokenFunc         func(ctx context.Context, token string) (*domain.Hold, error)
	UpdateExpiryFunc       func(ctx context.Context, token string, expiresAt time.Time) error
	MarkPaymentPendingFunc func(ctx context.Context, token string, expiresAt time.Time) error
	DeleteFunc             func(ctx context.Context, token string) error
	ExpiredBeforeFunc      func(ctx context.Context, cutoff time.Time, limit int) ([]*domain.Hold, error)
}

func (m *MockHoldRepo) Create(ctx context.Context, hold *domain.Hold) error {
	return m.CreateFunc(ctx, hold)
}

func (m *MockHoldRepo) GetByToken(ctx context.Context, token string) (*domain.Hold, error) {
	return m.GetByTokenFunc(ctx, token)
}

func (m *MockHoldRepo) UpdateExpiry(ctx context.Context, token string, expiresAt time.Time) error {
	return m.UpdateExpiryFunc(ctx, token, expiresAt)
}

func (m *MockHoldRepo) MarkPaymentPending(ctx context.Context, token string, expiresAt time.Time) error {
	return m.MarkPaymentPendingFunc(ctx, token, expiresAt)
}

func (m *MockHoldRepo) Delete(ctx context.Context, token string) error {
	return m.DeleteFunc(ctx, token)
}

func (m *MockHoldRepo) ExpiredBefore(ctx context.Context, cutoff time.Time, limit int) ([]*domain.Hold, error) {
	return m.ExpiredBeforeFunc(ctx, cutoff, limit)
}

package domain

import (
	"context"
	"time"
)

type Showing struct {
	ID         string
	PriceCents int64
	TotalSeats int
	StartsAt   time.Time
}

type ShowingRepository interface {
	GetByID(ctx context.Context, showingID string) (*Showing, error)
}

package repository

import (
	"context"
	"errors"

	"github.com/cinex/seat-reservation-engine/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresShowingRepository struct {
	db *pgxpool.Pool
}

func NewPostgresShowingRepository(db *pgxpool.Pool) *PostgresShowingRepository {
	return &PostgresShowingRepository{
		db: db,
	}
}

func (p *PostgresShowingRepository) GetByID(ctx context.Context, showingID string) (*domain.Showing, error) {
	query := `
		SELECT id, price_cents, total_seats, starts_at
		FROM showings
		WHERE id = $1
	`

	var showing domain.Showing

	err := p.db.QueryRow(ctx, query, showingID).Scan(
		&showing.ID,
		&showing.PriceCents,
		&showing.TotalSeats,
		&showing.StartsAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrShowingNotFound
		}

		return nil, err
	}

	return &showing, nil
}

// Create inserts a showing together with its seat map. Not part of
// domain.ShowingRepository; used by fixtures and the integration suite.
func (p *PostgresShowingRepository) Create(ctx context.Context, showing *domain.Showing, seats []domain.Seat) error {
	return runInTx(ctx, p.db, func(tx pgx.Tx) error {
		query := `
			INSERT INTO showings (id, price_cents, total_seats, starts_at)
			VALUES ($1, $2, $3, $4)
		`

		_, err := tx.Exec(ctx, query, showing.ID, showing.PriceCents, showing.TotalSeats, showing.StartsAt)
		if err != nil {
			return err
		}

		rows := make([][]any, 0, len(seats))
		for _, seat := range seats {
			rows = append(rows, []any{
				showing.ID,
				seat.ID,
				seat.Row,
				seat.Number,
				string(domain.SeatAvailable),
			})
		}

		_, err = tx.CopyFrom(
			ctx,
			pgx.Identifier{"showing_seats"},
			[]string{"showing_id", "seat_id", "seat_row", "seat_number", "status"},
			pgx.CopyFromRows(rows),
		)

		return err
	})
}

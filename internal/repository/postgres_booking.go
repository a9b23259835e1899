package repository

import (
	"context"
	"errors"

	"github.com/cinex/seat-reservation-engine/internal/domain"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresBookingRepository struct {
	db *pgxpool.Pool
}

func NewPostgresBookingRepository(db *pgxpool.Pool) *PostgresBookingRepository {
	return &PostgresBookingRepository{
		db: db,
	}
}

func (p *PostgresBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	err := runInTx(ctx, p.db, func(tx pgx.Tx) error {
		query := `
			INSERT INTO bookings (id, showing_id, amount_cents, payment_reference, status, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`

		_, err := tx.Exec(
			ctx,
			query,
			booking.ID,
			booking.ShowingID,
			booking.AmountCents,
			booking.PaymentReference,
			booking.Status,
			booking.CreatedAt,
		)
		if err != nil {
			return err
		}

		rows := make([][]any, 0, len(booking.SeatIDs))
		for _, seatID := range booking.SeatIDs {
			rows = append(rows, []any{
				booking.ID,
				booking.ShowingID,
				seatID,
				string(booking.Status),
			})
		}

		_, err = tx.CopyFrom(
			ctx,
			pgx.Identifier{"booking_seats"},
			[]string{"booking_id", "showing_id", "seat_id", "status"},
			pgx.CopyFromRows(rows),
		)

		return err
	})

	if err != nil {
		// The seat map store is the exclusivity gate, so a second
		// confirmed booking for the same seat should be impossible.
		// The partial unique index is a tripwire for store bugs.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return domain.ErrInternalConsistency
		}

		return err
	}

	return nil
}

func (p *PostgresBookingRepository) GetByID(ctx context.Context, bookingID string) (*domain.Booking, error) {
	query := `
		SELECT b.id, b.showing_id, b.amount_cents, b.payment_reference, b.status, b.created_at,
			array_agg(bs.seat_id ORDER BY bs.seat_id)
		FROM bookings b
		JOIN booking_seats bs ON bs.booking_id = b.id
		WHERE b.id = $1
		GROUP BY b.id
	`

	var booking domain.Booking

	err := p.db.QueryRow(ctx, query, bookingID).Scan(
		&booking.ID,
		&booking.ShowingID,
		&booking.AmountCents,
		&booking.PaymentReference,
		&booking.Status,
		&booking.CreatedAt,
		&booking.SeatIDs,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBookingNotFound
		}

		return nil, err
	}

	return &booking, nil
}

func (p *PostgresBookingRepository) Cancel(ctx context.Context, bookingID string) error {
	return runInTx(ctx, p.db, func(tx pgx.Tx) error {
		query := `
			UPDATE bookings
			SET status = $1
			WHERE id = $2
		`

		tag, err := tx.Exec(ctx, query, domain.BookingCancelled, bookingID)
		if err != nil {
			return err
		}

		if tag.RowsAffected() == 0 {
			return domain.ErrBookingNotFound
		}

		// Mirror the status onto booking_seats so the partial unique
		// index stops guarding seats of cancelled bookings.
		query = `
			UPDATE booking_seats
			SET status = $1
			WHERE booking_id = $2
		`

		_, err = tx.Exec(ctx, query, domain.BookingCancelled, bookingID)

		return err
	})
}

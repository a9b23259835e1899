package repository

import (
	"context"
	"time"

	"github.com/cinex/seat-reservation-engine/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresSeatMapStore struct {
	db *pgxpool.Pool
}

func NewPostgresSeatMapStore(db *pgxpool.Pool) *PostgresSeatMapStore {
	return &PostgresSeatMapStore{
		db: db,
	}
}

func (p *PostgresSeatMapStore) GetSeatMap(ctx context.Context, showingID string) (*domain.SeatMap, error) {
	query := `
		SELECT seat_id, seat_row, seat_number, status, hold_token, held_until
		FROM showing_seats
		WHERE showing_id = $1
		ORDER BY seat_row, seat_number
	`

	rows, err := p.db.Query(ctx, query, showingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seatMap := &domain.SeatMap{ShowingID: showingID}

	for rows.Next() {
		var seat domain.Seat
		var token *string

		err = rows.Scan(
			&seat.ID,
			&seat.Row,
			&seat.Number,
			&seat.Status,
			&token,
			&seat.HeldUntil,
		)
		if err != nil {
			return nil, err
		}

		if token != nil {
			seat.HoldToken = *token
		}

		seatMap.Seats = append(seatMap.Seats, seat)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	if len(seatMap.Seats) == 0 {
		return nil, domain.ErrShowingNotFound
	}

	return seatMap, nil
}

// TransitionSeats performs the batch compare-and-set as a single
// token-qualified UPDATE inside a transaction. Row locks serialize
// overlapping batches: the loser sees the committed status change, matches
// fewer rows than it asked for, and rolls back with ErrSeatConflict.
func (p *PostgresSeatMapStore) TransitionSeats(
	ctx context.Context,
	showingID string,
	seatIDs []string,
	from, to domain.SeatStatus,
	token string,
	heldUntil time.Time,
) error {

	return runInTx(ctx, p.db, func(tx pgx.Tx) error {
		var query string
		var args []any

		if to == domain.SeatHeld {
			query = `
				UPDATE showing_seats
				SET status = $1, hold_token = $2, held_until = $3
				WHERE showing_id = $4 AND seat_id = ANY($5) AND status = $6
			`
			args = []any{to, token, heldUntil, showingID, seatIDs, from}
		} else if from == domain.SeatHeld {
			query = `
				UPDATE showing_seats
				SET status = $1, hold_token = NULL, held_until = NULL
				WHERE showing_id = $2 AND seat_id = ANY($3) AND status = $4 AND hold_token = $5
			`
			args = []any{to, showingID, seatIDs, from, token}
		} else {
			query = `
				UPDATE showing_seats
				SET status = $1, hold_token = NULL, held_until = NULL
				WHERE showing_id = $2 AND seat_id = ANY($3) AND status = $4
			`
			args = []any{to, showingID, seatIDs, from}
		}

		tag, err := tx.Exec(ctx, query, args...)
		if err != nil {
			return err
		}

		if int(tag.RowsAffected()) != len(seatIDs) {
			return domain.ErrSeatConflict
		}

		return nil
	})
}

func (p *PostgresSeatMapStore) ExtendHeldUntil(
	ctx context.Context,
	showingID string,
	seatIDs []string,
	token string,
	heldUntil time.Time,
) error {

	return runInTx(ctx, p.db, func(tx pgx.Tx) error {
		query := `
			UPDATE showing_seats
			SET held_until = $1
			WHERE showing_id = $2 AND seat_id = ANY($3) AND status = $4 AND hold_token = $5
		`

		tag, err := tx.Exec(ctx, query, heldUntil, showingID, seatIDs, domain.SeatHeld, token)
		if err != nil {
			return err
		}

		if int(tag.RowsAffected()) != len(seatIDs) {
			return domain.ErrSeatConflict
		}

		return nil
	})
}

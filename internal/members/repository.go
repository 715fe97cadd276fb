// Package members looks up the venue members allowed to book by SMS.
package members

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wolfman30/venue-platform/internal/messaging"
	"github.com/wolfman30/venue-platform/internal/venue"
)

// ErrNotFound is returned when no member matches the phone number.
var ErrNotFound = errors.New("members: not found")

type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Repository struct {
	db rowQuerier
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	if pool == nil {
		panic("members: pgx pool required")
	}
	return &Repository{db: pool}
}

func newRepositoryWithQuerier(db rowQuerier) *Repository {
	if db == nil {
		panic("members: querier required")
	}
	return &Repository{db: db}
}

// FindByPhone matches the number against every stored format it may have
// been saved in.
func (r *Repository) FindByPhone(ctx context.Context, phone string) (venue.Member, error) {
	variants := messaging.LookupVariants(phone)
	if len(variants) == 0 {
		return venue.Member{}, ErrNotFound
	}
	query := `
		SELECT id::text, phone, first_name, last_name, COALESCE(email, '')
		FROM members
		WHERE phone = ANY($1)
		ORDER BY created_at
		LIMIT 1
	`
	var m venue.Member
	err := r.db.QueryRow(ctx, query, variants).Scan(&m.ID, &m.Phone, &m.FirstName, &m.LastName, &m.Email)
	if errors.Is(err, pgx.ErrNoRows) {
		return venue.Member{}, ErrNotFound
	}
	if err != nil {
		return venue.Member{}, fmt.Errorf("members: find by phone: %w", err)
	}
	return m, nil
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"marketplace-service/internal/model"
)

// ErrNotFound is returned when a row looked up by id does not exist.
var ErrNotFound = errors.New("not found")

const listingColumns = `id, title, description, price, category, seller_email, image_url, location, created_at, updated_at`

type ListingRepository struct {
	DB *sqlx.DB
}

func NewListingRepository(db *sqlx.DB) *ListingRepository {
	return &ListingRepository{DB: db}
}

// ListingFilter narrows List. Empty fields do not filter; Limit 0 means no limit.
type ListingFilter struct {
	Category string
	Search   string
	Limit    int
	Offset   int
}

// Create inserts l and fills in the id and timestamps assigned by the database.
func (r *ListingRepository) Create(ctx context.Context, l *model.Listing) error {
	const q = `
		INSERT INTO listings (title, description, price, category, seller_email, image_url, location)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`
	err := r.DB.QueryRowxContext(ctx, q,
		l.Title,
		l.Description,
		l.Price,
		l.Category,
		l.SellerEmail,
		l.ImageURL,
		l.Location,
	).Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return fmt.Errorf("ListingRepository.Create: %w", err)
	}
	return nil
}

// List returns matching listings, newest first. Search is a
// case-insensitive substring match on the title.
func (r *ListingRepository) List(ctx context.Context, f ListingFilter) ([]model.Listing, error) {
	query := "SELECT " + listingColumns + " FROM listings WHERE 1=1"
	args := []interface{}{}
	idx := 1

	if f.Category != "" {
		query += fmt.Sprintf(" AND category = $%d", idx)
		args = append(args, f.Category)
		idx++
	}
	if f.Search != "" {
		query += fmt.Sprintf(" AND title ILIKE $%d", idx)
		args = append(args, "%"+escapeLike(f.Search)+"%")
		idx++
	}

	query += " ORDER BY created_at DESC"
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", idx, idx+1)
		args = append(args, f.Limit, f.Offset)
	}

	listings := []model.Listing{}
	if err := r.DB.SelectContext(ctx, &listings, query, args...); err != nil {
		return nil, fmt.Errorf("ListingRepository.List: %w", err)
	}
	return listings, nil
}

// GetByID returns ErrNotFound for unknown and for malformed ids.
func (r *ListingRepository) GetByID(ctx context.Context, id string) (*model.Listing, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	var l model.Listing
	err := r.DB.GetContext(ctx, &l, `SELECT `+listingColumns+` FROM listings WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ListingRepository.GetByID: %w", err)
	}
	return &l, nil
}

// Title is the lookup used by the email notifier.
func (r *ListingRepository) Title(ctx context.Context, id string) (string, error) {
	if _, err := uuid.Parse(id); err != nil {
		return "", ErrNotFound
	}
	var title string
	err := r.DB.GetContext(ctx, &title, `SELECT title FROM listings WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("ListingRepository.Title: %w", err)
	}
	return title, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

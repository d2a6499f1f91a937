package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"marketplace-service/internal/model"
)

type MessageRepository struct {
	db *sqlx.DB
}

func NewMessageRepository(db *sqlx.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Insert saves m and fills in its id and created_at.
func (r *MessageRepository) Insert(ctx context.Context, m *model.Message) error {
	const insertQuery = `
		INSERT INTO messages (listing_id, seller_email, buyer_email, message)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	err := r.db.QueryRowxContext(ctx, insertQuery,
		m.ListingID,
		m.SellerEmail,
		m.BuyerEmail,
		m.Message,
	).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return fmt.Errorf("MessageRepository.Insert: %w", err)
	}
	return nil
}

// List returns all messages, newest first.
func (r *MessageRepository) List(ctx context.Context) ([]model.Message, error) {
	const selectQuery = `
		SELECT id, listing_id, seller_email, buyer_email, message, created_at
		FROM messages
		ORDER BY created_at DESC
	`
	messages := []model.Message{}
	if err := r.db.SelectContext(ctx, &messages, selectQuery); err != nil {
		return nil, fmt.Errorf("MessageRepository.List: %w", err)
	}
	return messages, nil
}

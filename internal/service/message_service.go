package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"marketplace-service/internal/logging"
	"marketplace-service/internal/model"
	"marketplace-service/internal/notify"
)

// MessageStore is the record store for messages.
type MessageStore interface {
	Insert(ctx context.Context, m *model.Message) error
	List(ctx context.Context) ([]model.Message, error)
}

// Dispatcher starts a notification without waiting for it.
type Dispatcher interface {
	Dispatch(n notify.Notification)
}

// MessageInput is what the contact form posts.
type MessageInput struct {
	ListingID   string `form:"listing_id" json:"listing_id" validate:"required"`
	SellerEmail string `form:"seller_email" json:"seller_email" validate:"required,email,contact_email"`
	BuyerEmail  string `form:"buyer_email" json:"buyer_email" validate:"required,email,contact_email"`
	Message     string `form:"message" json:"message" validate:"trimmed_min=10"`
}

// MessageService stores buyer inquiries and notifies sellers.
type MessageService struct {
	messages   MessageStore
	dispatcher Dispatcher
	validate   *validator.Validate
	logger     *logging.Logger
}

func NewMessageService(messages MessageStore, dispatcher Dispatcher, catalog model.Catalog, logger *logging.Logger) *MessageService {
	return &MessageService{
		messages:   messages,
		dispatcher: dispatcher,
		validate:   newValidator(catalog),
		logger:     logger,
	}
}

// Create validates locally, stores the message, then hands the
// notification to the dispatcher. Notification problems never reach the
// caller.
func (s *MessageService) Create(ctx context.Context, in MessageInput) (*model.Message, error) {
	in.ListingID = strings.TrimSpace(in.ListingID)
	in.SellerEmail = strings.TrimSpace(in.SellerEmail)
	in.BuyerEmail = strings.TrimSpace(in.BuyerEmail)
	if err := check(s.validate, in); err != nil {
		return nil, err
	}

	m := &model.Message{
		ListingID:   in.ListingID,
		SellerEmail: in.SellerEmail,
		BuyerEmail:  in.BuyerEmail,
		Message:     in.Message,
	}
	if err := s.messages.Insert(ctx, m); err != nil {
		s.logger.Errorw("message insert failed", "listing_id", in.ListingID, "error", err)
		return nil, &InsertError{Err: err}
	}

	s.dispatcher.Dispatch(notify.Notification{
		ListingID:   m.ListingID,
		SellerEmail: m.SellerEmail,
		BuyerEmail:  m.BuyerEmail,
		Message:     m.Message,
	})
	return m, nil
}

// List returns every message, newest first.
func (s *MessageService) List(ctx context.Context) ([]model.Message, error) {
	list, err := s.messages.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("MessageService.List: %w", err)
	}
	if list == nil {
		list = []model.Message{}
	}
	return list, nil
}

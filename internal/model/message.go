package model

import "time"

// Message is a buyer's inquiry about a listing. ListingID is a weak
// reference; the listing may be gone by the time the message is read.
type Message struct {
	ID          int64     `db:"id" json:"id"`
	ListingID   string    `db:"listing_id" json:"listing_id"`
	SellerEmail string    `db:"seller_email" json:"seller_email"`
	BuyerEmail  string    `db:"buyer_email" json:"buyer_email"`
	Message     string    `db:"message" json:"message"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

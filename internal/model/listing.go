package model

import (
	"encoding/json"
	"strconv"
	"time"
)

// DefaultLocation is stored when a seller leaves the location blank.
const DefaultLocation = "Manila, Philippines"

// Listing is an item, vehicle or home offered for sale.
type Listing struct {
	ID          string    `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	Price       float64   `db:"price" json:"price"`
	Category    string    `db:"category" json:"category"`
	SellerEmail string    `db:"seller_email" json:"seller_email"`
	ImageURL    string    `db:"image_url" json:"image_url"` // JSON encoded []string
	Location    string    `db:"location" json:"location"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Images decodes the image_url column. Rows written by other clients may
// hold a bare URL instead of a JSON list; that value is returned as the
// only element.
func (l Listing) Images() []string {
	return DecodeImageURLs(l.ImageURL)
}

// DisplayPrice renders the price with two fraction digits.
func (l Listing) DisplayPrice() string {
	return FormatPrice(l.Price)
}

// EncodeImageURLs serialises the ordered URL list into the image_url format.
func EncodeImageURLs(urls []string) (string, error) {
	if urls == nil {
		urls = []string{}
	}
	b, err := json.Marshal(urls)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// DecodeImageURLs never fails: undecodable input falls back to a
// single-element list holding the raw value.
func DecodeImageURLs(raw string) []string {
	if raw == "" {
		return []string{}
	}
	var urls []string
	if err := json.Unmarshal([]byte(raw), &urls); err != nil {
		return []string{raw}
	}
	if urls == nil {
		return []string{}
	}
	return urls
}

// FormatPrice renders p with exactly two fraction digits.
func FormatPrice(p float64) string {
	return strconv.FormatFloat(p, 'f', 2, 64)
}

// RoundPrice normalises p to two fraction digits.
func RoundPrice(p float64) float64 {
	v, err := strconv.ParseFloat(FormatPrice(p), 64)
	if err != nil {
		return p
	}
	return v
}

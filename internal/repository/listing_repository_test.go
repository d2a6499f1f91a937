package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace-service/internal/model"
)

const testListingID = "3f1c1f0e-6a43-4d4b-9a8e-0d9f5b8a1c22"

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "postgres"), mock
}

func listingRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "title", "description", "price", "category", "seller_email",
		"image_url", "location", "created_at", "updated_at",
	})
}

func TestListingCreateFillsGeneratedFields(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewListingRepository(db)
	now := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO listings")).
		WithArgs("Vintage Lamp", "", 25.5, "home goods", "s@example.com", `["u1"]`, "Cebu").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(testListingID, now, now))

	l := &model.Listing{
		Title:       "Vintage Lamp",
		Price:       25.5,
		Category:    "home goods",
		SellerEmail: "s@example.com",
		ImageURL:    `["u1"]`,
		Location:    "Cebu",
	}
	require.NoError(t, repo.Create(context.Background(), l))
	assert.Equal(t, testListingID, l.ID)
	assert.Equal(t, now, l.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListingCreateWrapsError(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery("INSERT INTO listings").WillReturnError(errors.New("boom"))

	err := NewListingRepository(db).Create(context.Background(), &model.Listing{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ListingRepository.Create")
}

func TestListingListFiltersAndOrders(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("FROM listings WHERE 1=1 AND category = $1 AND title ILIKE $2 ORDER BY created_at DESC")).
		WithArgs("electronics", `%50\%%`).
		WillReturnRows(listingRows().AddRow(testListingID, "TV 50% off", "", 100.0, "electronics", "s@x.io", "[]", "Manila", now, now))

	got, err := NewListingRepository(db).List(context.Background(), ListingFilter{Category: "electronics", Search: "50%"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "electronics", got[0].Category)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListingListPaginates(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at DESC LIMIT $1 OFFSET $2")).
		WithArgs(10, 20).
		WillReturnRows(listingRows())

	got, err := NewListingRepository(db).List(context.Background(), ListingFilter{Limit: 10, Offset: 20})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestListingGetByIDNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewListingRepository(db)

	_, err := repo.GetByID(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, ErrNotFound)

	mock.ExpectQuery("SELECT .* FROM listings WHERE id = \\$1").
		WithArgs(testListingID).
		WillReturnError(sql.ErrNoRows)
	_, err = repo.GetByID(context.Background(), testListingID)
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListingTitle(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT title FROM listings WHERE id = $1")).
		WithArgs(testListingID).
		WillReturnRows(sqlmock.NewRows([]string{"title"}).AddRow("Road Bike"))

	title, err := NewListingRepository(db).Title(context.Background(), testListingID)
	require.NoError(t, err)
	assert.Equal(t, "Road Bike", title)
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `a\_b\%c\\`, escapeLike(`a_b%c\`))
}

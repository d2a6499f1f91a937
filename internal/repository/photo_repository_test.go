package repository

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPhotoPublicURL(t *testing.T) {
	r := &PhotoRepository{BaseURL: "https://market.example.com"}

	assert.Equal(t,
		"https://market.example.com/api/objects/listing-images/public/0b9e-lamp.jpg",
		r.PublicURL("listing-images", "public/0b9e-lamp.jpg"))

	assert.Equal(t,
		"https://market.example.com/api/objects/listing-images/public/a%20b%3Fc%23d.jpg",
		r.PublicURL("listing-images", "public/a b?c#d.jpg"),
		"segments are escaped, separators are kept")
}

func TestCtxReaderStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := ctxReader{ctx: ctx, r: strings.NewReader("0123456789")}

	buf := make([]byte, 4)
	n, err := r.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "0123", string(buf[:n]))

	cancel()
	n, err = r.Read(buf)
	assert.Equal(t, 0, n)
	assert.ErrorIs(t, err, context.Canceled)

	_, err = io.Copy(io.Discard, r)
	assert.ErrorIs(t, err, context.Canceled)
}

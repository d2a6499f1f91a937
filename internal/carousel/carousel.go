// Package carousel holds the cyclic image index shared by the creation
// preview, the listing card and the listing detail gallery.
package carousel

import "fmt"

// Swipe is a horizontal gesture. Mouse drags are reported the same way
// as touch swipes.
type Swipe int

const (
	SwipeLeft Swipe = iota
	SwipeRight
)

// Carousel is a current index over an ordered image list. It is not safe
// for concurrent use; each view owns its own instance.
type Carousel struct {
	images []string
	index  int
}

// New starts at index 0.
func New(images []string) *Carousel {
	c := &Carousel{}
	c.Replace(images)
	return c
}

// Replace swaps the image list and resets the index to 0.
func (c *Carousel) Replace(images []string) {
	c.images = append([]string(nil), images...)
	c.index = 0
}

// Len is the number of images.
func (c *Carousel) Len() int { return len(c.images) }

// Index is the current position; always 0 for an empty carousel.
func (c *Carousel) Index() int { return c.index }

// Current returns the image at the current index, or "" when empty.
func (c *Carousel) Current() string {
	if len(c.images) == 0 {
		return ""
	}
	return c.images[c.index]
}

// Images returns a copy of the image list.
func (c *Carousel) Images() []string {
	return append([]string(nil), c.images...)
}

// ShowControls reports whether previous/next buttons and dots render.
func (c *Carousel) ShowControls() bool { return len(c.images) > 1 }

// Next advances cyclically. No-op with fewer than two images.
func (c *Carousel) Next() {
	if n := len(c.images); n > 1 {
		c.index = (c.index + 1) % n
	}
}

// Previous steps back cyclically. No-op with fewer than two images.
func (c *Carousel) Previous() {
	if n := len(c.images); n > 1 {
		c.index = (c.index - 1 + n) % n
	}
}

// JumpTo selects image i.
func (c *Carousel) JumpTo(i int) error {
	if i < 0 || i >= len(c.images) {
		return fmt.Errorf("carousel: index %d out of range [0,%d)", i, len(c.images))
	}
	c.index = i
	return nil
}

// Swipe maps left to Next and right to Previous.
func (c *Carousel) Swipe(s Swipe) {
	switch s {
	case SwipeLeft:
		c.Next()
	case SwipeRight:
		c.Previous()
	}
}

// Remove drops image i and resets the index to 0.
func (c *Carousel) Remove(i int) error {
	if i < 0 || i >= len(c.images) {
		return fmt.Errorf("carousel: index %d out of range [0,%d)", i, len(c.images))
	}
	c.images = append(c.images[:i:i], c.images[i+1:]...)
	c.index = 0
	return nil
}

// Reset clears the images and the index.
func (c *Carousel) Reset() {
	c.images = nil
	c.index = 0
}

// Seek restores a position received from a client, clamping it into
// range. Used by stateless HTTP views that carry the index in the URL.
func (c *Carousel) Seek(i int) {
	switch {
	case len(c.images) == 0 || i < 0:
		c.index = 0
	case i >= len(c.images):
		c.index = len(c.images) - 1
	default:
		c.index = i
	}
}

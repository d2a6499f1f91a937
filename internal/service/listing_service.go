package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"mime/multipart"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"marketplace-service/internal/carousel"
	"marketplace-service/internal/logging"
	"marketplace-service/internal/model"
	"marketplace-service/internal/repository"
)

// ObjectStore is the object storage half of the data service.
type ObjectStore interface {
	Upload(ctx context.Context, bucket, key string, src io.Reader) (string, error)
	PublicURL(bucket, path string) string
	Delete(ctx context.Context, bucket, path string) error
}

// ListingStore is the record store for listings.
type ListingStore interface {
	Create(ctx context.Context, l *model.Listing) error
	List(ctx context.Context, f repository.ListingFilter) ([]model.Listing, error)
	GetByID(ctx context.Context, id string) (*model.Listing, error)
}

// ImageFile is one picked file. Open is called once, right before upload.
type ImageFile struct {
	Name string
	Open func() (io.ReadCloser, error)
}

// ImageFromFileHeader adapts a multipart upload.
func ImageFromFileHeader(fh *multipart.FileHeader) ImageFile {
	return ImageFile{
		Name: fh.Filename,
		Open: func() (io.ReadCloser, error) { return fh.Open() },
	}
}

// Draft is a listing that has not been persisted yet.
type Draft struct {
	Title       string      `form:"title" validate:"min=3"`
	Description string      `form:"description"`
	Price       float64     `form:"price" validate:"gt=0,lt=10000000000"`
	Category    string      `form:"category" validate:"catalog"`
	SellerEmail string      `form:"seller_email" validate:"required,email,contact_email"`
	Images      []ImageFile `form:"image" validate:"min=1"`
	Location    string      `form:"location"`
}

// ParsePrice coerces form text to a number. Text that is not a number
// becomes NaN, which then fails the positive-price rule.
func ParsePrice(s string) float64 {
	p, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsInf(p, 0) {
		return math.NaN()
	}
	return p
}

// ListingOptions configures a ListingService.
type ListingOptions struct {
	Bucket          string
	DefaultLocation string
	CleanupOrphans  bool
	CleanupTimeout  time.Duration
}

// ListingService runs the submission pipeline and the listing queries.
type ListingService struct {
	listings ListingStore
	objects  ObjectStore
	catalog  model.Catalog
	validate *validator.Validate
	opts     ListingOptions
	logger   *logging.Logger
	newKey   func(fileName string) string
}

func NewListingService(
	listings ListingStore,
	objects ObjectStore,
	catalog model.Catalog,
	opts ListingOptions,
	logger *logging.Logger,
) *ListingService {
	if opts.DefaultLocation == "" {
		opts.DefaultLocation = model.DefaultLocation
	}
	if opts.CleanupTimeout <= 0 {
		opts.CleanupTimeout = 30 * time.Second
	}
	return &ListingService{
		listings: listings,
		objects:  objects,
		catalog:  catalog,
		validate: newValidator(catalog),
		opts:     opts,
		logger:   logger,
		newKey:   objectKey,
	}
}

// Catalog returns the category list the service validates against.
func (s *ListingService) Catalog() model.Catalog { return s.catalog }

// Validate checks a draft without touching the network. The price is
// checked as it will be stored, rounded to cents.
func (s *ListingService) Validate(d Draft) error {
	d.Price = model.RoundPrice(d.Price)
	return check(s.validate, d)
}

// Submit uploads the draft's images one at a time, in order, then inserts
// a single listing referencing their public URLs.
//
// The first failed upload aborts the submission: later files are not
// uploaded and nothing is inserted. With CleanupOrphans set, objects
// uploaded earlier in the same call are deleted best-effort after an
// upload or insert failure; otherwise they stay in storage.
func (s *ListingService) Submit(ctx context.Context, d Draft) (*model.Listing, error) {
	if err := s.Validate(d); err != nil {
		return nil, err
	}
	log := s.logger.WithFields(map[string]interface{}{
		"title":  d.Title,
		"images": len(d.Images),
	})

	paths := make([]string, 0, len(d.Images))
	for _, img := range d.Images {
		if err := ctx.Err(); err != nil {
			s.cleanup(ctx, paths)
			return nil, fmt.Errorf("submission cancelled before %s: %w", img.Name, err)
		}
		path, err := s.upload(ctx, img)
		if err != nil {
			log.Warnw("image upload failed", "file", img.Name, "uploaded", len(paths), "error", err)
			s.cleanup(ctx, paths)
			return nil, &UploadError{File: img.Name, Err: err}
		}
		paths = append(paths, path)
	}

	urls := make([]string, 0, len(paths))
	for _, p := range paths {
		urls = append(urls, s.objects.PublicURL(s.opts.Bucket, p))
	}
	encoded, err := model.EncodeImageURLs(urls)
	if err != nil {
		s.cleanup(ctx, paths)
		return nil, &InsertError{Err: err}
	}

	location := strings.TrimSpace(d.Location)
	if location == "" {
		location = s.opts.DefaultLocation
	}
	listing := &model.Listing{
		Title:       d.Title,
		Description: d.Description,
		Price:       model.RoundPrice(d.Price),
		Category:    d.Category,
		SellerEmail: d.SellerEmail,
		ImageURL:    encoded,
		Location:    location,
	}
	if err := s.listings.Create(ctx, listing); err != nil {
		log.Errorw("listing insert failed", "error", err)
		s.cleanup(ctx, paths)
		return nil, &InsertError{Err: err}
	}

	log.Infow("listing created", "id", listing.ID)
	return listing, nil
}

func (s *ListingService) upload(ctx context.Context, img ImageFile) (string, error) {
	if img.Open == nil {
		return "", errors.New("file is not readable")
	}
	rc, err := img.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()
	return s.objects.Upload(ctx, s.opts.Bucket, s.newKey(img.Name), rc)
}

// cleanup deletes objects left behind by a failed submission. It runs
// even if ctx was cancelled.
func (s *ListingService) cleanup(ctx context.Context, paths []string) {
	if !s.opts.CleanupOrphans || len(paths) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.CleanupTimeout)
	defer cancel()
	for _, p := range paths {
		if err := s.objects.Delete(ctx, s.opts.Bucket, p); err != nil {
			s.logger.Warnw("orphaned object left in storage", "bucket", s.opts.Bucket, "path", p, "error", err)
		}
	}
}

// ListQuery selects listings for the browse, category and search views.
type ListQuery struct {
	Category model.Category
	Search   string
	Limit    int
	Offset   int
}

// List returns matching listings newest first; no match is an empty slice.
func (s *ListingService) List(ctx context.Context, q ListQuery) ([]model.Listing, error) {
	f := repository.ListingFilter{
		Search: strings.TrimSpace(q.Search),
		Limit:  q.Limit,
		Offset: q.Offset,
	}
	if !q.Category.IsAll() {
		f.Category = q.Category.Label()
	}
	list, err := s.listings.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("ListingService.List: %w", err)
	}
	if list == nil {
		list = []model.Listing{}
	}
	return list, nil
}

// Get fetches one listing. A missing listing is reported through found,
// not as an error.
func (s *ListingService) Get(ctx context.Context, id string) (listing *model.Listing, found bool, err error) {
	l, err := s.listings.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("ListingService.Get: %w", err)
	}
	return l, true, nil
}

// Form is the state behind the creation page: the draft being edited
// and the carousel over its image previews.
type Form struct {
	Draft   Draft
	Preview *carousel.Carousel
}

func NewForm() *Form {
	return &Form{Preview: carousel.New(nil)}
}

// SetImages replaces the picked files; the preview restarts at 0.
func (f *Form) SetImages(files []ImageFile) {
	f.Draft.Images = append([]ImageFile(nil), files...)
	names := make([]string, len(files))
	for i, file := range files {
		names[i] = file.Name
	}
	f.Preview.Replace(names)
}

// RemoveImage drops one picked file; the preview goes back to 0.
func (f *Form) RemoveImage(i int) error {
	if err := f.Preview.Remove(i); err != nil {
		return err
	}
	f.Draft.Images = append(f.Draft.Images[:i:i], f.Draft.Images[i+1:]...)
	return nil
}

// Reset returns the form to its initial, empty state.
func (f *Form) Reset() {
	f.Draft = Draft{}
	f.Preview.Reset()
}

// SubmitForm submits f and resets it on success. On failure the form is
// left as is so the user can retry.
func (s *ListingService) SubmitForm(ctx context.Context, f *Form) (*model.Listing, error) {
	l, err := s.Submit(ctx, f.Draft)
	if err != nil {
		return nil, err
	}
	f.Reset()
	return l, nil
}

// objectKey is unique per upload regardless of the file name.
func objectKey(fileName string) string {
	return "public/" + uuid.NewString() + "-" + sanitizeFileName(fileName)
}

func sanitizeFileName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	out := strings.Trim(b.String(), ".")
	if len(out) > 100 {
		out = out[len(out)-100:]
	}
	if out == "" {
		return "image"
	}
	return out
}

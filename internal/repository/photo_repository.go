package repository

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrObjectExists is returned when uploading to a key that is already taken.
var ErrObjectExists = errors.New("object already exists")

// PhotoRepository stores listing images in GridFS. Each storage bucket is
// a GridFS bucket of the same name and object keys are GridFS file names.
type PhotoRepository struct {
	DB      *mongo.Database
	BaseURL string
}

func NewPhotoRepository(client *mongo.Client, dbName, baseURL string) *PhotoRepository {
	return &PhotoRepository{DB: client.Database(dbName), BaseURL: strings.TrimRight(baseURL, "/")}
}

func (r *PhotoRepository) bucket(name string) (*gridfs.Bucket, error) {
	return gridfs.NewBucket(r.DB, options.GridFSBucket().SetName(name))
}

// Upload writes the object and returns its path inside the bucket.
// Existing keys are never overwritten.
func (r *PhotoRepository) Upload(ctx context.Context, bucketName, key string, src io.Reader) (string, error) {
	b, err := r.bucket(bucketName)
	if err != nil {
		return "", fmt.Errorf("PhotoRepository.Upload: %w", err)
	}

	n, err := b.GetFilesCollection().CountDocuments(ctx, bson.M{"filename": key})
	if err != nil {
		return "", fmt.Errorf("PhotoRepository.Upload: %w", err)
	}
	if n > 0 {
		return "", fmt.Errorf("PhotoRepository.Upload %s: %w", key, ErrObjectExists)
	}

	stream, err := b.OpenUploadStream(key)
	if err != nil {
		return "", fmt.Errorf("PhotoRepository.Upload: %w", err)
	}
	if _, err := io.Copy(stream, ctxReader{ctx: ctx, r: src}); err != nil {
		_ = stream.Abort()
		return "", fmt.Errorf("PhotoRepository.Upload: %w", err)
	}
	if err := stream.Close(); err != nil {
		return "", fmt.Errorf("PhotoRepository.Upload: %w", err)
	}
	return key, nil
}

// PublicURL is where the photo handler serves the object.
func (r *PhotoRepository) PublicURL(bucketName, path string) string {
	segments := strings.Split(path, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return fmt.Sprintf("%s/api/objects/%s/%s", r.BaseURL, url.PathEscape(bucketName), strings.Join(segments, "/"))
}

// Open streams an object. The caller closes the reader.
func (r *PhotoRepository) Open(ctx context.Context, bucketName, path string) (io.ReadCloser, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	b, err := r.bucket(bucketName)
	if err != nil {
		return nil, 0, fmt.Errorf("PhotoRepository.Open: %w", err)
	}
	stream, err := b.OpenDownloadStreamByName(path)
	if errors.Is(err, gridfs.ErrFileNotFound) {
		return nil, 0, ErrNotFound
	}
	if err != nil {
		return nil, 0, fmt.Errorf("PhotoRepository.Open: %w", err)
	}
	return stream, stream.GetFile().Length, nil
}

// Delete removes an object. Deleting a missing object returns ErrNotFound.
func (r *PhotoRepository) Delete(ctx context.Context, bucketName, path string) error {
	b, err := r.bucket(bucketName)
	if err != nil {
		return fmt.Errorf("PhotoRepository.Delete: %w", err)
	}
	var doc struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	err = b.GetFilesCollection().FindOne(ctx, bson.M{"filename": path}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("PhotoRepository.Delete: %w", err)
	}
	if err := b.DeleteContext(ctx, doc.ID); err != nil {
		return fmt.Errorf("PhotoRepository.Delete: %w", err)
	}
	return nil
}

// ctxReader stops a copy once the request context is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

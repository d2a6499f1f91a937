package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"marketplace-service/internal/model"
	"marketplace-service/internal/repository"
)

// callLog records the order in which the fakes were hit.
type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (c *callLog) add(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, s)
}

func (c *callLog) list() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.calls...)
}

type fakeObjects struct {
	log     *callLog
	failOn  string // key suffix that makes Upload fail
	objects map[string][]byte
	deleted []string
}

func newFakeObjects(log *callLog) *fakeObjects {
	return &fakeObjects{log: log, objects: map[string][]byte{}}
}

func (f *fakeObjects) Upload(ctx context.Context, bucket, key string, src io.Reader) (string, error) {
	name := key[strings.LastIndex(key, "-")+1:]
	f.log.add("upload:" + name)
	if f.failOn != "" && strings.HasSuffix(key, f.failOn) {
		return "", errors.New("storage quota exceeded")
	}
	b, err := io.ReadAll(src)
	if err != nil {
		return "", err
	}
	f.objects[bucket+"/"+key] = b
	return key, nil
}

func (f *fakeObjects) PublicURL(bucket, path string) string {
	return "https://cdn.test/" + bucket + "/" + path
}

func (f *fakeObjects) Delete(ctx context.Context, bucket, path string) error {
	f.log.add("delete")
	f.deleted = append(f.deleted, path)
	delete(f.objects, bucket+"/"+path)
	return nil
}

type fakeListings struct {
	log     *callLog
	err     error
	rows    []model.Listing
	nextID  int
	nowFunc func() time.Time
}

func (f *fakeListings) Create(ctx context.Context, l *model.Listing) error {
	f.log.add("insert")
	if f.err != nil {
		return f.err
	}
	f.nextID++
	l.ID = fmt.Sprintf("id-%d", f.nextID)
	now := time.Now()
	if f.nowFunc != nil {
		now = f.nowFunc()
	}
	l.CreatedAt, l.UpdatedAt = now, now
	f.rows = append(f.rows, *l)
	return nil
}

func (f *fakeListings) List(ctx context.Context, flt repository.ListingFilter) ([]model.Listing, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []model.Listing
	for _, l := range f.rows {
		if flt.Category != "" && l.Category != flt.Category {
			continue
		}
		if flt.Search != "" && !strings.Contains(strings.ToLower(l.Title), strings.ToLower(flt.Search)) {
			continue
		}
		out = append(out, l)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeListings) GetByID(ctx context.Context, id string) (*model.Listing, error) {
	for _, l := range f.rows {
		if l.ID == id {
			l := l
			return &l, nil
		}
	}
	return nil, repository.ErrNotFound
}

func image(name string) ImageFile {
	return ImageFile{
		Name: name,
		Open: func() (io.ReadCloser, error) { return io.NopCloser(strings.NewReader("bytes of " + name)), nil },
	}
}

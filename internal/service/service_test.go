package service

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"github.com/templui/sneakerbase/internal/db"
	"github.com/templui/sneakerbase/internal/events"
	"github.com/templui/sneakerbase/internal/repository"
	"github.com/templui/sneakerbase/internal/storage"
)

// memoryStorage is an in-process stand-in for the object store.
type memoryStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
	err     error

	// beforeSave runs ahead of the conditional write
	beforeSave func(key string)
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{objects: map[string][]byte{}, types: map[string]string{}}
}

func (m *memoryStorage) put(key string, data []byte, contentType string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	m.types[key] = contentType
}

func (m *memoryStorage) Save(_ context.Context, key string, body io.Reader, _ int64, contentType string) error {
	if m.err != nil {
		return m.err
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	if m.beforeSave != nil {
		m.beforeSave(key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[key]; ok {
		return storage.ErrObjectExists
	}
	m.objects[key] = data
	m.types[key] = contentType
	return nil
}

func (m *memoryStorage) Stat(_ context.Context, key string) (*storage.ObjectInfo, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	if !ok {
		return nil, storage.ErrObjectNotFound
	}
	return &storage.ObjectInfo{Size: int64(len(data)), ContentType: m.types[key]}, nil
}

func (m *memoryStorage) PresignedGetURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://bucket.example.com/" + key + "?sig=get", nil
}

func (m *memoryStorage) PresignedPutURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://bucket.example.com/" + key + "?sig=put", nil
}

// recorder keeps published events in order.
type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) Publish(event events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recorder) last() events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == 0 {
		return events.Event{}
	}
	return r.events[len(r.events)-1]
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

type testEnv struct {
	db       *sqlx.DB
	storage  *memoryStorage
	events   *recorder
	users    *UserService
	sneakers *SneakerService
	ratings  *RatingService
	uploads  *UploadService
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	conn, err := db.Init("sqlite", "file::memory:?_pragma=foreign_keys(1)")
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, db.RunMigrations(conn.DB, "sqlite"))

	userRepo := repository.NewUserRepository(conn)
	sneakerRepo := repository.NewSneakerRepository(conn)
	ratingRepo := repository.NewRatingRepository(conn)
	store := newMemoryStorage()
	published := &recorder{}

	return &testEnv{
		db:       conn,
		storage:  store,
		events:   published,
		users:    NewUserService(userRepo, published),
		sneakers: NewSneakerService(sneakerRepo, ratingRepo, store, published, time.Hour, 1<<20),
		ratings:  NewRatingService(ratingRepo, sneakerRepo, userRepo, published),
		uploads:  NewUploadService(store, "test-secret", "http://localhost:8090/", false, 15*time.Minute, 1<<20),
	}
}

// uploadedImage stores a fake image and returns its reference.
func (e *testEnv) uploadedImage(t *testing.T) string {
	t.Helper()
	key := UploadKeyPrefix + strings.ReplaceAll(t.Name(), "/", "_") + time.Now().Format("150405.000000000")
	e.storage.put(key, []byte("image"), "image/png")
	return key
}

func ptr(s string) *string {
	return &s
}

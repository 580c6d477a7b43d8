package mocks

import (
	"bytes"
	"context"
	"io"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"issueapi/internal/storage"
)

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Put(ctx context.Context, key string, r io.Reader, opt storage.PutObjectOptions) (storage.ObjectInfo, error) {
	args := m.Called(ctx, key, r, opt)
	if f, ok := args.Get(0).(func(context.Context, string, io.Reader, storage.PutObjectOptions) storage.ObjectInfo); ok {
		return f(ctx, key, r, opt), args.Error(1)
	}
	return args.Get(0).(storage.ObjectInfo), args.Error(1)
}

func (m *MockStorage) Get(ctx context.Context, key string) (io.ReadCloser, storage.ObjectInfo, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Get(1).(storage.ObjectInfo), args.Error(2)
	}
	return args.Get(0).(io.ReadCloser), args.Get(1).(storage.ObjectInfo), args.Error(2)
}

func (m *MockStorage) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockStorage) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorage) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MemStorage is an in-memory Storage for tests that assert on stored content.
// FailPut and FailDelete inject errors for the given keys.
type MemStorage struct {
	mu         sync.Mutex
	Objects    map[string][]byte
	FailPut    map[string]error
	FailDelete map[string]error
	PutErr     error
}

func NewMemStorage() *MemStorage {
	return &MemStorage{
		Objects:    map[string][]byte{},
		FailPut:    map[string]error{},
		FailDelete: map[string]error{},
	}
}

func (s *MemStorage) Put(ctx context.Context, key string, r io.Reader, opt storage.PutObjectOptions) (storage.ObjectInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.PutErr != nil {
		return storage.ObjectInfo{}, s.PutErr
	}
	if err := s.FailPut[key]; err != nil {
		return storage.ObjectInfo{}, err
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return storage.ObjectInfo{}, err
	}
	s.Objects[key] = b
	return storage.ObjectInfo{Key: key, Size: int64(len(b)), ContentType: opt.ContentType, LastModified: time.Now()}, nil
}

func (s *MemStorage) Get(ctx context.Context, key string) (io.ReadCloser, storage.ObjectInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.Objects[key]
	if !ok {
		return nil, storage.ObjectInfo{}, storage.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(b)), storage.ObjectInfo{Key: key, Size: int64(len(b))}, nil
}

func (s *MemStorage) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.FailDelete[key]; err != nil {
		return err
	}
	delete(s.Objects, key)
	return nil
}

func (s *MemStorage) Exists(ctx context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.Objects[key]
	return ok, nil
}

func (s *MemStorage) Ping(ctx context.Context) error { return nil }

// Has reports whether key is stored.
func (s *MemStorage) Has(key string) bool {
	ok, _ := s.Exists(context.Background(), key)
	return ok
}

// Len returns the number of stored objects.
func (s *MemStorage) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Objects)
}

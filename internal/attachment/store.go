// Package attachment persists uploaded issue files under server-generated names,
// derives thumbnails for photos and removes files once they are superseded.
package attachment

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"issueapi/internal/apperr"
	"issueapi/internal/config"
	"issueapi/internal/metrics"
	"issueapi/internal/model"
	"issueapi/internal/storage"
)

// ThumbDir is the key prefix of derived thumbnails.
const ThumbDir = "thumbs/"

// Stored describes a file written by Store. ThumbURL is set for photo slots.
type Stored struct {
	Slot     model.Slot
	Key      string
	URL      string
	ThumbURL *string
}

// Store writes attachments to a storage.Storage and maps keys to public URLs.
type Store struct {
	storage  storage.Storage
	prefix   string
	maxBytes int64
	log      *zap.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

// NewStore returns a Store publishing files under cfg.URLPrefix.
func NewStore(st storage.Storage, cfg config.StorageConfig, log *zap.Logger, m *metrics.Metrics) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	prefix := strings.TrimRight(cfg.URLPrefix, "/")
	if prefix == "" {
		prefix = "/uploads"
	}
	maxBytes := cfg.MaxUploadBytes
	if maxBytes <= 0 {
		maxBytes = config.DefaultMaxUploadBytes
	}
	return &Store{storage: st, prefix: prefix, maxBytes: maxBytes, log: log, metrics: m, now: time.Now}
}

// MaxBytes is the per-file size cap.
func (s *Store) MaxBytes() int64 { return s.maxBytes }

// Store validates p for slot and writes it under a fresh name. For photo slots
// a thumbnail is derived; failing to derive one is logged and not returned.
func (s *Store) Store(ctx context.Context, slot model.Slot, p model.Payload) (Stored, error) {
	field := string(slot)
	if int64(len(p.Data)) > s.maxBytes {
		s.metrics.Rejected(field, "size")
		return Stored{}, apperr.AttachmentRejected(field, fmt.Sprintf("file exceeds the %d byte limit", s.maxBytes))
	}
	if len(p.Data) == 0 {
		s.metrics.Rejected(field, "empty")
		return Stored{}, apperr.AttachmentRejected(field, "file is empty")
	}
	ext, contentType, ok := classify(slot, p)
	if !ok {
		s.metrics.Rejected(field, "type")
		return Stored{}, apperr.AttachmentRejected(field, "file type is not allowed")
	}

	key, err := s.newKey(slot, ext)
	if err != nil {
		return Stored{}, apperr.Storage("generate filename", err)
	}
	if _, err := s.storage.Put(ctx, key, bytes.NewReader(p.Data), storage.PutObjectOptions{
		Size:        int64(len(p.Data)),
		ContentType: contentType,
	}); err != nil {
		return Stored{}, apperr.Storage("store attachment", err)
	}
	s.metrics.Stored(field)
	s.log.Debug("attachment_stored", zap.String("slot", field), zap.String("key", key), zap.Int("bytes", len(p.Data)))

	out := Stored{Slot: slot, Key: key, URL: s.URL(key)}
	if slot.IsImage() {
		thumb := s.URL(thumbKey(key))
		out.ThumbURL = &thumb
		if err := s.thumbnailFrom(ctx, key, p.Data); err != nil {
			s.log.Warn("thumbnail_failed", zap.String("key", key), zap.Error(err))
		}
	}
	return out, nil
}

// URL returns the public URL of key.
func (s *Store) URL(key string) string {
	return s.prefix + "/" + key
}

// KeyFromURL extracts the storage key from a URL produced by URL.
func (s *Store) KeyFromURL(url string) (string, bool) {
	key, ok := strings.CutPrefix(url, s.prefix+"/")
	if !ok || !validKey(key) {
		return "", false
	}
	return key, true
}

// ThumbnailURL computes the thumbnail URL of a photo URL without any I/O.
func (s *Store) ThumbnailURL(photoURL string) (string, bool) {
	key, ok := s.KeyFromURL(photoURL)
	if !ok || strings.HasPrefix(key, ThumbDir) {
		return "", false
	}
	return s.URL(thumbKey(key)), true
}

// Delete removes the file behind url together with its thumbnail. Missing files
// are ignored; other failures are logged and counted, never returned.
func (s *Store) Delete(ctx context.Context, url string) {
	key, ok := s.KeyFromURL(url)
	if !ok {
		s.log.Warn("attachment_delete_skipped", zap.String("url", url), zap.String("reason", "not a managed url"))
		return
	}
	keys := []string{key}
	if !strings.HasPrefix(key, ThumbDir) {
		keys = append(keys, thumbKey(key))
	}
	for _, k := range keys {
		if err := s.storage.Delete(ctx, k); err != nil && !errors.Is(err, storage.ErrNotFound) {
			s.metrics.CleanupFailed()
			s.log.Error("attachment_delete_failed", zap.String("key", k), zap.Error(err))
		}
	}
}

// DeleteAll is Delete for every url.
func (s *Store) DeleteAll(ctx context.Context, urls []string) {
	for _, u := range urls {
		s.Delete(ctx, u)
	}
}

// Open streams a stored file for serving.
func (s *Store) Open(ctx context.Context, key string) (io.ReadCloser, storage.ObjectInfo, error) {
	if !validKey(key) {
		return nil, storage.ObjectInfo{}, storage.ErrNotFound
	}
	return s.storage.Get(ctx, key)
}

func (s *Store) newKey(slot model.Slot, ext string) (string, error) {
	var b [6]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s_%d_%s%s", filenamePrefix(slot), s.now().UnixMilli(), hex.EncodeToString(b[:]), ext), nil
}

func validKey(key string) bool {
	return key != "" && !strings.Contains(key, "..") && !strings.HasPrefix(key, "/") && !strings.Contains(key, `\`)
}

// Package gallery keeps every committed session photo and persists the whole
// collection under one store key.
package gallery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"

	"github.com/cjeanneret/BoothGo/internal/debug"
	"github.com/cjeanneret/BoothGo/internal/photo"
	"github.com/cjeanneret/BoothGo/internal/store"
)

// Key is the store key holding the serialized collection.
const Key = "gallery"

// Entry is one item of the gallery display list.
type Entry struct {
	Index   int       `json:"index"` // 1-based
	ID      string    `json:"id"`
	TakenAt time.Time `json:"taken_at"`
	URL     string    `json:"url"`
}

// record is the persisted form of a photo.
type record struct {
	ID      string    `json:"id"`
	TakenAt time.Time `json:"taken_at"`
	DataURL string    `json:"data_url"`
}

// Store is the in-memory collection plus its persistent copy. The collection
// is read from the KV once, at Open; renders never touch the KV again.
//
// There is no deletion or cap: the collection grows with every commit.
type Store struct {
	kv store.KV

	mu     sync.RWMutex
	photos []photo.Photo
}

var (
	encoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	decoder, _ = zstd.NewReader(nil)
)

// Open loads the collection from kv. A missing key is an empty gallery.
func Open(ctx context.Context, kv store.KV) (*Store, error) {
	s := &Store{kv: kv}
	blob, err := kv.Get(ctx, Key)
	if errors.Is(err, store.ErrNotFound) {
		debug.Verbose("gallery: empty")
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("gallery: load: %w", err)
	}
	photos, err := decode(blob)
	if err != nil {
		return nil, fmt.Errorf("gallery: load: %w", err)
	}
	s.photos = photos
	debug.Info("gallery: loaded %d photos", len(photos))
	return s, nil
}

// Commit appends photos and overwrites the stored collection with the full
// result. If the write fails, the append is undone and the error returned.
func (s *Store) Commit(ctx context.Context, photos []photo.Photo) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := len(s.photos)
	s.photos = append(s.photos, photos...)

	blob, err := encode(s.photos)
	if err == nil {
		err = s.kv.Put(ctx, Key, blob)
	}
	if err != nil {
		s.photos = s.photos[:prev]
		return fmt.Errorf("gallery: commit %d photos: %w", len(photos), err)
	}
	debug.Info("gallery: committed %d photos (%d total, %d bytes stored)", len(photos), len(s.photos), len(blob))
	return nil
}

// Render builds the display list. URL points at the gallery PNG endpoint.
func (s *Store) Render() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Entry, len(s.photos))
	for i, p := range s.photos {
		out[i] = Entry{
			Index:   i + 1,
			ID:      p.ID.String(),
			TakenAt: p.TakenAt,
			URL:     fmt.Sprintf("/api/gallery/%d", i+1),
		}
	}
	return out
}

// Len returns the number of stored photos.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.photos)
}

// Photo returns the index-th photo (1-based).
func (s *Store) Photo(index int) (photo.Photo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if index < 1 || index > len(s.photos) {
		return photo.Photo{}, false
	}
	return s.photos[index-1], true
}

// Photos returns a copy of the collection in commit order.
func (s *Store) Photos() []photo.Photo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.photos)
}

func encode(photos []photo.Photo) ([]byte, error) {
	recs := make([]record, len(photos))
	for i, p := range photos {
		recs[i] = record{ID: p.ID.String(), TakenAt: p.TakenAt, DataURL: p.DataURL()}
	}
	raw, err := json.Marshal(recs)
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}
	return encoder.EncodeAll(raw, nil), nil
}

func decode(blob []byte) ([]photo.Photo, error) {
	raw, err := decoder.DecodeAll(blob, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress: %w", err)
	}
	var recs []record
	if err := json.Unmarshal(raw, &recs); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}
	photos := make([]photo.Photo, 0, len(recs))
	for i, r := range recs {
		id, err := uuid.Parse(r.ID)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		png, err := photo.FromDataURL(r.DataURL)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		photos = append(photos, photo.Photo{ID: id, PNG: png, TakenAt: r.TakenAt})
	}
	return photos, nil
}

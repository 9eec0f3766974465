// Package cache keeps short-lived participant detail lookups in Badger so repeated
// modal opens do not hit the participant API.
package cache

import (
	"encoding/json/v2"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/gdgscriet/studyjam-server/internal/domain"
)

const participantPrefix = "participant:"

// ErrMiss is returned when a key is absent or expired.
var ErrMiss = errors.New("cache: miss")

// Cache is a TTL cache for participant details.
type Cache struct {
	db     *badger.DB
	ttl    time.Duration
	logger *slog.Logger
}

// Open opens a cache at dir. An empty dir keeps everything in memory.
func Open(dir string, ttl time.Duration, logger *slog.Logger) (*Cache, error) {
	opts := badger.DefaultOptions(dir)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil
	opts.CompactL0OnClose = true

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Cache{db: db, ttl: ttl, logger: logger}, nil
}

// Close flushes and closes the cache.
func (c *Cache) Close() error {
	return c.db.Close()
}

// GetParticipant returns a cached participant or ErrMiss.
func (c *Cache) GetParticipant(id string) (*domain.Participant, error) {
	var p domain.Participant
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(participantPrefix + id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &p)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("read participant %s: %w", id, err)
	}
	return &p, nil
}

// PutParticipant stores p under its ID with the cache TTL.
func (c *Cache) PutParticipant(p *domain.Participant) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal participant: %w", err)
	}
	return c.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(participantPrefix+string(p.ID)), data)
		if c.ttl > 0 {
			e = e.WithTTL(c.ttl)
		}
		return txn.SetEntry(e)
	})
}

// Clear drops every cached participant. Called after the record set is replaced.
func (c *Cache) Clear() error {
	if err := c.db.DropPrefix([]byte(participantPrefix)); err != nil {
		return fmt.Errorf("drop participant cache: %w", err)
	}
	c.logger.Debug("participant cache cleared")
	return nil
}

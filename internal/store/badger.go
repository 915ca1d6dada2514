// Threadrec - Forum Thread Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threadrec

package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/threadrec/internal/metrics"
	"github.com/tomtom215/threadrec/internal/recommend"
)

// Key layout. Event keys embed the zero-padded arrival time so a prefix
// scan returns them in chronological order.
const (
	threadKeyPrefix   = "thread:"
	eventKeyPrefix    = "event:"
	dislikedKeyPrefix = "disliked:"
	clickedKeyPrefix  = "clicked:"
	settingsKey       = "settings"
)

// Config configures the badger backend.
type Config struct {
	// Path is the database directory. Ignored when InMemory is set.
	Path string

	// InMemory keeps all data in RAM; nothing survives Close.
	InMemory bool

	// SyncWrites fsyncs every commit.
	SyncWrites bool

	// GCDiscardRatio is passed to RunValueLogGC.
	GCDiscardRatio float64
}

// DefaultConfig returns an on-disk configuration under ./data/threadrec.
func DefaultConfig() Config {
	return Config{
		Path:           "./data/threadrec",
		SyncWrites:     true,
		GCDiscardRatio: 0.5,
	}
}

// BadgerStore implements Backend on top of BadgerDB.
type BadgerStore struct {
	db      *badger.DB
	cfg     Config
	logger  zerolog.Logger
	nowFunc func() time.Time
}

var _ Backend = (*BadgerStore)(nil)

// Open opens (or creates) the database described by cfg.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func Open(cfg Config, logger zerolog.Logger) (*BadgerStore, error) {
	if cfg.GCDiscardRatio <= 0 || cfg.GCDiscardRatio >= 1 {
		cfg.GCDiscardRatio = 0.5
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.Path == "" {
			return nil, errors.New("store: path is required for on-disk storage")
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts.SyncWrites = cfg.SyncWrites
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %q: %w", cfg.Path, err)
	}

	logger = logger.With().Str("component", "store").Logger()
	logger.Info().
		Str("path", cfg.Path).
		Bool("in_memory", cfg.InMemory).
		Bool("sync_writes", cfg.SyncWrites).
		Msg("Store opened")

	return &BadgerStore{db: db, cfg: cfg, logger: logger, nowFunc: time.Now}, nil
}

// Close flushes and closes the database.
func (s *BadgerStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close badger: %w", err)
	}
	return nil
}

// Ping fails once the database has been closed.
func (s *BadgerStore) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.db.IsClosed() {
		return errors.New("store: database closed")
	}
	return s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(settingsKey))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
}

// RunGC runs one value log GC pass. It reports false when badger found
// nothing worth rewriting.
func (s *BadgerStore) RunGC() (bool, error) {
	if s.cfg.InMemory {
		return false, nil
	}
	err := s.db.RunValueLogGC(s.cfg.GCDiscardRatio)
	switch {
	case err == nil:
		metrics.RecordValueLogGC("rewritten")
		return true, nil
	case errors.Is(err, badger.ErrNoRewrite), errors.Is(err, badger.ErrRejected):
		metrics.RecordValueLogGC("noop")
		return false, nil
	default:
		metrics.RecordValueLogGC("error")
		return false, fmt.Errorf("value log gc: %w", err)
	}
}

// PutThreads upserts threads in a single write batch. Threads without an
// id are skipped.
func (s *BadgerStore) PutThreads(ctx context.Context, threads []recommend.Thread) (n int, err error) {
	defer observe("put_threads", time.Now(), &err)
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()

	for i := range threads {
		if threads[i].ThreadID == "" {
			continue
		}
		data, err := json.Marshal(&threads[i])
		if err != nil {
			return 0, fmt.Errorf("marshal thread %s: %w", threads[i].ThreadID, err)
		}
		if err := wb.Set([]byte(threadKeyPrefix+threads[i].ThreadID), data); err != nil {
			return 0, fmt.Errorf("set thread %s: %w", threads[i].ThreadID, err)
		}
		n++
	}
	if err := wb.Flush(); err != nil {
		return 0, fmt.Errorf("flush threads: %w", err)
	}
	return n, nil
}

// AppendReadEvents stores events. A zero CreatedAt is stamped with the
// current time.
func (s *BadgerStore) AppendReadEvents(ctx context.Context, events []recommend.ReadEvent) (n int, err error) {
	defer observe("append_events", time.Now(), &err)
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()

	for i := range events {
		ev := events[i]
		if ev.ThreadID == "" {
			continue
		}
		if ev.CreatedAt.IsZero() {
			ev.CreatedAt = s.nowFunc()
		}
		data, err := json.Marshal(&ev)
		if err != nil {
			return 0, fmt.Errorf("marshal event for %s: %w", ev.ThreadID, err)
		}
		if err := wb.Set(eventKey(ev.CreatedAt), data); err != nil {
			return 0, fmt.Errorf("set event for %s: %w", ev.ThreadID, err)
		}
		n++
	}
	if err := wb.Flush(); err != nil {
		return 0, fmt.Errorf("flush events: %w", err)
	}
	return n, nil
}

func eventKey(at time.Time) []byte {
	nanos := at.UnixNano()
	if nanos < 0 {
		nanos = 0
	}
	return []byte(eventKeyPrefix + fmt.Sprintf("%020d", nanos) + ":" + uuid.NewString())
}

// AllThreads returns every stored thread ordered by id.
func (s *BadgerStore) AllThreads(ctx context.Context) (threads []recommend.Thread, err error) {
	defer observe("all_threads", time.Now(), &err)
	err = scan(ctx, s, threadKeyPrefix, func(t recommend.Thread) {
		threads = append(threads, t)
	})
	return threads, err
}

// AllReadEvents returns the reading history oldest first.
func (s *BadgerStore) AllReadEvents(ctx context.Context) (events []recommend.ReadEvent, err error) {
	defer observe("all_events", time.Now(), &err)
	err = scan(ctx, s, eventKeyPrefix, func(ev recommend.ReadEvent) {
		events = append(events, ev)
	})
	return events, err
}

func (s *BadgerStore) AllDislikedThreads(ctx context.Context) (disliked []recommend.DislikedThread, err error) {
	defer observe("all_disliked", time.Now(), &err)
	err = scan(ctx, s, dislikedKeyPrefix, func(d recommend.DislikedThread) {
		disliked = append(disliked, d)
	})
	return disliked, err
}

// GetThread returns recommend.ErrNotFound for unknown ids.
func (s *BadgerStore) GetThread(ctx context.Context, threadID string) (t recommend.Thread, err error) {
	defer observe("get_thread", time.Now(), &err)
	found, err := s.get(ctx, threadKeyPrefix+threadID, &t)
	if err != nil {
		return recommend.Thread{}, err
	}
	if !found {
		return recommend.Thread{}, fmt.Errorf("thread %s: %w", threadID, recommend.ErrNotFound)
	}
	return t, nil
}

// PutDisliked upserts d and reports whether the id was new.
func (s *BadgerStore) PutDisliked(ctx context.Context, d recommend.DislikedThread) (added bool, err error) {
	defer observe("put_disliked", time.Now(), &err)
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if d.ThreadID == "" {
		return false, recommend.ErrInvalidThreadID
	}

	data, err := json.Marshal(&d)
	if err != nil {
		return false, fmt.Errorf("marshal disliked %s: %w", d.ThreadID, err)
	}

	key := []byte(dislikedKeyPrefix + d.ThreadID)
	err = s.db.Update(func(txn *badger.Txn) error {
		_, getErr := txn.Get(key)
		switch {
		case errors.Is(getErr, badger.ErrKeyNotFound):
			added = true
		case getErr != nil:
			return fmt.Errorf("get disliked: %w", getErr)
		}
		return txn.Set(key, data)
	})
	return added, err
}

// DeleteDisliked returns recommend.ErrNotFound when threadID was not disliked.
func (s *BadgerStore) DeleteDisliked(ctx context.Context, threadID string) (err error) {
	defer observe("delete_disliked", time.Now(), &err)
	if err := ctx.Err(); err != nil {
		return err
	}

	key := []byte(dislikedKeyPrefix + threadID)
	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("disliked %s: %w", threadID, recommend.ErrNotFound)
		} else if err != nil {
			return fmt.Errorf("get disliked: %w", err)
		}
		return txn.Delete(key)
	})
}

// GetSettings returns zero Settings when none were saved.
func (s *BadgerStore) GetSettings(ctx context.Context) (settings recommend.Settings, err error) {
	defer observe("get_settings", time.Now(), &err)
	if _, err := s.get(ctx, settingsKey, &settings); err != nil {
		return recommend.Settings{}, err
	}
	return settings, nil
}

func (s *BadgerStore) SaveSettings(ctx context.Context, settings recommend.Settings) (err error) {
	defer observe("save_settings", time.Now(), &err)
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(&settings)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(settingsKey), data)
	})
}

// ClickedIDs returns the clicked set ordered by id.
func (s *BadgerStore) ClickedIDs(ctx context.Context) (ids []string, err error) {
	defer observe("clicked_ids", time.Now(), &err)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	prefix := []byte(clickedKeyPrefix)
	err = s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			ids = append(ids, string(it.Item().Key()[len(prefix):]))
		}
		return nil
	})
	return ids, err
}

func (s *BadgerStore) AddClicked(ctx context.Context, threadID string) (err error) {
	defer observe("add_clicked", time.Now(), &err)
	if err := ctx.Err(); err != nil {
		return err
	}
	if threadID == "" {
		return recommend.ErrInvalidThreadID
	}
	return s.db.Update(func(txn *badger.Txn) error {
		stamp := strconv.FormatInt(s.nowFunc().Unix(), 10)
		return txn.Set([]byte(clickedKeyPrefix+threadID), []byte(stamp))
	})
}

func (s *BadgerStore) ClearClicked(ctx context.Context) (err error) {
	defer observe("clear_clicked", time.Now(), &err)
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.db.DropPrefix([]byte(clickedKeyPrefix)); err != nil {
		return fmt.Errorf("drop clicked: %w", err)
	}
	return nil
}

// get decodes the value at key into dst and reports whether it existed.
func (s *BadgerStore) get(ctx context.Context, key string, dst any) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	found := false
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("get %s: %w", key, err)
		}
		found = true
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, dst)
		})
	})
	return found, err
}

// scan decodes every value under prefix. Records that fail to decode are
// logged and skipped so one bad entry cannot empty a whole snapshot.
func scan[T any](ctx context.Context, s *BadgerStore, prefix string, fn func(T)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p := []byte(prefix)
	return s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = p
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := it.Item()
			var v T
			err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &v)
			})
			if err != nil {
				s.logger.Warn().Err(err).Str("key", string(item.Key())).Msg("Skipping undecodable record")
				continue
			}
			fn(v)
		}
		return nil
	})
}

// observe records op's latency. Missing records are a normal answer, not a
// store failure.
func observe(op string, start time.Time, err *error) {
	e := *err
	if errors.Is(e, recommend.ErrNotFound) {
		e = nil
	}
	metrics.RecordStoreOperation(op, time.Since(start), e)
}

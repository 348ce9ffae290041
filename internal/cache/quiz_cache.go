package cache

import (
	"context"
	"errors"
	"math"
	"sort"
	"sync"

	"github.com/DMlogobardi/Quizy-sub001/internal/model"
)

// ErrQuizExists is returned by Insert when the partition already holds
// an entry with the same quiz id.
var ErrQuizExists = errors.New("quiz already cached")

// ErrNotCached is returned when a lookup or removal targets an id (or
// a whole partition) that is not in the cache.
var ErrNotCached = errors.New("quiz not cached")

// ErrInvalidQuizID is returned when an operation is given a quiz with
// an unset id; only persisted quizzes belong in the cache.
var ErrInvalidQuizID = errors.New("invalid quiz id")

// partitionShards spreads users over independent locks; requests for
// different users must never contend on a common mutex.
const partitionShards = 32

// partition holds one user's entries plus how far the partition is
// known to mirror the store.  loadedThrough is the highest page that
// has been loaded from the store contiguously from page zero; pages in
// that range hold exactly the user's lowest-id rows, so they can be
// served without consulting the store.  Single rows seeded outside a
// loaded page (by a point read or a create) are present in the bag but
// never make a page authoritative on their own.
type partition struct {
	entries       map[uint64]*model.Quiz
	loadedThrough int
}

func newPartition() *partition {
	return &partition{entries: make(map[uint64]*model.Quiz), loadedThrough: -1}
}

type partitionShard struct {
	mu    sync.RWMutex
	parts map[uint64]*partition // user id -> partition
}

// QuizCache is a process-wide map of each user's quizzes, keyed by
// quiz id inside the user's partition.  It lives for the process
// lifetime, is never persisted and starts empty after a restart.
// Reads hand out entries only after the reattacher has rebound them
// to the caller's context; no cache lock is held while the reattacher
// talks to the persistence layer.
type QuizCache struct {
	shards   [partitionShards]partitionShard
	reattach Reattacher
}

// NewQuizCache builds an empty cache.  The reattacher is a required
// dependency, not a nicety: without it long-lived entries would leak
// dead persistence contexts to callers.
func NewQuizCache(reattach Reattacher) *QuizCache {
	c := &QuizCache{reattach: reattach}
	for i := range c.shards {
		c.shards[i].parts = make(map[uint64]*partition)
	}
	return c
}

func (c *QuizCache) shardFor(userID uint64) *partitionShard {
	return &c.shards[userID%partitionShards]
}

// Insert records the quiz in the user's partition.  A duplicate id for
// that user fails with ErrQuizExists and leaves the original entry in
// place.
func (c *QuizCache) Insert(userID uint64, q *model.Quiz) error {
	if q == nil || q.ID == 0 {
		return ErrInvalidQuizID
	}
	s := c.shardFor(userID)
	s.mu.Lock()
	defer s.mu.Unlock()
	part := s.parts[userID]
	if part == nil {
		part = newPartition()
		s.parts[userID] = part
	}
	if _, dup := part.entries[q.ID]; dup {
		return ErrQuizExists
	}
	part.entries[q.ID] = q
	return nil
}

// GetAll returns every quiz in the user's partition, reattached to the
// current context.  An absent or empty partition is ErrNotCached.
func (c *QuizCache) GetAll(ctx context.Context, userID uint64) ([]*model.Quiz, error) {
	snapshot := c.snapshot(userID)
	if len(snapshot) == 0 {
		return nil, ErrNotCached
	}
	return c.reattachAll(ctx, snapshot)
}

// GetOne returns the reattached entry, or nil without error when the
// user has no cached quiz with that id.
func (c *QuizCache) GetOne(ctx context.Context, userID, quizID uint64) (*model.Quiz, error) {
	s := c.shardFor(userID)
	s.mu.RLock()
	var q *model.Quiz
	if part := s.parts[userID]; part != nil {
		q = part.entries[quizID]
	}
	s.mu.RUnlock()
	if q == nil {
		return nil, nil
	}
	return c.reattach.Reattach(ctx, q)
}

// GetPage returns up to size entries starting at offset page*size,
// ordered by ascending quiz id.  A missing partition, an empty one, an
// offset past the end or one too large to compute all yield an empty
// page, not an error.
func (c *QuizCache) GetPage(ctx context.Context, userID uint64, page, size int) ([]*model.Quiz, error) {
	if page < 0 || size <= 0 {
		return nil, nil
	}
	// page*size+size must stay representable or the slice bounds wrap.
	if page > (math.MaxInt-size)/size {
		return nil, nil
	}
	snapshot := c.snapshot(userID)
	sort.Slice(snapshot, func(i, j int) bool { return snapshot[i].ID < snapshot[j].ID })

	start := page * size
	if start >= len(snapshot) {
		return nil, nil
	}
	end := start + size
	if end > len(snapshot) {
		end = len(snapshot)
	}
	return c.reattachAll(ctx, snapshot[start:end])
}

// MarkPageLoaded records that the given store page was written into
// the partition in full.  The trusted range only ever grows
// contiguously from page zero; marking a page out of order is a no-op,
// its rows stay in the bag but the page is not served without a store
// round trip.
func (c *QuizCache) MarkPageLoaded(userID uint64, page int) {
	if page < 0 {
		return
	}
	s := c.shardFor(userID)
	s.mu.Lock()
	defer s.mu.Unlock()
	part := s.parts[userID]
	if part == nil {
		part = newPartition()
		s.parts[userID] = part
	}
	if page == part.loadedThrough+1 {
		part.loadedThrough = page
	}
}

// PageLoaded reports whether the given page lies inside the partition's
// store-loaded range, i.e. whether a GetPage result for it is the
// user's actual page and not a fragment of seeded rows.
func (c *QuizCache) PageLoaded(userID uint64, page int) bool {
	if page < 0 {
		return false
	}
	s := c.shardFor(userID)
	s.mu.RLock()
	defer s.mu.RUnlock()
	part := s.parts[userID]
	return part != nil && page <= part.loadedThrough
}

// RemoveOne deletes the entry.  A missing partition or id is
// ErrNotCached.  A successful removal shrinks the store-loaded range
// by one page: later rows shift into the hole, so the last trusted
// page can no longer be served as stored.
func (c *QuizCache) RemoveOne(userID, quizID uint64) error {
	s := c.shardFor(userID)
	s.mu.Lock()
	defer s.mu.Unlock()
	part := s.parts[userID]
	if part == nil {
		return ErrNotCached
	}
	if _, ok := part.entries[quizID]; !ok {
		return ErrNotCached
	}
	delete(part.entries, quizID)
	if part.loadedThrough >= 0 {
		part.loadedThrough--
	}
	return nil
}

// ReplaceOne overwrites an existing entry with the same id.
func (c *QuizCache) ReplaceOne(userID uint64, q *model.Quiz) error {
	if q == nil || q.ID == 0 {
		return ErrInvalidQuizID
	}
	s := c.shardFor(userID)
	s.mu.Lock()
	defer s.mu.Unlock()
	part := s.parts[userID]
	if part == nil {
		return ErrNotCached
	}
	if _, ok := part.entries[q.ID]; !ok {
		return ErrNotCached
	}
	part.entries[q.ID] = q
	return nil
}

// Clear drops the user's whole partition, store-loaded range included.
// Used after role elevation: cached quizzes are role-scoped and must
// be re-read under the new role.
func (c *QuizCache) Clear(userID uint64) {
	s := c.shardFor(userID)
	s.mu.Lock()
	delete(s.parts, userID)
	s.mu.Unlock()
}

// snapshot copies the partition's entries under the read lock so the
// lock is released before any reattachment call can block.
func (c *QuizCache) snapshot(userID uint64) []*model.Quiz {
	s := c.shardFor(userID)
	s.mu.RLock()
	defer s.mu.RUnlock()
	part := s.parts[userID]
	if part == nil {
		return nil
	}
	out := make([]*model.Quiz, 0, len(part.entries))
	for _, q := range part.entries {
		out = append(out, q)
	}
	return out
}

func (c *QuizCache) reattachAll(ctx context.Context, quizzes []*model.Quiz) ([]*model.Quiz, error) {
	out := make([]*model.Quiz, 0, len(quizzes))
	for _, q := range quizzes {
		fresh, err := c.reattach.Reattach(ctx, q)
		if err != nil {
			return nil, err
		}
		out = append(out, fresh)
	}
	return out, nil
}

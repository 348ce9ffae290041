// Package session tracks which credentials are currently live.  The
// registry is a revocation list layered over stateless signed tokens:
// membership means "not revoked", it is not a validity proof, so the
// codec must still re-check signature and expiry on every use.  State
// lives only in process memory and is gone on restart.
package session

import (
	"errors"
	"hash/fnv"
	"sync"

	"github.com/DMlogobardi/Quizy-sub001/internal/model"
)

// ErrNotRegistered is returned by IdentityOf for a credential that has
// been revoked or was never registered.
var ErrNotRegistered = errors.New("credential not registered")

// shardCount spreads unrelated credentials over independent locks so
// one user's logout never serializes another user's request.
const shardCount = 32

type shard struct {
	mu      sync.RWMutex
	entries map[string]*model.User
}

// Registry maps live credential strings to the authenticated user.
// All methods are safe for concurrent use; a Remove racing an Add for
// the same key resolves to last writer wins.
type Registry struct {
	shards [shardCount]shard
}

func NewRegistry() *Registry {
	r := &Registry{}
	for i := range r.shards {
		r.shards[i].entries = make(map[string]*model.User)
	}
	return r
}

func (r *Registry) shardFor(credential string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(credential))
	return &r.shards[h.Sum32()%shardCount]
}

// Add records the credential as live.  Re-adding an existing key simply
// overwrites it.
func (r *Registry) Add(credential string, u *model.User) {
	s := r.shardFor(credential)
	s.mu.Lock()
	s.entries[credential] = u
	s.mu.Unlock()
}

// Remove revokes the credential.  Removing an absent key is a no-op.
func (r *Registry) Remove(credential string) {
	s := r.shardFor(credential)
	s.mu.Lock()
	delete(s.entries, credential)
	s.mu.Unlock()
}

// IsAlive reports whether the credential is currently registered.
func (r *Registry) IsAlive(credential string) bool {
	s := r.shardFor(credential)
	s.mu.RLock()
	_, ok := s.entries[credential]
	s.mu.RUnlock()
	return ok
}

// IdentityOf returns the user registered under the credential.
func (r *Registry) IdentityOf(credential string) (*model.User, error) {
	s := r.shardFor(credential)
	s.mu.RLock()
	u, ok := s.entries[credential]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotRegistered
	}
	return u, nil
}

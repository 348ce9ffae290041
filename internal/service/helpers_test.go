package service

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/crypto/bcrypt"

	"github.com/DMlogobardi/Quizy-sub001/internal/model"
	"github.com/DMlogobardi/Quizy-sub001/internal/queue"
	"github.com/DMlogobardi/Quizy-sub001/internal/repository"
	"github.com/DMlogobardi/Quizy-sub001/internal/utils"
)

// fakeUserStore is an in-memory UserStore.
type fakeUserStore struct {
	mu     sync.Mutex
	users  map[uint64]*model.User
	nextID uint64
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[uint64]*model.User{}}
}

func (s *fakeUserStore) Create(_ context.Context, u *model.User, password string, cost int) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	name := strings.ToLower(u.Username)
	for _, existing := range s.users {
		if existing.Username == name {
			return 0, repository.ErrUserExists
		}
	}
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	s.nextID++
	u.ID = s.nextID
	u.Username = name
	u.PasswordHash = hash
	s.users[u.ID] = u
	return u.ID, nil
}

// Reads hand out copies, the way a row scan materializes a fresh
// struct per call.
func (s *fakeUserStore) FindByUsername(_ context.Context, username string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == strings.ToLower(username) {
			clone := *u
			return &clone, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (s *fakeUserStore) FindByID(_ context.Context, id uint64) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (s *fakeUserStore) Promote(_ context.Context, id uint64, role model.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.Role = role
	switch role {
	case model.RoleCreator:
		u.IsCreator = true
	case model.RoleCompiler:
		u.IsCompiler = true
	case model.RoleManager:
		u.IsManager = true
	}
	return nil
}

// allowCreator flips the stored user's creator eligibility, as if an
// operator had granted it out of band.
func (s *fakeUserStore) allowCreator(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		u.IsCreator = true
	}
}

// fakeQuizStore is an in-memory QuizStore.  It also satisfies the
// cache's QuizLoader so the real reattacher can run against it.
type fakeQuizStore struct {
	mu            sync.Mutex
	quizzes       map[uint64]*model.Quiz
	nextID        uint64
	findPageCalls atomic.Int64
	onFindPage    func() // optional rendezvous hook, called outside the lock
	failWith      error  // when set, every method fails with it
}

func newFakeQuizStore() *fakeQuizStore {
	return &fakeQuizStore{quizzes: map[uint64]*model.Quiz{}}
}

func (s *fakeQuizStore) FindByID(_ context.Context, id uint64) (*model.Quiz, error) {
	if s.failWith != nil {
		return nil, s.failWith
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.quizzes[id]
	if !ok {
		return nil, repository.ErrQuizNotFound
	}
	return q, nil
}

func (s *fakeQuizStore) FindPage(_ context.Context, owner uint64, page, size int) ([]*model.Quiz, error) {
	s.findPageCalls.Add(1)
	if s.failWith != nil {
		return nil, s.failWith
	}
	if s.onFindPage != nil {
		s.onFindPage()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var owned []*model.Quiz
	for _, q := range s.quizzes {
		if q.OwnerID == owner {
			owned = append(owned, q)
		}
	}
	sort.Slice(owned, func(i, j int) bool { return owned[i].ID < owned[j].ID })
	if page < 0 || size <= 0 || page > (math.MaxInt-size)/size {
		return nil, nil
	}
	start := page * size
	if start >= len(owned) {
		return nil, nil
	}
	end := start + size
	if end > len(owned) {
		end = len(owned)
	}
	return owned[start:end], nil
}

func (s *fakeQuizStore) Insert(_ context.Context, q *model.Quiz) (uint64, error) {
	if s.failWith != nil {
		return 0, s.failWith
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	q.ID = s.nextID
	s.quizzes[q.ID] = q
	return q.ID, nil
}

func (s *fakeQuizStore) Update(_ context.Context, q *model.Quiz) error {
	if s.failWith != nil {
		return s.failWith
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.quizzes[q.ID]
	if !ok || existing.OwnerID != q.OwnerID {
		return repository.ErrQuizNotFound
	}
	s.quizzes[q.ID] = q
	return nil
}

func (s *fakeQuizStore) Delete(_ context.Context, id, owner uint64) error {
	if s.failWith != nil {
		return s.failWith
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.quizzes[id]
	if !ok || existing.OwnerID != owner {
		return repository.ErrQuizNotFound
	}
	delete(s.quizzes, id)
	return nil
}

// seed inserts a quiz directly, bypassing the service, as if another
// process had written it.
func (s *fakeQuizStore) seed(owner uint64, title string) *model.Quiz {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	q := &model.Quiz{ID: s.nextID, OwnerID: owner, Title: title}
	s.quizzes[q.ID] = q
	return q
}

// eventRecorder captures published events in order.
type eventRecorder struct {
	mu     sync.Mutex
	events []queue.QuizEvent
}

func (r *eventRecorder) publish(_ context.Context, ev queue.QuizEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *eventRecorder) kinds() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Kind)
	}
	return out
}

const testBcryptCost = bcrypt.MinCost

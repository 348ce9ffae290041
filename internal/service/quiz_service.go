package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/DMlogobardi/Quizy-sub001/internal/auth"
	"github.com/DMlogobardi/Quizy-sub001/internal/cache"
	"github.com/DMlogobardi/Quizy-sub001/internal/model"
	"github.com/DMlogobardi/Quizy-sub001/internal/queue"
	"github.com/DMlogobardi/Quizy-sub001/internal/repository"
	"github.com/DMlogobardi/Quizy-sub001/internal/session"
)

// PageSize is the fixed page length served by List.
const PageSize = 10

// ErrQuizRequest is the coarse error the quiz manager exposes for
// malformed requests: missing titles, unset ids, negative pages.
var ErrQuizRequest = errors.New("invalid quiz request")

// ErrQuizInternal covers persistence and cache failures the caller can
// do nothing about; detail stays in the server log.
var ErrQuizInternal = errors.New("quiz service failure")

// QuizStore is the slice of the persistence collaborator the quiz
// manager needs.  *repository.QuizRepo satisfies it.
type QuizStore interface {
	FindByID(ctx context.Context, id uint64) (*model.Quiz, error)
	FindPage(ctx context.Context, owner uint64, page, size int) ([]*model.Quiz, error)
	Insert(ctx context.Context, q *model.Quiz) (uint64, error)
	Update(ctx context.Context, q *model.Quiz) error
	Delete(ctx context.Context, id, owner uint64) error
}

// QuizService gates every operation on session liveness plus an exact
// role check, then serves reads cache-first and keeps the cache
// coherent on writes.
type QuizService struct {
	store    QuizStore
	cache    *cache.QuizCache
	guard    *auth.Guard
	registry *session.Registry
	publish  EventPublisher
}

func NewQuizService(store QuizStore, c *cache.QuizCache, guard *auth.Guard,
	registry *session.Registry, publish EventPublisher) *QuizService {
	return &QuizService{store: store, cache: c, guard: guard, registry: registry, publish: publish}
}

// authorize runs the checkpoint every operation passes through:
// liveness first, then a full decode + role check.  An expired
// credential is proactively dropped from the registry.
func (s *QuizService) authorize(credential string, want model.Role) (*model.User, error) {
	if !s.registry.IsAlive(credential) {
		return nil, fmt.Errorf("%w: credential revoked", auth.ErrUnauthorized)
	}
	if err := s.guard.RequireRole(credential, want); err != nil {
		if errors.Is(err, auth.ErrTokenExpired) {
			s.registry.Remove(credential)
		}
		return nil, err
	}
	return s.registry.IdentityOf(credential)
}

// Create persists the quiz for the credential's user and caches it.
func (s *QuizService) Create(ctx context.Context, credential string, q *model.Quiz) error {
	u, err := s.authorize(credential, model.RoleCreator)
	if err != nil {
		return err
	}
	if q == nil || q.Title == "" {
		return fmt.Errorf("%w: quiz title required", ErrQuizRequest)
	}
	q.OwnerID = u.ID
	if _, err := s.store.Insert(ctx, q); err != nil {
		log.Printf("quiz: insert for user %d failed: %v", u.ID, err)
		return fmt.Errorf("%w: create", ErrQuizInternal)
	}
	// A concurrent populate may have beaten us to the slot; the row is
	// persisted either way.
	if err := s.cache.Insert(u.ID, q); err != nil && !errors.Is(err, cache.ErrQuizExists) {
		log.Printf("quiz: cache insert for user %d failed: %v", u.ID, err)
	}
	s.emit(ctx, queue.QuizEvent{
		Kind: queue.KindQuizCreated, QuizID: q.ID, UserID: u.ID, Title: q.Title,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	})
	return nil
}

// Update rewrites an existing quiz owned by the credential's user.
func (s *QuizService) Update(ctx context.Context, credential string, q *model.Quiz) error {
	u, err := s.authorize(credential, model.RoleCreator)
	if err != nil {
		return err
	}
	if q == nil || q.ID == 0 {
		return fmt.Errorf("%w: quiz id required", ErrQuizRequest)
	}
	q.OwnerID = u.ID
	if err := s.store.Update(ctx, q); err != nil {
		return s.storeErr("update", u.ID, err)
	}
	// Not being cached yet is fine; the next read repopulates.
	if err := s.cache.ReplaceOne(u.ID, q); err != nil && !errors.Is(err, cache.ErrNotCached) {
		log.Printf("quiz: cache replace %d for user %d failed: %v", q.ID, u.ID, err)
	}
	s.emit(ctx, queue.QuizEvent{
		Kind: queue.KindQuizUpdated, QuizID: q.ID, UserID: u.ID, Title: q.Title,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	})
	return nil
}

// Delete removes a quiz owned by the credential's user from the store
// and the cache.
func (s *QuizService) Delete(ctx context.Context, credential string, quizID uint64) error {
	u, err := s.authorize(credential, model.RoleCreator)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, quizID, u.ID); err != nil {
		return s.storeErr("delete", u.ID, err)
	}
	if err := s.cache.RemoveOne(u.ID, quizID); err != nil && !errors.Is(err, cache.ErrNotCached) {
		log.Printf("quiz: cache remove %d for user %d failed: %v", quizID, u.ID, err)
	}
	s.emit(ctx, queue.QuizEvent{
		Kind: queue.KindQuizDeleted, QuizID: quizID, UserID: u.ID,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	})
	return nil
}

// Get returns one quiz owned by the credential's user, cache-first.
func (s *QuizService) Get(ctx context.Context, credential string, quizID uint64) (*model.Quiz, error) {
	u, err := s.authorize(credential, model.RoleCreator)
	if err != nil {
		return nil, err
	}
	q, err := s.cache.GetOne(ctx, u.ID, quizID)
	if err != nil {
		log.Printf("quiz: cache get %d for user %d failed: %v", quizID, u.ID, err)
		return nil, fmt.Errorf("%w: get", ErrQuizInternal)
	}
	if q != nil {
		return q, nil
	}
	q, err = s.store.FindByID(ctx, quizID)
	if err != nil {
		return nil, s.storeErr("get", u.ID, err)
	}
	if q.OwnerID != u.ID {
		// Absence and foreign ownership look the same from outside.
		return nil, fmt.Errorf("quiz %d: %w", quizID, repository.ErrQuizNotFound)
	}
	if err := s.cache.Insert(u.ID, q); err != nil && !errors.Is(err, cache.ErrQuizExists) {
		log.Printf("quiz: cache insert %d for user %d failed: %v", quizID, u.ID, err)
	}
	return q, nil
}

// List returns the requested page of the user's quizzes, fixed page
// size of PageSize, ordered by ascending quiz id.  A cached page is
// authoritative only while it lies inside the partition's store-loaded
// range; single rows seeded by Create or Get do not make a page.
// Otherwise the page is loaded from the store and the cache populated;
// a Conflict from a concurrent populate of the same entry is benign
// and ignored.
func (s *QuizService) List(ctx context.Context, credential string, page int) ([]*model.Quiz, error) {
	if page < 0 {
		return nil, fmt.Errorf("%w: negative page number", ErrQuizRequest)
	}
	u, err := s.authorize(credential, model.RoleCreator)
	if err != nil {
		return nil, err
	}
	if s.cache.PageLoaded(u.ID, page) {
		cached, err := s.cache.GetPage(ctx, u.ID, page, PageSize)
		if err != nil {
			log.Printf("quiz: cache page %d for user %d failed: %v", page, u.ID, err)
			return nil, fmt.Errorf("%w: list", ErrQuizInternal)
		}
		if len(cached) > 0 {
			return cached, nil
		}
	}
	loaded, err := s.store.FindPage(ctx, u.ID, page, PageSize)
	if err != nil {
		log.Printf("quiz: load page %d for user %d failed: %v", page, u.ID, err)
		return nil, fmt.Errorf("%w: list", ErrQuizInternal)
	}
	for _, q := range loaded {
		if err := s.cache.Insert(u.ID, q); err != nil && !errors.Is(err, cache.ErrQuizExists) {
			log.Printf("quiz: cache populate %d for user %d failed: %v", q.ID, u.ID, err)
		}
	}
	if len(loaded) > 0 {
		s.cache.MarkPageLoaded(u.ID, page)
	}
	return loaded, nil
}

// storeErr passes missing-row errors through untouched so handlers can
// map them to 404, and collapses everything else into the coarse
// service error after logging the detail.
func (s *QuizService) storeErr(op string, userID uint64, err error) error {
	if errors.Is(err, repository.ErrQuizNotFound) {
		return err
	}
	log.Printf("quiz: %s for user %d failed: %v", op, userID, err)
	return fmt.Errorf("%w: %s", ErrQuizInternal, op)
}

func (s *QuizService) emit(ctx context.Context, ev queue.QuizEvent) {
	if s.publish == nil {
		return
	}
	if err := s.publish(ctx, ev); err != nil {
		log.Printf("quiz: publish %s event failed: %v", ev.Kind, err)
	}
}

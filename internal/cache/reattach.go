// Package cache holds per-user quiz partitions in process memory.
// Cache entries outlive the request-scoped persistence context they
// were loaded under, so every entry handed back out is first rebound
// to the caller's current context by a Reattacher.
package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/DMlogobardi/Quizy-sub001/internal/model"
	"github.com/DMlogobardi/Quizy-sub001/internal/repository"
)

// QuizLoader is the slice of the persistence collaborator the
// reattacher needs.  *repository.QuizRepo satisfies it.
type QuizLoader interface {
	FindByID(ctx context.Context, id uint64) (*model.Quiz, error)
}

// Reattacher rebinds a quiz that may have been loaded under an earlier,
// now-closed persistence context to the current one.
type Reattacher interface {
	Reattach(ctx context.Context, q *model.Quiz) (*model.Quiz, error)
}

// RepoReattacher reattaches by reloading the quiz through the
// persistence collaborator under the caller's context, so deferred
// reads on the result are served by a live context.
type RepoReattacher struct {
	quizzes QuizLoader
}

func NewRepoReattacher(quizzes QuizLoader) *RepoReattacher {
	return &RepoReattacher{quizzes: quizzes}
}

// Reattach returns the quiz rebound to the current context.  A nil
// input returns nil with no side effects.  A quiz whose row vanished
// underneath the cache comes back unchanged rather than failing; only
// infrastructure errors surface, wrapped for the caller's logs.
func (r *RepoReattacher) Reattach(ctx context.Context, q *model.Quiz) (*model.Quiz, error) {
	if q == nil {
		return nil, nil
	}
	fresh, err := r.quizzes.FindByID(ctx, q.ID)
	if err != nil {
		if errors.Is(err, repository.ErrQuizNotFound) {
			return q, nil
		}
		return nil, fmt.Errorf("reattach quiz %d: %w", q.ID, err)
	}
	return fresh, nil
}

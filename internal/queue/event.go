// Package queue defines message payloads exchanged over the message broker.
package queue

// Event kinds published to the quiz.events queue.
const (
	KindQuizCreated  = "quiz.created"
	KindQuizUpdated  = "quiz.updated"
	KindQuizDeleted  = "quiz.deleted"
	KindRoleElevated = "role.elevated"
)

// QuizEvent is published on quiz lifecycle changes and role
// elevations.  It carries enough information for downstream consumers
// to audit or notify without querying the primary database.
type QuizEvent struct {
	Kind       string `json:"kind"`
	QuizID     uint64 `json:"quiz_id,omitempty"`
	UserID     uint64 `json:"user_id"`
	Title      string `json:"title,omitempty"`
	Role       string `json:"role,omitempty"`
	OccurredAt string `json:"occurred_at"`
}

package model

import "time"

// Quiz is a quiz owned by a single creator.  ID is zero until the
// first persist, after which the database-assigned value is unique.
// Questions are ordered and owned exclusively by their quiz; answers
// are owned exclusively by their question.  PasswordHash is empty for
// open quizzes.
type Quiz struct {
	ID           uint64     // quizzes.id
	OwnerID      uint64     // quizzes.owner_id
	Title        string     // quizzes.title
	Description  string     // quizzes.description
	Difficulty   uint8      // quizzes.difficulty (1..5)
	TimeLimitSec uint32     // quizzes.time_limit_sec (0 = untimed)
	PasswordHash string     // quizzes.password_hash (optional)
	Questions    []Question // child rows, ordered by position
	CreatedAt    time.Time  // quizzes.created_at
	UpdatedAt    time.Time  // quizzes.updated_at
}

// Question is a single question inside a quiz.
type Question struct {
	ID       uint64   // questions.id
	QuizID   uint64   // questions.quiz_id
	Text     string   // questions.text
	Position uint16   // questions.position within the quiz
	Answers  []Answer // child rows, ordered by position
}

// Answer is one selectable option of a question.  Points are awarded
// for picking it depending on whether it is the correct option.
type Answer struct {
	ID              uint64 // answers.id
	QuestionID      uint64 // answers.question_id
	Text            string // answers.text
	Correct         bool   // answers.is_correct
	PointsCorrect   int32  // answers.points_correct
	PointsIncorrect int32  // answers.points_incorrect
	Position        uint16 // answers.position within the question
}

// This file defines the repository for quizzes and their question and
// answer trees.  A quiz is always loaded and stored whole: questions
// and answers belong to exactly one parent, so updates replace the
// child rows inside the same transaction instead of diffing them.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"

	"github.com/DMlogobardi/Quizy-sub001/internal/model"
)

type QuizRepo struct{ DB *sql.DB }

func NewQuizRepo(db *sql.DB) *QuizRepo { return &QuizRepo{DB: db} }

const quizColumns = "id,owner_id,title,description,difficulty,time_limit_sec,password_hash,created_at,updated_at"

// FindByID fetches a quiz with its questions and answers.  It returns
// ErrQuizNotFound when no row exists.
func (r *QuizRepo) FindByID(ctx context.Context, id uint64) (*model.Quiz, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+quizColumns+" FROM quizzes WHERE id=? LIMIT 1", id)
	q, err := scanQuiz(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrQuizNotFound
		}
		return nil, err
	}
	if err := r.loadQuestions(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

// FindPage returns up to size quizzes owned by owner, ordered by id,
// starting at offset page*size.  A page past the end is an empty
// slice, not an error.
func (r *QuizRepo) FindPage(ctx context.Context, owner uint64, page, size int) ([]*model.Quiz, error) {
	if page < 0 || size <= 0 {
		return nil, nil
	}
	// An offset beyond what page*size can represent is past the end of
	// any collection; computing it would wrap negative.
	if page > (math.MaxInt-size)/size {
		return nil, nil
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+quizColumns+" FROM quizzes WHERE owner_id=? ORDER BY id LIMIT ? OFFSET ?",
		owner, size, page*size)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Quiz
	for rows.Next() {
		q, err := scanQuiz(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, q := range out {
		if err := r.loadQuestions(ctx, q); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Insert persists a quiz together with its questions and answers in a
// single transaction.  On success the quiz and all children carry
// their database-assigned ids.
func (r *QuizRepo) Insert(ctx context.Context, q *model.Quiz) (uint64, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO quizzes (owner_id, title, description, difficulty, time_limit_sec, password_hash) VALUES (?,?,?,?,?,?)",
		q.OwnerID, q.Title, q.Description, q.Difficulty, q.TimeLimitSec, q.PasswordHash)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	q.ID = uint64(id)

	if err := insertChildren(ctx, tx, q); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return q.ID, nil
}

// Update rewrites the quiz row and replaces its question/answer tree.
// The WHERE clause pins the owner so a quiz can never be rewritten by
// someone who does not own it; a miss reports ErrQuizNotFound.
func (r *QuizRepo) Update(ctx context.Context, q *model.Quiz) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		"UPDATE quizzes SET title=?, description=?, difficulty=?, time_limit_sec=?, password_hash=? WHERE id=? AND owner_id=?",
		q.Title, q.Description, q.Difficulty, q.TimeLimitSec, q.PasswordHash, q.ID, q.OwnerID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// Could also be an unchanged row; confirm existence before failing.
		var one int
		err := tx.QueryRowContext(ctx,
			"SELECT 1 FROM quizzes WHERE id=? AND owner_id=? LIMIT 1", q.ID, q.OwnerID).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrQuizNotFound
		}
		if err != nil {
			return err
		}
	}

	// answers ride on questions via ON DELETE CASCADE
	if _, err := tx.ExecContext(ctx, "DELETE FROM questions WHERE quiz_id=?", q.ID); err != nil {
		return err
	}
	if err := insertChildren(ctx, tx, q); err != nil {
		return err
	}
	return tx.Commit()
}

// Delete removes a quiz owned by owner.  Child rows go with it via
// cascading foreign keys.
func (r *QuizRepo) Delete(ctx context.Context, id, owner uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM quizzes WHERE id=? AND owner_id=?", id, owner)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrQuizNotFound
	}
	return nil
}

func insertChildren(ctx context.Context, tx *sql.Tx, q *model.Quiz) error {
	for qi := range q.Questions {
		question := &q.Questions[qi]
		question.QuizID = q.ID
		question.Position = uint16(qi)
		res, err := tx.ExecContext(ctx,
			"INSERT INTO questions (quiz_id, text, position) VALUES (?,?,?)",
			question.QuizID, question.Text, question.Position)
		if err != nil {
			return fmt.Errorf("insert question %d: %w", qi, err)
		}
		qid, err := res.LastInsertId()
		if err != nil {
			return err
		}
		question.ID = uint64(qid)

		for ai := range question.Answers {
			answer := &question.Answers[ai]
			answer.QuestionID = question.ID
			answer.Position = uint16(ai)
			res, err := tx.ExecContext(ctx,
				"INSERT INTO answers (question_id, text, is_correct, points_correct, points_incorrect, position) VALUES (?,?,?,?,?,?)",
				answer.QuestionID, answer.Text, answer.Correct, answer.PointsCorrect, answer.PointsIncorrect, answer.Position)
			if err != nil {
				return fmt.Errorf("insert answer %d of question %d: %w", ai, qi, err)
			}
			aid, err := res.LastInsertId()
			if err != nil {
				return err
			}
			answer.ID = uint64(aid)
		}
	}
	return nil
}

func (r *QuizRepo) loadQuestions(ctx context.Context, q *model.Quiz) error {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, quiz_id, text, position FROM questions WHERE quiz_id=? ORDER BY position", q.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	q.Questions = nil
	for rows.Next() {
		var question model.Question
		if err := rows.Scan(&question.ID, &question.QuizID, &question.Text, &question.Position); err != nil {
			return err
		}
		q.Questions = append(q.Questions, question)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	for i := range q.Questions {
		if err := r.loadAnswers(ctx, &q.Questions[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *QuizRepo) loadAnswers(ctx context.Context, question *model.Question) error {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, question_id, text, is_correct, points_correct, points_incorrect, position FROM answers WHERE question_id=? ORDER BY position",
		question.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	question.Answers = nil
	for rows.Next() {
		var a model.Answer
		if err := rows.Scan(&a.ID, &a.QuestionID, &a.Text, &a.Correct, &a.PointsCorrect, &a.PointsIncorrect, &a.Position); err != nil {
			return err
		}
		question.Answers = append(question.Answers, a)
	}
	return rows.Err()
}

func scanQuiz(scan func(dest ...any) error) (*model.Quiz, error) {
	var q model.Quiz
	err := scan(&q.ID, &q.OwnerID, &q.Title, &q.Description, &q.Difficulty,
		&q.TimeLimitSec, &q.PasswordHash, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &q, nil
}

package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/DMlogobardi/Quizy-sub001/internal/middleware"
	"github.com/DMlogobardi/Quizy-sub001/internal/model"
	"github.com/DMlogobardi/Quizy-sub001/internal/service"
)

// QuizHandler bundles dependencies for the quiz CRUD endpoints.  All
// of them run behind CredentialAuth; the service re-checks liveness
// and role on every call regardless.
type QuizHandler struct {
	Quizzes *service.QuizService
}

func NewQuizHandler(q *service.QuizService) *QuizHandler {
	return &QuizHandler{Quizzes: q}
}

// ----- DTOs -----

type answerDTO struct {
	Text            string `json:"text"`
	Correct         bool   `json:"correct"`
	PointsCorrect   int32  `json:"points_correct"`
	PointsIncorrect int32  `json:"points_incorrect"`
}
type questionDTO struct {
	Text    string      `json:"text"`
	Answers []answerDTO `json:"answers"`
}
type quizReq struct {
	Title        string        `json:"title"`
	Description  string        `json:"description"`
	Difficulty   uint8         `json:"difficulty"`
	TimeLimitSec uint32        `json:"time_limit_sec"`
	Questions    []questionDTO `json:"questions"`
}
type quizResp struct {
	ID           uint64        `json:"id"`
	Title        string        `json:"title"`
	Description  string        `json:"description"`
	Difficulty   uint8         `json:"difficulty"`
	TimeLimitSec uint32        `json:"time_limit_sec"`
	Questions    []questionDTO `json:"questions"`
}

func (r quizReq) toModel() *model.Quiz {
	q := &model.Quiz{
		Title:        r.Title,
		Description:  r.Description,
		Difficulty:   r.Difficulty,
		TimeLimitSec: r.TimeLimitSec,
	}
	for _, qd := range r.Questions {
		question := model.Question{Text: qd.Text}
		for _, ad := range qd.Answers {
			question.Answers = append(question.Answers, model.Answer{
				Text:            ad.Text,
				Correct:         ad.Correct,
				PointsCorrect:   ad.PointsCorrect,
				PointsIncorrect: ad.PointsIncorrect,
			})
		}
		q.Questions = append(q.Questions, question)
	}
	return q
}

func toResp(q *model.Quiz) quizResp {
	out := quizResp{
		ID:           q.ID,
		Title:        q.Title,
		Description:  q.Description,
		Difficulty:   q.Difficulty,
		TimeLimitSec: q.TimeLimitSec,
	}
	for _, question := range q.Questions {
		qd := questionDTO{Text: question.Text}
		for _, a := range question.Answers {
			qd.Answers = append(qd.Answers, answerDTO{
				Text:            a.Text,
				Correct:         a.Correct,
				PointsCorrect:   a.PointsCorrect,
				PointsIncorrect: a.PointsIncorrect,
			})
		}
		out.Questions = append(out.Questions, qd)
	}
	return out
}

func credential(c echo.Context) string {
	cred, _ := c.Get(middleware.CtxCredential).(string)
	return cred
}

// Create persists a new quiz owned by the authenticated creator.
func (h *QuizHandler) Create(c echo.Context) error {
	var req quizReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	q := req.toModel()
	if err := h.Quizzes.Create(ctx, credential(c), q); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, toResp(q))
}

// Get returns one quiz by id.
func (h *QuizHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid quiz id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	q, err := h.Quizzes.Get(ctx, credential(c), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, toResp(q))
}

// List returns one page of the user's quizzes.  The page size is fixed
// at 10; ?page=N selects the zero-based page.
func (h *QuizHandler) List(c echo.Context) error {
	page := 0
	if raw := c.QueryParam("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid page number"})
		}
		page = n
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	quizzes, err := h.Quizzes.List(ctx, credential(c), page)
	if err != nil {
		return fail(c, err)
	}
	out := make([]quizResp, 0, len(quizzes))
	for _, q := range quizzes {
		out = append(out, toResp(q))
	}
	return c.JSON(http.StatusOK, echo.Map{"page": page, "quizzes": out})
}

// Update rewrites an existing quiz.
func (h *QuizHandler) Update(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid quiz id"})
	}
	var req quizReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	q := req.toModel()
	q.ID = id
	if err := h.Quizzes.Update(ctx, credential(c), q); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, toResp(q))
}

// Delete removes a quiz.
func (h *QuizHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid quiz id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Quizzes.Delete(ctx, credential(c), id); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

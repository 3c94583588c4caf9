package user

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pthach/certclimb/internal/dto"
	"github.com/pthach/certclimb/internal/middleware"
	"github.com/pthach/certclimb/internal/service"
	"github.com/rs/zerolog/log"
)

type QuizController struct {
	quizService     service.QuizService
	quizModeService service.QuizModeService
}

func NewQuizController(qs service.QuizService, qms service.QuizModeService) *QuizController {
	return &QuizController{quizService: qs, quizModeService: qms}
}

// StartQuiz godoc
// @Summary Start a quiz in one of the non-staged modes
// @Description Creates a session and returns its question set. Timed mode includes a time limit derived from the exam duration.
// @Tags Quizzes
// @Accept json
// @Produce json
// @Param request body dto.StartQuizRequest true "Exam, mode and optional question count"
// @Success 200 {object} dto.StartQuizResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid request body"
// @Failure 404 {object} dto.ErrorResponse "No questions available for this mode"
// @Security BearerAuth
// @Router /quizzes [post]
func (c *QuizController) StartQuiz(ctx *gin.Context) {
	var req dto.StartQuizRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}
	userID := middleware.UserID(ctx)
	resp, err := c.quizService.StartQuiz(userID, req)
	if err != nil {
		if errors.Is(err, service.ErrNoMissedQuestion) || errors.Is(err, service.ErrNotEnoughInBank) {
			ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: err.Error()})
			return
		}
		log.Error().Err(err).Uint("userID", userID).Str("mode", req.Mode).Msg("StartQuiz: Service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to start quiz", Details: []string{err.Error()}})
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// CompleteQuiz godoc
// @Summary Submit a quiz's answer sheet
// @Description Grades the answers server-side, finalizes the session and updates study progress.
// @Tags Quizzes
// @Accept json
// @Produce json
// @Param session_id path int true "Session ID"
// @Param request body dto.CompleteQuizRequest true "Answer sheet"
// @Success 200 {object} dto.QuizResultDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid body or session already completed"
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Security BearerAuth
// @Router /quizzes/{session_id}/complete [post]
func (c *QuizController) CompleteQuiz(ctx *gin.Context) {
	sessionID, err := strconv.ParseUint(ctx.Param("session_id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid Session ID format"})
		return
	}
	var req dto.CompleteQuizRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}
	userID := middleware.UserID(ctx)
	result, err := c.quizService.CompleteQuiz(userID, uint(sessionID), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSessionNotFound):
			ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: "Session not found"})
		case errors.Is(err, service.ErrSessionCompleted):
			ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Session is already completed"})
		default:
			log.Error().Err(err).Uint64("sessionID", sessionID).Msg("CompleteQuiz: Service error")
			ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to complete quiz", Details: []string{err.Error()}})
		}
		return
	}
	ctx.JSON(http.StatusOK, result)
}

// SessionHistory godoc
// @Summary List the user's quiz sessions
// @Tags Quizzes
// @Produce json
// @Param exam_id query int false "Filter by exam"
// @Success 200 {array} dto.SessionSummaryDTO
// @Security BearerAuth
// @Router /sessions [get]
func (c *QuizController) SessionHistory(ctx *gin.Context) {
	var examID *uint
	if q := ctx.Query("exam_id"); q != "" {
		val, err := strconv.ParseUint(q, 10, 32)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid Exam ID format"})
			return
		}
		id := uint(val)
		examID = &id
	}
	sessions, err := c.quizService.SessionHistory(middleware.UserID(ctx), examID)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to load session history", Details: []string{err.Error()}})
		return
	}
	ctx.JSON(http.StatusOK, sessions)
}

// SessionDetail godoc
// @Summary Review one session's answers
// @Description Returns the session with every graded answer, the correct option and the explanation.
// @Tags Quizzes
// @Produce json
// @Param session_id path int true "Session ID"
// @Success 200 {object} dto.SessionDetailDTO
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Security BearerAuth
// @Router /sessions/{session_id} [get]
func (c *QuizController) SessionDetail(ctx *gin.Context) {
	sessionID, err := strconv.ParseUint(ctx.Param("session_id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid Session ID format"})
		return
	}
	detail, err := c.quizService.SessionDetail(middleware.UserID(ctx), uint(sessionID))
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: "Session not found"})
			return
		}
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to load session", Details: []string{err.Error()}})
		return
	}
	ctx.JSON(http.StatusOK, detail)
}

// Stats godoc
// @Summary Study statistics for an exam
// @Tags Quizzes
// @Produce json
// @Param exam_id query int true "Exam ID"
// @Success 200 {object} dto.StatsDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid exam ID"
// @Security BearerAuth
// @Router /stats [get]
func (c *QuizController) Stats(ctx *gin.Context) {
	examID, err := strconv.ParseUint(ctx.Query("exam_id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid Exam ID format"})
		return
	}
	stats, err := c.quizService.Stats(middleware.UserID(ctx), uint(examID))
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to load stats", Details: []string{err.Error()}})
		return
	}
	ctx.JSON(http.StatusOK, stats)
}

// QuizModes godoc
// @Summary List the active quiz modes
// @Tags Quizzes
// @Produce json
// @Success 200 {array} dto.QuizModeDTO
// @Router /quiz-modes [get]
func (c *QuizController) QuizModes(ctx *gin.Context) {
	modes, err := c.quizModeService.ActiveModes(ctx.Request.Context())
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to load quiz modes", Details: []string{err.Error()}})
		return
	}
	ctx.JSON(http.StatusOK, modes)
}

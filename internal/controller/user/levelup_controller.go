package user

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pthach/certclimb/internal/dto"
	"github.com/pthach/certclimb/internal/levelup"
	"github.com/pthach/certclimb/internal/middleware"
	"github.com/pthach/certclimb/internal/service"
	"github.com/rs/zerolog/log"
)

type LevelUpController struct {
	levelUpService service.LevelUpService
}

func NewLevelUpController(lus service.LevelUpService) *LevelUpController {
	return &LevelUpController{levelUpService: lus}
}

// StartAttempt godoc
// @Summary Start a level-up stage attempt
// @Description Begins an attempt at the user's current stage. Returns a live attempt, or flags when all stages are complete or the stage's question pool is empty.
// @Tags Level-Up
// @Accept json
// @Produce json
// @Param request body dto.StartAttemptRequest true "Exam to practice"
// @Success 200 {object} dto.StartAttemptResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid request body"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Security BearerAuth
// @Router /levelup/attempts [post]
func (c *LevelUpController) StartAttempt(ctx *gin.Context) {
	var req dto.StartAttemptRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}
	userID := middleware.UserID(ctx)

	resp, err := c.levelUpService.StartAttempt(userID, req.ExamID)
	if err != nil {
		log.Error().Err(err).Uint("userID", userID).Uint("examID", req.ExamID).Msg("LevelUp StartAttempt: Service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to start attempt", Details: []string{err.Error()}})
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// GetAttempt godoc
// @Summary Get the state of a running attempt
// @Tags Level-Up
// @Produce json
// @Param attempt_id path string true "Attempt ID"
// @Success 200 {object} dto.LevelUpAttemptDTO
// @Failure 404 {object} dto.ErrorResponse "Attempt not found"
// @Security BearerAuth
// @Router /levelup/attempts/{attempt_id} [get]
func (c *LevelUpController) GetAttempt(ctx *gin.Context) {
	attempt, err := c.levelUpService.GetAttempt(middleware.UserID(ctx), ctx.Param("attempt_id"))
	if err != nil {
		ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: "Attempt not found"})
		return
	}
	ctx.JSON(http.StatusOK, attempt)
}

// SelectOption godoc
// @Summary Select an option for the current question
// @Description Stages a choice without grading it. A different option may be selected until the answer is revealed.
// @Tags Level-Up
// @Accept json
// @Produce json
// @Param attempt_id path string true "Attempt ID"
// @Param request body dto.SelectOptionRequest true "Option to select"
// @Success 200 {object} dto.LevelUpAttemptDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid body or selection not allowed in this state"
// @Failure 404 {object} dto.ErrorResponse "Attempt not found"
// @Security BearerAuth
// @Router /levelup/attempts/{attempt_id}/select [post]
func (c *LevelUpController) SelectOption(ctx *gin.Context) {
	var req dto.SelectOptionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}
	attempt, err := c.levelUpService.SelectOption(middleware.UserID(ctx), ctx.Param("attempt_id"), req.OptionID)
	if err != nil {
		respondLevelUpError(ctx, err, "Failed to select option")
		return
	}
	ctx.JSON(http.StatusOK, attempt)
}

// RevealAnswer godoc
// @Summary Confirm the selection and reveal the answer
// @Description Grades the staged selection. After the reveal the selection is locked and the explanation is disclosed.
// @Tags Level-Up
// @Produce json
// @Param attempt_id path string true "Attempt ID"
// @Success 200 {object} dto.RevealResponseDTO
// @Failure 400 {object} dto.ErrorResponse "No selection staged or already revealed"
// @Failure 404 {object} dto.ErrorResponse "Attempt not found"
// @Security BearerAuth
// @Router /levelup/attempts/{attempt_id}/reveal [post]
func (c *LevelUpController) RevealAnswer(ctx *gin.Context) {
	reveal, err := c.levelUpService.RevealAnswer(middleware.UserID(ctx), ctx.Param("attempt_id"))
	if err != nil {
		respondLevelUpError(ctx, err, "Failed to reveal answer")
		return
	}
	ctx.JSON(http.StatusOK, reveal)
}

// NextQuestion godoc
// @Summary Advance past a revealed question
// @Description Moves to the next question, or after the last question persists the attempt and returns the stage result.
// @Tags Level-Up
// @Produce json
// @Param attempt_id path string true "Attempt ID"
// @Success 200 {object} dto.NextResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Current answer not yet revealed"
// @Failure 404 {object} dto.ErrorResponse "Attempt not found"
// @Failure 500 {object} dto.ErrorResponse "Stage results could not be saved"
// @Security BearerAuth
// @Router /levelup/attempts/{attempt_id}/next [post]
func (c *LevelUpController) NextQuestion(ctx *gin.Context) {
	userID := middleware.UserID(ctx)
	resp, err := c.levelUpService.NextQuestion(userID, ctx.Param("attempt_id"))
	if err != nil {
		if errors.Is(err, service.ErrAttemptNotFound) || isMachineError(err) {
			respondLevelUpError(ctx, err, "Failed to advance attempt")
			return
		}
		log.Error().Err(err).Uint("userID", userID).Msg("LevelUp NextQuestion: Service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to save stage results", Details: []string{err.Error()}})
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// SkipStage godoc
// @Summary Skip a stage whose filtered question pool is empty
// @Tags Level-Up
// @Accept json
// @Produce json
// @Param request body dto.SkipStageRequest true "Exam whose current stage to skip"
// @Success 200 {object} dto.LevelUpProgressDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid request body"
// @Failure 409 {object} dto.ErrorResponse "Stage still has questions, or all stages already complete"
// @Security BearerAuth
// @Router /levelup/skip-stage [post]
func (c *LevelUpController) SkipStage(ctx *gin.Context) {
	var req dto.SkipStageRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}
	userID := middleware.UserID(ctx)
	progress, err := c.levelUpService.SkipStage(userID, req.ExamID)
	if err != nil {
		if errors.Is(err, service.ErrStageNotEmpty) || errors.Is(err, service.ErrAllStagesDone) {
			ctx.JSON(http.StatusConflict, dto.ErrorResponse{Message: err.Error()})
			return
		}
		log.Error().Err(err).Uint("userID", userID).Msg("LevelUp SkipStage: Service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to skip stage", Details: []string{err.Error()}})
		return
	}
	ctx.JSON(http.StatusOK, progress)
}

// ResetProgress godoc
// @Summary Reset all level-up progress for an exam
// @Description Deletes every level-up session and its answers for the exam and returns the user to the first stage. Requires confirm=true.
// @Tags Level-Up
// @Accept json
// @Produce json
// @Param request body dto.ResetProgressRequest true "Exam to reset, with confirmation flag"
// @Success 200 {object} dto.LevelUpProgressDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid body or confirmation missing"
// @Failure 500 {object} dto.ErrorResponse "Reset failed"
// @Security BearerAuth
// @Router /levelup/reset [post]
func (c *LevelUpController) ResetProgress(ctx *gin.Context) {
	var req dto.ResetProgressRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}
	if !req.Confirm {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Reset must be confirmed"})
		return
	}
	userID := middleware.UserID(ctx)
	if err := c.levelUpService.ResetProgress(userID, req.ExamID); err != nil {
		log.Error().Err(err).Uint("userID", userID).Uint("examID", req.ExamID).Msg("LevelUp ResetProgress: Service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to reset progress", Details: []string{err.Error()}})
		return
	}
	progress, err := c.levelUpService.Progress(userID, req.ExamID)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Progress reset but could not be reloaded", Details: []string{err.Error()}})
		return
	}
	ctx.JSON(http.StatusOK, progress)
}

// Progress godoc
// @Summary Level-up stage and accuracy dashboard
// @Tags Level-Up
// @Produce json
// @Param exam_id query int true "Exam ID"
// @Success 200 {object} dto.LevelUpProgressDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid exam ID"
// @Security BearerAuth
// @Router /levelup/progress [get]
func (c *LevelUpController) Progress(ctx *gin.Context) {
	examID, err := strconv.ParseUint(ctx.Query("exam_id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid Exam ID format"})
		return
	}
	progress, err := c.levelUpService.Progress(middleware.UserID(ctx), uint(examID))
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to load progress", Details: []string{err.Error()}})
		return
	}
	ctx.JSON(http.StatusOK, progress)
}

// respondLevelUpError maps attempt-machine errors to client status codes.
func respondLevelUpError(ctx *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrAttemptNotFound):
		ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: "Attempt not found"})
	case isMachineError(err):
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: err.Error()})
	default:
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: fallback, Details: []string{err.Error()}})
	}
}

func isMachineError(err error) bool {
	return errors.Is(err, levelup.ErrNoSelection) ||
		errors.Is(err, levelup.ErrAlreadyRevealed) ||
		errors.Is(err, levelup.ErrNotRevealed) ||
		errors.Is(err, levelup.ErrAttemptFinished) ||
		errors.Is(err, levelup.ErrUnknownOption)
}

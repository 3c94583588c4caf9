package admin

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pthach/certclimb/internal/dto"
	"github.com/pthach/certclimb/internal/service"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type AdminController struct {
	adminService service.AdminService
}

func NewAdminController(as service.AdminService) *AdminController {
	return &AdminController{adminService: as}
}

// CreateExam godoc
// @Summary (Admin) Create an exam
// @Description Creates an exam, optionally with its full question bank in one request. Each question must carry exactly one correct option.
// @Tags Admin - Exams
// @Accept json
// @Produce json
// @Param request body dto.ExamCreateDTO true "Exam definition"
// @Success 201 {object} dto.ExamAdminDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid body or option set"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Security BearerAuth
// @Router /admin/exams [post]
func (c *AdminController) CreateExam(ctx *gin.Context) {
	var req dto.ExamCreateDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("Admin CreateExam: Failed to bind JSON")
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}
	exam, err := c.adminService.CreateExam(req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidOptionSet) {
			ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: err.Error()})
			return
		}
		log.Error().Err(err).Str("title", req.Title).Msg("Admin CreateExam: Service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to create exam", Details: []string{err.Error()}})
		return
	}
	ctx.JSON(http.StatusCreated, exam)
}

// GetExamWithQuestions godoc
// @Summary (Admin) Get an exam with its full bank, correctness included
// @Tags Admin - Exams
// @Produce json
// @Param exam_id path int true "Exam ID"
// @Success 200 {object} dto.ExamAdminDTO
// @Failure 404 {object} dto.ErrorResponse "Exam not found"
// @Security BearerAuth
// @Router /admin/exams/{exam_id} [get]
func (c *AdminController) GetExamWithQuestions(ctx *gin.Context) {
	examID, err := strconv.ParseUint(ctx.Param("exam_id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid Exam ID format"})
		return
	}
	exam, err := c.adminService.GetExamWithQuestions(uint(examID))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: "Exam not found"})
			return
		}
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to load exam", Details: []string{err.Error()}})
		return
	}
	ctx.JSON(http.StatusOK, exam)
}

// CreateQuestion godoc
// @Summary (Admin) Add a question to an exam
// @Tags Admin - Questions
// @Accept json
// @Produce json
// @Param exam_id path int true "Exam ID"
// @Param request body dto.QuestionCreateDTO true "Question definition"
// @Success 201 {object} dto.QuestionAdminDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid body or option set"
// @Failure 404 {object} dto.ErrorResponse "Exam not found"
// @Security BearerAuth
// @Router /admin/exams/{exam_id}/questions [post]
func (c *AdminController) CreateQuestion(ctx *gin.Context) {
	examID, err := strconv.ParseUint(ctx.Param("exam_id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid Exam ID format"})
		return
	}
	var req dto.QuestionCreateDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}
	question, err := c.adminService.CreateQuestion(uint(examID), req)
	if err != nil {
		c.respondError(ctx, err, "Failed to create question")
		return
	}
	ctx.JSON(http.StatusCreated, question)
}

// UpdateQuestion godoc
// @Summary (Admin) Replace a question's content and options
// @Tags Admin - Questions
// @Accept json
// @Produce json
// @Param question_id path int true "Question ID"
// @Param request body dto.QuestionCreateDTO true "New question definition"
// @Success 200 {object} dto.QuestionAdminDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid body or option set"
// @Failure 404 {object} dto.ErrorResponse "Question not found"
// @Security BearerAuth
// @Router /admin/questions/{question_id} [put]
func (c *AdminController) UpdateQuestion(ctx *gin.Context) {
	questionID, err := strconv.ParseUint(ctx.Param("question_id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid Question ID format"})
		return
	}
	var req dto.QuestionCreateDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}
	question, err := c.adminService.UpdateQuestion(uint(questionID), req)
	if err != nil {
		c.respondError(ctx, err, "Failed to update question")
		return
	}
	ctx.JSON(http.StatusOK, question)
}

// DeleteQuestion godoc
// @Summary (Admin) Delete a question
// @Tags Admin - Questions
// @Produce json
// @Param question_id path int true "Question ID"
// @Success 204 "Deleted"
// @Failure 404 {object} dto.ErrorResponse "Question not found"
// @Security BearerAuth
// @Router /admin/questions/{question_id} [delete]
func (c *AdminController) DeleteQuestion(ctx *gin.Context) {
	questionID, err := strconv.ParseUint(ctx.Param("question_id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid Question ID format"})
		return
	}
	if err := c.adminService.DeleteQuestion(uint(questionID)); err != nil {
		c.respondError(ctx, err, "Failed to delete question")
		return
	}
	ctx.Status(http.StatusNoContent)
}

func (c *AdminController) respondError(ctx *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrInvalidOptionSet):
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: err.Error()})
	case errors.Is(err, gorm.ErrRecordNotFound):
		ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: "Not found"})
	default:
		log.Error().Err(err).Msg("Admin: Service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: fallback, Details: []string{err.Error()}})
	}
}

package user

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pthach/certclimb/internal/dto"
	"github.com/pthach/certclimb/internal/service"
	"gorm.io/gorm"
)

type ExamController struct {
	examService service.ExamService
}

func NewExamController(es service.ExamService) *ExamController {
	return &ExamController{examService: es}
}

// GetAllExams godoc
// @Summary List active exams
// @Tags Exams
// @Produce json
// @Success 200 {array} dto.ExamSummaryDTO
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /exams [get]
func (c *ExamController) GetAllExams(ctx *gin.Context) {
	exams, err := c.examService.GetAllExams()
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to load exams", Details: []string{err.Error()}})
		return
	}
	ctx.JSON(http.StatusOK, exams)
}

// GetExam godoc
// @Summary Get one exam
// @Tags Exams
// @Produce json
// @Param exam_id path int true "Exam ID"
// @Success 200 {object} dto.ExamSummaryDTO
// @Failure 404 {object} dto.ErrorResponse "Exam not found"
// @Router /exams/{exam_id} [get]
func (c *ExamController) GetExam(ctx *gin.Context) {
	examID, err := strconv.ParseUint(ctx.Param("exam_id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid Exam ID format"})
		return
	}
	exam, err := c.examService.GetExam(uint(examID))
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

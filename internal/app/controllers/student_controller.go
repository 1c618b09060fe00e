package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/transcriptledger/internal/app/models/dto"
	"github.com/yigit/transcriptledger/internal/app/services"
	"github.com/yigit/transcriptledger/internal/middleware"
)

// StudentController handles student endpoints
type StudentController struct {
	studentService services.StudentService
}

// NewStudentController creates a new StudentController
func NewStudentController(studentService services.StudentService) *StudentController {
	return &StudentController{studentService: studentService}
}

// RegisterStudent registers the caller as a student
// @Summary Register as a student
// @Description Self-registration. The authenticated address becomes the student identity
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.RegisterStudentRequest true "Student information"
// @Success 201 {object} dto.APIResponse "Student registered"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 409 {object} dto.ErrorResponse "Student already registered"
// @Router /students [post]
func (c *StudentController) RegisterStudent(ctx *gin.Context) {
	caller, ok := requireCaller(ctx)
	if !ok {
		return
	}
	var req dto.RegisterStudentRequest
	if !middleware.BindAndValidate(ctx, &req) {
		return
	}

	if err := c.studentService.RegisterStudent(ctx.Request.Context(), caller, &req); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(gin.H{"address": caller.Hex()}, "Student registered successfully"))
}

// GetStudent retrieves a student by address
// @Summary Get student details
// @Tags students
// @Produce json
// @Param address path string true "Student address"
// @Success 200 {object} dto.APIResponse{data=models.Student} "Student retrieved"
// @Failure 400 {object} dto.ErrorResponse "Invalid address"
// @Failure 404 {object} dto.ErrorResponse "Student not registered"
// @Router /students/{address} [get]
func (c *StudentController) GetStudent(ctx *gin.Context) {
	student, err := c.studentService.GetStudent(ctx.Request.Context(), ctx.Param("address"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(student, ""))
}

// GetStudentTranscripts lists a student's transcript ids
// @Summary List a student's transcripts
// @Tags students
// @Produce json
// @Param address path string true "Student address"
// @Success 200 {object} dto.APIResponse{data=dto.StudentTranscriptsResponse} "Transcript ids in creation order"
// @Failure 400 {object} dto.ErrorResponse "Invalid address"
// @Router /students/{address}/transcripts [get]
func (c *StudentController) GetStudentTranscripts(ctx *gin.Context) {
	resp, err := c.studentService.GetStudentTranscripts(ctx.Request.Context(), ctx.Param("address"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp, ""))
}

package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/transcriptledger/internal/app/models/dto"
	"github.com/yigit/transcriptledger/internal/app/services"
	"github.com/yigit/transcriptledger/internal/middleware"
)

// TranscriptController handles transcript endpoints
type TranscriptController struct {
	transcriptService services.TranscriptService
}

// NewTranscriptController creates a new TranscriptController
func NewTranscriptController(transcriptService services.TranscriptService) *TranscriptController {
	return &TranscriptController{transcriptService: transcriptService}
}

// CreateTranscript opens a transcript
// @Summary Create a transcript
// @Description Institution only. Opens a transcript for a registered student
// @Tags transcripts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateTranscriptRequest true "Transcript information"
// @Success 201 {object} dto.APIResponse{data=dto.TranscriptCreatedResponse} "Transcript created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Caller is not an active institution"
// @Failure 404 {object} dto.ErrorResponse "Student not registered"
// @Router /transcripts [post]
func (c *TranscriptController) CreateTranscript(ctx *gin.Context) {
	caller, ok := requireCaller(ctx)
	if !ok {
		return
	}
	var req dto.CreateTranscriptRequest
	if !middleware.BindAndValidate(ctx, &req) {
		return
	}

	id, err := c.transcriptService.CreateTranscript(ctx.Request.Context(), caller, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(dto.TranscriptCreatedResponse{ID: id}, "Transcript created successfully"))
}

// AddCourse appends a course to a transcript
// @Summary Add a course
// @Description Issuing institution only. Rejected once the transcript is verified
// @Tags transcripts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Transcript ID" minimum(1)
// @Param request body dto.AddCourseRequest true "Course information"
// @Success 201 {object} dto.APIResponse "Course added"
// @Failure 400 {object} dto.ErrorResponse "Invalid credits, grade or fields"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Caller is not the issuing institution"
// @Failure 404 {object} dto.ErrorResponse "Transcript not found"
// @Failure 409 {object} dto.ErrorResponse "Transcript already verified"
// @Router /transcripts/{id}/courses [post]
func (c *TranscriptController) AddCourse(ctx *gin.Context) {
	caller, ok := requireCaller(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id", "transcript")
	if !ok {
		return
	}
	var req dto.AddCourseRequest
	if !middleware.BindAndValidate(ctx, &req) {
		return
	}

	if err := c.transcriptService.AddCourse(ctx.Request.Context(), caller, id, &req); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(nil, "Course added successfully"))
}

// SetGraduationDate records the graduation date
// @Summary Set the graduation date
// @Tags transcripts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Transcript ID" minimum(1)
// @Param request body dto.SetGraduationDateRequest true "Graduation date"
// @Success 200 {object} dto.APIResponse "Graduation date set"
// @Failure 400 {object} dto.ErrorResponse "Invalid date"
// @Failure 403 {object} dto.ErrorResponse "Caller is not the issuing institution"
// @Failure 404 {object} dto.ErrorResponse "Transcript not found"
// @Failure 409 {object} dto.ErrorResponse "Transcript already verified"
// @Router /transcripts/{id}/graduation-date [put]
func (c *TranscriptController) SetGraduationDate(ctx *gin.Context) {
	caller, ok := requireCaller(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id", "transcript")
	if !ok {
		return
	}
	var req dto.SetGraduationDateRequest
	if !middleware.BindAndValidate(ctx, &req) {
		return
	}

	if err := c.transcriptService.SetGraduationDate(ctx.Request.Context(), caller, id, &req); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Graduation date set successfully"))
}

// VerifyTranscript marks a transcript verified
// @Summary Verify a transcript
// @Description Verifier or admin only. Verification is final
// @Tags transcripts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Transcript ID" minimum(1)
// @Success 200 {object} dto.APIResponse "Transcript verified"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Caller is not a verifier"
// @Failure 404 {object} dto.ErrorResponse "Transcript not found"
// @Failure 409 {object} dto.ErrorResponse "Transcript already verified"
// @Router /transcripts/{id}/verify [post]
func (c *TranscriptController) VerifyTranscript(ctx *gin.Context) {
	caller, ok := requireCaller(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id", "transcript")
	if !ok {
		return
	}

	if err := c.transcriptService.VerifyTranscript(ctx.Request.Context(), caller, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Transcript verified successfully"))
}

// GetTranscript retrieves a transcript
// @Summary Get transcript details
// @Tags transcripts
// @Produce json
// @Param id path int true "Transcript ID" minimum(1)
// @Success 200 {object} dto.APIResponse{data=models.Transcript} "Transcript retrieved"
// @Failure 404 {object} dto.ErrorResponse "Transcript not found"
// @Router /transcripts/{id} [get]
func (c *TranscriptController) GetTranscript(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "transcript")
	if !ok {
		return
	}

	t, err := c.transcriptService.GetTranscript(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(t, ""))
}

// GetTranscriptCourses lists the courses of a transcript
// @Summary List transcript courses
// @Tags transcripts
// @Produce json
// @Param id path int true "Transcript ID" minimum(1)
// @Success 200 {object} dto.APIResponse{data=[]models.Course} "Courses in insertion order"
// @Router /transcripts/{id}/courses [get]
func (c *TranscriptController) GetTranscriptCourses(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "transcript")
	if !ok {
		return
	}

	courses, err := c.transcriptService.GetTranscriptCourses(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(courses, ""))
}

// CalculateGPA returns the transcript GPA times 100
// @Summary Calculate GPA
// @Tags transcripts
// @Produce json
// @Param id path int true "Transcript ID" minimum(1)
// @Success 200 {object} dto.APIResponse{data=dto.GPAResponse} "GPA on a 0-400 scale"
// @Failure 400 {object} dto.ErrorResponse "Transcript holds an invalid grade"
// @Failure 404 {object} dto.ErrorResponse "Transcript not found"
// @Router /transcripts/{id}/gpa [get]
func (c *TranscriptController) CalculateGPA(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "transcript")
	if !ok {
		return
	}

	resp, err := c.transcriptService.CalculateGPA(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp, ""))
}

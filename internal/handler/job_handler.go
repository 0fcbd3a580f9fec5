package handler

import (
	"net/http"
	"strconv"

	"github.com/Greybash/ngo-service/internal/logic"
	"github.com/Greybash/ngo-service/internal/middleware"
	"github.com/gin-gonic/gin"
)

// maxResumeSize 简历大小上限
const maxResumeSize = 5 << 20

type JobHandler struct {
	jobLogic *logic.JobLogic
}

func NewJobHandler(jobs *logic.JobLogic) *JobHandler {
	return &JobHandler{jobLogic: jobs}
}

func parseID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		ErrorResponse(c, http.StatusBadRequest, "Invalid "+name)
		return 0, false
	}
	return id, true
}

// List 开放中的岗位
func (h *JobHandler) List(c *gin.Context) {
	jobs, err := h.jobLogic.ListJobs(c.Request.Context(), true)
	if err != nil {
		writeError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "", jobs)
}

// Get 岗位详情，附带当前用户是否已申请
func (h *JobHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	job, err := h.jobLogic.GetJob(c.Request.Context(), id, true)
	if err != nil {
		writeError(c, err)
		return
	}

	resp := JobDetailResponse{Job: job}
	if uid := middleware.CurrentUserID(c); uid != nil {
		resp.HasApplied, err = h.jobLogic.HasApplied(c.Request.Context(), id, *uid)
		if err != nil {
			writeError(c, err)
			return
		}
	}
	SuccessResponse(c, http.StatusOK, "", resp)
}

// Apply multipart 提交申请和简历
func (h *JobHandler) Apply(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxResumeSize+1<<20)

	var form ApplyForm
	if err := c.ShouldBind(&form); err != nil {
		bindError(c, err)
		return
	}

	fh, err := c.FormFile("resume")
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "resume is required")
		return
	}
	if fh.Size > maxResumeSize {
		ErrorResponse(c, http.StatusBadRequest, "resume must be 5MB or smaller")
		return
	}

	f, err := fh.Open()
	if err != nil {
		writeError(c, err)
		return
	}
	defer f.Close()

	app, err := h.jobLogic.Apply(c.Request.Context(), &logic.ApplyRequest{
		JobID:             id,
		UserID:            middleware.CurrentUserID(c),
		Name:              form.Name,
		Email:             form.Email,
		Phone:             form.Phone,
		CoverLetter:       form.CoverLetter,
		ResumeName:        fh.Filename,
		ResumeContentType: fh.Header.Get("Content-Type"),
		Resume:            f,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	SuccessResponse(c, http.StatusCreated, "Your application has been submitted successfully!", app)
}

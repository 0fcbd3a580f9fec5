package handler

import (
	"bytes"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/Greybash/ngo-service/internal/logic"
	"github.com/Greybash/ngo-service/internal/model"
	"github.com/gin-gonic/gin"
)

// AdminHandler 管理后台，路由挂在 RequireStaff 之后
type AdminHandler struct {
	dashboardLogic *logic.DashboardLogic
	donationLogic  *logic.DonationLogic
	volunteerLogic *logic.VolunteerLogic
	jobLogic       *logic.JobLogic
}

func NewAdminHandler(dashboard *logic.DashboardLogic, donations *logic.DonationLogic, volunteers *logic.VolunteerLogic, jobs *logic.JobLogic) *AdminHandler {
	return &AdminHandler{
		dashboardLogic: dashboard,
		donationLogic:  donations,
		volunteerLogic: volunteers,
		jobLogic:       jobs,
	}
}

// Dashboard 后台首页统计
func (h *AdminHandler) Dashboard(c *gin.Context) {
	stats, err := h.dashboardLogic.Stats(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "", stats)
}

// DonationReport 捐款报表
func (h *AdminHandler) DonationReport(c *gin.Context) {
	filter, err := logic.ParseReportFilter(c.Query("start_date"), c.Query("end_date"))
	if err != nil {
		writeError(c, err)
		return
	}

	report, err := h.donationLogic.Report(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "", report)
}

// Volunteers 志愿者申请列表
func (h *AdminHandler) Volunteers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	page, pageSize = logic.NormalizePage(page, pageSize)

	apps, total, err := h.volunteerLogic.List(c.Request.Context(), c.Query("status"), page, pageSize)
	if err != nil {
		writeError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "", VolunteerListResponse{
		Volunteers: apps,
		Pagination: newPagination(page, pageSize, total),
	})
}

// ReviewVolunteer 通过或拒绝志愿者申请
func (h *AdminHandler) ReviewVolunteer(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req ReviewVolunteerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	app, err := h.volunteerLogic.Review(c.Request.Context(), id, req.Action)
	if err != nil {
		writeError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Volunteer application "+string(app.Status), app)
}

// Jobs 全部岗位
func (h *AdminHandler) Jobs(c *gin.Context) {
	jobs, err := h.jobLogic.ListJobs(c.Request.Context(), false)
	if err != nil {
		writeError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "", jobs)
}

// CreateJob 新建岗位，is_active 缺省为开放
func (h *AdminHandler) CreateJob(c *gin.Context) {
	var req JobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	job, err := h.jobLogic.CreateJob(c.Request.Context(), &logic.CreateJobRequest{
		Title:          req.Title,
		EmploymentType: req.EmploymentType,
		Location:       req.Location,
		SalaryRange:    req.SalaryRange,
		Description:    req.Description,
		Requirements:   req.Requirements,
		Deadline:       req.Deadline,
		IsActive:       active,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	SuccessResponse(c, http.StatusCreated, "Job created", job)
}

// Applications 岗位申请列表
func (h *AdminHandler) Applications(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	list, err := h.jobLogic.ListApplications(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "", ApplicationListResponse{
		Job:          list.Job,
		Applications: list.Applications,
		StatusCounts: list.StatusCounts,
	})
}

// UpdateApplicationStatus 更新申请状态
func (h *AdminHandler) UpdateApplicationStatus(c *gin.Context) {
	jobID, ok := parseID(c, "id")
	if !ok {
		return
	}
	appID, ok := parseID(c, "app_id")
	if !ok {
		return
	}

	var req ApplicationStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	app, err := h.jobLogic.UpdateApplicationStatus(c.Request.Context(), jobID, appID, model.ApplicationStatus(req.Status))
	if err != nil {
		writeError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Application status updated to "+app.Status.Label(), app)
}

// ExportApplications 导出 CSV
func (h *AdminHandler) ExportApplications(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var buf bytes.Buffer
	filename, err := h.jobLogic.ExportApplications(c.Request.Context(), id, &buf, time.Now())
	if err != nil {
		writeError(c, err)
		return
	}

	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": filename})
	if disposition == "" {
		disposition = "attachment; filename=applications.csv"
	}
	c.Header("Content-Disposition", disposition)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

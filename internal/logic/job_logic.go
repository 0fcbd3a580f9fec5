package logic

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Greybash/ngo-service/internal/logger"
	"github.com/Greybash/ngo-service/internal/model"
	"github.com/Greybash/ngo-service/internal/notify"
	"github.com/Greybash/ngo-service/internal/storage"
	"gorm.io/gorm"
)

// JobLogic 招聘岗位与申请
type JobLogic struct {
	db       *gorm.DB
	store    storage.FileStore
	notifier notify.Notifier
	baseURL  string
}

// NewJobLogic 创建岗位业务逻辑，baseURL 用于拼接本地简历的绝对地址
func NewJobLogic(db *gorm.DB, store storage.FileStore, n notify.Notifier, baseURL string) *JobLogic {
	return &JobLogic{
		db:       db,
		store:    store,
		notifier: n,
		baseURL:  strings.TrimRight(baseURL, "/"),
	}
}

// CreateJobRequest 新建岗位
type CreateJobRequest struct {
	Title          string
	EmploymentType string
	Location       string
	SalaryRange    string
	Description    string
	Requirements   string
	Deadline       string // YYYY-MM-DD，可为空
	IsActive       bool
}

// CreateJob 创建岗位
func (j *JobLogic) CreateJob(ctx context.Context, req *CreateJobRequest) (*model.JobModel, error) {
	job := &model.JobModel{
		Title:          strings.TrimSpace(req.Title),
		EmploymentType: strings.TrimSpace(req.EmploymentType),
		Location:       strings.TrimSpace(req.Location),
		SalaryRange:    strings.TrimSpace(req.SalaryRange),
		Description:    strings.TrimSpace(req.Description),
		Requirements:   strings.TrimSpace(req.Requirements),
		IsActive:       req.IsActive,
	}

	if job.Title == "" || job.Location == "" || job.Description == "" || job.Requirements == "" {
		return nil, newValidationError("", "please fill in all required fields")
	}
	if job.EmploymentType == "" {
		job.EmploymentType = model.DefaultEmploymentType
	}

	if d := strings.TrimSpace(req.Deadline); d != "" {
		deadline, err := time.ParseInLocation(reportDateLayout, d, time.Local)
		if err != nil {
			return nil, newValidationError("deadline", "invalid deadline date")
		}
		job.Deadline = &deadline
	}

	if err := j.db.WithContext(ctx).Create(job).Error; err != nil {
		return nil, fmt.Errorf("创建岗位失败: %w", err)
	}
	return job, nil
}

// ListJobs 岗位列表，activeOnly 时只返回开放中的岗位
func (j *JobLogic) ListJobs(ctx context.Context, activeOnly bool) ([]model.JobModel, error) {
	query := j.db.WithContext(ctx).Model(&model.JobModel{})
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var jobs []model.JobModel
	if err := query.Order("created_at DESC").Find(&jobs).Error; err != nil {
		return nil, fmt.Errorf("获取岗位列表失败: %w", err)
	}
	return jobs, nil
}

// GetJob 岗位详情，activeOnly 时已关闭的岗位视为不存在
func (j *JobLogic) GetJob(ctx context.Context, id int64, activeOnly bool) (*model.JobModel, error) {
	query := j.db.WithContext(ctx)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var job model.JobModel
	if err := query.First(&job, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("获取岗位详情失败: %w", err)
	}
	return &job, nil
}

// HasApplied 用户是否已申请过该岗位
func (j *JobLogic) HasApplied(ctx context.Context, jobID, userID int64) (bool, error) {
	var count int64
	err := j.db.WithContext(ctx).
		Model(&model.JobApplicationModel{}).
		Where("job_id = ? AND user_id = ?", jobID, userID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("查询申请记录失败: %w", err)
	}
	return count > 0, nil
}

// ApplyRequest 岗位申请表单
type ApplyRequest struct {
	JobID             int64
	UserID            *int64
	Name              string
	Email             string
	Phone             string
	CoverLetter       string
	ResumeName        string
	ResumeContentType string
	Resume            io.Reader
}

func (j *JobLogic) validateApplication(req *ApplyRequest) error {
	switch {
	case strings.TrimSpace(req.Name) == "":
		return newValidationError("name", "name is required")
	case strings.TrimSpace(req.Email) == "":
		return newValidationError("email", "email is required")
	case strings.TrimSpace(req.Phone) == "":
		return newValidationError("phone", "phone is required")
	case strings.TrimSpace(req.CoverLetter) == "":
		return newValidationError("cover_letter", "cover letter is required")
	case req.Resume == nil || req.ResumeName == "":
		return newValidationError("resume", "resume is required")
	}
	return nil
}

// Apply 申请岗位，同一账户或同一邮箱只能申请一次
func (j *JobLogic) Apply(ctx context.Context, req *ApplyRequest) (*model.JobApplicationModel, error) {
	job, err := j.GetJob(ctx, req.JobID, true)
	if err != nil {
		return nil, err
	}

	if req.UserID != nil {
		applied, err := j.HasApplied(ctx, job.Id, *req.UserID)
		if err != nil {
			return nil, err
		}
		if applied {
			return nil, ErrAlreadyApplied
		}
	}

	if err := j.validateApplication(req); err != nil {
		return nil, err
	}
	email := strings.TrimSpace(req.Email)

	var count int64
	if err := j.db.WithContext(ctx).Model(&model.JobApplicationModel{}).
		Where("job_id = ? AND email = ?", job.Id, email).
		Count(&count).Error; err != nil {
		return nil, fmt.Errorf("查询申请记录失败: %w", err)
	}
	if count > 0 {
		return nil, ErrAlreadyApplied
	}

	stored, err := j.store.Save(ctx, req.ResumeName, req.Resume, req.ResumeContentType)
	if err != nil {
		return nil, fmt.Errorf("保存简历失败: %w", err)
	}

	app := &model.JobApplicationModel{
		JobID:       job.Id,
		UserID:      req.UserID,
		Name:        strings.TrimSpace(req.Name),
		Email:       email,
		Phone:       strings.TrimSpace(req.Phone),
		CoverLetter: strings.TrimSpace(req.CoverLetter),
		ResumeKey:   stored.Key,
		ResumeURL:   stored.URL,
		Status:      model.ApplicationStatusPending,
	}
	if err := j.db.WithContext(ctx).Create(app).Error; err != nil {
		j.discardResume(ctx, stored.Key)

		// 并发提交时由唯一索引兜底
		var again int64
		if cerr := j.db.WithContext(ctx).Model(&model.JobApplicationModel{}).
			Where("job_id = ? AND email = ?", job.Id, email).
			Count(&again).Error; cerr != nil {
			return nil, fmt.Errorf("保存岗位申请失败: %w", errors.Join(err, cerr))
		}
		if again > 0 {
			return nil, ErrAlreadyApplied
		}
		return nil, fmt.Errorf("保存岗位申请失败: %w", err)
	}

	logger.Info("Application %d received for job %d", app.Id, job.Id)
	return app, nil
}

// discardResume 申请未落库时删除已上传的简历，失败只记录日志
func (j *JobLogic) discardResume(ctx context.Context, key string) {
	if err := j.store.Delete(context.WithoutCancel(ctx), key); err != nil {
		logger.Warn("Failed to remove orphaned resume %s: %v", key, err)
	}
}

// ApplicationList 岗位下的申请及各状态数量
type ApplicationList struct {
	Job          *model.JobModel
	Applications []model.JobApplicationModel
	StatusCounts map[model.ApplicationStatus]int64
}

// ListApplications 岗位申请列表
func (j *JobLogic) ListApplications(ctx context.Context, jobID int64) (*ApplicationList, error) {
	job, err := j.GetJob(ctx, jobID, false)
	if err != nil {
		return nil, err
	}

	var apps []model.JobApplicationModel
	if err := j.db.WithContext(ctx).
		Where("job_id = ?", jobID).
		Order("created_at DESC").
		Find(&apps).Error; err != nil {
		return nil, fmt.Errorf("获取岗位申请列表失败: %w", err)
	}

	counts := make(map[model.ApplicationStatus]int64, len(model.ApplicationStatuses))
	for _, s := range model.ApplicationStatuses {
		counts[s] = 0
	}
	for _, a := range apps {
		counts[a.Status]++
	}

	return &ApplicationList{Job: job, Applications: apps, StatusCounts: counts}, nil
}

// UpdateApplicationStatus 更新申请状态，入围和拒绝会通知申请人
func (j *JobLogic) UpdateApplicationStatus(ctx context.Context, jobID, appID int64, status model.ApplicationStatus) (*model.JobApplicationModel, error) {
	if !status.Valid() {
		return nil, newValidationError("status", "unknown status %q", string(status))
	}

	job, err := j.GetJob(ctx, jobID, false)
	if err != nil {
		return nil, err
	}

	var app model.JobApplicationModel
	if err := j.db.WithContext(ctx).Where("job_id = ?", jobID).First(&app, appID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, fmt.Errorf("获取岗位申请失败: %w", err)
	}

	if err := j.db.WithContext(ctx).Model(&app).Update("status", status).Error; err != nil {
		return nil, fmt.Errorf("更新岗位申请状态失败: %w", err)
	}
	app.Status = status

	if msg, ok := notify.ApplicationStatusMessage(&app, job.Title); ok && j.notifier != nil {
		if err := j.notifier.Notify(ctx, msg); err != nil {
			logger.Warn("Failed to queue status mail for application %d: %v", app.Id, err)
		}
	}

	return &app, nil
}

// CloseExpiredJobs 关闭截止日期已过的岗位
func (j *JobLogic) CloseExpiredJobs(ctx context.Context, now time.Time) (int64, error) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	res := j.db.WithContext(ctx).
		Model(&model.JobModel{}).
		Where("is_active = ? AND deadline IS NOT NULL AND deadline < ?", true, today).
		Update("is_active", false)
	if res.Error != nil {
		return 0, fmt.Errorf("关闭过期岗位失败: %w", res.Error)
	}
	return res.RowsAffected, nil
}

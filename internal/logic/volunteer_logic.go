package logic

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Greybash/ngo-service/internal/model"
	"gorm.io/gorm"
)

// VolunteerLogic 志愿者申请
type VolunteerLogic struct {
	db *gorm.DB
}

// NewVolunteerLogic 创建志愿者业务逻辑
func NewVolunteerLogic(db *gorm.DB) *VolunteerLogic {
	return &VolunteerLogic{db: db}
}

// VolunteerRequest 志愿者申请表单
type VolunteerRequest struct {
	UserID         *int64
	Name           string
	Email          string
	Phone          string
	Address        string
	AreaOfInterest model.VolunteerArea
	Availability   string
	Experience     string
}

func (v *VolunteerLogic) validateVolunteer(req *VolunteerRequest) error {
	switch {
	case strings.TrimSpace(req.Name) == "":
		return newValidationError("name", "name is required")
	case strings.TrimSpace(req.Email) == "":
		return newValidationError("email", "email is required")
	case strings.TrimSpace(req.Phone) == "":
		return newValidationError("phone", "phone is required")
	case !req.AreaOfInterest.Valid():
		return newValidationError("area_of_interest", "unknown area %q", string(req.AreaOfInterest))
	case strings.TrimSpace(req.Availability) == "":
		return newValidationError("availability", "availability is required")
	}
	return nil
}

// Submit 提交志愿者申请
func (v *VolunteerLogic) Submit(ctx context.Context, req *VolunteerRequest) (*model.VolunteerApplicationModel, error) {
	if err := v.validateVolunteer(req); err != nil {
		return nil, err
	}

	app := &model.VolunteerApplicationModel{
		UserID:         req.UserID,
		Name:           strings.TrimSpace(req.Name),
		Email:          strings.TrimSpace(req.Email),
		Phone:          strings.TrimSpace(req.Phone),
		Address:        strings.TrimSpace(req.Address),
		AreaOfInterest: req.AreaOfInterest,
		Availability:   strings.TrimSpace(req.Availability),
		Experience:     strings.TrimSpace(req.Experience),
		Status:         model.VolunteerStatusPending,
	}
	if err := v.db.WithContext(ctx).Create(app).Error; err != nil {
		return nil, fmt.Errorf("保存志愿者申请失败: %w", err)
	}
	return app, nil
}

// List 志愿者申请列表，按提交时间倒序
func (v *VolunteerLogic) List(ctx context.Context, status string, page, pageSize int) ([]model.VolunteerApplicationModel, int64, error) {
	query := v.db.WithContext(ctx).Model(&model.VolunteerApplicationModel{})
	if status != "" {
		if !model.VolunteerStatus(status).Valid() {
			return nil, 0, newValidationError("status", "unknown status %q", status)
		}
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("统计志愿者申请失败: %w", err)
	}

	page, pageSize = NormalizePage(page, pageSize)
	var apps []model.VolunteerApplicationModel
	if err := query.Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&apps).Error; err != nil {
		return nil, 0, fmt.Errorf("获取志愿者申请列表失败: %w", err)
	}
	return apps, total, nil
}

// Review 审核志愿者申请，action 为 approve 或 reject
func (v *VolunteerLogic) Review(ctx context.Context, id int64, action string) (*model.VolunteerApplicationModel, error) {
	var status model.VolunteerStatus
	switch action {
	case "approve":
		status = model.VolunteerStatusApproved
	case "reject":
		status = model.VolunteerStatusRejected
	default:
		return nil, newValidationError("action", "action must be approve or reject")
	}

	var app model.VolunteerApplicationModel
	if err := v.db.WithContext(ctx).First(&app, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVolunteerNotFound
		}
		return nil, fmt.Errorf("获取志愿者申请失败: %w", err)
	}

	app.Status = status
	if err := v.db.WithContext(ctx).Model(&app).Update("status", status).Error; err != nil {
		return nil, fmt.Errorf("更新志愿者申请状态失败: %w", err)
	}
	return &app, nil
}

// NormalizePage 默认第一页，每页 10 条，最多 100 条
func NormalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize
}

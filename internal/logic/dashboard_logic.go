package logic

import (
	"context"
	"fmt"

	"github.com/Greybash/ngo-service/internal/model"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const dashboardRecentLimit = 10

// DashboardStats 管理后台首页
type DashboardStats struct {
	TotalDonations      decimal.Decimal                   `json:"total_donations"`
	DonationsCount      int64                             `json:"donations_count"`
	PendingVolunteers   int64                             `json:"pending_volunteers"`
	ApprovedVolunteers  int64                             `json:"approved_volunteers"`
	PendingApplications int64                             `json:"pending_applications"`
	ActiveJobs          int64                             `json:"active_jobs"`
	RecentDonations     []model.DonationModel             `json:"recent_donations"`
	RecentVolunteers    []model.VolunteerApplicationModel `json:"recent_volunteers"`
	DonationsByCause    []CauseTotal                      `json:"donations_by_cause"`
}

// DashboardLogic 管理后台统计
type DashboardLogic struct {
	db        *gorm.DB
	donations *DonationLogic
}

// NewDashboardLogic 创建后台统计逻辑
func NewDashboardLogic(db *gorm.DB, donations *DonationLogic) *DashboardLogic {
	return &DashboardLogic{db: db, donations: donations}
}

// Stats 汇总捐款、志愿者和招聘数据
func (d *DashboardLogic) Stats(ctx context.Context) (*DashboardStats, error) {
	db := d.db.WithContext(ctx)
	stats := &DashboardStats{}

	byCause, total, count, err := d.donations.causeBreakdown(
		db.Model(&model.DonationModel{}).Where("status = ?", model.DonationStatusCompleted))
	if err != nil {
		return nil, err
	}
	stats.TotalDonations = total
	stats.DonationsCount = count
	stats.DonationsByCause = byCause

	counts := []struct {
		model interface{}
		where string
		arg   interface{}
		dest  *int64
	}{
		{&model.VolunteerApplicationModel{}, "status = ?", model.VolunteerStatusPending, &stats.PendingVolunteers},
		{&model.VolunteerApplicationModel{}, "status = ?", model.VolunteerStatusApproved, &stats.ApprovedVolunteers},
		{&model.JobApplicationModel{}, "status = ?", model.ApplicationStatusPending, &stats.PendingApplications},
		{&model.JobModel{}, "is_active = ?", true, &stats.ActiveJobs},
	}
	for _, c := range counts {
		if err := db.Model(c.model).Where(c.where, c.arg).Count(c.dest).Error; err != nil {
			return nil, fmt.Errorf("统计后台数据失败: %w", err)
		}
	}

	if err := db.Where("status = ?", model.DonationStatusCompleted).
		Order("created_at DESC").
		Limit(dashboardRecentLimit).
		Find(&stats.RecentDonations).Error; err != nil {
		return nil, fmt.Errorf("获取最近捐款失败: %w", err)
	}

	if err := db.Order("created_at DESC").
		Limit(dashboardRecentLimit).
		Find(&stats.RecentVolunteers).Error; err != nil {
		return nil, fmt.Errorf("获取最近志愿者申请失败: %w", err)
	}

	return stats, nil
}

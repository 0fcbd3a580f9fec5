package scheduler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Greybash/ngo-service/internal/config"
	"github.com/Greybash/ngo-service/internal/logger"
	"github.com/Greybash/ngo-service/internal/metrics"
	"github.com/Greybash/ngo-service/internal/model"
	"github.com/go-co-op/gocron/v2"
	"gorm.io/gorm"
)

// 日志中最多列出的订单数
const pendingReportLimit = 20

// PendingDonationJob 报告长时间未支付的捐款，不修改状态
type PendingDonationJob struct {
	db     *gorm.DB
	config *config.Config
}

// NewPendingDonationJob 创建待支付捐款巡检任务
func NewPendingDonationJob(db *gorm.DB, cfg *config.Config) *PendingDonationJob {
	return &PendingDonationJob{
		db:     db,
		config: cfg,
	}
}

// GetName 获取任务名称
func (j *PendingDonationJob) GetName() string {
	return "stale_pending_donations"
}

// GetSchedule 获取调度配置
func (j *PendingDonationJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(time.Duration(j.config.Task.Interval) * time.Second)
}

// Execute 执行任务
func (j *PendingDonationJob) Execute() {
	if _, err := j.Run(context.Background(), time.Now()); err != nil {
		logger.Error("Pending donation scan failed: %v", err)
	}
}

// Run 统计早于 now-PendingAlertAge 的待支付捐款并更新指标
func (j *PendingDonationJob) Run(ctx context.Context, now time.Time) (int64, error) {
	cutoff := now.Add(-j.config.Task.PendingAlertAge)

	query := j.db.WithContext(ctx).
		Model(&model.DonationModel{}).
		Where("status = ? AND created_at < ?", model.DonationStatusPending, cutoff)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("统计待支付捐款失败: %w", err)
	}
	metrics.PendingDonations.Set(float64(count))

	if count == 0 {
		return 0, nil
	}

	var orderIDs []string
	if err := query.Order("created_at").Limit(pendingReportLimit).Pluck("order_id", &orderIDs).Error; err != nil {
		return count, fmt.Errorf("获取待支付订单失败: %w", err)
	}
	logger.Warn("%d donations pending for more than %s: %s", count, j.config.Task.PendingAlertAge, strings.Join(orderIDs, ", "))
	return count, nil
}

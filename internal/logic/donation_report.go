package logic

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Greybash/ngo-service/internal/model"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const reportDateLayout = "2006-01-02"

// ReportFilter 报表时间范围，End 为开区间
type ReportFilter struct {
	Start *time.Time
	End   *time.Time
}

// CauseTotal 按用途汇总
type CauseTotal struct {
	Cause      model.Cause     `json:"cause"`
	Label      string          `json:"label"`
	Total      decimal.Decimal `json:"total"`
	Count      int64           `json:"count"`
	Percentage float64         `json:"percentage"`
}

// DonationReport 已完成捐款报表
type DonationReport struct {
	Donations []model.DonationModel `json:"donations"`
	Total     decimal.Decimal       `json:"total"`
	Count     int64                 `json:"count"`
	ByCause   []CauseTotal          `json:"by_cause"`
}

// ParseReportFilter 解析 YYYY-MM-DD，结束日期包含当天全天
func ParseReportFilter(startDate, endDate string) (ReportFilter, error) {
	var f ReportFilter

	if s := strings.TrimSpace(startDate); s != "" {
		start, err := time.ParseInLocation(reportDateLayout, s, time.Local)
		if err != nil {
			return f, newValidationError("start_date", "must be in YYYY-MM-DD format")
		}
		f.Start = &start
	}

	if s := strings.TrimSpace(endDate); s != "" {
		end, err := time.ParseInLocation(reportDateLayout, s, time.Local)
		if err != nil {
			return f, newValidationError("end_date", "must be in YYYY-MM-DD format")
		}
		end = end.AddDate(0, 0, 1)
		f.End = &end
	}

	if f.Start != nil && f.End != nil && !f.Start.Before(*f.End) {
		return f, newValidationError("end_date", "must not be before start_date")
	}
	return f, nil
}

func (f ReportFilter) apply(db *gorm.DB) *gorm.DB {
	if f.Start != nil {
		db = db.Where("created_at >= ?", *f.Start)
	}
	if f.End != nil {
		db = db.Where("created_at < ?", *f.End)
	}
	return db
}

// Report 已完成捐款的总额和按用途占比
func (l *DonationLogic) Report(ctx context.Context, f ReportFilter) (*DonationReport, error) {
	completed := func() *gorm.DB {
		return f.apply(l.db.WithContext(ctx).
			Model(&model.DonationModel{}).
			Where("status = ?", model.DonationStatusCompleted))
	}

	var donations []model.DonationModel
	if err := completed().Order("created_at DESC").Find(&donations).Error; err != nil {
		return nil, fmt.Errorf("获取捐款列表失败: %w", err)
	}

	byCause, total, count, err := l.causeBreakdown(completed())
	if err != nil {
		return nil, err
	}

	return &DonationReport{
		Donations: donations,
		Total:     total,
		Count:     count,
		ByCause:   byCause,
	}, nil
}

// causeBreakdown 按用途分组统计，total 为 0 时占比为 0
func (l *DonationLogic) causeBreakdown(query *gorm.DB) ([]CauseTotal, decimal.Decimal, int64, error) {
	var rows []struct {
		Cause model.Cause
		Total decimal.Decimal
		Count int64
	}
	err := query.
		Select("cause, COALESCE(SUM(amount), 0) AS total, COUNT(*) AS count").
		Group("cause").
		Order("total DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, decimal.Zero, 0, fmt.Errorf("按用途统计捐款失败: %w", err)
	}

	total := decimal.Zero
	var count int64
	for _, r := range rows {
		total = total.Add(r.Total)
		count += r.Count
	}

	result := make([]CauseTotal, 0, len(rows))
	for _, r := range rows {
		pct := 0.0
		if total.IsPositive() {
			pct = r.Total.Div(total).Mul(hundred).Round(2).InexactFloat64()
		}
		result = append(result, CauseTotal{
			Cause:      r.Cause,
			Label:      r.Cause.Label(),
			Total:      r.Total,
			Count:      r.Count,
			Percentage: pct,
		})
	}
	return result, total, count, nil
}

// DonationForm 捐款表单预填数据
type DonationForm struct {
	FirstName   string        `json:"first_name"`
	LastName    string        `json:"last_name"`
	Email       string        `json:"email"`
	Phone       string        `json:"phone"`
	CountryCode string        `json:"country_code"`
	Country     string        `json:"country"`
	State       string        `json:"state"`
	City        string        `json:"city"`
	PostalCode  string        `json:"postal_code"`
	Address     string        `json:"address"`
	Causes      []model.Cause `json:"causes"`
	TopDonors   []TopDonor    `json:"top_donors"`
}

// PrefillForm 用账户和资料预填捐款表单
func (l *DonationLogic) PrefillForm(ctx context.Context, userID int64) (*DonationForm, error) {
	var user model.UserModel
	if err := l.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("获取用户失败: %w", err)
	}

	form := &DonationForm{
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		Causes:    model.Causes,
	}

	profile, err := l.profiles.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile != nil {
		form.Phone = profile.Phone
		form.CountryCode = profile.CountryCode
		form.Country = profile.Country
		form.State = profile.State
		form.City = profile.City
		form.PostalCode = profile.PostalCode
		form.Address = profile.Address
	}

	donors, err := l.TopDonors(ctx)
	if err != nil {
		return nil, err
	}
	form.TopDonors = donors

	return form, nil
}

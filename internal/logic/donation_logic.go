package logic

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Greybash/ngo-service/internal/cache"
	"github.com/Greybash/ngo-service/internal/gateway"
	"github.com/Greybash/ngo-service/internal/logger"
	"github.com/Greybash/ngo-service/internal/metrics"
	"github.com/Greybash/ngo-service/internal/model"
	"github.com/Greybash/ngo-service/internal/notify"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	topDonorsCacheKey = "donations:top"
	topDonorsTTL      = 5 * time.Minute
	topDonorsLimit    = 10
)

var (
	hundred = decimal.NewFromInt(100)
	// decimal(10,2) 的上限
	maxAmount = decimal.New(1, 8)
)

// DonationLogic 捐款业务逻辑
type DonationLogic struct {
	db       *gorm.DB
	gateway  gateway.Gateway
	profiles *ProfileLogic
	cache    cache.Cache
	notifier notify.Notifier
	currency string
}

// NewDonationLogic 创建捐款业务逻辑，cache 和 notifier 可以为 nil
func NewDonationLogic(db *gorm.DB, gw gateway.Gateway, c cache.Cache, n notify.Notifier, currency string) *DonationLogic {
	if c == nil {
		c = cache.NewMemoryCache(topDonorsTTL, 2*topDonorsTTL)
	}
	if currency == "" {
		currency = "INR"
	}
	return &DonationLogic{
		db:       db,
		gateway:  gw,
		profiles: NewProfileLogic(db),
		cache:    c,
		notifier: n,
		currency: currency,
	}
}

// InitiateDonationRequest 捐款表单
type InitiateDonationRequest struct {
	UserID      *int64
	FirstName   string
	LastName    string
	Email       string
	Phone       string
	CountryCode string
	Country     string
	State       string
	City        string
	PostalCode  string
	Address     string
	Amount      decimal.Decimal
	Cause       model.Cause
	ShowName    bool
}

// InitiateResult 交给前端支付组件的数据
type InitiateResult struct {
	OrderID     string
	DonationID  int64
	AmountMinor int64
	Currency    string
	KeyID       string
}

// ConfirmResult Applied 为 false 表示重复回调或并发中落败，未做任何修改
type ConfirmResult struct {
	Donation *model.DonationModel
	Applied  bool
}

// TopDonor 捐款榜条目
type TopDonor struct {
	Name        string          `json:"name"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// ToMinorUnits 元转分，截断到整数
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).IntPart()
}

func (l *DonationLogic) validateDonation(req *InitiateDonationRequest) error {
	if !req.Amount.IsPositive() {
		return newValidationError("amount", "amount must be greater than zero")
	}
	if !req.Amount.Equal(req.Amount.Truncate(2)) {
		return newValidationError("amount", "amount can have at most two decimal places")
	}
	if req.Amount.GreaterThanOrEqual(maxAmount) {
		return newValidationError("amount", "amount must be less than %s", maxAmount.String())
	}
	if !req.Cause.Valid() {
		return newValidationError("cause", "unknown cause %q", string(req.Cause))
	}
	if strings.TrimSpace(req.Email) == "" {
		return newValidationError("email", "email is required")
	}

	// 与 donation 表的列宽一致，超长时在下单前拒绝
	limits := []struct {
		field string
		value string
		max   int
	}{
		{"first_name", req.FirstName, 100},
		{"last_name", req.LastName, 100},
		{"email", req.Email, 254},
		{"phone", req.Phone, 15},
		{"country_code", req.CountryCode, 5},
		{"country", req.Country, 100},
		{"state", req.State, 100},
		{"city", req.City, 100},
		{"postal_code", req.PostalCode, 10},
		{"address", req.Address, 255},
	}
	for _, f := range limits {
		if utf8.RuneCountInString(f.value) > f.max {
			return newValidationError(f.field, "%s must be at most %d characters", f.field, f.max)
		}
	}
	return nil
}

// InitiateDonation 先向网关下单，成功后才保存待支付记录
func (l *DonationLogic) InitiateDonation(ctx context.Context, req *InitiateDonationRequest) (*InitiateResult, error) {
	if err := l.validateDonation(req); err != nil {
		return nil, err
	}

	amountMinor := ToMinorUnits(req.Amount)
	order, err := l.gateway.CreateOrder(ctx, amountMinor, l.currency, true)
	if err != nil {
		metrics.GatewayErrors.Inc()
		logger.Error("Failed to create gateway order for %s: %v", req.Email, err)
		if !errors.Is(err, gateway.ErrGateway) {
			err = fmt.Errorf("%w: %v", gateway.ErrGateway, err)
		}
		return nil, err
	}

	donation := &model.DonationModel{
		UserID:      req.UserID,
		FirstName:   strings.TrimSpace(req.FirstName),
		LastName:    strings.TrimSpace(req.LastName),
		Email:       strings.TrimSpace(req.Email),
		Phone:       strings.TrimSpace(req.Phone),
		CountryCode: strings.TrimSpace(req.CountryCode),
		Country:     strings.TrimSpace(req.Country),
		State:       strings.TrimSpace(req.State),
		City:        strings.TrimSpace(req.City),
		PostalCode:  strings.TrimSpace(req.PostalCode),
		Address:     strings.TrimSpace(req.Address),
		Amount:      req.Amount,
		Cause:       req.Cause,
		OrderID:     order.ID,
		Status:      model.DonationStatusPending,
		ShowName:    req.ShowName,
	}

	if err := l.db.WithContext(ctx).Create(donation).Error; err != nil {
		return nil, fmt.Errorf("保存捐款记录失败: %w", err)
	}

	metrics.DonationsInitiated.WithLabelValues(string(donation.Cause)).Inc()
	logger.Info("Donation %d created with order %s (%s %s)", donation.Id, order.ID, req.Amount.StringFixed(2), l.currency)

	return &InitiateResult{
		OrderID:     order.ID,
		DonationID:  donation.Id,
		AmountMinor: amountMinor,
		Currency:    l.currency,
		KeyID:       l.gateway.KeyID(),
	}, nil
}

// ConfirmPayment 处理网关支付成功回调
func (l *DonationLogic) ConfirmPayment(ctx context.Context, orderID, paymentID, signature string) (*ConfirmResult, error) {
	if err := l.gateway.VerifySignature(orderID, paymentID, signature); err != nil {
		metrics.SignatureFailures.Inc()
		logger.Warn("Rejected payment callback for order %s: %v", orderID, err)
		if !errors.Is(err, gateway.ErrSignature) {
			err = fmt.Errorf("%w: %v", gateway.ErrSignature, err)
		}
		return nil, err
	}

	donation, err := l.findByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	switch donation.Status {
	case model.DonationStatusCompleted, model.DonationStatusCancelled, model.DonationStatusFailed:
		logger.Info("Ignoring payment callback for order %s in status %s", orderID, donation.Status)
		return &ConfirmResult{Donation: donation, Applied: false}, nil
	case model.DonationStatusPending:
	default:
		return nil, fmt.Errorf("donation %d has unknown status %q", donation.Id, donation.Status)
	}

	now := time.Now()
	res := l.db.WithContext(ctx).
		Model(&model.DonationModel{}).
		Where("order_id = ? AND status = ?", orderID, model.DonationStatusPending).
		Updates(map[string]interface{}{
			"payment_id": paymentID,
			"signature":  signature,
			"status":     model.DonationStatusCompleted,
			"updated_at": now,
		})
	if res.Error != nil {
		return nil, fmt.Errorf("更新捐款状态失败: %w", res.Error)
	}

	if res.RowsAffected == 0 {
		// 并发的确认或取消先落库
		current, err := l.findByOrderID(ctx, orderID)
		if err != nil {
			return nil, err
		}
		logger.Info("Payment callback for order %s lost the race, donation is %s", orderID, current.Status)
		return &ConfirmResult{Donation: current, Applied: false}, nil
	}

	donation.PaymentID = paymentID
	donation.Signature = signature
	donation.Status = model.DonationStatusCompleted
	donation.UpdatedAt = now

	logger.Info("Donation %d completed with payment %s", donation.Id, paymentID)
	l.afterCompleted(ctx, donation)

	return &ConfirmResult{Donation: donation, Applied: true}, nil
}

// afterCompleted 支付完成后的附带操作，失败只记录日志
func (l *DonationLogic) afterCompleted(ctx context.Context, d *model.DonationModel) {
	if d.UserID != nil {
		if err := l.profiles.SyncFromDonation(ctx, *d.UserID, d); err != nil {
			metrics.ProfileSyncFailures.Inc()
			logger.Error("Profile sync after donation %d failed: %v", d.Id, err)
		}
	}

	if err := l.cache.Delete(ctx, topDonorsCacheKey); err != nil {
		logger.Warn("Failed to invalidate top donors cache: %v", err)
	}

	metrics.ObserveCompleted(string(d.Cause), d.Amount)

	if l.notifier != nil && d.Email != "" {
		if err := l.notifier.Notify(ctx, notify.ReceiptMessage(d)); err != nil {
			logger.Warn("Failed to queue receipt for donation %d: %v", d.Id, err)
		}
	}
}

// CancelPayment 取消待支付的捐款，未知订单或已结束的捐款不做处理
func (l *DonationLogic) CancelPayment(ctx context.Context, orderID string) (bool, error) {
	if orderID == "" {
		return false, nil
	}

	donation, err := l.findByOrderID(ctx, orderID)
	if errors.Is(err, ErrDonationNotFound) {
		logger.Info("Cancel for unknown order %s ignored", orderID)
		return false, nil
	}
	if err != nil {
		return false, err
	}

	switch donation.Status {
	case model.DonationStatusCompleted, model.DonationStatusCancelled, model.DonationStatusFailed:
		logger.Info("Cancel for order %s ignored, donation is %s", orderID, donation.Status)
		return false, nil
	case model.DonationStatusPending:
	default:
		return false, fmt.Errorf("donation %d has unknown status %q", donation.Id, donation.Status)
	}

	res := l.db.WithContext(ctx).
		Model(&model.DonationModel{}).
		Where("order_id = ? AND status = ?", orderID, model.DonationStatusPending).
		Updates(map[string]interface{}{
			"status":     model.DonationStatusCancelled,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return false, fmt.Errorf("取消捐款失败: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return false, nil
	}

	metrics.DonationsCancelled.Inc()
	logger.Info("Donation %d cancelled (order %s)", donation.Id, orderID)
	return true, nil
}

// GetDonation 获取捐款详情
func (l *DonationLogic) GetDonation(ctx context.Context, id int64) (*model.DonationModel, error) {
	var donation model.DonationModel
	if err := l.db.WithContext(ctx).First(&donation, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDonationNotFound
		}
		return nil, fmt.Errorf("获取捐款详情失败: %w", err)
	}
	return &donation, nil
}

func (l *DonationLogic) findByOrderID(ctx context.Context, orderID string) (*model.DonationModel, error) {
	var donation model.DonationModel
	if err := l.db.WithContext(ctx).Where("order_id = ?", orderID).First(&donation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDonationNotFound
		}
		return nil, fmt.Errorf("查询捐款失败: %w", err)
	}
	return &donation, nil
}

// TopDonors 已完成捐款按姓名汇总的前十名，结果缓存
func (l *DonationLogic) TopDonors(ctx context.Context) ([]TopDonor, error) {
	var donors []TopDonor
	err := l.cache.Get(ctx, topDonorsCacheKey, &donors)
	if err == nil {
		return donors, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		logger.Warn("Top donors cache read failed: %v", err)
	}

	var rows []struct {
		FirstName   string
		LastName    string
		ShowName    bool
		TotalAmount decimal.Decimal
	}
	err = l.db.WithContext(ctx).
		Model(&model.DonationModel{}).
		Select("first_name, last_name, show_name, COALESCE(SUM(amount), 0) AS total_amount").
		Where("status = ?", model.DonationStatusCompleted).
		Group("first_name, last_name, show_name").
		Order("total_amount DESC").
		Limit(topDonorsLimit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("查询捐款榜失败: %w", err)
	}

	donors = make([]TopDonor, 0, len(rows))
	for _, r := range rows {
		donors = append(donors, TopDonor{
			Name:        model.DonorDisplayName(r.FirstName, r.LastName, r.ShowName),
			TotalAmount: r.TotalAmount,
		})
	}

	if err := l.cache.Set(ctx, topDonorsCacheKey, donors, topDonorsTTL); err != nil {
		logger.Warn("Top donors cache write failed: %v", err)
	}
	return donors, nil
}

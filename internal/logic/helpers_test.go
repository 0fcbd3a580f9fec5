package logic

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/Greybash/ngo-service/internal/gateway"
	"github.com/Greybash/ngo-service/internal/model"
	"github.com/Greybash/ngo-service/internal/notify"
	"github.com/Greybash/ngo-service/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "test_secret"

// newTestDB 每个测试独立的内存库
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := repository.OpenMemory(name)
	require.NoError(t, err)

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// fakeGateway 按需覆盖行为，默认下单成功并按 testSecret 校验签名
type fakeGateway struct {
	mu                  sync.Mutex
	orders              int
	lastAmount          int64
	lastCurrency        string
	lastCapture         bool
	CreateOrderFunc     func(ctx context.Context, amountMinor int64, currency string, capture bool) (*gateway.Order, error)
	VerifySignatureFunc func(orderID, paymentID, signature string) error
}

func (f *fakeGateway) CreateOrder(ctx context.Context, amountMinor int64, currency string, capture bool) (*gateway.Order, error) {
	f.mu.Lock()
	f.orders++
	n := f.orders
	f.lastAmount, f.lastCurrency, f.lastCapture = amountMinor, currency, capture
	f.mu.Unlock()

	if f.CreateOrderFunc != nil {
		return f.CreateOrderFunc(ctx, amountMinor, currency, capture)
	}
	return &gateway.Order{ID: fmt.Sprintf("order_%d", n), Amount: amountMinor, Currency: currency}, nil
}

func (f *fakeGateway) VerifySignature(orderID, paymentID, signature string) error {
	if f.VerifySignatureFunc != nil {
		return f.VerifySignatureFunc(orderID, paymentID, signature)
	}
	if gateway.Sign(testSecret, orderID, paymentID) != signature {
		return gateway.ErrSignature
	}
	return nil
}

func (f *fakeGateway) KeyID() string { return "rzp_test_key" }

func (f *fakeGateway) orderCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.orders
}

// fakeNotifier 记录所有通知
type fakeNotifier struct {
	mu   sync.Mutex
	msgs []notify.Message
}

func (n *fakeNotifier) Notify(ctx context.Context, msg notify.Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.msgs = append(n.msgs, msg)
	return nil
}

func (n *fakeNotifier) Close() error { return nil }

func (n *fakeNotifier) messages() []notify.Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notify.Message(nil), n.msgs...)
}

func createUser(t *testing.T, db *gorm.DB, email string) *model.UserModel {
	t.Helper()
	user := &model.UserModel{Email: email, PasswordHash: "x", FirstName: "Asha", LastName: "Rao"}
	require.NoError(t, db.Create(user).Error)
	return user
}

func donationRequest(amount string, cause model.Cause) *InitiateDonationRequest {
	return &InitiateDonationRequest{
		FirstName:   "Asha",
		LastName:    "Rao",
		Email:       "asha@example.com",
		Phone:       "9876543210",
		CountryCode: "+91",
		Country:     "India",
		State:       "Karnataka",
		City:        "Mysuru",
		PostalCode:  "570001",
		Address:     "12 Temple Road",
		Amount:      decimal.RequireFromString(amount),
		Cause:       cause,
		ShowName:    true,
	}
}

func countDonations(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&model.DonationModel{}).Count(&n).Error)
	return n
}

func loadDonation(t *testing.T, db *gorm.DB, orderID string) *model.DonationModel {
	t.Helper()
	var d model.DonationModel
	require.NoError(t, db.Where("order_id = ?", orderID).First(&d).Error)
	return &d
}

package logic

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/Greybash/ngo-service/internal/gateway"
	"github.com/Greybash/ngo-service/internal/model"
	"github.com/Greybash/ngo-service/internal/notify"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitiateDonationCreatesPendingRecord(t *testing.T) {
	db := newTestDB(t)
	gw := &fakeGateway{
		CreateOrderFunc: func(ctx context.Context, amountMinor int64, currency string, capture bool) (*gateway.Order, error) {
			return &gateway.Order{ID: "order_X", Amount: amountMinor, Currency: currency}, nil
		},
	}
	l := NewDonationLogic(db, gw, nil, nil, "INR")

	res, err := l.InitiateDonation(context.Background(), donationRequest("500.00", model.CauseEducation))
	require.NoError(t, err)

	assert.Equal(t, "order_X", res.OrderID)
	assert.Equal(t, int64(50000), res.AmountMinor)
	assert.Equal(t, "INR", res.Currency)
	assert.Equal(t, "rzp_test_key", res.KeyID)

	assert.Equal(t, int64(50000), gw.lastAmount)
	assert.Equal(t, "INR", gw.lastCurrency)
	assert.True(t, gw.lastCapture)

	d := loadDonation(t, db, "order_X")
	assert.Equal(t, res.DonationID, d.Id)
	assert.Equal(t, model.DonationStatusPending, d.Status)
	assert.True(t, d.Amount.Equal(decimal.RequireFromString("500.00")), d.Amount.String())
	assert.Equal(t, model.CauseEducation, d.Cause)
	assert.Empty(t, d.PaymentID)
	assert.Empty(t, d.Signature)
	assert.True(t, d.ShowName)
}

func TestInitiateDonationPreservesAmount(t *testing.T) {
	db := newTestDB(t)
	l := NewDonationLogic(db, &fakeGateway{}, nil, nil, "INR")

	tests := []struct {
		amount string
		minor  int64
	}{
		{"0.01", 1},
		{"1.10", 110},
		{"19.99", 1999},
		{"250", 25000},
		{"1234.56", 123456},
		{"99999999.99", 9999999999},
	}
	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			res, err := l.InitiateDonation(context.Background(), donationRequest(tt.amount, model.CauseGeneral))
			require.NoError(t, err)
			assert.Equal(t, tt.minor, res.AmountMinor)

			d := loadDonation(t, db, res.OrderID)
			assert.True(t, d.Amount.Equal(decimal.RequireFromString(tt.amount)), "got %s", d.Amount)
		})
	}
}

func TestInitiateDonationValidation(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(r *InitiateDonationRequest)
		field string
	}{
		{"zero amount", func(r *InitiateDonationRequest) { r.Amount = decimal.Zero }, "amount"},
		{"negative amount", func(r *InitiateDonationRequest) { r.Amount = decimal.RequireFromString("-5") }, "amount"},
		{"three decimals", func(r *InitiateDonationRequest) { r.Amount = decimal.RequireFromString("10.005") }, "amount"},
		{"too large", func(r *InitiateDonationRequest) { r.Amount = decimal.RequireFromString("100000000") }, "amount"},
		{"unknown cause", func(r *InitiateDonationRequest) { r.Cause = "sports" }, "cause"},
		{"missing email", func(r *InitiateDonationRequest) { r.Email = "  " }, "email"},
		{"address too long", func(r *InitiateDonationRequest) { r.Address = strings.Repeat("a", 256) }, "address"},
		{"postal code too long", func(r *InitiateDonationRequest) { r.PostalCode = "56000100011" }, "postal_code"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := newTestDB(t)
			gw := &fakeGateway{}
			l := NewDonationLogic(db, gw, nil, nil, "INR")

			req := donationRequest("500.00", model.CauseEducation)
			tt.edit(req)

			_, err := l.InitiateDonation(context.Background(), req)
			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Equal(t, tt.field, verr.Field)
			assert.Zero(t, gw.orderCount())
			assert.Zero(t, countDonations(t, db))
		})
	}
}

func TestInitiateDonationGatewayFailurePersistsNothing(t *testing.T) {
	db := newTestDB(t)
	gw := &fakeGateway{
		CreateOrderFunc: func(ctx context.Context, amountMinor int64, currency string, capture bool) (*gateway.Order, error) {
			return nil, context.DeadlineExceeded
		},
	}
	l := NewDonationLogic(db, gw, nil, nil, "INR")

	_, err := l.InitiateDonation(context.Background(), donationRequest("500.00", model.CauseEducation))
	assert.ErrorIs(t, err, gateway.ErrGateway)
	assert.Zero(t, countDonations(t, db))
}

func TestConfirmPaymentCompletesAndSyncsProfile(t *testing.T) {
	db := newTestDB(t)
	user := createUser(t, db, "asha@example.com")
	notifier := &fakeNotifier{}
	l := NewDonationLogic(db, &fakeGateway{}, nil, notifier, "INR")

	req := donationRequest("500.00", model.CauseEducation)
	req.UserID = &user.Id
	init, err := l.InitiateDonation(context.Background(), req)
	require.NoError(t, err)

	sig := gateway.Sign(testSecret, init.OrderID, "pay_1")
	res, err := l.ConfirmPayment(context.Background(), init.OrderID, "pay_1", sig)
	require.NoError(t, err)
	assert.True(t, res.Applied)
	assert.Equal(t, model.DonationStatusCompleted, res.Donation.Status)

	d := loadDonation(t, db, init.OrderID)
	assert.Equal(t, model.DonationStatusCompleted, d.Status)
	assert.Equal(t, "pay_1", d.PaymentID)
	assert.Equal(t, sig, d.Signature)

	profile, err := NewProfileLogic(db).GetProfile(context.Background(), user.Id)
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Equal(t, d.Phone, profile.Phone)
	assert.Equal(t, d.CountryCode, profile.CountryCode)
	assert.Equal(t, d.Country, profile.Country)
	assert.Equal(t, d.State, profile.State)
	assert.Equal(t, d.City, profile.City)
	assert.Equal(t, d.PostalCode, profile.PostalCode)
	assert.Equal(t, d.Address, profile.Address)

	msgs := notifier.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, notify.KindReceipt, msgs[0].Kind)
	assert.Equal(t, "asha@example.com", msgs[0].To)
}

func TestConfirmPaymentOverwritesExistingProfile(t *testing.T) {
	db := newTestDB(t)
	user := createUser(t, db, "asha@example.com")
	old := model.NewUserProfile(user.Id)
	old.City = "Chennai"
	old.Phone = "1111111111"
	require.NoError(t, db.Create(old).Error)

	l := NewDonationLogic(db, &fakeGateway{}, nil, nil, "INR")
	req := donationRequest("100", model.CauseHealthcare)
	req.UserID = &user.Id
	init, err := l.InitiateDonation(context.Background(), req)
	require.NoError(t, err)

	_, err = l.ConfirmPayment(context.Background(), init.OrderID, "pay_1", gateway.Sign(testSecret, init.OrderID, "pay_1"))
	require.NoError(t, err)

	var profiles []model.UserProfileModel
	require.NoError(t, db.Where("user_id = ?", user.Id).Find(&profiles).Error)
	require.Len(t, profiles, 1)
	assert.Equal(t, "Mysuru", profiles[0].City)
	assert.Equal(t, "9876543210", profiles[0].Phone)
}

func TestConfirmPaymentIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	user := createUser(t, db, "asha@example.com")
	notifier := &fakeNotifier{}
	l := NewDonationLogic(db, &fakeGateway{}, nil, notifier, "INR")

	req := donationRequest("500.00", model.CauseEducation)
	req.UserID = &user.Id
	init, err := l.InitiateDonation(context.Background(), req)
	require.NoError(t, err)
	sig := gateway.Sign(testSecret, init.OrderID, "pay_1")

	first, err := l.ConfirmPayment(context.Background(), init.OrderID, "pay_1", sig)
	require.NoError(t, err)
	profileAfterFirst, err := NewProfileLogic(db).GetProfile(context.Background(), user.Id)
	require.NoError(t, err)
	donationAfterFirst := loadDonation(t, db, init.OrderID)

	second, err := l.ConfirmPayment(context.Background(), init.OrderID, "pay_1", sig)
	require.NoError(t, err)
	profileAfterSecond, err := NewProfileLogic(db).GetProfile(context.Background(), user.Id)
	require.NoError(t, err)

	assert.True(t, first.Applied)
	assert.False(t, second.Applied)
	assert.Equal(t, model.DonationStatusCompleted, second.Donation.Status)
	assert.Equal(t, profileAfterFirst, profileAfterSecond)
	assert.Equal(t, donationAfterFirst, loadDonation(t, db, init.OrderID))
	assert.Len(t, notifier.messages(), 1)
}

func TestConfirmPaymentInvalidSignature(t *testing.T) {
	db := newTestDB(t)
	l := NewDonationLogic(db, &fakeGateway{}, nil, nil, "INR")

	init, err := l.InitiateDonation(context.Background(), donationRequest("500.00", model.CauseEducation))
	require.NoError(t, err)

	_, err = l.ConfirmPayment(context.Background(), init.OrderID, "pay_1", "forged")
	assert.ErrorIs(t, err, gateway.ErrSignature)

	// 签名对应的是另一笔支付
	_, err = l.ConfirmPayment(context.Background(), init.OrderID, "pay_2", gateway.Sign(testSecret, init.OrderID, "pay_1"))
	assert.ErrorIs(t, err, gateway.ErrSignature)

	d := loadDonation(t, db, init.OrderID)
	assert.Equal(t, model.DonationStatusPending, d.Status)
	assert.Empty(t, d.PaymentID)
}

func TestConfirmPaymentUnknownOrder(t *testing.T) {
	db := newTestDB(t)
	l := NewDonationLogic(db, &fakeGateway{}, nil, nil, "INR")

	_, err := l.ConfirmPayment(context.Background(), "order_missing", "pay_1", gateway.Sign(testSecret, "order_missing", "pay_1"))
	assert.ErrorIs(t, err, ErrDonationNotFound)
	assert.Zero(t, countDonations(t, db))
}

func TestConfirmPaymentProfileSyncFailureIsSwallowed(t *testing.T) {
	db := newTestDB(t)
	user := createUser(t, db, "asha@example.com")
	l := NewDonationLogic(db, &fakeGateway{}, nil, nil, "INR")

	req := donationRequest("500.00", model.CauseEducation)
	req.UserID = &user.Id
	init, err := l.InitiateDonation(context.Background(), req)
	require.NoError(t, err)

	require.NoError(t, db.Migrator().DropTable(&model.UserProfileModel{}))

	res, err := l.ConfirmPayment(context.Background(), init.OrderID, "pay_1", gateway.Sign(testSecret, init.OrderID, "pay_1"))
	require.NoError(t, err)
	assert.True(t, res.Applied)
	assert.Equal(t, model.DonationStatusCompleted, loadDonation(t, db, init.OrderID).Status)
}

func TestSyncFromDonationReturnsProfileSyncError(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Migrator().DropTable(&model.UserProfileModel{}))

	err := NewProfileLogic(db).SyncFromDonation(context.Background(), 7, &model.DonationModel{Phone: "1"})
	var perr *ProfileSyncError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, int64(7), perr.UserID)
}

func TestCancelPayment(t *testing.T) {
	db := newTestDB(t)
	l := NewDonationLogic(db, &fakeGateway{}, nil, nil, "INR")
	ctx := context.Background()

	pending, err := l.InitiateDonation(ctx, donationRequest("10", model.CauseGeneral))
	require.NoError(t, err)
	completed, err := l.InitiateDonation(ctx, donationRequest("20", model.CauseGeneral))
	require.NoError(t, err)
	_, err = l.ConfirmPayment(ctx, completed.OrderID, "pay_1", gateway.Sign(testSecret, completed.OrderID, "pay_1"))
	require.NoError(t, err)

	cancelled, err := l.CancelPayment(ctx, pending.OrderID)
	require.NoError(t, err)
	assert.True(t, cancelled)
	assert.Equal(t, model.DonationStatusCancelled, loadDonation(t, db, pending.OrderID).Status)

	// 已完成的捐款不受影响
	cancelled, err = l.CancelPayment(ctx, completed.OrderID)
	require.NoError(t, err)
	assert.False(t, cancelled)
	assert.Equal(t, model.DonationStatusCompleted, loadDonation(t, db, completed.OrderID).Status)

	// 重复取消
	cancelled, err = l.CancelPayment(ctx, pending.OrderID)
	require.NoError(t, err)
	assert.False(t, cancelled)

	// 未知订单
	cancelled, err = l.CancelPayment(ctx, "order_missing")
	require.NoError(t, err)
	assert.False(t, cancelled)
	assert.Equal(t, int64(2), countDonations(t, db))

	// 取消后的支付回调不会完成捐款
	res, err := l.ConfirmPayment(ctx, pending.OrderID, "pay_2", gateway.Sign(testSecret, pending.OrderID, "pay_2"))
	require.NoError(t, err)
	assert.False(t, res.Applied)
	assert.Equal(t, model.DonationStatusCancelled, loadDonation(t, db, pending.OrderID).Status)
}

func TestConfirmAndCancelRace(t *testing.T) {
	db := newTestDB(t)
	l := NewDonationLogic(db, &fakeGateway{}, nil, nil, "INR")
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		init, err := l.InitiateDonation(ctx, donationRequest("75.50", model.CauseEnvironment))
		require.NoError(t, err)
		sig := gateway.Sign(testSecret, init.OrderID, "pay_race")

		var (
			wg        sync.WaitGroup
			confirmed *ConfirmResult
			cancelled bool
			errs      = make([]error, 3)
			results   = make([]*ConfirmResult, 2)
		)
		wg.Add(3)
		go func() {
			defer wg.Done()
			results[0], errs[0] = l.ConfirmPayment(ctx, init.OrderID, "pay_race", sig)
		}()
		go func() {
			defer wg.Done()
			results[1], errs[1] = l.ConfirmPayment(ctx, init.OrderID, "pay_race", sig)
		}()
		go func() {
			defer wg.Done()
			cancelled, errs[2] = l.CancelPayment(ctx, init.OrderID)
		}()
		wg.Wait()

		for _, err := range errs {
			require.NoError(t, err)
		}

		applied := 0
		for _, r := range results {
			if r.Applied {
				applied++
				confirmed = r
			}
		}

		final := loadDonation(t, db, init.OrderID).Status
		switch final {
		case model.DonationStatusCompleted:
			assert.Equal(t, 1, applied)
			assert.False(t, cancelled)
			assert.NotNil(t, confirmed)
		case model.DonationStatusCancelled:
			assert.Equal(t, 0, applied)
			assert.True(t, cancelled)
		default:
			t.Fatalf("donation left in status %s", final)
		}
	}
}

func TestTopDonors(t *testing.T) {
	db := newTestDB(t)
	l := NewDonationLogic(db, &fakeGateway{}, nil, nil, "INR")
	ctx := context.Background()

	confirm := func(amount, first string, show bool) {
		req := donationRequest(amount, model.CauseGeneral)
		req.FirstName = first
		req.ShowName = show
		init, err := l.InitiateDonation(ctx, req)
		require.NoError(t, err)
		_, err = l.ConfirmPayment(ctx, init.OrderID, "pay", gateway.Sign(testSecret, init.OrderID, "pay"))
		require.NoError(t, err)
	}

	confirm("100", "Asha", true)
	confirm("250", "Asha", true)
	confirm("300", "Vikram", false)

	// 未完成的捐款不计入
	_, err := l.InitiateDonation(ctx, donationRequest("5000", model.CauseGeneral))
	require.NoError(t, err)

	donors, err := l.TopDonors(ctx)
	require.NoError(t, err)
	require.Len(t, donors, 2)
	assert.Equal(t, "Asha Rao", donors[0].Name)
	assert.True(t, donors[0].TotalAmount.Equal(decimal.NewFromInt(350)))
	assert.Equal(t, model.AnonymousDonor, donors[1].Name)

	// 新的完成捐款会使缓存失效
	confirm("1000", "Meera", true)
	donors, err = l.TopDonors(ctx)
	require.NoError(t, err)
	require.Len(t, donors, 3)
	assert.Equal(t, "Meera Rao", donors[0].Name)
}

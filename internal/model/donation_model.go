package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DonationModel 捐款记录
type DonationModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at"`

	// 关联账户，账户删除后保留捐款记录
	UserID *int64     `json:"user_id" gorm:"index"`
	User   *UserModel `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL"`

	// 捐款人信息，提交时冗余保存
	FirstName   string `json:"first_name" gorm:"size:100;not null;default:''"`
	LastName    string `json:"last_name" gorm:"size:100;not null;default:''"`
	Email       string `json:"email" gorm:"size:254;not null;default:''"`
	Phone       string `json:"phone" gorm:"size:15;not null;default:''"`
	CountryCode string `json:"country_code" gorm:"size:5;not null;default:'+91'"`

	// 地址信息
	Country    string `json:"country" gorm:"size:100;not null;default:'India'"`
	Address    string `json:"address" gorm:"size:255;not null;default:'Not provided'"`
	City       string `json:"city" gorm:"size:100;not null;default:'Not provided'"`
	State      string `json:"state" gorm:"size:100;not null;default:'Not provided'"`
	PostalCode string `json:"postal_code" gorm:"size:10;not null;default:'000000'"`

	// 捐款信息
	Amount decimal.Decimal `json:"amount" gorm:"type:decimal(10,2);not null"`
	Cause  Cause           `json:"cause" gorm:"size:50;not null;default:'general';index"`

	// 支付信息
	OrderID   string         `json:"order_id" gorm:"size:200;uniqueIndex;not null"`
	PaymentID string         `json:"payment_id" gorm:"size:200;not null;default:''"`
	Signature string         `json:"-" gorm:"size:500;not null;default:''"`
	Status    DonationStatus `json:"status" gorm:"size:20;not null;default:'pending';index"`

	// 是否在捐款榜展示姓名
	ShowName bool `json:"show_name" gorm:"not null"`
}

// TableName 自定义表名
func (DonationModel) TableName() string {
	return "donation"
}

// DisplayName 捐款榜展示名
func (d *DonationModel) DisplayName() string {
	return DonorDisplayName(d.FirstName, d.LastName, d.ShowName)
}

// DonorDisplayName 隐藏姓名的捐款人统一显示为匿名
func DonorDisplayName(firstName, lastName string, showName bool) string {
	if !showName {
		return AnonymousDonor
	}
	return fmt.Sprintf("%s %s", firstName, lastName)
}

const AnonymousDonor = "Anonymous Donor"

// DonationStatus 捐款状态
type DonationStatus string

const (
	DonationStatusPending   DonationStatus = "pending"   // 待支付
	DonationStatusCompleted DonationStatus = "completed" // 已完成
	DonationStatusFailed    DonationStatus = "failed"    // 失败，流程中不会产生
	DonationStatusCancelled DonationStatus = "cancelled" // 已取消
)

// Valid 是否为已知状态
func (s DonationStatus) Valid() bool {
	switch s {
	case DonationStatusPending, DonationStatusCompleted, DonationStatusFailed, DonationStatusCancelled:
		return true
	}
	return false
}

// IsTerminal 终态不再接受任何回调
func (s DonationStatus) IsTerminal() bool {
	switch s {
	case DonationStatusCompleted, DonationStatusFailed, DonationStatusCancelled:
		return true
	case DonationStatusPending:
		return false
	}
	return false
}

// Label 展示用名称
func (s DonationStatus) Label() string {
	switch s {
	case DonationStatusPending:
		return "Pending"
	case DonationStatusCompleted:
		return "Completed"
	case DonationStatusFailed:
		return "Failed"
	case DonationStatusCancelled:
		return "Cancelled"
	}
	return string(s)
}

// Cause 捐款用途
type Cause string

const (
	CauseEducation        Cause = "education"
	CauseHealthcare       Cause = "healthcare"
	CauseEnvironment      Cause = "environment"
	CausePoverty          Cause = "poverty"
	CauseWomenEmpowerment Cause = "women_empowerment"
	CauseGeneral          Cause = "general"
)

// Causes 所有捐款用途，按展示顺序
var Causes = []Cause{
	CauseEducation,
	CauseHealthcare,
	CauseEnvironment,
	CausePoverty,
	CauseWomenEmpowerment,
	CauseGeneral,
}

// Valid 是否为已知用途
func (c Cause) Valid() bool {
	switch c {
	case CauseEducation, CauseHealthcare, CauseEnvironment, CausePoverty, CauseWomenEmpowerment, CauseGeneral:
		return true
	}
	return false
}

// Label 展示用名称
func (c Cause) Label() string {
	switch c {
	case CauseEducation:
		return "Education"
	case CauseHealthcare:
		return "Healthcare"
	case CauseEnvironment:
		return "Environment"
	case CausePoverty:
		return "Poverty Alleviation"
	case CauseWomenEmpowerment:
		return "Women Empowerment"
	case CauseGeneral:
		return "General Fund"
	}
	return string(c)
}

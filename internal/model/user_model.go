package model

import (
	"time"
)

// UserModel 账户
type UserModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Email        string `json:"email" gorm:"size:254;uniqueIndex;not null"`
	PasswordHash string `json:"-" gorm:"not null"`
	FirstName    string `json:"first_name" gorm:"size:150;not null"`
	LastName     string `json:"last_name" gorm:"size:150;not null"`
	IsStaff      bool   `json:"is_staff" gorm:"not null;default:false"`
}

// TableName 自定义表名
func (UserModel) TableName() string {
	return "user"
}

// FullName 姓名
func (u *UserModel) FullName() string {
	return u.FirstName + " " + u.LastName
}

// UserProfileModel 捐款人资料，每个账户最多一条
type UserProfileModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID int64      `json:"user_id" gorm:"uniqueIndex;not null"`
	User   *UserModel `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`

	Phone       string `json:"phone" gorm:"size:15;not null;default:''"`
	CountryCode string `json:"country_code" gorm:"size:5;not null;default:'+91'"`
	Country     string `json:"country" gorm:"size:100;not null;default:'India'"`
	State       string `json:"state" gorm:"size:100;not null;default:''"`
	City        string `json:"city" gorm:"size:100;not null;default:''"`
	PostalCode  string `json:"postal_code" gorm:"size:10;not null;default:''"`
	Address     string `json:"address" gorm:"size:255;not null;default:'Not provided'"`
}

// TableName 自定义表名
func (UserProfileModel) TableName() string {
	return "user_profile"
}

// NewUserProfile 带默认值的空资料
func NewUserProfile(userID int64) *UserProfileModel {
	return &UserProfileModel{
		UserID:      userID,
		CountryCode: "+91",
		Country:     "India",
		Address:     "Not provided",
	}
}

package model

import (
	"time"
)

// VolunteerApplicationModel 志愿者申请
type VolunteerApplicationModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID *int64     `json:"user_id" gorm:"index"`
	User   *UserModel `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`

	Name           string          `json:"name" gorm:"size:200;not null"`
	Email          string          `json:"email" gorm:"size:254;not null"`
	Phone          string          `json:"phone" gorm:"size:15;not null"`
	Address        string          `json:"address" gorm:"size:255;not null;default:'Not provided'"`
	AreaOfInterest VolunteerArea   `json:"area_of_interest" gorm:"size:50;not null"`
	Availability   string          `json:"availability" gorm:"size:200;not null"`
	Experience     string          `json:"experience" gorm:"type:text"`
	Status         VolunteerStatus `json:"status" gorm:"size:20;not null;default:'pending';index"`
}

// TableName 自定义表名
func (VolunteerApplicationModel) TableName() string {
	return "volunteer_application"
}

// VolunteerArea 志愿方向
type VolunteerArea string

const (
	VolunteerAreaTeaching    VolunteerArea = "teaching"
	VolunteerAreaHealthcare  VolunteerArea = "healthcare"
	VolunteerAreaEnvironment VolunteerArea = "environment"
	VolunteerAreaFundraising VolunteerArea = "fundraising"
	VolunteerAreaEvents      VolunteerArea = "events"
	VolunteerAreaAdmin       VolunteerArea = "admin"
)

func (a VolunteerArea) Valid() bool {
	switch a {
	case VolunteerAreaTeaching, VolunteerAreaHealthcare, VolunteerAreaEnvironment,
		VolunteerAreaFundraising, VolunteerAreaEvents, VolunteerAreaAdmin:
		return true
	}
	return false
}

// VolunteerStatus 志愿者申请状态
type VolunteerStatus string

const (
	VolunteerStatusPending  VolunteerStatus = "pending"  // 待审核
	VolunteerStatusApproved VolunteerStatus = "approved" // 已通过
	VolunteerStatusRejected VolunteerStatus = "rejected" // 已拒绝
)

func (s VolunteerStatus) Valid() bool {
	switch s {
	case VolunteerStatusPending, VolunteerStatusApproved, VolunteerStatusRejected:
		return true
	}
	return false
}

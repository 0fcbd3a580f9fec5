package model

import (
	"time"
)

const DefaultEmploymentType = "Full-time"

// JobModel 招聘岗位
type JobModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at"`

	Title          string `json:"title" gorm:"size:200;not null"`
	Description    string `json:"description" gorm:"type:text;not null"`
	Requirements   string `json:"requirements" gorm:"type:text;not null"`
	Location       string `json:"location" gorm:"size:200;not null"`
	EmploymentType string `json:"employment_type" gorm:"size:50;not null;default:'Full-time'"`
	SalaryRange    string `json:"salary_range" gorm:"size:100;not null;default:''"`
	IsActive       bool   `json:"is_active" gorm:"not null;index"`

	// 截止日期，为空表示长期有效
	Deadline *time.Time `json:"deadline" gorm:"type:date"`
}

// TableName 自定义表名
func (JobModel) TableName() string {
	return "job"
}

// JobApplicationModel 岗位申请，同一岗位同一邮箱只能申请一次
type JobApplicationModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at"`

	JobID int64     `json:"job_id" gorm:"not null;uniqueIndex:idx_job_application_job_email"`
	Job   *JobModel `json:"-" gorm:"foreignKey:JobID;constraint:OnDelete:CASCADE"`

	UserID *int64     `json:"user_id" gorm:"index"`
	User   *UserModel `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`

	Name        string `json:"name" gorm:"size:200;not null"`
	Email       string `json:"email" gorm:"size:254;not null;uniqueIndex:idx_job_application_job_email"`
	Phone       string `json:"phone" gorm:"size:15;not null"`
	CoverLetter string `json:"cover_letter" gorm:"type:text;not null"`

	// 简历存储位置，ResumeKey 为存储层的对象名
	ResumeKey string `json:"resume_key" gorm:"size:255;not null;default:''"`
	ResumeURL string `json:"resume_url" gorm:"size:500;not null;default:''"`

	Status ApplicationStatus `json:"status" gorm:"size:20;not null;default:'pending';index"`
}

// TableName 自定义表名
func (JobApplicationModel) TableName() string {
	return "job_application"
}

// ApplicationStatus 岗位申请状态
type ApplicationStatus string

const (
	ApplicationStatusPending     ApplicationStatus = "pending"
	ApplicationStatusReviewed    ApplicationStatus = "reviewed"
	ApplicationStatusShortlisted ApplicationStatus = "shortlisted"
	ApplicationStatusRejected    ApplicationStatus = "rejected"
)

// ApplicationStatuses 按展示顺序
var ApplicationStatuses = []ApplicationStatus{
	ApplicationStatusPending,
	ApplicationStatusReviewed,
	ApplicationStatusShortlisted,
	ApplicationStatusRejected,
}

func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationStatusPending, ApplicationStatusReviewed, ApplicationStatusShortlisted, ApplicationStatusRejected:
		return true
	}
	return false
}

// Label 展示用名称
func (s ApplicationStatus) Label() string {
	switch s {
	case ApplicationStatusPending:
		return "Pending"
	case ApplicationStatusReviewed:
		return "Reviewed"
	case ApplicationStatusShortlisted:
		return "Shortlisted"
	case ApplicationStatusRejected:
		return "Rejected"
	}
	return string(s)
}

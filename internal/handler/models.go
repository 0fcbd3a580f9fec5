package handler

import (
	"github.com/Greybash/ngo-service/internal/logic"
	"github.com/Greybash/ngo-service/internal/model"
	"github.com/shopspring/decimal"
)

// 通用响应结构
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// 分页信息结构
type Pagination struct {
	Page      int   `json:"page"`
	PageSize  int   `json:"page_size"`
	Total     int64 `json:"total"`
	TotalPage int64 `json:"total_page"`
}

func newPagination(page, pageSize int, total int64) Pagination {
	p := Pagination{Page: page, PageSize: pageSize, Total: total}
	if pageSize > 0 {
		p.TotalPage = (total + int64(pageSize) - 1) / int64(pageSize)
	}
	return p
}

// 账户

type SignupRequest struct {
	FirstName string `json:"first_name" binding:"required,max=150"`
	LastName  string `json:"last_name" binding:"required,max=150"`
	Email     string `json:"email" binding:"required,email"`
	Password1 string `json:"password1" binding:"required"`
	Password2 string `json:"password2" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token string           `json:"token"`
	User  *model.UserModel `json:"user"`
}

// 捐款

// DonationRequest show_name 缺省时公开姓名
type DonationRequest struct {
	FirstName   string          `json:"first_name" binding:"required,max=100"`
	LastName    string          `json:"last_name" binding:"required,max=100"`
	Email       string          `json:"email" binding:"required,email,max=254"`
	Phone       string          `json:"phone" binding:"required,max=15"`
	CountryCode string          `json:"country_code" binding:"max=5"`
	Country     string          `json:"country" binding:"max=100"`
	State       string          `json:"state" binding:"max=100"`
	City        string          `json:"city" binding:"max=100"`
	PostalCode  string          `json:"postal_code" binding:"max=10"`
	Address     string          `json:"address" binding:"max=255"`
	Amount      decimal.Decimal `json:"amount"`
	Cause       string          `json:"cause" binding:"required"`
	ShowName    *bool           `json:"show_name"`
}

func (r *DonationRequest) toLogic(userID *int64) *logic.InitiateDonationRequest {
	show := true
	if r.ShowName != nil {
		show = *r.ShowName
	}
	return &logic.InitiateDonationRequest{
		UserID:      userID,
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		Email:       r.Email,
		Phone:       r.Phone,
		CountryCode: r.CountryCode,
		Country:     r.Country,
		State:       r.State,
		City:        r.City,
		PostalCode:  r.PostalCode,
		Address:     r.Address,
		Amount:      r.Amount,
		Cause:       model.Cause(r.Cause),
		ShowName:    show,
	}
}

// InitiateResponse 前端拉起支付组件所需数据
type InitiateResponse struct {
	OrderID    string `json:"order_id"`
	DonationID int64  `json:"donation_id"`
	Amount     int64  `json:"amount"` // 最小货币单位
	Currency   string `json:"currency"`
	KeyID      string `json:"key_id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Contact    string `json:"contact"`
}

// PaymentCallbackForm 网关回调表单
type PaymentCallbackForm struct {
	OrderID   string `form:"razorpay_order_id" binding:"required"`
	PaymentID string `form:"razorpay_payment_id" binding:"required"`
	Signature string `form:"razorpay_signature" binding:"required"`
}

// 志愿者

type VolunteerRequest struct {
	Name           string `json:"name" binding:"required,max=100"`
	Email          string `json:"email" binding:"required,email"`
	Phone          string `json:"phone" binding:"required,max=15"`
	Address        string `json:"address"`
	AreaOfInterest string `json:"area_of_interest" binding:"required"`
	Availability   string `json:"availability" binding:"required,max=100"`
	Experience     string `json:"experience"`
}

type ReviewVolunteerRequest struct {
	Action string `json:"action" binding:"required,oneof=approve reject"`
}

type VolunteerListResponse struct {
	Volunteers []model.VolunteerApplicationModel `json:"volunteers"`
	Pagination Pagination                        `json:"pagination"`
}

// 招聘

type JobRequest struct {
	Title          string `json:"title" binding:"required,max=200"`
	EmploymentType string `json:"employment_type" binding:"max=50"`
	Location       string `json:"location" binding:"required,max=100"`
	SalaryRange    string `json:"salary_range" binding:"max=100"`
	Description    string `json:"description" binding:"required"`
	Requirements   string `json:"requirements" binding:"required"`
	Deadline       string `json:"deadline"`
	IsActive       *bool  `json:"is_active"`
}

type JobDetailResponse struct {
	Job        *model.JobModel `json:"job"`
	HasApplied bool            `json:"has_applied"`
}

// ApplyForm multipart 表单，简历字段为 resume
type ApplyForm struct {
	Name        string `form:"name" binding:"required,max=100"`
	Email       string `form:"email" binding:"required,email"`
	Phone       string `form:"phone" binding:"required,max=20"`
	CoverLetter string `form:"cover_letter" binding:"required"`
}

type ApplicationStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type ApplicationListResponse struct {
	Job          *model.JobModel                   `json:"job"`
	Applications []model.JobApplicationModel       `json:"applications"`
	StatusCounts map[model.ApplicationStatus]int64 `json:"status_counts"`
}

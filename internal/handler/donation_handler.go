package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/Greybash/ngo-service/internal/logger"
	"github.com/Greybash/ngo-service/internal/logic"
	"github.com/Greybash/ngo-service/internal/middleware"
	"github.com/Greybash/ngo-service/internal/model"
	"github.com/gin-gonic/gin"
)

const (
	donationSuccessPath   = "/donation-success/%d"
	donationFailurePath   = "/donate?error=verification"
	donationCancelledPath = "/donate?status=cancelled"
)

type DonationHandler struct {
	donationLogic *logic.DonationLogic
}

func NewDonationHandler(donations *logic.DonationLogic) *DonationHandler {
	return &DonationHandler{donationLogic: donations}
}

// Form 捐款表单预填
func (h *DonationHandler) Form(c *gin.Context) {
	form, err := h.donationLogic.PrefillForm(c.Request.Context(), *middleware.CurrentUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "", form)
}

// TopDonors 捐款榜
func (h *DonationHandler) TopDonors(c *gin.Context) {
	donors, err := h.donationLogic.TopDonors(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "", donors)
}

// Initiate 创建捐款并返回网关订单
func (h *DonationHandler) Initiate(c *gin.Context) {
	var req DonationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	res, err := h.donationLogic.InitiateDonation(c.Request.Context(), req.toLogic(middleware.CurrentUserID(c)))
	if err != nil {
		writeError(c, err)
		return
	}

	SuccessResponse(c, http.StatusCreated, "Order created", InitiateResponse{
		OrderID:    res.OrderID,
		DonationID: res.DonationID,
		Amount:     res.AmountMinor,
		Currency:   res.Currency,
		KeyID:      res.KeyID,
		Name:       req.FirstName + " " + req.LastName,
		Email:      req.Email,
		Contact:    req.Phone,
	})
}

// Get 捐款回执，只有本人和管理员可以查看
func (h *DonationHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid donation ID")
		return
	}

	donation, err := h.donationLogic.GetDonation(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	claims, _ := middleware.CurrentClaims(c)
	if !claims.IsStaff && (donation.UserID == nil || *donation.UserID != claims.UserID) {
		writeError(c, logic.ErrDonationNotFound)
		return
	}

	SuccessResponse(c, http.StatusOK, "", donation)
}

// PaymentSuccess 网关支付成功回调，校验后跳转结果页
func (h *DonationHandler) PaymentSuccess(c *gin.Context) {
	var form PaymentCallbackForm
	if err := c.ShouldBind(&form); err != nil {
		logger.Warn("Malformed payment callback: %v", err)
		c.Redirect(http.StatusSeeOther, donationFailurePath)
		return
	}

	res, err := h.donationLogic.ConfirmPayment(c.Request.Context(), form.OrderID, form.PaymentID, form.Signature)
	if err != nil {
		if !errors.Is(err, logic.ErrDonationNotFound) {
			logger.Error("Payment confirmation for order %s failed: %v", form.OrderID, err)
		}
		c.Redirect(http.StatusSeeOther, donationFailurePath)
		return
	}

	if res.Donation.Status != model.DonationStatusCompleted {
		c.Redirect(http.StatusSeeOther, donationFailurePath)
		return
	}
	c.Redirect(http.StatusSeeOther, fmt.Sprintf(donationSuccessPath, res.Donation.Id))
}

// PaymentCancelled 用户关闭支付窗口
func (h *DonationHandler) PaymentCancelled(c *gin.Context) {
	orderID := c.Query("order_id")
	if _, err := h.donationLogic.CancelPayment(c.Request.Context(), orderID); err != nil {
		logger.Error("Cancel for order %s failed: %v", orderID, err)
	}
	c.Redirect(http.StatusSeeOther, donationCancelledPath)
}

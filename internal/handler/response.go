package handler

import (
	"errors"
	"net/http"

	"github.com/Greybash/ngo-service/internal/gateway"
	"github.com/Greybash/ngo-service/internal/logger"
	"github.com/Greybash/ngo-service/internal/logic"
	"github.com/Greybash/ngo-service/internal/middleware"
	"github.com/gin-gonic/gin"
)

// SuccessResponse 成功响应
func SuccessResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// ErrorResponse 错误响应
func ErrorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, Response{
		Success: false,
		Message: message,
		Data:    nil,
	})
}

// writeError 业务错误到 HTTP 状态码的统一映射
func writeError(c *gin.Context, err error) {
	var verr *logic.ValidationError
	switch {
	case errors.As(err, &verr):
		ErrorResponse(c, http.StatusBadRequest, verr.Error())
	case errors.Is(err, gateway.ErrGateway):
		ErrorResponse(c, http.StatusBadGateway, "Payment gateway is unavailable, please try again.")
	case errors.Is(err, gateway.ErrSignature):
		ErrorResponse(c, http.StatusBadRequest, "Payment verification failed")
	case errors.Is(err, logic.ErrDonationNotFound),
		errors.Is(err, logic.ErrUserNotFound),
		errors.Is(err, logic.ErrVolunteerNotFound),
		errors.Is(err, logic.ErrJobNotFound),
		errors.Is(err, logic.ErrApplicationNotFound):
		ErrorResponse(c, http.StatusNotFound, err.Error())
	case errors.Is(err, logic.ErrInvalidCredentials):
		ErrorResponse(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, logic.ErrEmailTaken), errors.Is(err, logic.ErrAlreadyApplied):
		ErrorResponse(c, http.StatusConflict, err.Error())
	default:
		logger.Error("[%s] %s %s: %v", middleware.GetRequestID(c), c.Request.Method, c.Request.URL.Path, err)
		ErrorResponse(c, http.StatusInternalServerError, "Internal server error")
	}
}

// bindError 请求参数绑定失败
func bindError(c *gin.Context, err error) {
	ErrorResponse(c, http.StatusBadRequest, validationMessage(err))
}

package handler

import (
	"net/http"

	"github.com/Greybash/ngo-service/internal/logic"
	"github.com/gin-gonic/gin"
)

type AccountHandler struct {
	accountLogic *logic.AccountLogic
}

func NewAccountHandler(accounts *logic.AccountLogic) *AccountHandler {
	return &AccountHandler{accountLogic: accounts}
}

// Signup 注册
func (h *AccountHandler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	user, err := h.accountLogic.Signup(c.Request.Context(), &logic.SignupRequest{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password1: req.Password1,
		Password2: req.Password2,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	token, err := h.accountLogic.IssueToken(user)
	if err != nil {
		writeError(c, err)
		return
	}

	SuccessResponse(c, http.StatusCreated, "Account created successfully!", LoginResponse{Token: token, User: user})
}

// Login 登录
func (h *AccountHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	token, user, err := h.accountLogic.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "", LoginResponse{Token: token, User: user})
}

package handler

import (
	"net/http"

	"github.com/Greybash/ngo-service/internal/logic"
	"github.com/Greybash/ngo-service/internal/middleware"
	"github.com/Greybash/ngo-service/internal/model"
	"github.com/gin-gonic/gin"
)

type VolunteerHandler struct {
	volunteerLogic *logic.VolunteerLogic
}

func NewVolunteerHandler(volunteers *logic.VolunteerLogic) *VolunteerHandler {
	return &VolunteerHandler{volunteerLogic: volunteers}
}

// Submit 提交志愿者申请
func (h *VolunteerHandler) Submit(c *gin.Context) {
	var req VolunteerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	app, err := h.volunteerLogic.Submit(c.Request.Context(), &logic.VolunteerRequest{
		UserID:         middleware.CurrentUserID(c),
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		Address:        req.Address,
		AreaOfInterest: model.VolunteerArea(req.AreaOfInterest),
		Availability:   req.Availability,
		Experience:     req.Experience,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	SuccessResponse(c, http.StatusCreated, "Thank you for volunteering! We will contact you soon.", app)
}

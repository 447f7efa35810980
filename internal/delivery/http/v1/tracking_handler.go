package v1

import (
	"net/http"
	"strings"

	"aiki-site-backend/internal/delivery/http/response"
	"aiki-site-backend/internal/domain"
	"aiki-site-backend/pkg/apperror"
	"aiki-site-backend/pkg/validation"

	"github.com/gin-gonic/gin"
)

type TrackingHandler struct {
	trackingUC domain.TrackingUsecase
}

func NewTrackingHandler(public *gin.RouterGroup, trackingUC domain.TrackingUsecase) {
	handler := &TrackingHandler{trackingUC: trackingUC}

	public.POST("/track", handler.Track)
}

// Track godoc
// @Summary      Record a tracking event
// @Description  Logs a (category, action, label) event from the site, e.g. support link or download clicks
// @Tags         tracking
// @Accept       json
// @Produce      json
// @Param        event  body      domain.TrackingEvent  true  "Tracking Event"
// @Success      202    {object}  response.Response
// @Failure      400    {object}  response.Response
// @Router       /track [post]
func (h *TrackingHandler) Track(c *gin.Context) {
	var event domain.TrackingEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		c.Error(apperror.BadRequest(strings.Join(validation.FormatValidationErrors(err), "; ")))
		return
	}

	if err := h.trackingUC.TrackEvent(c.Request.Context(), event); err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusAccepted, "Event tracked", nil)
}

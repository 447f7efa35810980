package v1

import (
	"errors"
	"net/http"

	"aiki-site-backend/internal/delivery/http/response"
	"aiki-site-backend/internal/domain"
	"aiki-site-backend/internal/presentation"
	"aiki-site-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

// PageFactory returns the presentation state a submission writes to. A page
// whose submit control is still disabled is rejected with 409.
type PageFactory func(fields domain.SupportRequest) *presentation.Page

// SupportResult is the outcome of a support submission
type SupportResult struct {
	SubmissionID    string                   `json:"submission_id,omitempty"`
	Outcome         domain.SubmissionOutcome `json:"outcome,omitempty"`
	Mailto          string                   `json:"mailto,omitempty"`
	Event           *domain.TrackingEvent    `json:"event,omitempty"`
	ValidationError *domain.ValidationError  `json:"validation_error,omitempty"`
	Page            presentation.State       `json:"page"`
}

type SupportHandler struct {
	supportUC domain.SupportUsecase
	newPage   PageFactory
}

// NewSupportHandler registers the support routes (public, no auth required).
// submitLimit guards the two submission endpoints.
func NewSupportHandler(public *gin.RouterGroup, supportUC domain.SupportUsecase, newPage PageFactory, submitLimit gin.HandlerFunc) {
	handler := &SupportHandler{
		supportUC: supportUC,
		newPage:   newPage,
	}

	support := public.Group("/support")
	{
		support.GET("/subjects", handler.ListSubjects)
		support.POST("", submitLimit, handler.SubmitSupport)
		support.POST("/form", submitLimit, handler.SubmitSupportForm)
	}
}

// ListSubjects godoc
// @Summary      List support subjects
// @Description  Selectable subject codes with the labels used in the support email
// @Tags         support
// @Produce      json
// @Success      200  {object}  response.Response{data=[]domain.Subject}
// @Router       /support/subjects [get]
func (h *SupportHandler) ListSubjects(c *gin.Context) {
	response.Success(c, http.StatusOK, "Support subjects", h.supportUC.Subjects())
}

// SubmitSupport godoc
// @Summary      Submit support request
// @Description  Validates the support form and dispatches it as a mailto link. The response
// @Description  carries the final form state and the link; it does not confirm delivery.
// @Tags         support
// @Accept       json
// @Produce      json
// @Param        request  body      domain.SupportRequest  true  "Support Form Data"
// @Success      200      {object}  response.Response{data=SupportResult}
// @Failure      400      {object}  response.Response
// @Failure      408      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Failure      422      {object}  response.Response{data=SupportResult}
// @Failure      429      {object}  response.Response
// @Router       /support [post]
func (h *SupportHandler) SubmitSupport(c *gin.Context) {
	var req domain.SupportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest("Invalid request body"))
		return
	}

	result, err := h.submit(c, req)
	if err != nil {
		c.Error(err)
		return
	}

	message := ""
	if result.Page.Message != nil {
		message = result.Page.Message.Text
	}
	response.Success(c, http.StatusOK, message, result)
}

// SubmitSupportForm godoc
// @Summary      Submit support form (no-JS fallback)
// @Description  Form-encoded variant that redirects the browser to the mailto link on success
// @Tags         support
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Param        name     formData  string  true  "Name"
// @Param        email    formData  string  true  "Email"
// @Param        subject  formData  string  true  "Subject code"
// @Param        message  formData  string  true  "Message"
// @Success      303
// @Failure      422  {object}  response.Response{data=SupportResult}
// @Router       /support/form [post]
func (h *SupportHandler) SubmitSupportForm(c *gin.Context) {
	var req domain.SupportRequest
	if err := c.ShouldBind(&req); err != nil {
		c.Error(apperror.BadRequest("Invalid form data"))
		return
	}

	result, err := h.submit(c, req)
	if err != nil {
		c.Error(err)
		return
	}

	c.Redirect(http.StatusSeeOther, result.Mailto)
}

// submit runs check and submit, then waits for the submission to settle
func (h *SupportHandler) submit(c *gin.Context, req domain.SupportRequest) (SupportResult, error) {
	page := h.newPage(req)

	valid, err := h.supportUC.Check(page, req)
	if err != nil {
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			result := SupportResult{ValidationError: ve, Page: page.Snapshot()}
			return result, apperror.Unprocessable(ve.Text, nil).WithData(result)
		}
		return SupportResult{}, apperror.Internal(err)
	}

	ctx := c.Request.Context()
	sub, err := h.supportUC.Submit(ctx, page, valid)
	if err != nil {
		if errors.Is(err, domain.ErrSubmitInFlight) {
			return SupportResult{}, apperror.Conflict("Support request already being sent", err)
		}
		return SupportResult{}, apperror.Internal(err)
	}

	outcome, err := sub.Wait(ctx)
	if err != nil {
		// The page still settles when the timer fires; nobody is left to see it
		return SupportResult{}, apperror.New(http.StatusRequestTimeout, "Request cancelled", err)
	}

	event := sub.Event()
	result := SupportResult{
		SubmissionID: sub.ID,
		Outcome:      outcome,
		Mailto:       sub.Link,
		Event:        &event,
		Page:         page.Snapshot(),
	}

	if outcome == domain.OutcomeHandoffFailed {
		message := "Mail client handoff failed"
		if result.Page.Message != nil {
			message = result.Page.Message.Text
		}
		return result, apperror.Unprocessable(message, sub.Err()).WithData(result)
	}
	return result, nil
}

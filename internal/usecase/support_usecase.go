package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"aiki-site-backend/internal/domain"
	"aiki-site-backend/pkg/clock"
	"aiki-site-backend/pkg/logger"
	"aiki-site-backend/pkg/mailto"
	"aiki-site-backend/pkg/tracking"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// SupportConfig holds the fixed parameters of the support flow
type SupportConfig struct {
	Recipient      string
	HandoffDelay   time.Duration
	StrictSubjects bool
}

type supportUsecase struct {
	cfg       SupportConfig
	validate  *validator.Validate
	navigator domain.Navigator
	tracker   domain.Tracker
	clock     clock.Clock
}

// NewSupportUsecase creates the support form usecase. validate must have
// the validation package's custom tags registered.
func NewSupportUsecase(cfg SupportConfig, validate *validator.Validate, navigator domain.Navigator, tracker domain.Tracker, clk clock.Clock) domain.SupportUsecase {
	if clk == nil {
		clk = clock.System()
	}
	return &supportUsecase{
		cfg:       cfg,
		validate:  validate,
		navigator: navigator,
		tracker:   tracker,
		clock:     clk,
	}
}

// Validate checks name, email, subject and message in that order and
// returns the first failure only.
func (uc *supportUsecase) Validate(req domain.SupportRequest) (domain.ValidRequest, error) {
	subjectTag := "required"
	if uc.cfg.StrictSubjects {
		subjectTag = "required,support_subject"
	}

	checks := []struct {
		value string
		tag   string
		err   *domain.ValidationError
	}{
		{req.Name, "not_blank", domain.ErrMissingName},
		{req.Email, "support_email", domain.ErrInvalidEmail},
		{req.Subject, subjectTag, domain.ErrMissingSubject},
		{req.Message, fmt.Sprintf("min_trimmed=%d", domain.MinMessageLength), domain.ErrMessageTooShort},
	}
	for _, c := range checks {
		if err := uc.validate.Var(c.value, c.tag); err != nil {
			return domain.ValidRequest{}, c.err
		}
	}
	return domain.ValidRequest{SupportRequest: req}, nil
}

// Check clears the message slot, validates, and on failure shows the error
func (uc *supportUsecase) Check(page domain.Presenter, req domain.SupportRequest) (domain.ValidRequest, error) {
	page.ClearMessage()

	valid, err := uc.Validate(req)
	if err != nil {
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			page.ShowMessage(domain.DisplayMessage{Text: ve.Text, Kind: domain.MessageError})
			logger.Log.Debug("Support request rejected", "field", ve.Field, "kind", ve.Kind)
		}
		return domain.ValidRequest{}, err
	}
	return valid, nil
}

// Submit dispatches the mailto link. On success the page is updated after
// HandoffDelay; a navigator error settles the submission immediately. The
// returned Submission settles exactly once either way.
func (uc *supportUsecase) Submit(ctx context.Context, page domain.Presenter, req domain.ValidRequest) (*domain.Submission, error) {
	originalLabel, err := page.DisableSubmit(domain.LabelSending)
	if err != nil {
		return nil, err
	}

	subjectLabel := domain.SubjectCode(req.Subject).Label()
	link := mailto.BuildSupportLink(uc.cfg.Recipient, mailto.SupportEmailData{
		SenderName:   req.Name,
		SenderEmail:  req.Email,
		SubjectLabel: subjectLabel,
		Message:      req.Message,
	})

	sub := domain.NewSubmission(uuid.NewString(), link)
	requestID := domain.RequestIDFrom(ctx)
	event := domain.TrackingEvent{
		Category:     domain.CategorySupport,
		Action:       domain.ActionFormSubmit,
		RequestID:    requestID,
		SubmissionID: sub.ID,
	}

	if navErr := uc.navigator.Navigate(ctx, link); navErr != nil {
		logger.Log.Warn("Mail client handoff failed",
			"submission_id", sub.ID,
			"request_id", requestID,
			"error", navErr,
		)
		page.ShowMessage(domain.DisplayMessage{Text: domain.HandoffFailedText(uc.cfg.Recipient), Kind: domain.MessageError})
		page.EnableSubmit(originalLabel)

		event.Label = domain.LabelError
		uc.tracker.Track(ctx, event)
		sub.Complete(domain.OutcomeHandoffFailed, event, fmt.Errorf("%w: %v", domain.ErrDeliveryHandoffFailed, navErr))
		return sub, nil
	}

	logger.Log.Info("Support request dispatched",
		"submission_id", sub.ID,
		"request_id", requestID,
		"subject", req.Subject,
		"sender", tracking.MaskEmail(req.Email),
	)

	// The request may be gone by the time the timer fires
	trackCtx := context.WithoutCancel(ctx)
	uc.clock.AfterFunc(uc.cfg.HandoffDelay, func() {
		page.ShowMessage(domain.DisplayMessage{Text: domain.SuccessText(uc.cfg.Recipient), Kind: domain.MessageSuccess})
		page.ResetFields()
		page.EnableSubmit(originalLabel)

		event.Label = domain.LabelSuccess
		uc.tracker.Track(trackCtx, event)
		sub.Complete(domain.OutcomeSuccess, event, nil)
	})

	return sub, nil
}

func (uc *supportUsecase) Subjects() []domain.Subject {
	subjects := make([]domain.Subject, 0, len(domain.SubjectCodes))
	for _, code := range domain.SubjectCodes {
		subjects = append(subjects, domain.Subject{Code: code, Label: code.Label()})
	}
	return subjects
}

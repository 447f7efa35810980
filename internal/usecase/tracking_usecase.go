package usecase

import (
	"context"
	"strings"

	"aiki-site-backend/internal/domain"
	"aiki-site-backend/pkg/apperror"
)

type trackingUsecase struct {
	tracker domain.Tracker
}

// NewTrackingUsecase creates the usecase for client-reported events
func NewTrackingUsecase(tracker domain.Tracker) domain.TrackingUsecase {
	return &trackingUsecase{tracker: tracker}
}

// TrackEvent normalizes and records an event. Form Submit events are only
// emitted by the support flow itself.
func (uc *trackingUsecase) TrackEvent(ctx context.Context, event domain.TrackingEvent) error {
	event.Category = strings.TrimSpace(event.Category)
	event.Action = strings.TrimSpace(event.Action)
	event.Label = strings.TrimSpace(event.Label)

	if event.Category == "" || event.Action == "" || event.Label == "" {
		return apperror.BadRequest("category, action and label are required")
	}
	if event.Category == domain.CategorySupport && event.Action == domain.ActionFormSubmit {
		return apperror.BadRequest("form submit events are recorded by the support endpoint")
	}

	// Correlation IDs are ours to assign
	event.SubmissionID = ""
	event.RequestID = domain.RequestIDFrom(ctx)
	uc.tracker.Track(ctx, event)
	return nil
}

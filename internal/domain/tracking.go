package domain

import "context"

// TrackingEvent is an analytics event. It is only logged.
type TrackingEvent struct {
	Category     string `json:"category" binding:"required,max=100"`
	Action       string `json:"action" binding:"required,max=100"`
	Label        string `json:"label" binding:"required,max=100"`
	RequestID    string `json:"request_id,omitempty"`
	SubmissionID string `json:"submission_id,omitempty"`
}

const (
	CategorySupport  = "Support"
	CategoryDownload = "Download"

	ActionFormSubmit       = "Form Submit"
	ActionSupportLinkClick = "Support Link Click"
	ActionDirectEmailClick = "Direct Email Click"

	LabelSuccess = "Success"
	LabelError   = "Error"
)

// Tracker records tracking events
type Tracker interface {
	Track(ctx context.Context, event TrackingEvent)
}

// TrackingUsecase accepts events reported by the site
type TrackingUsecase interface {
	TrackEvent(ctx context.Context, event TrackingEvent) error
}

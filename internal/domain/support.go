package domain

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// SubjectCode is the value of the support form's "subject" select
type SubjectCode string

const (
	SubjectTechnicalIssue  SubjectCode = "technical-issue"
	SubjectFeatureRequest  SubjectCode = "feature-request"
	SubjectAccountHelp     SubjectCode = "account-help"
	SubjectAppFeedback     SubjectCode = "app-feedback"
	SubjectGeneralQuestion SubjectCode = "general-question"
	SubjectOther           SubjectCode = "other"
)

// SubjectCodes lists the selectable codes in form order
var SubjectCodes = []SubjectCode{
	SubjectTechnicalIssue,
	SubjectFeatureRequest,
	SubjectAccountHelp,
	SubjectAppFeedback,
	SubjectGeneralQuestion,
	SubjectOther,
}

var subjectLabels = map[SubjectCode]string{
	SubjectTechnicalIssue:  "技术问题/Bug报告",
	SubjectFeatureRequest:  "功能请求/建议",
	SubjectAccountHelp:     "账户帮助",
	SubjectAppFeedback:     "App反馈",
	SubjectGeneralQuestion: "一般问题",
	SubjectOther:           "其他",
}

// Label returns the display label used in the email, or the raw code when unknown
func (s SubjectCode) Label() string {
	if label, ok := subjectLabels[s]; ok {
		return label
	}
	return string(s)
}

// Known reports whether s is one of SubjectCodes
func (s SubjectCode) Known() bool {
	_, ok := subjectLabels[s]
	return ok
}

// Subject pairs a code with its label for listing
type Subject struct {
	Code  SubjectCode `json:"code"`
	Label string      `json:"label"`
}

// SupportRequest holds the raw support form fields
type SupportRequest struct {
	Name    string `json:"name" form:"name"`
	Email   string `json:"email" form:"email"`
	Subject string `json:"subject" form:"subject"`
	Message string `json:"message" form:"message"`
}

// ValidRequest is a SupportRequest that passed every check. Only Validate produces it.
type ValidRequest struct {
	SupportRequest
}

// ValidationKind identifies which check rejected a request
type ValidationKind string

const (
	MissingName     ValidationKind = "missing_name"
	InvalidEmail    ValidationKind = "invalid_email"
	MissingSubject  ValidationKind = "missing_subject"
	MessageTooShort ValidationKind = "message_too_short"
)

// MinMessageLength is the minimum trimmed message length in characters
const MinMessageLength = 10

// ValidationError is the first failed check of a support request
type ValidationError struct {
	Kind  ValidationKind `json:"kind"`
	Field string         `json:"field"`
	Text  string         `json:"text"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Kind)
}

// Validation errors are shared values so repeated failures compare equal
var (
	ErrMissingName     = &ValidationError{Kind: MissingName, Field: "name", Text: "请输入您的姓名。"}
	ErrInvalidEmail    = &ValidationError{Kind: InvalidEmail, Field: "email", Text: "请输入有效的邮箱地址。"}
	ErrMissingSubject  = &ValidationError{Kind: MissingSubject, Field: "subject", Text: "请选择问题类型。"}
	ErrMessageTooShort = &ValidationError{Kind: MessageTooShort, Field: "message", Text: "请输入至少10个字符的详细描述。"}
)

var (
	// ErrDeliveryHandoffFailed wraps a navigator rejection of the mailto link
	ErrDeliveryHandoffFailed = errors.New("mail client handoff failed")
	// ErrSubmitInFlight is returned when the submit control is already disabled
	ErrSubmitInFlight = errors.New("support request already being sent")
)

// Fixed UI strings
const (
	LabelSending = "发送中..."
	LabelSubmit  = "发送消息"
)

// SuccessText is shown once the mailto handoff had time to happen
func SuccessText(recipient string) string {
	return "邮件客户端应该已经打开。如果没有打开，请直接发送邮件到 " + recipient
}

// HandoffFailedText is shown when the mailto link could not be opened
func HandoffFailedText(recipient string) string {
	return "无法打开邮件客户端。请直接发送邮件到 " + recipient
}

// MessageKind is the style of a DisplayMessage
type MessageKind string

const (
	MessageError   MessageKind = "error"
	MessageSuccess MessageKind = "success"
)

// DisplayMessage is the content of the form's single message slot
type DisplayMessage struct {
	Text string      `json:"text"`
	Kind MessageKind `json:"kind"`
}

// Presenter is the presentation state a support submission writes to.
// It owns one message slot, the submit control and the form fields.
type Presenter interface {
	ClearMessage()
	// ShowMessage replaces whatever the slot holds and scrolls it into view
	ShowMessage(msg DisplayMessage)
	// DisableSubmit swaps the control label and returns the previous one.
	// Fails with ErrSubmitInFlight when the control is already disabled.
	DisableSubmit(label string) (string, error)
	EnableSubmit(label string)
	ResetFields()
}

// Navigator hands a link to the user agent. A nil error only means the
// link was dispatched, never that a mail client opened.
type Navigator interface {
	Navigate(ctx context.Context, link string) error
}

// SubmissionOutcome is the terminal state of a dispatched submission
type SubmissionOutcome string

const (
	OutcomePending       SubmissionOutcome = "pending"
	OutcomeSuccess       SubmissionOutcome = "success"
	OutcomeHandoffFailed SubmissionOutcome = "handoff_failed"
)

// Submission tracks one dispatched support request until it settles
type Submission struct {
	ID   string
	Link string

	mu      sync.Mutex
	done    chan struct{}
	outcome SubmissionOutcome
	event   TrackingEvent
	err     error
}

func NewSubmission(id, link string) *Submission {
	return &Submission{
		ID:      id,
		Link:    link,
		done:    make(chan struct{}),
		outcome: OutcomePending,
	}
}

// Complete settles the submission. Later calls are ignored.
func (s *Submission) Complete(outcome SubmissionOutcome, event TrackingEvent, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.outcome != OutcomePending {
		return
	}
	s.outcome = outcome
	s.event = event
	s.err = err
	close(s.done)
}

// Done is closed once the submission settles
func (s *Submission) Done() <-chan struct{} {
	return s.done
}

func (s *Submission) Outcome() SubmissionOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outcome
}

// Event returns the tracking event emitted when the submission settled
func (s *Submission) Event() TrackingEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.event
}

// Err is non-nil for OutcomeHandoffFailed
func (s *Submission) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Wait blocks until the submission settles or ctx ends
func (s *Submission) Wait(ctx context.Context) (SubmissionOutcome, error) {
	select {
	case <-s.done:
		return s.Outcome(), nil
	case <-ctx.Done():
		return OutcomePending, ctx.Err()
	}
}

// SupportUsecase defines the support form operations
type SupportUsecase interface {
	// Validate runs the field checks in order and stops at the first failure
	Validate(req SupportRequest) (ValidRequest, error)
	// Check validates and reflects the result in the presenter
	Check(page Presenter, req SupportRequest) (ValidRequest, error)
	// Submit builds the mailto link and dispatches it
	Submit(ctx context.Context, page Presenter, req ValidRequest) (*Submission, error)
	// Subjects lists the selectable subject codes
	Subjects() []Subject
}

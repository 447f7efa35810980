package usecase_test

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"aiki-site-backend/internal/domain"
	"aiki-site-backend/internal/presentation"
	"aiki-site-backend/internal/usecase"
	"aiki-site-backend/pkg/clock"
	"aiki-site-backend/pkg/validation"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const recipient = "chizhang2048@gmail.com"

// Mock collaborators
type MockNavigator struct {
	mock.Mock
}

func (m *MockNavigator) Navigate(ctx context.Context, link string) error {
	return m.Called(ctx, link).Error(0)
}

type MockTracker struct {
	mock.Mock
}

func (m *MockTracker) Track(ctx context.Context, event domain.TrackingEvent) {
	m.Called(ctx, event)
}

func newValidator() *validator.Validate {
	v := validator.New()
	validation.RegisterValidators(v, func(code string) bool { return domain.SubjectCode(code).Known() })
	return v
}

type fixture struct {
	uc        domain.SupportUsecase
	navigator *MockNavigator
	tracker   *MockTracker
	clock     *clock.Manual
}

func newFixture(strict bool) *fixture {
	f := &fixture{
		navigator: new(MockNavigator),
		tracker:   new(MockTracker),
		clock:     clock.NewManual(time.Unix(0, 0)),
	}
	f.uc = usecase.NewSupportUsecase(usecase.SupportConfig{
		Recipient:      recipient,
		HandoffDelay:   500 * time.Millisecond,
		StrictSubjects: strict,
	}, newValidator(), f.navigator, f.tracker, f.clock)
	return f
}

func (f *fixture) newPage(req domain.SupportRequest) *presentation.Page {
	return presentation.NewPage(req, presentation.WithClock(f.clock))
}

func validRequest() domain.SupportRequest {
	return domain.SupportRequest{
		Name:    "Li Wei",
		Email:   "li@example.com",
		Subject: "technical-issue",
		Message: "App crashes on launch",
	}
}

// decodeLink extracts the decoded subject and body of a mailto link
func decodeLink(t *testing.T, link string) (string, string) {
	t.Helper()
	query := strings.SplitN(link, "?", 2)
	require.Len(t, query, 2)
	parts := strings.SplitN(query[1], "&body=", 2)
	require.Len(t, parts, 2)

	subject, err := url.PathUnescape(strings.TrimPrefix(parts[0], "subject="))
	require.NoError(t, err)
	body, err := url.PathUnescape(parts[1])
	require.NoError(t, err)
	return subject, body
}

func TestValidateOrder(t *testing.T) {
	f := newFixture(false)

	tests := []struct {
		name   string
		mutate func(r *domain.SupportRequest)
		want   error
	}{
		{"valid", func(r *domain.SupportRequest) {}, nil},
		{"empty name wins over everything", func(r *domain.SupportRequest) {
			*r = domain.SupportRequest{Name: "", Email: "bad", Subject: "", Message: "short"}
		}, domain.ErrMissingName},
		{"whitespace name", func(r *domain.SupportRequest) { r.Name = " \t\n" }, domain.ErrMissingName},
		{"empty email", func(r *domain.SupportRequest) { r.Email = "  " }, domain.ErrInvalidEmail},
		{"email without tld", func(r *domain.SupportRequest) { r.Email = "a@b" }, domain.ErrInvalidEmail},
		{"email without at", func(r *domain.SupportRequest) { r.Email = "a.com" }, domain.ErrInvalidEmail},
		{"email with space", func(r *domain.SupportRequest) { r.Email = "a @b.com" }, domain.ErrInvalidEmail},
		{"bad email wins over subject", func(r *domain.SupportRequest) { r.Email = "x"; r.Subject = "" }, domain.ErrInvalidEmail},
		{"empty subject", func(r *domain.SupportRequest) { r.Subject = "" }, domain.ErrMissingSubject},
		{"empty subject wins over message", func(r *domain.SupportRequest) { r.Subject = ""; r.Message = "" }, domain.ErrMissingSubject},
		{"message of 9", func(r *domain.SupportRequest) { r.Message = "123456789" }, domain.ErrMessageTooShort},
		{"padded message of 9", func(r *domain.SupportRequest) { r.Message = "   123456789   " }, domain.ErrMessageTooShort},
		{"message of exactly 10", func(r *domain.SupportRequest) { r.Message = "1234567890" }, nil},
		{"cjk message of 10", func(r *domain.SupportRequest) { r.Message = "应用启动时总是会崩溃" }, nil},
		{"five emoji are ten units", func(r *domain.SupportRequest) { r.Message = strings.Repeat("\U0001F600", 5) }, nil},
		{"four emoji are eight units", func(r *domain.SupportRequest) { r.Message = strings.Repeat("\U0001F600", 4) }, domain.ErrMessageTooShort},
		{"five decomposed accents are ten units", func(r *domain.SupportRequest) { r.Message = strings.Repeat("e\u0301", 5) }, nil},
		{"four decomposed accents are eight units", func(r *domain.SupportRequest) { r.Message = strings.Repeat("e\u0301", 4) }, domain.ErrMessageTooShort},
		{"next line name is not blank", func(r *domain.SupportRequest) { r.Name = "\u0085" }, nil},
		{"unknown subject passes", func(r *domain.SupportRequest) { r.Subject = "billing" }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(&req)

			valid, err := f.uc.Validate(req)
			if tt.want == nil {
				require.NoError(t, err)
				assert.Equal(t, req, valid.SupportRequest)
				return
			}
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, domain.ValidRequest{}, valid)
		})
	}
}

func TestValidateStrictSubjects(t *testing.T) {
	f := newFixture(true)

	req := validRequest()
	req.Subject = "billing"
	_, err := f.uc.Validate(req)
	assert.ErrorIs(t, err, domain.ErrMissingSubject)

	req.Subject = "other"
	_, err = f.uc.Validate(req)
	assert.NoError(t, err)
}

func TestValidateIsIdempotent(t *testing.T) {
	f := newFixture(false)
	req := validRequest()
	req.Email = "not-an-email"

	_, first := f.uc.Validate(req)
	_, second := f.uc.Validate(req)
	assert.Same(t, first, second)
	assert.Equal(t, domain.InvalidEmail, first.(*domain.ValidationError).Kind)
}

func TestCheckScenarios(t *testing.T) {
	t.Run("missing name shows error and leaves control enabled", func(t *testing.T) {
		f := newFixture(false)
		req := domain.SupportRequest{Name: "", Email: "x@y.com", Subject: "other", Message: "0123456789"}
		page := f.newPage(req)

		_, err := f.uc.Check(page, req)
		assert.ErrorIs(t, err, domain.ErrMissingName)

		msg, ok := page.Message()
		require.True(t, ok)
		assert.Equal(t, domain.DisplayMessage{Text: "请输入您的姓名。", Kind: domain.MessageError}, msg)
		assert.True(t, page.Submit().Enabled)
		assert.Equal(t, req, page.Fields())
		f.tracker.AssertNotCalled(t, "Track", mock.Anything, mock.Anything)
		f.navigator.AssertNotCalled(t, "Navigate", mock.Anything, mock.Anything)
	})

	t.Run("invalid email", func(t *testing.T) {
		f := newFixture(false)
		req := domain.SupportRequest{Name: "Li Wei", Email: "not-an-email", Subject: "other", Message: "0123456789"}
		page := f.newPage(req)

		_, err := f.uc.Check(page, req)
		assert.ErrorIs(t, err, domain.ErrInvalidEmail)
		msg, _ := page.Message()
		assert.Equal(t, "请输入有效的邮箱地址。", msg.Text)
	})

	t.Run("previous message is cleared before a new check", func(t *testing.T) {
		f := newFixture(false)
		page := f.newPage(validRequest())
		page.ShowMessage(domain.DisplayMessage{Text: "old", Kind: domain.MessageError})

		_, err := f.uc.Check(page, validRequest())
		require.NoError(t, err)
		_, ok := page.Message()
		assert.False(t, ok)
	})
}

func TestSubmitSuccess(t *testing.T) {
	f := newFixture(false)
	req := validRequest()
	page := f.newPage(req)

	ctx := context.WithValue(context.Background(), domain.KeyRequestID, "req-42")

	var link string
	f.navigator.On("Navigate", ctx, mock.AnythingOfType("string")).Return(nil).Run(func(args mock.Arguments) {
		link = args.String(1)
	})
	f.tracker.On("Track", mock.Anything, mock.MatchedBy(func(e domain.TrackingEvent) bool {
		return e.Category == "Support" && e.Action == "Form Submit" && e.Label == "Success" && e.RequestID == "req-42"
	})).Return()

	valid, err := f.uc.Check(page, req)
	require.NoError(t, err)

	sub, err := f.uc.Submit(ctx, page, valid)
	require.NoError(t, err)

	// Dispatched but not yet confirmed
	assert.Equal(t, domain.OutcomePending, sub.Outcome())
	assert.Equal(t, presentation.SubmitControl{Enabled: false, Label: domain.LabelSending}, page.Submit())
	f.tracker.AssertNotCalled(t, "Track", mock.Anything, mock.Anything)

	require.True(t, strings.HasPrefix(link, "mailto:chizhang2048@gmail.com?subject="))
	assert.Equal(t, link, sub.Link)
	subject, body := decodeLink(t, link)
	assert.Equal(t, "Aiki支持请求: 技术问题/Bug报告", subject)
	assert.Contains(t, body, "Li Wei")
	assert.Contains(t, body, "li@example.com")
	assert.Contains(t, body, "技术问题/Bug报告")
	assert.Contains(t, body, "App crashes on launch")

	f.clock.Advance(499 * time.Millisecond)
	assert.Equal(t, domain.OutcomePending, sub.Outcome())

	f.clock.Advance(time.Millisecond)
	outcome, err := sub.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeSuccess, outcome)
	assert.NoError(t, sub.Err())

	msg, ok := page.Message()
	require.True(t, ok)
	assert.Equal(t, domain.MessageSuccess, msg.Kind)
	assert.Equal(t, "邮件客户端应该已经打开。如果没有打开，请直接发送邮件到 chizhang2048@gmail.com", msg.Text)
	assert.Equal(t, domain.SupportRequest{}, page.Fields())
	assert.Equal(t, presentation.SubmitControl{Enabled: true, Label: domain.LabelSubmit}, page.Submit())
	assert.Equal(t, domain.LabelSuccess, sub.Event().Label)
	assert.Equal(t, sub.ID, sub.Event().SubmissionID)

	f.tracker.AssertNumberOfCalls(t, "Track", 1)
	f.navigator.AssertExpectations(t)
}

func TestSubmitHandoffFailed(t *testing.T) {
	f := newFixture(false)
	req := validRequest()
	page := f.newPage(req)

	f.navigator.On("Navigate", mock.Anything, mock.Anything).Return(errors.New("blocked"))
	f.tracker.On("Track", mock.Anything, mock.MatchedBy(func(e domain.TrackingEvent) bool {
		return e.Category == "Support" && e.Action == "Form Submit" && e.Label == "Error"
	})).Return()

	valid, err := f.uc.Validate(req)
	require.NoError(t, err)

	sub, err := f.uc.Submit(context.Background(), page, valid)
	require.NoError(t, err)

	// Settles without waiting for the timer
	assert.Equal(t, domain.OutcomeHandoffFailed, sub.Outcome())
	assert.ErrorIs(t, sub.Err(), domain.ErrDeliveryHandoffFailed)
	assert.Equal(t, 0, f.clock.Pending())

	msg, ok := page.Message()
	require.True(t, ok)
	assert.Equal(t, domain.DisplayMessage{
		Text: "无法打开邮件客户端。请直接发送邮件到 chizhang2048@gmail.com",
		Kind: domain.MessageError,
	}, msg)
	assert.Equal(t, presentation.SubmitControl{Enabled: true, Label: domain.LabelSubmit}, page.Submit())
	// Fields stay populated so the user can retry
	assert.Equal(t, req, page.Fields())

	f.tracker.AssertNumberOfCalls(t, "Track", 1)
	f.navigator.AssertNumberOfCalls(t, "Navigate", 1)
}

func TestSubmitWhileInFlight(t *testing.T) {
	f := newFixture(false)
	page := f.newPage(validRequest())
	_, err := page.DisableSubmit(domain.LabelSending)
	require.NoError(t, err)

	valid, err := f.uc.Validate(validRequest())
	require.NoError(t, err)

	sub, err := f.uc.Submit(context.Background(), page, valid)
	assert.ErrorIs(t, err, domain.ErrSubmitInFlight)
	assert.Nil(t, sub)
	f.navigator.AssertNotCalled(t, "Navigate", mock.Anything, mock.Anything)
}

func TestSubmitUnknownSubjectUsesRawCode(t *testing.T) {
	f := newFixture(false)
	req := validRequest()
	req.Subject = "billing"
	page := f.newPage(req)

	f.navigator.On("Navigate", mock.Anything, mock.Anything).Return(nil)
	f.tracker.On("Track", mock.Anything, mock.Anything).Return()

	valid, err := f.uc.Validate(req)
	require.NoError(t, err)
	sub, err := f.uc.Submit(context.Background(), page, valid)
	require.NoError(t, err)

	subject, body := decodeLink(t, sub.Link)
	assert.Equal(t, "Aiki支持请求: billing", subject)
	assert.Contains(t, body, "问题类型: billing")
}

func TestSubjects(t *testing.T) {
	f := newFixture(false)
	subjects := f.uc.Subjects()

	require.Len(t, subjects, 6)
	assert.Equal(t, domain.Subject{Code: "technical-issue", Label: "技术问题/Bug报告"}, subjects[0])
	assert.Equal(t, domain.Subject{Code: "other", Label: "其他"}, subjects[5])
}

func TestTrackEvent(t *testing.T) {
	tracker := new(MockTracker)
	uc := usecase.NewTrackingUsecase(tracker)
	ctx := context.WithValue(context.Background(), domain.KeyRequestID, "req-7")

	t.Run("records trimmed event with request id", func(t *testing.T) {
		tracker.On("Track", ctx, domain.TrackingEvent{
			Category:  "Support",
			Action:    "Direct Email Click",
			Label:     "Contact Info",
			RequestID: "req-7",
		}).Return().Once()

		err := uc.TrackEvent(ctx, domain.TrackingEvent{
			Category:     " Support ",
			Action:       "Direct Email Click",
			Label:        "Contact Info ",
			RequestID:    "spoofed",
			SubmissionID: "spoofed",
		})
		require.NoError(t, err)
		tracker.AssertExpectations(t)
	})

	t.Run("rejects blank fields", func(t *testing.T) {
		err := uc.TrackEvent(ctx, domain.TrackingEvent{Category: "Download", Action: " ", Label: "Hero CTA"})
		assert.Error(t, err)
	})

	t.Run("rejects forged form submit events", func(t *testing.T) {
		err := uc.TrackEvent(ctx, domain.TrackingEvent{Category: "Support", Action: "Form Submit", Label: "Success"})
		assert.Error(t, err)
	})
}

func TestHealthCheck(t *testing.T) {
	assert.Equal(t, "disabled", usecase.NewHealthUsecase(nil).Check(context.Background())["redis"])

	down := usecase.NewHealthUsecase(func(ctx context.Context) error { return errors.New("down") })
	assert.Equal(t, "unavailable", down.Check(context.Background())["redis"])

	up := usecase.NewHealthUsecase(func(ctx context.Context) error { return nil })
	assert.Equal(t, "ok", up.Check(context.Background())["redis"])
}

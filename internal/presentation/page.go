// Package presentation holds the support form's UI state: one message slot,
// the submit control and the four fields. Every mutation is also appended to
// an effect list so a client can replay it on the real page.
package presentation

import (
	"sync"
	"time"

	"aiki-site-backend/internal/domain"
	"aiki-site-backend/pkg/clock"
)

// EffectType names a UI side effect
type EffectType string

const (
	EffectClearMessage   EffectType = "clear_message"
	EffectShowMessage    EffectType = "show_message"
	EffectScrollIntoView EffectType = "scroll_into_view"
	EffectDisableSubmit  EffectType = "disable_submit"
	EffectEnableSubmit   EffectType = "enable_submit"
	EffectResetFields    EffectType = "reset_fields"
)

type Effect struct {
	Type    EffectType             `json:"type"`
	Message *domain.DisplayMessage `json:"message,omitempty"`
	Label   string                 `json:"label,omitempty"`
}

// SubmitControl is the state of the form's submit button
type SubmitControl struct {
	Enabled bool   `json:"enabled"`
	Label   string `json:"label"`
}

// State is a point-in-time copy of a Page
type State struct {
	Message *domain.DisplayMessage `json:"message"`
	Submit  SubmitControl          `json:"submit"`
	Fields  domain.SupportRequest  `json:"fields"`
	Effects []Effect               `json:"effects"`
}

// Page implements domain.Presenter. Safe for use from timer callbacks.
type Page struct {
	mu         sync.Mutex
	clock      clock.Clock
	successTTL time.Duration

	message    *domain.DisplayMessage
	messageSeq uint64
	submit     SubmitControl
	fields     domain.SupportRequest
	effects    []Effect
}

type Option func(*Page)

// WithClock sets the clock used for success message expiry
func WithClock(c clock.Clock) Option {
	return func(p *Page) { p.clock = c }
}

// WithSuccessTTL sets how long a success message stays shown; 0 keeps it
func WithSuccessTTL(d time.Duration) Option {
	return func(p *Page) { p.successTTL = d }
}

// WithSubmitLabel sets the idle label of the submit control
func WithSubmitLabel(label string) Option {
	return func(p *Page) { p.submit.Label = label }
}

func NewPage(fields domain.SupportRequest, opts ...Option) *Page {
	p := &Page{
		clock:  clock.System(),
		submit: SubmitControl{Enabled: true, Label: domain.LabelSubmit},
		fields: fields,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Page) ClearMessage() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.message == nil {
		return
	}
	p.message = nil
	p.messageSeq++
	p.effects = append(p.effects, Effect{Type: EffectClearMessage})
}

func (p *Page) ShowMessage(msg domain.DisplayMessage) {
	p.mu.Lock()
	defer p.mu.Unlock()

	shown := msg
	p.message = &shown
	p.messageSeq++
	seq := p.messageSeq
	p.effects = append(p.effects,
		Effect{Type: EffectShowMessage, Message: &shown},
		Effect{Type: EffectScrollIntoView},
	)

	if msg.Kind == domain.MessageSuccess && p.successTTL > 0 {
		p.clock.AfterFunc(p.successTTL, func() { p.expireMessage(seq) })
	}
}

// expireMessage clears the slot only if it still holds message seq
func (p *Page) expireMessage(seq uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.message == nil || p.messageSeq != seq {
		return
	}
	p.message = nil
	p.messageSeq++
	p.effects = append(p.effects, Effect{Type: EffectClearMessage})
}

func (p *Page) DisableSubmit(label string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.submit.Enabled {
		return "", domain.ErrSubmitInFlight
	}
	original := p.submit.Label
	p.submit = SubmitControl{Enabled: false, Label: label}
	p.effects = append(p.effects, Effect{Type: EffectDisableSubmit, Label: label})
	return original, nil
}

func (p *Page) EnableSubmit(label string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.submit = SubmitControl{Enabled: true, Label: label}
	p.effects = append(p.effects, Effect{Type: EffectEnableSubmit, Label: label})
}

func (p *Page) ResetFields() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fields = domain.SupportRequest{}
	p.effects = append(p.effects, Effect{Type: EffectResetFields})
}

// Message returns the message currently in the slot, if any
func (p *Page) Message() (domain.DisplayMessage, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.message == nil {
		return domain.DisplayMessage{}, false
	}
	return *p.message, true
}

func (p *Page) Submit() SubmitControl {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.submit
}

func (p *Page) Fields() domain.SupportRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.fields
}

func (p *Page) Snapshot() State {
	p.mu.Lock()
	defer p.mu.Unlock()

	state := State{
		Submit:  p.submit,
		Fields:  p.fields,
		Effects: make([]Effect, len(p.effects)),
	}
	copy(state.Effects, p.effects)
	if p.message != nil {
		msg := *p.message
		state.Message = &msg
	}
	return state
}

package presentation_test

import (
	"testing"
	"time"

	"aiki-site-backend/internal/domain"
	"aiki-site-backend/internal/presentation"
	"aiki-site-backend/pkg/clock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageSlotHoldsOneMessage(t *testing.T) {
	p := presentation.NewPage(domain.SupportRequest{})

	p.ShowMessage(domain.DisplayMessage{Text: "first", Kind: domain.MessageError})
	p.ShowMessage(domain.DisplayMessage{Text: "second", Kind: domain.MessageError})

	msg, ok := p.Message()
	require.True(t, ok)
	assert.Equal(t, "second", msg.Text)

	p.ClearMessage()
	_, ok = p.Message()
	assert.False(t, ok)
}

func TestClearEmptySlotRecordsNothing(t *testing.T) {
	p := presentation.NewPage(domain.SupportRequest{})
	p.ClearMessage()
	assert.Empty(t, p.Snapshot().Effects)
}

func TestSuccessMessageExpires(t *testing.T) {
	c := clock.NewManual(time.Unix(0, 0))
	p := presentation.NewPage(domain.SupportRequest{},
		presentation.WithClock(c),
		presentation.WithSuccessTTL(5*time.Second),
	)

	p.ShowMessage(domain.DisplayMessage{Text: "ok", Kind: domain.MessageSuccess})
	c.Advance(4 * time.Second)
	_, ok := p.Message()
	assert.True(t, ok)

	c.Advance(time.Second)
	_, ok = p.Message()
	assert.False(t, ok)
}

func TestReplacedSuccessMessageIsNotExpired(t *testing.T) {
	c := clock.NewManual(time.Unix(0, 0))
	p := presentation.NewPage(domain.SupportRequest{},
		presentation.WithClock(c),
		presentation.WithSuccessTTL(5*time.Second),
	)

	p.ShowMessage(domain.DisplayMessage{Text: "ok", Kind: domain.MessageSuccess})
	c.Advance(time.Second)
	p.ShowMessage(domain.DisplayMessage{Text: "oops", Kind: domain.MessageError})
	c.Advance(10 * time.Second)

	msg, ok := p.Message()
	require.True(t, ok)
	assert.Equal(t, "oops", msg.Text)
}

func TestErrorMessageDoesNotExpire(t *testing.T) {
	c := clock.NewManual(time.Unix(0, 0))
	p := presentation.NewPage(domain.SupportRequest{},
		presentation.WithClock(c),
		presentation.WithSuccessTTL(time.Second),
	)

	p.ShowMessage(domain.DisplayMessage{Text: "bad", Kind: domain.MessageError})
	assert.Equal(t, 0, c.Pending())
}

func TestSubmitControl(t *testing.T) {
	p := presentation.NewPage(domain.SupportRequest{}, presentation.WithSubmitLabel("Send"))

	original, err := p.DisableSubmit(domain.LabelSending)
	require.NoError(t, err)
	assert.Equal(t, "Send", original)
	assert.Equal(t, presentation.SubmitControl{Enabled: false, Label: domain.LabelSending}, p.Submit())

	_, err = p.DisableSubmit(domain.LabelSending)
	assert.ErrorIs(t, err, domain.ErrSubmitInFlight)

	p.EnableSubmit(original)
	assert.Equal(t, presentation.SubmitControl{Enabled: true, Label: "Send"}, p.Submit())
}

func TestResetFieldsAndEffects(t *testing.T) {
	p := presentation.NewPage(domain.SupportRequest{Name: "Li Wei", Message: "hello"})
	p.ShowMessage(domain.DisplayMessage{Text: "hi", Kind: domain.MessageError})
	p.ResetFields()

	state := p.Snapshot()
	assert.Equal(t, domain.SupportRequest{}, state.Fields)

	var types []presentation.EffectType
	for _, e := range state.Effects {
		types = append(types, e.Type)
	}
	assert.Equal(t, []presentation.EffectType{
		presentation.EffectShowMessage,
		presentation.EffectScrollIntoView,
		presentation.EffectResetFields,
	}, types)
}

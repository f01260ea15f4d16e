package toast

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type apiErr struct{ msg string }

func (e apiErr) Error() string      { return "remote error 422" }
func (e apiErr) APIMessage() string { return e.msg }

type blankErr struct{}

func (blankErr) Error() string { return "  " }

func TestErrorMessagePrefersAPIResponse(t *testing.T) {
	wrapped := fmt.Errorf("teams: add member: %w", apiErr{msg: "Email already invited"})
	assert.Equal(t, "Email already invited", ErrorMessage(wrapped, ""))
}

func TestErrorMessageFallbacks(t *testing.T) {
	assert.Equal(t, "boom", ErrorMessage(errors.New("boom"), "fallback"))
	assert.Equal(t, "remote error 422", ErrorMessage(apiErr{}, "fallback"))
	assert.Equal(t, "fallback", ErrorMessage(blankErr{}, "fallback"))
	assert.Equal(t, GenericError, ErrorMessage(nil, ""))
}

func TestErrorToastIsDestructive(t *testing.T) {
	got := Error("Failed to update role", errors.New("forbidden"), "")
	assert.Equal(t, Toast{Variant: VariantDestructive, Title: "Failed to update role", Description: "forbidden"}, got)
}

func TestRecorder(t *testing.T) {
	rec := &Recorder{}
	_, ok := rec.Last()
	require.False(t, ok)

	var n Notifier = rec
	n.Notify(context.Background(), Success("Saved", ""))
	n.Notify(context.Background(), Error("Oops", nil, "try later"))

	last, ok := rec.Last()
	require.True(t, ok)
	assert.Equal(t, "try later", last.Description)
	assert.Len(t, rec.Toasts(), 2)
	assert.Len(t, rec.Drain(), 2)
	assert.Empty(t, rec.Toasts())
}

func TestNormalizeAndFunc(t *testing.T) {
	Normalize(nil).Notify(context.Background(), Toast{})

	var got Toast
	Normalize(NotifierFunc(func(_ context.Context, t Toast) { got = t })).Notify(context.Background(), Success("ok", ""))
	assert.Equal(t, VariantSuccess, got.Variant)
}

package chart

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// manualClock fires After channels only when the test says so.
type manualClock struct {
	now   time.Time
	fire  chan time.Time
	asked chan time.Duration
}

func newManualClock() *manualClock {
	return &manualClock{
		now:   time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		fire:  make(chan time.Time, 1),
		asked: make(chan time.Duration, 1),
	}
}

func (c *manualClock) Now() time.Time { return c.now }

func (c *manualClock) After(d time.Duration) <-chan time.Time {
	c.asked <- d
	return c.fire
}

func TestChatAskAppendsReplyAfterDelay(t *testing.T) {
	clock := newManualClock()
	chat := NewChat(func(q string) string { return "answer: " + q }, ChatOptions{Clock: clock})

	done := make(chan Message, 1)
	go func() {
		msg, err := chat.Ask(context.Background(), "  resumo  ")
		assert.NoError(t, err)
		done <- msg
	}()

	assert.Equal(t, DefaultThinkingDelay, <-clock.asked)
	clock.fire <- clock.now
	reply := <-done

	assert.Equal(t, RoleAssistant, reply.Role)
	assert.Equal(t, "answer: resumo", reply.Content)
	msgs := chat.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, Message{Role: RoleUser, Content: "resumo", At: clock.now}, msgs[0])
}

func TestChatCancelDropsReply(t *testing.T) {
	clock := newManualClock()
	chat := NewChat(func(string) string { return "late" }, ChatOptions{Clock: clock})
	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() {
		_, err := chat.Ask(ctx, "tendência")
		errCh <- err
	}()
	<-clock.asked
	cancel()

	require.ErrorIs(t, <-errCh, context.Canceled)
	msgs := chat.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, RoleUser, msgs[0].Role)
}

func TestChatCloseDropsPendingReply(t *testing.T) {
	clock := newManualClock()
	chat := NewChat(func(string) string { return "late" }, ChatOptions{Clock: clock})

	errCh := make(chan error, 1)
	go func() {
		_, err := chat.Ask(context.Background(), "tabela")
		errCh <- err
	}()
	<-clock.asked
	chat.Close()
	chat.Close()

	require.ErrorIs(t, <-errCh, ErrChatClosed)
	assert.Len(t, chat.Messages(), 1)

	_, err := chat.Ask(context.Background(), "again")
	require.ErrorIs(t, err, ErrChatClosed)
}

func TestChatWithoutDelayAnswersImmediately(t *testing.T) {
	dash := NewDashboard("Sales", salesData(), DashboardOptions{Renderer: &recordingRenderer{}})
	chat := dash.NewChat(ChatOptions{Delay: -1})

	reply, err := chat.Ask(context.Background(), "show me the trend")
	require.NoError(t, err)
	assert.Contains(t, reply.Content, "Análise de Tendência")

	_, err = chat.Ask(context.Background(), "   ")
	require.ErrorIs(t, err, ErrEmptyQuery)
}

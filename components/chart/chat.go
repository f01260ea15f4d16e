package chart

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
)

// DefaultThinkingDelay is the pause before a chat reply is appended.
const DefaultThinkingDelay = 1500 * time.Millisecond

var (
	// ErrChatClosed is returned once a chat has been closed.
	ErrChatClosed = errors.New("chart: chat closed")
	// ErrEmptyQuery is returned for blank questions.
	ErrEmptyQuery = errors.New("chart: query is empty")
)

// Clock abstracts time so the thinking delay can be driven by tests.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

// SystemClock is the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time                         { return time.Now() }
func (SystemClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one chat turn.
type Message struct {
	Role    string    `json:"role"`
	Content string    `json:"content"`
	At      time.Time `json:"at"`
}

// Responder answers a query. Dashboard.Answer satisfies it.
type Responder func(query string) string

// ChatOptions configures a Chat.
type ChatOptions struct {
	Clock Clock
	Delay time.Duration
}

// Chat is a conversation over a Responder. Replies arrive after a thinking
// delay; cancelling the context or closing the chat during the delay drops the
// reply.
type Chat struct {
	respond Responder
	clock   Clock
	delay   time.Duration

	mu       sync.RWMutex
	messages []Message
	closed   bool
	done     chan struct{}
	once     sync.Once
}

// NewChat builds a chat session.
func NewChat(respond Responder, opts ChatOptions) *Chat {
	if opts.Clock == nil {
		opts.Clock = SystemClock{}
	}
	if opts.Delay < 0 {
		opts.Delay = 0
	} else if opts.Delay == 0 {
		opts.Delay = DefaultThinkingDelay
	}
	return &Chat{
		respond: respond,
		clock:   opts.Clock,
		delay:   opts.Delay,
		done:    make(chan struct{}),
	}
}

// Ask appends the question, waits out the thinking delay and appends the
// reply. The reply is discarded if ctx ends or the chat closes first.
func (c *Chat) Ask(ctx context.Context, query string) (Message, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Message{}, ErrEmptyQuery
	}
	if err := c.append(Message{Role: RoleUser, Content: query, At: c.clock.Now()}); err != nil {
		return Message{}, err
	}

	if c.delay > 0 {
		select {
		case <-ctx.Done():
			return Message{}, ctx.Err()
		case <-c.done:
			return Message{}, ErrChatClosed
		case <-c.clock.After(c.delay):
		}
	}
	if err := ctx.Err(); err != nil {
		return Message{}, err
	}

	content := HelpText
	if c.respond != nil {
		content = c.respond(query)
	}
	reply := Message{Role: RoleAssistant, Content: content, At: c.clock.Now()}
	if err := c.append(reply); err != nil {
		return Message{}, err
	}
	return reply, nil
}

// Messages returns a copy of the conversation.
func (c *Chat) Messages() []Message {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Message(nil), c.messages...)
}

// Close stops pending replies. It is safe to call more than once.
func (c *Chat) Close() {
	c.once.Do(func() {
		c.mu.Lock()
		c.closed = true
		c.mu.Unlock()
		close(c.done)
	})
}

func (c *Chat) append(msg Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrChatClosed
	}
	c.messages = append(c.messages, msg)
	return nil
}

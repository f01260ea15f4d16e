// Package toast carries user-facing notifications raised by services when a
// validation fails or a host call is rejected.
package toast

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// Variant selects the toast styling.
type Variant string

const (
	VariantDefault     Variant = "default"
	VariantSuccess     Variant = "success"
	VariantDestructive Variant = "destructive"
)

// GenericError is the fallback description when an error carries no message.
const GenericError = "Something went wrong. Please try again."

// Toast is a single notification.
type Toast struct {
	Variant     Variant `json:"variant"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
}

// Notifier shows toasts to the current user.
type Notifier interface {
	Notify(ctx context.Context, t Toast)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, t Toast)

// Notify calls f.
func (f NotifierFunc) Notify(ctx context.Context, t Toast) {
	if f != nil {
		f(ctx, t)
	}
}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, Toast) {}

// Normalize returns n, or a notifier that drops everything when n is nil.
func Normalize(n Notifier) Notifier {
	if n == nil {
		return nopNotifier{}
	}
	return n
}

// Success builds a success toast.
func Success(title, description string) Toast {
	return Toast{Variant: VariantSuccess, Title: title, Description: description}
}

// Error builds a destructive toast describing err.
func Error(title string, err error, fallback string) Toast {
	return Toast{Variant: VariantDestructive, Title: title, Description: ErrorMessage(err, fallback)}
}

// APIMessager is implemented by errors decoded from an API error response.
type APIMessager interface {
	APIMessage() string
}

// ErrorMessage extracts the message to show for err: the API response
// message when the chain carries one, then err.Error(), then fallback
// (GenericError when fallback is empty).
func ErrorMessage(err error, fallback string) string {
	if fallback == "" {
		fallback = GenericError
	}
	if err == nil {
		return fallback
	}
	var api APIMessager
	if errors.As(err, &api) {
		if msg := strings.TrimSpace(api.APIMessage()); msg != "" {
			return msg
		}
	}
	if msg := strings.TrimSpace(err.Error()); msg != "" {
		return msg
	}
	return fallback
}

// Recorder keeps every toast it receives. Useful for tests and for hosts that
// drain toasts into a response.
type Recorder struct {
	mu     sync.Mutex
	toasts []Toast
}

// Notify records t.
func (r *Recorder) Notify(_ context.Context, t Toast) {
	r.mu.Lock()
	r.toasts = append(r.toasts, t)
	r.mu.Unlock()
}

// Toasts returns a copy of the recorded toasts.
func (r *Recorder) Toasts() []Toast {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Toast(nil), r.toasts...)
}

// Last returns the most recent toast.
func (r *Recorder) Last() (Toast, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.toasts) == 0 {
		return Toast{}, false
	}
	return r.toasts[len(r.toasts)-1], true
}

// Drain returns and clears the recorded toasts.
func (r *Recorder) Drain() []Toast {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.toasts
	r.toasts = nil
	return out
}

package webhooks

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var (
	ErrNameRequired     = errors.New("webhooks: name is required")
	ErrSecretRequired   = errors.New("webhooks: secret is required")
	ErrHookNameRequired = errors.New("webhooks: hook name is required")
	ErrKeyHookMissing   = errors.New(`webhooks: schema must include a "keyHook" field`)
	ErrInvalidURL       = errors.New("webhooks: url must be an absolute http(s) address")
	ErrUnknownEvent     = errors.New("webhooks: unknown event")
)

// CreateForm is the state of the create wizard.
type CreateForm struct {
	Name     string   `json:"name"`
	URL      string   `json:"url"`
	Secret   string   `json:"secret"`
	HookName string   `json:"hook_name"`
	Events   []string `json:"events"`
	Schema   string   `json:"schema"`
}

// Fields parses the form schema.
func (f CreateForm) Fields() ([]SchemaField, error) {
	return ParseSchemaFields(f.Schema)
}

// ValidateCreate checks a create form. Every problem is reported, joined. A
// schema without keyHook is always rejected, whatever else is wrong.
func ValidateCreate(form CreateForm) error {
	var errs []error
	if strings.TrimSpace(form.Name) == "" {
		errs = append(errs, ErrNameRequired)
	}
	if strings.TrimSpace(form.Secret) == "" {
		errs = append(errs, ErrSecretRequired)
	}
	if strings.TrimSpace(form.HookName) == "" {
		errs = append(errs, ErrHookNameRequired)
	}
	if raw := strings.TrimSpace(form.URL); raw != "" {
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidURL, raw))
		}
	}
	for _, evt := range form.Events {
		if !knownEvent(evt) {
			errs = append(errs, fmt.Errorf("%w: %s", ErrUnknownEvent, evt))
		}
	}

	fields, err := form.Fields()
	switch {
	case err != nil && !errors.Is(err, ErrNoFields):
		errs = append(errs, err, ErrKeyHookMissing)
	case !HasKeyHook(fields):
		errs = append(errs, ErrKeyHookMissing)
	}
	return errors.Join(errs...)
}

// ApplyTemplate copies a template into the form. The hook name and events are
// replaced; name, url and secret are kept. A template schema that cannot be
// parsed falls back to DefaultSchemaFields.
func ApplyTemplate(form CreateForm, tpl Template) CreateForm {
	form.HookName = tpl.HookName
	form.Events = append([]string(nil), tpl.Events...)
	fields, err := ParseSchemaFields(tpl.Schema)
	if err != nil {
		fields = DefaultSchemaFields()
	}
	form.Schema = BuildSchema(fields)
	return form
}

func knownEvent(evt string) bool {
	for _, e := range Events {
		if e == evt {
			return true
		}
	}
	return false
}

package webhooks

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

var (
	ErrEmptySchema   = errors.New("webhooks: schema is empty")
	ErrInvalidSchema = errors.New("webhooks: schema is not a valid JSON schema")
	ErrNoFields      = errors.New("webhooks: schema declares no properties")
)

const schemaResource = "webhook-payload.json"

type schemaDoc struct {
	Type       any                        `json:"type"`
	Properties map[string]json.RawMessage `json:"properties"`
	Required   []string                   `json:"required"`
}

type propertyDoc struct {
	Type any `json:"type"`
}

func compileSchema(doc string) (*jsonschema.Schema, error) {
	if strings.TrimSpace(doc) == "" {
		return nil, ErrEmptySchema
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaResource, strings.NewReader(doc)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSchema, err)
	}
	compiled, err := compiler.Compile(schemaResource)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSchema, err)
	}
	return compiled, nil
}

// ParseSchemaFields compiles a JSON schema and lists its top-level
// properties, keyHook first and the rest by name.
func ParseSchemaFields(doc string) ([]SchemaField, error) {
	if _, err := compileSchema(doc); err != nil {
		return nil, err
	}
	var parsed schemaDoc
	if err := json.Unmarshal([]byte(doc), &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSchema, err)
	}
	if len(parsed.Properties) == 0 {
		return nil, ErrNoFields
	}
	required := make(map[string]bool, len(parsed.Required))
	for _, name := range parsed.Required {
		required[name] = true
	}
	fields := make([]SchemaField, 0, len(parsed.Properties))
	for name, raw := range parsed.Properties {
		var prop propertyDoc
		_ = json.Unmarshal(raw, &prop)
		fields = append(fields, SchemaField{Name: name, Type: typeName(prop.Type), Required: required[name]})
	}
	sort.Slice(fields, func(i, j int) bool {
		if (fields[i].Name == KeyHookField) != (fields[j].Name == KeyHookField) {
			return fields[i].Name == KeyHookField
		}
		return fields[i].Name < fields[j].Name
	})
	return fields, nil
}

func typeName(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok && s != "null" {
				return s
			}
		}
	}
	return "string"
}

// BuildSchema renders fields as an object JSON schema. Blank and repeated
// names are skipped; a blank type becomes "string".
func BuildSchema(fields []SchemaField) string {
	properties := map[string]any{}
	required := []string{}
	for _, f := range fields {
		name := strings.TrimSpace(f.Name)
		if name == "" {
			continue
		}
		if _, dup := properties[name]; dup {
			continue
		}
		typ := strings.TrimSpace(f.Type)
		if typ == "" {
			typ = "string"
		}
		properties[name] = map[string]any{"type": typ}
		if f.Required {
			required = append(required, name)
		}
	}
	doc := map[string]any{"type": "object", "properties": properties}
	if len(required) > 0 {
		doc["required"] = required
	}
	data, _ := json.Marshal(doc)
	return string(data)
}

// HasKeyHook reports whether fields declare the keyHook property.
func HasKeyHook(fields []SchemaField) bool {
	for _, f := range fields {
		if f.Name == KeyHookField {
			return true
		}
	}
	return false
}

// ValidatePayload checks a payload against a webhook schema.
func ValidatePayload(doc string, payload any) error {
	compiled, err := compileSchema(doc)
	if err != nil {
		return err
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("webhooks: marshal payload: %w", err)
	}
	var normalized any
	if err := json.Unmarshal(data, &normalized); err != nil {
		return fmt.Errorf("webhooks: normalize payload: %w", err)
	}
	if err := compiled.Validate(normalized); err != nil {
		return fmt.Errorf("webhooks: payload failed validation: %w", err)
	}
	return nil
}

// SamplePayload builds a payload matching fields. keyHook carries hookName and
// string "event"/"timestamp" fields are filled from event and at.
func SamplePayload(fields []SchemaField, hookName, event string, at time.Time) map[string]any {
	out := make(map[string]any, len(fields))
	for _, f := range fields {
		switch {
		case f.Name == KeyHookField:
			out[f.Name] = hookName
		case f.Name == "event" && f.Type == "string":
			out[f.Name] = event
		case f.Name == "timestamp" && f.Type == "string":
			out[f.Name] = at.UTC().Format(time.RFC3339)
		default:
			out[f.Name] = sampleValue(f.Type)
		}
	}
	return out
}

func sampleValue(typ string) any {
	switch typ {
	case "number":
		return 42.5
	case "integer":
		return 42
	case "boolean":
		return true
	case "object":
		return map[string]any{}
	case "array":
		return []any{}
	case "null":
		return nil
	default:
		return "sample"
	}
}

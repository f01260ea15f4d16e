package dashboard

import (
	"context"
	"strings"

	"github.com/goliatone/go-dataview/components/table"
)

// Translator looks up catalog strings. An empty result or an error falls back
// to the definition's own localized maps.
type Translator interface {
	Translate(ctx context.Context, key, locale string) (string, error)
}

// Localizer resolves the viewer-facing text of a widget: its title, its
// description and its column headers.
type Localizer struct {
	Translator Translator
}

// Widget returns def with Name and Description resolved for locale.
// Catalog keys are "dataview.<code>.name" and "dataview.<code>.description".
func (l Localizer) Widget(ctx context.Context, def WidgetDefinition, locale string) WidgetDefinition {
	def.Name = l.lookup(ctx, widgetKey(def.Code, "name"), locale, def.NameForLocale(locale))
	def.Description = l.lookup(ctx, widgetKey(def.Code, "description"), locale, def.DescriptionForLocale(locale))
	return def
}

// Column returns the header for col. The catalog key is
// "dataview.<code>.columns.<id>".
func (l Localizer) Column(ctx context.Context, code string, col table.Column, locale string) string {
	return l.lookup(ctx, widgetKey(code, "columns."+col.ID), locale, ColumnHeader(col, locale))
}

func (l Localizer) lookup(ctx context.Context, key, locale, fallback string) string {
	if l.Translator == nil || locale == "" {
		return fallback
	}
	if out, err := l.Translator.Translate(ctx, key, normalizeLocale(locale)); err == nil && out != "" {
		return out
	}
	return fallback
}

func widgetKey(code, field string) string {
	return "dataview." + code + "." + field
}

// ResolveLocalizedValue picks the value for locale from a locale-keyed map.
// Matching ignores case; "es-mx" falls back to "es" and then to a "default"
// entry. Returns fallback when nothing matches.
func ResolveLocalizedValue(values map[string]string, locale, fallback string) string {
	if len(values) == 0 {
		return fallback
	}
	best, rank := "", -1
	candidates := localeCandidates(locale)
	for key, value := range values {
		if value == "" {
			continue
		}
		key = normalizeLocale(key)
		for i, candidate := range candidates {
			if key == candidate && (rank == -1 || i < rank) {
				best, rank = value, i
			}
		}
	}
	if rank == -1 {
		return fallback
	}
	return best
}

// NameForLocale returns the widget name for locale.
func (def WidgetDefinition) NameForLocale(locale string) string {
	return ResolveLocalizedValue(def.NameLocalized, locale, def.Name)
}

// DescriptionForLocale returns the widget description for locale.
func (def WidgetDefinition) DescriptionForLocale(locale string) string {
	return ResolveLocalizedValue(def.DescriptionLocalized, locale, def.Description)
}

// ColumnHeader returns the column label for locale, falling back to the
// header derived from the column id.
func ColumnHeader(col table.Column, locale string) string {
	return ResolveLocalizedValue(col.HeaderLocalized, locale, col.Label())
}

// normalizeLocalizedFields lower-cases every locale key a definition carries,
// including column header maps, and drops empty entries.
func (def *WidgetDefinition) normalizeLocalizedFields() {
	def.NameLocalized = normalizeLocaleMap(def.NameLocalized)
	def.DescriptionLocalized = normalizeLocaleMap(def.DescriptionLocalized)
	if def.Table == nil {
		return
	}
	spec := *def.Table
	spec.Columns = append([]table.Column(nil), spec.Columns...)
	for i := range spec.Columns {
		spec.Columns[i].HeaderLocalized = normalizeLocaleMap(spec.Columns[i].HeaderLocalized)
	}
	def.Table = &spec
}

func normalizeLocaleMap(values map[string]string) map[string]string {
	if len(values) == 0 {
		return nil
	}
	out := make(map[string]string, len(values))
	for key, value := range values {
		if key = normalizeLocale(key); key != "" && value != "" {
			out[key] = value
		}
	}
	return out
}

func localeCandidates(locale string) []string {
	locale = normalizeLocale(locale)
	if locale == "" {
		return []string{"default"}
	}
	out := []string{locale}
	if base, _, ok := strings.Cut(locale, "-"); ok && base != "" {
		out = append(out, base)
	}
	return append(out, "default")
}

func normalizeLocale(locale string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(locale)), "_", "-")
}

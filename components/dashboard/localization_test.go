package dashboard

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-dataview/components/table"
)

type catalogTranslator struct {
	entries map[string]string
	err     error
}

func (c catalogTranslator) Translate(_ context.Context, key, locale string) (string, error) {
	if c.err != nil {
		return "", c.err
	}
	return c.entries[locale+":"+key], nil
}

func TestResolveLocalizedValue(t *testing.T) {
	values := map[string]string{
		"en":    "Orders",
		"ES":    "Pedidos",
		"es-mx": "Órdenes",
	}
	if got := ResolveLocalizedValue(values, "es-MX", "fallback"); got != "Órdenes" {
		t.Fatalf("expected region-specific match, got %q", got)
	}
	if got := ResolveLocalizedValue(values, "es_AR", "fallback"); got != "Pedidos" {
		t.Fatalf("expected base locale fallback, got %q", got)
	}
	if got := ResolveLocalizedValue(values, "fr", "Orders"); got != "Orders" {
		t.Fatalf("expected fallback when locale missing, got %q", got)
	}
	if got := ResolveLocalizedValue(map[string]string{"default": "Any"}, "fr", "Orders"); got != "Any" {
		t.Fatalf("expected default entry, got %q", got)
	}
	if got := ResolveLocalizedValue(nil, "es", "Orders"); got != "Orders" {
		t.Fatalf("expected fallback when no localized map, got %q", got)
	}
}

func TestColumnHeader(t *testing.T) {
	col := table.Column{ID: "created_at", HeaderLocalized: map[string]string{"es": "Creado"}}
	if got := ColumnHeader(col, "es-MX"); got != "Creado" {
		t.Fatalf("expected localized header, got %q", got)
	}
	if got := ColumnHeader(col, "en"); got != col.Label() {
		t.Fatalf("expected label fallback, got %q", got)
	}
}

func TestNormalizeLocalizedFieldsCopiesColumns(t *testing.T) {
	shared := []table.Column{{ID: "status", HeaderLocalized: map[string]string{"PT_BR": "Situação", "es": ""}}}
	def := WidgetDefinition{
		Code:          "w",
		Name:          "Orders",
		NameLocalized: map[string]string{"ES": "Pedidos"},
		Table:         &TableSpec{Columns: shared},
	}
	def.normalizeLocalizedFields()

	if got := def.NameForLocale("es"); got != "Pedidos" {
		t.Fatalf("expected normalized locale lookup, got %q", got)
	}
	headers := def.Table.Columns[0].HeaderLocalized
	if len(headers) != 1 || headers["pt-br"] != "Situação" {
		t.Fatalf("expected normalized header map, got %v", headers)
	}
	if _, ok := shared[0].HeaderLocalized["PT_BR"]; !ok {
		t.Fatalf("caller's columns were modified")
	}
}

func TestLocalizerPrefersCatalog(t *testing.T) {
	ctx := context.Background()
	def := WidgetDefinition{Code: "orders", Name: "Orders", NameLocalized: map[string]string{"es": "Pedidos"}, Description: "Recent"}
	loc := Localizer{Translator: catalogTranslator{entries: map[string]string{
		"es:dataview.orders.description":    "Recientes",
		"es:dataview.orders.columns.status": "Estado",
	}}}

	got := loc.Widget(ctx, def, "ES")
	if got.Name != "Pedidos" || got.Description != "Recientes" {
		t.Fatalf("unexpected localized widget %q / %q", got.Name, got.Description)
	}
	if header := loc.Column(ctx, "orders", table.Column{ID: "status"}, "es"); header != "Estado" {
		t.Fatalf("expected catalog header, got %q", header)
	}
	if header := loc.Column(ctx, "orders", table.Column{ID: "total"}, "es"); header != "Total" {
		t.Fatalf("expected derived header, got %q", header)
	}
}

func TestLocalizerFallsBackOnTranslatorError(t *testing.T) {
	def := WidgetDefinition{Code: "orders", Name: "Orders", NameLocalized: map[string]string{"es": "Pedidos"}}
	loc := Localizer{Translator: catalogTranslator{err: errors.New("boom")}}
	if got := loc.Widget(context.Background(), def, "es").Name; got != "Pedidos" {
		t.Fatalf("expected map fallback on error, got %q", got)
	}
	if got := (Localizer{}).Widget(context.Background(), def, "").Name; got != "Orders" {
		t.Fatalf("expected default name without locale, got %q", got)
	}
}

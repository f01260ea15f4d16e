package dashboard

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-dataview/components/table"
)

func TestDecodeManifest(t *testing.T) {
	const payload = `
version: 1
name: community-pack
widgets:
  - definition:
      code: community.table.tickets
      name: Tickets
      description: Support tickets pushed by the community pack.
      category: community
      source: tickets
      schema:
        type: object
        properties:
          page_size:
            type: integer
      table:
        columns:
          - id: subject
            sortable: true
          - id: priority
            hideable: true
        search_column: subject
        status_column: priority
    provider:
      name: Community Provider
      summary: Calls the community tickets API.
      entry: github.com/example/community.Provider
      package: github.com/example/community
      docs_url: https://example.com/widgets/tickets
      capabilities: ["table"]
`
	doc, err := DecodeManifest(strings.NewReader(payload))
	require.NoError(t, err)
	require.Len(t, doc.Widgets, 1)

	widget := doc.Widgets[0]
	assert.Equal(t, "community.table.tickets", widget.Definition.Code)
	assert.Equal(t, "Tickets", widget.Definition.Name)
	assert.Equal(t, "tickets", widget.Definition.Source)
	require.NotNil(t, widget.Definition.Table)
	assert.Len(t, widget.Definition.Table.Columns, 2)
	assert.Equal(t, "Community Provider", widget.Provider.Name)
	assert.Equal(t, "github.com/example/community.Provider", widget.Provider.Entry)
}

func TestRegistryLoadManifestDocument(t *testing.T) {
	doc := &WidgetManifestDocument{
		Version: manifestVersionV1,
		Widgets: []ManifestWidget{
			{
				Definition: WidgetDefinition{
					Code:  "acme.chart.inventory",
					Name:  "Inventory",
					Chart: &ChartSpec{XField: "sku"},
				},
				Provider: ManifestProvider{
					Name:    "Inventory Provider",
					Summary: "Fetches inventory counts",
					Entry:   "github.com/acme/widgets.NewInventoryProvider",
				},
			},
		},
	}
	reg := NewEmptyRegistry()

	err := reg.LoadManifestDocument(doc)
	require.NoError(t, err)

	def, ok := reg.Definition("acme.chart.inventory")
	require.True(t, ok)
	assert.Equal(t, "Inventory", def.Name)
	assert.Equal(t, KindChart, def.Kind)

	meta, ok := reg.ProviderMetadata("acme.chart.inventory")
	require.True(t, ok)
	assert.Equal(t, "Inventory Provider", meta.Name)
	assert.Equal(t, "github.com/acme/widgets.NewInventoryProvider", meta.Entry)
}

func TestManifestValidationErrors(t *testing.T) {
	cases := map[string]struct {
		payload string
		want    string
	}{
		"duplicate codes": {
			payload: `
widgets:
  - definition: {code: dup.widget, name: First}
  - definition: {code: dup.widget, name: Second}
`,
			want: "duplicates widget code",
		},
		"unknown kind": {
			payload: `
widgets:
  - definition: {code: odd.widget, name: Odd, kind: gauge}
`,
			want: "unsupported kind",
		},
		"table and chart": {
			payload: `
widgets:
  - definition:
      code: both.widget
      name: Both
      table: {columns: [{id: a}]}
      chart: {x_field: a}
`,
			want: "both table and chart",
		},
		"unknown search column": {
			payload: `
widgets:
  - definition:
      code: cols.widget
      name: Cols
      table:
        columns: [{id: a}]
        search_column: b
`,
			want: "unknown column b",
		},
		"unsupported version": {
			payload: `
version: "9"
widgets: []
`,
			want: "unsupported manifest version",
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeManifest(strings.NewReader(tc.payload))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestDecodeManifestRejectsUnknownFields(t *testing.T) {
	_, err := DecodeManifest(strings.NewReader("widgets:\n  - definition: {code: a, name: A, colour: red}\n"))
	assert.Error(t, err)

	_, err = DecodeManifest(strings.NewReader(""))
	assert.Error(t, err)
}

func TestEncodeManifestRoundTrip(t *testing.T) {
	doc := &WidgetManifestDocument{
		Version: ManifestVersion,
		Name:    "scaffold",
		Widgets: []ManifestWidget{{
			Definition: WidgetDefinition{
				Code:  "scaffold.table.users",
				Kind:  KindTable,
				Name:  "Users",
				Table: &TableSpec{Columns: []table.Column{{ID: "email", Sortable: true}}},
			},
		}},
	}
	var buf bytes.Buffer
	require.NoError(t, EncodeManifest(&buf, doc))

	decoded, err := DecodeManifest(&buf)
	require.NoError(t, err)
	require.Len(t, decoded.Widgets, 1)
	assert.Equal(t, "scaffold.table.users", decoded.Widgets[0].Definition.Code)
	assert.Equal(t, "email", decoded.Widgets[0].Definition.Table.Columns[0].ID)
}

func TestDocsManifestsAreValid(t *testing.T) {
	dir := filepath.Join("..", "..", "docs", "manifests")
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	codes := map[string]string{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		doc, err := ReadManifest(path)
		require.NoErrorf(t, err, "manifest %s should parse", path)
		for _, widget := range doc.Widgets {
			if prev, exists := codes[widget.Definition.Code]; exists {
				t.Fatalf("widget code %s defined in both %s and %s", widget.Definition.Code, prev, path)
			}
			codes[widget.Definition.Code] = path
		}
	}
	assert.NotEmpty(t, codes)
}

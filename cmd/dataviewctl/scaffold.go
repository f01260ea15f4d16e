package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ettle/strcase"
	"github.com/fatih/color"

	"github.com/goliatone/go-dataview/components/chart"
	"github.com/goliatone/go-dataview/components/dashboard"
)

type scaffoldCmd struct {
	Code         string   `required:"" help:"Fully-qualified widget code (e.g. acme.table.invoices)."`
	Kind         string   `default:"table" enum:"table,chart" help:"Widget kind."`
	Name         string   `help:"Display name (defaults to the last code segment)."`
	Description  string   `help:"One-line description used in manifests."`
	Category     string   `default:"custom" help:"Widget category."`
	Source       string   `help:"Host dataset name the widget reads."`
	Sample       string   `type:"existingfile" help:"JSON or YAML records used to derive columns or series."`
	XField       string   `name:"x-field" help:"X axis field for chart widgets (derived from the sample when empty)."`
	Role         []string `help:"Roles allowed to open the widget (repeatable)."`
	ManifestPath string   `required:"" name:"manifest" type:"path" help:"Manifest YAML/JSON file to update."`
	SchemaPath   string   `name:"schema" type:"existingfile" help:"JSON schema file for the widget configuration."`
	Tag          []string `help:"Tags to include in the manifest (repeatable)."`
	Maintainer   []string `help:"Maintainers to record in the manifest."`
	DocsURL      string   `help:"Link to provider documentation."`
	Overwrite    bool     `help:"Replace an existing manifest entry."`
}

func (cmd *scaffoldCmd) Run(_ context.Context, out io.Writer) error {
	if err := cmd.validate(); err != nil {
		return err
	}
	manifestPath, err := filepath.Abs(cmd.ManifestPath)
	if err != nil {
		return fmt.Errorf("dataviewctl: resolve manifest path: %w", err)
	}
	doc, err := loadOrInitManifest(manifestPath)
	if err != nil {
		return err
	}
	entry, err := cmd.entry()
	if err != nil {
		return err
	}

	replaced := false
	for idx := range doc.Widgets {
		if doc.Widgets[idx].Definition.Code != cmd.Code {
			continue
		}
		if !cmd.Overwrite {
			return fmt.Errorf("dataviewctl: manifest already defines widget %s (use --overwrite to replace)", cmd.Code)
		}
		doc.Widgets[idx] = entry
		replaced = true
		break
	}
	if !replaced {
		doc.Widgets = append(doc.Widgets, entry)
	}
	sort.Slice(doc.Widgets, func(i, j int) bool {
		return doc.Widgets[i].Definition.Code < doc.Widgets[j].Definition.Code
	})
	if err := doc.Validate(); err != nil {
		return err
	}
	if err := writeManifest(manifestPath, doc); err != nil {
		return err
	}
	color.New(color.FgGreen).Fprintf(out, "✓ Added %s %s to %s\n", cmd.Kind, cmd.Code, manifestPath)
	return nil
}

func (cmd *scaffoldCmd) validate() error {
	if !strings.Contains(cmd.Code, ".") {
		return fmt.Errorf("dataviewctl: widget code %s must contain at least one '.' segment", cmd.Code)
	}
	return nil
}

func (cmd *scaffoldCmd) entry() (dashboard.ManifestWidget, error) {
	schema, err := cmd.loadSchema()
	if err != nil {
		return dashboard.ManifestWidget{}, err
	}
	name := cmd.Name
	if name == "" {
		name = deriveName(cmd.Code)
	}
	def := dashboard.WidgetDefinition{
		Code:        cmd.Code,
		Kind:        dashboard.Kind(cmd.Kind),
		Name:        name,
		Description: cmd.Description,
		Category:    cmd.Category,
		Source:      cmd.Source,
		Roles:       cmd.Role,
		Schema:      schema,
	}
	if err := cmd.deriveSpec(&def); err != nil {
		return dashboard.ManifestWidget{}, err
	}
	return dashboard.ManifestWidget{
		Definition: def,
		Provider: dashboard.ManifestProvider{
			Name:    name + " data",
			Summary: cmd.Description,
			DocsURL: cmd.DocsURL,
		},
		Maintainers: cmd.Maintainer,
		Tags:        cmd.Tag,
	}, nil
}

// deriveSpec fills the table columns or chart series from the sample file.
func (cmd *scaffoldCmd) deriveSpec(def *dashboard.WidgetDefinition) error {
	if def.Kind == dashboard.KindChart {
		def.Chart = &dashboard.ChartSpec{XField: cmd.XField}
	} else {
		def.Table = &dashboard.TableSpec{}
	}
	if cmd.Sample == "" {
		return nil
	}
	records, err := loadRecords(cmd.Sample)
	if err != nil {
		return err
	}
	if def.Chart != nil {
		if def.Chart.XField == "" {
			def.Chart.XField = chart.DefaultXField(records)
		}
		def.Chart.Series = chart.InitializeSeries(records, def.Chart.XField)
		return nil
	}
	def.Table.Columns = dashboard.DeriveColumns(records)
	return nil
}

func (cmd *scaffoldCmd) loadSchema() (map[string]any, error) {
	if cmd.SchemaPath == "" {
		return map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		}, nil
	}
	data, err := os.ReadFile(cmd.SchemaPath)
	if err != nil {
		return nil, fmt.Errorf("dataviewctl: read schema file: %w", err)
	}
	var schema map[string]any
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("dataviewctl: parse schema JSON: %w", err)
	}
	return schema, nil
}

func loadOrInitManifest(path string) (*dashboard.WidgetManifestDocument, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &dashboard.WidgetManifestDocument{
				Version: dashboard.ManifestVersion,
				Widgets: []dashboard.ManifestWidget{},
				Source:  path,
			}, nil
		}
		return nil, fmt.Errorf("dataviewctl: stat manifest: %w", err)
	}
	return dashboard.ReadManifest(path)
}

func writeManifest(path string, doc *dashboard.WidgetManifestDocument) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("dataviewctl: mkdir %s: %w", filepath.Dir(path), err)
	}
	tmpDoc := *doc
	tmpDoc.Source = ""

	file, err := os.Create(path) //nolint:gosec
	if err != nil {
		return fmt.Errorf("dataviewctl: create manifest %s: %w", path, err)
	}
	defer file.Close()
	return dashboard.EncodeManifest(file, &tmpDoc)
}

func deriveName(code string) string {
	parts := strings.Split(code, ".")
	slug := strings.TrimSpace(parts[len(parts)-1])
	if slug == "" {
		slug = code
	}
	return strcase.ToCase(slug, strcase.TitleCase, ' ')
}

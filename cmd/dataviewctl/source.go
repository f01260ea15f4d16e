package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ettle/strcase"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-dataview/components/dashboard"
	"github.com/goliatone/go-dataview/components/dataset"
)

// sourceFlags pick the widget a subcommand opens: a registered widget code or
// a JSON/YAML file holding a list of records.
type sourceFlags struct {
	Widget   string `short:"w" help:"Widget code to open (built-in or from --manifest)."`
	Data     string `short:"d" type:"existingfile" help:"JSON or YAML file holding a list of records."`
	Manifest string `type:"existingfile" help:"Widget manifest to load before opening." env:"DATAVIEW_MANIFEST"`
	Locale   string `help:"Viewer locale used for headers and titles." env:"DATAVIEW_LOCALE"`
}

type openedView struct {
	service *dashboard.Service
	session *dashboard.Session
}

// open builds a service over the default registry, registers the data file
// as an ad-hoc widget of the given kind when one is set and opens it.
func (f sourceFlags) open(ctx context.Context, kind dashboard.Kind, fallback string, shape func(*dashboard.WidgetDefinition)) (*openedView, error) {
	reg := dashboard.NewRegistry()
	if f.Manifest != "" {
		if _, err := reg.LoadManifestFile(f.Manifest); err != nil {
			return nil, err
		}
	}
	code := f.Widget
	if f.Data != "" {
		records, err := loadRecords(f.Data)
		if err != nil {
			return nil, err
		}
		def := adhocDefinition(f.Data, kind)
		if shape != nil {
			shape(&def)
		}
		if err := reg.RegisterDefinition(def); err != nil {
			return nil, err
		}
		if err := reg.RegisterSource(def.Code, dashboard.StaticSource(records)); err != nil {
			return nil, err
		}
		code = def.Code
	}
	if code == "" {
		code = fallback
	}
	svc := dashboard.NewService(dashboard.Options{
		Providers: reg,
		ChatDelay: -1,
	})
	sess, err := svc.Open(ctx, dashboard.ViewerContext{Locale: f.Locale}, dashboard.OpenRequest{Code: code})
	if err != nil {
		return nil, err
	}
	return &openedView{service: svc, session: sess}, nil
}

func adhocDefinition(path string, kind dashboard.Kind) dashboard.WidgetDefinition {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	def := dashboard.WidgetDefinition{
		Code: "cli." + string(kind) + "." + strcase.ToSnake(base),
		Kind: kind,
		Name: strcase.ToCase(base, strcase.TitleCase, ' '),
	}
	if kind == dashboard.KindChart {
		def.Chart = &dashboard.ChartSpec{}
	} else {
		def.Table = &dashboard.TableSpec{}
	}
	return def
}

// loadRecords reads a list of records. Files ending in .json are decoded as
// JSON, everything else as YAML.
func loadRecords(path string) ([]dataset.Record, error) {
	data, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("dataviewctl: read %s: %w", path, err)
	}
	var raw []map[string]any
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(data, &raw)
	} else {
		err = yaml.Unmarshal(data, &raw)
	}
	if err != nil {
		return nil, fmt.Errorf("dataviewctl: decode %s: %w", path, err)
	}
	records := make([]dataset.Record, len(raw))
	for i, row := range raw {
		records[i] = dataset.Record(row)
	}
	return records, nil
}

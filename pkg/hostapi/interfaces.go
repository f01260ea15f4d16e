package hostapi

import (
	"context"

	"github.com/goliatone/go-dataview/components/dataset"
	"github.com/goliatone/go-dataview/components/teams"
	"github.com/goliatone/go-dataview/components/webhooks"
)

// DatasetClient loads named datasets for table and chart widgets.
type DatasetClient interface {
	FetchDataset(ctx context.Context, name string) ([]dataset.Record, error)
}

// Client is the full host API surface.
type Client interface {
	teams.Backend
	webhooks.Backend
	DatasetClient
}

var (
	_ Client = (*HTTPClient)(nil)
	_ Client = (*MockClient)(nil)
)

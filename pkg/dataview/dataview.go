// Package dataview re-exports the session service for hosts that should not
// import components/ directly.
package dataview

import (
	core "github.com/goliatone/go-dataview/components/dashboard"
)

// Service exposes the underlying components/dashboard.Service type.
type Service = core.Service

// Options re-export for convenience.
type Options = core.Options

// ViewerContext re-export for convenience.
type ViewerContext = core.ViewerContext

// WidgetDefinition re-export for convenience.
type WidgetDefinition = core.WidgetDefinition

// NewService proxies to the internal constructor.
func NewService(opts Options) *Service {
	return core.NewService(opts)
}

// DefaultWidgetDefinitions proxies to the built-in demo widgets.
func DefaultWidgetDefinitions() []WidgetDefinition {
	return core.DefaultWidgetDefinitions()
}

// Widget kinds.
const (
	KindTable = core.KindTable
	KindChart = core.KindChart
)

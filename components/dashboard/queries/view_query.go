package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-dataview/components/dashboard"
	"github.com/goliatone/go-dataview/components/table"
)

type definitionService interface {
	Definitions(ctx context.Context, viewer dashboard.ViewerContext) []dashboard.WidgetDefinition
}

// DefinitionsQuery lists the widgets a viewer may open.
type DefinitionsQuery struct {
	service definitionService
}

// NewDefinitionsQuery builds the query.
func NewDefinitionsQuery(service definitionService) *DefinitionsQuery {
	return &DefinitionsQuery{service: service}
}

var _ gocommand.Querier[dashboard.ViewerContext, []dashboard.WidgetDefinition] = (*DefinitionsQuery)(nil)

// Query resolves the definitions for the viewer.
func (q *DefinitionsQuery) Query(ctx context.Context, viewer dashboard.ViewerContext) ([]dashboard.WidgetDefinition, error) {
	return q.service.Definitions(ctx, viewer), nil
}

// SessionInput identifies an open session.
type SessionInput struct {
	SessionID string `json:"session_id"`
}

type snapshotService interface {
	TableSnapshot(ctx context.Context, sessionID string) (dashboard.TableSnapshot, error)
	ChartSnapshot(sessionID string) (dashboard.ChartSnapshot, error)
	TableWindow(sessionID string, offset, viewport float64) (table.VirtualPage, error)
}

// TableSnapshotQuery renders the current page of a table session.
type TableSnapshotQuery struct {
	service snapshotService
}

// NewTableSnapshotQuery builds the query.
func NewTableSnapshotQuery(service snapshotService) *TableSnapshotQuery {
	return &TableSnapshotQuery{service: service}
}

var _ gocommand.Querier[SessionInput, dashboard.TableSnapshot] = (*TableSnapshotQuery)(nil)

// Query returns the table snapshot.
func (q *TableSnapshotQuery) Query(ctx context.Context, input SessionInput) (dashboard.TableSnapshot, error) {
	return q.service.TableSnapshot(ctx, input.SessionID)
}

// ChartSnapshotQuery returns a chart session's configuration and conversation.
type ChartSnapshotQuery struct {
	service snapshotService
}

// NewChartSnapshotQuery builds the query.
func NewChartSnapshotQuery(service snapshotService) *ChartSnapshotQuery {
	return &ChartSnapshotQuery{service: service}
}

var _ gocommand.Querier[SessionInput, dashboard.ChartSnapshot] = (*ChartSnapshotQuery)(nil)

// Query returns the chart snapshot.
func (q *ChartSnapshotQuery) Query(_ context.Context, input SessionInput) (dashboard.ChartSnapshot, error) {
	return q.service.ChartSnapshot(input.SessionID)
}

// WindowInput is a scroll position within a virtualized table session.
type WindowInput struct {
	SessionID string  `json:"session_id"`
	Offset    float64 `json:"offset"`
	Viewport  float64 `json:"viewport"`
}

// TableWindowQuery returns the mounted rows of a virtualized table.
type TableWindowQuery struct {
	service snapshotService
}

// NewTableWindowQuery builds the query.
func NewTableWindowQuery(service snapshotService) *TableWindowQuery {
	return &TableWindowQuery{service: service}
}

var _ gocommand.Querier[WindowInput, table.VirtualPage] = (*TableWindowQuery)(nil)

// Query returns the window.
func (q *TableWindowQuery) Query(_ context.Context, input WindowInput) (table.VirtualPage, error) {
	return q.service.TableWindow(input.SessionID, input.Offset, input.Viewport)
}

package dashboard

import (
	"context"
	"fmt"

	"github.com/goliatone/go-dataview/components/chart"
)

// ChartOp names a chart mutation.
type ChartOp string

const (
	ChartTitle        ChartOp = "title"
	ChartXField       ChartOp = "x_field"
	ChartShape        ChartOp = "shape"
	ChartSort         ChartOp = "sort"
	ChartComparator   ChartOp = "comparator"
	ChartDisplay      ChartOp = "display"
	ChartAddFilter    ChartOp = "add_filter"
	ChartRemoveFilter ChartOp = "remove_filter"
	ChartClearFilters ChartOp = "clear_filters"
	ChartAddSeries    ChartOp = "add_series"
	ChartRemoveSeries ChartOp = "remove_series"
	ChartUpdateSeries ChartOp = "update_series"
	ChartToggleSeries ChartOp = "toggle_series"
	ChartReset        ChartOp = "reset"
)

// DisplayToggles switches grid lines, legend and tooltip.
type DisplayToggles struct {
	Grid    bool `json:"grid"`
	Legend  bool `json:"legend"`
	Tooltip bool `json:"tooltip"`
}

// ChartCommand is one chart mutation. Only the fields the op reads are used.
type ChartCommand struct {
	Op         ChartOp             `json:"op"`
	Title      string              `json:"title,omitempty"`
	Field      string              `json:"field,omitempty"`
	Shape      chart.Shape         `json:"shape,omitempty"`
	Direction  chart.SortDirection `json:"direction,omitempty"`
	Comparator string              `json:"comparator,omitempty"`
	Display    *DisplayToggles     `json:"display,omitempty"`
	Filter     *chart.Filter       `json:"filter,omitempty"`
	Index      int                 `json:"index,omitempty"`
	Series     *chart.Series       `json:"series,omitempty"`
	Key        string              `json:"key,omitempty"`
	Patch      *chart.SeriesPatch  `json:"patch,omitempty"`
}

// ChartSnapshot is the rendered state of a chart session.
type ChartSnapshot struct {
	SessionID string           `json:"session_id"`
	Code      string           `json:"code"`
	Title     string           `json:"title"`
	Config    chart.Config     `json:"config"`
	Fields    []string         `json:"fields"`
	Spec      chart.RenderSpec `json:"spec"`
	Messages  []chart.Message  `json:"messages,omitempty"`
}

// ApplyChart runs cmd against a chart session, remembers the resulting
// configuration and notifies the refresh hook.
func (s *Service) ApplyChart(ctx context.Context, sessionID string, cmd ChartCommand) error {
	sess, err := s.chartSession(sessionID)
	if err != nil {
		return err
	}
	if err := s.runChart(ctx, sess, cmd); err != nil {
		return err
	}
	s.saveState(ctx, sess)
	if err := s.notify(ctx, sess, "chart."+string(cmd.Op)); err != nil {
		return err
	}
	s.recordTelemetry(ctx, "dashboard.chart."+string(cmd.Op), map[string]any{
		"code":       sess.Definition.Code,
		"session_id": sess.ID,
	})
	return nil
}

func (s *Service) runChart(ctx context.Context, sess *Session, cmd ChartCommand) error {
	board := sess.chart
	switch cmd.Op {
	case ChartTitle:
		board.SetTitle(cmd.Title)
		return nil
	case ChartXField:
		return board.SetXField(cmd.Field)
	case ChartShape:
		board.SetShape(cmd.Shape)
		return nil
	case ChartSort:
		return board.SetSortDirection(cmd.Direction)
	case ChartComparator:
		return board.SetComparator(cmd.Comparator)
	case ChartDisplay:
		if cmd.Display == nil {
			return fmt.Errorf("dashboard: display op requires toggles")
		}
		board.SetDisplay(cmd.Display.Grid, cmd.Display.Legend, cmd.Display.Tooltip)
		return nil
	case ChartAddFilter:
		if cmd.Filter == nil {
			return fmt.Errorf("dashboard: add_filter op requires a filter")
		}
		return board.AddFilter(*cmd.Filter)
	case ChartRemoveFilter:
		return board.RemoveFilter(cmd.Index)
	case ChartClearFilters:
		board.ClearFilters()
		return nil
	case ChartAddSeries:
		if cmd.Series == nil {
			return fmt.Errorf("dashboard: add_series op requires a series")
		}
		return board.AddSeries(*cmd.Series)
	case ChartRemoveSeries:
		return board.RemoveSeries(cmd.Key)
	case ChartUpdateSeries:
		if cmd.Patch == nil {
			return fmt.Errorf("dashboard: update_series op requires a patch")
		}
		return board.UpdateSeries(cmd.Key, *cmd.Patch)
	case ChartToggleSeries:
		return board.ToggleSeries(cmd.Key)
	case ChartReset:
		fresh, err := s.buildChart(ctx, sess, board.Data())
		if err != nil {
			return err
		}
		board.SetTitle(fresh.Title())
		return board.Configure(fresh.Config())
	default:
		return fmt.Errorf("dashboard: unknown chart op %q", cmd.Op)
	}
}

// ChartSnapshot returns the configuration and render input of a chart
// session along with its conversation.
func (s *Service) ChartSnapshot(sessionID string) (ChartSnapshot, error) {
	sess, err := s.chartSession(sessionID)
	if err != nil {
		return ChartSnapshot{}, err
	}
	snap := ChartSnapshot{
		SessionID: sess.ID,
		Code:      sess.Definition.Code,
		Title:     sess.chart.Title(),
		Config:    sess.chart.Config(),
		Fields:    sess.chart.AvailableFields(),
		Spec:      sess.chart.Spec(),
	}
	sess.chatMu.Lock()
	if sess.chat != nil {
		snap.Messages = sess.chat.Messages()
	}
	sess.chatMu.Unlock()
	return snap, nil
}

// RenderChart draws the chart session with the configured renderer.
func (s *Service) RenderChart(ctx context.Context, sessionID string) (string, error) {
	sess, err := s.chartSession(sessionID)
	if err != nil {
		return "", err
	}
	html, err := sess.chart.Render(ctx)
	if err != nil {
		return "", fmt.Errorf("dashboard: render chart %s: %w", sess.Definition.Code, err)
	}
	return html, nil
}

// Ask sends query to the session's insight chat and waits for the reply.
func (s *Service) Ask(ctx context.Context, sessionID, query string) (chart.Message, error) {
	sess, err := s.chartSession(sessionID)
	if err != nil {
		return chart.Message{}, err
	}
	sess.chatMu.Lock()
	if sess.chat == nil {
		sess.chat = sess.chart.NewChat(chart.ChatOptions{Clock: s.opts.ChatClock, Delay: s.opts.ChatDelay})
	}
	chat := sess.chat
	sess.chatMu.Unlock()

	reply, err := chat.Ask(ctx, query)
	if err != nil {
		return chart.Message{}, err
	}
	s.recordTelemetry(ctx, "dashboard.chat.ask", map[string]any{
		"code":       sess.Definition.Code,
		"session_id": sess.ID,
	})
	return reply, nil
}

func (s *Service) chartSession(id string) (*Session, error) {
	sess, err := s.Session(id)
	if err != nil {
		return nil, err
	}
	if sess.chart == nil {
		return nil, fmt.Errorf("%w: %s is a %s", ErrWrongKind, sess.Definition.Code, sess.Definition.Kind)
	}
	return sess, nil
}

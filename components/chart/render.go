package chart

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

const (
	defaultChartHeight = "360px"
	// envEChartsCDN overrides the host ECharts scripts are loaded from.
	envEChartsCDN = "GO_DATAVIEW_ECHARTS_CDN"
)

var sharedChartCache = NewChartCache(5 * time.Minute)

// RenderSpec is everything a renderer needs to draw one chart.
type RenderSpec struct {
	ID          string     `json:"id,omitempty"`
	Title       string     `json:"title"`
	Subtitle    string     `json:"subtitle,omitempty"`
	Shape       Shape      `json:"shape"`
	XLabel      string     `json:"x_label,omitempty"`
	Data        Aggregated `json:"data"`
	Max         float64    `json:"max"`
	Ticks       []float64  `json:"ticks"`
	ShowGrid    bool       `json:"show_grid"`
	ShowLegend  bool       `json:"show_legend"`
	ShowTooltip bool       `json:"show_tooltip"`
	Theme       string     `json:"theme,omitempty"`
}

// Renderer turns a RenderSpec into embeddable HTML.
type Renderer interface {
	Render(ctx context.Context, spec RenderSpec) (string, error)
}

// EChartsRenderer renders charts server-side with go-echarts.
type EChartsRenderer struct {
	cache      RenderCache
	theme      string
	assetsHost string
	height     string
}

// RendererOption customizes an EChartsRenderer.
type RendererOption func(*EChartsRenderer)

// WithChartCache injects a render cache. Nil disables caching.
func WithChartCache(cache RenderCache) RendererOption {
	return func(r *EChartsRenderer) {
		r.cache = cache
	}
}

// WithChartTheme sets the default theme (defaults to Westeros).
func WithChartTheme(theme string) RendererOption {
	return func(r *EChartsRenderer) {
		r.theme = theme
	}
}

// WithChartAssetsHost rewrites the assets host so ECharts JS loads from a CDN.
func WithChartAssetsHost(host string) RendererOption {
	return func(r *EChartsRenderer) {
		r.assetsHost = host
	}
}

// WithChartHeight sets the canvas height (CSS units).
func WithChartHeight(height string) RendererOption {
	return func(r *EChartsRenderer) {
		r.height = height
	}
}

// NewEChartsRenderer builds a renderer sharing the package chart cache.
func NewEChartsRenderer(options ...RendererOption) *EChartsRenderer {
	r := &EChartsRenderer{
		cache:      sharedChartCache,
		theme:      types.ThemeWesteros,
		assetsHost: DefaultAssetsHost(),
		height:     defaultChartHeight,
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// DefaultAssetsHost returns the ECharts assets host from
// GO_DATAVIEW_ECHARTS_CDN, or "" to keep the go-echarts default.
func DefaultAssetsHost() string {
	host := strings.TrimSpace(os.Getenv(envEChartsCDN))
	if host == "" || strings.HasSuffix(host, "/") {
		return host
	}
	return host + "/"
}

// Render draws spec as line, bar or area markup.
func (r *EChartsRenderer) Render(ctx context.Context, spec RenderSpec) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if spec.Theme == "" {
		spec.Theme = r.theme
	}
	if r.cache == nil {
		return r.render(spec)
	}
	key := fmt.Sprintf("%s:%s:%s:%s:%s", spec.ID, spec.Shape, r.height, r.assetsHost, ConfigHash(spec))
	return r.cache.GetOrRender(key, func() (string, error) {
		return r.render(spec)
	})
}

func (r *EChartsRenderer) render(spec RenderSpec) (string, error) {
	switch spec.Shape {
	case ShapeBar:
		return r.renderBar(spec)
	case ShapeLine, ShapeArea, "":
		return r.renderLine(spec)
	default:
		return "", fmt.Errorf("chart: unsupported shape %q", spec.Shape)
	}
}

func (r *EChartsRenderer) renderBar(spec RenderSpec) (string, error) {
	bar := charts.NewBar()
	bar.SetGlobalOptions(r.globalOptions(spec)...)
	bar.SetXAxis(spec.Data.Categories)
	for _, s := range spec.Data.Series {
		bar.AddSeries(s.Label, toBarData(s.Points), charts.WithItemStyleOpts(opts.ItemStyle{Color: s.Color}))
	}
	return renderChart(bar)
}

func (r *EChartsRenderer) renderLine(spec RenderSpec) (string, error) {
	line := charts.NewLine()
	line.SetGlobalOptions(r.globalOptions(spec)...)
	line.SetXAxis(spec.Data.Categories)
	for _, s := range spec.Data.Series {
		seriesOpts := []charts.SeriesOpts{
			charts.WithItemStyleOpts(opts.ItemStyle{Color: s.Color}),
		}
		if spec.Shape == ShapeArea {
			seriesOpts = append(seriesOpts, charts.WithAreaStyleOpts(opts.AreaStyle{
				Color:   s.Color,
				Opacity: 0.3,
			}))
		}
		line.AddSeries(s.Label, toLineData(s.Points), seriesOpts...)
	}
	line.SetSeriesOptions(charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}))
	return renderChart(line)
}

func renderChart(renderable interface{ Render(io.Writer) error }) (string, error) {
	var buf bytes.Buffer
	if err := renderable.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (r *EChartsRenderer) globalOptions(spec RenderSpec) []charts.GlobalOpts {
	initOpts := opts.Initialization{
		Theme:   spec.Theme,
		Width:   "100%",
		Height:  r.height,
		ChartID: spec.ID,
	}
	if r.assetsHost != "" {
		initOpts.AssetsHost = r.assetsHost
	}

	yAxis := opts.YAxis{
		Min:       0,
		SplitLine: &opts.SplitLine{Show: opts.Bool(spec.ShowGrid)},
	}
	if spec.Max > 0 {
		yAxis.Max = spec.Max
	}
	if len(spec.Ticks) > 1 {
		yAxis.SplitNumber = len(spec.Ticks) - 1
	}

	colors := make(opts.Colors, 0, len(spec.Data.Series))
	for _, s := range spec.Data.Series {
		if s.Color != "" {
			colors = append(colors, s.Color)
		}
	}

	global := []charts.GlobalOpts{
		charts.WithTitleOpts(opts.Title{Title: spec.Title, Subtitle: spec.Subtitle}),
		charts.WithInitializationOpts(initOpts),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(spec.ShowLegend)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(spec.ShowTooltip), Trigger: "axis"}),
		charts.WithToolboxOpts(opts.Toolbox{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{
			Name:      spec.XLabel,
			SplitLine: &opts.SplitLine{Show: opts.Bool(spec.ShowGrid)},
		}),
		charts.WithYAxisOpts(yAxis),
	}
	if len(colors) > 0 {
		global = append(global, charts.WithColorsOpts(colors))
	}
	return global
}

func toBarData(points []Point) []opts.BarData {
	data := make([]opts.BarData, len(points))
	for i, point := range points {
		data[i] = opts.BarData{Name: point.X, Value: point.Value}
	}
	return data
}

func toLineData(points []Point) []opts.LineData {
	data := make([]opts.LineData, len(points))
	for i, point := range points {
		data[i] = opts.LineData{Name: point.X, Value: point.Value}
	}
	return data
}

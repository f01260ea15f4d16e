package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/goliatone/go-dataview/components/chart"
	"github.com/goliatone/go-dataview/components/dataset"
	"github.com/goliatone/go-dataview/components/table"
)

// Codes of the built-in demo widgets.
const (
	OrdersTableCode = "dataview.table.orders"
	SalesChartCode  = "dataview.chart.monthly_sales"
	EventsTableCode = "dataview.table.events"

	demoEventsCount = 500
	demoEventsRowPx = 36
)

var defaultWidgetDefinitions = []WidgetDefinition{
	{
		Code: OrdersTableCode,
		Kind: KindTable,
		Name: "Orders",
		NameLocalized: map[string]string{
			"es": "Pedidos",
			"pt": "Pedidos",
		},
		Description: "Recent orders with status facets",
		DescriptionLocalized: map[string]string{
			"es": "Pedidos recientes por estado",
		},
		Category: "sales",
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"page_size": map[string]any{"type": "integer", "enum": []int{10, 20, 30, 40, 50}, "default": 10},
				"search":    map[string]any{"type": "string"},
			},
			"additionalProperties": false,
		},
		Table: &TableSpec{
			Columns: []table.Column{
				{ID: "customer", Header: "Customer", HeaderLocalized: map[string]string{"es": "Cliente"}, Sortable: true, Hideable: true},
				{ID: "email", Sortable: true, Hideable: true},
				{ID: "status", Width: 120, Sortable: true, Hideable: true, HeaderLocalized: map[string]string{"es": "Estado"}},
				{ID: "total", Width: 100, Sortable: true, Hideable: true, Compare: dataset.CompareNumeric},
				{ID: "created_at", Header: "Created", Sortable: true, Hideable: true, Compare: dataset.CompareDate},
			},
			SearchColumn: "customer",
			SearchFields: []string{"email"},
			StatusColumn: "status",
		},
	},
	{
		Code: SalesChartCode,
		Kind: KindChart,
		Name: "Monthly Sales",
		NameLocalized: map[string]string{
			"es": "Ventas mensuales",
			"pt": "Vendas mensais",
		},
		Description: "Sales, expenses and profit per month",
		Category:    "charts",
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"shape": map[string]any{"type": "string", "enum": []string{"line", "bar", "area"}, "default": "line"},
				"title": map[string]any{"type": "string", "minLength": 1},
			},
			"additionalProperties": false,
		},
		Chart: &ChartSpec{
			XField: "month",
			Series: []chart.Series{
				{Key: "sales", Label: "Sales", Aggregation: chart.AggregateSum},
				{Key: "expenses", Label: "Expenses", Aggregation: chart.AggregateSum},
				{Key: "profit", Label: "Profit", Aggregation: chart.AggregateSum},
			},
			SortDirection: chart.SortAsc,
			Comparator:    dataset.CompareDate,
		},
	},
	{
		Code:        EventsTableCode,
		Kind:        KindTable,
		Name:        "Event Log",
		Description: "Long event list rendered through a virtual window",
		Category:    "activity",
		Table: &TableSpec{
			Columns: []table.Column{
				{ID: "id", Header: "#", Width: 80, Sortable: true, Compare: dataset.CompareNumeric},
				{ID: "kind", Sortable: true, Hideable: true},
				{ID: "message", Hideable: true},
				{ID: "at", Header: "Time", Sortable: true, Compare: dataset.CompareDate},
			},
			SearchColumn:        "message",
			StatusColumn:        "kind",
			DisableRowSelection: true,
			Virtualize:          true,
			RowHeight:           demoEventsRowPx,
		},
	},
}

var defaultSources = map[string]RecordSource{
	OrdersTableCode: StaticSource(demoOrders()),
	SalesChartCode:  StaticSource(demoMonthlySales()),
	EventsTableCode: StaticSource(demoEvents(demoEventsCount)),
}

// DefaultWidgetDefinitions returns the built-in demo widgets.
func DefaultWidgetDefinitions() []WidgetDefinition {
	out := make([]WidgetDefinition, len(defaultWidgetDefinitions))
	copy(out, defaultWidgetDefinitions)
	return out
}

// StaticSource serves a fixed record list. Every call returns copies.
type StaticSource []dataset.Record

// Records implements RecordSource.
func (s StaticSource) Records(context.Context, SourceContext) ([]dataset.Record, error) {
	out := make([]dataset.Record, len(s))
	for i, rec := range s {
		out[i] = rec.Clone()
	}
	return out, nil
}

func demoOrders() []dataset.Record {
	return []dataset.Record{
		{"id": "ord-1001", "customer": "Olivia Martin", "email": "olivia@example.com", "status": "paid", "total": 1999.0, "created_at": "2024-05-02"},
		{"id": "ord-1002", "customer": "Jackson Lee", "email": "jackson@example.com", "status": "pending", "total": 39.0, "created_at": "2024-05-03"},
		{"id": "ord-1003", "customer": "Isabella Nguyen", "email": "isabella@example.com", "status": "paid", "total": 299.0, "created_at": "2024-05-03"},
		{"id": "ord-1004", "customer": "William Kim", "email": "will@example.com", "status": "refunded", "total": 99.0, "created_at": "2024-05-05"},
		{"id": "ord-1005", "customer": "Sofia Davis", "email": "sofia@example.com", "status": "paid", "total": 450.0, "created_at": "2024-05-06"},
		{"id": "ord-1006", "customer": "Lucas Silva", "email": "lucas@example.com.br", "status": "failed", "total": 120.5, "created_at": "2024-05-08"},
		{"id": "ord-1007", "customer": "Maria Souza", "email": "maria@example.com.br", "status": "pending", "total": 780.0, "created_at": "2024-05-09"},
		{"id": "ord-1008", "customer": "Ethan Brown", "email": "ethan@example.com", "status": "paid", "total": 64.9, "created_at": "2024-05-11"},
		{"id": "ord-1009", "customer": "Ava Wilson", "email": "ava@example.com", "status": "paid", "total": 1320.0, "created_at": "2024-05-12"},
		{"id": "ord-1010", "customer": "Noah Garcia", "email": "noah@example.com", "status": "pending", "total": 15.0, "created_at": "2024-05-14"},
		{"id": "ord-1011", "customer": "Mia Rossi", "email": "mia@example.it", "status": "paid", "total": 560.0, "created_at": "2024-05-15"},
		{"id": "ord-1012", "customer": "Liam Murphy", "email": "liam@example.ie", "status": "refunded", "total": 210.0, "created_at": "2024-05-17"},
	}
}

func demoMonthlySales() []dataset.Record {
	sales := []float64{4200, 3800, 5100, 4700, 6200, 5900, 7100, 6800, 5600, 6400, 7900, 9100}
	expenses := []float64{3100, 2900, 3300, 3500, 3900, 4100, 4300, 4200, 3800, 4000, 4600, 5200}
	out := make([]dataset.Record, len(sales))
	for i := range sales {
		out[i] = dataset.Record{
			"id":       fmt.Sprintf("m-%02d", i+1),
			"month":    fmt.Sprintf("2024-%02d", i+1),
			"region":   []string{"north", "south"}[i%2],
			"sales":    sales[i],
			"expenses": expenses[i],
			"profit":   sales[i] - expenses[i],
		}
	}
	return out
}

func demoEvents(n int) []dataset.Record {
	kinds := []string{"login", "export", "webhook", "invite"}
	start := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	out := make([]dataset.Record, n)
	for i := 0; i < n; i++ {
		kind := kinds[i%len(kinds)]
		out[i] = dataset.Record{
			"id":      i + 1,
			"kind":    kind,
			"message": fmt.Sprintf("%s event %d", kind, i+1),
			"at":      start.Add(time.Duration(i) * time.Minute).Format(time.RFC3339),
		}
	}
	return out
}

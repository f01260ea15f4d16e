package chart

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/goliatone/go-dataview/components/dataset"
)

// Intent is the report family a free-text query maps to.
type Intent string

const (
	IntentTrend       Intent = "trend"
	IntentPerformance Intent = "performance"
	IntentSummary     Intent = "summary"
	IntentCompare     Intent = "compare"
	IntentSeasonality Intent = "seasonality"
	IntentTable       Intent = "table"
	IntentHelp        Intent = "help"
)

const maxTableRows = 10

var intentKeywords = []struct {
	intent   Intent
	keywords []string
}{
	{IntentTrend, []string{"tendência", "tendencia", "trend"}},
	{IntentPerformance, []string{"melhor", "pior", "best", "worst", "top"}},
	{IntentSummary, []string{"resumo", "summary", "overview"}},
	{IntentCompare, []string{"comparar", "compare", "comparação", "comparacao"}},
	{IntentSeasonality, []string{"sazonalidade", "sazonal", "seasonality", "seasonal"}},
	{IntentTable, []string{"tabela", "table"}},
}

// HelpText is returned when a query matches no known report.
const HelpText = `Posso ajudar com análises dos dados exibidos no gráfico. Experimente perguntar:

- **Tendência**: "Qual a tendência dos dados?"
- **Melhor/Pior**: "Qual o melhor e o pior período?"
- **Resumo**: "Faça um resumo dos dados"
- **Comparar**: "Compare as séries"
- **Sazonalidade**: "Existe sazonalidade?"
- **Tabela**: "Mostre os dados em tabela"`

// DetectIntent matches keywords in the lowercased query, first match wins.
func DetectIntent(query string) Intent {
	q := strings.ToLower(query)
	for _, entry := range intentKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(q, kw) {
				return entry.intent
			}
		}
	}
	return IntentHelp
}

// GenerateResponse answers query with a markdown report computed from data,
// restricted to the active series. The output is deterministic for a given
// input.
func GenerateResponse(query string, data []dataset.Record, active ActiveSet, series []Series, xField string) string {
	intent := DetectIntent(query)
	if intent == IntentHelp {
		return HelpText
	}
	if len(data) == 0 {
		return "Não há dados disponíveis para análise com os filtros atuais."
	}
	visible := make([]Series, 0, len(series))
	for _, s := range series {
		if active.Has(s.Key) {
			visible = append(visible, s)
		}
	}
	if len(visible) == 0 {
		return "Nenhuma série ativa. Ative ao menos uma série para gerar a análise."
	}

	switch intent {
	case IntentTrend:
		return trendReport(data, visible)
	case IntentPerformance:
		return performanceReport(data, visible, xField)
	case IntentSummary:
		return summaryReport(data, visible)
	case IntentCompare:
		return compareReport(data, visible)
	case IntentSeasonality:
		return seasonalityReport(data, visible, xField)
	default:
		return tableReport(data, visible, xField)
	}
}

type seriesStats struct {
	total, avg, min, max float64
	minIdx, maxIdx       int
}

func statsFor(data []dataset.Record, key string) seriesStats {
	st := seriesStats{min: math.Inf(1), max: math.Inf(-1)}
	for i, rec := range data {
		v := dataset.Number(rec.Value(key))
		st.total += v
		if v < st.min {
			st.min, st.minIdx = v, i
		}
		if v > st.max {
			st.max, st.maxIdx = v, i
		}
	}
	st.avg = st.total / float64(len(data))
	return st
}

func labelOf(s Series) string {
	if s.Label != "" {
		return s.Label
	}
	return s.Key
}

func trendReport(data []dataset.Record, series []Series) string {
	var b strings.Builder
	b.WriteString("## 📈 Análise de Tendência\n\n")
	for _, s := range series {
		first := dataset.Number(data[0].Value(s.Key))
		last := dataset.Number(data[len(data)-1].Value(s.Key))
		direction := "estável"
		switch {
		case last > first:
			direction = "crescimento"
		case last < first:
			direction = "queda"
		}
		// A zero baseline has no percentage; report the absolute change.
		amount := formatNumber(math.Abs(last-first))
		if first != 0 {
			amount = formatNumber(math.Abs(percentChange(first, last))) + "%"
		}
		fmt.Fprintf(&b, "- **%s**: %s de %s (de %s para %s)\n",
			labelOf(s), direction, amount, formatNumber(first), formatNumber(last))
	}
	return b.String()
}

func performanceReport(data []dataset.Record, series []Series, xField string) string {
	var b strings.Builder
	b.WriteString("## 🏆 Melhores e Piores Desempenhos\n\n")
	for _, s := range series {
		st := statsFor(data, s.Key)
		fmt.Fprintf(&b, "### %s\n\n", labelOf(s))
		fmt.Fprintf(&b, "- **Melhor**: %s com %s\n", xLabel(data[st.maxIdx], xField), formatNumber(st.max))
		fmt.Fprintf(&b, "- **Pior**: %s com %s\n", xLabel(data[st.minIdx], xField), formatNumber(st.min))
		if st.min != 0 {
			fmt.Fprintf(&b, "- **Diferença**: %s%%\n", formatNumber(percentChange(st.min, st.max)))
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}

func summaryReport(data []dataset.Record, series []Series) string {
	var b strings.Builder
	b.WriteString("## 📊 Resumo dos Dados\n\n")
	fmt.Fprintf(&b, "Total de registros analisados: **%d**\n\n", len(data))
	b.WriteString("| Série | Total | Média | Mínimo | Máximo |\n")
	b.WriteString("|---|---|---|---|---|\n")
	for _, s := range series {
		st := statsFor(data, s.Key)
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
			labelOf(s), formatNumber(st.total), formatNumber(st.avg), formatNumber(st.min), formatNumber(st.max))
	}
	return b.String()
}

func compareReport(data []dataset.Record, series []Series) string {
	var b strings.Builder
	b.WriteString("## ⚖️ Comparação entre Séries\n\n")
	totals := make([]float64, len(series))
	grand := 0.0
	for i, s := range series {
		totals[i] = statsFor(data, s.Key).total
		grand += totals[i]
	}
	order := make([]int, len(series))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return totals[order[a]] > totals[order[b]] })
	for rank, i := range order {
		share := 0.0
		if grand != 0 {
			share = totals[i] / grand * 100
		}
		fmt.Fprintf(&b, "%d. **%s**: %s (%s%% do total)\n", rank+1, labelOf(series[i]), formatNumber(totals[i]), formatNumber(share))
	}
	return b.String()
}

func seasonalityReport(data []dataset.Record, series []Series, xField string) string {
	var b strings.Builder
	b.WriteString("## 🔄 Análise de Sazonalidade\n\n")
	for _, s := range series {
		st := statsFor(data, s.Key)
		amplitude := 0.0
		if st.avg != 0 {
			amplitude = (st.max - st.min) / st.avg * 100
		}
		pattern := "baixa variação, sem sazonalidade aparente"
		if amplitude >= 50 {
			pattern = "alta variação, possível padrão sazonal"
		} else if amplitude >= 20 {
			pattern = "variação moderada"
		}
		fmt.Fprintf(&b, "- **%s**: pico em %s, vale em %s; amplitude de %s%% da média (%s)\n",
			labelOf(s), xLabel(data[st.maxIdx], xField), xLabel(data[st.minIdx], xField), formatNumber(amplitude), pattern)
	}
	return b.String()
}

func tableReport(data []dataset.Record, series []Series, xField string) string {
	var b strings.Builder
	b.WriteString("## 📋 Dados em Tabela\n\n")
	header := []string{xField}
	for _, s := range series {
		header = append(header, labelOf(s))
	}
	b.WriteString("| " + strings.Join(header, " | ") + " |\n")
	b.WriteString("|" + strings.Repeat("---|", len(header)) + "\n")
	rows := data
	if len(rows) > maxTableRows {
		rows = rows[:maxTableRows]
	}
	for _, rec := range rows {
		cells := []string{xLabel(rec, xField)}
		for _, s := range series {
			cells = append(cells, formatNumber(dataset.Number(rec.Value(s.Key))))
		}
		b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}
	if len(data) > maxTableRows {
		fmt.Fprintf(&b, "\n_Exibindo %d de %d registros._\n", maxTableRows, len(data))
	}
	return b.String()
}

func xLabel(rec dataset.Record, xField string) string {
	if s := dataset.Stringify(rec.Value(xField)); s != "" {
		return s
	}
	return "—"
}

func percentChange(from, to float64) float64 {
	if from == 0 {
		return 0
	}
	return (to - from) / math.Abs(from) * 100
}

// formatNumber prints integers with "." thousands separators and fractions
// with two decimals and a "," decimal mark.
func formatNumber(v float64) string {
	neg := v < 0
	v = math.Abs(v)
	rounded := math.Round(v*100) / 100
	whole := math.Floor(rounded)
	frac := int(math.Round((rounded - whole) * 100))

	digits := strconv.FormatFloat(whole, 'f', 0, 64)
	var b strings.Builder
	if neg && rounded != 0 {
		b.WriteByte('-')
	}
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	if frac != 0 {
		fmt.Fprintf(&b, ",%02d", frac)
	}
	return b.String()
}

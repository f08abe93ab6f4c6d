package dcf

import "github.com/sells-group/valuation-cli/internal/model"

// Grid metrics.
const (
	MetricImpliedPrice = "implied_price"
	MetricEquityValue  = "equity_value"
)

// Grid is a two-way sensitivity table. Values[i][j] corresponds to Rows[i]
// and Cols[j]; a nil cell could not be valued.
type Grid struct {
	Metric   string       `json:"metric"`
	RowLabel string       `json:"row_label"`
	ColLabel string       `json:"col_label"`
	Rows     []float64    `json:"rows"`
	Cols     []float64    `json:"cols"`
	Values   [][]*float64 `json:"values"`
}

// Sensitivity holds the standard grids.
type Sensitivity struct {
	DiscountVsTerminal Grid `json:"discount_vs_terminal"`
	GrowthVsDiscount   Grid `json:"growth_vs_discount"`
}

// Sensitize varies the assumptions by ±steps increments of step around the
// point estimate. Cells report implied price when shares are known and
// equity value otherwise.
func Sensitize(in Input, a Assumptions, step float64, steps int) Sensitivity {
	metric := MetricEquityValue
	if in.Shares > 0 {
		metric = MetricImpliedPrice
	}

	discount := axis(a.DiscountRate, step, steps)
	terminal := axis(a.TerminalGrowth, step, steps)
	growth := axis(a.Growth, step, steps)

	return Sensitivity{
		DiscountVsTerminal: build(metric, "discount_rate", "terminal_growth", discount, terminal, func(r, tg float64) Assumptions {
			x := a
			x.DiscountRate, x.TerminalGrowth = r, tg
			return x
		}, in),
		GrowthVsDiscount: build(metric, "growth", "discount_rate", growth, discount, func(g, r float64) Assumptions {
			x := a
			x.Growth, x.DiscountRate = g, r
			return x
		}, in),
	}
}

func build(metric, rowLabel, colLabel string, rows, cols []float64, vary func(row, col float64) Assumptions, in Input) Grid {
	g := Grid{Metric: metric, RowLabel: rowLabel, ColLabel: colLabel, Rows: rows, Cols: cols}
	g.Values = make([][]*float64, len(rows))
	for i, rv := range rows {
		g.Values[i] = make([]*float64, len(cols))
		for j, cv := range cols {
			g.Values[i][j] = cell(in, vary(rv, cv), metric)
		}
	}
	return g
}

func cell(in Input, a Assumptions, metric string) *float64 {
	ev, ok := EnterpriseValue(in.BaseFCF, a)
	if !ok {
		return nil
	}
	equity := ev - in.NetDebt
	if metric == MetricImpliedPrice {
		return model.FiniteOrNil(equity / in.Shares)
	}
	return model.FiniteOrNil(equity)
}

func axis(center, step float64, steps int) []float64 {
	if step <= 0 || steps <= 0 {
		return []float64{center}
	}
	out := make([]float64, 0, 2*steps+1)
	for k := -steps; k <= steps; k++ {
		out = append(out, center+float64(k)*step)
	}
	return out
}

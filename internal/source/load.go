package source

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/sells-group/valuation-cli/internal/model"
)

// numericColumns maps tabular header names (the JSON field names) to snapshot fields.
var numericColumns = map[string]func(*model.FinancialSnapshot) **float64{
	"price":                func(s *model.FinancialSnapshot) **float64 { return &s.Price },
	"market_cap":           func(s *model.FinancialSnapshot) **float64 { return &s.MarketCap },
	"enterprise_value":     func(s *model.FinancialSnapshot) **float64 { return &s.EnterpriseValue },
	"shares_outstanding":   func(s *model.FinancialSnapshot) **float64 { return &s.SharesOutstanding },
	"fifty_two_week_low":   func(s *model.FinancialSnapshot) **float64 { return &s.FiftyTwoWeekLow },
	"fifty_two_week_high":  func(s *model.FinancialSnapshot) **float64 { return &s.FiftyTwoWeekHigh },
	"beta":                 func(s *model.FinancialSnapshot) **float64 { return &s.Beta },
	"analyst_target_low":   func(s *model.FinancialSnapshot) **float64 { return &s.AnalystTargetLow },
	"analyst_target_high":  func(s *model.FinancialSnapshot) **float64 { return &s.AnalystTargetHigh },
	"book_value_per_share": func(s *model.FinancialSnapshot) **float64 { return &s.BookValuePerShare },
	"revenue":              func(s *model.FinancialSnapshot) **float64 { return &s.Revenue },
	"ebitda":               func(s *model.FinancialSnapshot) **float64 { return &s.EBITDA },
	"net_income":           func(s *model.FinancialSnapshot) **float64 { return &s.NetIncome },
	"sga":                  func(s *model.FinancialSnapshot) **float64 { return &s.SGA },
	"interest_expense":     func(s *model.FinancialSnapshot) **float64 { return &s.InterestExpense },
	"tax_provision":        func(s *model.FinancialSnapshot) **float64 { return &s.TaxProvision },
	"pretax_income":        func(s *model.FinancialSnapshot) **float64 { return &s.PretaxIncome },
	"revenue_growth":       func(s *model.FinancialSnapshot) **float64 { return &s.RevenueGrowth },
	"total_debt":           func(s *model.FinancialSnapshot) **float64 { return &s.TotalDebt },
	"cash":                 func(s *model.FinancialSnapshot) **float64 { return &s.Cash },
	"total_equity":         func(s *model.FinancialSnapshot) **float64 { return &s.TotalEquity },
	"trailing_pe":          func(s *model.FinancialSnapshot) **float64 { return &s.TrailingPE },
	"peg":                  func(s *model.FinancialSnapshot) **float64 { return &s.PEG },
	"price_to_sales":       func(s *model.FinancialSnapshot) **float64 { return &s.PriceSales },
	"price_to_book":        func(s *model.FinancialSnapshot) **float64 { return &s.PriceBook },
	"ev_ebitda":            func(s *model.FinancialSnapshot) **float64 { return &s.EVEBITDA },
	"ev_revenue":           func(s *model.FinancialSnapshot) **float64 { return &s.EVRevenue },
	"ebitda_margin":        func(s *model.FinancialSnapshot) **float64 { return &s.EBITDAMargin },
}

var textColumns = map[string]func(*model.FinancialSnapshot) *string{
	"ticker":   func(s *model.FinancialSnapshot) *string { return &s.Ticker },
	"name":     func(s *model.FinancialSnapshot) *string { return &s.Name },
	"sector":   func(s *model.FinancialSnapshot) *string { return &s.Sector },
	"industry": func(s *model.FinancialSnapshot) *string { return &s.Industry },
	"currency": func(s *model.FinancialSnapshot) *string { return &s.Currency },
}

// fcfColumn holds free cash flow observations, latest first, separated by ';'.
const fcfColumn = "free_cash_flow"

// LoadFile reads snapshots from a .json (array of records), .csv or .xlsx
// (header row of field names, first sheet) file.
func LoadFile(ctx context.Context, path string) ([]*model.FinancialSnapshot, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		f, err := os.Open(path)
		if err != nil {
			return nil, eris.Wrapf(err, "source: open %s", path)
		}
		defer f.Close()
		return DecodeJSON(ctx, f)
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, eris.Wrapf(err, "source: open %s", path)
		}
		defer f.Close()
		return DecodeCSV(ctx, f)
	case ".xlsx":
		return ReadXLSX(ctx, path)
	default:
		return nil, eris.Errorf("source: unsupported snapshot file type %q", ext)
	}
}

// DecodeJSON reads a JSON array of snapshots, one element at a time.
func DecodeJSON(ctx context.Context, r io.Reader) ([]*model.FinancialSnapshot, error) {
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, eris.Wrap(err, "source: read opening token")
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '[' {
		return nil, eris.Errorf("source: expected '[', got %v", tok)
	}

	var out []*model.FinancialSnapshot
	for dec.More() {
		if err := ctx.Err(); err != nil {
			return nil, eris.Wrap(err, "source: context cancelled")
		}
		var s model.FinancialSnapshot
		if err := dec.Decode(&s); err != nil {
			return nil, eris.Wrapf(err, "source: decode snapshot %d", len(out))
		}
		out = append(out, &s)
	}
	if _, err := dec.Token(); err != nil && err != io.EOF {
		return nil, eris.Wrap(err, "source: read closing token")
	}
	return out, nil
}

// DecodeCSV reads snapshots from CSV with a header row.
func DecodeCSV(ctx context.Context, r io.Reader) ([]*model.FinancialSnapshot, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var rows [][]string
	for {
		if err := ctx.Err(); err != nil {
			return nil, eris.Wrap(err, "source: context cancelled")
		}
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "source: read csv row")
		}
		rows = append(rows, rec)
	}
	return fromRows(rows)
}

// ReadXLSX reads snapshots from the first sheet of a workbook.
func ReadXLSX(ctx context.Context, path string) ([]*model.FinancialSnapshot, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "source: open xlsx")
	}
	if len(f.Sheets) == 0 {
		return nil, eris.New("source: workbook has no sheets")
	}

	sheet := f.Sheets[0]
	rows := make([][]string, 0, len(sheet.Rows))
	for _, row := range sheet.Rows {
		if err := ctx.Err(); err != nil {
			return nil, eris.Wrap(err, "source: context cancelled")
		}
		cells := make([]string, len(row.Cells))
		for j, cell := range row.Cells {
			cells[j] = cell.String()
		}
		rows = append(rows, cells)
	}
	return fromRows(rows)
}

// fromRows maps a header row plus data rows onto snapshots. Unknown columns
// are ignored; empty cells stay nil. Rows without a ticker are skipped.
func fromRows(rows [][]string) ([]*model.FinancialSnapshot, error) {
	if len(rows) == 0 {
		return nil, nil
	}

	header := make([]string, len(rows[0]))
	hasTicker := false
	for i, h := range rows[0] {
		header[i] = strings.ToLower(strings.TrimSpace(h))
		if header[i] == "ticker" {
			hasTicker = true
		}
	}
	if !hasTicker {
		return nil, eris.New("source: header has no ticker column")
	}

	out := make([]*model.FinancialSnapshot, 0, len(rows)-1)
	for n, row := range rows[1:] {
		s := &model.FinancialSnapshot{}
		for i, cell := range row {
			if i >= len(header) {
				break
			}
			cell = strings.TrimSpace(cell)
			if cell == "" {
				continue
			}
			col := header[i]
			if set, ok := textColumns[col]; ok {
				*set(s) = cell
				continue
			}
			if col == fcfColumn {
				series, err := parseSeries(cell)
				if err != nil {
					return nil, eris.Wrapf(err, "source: row %d column %s", n+2, col)
				}
				s.FreeCashFlow = series
				continue
			}
			if field, ok := numericColumns[col]; ok {
				v, err := strconv.ParseFloat(cell, 64)
				if err != nil {
					return nil, eris.Wrapf(err, "source: row %d column %s", n+2, col)
				}
				*field(s) = model.Float(v)
			}
		}
		if s.Ticker == "" {
			zap.L().Debug("source: skipping row without ticker", zap.Int("row", n+2))
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func parseSeries(cell string) ([]float64, error) {
	parts := strings.Split(cell, ";")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// LoadPrecedent reads a precedent-transactions record from a JSON file.
func LoadPrecedent(path string) (*model.PrecedentData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "source: open %s", path)
	}
	defer f.Close()

	var p model.PrecedentData
	if err := json.NewDecoder(f).Decode(&p); err != nil {
		return nil, eris.Wrap(err, "source: decode precedent")
	}
	return &p, nil
}

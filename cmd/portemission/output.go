package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/spektr-org/portemission/engine"
)

// render writes result in one of the line-oriented formats.
func render(w io.Writer, result *engine.Result, format string) error {
	switch format {
	case "json", "pretty":
		return writeJSON(w, result, format)
	case "text":
		_, err := fmt.Fprintln(w, replyOrNoData(result))
		return err
	case "csv":
		return writeCSV(w, result)
	}
	return fmt.Errorf("%w: unknown format %q", engine.ErrInvalidArgument, format)
}

// ============================================================================
// CSV OUTPUT — chart data first, then table, then the reply line
// ============================================================================

func writeCSV(w io.Writer, result *engine.Result) error {
	cw := csv.NewWriter(w)

	switch {
	case result == nil:
		cw.Write([]string{"Result", "No data"})
	case result.ChartConfig != nil && len(result.ChartConfig.Series) > 0:
		writeChartCSV(cw, result.ChartConfig)
	case result.TableData != nil && len(result.TableData.Columns) > 0:
		writeTableCSV(cw, result.TableData)
	default:
		cw.Write([]string{"Summary", "Records"})
		cw.Write([]string{replyOrNoData(result), strconv.Itoa(result.Records)})
	}

	cw.Flush()
	return cw.Error()
}

func writeChartCSV(cw *csv.Writer, chart *engine.ChartConfig) {
	xLabel, yLabel := chart.XAxis, chart.YAxis
	if xLabel == "" {
		xLabel = "Label"
	}
	if yLabel == "" {
		yLabel = "Value"
	}

	// Single series → two columns
	if len(chart.Series) == 1 {
		cw.Write([]string{xLabel, yLabel})
		for _, d := range chart.Series[0].Data {
			cw.Write([]string{d.Label, fmtNum(d.Value)})
		}
		return
	}

	// Multi-series → label + one column per series, keyed by label so
	// series with gaps still line up.
	headers := []string{xLabel}
	var labels []string
	seen := map[string]bool{}
	values := make([]map[string]float64, len(chart.Series))
	for i, s := range chart.Series {
		headers = append(headers, s.Name)
		values[i] = make(map[string]float64, len(s.Data))
		for _, d := range s.Data {
			values[i][d.Label] = d.Value
			if !seen[d.Label] {
				seen[d.Label] = true
				labels = append(labels, d.Label)
			}
		}
	}
	cw.Write(headers)
	for _, label := range labels {
		row := []string{label}
		for i := range chart.Series {
			if v, ok := values[i][label]; ok {
				row = append(row, fmtNum(v))
			} else {
				row = append(row, "")
			}
		}
		cw.Write(row)
	}
}

func writeTableCSV(cw *csv.Writer, table *engine.TableData) {
	headers := make([]string, len(table.Columns))
	for i, col := range table.Columns {
		headers[i] = col.Label
	}
	cw.Write(headers)
	for _, row := range table.Rows {
		cw.Write(row)
	}
	if table.Summary != nil {
		footer := make([]string, len(table.Columns))
		for i, col := range table.Columns {
			footer[i] = table.Summary.Values[col.Key]
		}
		if footer[0] == "" {
			footer[0] = table.Summary.Label
		}
		cw.Write(footer)
	}
}

// ============================================================================
// JSON OUTPUT
// ============================================================================

func writeJSON(w io.Writer, v interface{}, format string) error {
	var out []byte
	var err error

	if format == "pretty" {
		out, err = json.MarshalIndent(v, "", "  ")
	} else {
		out, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

// ============================================================================
// HELPERS
// ============================================================================

func replyOrNoData(result *engine.Result) string {
	if result == nil || result.Reply == "" {
		return engine.NoDataReply
	}
	return result.Reply
}

func fmtNum(v float64) string {
	// Whole numbers → no decimals, fractional → 2 decimals
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

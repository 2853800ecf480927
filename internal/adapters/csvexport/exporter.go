// Package csvexport writes scraped records to a single CSV file.
package csvexport

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"blinkit_scraper/internal/domain"
)

// DefaultPath is where a run lands when no output path is configured.
const DefaultPath = "blinkit_scraped_data_simple_edge.csv"

type Exporter struct {
	path string
}

func New(path string) *Exporter {
	if path == "" {
		path = DefaultPath
	}
	return &Exporter{path: path}
}

func (e *Exporter) Path() string { return e.path }

// Export writes a header plus one row per record and returns the file path.
// A record missing a header column gets an empty cell.
func (e *Exporter) Export(ctx context.Context, run domain.Run, recs []domain.ProductRecord) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if dir := filepath.Dir(e.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create output dir: %w", err)
		}
	}

	f, err := os.Create(e.path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", e.path, err)
	}
	defer f.Close()

	if err := Write(f, recs); err != nil {
		return "", fmt.Errorf("write %s: %w", e.path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", e.path, err)
	}
	return e.path, nil
}

// Write encodes recs as CSV onto w.
func Write(w io.Writer, recs []domain.ProductRecord) error {
	cols := header(recs)
	cw := csv.NewWriter(w)
	if err := cw.Write(cols); err != nil {
		return err
	}

	row := make([]string, len(cols))
	for _, r := range recs {
		for i, c := range cols {
			if !r.Has(c) {
				row[i] = ""
				continue
			}
			row[i] = Cell(r.Get(c))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// header keeps the columns that at least one record carries, in export order.
func header(recs []domain.ProductRecord) []string {
	var cols []string
	for _, c := range domain.Columns() {
		for _, r := range recs {
			if r.Has(c) {
				cols = append(cols, c)
				break
			}
		}
	}
	return cols
}

// Cell renders one value: nil is empty, numbers in shortest form, bools as
// true/false, nested values as compact JSON.
func Cell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case map[string]any, []any:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(b)
	default:
		return fmt.Sprint(x)
	}
}

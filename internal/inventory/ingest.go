package inventory

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"

	"github.com/Simplici0/slabquote/internal/variant"
)

const (
	colVariant = "Product Variant"
	colQty     = "On Hand Qty"
	colCost    = "Serialized On Hand Cost"
)

var (
	// ErrMissingColumn is returned when a required header cannot be found.
	ErrMissingColumn = errors.New("missing inventory column")
	// ErrUnsupportedFormat is returned for files that are neither CSV nor XLSX.
	ErrUnsupportedFormat = errors.New("unsupported inventory format")
)

var locationHints = []string{"location", "warehouse", "store", "site"}

// Reader decodes inventory feeds into lots.
type Reader struct {
	Parser variant.Parser
}

// NewReader returns a Reader using the default label parser.
func NewReader() *Reader {
	return &Reader{Parser: variant.NewParser(variant.DefaultLocations, variant.DefaultBrands)}
}

// ReadFile dispatches on the file extension of name.
func (r *Reader) ReadFile(name string, src io.Reader) ([]Lot, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return r.ReadCSV(src)
	case ".xlsx", ".xlsm":
		return r.ReadXLSX(src)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
	}
}

// ReadCSV reads a CSV feed. Input that is not valid UTF-8 is decoded as Latin-1.
func (r *Reader) ReadCSV(src io.Reader) ([]Lot, error) {
	raw, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if !utf8.Valid(raw) {
		raw, err = charmap.ISO8859_1.NewDecoder().Bytes(raw)
		if err != nil {
			return nil, fmt.Errorf("decode latin-1 csv: %w", err)
		}
	}
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))

	cr := csv.NewReader(bytes.NewReader(raw))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	return r.fromRows(rows)
}

// ReadXLSX reads the first sheet of a workbook.
func (r *Reader) ReadXLSX(src io.Reader) ([]Lot, error) {
	f, err := excelize.OpenReader(src)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrMissingColumn)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}

	return r.fromRows(rows)
}

type columns struct {
	variant, qty, cost, location int
}

// fromRows accepts the header on the first or second row.
func (r *Reader) fromRows(rows [][]string) ([]Lot, error) {
	var (
		cols      columns
		headerRow = -1
		lastErr   error
	)
	for i := 0; i < len(rows) && i < 2; i++ {
		c, err := resolveColumns(rows[i])
		if err == nil {
			cols, headerRow = c, i
			break
		}
		lastErr = err
	}
	if headerRow < 0 {
		if lastErr == nil {
			lastErr = fmt.Errorf("%w: %s (empty feed)", ErrMissingColumn, colVariant)
		}
		return nil, lastErr
	}

	lots := make([]Lot, 0, len(rows)-headerRow-1)
	for _, row := range rows[headerRow+1:] {
		label := strings.TrimSpace(cell(row, cols.variant))
		if label == "" {
			continue
		}

		qty := parseAmount(cell(row, cols.qty))
		cost := parseAmount(cell(row, cols.cost))
		if math.IsNaN(qty) || math.IsNaN(cost) || qty <= 0 {
			continue
		}

		lot := NewLot(r.Parser, label, qty, cost)
		if cols.location >= 0 && lot.Location == variant.Unknown {
			if site := strings.TrimSpace(cell(row, cols.location)); site != "" {
				lot.Location = site
			}
		}
		lots = append(lots, lot)
	}

	return lots, nil
}

func resolveColumns(header []string) (columns, error) {
	cols := columns{variant: -1, qty: -1, cost: -1, location: -1}
	names := make([]string, len(header))
	for i, h := range header {
		names[i] = strings.TrimSpace(h)
	}

	for i, name := range names {
		if name == colVariant {
			cols.variant = i
			break
		}
	}
	for i, name := range names {
		switch {
		case cols.variant < 0 && strings.Contains(name, colVariant):
			cols.variant = i
		case cols.qty < 0 && strings.Contains(name, colQty):
			cols.qty = i
		case cols.cost < 0 && strings.Contains(name, colCost):
			cols.cost = i
		case cols.location < 0 && hasLocationHint(name):
			cols.location = i
		}
	}

	if cols.variant < 0 {
		return cols, fmt.Errorf("%w: %s (found %v)", ErrMissingColumn, colVariant, names)
	}
	if cols.qty < 0 || cols.cost < 0 {
		return cols, fmt.Errorf("%w: %s or %s", ErrMissingColumn, colQty, colCost)
	}
	return cols, nil
}

func hasLocationHint(name string) bool {
	lower := strings.ToLower(name)
	for _, hint := range locationHints {
		if strings.Contains(lower, hint) {
			return true
		}
	}
	return false
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

// parseAmount strips currency symbols and thousands separators. Unparseable
// values come back as NaN.
func parseAmount(raw string) float64 {
	cleaned := strings.NewReplacer("$", "", ",", "", " ", "").Replace(strings.TrimSpace(raw))
	if cleaned == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsInf(v, 0) {
		return math.NaN()
	}
	return v
}

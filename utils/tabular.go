package utils

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
)

// Grid is an untyped block of cells with no header row assumed
type Grid [][]string

// Width returns the length of the longest row
func (g Grid) Width() int {
	width := 0
	for _, row := range g {
		if len(row) > width {
			width = len(row)
		}
	}
	return width
}

// Workbook is a loaded spreadsheet or delimited file; a delimited file has one sheet
type Workbook struct {
	Path   string
	Sheets []string
	grids  map[string]Grid

	// SheetErrors holds the sheets listed in Sheets that could not be read;
	// they have no grid
	SheetErrors map[string]error
}

// NewWorkbook builds an in-memory workbook; sheets keep the given order
func NewWorkbook(path string, sheets []string, grids map[string]Grid) *Workbook {
	wb := &Workbook{
		Path:   path,
		Sheets: append([]string(nil), sheets...),
		grids:  make(map[string]Grid, len(grids)),
	}
	for name, g := range grids {
		wb.grids[name] = pad(g)
	}
	return wb
}

// Grid returns the cells of the named sheet
func (w *Workbook) Grid(sheet string) (Grid, bool) {
	g, ok := w.grids[sheet]
	return g, ok
}

// First returns the first sheet's cells
func (w *Workbook) First() Grid {
	if len(w.Sheets) == 0 {
		return nil
	}
	return w.grids[w.Sheets[0]]
}

var errNoDelimitedData = errors.New("no rows")

// OpenWorkbook loads path into a Workbook without interpreting any header
func OpenWorkbook(path string) (*Workbook, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm", ".xls":
		return readSpreadsheet(path)
	default:
		return readDelimited(path)
	}
}

func readSpreadsheet(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open spreadsheet %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	grids := make(map[string]Grid, len(sheets))
	var failed map[string]error
	for _, sheet := range sheets {
		rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
		if err != nil {
			if failed == nil {
				failed = make(map[string]error)
			}
			failed[sheet] = fmt.Errorf("failed to read sheet %q of %s: %w", sheet, path, err)
			continue
		}
		grids[sheet] = Grid(rows)
	}
	if len(failed) == len(sheets) && len(sheets) > 0 {
		return nil, failed[sheets[0]]
	}
	wb := NewWorkbook(path, sheets, grids)
	wb.SheetErrors = failed
	return wb, nil
}

func readDelimited(path string) (*Workbook, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var lastErr error
	for _, decode := range []func([]byte) (string, error){decodeUTF8, decodeLatin1} {
		text, err := decode(data)
		if err != nil {
			lastErr = err
			continue
		}
		grid, err := ParseDelimited(text)
		if err != nil {
			lastErr = err
			continue
		}
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		return NewWorkbook(path, []string{name}, map[string]Grid{name: grid}), nil
	}
	return nil, fmt.Errorf("failed to parse %s: %w", path, lastErr)
}

func decodeUTF8(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if !utf8.Valid(data) {
		return "", errors.New("not valid utf-8")
	}
	return string(data), nil
}

func decodeLatin1(data []byte) (string, error) {
	out, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("latin-1 decode: %w", err)
	}
	return string(out), nil
}

// ParseDelimited sniffs the delimiter of text and parses it into a padded grid
func ParseDelimited(text string) (Grid, error) {
	r := csv.NewReader(strings.NewReader(text))
	r.Comma = SniffDelimiter(text)
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	var grid Grid
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		grid = append(grid, rec)
	}
	if len(grid) == 0 {
		return nil, errNoDelimitedData
	}
	return pad(grid), nil
}

// SniffDelimiter picks the candidate that splits the leading lines most consistently
func SniffDelimiter(text string) rune {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
		if len(lines) == 20 {
			break
		}
	}

	best, bestScore := ',', -1
	for _, d := range []rune{',', ';', '\t', '|'} {
		counts := make(map[int]int)
		for _, line := range lines {
			if n := strings.Count(line, string(d)); n > 0 {
				counts[n]++
			}
		}
		// lines agreeing on the most common field count
		score := 0
		for _, c := range counts {
			if c > score {
				score = c
			}
		}
		if score > bestScore {
			best, bestScore = d, score
		}
	}
	return best
}

// pad makes every row as wide as the widest one
func pad(g Grid) Grid {
	width := g.Width()
	out := make(Grid, len(g))
	for i, row := range g {
		if len(row) == width {
			out[i] = row
			continue
		}
		padded := make([]string, width)
		copy(padded, row)
		out[i] = padded
	}
	return out
}

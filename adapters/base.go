package adapters

import (
	"math"
	"regexp"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"pricelist-extractor/internal/types"
	"pricelist-extractor/utils"
)

// MaxDescriptionLength caps DESCRIPCIÓN, counted in characters
const MaxDescriptionLength = 100

var (
	priceJunk      = regexp.MustCompile(`[^0-9,.\-]`)
	nonAlphanumRun = regexp.MustCompile(`[^a-z0-9]+`)
)

// Mapping is the outcome of mapping one supplier file
type Mapping struct {
	Table         types.CanonicalTable
	Dropped       int      // data rows rejected by the shared row rules
	SkippedSheets []string // sheets without the required columns
}

// Mapper turns a loaded supplier file into canonical rows
type Mapper interface {
	Family() Family
	Map(wb *utils.Workbook) Mapping
}

// BaseMapper provides the rules every supplier family shares
type BaseMapper struct {
	logger types.Logger
}

// NewBaseMapper creates a base mapper
func NewBaseMapper(logger types.Logger) *BaseMapper {
	return &BaseMapper{logger: logger}
}

// candidate is a mapped row before validation
type candidate struct {
	Code        string
	Description string
	Brand       string
	Price       string
}

// finalize applies truncation and the drop rules, keeping input order
func finalize(cands []candidate) (types.CanonicalTable, int) {
	table := types.CanonicalTable{Rows: make([]types.CanonicalRow, 0, len(cands))}
	dropped := 0
	for _, c := range cands {
		code := strings.TrimSpace(c.Code)
		desc := truncate(strings.TrimSpace(c.Description), MaxDescriptionLength)
		price, ok := NormalizePrice(c.Price)
		if code == "" || desc == "" || !ok {
			dropped++
			continue
		}
		table.Rows = append(table.Rows, types.CanonicalRow{
			Code:        code,
			Description: desc,
			Brand:       strings.TrimSpace(c.Brand),
			Price:       price,
		})
	}
	return table, dropped
}

// NormalizePrice parses a loosely formatted price.
// Only digits, comma, period and minus are kept. A single comma is the
// decimal separator when no period follows it; otherwise commas are
// thousands separators. Anything unparseable reports false.
func NormalizePrice(v string) (float64, bool) {
	s := priceJunk.ReplaceAllString(strings.TrimSpace(v), "")
	if s == "" {
		return 0, false
	}

	commas, dots := strings.Count(s, ","), strings.Count(s, ".")
	switch {
	case commas == 1 && (dots > 1 || (dots == 1 && strings.LastIndex(s, ",") > strings.LastIndex(s, "."))):
		s = strings.Replace(strings.ReplaceAll(s, ".", ""), ",", ".", 1)
	case commas == 1 && dots == 0:
		s = strings.Replace(s, ",", ".", 1)
	default:
		s = strings.ReplaceAll(s, ",", "")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, false
	}
	f, _ := d.Float64()
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Fold lowercases s, strips accents and drops everything but [a-z0-9]
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return nonAlphanumRun.ReplaceAllString(strings.ToLower(folded), "")
}

// findColumn returns the index of the column equal to name once both are
// trimmed and lowercased, or -1
func findColumn(columns []string, name string) int {
	target := strings.ToLower(strings.TrimSpace(name))
	for i, col := range columns {
		if strings.ToLower(strings.TrimSpace(col)) == target {
			return i
		}
	}
	return -1
}

// findFolded returns the first column whose folded name satisfies match, skipping excluded indexes
func findFolded(columns []string, match func(string) bool, exclude ...int) int {
	for i, col := range columns {
		if containsInt(exclude, i) {
			continue
		}
		if match(Fold(col)) {
			return i
		}
	}
	return -1
}

func containsInt(xs []int, x int) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// joinCategory appends category as "desc - category", trimming stray separators
func joinCategory(desc, category string) string {
	return strings.Trim(desc+" - "+category, " -")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

package adapters

import (
	"strings"

	"pricelist-extractor/utils"
)

// HeaderScanLimit is how many leading rows are considered as header candidates
const HeaderScanLimit = 40

var headerKeywords = []string{"codigo", "código", "descr", "precio", "marca", "rubro", "importe", "cod"}

// Table is a grid whose header row has been turned into column names
type Table struct {
	Columns []string
	Rows    [][]string
}

// ScoreRow counts the cells that look like a column label
func ScoreRow(row []string) int {
	score := 0
	for _, c := range row {
		lower := strings.ToLower(c)
		for _, k := range headerKeywords {
			if strings.Contains(lower, k) {
				score++
				break
			}
		}
	}
	return score
}

// LocateHeader returns the index of the highest scoring row among the first
// HeaderScanLimit rows. Ties keep the earliest row. When no row scores
// above zero it returns 0 and false.
func LocateHeader(g utils.Grid) (int, bool) {
	best, bestScore := 0, 0
	limit := len(g)
	if limit > HeaderScanLimit {
		limit = HeaderScanLimit
	}
	for i := 0; i < limit; i++ {
		if score := ScoreRow(g[i]); score > bestScore {
			best, bestScore = i, score
		}
	}
	return best, bestScore > 0
}

// ApplyHeader promotes the located header row to column names and keeps only the rows below it
func ApplyHeader(g utils.Grid) Table {
	if len(g) == 0 {
		return Table{}
	}
	idx, _ := LocateHeader(g)
	columns := append([]string(nil), g[idx]...)
	rows := make([][]string, 0, len(g)-idx-1)
	rows = append(rows, g[idx+1:]...)
	return Table{Columns: columns, Rows: rows}
}

package adapters

import (
	"strings"

	"pricelist-extractor/internal/types"
	"pricelist-extractor/utils"
)

// AutoFixMapper handles workbooks with one sheet per brand
type AutoFixMapper struct {
	*BaseMapper
}

// NewAutoFixMapper creates a family B mapper
func NewAutoFixMapper(logger types.Logger) *AutoFixMapper {
	return &AutoFixMapper{BaseMapper: NewBaseMapper(logger)}
}

// Family returns FamilyB
func (m *AutoFixMapper) Family() Family {
	return FamilyB
}

// sheetColumns are the resolved column indexes of one brand sheet
type sheetColumns struct {
	code, desc, desc2, category, price int
}

func resolveSheetColumns(columns []string) sheetColumns {
	c := sheetColumns{}
	c.code = findFolded(columns, func(k string) bool { return strings.HasPrefix(k, "codigo") })
	c.desc2 = findFolded(columns, func(k string) bool {
		return k == "descr2" || k == "descripcion2" || k == "descrip2"
	})
	c.desc = findFolded(columns, func(k string) bool { return strings.HasPrefix(k, "descr") }, c.desc2)
	c.price = findFolded(columns, func(k string) bool { return strings.HasPrefix(k, "precio") || k == "importe" })
	c.category = findFolded(columns, func(k string) bool {
		return k == "codrub" || k == "codrubro" || k == "rubro" || k == "rub"
	})
	return c
}

// Map locates a header on every sheet independently and uses the sheet name
// as brand. Sheets without code, description and price columns are skipped.
func (m *AutoFixMapper) Map(wb *utils.Workbook) Mapping {
	var out Mapping
	for _, sheet := range wb.Sheets {
		grid, ok := wb.Grid(sheet)
		if !ok || len(grid) == 0 {
			if err, failed := wb.SheetErrors[sheet]; failed {
				m.logger.Warnf("%v", err)
			}
			out.SkippedSheets = append(out.SkippedSheets, sheet)
			continue
		}

		t := ApplyHeader(grid)
		cols := resolveSheetColumns(t.Columns)
		if cols.code < 0 || cols.desc < 0 || cols.price < 0 {
			m.logger.Debugf("%s: skipping sheet %q, columns %v", wb.Path, sheet, t.Columns)
			out.SkippedSheets = append(out.SkippedSheets, sheet)
			continue
		}

		cands := make([]candidate, 0, len(t.Rows))
		for _, row := range t.Rows {
			d := cell(row, cols.desc)
			if cols.desc2 >= 0 {
				d = strings.TrimSpace(d + " " + cell(row, cols.desc2))
			}
			if cols.category >= 0 {
				d = joinCategory(d, cell(row, cols.category))
			}
			cands = append(cands, candidate{
				Code:        cell(row, cols.code),
				Description: d,
				Brand:       sheet,
				Price:       cell(row, cols.price),
			})
		}

		table, dropped := finalize(cands)
		m.logger.Debugf("%s: sheet %q gave %d rows (%d dropped)", wb.Path, sheet, table.Len(), dropped)
		out.Table.Rows = append(out.Table.Rows, table.Rows...)
		out.Dropped += dropped
	}
	return out
}

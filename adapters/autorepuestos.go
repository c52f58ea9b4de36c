package adapters

import (
	"pricelist-extractor/internal/types"
	"pricelist-extractor/utils"
)

// AutoRepuestosMapper handles single-sheet lists with explicit
// "codigo proveedor" / "precio de lista" columns
type AutoRepuestosMapper struct {
	*BaseMapper
}

// NewAutoRepuestosMapper creates a family A mapper
func NewAutoRepuestosMapper(logger types.Logger) *AutoRepuestosMapper {
	return &AutoRepuestosMapper{BaseMapper: NewBaseMapper(logger)}
}

// Family returns FamilyA
func (m *AutoRepuestosMapper) Family() Family {
	return FamilyA
}

// Map reads the first sheet; missing required columns yield an empty table
func (m *AutoRepuestosMapper) Map(wb *utils.Workbook) Mapping {
	t := ApplyHeader(wb.First())

	code := findColumn(t.Columns, "codigo proveedor")
	desc := findColumn(t.Columns, "descripcion")
	price := findColumn(t.Columns, "precio de lista")
	category := findColumn(t.Columns, "rubro")
	brand := findColumn(t.Columns, "marca")

	if code < 0 || desc < 0 || price < 0 {
		m.logger.Warnf("%s: missing required columns (codigo proveedor, descripcion, precio de lista) in %v", wb.Path, t.Columns)
		return Mapping{}
	}

	cands := make([]candidate, 0, len(t.Rows))
	for _, row := range t.Rows {
		d := cell(row, desc)
		if category >= 0 {
			d = joinCategory(d, cell(row, category))
		}
		cands = append(cands, candidate{
			Code:        cell(row, code),
			Description: d,
			Brand:       cell(row, brand),
			Price:       cell(row, price),
		})
	}

	table, dropped := finalize(cands)
	return Mapping{Table: table, Dropped: dropped}
}

package adapters

import (
	"pricelist-extractor/internal/types"
	"pricelist-extractor/utils"
)

// MundoRepcarMapper handles the CSV export with "importe" prices
type MundoRepcarMapper struct {
	*BaseMapper
}

// NewMundoRepcarMapper creates a family C mapper
func NewMundoRepcarMapper(logger types.Logger) *MundoRepcarMapper {
	return &MundoRepcarMapper{BaseMapper: NewBaseMapper(logger)}
}

// Family returns FamilyC
func (m *MundoRepcarMapper) Family() Family {
	return FamilyC
}

// Map reads the first sheet. The code comes from "codigo articulo", or
// "cod fabrica" when the former is absent.
func (m *MundoRepcarMapper) Map(wb *utils.Workbook) Mapping {
	t := ApplyHeader(wb.First())

	code := findColumn(t.Columns, "codigo articulo")
	if code < 0 {
		code = findColumn(t.Columns, "cod fabrica")
	}
	desc := findColumn(t.Columns, "descripcion")
	price := findColumn(t.Columns, "importe")
	category := findColumn(t.Columns, "rubro")
	brand := findColumn(t.Columns, "marca")

	if code < 0 || desc < 0 || price < 0 {
		m.logger.Warnf("%s: missing required columns (codigo articulo|cod fabrica, descripcion, importe) in %v", wb.Path, t.Columns)
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

package adapters

import (
	"math"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pricelist-extractor/internal/types"
	"pricelist-extractor/utils"
)

func TestNormalizePrice(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"1234.56", 1234.56, true},
		{"1.234,56", 1234.56, true},
		{"1.234.567,89", 1234567.89, true},
		{"1,234.56", 1234.56, true},
		{"1,234,567", 1234567, true},
		{"12,5", 12.5, true},
		{"$ 1.500,00", 1500, true},
		{"ARS 2500", 2500, true},
		{"-45,10", -45.1, true},
		{" 10 ", 10, true},
		{"", 0, false},
		{"N/A", 0, false},
		{"-", 0, false},
		{"1.2.3", 0, false},
		{"12-3", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := NormalizePrice(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.want, got, 1e-9)
			}
		})
	}
}

func TestNormalizePrice_Idempotent(t *testing.T) {
	inputs := []string{"1.234,56", "99", "0,01", "1,000,000.5", "-3.75", "$ 12.345.678,9", "0.1"}
	for _, in := range inputs {
		first, ok := NormalizePrice(in)
		require.True(t, ok, in)

		again, ok := NormalizePrice(strconv.FormatFloat(first, 'f', -1, 64))
		require.True(t, ok, in)
		assert.Equal(t, first, again, in)
	}
}

func TestFold(t *testing.T) {
	assert.Equal(t, "descripcion", Fold("DESCRIPCIÓN"))
	assert.Equal(t, "codigoproveedor", Fold(" Código_Proveedor "))
	assert.Equal(t, "precio", Fold("Precio"))
}

func TestHeaderAndFinalize_Scenario(t *testing.T) {
	grid := utils.Grid{
		{"x", "y", "z"},
		{"CODIGO", "DESCRIPCION", "PRECIO"},
		{"A1", "Widget", "1.234,56"},
	}

	idx, found := LocateHeader(grid)
	require.True(t, found)
	assert.Equal(t, 1, idx)

	tbl := ApplyHeader(grid)
	code := findColumn(tbl.Columns, "codigo")
	desc := findColumn(tbl.Columns, "descripcion")
	brand := findColumn(tbl.Columns, "marca")
	price := findColumn(tbl.Columns, "precio")
	assert.Equal(t, -1, brand)

	cands := make([]candidate, 0, len(tbl.Rows))
	for _, row := range tbl.Rows {
		cands = append(cands, candidate{
			Code:        cell(row, code),
			Description: cell(row, desc),
			Brand:       cell(row, brand),
			Price:       cell(row, price),
		})
	}
	table, dropped := finalize(cands)

	assert.Equal(t, 0, dropped)
	assert.Equal(t, []types.CanonicalRow{{Code: "A1", Description: "Widget", Brand: "", Price: 1234.56}}, table.Rows)
}

func TestFinalize_DropsInvalidRowsAndTruncates(t *testing.T) {
	long := strings.Repeat("ñ", 150)
	table, dropped := finalize([]candidate{
		{Code: "A1", Description: long, Price: "10"},
		{Code: "", Description: "sin codigo", Price: "10"},
		{Code: "A3", Description: "  ", Price: "10"},
		{Code: "A4", Description: "sin precio", Price: "consultar"},
		{Code: " A5 ", Description: " ok ", Brand: " NGK ", Price: "7,5"},
	})

	assert.Equal(t, 3, dropped)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, MaxDescriptionLength, len([]rune(table.Rows[0].Description)))
	assert.Equal(t, types.CanonicalRow{Code: "A5", Description: "ok", Brand: "NGK", Price: 7.5}, table.Rows[1])

	for _, row := range table.Rows {
		assert.False(t, math.IsNaN(row.Price) || math.IsInf(row.Price, 0))
		assert.LessOrEqual(t, len([]rune(row.Description)), MaxDescriptionLength)
	}
}

func TestJoinCategory(t *testing.T) {
	assert.Equal(t, "Filtro - ACEITE", joinCategory("Filtro", "ACEITE"))
	assert.Equal(t, "Filtro", joinCategory("Filtro", ""))
	assert.Equal(t, "ACEITE", joinCategory("", "ACEITE"))
}

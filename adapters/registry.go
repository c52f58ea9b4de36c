package adapters

import (
	"strings"

	"pricelist-extractor/internal/types"
	"pricelist-extractor/utils"
)

// Family identifies a supplier file layout
type Family int

const (
	FamilyA Family = iota // AutoRepuestos Express: single sheet, provider code and list price
	FamilyB               // AutoFix: one sheet per brand
	FamilyC               // Mundo Repcar: CSV with importe
)

func (f Family) String() string {
	switch f {
	case FamilyB:
		return "autofix"
	case FamilyC:
		return "mundo-repcar"
	default:
		return "autorepuestos-express"
	}
}

// Classify picks the layout family from a supplier display name
func Classify(supplier string) Family {
	s := Fold(utils.CleanSupplierName(supplier))
	switch {
	case strings.Contains(s, "autofix"):
		return FamilyB
	case strings.Contains(s, "mundo"), strings.Contains(s, "repcar"):
		return FamilyC
	case strings.Contains(s, "autorepuestos"), strings.Contains(s, "express"):
		return FamilyA
	}
	return FamilyA
}

// MapperFor returns the mapper for a family
func MapperFor(f Family, logger types.Logger) Mapper {
	switch f {
	case FamilyB:
		return NewAutoFixMapper(logger)
	case FamilyC:
		return NewMundoRepcarMapper(logger)
	default:
		return NewAutoRepuestosMapper(logger)
	}
}

// Normalize classifies supplier, loads path and maps it.
// A file that cannot be read yields an empty mapping.
func Normalize(supplier, path string, logger types.Logger) Mapping {
	mapper := MapperFor(Classify(supplier), logger)
	wb, err := utils.OpenWorkbook(path)
	if err != nil {
		logger.Warnf("Failed to read %s for %s: %v", path, supplier, err)
		return Mapping{}
	}
	return mapper.Map(wb)
}

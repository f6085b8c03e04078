package product

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/shelflife/shelflife-backend/pkg/validate"
)

const (
	MaxNameLength     = 200
	MaxBrandLength    = 100
	MaxCategoryLength = 50
	MaxGTINLength     = 20
)

// MaxMRP caps the listed price of a single unit.
var MaxMRP = decimal.NewFromInt(1_000_000)

// Normalize trims the identity in place and drops blank optional fields.
func (i *Identity) Normalize() {
	i.Name = strings.TrimSpace(i.Name)
	i.Category = strings.TrimSpace(i.Category)
	i.Brand = validate.TrimOptional(i.Brand)
	i.GTIN = validate.TrimOptional(i.GTIN)
}

// Violations lists every broken rule on a normalized identity.
func (i Identity) Violations() validate.Errors {
	var errs validate.Errors
	errs.Length("name", i.Name, 1, MaxNameLength)
	errs.Length("category", i.Category, 1, MaxCategoryLength)
	if i.Brand != nil {
		errs.Length("brand", *i.Brand, 1, MaxBrandLength)
	}
	if i.GTIN != nil {
		errs.Length("gtin", *i.GTIN, 1, MaxGTINLength)
	}
	CheckMRP(&errs, "mrp", i.MRP)
	return errs
}

// Validate returns a VALIDATION_ERROR describing every violation.
func (i Identity) Validate() error {
	return i.Violations().Err()
}

// CheckMRP enforces 0 < mrp <= MaxMRP.
func CheckMRP(errs *validate.Errors, field string, mrp decimal.Decimal) {
	switch {
	case !mrp.IsPositive():
		errs.Add(field, "must be greater than 0")
	case mrp.GreaterThan(MaxMRP):
		errs.Add(field, "must not exceed "+MaxMRP.String())
	}
}

// Package scan turns a label photo into a draft batch the shopkeeper can
// confirm. Everything the vision model returns is untrusted and re-checked
// with the manual-entry rules.
package scan

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/shelflife/shelflife-backend/internal/authz"
	"github.com/shelflife/shelflife-backend/internal/discount"
	"github.com/shelflife/shelflife-backend/internal/inventory"
	product "github.com/shelflife/shelflife-backend/internal/products"
	"github.com/shelflife/shelflife-backend/pkg/auth"
	"github.com/shelflife/shelflife-backend/pkg/logger"
	"github.com/shelflife/shelflife-backend/pkg/validate"
	"github.com/shelflife/shelflife-backend/pkg/vision"
)

// MaxImageBytes bounds the base64 payload accepted from clients.
const MaxImageBytes = 8 << 20

type extractor interface {
	Extract(ctx context.Context, imageBase64 string) (*vision.Extraction, error)
}

// Draft holds the fields that survived validation.
type Draft struct {
	Name              *string          `json:"name"`
	Brand             *string          `json:"brand"`
	GTIN              *string          `json:"gtin"`
	BatchCode         *string          `json:"batch_code"`
	MRP               *decimal.Decimal `json:"mrp"`
	Quantity          *int             `json:"quantity"`
	ExpiryDate        *string          `json:"expiry_date"`
	ManufacturingDate *string          `json:"manufacturing_date"`
}

// Result is the scan response.
type Result struct {
	Extraction        *vision.Extraction `json:"extraction"`
	Draft             Draft              `json:"draft"`
	Warnings          validate.Errors    `json:"warnings"`
	DaysToExpiry      *int               `json:"days_to_expiry,omitempty"`
	SuggestedDiscount *int               `json:"suggested_discount,omitempty"`
}

type Service interface {
	Scan(ctx context.Context, actor auth.Actor, imageBase64 string) (*Result, error)
}

type ServiceParams struct {
	Vision extractor
	Authz  authz.Authorizer
	Engine *discount.Engine
	Logger *logger.Logger
}

type service struct {
	vision extractor
	authz  authz.Authorizer
	engine *discount.Engine
	logg   *logger.Logger
}

func NewService(p ServiceParams) (Service, error) {
	if p.Vision == nil {
		return nil, fmt.Errorf("vision client required")
	}
	if p.Authz == nil {
		return nil, fmt.Errorf("authorizer required")
	}
	if p.Engine == nil {
		p.Engine = discount.NewEngine(nil)
	}
	if p.Logger == nil {
		p.Logger = logger.Nop()
	}
	return &service{vision: p.Vision, authz: p.Authz, engine: p.Engine, logg: p.Logger}, nil
}

func (s *service) Scan(ctx context.Context, actor auth.Actor, imageBase64 string) (*Result, error) {
	if err := s.authz.Authorize(ctx, actor, authz.ActionScanLabel, authz.Resource{}); err != nil {
		return nil, err
	}
	var errs validate.Errors
	image := strings.TrimSpace(imageBase64)
	errs.Required("image_base64", image)
	if len(image) > MaxImageBytes {
		errs.Add("image_base64", fmt.Sprintf("must be at most %d bytes", MaxImageBytes))
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	extraction, err := s.vision.Extract(ctx, image)
	if err != nil {
		return nil, err
	}

	draft, warnings := buildDraft(extraction)
	out := &Result{Extraction: extraction, Draft: draft, Warnings: warnings}
	if draft.ExpiryDate != nil {
		expiry, _ := discount.ParseDate(*draft.ExpiryDate)
		days := discount.DaysToExpiry(expiry, s.engine.Now())
		pct := discount.Tier(days)
		out.DaysToExpiry = &days
		out.SuggestedDiscount = &pct
	}

	if len(warnings) > 0 {
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{
			"user_id":  actor.UserID.String(),
			"warnings": len(warnings),
		}), "scan fields dropped")
	}
	return out, nil
}

// buildDraft keeps each extracted field that passes its manual-entry rule
// and reports the rest as warnings.
func buildDraft(x *vision.Extraction) (Draft, validate.Errors) {
	var draft Draft
	var warn validate.Errors
	if x == nil {
		return draft, nil
	}

	text := func(field string, value *string, max int) *string {
		v := validate.TrimOptional(value)
		if v == nil {
			return nil
		}
		var e validate.Errors
		e.Length(field, *v, 1, max)
		if len(e) > 0 {
			warn.Merge(e)
			return nil
		}
		return v
	}
	draft.Name = text("name", x.ProductName, product.MaxNameLength)
	draft.Brand = text("brand", x.Brand, product.MaxBrandLength)
	draft.GTIN = text("gtin", x.GTIN, product.MaxGTINLength)
	draft.BatchCode = text("batch_code", x.BatchCode, inventory.MaxBatchCodeLength)

	if x.MRP != nil {
		mrp, err := decimal.NewFromString(x.MRP.String())
		if err != nil {
			warn.Add("mrp", "must be a number")
		} else {
			var e validate.Errors
			product.CheckMRP(&e, "mrp", mrp)
			if len(e) > 0 {
				warn.Merge(e)
			} else {
				rounded := mrp.Round(2)
				draft.MRP = &rounded
			}
		}
	}

	if x.Quantity != nil {
		qty, err := strconv.Atoi(x.Quantity.String())
		if err != nil {
			warn.Add("quantity", "must be a whole number")
		} else {
			var e validate.Errors
			e.IntRange("quantity", qty, 1, inventory.MaxQuantity)
			if len(e) > 0 {
				warn.Merge(e)
			} else {
				draft.Quantity = &qty
			}
		}
	}

	draft.ExpiryDate = dateField(&warn, "expiry_date", x.ExpiryDate)
	draft.ManufacturingDate = dateField(&warn, "manufacturing_date", x.ManufacturingDate)
	if draft.ExpiryDate != nil && draft.ManufacturingDate != nil && *draft.ManufacturingDate > *draft.ExpiryDate {
		warn.Add("manufacturing_date", "must not be after expiry_date")
		draft.ManufacturingDate = nil
	}
	return draft, warn
}

func dateField(warn *validate.Errors, field string, value *string) *string {
	v := validate.TrimOptional(value)
	if v == nil {
		return nil
	}
	parsed, err := discount.ParseDate(*v)
	if err != nil {
		warn.Add(field, "must be formatted YYYY-MM-DD")
		return nil
	}
	formatted := parsed.Format(discount.DateLayout)
	return &formatted
}

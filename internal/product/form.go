package product

import (
	"errors"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Form field names.
const (
	FieldName                  = "name"
	FieldCode                  = "code"
	FieldUnit                  = "unit"
	FieldDefaultPrice          = "defaultPrice"
	FieldStandardStockQuantity = "standardStockQuantity"
	FieldGeneral               = "general"
)

// MaxDefaultPrice is the largest default price the catalog stores.
const MaxDefaultPrice = 99999999999999

// Draft holds raw form values for one submission.
type Draft struct {
	Name                  string `form:"name" validate:"required,max=255"`
	Code                  string `form:"code" validate:"required,max=64"`
	Unit                  string `form:"unit" validate:"required,max=32"`
	DefaultPrice          string `form:"defaultPrice" validate:"required,numeric"`
	StandardStockQuantity string `form:"standardStockQuantity" validate:"required,number"`
}

// FieldErrors maps a form field name to its message.
type FieldErrors map[string]string

// Has reports whether field carries an error.
func (f FieldErrors) Has(field string) bool {
	_, ok := f[field]
	return ok
}

var fieldMessages = map[string]map[string]string{
	FieldName: {
		"required": "Enter the product name",
		"max":      "Product name is too long",
	},
	FieldCode: {
		"required": "Enter the product code",
		"max":      "Product code is too long",
	},
	FieldUnit: {
		"required": "Enter the product unit",
		"max":      "Unit is too long",
	},
	FieldDefaultPrice: {
		"required": "Enter the default price",
		"numeric":  "Default price must be a number",
	},
	FieldStandardStockQuantity: {
		"required": "Enter the standard stock quantity",
		"number":   "Standard stock quantity must be a whole number",
	},
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// DraftFromForm reads a draft from posted form values.
func DraftFromForm(values url.Values) Draft {
	return Draft{
		Name:                  strings.TrimSpace(values.Get(FieldName)),
		Code:                  strings.TrimSpace(values.Get(FieldCode)),
		Unit:                  strings.TrimSpace(values.Get(FieldUnit)),
		DefaultPrice:          strings.TrimSpace(values.Get(FieldDefaultPrice)),
		StandardStockQuantity: strings.TrimSpace(values.Get(FieldStandardStockQuantity)),
	}
}

// DraftFromProduct pre-fills a draft for editing.
func DraftFromProduct(p Product) Draft {
	return Draft{
		Name:                  p.Name,
		Code:                  p.Code,
		Unit:                  p.Unit,
		DefaultPrice:          strconv.FormatFloat(p.DefaultPrice, 'f', -1, 64),
		StandardStockQuantity: strconv.FormatInt(p.StandardStockQuantity, 10),
	}
}

// Validate returns the per-field errors of d, or nil when d is valid.
func (d Draft) Validate() FieldErrors {
	errs := FieldErrors{}
	if err := validate.Struct(d); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			errs[FieldGeneral] = err.Error()
			return errs
		}
		for _, fe := range verrs {
			if _, seen := errs[fe.Field()]; seen {
				continue
			}
			errs[fe.Field()] = messageFor(fe.Field(), fe.Tag())
		}
	}
	if !errs.Has(FieldDefaultPrice) {
		if price, err := strconv.ParseFloat(d.DefaultPrice, 64); err != nil {
			errs[FieldDefaultPrice] = messageFor(FieldDefaultPrice, "numeric")
		} else if price < 0 {
			errs[FieldDefaultPrice] = "Default price cannot be negative"
		} else if price > MaxDefaultPrice {
			errs[FieldDefaultPrice] = "Default price is too large"
		}
	}
	if !errs.Has(FieldStandardStockQuantity) {
		if qty, err := strconv.ParseInt(d.StandardStockQuantity, 10, 64); err != nil {
			errs[FieldStandardStockQuantity] = messageFor(FieldStandardStockQuantity, "number")
		} else if qty < 0 {
			errs[FieldStandardStockQuantity] = "Standard stock quantity cannot be negative"
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func messageFor(field, tag string) string {
	if msgs, ok := fieldMessages[field]; ok {
		if msg, ok := msgs[tag]; ok {
			return msg
		}
	}
	return field + " is invalid"
}

// CreateParams converts a valid draft. It must only be called after Validate
// returned nil.
func (d Draft) CreateParams() CreateParams {
	price, _ := strconv.ParseFloat(d.DefaultPrice, 64)
	qty, _ := strconv.ParseInt(d.StandardStockQuantity, 10, 64)
	return CreateParams{
		Name:                  d.Name,
		Code:                  d.Code,
		Unit:                  d.Unit,
		DefaultPrice:          price,
		StandardStockQuantity: qty,
	}
}

// UpdateParams converts a valid draft into a full update of id, unit included.
func (d Draft) UpdateParams(id int64) UpdateParams {
	c := d.CreateParams()
	return UpdateParams{
		ID:                    id,
		Name:                  &c.Name,
		Code:                  &c.Code,
		Unit:                  &c.Unit,
		DefaultPrice:          &c.DefaultPrice,
		StandardStockQuantity: &c.StandardStockQuantity,
	}
}

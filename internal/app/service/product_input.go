package service

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/khatrisoftware/alankar-backend/internal/app/model"
)

// ValidationError carries one message per invalid field. Nothing is written
// when it is returned.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, message string) {
	if e.Fields == nil {
		e.Fields = map[string]string{}
	}
	if _, exists := e.Fields[field]; !exists {
		e.Fields[field] = message
	}
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// ErrInvalidPrice is returned while decoding a price that is neither a
// finite number nor a numeric string.
var ErrInvalidPrice = errors.New("price must be a number or numeric string")

// Price accepts a JSON number or a numeric string.
type Price float64

func (p *Price) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil || !isFinite(f) {
			return fmt.Errorf("%w: %q", ErrInvalidPrice, s)
		}
		*p = Price(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return ErrInvalidPrice
	}
	*p = Price(f)
	return nil
}

// Float64 returns the stored value; negative zero becomes zero.
func (p Price) Float64() float64 {
	f := float64(p)
	if f == 0 {
		return 0
	}
	return f
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// CreateProductInput is the create payload. The product code is never
// accepted from clients.
type CreateProductInput struct {
	Name           string   `json:"name" validate:"required"`
	Description    string   `json:"description"`
	Category       string   `json:"category" validate:"required"`
	MetalType      string   `json:"metalType" validate:"required"`
	Gender         string   `json:"gender"`
	Weight         string   `json:"weight"`
	Price          *Price   `json:"price" validate:"required"`
	Images         []string `json:"images" validate:"omitempty,dive,url"`
	IsNewProduct   bool     `json:"isNewProduct"`
	IsOnSale       bool     `json:"isOnSale"`
	IsFeatured     bool     `json:"isFeatured"`
	AvailableSizes []string `json:"availableSizes"`
}

// UpdateProductInput is the partial update payload; nil means "leave as is".
type UpdateProductInput struct {
	Name           *string   `json:"name"`
	Description    *string   `json:"description"`
	Category       *string   `json:"category"`
	MetalType      *string   `json:"metalType"`
	Gender         *string   `json:"gender"`
	Weight         *string   `json:"weight"`
	Price          *Price    `json:"price"`
	Images         *[]string `json:"images" validate:"omitempty,dive,url"`
	IsNewProduct   *bool     `json:"isNewProduct"`
	IsOnSale       *bool     `json:"isOnSale"`
	IsFeatured     *bool     `json:"isFeatured"`
	AvailableSizes *[]string `json:"availableSizes"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// collectTagErrors runs struct-tag rules and records them per JSON field.
func collectTagErrors(input interface{}, verr *ValidationError) {
	err := validate.Struct(input)
	if err == nil {
		return
	}
	fieldErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		verr.add("body", err.Error())
		return
	}
	for _, fe := range fieldErrors {
		field := fe.Field()
		// images[2] -> images
		if idx := strings.IndexByte(field, '['); idx > 0 {
			field = field[:idx]
		}
		switch fe.Tag() {
		case "required":
			verr.add(field, "is required")
		case "url":
			verr.add(field, fmt.Sprintf("%q is not a valid URL", fe.Value()))
		default:
			verr.add(field, "is invalid")
		}
	}
}

func checkCategory(code string, verr *ValidationError) model.CategoryCode {
	category := model.CategoryCode(strings.ToUpper(strings.TrimSpace(code)))
	if !category.IsValid() {
		verr.add("category", fmt.Sprintf("unknown category %q", code))
	}
	return category
}

func checkMetalType(code string, verr *ValidationError) model.MetalTypeCode {
	metal := model.MetalTypeCode(strings.ToUpper(strings.TrimSpace(code)))
	if !metal.IsValid() {
		verr.add("metalType", fmt.Sprintf("unknown metal type %q", code))
	}
	return metal
}

func checkPrice(p *Price, verr *ValidationError) {
	switch {
	case p == nil:
	case !isFinite(float64(*p)):
		verr.add("price", "must be a finite number")
	case *p < 0:
		verr.add("price", "must be greater than or equal to 0")
	}
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

package service

import (
	"errors"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"marketplace-service/internal/model"
)

var fieldMessages = map[string]string{
	"title":        "Title is required",
	"price":        "Price must be greater than zero",
	"price.lt":     "Price is too large",
	"category":     "Please select a category",
	"seller_email": "Enter a valid email",
	"image":        "At least one image is required",
	"listing_id":   "Listing is required",
	"buyer_email":  "Please enter a valid email address",
	"message":      "Message must be at least 10 characters long",
}

// contactEmail also requires a dotted domain with a top-level part of at
// least two letters, so addresses like "b@localhost" are refused.
var contactEmail = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// newValidator returns a validator that reports fields by their form
// name and knows the catalog and the trimmed-length rule.
func newValidator(catalog model.Catalog) *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("catalog", func(fl validator.FieldLevel) bool {
		return catalog.Contains(fl.Field().String())
	})
	_ = v.RegisterValidation("contact_email", func(fl validator.FieldLevel) bool {
		return contactEmail.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("trimmed_min", func(fl validator.FieldLevel) bool {
		min, err := strconv.Atoi(fl.Param())
		if err != nil {
			return false
		}
		return utf8.RuneCountInString(strings.TrimSpace(fl.Field().String())) >= min
	})
	return v
}

// check runs v over s and converts failures into a *ValidationError.
func check(v *validator.Validate, s interface{}) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &ValidationError{Fields: make(map[string]string, len(verrs))}
	for _, fe := range verrs {
		field := fe.Field()
		if _, seen := out.Fields[field]; seen {
			continue
		}
		msg, ok := fieldMessages[field+"."+fe.Tag()]
		if !ok {
			msg, ok = fieldMessages[field]
		}
		if !ok {
			msg = "is invalid"
		}
		out.Fields[field] = msg
	}
	return out
}

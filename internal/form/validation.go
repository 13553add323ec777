// Package form implements the add and edit product forms: field state,
// validation and submission.
package form

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"supermarket-inventory/internal/model"

	"github.com/go-playground/validator/v10"
)

var (
	ErrValidation       = errors.New("form has invalid fields")
	ErrSubmitInProgress = errors.New("submit already in progress")
)

type Field string

const (
	FieldName     Field = "name"
	FieldPrice    Field = "price"
	FieldQuantity Field = "quantity"
	FieldCategory Field = "category"
	FieldImageURL Field = "imageUrl"
)

var messages = map[Field]string{
	FieldName:     "Product name is required",
	FieldPrice:    "Valid price is required",
	FieldQuantity: "Valid quantity is required",
	FieldCategory: "Category is required",
	FieldImageURL: "Image URL is required",
}

// Errors maps each invalid field to its message.
type Errors map[Field]string

// submission is the parsed form. Unparseable numbers are left at zero so
// that they fail the gt=0 rule.
type submission struct {
	Name     string  `validate:"required"`
	Price    float64 `validate:"gt=0"`
	Quantity int     `validate:"gt=0"`
	Category string  `validate:"category"`
	ImageURL string  `validate:"required"`
}

var fieldOf = map[string]Field{
	"Name":     FieldName,
	"Price":    FieldPrice,
	"Quantity": FieldQuantity,
	"Category": FieldCategory,
	"ImageURL": FieldImageURL,
}

var validate = func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	err := v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return model.Category(fl.Field().String()).Valid()
	})
	if err != nil {
		panic(err)
	}
	return v
}()

func parsePrice(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func parseQuantity(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

// Validate parses data and checks every field. On success it returns the
// payload to submit, with name and image URL trimmed.
func Validate(data model.ProductFormData) (model.ProductInput, Errors) {
	s := submission{
		Name:     strings.TrimSpace(data.Name),
		Price:    parsePrice(data.Price),
		Quantity: parseQuantity(data.Quantity),
		Category: data.Category,
		ImageURL: strings.TrimSpace(data.ImageURL),
	}

	errs := Errors{}
	var verrs validator.ValidationErrors
	if err := validate.Struct(s); errors.As(err, &verrs) {
		for _, fe := range verrs {
			f := fieldOf[fe.StructField()]
			errs[f] = messages[f]
		}
	}
	if len(errs) > 0 {
		return model.ProductInput{}, errs
	}

	return model.ProductInput{
		Name:     s.Name,
		Price:    s.Price,
		Quantity: s.Quantity,
		Category: s.Category,
		ImageURL: s.ImageURL,
	}, nil
}

// FromProduct fills a form with an existing product's values.
func FromProduct(p model.Product) model.ProductFormData {
	return model.ProductFormData{
		Name:     p.Name,
		Price:    strconv.FormatFloat(p.Price, 'f', -1, 64),
		Quantity: strconv.Itoa(p.Quantity),
		Category: p.Category,
		ImageURL: p.ImageURL,
	}
}

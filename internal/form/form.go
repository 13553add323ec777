package form

import (
	"context"
	"sync"

	"supermarket-inventory/internal/model"

	"go.opentelemetry.io/otel"
)

var FormTracer = otel.Tracer("ProductForm")

type Status string

const (
	StatusIdle       Status = "idle"
	StatusLoading    Status = "loading"
	StatusLoadError  Status = "load-error"
	StatusEditing    Status = "editing"
	StatusSubmitting Status = "submitting"
)

type Notifier interface {
	Success(message string) string
	Error(message string) string
}

// State is a copy of a form's state.
type State struct {
	Status    Status
	Data      model.ProductFormData
	Errors    Errors
	LoadError string
}

// fields is the part shared by the add and edit forms.
type fields struct {
	mu     sync.Mutex
	status Status
	data   model.ProductFormData
	errs   Errors
	// set by the edit form when loading fails
	loadErr string
}

func (f *fields) state() State {
	f.mu.Lock()
	defer f.mu.Unlock()

	errs := make(Errors, len(f.errs))
	for k, v := range f.errs {
		errs[k] = v
	}
	return State{Status: f.status, Data: f.data, Errors: errs, LoadError: f.loadErr}
}

// set changes one field and clears only that field's error.
func (f *fields) set(field Field, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch field {
	case FieldName:
		f.data.Name = value
	case FieldPrice:
		f.data.Price = value
	case FieldQuantity:
		f.data.Quantity = value
	case FieldCategory:
		f.data.Category = value
	case FieldImageURL:
		f.data.ImageURL = value
	default:
		return
	}
	delete(f.errs, field)
	if f.status == StatusIdle {
		f.status = StatusEditing
	}
}

// begin validates and moves to submitting. It returns the payload to send.
func (f *fields) begin() (model.ProductInput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.status == StatusSubmitting {
		return model.ProductInput{}, ErrSubmitInProgress
	}

	in, errs := Validate(f.data)
	if len(errs) > 0 {
		f.errs = errs
		f.status = StatusEditing
		return model.ProductInput{}, ErrValidation
	}

	f.errs = Errors{}
	f.status = StatusSubmitting
	return in, nil
}

func (f *fields) end() {
	f.mu.Lock()
	f.status = StatusEditing
	f.mu.Unlock()
}

type ProductCreator interface {
	CreateProduct(ctx context.Context, in model.ProductInput) (*model.Product, error)
}

const (
	AddSuccessMessage = "Product added successfully!"
	AddFailedMessage  = "Failed to add product. Please try again."
)

// AddForm creates products. Entered values stay in place after a submit
// whatever its outcome.
type AddForm struct {
	fields
	api      ProductCreator
	notifier Notifier
}

func NewAddForm(api ProductCreator, notifier Notifier) *AddForm {
	return &AddForm{
		fields:   fields{status: StatusIdle, errs: Errors{}},
		api:      api,
		notifier: notifier,
	}
}

func (f *AddForm) SetField(field Field, value string) {
	f.set(field, value)
}

func (f *AddForm) State() State {
	return f.state()
}

// Submit validates and creates the product. It returns ErrValidation
// without any request when a field is invalid.
func (f *AddForm) Submit(ctx context.Context) (*model.Product, error) {
	ctx, span := FormTracer.Start(ctx, "AddForm.Submit")
	defer span.End()

	in, err := f.begin()
	if err != nil {
		return nil, err
	}
	defer f.end()

	created, err := f.api.CreateProduct(ctx, in)
	if err != nil {
		f.notifier.Error(AddFailedMessage)
		return nil, err
	}
	f.notifier.Success(AddSuccessMessage)
	return created, nil
}

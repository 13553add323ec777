package form

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"supermarket-inventory/internal/logger"
	"supermarket-inventory/internal/model"
	"supermarket-inventory/internal/notify"
)

var ErrNotLoaded = errors.New("product is not loaded")

const (
	EditSuccessMessage = "Product updated successfully!"
	EditFailedMessage  = "Failed to update product. Please try again."
	LoadErrorMessage   = "Failed to load product. Please try again."
	LoadFailedToast    = "Failed to load product data"

	// RedirectDelay separates the success toast from the return to the dashboard.
	RedirectDelay = 1500 * time.Millisecond
)

type ProductEditor interface {
	GetProductByID(ctx context.Context, id string) (*model.Product, error)
	UpdateProduct(ctx context.Context, id string, in model.ProductInput) (*model.Product, error)
}

// Navigator moves the user between pages.
type Navigator interface {
	Push(path string)
	// Refresh forces the destination to reload its data.
	Refresh()
}

// EditForm loads one product and replaces it on submit. A failed load is
// terminal for the form.
type EditForm struct {
	fields
	id       string
	api      ProductEditor
	notifier Notifier
	nav      Navigator
	schedule notify.Scheduler
}

type EditOption func(*EditForm)

func WithScheduler(s notify.Scheduler) EditOption {
	return func(f *EditForm) { f.schedule = s }
}

func NewEditForm(id string, api ProductEditor, notifier Notifier, nav Navigator, opts ...EditOption) *EditForm {
	f := &EditForm{
		fields:   fields{status: StatusLoading, errs: Errors{}},
		id:       id,
		api:      api,
		notifier: notifier,
		nav:      nav,
		schedule: notify.AfterFunc,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *EditForm) ID() string {
	return f.id
}

// Load fetches the product and fills the form with it.
func (f *EditForm) Load(ctx context.Context) error {
	ctx, span := FormTracer.Start(ctx, "EditForm.Load")
	defer span.End()

	f.mu.Lock()
	f.status = StatusLoading
	f.loadErr = ""
	f.mu.Unlock()

	p, err := f.api.GetProductByID(ctx, f.id)

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		logger.Error(ctx, "Failed to load product", slog.String("id", f.id), slog.String("error", err.Error()))
		f.status = StatusLoadError
		f.loadErr = LoadErrorMessage
		f.notifier.Error(LoadFailedToast)
		return err
	}

	f.data = FromProduct(*p)
	f.status = StatusEditing
	return nil
}

func (f *EditForm) SetField(field Field, value string) {
	f.mu.Lock()
	editable := f.status != StatusLoading && f.status != StatusLoadError
	f.mu.Unlock()
	if editable {
		f.set(field, value)
	}
}

func (f *EditForm) State() State {
	return f.state()
}

// Submit validates and replaces the product. After a success the
// navigator returns to the dashboard once RedirectDelay has passed.
func (f *EditForm) Submit(ctx context.Context) (*model.Product, error) {
	ctx, span := FormTracer.Start(ctx, "EditForm.Submit")
	defer span.End()

	f.mu.Lock()
	status := f.status
	f.mu.Unlock()
	if status == StatusLoading || status == StatusLoadError {
		return nil, ErrNotLoaded
	}

	in, err := f.begin()
	if err != nil {
		return nil, err
	}
	defer f.end()

	updated, err := f.api.UpdateProduct(ctx, f.id, in)
	if err != nil {
		logger.Error(ctx, "Failed to update product", slog.String("id", f.id), slog.String("error", err.Error()))
		f.notifier.Error(EditFailedMessage)
		return nil, err
	}

	f.notifier.Success(EditSuccessMessage)
	f.schedule(RedirectDelay, func() {
		f.nav.Push("/")
		f.nav.Refresh()
	})
	return updated, nil
}

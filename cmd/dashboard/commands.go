package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"sort"
	"strconv"
	"text/tabwriter"
	"time"

	"supermarket-inventory/internal/client"
	"supermarket-inventory/internal/dashboard"
	"supermarket-inventory/internal/form"
	middleware_grpc "supermarket-inventory/internal/middleware/grpc"
	"supermarket-inventory/internal/model"
	"supermarket-inventory/internal/utils"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

var errUsage = errors.New("invalid usage")

func (a *app) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.out)
	return fs
}

// render draws the dashboard. After a failed refresh the error is shown as a
// banner above the products kept from the last successful load.
func (a *app) render(ctrl *dashboard.Controller, table *dashboard.Table) {
	a.flushToasts()
	state := ctrl.Snapshot()

	fmt.Fprintln(a.out, "Supermarket Inventory")
	if state.Loading {
		fmt.Fprintln(a.out, "Loading products...")
		return
	}
	if state.Error != "" {
		fmt.Fprintf(a.out, "Connection Error: %s\n", state.Error)
	}

	stats := dashboard.ComputeStats(state.Products)
	fmt.Fprintf(a.out, "Products: %d   Total value: $%s   Low stock: %d\n\n",
		stats.Count, stats.TotalValue, stats.LowStock)
	fmt.Fprintln(a.out, state.Headline())

	if len(state.Products) == 0 {
		if state.ShowEmptyState() {
			fmt.Fprintln(a.out, "No products yet. Run \"dashboard add\" to add your first product.")
		}
		return
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tPRICE\tQTY\tSTOCK")
	for _, row := range table.Rows(state.Products) {
		fmt.Fprintf(tw, "%s\t%s\t%s (%s)\t%s\t%d\t%s\n",
			row.Product.ID, row.Product.Name, row.Product.Category, row.Style,
			row.Price, row.Product.Quantity, row.Stock)
	}
	_ = tw.Flush()
}

func (a *app) newDashboard() (*dashboard.Controller, *dashboard.Table) {
	ctrl := dashboard.NewController(a.api)
	return ctrl, dashboard.NewTable(a.api, a.center, ctrl.HandleProductDeleted)
}

func (a *app) list(ctx context.Context) error {
	ctrl, table := a.newDashboard()
	ctrl.Mount(ctx)
	a.render(ctrl, table)
	if ctrl.Snapshot().Error != "" {
		return errors.New("products unavailable")
	}
	return nil
}

func (a *app) watch(ctx context.Context, args []string) error {
	fs := a.newFlagSet("watch")
	interval := fs.Duration("interval", 5*time.Second, "refresh interval")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *interval <= 0 {
		return errUsage
	}

	ctrl, table := a.newDashboard()
	ctrl.Mount(ctx)
	a.render(ctrl, table)

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			_ = ctrl.FetchProducts(ctx)
			fmt.Fprintf(a.out, "\n--- %s ---\n", time.Now().Format(time.TimeOnly))
			a.render(ctrl, table)
		}
	}
}

// productFlags binds one flag per form field.
func productFlags(fs *flag.FlagSet) map[form.Field]*string {
	return map[form.Field]*string{
		form.FieldName:     fs.String("name", "", "product name"),
		form.FieldPrice:    fs.String("price", "", "unit price"),
		form.FieldQuantity: fs.String("quantity", "", "quantity in stock"),
		form.FieldCategory: fs.String("category", "", "one of "+model.CategoriesTag),
		form.FieldImageURL: fs.String("image", "", "image URL"),
	}
}

var flagField = map[string]form.Field{
	"name":     form.FieldName,
	"price":    form.FieldPrice,
	"quantity": form.FieldQuantity,
	"category": form.FieldCategory,
	"image":    form.FieldImageURL,
}

func (a *app) printFieldErrors(errs form.Errors) {
	fields := make([]string, 0, len(errs))
	for f := range errs {
		fields = append(fields, string(f))
	}
	sort.Strings(fields)
	for _, f := range fields {
		fmt.Fprintf(a.out, "  %s: %s\n", f, errs[form.Field(f)])
	}
}

func (a *app) add(ctx context.Context, args []string) error {
	fs := a.newFlagSet("add")
	values := productFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	f := form.NewAddForm(a.api, a.center)
	for field, v := range values {
		f.SetField(field, *v)
	}

	created, err := f.Submit(ctx)
	a.flushToasts()
	if errors.Is(err, form.ErrValidation) {
		fmt.Fprintln(a.out, "Please fix the following fields:")
		a.printFieldErrors(f.State().Errors)
		return errUsage
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Created %s with id %s\n", created.Name, created.ID)
	return nil
}

// cliNavigator redraws the dashboard when the edit form navigates back to it.
type cliNavigator struct {
	app  *app
	ctx  context.Context
	path string
	done chan struct{}
}

func (n *cliNavigator) Push(path string) {
	n.path = path
}

func (n *cliNavigator) Refresh() {
	defer close(n.done)
	if n.path != "/" {
		return
	}
	fmt.Fprintln(n.app.out)
	_ = n.app.list(n.ctx)
}

func (a *app) edit(ctx context.Context, args []string) error {
	fs := a.newFlagSet("edit")
	id := fs.String("id", "", "product id")
	values := productFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		fmt.Fprintln(a.out, "edit: -id is required")
		return errUsage
	}

	nav := &cliNavigator{app: a, ctx: ctx, done: make(chan struct{})}
	f := form.NewEditForm(*id, a.api, a.center, nav)
	if err := f.Load(ctx); err != nil {
		fmt.Fprintln(a.out, f.State().LoadError)
		return err
	}

	// only the flags given on the command line replace loaded values
	fs.Visit(func(fl *flag.Flag) {
		if field, ok := flagField[fl.Name]; ok {
			f.SetField(field, *values[field])
		}
	})

	_, err := f.Submit(ctx)
	if errors.Is(err, form.ErrValidation) {
		fmt.Fprintln(a.out, "Please fix the following fields:")
		a.printFieldErrors(f.State().Errors)
		return errUsage
	}
	if err != nil {
		return err
	}

	waitFor(ctx, nav.done, form.RedirectDelay+5*time.Second)
	return nil
}

func (a *app) delete(ctx context.Context, args []string) error {
	fs := a.newFlagSet("delete")
	id := fs.String("id", "", "product id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		fmt.Fprintln(a.out, "delete: -id is required")
		return errUsage
	}

	ctrl, table := a.newDashboard()
	ctrl.Mount(ctx)

	target := model.Product{ID: *id, Name: "Product " + strconv.Quote(*id)}
	for _, p := range ctrl.Snapshot().Products {
		if p.ID == *id {
			target = p
			break
		}
	}

	if err := table.Delete(ctx, target); err != nil {
		return err
	}
	fmt.Fprintln(a.out)
	a.render(ctrl, table)
	return nil
}

func (a *app) health(ctx context.Context) error {
	var failed bool

	proxy := client.NewHTTPClient(a.cfg.ProxyHTTP, 5*time.Second)
	resp, err := proxy.GetWithResponse("/healthz", client.RequestOptions{Context: ctx})
	switch {
	case err != nil:
		failed = true
		fmt.Fprintf(a.out, "proxy  DOWN  %v\n", err)
	case !resp.IsSuccess():
		failed = true
		fmt.Fprintf(a.out, "proxy  DOWN  %s\n", utils.ToJSONString(resp.Data))
	default:
		fmt.Fprintf(a.out, "proxy  UP    %s\n", utils.ToJSONString(resp.Data))
	}

	conn, err := grpc.NewClient(a.cfg.StoreGRPC,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(middleware_grpc.UnaryClientInterceptor()),
	)
	if err != nil {
		return fmt.Errorf("dial store: %w", err)
	}
	defer conn.Close()

	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	out, err := healthpb.NewHealthClient(conn).Check(checkCtx, &healthpb.HealthCheckRequest{})
	switch {
	case err != nil:
		failed = true
		fmt.Fprintf(a.out, "store  DOWN  %v\n", err)
	case out.GetStatus() != healthpb.HealthCheckResponse_SERVING:
		failed = true
		fmt.Fprintf(a.out, "store  DOWN  %s\n", out.GetStatus())
	default:
		fmt.Fprintf(a.out, "store  UP    %s\n", out.GetStatus())
	}

	if failed {
		return errors.New("unhealthy")
	}
	return nil
}

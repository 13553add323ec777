package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"supermarket-inventory/internal/config"
	"supermarket-inventory/internal/logger"
	"supermarket-inventory/internal/notify"
	"supermarket-inventory/internal/sdk"
	"supermarket-inventory/internal/tracer"
	"supermarket-inventory/internal/version"
	clilogger "supermarket-inventory/pkg/logger"
)

const usage = `Usage: dashboard [-v] [-proxy URL] <command> [flags]

Commands:
  list                       show the inventory dashboard
  watch   [-interval 5s]     refresh the dashboard periodically
  add     -name -price -quantity -category -image
  edit    -id [-name -price -quantity -category -image]
  delete  -id
  health                     check the proxy and the record store
  version
`

type app struct {
	cfg    *config.Config
	api    *sdk.Client
	center *notify.Center
	out    io.Writer
	log    *slog.Logger

	toasts <-chan notify.Event
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	global := flag.NewFlagSet("dashboard", flag.ContinueOnError)
	global.SetOutput(stderr)
	global.Usage = func() { fmt.Fprint(stderr, usage) }
	verbose := global.Bool("v", false, "verbose logging")
	proxyURL := global.String("proxy", "", "proxy base URL (default PROXY_HTTP)")
	if err := global.Parse(args); err != nil {
		return 2
	}
	if global.NArg() == 0 {
		global.Usage()
		return 2
	}

	logger.SetOutput(stderr)
	if *verbose {
		logger.SetLevel(slog.LevelDebug)
	} else {
		logger.SetLevel(slog.LevelError)
	}
	log := clilogger.New(stderr, *verbose)

	cfg := config.Instance()
	if *proxyURL != "" {
		cfg.ProxyHTTP = *proxyURL
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := tracer.Instance(ctx)
	if err != nil {
		log.Debug("tracing disabled", slog.String("error", err.Error()))
	}
	defer func() { _ = shutdownTracer(context.Background()) }()

	a := &app{
		cfg:    cfg,
		api:    sdk.New(cfg.ProxyHTTP, 0),
		center: notify.NewCenter(),
		out:    stdout,
		log:    log,
	}
	a.toasts = a.center.Subscribe(32)
	defer a.closeToasts()

	cmd, rest := global.Arg(0), global.Args()[1:]
	log.Debug("running command", slog.String("command", cmd), slog.String("proxy", cfg.ProxyHTTP))

	switch cmd {
	case "list":
		err = a.list(ctx)
	case "watch":
		err = a.watch(ctx, rest)
	case "add":
		err = a.add(ctx, rest)
	case "edit":
		err = a.edit(ctx, rest)
	case "delete":
		err = a.delete(ctx, rest)
	case "health":
		err = a.health(ctx)
	case "version":
		fmt.Fprintf(stdout, "%s (commit %s, built %s)\n", version.Version, version.Commit, version.BuildTime)
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n", cmd)
		global.Usage()
		return 2
	}

	switch {
	case err == nil:
		return 0
	case errors.Is(err, flag.ErrHelp), errors.Is(err, errUsage):
		return 2
	default:
		log.Error("command failed", slog.String("command", cmd), slog.String("error", err.Error()))
		return 1
	}
}

// flushToasts prints the toasts added since the last flush. The center
// publishes synchronously, so a toast raised by a finished call is already
// queued and is printed before whatever the command renders next.
func (a *app) flushToasts() {
	for {
		select {
		case ev, ok := <-a.toasts:
			if !ok {
				return
			}
			a.printToast(ev)
		default:
			return
		}
	}
}

func (a *app) printToast(ev notify.Event) {
	if ev.Kind != notify.ToastAdded {
		return
	}
	mark := "✔"
	if ev.Toast.Type == notify.TypeError {
		mark = "✖"
	}
	fmt.Fprintf(a.out, "%s %s\n", mark, ev.Toast.Message)
}

func (a *app) closeToasts() {
	a.center.Close()
	a.flushToasts()
}

// waitFor blocks until ch is closed, ctx ends or d passes.
func waitFor(ctx context.Context, ch <-chan struct{}, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ch:
	case <-ctx.Done():
	case <-t.C:
	}
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-autoform/components/choices"
	"github.com/goliatone/go-autoform/internal/store"
	"github.com/goliatone/go-autoform/pkg/form"
	"github.com/goliatone/go-autoform/pkg/httpform"
	"github.com/goliatone/go-autoform/pkg/renderers/html"
)

// ServeOptions holds the serve command flags.
type ServeOptions struct {
	Source   SourceOptions
	Addr     string
	Path     string
	Store    string
	Redirect string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the form over HTTP",
		Long: `Serve the form on --path: GET renders it, POST validates the submission
and either re-renders the form with inline errors or answers with the typed
values. Valid submissions are stored when --store is set.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cmd, rootOpts, opts)
		},
	}
	opts.Source.bind(cmd)
	cmd.Flags().StringVar(&opts.Addr, "addr", "127.0.0.1:8080", "listen address")
	cmd.Flags().StringVar(&opts.Path, "path", "/", "URL path of the form")
	cmd.Flags().StringVar(&opts.Store, "store", "", "SQLite database that receives submissions")
	cmd.Flags().StringVar(&opts.Redirect, "redirect", "", "redirect browsers here after a valid submission")
	return cmd
}

func runServe(ctx context.Context, cmd *cobra.Command, rootOpts *RootOptions, opts *ServeOptions) error {
	out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
	logger := rootOpts.Logger()

	var handlers []form.SubmitHandler
	if opts.Store != "" {
		db, err := store.Open(ctx, opts.Store, store.WithLogger(logger))
		if err != nil {
			return out.fail(ExitCommandError, ErrCodeStore, "could not open store", err)
		}
		defer db.Close()
		handlers = append(handlers, db)
	}

	handler, err := newServeHandler(ctx, rootOpts, opts, handlers...)
	if err != nil {
		return out.fail(ExitCommandError, ErrCodeLoad, "could not load form", err)
	}

	listener, err := net.Listen("tcp", opts.Addr)
	if err != nil {
		return out.fail(ExitCommandError, ErrCodeUsage, "could not listen", err)
	}
	server := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	url := fmt.Sprintf("http://%s%s", listener.Addr(), opts.Path)
	if err := out.Success("Serving form on "+url, map[string]any{"url": url}); err != nil {
		return err
	}
	logger.Info("serving form", "url", url, "store", opts.Store != "")

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve(listener)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return WrapExitError(ExitCommandError, "server failed", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	logger.Info("shutting down")
	if err := server.Shutdown(shutdownCtx); err != nil {
		return WrapExitError(ExitCommandError, "shutdown", err)
	}
	return nil
}

// newServeHandler mounts the form handler on opts.Path and the choice
// search endpoint under it.
func newServeHandler(ctx context.Context, rootOpts *RootOptions, opts *ServeOptions, handlers ...form.SubmitHandler) (http.Handler, error) {
	f, err := opts.Source.load(ctx, rootOpts)
	if err != nil {
		return nil, err
	}
	renderer, err := html.New()
	if err != nil {
		return nil, err
	}

	path := opts.Path
	if path == "" {
		path = "/"
	}
	formHandler, err := httpform.New(f.page, renderer,
		httpform.WithSubmitHandlers(handlers...),
		httpform.WithObservers(form.LogObserver(rootOpts.Logger())),
		httpform.WithLogger(rootOpts.Logger()),
		httpform.WithAction(path),
		httpform.WithSuccessRedirect(opts.Redirect),
	)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle(path, formHandler)
	pattern, err := choices.RegisterRoutes(mux, path, f.page)
	if err != nil {
		return nil, err
	}
	rootOpts.Logger().Debug("choices mounted", "form", f.page.ID, "path", pattern)
	return mux, nil
}

package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-autoform/pkg/render"
)

// RenderOptions holds the render command flags.
type RenderOptions struct {
	Source SourceOptions
	Output string
	Action string
	Method string
}

// NewRenderCommand creates the render command.
func NewRenderCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RenderOptions{}
	cmd := &cobra.Command{
		Use:           "render",
		Short:         "Render the form as HTML",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, rootOpts, opts)
		},
	}
	opts.Source.bind(cmd)
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().StringVar(&opts.Action, "action", "", "form action URL")
	cmd.Flags().StringVar(&opts.Method, "method", "", "form method (default POST)")
	return cmd
}

func runRender(cmd *cobra.Command, rootOpts *RootOptions, opts *RenderOptions) error {
	out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}

	f, err := opts.Source.load(cmd.Context(), rootOpts)
	if err != nil {
		return out.fail(ExitCommandError, ErrCodeLoad, "could not load form", err)
	}

	req := f.request
	req.Renderer = "html"
	req.RenderOptions = render.RenderOptions{Action: opts.Action, Method: opts.Method}
	html, err := f.orchestrator.Generate(cmd.Context(), req)
	if err != nil {
		return out.fail(ExitCommandError, ErrCodeRender, "could not render form", err)
	}

	if opts.Output == "" {
		if out.JSON() {
			return out.Success("", map[string]any{"form": f.page.ID, "html": string(html)})
		}
		_, err := cmd.OutOrStdout().Write(html)
		return err
	}

	if err := os.WriteFile(opts.Output, html, 0o644); err != nil {
		return out.fail(ExitCommandError, ErrCodeRender, "could not write output", err)
	}
	rootOpts.Logger().Info("form written", "form", f.page.ID, "path", opts.Output, "bytes", len(html))
	return out.Success(fmt.Sprintf("Form written to %s", opts.Output), map[string]any{"form": f.page.ID, "path": opts.Output})
}

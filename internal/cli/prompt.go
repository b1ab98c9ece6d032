package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-autoform/internal/store"
	"github.com/goliatone/go-autoform/pkg/form"
	"github.com/goliatone/go-autoform/pkg/render"
	"github.com/goliatone/go-autoform/pkg/renderers/tui"
)

// PromptOptions holds the prompt command flags.
type PromptOptions struct {
	Source       SourceOptions
	OutputFormat string
	MaxAttempts  int
	Store        string
}

// NewPromptCommand creates the prompt command.
func NewPromptCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PromptOptions{}
	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Fill the form in the terminal",
		Long: `Ask for every field in order, validating each answer as it is given.
The collected values are printed as JSON, form-encoded or plain text, and
stored as a submission when --store is set.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPrompt(cmd, rootOpts, opts)
		},
	}
	opts.Source.bind(cmd)
	cmd.Flags().StringVar(&opts.OutputFormat, "output-format", string(tui.OutputFormatJSON), "serialization of the answers (json|form|pretty)")
	cmd.Flags().IntVar(&opts.MaxAttempts, "max-attempts", 0, "give up after this many invalid answers per field (0 = unlimited)")
	cmd.Flags().StringVar(&opts.Store, "store", "", "SQLite database that receives the submission")
	return cmd
}

func runPrompt(cmd *cobra.Command, rootOpts *RootOptions, opts *PromptOptions) error {
	ctx := cmd.Context()
	out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}

	format, ok := tui.ParseOutputFormat(opts.OutputFormat)
	if !ok {
		return out.fail(ExitCommandError, ErrCodeUsage, fmt.Sprintf("invalid output format %q", opts.OutputFormat), nil)
	}

	f, err := opts.Source.load(ctx, rootOpts)
	if err != nil {
		return out.fail(ExitCommandError, ErrCodeLoad, "could not load form", err)
	}

	driver := rootOpts.promptDriver
	if driver == nil {
		driver = tui.NewSurveyDriver()
	}
	tuiOpts := []tui.Option{
		tui.WithPromptDriver(driver),
		tui.WithOutputFormat(format),
		tui.WithMaxAttempts(opts.MaxAttempts),
		tui.WithObservers(form.LogObserver(rootOpts.Logger())),
	}

	if opts.Store != "" {
		db, err := store.Open(ctx, opts.Store, store.WithLogger(rootOpts.Logger()))
		if err != nil {
			return out.fail(ExitCommandError, ErrCodeStore, "could not open store", err)
		}
		defer db.Close()
		tuiOpts = append(tuiOpts, tui.WithSubmitTransformer(submitTo(ctx, f.page, db, rootOpts)))
	}

	renderer, err := tui.New(tuiOpts...)
	if err != nil {
		return out.fail(ExitCommandError, ErrCodeUsage, "could not configure prompts", err)
	}

	answers, err := renderer.Render(ctx, f.page, render.RenderOptions{})
	if err != nil {
		return out.fail(ExitFailure, ErrCodeInvalidValues, "form not completed", err)
	}

	if out.JSON() {
		return out.Success("", map[string]any{"form": f.page.ID, "output": string(answers)})
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(answers))
	return err
}

// submitTo hands the collected answers to a mounted form so they are
// validated once more and stored through the regular submit path.
func submitTo(ctx context.Context, page render.Page, handler form.SubmitHandler, rootOpts *RootOptions) tui.SubmitTransformer {
	return func(values map[string]any) (map[string]any, error) {
		instance := form.New(page.Schema, page.Controls,
			form.WithID(page.ID),
			form.WithSubmitHandlers(handler),
			form.WithLogger(rootOpts.Logger()),
		)
		defer instance.Unmount()

		if err := instance.SetAll(values); err != nil {
			return nil, err
		}
		result, err := instance.Submit(ctx)
		if err != nil {
			return nil, err
		}
		if err := result.Err(); err != nil {
			return nil, err
		}
		return values, nil
	}
}

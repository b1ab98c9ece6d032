package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-autoform/internal/store"
)

// SubmissionsOptions holds the submissions command flags.
type SubmissionsOptions struct {
	Store  string
	FormID string
}

// NewSubmissionsCommand creates the submissions command.
func NewSubmissionsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SubmissionsOptions{}
	cmd := &cobra.Command{
		Use:           "submissions",
		Short:         "List stored submissions",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSubmissions(cmd, rootOpts, opts)
		},
	}
	cmd.Flags().StringVar(&opts.Store, "store", "", "SQLite database holding submissions")
	cmd.Flags().StringVar(&opts.FormID, "form", "", "only list submissions of this form")
	_ = cmd.MarkFlagRequired("store")
	return cmd
}

type submissionView struct {
	ID        string         `json:"id"`
	FormID    string         `json:"form_id"`
	CreatedAt string         `json:"created_at"`
	Values    map[string]any `json:"values"`
}

func runSubmissions(cmd *cobra.Command, rootOpts *RootOptions, opts *SubmissionsOptions) error {
	ctx := cmd.Context()
	out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}

	db, err := store.Open(ctx, opts.Store, store.WithLogger(rootOpts.Logger()))
	if err != nil {
		return out.fail(ExitCommandError, ErrCodeStore, "could not open store", err)
	}
	defer db.Close()

	records, err := db.List(ctx, opts.FormID)
	if err != nil {
		return out.fail(ExitCommandError, ErrCodeStore, "could not list submissions", err)
	}

	views := make([]submissionView, 0, len(records))
	var text strings.Builder
	fmt.Fprintf(&text, "%d submission(s)", len(records))
	for _, record := range records {
		view := submissionView{
			ID:        record.ID,
			FormID:    record.FormID,
			CreatedAt: record.CreatedAt.UTC().Format(time.RFC3339),
			Values:    record.Values,
		}
		views = append(views, view)

		payload, err := json.Marshal(view.Values)
		if err != nil {
			return out.fail(ExitCommandError, ErrCodeStore, "could not encode submission", err)
		}
		fmt.Fprintf(&text, "\n  %s  %s  %s  %s", view.CreatedAt, view.FormID, view.ID, payload)
	}
	return out.Success(text.String(), map[string]any{"submissions": views})
}

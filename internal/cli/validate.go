package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-autoform/pkg/schema"
	"github.com/goliatone/go-autoform/pkg/validation"
)

// ValidateOptions holds the validate command flags.
type ValidateOptions struct {
	Source SourceOptions
	Values string
	Set    []string
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{}
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a schema and configuration, and optionally a set of values",
		Long: `Load the schema and field configuration and report problems with either.

With --values (a JSON object, "-" for stdin) or --set name=value pairs the
values are validated against the schema and the typed result is printed.
--set values arrive as strings, the same way a browser posts a form;
"true" and "false" are read as booleans for boolean fields.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, rootOpts, opts)
		},
	}
	opts.Source.bind(cmd)
	cmd.Flags().StringVar(&opts.Values, "values", "", `JSON object with the values to validate ("-" reads stdin)`)
	cmd.Flags().StringArrayVar(&opts.Set, "set", nil, "name=value pair to validate (repeatable)")
	return cmd
}

func runValidate(cmd *cobra.Command, rootOpts *RootOptions, opts *ValidateOptions) error {
	out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}

	f, err := opts.Source.load(cmd.Context(), rootOpts)
	if err != nil {
		return out.fail(ExitCommandError, ErrCodeLoad, "could not load form", err)
	}

	values, err := readValues(cmd.InOrStdin(), opts.Values, opts.Set)
	if err != nil {
		return out.fail(ExitCommandError, ErrCodeUsage, "could not read values", err)
	}
	if values == nil {
		return out.Success(
			fmt.Sprintf("✓ schema and configuration valid (%d fields)", len(f.page.Controls)),
			map[string]any{"form": f.page.ID, "fields": f.page.FieldNames()},
		)
	}

	setBooleans(f.page.Schema, values, opts.Set)

	result := validation.Validate(f.page.Schema, values)
	rootOpts.Logger().Debug("values validated", "form", f.page.ID, "valid", result.Valid(), "errors", len(result.Errors))
	if !result.Valid() {
		details := make([]string, 0, len(result.Errors))
		for _, issue := range result.Errors.Issues() {
			details = append(details, fmt.Sprintf("%s: %s", issue.Field, issue.Message))
		}
		message := fmt.Sprintf("%d field(s) failed validation", len(result.Errors))
		if err := out.Error(ErrCodeInvalidValues, message, details, result.Errors.Messages()); err != nil {
			return err
		}
		return NewExitError(ExitFailure, message)
	}

	exported := schema.ExportValues(result.Values)
	var text strings.Builder
	text.WriteString("✓ values valid")
	for _, name := range f.page.Schema.Names() {
		if value, ok := exported[name]; ok {
			fmt.Fprintf(&text, "\n  %s=%v", name, value)
		}
	}
	return out.Success(text.String(), map[string]any{"values": exported})
}

// readValues merges a JSON document with --set pairs; --set wins. It returns
// nil when neither was given.
func readValues(stdin io.Reader, source string, pairs []string) (map[string]any, error) {
	if source == "" && len(pairs) == 0 {
		return nil, nil
	}
	values := map[string]any{}
	if source != "" {
		var (
			data []byte
			err  error
		)
		if source == "-" {
			data, err = io.ReadAll(stdin)
		} else {
			data, err = os.ReadFile(source)
		}
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(data, &values); err != nil {
			return nil, fmt.Errorf("decode values: %w", err)
		}
		// A null document decodes to a nil map.
		if values == nil {
			values = map[string]any{}
		}
	}
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("invalid --set %q: expected name=value", pair)
		}
		values[strings.TrimSpace(name)] = value
	}
	return values, nil
}

// setBooleans turns --set answers for boolean fields into booleans, matching
// how checkbox posts are read.
func setBooleans(s *schema.Schema, values map[string]any, pairs []string) {
	for _, pair := range pairs {
		name, _, _ := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		field, ok := s.Field(name)
		if !ok || field.Kind != schema.KindBoolean {
			continue
		}
		raw, _ := values[name].(string)
		if b, err := strconv.ParseBool(strings.TrimSpace(raw)); err == nil {
			values[name] = b
		}
	}
}

package commands

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/modelspec/internal/cli/output"
	"github.com/spf13/cobra"
)

// ValidateOptions holds options for the validate command.
type ValidateOptions struct {
	Watch bool
}

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	opts := &ValidateOptions{}
	cmd := &cobra.Command{
		Use:   "validate [paths...]",
		Short: "Validate model definitions and environments",
		Long: `Validate model definition and model environment documents.

Files may be YAML or JSON. Directories are searched recursively. A
definition and an environment that declare the same name and version are
validated together, which also checks that they agree on the phases the
model implements.

Output adapts to environment:
  - Terminal: Styled output with colors
  - Piped/Scripted: Markdown format
  - JSON: Machine-readable format

Exits non-zero when any document fails validation.`,
		Example: `  # Validate every document under the current directory
  modelspec validate

  # Validate a definition and its environment
  modelspec validate churn.def.yaml churn.env.yaml

  # Stop at the first error in each document
  modelspec validate --policy fail-fast ./models

  # Record results in the history database
  modelspec validate --record ./models

  # Re-validate whenever a document changes
  modelspec validate --watch ./models`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = []string{"."}
			}
			return runValidate(cmd, args, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Re-run validation when documents change")

	return cmd
}

func runValidate(cmd *cobra.Command, paths []string, opts *ValidateOptions) error {
	cc := NewCommandContext(cmd)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if opts.Watch {
		return watchValidate(ctx, cc, paths)
	}

	failed, err := validateOnce(ctx, cc, paths)
	if err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of the validated models failed", failed)
	}
	return nil
}

// validateOnce runs one validation pass, renders it and records it when
// configured. It returns the number of failed units.
func validateOnce(ctx context.Context, cc *CommandContext, paths []string) (int, error) {
	results, err := runValidation(ctx, cc, paths)
	if err != nil {
		return 0, err
	}

	if cc.Cfg.Record {
		if err := recordResults(ctx, cc, results); err != nil {
			cc.Logger.Warn("failed to record validation history", "error", err)
			cc.Renderer.Warning(fmt.Sprintf("could not record history: %v", err))
		}
	}

	if err := renderValidation(cc.Renderer, results); err != nil {
		return 0, err
	}
	return summarize(results).Failed, nil
}

func renderValidation(r *output.Renderer, results []*unitResult) error {
	summary := summarize(results)

	if r.EffectiveMode() == output.ModeJSON {
		out := output.ValidateOutput{
			Units: make([]output.UnitResult, 0, len(results)),
			Summary: output.ValidateSummary{
				Units:  summary.Units,
				Passed: summary.Passed,
				Failed: summary.Failed,
				Errors: summary.Errors,
			},
		}
		for _, res := range results {
			out.Units = append(out.Units, output.UnitResult{
				Label:   res.Label,
				Name:    res.Unit.Name(),
				Version: res.Unit.Version(),
				Files:   res.Files,
				Status:  string(res.status()),
				Phases:  res.phases(),
				Errors:  errorInfos(res),
				RunID:   res.RunID,
			})
		}
		return r.JSON(out)
	}

	r.Header(1, "Validation")
	for _, res := range results {
		if res.passed() {
			detail := shortPaths(res.Files)
			if phases := res.phases(); len(phases) > 0 {
				detail += " [" + strings.Join(phases, ", ") + "]"
			}
			r.StatusLine(res.Label, output.StatusOK, detail)
			continue
		}

		r.StatusLine(res.Label, output.StatusFailed, pluralize(res.errorCount(), "error"))
		renderErrors(r, res)
	}

	r.Println("")
	line := fmt.Sprintf("Summary: %s, %d passed, %d failed, %s",
		pluralize(summary.Units, "model"), summary.Passed, summary.Failed, pluralize(summary.Errors, "error"))
	if summary.Failed > 0 {
		r.Println(r.Styles().Error.Render(line))
	} else {
		r.Println(r.Styles().Success.Render(line))
	}
	return nil
}

// renderErrors writes the errors of one failed result as a table.
func renderErrors(r *output.Renderer, res *unitResult) {
	infos := errorInfos(res)
	rows := make([][]string, 0, len(infos))
	for _, e := range infos {
		path := e.Path
		if path == "" {
			path = "-"
		}
		file := "-"
		if e.File != "" {
			file = filepath.Base(e.File)
		}
		rows = append(rows, []string{e.Kind, file, path, e.Message})
	}
	r.Println("")
	r.Table([]string{"Kind", "File", "Path", "Message"}, rows)
	r.Println("")
}

func shortPaths(paths []string) string {
	names := make([]string, len(paths))
	for i, p := range paths {
		names[i] = filepath.Base(p)
	}
	return strings.Join(names, ", ")
}

func pluralize(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

package commands

import (
	"fmt"
	"strconv"
	"time"

	"github.com/leapstack-labs/modelspec/internal/cli/output"
	"github.com/leapstack-labs/modelspec/internal/state"
	"github.com/spf13/cobra"
)

// HistoryOptions holds options for the history command.
type HistoryOptions struct {
	Limit int
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand() *cobra.Command {
	opts := &HistoryOptions{}
	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show recorded validation runs",
		Long: `List validation runs recorded with validate --record, most recent first.

Pass a run ID, or a unique prefix of one, to show the errors of that run.`,
		Example: `  # Recent runs
  modelspec history

  # Last 5 runs as JSON
  modelspec history --limit 5 -o json

  # Errors of one run
  modelspec history 3f2a9c1e`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return runHistoryShow(cmd, args[0])
			}
			return runHistoryList(cmd, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "Maximum number of runs to show (0 for all)")

	return cmd
}

func runHistoryList(cmd *cobra.Command, opts *HistoryOptions) error {
	cc := NewCommandContext(cmd)
	r := cc.Renderer

	store, err := cc.OpenStore()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	runs, err := store.ListRuns(cmd.Context(), opts.Limit)
	if err != nil {
		return err
	}

	if r.EffectiveMode() == output.ModeJSON {
		out := output.HistoryOutput{Runs: make([]output.RunInfo, 0, len(runs))}
		for _, run := range runs {
			out.Runs = append(out.Runs, runInfo(run))
		}
		return r.JSON(out)
	}

	r.Header(1, fmt.Sprintf("Validation history (%d runs)", len(runs)))
	if len(runs) == 0 {
		r.Muted("No runs recorded. Use validate --record to record runs.")
		return nil
	}

	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			shortID(run.ID),
			run.Label,
			string(run.Status),
			strconv.Itoa(run.ErrorCount),
			shortPaths(run.Files),
			run.StartedAt.Local().Format(time.DateTime),
			run.Duration().Round(time.Millisecond).String(),
		})
	}
	r.Table([]string{"ID", "Model", "Status", "Errors", "Files", "Started", "Duration"}, rows)
	return nil
}

func runHistoryShow(cmd *cobra.Command, id string) error {
	cc := NewCommandContext(cmd)
	r := cc.Renderer

	store, err := cc.OpenStore()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	run, err := store.GetRun(cmd.Context(), id)
	if err != nil {
		return err
	}

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(runInfo(run))
	}

	r.Header(1, fmt.Sprintf("Run %s", run.ID))
	if r.EffectiveMode() == output.ModeMarkdown {
		r.Println(output.FormatKeyValue("Model", run.Label))
		r.Println(output.FormatKeyValue("Status", string(run.Status)))
		r.Println(output.FormatKeyValue("Policy", run.Policy))
		r.Println(output.FormatKeyValue("Files", shortPaths(run.Files)))
		r.Println(output.FormatKeyValue("Started", run.StartedAt.Local().Format(time.DateTime)))
		r.Println("")
	} else {
		s := r.Styles()
		status := s.Success.Render(string(run.Status))
		if run.Status != state.RunStatusPassed {
			status = s.Error.Render(string(run.Status))
		}
		r.Printf("%s %s\n", s.Muted.Render("Model:  "), s.Path.Render(run.Label))
		r.Printf("%s %s\n", s.Muted.Render("Status: "), status)
		r.Printf("%s %s\n", s.Muted.Render("Policy: "), run.Policy)
		r.Printf("%s %s\n", s.Muted.Render("Files:  "), shortPaths(run.Files))
		r.Printf("%s %s\n\n", s.Muted.Render("Started:"), run.StartedAt.Local().Format(time.DateTime))
	}

	if len(run.Errors) == 0 {
		r.Success("No errors")
		return nil
	}
	rows := make([][]string, 0, len(run.Errors))
	for _, e := range run.Errors {
		path := e.Path
		if path == "" {
			path = "-"
		}
		rows = append(rows, []string{e.Kind, path, e.Message})
	}
	r.Table([]string{"Kind", "Path", "Message"}, rows)
	return nil
}

func runInfo(run *state.Run) output.RunInfo {
	info := output.RunInfo{
		ID:         run.ID,
		Label:      run.Label,
		Status:     string(run.Status),
		Files:      run.Files,
		ErrorCount: run.ErrorCount,
		StartedAt:  run.StartedAt,
		Duration:   run.Duration().String(),
	}
	if info.Files == nil {
		info.Files = []string{}
	}
	for _, e := range run.Errors {
		info.Errors = append(info.Errors, output.ErrorInfo{
			Kind:     e.Kind,
			Document: e.Document,
			Path:     e.Path,
			Message:  e.Message,
		})
	}
	return info
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

package commands

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/modelspec/internal/cli/output"
	"github.com/leapstack-labs/modelspec/internal/document"
	"github.com/leapstack-labs/modelspec/internal/state"
	"github.com/leapstack-labs/modelspec/pkg/model"
	"github.com/leapstack-labs/modelspec/pkg/validate"
)

// unitResult is the outcome of validating one unit, or of failing to load
// one file.
type unitResult struct {
	Unit        document.Unit
	Label       string
	Files       []string
	Definition  *model.Definition
	Environment *model.Environment
	Errors      validate.ErrorList
	LoadErr     error
	StartedAt   time.Time
	FinishedAt  time.Time
	RunID       string
}

func (u *unitResult) passed() bool {
	return u.LoadErr == nil && len(u.Errors) == 0
}

func (u *unitResult) status() state.RunStatus {
	switch {
	case u.LoadErr != nil:
		return state.RunStatusError
	case len(u.Errors) > 0:
		return state.RunStatusFailed
	}
	return state.RunStatusPassed
}

// errorCount counts a load failure as one error.
func (u *unitResult) errorCount() int {
	if u.LoadErr != nil {
		return 1
	}
	return len(u.Errors)
}

// phases lists the phases the validated documents declare.
func (u *unitResult) phases() []string {
	var out []string
	for _, p := range model.Phases {
		if (u.Environment != nil && u.Environment.Has(p)) || (u.Definition != nil && u.Definition.Has(p)) {
			out = append(out, string(p))
		}
	}
	return out
}

// fileFor returns the file an error was found in.
func (u *unitResult) fileFor(e *validate.Error) string {
	switch {
	case e.Document == validate.DefinitionDocument && u.Unit.Definition != nil:
		return u.Unit.Definition.Path
	case e.Document == validate.EnvironmentDocument && u.Unit.Environment != nil:
		return u.Unit.Environment.Path
	case len(u.Files) == 1:
		return u.Files[0]
	}
	return ""
}

// validationSummary totals a set of results.
type validationSummary struct {
	Units, Passed, Failed, Errors int
}

func summarize(results []*unitResult) validationSummary {
	s := validationSummary{Units: len(results)}
	for _, res := range results {
		if res.passed() {
			s.Passed++
		} else {
			s.Failed++
		}
		s.Errors += res.errorCount()
	}
	return s
}

// runValidation expands paths, loads every document, pairs definitions with
// environments and validates each unit. Loading and validation run
// concurrently; results keep a stable order.
func runValidation(ctx context.Context, cc *CommandContext, paths []string) ([]*unitResult, error) {
	files, err := document.Expand(paths)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no model documents found in %s", strings.Join(paths, ", "))
	}
	cc.Logger.Debug("loading documents", "files", len(files))

	loader := cc.Loader()
	docs := make([]*document.Document, len(files))
	loadErrs := make([]error, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, f := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			docs[i], loadErrs[i] = loader.Load(f)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var loaded []*document.Document
	var results []*unitResult
	var failed []*unitResult
	for i, doc := range docs {
		if loadErrs[i] != nil {
			now := time.Now().UTC()
			failed = append(failed, &unitResult{
				Label:      files[i],
				Files:      []string{files[i]},
				LoadErr:    loadErrs[i],
				StartedAt:  now,
				FinishedAt: now,
			})
			continue
		}
		loaded = append(loaded, doc)
	}
	for _, u := range document.Pair(loaded) {
		results = append(results, &unitResult{Unit: u, Label: u.Label(), Files: u.Paths()})
	}

	v := cc.Validator()
	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, res := range results {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			validateUnit(v, res)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return append(results, failed...), nil
}

// validateUnit validates a pair together, or a lone document on its own.
func validateUnit(v *validate.Validator, res *unitResult) {
	res.StartedAt = time.Now().UTC()
	defer func() { res.FinishedAt = time.Now().UTC() }()

	u := res.Unit
	var err error
	switch {
	case u.Definition != nil && u.Environment != nil:
		res.Definition, res.Environment, err = v.Pair(u.Definition.Definition, u.Environment.Environment)
	case u.Environment != nil:
		res.Environment, err = v.Environment(u.Environment.Environment)
	case u.Definition != nil:
		res.Definition, err = v.Definition(u.Definition.Definition)
	default:
		err = errors.New("empty validation unit")
	}
	if err == nil {
		return
	}
	if errs := validate.Errors(err); errs != nil {
		res.Errors = errs
		return
	}
	res.LoadErr = err
}

// recordResults stores every result in the history database.
func recordResults(ctx context.Context, cc *CommandContext, results []*unitResult) error {
	store, err := cc.OpenStore()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	policy := cc.Cfg.ValidationPolicy().String()
	for _, res := range results {
		run := &state.Run{
			Label:      res.Label,
			Name:       res.Unit.Name(),
			Version:    res.Unit.Version(),
			Policy:     policy,
			Files:      res.Files,
			Status:     res.status(),
			StartedAt:  res.StartedAt,
			FinishedAt: res.FinishedAt,
		}
		for _, e := range errorInfos(res) {
			run.Errors = append(run.Errors, state.RunError{
				Kind:     e.Kind,
				Document: e.Document,
				Path:     e.Path,
				Message:  e.Message,
			})
		}
		if err := store.RecordRun(ctx, run); err != nil {
			return err
		}
		res.RunID = run.ID
	}
	return nil
}

// loadErrorKind labels errors that stop a document from being validated.
const loadErrorKind = "LoadError"

func errorInfos(res *unitResult) []output.ErrorInfo {
	if res.LoadErr != nil {
		return []output.ErrorInfo{{
			Kind:    loadErrorKind,
			File:    res.Files[0],
			Message: loadMessage(res.LoadErr),
		}}
	}
	infos := make([]output.ErrorInfo, 0, len(res.Errors))
	for _, e := range res.Errors {
		infos = append(infos, output.ErrorInfo{
			Kind:     string(e.Kind),
			Document: string(e.Document),
			File:     res.fileFor(e),
			Path:     e.Path.String(),
			Message:  e.Message,
		})
	}
	return infos
}

// loadMessage strips the file path a ParseError already carries.
func loadMessage(err error) string {
	var pe *document.ParseError
	if errors.As(err, &pe) {
		return pe.Err.Error()
	}
	return err.Error()
}

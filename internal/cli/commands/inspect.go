package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/leapstack-labs/modelspec/internal/cli/output"
	"github.com/leapstack-labs/modelspec/internal/document"
	"github.com/leapstack-labs/modelspec/pkg/model"
	"github.com/leapstack-labs/modelspec/pkg/spec"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// InspectOptions holds options for the inspect command.
type InspectOptions struct {
	Definition string
	Normalized bool
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand() *cobra.Command {
	opts := &InspectOptions{}
	cmd := &cobra.Command{
		Use:   "inspect <environment>",
		Short: "Show the resolved field bindings of a model environment",
		Long: `Validate a model environment and show, for every configured phase,
which column each tuple field is read from or written to.

With --definition the environment is validated against the model
definition it binds, and each phase shows the class implementing it.`,
		Example: `  # Show bindings for an environment
  modelspec inspect churn.env.yaml

  # Include the phase classes from the definition
  modelspec inspect churn.env.yaml --definition churn.def.yaml

  # Bindings as JSON
  modelspec inspect churn.env.yaml -o json

  # The environment with every default filled in
  modelspec inspect churn.env.yaml --normalized`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Definition, "definition", "d", "", "Model definition to validate the environment against")
	cmd.Flags().BoolVar(&opts.Normalized, "normalized", false, "Print the validated environment document with defaults applied")

	return cmd
}

func runInspect(cmd *cobra.Command, envPath string, opts *InspectOptions) error {
	cc := NewCommandContext(cmd)
	r := cc.Renderer
	loader := cc.Loader()

	envDoc, err := loader.Load(envPath)
	if err != nil {
		return err
	}
	if envDoc.Kind != document.KindEnvironment {
		return fmt.Errorf("%s is a %s, expected a model environment", envPath, envDoc.Kind)
	}
	unit := document.Unit{Environment: envDoc}

	if opts.Definition != "" {
		defDoc, err := loader.Load(opts.Definition)
		if err != nil {
			return err
		}
		if defDoc.Kind != document.KindDefinition {
			return fmt.Errorf("%s is a %s, expected a model definition", opts.Definition, defDoc.Kind)
		}
		unit.Definition = defDoc
	}

	res := &unitResult{Unit: unit, Label: unit.Label(), Files: unit.Paths()}
	validateUnit(cc.Validator(), res)
	if !res.passed() {
		if r.EffectiveMode() == output.ModeJSON {
			if err := renderValidation(r, []*unitResult{res}); err != nil {
				return err
			}
		} else {
			r.StatusLine(res.Label, output.StatusFailed, pluralize(res.errorCount(), "error"))
			renderErrors(r, res)
		}
		return fmt.Errorf("%s failed validation", res.Label)
	}

	if opts.Normalized {
		return renderNormalized(r, res.Environment)
	}
	return renderInspect(r, res.Environment, res.Definition)
}

// renderNormalized writes the environment back out in document form.
func renderNormalized(r *output.Renderer, env *model.Environment) error {
	doc := env.Document()
	if r.EffectiveMode() == output.ModeJSON {
		tree, err := spec.Tree(doc)
		if err != nil {
			return err
		}
		return r.JSON(tree)
	}

	raw, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode environment: %w", err)
	}
	if r.EffectiveMode() == output.ModeMarkdown {
		r.Println(output.FormatCodeBlock("yaml", string(raw)))
		return nil
	}
	r.Printf("%s", raw)
	return nil
}

func renderInspect(r *output.Renderer, env *model.Environment, def *model.Definition) error {
	phases := inspectPhases(env, def)
	titleCaser := cases.Title(language.English)

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(output.InspectOutput{
			Name:    env.Name,
			Version: env.Version,
			Phases:  phases,
		})
	}

	r.Header(1, fmt.Sprintf("%s@%s", env.Name, env.Version))
	if len(phases) == 0 {
		r.Muted("No phases configured")
		return nil
	}

	for _, p := range phases {
		r.Header(2, titleCaser.String(p.Phase))
		if p.Class != "" {
			if r.EffectiveMode() == output.ModeMarkdown {
				r.Println(output.FormatKeyValue("Class", p.Class))
				r.Println("")
			} else {
				r.Printf("%s %s\n\n", r.Styles().Muted.Render("Class:"), r.Styles().Bold.Render(p.Class))
			}
		}

		r.Table([]string{"Input field", "Spec", "Table", "Column", "Read"}, bindingRows(p.Inputs))
		r.Println("")
		if len(p.Outputs) > 0 {
			r.Table([]string{"Output field", "Spec", "Table", "Column", "Schema"}, bindingRows(p.Outputs))
			r.Println("")
		}
		if len(p.KVStores) > 0 {
			rows := make([][]string, 0, len(p.KVStores))
			for _, s := range p.KVStores {
				rows = append(rows, []string{s.Name, s.StoreType, strconv.Itoa(s.Properties)})
			}
			r.Table([]string{"KV store", "Type", "Properties"}, rows)
			r.Println("")
		}
	}
	return nil
}

// inspectPhases collects the bindings of every configured phase in
// execution order.
func inspectPhases(env *model.Environment, def *model.Definition) []output.PhaseBindings {
	var phases []output.PhaseBindings
	for _, p := range model.Phases {
		b, ok := env.Bindings(p)
		if !ok {
			continue
		}
		pb := output.PhaseBindings{
			Phase:    string(p),
			Class:    phaseClass(def, p),
			Inputs:   make([]output.BindingInfo, 0, len(b.Inputs)),
			Outputs:  make([]output.BindingInfo, 0, len(b.Outputs)),
			KVStores: storeInfos(phaseStores(env, p)),
		}
		for _, field := range b.InputFields() {
			d := b.Inputs[field]
			pb.Inputs = append(pb.Inputs, output.BindingInfo{
				Field:    field,
				Spec:     d.Source,
				TableURI: d.TableURI,
				Column:   d.Column.ColumnName(),
				Detail:   readDetail(d.Column.ReadOptions()),
			})
		}
		for _, field := range b.OutputFields() {
			d := b.Outputs[field]
			pb.Outputs = append(pb.Outputs, output.BindingInfo{
				Field:    field,
				Spec:     d.Sink,
				TableURI: d.TableURI,
				Column:   d.Column.ColumnName(),
				Detail:   schemaDetail(d.Column.SchemaSpec()),
			})
		}
		// The score output column is not a tuple field binding.
		if p == model.PhaseScore && env.Score != nil {
			out := env.Score.Output
			pb.Outputs = append(pb.Outputs, output.BindingInfo{
				Field:    "(score)",
				TableURI: out.TableURI,
				Column:   out.Column.ColumnName(),
				Detail:   schemaDetail(out.Column.SchemaSpec()),
			})
		}
		phases = append(phases, pb)
	}
	return phases
}

func phaseClass(def *model.Definition, p model.Phase) string {
	if def == nil {
		return ""
	}
	switch p {
	case model.PhasePrepare:
		return def.PreparerClass
	case model.PhaseTrain:
		return def.TrainerClass
	case model.PhaseScore:
		if def.Scorer != nil {
			return def.Scorer.PhaseClass
		}
	case model.PhaseEvaluate:
		return def.EvaluatorClass
	}
	return ""
}

func phaseStores(env *model.Environment, p model.Phase) []model.KVStore {
	switch p {
	case model.PhasePrepare:
		return env.Prepare.KVStores
	case model.PhaseTrain:
		return env.Train.KVStores
	case model.PhaseScore:
		return env.Score.KVStores
	case model.PhaseEvaluate:
		return env.Evaluate.KVStores
	}
	return nil
}

func storeInfos(stores []model.KVStore) []output.StoreInfo {
	if len(stores) == 0 {
		return nil
	}
	infos := make([]output.StoreInfo, len(stores))
	for i, s := range stores {
		infos[i] = output.StoreInfo{Name: s.Name, StoreType: string(s.Type), Properties: len(s.Properties)}
	}
	return infos
}

func bindingRows(bindings []output.BindingInfo) [][]string {
	rows := make([][]string, 0, len(bindings))
	for _, b := range bindings {
		spec := b.Spec
		if spec == "" {
			spec = "-"
		}
		rows = append(rows, []string{b.Field, spec, b.TableURI, b.Column, b.Detail})
	}
	return rows
}

func readDetail(o model.ReadOptions) string {
	parts := []string{fmt.Sprintf("versions=%d", o.MaxVersions)}
	if o.PageSize > 0 {
		parts = append(parts, fmt.Sprintf("page=%d", o.PageSize))
	}
	if o.Filter != nil {
		filter := "filter=" + string(o.Filter.FilterKind())
		if depth := model.FilterDepth(o.Filter); depth > 1 {
			filter += fmt.Sprintf("(depth=%d)", depth)
		}
		parts = append(parts, filter)
	}
	if o.Schema != nil {
		parts = append(parts, "schema="+schemaDetail(o.Schema))
	}
	return strings.Join(parts, " ")
}

func schemaDetail(s model.SchemaSpec) string {
	switch s := s.(type) {
	case nil:
		return "-"
	case model.GenericSchema:
		return "generic:" + s.Name
	case model.SpecificSchema:
		return "specific:" + s.ClassName
	default:
		return string(s.SchemaKind())
	}
}

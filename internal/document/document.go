// Package document reads model definition and model environment files from
// disk and decodes them into the raw records of package spec.
package document

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/modelspec/pkg/spec"
)

// Kind identifies which document a file holds.
type Kind string

// Document kinds. The values match the protocol_version prefixes.
const (
	KindDefinition  Kind = "model_definition"
	KindEnvironment Kind = "model_environment"
)

// Extensions lists the file extensions the loader reads.
var Extensions = []string{".yaml", ".yml", ".json"}

// ErrUnknownKind is returned when a file is neither a definition nor an
// environment.
var ErrUnknownKind = errors.New("cannot tell whether document is a model definition or a model environment")

// Document is one decoded file. Exactly one of Definition and Environment is
// set, according to Kind.
type Document struct {
	Path        string
	Kind        Kind
	Tree        map[string]any
	Definition  *spec.ModelDefinition
	Environment *spec.ModelEnvironment
}

// Name returns the model name declared by the document.
func (d *Document) Name() string {
	if d.Definition != nil {
		return d.Definition.Name
	}
	if d.Environment != nil {
		return d.Environment.Name
	}
	return ""
}

// Version returns the model version declared by the document.
func (d *Document) Version() string {
	if d.Definition != nil {
		return d.Definition.Version
	}
	if d.Environment != nil {
		return d.Environment.Version
	}
	return ""
}

// ParseError reports a file that could not be read or decoded.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Loader reads documents from the filesystem.
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a loader. A nil logger discards output.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Loader{logger: logger}
}

// Load reads and decodes a single file.
func (l *Loader) Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	doc, err := Parse(path, data)
	if err != nil {
		return nil, err
	}
	l.logger.Debug("loaded document",
		slog.String("path", path),
		slog.String("kind", string(doc.Kind)),
		slog.String("name", doc.Name()))
	return doc, nil
}

// Parse decodes file contents. JSON is read as YAML flow syntax.
func Parse(path string, data []byte) (*Document, error) {
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, &ParseError{Path: path, Err: fmt.Errorf("failed to parse: %w", err)}
	}
	if tree == nil {
		return nil, &ParseError{Path: path, Err: errors.New("document is empty")}
	}

	kind, err := Detect(tree)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	doc := &Document{Path: path, Kind: kind, Tree: tree}
	switch kind {
	case KindDefinition:
		doc.Definition, err = spec.DecodeDefinition(tree)
	case KindEnvironment:
		doc.Environment, err = spec.DecodeEnvironment(tree)
	}
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return doc, nil
}

// environmentKeys and definitionKeys are top-level keys that only appear in
// one of the two documents.
var (
	environmentKeys = []string{"prepare_environment", "train_environment", "score_environment", "evaluate_environment"}
	definitionKeys  = []string{"preparer_class", "trainer_class", "scorer_phase", "evaluator_class"}
)

// Detect determines the document kind. Phase keys decide when only one
// kind's keys are present, so a document with the wrong protocol_version
// still reaches the validator for that kind. Otherwise the
// protocol_version prefix decides.
func Detect(tree map[string]any) (Kind, error) {
	hasAny := func(keys []string) bool {
		for _, k := range keys {
			if _, ok := tree[k]; ok {
				return true
			}
		}
		return false
	}
	env, def := hasAny(environmentKeys), hasAny(definitionKeys)
	switch {
	case env && !def:
		return KindEnvironment, nil
	case def && !env:
		return KindDefinition, nil
	}

	if v, ok := tree["protocol_version"].(string); ok {
		switch {
		case strings.HasPrefix(v, string(KindDefinition)+"-"):
			return KindDefinition, nil
		case strings.HasPrefix(v, string(KindEnvironment)+"-"):
			return KindEnvironment, nil
		}
	}
	return "", ErrUnknownKind
}

// Expand replaces directories in paths with the document files they
// contain, recursively. Files named explicitly are kept regardless of
// extension. The result is sorted and free of duplicates.
func Expand(paths []string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	add := func(p string) {
		p = filepath.Clean(p)
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", p, err)
		}
		if !info.IsDir() {
			add(p)
			continue
		}
		err = filepath.WalkDir(p, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != p && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if HasExtension(path) {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk %s: %w", p, err)
		}
	}

	sort.Strings(out)
	return out, nil
}

// HasExtension reports whether path has one of the Extensions, ignoring case.
func HasExtension(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

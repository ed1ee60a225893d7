package artifact

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/okian/scorecast/internal/domain/features"
	"github.com/okian/scorecast/internal/domain/inference"
)

// Loader resolves an artifact and its feature schema from a source path.
type Loader interface {
	Load(ctx context.Context, path string) (*inference.Artifact, error)
	LoadSchema(ctx context.Context, path string) (json.RawMessage, error)
}

// Option applies a configuration option to the FileLoader.
type Option func(*FileLoader)

// WithFormulaEncoding makes loaded artifacts encode interactions with their
// declared formulas instead of the built-in encoder. Formulas are verified
// against the built-in encoder either way.
func WithFormulaEncoding(enabled bool) Option {
	return func(l *FileLoader) {
		l.formulaEncoding = enabled
	}
}

// FileLoader reads artifacts from the local filesystem.
type FileLoader struct {
	formulaEncoding bool
}

// NewFileLoader creates a FileLoader.
func NewFileLoader(opts ...Option) *FileLoader {
	l := &FileLoader{}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads, decodes and validates the artifact at path. The format is
// chosen by extension: .json, .yaml or .yml.
func (l *FileLoader) Load(ctx context.Context, path string) (*inference.Artifact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read artifact: %w", err)
	}
	f, err := Decode(data, formatOf(path))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return l.Build(f)
}

// Build turns a decoded File into an installable artifact.
func (l *FileLoader) Build(f *File) (*inference.Artifact, error) {
	if f.FormatVersion != FormatVersion {
		return nil, fmt.Errorf("%w: format_version %d", ErrUnsupportedFormat, f.FormatVersion)
	}

	pre, err := NewColumnTransformer(f.Preprocessor)
	if err != nil {
		return nil, err
	}
	scaler, err := NewStandardScaler(f.InteractionScaler)
	if err != nil {
		return nil, err
	}
	model, err := NewLinearRegressor(f.Model)
	if err != nil {
		return nil, err
	}
	if want := pre.Width() + len(features.InteractionColumns); model.Inputs() != want {
		return nil, fmt.Errorf("%w: model has %d coefficients, transforms produce %d",
			ErrInvalidArtifact, model.Inputs(), want)
	}

	a := &inference.Artifact{
		Preprocessor: pre,
		Scaler:       scaler,
		Model:        model,
		Version:      f.ModelInfo.Version,
		Name:         f.ModelInfo.Name,
	}

	if len(f.Interactions) > 0 {
		fs, err := NewFormulaSet(f.Interactions, f.Encodings)
		if err != nil {
			return nil, err
		}
		if err := fs.Verify(); err != nil {
			return nil, err
		}
		if l.formulaEncoding {
			a.Encoder = fs.Encode
		}
	}
	return a, nil
}

// LoadSchema returns the feature schema at path as JSON. YAML schemas are
// converted. An empty path yields the schema derived from the feature domains.
func (l *FileLoader) LoadSchema(ctx context.Context, path string) (json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if path == "" {
		return json.Marshal(features.DescribeSchema())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	switch formatOf(path) {
	case formatJSON:
		if !json.Valid(data) {
			return nil, fmt.Errorf("%w: schema %s is not valid JSON", ErrInvalidArtifact, filepath.Base(path))
		}
		return json.RawMessage(bytes.TrimSpace(data)), nil
	case formatYAML:
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("%w: schema: %v", ErrInvalidArtifact, err)
		}
		return json.Marshal(doc)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

const (
	formatJSON = "json"
	formatYAML = "yaml"
)

func formatOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return formatJSON
	case ".yaml", ".yml":
		return formatYAML
	default:
		return ""
	}
}

// Decode parses an artifact file strictly: unknown fields are rejected.
func Decode(data []byte, format string) (*File, error) {
	var f File
	switch format {
	case formatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&f); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidArtifact, err)
		}
	case formatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidArtifact, err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	return &f, nil
}

package artifact

import (
	"fmt"
	"math"
	"slices"

	"github.com/okian/scorecast/internal/domain/features"
)

// ColumnTransformer standard-scales numeric columns and one-hot encodes
// categorical columns. Output is every numeric column in declared order,
// followed by each categorical block in declared order.
type ColumnTransformer struct {
	numeric     []NumericColumn
	categorical []CategoricalColumn
	width       int
}

// NewColumnTransformer validates spec and builds the transformer.
func NewColumnTransformer(spec PreprocessorSpec) (*ColumnTransformer, error) {
	t := &ColumnTransformer{}
	seen := map[string]bool{}

	for _, c := range spec.Numeric {
		if _, ok := features.NumericDomains[c.Name]; !ok {
			return nil, fmt.Errorf("%w: numeric %q", ErrUnknownColumn, c.Name)
		}
		if err := checkScale(c.Name, c.Mean, c.Scale); err != nil {
			return nil, err
		}
		if seen[c.Name] {
			return nil, fmt.Errorf("%w: column %q declared twice", ErrInvalidArtifact, c.Name)
		}
		seen[c.Name] = true
		t.numeric = append(t.numeric, c)
	}

	for _, c := range spec.Categorical {
		if _, ok := features.CategoricalDomains[c.Name]; !ok {
			return nil, fmt.Errorf("%w: categorical %q", ErrUnknownColumn, c.Name)
		}
		if len(c.Categories) == 0 {
			return nil, fmt.Errorf("%w: column %q has no categories", ErrInvalidArtifact, c.Name)
		}
		if seen[c.Name] {
			return nil, fmt.Errorf("%w: column %q declared twice", ErrInvalidArtifact, c.Name)
		}
		switch c.HandleUnknown {
		case "":
			c.HandleUnknown = HandleUnknownError
		case HandleUnknownError, HandleUnknownIgnore:
		default:
			return nil, fmt.Errorf("%w: column %q handle_unknown %q", ErrInvalidArtifact, c.Name, c.HandleUnknown)
		}
		seen[c.Name] = true
		c.Categories = slices.Clone(c.Categories)
		t.categorical = append(t.categorical, c)
		t.width += len(c.Categories)
	}

	if len(seen) == 0 {
		return nil, fmt.Errorf("%w: preprocessor declares no columns", ErrInvalidArtifact)
	}
	t.width += len(t.numeric)
	return t, nil
}

// Width is the length of every Transform output.
func (t *ColumnTransformer) Width() int { return t.width }

// Transform encodes one row.
func (t *ColumnTransformer) Transform(r features.RawFeatures) ([]float64, error) {
	out := make([]float64, 0, t.width)
	for _, c := range t.numeric {
		v, _ := r.Numeric(c.Name)
		out = append(out, (v-c.Mean)/c.Scale)
	}
	for _, c := range t.categorical {
		v, _ := r.Categorical(c.Name)
		idx := slices.Index(c.Categories, v)
		if idx < 0 && c.HandleUnknown == HandleUnknownError {
			return nil, fmt.Errorf("%w: %s=%q", ErrUnknownCategory, c.Name, v)
		}
		for i := range c.Categories {
			if i == idx {
				out = append(out, 1)
			} else {
				out = append(out, 0)
			}
		}
	}
	return out, nil
}

// StandardScaler scales the interaction block. Its columns always equal
// features.InteractionColumns.
type StandardScaler struct {
	mean  []float64
	scale []float64
}

// NewStandardScaler validates spec against the interaction column order.
func NewStandardScaler(spec ScalerSpec) (*StandardScaler, error) {
	if !slices.Equal(spec.Columns, features.InteractionColumns) {
		return nil, fmt.Errorf("%w: interaction scaler columns %v, want %v",
			ErrInvalidArtifact, spec.Columns, features.InteractionColumns)
	}
	n := len(features.InteractionColumns)
	if len(spec.Mean) != n || len(spec.Scale) != n {
		return nil, fmt.Errorf("%w: interaction scaler needs %d means and scales", ErrInvalidArtifact, n)
	}
	for i, col := range spec.Columns {
		if err := checkScale(col, spec.Mean[i], spec.Scale[i]); err != nil {
			return nil, err
		}
	}
	return &StandardScaler{mean: slices.Clone(spec.Mean), scale: slices.Clone(spec.Scale)}, nil
}

// Transform scales f in InteractionColumns order.
func (s *StandardScaler) Transform(f features.InteractionFeatures) ([]float64, error) {
	v := f.Vector()
	for i := range v {
		v[i] = (v[i] - s.mean[i]) / s.scale[i]
	}
	return v, nil
}

func checkScale(name string, mean, scale float64) error {
	if math.IsNaN(mean) || math.IsInf(mean, 0) {
		return fmt.Errorf("%w: column %q mean is not finite", ErrInvalidArtifact, name)
	}
	if scale == 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
		return fmt.Errorf("%w: column %q scale must be finite and non-zero", ErrInvalidArtifact, name)
	}
	return nil
}

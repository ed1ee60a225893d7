package artifact

import (
	"fmt"
	"maps"
	"math"

	"github.com/google/cel-go/cel"

	"github.com/okian/scorecast/internal/domain/features"
)

// encodingsVar exposes ordinal encodings to expressions, e.g.
// sleep_hours * encodings.sleep_quality[sleep_quality].
const encodingsVar = "encodings"

const formulaTolerance = 1e-9

// FormulaSet evaluates interaction features from CEL expressions declared in
// the artifact. Programs are compiled once and safe for concurrent use.
type FormulaSet struct {
	programs  []cel.Program
	encodings map[string]Mapping
	levels    map[string]any
}

func newFormulaEnv() (*cel.Env, error) {
	opts := []cel.EnvOption{
		cel.Variable(encodingsVar, cel.MapType(cel.StringType, cel.MapType(cel.StringType, cel.DoubleType))),
	}
	for _, col := range features.NumericColumns {
		opts = append(opts, cel.Variable(col, cel.DoubleType))
	}
	for _, col := range features.CategoricalColumns {
		opts = append(opts, cel.Variable(col, cel.StringType))
	}
	return cel.NewEnv(opts...)
}

// NewFormulaSet compiles specs. They must name every interaction column, in
// order, and each must type-check to a double.
func NewFormulaSet(specs []FormulaSpec, encodings map[string]Mapping) (*FormulaSet, error) {
	if len(specs) != len(features.InteractionColumns) {
		return nil, fmt.Errorf("%w: %d interaction formulas, want %d",
			ErrInvalidArtifact, len(specs), len(features.InteractionColumns))
	}
	for col := range encodings {
		if _, ok := features.CategoricalDomains[col]; !ok {
			return nil, fmt.Errorf("%w: encoding for %q", ErrUnknownColumn, col)
		}
	}

	env, err := newFormulaEnv()
	if err != nil {
		return nil, fmt.Errorf("formula environment: %w", err)
	}

	fs := &FormulaSet{encodings: encodings, levels: make(map[string]any, len(encodings))}
	for col, m := range encodings {
		fs.levels[col] = map[string]float64(maps.Clone(m))
	}

	for i, spec := range specs {
		if spec.Name != features.InteractionColumns[i] {
			return nil, fmt.Errorf("%w: formula %d is %q, want %q",
				ErrInvalidArtifact, i, spec.Name, features.InteractionColumns[i])
		}
		ast, iss := env.Compile(spec.Expr)
		if iss != nil && iss.Err() != nil {
			return nil, fmt.Errorf("%w: formula %q: %v", ErrInvalidArtifact, spec.Name, iss.Err())
		}
		if !ast.OutputType().IsExactType(cel.DoubleType) {
			return nil, fmt.Errorf("%w: formula %q yields %v, want double",
				ErrInvalidArtifact, spec.Name, ast.OutputType())
		}
		prg, err := env.Program(ast)
		if err != nil {
			return nil, fmt.Errorf("%w: formula %q: %v", ErrInvalidArtifact, spec.Name, err)
		}
		fs.programs = append(fs.programs, prg)
	}
	return fs, nil
}

// Encode implements features.Encoder.
func (fs *FormulaSet) Encode(r features.RawFeatures) (features.InteractionFeatures, error) {
	vars := make(map[string]any, len(features.NumericColumns)+len(features.CategoricalColumns)+1)
	vars[encodingsVar] = fs.levels
	for _, col := range features.NumericColumns {
		vars[col], _ = r.Numeric(col)
	}
	for _, col := range features.CategoricalColumns {
		v, _ := r.Categorical(col)
		if m, ok := fs.encodings[col]; ok {
			if _, ok := m[v]; !ok {
				return features.InteractionFeatures{}, features.NewValidationError(col, v, "has no ordinal encoding")
			}
		}
		vars[col] = v
	}

	out := make([]float64, len(fs.programs))
	for i, prg := range fs.programs {
		val, _, err := prg.Eval(vars)
		if err != nil {
			return features.InteractionFeatures{}, fmt.Errorf("formula %q: %w", features.InteractionColumns[i], err)
		}
		f, ok := val.Value().(float64)
		if !ok {
			return features.InteractionFeatures{}, fmt.Errorf("formula %q returned %T", features.InteractionColumns[i], val.Value())
		}
		out[i] = f
	}
	return features.InteractionFeatures{
		StudyXSleep:       out[0],
		StudyXAttendance:  out[1],
		StudySquared:      out[2],
		SleepXQuality:     out[3],
		StudyXDifficulty:  out[4],
		AttendanceXMethod: out[5],
	}, nil
}

// Verify evaluates the formulas on a grid of valid students and compares the
// result with features.Encode.
func (fs *FormulaSet) Verify() error {
	for _, r := range probeGrid() {
		got, err := fs.Encode(r)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrFormulaMismatch, err)
		}
		want, err := features.Encode(r)
		if err != nil {
			return err
		}
		g, w := got.Vector(), want.Vector()
		for i := range w {
			if math.Abs(g[i]-w[i]) > formulaTolerance*math.Max(1, math.Abs(w[i])) {
				return fmt.Errorf("%w: %s = %v, want %v for %+v",
					ErrFormulaMismatch, features.InteractionColumns[i], g[i], w[i], r)
			}
		}
	}
	return nil
}

// probeGrid crosses the bounds and midpoint of every numeric range with every
// value of the ordinal-encoded columns.
func probeGrid() []features.RawFeatures {
	points := func(col string) []float64 {
		d := features.NumericDomains[col]
		return []float64{d.Min, (d.Min + d.Max) / 2, d.Max}
	}
	var grid []features.RawFeatures
	for _, study := range points(features.StudyHours) {
		for _, sleep := range points(features.SleepHours) {
			for _, att := range points(features.ClassAttendance) {
				for _, q := range features.CategoricalDomains[features.SleepQuality] {
					for _, d := range features.CategoricalDomains[features.ExamDifficulty] {
						for _, m := range features.CategoricalDomains[features.StudyMethod] {
							r := features.Example()
							r.StudyHours, r.SleepHours, r.ClassAttendance = study, sleep, att
							r.SleepQuality, r.ExamDifficulty, r.StudyMethod = q, d, m
							grid = append(grid, r)
						}
					}
				}
			}
		}
	}
	return grid
}

// Package artifact loads trained model artifacts from a documented, versioned
// file format and provides the transforms and regressor they describe.
package artifact

// FormatVersion is the only artifact layout this package reads.
const FormatVersion = 1

// Unknown-category handling for one-hot blocks.
const (
	HandleUnknownError  = "error"
	HandleUnknownIgnore = "ignore"
)

// ModelTypeLinear is a plain linear regression.
const ModelTypeLinear = "linear"

// File is the on-disk artifact, in JSON or YAML.
type File struct {
	FormatVersion     int                `json:"format_version" yaml:"format_version"`
	ModelInfo         ModelInfo          `json:"model_info" yaml:"model_info"`
	Preprocessor      PreprocessorSpec   `json:"preprocessor" yaml:"preprocessor"`
	InteractionScaler ScalerSpec         `json:"interaction_scaler" yaml:"interaction_scaler"`
	Interactions      []FormulaSpec      `json:"interactions,omitempty" yaml:"interactions,omitempty"`
	Encodings         map[string]Mapping `json:"encodings,omitempty" yaml:"encodings,omitempty"`
	Model             ModelSpec          `json:"model" yaml:"model"`
}

// Mapping is an ordinal encoding of category to level.
type Mapping map[string]float64

// ModelInfo is descriptive metadata.
type ModelInfo struct {
	Version   string             `json:"version" yaml:"version"`
	Name      string             `json:"name,omitempty" yaml:"name,omitempty"`
	TrainedAt string             `json:"trained_at,omitempty" yaml:"trained_at,omitempty"`
	Metrics   map[string]float64 `json:"metrics,omitempty" yaml:"metrics,omitempty"`
}

// PreprocessorSpec describes the primary column transformer.
type PreprocessorSpec struct {
	Numeric     []NumericColumn     `json:"numeric" yaml:"numeric"`
	Categorical []CategoricalColumn `json:"categorical" yaml:"categorical"`
}

// NumericColumn is standard scaled: (x - mean) / scale.
type NumericColumn struct {
	Name  string  `json:"name" yaml:"name"`
	Mean  float64 `json:"mean" yaml:"mean"`
	Scale float64 `json:"scale" yaml:"scale"`
}

// CategoricalColumn is one-hot encoded in the order of Categories.
type CategoricalColumn struct {
	Name          string   `json:"name" yaml:"name"`
	Categories    []string `json:"categories" yaml:"categories"`
	HandleUnknown string   `json:"handle_unknown,omitempty" yaml:"handle_unknown,omitempty"`
}

// ScalerSpec is a fitted standard scaler over named columns.
type ScalerSpec struct {
	Columns []string  `json:"columns" yaml:"columns"`
	Mean    []float64 `json:"mean" yaml:"mean"`
	Scale   []float64 `json:"scale" yaml:"scale"`
}

// FormulaSpec declares one interaction feature as a CEL expression.
type FormulaSpec struct {
	Name string `json:"name" yaml:"name"`
	Expr string `json:"expr" yaml:"expr"`
}

// ModelSpec holds regression parameters.
type ModelSpec struct {
	Type         string    `json:"type" yaml:"type"`
	Intercept    float64   `json:"intercept" yaml:"intercept"`
	Coefficients []float64 `json:"coefficients" yaml:"coefficients"`
}

package features

// NumericField documents one numeric input.
type NumericField struct {
	Name string  `json:"name"`
	Type string  `json:"type"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
}

// CategoricalField documents one categorical input.
type CategoricalField struct {
	Name    string   `json:"name"`
	Type    string   `json:"type"`
	Options []string `json:"options"`
}

// Schema is the feature metadata served for introspection.
type Schema struct {
	NumericalFeatures   []NumericField     `json:"numerical_features"`
	CategoricalFeatures []CategoricalField `json:"categorical_features"`
	InteractionFeatures []string           `json:"interaction_features"`
	Target              string             `json:"target"`
}

// DescribeSchema builds the schema from the declared domains.
func DescribeSchema() Schema {
	s := Schema{Target: "exam_score"}
	for _, col := range NumericColumns {
		d := NumericDomains[col]
		typ := "float"
		if d.Integer {
			typ = "int"
		}
		s.NumericalFeatures = append(s.NumericalFeatures, NumericField{Name: col, Type: typ, Min: d.Min, Max: d.Max})
	}
	for _, col := range CategoricalColumns {
		s.CategoricalFeatures = append(s.CategoricalFeatures, CategoricalField{
			Name:    col,
			Type:    "string",
			Options: append([]string(nil), CategoricalDomains[col]...),
		})
	}
	s.InteractionFeatures = append([]string(nil), InteractionColumns...)
	return s
}

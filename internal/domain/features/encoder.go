package features

// Interaction column names, in the order the interaction scaler was fit on.
const (
	StudyXSleep       = "study_x_sleep"
	StudyXAttendance  = "study_x_attendance"
	StudySquared      = "study_squared"
	SleepXQuality     = "sleep_x_quality"
	StudyXDifficulty  = "study_x_difficulty"
	AttendanceXMethod = "attendance_x_method"
)

// InteractionColumns is the load-bearing order of the interaction block.
var InteractionColumns = []string{ //nolint:gochecknoglobals // fixed schema
	StudyXSleep, StudyXAttendance, StudySquared, SleepXQuality, StudyXDifficulty, AttendanceXMethod,
}

// Ordinal encodings used by the interaction formulas.
var (
	SleepQualityLevels = map[string]float64{ //nolint:gochecknoglobals // fixed schema
		"poor": 0, "average": 1, "good": 2,
	}
	ExamDifficultyLevels = map[string]float64{ //nolint:gochecknoglobals // fixed schema
		"easy": 0, "moderate": 1, "hard": 2,
	}
	StudyMethodLevels = map[string]float64{ //nolint:gochecknoglobals // fixed schema
		"self-study": 0, "group study": 1, "online videos": 2, "coaching": 3, "mixed": 4,
	}
)

// InteractionFeatures are derived per request from RawFeatures.
type InteractionFeatures struct {
	StudyXSleep       float64 `json:"study_x_sleep"`
	StudyXAttendance  float64 `json:"study_x_attendance"`
	StudySquared      float64 `json:"study_squared"`
	SleepXQuality     float64 `json:"sleep_x_quality"`
	StudyXDifficulty  float64 `json:"study_x_difficulty"`
	AttendanceXMethod float64 `json:"attendance_x_method"`
}

// Vector returns the features ordered as InteractionColumns.
func (f InteractionFeatures) Vector() []float64 {
	return []float64{
		f.StudyXSleep,
		f.StudyXAttendance,
		f.StudySquared,
		f.SleepXQuality,
		f.StudyXDifficulty,
		f.AttendanceXMethod,
	}
}

// Encoder derives interaction features from a raw record.
type Encoder func(RawFeatures) (InteractionFeatures, error)

// Encode computes the six interaction features. A categorical value outside
// its ordinal map yields a *ValidationError instead of a missing value.
func Encode(r RawFeatures) (InteractionFeatures, error) {
	quality, err := level(SleepQuality, r.SleepQuality, SleepQualityLevels)
	if err != nil {
		return InteractionFeatures{}, err
	}
	difficulty, err := level(ExamDifficulty, r.ExamDifficulty, ExamDifficultyLevels)
	if err != nil {
		return InteractionFeatures{}, err
	}
	method, err := level(StudyMethod, r.StudyMethod, StudyMethodLevels)
	if err != nil {
		return InteractionFeatures{}, err
	}

	return InteractionFeatures{
		StudyXSleep:       r.StudyHours * r.SleepHours,
		StudyXAttendance:  r.StudyHours * r.ClassAttendance,
		StudySquared:      r.StudyHours * r.StudyHours,
		SleepXQuality:     r.SleepHours * quality,
		StudyXDifficulty:  r.StudyHours * difficulty,
		AttendanceXMethod: r.ClassAttendance * method,
	}, nil
}

func level(column, value string, levels map[string]float64) (float64, error) {
	v, ok := levels[value]
	if !ok {
		return 0, NewValidationError(column, value, "must be one of "+quoteAll(CategoricalDomains[column]))
	}
	return v, nil
}

package loadtest

import (
	"math"
	"math/rand/v2"

	"github.com/okian/scorecast/internal/domain/features"
)

// seedSalt decorrelates the two PCG words derived from one seed.
const seedSalt = 0x9e3779b97f4a7c15

// Generator produces valid student records. It is not safe for concurrent use.
type Generator struct {
	rng          *rand.Rand
	boundaryRate float64
}

// NewGenerator returns a generator whose sequence is fixed by seed.
func NewGenerator(seed uint64, boundaryRate float64) *Generator {
	return &Generator{
		rng:          rand.New(rand.NewPCG(seed, seed^seedSalt)), //nolint:gosec // test data, not secrets
		boundaryRate: boundaryRate,
	}
}

// Student returns the next record. Every value lies inside its domain.
func (g *Generator) Student() features.RawFeatures {
	edge := g.rng.Float64() < g.boundaryRate
	return features.RawFeatures{
		Age:             int(g.number(features.Age, edge)),
		StudyHours:      g.number(features.StudyHours, edge),
		ClassAttendance: g.number(features.ClassAttendance, edge),
		SleepHours:      g.number(features.SleepHours, edge),
		Gender:          g.pick(features.Gender),
		Course:          g.pick(features.Course),
		InternetAccess:  g.pick(features.InternetAccess),
		SleepQuality:    g.pick(features.SleepQuality),
		StudyMethod:     g.pick(features.StudyMethod),
		FacilityRating:  g.pick(features.FacilityRating),
		ExamDifficulty:  g.pick(features.ExamDifficulty),
	}
}

// Students returns the next n records.
func (g *Generator) Students(n int) []features.RawFeatures {
	out := make([]features.RawFeatures, n)
	for i := range out {
		out[i] = g.Student()
	}
	return out
}

func (g *Generator) number(column string, edge bool) float64 {
	r := features.NumericDomains[column]
	if edge {
		if g.rng.IntN(2) == 0 {
			return r.Min
		}
		return r.Max
	}
	if r.Integer {
		return r.Min + float64(g.rng.IntN(int(r.Max-r.Min)+1))
	}
	// One decimal, like the values a form would send.
	v := r.Min + g.rng.Float64()*(r.Max-r.Min)
	return math.Min(r.Max, math.Round(v*10)/10)
}

func (g *Generator) pick(column string) string {
	opts := features.CategoricalDomains[column]
	return opts[g.rng.IntN(len(opts))]
}

package features_test

import (
	"errors"
	"math"
	"testing"

	"github.com/okian/scorecast/internal/domain/features"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRange_Contains(t *testing.T) {
	Convey("Given the age range", t, func() {
		r := features.NumericDomains[features.Age]

		Convey("Then bounds are inclusive", func() {
			So(r.Contains(17), ShouldBeTrue)
			So(r.Contains(24), ShouldBeTrue)
			So(r.Contains(16), ShouldBeFalse)
			So(r.Contains(25), ShouldBeFalse)
		})

		Convey("Then fractional ages are rejected", func() {
			So(r.Contains(20.5), ShouldBeFalse)
		})

		Convey("Then non-finite values are rejected", func() {
			So(r.Contains(math.NaN()), ShouldBeFalse)
			So(r.Contains(math.Inf(1)), ShouldBeFalse)
		})
	})
}

func TestRawFeatures_Validate(t *testing.T) {
	Convey("Given the reference student", t, func() {
		r := features.Example()

		Convey("Then it validates", func() {
			So(r.Validate(), ShouldBeNil)
		})

		Convey("When a categorical value is out of domain", func() {
			r.SleepQuality = "excellent"
			err := r.Validate()

			Convey("Then a ValidationError names the field", func() {
				So(errors.Is(err, features.ErrInvalidFeatures), ShouldBeTrue)
				var verr *features.ValidationError
				So(errors.As(err, &verr), ShouldBeTrue)
				So(verr.Fields, ShouldHaveLength, 1)
				So(verr.Fields[0].Field, ShouldEqual, features.SleepQuality)
				So(verr.Fields[0].Value, ShouldEqual, "excellent")
			})
		})

		Convey("When several fields are invalid", func() {
			r.Age = 30
			r.StudyHours = -1
			r.Course = "mba"
			err := r.Validate()

			Convey("Then every violation is reported in column order", func() {
				var verr *features.ValidationError
				So(errors.As(err, &verr), ShouldBeTrue)
				So(verr.Fields, ShouldHaveLength, 3)
				So(verr.Fields[0].Field, ShouldEqual, features.Age)
				So(verr.Fields[1].Field, ShouldEqual, features.StudyHours)
				So(verr.Fields[2].Field, ShouldEqual, features.Course)
				So(err.Error(), ShouldContainSubstring, "must be an integer between 17 and 24")
			})
		})

		Convey("When a numeric value is NaN", func() {
			r.SleepHours = math.NaN()
			err := r.Validate()

			Convey("Then the value is reported as text", func() {
				var verr *features.ValidationError
				So(errors.As(err, &verr), ShouldBeTrue)
				So(verr.Fields[0].Value, ShouldEqual, "NaN")
			})
		})
	})
}

func TestRawFeatures_Accessors(t *testing.T) {
	Convey("Given the reference student", t, func() {
		r := features.Example()

		Convey("Then every declared column is addressable", func() {
			for _, col := range features.NumericColumns {
				_, ok := r.Numeric(col)
				So(ok, ShouldBeTrue)
			}
			for _, col := range features.CategoricalColumns {
				_, ok := r.Categorical(col)
				So(ok, ShouldBeTrue)
			}
		})

		Convey("Then values match the fields", func() {
			age, _ := r.Numeric(features.Age)
			So(age, ShouldEqual, 20)
			course, _ := r.Categorical(features.Course)
			So(course, ShouldEqual, "b.tech")
		})

		Convey("Then unknown columns are reported", func() {
			_, ok := r.Numeric("height")
			So(ok, ShouldBeFalse)
			_, ok = r.Categorical("height")
			So(ok, ShouldBeFalse)
		})
	})
}

func TestDescribeSchema(t *testing.T) {
	Convey("Given the generated schema", t, func() {
		s := features.DescribeSchema()

		Convey("Then every column is described in training order", func() {
			So(s.NumericalFeatures, ShouldHaveLength, len(features.NumericColumns))
			So(s.CategoricalFeatures, ShouldHaveLength, len(features.CategoricalColumns))
			So(s.NumericalFeatures[0], ShouldResemble, features.NumericField{Name: "age", Type: "int", Min: 17, Max: 24})
			So(s.NumericalFeatures[1].Type, ShouldEqual, "float")
			So(s.CategoricalFeatures[3].Name, ShouldEqual, features.SleepQuality)
			So(s.CategoricalFeatures[3].Options, ShouldResemble, []string{"poor", "average", "good"})
			So(s.InteractionFeatures, ShouldResemble, features.InteractionColumns)
		})

		Convey("Then mutating it leaves the domains untouched", func() {
			s.CategoricalFeatures[0].Options[0] = "x"
			So(features.CategoricalDomains[features.Gender][0], ShouldEqual, "female")
		})
	})
}

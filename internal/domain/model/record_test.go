package model_test

import (
	"errors"
	"testing"

	model "github.com/okian/salaryexplorer/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestLabelTables(t *testing.T) {
	convey.Convey("Given the fixed lookup tables", t, func() {
		convey.Convey("Then every experience code maps to its label", func() {
			for code, want := range map[string]string{
				"EN": "Entry Level", "MI": "Mid Level", "SE": "Senior", "EX": "Executive",
			} {
				got, err := model.ExperienceLabel(code)
				convey.So(err, convey.ShouldBeNil)
				convey.So(got, convey.ShouldEqual, want)
			}
		})

		convey.Convey("And every employment code maps to its label", func() {
			for code, want := range map[string]string{
				"FT": "Full Time", "PT": "Part Time", "CT": "Contract", "FL": "Freelance",
			} {
				got, err := model.EmploymentLabel(code)
				convey.So(err, convey.ShouldBeNil)
				convey.So(got, convey.ShouldEqual, want)
			}
		})

		convey.Convey("And every company size maps to its label", func() {
			for code, want := range map[string]string{
				"S": "Small (<50)", "M": "Medium (50-250)", "L": "Large (250+)",
			} {
				got, err := model.CompanySizeLabel(code)
				convey.So(err, convey.ShouldBeNil)
				convey.So(got, convey.ShouldEqual, want)
			}
		})

		convey.Convey("And every remote ratio maps to its label", func() {
			for ratio, want := range map[int]string{0: "On-site", 50: "Hybrid", 100: "Remote"} {
				got, err := model.RemoteLabel(ratio)
				convey.So(err, convey.ShouldBeNil)
				convey.So(got, convey.ShouldEqual, want)
			}
		})

		convey.Convey("And values outside a table are rejected", func() {
			_, err := model.ExperienceLabel("XX")
			convey.So(errors.Is(err, model.ErrUnknownCode), convey.ShouldBeTrue)
			convey.So(err.Error(), convey.ShouldContainSubstring, "experience_level")

			_, err = model.RemoteLabel(75)
			convey.So(errors.Is(err, model.ErrUnknownCode), convey.ShouldBeTrue)

			_, err = model.CompanySizeLabel("m")
			convey.So(errors.Is(err, model.ErrUnknownCode), convey.ShouldBeTrue)
		})
	})
}

func TestRecord(t *testing.T) {
	convey.Convey("Given a raw record", t, func() {
		r := model.Record{
			WorkYear:          2023,
			JobTitle:          "Data Scientist",
			ExperienceLevel:   "SE",
			EmploymentType:    "FT",
			SalaryInUSD:       120000.5,
			EmployeeResidence: "US",
			CompanyLocation:   "US",
			CompanySize:       "M",
			RemoteRatio:       100,
		}

		convey.Convey("When decorating it", func() {
			err := r.Decorate()

			convey.Convey("Then labels match the lookup tables", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(r.ExperienceLabel, convey.ShouldEqual, "Senior")
				convey.So(r.EmploymentLabel, convey.ShouldEqual, "Full Time")
				convey.So(r.SizeLabel, convey.ShouldEqual, "Medium (50-250)")
				convey.So(r.RemoteLabel, convey.ShouldEqual, "Remote")
			})
		})

		convey.Convey("When the company size is unknown", func() {
			r.CompanySize = "XL"

			convey.Convey("Then decoration fails", func() {
				convey.So(errors.Is(r.Decorate(), model.ErrUnknownCode), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When reading canonical values", func() {
			_ = r.Decorate()

			convey.Convey("Then numbers render in base 10", func() {
				v, ok := r.Value(model.ColWorkYear)
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(v, convey.ShouldEqual, "2023")

				v, _ = r.Value(model.ColRemoteRatio)
				convey.So(v, convey.ShouldEqual, "100")

				v, _ = r.Value(model.ColSalaryInUSD)
				convey.So(v, convey.ShouldEqual, "120000.5")
			})

			convey.Convey("And label columns are addressable", func() {
				v, ok := r.Value(model.ColRemoteLabel)
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(v, convey.ShouldEqual, "Remote")
			})

			convey.Convey("And unknown columns report false", func() {
				_, ok := r.Value(model.Column("salary"))
				convey.So(ok, convey.ShouldBeFalse)
			})

			convey.Convey("And only numeric columns have numbers", func() {
				n, ok := r.Number(model.ColSalaryInUSD)
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(n, convey.ShouldEqual, 120000.5)

				_, ok = r.Number(model.ColJobTitle)
				convey.So(ok, convey.ShouldBeFalse)
			})
		})
	})
}

func TestColumn(t *testing.T) {
	convey.Convey("Given column names", t, func() {
		convey.Convey("Then raw and label columns are valid", func() {
			for _, c := range model.RawColumns {
				convey.So(c.Valid(), convey.ShouldBeTrue)
			}
			for _, c := range model.LabelColumns {
				convey.So(c.Valid(), convey.ShouldBeTrue)
			}
			convey.So(model.Column("salary_currency").Valid(), convey.ShouldBeFalse)
		})

		convey.Convey("And only year, salary and remote ratio are numeric", func() {
			convey.So(model.ColSalaryInUSD.Numeric(), convey.ShouldBeTrue)
			convey.So(model.ColWorkYear.Numeric(), convey.ShouldBeTrue)
			convey.So(model.ColRemoteRatio.Numeric(), convey.ShouldBeTrue)
			convey.So(model.ColCompanySize.Numeric(), convey.ShouldBeFalse)
		})
	})
}

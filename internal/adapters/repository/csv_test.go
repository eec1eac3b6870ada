package repository

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/okian/salaryexplorer/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

const header = "work_year,experience_level,employment_type,job_title,salary,salary_currency,salary_in_usd,employee_residence,remote_ratio,company_location,company_size\n"

func TestParse(t *testing.T) {
	Convey("Given a well-formed file", t, func() {
		data := header +
			"2023,SE,FT,Data Scientist,150000,USD,150000,US,100,US,M\n" +
			"2022,EN,PT,Data Analyst,40000,EUR,42500.5,DE,0,DE,S\n"

		recs, err := Parse(strings.NewReader(data))

		Convey("Then every row is decoded with labels", func() {
			So(err, ShouldBeNil)
			So(recs, ShouldHaveLength, 2)
			So(recs[0].JobTitle, ShouldEqual, "Data Scientist")
			So(recs[0].RemoteLabel, ShouldEqual, "Remote")
			So(recs[1].SalaryInUSD, ShouldEqual, 42500.5)
			So(recs[1].ExperienceLabel, ShouldEqual, "Entry Level")
			So(recs[1].SizeLabel, ShouldEqual, "Small (<50)")
		})
	})

	Convey("Given malformed sources", t, func() {
		cases := []struct {
			name string
			data string
		}{
			{"an empty file", ""},
			{"a missing column", "work_year,job_title\n2023,x\n"},
			{"a duplicated column", strings.TrimSuffix(header, "\n") + ",job_title\n"},
			{"a wrong field count", header + "2023,SE,FT\n"},
			{"broken quoting", header + "2023,SE,FT,\"Data,150000,USD,150000,US,100,US,M\n"},
		}
		for _, tc := range cases {
			Convey("Then "+tc.name+" is unavailable", func() {
				_, err := Parse(strings.NewReader(tc.data))
				So(errors.Is(err, ErrDataUnavailable), ShouldBeTrue)
			})
		}
	})

	Convey("Given rows with invalid values", t, func() {
		cases := []struct {
			name   string
			row    string
			column model.Column
		}{
			{"an unknown experience level", "2023,XX,FT,DS,1,USD,1,US,100,US,M", model.ColExperienceLevel},
			{"an unknown remote ratio", "2023,SE,FT,DS,1,USD,1,US,75,US,M", model.ColRemoteRatio},
			{"an empty salary", "2023,SE,FT,DS,1,USD,,US,100,US,M", model.ColSalaryInUSD},
			{"a negative salary", "2023,SE,FT,DS,1,USD,-5,US,100,US,M", model.ColSalaryInUSD},
			{"a bad year", "twenty,SE,FT,DS,1,USD,1,US,100,US,M", model.ColWorkYear},
			{"an infinite year", "Inf,SE,FT,DS,1,USD,1,US,100,US,M", model.ColWorkYear},
			{"a year too large for an int", "1e300,SE,FT,DS,1,USD,1,US,100,US,M", model.ColWorkYear},
			{"a year too small for an int", "-1e19,SE,FT,DS,1,USD,1,US,100,US,M", model.ColWorkYear},
			{"a fractional remote ratio", "2023,SE,FT,DS,1,USD,1,US,50.5,US,M", model.ColRemoteRatio},
		}
		for _, tc := range cases {
			Convey("Then "+tc.name+" is an integrity error naming row and column", func() {
				data := header + "2023,SE,FT,DS,1,USD,1,US,100,US,M\n" + tc.row + "\n"
				_, err := Parse(strings.NewReader(data))
				So(errors.Is(err, ErrDataIntegrity), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "row 2")
				So(err.Error(), ShouldContainSubstring, string(tc.column))
			})
		}
	})

	Convey("Given integral floats in integer columns", t, func() {
		recs, err := Parse(strings.NewReader(header + "2023.0,SE,FT,DS,1,USD,1,US,50.0,US,M\n"))

		Convey("Then they are accepted", func() {
			So(err, ShouldBeNil)
			So(recs[0].WorkYear, ShouldEqual, 2023)
			So(recs[0].RemoteRatio, ShouldEqual, 50)
		})
	})
}

func TestCSVSource(t *testing.T) {
	Convey("Given a CSV source", t, func() {
		dir := t.TempDir()

		Convey("When the file exists", func() {
			path := filepath.Join(dir, "ds.csv")
			So(os.WriteFile(path, []byte(header+"2023,SE,FT,DS,1,USD,1,US,100,US,M\n"), 0o600), ShouldBeNil)
			recs, err := NewCSVSource(path).Read(context.Background())

			Convey("Then it is parsed", func() {
				So(err, ShouldBeNil)
				So(recs, ShouldHaveLength, 1)
			})
		})

		Convey("When the file is missing", func() {
			src := NewCSVSource(filepath.Join(dir, "missing.csv"))
			_, err := src.Read(context.Background())

			Convey("Then the data is unavailable", func() {
				So(errors.Is(err, ErrDataUnavailable), ShouldBeTrue)
				So(src.Path(), ShouldEndWith, "missing.csv")
			})
		})
	})
}

package export_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/okian/salaryexplorer/internal/adapters/export"
	"github.com/okian/salaryexplorer/internal/domain/dataset"
	"github.com/okian/salaryexplorer/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func sample() *dataset.Dataset {
	recs := []model.Record{
		{WorkYear: 2023, JobTitle: "Data Scientist", ExperienceLevel: "SE", EmploymentType: "FT",
			SalaryInUSD: 150000, EmployeeResidence: "US", CompanyLocation: "US", CompanySize: "M", RemoteRatio: 100},
		{WorkYear: 2022, JobTitle: "Analyst, Data", ExperienceLevel: "EN", EmploymentType: "PT",
			SalaryInUSD: 42500.5, EmployeeResidence: "DE", CompanyLocation: "DE", CompanySize: "S", RemoteRatio: 0},
	}
	for i := range recs {
		if err := recs[i].Decorate(); err != nil {
			panic(err)
		}
	}
	return dataset.New(recs)
}

func TestWriteCSV(t *testing.T) {
	Convey("Given a filtered dataset", t, func() {
		var buf bytes.Buffer
		n, err := export.WriteCSV(&buf, sample())

		Convey("Then the raw columns are written in dataset order", func() {
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 2)
			So(buf.String(), ShouldEqual,
				"work_year,job_title,experience_level,employment_type,salary_in_usd,employee_residence,company_location,company_size,remote_ratio\n"+
					"2023,Data Scientist,SE,FT,150000,US,US,M,100\n"+
					"2022,\"Analyst, Data\",EN,PT,42500.5,DE,DE,S,0\n")
		})
	})

	Convey("Given an empty dataset", t, func() {
		var buf bytes.Buffer
		n, err := export.WriteCSV(&buf, dataset.New(nil))

		Convey("Then only the header is written", func() {
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 0)
			So(buf.String(), ShouldStartWith, "work_year,")
			So(bytes.Count(buf.Bytes(), []byte("\n")), ShouldEqual, 1)
		})
	})
}

func TestWriteXLSX(t *testing.T) {
	Convey("Given a filtered dataset", t, func() {
		var buf bytes.Buffer
		n, err := export.Write(&buf, export.FormatXLSX, sample())
		So(err, ShouldBeNil)
		So(n, ShouldEqual, 2)

		Convey("Then the workbook holds one sheet with the same table", func() {
			f, err := excelize.OpenReader(&buf)
			So(err, ShouldBeNil)
			defer f.Close()

			So(f.GetSheetList(), ShouldResemble, []string{export.SheetName})
			rows, err := f.GetRows(export.SheetName)
			So(err, ShouldBeNil)
			So(rows, ShouldHaveLength, 3)
			So(rows[0][0], ShouldEqual, "work_year")
			So(rows[0][8], ShouldEqual, "remote_ratio")
			So(rows[1][1], ShouldEqual, "Data Scientist")
			So(rows[2][4], ShouldEqual, "42500.5")
		})
	})
}

func TestFormat(t *testing.T) {
	Convey("Given format names", t, func() {
		f, err := export.ParseFormat(" XLSX ")
		So(err, ShouldBeNil)
		So(f, ShouldEqual, export.FormatXLSX)
		So(f.Filename(), ShouldEqual, "filtered_salaries.xlsx")
		So(export.FormatCSV.ContentType(), ShouldStartWith, "text/csv")

		_, err = export.ParseFormat("pdf")
		So(errors.Is(err, export.ErrUnknownFormat), ShouldBeTrue)

		_, err = export.Write(&bytes.Buffer{}, export.Format("pdf"), sample())
		So(errors.Is(err, export.ErrUnknownFormat), ShouldBeTrue)
	})
}

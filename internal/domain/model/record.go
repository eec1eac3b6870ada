// Package model contains domain models passed between layers.
package model

import "strconv"

// Column names a field of a salary record. Raw columns come from the source
// file; label columns are derived from the enum columns at load time.
type Column string

// Raw columns, in export order.
const (
	ColWorkYear          Column = "work_year"
	ColJobTitle          Column = "job_title"
	ColExperienceLevel   Column = "experience_level"
	ColEmploymentType    Column = "employment_type"
	ColSalaryInUSD       Column = "salary_in_usd"
	ColEmployeeResidence Column = "employee_residence"
	ColCompanyLocation   Column = "company_location"
	ColCompanySize       Column = "company_size"
	ColRemoteRatio       Column = "remote_ratio"
)

// Label columns.
const (
	ColExperienceLabel Column = "experience_label"
	ColEmploymentLabel Column = "employment_label"
	ColSizeLabel       Column = "size_label"
	ColRemoteLabel     Column = "remote_label"
)

// RawColumns lists the source columns in canonical order.
var RawColumns = []Column{
	ColWorkYear,
	ColJobTitle,
	ColExperienceLevel,
	ColEmploymentType,
	ColSalaryInUSD,
	ColEmployeeResidence,
	ColCompanyLocation,
	ColCompanySize,
	ColRemoteRatio,
}

// LabelColumns lists the derived columns.
var LabelColumns = []Column{
	ColExperienceLabel,
	ColEmploymentLabel,
	ColSizeLabel,
	ColRemoteLabel,
}

// Valid reports whether c names a raw or label column.
func (c Column) Valid() bool {
	switch c {
	case ColWorkYear, ColJobTitle, ColExperienceLevel, ColEmploymentType, ColSalaryInUSD,
		ColEmployeeResidence, ColCompanyLocation, ColCompanySize, ColRemoteRatio,
		ColExperienceLabel, ColEmploymentLabel, ColSizeLabel, ColRemoteLabel:
		return true
	}
	return false
}

// Numeric reports whether c can be used as an aggregation metric.
func (c Column) Numeric() bool {
	return c == ColWorkYear || c == ColSalaryInUSD || c == ColRemoteRatio
}

// Record is one salary observation with its derived labels.
type Record struct {
	WorkYear          int     `json:"work_year"`
	JobTitle          string  `json:"job_title"`
	ExperienceLevel   string  `json:"experience_level"`
	EmploymentType    string  `json:"employment_type"`
	SalaryInUSD       float64 `json:"salary_in_usd"`
	EmployeeResidence string  `json:"employee_residence"`
	CompanyLocation   string  `json:"company_location"`
	CompanySize       string  `json:"company_size"`
	RemoteRatio       int     `json:"remote_ratio"`

	ExperienceLabel string `json:"experience_label"`
	EmploymentLabel string `json:"employment_label"`
	SizeLabel       string `json:"size_label"`
	RemoteLabel     string `json:"remote_label"`
}

// Value returns the canonical string form of column c, used for filtering
// and grouping. Integers are rendered in base 10 and the salary with the
// shortest representation that round-trips.
func (r *Record) Value(c Column) (string, bool) {
	switch c {
	case ColWorkYear:
		return strconv.Itoa(r.WorkYear), true
	case ColJobTitle:
		return r.JobTitle, true
	case ColExperienceLevel:
		return r.ExperienceLevel, true
	case ColEmploymentType:
		return r.EmploymentType, true
	case ColSalaryInUSD:
		return strconv.FormatFloat(r.SalaryInUSD, 'f', -1, 64), true
	case ColEmployeeResidence:
		return r.EmployeeResidence, true
	case ColCompanyLocation:
		return r.CompanyLocation, true
	case ColCompanySize:
		return r.CompanySize, true
	case ColRemoteRatio:
		return strconv.Itoa(r.RemoteRatio), true
	case ColExperienceLabel:
		return r.ExperienceLabel, true
	case ColEmploymentLabel:
		return r.EmploymentLabel, true
	case ColSizeLabel:
		return r.SizeLabel, true
	case ColRemoteLabel:
		return r.RemoteLabel, true
	}
	return "", false
}

// Number returns the numeric value of column c.
func (r *Record) Number(c Column) (float64, bool) {
	switch c {
	case ColWorkYear:
		return float64(r.WorkYear), true
	case ColSalaryInUSD:
		return r.SalaryInUSD, true
	case ColRemoteRatio:
		return float64(r.RemoteRatio), true
	}
	return 0, false
}

// Decorate fills the label columns from the enum columns. It fails with
// ErrUnknownCode when a raw value is outside its lookup table.
func (r *Record) Decorate() error {
	var err error
	if r.ExperienceLabel, err = ExperienceLabel(r.ExperienceLevel); err != nil {
		return err
	}
	if r.EmploymentLabel, err = EmploymentLabel(r.EmploymentType); err != nil {
		return err
	}
	if r.SizeLabel, err = CompanySizeLabel(r.CompanySize); err != nil {
		return err
	}
	if r.RemoteLabel, err = RemoteLabel(r.RemoteRatio); err != nil {
		return err
	}
	return nil
}

package repository

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/okian/salaryexplorer/internal/domain/model"
)

// CSVSource reads the dataset from a CSV file with a header row.
type CSVSource struct {
	path string
}

// NewCSVSource creates a source for the file at path.
func NewCSVSource(path string) *CSVSource {
	return &CSVSource{path: path}
}

// Path returns the file path.
func (s *CSVSource) Path() string { return s.path }

// Read opens and parses the file.
func (s *CSVSource) Read(ctx context.Context) ([]model.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDataUnavailable, err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes salary records from CSV. Every raw column must appear in the
// header exactly once; other columns are ignored. Rows are numbered from 1,
// excluding the header.
func Parse(r io.Reader) ([]model.Record, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty file", ErrDataUnavailable)
		}
		return nil, fmt.Errorf("%w: header: %w", ErrDataUnavailable, err)
	}
	cols, err := indexHeader(header)
	if err != nil {
		return nil, err
	}

	var out []model.Record
	for row := 1; ; row++ {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDataUnavailable, err)
		}
		rec, err := decode(fields, cols)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %w", ErrDataIntegrity, row, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func indexHeader(header []string) (map[model.Column]int, error) {
	cols := make(map[model.Column]int, len(model.RawColumns))
	for i, h := range header {
		c := model.Column(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if !isRaw(c) {
			continue
		}
		if _, dup := cols[c]; dup {
			return nil, fmt.Errorf("%w: duplicate column %s", ErrDataUnavailable, c)
		}
		cols[c] = i
	}
	for _, c := range model.RawColumns {
		if _, ok := cols[c]; !ok {
			return nil, fmt.Errorf("%w: missing column %s", ErrDataUnavailable, c)
		}
	}
	return cols, nil
}

func isRaw(c model.Column) bool {
	for _, raw := range model.RawColumns {
		if c == raw {
			return true
		}
	}
	return false
}

func decode(fields []string, cols map[model.Column]int) (model.Record, error) {
	get := func(c model.Column) string { return strings.TrimSpace(fields[cols[c]]) }

	var (
		r   model.Record
		err error
	)
	if r.WorkYear, err = parseInt(model.ColWorkYear, get(model.ColWorkYear)); err != nil {
		return r, err
	}
	if r.RemoteRatio, err = parseInt(model.ColRemoteRatio, get(model.ColRemoteRatio)); err != nil {
		return r, err
	}
	salary := get(model.ColSalaryInUSD)
	if r.SalaryInUSD, err = strconv.ParseFloat(salary, 64); err != nil || math.IsNaN(r.SalaryInUSD) || math.IsInf(r.SalaryInUSD, 0) {
		return r, fmt.Errorf("column %s: invalid value %q", model.ColSalaryInUSD, salary)
	}
	if r.SalaryInUSD < 0 {
		return r, fmt.Errorf("column %s: negative value %q", model.ColSalaryInUSD, salary)
	}
	r.JobTitle = get(model.ColJobTitle)
	r.ExperienceLevel = get(model.ColExperienceLevel)
	r.EmploymentType = get(model.ColEmploymentType)
	r.EmployeeResidence = get(model.ColEmployeeResidence)
	r.CompanyLocation = get(model.ColCompanyLocation)
	r.CompanySize = get(model.ColCompanySize)
	if err := r.Decorate(); err != nil {
		return r, fmt.Errorf("column %w", err)
	}
	return r, nil
}

func parseInt(c model.Column, s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		// Integral floats such as "100.0" are accepted.
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || math.IsInf(f, 0) || f != math.Trunc(f) || f < math.MinInt32 || f > math.MaxInt32 {
			return 0, fmt.Errorf("column %s: invalid value %q", c, s)
		}
		n = int(f)
	}
	return n, nil
}

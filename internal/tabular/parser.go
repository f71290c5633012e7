package tabular

import (
	"errors"
	"strconv"
	"strings"

	"github.com/handiism/visrec-datasets/internal/model"
)

// Parse turns the lines of a delimiter-separated resource into column names
// and records.
//
// Column names come verbatim from the first line when spec.HasHeader is set,
// and are synthesized as in1..inN, out1..outM otherwise. Every remaining
// non-empty line becomes one record; blank lines are dropped wherever they
// appear. Splitting is literal on spec.Delimiter, so quoted fields that
// contain the delimiter are not supported.
//
// Returns an error if:
//   - The DatasetSpec is invalid (model.ErrInvalidSpec)
//   - There are no lines (ErrEmptyContent)
//   - A header is declared but no other line exists (ErrHeaderOnlyContent)
//   - A line has the wrong number of fields (*FieldCountError)
//   - A field is not a number (*NumericParseError)
//
// On error no records are returned.
//
// Example:
//
//	spec := model.DatasetSpec{Delimiter: ",", Inputs: 2, Outputs: 1, HasHeader: true}
//	columns, records, err := tabular.Parse([]string{"a,b,c", "1.0,2.0,5.0"}, spec)
//	// columns = [a b c], records = [{[1 2] [5]}]
func Parse(lines []string, spec model.DatasetSpec) ([]string, []model.Record, error) {
	if err := spec.Validate(); err != nil {
		return nil, nil, err
	}
	if len(lines) == 0 {
		return nil, nil, ErrEmptyContent
	}
	if spec.HasHeader && len(lines) <= 1 {
		return nil, nil, ErrHeaderOnlyContent
	}

	var columns []string
	skip := 0
	if spec.HasHeader {
		columns = strings.Split(lines[0], spec.Delimiter)
		skip = 1
	} else {
		columns = spec.ColumnNames()
	}

	records := make([]model.Record, 0, len(lines)-skip)
	for i := skip; i < len(lines); i++ {
		if lines[i] == "" {
			continue
		}
		record, err := ParseRecord(lines[i], spec)
		if err != nil {
			return nil, nil, atLine(err, i+1)
		}
		records = append(records, record)
	}

	return columns, records, nil
}

// ParseRecord parses a single data line.
//
// Line numbers in returned errors are zero; Parse fills them in.
func ParseRecord(line string, spec model.DatasetSpec) (model.Record, error) {
	values := strings.Split(line, spec.Delimiter)
	if len(values) != spec.Width() {
		return model.Record{}, &FieldCountError{Expected: spec.Width(), Actual: len(values)}
	}

	in, err := parseVector(values[:spec.Inputs], 0)
	if err != nil {
		return model.Record{}, err
	}
	out, err := parseVector(values[spec.Inputs:], spec.Inputs)
	if err != nil {
		return model.Record{}, err
	}

	return model.Record{Inputs: in, Outputs: out}, nil
}

// parseVector parses fields as 32-bit floats; offset is the column index of
// the first field, used for error reporting.
func parseVector(fields []string, offset int) ([]float32, error) {
	vec := make([]float32, len(fields))
	for i, field := range fields {
		v, err := parseFloat32(field)
		if err != nil {
			return nil, &NumericParseError{Column: offset + i + 1, Value: field, Err: err}
		}
		vec[i] = v
	}
	return vec, nil
}

func parseFloat32(s string) (float32, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("empty string")
	}
	v, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return 0, err
	}
	return float32(v), nil
}

// atLine attaches a 1-based line number to a record error.
func atLine(err error, line int) error {
	var countErr *FieldCountError
	if errors.As(err, &countErr) {
		countErr.Line = line
		return countErr
	}
	var numErr *NumericParseError
	if errors.As(err, &numErr) {
		numErr.Line = line
		return numErr
	}
	return err
}

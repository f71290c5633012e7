package model

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrInvalidSpec is returned when a DatasetSpec describes an impossible shape.
var ErrInvalidSpec = errors.New("invalid dataset spec")

// DatasetSpec describes the fixed format of a delimiter-separated source.
//
// The first Inputs columns of every data line are features, the following
// Outputs columns are targets. A spec is a plain value and is never mutated
// after a preset is declared.
//
// Example:
//
//	spec := model.DatasetSpec{Delimiter: ",", Inputs: 4, Outputs: 3, HasHeader: true}
//	if err := spec.Validate(); err != nil {
//	    return err
//	}
type DatasetSpec struct {
	// Delimiter separates fields. It is matched literally, never as a pattern.
	Delimiter string

	// Inputs is the number of leading feature columns.
	Inputs int

	// Outputs is the number of trailing target columns.
	Outputs int

	// HasHeader reports whether the first line holds column names.
	HasHeader bool
}

// Width returns the number of fields every data line must contain.
func (s DatasetSpec) Width() int {
	return s.Inputs + s.Outputs
}

// Validate checks the shape invariants.
func (s DatasetSpec) Validate() error {
	if s.Delimiter == "" {
		return fmt.Errorf("%w: empty delimiter", ErrInvalidSpec)
	}
	if s.Inputs < 0 || s.Outputs < 0 {
		return fmt.Errorf("%w: negative column count (inputs=%d, outputs=%d)", ErrInvalidSpec, s.Inputs, s.Outputs)
	}
	if s.Width() == 0 {
		return fmt.Errorf("%w: inputs + outputs must be greater than zero", ErrInvalidSpec)
	}
	return nil
}

// ColumnNames synthesizes names for a source without a header line:
// in1..inN followed by out1..outM.
func (s DatasetSpec) ColumnNames() []string {
	names := make([]string, 0, s.Width())
	for i := 1; i <= s.Inputs; i++ {
		names = append(names, "in"+strconv.Itoa(i))
	}
	for j := 1; j <= s.Outputs; j++ {
		names = append(names, "out"+strconv.Itoa(j))
	}
	return names
}

// Record is one parsed (inputs, outputs) pair from a single data line.
type Record struct {
	Inputs  []float32
	Outputs []float32
}

// Dataset is an ordered, fixed-shape collection of records ready to be
// handed to a learning pipeline.
//
// A Dataset is built in one step by NewDataset and never grows afterwards,
// so a caller can never observe a partially constructed collection.
type Dataset struct {
	inputs  int
	outputs int
	columns []string
	records []Record
}

// NewDataset creates a Dataset with the given shape, column names and records.
//
// Every record must carry exactly inputs input values and outputs output
// values; the first mismatch is reported with its index.
func NewDataset(inputs, outputs int, columns []string, records []Record) (*Dataset, error) {
	if inputs < 0 || outputs < 0 || inputs+outputs == 0 {
		return nil, fmt.Errorf("%w: inputs=%d, outputs=%d", ErrInvalidSpec, inputs, outputs)
	}
	for i, r := range records {
		if len(r.Inputs) != inputs || len(r.Outputs) != outputs {
			return nil, fmt.Errorf("record %d has shape (%d, %d), dataset expects (%d, %d)",
				i, len(r.Inputs), len(r.Outputs), inputs, outputs)
		}
	}

	ds := &Dataset{
		inputs:  inputs,
		outputs: outputs,
		columns: append([]string(nil), columns...),
		records: append([]Record(nil), records...),
	}
	return ds, nil
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	return len(d.records)
}

// InputCount returns the length of every input vector.
func (d *Dataset) InputCount() int {
	return d.inputs
}

// OutputCount returns the length of every output vector.
func (d *Dataset) OutputCount() int {
	return d.outputs
}

// Columns returns a copy of the column names.
func (d *Dataset) Columns() []string {
	return append([]string(nil), d.columns...)
}

// Record returns the record at index i.
func (d *Dataset) Record(i int) (Record, error) {
	if i < 0 || i >= len(d.records) {
		return Record{}, fmt.Errorf("index %d out of range [0, %d)", i, len(d.records))
	}
	return d.records[i], nil
}

// Records returns the records in source order. The slice is a copy; the
// vectors it points to must not be modified.
func (d *Dataset) Records() []Record {
	return append([]Record(nil), d.records...)
}

// BatchFlat stores a batch in flat contiguous buffers, row-major.
type BatchFlat struct {
	Inputs    []float32
	Outputs   []float32
	BatchSize int
	InputDim  int
	OutputDim int
}

// Batch copies the records at the given indices into flat buffers.
func (d *Dataset) Batch(indices []int) (*BatchFlat, error) {
	b := &BatchFlat{
		Inputs:    make([]float32, len(indices)*d.inputs),
		Outputs:   make([]float32, len(indices)*d.outputs),
		BatchSize: len(indices),
		InputDim:  d.inputs,
		OutputDim: d.outputs,
	}
	for pos, idx := range indices {
		r, err := d.Record(idx)
		if err != nil {
			return nil, fmt.Errorf("batch position %d: %w", pos, err)
		}
		copy(b.Inputs[pos*d.inputs:], r.Inputs)
		copy(b.Outputs[pos*d.outputs:], r.Outputs)
	}
	return b, nil
}

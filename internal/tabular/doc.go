// Package tabular parses delimiter-separated text into fixed-shape records.
//
// A model.DatasetSpec fixes the delimiter, the number of input and output
// columns and whether the first line is a header:
//
//	spec := model.DatasetSpec{Delimiter: ",", Inputs: 4, Outputs: 3, HasHeader: true}
//	columns, records, err := tabular.Parse(lines, spec)
//
// Blank lines are skipped. Every other line must have exactly
// Inputs+Outputs numeric fields; the first bad line aborts the parse with a
// *FieldCountError or *NumericParseError that carries the line number.
package tabular

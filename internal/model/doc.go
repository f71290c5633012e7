// Package model defines the core data structures shared by the loader,
// the archive stager and the download manager.
//
// # Tabular data
//
// DatasetSpec fixes the format of a delimiter-separated source, Record holds
// one parsed line and Dataset is the finished, immutable collection:
//
//	spec := model.DatasetSpec{Delimiter: ",", Inputs: 2, Outputs: 1}
//	ds, err := model.NewDataset(spec.Inputs, spec.Outputs, spec.ColumnNames(), records)
//	inputs, outputs, err := ds.Tensors() // gomlx tensors for training
//
// # Archives
//
// ArchiveJob follows a single staging operation through
// Pending → Downloading → Extracting → Done, or into Failed from any
// non-terminal state. ArchiveEntry is a short-lived view of one archive member.
package model

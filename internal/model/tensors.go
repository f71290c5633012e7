package model

import (
	"github.com/gomlx/gomlx/pkg/core/tensors"
)

// Tensors converts the whole dataset into two gomlx tensors shaped
// [Len, InputCount] and [Len, OutputCount].
func (d *Dataset) Tensors() (inputs *tensors.Tensor, outputs *tensors.Tensor, err error) {
	indices := make([]int, len(d.records))
	for i := range indices {
		indices[i] = i
	}
	b, err := d.Batch(indices)
	if err != nil {
		return nil, nil, err
	}
	inT, outT := b.ToGomlxTensors()
	return inT, outT, nil
}

// ToGomlxTensors converts a flat batch to gomlx tensors shaped
// [BatchSize, InputDim] and [BatchSize, OutputDim]. Empty batches and
// zero-width sides yield zero-sized tensors.
func (b *BatchFlat) ToGomlxTensors() (*tensors.Tensor, *tensors.Tensor) {
	return tensors.FromFlatDataAndDimensions(b.Inputs, b.BatchSize, b.InputDim),
		tensors.FromFlatDataAndDimensions(b.Outputs, b.BatchSize, b.OutputDim)
}

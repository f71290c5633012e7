package model

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"
)

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"training", "training"},
		{"file:with:colons", "file_with_colons"},
		{"file/with\\slashes", "file_with_slashes"},
		{"trailing dots...", "trailing dots"},
		{"multiple   spaces", "multiple spaces"},
		{"..", "_"},
		{"", "_"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := sanitizeFileName(tt.input)
			if got != tt.want {
				t.Errorf("sanitizeFileName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestDatasetSpec_Validate(t *testing.T) {
	tests := []struct {
		name    string
		spec    DatasetSpec
		wantErr bool
	}{
		{"valid", DatasetSpec{Delimiter: ",", Inputs: 2, Outputs: 1}, false},
		{"outputs only", DatasetSpec{Delimiter: ";", Outputs: 1}, false},
		{"empty delimiter", DatasetSpec{Inputs: 1, Outputs: 1}, true},
		{"zero width", DatasetSpec{Delimiter: ","}, true},
		{"negative inputs", DatasetSpec{Delimiter: ",", Inputs: -1, Outputs: 2}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.spec.Validate()
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidSpec) {
					t.Errorf("Validate() = %v, want ErrInvalidSpec", err)
				}
				return
			}
			if err != nil {
				t.Errorf("Validate() unexpected error: %v", err)
			}
		})
	}
}

func TestDatasetSpec_ColumnNames(t *testing.T) {
	spec := DatasetSpec{Delimiter: ",", Inputs: 2, Outputs: 3}
	want := []string{"in1", "in2", "out1", "out2", "out3"}
	if got := spec.ColumnNames(); !reflect.DeepEqual(got, want) {
		t.Errorf("ColumnNames() = %v, want %v", got, want)
	}
}

func TestNewDataset_RejectsWrongShape(t *testing.T) {
	records := []Record{
		{Inputs: []float32{1, 2}, Outputs: []float32{3}},
		{Inputs: []float32{1}, Outputs: []float32{3}},
	}
	if _, err := NewDataset(2, 1, []string{"a", "b", "c"}, records); err == nil {
		t.Fatal("expected error for record with wrong input length")
	}
}

func TestDataset_AccessorsAndBatch(t *testing.T) {
	records := []Record{
		{Inputs: []float32{1, 2}, Outputs: []float32{5}},
		{Inputs: []float32{3, 4}, Outputs: []float32{7}},
		{Inputs: []float32{5, 6}, Outputs: []float32{9}},
	}
	columns := []string{"a", "b", "c"}
	ds, err := NewDataset(2, 1, columns, records)
	if err != nil {
		t.Fatalf("NewDataset failed: %v", err)
	}

	// the dataset must not alias the caller's slices
	columns[0] = "changed"
	records[0] = Record{}

	if ds.Len() != 3 || ds.InputCount() != 2 || ds.OutputCount() != 1 {
		t.Fatalf("unexpected shape: len=%d in=%d out=%d", ds.Len(), ds.InputCount(), ds.OutputCount())
	}
	if got := ds.Columns(); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Errorf("Columns() = %v", got)
	}
	r0, err := ds.Record(0)
	if err != nil || r0.Inputs[0] != 1 {
		t.Errorf("Record(0) = %v, %v", r0, err)
	}
	if _, err := ds.Record(3); err == nil {
		t.Error("expected out of range error")
	}

	b, err := ds.Batch([]int{2, 0})
	if err != nil {
		t.Fatalf("Batch failed: %v", err)
	}
	if !reflect.DeepEqual(b.Inputs, []float32{5, 6, 1, 2}) {
		t.Errorf("batch inputs = %v", b.Inputs)
	}
	if !reflect.DeepEqual(b.Outputs, []float32{9, 5}) {
		t.Errorf("batch outputs = %v", b.Outputs)
	}
	if _, err := ds.Batch([]int{7}); err == nil {
		t.Error("expected error for out of range batch index")
	}
}

func TestDataset_Tensors(t *testing.T) {
	ds, err := NewDataset(2, 1, nil, []Record{
		{Inputs: []float32{1, 2}, Outputs: []float32{5}},
		{Inputs: []float32{3, 4}, Outputs: []float32{7}},
	})
	if err != nil {
		t.Fatalf("NewDataset failed: %v", err)
	}
	in, out, err := ds.Tensors()
	if err != nil {
		t.Fatalf("Tensors failed: %v", err)
	}
	if in == nil || out == nil {
		t.Fatal("Tensors returned nil tensor(s)")
	}
	if dims := in.Shape().Dimensions; !reflect.DeepEqual(dims, []int{2, 2}) {
		t.Errorf("input dims = %v, want [2 2]", dims)
	}
	if dims := out.Shape().Dimensions; !reflect.DeepEqual(dims, []int{2, 1}) {
		t.Errorf("output dims = %v, want [2 1]", dims)
	}

}

func TestDataset_TensorsZeroSized(t *testing.T) {
	tests := []struct {
		name            string
		inputs, outputs int
		records         []Record
		wantIn, wantOut []int
	}{
		{"empty dataset", 2, 1, nil, []int{0, 2}, []int{0, 1}},
		{"zero outputs", 2, 0, []Record{
			{Inputs: []float32{1, 2}, Outputs: []float32{}},
			{Inputs: []float32{3, 4}, Outputs: []float32{}},
		}, []int{2, 2}, []int{2, 0}},
		{"zero inputs", 0, 1, []Record{{Inputs: []float32{}, Outputs: []float32{9}}}, []int{1, 0}, []int{1, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds, err := NewDataset(tt.inputs, tt.outputs, nil, tt.records)
			if err != nil {
				t.Fatalf("NewDataset failed: %v", err)
			}
			in, out, err := ds.Tensors()
			if err != nil {
				t.Fatalf("Tensors failed: %v", err)
			}
			if dims := in.Shape().Dimensions; !reflect.DeepEqual(dims, tt.wantIn) {
				t.Errorf("input dims = %v, want %v", dims, tt.wantIn)
			}
			if dims := out.Shape().Dimensions; !reflect.DeepEqual(dims, tt.wantOut) {
				t.Errorf("output dims = %v, want %v", dims, tt.wantOut)
			}
		})
	}
}

func TestArchiveJob_Lifecycle(t *testing.T) {
	job := NewArchiveJob("https://example.com/a.zip", "/tmp/x")
	if job.State != JobPending {
		t.Fatalf("new job state = %s", job.State)
	}

	for _, next := range []JobState{JobDownloading, JobExtracting, JobDone} {
		if err := job.Advance(next); err != nil {
			t.Fatalf("Advance(%s) failed: %v", next, err)
		}
	}
	if err := job.Fail(errors.New("late")); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Fail after Done = %v, want ErrInvalidTransition", err)
	}

	skip := NewArchiveJob("u", "d")
	if err := skip.Advance(JobExtracting); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("skipping Downloading = %v, want ErrInvalidTransition", err)
	}

	failed := NewArchiveJob("u", "d")
	_ = failed.Advance(JobDownloading)
	reason := errors.New("boom")
	if err := failed.Fail(reason); err != nil {
		t.Fatalf("Fail failed: %v", err)
	}
	if failed.State != JobFailed || failed.Err != reason {
		t.Errorf("failed job = %+v", failed)
	}
	if err := failed.Advance(JobExtracting); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Advance after Failed = %v, want ErrInvalidTransition", err)
	}
}

func TestPreset_StagingDir(t *testing.T) {
	p := Preset{Name: "mnist-training", Kind: KindArchive, Family: "mnist", Split: "training"}

	got := p.StagingDir(&PathConfig{BasePath: "/tmp"})
	want := filepath.Join("/tmp", "visrec-datasets", "mnist", "training")
	if got != want {
		t.Errorf("StagingDir() = %q, want %q", got, want)
	}

	hostile := Preset{Family: "../..", Split: "a/b"}
	got = hostile.StagingDir(&PathConfig{BasePath: "/base", StagingPath: "{base}/{family}/{split}"})
	if want := filepath.Join("/base", ".._", "a_b"); got != want {
		t.Errorf("StagingDir() = %q, want %q", got, want)
	}
}

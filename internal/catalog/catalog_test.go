package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/handiism/visrec-datasets/internal/http"
	"github.com/handiism/visrec-datasets/internal/model"
)

func TestBuiltinPresets(t *testing.T) {
	cat := Default()

	tests := []struct {
		name      string
		kind      model.PresetKind
		inputs    int
		outputs   int
		hasHeader bool
	}{
		{"sonar", model.KindTabular, 60, 1, false},
		{"iris", model.KindTabular, 4, 3, true},
		{"swedish-auto-insurance", model.KindTabular, 1, 1, false},
		{"mnist-training", model.KindArchive, 0, 0, false},
		{"mnist-testing", model.KindArchive, 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := cat.Lookup(tt.name)
			if err != nil {
				t.Fatalf("Lookup failed: %v", err)
			}
			if p.Kind != tt.kind {
				t.Errorf("kind = %s, want %s", p.Kind, tt.kind)
			}
			if tt.kind == model.KindTabular {
				if p.Spec.Inputs != tt.inputs || p.Spec.Outputs != tt.outputs || p.Spec.HasHeader != tt.hasHeader {
					t.Errorf("spec = %+v", p.Spec)
				}
			}
		})
	}
}

func TestMNISTStagingDirs(t *testing.T) {
	cat := Default()
	cfg := &model.PathConfig{BasePath: "/tmp"}

	for split, want := range map[string]string{
		"mnist-training": filepath.FromSlash("/tmp/visrec-datasets/mnist/training"),
		"mnist-testing":  filepath.FromSlash("/tmp/visrec-datasets/mnist/testing"),
	} {
		p, err := cat.Lookup(split)
		if err != nil {
			t.Fatal(err)
		}
		if got := p.StagingDir(cfg); got != want {
			t.Errorf("%s staging dir = %q, want %q", split, got, want)
		}
	}
}

func TestLookup_Unknown(t *testing.T) {
	_, err := Default().Lookup("cifar")
	if !errors.Is(err, ErrUnknownPreset) {
		t.Fatalf("error = %v, want ErrUnknownPreset", err)
	}
}

func TestLookup_NormalizesNames(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"  IRIS ", "iris"},
		{"Swedish_Auto_Insurance", "swedish-auto-insurance"},
		{"SwedishAutoInsurance", "swedish-auto-insurance"},
		{"mnist_testing", "mnist-testing"},
	}

	for _, tt := range tests {
		p, err := Default().Lookup(tt.input)
		if err != nil || p.Name != tt.want {
			t.Errorf("Lookup(%q) = %q, %v, want %q", tt.input, p.Name, err, tt.want)
		}
	}
}

func TestNames_Sorted(t *testing.T) {
	want := []string{"iris", "mnist-testing", "mnist-training", "sonar", "swedish-auto-insurance"}
	if got := Default().Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("Names = %v, want %v", got, want)
	}
}

func TestResolve(t *testing.T) {
	cat := Default()

	tests := []struct {
		name  string
		input string
		want  []string
		err   error
	}{
		{"single", "sonar", []string{"sonar"}, nil},
		{"comma separated", "iris,sonar", []string{"iris", "sonar"}, nil},
		{"mixed separators", "iris, mnist-testing\nsonar", []string{"iris", "mnist-testing", "sonar"}, nil},
		{"duplicates dropped", "iris,IRIS, iris", []string{"iris"}, nil},
		{"empty", " , \n", nil, ErrNoPresetSelected},
		{"unknown", "iris,nope", nil, ErrUnknownPreset},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			presets, err := cat.Resolve(tt.input)
			if !errors.Is(err, tt.err) {
				t.Fatalf("Resolve error = %v, want %v", err, tt.err)
			}
			var got []string
			for _, p := range presets {
				got = append(got, p.Name)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Resolve = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNew_RejectsInvalidPresets(t *testing.T) {
	valid := model.DatasetSpec{Delimiter: ",", Inputs: 1, Outputs: 1}

	tests := []struct {
		name   string
		preset model.Preset
		want   error
	}{
		{"malformed url", model.Preset{Name: "x", URL: "ftp://host/x.csv", Spec: valid}, http.ErrMalformedAddress},
		{"invalid spec", model.Preset{Name: "x", URL: "https://host/x.csv"}, model.ErrInvalidSpec},
		{"archive without split", model.Preset{Name: "x", Kind: model.KindArchive, URL: "https://host/x.zip", Family: "f"}, nil},
		{"no name", model.Preset{URL: "https://host/x.csv", Spec: valid}, nil},
		{"name with comma", model.Preset{Name: "a,b", URL: "https://host/x.csv", Spec: valid}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.preset)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "presets.json")
	content := `{
  "presets": [
    {"name": "wine", "url": "https://example.com/wine.csv", "delimiter": ";", "inputs": 11, "outputs": 1, "has_header": true},
    {"name": "iris", "url": "https://example.com/iris.csv", "inputs": 4, "outputs": 3},
    {"name": "fashion-testing", "kind": "archive", "url": "https://example.com/f.zip", "family": "fashion", "split": "testing"}
  ]
}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cat, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	wine, err := cat.Lookup("wine")
	if err != nil {
		t.Fatal(err)
	}
	if wine.Spec.Delimiter != ";" || wine.Spec.Inputs != 11 || !wine.Spec.HasHeader {
		t.Errorf("wine spec = %+v", wine.Spec)
	}

	iris, _ := cat.Lookup("iris")
	if iris.URL != "https://example.com/iris.csv" || iris.Spec.Delimiter != "," {
		t.Errorf("iris was not overridden: %+v", iris)
	}

	fashion, _ := cat.Lookup("fashion-testing")
	if fashion.Kind != model.KindArchive {
		t.Errorf("fashion kind = %s", fashion.Kind)
	}

	if _, err := cat.Lookup("sonar"); err != nil {
		t.Errorf("builtin presets should remain: %v", err)
	}
	if len(cat.Presets()) != 7 {
		t.Errorf("got %d presets, want 7", len(cat.Presets()))
	}
}

func TestLoadFile_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "presets.yaml")
	content := `presets:
  - name: wine
    url: https://example.com/wine.csv
    delimiter: ";"
    inputs: 11
    outputs: 1
    has_header: true
  - name: fashion-training
    kind: archive
    url: https://example.com/fashion.zip
    family: fashion
    split: training
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cat, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	wine, err := cat.Lookup("wine")
	if err != nil || wine.Spec.Delimiter != ";" || wine.Spec.Inputs != 11 {
		t.Errorf("wine = %+v, %v", wine, err)
	}
	fashion, err := cat.Lookup("fashion-training")
	if err != nil || fashion.Kind != model.KindArchive || fashion.Split != "training" {
		t.Errorf("fashion = %+v, %v", fashion, err)
	}
}

func TestLoadFile_Errors(t *testing.T) {
	dir := t.TempDir()

	badKind := filepath.Join(dir, "kind.json")
	os.WriteFile(badKind, []byte(`{"presets": [{"name": "x", "kind": "video", "url": "https://h/x"}]}`), 0644)
	if _, err := LoadFile(badKind); err == nil {
		t.Error("expected error for unknown kind")
	}

	badSpec := filepath.Join(dir, "spec.json")
	os.WriteFile(badSpec, []byte(`{"presets": [{"name": "x", "url": "https://h/x.csv"}]}`), 0644)
	if _, err := LoadFile(badSpec); !errors.Is(err, model.ErrInvalidSpec) {
		t.Errorf("error = %v, want ErrInvalidSpec", err)
	}

	if _, err := LoadFile(filepath.Join(dir, "missing.json")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error = %v, want ErrNotExist", err)
	}
}

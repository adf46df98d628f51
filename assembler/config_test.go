package assembler

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "avrasm.json")
	if err := os.WriteFile(path, []byte(`{"workers": 4, "reportUnusedLabels": false}`), 0o644); err != nil {
		t.Fatal(err)
	}

	conf, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if conf.Workers != 4 || conf.ReportUnusedLabels || !conf.ReportUnknownDirectives {
		t.Errorf("Unexpected config %+v", conf)
	}

	if err := os.WriteFile(path, []byte(`{"workers": "many"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Errorf("Expected a parse error")
	}
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Errorf("Expected an error for a missing file")
	}
}

func TestUnusedLabelsCanBeSilenced(t *testing.T) {
	defer SetConfig(GetConfig())
	conf := DefaultConfig()
	conf.ReportUnusedLabels = false
	conf.ReportUnknownDirectives = false
	SetConfig(conf)

	res := AssembleListing("unused: nop\n.foo\n")
	if len(res.Diagnostics) != 0 {
		t.Errorf("Expected no warnings, got %v", res.Diagnostics)
	}
}

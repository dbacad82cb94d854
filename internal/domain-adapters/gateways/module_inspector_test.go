package gateways

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/ochairo/proclist/internal/domain/services"
)

func TestModuleInspector_Inspect_TestBinary(t *testing.T) {
	self, err := os.Executable()
	if err != nil {
		t.Skipf("cannot locate test binary: %v", err)
	}

	info, err := NewModuleInspector().Inspect(self)
	if err != nil {
		t.Fatalf("Inspect() error = %v", err)
	}

	wantFormat := map[string]string{
		"linux":   "elf",
		"freebsd": "elf",
		"darwin":  "macho",
		"windows": "pe",
	}[runtime.GOOS]
	if wantFormat != "" && info.Format != wantFormat {
		t.Errorf("Format = %q, want %q", info.Format, wantFormat)
	}
	if want := services.NormalizeArch(runtime.GOARCH); info.Arch != want {
		t.Errorf("Arch = %q (machine %q), want %q", info.Arch, info.MachineName, want)
	}
	if info.Size <= 0 {
		t.Errorf("Size = %d, want positive", info.Size)
	}
	if info.Path != self {
		t.Errorf("Path = %q, want %q", info.Path, self)
	}
}

func TestModuleInspector_Inspect_Errors(t *testing.T) {
	dir := t.TempDir()

	text := filepath.Join(dir, "proclist.so")
	if err := os.WriteFile(text, []byte("not a module at all"), 0o600); err != nil {
		t.Fatal(err)
	}
	short := filepath.Join(dir, "short.so")
	if err := os.WriteFile(short, []byte{0x7f}, 0o600); err != nil {
		t.Fatal(err)
	}
	truncated := filepath.Join(dir, "truncated.so")
	if err := os.WriteFile(truncated, []byte("\x7fELF"), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		path string
	}{
		{"missing file", filepath.Join(dir, "absent.so")},
		{"unknown format", text},
		{"too short", short},
		{"truncated ELF", truncated},
	}

	inspector := NewModuleInspector()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if info, err := inspector.Inspect(tt.path); err == nil {
				t.Errorf("Inspect() = %+v, want error", info)
			}
		})
	}
}

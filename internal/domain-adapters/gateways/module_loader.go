package gateways

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"plugin"

	"github.com/moby/sys/atomicwriter"
	"github.com/zeebo/blake3"

	"github.com/ochairo/proclist/internal/domain/entities"
	"github.com/ochairo/proclist/internal/domain/interfaces/gateways"
)

// SnapshotSymbol is the function every native module must export
const SnapshotSymbol = "Snapshot"

// verifyDirName holds the content-addressed copies modules are opened from
const verifyDirName = ".verify"

// SnapshotFunc is the signature of the exported Snapshot symbol
type SnapshotFunc = func() ([]map[string]interface{}, error)

// PluginLoader loads native modules built as Go plugins
type PluginLoader struct{}

// NewPluginLoader creates a plugin loader
func NewPluginLoader() *PluginLoader {
	return &PluginLoader{}
}

// Load opens identifier+ModuleSuffix and resolves the Snapshot symbol.
//
// The runtime keeps the outcome of every plugin.Open, failures included, per
// path for the life of the process. The module is therefore opened through a
// copy named after its blake3 digest, so replaced content is always opened
// afresh while unchanged content reuses the earlier result.
func (l *PluginLoader) Load(identifier string) (gateways.NativeModule, error) {
	path := entities.WithModuleSuffix(identifier)

	openPath, err := contentAddressedCopy(path)
	if err != nil {
		return nil, err
	}

	p, err := plugin.Open(openPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open module: %w", err)
	}

	sym, err := p.Lookup(SnapshotSymbol)
	if err != nil {
		return nil, fmt.Errorf("module does not export %s: %w", SnapshotSymbol, err)
	}

	fn, ok := sym.(SnapshotFunc)
	if !ok {
		// Exported variables come back as pointers
		if ptr, isPtr := sym.(*SnapshotFunc); isPtr && ptr != nil && *ptr != nil {
			fn = *ptr
		} else {
			return nil, fmt.Errorf("module symbol %s has type %T, want %T", SnapshotSymbol, sym, fn)
		}
	}

	return &pluginModule{snapshot: fn}, nil
}

// contentAddressedCopy returns <dir>/.verify/<blake3>.so for the module at
// path, writing the copy when it does not exist yet
func contentAddressedCopy(path string) (string, error) {
	//nolint:gosec // G304: path is the module being loaded
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read module: %w", err)
	}

	sum := blake3.Sum256(data)
	dir := filepath.Join(filepath.Dir(path), verifyDirName)
	copyPath := filepath.Join(dir, hex.EncodeToString(sum[:])+entities.ModuleSuffix)

	if _, err := os.Stat(copyPath); err == nil {
		return copyPath, nil
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dir, err)
	}
	if err := atomicwriter.WriteFile(copyPath, data, ArtifactMode); err != nil {
		return "", fmt.Errorf("failed to stage module: %w", err)
	}
	return copyPath, nil
}

type pluginModule struct {
	snapshot SnapshotFunc
}

func (m *pluginModule) Snapshot() ([]entities.ProcessRecord, error) {
	raw, err := m.snapshot()
	if err != nil {
		return nil, err
	}
	records := make([]entities.ProcessRecord, len(raw))
	for i, r := range raw {
		records[i] = entities.ProcessRecord(r)
	}
	return records, nil
}

package gateways

import (
	"bytes"
	"debug/elf"
	"debug/macho"
	"debug/pe"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/ochairo/proclist/internal/domain/entities"
	"github.com/ochairo/proclist/internal/domain/services"
)

// moduleInspector reads object file headers using pure Go
// Uses debug/elf, debug/macho and debug/pe - no external tools required
type moduleInspector struct{}

// NewModuleInspector creates a new module inspector
//
//nolint:revive // unexported-return: Intentionally returns concrete type for testability
func NewModuleInspector() *moduleInspector {
	return &moduleInspector{}
}

// Inspect identifies the object format and architecture of a module file
func (m *moduleInspector) Inspect(path string) (*entities.ModuleInfo, error) {
	//nolint:gosec // G304: path is the module being inspected
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open module: %w", err)
	}
	//nolint:errcheck // Defer close on read-only file
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat module: %w", err)
	}

	magic := make([]byte, 4)
	if _, err := io.ReadFull(f, magic); err != nil {
		return nil, fmt.Errorf("module too short to identify: %w", err)
	}

	var info *entities.ModuleInfo
	switch {
	case bytes.Equal(magic, []byte(elf.ELFMAG)):
		info, err = inspectELF(f)
	case bytes.HasPrefix(magic, []byte("MZ")):
		info, err = inspectPE(f)
	case isMachO(magic):
		info, err = inspectMachO(f)
	default:
		return nil, fmt.Errorf("unrecognized module format (magic %x)", magic)
	}
	if err != nil {
		return nil, err
	}

	info.Path = path
	info.Size = stat.Size()
	info.Arch = services.NormalizeArch(info.MachineName)
	return info, nil
}

func inspectELF(r io.ReaderAt) (*entities.ModuleInfo, error) {
	f, err := elf.NewFile(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse ELF file: %w", err)
	}
	//nolint:errcheck // Defer close on read-only file
	defer f.Close()

	// ET_DYN without an interpreter is a library; with one it is a PIE executable
	shared := f.Type == elf.ET_DYN
	for _, prog := range f.Progs {
		if prog.Type == elf.PT_INTERP {
			shared = false
			break
		}
	}

	return &entities.ModuleInfo{
		Format:       "elf",
		MachineName:  elfMachine(f.Machine),
		SharedObject: shared,
	}, nil
}

func elfMachine(m elf.Machine) string {
	switch m {
	case elf.EM_X86_64:
		return "amd64"
	case elf.EM_AARCH64:
		return "arm64"
	case elf.EM_ARM:
		return "arm"
	case elf.EM_386:
		return "386"
	default:
		return m.String()
	}
}

func isMachO(magic []byte) bool {
	for _, m := range []uint32{macho.Magic32, macho.Magic64} {
		if binary.LittleEndian.Uint32(magic) == m || binary.BigEndian.Uint32(magic) == m {
			return true
		}
	}
	return false
}

func inspectMachO(r io.ReaderAt) (*entities.ModuleInfo, error) {
	f, err := macho.NewFile(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Mach-O file: %w", err)
	}
	//nolint:errcheck // Defer close on read-only file
	defer f.Close()

	var machine string
	switch f.Cpu {
	case macho.CpuAmd64:
		machine = "amd64"
	case macho.CpuArm64:
		machine = "arm64"
	case macho.CpuArm:
		machine = "arm"
	case macho.Cpu386:
		machine = "386"
	default:
		machine = f.Cpu.String()
	}

	return &entities.ModuleInfo{
		Format:       "macho",
		MachineName:  machine,
		SharedObject: f.Type == macho.TypeDylib || f.Type == macho.TypeBundle,
	}, nil
}

func inspectPE(r io.ReaderAt) (*entities.ModuleInfo, error) {
	f, err := pe.NewFile(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse PE file: %w", err)
	}
	//nolint:errcheck // Defer close on read-only file
	defer f.Close()

	var machine string
	switch f.Machine {
	case pe.IMAGE_FILE_MACHINE_AMD64:
		machine = "amd64"
	case pe.IMAGE_FILE_MACHINE_ARM64:
		machine = "arm64"
	case pe.IMAGE_FILE_MACHINE_ARMNT:
		machine = "arm"
	case pe.IMAGE_FILE_MACHINE_I386:
		machine = "386"
	default:
		machine = fmt.Sprintf("pe-machine-%#x", f.Machine)
	}

	return &entities.ModuleInfo{
		Format:       "pe",
		MachineName:  machine,
		SharedObject: f.Characteristics&pe.IMAGE_FILE_DLL != 0,
	}, nil
}

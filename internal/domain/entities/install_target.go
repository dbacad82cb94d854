package entities

import (
	"path/filepath"
	"strings"
)

// ModuleSuffix is the file suffix of a loadable native module
const ModuleSuffix = ".so"

// InstallTarget defines where artifacts land and which file is the usable module
type InstallTarget struct {
	DestinationDir string
	ModuleFileName string
}

// NewInstallTarget creates an install target, appending the module suffix when missing
func NewInstallTarget(destinationDir, moduleFileName string) InstallTarget {
	return InstallTarget{
		DestinationDir: destinationDir,
		ModuleFileName: WithModuleSuffix(moduleFileName),
	}
}

// DefaultModulePath returns the path the module has when installed directly in DestinationDir
func (t InstallTarget) DefaultModulePath() string {
	return filepath.Join(t.DestinationDir, t.ModuleFileName)
}

// WithModuleSuffix appends ModuleSuffix unless name already ends with it
func WithModuleSuffix(name string) string {
	if name == "" || strings.HasSuffix(name, ModuleSuffix) {
		return name
	}
	return name + ModuleSuffix
}

// ModuleIdentifier strips ModuleSuffix from a module path
func ModuleIdentifier(path string) string {
	return strings.TrimSuffix(path, ModuleSuffix)
}

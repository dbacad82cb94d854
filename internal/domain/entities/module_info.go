package entities

// ModuleInfo describes the container format of a module file on disk
type ModuleInfo struct {
	Path         string
	Format       string // "elf", "macho", "pe"
	Arch         string // Bucketed: "x64", "arm", "x86"
	MachineName  string // Raw machine identifier from the header
	SharedObject bool   // Loadable library rather than an executable
	Size         int64
}

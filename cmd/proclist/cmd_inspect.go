package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/ochairo/proclist/internal/domain-adapters/gateways"
	"github.com/ochairo/proclist/internal/domain/services"
)

func runInspect(ctx context.Context, args []string) {
	fs := pflag.NewFlagSet("inspect", pflag.ExitOnError)
	var flags policyFlags
	flags.register(fs)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: proclist inspect [module] [options]

Show the object format (ELF, Mach-O, PE) and architecture of a module file
and whether it matches this host. Without an argument the installed module
is inspected.

Options:
`)
		fs.PrintDefaults()
	}

	parseFlags(fs, args)

	path := fs.Arg(0)
	if path == "" {
		policy, err := flags.load(ctx)
		if err != nil {
			fail("%v", err)
		}
		path = newModuleVerifier(flags.logger()).ResolveModulePath(policy.Target, policy.ExcludePatterns)
	}

	info, err := gateways.NewModuleInspector().Inspect(path)
	if err != nil {
		fail("%v", err)
	}

	host := services.CurrentHost()
	fmt.Printf("Path:          %s\n", info.Path)
	fmt.Printf("Format:        %s\n", info.Format)
	fmt.Printf("Machine:       %s (%s)\n", info.MachineName, info.Arch)
	fmt.Printf("Shared object: %t\n", info.SharedObject)
	fmt.Printf("Size:          %d bytes\n", info.Size)

	if info.Arch != services.NormalizeArch(host.Arch) {
		fmt.Printf("%s built for %s, this host is %s\n", warningSymbol, info.Arch, services.NormalizeArch(host.Arch))
		return
	}
	fmt.Printf("%s matches this host (%s/%s)\n", successSymbol, host.OS, host.Arch)
}

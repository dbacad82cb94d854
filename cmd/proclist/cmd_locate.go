package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/pflag"
)

func runLocate(ctx context.Context, args []string) {
	fs := pflag.NewFlagSet("locate", pflag.ExitOnError)
	var flags policyFlags
	flags.register(fs)
	exclude := fs.StringSlice("exclude", nil, "Additional exclude patterns (relative to the destination)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: proclist locate [options]

Print the module path that verify and snapshot would use. The destination
directory is searched recursively; when no module is found the default
path is printed.

Options:
`)
		fs.PrintDefaults()
	}

	parseFlags(fs, args)

	policy, err := flags.load(ctx)
	if err != nil {
		fail("%v", err)
	}

	excludes := append(append([]string(nil), policy.ExcludePatterns...), *exclude...)
	fmt.Println(newModuleVerifier(flags.logger()).ResolveModulePath(policy.Target, excludes))
}

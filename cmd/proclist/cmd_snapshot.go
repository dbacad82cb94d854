package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/ochairo/proclist/internal/domain-adapters/gateways"
	"github.com/ochairo/proclist/internal/domain/entities"
	"github.com/ochairo/proclist/internal/domain/services"
)

func runSnapshot(ctx context.Context, args []string) {
	fs := pflag.NewFlagSet("snapshot", pflag.ExitOnError)
	var flags policyFlags
	flags.register(fs)
	verbose := fs.BoolP("verbose", "v", false, "Include every field")
	fields := fs.StringSlice("fields", nil, fmt.Sprintf("Fields to include %v", entities.AllowedFields))

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: proclist snapshot [options]

List running processes as JSON through the installed native module.
By default each record carries %v.

Options:
`, entities.DefaultFields)
		fs.PrintDefaults()
	}

	parseFlags(fs, args)

	policy, err := flags.load(ctx)
	if err != nil {
		fail("%v", err)
	}

	logger := flags.logger()
	path := newModuleVerifier(logger).ResolveModulePath(policy.Target, policy.ExcludePatterns)
	module, err := gateways.NewPluginLoader().Load(entities.ModuleIdentifier(path))
	if err != nil {
		fail("failed to load %s: %v (run \"proclist install\" first)", path, err)
	}

	opts := services.SnapshotOptions{Verbose: *verbose, Fields: *fields}
	result := <-services.NewSnapshotter(module).Snapshot(ctx, opts)
	if result.Err != nil {
		fail("%v", result.Err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result.Records); err != nil {
		fail("failed to write records: %v", err)
	}
}

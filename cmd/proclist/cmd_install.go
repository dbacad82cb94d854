package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"github.com/ochairo/proclist/internal/domain-adapters/gateways"
	orchestrators "github.com/ochairo/proclist/internal/domain-orchestrators"
	"github.com/ochairo/proclist/internal/domain/entities"
	"github.com/ochairo/proclist/internal/domain/interfaces"
)

func runInstall(ctx context.Context, args []string) {
	fs := pflag.NewFlagSet("install", pflag.ExitOnError)
	var flags policyFlags
	flags.register(fs)
	keyFile := fs.String("key", "", "Armored OpenPGP public key for artifact signatures (overrides the policy)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: proclist install [options]

Make sure a working native module is installed.

The installed module is verified first. When it is missing or does not
load, the prebuilt artifacts matching this OS and architecture are
downloaded and verified again. If that fails too, the module is built
from source with the policy's toolchain.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # Install using the built-in policy into ./lib
  proclist install

  # Install with a custom policy and build tool
  proclist install --policy proclist.yml --toolchain node-gyp
`)
	}

	parseFlags(fs, args)

	policy, err := flags.load(ctx)
	if err != nil {
		fail("%v", err)
	}
	if *keyFile != "" {
		policy.KeyFile = *keyFile
	}

	result, err := executeInstall(ctx, policy, flags.logger())
	if err != nil && result == nil {
		fail("%v", err)
	}
	if !reportInstall(os.Stdout, os.Stderr, result) {
		os.Exit(1)
	}
}

// reportInstall prints the fallback warning, if any, and the final status line.
// It reports whether the install succeeded.
func reportInstall(stdout, stderr io.Writer, result *orchestrators.InstallResult) bool {
	if result.PrebuiltErr != nil {
		fmt.Fprintf(stderr, "%s %s (%v)\n", warningSymbol, orchestrators.FallbackMessage, result.PrebuiltErr)
	}
	if !result.Success() {
		fmt.Fprintf(stderr, "%s %s\n", errorSymbol, result.Summary())
		return false
	}
	fmt.Fprintf(stdout, "%s %s\n", successSymbol, result.Summary())
	return true
}

func executeInstall(ctx context.Context, policy *entities.ProvisioningPolicy, logger interfaces.Logger) (*orchestrators.InstallResult, error) {
	downloaderOpts := []gateways.DownloaderOption{gateways.WithLogger(logger)}
	if policy.VerifiesSignatures() {
		sigs, err := gateways.NewGPGVerifier(ctx, policy.KeyFile, policy.KeysURL, nil)
		if err != nil {
			return nil, err
		}
		downloaderOpts = append(downloaderOpts, gateways.WithSignatureVerifier(sigs))
	}

	verifier := newModuleVerifier(logger)
	downloads := orchestrators.NewDownloadOrchestrator(
		gateways.NewDownloader(downloaderOpts...),
		verifier,
		orchestrators.DownloadOrchestratorConfig{Logger: logger},
	)
	builder := gateways.NewToolchainBuilder(gateways.ToolchainBuilderConfig{
		Toolchain: policy.Toolchain,
		Logger:    logger,
	})

	orch := orchestrators.NewInstallOrchestrator(verifier, downloads, builder, logger)
	return orch.Install(ctx, policy)
}

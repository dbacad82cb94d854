package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/ochairo/proclist/internal/domain-adapters/gateways"
	"github.com/ochairo/proclist/internal/domain/entities"
	"github.com/ochairo/proclist/internal/external-adapters/yaml"
)

func runPack(ctx context.Context, args []string) {
	fs := pflag.NewFlagSet("pack", pflag.ExitOnError)
	var (
		outputDir   = fs.StringP("output", "o", "dist", "Dist root to write into")
		osDir       = fs.String("os-dir", "", "OS directory in the dist layout (e.g. linux, win)")
		archDir     = fs.String("arch-dir", "x86", "Architecture directory in the dist layout")
		targetOS    = fs.String("target-os", "", "Target OS recorded in the policy entry (default: --os-dir)")
		targetArch  = fs.String("target-arch", "", "Target architecture recorded in the policy entry (empty: any)")
		compression = fs.String("compress", "", "Compress the artifact (.gz or .zst)")
		algorithm   = fs.StringP("algorithm", "a", gateways.AlgorithmSHA256, "Digest algorithm (sha256 or blake3)")
		baseURL     = fs.String("base-url", "", "Base URL the dist root is served from (default: relative url)")
	)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: proclist pack <module> --os-dir <dir> [options]

Publish a built module into the dist layout that install downloads from
(<output>/<os-dir>/<arch-dir>/<module>) and print the matching policy entry.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # Publish a linux module compressed with zstd
  proclist pack build/proclist.so --os-dir linux --target-os linux --compress .zst
`)
	}

	parseFlags(fs, args)

	if fs.NArg() < 1 || *osDir == "" {
		fmt.Fprintf(os.Stderr, "Error: module path and --os-dir are required\n\n")
		fs.Usage()
		os.Exit(1)
	}

	packaged, err := gateways.NewPackager().PackageModule(ctx, gateways.PackageRequest{
		ModulePath:  fs.Arg(0),
		OutputDir:   *outputDir,
		OSDir:       *osDir,
		ArchDir:     *archDir,
		Compression: *compression,
		Algorithm:   *algorithm,
	})
	if err != nil {
		fail("%v", err)
	}

	recordedOS := *targetOS
	if recordedOS == "" {
		recordedOS = *osDir
	}
	descriptor, err := packaged.Descriptor(*baseURL, recordedOS, *targetArch)
	if err != nil {
		fail("%v", err)
	}

	entry, err := yaml.MarshalArtifacts(entities.ArtifactSet{descriptor})
	if err != nil {
		fail("%v", err)
	}

	fmt.Fprintf(os.Stderr, "%s wrote %s (%d bytes)\n", successSymbol, packaged.Path, packaged.Size)
	fmt.Print(string(entry))
}

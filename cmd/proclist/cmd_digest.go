package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/ochairo/proclist/internal/domain-adapters/gateways"
)

func runDigest(ctx context.Context, args []string) {
	fs := pflag.NewFlagSet("digest", pflag.ExitOnError)
	algorithm := fs.StringP("algorithm", "a", gateways.AlgorithmSHA256, "Digest algorithm (sha256 or blake3)")
	expected := fs.String("verify", "", "Check each file against this \"<algorithm>:<hex>\" digest instead of printing")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: proclist digest <file>... [options]

Print "<algorithm>:<hex>" digests suitable for an artifact's digest field,
or check files against one with --verify.

Options:
`)
		fs.PrintDefaults()
	}

	parseFlags(fs, args)

	if fs.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Error: file path is required\n\n")
		fs.Usage()
		os.Exit(1)
	}

	checksums := gateways.NewChecksumVerifier()
	for _, path := range fs.Args() {
		if *expected != "" {
			if err := checksums.VerifyChecksum(ctx, path, *expected); err != nil {
				fail("%s: %v", path, err)
			}
			fmt.Printf("%s %s\n", successSymbol, path)
			continue
		}
		sum, err := checksums.CalculateChecksum(path, *algorithm)
		if err != nil {
			fail("%v", err)
		}
		fmt.Printf("%s:%s  %s\n", *algorithm, sum, path)
	}
}

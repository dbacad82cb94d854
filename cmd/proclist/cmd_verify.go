package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/ochairo/proclist/internal/domain-adapters/gateways"
	"github.com/ochairo/proclist/internal/domain/entities"
)

func runVerify(ctx context.Context, args []string) {
	fs := pflag.NewFlagSet("verify", pflag.ExitOnError)
	var flags policyFlags
	flags.register(fs)
	sigPath := fs.String("sig", "", "Detached OpenPGP signature the module must match before it is loaded")
	keyFile := fs.String("key", "", "Armored OpenPGP public key for --sig (default: the policy's keys)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: proclist verify [module] [options]

Check that the native module exists and loads. Without an argument the
module is resolved from the policy's install target. With --sig the file
is checked against the detached signature before it is loaded.

Options:
`)
		fs.PrintDefaults()
	}

	parseFlags(fs, args)

	verifier := newModuleVerifier(flags.logger())

	var path string
	var policy *entities.ProvisioningPolicy
	if fs.NArg() > 0 {
		path = fs.Arg(0)
	} else {
		var err error
		if policy, err = flags.load(ctx); err != nil {
			fail("%v", err)
		}
		path = verifier.ResolveModulePath(policy.Target, policy.ExcludePatterns)
	}

	if *sigPath != "" {
		if err := verifyModuleSignature(ctx, &flags, policy, *keyFile, path, *sigPath); err != nil {
			fail("%v", err)
		}
		fmt.Printf("%s %s matches %s\n", successSymbol, path, *sigPath)
	}

	result := verifier.Verify(path)
	switch result.Status {
	case entities.Works:
		fmt.Printf("%s %s works\n", successSymbol, result.Path)
	case entities.LoadFailed:
		fail("%v", result.Err)
	default:
		fail("couldn't find the module at %s", result.Path)
	}
}

// verifyModuleSignature checks path against a local detached signature using
// keyFile, or the policy's key file and keys URL when keyFile is empty
func verifyModuleSignature(ctx context.Context, flags *policyFlags, policy *entities.ProvisioningPolicy, keyFile, path, sigPath string) error {
	keysURL := ""
	if keyFile == "" {
		if policy == nil {
			var err error
			if policy, err = flags.load(ctx); err != nil {
				return err
			}
		}
		keyFile, keysURL = policy.KeyFile, policy.KeysURL
	}

	sigs, err := gateways.NewGPGVerifier(ctx, keyFile, keysURL, nil)
	if err != nil {
		return err
	}
	return sigs.VerifyFile(path, sigPath)
}

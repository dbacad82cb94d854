package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	ctx := context.Background()
	command := os.Args[1]

	// Dispatch to subcommand
	switch command {
	case "install":
		runInstall(ctx, os.Args[2:])
	case "verify":
		runVerify(ctx, os.Args[2:])
	case "locate":
		runLocate(ctx, os.Args[2:])
	case "inspect":
		runInspect(ctx, os.Args[2:])
	case "snapshot":
		runSnapshot(ctx, os.Args[2:])
	case "pack":
		runPack(ctx, os.Args[2:])
	case "digest":
		runDigest(ctx, os.Args[2:])
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`proclist - Process list native module provisioning

Usage:
  proclist <command> [options]

Commands:
  install   Verify the native module, downloading or building it when needed
  verify    Check that the installed module loads
  locate    Print the resolved module path
  inspect   Show the object format and architecture of a module file
  snapshot  List running processes through the installed module
  pack      Publish a built module into the download layout
  digest    Print the sha256 or blake3 digest of a file for policy files

Use "proclist <command> --help" for more information about a command.`)
}

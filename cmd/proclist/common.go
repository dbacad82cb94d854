package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/ochairo/proclist/internal/domain-adapters/gateways"
	"github.com/ochairo/proclist/internal/domain/entities"
	"github.com/ochairo/proclist/internal/domain/interfaces"
	"github.com/ochairo/proclist/internal/domain/interfaces/repositories"
	"github.com/ochairo/proclist/internal/domain/services"
	"github.com/ochairo/proclist/internal/external-adapters/logging"
	"github.com/ochairo/proclist/internal/external-adapters/yaml"
)

var (
	successSymbol = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Render("✔")
	warningSymbol = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Render("⚠")
	errorSymbol   = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Render("✖")
)

// policyFlags are shared by every command that works on an install target
type policyFlags struct {
	policyPath  string
	destination string
	module      string
	toolchain   string
	debug       bool
}

func (p *policyFlags) register(fs *pflag.FlagSet) {
	fs.StringVarP(&p.policyPath, "policy", "p", "", "Provisioning policy file (default: built-in policy)")
	fs.StringVarP(&p.destination, "dest", "d", "", "Override the destination directory")
	fs.StringVar(&p.module, "module", "", "Override the module file name")
	fs.StringVar(&p.toolchain, "toolchain", "", "Override the build toolchain binary")
	fs.BoolVar(&p.debug, "debug", false, "Enable debug logging")
}

// load reads the policy and applies command-line overrides
func (p *policyFlags) load(ctx context.Context) (*entities.ProvisioningPolicy, error) {
	var repo repositories.PolicyRepository = yaml.NewPolicyRepository("")
	policy, err := repo.GetPolicy(ctx, p.policyPath)
	if err != nil {
		return nil, err
	}

	if p.destination != "" {
		policy.Target.DestinationDir = p.destination
	}
	if p.module != "" {
		policy.Target.ModuleFileName = entities.WithModuleSuffix(p.module)
	}
	if p.toolchain != "" {
		policy.Toolchain.Binary = p.toolchain
	}

	if err := policy.Validate(); err != nil {
		return nil, fmt.Errorf("invalid policy: %w", err)
	}
	return policy, nil
}

// logLevel keeps the CLI quiet apart from warnings unless --debug is set
func (p *policyFlags) logLevel() logrus.Level {
	if p.debug {
		return logrus.DebugLevel
	}
	return logrus.WarnLevel
}

func (p *policyFlags) logger() interfaces.Logger {
	return logging.NewLogger(os.Stderr, p.logLevel())
}

func newModuleVerifier(logger interfaces.Logger) *services.ModuleVerifier {
	return services.NewModuleVerifier(gateways.NewPluginLoader(), gateways.NewArtifactFinder(), logger)
}

func parseFlags(fs *pflag.FlagSet, args []string) {
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing flags: %v\n", err)
		os.Exit(1)
	}
}

func fail(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "%s %s\n", errorSymbol, fmt.Sprintf(format, args...))
	os.Exit(1)
}

package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/xab-mack/nexeth/internal/cli"
)

const Version = "0.1.0"

func BuildRoot() *cobra.Command {
	root := &cobra.Command{
		Use:          "nexeth",
		Short:        "Static analysis for Solidity smart contracts",
		Long:         "Nexeth runs a set of detectors over the solc AST of a Solidity file and reports rule violations by severity.",
		Version:      Version,
		SilenceUsage: true,
	}
	cli.AddCommands(root)
	return root
}

// Execute runs the root command; SIGINT and SIGTERM cancel the context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return BuildRoot().ExecuteContext(ctx)
}

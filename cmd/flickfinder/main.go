package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"codeberg.org/snonux/flickfinder/internal/archive"
	"codeberg.org/snonux/flickfinder/internal/cli"
	"codeberg.org/snonux/flickfinder/internal/logging"
	"codeberg.org/snonux/flickfinder/internal/processor"
)

func main() {
	// Create flags instance
	flags := cli.NewFlags()

	// Create root command
	rootCmd := cli.CreateRootCommand(flags)

	// Set up command initialization
	cobra.OnInitialize(func() {
		cli.InitConfig(flags.CfgFile)
	})

	// Set the run function
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runCommand(cmd, args, flags)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Execute command
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func runCommand(cmd *cobra.Command, args []string, flags *cli.Flags) error {
	// Config file and environment values for flags not given on the command line
	flags.LoadFromViper()

	// Handle --archive flag
	if flags.Archive {
		target, err := archive.Directory(flags.OutputDir, time.Now())
		if err != nil {
			return fmt.Errorf("failed to archive photos: %w", err)
		}
		fmt.Printf("Photos archived to: %s\n", target)
		return nil
	}

	logger, err := logging.New(flags.LoggingOptions())
	if err != nil {
		return err
	}

	proc, err := processor.NewProcessor(flags, logger)
	if err != nil {
		return err
	}

	// Handle batch processing
	if flags.BatchFile != "" {
		if len(args) > 0 || flags.Latitude != "" || flags.Longitude != "" {
			return fmt.Errorf("--batch cannot be combined with a phrase or --lat/--lon")
		}
		return proc.ProcessBatch(cmd.Context())
	}

	criteria, err := cli.CriteriaFromArgs(args, flags)
	if err != nil {
		return err
	}
	return proc.ProcessSingle(cmd.Context(), criteria)
}

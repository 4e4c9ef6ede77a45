package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"gobenford/internal/config"
	"gobenford/internal/container"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	// .env is optional; real environment variables take precedence
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := newRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "gobenford",
		Short:         "Test integer data sets against Benford's law",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newAnalyzeCmd(),
		newHistoryCmd(),
		newShowCmd(),
		newReferenceCmd(),
	)
	return rootCmd
}

// newContainer loads configuration and wires the analysis service.
// The run store is opened only when withStore is set.
func newContainer(ctx context.Context, withStore bool) (*container.Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	c, err := container.New(cfg)
	if err != nil {
		return nil, err
	}
	if withStore {
		if err := c.InitWithDatabase(ctx); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Package cli implements the vach command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/zeskeertwee/vach"
)

// Build information set via ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Global flags.
var verbose bool

var rootCmd = &cobra.Command{
	Use:   "vach",
	Short: "Pack, inspect, and unpack .vach archives",
	Long: `Vach is a CLI for the .vach archive container.

Archives hold named byte resources, each independently compressed,
encrypted, and signed. Resources are fetched by identifier without
decoding the rest of the archive.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose debug logging")
	rootCmd.Version = version
}

// Execute runs the root command.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, formatError(err))
	}
	return err
}

// logger returns a debug logger on stderr when --verbose is set, a discard
// logger otherwise.
func logger() *slog.Logger {
	if verbose {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.DiscardHandler)
}

// signalContext returns a context that is canceled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}

// formatError converts vach errors to user-friendly messages.
func formatError(err error) string {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, vach.ErrResourceNotFound):
		return fmt.Sprintf("Error: not found: %v", err)
	case errors.Is(err, vach.ErrMalformedSource):
		return fmt.Sprintf("Error: invalid or corrupt archive: %v", err)
	case errors.Is(err, vach.ErrCrypto):
		return fmt.Sprintf("Error: cryptographic failure (check your keys): %v", err)
	case errors.Is(err, vach.ErrParse):
		return fmt.Sprintf("Error: invalid key material: %v", err)
	case errors.Is(err, vach.ErrMissingFeature):
		return fmt.Sprintf("Error: feature not built in: %v", err)
	case errors.Is(err, context.Canceled):
		return "Error: operation canceled"
	default:
		return fmt.Sprintf("Error: %v", err)
	}
}

// parseMagic converts the --magic flag into the fixed-width array.
func parseMagic(s string) ([vach.MagicLength]byte, error) {
	magic := vach.DefaultMagic()
	if s == "" {
		return magic, nil
	}
	if len(s) != vach.MagicLength {
		return magic, fmt.Errorf("magic must be exactly %d characters, got %q", vach.MagicLength, s)
	}
	copy(magic[:], s)
	return magic, nil
}

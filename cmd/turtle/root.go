package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/turtle/internal/cli"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "turtle",
	Short: "Turtle is a line-oriented turtle graphics interpreter",
	Long: `Turtle reads commands such as "move 100", "left" or "red" and draws on a canvas.
Drawings can be saved as PNG images and the command history replayed as scripts.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// signalContext is cancelled on interrupt or terminate.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
}

// runOptions collects the persistent flags shared by every command.
func runOptions(cmd *cobra.Command) cli.RunOptions {
	flags := cmd.Flags()
	opts := cli.RunOptions{}
	opts.ConfigPath, _ = flags.GetString("config")
	opts.Store, _ = flags.GetString("store")
	opts.Dir, _ = flags.GetString("dir")
	opts.RedisAddr, _ = flags.GetString("redis-addr")
	opts.Debug, _ = flags.GetBool("debug")
	return opts
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML configuration file")
	rootCmd.PersistentFlags().String("store", "", "Store driver: file, memory or redis (overrides config)")
	rootCmd.PersistentFlags().String("dir", "", "Directory for the file store (overrides config)")
	rootCmd.PersistentFlags().String("redis-addr", "", "Redis address for the redis store (overrides config)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging on stderr")
}

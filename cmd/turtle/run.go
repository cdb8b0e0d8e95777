package main

import (
	"github.com/aretw0/turtle/internal/cli"
	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start an interactive turtle session",
	Long: `Reads commands from standard input and draws them on the canvas.
On a terminal, prompts use interactive forms; with --json every input line
and every result is a JSON record.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := runOptions(cmd)
		opts.Headless, _ = cmd.Flags().GetBool("headless")
		opts.JSON, _ = cmd.Flags().GetBool("json")
		opts.Script, _ = cmd.Flags().GetString("script")

		ctx, stop := signalContext(cmd)
		defer stop()
		return cli.RunSession(ctx, opts)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Bool("headless", false, "Run in headless mode (no banner, prompts answered from config)")
	runCmd.Flags().Bool("json", false, "Run in JSON mode (NDJSON input/output)")
	runCmd.Flags().StringP("script", "s", "", "Script file replayed before reading input")

	// 'run' is the default if no command is provided.
	rootCmd.RunE = runCmd.RunE
	rootCmd.Flags().AddFlagSet(runCmd.Flags())
}

package main

import (
	"fmt"

	"github.com/aretw0/turtle/internal/cli"
	"github.com/spf13/cobra"
)

var renderCmd = &cobra.Command{
	Use:   "render <script>",
	Short: "Replay a script and write the canvas as PNG",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("output")

		ctx, stop := signalContext(cmd)
		defer stop()

		res, err := cli.RunRender(ctx, runOptions(cmd), args[0], out)
		if err != nil {
			return err
		}
		fmt.Printf("Rendered %d lines to %s", res.Lines, res.Output)
		if res.Rejected > 0 {
			fmt.Printf(" (%d rejected)", res.Rejected)
		}
		fmt.Println()
		return nil
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch <script>",
	Short: "Render a script every time it changes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("output")

		ctx, stop := signalContext(cmd)
		defer stop()
		return cli.RunWatch(ctx, runOptions(cmd), args[0], out)
	},
}

func init() {
	rootCmd.AddCommand(renderCmd, watchCmd)

	renderCmd.Flags().StringP("output", "o", "", "PNG file to write (default: script name with .png)")
	watchCmd.Flags().StringP("output", "o", "", "PNG file to write (default: script name with .png)")
}

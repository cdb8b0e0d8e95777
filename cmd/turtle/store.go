package main

import (
	"os"

	"github.com/aretw0/turtle/internal/cli"
	"github.com/spf13/cobra"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Inspect saved scripts and images",
}

var storeListCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List stored scripts or images",
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, _ := cmd.Flags().GetString("kind")
		a, err := cli.ParseArtifact(kind)
		if err != nil {
			return err
		}
		return cli.ListStored(cmd.Context(), runOptions(cmd), a, os.Stdout)
	},
}

var storeRemoveCmd = &cobra.Command{
	Use:     "rm <name>...",
	Aliases: []string{"delete"},
	Short:   "Delete stored scripts or images",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, _ := cmd.Flags().GetString("kind")
		a, err := cli.ParseArtifact(kind)
		if err != nil {
			return err
		}
		return cli.RemoveStored(cmd.Context(), runOptions(cmd), a, args, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(storeCmd)
	storeCmd.AddCommand(storeListCmd, storeRemoveCmd)

	storeCmd.PersistentFlags().StringP("kind", "k", "scripts", "Artifact kind: scripts or images")
}

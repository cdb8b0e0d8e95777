package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/turtle"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of turtle",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("turtle version %s\n", strings.TrimSpace(turtle.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

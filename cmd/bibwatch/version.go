// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/bibwatch/pkg/types"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of bibwatch",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("bibwatch %s\n", types.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

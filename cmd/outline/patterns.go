package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docoutline/internal/patterns"
)

func patternsCmd(logger func(*cobra.Command) *slog.Logger) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "patterns",
		Short: "List heading families, validating any pattern files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := patterns.NewRegistryWithDirectory(dir, logger(cmd))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, f := range registry.Families() {
				fmt.Fprintf(out, "%-10s L%d  min_title=%-2d %s\n", f.Tag, f.Level, f.MinTitle, f.Pattern)
			}
			fmt.Fprintf(out, "%d families (%d pattern files)\n", len(registry.Families()), registry.Count())
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", os.Getenv("PATTERN_DIR"), "Directory of extra heading-family YAML files")
	return cmd
}

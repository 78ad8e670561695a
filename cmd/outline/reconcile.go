package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docoutline/internal/extract"
	"github.com/dgallion1/docoutline/internal/outline"
	"github.com/dgallion1/docoutline/internal/render"
)

func reconcileCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "reconcile LOCAL.json EXTERNAL.json",
		Short: "Merge a local outline with an externally proposed one",
		Long: `LOCAL.json holds a section list as printed by "outline extract --json" (or a
bare array of sections). EXTERNAL.json may be any model reply containing a
section array; it is sanitized before merging.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			local, err := readLocal(args[0])
			if err != nil {
				return err
			}
			raw, err := os.ReadFile(args[1])
			if err != nil {
				return err
			}
			external, err := extract.ParseSections(string(raw))
			if err != nil {
				return fmt.Errorf("%s: %w", args[1], err)
			}

			nodes, report := outline.ReconcileWithReport(local, external)
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]any{"report": report, "nodes": nodes})
			}
			render.Report(out, report)
			render.Tree(out, nodes, render.Options{})
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the merged outline as JSON")
	return cmd
}

// readLocal accepts a bare section array, a single extract result, or the
// array printed by "outline extract --json" (first entry).
func readLocal(path string) ([]outline.SectionNode, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var results []fileResult
	if err := json.Unmarshal(data, &results); err == nil && len(results) > 0 && results[0].Nodes != nil {
		return outline.Normalize(results[0].Nodes), nil
	}
	var nodes []outline.SectionNode
	if err := json.Unmarshal(data, &nodes); err == nil {
		return outline.Normalize(nodes), nil
	}
	var single fileResult
	if err := json.Unmarshal(data, &single); err == nil && single.Nodes != nil {
		return outline.Normalize(single.Nodes), nil
	}
	return nil, fmt.Errorf("%s: no section list found", path)
}

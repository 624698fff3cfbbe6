package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aretw0/espalier/internal/checker"
	"github.com/aretw0/espalier/internal/compiler"
	"github.com/aretw0/espalier/pkg/adapters/memory"
	"github.com/aretw0/espalier/pkg/domain"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check [workflow-file]",
	Short: "Report consistency findings for every choice question",
	Long:  `Parses a workflow document and cross-references each dynamically sourced choice question against the block layout and table schemas. Findings are advisory; the command fails only on a malformed document.`,
	Run: func(cmd *cobra.Command, args []string) {
		path, _ := cmd.Flags().GetString("workflow")
		if len(args) > 0 {
			path = args[0]
		}
		if err := runCheck(path); err != nil {
			fmt.Printf("Check failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(path string) error {
	parser := compiler.NewParser()
	wf, err := parser.ParseFile(path)
	if err != nil {
		return err
	}

	ws := memory.NewWorkspace(wf)
	chk := checker.New(ws, ws)
	ctx := context.Background()

	total := 0
	for _, page := range wf.Pages {
		for _, block := range page.Blocks {
			if block.Type != domain.BlockTypeChoice || block.Options == nil {
				continue
			}
			findings, err := chk.Check(ctx, block.ID, block.Options)
			if err != nil {
				return fmt.Errorf("check question %q: %w", block.ID, err)
			}
			for _, f := range findings {
				total++
				fmt.Printf("%s: [%s] %s\n", block.ID, f.Kind, f.Message)
			}
		}
	}

	if total == 0 {
		fmt.Println("Workflow is consistent! ✅")
	} else {
		fmt.Printf("%d finding(s). Findings are advisory and never block a save.\n", total)
	}
	return nil
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/taskpilot/taskpilot/pkg/models"
	"github.com/taskpilot/taskpilot/pkg/workflow"
	cli "github.com/urfave/cli/v3"
)

func validateCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "Check a workflow definition file against the graph invariants",
		ArgsUsage: "<workflow.json>",
		Action: func(ctx context.Context, command *cli.Command) error {
			path := command.Args().First()
			if path == "" {
				return fmt.Errorf("usage: taskpilot validate <workflow.json>")
			}

			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", path, err)
			}

			wf := &models.Workflow{}
			if err := json.Unmarshal(data, wf); err != nil {
				return fmt.Errorf("failed to decode %s: %w", path, err)
			}

			if err := workflow.Validate(wf); err != nil {
				return err
			}

			fmt.Printf("%s: workflow %q is valid (%d steps)\n", path, wf.Name, len(wf.Steps))

			return nil
		},
	}
}

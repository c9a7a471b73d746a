package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/taskpilot/taskpilot/pkg/cmd"
	"github.com/taskpilot/taskpilot/pkg/facts"
	"github.com/taskpilot/taskpilot/pkg/log"
	"github.com/taskpilot/taskpilot/pkg/models"
	"github.com/taskpilot/taskpilot/pkg/services"
	cli "github.com/urfave/cli/v3"
)

func runCommand() *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "Run a stored workflow and print the execution report",
		ArgsUsage: "<workflow-id>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "database-url",
				Usage:   "Database connection URL for persistence (file://, postgres:// or redis://)",
				Value:   "file://./data",
				Sources: cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:  "task-id",
				Usage: "Task id the run should treat as its triggering task",
			},
			&cli.StringFlag{
				Name:  "acting-user",
				Usage: "User the run acts on behalf of",
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			workflowID := command.Args().First()
			if workflowID == "" {
				return fmt.Errorf("usage: taskpilot run <workflow-id>")
			}

			logger := log.WithModule("cli")

			persistence := cmd.NewPersistence(ctx, logger, command.String("database-url"))
			defer func() {
				if err := persistence.Close(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			store := facts.NewMemoryStore()
			engine := cmd.NewEngine(store, store, nil, nil, logger)
			executionService := services.NewExecution(persistence, engine, logger)

			report, err := executionService.Run(ctx, workflowID, &models.ExecutionContext{
				TaskID:     command.String("task-id"),
				ActingUser: command.String("acting-user"),
			})
			if report == nil {
				return err
			}

			encoded, encodeErr := json.MarshalIndent(report, "", "  ")
			if encodeErr != nil {
				return encodeErr
			}

			fmt.Fprintln(os.Stdout, string(encoded))

			return err
		},
	}
}

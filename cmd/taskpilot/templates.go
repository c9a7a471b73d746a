package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/taskpilot/taskpilot/pkg/templates"
	cli "github.com/urfave/cli/v3"
)

func templatesCommand() *cli.Command {
	return &cli.Command{
		Name:  "templates",
		Usage: "Inspect the workflow template catalog",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List available templates",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "file",
						Usage: "Also load templates from a JSON file",
					},
				},
				Action: func(ctx context.Context, command *cli.Command) error {
					catalog, err := loadCatalog(command.String("file"))
					if err != nil {
						return err
					}

					for _, tpl := range catalog.List() {
						fmt.Printf("%-24s %-12s %s\n", tpl.Name, tpl.Category, tpl.Description)
					}

					return nil
				},
			},
			{
				Name:      "show",
				Usage:     "Print one template as JSON",
				ArgsUsage: "<name>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "file",
						Usage: "Also load templates from a JSON file",
					},
				},
				Action: func(ctx context.Context, command *cli.Command) error {
					name := command.Args().First()
					if name == "" {
						return fmt.Errorf("usage: taskpilot templates show <name>")
					}

					catalog, err := loadCatalog(command.String("file"))
					if err != nil {
						return err
					}

					tpl, err := catalog.Get(name)
					if err != nil {
						return err
					}

					encoded, err := json.MarshalIndent(tpl, "", "  ")
					if err != nil {
						return err
					}

					fmt.Fprintln(os.Stdout, string(encoded))

					return nil
				},
			},
		},
	}
}

func loadCatalog(file string) (*templates.Catalog, error) {
	catalog := templates.NewCatalog()

	if file != "" {
		if err := catalog.LoadFile(file); err != nil {
			return nil, err
		}
	}

	return catalog, nil
}

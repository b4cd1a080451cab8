package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/rapid-crm/jasper/pkg/usecase/persona"
	"github.com/urfave/cli/v3"
)

func personaCommand() *cli.Command {
	return &cli.Command{
		Name:  "persona",
		Usage: "Manage assistant personas",
		Commands: []*cli.Command{
			personaListCommand(),
			personaShowCommand(),
			personaActivateCommand(),
			personaPromptCommand(),
		},
	}
}

func personaListCommand() *cli.Command {
	var cfg config

	return &cli.Command{
		Name:  "list",
		Usage: "List configured personas",
		Flags: globalFlags(&cfg),
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.setupLogger(ctx)
			repo, err := cfg.newRepository()
			if err != nil {
				return err
			}
			defer repo.Close()

			personas, err := persona.New(repo).List(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to list personas")
			}

			for _, p := range personas {
				marker := " "
				if p.IsActive {
					marker = "*"
				}
				fmt.Fprintf(c.Root().Writer, "%s %d\t%s\t%s\n", marker, p.ID, p.Name, p.CommunicationStyle)
			}
			return nil
		},
	}
}

func personaShowCommand() *cli.Command {
	var cfg config

	return &cli.Command{
		Name:  "show",
		Usage: "Show the active persona and its capabilities",
		Flags: globalFlags(&cfg),
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.setupLogger(ctx)
			repo, err := cfg.newRepository()
			if err != nil {
				return err
			}
			defer repo.Close()

			svc := persona.New(repo)
			p, err := svc.Active(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to load active persona")
			}

			fmt.Fprintf(c.Root().Writer, "name: %s\ndescription: %s\nstyle: %s\nfocus: %s\nmemory window: %d days\n",
				p.Name, p.Description, p.CommunicationStyle, p.ExpertiseFocus, p.RetentionDays())

			caps, err := svc.EnabledCapabilities(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to load capabilities")
			}
			names := make([]string, 0, len(caps))
			for _, capability := range caps {
				names = append(names, capability.Name)
			}
			fmt.Fprintf(c.Root().Writer, "capabilities: %s\n", strings.Join(names, ", "))
			return nil
		},
	}
}

func personaActivateCommand() *cli.Command {
	var (
		cfg config
		id  int64
	)

	flags := []cli.Flag{
		&cli.IntFlag{
			Name:        "id",
			Usage:       "Persona ID to activate",
			Required:    true,
			Destination: &id,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:  "activate",
		Usage: "Switch the active persona",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.setupLogger(ctx)
			repo, err := cfg.newRepository()
			if err != nil {
				return err
			}
			defer repo.Close()

			svc := persona.New(repo)
			if err := svc.Activate(ctx, id); err != nil {
				return goerr.Wrap(err, "failed to activate persona", goerr.V("id", id))
			}

			p, err := svc.Active(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.Root().Writer, "Active persona: %s\n", p.Name)
			return nil
		},
	}
}

func personaPromptCommand() *cli.Command {
	var (
		cfg    config
		prompt string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "prompt",
			Aliases:     []string{"p"},
			Usage:       "New system prompt for the active persona",
			Required:    true,
			Destination: &prompt,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:  "prompt",
		Usage: "Update the active persona's system prompt",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.setupLogger(ctx)
			repo, err := cfg.newRepository()
			if err != nil {
				return err
			}
			defer repo.Close()

			if err := persona.New(repo).UpdateSystemPrompt(ctx, prompt); err != nil {
				return goerr.Wrap(err, "failed to update system prompt")
			}
			fmt.Fprintf(c.Root().Writer, "System prompt updated\n")
			return nil
		},
	}
}

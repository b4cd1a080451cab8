package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/rapid-crm/jasper/pkg/model"
	"github.com/rapid-crm/jasper/pkg/usecase/agentfactory"
	"github.com/urfave/cli/v3"
)

func agentCommand() *cli.Command {
	return &cli.Command{
		Name:  "agent",
		Usage: "Deploy and run specialized agents",
		Commands: []*cli.Command{
			agentTemplatesCommand(),
			agentDeployCommand(),
			agentListCommand(),
			agentRunCommand(),
			agentLogCommand(),
		},
	}
}

func agentTemplatesCommand() *cli.Command {
	var cfg config

	return &cli.Command{
		Name:  "templates",
		Usage: "List registered agent templates",
		Flags: globalFlags(&cfg),
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.setupLogger(ctx)
			repo, err := cfg.newRepository()
			if err != nil {
				return err
			}
			defer repo.Close()

			templates, err := agentfactory.New(repo).ListTemplates(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to list templates")
			}
			for _, tpl := range templates {
				fmt.Fprintf(c.Root().Writer, "%s\t%s\n", tpl.Type, tpl.Description)
			}
			return nil
		},
	}
}

func agentDeployCommand() *cli.Command {
	var (
		cfg       config
		agentType string
		name      string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "type",
			Aliases:     []string{"t"},
			Usage:       "Template type to deploy from",
			Required:    true,
			Destination: &agentType,
		},
		&cli.StringFlag{
			Name:        "name",
			Aliases:     []string{"n"},
			Usage:       "Display name for the agent",
			Destination: &name,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:  "deploy",
		Usage: "Deploy an agent from a template",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.setupLogger(ctx)
			repo, err := cfg.newRepository()
			if err != nil {
				return err
			}
			defer repo.Close()

			agent, err := agentfactory.New(repo).Deploy(ctx, agentType, name, nil)
			if err != nil {
				return goerr.Wrap(err, "failed to deploy agent", goerr.V("type", agentType))
			}

			fmt.Fprintf(c.Root().Writer, "Deployed %s (%s)\n", agent.ID, agent.Name)
			return nil
		},
	}
}

func agentListCommand() *cli.Command {
	var cfg config

	return &cli.Command{
		Name:  "list",
		Usage: "List deployed agents",
		Flags: globalFlags(&cfg),
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.setupLogger(ctx)
			repo, err := cfg.newRepository()
			if err != nil {
				return err
			}
			defer repo.Close()

			agents, err := agentfactory.New(repo).List(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to list agents")
			}
			for _, a := range agents {
				fmt.Fprintf(c.Root().Writer, "%s\t%s\t%s\truns=%d\n", a.ID, a.Name, a.Status, a.UsageCount)
			}
			return nil
		},
	}
}

func agentRunCommand() *cli.Command {
	var (
		cfg     config
		agentID string
		task    string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "id",
			Usage:       "Deployed agent ID",
			Required:    true,
			Destination: &agentID,
		},
		&cli.StringFlag{
			Name:        "task",
			Usage:       "Task description for the agent",
			Required:    true,
			Destination: &task,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:  "run",
		Usage: "Run a task on a deployed agent",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.setupLogger(ctx)
			repo, err := cfg.newRepository()
			if err != nil {
				return err
			}
			defer repo.Close()

			exec, err := agentfactory.New(repo).ExecuteTask(ctx, model.AgentID(agentID), task)
			if err != nil {
				return goerr.Wrap(err, "failed to execute task", goerr.V("agent_id", agentID))
			}

			out, err := json.MarshalIndent(exec.Result, "", "  ")
			if err != nil {
				return goerr.Wrap(err, "failed to render result")
			}
			fmt.Fprintf(c.Root().Writer, "%s\n", out)
			return nil
		},
	}
}

func agentLogCommand() *cli.Command {
	var (
		cfg     config
		agentID string
		limit   int64
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "id",
			Usage:       "Deployed agent ID",
			Required:    true,
			Destination: &agentID,
		},
		&cli.IntFlag{
			Name:        "limit",
			Usage:       "Maximum number of executions to show",
			Value:       20,
			Destination: &limit,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:  "log",
		Usage: "Show the execution log of an agent",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.setupLogger(ctx)
			repo, err := cfg.newRepository()
			if err != nil {
				return err
			}
			defer repo.Close()

			execs, err := agentfactory.New(repo).Executions(ctx, model.AgentID(agentID), int(limit))
			if err != nil {
				return goerr.Wrap(err, "failed to list executions")
			}
			for _, e := range execs {
				fmt.Fprintf(c.Root().Writer, "%s\t%s\t%dms\t%s\n",
					e.ExecutedAt.Format("2006-01-02 15:04:05"), e.Status, e.DurationMS, e.Task)
			}
			return nil
		},
	}
}

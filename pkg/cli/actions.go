package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/rapid-crm/jasper/pkg/usecase/action"
	"github.com/rapid-crm/jasper/pkg/usecase/agentfactory"
	"github.com/rapid-crm/jasper/pkg/usecase/voice"
	"github.com/urfave/cli/v3"
)

func actionsCommand() *cli.Command {
	var (
		cfg   config
		limit int64
	)

	flags := []cli.Flag{
		&cli.IntFlag{
			Name:        "limit",
			Usage:       "Maximum number of audit rows to show",
			Value:       50,
			Destination: &limit,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:  "actions",
		Usage: "Show the action audit trail",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.setupLogger(ctx)
			repo, err := cfg.newRepository()
			if err != nil {
				return err
			}
			defer repo.Close()

			executor, err := action.New(repo,
				action.WithVoiceService(voice.New(repo)),
				action.WithAgentService(agentfactory.New(repo)),
				action.WithDatabasePath(cfg.dbPath),
			)
			if err != nil {
				return err
			}

			logs, err := executor.History(ctx, cfg.userID, int(limit))
			if err != nil {
				return goerr.Wrap(err, "failed to list action logs")
			}

			for _, l := range logs {
				detail := ""
				if l.Error != "" {
					detail = l.Error
				}
				fmt.Fprintf(c.Root().Writer, "%s\t%s\t%s\t%s\n",
					l.CreatedAt.Format("2006-01-02 15:04:05"), l.ActionType, l.Status, detail)
			}
			return nil
		},
	}
}

package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func conversationsCommand() *cli.Command {
	var cfg config

	return &cli.Command{
		Name:  "conversations",
		Usage: "List stored conversations for a user",
		Flags: globalFlags(&cfg),
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.setupLogger(ctx)
			repo, err := cfg.newRepository()
			if err != nil {
				return err
			}
			defer repo.Close()

			stats, err := repo.ListConversations(ctx, cfg.userID)
			if err != nil {
				return goerr.Wrap(err, "failed to list conversations")
			}

			if len(stats) == 0 {
				fmt.Fprintf(c.Root().Writer, "No conversations found for %s\n", cfg.userID)
				return nil
			}

			for _, s := range stats {
				fmt.Fprintf(c.Root().Writer, "%s\t%d messages\t%s\n",
					s.ConversationID, s.MessageCount, s.LastActivity.Format("2006-01-02 15:04:05"))
			}
			return nil
		},
	}
}

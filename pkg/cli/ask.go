package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func askCommand() *cli.Command {
	var (
		cfg            config
		conversationID string
		verbose        bool
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "conversation",
			Aliases:     []string{"c"},
			Usage:       "Conversation ID to continue",
			Value:       "default",
			Sources:     cli.EnvVars("JASPER_CONVERSATION_ID"),
			Destination: &conversationID,
		},
		&cli.BoolFlag{
			Name:        "verbose",
			Aliases:     []string{"v"},
			Usage:       "Show confidence and reasoning with the answer",
			Destination: &verbose,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, llmFlags(&cfg)...)
	flags = append(flags, backupFlags(&cfg)...)

	return &cli.Command{
		Name:      "ask",
		Usage:     "Ask the assistant a single question",
		ArgsUsage: "<question>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			question := strings.Join(c.Args().Slice(), " ")
			if question == "" {
				return goerr.New("question is required")
			}
			ctx = cfg.setupLogger(ctx)

			repo, err := cfg.newRepository()
			if err != nil {
				return err
			}
			defer repo.Close()

			uc, err := cfg.newAssistant(ctx, repo)
			if err != nil {
				return err
			}

			ans := uc.Ask(ctx, cfg.userID, conversationID, question)

			fmt.Fprintf(c.Root().Writer, "%s\n", ans.Text)
			if verbose {
				fmt.Fprintf(c.Root().Writer, "\n[%s] confidence=%.2f\n%s\n",
					ans.Category, ans.Confidence, ans.Reasoning)
			}
			return nil
		},
	}
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/briandowns/spinner"
	"github.com/chzyer/readline"
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func chatCommand() *cli.Command {
	var (
		cfg            config
		conversationID string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "conversation",
			Aliases:     []string{"c"},
			Usage:       "Conversation ID to continue (random when omitted)",
			Sources:     cli.EnvVars("JASPER_CONVERSATION_ID"),
			Destination: &conversationID,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, llmFlags(&cfg)...)
	flags = append(flags, backupFlags(&cfg)...)

	return &cli.Command{
		Name:  "chat",
		Usage: "Interactive session with the assistant",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
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

			if conversationID == "" {
				conversationID = uuid.New().String()
			}

			// Expired memory is reclaimed in the background while the
			// session runs.
			loop := uc.StartCleanupLoop(ctx, time.Hour)
			defer loop.Stop()

			rl, err := readline.New("> ")
			if err != nil {
				return goerr.Wrap(err, "failed to initialize readline")
			}
			defer rl.Close()

			fmt.Fprintf(c.Root().Writer, "Chat session %s started. Type 'exit' to quit.\n", conversationID)

			for {
				line, err := rl.Readline()
				if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
					break
				}
				if err != nil {
					return goerr.Wrap(err, "failed to read input")
				}
				if line == "" {
					continue
				}
				if line == "exit" || line == "quit" {
					break
				}

				sp := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
				sp.Start()
				ans := uc.Ask(ctx, cfg.userID, conversationID, line)
				sp.Stop()

				fmt.Fprintf(c.Root().Writer, "%s\n\n", ans.Text)
			}

			fmt.Fprintf(c.Root().Writer, "\nChat session completed\n")
			return nil
		},
	}
}

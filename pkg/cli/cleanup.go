package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/rapid-crm/jasper/pkg/repository"
	"github.com/rapid-crm/jasper/pkg/usecase/assistant"
	"github.com/rapid-crm/jasper/pkg/usecase/persona"
	"github.com/urfave/cli/v3"
)

func cleanupCommand() *cli.Command {
	var cfg config

	return &cli.Command{
		Name:  "cleanup",
		Usage: "Delete conversation data past the retention window",
		Flags: globalFlags(&cfg),
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.setupLogger(ctx)
			repo, err := cfg.newRepository()
			if err != nil {
				return err
			}
			defer repo.Close()

			result, err := runCleanup(ctx, repo)
			if err != nil {
				return goerr.Wrap(err, "cleanup failed")
			}

			fmt.Fprintf(c.Root().Writer, "Deleted %d messages and %d contexts\n",
				result.Messages, result.Contexts)
			return nil
		},
	}
}

// runCleanup sweeps without requiring a gateway configuration; the
// orchestrator never calls the gateway during cleanup.
func runCleanup(ctx context.Context, repo repository.Repository) (*assistant.CleanupResult, error) {
	uc := assistant.New(repo, nil, persona.New(repo))
	return uc.Cleanup(ctx)
}

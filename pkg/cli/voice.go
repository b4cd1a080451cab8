package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/rapid-crm/jasper/pkg/usecase/voice"
	"github.com/urfave/cli/v3"
)

func voiceCommand() *cli.Command {
	return &cli.Command{
		Name:  "voice",
		Usage: "Manage text-to-speech voices",
		Commands: []*cli.Command{
			voiceListCommand(),
			voiceShowCommand(),
			voiceSetCommand(),
		},
	}
}

func voiceListCommand() *cli.Command {
	var cfg config

	return &cli.Command{
		Name:  "list",
		Usage: "List available voices",
		Flags: globalFlags(&cfg),
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.setupLogger(ctx)
			repo, err := cfg.newRepository()
			if err != nil {
				return err
			}
			defer repo.Close()

			voices, err := voice.New(repo).ListVoices(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to list voices")
			}

			for _, v := range voices {
				fmt.Fprintf(c.Root().Writer, "%s\t%s\t%s\t%s\n", v.ID, v.Name, v.Provider, v.Gender)
			}
			return nil
		},
	}
}

func voiceShowCommand() *cli.Command {
	var cfg config

	return &cli.Command{
		Name:  "show",
		Usage: "Show the current voice preference",
		Flags: globalFlags(&cfg),
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.setupLogger(ctx)
			repo, err := cfg.newRepository()
			if err != nil {
				return err
			}
			defer repo.Close()

			pref, err := voice.New(repo).GetPreference(ctx, cfg.userID)
			if err != nil {
				return goerr.Wrap(err, "failed to get voice preference")
			}

			fmt.Fprintf(c.Root().Writer, "voice: %s (%s)\nspeed: %.1f\nautoplay: %v\n",
				pref.VoiceID, pref.Provider, pref.Speed, pref.AutoPlay)
			return nil
		},
	}
}

func voiceSetCommand() *cli.Command {
	var (
		cfg     config
		voiceID string
		speed   float64
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "voice-id",
			Aliases:     []string{"i"},
			Usage:       "Voice ID from the catalog",
			Required:    true,
			Destination: &voiceID,
		},
		&cli.FloatFlag{
			Name:        "speed",
			Usage:       "Playback speed",
			Value:       1.0,
			Destination: &speed,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:  "set",
		Usage: "Set the preferred voice",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.setupLogger(ctx)
			repo, err := cfg.newRepository()
			if err != nil {
				return err
			}
			defer repo.Close()

			pref, err := voice.New(repo).SetPreference(ctx, cfg.userID, voice.SetPreferenceInput{
				VoiceID: voiceID,
				Speed:   speed,
			})
			if err != nil {
				return goerr.Wrap(err, "failed to set voice preference")
			}

			fmt.Fprintf(c.Root().Writer, "Voice set to %s (%s)\n", pref.VoiceID, pref.Provider)
			return nil
		},
	}
}

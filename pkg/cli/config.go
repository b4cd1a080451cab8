package cli

import (
	"context"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/rapid-crm/jasper/pkg/adapter"
	"github.com/rapid-crm/jasper/pkg/repository"
	"github.com/rapid-crm/jasper/pkg/usecase/action"
	"github.com/rapid-crm/jasper/pkg/usecase/agentfactory"
	"github.com/rapid-crm/jasper/pkg/usecase/assistant"
	"github.com/rapid-crm/jasper/pkg/usecase/persona"
	"github.com/rapid-crm/jasper/pkg/usecase/voice"
	"github.com/rapid-crm/jasper/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// config holds configuration values
type config struct {
	// Repository
	dbPath string

	// Identity
	userID string

	// Logging
	logLevel  string
	logFormat string

	// Gateway
	gateway           string
	openRouterAPIKey  string
	openRouterBaseURL string
	openRouterModel   string
	geminiProject     string
	geminiLocation    string

	// Backup
	backupBucket string
	backupDir    string
}

// globalFlags returns common flags used across commands with destination config
func globalFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "db-path",
			Aliases:     []string{"d"},
			Usage:       "Path to the SQLite database file",
			Value:       "jasper.db",
			Sources:     cli.EnvVars("JASPER_DB_PATH"),
			Destination: &cfg.dbPath,
		},
		&cli.StringFlag{
			Name:        "user",
			Aliases:     []string{"u"},
			Usage:       "User ID owning conversations and preferences",
			Value:       "default_user",
			Sources:     cli.EnvVars("JASPER_USER_ID"),
			Destination: &cfg.userID,
		},
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "Log level (debug, info, warn, error)",
			Value:       "info",
			Sources:     cli.EnvVars("JASPER_LOG_LEVEL"),
			Destination: &cfg.logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "Log format (console, json)",
			Value:       "console",
			Sources:     cli.EnvVars("JASPER_LOG_FORMAT"),
			Destination: &cfg.logFormat,
		},
	}
}

// llmFlags returns flags for LLM gateway configuration with destination config
func llmFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "gateway",
			Usage:       "LLM gateway provider (openrouter, gemini)",
			Value:       "openrouter",
			Sources:     cli.EnvVars("JASPER_GATEWAY"),
			Destination: &cfg.gateway,
		},
		&cli.StringFlag{
			Name:        "openrouter-api-key",
			Usage:       "OpenRouter API key",
			Sources:     cli.EnvVars("OPENROUTER_API_KEY"),
			Destination: &cfg.openRouterAPIKey,
		},
		&cli.StringFlag{
			Name:        "openrouter-base-url",
			Usage:       "Override the OpenRouter API base URL",
			Sources:     cli.EnvVars("OPENROUTER_BASE_URL"),
			Destination: &cfg.openRouterBaseURL,
		},
		&cli.StringFlag{
			Name:        "openrouter-model",
			Usage:       "OpenRouter model ID",
			Sources:     cli.EnvVars("OPENROUTER_MODEL"),
			Destination: &cfg.openRouterModel,
		},
		&cli.StringFlag{
			Name:        "gemini-project",
			Usage:       "Google Cloud project ID for Gemini",
			Sources:     cli.EnvVars("GEMINI_PROJECT_ID"),
			Destination: &cfg.geminiProject,
		},
		&cli.StringFlag{
			Name:        "gemini-location",
			Usage:       "Google Cloud location for Gemini",
			Value:       "us-central1",
			Sources:     cli.EnvVars("GEMINI_LOCATION"),
			Destination: &cfg.geminiLocation,
		},
	}
}

// backupFlags returns flags for the database backup target
func backupFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "backup-bucket",
			Usage:       "Cloud Storage bucket for database backups",
			Sources:     cli.EnvVars("JASPER_BACKUP_BUCKET"),
			Destination: &cfg.backupBucket,
		},
		&cli.StringFlag{
			Name:        "backup-dir",
			Usage:       "Local directory for database backups",
			Value:       "backups",
			Sources:     cli.EnvVars("JASPER_BACKUP_DIR"),
			Destination: &cfg.backupDir,
		},
	}
}

// setupLogger installs the configured logger on the context
func (cfg *config) setupLogger(ctx context.Context) context.Context {
	logger := logging.New(cfg.logLevel, os.Stderr)
	if cfg.logFormat == "json" {
		logger = logging.NewJSON(cfg.logLevel, os.Stderr)
	}
	logging.SetDefault(logger)
	return logging.With(ctx, logger)
}

// newRepository creates a new repository instance
func (cfg *config) newRepository() (repository.Repository, error) {
	if cfg.dbPath == "" {
		return nil, goerr.New("db-path is required")
	}
	repo, err := repository.New(cfg.dbPath)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create repository")
	}
	return repo, nil
}

// newGateway creates the configured LLM gateway instance
func (cfg *config) newGateway(ctx context.Context) (adapter.Gateway, error) {
	switch cfg.gateway {
	case "openrouter":
		if cfg.openRouterAPIKey == "" {
			return nil, goerr.New("openrouter-api-key is required")
		}
		var opts []adapter.OpenRouterOption
		if cfg.openRouterBaseURL != "" {
			opts = append(opts, adapter.WithOpenRouterBaseURL(cfg.openRouterBaseURL))
		}
		if cfg.openRouterModel != "" {
			opts = append(opts, adapter.WithOpenRouterModel(cfg.openRouterModel))
		}
		return adapter.NewOpenRouter(cfg.openRouterAPIKey, opts...), nil

	case "gemini":
		if cfg.geminiProject == "" {
			return nil, goerr.New("gemini-project is required")
		}
		return adapter.NewGemini(ctx, cfg.geminiProject, cfg.geminiLocation)

	default:
		return nil, goerr.New("unknown gateway", goerr.V("gateway", cfg.gateway))
	}
}

// newBackup creates the configured backup target
func (cfg *config) newBackup(ctx context.Context) (adapter.Backup, error) {
	if cfg.backupBucket != "" {
		return adapter.NewGCSBackup(ctx, cfg.backupBucket)
	}
	if cfg.backupDir != "" {
		return adapter.NewDirBackup(cfg.backupDir)
	}
	return nil, goerr.New("backup-bucket or backup-dir is required")
}

// newAssistant assembles the full orchestrator over one repository
func (cfg *config) newAssistant(ctx context.Context, repo repository.Repository) (*assistant.UseCase, error) {
	gateway, err := cfg.newGateway(ctx)
	if err != nil {
		return nil, err
	}

	backup, err := cfg.newBackup(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create backup target")
	}

	opts := []action.Option{
		action.WithVoiceService(voice.New(repo)),
		action.WithAgentService(agentfactory.New(repo)),
		action.WithDatabasePath(cfg.dbPath),
		action.WithBackup(backup),
	}

	executor, err := action.New(repo, opts...)
	if err != nil {
		return nil, err
	}

	return assistant.New(repo, gateway, persona.New(repo), assistant.WithExecutor(executor)), nil
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ddi-checker/internal/archive"
	"github.com/ddi-checker/internal/config"
	"github.com/ddi-checker/internal/domain"
	"github.com/ddi-checker/internal/logging"
	"github.com/ddi-checker/internal/report"
	"github.com/ddi-checker/internal/service"
	"github.com/ddi-checker/pkg/external"
)

// app carries what every subcommand needs once configuration is loaded.
type app struct {
	configFile string
	logLevel   string
	apiURL     string
	format     string

	config    *config.Manager
	logger    *logrus.Logger
	logCloser io.Closer
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(&app{}).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", describeError(err))
		stop()
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "ddi-checker",
		Short:         "Check drug-drug interactions against a risk-assessment service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logCloser != nil {
				a.logCloser.Close()
			}
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "config file (default: ./config.yaml, ~/.ddi-checker/config.yaml)")
	flags.StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	flags.StringVar(&a.apiURL, "api-url", "", "base URL of the assessment service")
	flags.StringVarP(&a.format, "format", "o", "", "output format (text, json, yaml)")

	rootCmd.AddCommand(checkCmd(a))
	rootCmd.AddCommand(historyCmd(a))
	rootCmd.AddCommand(suggestCmd(a))
	rootCmd.AddCommand(consoleCmd(a))
	rootCmd.AddCommand(archiveCmd(a))

	return rootCmd
}

// setup loads configuration, applies flag overrides and builds the logger.
func (a *app) setup() error {
	manager, err := config.NewManager(a.configFile)
	if err != nil {
		return err
	}

	overrides := map[string]string{
		"logging.level":  a.logLevel,
		"api.base_url":   a.apiURL,
		"display.format": a.format,
	}
	for key, value := range overrides {
		if value == "" {
			continue
		}
		if err := manager.Set(key, value); err != nil {
			return err
		}
	}

	if err := manager.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	logger, closer, err := logging.New(manager.GetConfig().Logging)
	if err != nil {
		return err
	}

	a.config = manager
	a.logger = logger
	a.logCloser = closer

	logger.WithFields(logrus.Fields{
		"config_file": manager.ConfigFileUsed(),
		"api":         manager.GetAPIConfig().BaseURL,
	}).Debug("Configuration loaded")
	return nil
}

func (a *app) outputFormat() (report.Format, error) {
	return report.ParseFormat(a.config.GetConfig().Display.Format)
}

func (a *app) client() *external.AssessmentClient {
	return external.NewAssessmentClient(*a.config.GetAPIConfig(), a.logger)
}

func (a *app) renderer() *service.Renderer {
	return service.NewRenderer(a.config.GetConfig().Display.HistoryLimit)
}

// openArchive opens the configured archive. A store that cannot be opened is
// logged and skipped unless required.
func (a *app) openArchive(ctx context.Context, required bool) (archive.Store, error) {
	store, err := archive.Open(ctx, *a.config.GetArchiveConfig())
	if err != nil {
		if required {
			return nil, fmt.Errorf("failed to open archive: %w", err)
		}
		a.logger.WithError(err).Warn("Report archive disabled")
		return nil, nil
	}
	return store, nil
}

// suggestions builds the suggestion service, with the Redis tier when configured.
// The returned closer releases the Redis connection.
func (a *app) suggestions(ctx context.Context, client *external.AssessmentClient) (*service.SuggestionService, func()) {
	cacheConfig := *a.config.GetCacheConfig()
	closeFn := func() {}

	var shared service.SuggestionCache
	if cacheConfig.RedisURL != "" {
		cache, err := external.NewCacheClient(ctx, cacheConfig)
		if err != nil {
			a.logger.WithError(err).Warn("Redis suggestion cache unavailable, using memory only")
		} else {
			shared = cache
			closeFn = func() { cache.Close() }
		}
	}

	return service.NewSuggestionService(client, cacheConfig, shared, a.logger), closeFn
}

// describeError returns the text shown for a failed command.
func describeError(err error) string {
	var re *domain.RequestError
	if errors.As(err, &re) {
		return re.UserMessage()
	}
	return err.Error()
}

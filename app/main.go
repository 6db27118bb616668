package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/sushihentaime/bloglist/internal/blogservice"
	"github.com/sushihentaime/bloglist/internal/common"
	"github.com/sushihentaime/bloglist/internal/memstore"
	"github.com/sushihentaime/bloglist/internal/reconcileservice"
	"github.com/sushihentaime/bloglist/internal/stats"
	"github.com/sushihentaime/bloglist/internal/userservice"
)

type application struct {
	config      *Config
	logger      *slog.Logger
	metrics     *common.Metrics
	userService *userservice.UserService
	blogService *blogservice.BlogService
	reconciler  *reconcileservice.ReconcileService
}

var cfgFile string

func main() {
	rootCmd := &cobra.Command{
		Use:           "bloglist",
		Short:         "Blog list service",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".env", "path to the dotenv configuration file")

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP server",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runServe()
			},
		},
		&cobra.Command{
			Use:       "migrate [up|down]",
			Short:     "Apply or roll back the database migrations",
			Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
			ValidArgs: []string{"up", "down"},
			RunE: func(cmd *cobra.Command, args []string) error {
				return runMigrate(len(args) == 1 && args[0] == "down")
			},
		},
		&cobra.Command{
			Use:   "stats",
			Short: "Print blog statistics as JSON",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runStats(cmd.Context())
			},
		},
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setup() (*Config, *slog.Logger, error) {
	cfg, err := loadConfig(cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	return cfg, common.NewLogger(os.Stdout, cfg.Environment, cfg.LogLevel), nil
}

// openStorage returns the stores for the configured driver and a function releasing them.
func openStorage(cfg *Config) (blogservice.Storage, userservice.Store, func(), error) {
	if cfg.StorageDriver == "memory" {
		s := memstore.New()
		return s, s, func() {}, nil
	}

	dsn := common.PostgresDSN(cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName)
	db, err := common.NewDB(dsn, cfg.DBMaxOpenConns, cfg.DBMaxIdleConns, cfg.DBMaxIdleTime)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to connect to the database: %w", err)
	}

	return blogservice.NewBlogModel(db), userservice.NewUserModel(db), func() { common.CloseDB(db) }, nil
}

func runServe() error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	blogStore, userStore, closeStorage, err := openStorage(cfg)
	if err != nil {
		logger.Error("failed to open storage", slog.String("error", err.Error()))
		return err
	}
	defer closeStorage()

	tokens, err := userservice.NewTokenManager(userservice.TokenConfig{
		SigningSecret: []byte(cfg.JWTSecret),
		Issuer:        cfg.JWTIssuer,
		TTL:           cfg.JWTTTL,
	})
	if err != nil {
		logger.Error("failed to create token manager", slog.String("error", err.Error()))
		return err
	}

	app := &application{
		config:      cfg,
		logger:      logger,
		metrics:     common.NewMetrics(),
		userService: userservice.NewUserService(userStore, tokens),
	}

	// The broker is optional. Without it unlinked blogs are only logged and counted.
	var producer common.MessageProducer
	if cfg.MQHost != "" {
		broker, err := common.NewMessageBroker(common.AMQPURI(cfg.MQHost, cfg.MQPort, cfg.MQUser, cfg.MQPassword))
		if err != nil {
			logger.Error("failed to connect to the message broker", slog.String("error", err.Error()))
			return err
		}
		defer broker.Close()

		err = common.SetupBlogExchange(broker)
		if err != nil {
			logger.Error("failed to setup the blog exchange", slog.String("error", err.Error()))
			return err
		}

		producer = broker

		mailer := reconcileservice.NewMailer(reconcileservice.MailConfig{
			Host:     cfg.MailHost,
			Port:     cfg.MailPort,
			Username: cfg.MailUser,
			Password: cfg.MailPassword,
			Sender:   cfg.MailSender,
			Operator: cfg.OperatorEmail,
		}, reconcileservice.NewTemplate())
		app.reconciler = reconcileservice.NewReconcileService(broker, blogStore, mailer, app.metrics, logger)
		if err := app.reconciler.Start(); err != nil {
			logger.Error("failed to start the reconcile consumer", slog.String("error", err.Error()))
			return err
		}
		defer app.reconciler.Close()
	}

	cache := common.NewCache(cfg.CacheTTL, 2*cfg.CacheTTL)
	app.blogService = blogservice.NewBlogService(blogStore, cache, producer, app.metrics, logger)

	err = app.serve(cfg.Port)
	if err != nil {
		logger.Error("failed to start the server", slog.String("error", err.Error()))
		return err
	}

	return nil
}

func runMigrate(down bool) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	dsn := common.PostgresDSN(cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName)
	if err := common.Migrate(cfg.MigrationsPath, dsn, down); err != nil {
		logger.Error("failed to run migrations", slog.String("error", err.Error()))
		return err
	}

	logger.Info("migrations applied", slog.Bool("down", down))
	return nil
}

// runStats computes the statistics outside any request, straight from the store.
func runStats(ctx context.Context) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	blogStore, _, closeStorage, err := openStorage(cfg)
	if err != nil {
		logger.Error("failed to open storage", slog.String("error", err.Error()))
		return err
	}
	defer closeStorage()

	blogs, err := blogservice.NewBlogService(blogStore, nil, nil, nil, logger).GetBlogs(ctx)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "\t")
	return enc.Encode(stats.Summarize(blogs))
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strings"
	"syscall"

	route "github.com/Coubiac/signstamp/internal/api/route"
	appctx "github.com/Coubiac/signstamp/internal/app"
	"github.com/Coubiac/signstamp/internal/bridge"
	"github.com/Coubiac/signstamp/internal/config"
	"github.com/Coubiac/signstamp/internal/document"
	"github.com/Coubiac/signstamp/internal/events"
	"github.com/Coubiac/signstamp/internal/logger"
	"github.com/Coubiac/signstamp/internal/paths"
	"github.com/Coubiac/signstamp/internal/repository"
	"github.com/enrichman/httpgrace"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	if err := newRootCommand(run).Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCommand hands every argument except --config to launch untouched. Launchers pass
// flags of their own and file names may start with a dash, so cobra does not parse flags.
func newRootCommand(launch func(ctx context.Context, args []string) error) *cobra.Command {
	cmd := &cobra.Command{
		Use:                "signstamp [--config dir] [file ...]",
		Short:              "Local storage and file bridge of the signstamp PDF signer",
		Version:            version,
		Args:               cobra.ArbitraryArgs,
		DisableFlagParsing: true,
		SilenceUsage:       true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				switch args[0] {
				case "-h", "--help":
					return cmd.Help()
				case "--version":
					_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", cmd.Name(), version)
					return err
				}
			}

			configPath, candidates, err := splitLaunchArgs(args)
			if err != nil {
				return err
			}
			if configPath != "" {
				if err := os.Setenv("SIGNSTAMP_CONFIG_PATH", configPath); err != nil {
					return err
				}
			}
			return launch(cmd.Context(), candidates)
		},
	}
	return cmd
}

// splitLaunchArgs pulls --config out of args and returns the rest in order.
// Everything after a "--" is a candidate.
func splitLaunchArgs(args []string) (string, []string, error) {
	var configPath string
	candidates := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--":
			return configPath, append(candidates, args[i+1:]...), nil
		case arg == "--config":
			if i+1 >= len(args) {
				return "", nil, errors.New("--config requires a directory")
			}
			i++
			configPath = args[i]
		case strings.HasPrefix(arg, "--config="):
			configPath = strings.TrimPrefix(arg, "--config=")
			if configPath == "" {
				return "", nil, errors.New("--config requires a directory")
			}
		default:
			candidates = append(candidates, arg)
		}
	}
	return configPath, candidates, nil
}

func run(ctx context.Context, args []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	mainLog := logger.WithComponent("main")

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	if err := logger.SetLevel(cfg.Misc.LogLevel); err != nil {
		mainLog.Warnf("invalid log level '%s', keeping '%s': %v", cfg.Misc.LogLevel, logger.Logger.GetLevel(), err)
	}
	if err := logger.SetFormat(cfg.Misc.LogFormat); err != nil {
		mainLog.Warnf("keeping text log format: %v", err)
	}
	mainLog.Debugf("log level set to: %s", logger.Logger.GetLevel())

	if reuseRunningInstance(ctx, cfg, args) {
		return nil
	}

	app, err := buildApp(cfg)
	if err != nil {
		return err
	}
	defer app.Shutdown()

	if err := app.StartWatchers(); err != nil {
		mainLog.Warnf("collection changes made by other programs will not be noticed: %v", err)
	}

	gin.SetMode(cfg.Misc.GinMode)
	gin.DefaultWriter = logger.Logger.Writer()
	gin.DefaultErrorWriter = logger.Logger.Writer()

	r := newRouter(app)
	srv := createGraceHttpServer(app.BaseCtx, cfg.Server, r, app.Shutdown)

	app.RunStartup(args)

	mainLog.Infof("Command server will run on %s", cfg.Server.Addr())
	if err := srv.ListenAndServe(cfg.Server.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("command server: %w", err)
	}
	return nil
}

// reuseRunningInstance forwards args to an instance already serving cfg's address.
// It reports false when this process has to become the primary instance.
func reuseRunningInstance(ctx context.Context, cfg *config.Config, args []string) bool {
	mainLog := logger.WithComponent("main")
	baseURL := cfg.Server.BaseURL()

	if err := bridge.Handover(ctx, baseURL, args, cfg.Bridge.HandoverTimeout); err != nil {
		mainLog.Debugf("becoming the primary instance: %v", err)
		return false
	}
	if len(args) == 0 {
		mainLog.Infof("signstamp is already running at %s, reusing that instance", baseURL)
	} else {
		mainLog.Infof("handed %d launch arguments to the running instance at %s", len(args), baseURL)
	}
	return true
}

// buildApp wires the storage, document and event components for cfg.
func buildApp(cfg *config.Config) (*appctx.App, error) {
	resolver := paths.NewResolver(paths.Options{
		AppID:        cfg.Storage.AppID,
		DataDir:      cfg.Storage.DataDir,
		DownloadsDir: cfg.Storage.DownloadsDir,
	})

	signatures, err := repository.NewSignatureRepository(resolver)
	if err != nil {
		return nil, fmt.Errorf("cannot init signature repository: %w", err)
	}
	snippets, err := repository.NewSnippetRepository(resolver)
	if err != nil {
		return nil, fmt.Errorf("cannot init snippet repository: %w", err)
	}
	docs, err := document.NewService(resolver)
	if err != nil {
		return nil, fmt.Errorf("cannot init document service: %w", err)
	}

	hub := events.NewHub(events.DefaultBuffer)
	br, err := bridge.New(hub)
	if err != nil {
		return nil, fmt.Errorf("cannot init bridge: %w", err)
	}

	app, err := appctx.New(cfg, signatures, snippets, docs, hub, br)
	if err != nil {
		return nil, fmt.Errorf("cannot init app: %w", err)
	}

	if dir, err := resolver.AppDataDir(); err == nil {
		logger.WithComponent("main").Infof("collections are stored in %s", dir)
	} else {
		logger.WithComponent("main").Warnf("collections are unavailable: %v", err)
	}
	return app, nil
}

func newRouter(app *appctx.App) *gin.Engine {
	r := gin.New()
	route.SetupRoutes(r, app)
	return r
}

// createGraceHttpServer serves r until SIGTERM or SIGINT. Request contexts derive from ctx;
// beforeShutdown must cancel it or open event streams hold the shutdown until its timeout.
func createGraceHttpServer(ctx context.Context, serverConfig config.ServerConfig, r *gin.Engine, beforeShutdown func()) *httpgrace.Server {
	slogLogger := slog.New(slog.NewTextHandler(logger.Logger.Writer(), nil))

	srv := httpgrace.NewServer(r,
		httpgrace.WithTimeout(serverConfig.ShutDownTimeout),
		httpgrace.WithSignals(syscall.SIGTERM, syscall.SIGINT),
		httpgrace.WithLogger(slogLogger),
		httpgrace.WithBeforeShutdown(func() {
			logger.WithComponent("http").Info("Shutting down command server....")
			beforeShutdown()
		}),
		httpgrace.WithServerOptions(
			httpgrace.WithReadTimeout(serverConfig.ReadTimeout),
			httpgrace.WithWriteTimeout(serverConfig.WriteTimeout),
			httpgrace.WithIdleTimeout(serverConfig.IdleTimeout),
			func(srv *http.Server) {
				srv.BaseContext = func(_ net.Listener) context.Context {
					return ctx
				}
			},
			func(srv *http.Server) {
				srv.ErrorLog = log.New(logger.Logger.Writer(), "[command-server] ", log.LstdFlags)
			},
		),
	)
	return srv
}

// 4Devs MCP Server - A Model Context Protocol server for Brazilian test data
// Generates fake people and document numbers through the 4Devs online tools
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/olgasafonova/fourdevs-mcp-server/internal/base"
	"github.com/olgasafonova/fourdevs-mcp-server/internal/config"
	"github.com/olgasafonova/fourdevs-mcp-server/internal/fourdevs"
	"github.com/olgasafonova/fourdevs-mcp-server/internal/generators"
	"github.com/olgasafonova/fourdevs-mcp-server/resources"
	"github.com/olgasafonova/fourdevs-mcp-server/tools"
	"github.com/olgasafonova/fourdevs-mcp-server/tracing"
)

// recoverPanic logs a panic in a top-level operation instead of crashing
func recoverPanic(logger *slog.Logger, operation string) {
	if r := recover(); r != nil {
		logger.Error("Panic recovered",
			"operation", operation,
			"panic", r,
			"stack", string(debug.Stack()))
	}
}

const (
	ServerName    = "fourdevs-mcp-server"
	ServerVersion = "1.0.0"
)

const serverInstructions = `4Devs MCP Server generates fake Brazilian test data. All values are synthetic.

Available tools:
- gerar_pessoa: Complete person profiles (CPF, RG, address, phones). Pass cidade_nome with cep_estado to pick a city by name
- carregar_cidades: Cities of a state with their numeric codes
- gerador_certidao: Civil registry certificate numbers
- gerar_cnh: Driver's license numbers
- gerar_pis: PIS/PASEP numbers
- gerar_titulo_eleitor: Voter registration numbers

Resources: uf://brazilian-states, readme://documentation`

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := config.NewViper(ServerVersion)
	var configFile string

	cmd := &cobra.Command{
		Use:           ServerName,
		Short:         "MCP server generating Brazilian test data via 4Devs",
		Version:       ServerVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			config.LoadDotEnv()
			cfg, err := config.Load(v, configFile)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, cfg)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "optional config file (yaml, json or toml)")
	flags.String("endpoint", "", "4Devs endpoint URL")
	flags.Duration("timeout", 0, "per-call provider timeout")
	flags.String("http", "", "serve streamable HTTP on this address instead of stdio (e.g. :8080)")
	flags.String("log-level", "", "debug, info, warn or error")
	bindFlags(v, cmd, map[string]string{
		config.KeyEndpoint: "endpoint",
		config.KeyTimeout:  "timeout",
		config.KeyHTTPAddr: "http",
		config.KeyLogLevel: "log-level",
	})

	return cmd
}

func bindFlags(v *viper.Viper, cmd *cobra.Command, keys map[string]string) {
	for key, name := range keys {
		_ = v.BindPFlag(key, cmd.PersistentFlags().Lookup(name))
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	// stdout carries the stdio MCP transport
	if cfg.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// newServer builds the MCP server with every tool and resource registered.
func newServer(cfg *config.Config, logger *slog.Logger) *mcp.Server {
	client := base.NewClient(
		base.WithLogger(logger),
		base.WithMaxConcurrent(cfg.Provider.MaxConcurrent),
	)
	gateway := fourdevs.NewGateway(client, fourdevs.GatewayConfig{
		Endpoint:  cfg.Provider.Endpoint,
		Timeout:   cfg.Provider.Timeout,
		UserAgent: cfg.Provider.UserAgent,
	}, logger)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    ServerName,
		Version: ServerVersion,
	}, &mcp.ServerOptions{
		Logger:       logger,
		Instructions: serverInstructions,
	})

	tools.NewHandlerRegistry(generators.NewService(gateway, logger), logger).RegisterAll(server)
	resources.Register(server, logger)
	return server
}

func run(ctx context.Context, cfg *config.Config) error {
	logger := newLogger(cfg)
	defer recoverPanic(logger, "run")

	shutdownTracing, err := tracing.Setup(ctx, tracing.DefaultConfig(ServerVersion))
	if err != nil {
		logger.Warn("Tracing disabled", "error", err)
	} else {
		defer func() {
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdownTracing(flushCtx)
		}()
	}

	server := newServer(cfg, logger)

	logger.Info("Starting 4Devs MCP Server",
		"name", ServerName,
		"version", ServerVersion,
		"endpoint", cfg.Provider.Endpoint,
		"transport", transportName(cfg),
	)

	if !cfg.HTTPEnabled() {
		if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}

	auth, err := NewJWTAuthenticator(cfg.Auth, logger)
	if err != nil {
		return err
	}
	stats, err := NewRedisStats(ctx, cfg.Redis, logger)
	if err != nil {
		logger.Warn("Rate limit stats disabled", "error", err)
		stats = nil
	}
	defer stats.Close()

	transport := newHTTPTransport(server, cfg, auth, stats, logger)
	defer transport.Close()

	return serveHTTP(ctx, cfg.HTTP.Addr, transport.handler, cfg.HTTP.ShutdownTimeout, logger)
}

func transportName(cfg *config.Config) string {
	if cfg.HTTPEnabled() {
		return "http"
	}
	return "stdio"
}

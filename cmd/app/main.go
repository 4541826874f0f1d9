package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/hotlines/internal"
	"github.com/starford/hotlines/internal/catalog"
	"github.com/starford/hotlines/internal/filter"
	"github.com/starford/hotlines/internal/mcpserver"
	"github.com/starford/hotlines/internal/models"
	"github.com/starford/hotlines/internal/render"
	pkgconfig "github.com/starford/hotlines/pkg/config"
)

var version = "dev"

func configFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:        "config",
		Aliases:     []string{"c"},
		Usage:       "Path to config file",
		DefaultText: "config/config.yaml",
		Value:       "config/config.yaml",
		Sources:     cli.EnvVars("APP_CONFIG_FILE"),
	}
}

func serve(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	found, err := pkgconfig.LoadOptional(configPath, cfg)
	if err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	if !found {
		slog.Warn("config file not found, using defaults", slog.String("path", configPath))
	}

	opts := []internal.Option{
		internal.WithConfig(cfg),
	}

	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}

	return nil
}

func search(_ context.Context, cmd *cli.Command) error {
	cat, err := catalog.Load()
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	category, err := models.ParseCategoryFilter(cmd.String("category"))
	if err != nil {
		return err
	}
	lang, ok := models.ParseLanguage(cmd.String("lang"))
	if !ok {
		return fmt.Errorf("unsupported language %q", cmd.String("lang"))
	}

	criteria := models.Criteria{
		SearchTerm: strings.Join(cmd.Args().Slice(), " "),
		Category:   category,
	}
	found := filter.Filter(cat.Contacts(), cat.Labels(), criteria)
	return render.Write(os.Stdout, cmd.String("format"), render.Rows(cat, found, lang))
}

func serveMCP(_ context.Context, _ *cli.Command) error {
	// stdout carries the protocol.
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, nil)))

	cat, err := catalog.Load()
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	return mcpserver.New(cat, version).ServeStdio()
}

func main() {
	cmd := &cli.Command{
		Name:    "hotlines",
		Usage:   "Emergency and public-service phone directory for Israel",
		Version: version,
		Action:  serve,
		Flags:   []cli.Flag{configFlag()},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Serve the directory page and JSON API",
				Action: serve,
				Flags:  []cli.Flag{configFlag()},
			},
			{
				Name:      "search",
				Usage:     "Filter the directory from the terminal",
				ArgsUsage: "[term]",
				Action:    search,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "category",
						Usage: "EMERGENCY, HEALTH, UTILITY, SECURITY, WELFARE, GOVERNMENT or ALL",
						Value: string(models.CategoryAll),
					},
					&cli.StringFlag{
						Name:  "lang",
						Usage: "Output language (he, en, ru)",
						Value: string(models.LangEnglish),
					},
					&cli.StringFlag{
						Name:  "format",
						Usage: "Output format (table, json)",
						Value: render.FormatTable,
					},
				},
			},
			{
				Name:   "mcp",
				Usage:  "Serve the directory over MCP on stdio",
				Action: serveMCP,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"

	"github.com/agenthands/hallmarks/internal/config"
	"github.com/agenthands/hallmarks/internal/core"
)

var (
	configFlag = &cli.StringFlag{
		Name:  "config",
		Usage: "Path to the TOML config file",
		Value: "config/config.toml",
	}

	debugFlag = &cli.BoolFlag{
		Name:  "debug",
		Usage: "Prints verbose logs",
	}

	corpusFlag = &cli.StringFlag{
		Name:     "corpus",
		Usage:    "Path to the pathway corpus file (pathway name and genes separated by a double tab)",
		Required: true,
	}
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug("no .env file found")
	}

	cmd := &cli.Command{
		Name:  "hallmarks",
		Usage: "Score diseases against the hallmarks of aging",
		Flags: []cli.Flag{configFlag, debugFlag},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			if c.Bool(debugFlag.Name) {
				log.SetLevel(log.DebugLevel)
			}
			return ctx, nil
		},
		Commands: []*cli.Command{
			analyzeCmd,
			compareCmd,
			precomputeCmd,
			cacheCmd,
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatalf("fatal error: %v", err)
	}
}

var analyzeCmd = &cli.Command{
	Name:      "analyze",
	Usage:     "Analyze one disease and print its hallmark scores",
	ArgsUsage: "<disease name>",
	Action: func(ctx context.Context, c *cli.Command) error {
		disease := c.Args().First()
		if disease == "" {
			return fmt.Errorf("disease name required")
		}

		pipeline, err := buildPipeline(ctx, c)
		if err != nil {
			return err
		}
		defer pipeline.Close()

		annotation, err := pipeline.Analyzer.Analyze(ctx, disease)
		if err != nil {
			return err
		}
		return printJSON(annotation)
	},
}

var compareCmd = &cli.Command{
	Name:      "compare",
	Usage:     "Analyze several diseases and print their per-hallmark scores side by side",
	ArgsUsage: "<disease name> <disease name> [...]",
	Action: func(ctx context.Context, c *cli.Command) error {
		names := c.Args().Slice()
		if len(names) < 2 {
			return fmt.Errorf("at least two disease names required")
		}

		pipeline, err := buildPipeline(ctx, c)
		if err != nil {
			return err
		}
		defer pipeline.Close()

		results, err := pipeline.Analyzer.Compare(ctx, names)
		if err != nil {
			return err
		}
		return printJSON(results)
	},
}

var precomputeCmd = &cli.Command{
	Name:  "precompute",
	Usage: "Classify a pathway corpus and persist per-hallmark pathway counts",
	Flags: []cli.Flag{corpusFlag},
	Action: func(ctx context.Context, c *cli.Command) error {
		pipeline, err := buildPipeline(ctx, c)
		if err != nil {
			return err
		}
		defer pipeline.Close()

		counts, err := pipeline.Normalizer.Precompute(ctx, c.String(corpusFlag.Name))
		if err != nil {
			return err
		}
		return printJSON(counts)
	},
}

var cacheCmd = &cli.Command{
	Name:  "cache",
	Usage: "Inspect or maintain the lookup cache",
	Commands: []*cli.Command{
		{
			Name:  "stats",
			Usage: "Print entry counts by service category",
			Action: func(ctx context.Context, c *cli.Command) error {
				pipeline, err := buildPipeline(ctx, c)
				if err != nil {
					return err
				}
				defer pipeline.Close()

				stats, err := pipeline.Cache.AnalyzeStats()
				if err != nil {
					return err
				}
				return printJSON(stats)
			},
		},
		{
			Name:  "clear-expired",
			Usage: "Delete expired cache entries",
			Action: func(ctx context.Context, c *cli.Command) error {
				pipeline, err := buildPipeline(ctx, c)
				if err != nil {
					return err
				}
				defer pipeline.Close()

				removed, err := pipeline.Cache.ClearExpired()
				if err != nil {
					return err
				}
				return printJSON(map[string]int64{"removed": removed})
			},
		},
	},
}

func buildPipeline(ctx context.Context, c *cli.Command) (*core.Pipeline, error) {
	cfg, err := config.LoadOrDefault(c.String(configFlag.Name))
	if err != nil {
		return nil, err
	}
	return core.BuildPipeline(ctx, cfg)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Command definitions for the unspool CLI.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/calehart/unspool/internal/archive"
	"github.com/calehart/unspool/internal/config"
	"github.com/calehart/unspool/internal/pipeline"
	"github.com/calehart/unspool/internal/server"
	"github.com/calehart/unspool/pkg/crypto"
)

type runner struct {
	logger *slog.Logger
}

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
	}
}

// loadConfig reads the config file and applies command-line overrides.
func (r *runner) loadConfig(cmd *cli.Command) (*config.Config, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, err
	}

	if v := cmd.String("archive"); v != "" {
		cfg.Archive.Root = v
	}
	if v := cmd.String("out"); v != "" {
		cfg.Output.Dir = v
	}
	if cmd.Bool("lookup") {
		cfg.Lookup.Enabled = true
	}
	if cmd.Bool("upgrade-media") {
		cfg.Media.Upgrade = true
	}
	if cmd.Bool("pretty") {
		cfg.Output.PrettyModel = true
	}
	return cfg, nil
}

func parseCommand(r *runner) *cli.Command {
	return &cli.Command{
		Name:      "parse",
		Usage:     "Parse an archive and write the document model",
		ArgsUsage: "[archive-root]",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:    "archive",
				Aliases: []string{"a"},
				Usage:   "Archive root directory (the folder holding data/)",
			},
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   "Output directory",
			},
			&cli.BoolFlag{
				Name:  "lookup",
				Usage: "Resolve unknown user ids via the lookup endpoint",
			},
			&cli.BoolFlag{
				Name:  "upgrade-media",
				Usage: "Download best-quality media copies",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Indent the document model JSON",
			},
		},
		Action: r.parse,
	}
}

func (r *runner) parse(ctx context.Context, cmd *cli.Command) error {
	cfg, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}
	if root := cmd.Args().First(); root != "" {
		cfg.Archive.Root = root
	}
	if cfg.Archive.Root == "" {
		return fmt.Errorf("no archive root configured, pass --archive or set archive.root")
	}
	if err := os.MkdirAll(cfg.Output.Dir, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	summary, err := pipeline.NewRunner(cfg, r.logger).Run(ctx)
	if err != nil {
		return err
	}

	for _, w := range summary.Warnings {
		r.logger.Warn(w)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(summary)
}

func serveCommand(r *runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the written document model and media over HTTP",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:    "archive",
				Aliases: []string{"a"},
				Usage:   "Archive root directory (the folder holding data/)",
			},
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   "Output directory holding the model",
			},
		},
		Action: r.serve,
	}
}

func (r *runner) serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	var mediaDirs []string
	if cfg.Archive.Root != "" {
		mediaDirs, err = archive.MediaDirs(cfg.Archive.Root)
		if err != nil {
			return fmt.Errorf("probe archive media folders: %w", err)
		}
	}

	modelPath := filepath.Join(cfg.Output.Dir, cfg.Output.ModelFile)
	return server.New(cfg.Server, modelPath, mediaDirs, r.logger).Run(ctx)
}

func exportCommand(r *runner) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Write a password-sealed copy of the document model",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   "Output directory holding the model",
			},
			&cli.StringFlag{
				Name:  "dest",
				Usage: "Destination file (default: <model>.sealed)",
			},
			&cli.StringFlag{
				Name:  "password",
				Usage: "Seal password (prompted when omitted)",
			},
		},
		Action: r.export,
	}
}

func (r *runner) export(ctx context.Context, cmd *cli.Command) error {
	cfg, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	modelPath := filepath.Join(cfg.Output.Dir, cfg.Output.ModelFile)
	if _, err := os.Stat(modelPath); err != nil {
		return fmt.Errorf("no document model at %s, run parse first", modelPath)
	}

	dest := cmd.String("dest")
	if dest == "" {
		dest = modelPath + ".sealed"
	}
	if _, err := os.Stat(dest); err == nil {
		ok, err := confirm(fmt.Sprintf("%s exists, overwrite?", dest))
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("aborted")
		}
	}

	password := cmd.String("password")
	if password == "" {
		password, err = promptNewPassword()
		if err != nil {
			return err
		}
	}

	if err := crypto.SealFile(modelPath, dest, password); err != nil {
		return err
	}
	r.logger.Info("sealed export written", "path", dest)
	return nil
}

func versionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Print version information",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			fmt.Printf("unspool %s (built %s)\n", Version, BuildTime)
			return nil
		},
	}
}

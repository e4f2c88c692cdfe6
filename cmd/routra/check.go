package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/routra-dev/routra/internal/config"
	routraerrors "github.com/routra-dev/routra/internal/errors"
)

func checkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate the project configuration",
		Long: `Load and validate routra.json, then verify that the
configured template and static directories exist.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck()
		},
	}
	return cmd
}

func runCheck() error {
	cfg, err := config.LoadFromWorkingDir()
	if err != nil {
		routraerrors.PrintError(err)
		return err
	}
	success("loaded %s", cfg.Path())

	if err := cfg.Validate(); err != nil {
		routraerrors.PrintError(err)
		return err
	}
	success("configuration is valid")

	if _, err := os.Stat(cfg.TemplatePath()); err != nil {
		checkErr := routraerrors.New("E123").
			WithDetail("Template directory " + cfg.TemplatePath() + " does not exist").
			WithSuggestion("Create it or set templateDir in routra.json")
		routraerrors.PrintError(checkErr)
		return checkErr
	}
	success("template directory %s exists", cfg.TemplatePath())

	if _, err := os.Stat(cfg.StaticPath()); err != nil {
		info("static directory %s does not exist (skipping static serving)", cfg.StaticPath())
	} else {
		success("static directory %s exists", cfg.StaticPath())
	}

	return nil
}

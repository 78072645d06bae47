package main

import (
	"github.com/spf13/cobra"

	"github.com/dyne/textsvc/internal/batch"
	"github.com/dyne/textsvc/internal/inspect"
	"github.com/dyne/textsvc/internal/log"
	"github.com/dyne/textsvc/internal/plan"
)

func batchCmd(rootOpts *globalOptions) *cobra.Command {
	var inPath string
	var outPath string
	var fkMode string
	var jobs int
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Copy a SQLite database, running configured services over text columns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := rootOpts.logger(cmd, log.LevelInfo)
			reg, cfg, err := rootOpts.catalogue(logger)
			if err != nil {
				return err
			}
			stats, err := batch.Run(cmd.Context(), batch.Options{
				InPath:   inPath,
				OutPath:  outPath,
				Config:   cfg,
				Services: reg,
				FKMode:   fkMode,
				Jobs:     jobs,
				Logger:   logger,
			})
			if err != nil {
				return err
			}
			logger.Infof("%d tables, %d values rewritten", len(stats.Tables), stats.Values)
			return nil
		},
	}
	cmd.Flags().StringVar(&inPath, "in", "", "input SQLite file")
	cmd.Flags().StringVar(&outPath, "out", "", "output SQLite file")
	cmd.Flags().StringVar(&fkMode, "fk", "on", "foreign key enforcement (on|off)")
	cmd.Flags().IntVar(&jobs, "jobs", 4, "parallelism")
	_ = cmd.MarkFlagRequired("in")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

func planCmd(rootOpts *globalOptions) *cobra.Command {
	var inPath string
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show which service each configured column goes through",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := rootOpts.logger(cmd, log.LevelInfo)
			reg, cfg, err := rootOpts.catalogue(logger)
			if err != nil {
				return err
			}
			return plan.Run(cmd.Context(), inPath, cfg, reg, cmd.OutOrStdout(), logger)
		},
	}
	cmd.Flags().StringVar(&inPath, "in", "", "input SQLite file")
	_ = cmd.MarkFlagRequired("in")
	return cmd
}

func inspectCmd(rootOpts *globalOptions) *cobra.Command {
	var inPath string
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "List tables, row counts and text columns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return inspect.Run(cmd.Context(), inPath, cmd.OutOrStdout(), rootOpts.logger(cmd, log.LevelInfo))
		},
	}
	cmd.Flags().StringVar(&inPath, "in", "", "input SQLite file")
	_ = cmd.MarkFlagRequired("in")
	return cmd
}

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/dyne/textsvc/internal/log"
	"github.com/dyne/textsvc/internal/mcp"
	"github.com/dyne/textsvc/internal/tui"
)

var errNoInput = errors.New(tui.MsgNoInput)

func listCmd(rootOpts *globalOptions) *cobra.Command {
	var noColor bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List available services",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, _, err := rootOpts.catalogue(rootOpts.logger(cmd, log.LevelWarn))
			if err != nil {
				return err
			}
			keyColor := color.New(color.FgCyan, color.Bold)
			if noColor || !isTerminal(cmd.OutOrStdout()) {
				keyColor.DisableColor()
			}
			entries := reg.Entries()
			width := 0
			for _, e := range entries {
				width = max(width, len(e.Key))
			}
			out := cmd.OutOrStdout()
			for _, e := range entries {
				fmt.Fprintf(out, "%s  %s\n", keyColor.Sprintf("%-*s", width, e.Key), e.Name)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable coloured output")
	return cmd
}

func runCmd(rootOpts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run <service> [text...]",
		Short: "Run one service on the given text or on stdin",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, _, err := rootOpts.catalogue(rootOpts.logger(cmd, log.LevelWarn))
			if err != nil {
				return err
			}
			input, err := readInput(cmd.InOrStdin(), args[1:])
			if err != nil {
				return err
			}
			if strings.TrimSpace(input) == "" {
				return errNoInput
			}
			out, err := reg.Run(args[0], input)
			if err != nil {
				return fmt.Errorf("please select a valid service: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
}

// readInput joins args with spaces, or reads stdin when no args are given and
// stdin is not an interactive terminal. One trailing newline is dropped.
func readInput(in io.Reader, args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	if isTerminal(in) {
		return "", nil
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	text := strings.TrimSuffix(string(data), "\n")
	return strings.TrimSuffix(text, "\r"), nil
}

func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func tuiCmd(rootOpts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Pick a service and run it interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, _, err := rootOpts.catalogue(rootOpts.logger(cmd, log.LevelError))
			if err != nil {
				return err
			}
			return tui.Run(cmd.Context(), reg)
		},
	}
}

func mcpCmd(rootOpts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the services as MCP tools over stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := rootOpts.logger(cmd, log.LevelWarn)
			reg, _, err := rootOpts.catalogue(logger)
			if err != nil {
				return err
			}
			srv, err := mcp.NewServer(reg)
			if err != nil {
				return err
			}
			logger.Debugf("mcp server %s on stdio", mcp.Version)
			return srv.Run(cmd.Context())
		},
	}
}

// Command latticedb is a thin process entrypoint around engine.Engine:
// run a script file non-interactively, or round-trip a snapshot from
// the shell. There is no interactive REPL; this binary exists only to
// exercise the engine as a process, with subcommands that expose
// SAVE/LOAD DATABASE outside an in-language session.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/latticedb/latticedb/internal/engine"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "latticedb",
		Short: "LatticeDB: a single-node bitemporal, mergeable relational store",
	}

	root.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, error")
	root.PersistentFlags().Float64("epsilon", 1.0, "initial DP_EPSILON session value")
	root.PersistentFlags().String("config", "", "path to a YAML/TOML/JSON config file")

	cobra.OnInitialize(func() {
		initConfig(root)
		initLogging(root)
	})

	root.AddCommand(newRunCmd(), newSaveCmd(), newLoadCmd())
	return root
}

func initConfig(root *cobra.Command) {
	if path, _ := root.PersistentFlags().GetString("config"); path != "" {
		viper.SetConfigFile(path)
	} else {
		viper.SetConfigName("latticedb")
		viper.AddConfigPath(".")
	}
	viper.SetEnvPrefix("LATTICEDB")
	viper.AutomaticEnv()
	_ = viper.ReadInConfig() // absence of a config file is not an error

	_ = viper.BindPFlag("log-level", root.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("epsilon", root.PersistentFlags().Lookup("epsilon"))
}

func initLogging(root *cobra.Command) {
	level, err := zerolog.ParseLevel(viper.GetString("log-level"))
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
}

// newRunCmd executes every statement in a script file against a fresh
// engine and exits non-zero if any statement fails.
func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <script.sql>",
		Short: "Execute a script file against a fresh engine",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return errors.Wrapf(err, "reading script %q", args[0])
			}

			e := engine.New()
			e.SetLogger(log.Logger)
			applyInitialEpsilon(e)

			results := e.Execute(string(data))
			printResults(results)
			for _, r := range results {
				if !r.OK {
					return errors.Errorf("script %q failed: %s", args[0], r.Message)
				}
			}
			return nil
		},
	}
}

// newSaveCmd runs an optional script against a fresh engine, then saves
// its resulting state to a snapshot file.
func newSaveCmd() *cobra.Command {
	var script string
	cmd := &cobra.Command{
		Use:   "save <snapshot>",
		Short: "Run an optional script, then save the resulting database to a snapshot file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e := engine.New()
			e.SetLogger(log.Logger)
			applyInitialEpsilon(e)

			if script != "" {
				data, err := os.ReadFile(script)
				if err != nil {
					return errors.Wrapf(err, "reading script %q", script)
				}
				printResults(e.Execute(string(data)))
			}

			saveStmt := fmt.Sprintf("SAVE DATABASE '%s';", escapeQuote(args[0]))
			printResults(e.Execute(saveStmt))
			return nil
		},
	}
	cmd.Flags().StringVar(&script, "script", "", "script to run before saving")
	return cmd
}

// newLoadCmd loads a snapshot file and optionally runs a follow-up
// script against the restored state.
func newLoadCmd() *cobra.Command {
	var script string
	cmd := &cobra.Command{
		Use:   "load <snapshot>",
		Short: "Load a snapshot and optionally run a follow-up script against it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e := engine.New()
			e.SetLogger(log.Logger)
			applyInitialEpsilon(e)

			loadStmt := fmt.Sprintf("LOAD DATABASE '%s';", escapeQuote(args[0]))
			printResults(e.Execute(loadStmt))

			if script != "" {
				data, err := os.ReadFile(script)
				if err != nil {
					return errors.Wrapf(err, "reading follow-up script %q", script)
				}
				printResults(e.Execute(string(data)))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&script, "script", "", "optional script to run after loading")
	return cmd
}

func applyInitialEpsilon(e *engine.Engine) {
	eps := viper.GetFloat64("epsilon")
	if eps > 0 {
		e.Execute(fmt.Sprintf("SET DP_EPSILON = %v;", eps))
	}
}

func escapeQuote(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func printResults(results []engine.Result) {
	for _, r := range results {
		if !r.OK {
			fmt.Fprintln(os.Stdout, "ERROR:", r.Message)
			continue
		}
		if len(r.Header) == 0 && len(r.Rows) == 0 {
			fmt.Fprintln(os.Stdout, "OK:", r.Message)
			continue
		}
		if len(r.Header) > 0 {
			fmt.Fprintln(os.Stdout, strings.Join(r.Header, "\t"))
		}
		for _, row := range r.Rows {
			cells := make([]string, len(row))
			for i, v := range row {
				cells[i] = v.Canonical()
			}
			fmt.Fprintln(os.Stdout, strings.Join(cells, "\t"))
		}
	}
}

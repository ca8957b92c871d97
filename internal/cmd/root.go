package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/connesc/appticket"
	"github.com/connesc/appticket/config"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Exit codes, in addition to 1 for usage and configuration errors.
const (
	exitInput    = 2
	exitRejected = 3
)

type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }

func (e *exitError) Unwrap() error { return e.err }

// app holds the state shared by the commands of a single invocation.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	key           string
	configFile    string
	envFile       string
	publicKeyFile string
	logLevel      string

	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "appticket",
		Short:         "Decrypt and verify Steam encrypted app tickets",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd.Flags())
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&a.key, "key", "k", "", "hex encoded symmetric key, overrides APPTICKET_KEY")
	flags.StringVar(&a.configFile, "config", "", "YAML configuration file")
	flags.StringVar(&a.envFile, "env-file", "", "load environment variables from this file before the configuration")
	flags.StringVar(&a.publicKeyFile, "public-key", "", "PEM or DER public key checking signatures, instead of Steam's")
	flags.StringVar(&a.logLevel, "log-level", "", "one of debug, info, warn or error")

	rootCmd.SetIn(a.stdin)
	rootCmd.SetOut(a.stdout)
	rootCmd.SetErr(a.stderr)

	output := newOutputFlags()
	rootCmd.AddCommand(newDecryptCmd(a, output), newCheckCmd(a, output))
	return rootCmd
}

// setup loads the configuration, applies the global flags over it and builds the logger.
func (a *app) setup(flags *pflag.FlagSet) error {
	if a.envFile != "" {
		if err := godotenv.Load(a.envFile); err != nil {
			return fmt.Errorf("failed to load env file: %w", err)
		}
	}

	cfg, err := config.Load(a.configFile)
	if err != nil {
		return err
	}
	if flags.Changed("key") {
		cfg.Key = a.key
	}
	if flags.Changed("public-key") {
		cfg.PublicKeyFile = a.publicKeyFile
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = a.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = newLogger(a.stderr, cfg)
	return nil
}

func (a *app) verifier() (*appticket.Verifier, error) {
	vc, err := a.cfg.VerifierConfig(a.logger)
	if err != nil {
		return nil, err
	}
	return appticket.NewVerifier(vc)
}

// Run the CLI with the given arguments and streams, and return the exit code.
func Run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	a := &app{stdin: stdin, stdout: stdout, stderr: stderr}
	rootCmd := newRootCmd(a)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	if err == nil {
		return 0
	}

	var exitErr *exitError
	if errors.As(err, &exitErr) {
		return exitErr.code
	}
	fmt.Fprintln(stderr, err)
	return 1
}

// Execute the CLI.
func Execute() {
	os.Exit(Run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

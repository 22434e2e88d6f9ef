package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/goliatone/go-persist/pkg/storage"
)

const version = "0.1.0"

// cli carries the state shared by subcommands for one invocation.
type cli struct {
	v       *viper.Viper
	out     io.Writer
	logger  zerolog.Logger
	backend storage.Backend
	gateway *storage.Gateway
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	c := &cli{v: viper.New(), out: out}

	root := &cobra.Command{
		Use:           "persistctl",
		Short:         "Inspect persisted slice records",
		Long:          fmt.Sprintf("persistctl (v%s)\n\nReads, overwrites and clears the JSON records persisted slices keep\nunder %q keys.", version, storage.KeyPrefix+"<slice>"),
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.SetOut(out)
	root.SetErr(errOut)

	flags := root.PersistentFlags()
	flags.String("config", "", "config file (default ./persistctl.yaml)")
	flags.String("driver", "file", "storage driver (memory, file, sqlite)")
	flags.String("path", ".persist", "directory (file) or database file (sqlite)")
	flags.Duration("busy-timeout", 0, "sqlite busy timeout")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")

	root.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		if err := c.loadConfig(cmd); err != nil {
			return err
		}
		c.logger = newLogger(errOut, c.v.GetString("log-level"))
		return c.open()
	}
	root.PersistentPostRunE = func(*cobra.Command, []string) error {
		return c.close()
	}

	root.AddCommand(
		c.getCmd(),
		c.setCmd(),
		c.clearCmd(),
		c.listCmd(),
		&cobra.Command{
			Use:   "version",
			Short: "Print the version number of persistctl",
			PersistentPreRunE: func(*cobra.Command, []string) error {
				return nil
			},
			PersistentPostRunE: func(*cobra.Command, []string) error {
				return nil
			},
			Run: func(cmd *cobra.Command, _ []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "persistctl v%s\n", version)
			},
		},
	)
	return root
}

// loadConfig layers flags over PERSISTCTL_* environment variables over an
// optional config file. .env files are loaded into the environment first.
func (c *cli) loadConfig(cmd *cobra.Command) error {
	_ = godotenv.Load(".env")

	c.v.SetEnvPrefix("persistctl")
	c.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.v.AutomaticEnv()

	if err := c.v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	if file := c.v.GetString("config"); file != "" {
		c.v.SetConfigFile(file)
	} else {
		c.v.SetConfigName("persistctl")
		c.v.SetConfigType("yaml")
		c.v.AddConfigPath(".")
	}
	if err := c.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}
	return nil
}

func (c *cli) storageConfig() storage.Config {
	return storage.Config{
		Driver:      c.v.GetString("driver"),
		Path:        c.v.GetString("path"),
		BusyTimeout: c.v.GetDuration("busy-timeout"),
	}
}

func (c *cli) open() error {
	cfg := c.storageConfig()
	backend, err := storage.Open(cfg)
	if err != nil {
		return err
	}
	c.backend = backend
	c.gateway = storage.NewGateway(backend)
	c.logger.Debug().Str("driver", cfg.Driver).Str("path", cfg.Path).Msg("storage opened")
	return nil
}

func (c *cli) close() error {
	if c.backend == nil {
		return nil
	}
	err := c.backend.Close()
	c.backend = nil
	return err
}

func newLogger(w io.Writer, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, NoColor: true}).
		Level(lvl).
		With().Timestamp().Logger()
}

package main

import (
	"os"

	"github.com/lixenwraith/fmodapi/audio"
	"github.com/lixenwraith/fmodapi/nativelib"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// defaultConfigPath is read from the working directory when --config is not given
const defaultConfigPath = "fmodapi.toml"

// RootOptions holds global flags for all commands
type RootOptions struct {
	ConfigPath string
	Debug      bool

	// Injected by tests; nil uses the FMOD backend and the platform opener
	backend    audio.Backend
	opener     nativelib.Opener
	engineOpts []audio.EngineOption

	logFile *os.File
}

// NewRootCommand creates the fmodhost root command
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fmodhost",
		Short: "Host harness for the embedded FMOD Studio engine",
		Long: `fmodhost drives the audio engine the way a host application does:
it loads configuration, resolves the native libraries, ticks the engine
and reports its status.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			logger, file := setupLogging(cfg.DebugLogging)
			opts.logFile = file
			audio.SetLogger(logger)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = audio.Logger().Sync()
			audio.SetLogger(nil)
			if opts.logFile != nil {
				opts.logFile.Close()
				opts.logFile = nil
			}
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", defaultConfigPath, "TOML config file")
	cmd.PersistentFlags().BoolVar(&opts.Debug, "debug", false, "enable debug logging to logs/")

	cmd.AddCommand(newStatusCommand(opts))
	cmd.AddCommand(newPlayCommand(opts))
	cmd.AddCommand(newLibsCommand(opts))
	cmd.AddCommand(newMonitorCommand(opts))

	return cmd
}

// loadConfig reads the config file and applies environment and flag overrides
func loadConfig(opts *RootOptions) (audio.Config, error) {
	cfg, err := audio.LoadConfigFile(opts.ConfigPath)
	if err != nil {
		return cfg, err
	}
	cfg = audio.ApplyEnv(cfg)
	if opts.Debug {
		cfg.DebugLogging = true
	}
	audio.Logger().Debug("config loaded", zap.String("path", opts.ConfigPath))
	return cfg, nil
}

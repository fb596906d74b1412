package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/lixenwraith/rainfield/config"
	"github.com/lixenwraith/rainfield/engine"
)

// Version is set at build time
var Version = "0.1.0"

// sessionKey stores the loaded session in a command context
type sessionKey struct{}

// session is the state shared by every subcommand after config loading
type session struct {
	cfg    *config.Config
	file   string
	keys   map[string]any
	log    *slog.Logger
	closer io.Closer
}

// NewRootCmd creates the root command with its subcommands
func NewRootCmd() *cobra.Command {
	var cfgFile string

	root := &cobra.Command{
		Use:   "rainfield",
		Short: "Glyph rain with a hidden message",
		Long: `rainfield renders columns of falling glyphs whose brightness briefly traces
configured lines of text, with rare subliminal phrases drifting through the rain.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			l := config.NewLoader()
			cfg, err := l.Load(cfgFile, cmd.Flags())
			if err != nil {
				return err
			}

			log, closer, err := setupLogging(cfg.Log, cfg.LogLevel())
			if err != nil {
				return err
			}
			engine.SetLogger(log)
			if file := l.FileUsed(); file != "" {
				log.Debug("config loaded", "file", file)
			}

			s := &session{cfg: cfg, file: l.FileUsed(), keys: l.Keys(), log: log, closer: closer}
			ctx := context.WithValue(cmd.Context(), sessionKey{}, s)
			cmd.SetContext(config.WithLogger(ctx, log))
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			engine.SetLogger(nil)
			if s := sessionFrom(cmd.Context()); s != nil && s.closer != nil {
				return s.closer.Close()
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetVersionTemplate("{{.Name}} {{.Version}}\n")

	pf := root.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: ./"+config.DefaultFile+")")
	pf.StringSlice("text", nil, "lines to reveal, comma separated")
	pf.Float64("spacing", 14, "column spacing in logical pixels")
	pf.Int("fps", 30, "target frame rate")
	pf.Bool("reduced-motion", false, "paint a single static frame")
	pf.Float64("scale", 1, "device pixel ratio, clamped to [1,2]")
	pf.Float64("boost-ms", 500, "boost duration per key press")
	pf.String("color-mode", "auto", "terminal color mode (auto|256|truecolor)")
	pf.Bool("mouse", false, "treat mouse motion as activity")
	pf.Uint64("seed", 0, "random seed, 0 seeds from the clock")
	pf.Bool("watch", false, "reload text.lines when the config file changes")
	pf.String("catalog", "", "YAML subliminal phrase catalog")
	pf.Bool("sound", false, "enable interaction cues")
	pf.Float64("volume", 0.5, "cue volume in [0,1]")
	pf.Bool("debug", false, "write a debug log")
	pf.String("log-file", "logs/rainfield.log", "debug log path")
	pf.String("log-level", "debug", "debug log level (debug|info|warn|error)")

	_ = root.RegisterFlagCompletionFunc("color-mode", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"auto", "256", "truecolor"}, cobra.ShellCompDirectiveNoFileComp
	})

	root.AddCommand(newRunCmd())
	root.AddCommand(newSnapshotCmd())
	root.AddCommand(newPhrasesCmd())
	root.AddCommand(newConfigCmd())
	root.AddCommand(newVersionCmd())
	return root
}

// sessionFrom returns the session stored by the root pre-run hook
func sessionFrom(ctx context.Context) *session {
	if ctx == nil {
		return nil
	}
	s, _ := ctx.Value(sessionKey{}).(*session)
	return s
}

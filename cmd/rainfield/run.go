package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/lixenwraith/rainfield/audio"
	"github.com/lixenwraith/rainfield/config"
	"github.com/lixenwraith/rainfield/engine"
	"github.com/lixenwraith/rainfield/render/raster"
	"github.com/lixenwraith/rainfield/terminal"
)

// errNoTTY is returned when run is started without a terminal
var errNoTTY = errors.New("run: stdout is not a terminal, use snapshot for offline frames")

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Show the rain in the terminal",
		Long: `Show the rain in the terminal. Any key boosts the fall speed, q, Esc or
Ctrl-C quits. With --watch, saving the config file replaces the revealed lines.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !term.IsTerminal(int(os.Stdout.Fd())) {
				return errNoTTY
			}
			return runTerminal(cmd.Context(), sessionFrom(cmd.Context()))
		},
	}
}

// newEngine builds an engine whose masks are drawn with the configured font
func newEngine(cfg *config.Config) (*engine.Engine, error) {
	opts, err := cfg.EngineOptions()
	if err != nil {
		return nil, err
	}
	src, err := loadFont(cfg.Render.MaskFont)
	if err != nil {
		return nil, err
	}
	opts.Canvas = raster.NewCanvasFactory(src)
	return engine.New(opts)
}

func runTerminal(ctx context.Context, s *session) error {
	log := s.log.With("component", "run")

	eng, err := newEngine(s.cfg)
	if err != nil {
		return err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("run: open screen: %w", err)
	}

	player := audio.NewPlayer(s.cfg.AudioConfig())
	if err := player.Initialize(); err != nil && !errors.Is(err, audio.ErrDisabled) {
		log.Warn("audio unavailable", "error", err)
	}
	defer player.Cleanup()

	host := terminal.NewHost(screen, eng, s.cfg.HostConfig(), player, nil)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		return host.Run(gctx)
	})

	if s.cfg.Run.Watch {
		if s.file == "" {
			log.Warn("watch requested without a config file")
		} else {
			g.Go(func() error {
				select {
				case <-host.Started():
				case <-gctx.Done():
					return nil
				}
				return config.Watch(gctx, s.file, host.SetLines)
			})
		}
	}

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("session ended", "paints", eng.Paints(), "spawned", eng.Subliminal().Spawned())
	return nil
}

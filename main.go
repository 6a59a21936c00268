// Command polargraph streams vector drawings to a polargraph pen plotter
// over a serial link. It can plot a G-code file directly or run one of the
// built-in pattern producers, with pause-free acknowledgment-driven flow
// control, Ctrl-C stop, and a second Ctrl-C escalating to emergency stop.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/banshee-data/polargraph/internal/path"
	"github.com/banshee-data/polargraph/internal/plot"
	"github.com/banshee-data/polargraph/internal/producer"
	"github.com/banshee-data/polargraph/internal/serialmux"
	"github.com/banshee-data/polargraph/internal/settings"
	"github.com/banshee-data/polargraph/internal/version"
)

var (
	portFlag       = flag.String("port", "", "serial port device path")
	baudFlag       = flag.Int("baud", 0, "baud rate (default from settings)")
	configFlag     = flag.String("config", "", "settings JSON file")
	fileFlag       = flag.String("file", "", "G-code file to plot")
	generateFlag   = flag.String("generate", "", "pattern producer to run")
	fitFlag        = flag.Bool("fit", true, "fit generated drawings to the work area")
	listPorts      = flag.Bool("list-ports", false, "list serial ports and exit")
	listGenerators = flag.Bool("list-generators", false, "list pattern producers and exit")
	debugFlag      = flag.Bool("debug", false, "enable debug logging")
)

func main() {
	flag.Parse()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *debugFlag {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	log.Debug().Str("version", version.String()).Msg("polargraph starting")

	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("polargraph exited")
	}
}

func run() error {
	if *listPorts {
		ports, err := serialmux.ListPorts()
		if err != nil {
			return fmt.Errorf("enumerate serial ports: %w", err)
		}
		for _, p := range ports {
			fmt.Println(p)
		}
		return nil
	}
	if *listGenerators {
		for _, info := range producer.List() {
			fmt.Printf("%-12s %s\n", info.ID, info.Description)
		}
		return nil
	}

	cfg := settings.Defaults()
	if *configFlag != "" {
		loaded, err := settings.Load(*configFlag)
		if err != nil {
			return fmt.Errorf("load settings: %w", err)
		}
		cfg = loaded
	}

	if *portFlag == "" {
		return errors.New("a serial port is required (see -list-ports)")
	}
	baud := cfg.BaudRate
	if *baudFlag > 0 {
		baud = *baudFlag
	}

	mux := serialmux.New(serialmux.OpenPort)
	if err := mux.Connect(*portFlag, baud); err != nil {
		return err
	}
	defer mux.Disconnect()

	ctrl := plot.New(mux, cfg)
	subID, inbound := mux.Subscribe()
	defer mux.Unsubscribe(subID)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go watchSignals(ctx, ctrl, cancel)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := ctrl.Run(ctx, inbound)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		defer cancel()
		return plotJob(ctx, ctrl, cfg)
	})

	return g.Wait()
}

// watchSignals maps the first interrupt to a graceful stop and a second one
// to an emergency stop before shutting the process down.
func watchSignals(ctx context.Context, ctrl *plot.Controller, cancel context.CancelFunc) {
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-ctx.Done():
		return
	case <-sigCh:
	}
	log.Warn().Msg("interrupt: stopping plot (interrupt again for emergency stop)")
	if err := ctrl.Stop(); err != nil {
		log.Warn().Err(err).Msg("stop failed")
		cancel()
		return
	}

	select {
	case <-ctx.Done():
	case <-sigCh:
		ctrl.EmergencyStop()
	}
	cancel()
}

// plotJob resolves the requested work and streams it, one document per pass.
func plotJob(ctx context.Context, ctrl *plot.Controller, cfg settings.Settings) error {
	switch {
	case *fileFlag != "":
		lines, err := readGcodeFile(*fileFlag)
		if err != nil {
			return err
		}
		log.Info().Str("file", *fileFlag).Int("lines", len(lines)).Msg("plotting file")
		if err := ctrl.StartLines(lines); err != nil {
			return err
		}
		return awaitCompletion(ctx, ctrl)

	case *generateFlag != "":
		res, err := producer.Generate(*generateFlag, producerOptions(cfg))
		if err != nil {
			return err
		}
		if !res.MultiLayer() {
			return plotDocument(ctx, ctrl, cfg, res.Doc)
		}
		for _, layer := range res.Layers {
			log.Info().Str("layer", layer.Name).Str("color", layer.Color).Msg("plotting layer")
			if err := plotDocument(ctx, ctrl, cfg, layer.Doc); err != nil {
				return err
			}
		}
		return nil

	default:
		return errors.New("nothing to plot: pass -file or -generate")
	}
}

func producerOptions(cfg settings.Settings) producer.Options {
	area := cfg.WorkArea()
	return producer.Options{
		"width":  area.Width(),
		"height": area.Height(),
	}
}

func plotDocument(ctx context.Context, ctrl *plot.Controller, cfg settings.Settings, doc *path.Document) error {
	if *fitFlag {
		area := cfg.WorkArea()
		doc.FitTo(area.Left, area.Bottom, area.Right, area.Top, true)
	}
	if err := ctrl.Start(doc); err != nil {
		return err
	}
	return awaitCompletion(ctx, ctrl)
}

// awaitCompletion follows controller notifications until the plot finishes
// one way or another, logging progress at each decile. A slow terminal can
// drop notifications, so terminal states are also polled.
func awaitCompletion(ctx context.Context, ctrl *plot.Controller) error {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	lastDecile := -1
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if done, err := finished(ctrl.State()); done {
				return err
			}
		case n := <-ctrl.Notifications():
			if decile := n.Percent / 10; decile > lastDecile && n.State == plot.Plotting {
				lastDecile = decile
				log.Info().
					Int("line", n.Line).
					Int("total", n.Total).
					Int("percent", n.Percent).
					Float64("x", n.Position.X).
					Float64("y", n.Position.Y).
					Msg("plot progress")
			}
			if done, err := finished(n.State); done {
				return err
			}
		}
	}
}

// finished reports whether the state is terminal for the current plot and, if
// so, with what outcome.
func finished(s plot.State) (bool, error) {
	switch s {
	case plot.Completed:
		return true, nil
	case plot.Stopped:
		return true, errors.New("plot stopped")
	case plot.EmergencyStopped:
		return true, errors.New("plot halted by emergency stop")
	}
	return false, nil
}

// readGcodeFile loads a command stream, dropping only lines the device could
// never want; comments are kept so previews and progress match the file.
func readGcodeFile(name string) ([]string, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open gcode file: %w", err)
	}
	defer f.Close()

	var lines []string
	scan := bufio.NewScanner(f)
	for scan.Scan() {
		lines = append(lines, scan.Text())
	}
	if err := scan.Err(); err != nil {
		return nil, fmt.Errorf("read gcode file: %w", err)
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("gcode file %s is empty", name)
	}
	return lines, nil
}

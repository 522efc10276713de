// Command dwlb is a status bar for dwl-style compositors.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"pkt.systems/psi"
	"pkt.systems/pslog"

	"github.com/brendandebeasi/dwlb/pkg/backend/headless"
	"github.com/brendandebeasi/dwlb/pkg/config"
	"github.com/brendandebeasi/dwlb/pkg/perf"
)

const version = "0.2"

var errUnknownBackend = errors.New("unknown backend")

type options struct {
	configPath string
	debug      bool
	version    bool
	perf       bool

	// writeConfig saves the effective config to configPath and exits.
	writeConfig bool

	backend   string
	outputs   []headless.Output
	snapshots string

	// Overrides for the config file; only set flags apply.
	hidden     *bool
	bottom     *bool
	hideVacant *bool
}

// outputList is a flag.Value for NAME[:WIDTH],... lists.
type outputList []headless.Output

func (o *outputList) String() string {
	parts := make([]string, len(*o))
	for i, out := range *o {
		parts[i] = fmt.Sprintf("%s:%d", out.Name, out.Width)
	}
	return strings.Join(parts, ",")
}

func (o *outputList) Set(v string) error {
	*o = nil
	for _, item := range strings.Split(v, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		name, width, found := strings.Cut(item, ":")
		out := headless.Output{Name: name}
		if found {
			w, err := strconv.Atoi(width)
			if err != nil || w <= 0 {
				return fmt.Errorf("bad width in %q", item)
			}
			out.Width = w
		}
		*o = append(*o, out)
	}
	return nil
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("dwlb", flag.ContinueOnError)
	fs.SetOutput(stderr)
	opts := &options{}
	var outputs outputList
	fs.StringVar(&opts.configPath, "config", config.DefaultConfigPath(), "config file")
	fs.BoolVar(&opts.debug, "debug", false, "log at debug level")
	fs.BoolVar(&opts.version, "v", false, "print version and exit")
	fs.BoolVar(&opts.perf, "perf", false, "log every render timing (same as DWLB_PERF=1)")
	fs.BoolVar(&opts.writeConfig, "write-config", false, "write the effective config to the -config path and exit")
	fs.StringVar(&opts.backend, "backend", "headless", "display backend")
	fs.Var(&outputs, "headless-outputs", "virtual outputs as NAME[:WIDTH],...")
	fs.StringVar(&opts.snapshots, "headless-snapshots", "", "directory for PNG dumps of committed frames")
	hidden := fs.Bool("hidden", false, "start with bars hidden")
	bottom := fs.Bool("bottom", false, "place bars at the bottom")
	hideVacant := fs.Bool("hide-vacant-tags", false, "do not draw tags without clients")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected argument %q", fs.Arg(0))
	}
	opts.outputs = outputs
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "hidden":
			opts.hidden = hidden
		case "bottom":
			opts.bottom = bottom
		case "hide-vacant-tags":
			opts.hideVacant = hideVacant
		}
	})
	return opts, nil
}

// writeConfig saves the file's settings merged with command line
// overrides, so flags can be made permanent.
func writeConfig(opts *options) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	opts.applyOverrides(cfg)
	return config.SaveConfig(opts.configPath, cfg)
}

// applyOverrides copies command line settings over the file's.
func (o *options) applyOverrides(cfg *config.Config) {
	if o.hidden != nil {
		cfg.Hidden = *o.hidden
	}
	if o.bottom != nil {
		cfg.Bottom = *o.bottom
	}
	if o.hideVacant != nil {
		cfg.HideVacant = *o.hideVacant
	}
}

func main() {
	psi.Run(submain)
}

func submain(ctx context.Context) int {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "dwlb: %v\n", err)
		return 2
	}
	if opts.version {
		fmt.Printf("dwlb %s\n", version)
		return 0
	}
	if opts.writeConfig {
		if err := writeConfig(opts); err != nil {
			fmt.Fprintf(os.Stderr, "dwlb: %v\n", err)
			return 1
		}
		fmt.Printf("wrote %s\n", opts.configPath)
		return 0
	}
	if opts.perf {
		perf.SetEnabled(true)
	}

	level := pslog.InfoLevel
	if opts.debug {
		level = pslog.DebugLevel
	}
	logger := pslog.LoggerFromEnv(
		pslog.WithEnvWriter(os.Stderr),
		pslog.WithEnvOptions(pslog.Options{Mode: pslog.ModeConsole, MinLevel: level}),
	)
	ctx = pslog.ContextWithLogger(ctx, logger)
	log.SetOutput(pslog.LogLogger(logger).Writer())
	log.SetFlags(0)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGHUP)
	defer stop()

	if err := run(ctx, opts); err != nil {
		logger.Error("dwlb failed", "err", err)
		return 1
	}
	return 0
}

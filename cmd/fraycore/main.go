// Fraycore runs turn-based battles from Lua content in the terminal.
// Usage: fraycore [--version] [--plain] [--script <file>] [--trace] [--seed N]
// [--encounter ID] [--config FILE] [--replay FILE] <content_dir>
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nathoo/fraycore/cli"
	"github.com/nathoo/fraycore/config"
	"github.com/nathoo/fraycore/engine/state"
	"github.com/nathoo/fraycore/loader"
	"github.com/nathoo/fraycore/logging"
	"github.com/nathoo/fraycore/session"
	"github.com/nathoo/fraycore/tui"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const usage = "Usage: fraycore [--version] [--plain] [--script <file>] [--trace] [--seed N] [--encounter ID] [--config FILE] [--replay FILE] <content_dir>"

// options are the parsed command line. Pointer fields are nil when the
// flag was not given, so they only override the config file when set.
type options struct {
	version    bool
	plain      *bool
	trace      *bool
	seed       *int64
	encounter  *string
	script     string
	configFile string
	replayFile string
	contentDir string
}

func parseArgs(args []string) (options, error) {
	var o options
	yes := true

	value := func(i *int, flag string) (string, error) {
		if *i+1 >= len(args) {
			return "", fmt.Errorf("%s requires a value", flag)
		}
		*i++
		return args[*i], nil
	}

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--version":
			o.version = true
		case "--plain":
			o.plain = &yes
		case "--trace":
			o.trace = &yes
		case "--script":
			v, err := value(&i, "--script")
			if err != nil {
				return o, err
			}
			o.script = v
		case "--config":
			v, err := value(&i, "--config")
			if err != nil {
				return o, err
			}
			o.configFile = v
		case "--replay":
			v, err := value(&i, "--replay")
			if err != nil {
				return o, err
			}
			o.replayFile = v
		case "--encounter":
			v, err := value(&i, "--encounter")
			if err != nil {
				return o, err
			}
			o.encounter = &v
		case "--seed":
			v, err := value(&i, "--seed")
			if err != nil {
				return o, err
			}
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return o, fmt.Errorf("--seed: %w", err)
			}
			o.seed = &n
		default:
			if strings.HasPrefix(args[i], "-") {
				return o, fmt.Errorf("unknown flag %q", args[i])
			}
			if o.contentDir != "" {
				return o, fmt.Errorf("unexpected argument %q", args[i])
			}
			o.contentDir = args[i]
		}
	}
	return o, nil
}

// apply overrides the file settings with flags that were given.
func (o options) apply(cfg config.Config) config.Config {
	if o.plain != nil {
		cfg.Plain = *o.plain
	}
	if o.trace != nil {
		cfg.Trace = *o.trace
	}
	if o.seed != nil {
		cfg.Seed = *o.seed
	}
	if o.encounter != nil {
		cfg.Encounter = *o.encounter
	}
	return cfg
}

func main() {
	opts, err := parseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n%s\n", err, usage)
		os.Exit(1)
	}
	if opts.version {
		fmt.Printf("fraycore %s (commit %s, built %s)\n", version, commit, date)
		return
	}
	if opts.contentDir == "" {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(1)
	}

	cfg, err := config.Load(opts.configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	cfg = opts.apply(cfg)

	logger, err := logging.New(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening log: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Load and compile Lua battle content.
	defs, err := loader.Load(opts.contentDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading content: %v\n", err)
		os.Exit(1)
	}
	logger.Info("content loaded",
		zap.String("dir", opts.contentDir),
		zap.String("title", defs.Game.Title),
		zap.Int("encounters", len(defs.Encounters)),
	)

	sess, err := newSession(opts, cfg, defs, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Script mode: open file, force plain, echo commands.
	if opts.script != "" {
		f, err := os.Open(opts.script)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening script: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		c := cli.New(sess)
		c.In = f
		c.EchoInput = true
		c.Trace = cfg.Trace
		c.SaveDir = cfg.SaveDir
		c.Run()
		return
	}

	// Use plain CLI if --plain or stdout is not a terminal.
	if cfg.Plain || !isTerminal() {
		c := cli.New(sess)
		c.Trace = cfg.Trace
		c.SaveDir = cfg.SaveDir
		c.Run()
		return
	}

	if err := tui.Run(sess, cfg.SaveDir, tui.WithTrace(cfg.Trace)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newSession starts a fresh battle, or resumes one from --replay.
func newSession(opts options, cfg config.Config, defs *state.Defs, logger *zap.Logger) (*session.Session, error) {
	if opts.replayFile != "" {
		tr, err := session.LoadTranscript(opts.replayFile)
		if err != nil {
			return nil, err
		}
		if tr.Game != defs.Game.Title || tr.GameVersion != defs.Game.Version {
			fmt.Fprintf(os.Stderr, "warning: transcript was recorded with %s %s\n", tr.Game, tr.GameVersion)
		}
		return session.Resume(defs, tr, logger)
	}

	encounter := cfg.Encounter
	if encounter == "" {
		encounter = session.DefaultEncounter(defs)
	}
	return session.New(defs, encounter, cfg.BattleSeed(time.Now), logger)
}

// isTerminal returns true if stdout is a terminal (not piped/redirected).
func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

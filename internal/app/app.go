package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"

	"github.com/kobzarvs/qline/internal/compiler"
	"github.com/kobzarvs/qline/internal/config"
	"github.com/kobzarvs/qline/internal/console"
	"github.com/kobzarvs/qline/internal/history"
	"github.com/kobzarvs/qline/internal/keys"
	"github.com/kobzarvs/qline/internal/logger"
	"github.com/kobzarvs/qline/internal/reader"
)

// Options are the command-line overrides. Empty fields leave the
// configuration alone.
type Options struct {
	ConfigPath string
	Debug      bool
	Language   string
	Prompt     string
	Term       string
}

// App is the top-level runtime for qline: it reads lines from the terminal
// until EOF and writes each accepted one to out.
type App struct {
	opts Options
	out  io.Writer
}

func New(opts Options, out io.Writer) *App {
	return &App{opts: opts, out: out}
}

// Readliner is the part of the reader the session loop drives.
type Readliner interface {
	Readline() (string, error)
	History() []string
}

func (a *App) Run(ctx context.Context) error {
	if err := logger.Init(a.opts.Debug); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	log := logger.With("session", uuid.NewString())
	log.Infow("session started", "pid", os.Getpid())

	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	langs, err := config.LoadLanguages()
	if err != nil {
		log.Warnw("load languages", "error", err)
		langs = config.DefaultLanguages()
	}
	cfg, lang := Resolve(cfg, langs, a.opts)

	caps, err := keys.LoadCapabilities(a.opts.Term, int(os.Stdin.Fd()))
	if err != nil {
		return fmt.Errorf("terminal capabilities: %w", err)
	}
	caps.Merge(cfg.Keys)
	trie, err := keys.Compile(caps.Table)
	if err != nil {
		return fmt.Errorf("compile key table: %w", err)
	}
	codec, err := keys.NewCodec(cfg.Reader.Encoding)
	if err != nil {
		return err
	}

	tty, err := console.OpenTty()
	if err != nil {
		return err
	}
	con := console.New(tty, keys.NewDecoder(trie, codec), caps)
	defer func() {
		if err := con.Close(); err != nil {
			log.Warnw("close console", "error", err)
		}
	}()

	rd, err := reader.New(con, cfg)
	if err != nil {
		return err
	}
	if lang != nil && lang.Grammar != "" {
		comp, err := compiler.New(lang.Grammar)
		if err != nil {
			return fmt.Errorf("language %s: %w", lang.Name, err)
		}
		defer comp.Close()
		rd.SetCompiler(comp)
	}

	store, err := history.NewStore(cfg.Reader.HistoryFile, cfg.Reader.HistorySize)
	if err != nil {
		return err
	}
	entries, err := store.Load()
	if err != nil {
		log.Warnw("load history", "path", store.Path(), "error", err)
	}
	rd.SetHistory(entries)

	log.Infow("reader ready",
		"term", caps.Term,
		"encoding", codec.Name(),
		"language", cfg.Reader.Language,
		"history", len(entries),
	)

	save := func(entries []string) {
		if err := store.Save(entries); err != nil {
			log.Warnw("save history", "path", store.Path(), "error", err)
		}
	}
	err = Serve(ctx, rd, a.out, save)
	log.Infow("session finished", "error", err)
	return err
}

func (a *App) loadConfig() (config.Config, error) {
	if a.opts.ConfigPath != "" {
		cfg, err := config.LoadFile(a.opts.ConfigPath)
		if err != nil {
			return cfg, fmt.Errorf("load config %s: %w", a.opts.ConfigPath, err)
		}
		return cfg, nil
	}
	cfg, err := config.Load()
	if err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// Resolve applies the command-line overrides to cfg and picks the language
// whose grammar decides when input is complete. Word characters from the
// config win over the language's own.
func Resolve(cfg config.Config, langs config.Languages, opts Options) (config.Config, *config.Language) {
	if opts.Language != "" {
		cfg.Reader.Language = opts.Language
	}
	if opts.Prompt != "" {
		cfg.Reader.Prompt = opts.Prompt
	}
	if cfg.Reader.Language == "" {
		return cfg, nil
	}
	lang := langs.Match(cfg.Reader.Language)
	if lang == nil {
		logger.Warn("unknown language, multi-line input disabled", "language", cfg.Reader.Language)
		return cfg, nil
	}
	if cfg.Reader.WordChars == "" {
		cfg.Reader.WordChars = lang.WordChars
	}
	return cfg, lang
}

// Serve reads lines until EOF or ctx is done, writing every accepted line to
// out. An interrupt abandons the current line only. History is saved on the
// way out.
func Serve(ctx context.Context, rl Readliner, out io.Writer, save func([]string)) error {
	defer func() {
		if save != nil {
			save(rl.History())
		}
	}()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		line, err := rl.Readline()
		switch {
		case err == nil:
			if _, err := fmt.Fprintln(out, line); err != nil {
				return fmt.Errorf("write line: %w", err)
			}
		case errors.Is(err, io.EOF):
			return nil
		case errors.Is(err, reader.ErrInterrupted):
			if _, err := fmt.Fprintln(out, "KeyboardInterrupt"); err != nil {
				return fmt.Errorf("write line: %w", err)
			}
		default:
			return err
		}
	}
}

package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"

	"github.com/bekirdag/jobtracker/internal/logger"
	"github.com/bekirdag/jobtracker/internal/settings"
	"github.com/bekirdag/jobtracker/internal/store"
	"github.com/bekirdag/jobtracker/internal/tableview"
	"github.com/bekirdag/jobtracker/internal/todo"
)

// cliOptions defines command line options. Environment variables, including
// those read from .env, fill in flags that are not given.
type cliOptions struct {
	DB        string `long:"db" env:"JOBTRACKER_DB" description:"settings database path (default <config dir>/jobtracker.db)"`
	Data      string `short:"d" long:"data" env:"JOBTRACKER_DATA" description:"applications JSON export to open"`
	Table     string `short:"t" long:"table" choice:"todo" choice:"applications" description:"table shown at start"`
	Theme     string `long:"theme" choice:"auto" choice:"dark" choice:"light" description:"row preview theme"`
	LogLevel  string `long:"log-level" env:"JOBTRACKER_LOG_LEVEL" default:"info" choice:"debug" choice:"info" choice:"warn" choice:"error" description:"log file level"`
	ConfigDir string `long:"config-dir" env:"JOBTRACKER_CONFIG_DIR" description:"directory for ui.yaml, the log and the database"`
}

const recentDataFiles = 5

func main() {
	_ = godotenv.Load()

	var opts cliOptions
	parser := flags.NewParser(&opts, flags.Default)
	parser.Usage = "[OPTIONS]"
	if _, err := parser.Parse(); err != nil {
		if flags.WroteHelp(err) {
			os.Exit(0)
		}
		os.Exit(2)
	}

	if err := run(opts); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(opts cliOptions) error {
	logger.Level.SetByName(opts.LogLevel)
	configDir := resolveConfigDir(opts.ConfigDir)
	log, closer := logger.OpenFile(filepath.Join(configDir, "jobtracker.log"))
	defer closer.Close()

	cfg, cfgPath := loadUIConfig(configDir)
	if opts.Theme != "" {
		cfg.Theme = opts.Theme
	}

	deps := modelDeps{
		log:      log,
		cfg:      cfg,
		cfgPath:  cfgPath,
		activity: newActivityLog(filepath.Join(configDir, "activity.jsonl")),
	}

	dbPath := strings.TrimSpace(opts.DB)
	if dbPath == "" {
		dbPath = filepath.Join(configDir, "jobtracker.db")
	}
	st, err := store.Open(dbPath, log)
	if err != nil {
		log.Error("open store failed, settings stay in memory", "path", dbPath, "err", err)
		st = nil
		deps.writer = settings.NewMemory(nil)
		deps.prefs = tableview.NewMemoryStore()
	} else {
		defer st.Close()
		deps.writer = st
		deps.prefs = st.ViewPrefs()
		deps.views = st
	}

	book, err := openBook(opts.Data, cfg, st, log)
	if err != nil {
		return err
	}
	deps.book = book

	deps.startWith = todo.TodoTable
	switch {
	case opts.Table != "":
		deps.startWith = opts.Table
	case cfg.LastTable != "":
		deps.startWith = cfg.LastTable
	}

	m, err := newModel(deps)
	if err != nil {
		return err
	}
	log.Info("starting", "data", book.Path(), "db", dbPath)
	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion()).Run()
	return err
}

// openBook loads the export named on the command line, else the last or a
// recently opened one. Without any, an empty book is returned.
func openBook(path string, cfg *uiConfig, st *store.Store, log *slog.Logger) (*todo.Book, error) {
	if path = strings.TrimSpace(path); path != "" {
		book, err := todo.Load(path)
		if err != nil {
			return nil, err
		}
		if err := st.RememberDataFile(path); err != nil {
			log.Warn("remember data file failed", "path", path, "err", err)
		}
		return book, nil
	}

	var candidates []string
	if cfg != nil && cfg.LastData != "" {
		candidates = append(candidates, cfg.LastData)
	}
	recent, err := st.RecentDataFiles(recentDataFiles)
	if err != nil {
		log.Warn("list recent data files failed", "err", err)
	}
	candidates = append(candidates, recent...)

	for _, candidate := range candidates {
		book, err := todo.Load(candidate)
		if err != nil {
			log.Warn("skip data file", "path", candidate, "err", err)
			if errors.Is(err, os.ErrNotExist) {
				_ = st.ForgetDataFile(candidate)
			}
			continue
		}
		_ = st.RememberDataFile(candidate)
		return book, nil
	}
	return todo.Parse(nil)
}

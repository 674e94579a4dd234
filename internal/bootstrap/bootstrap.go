package bootstrap

import (
	"errors"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	hclog "github.com/hashicorp/go-hclog"

	hookinadapter "readtrack/internal/modules/hook/adapter/in"
	hookoutadapter "readtrack/internal/modules/hook/adapter/out"
	hookservice "readtrack/internal/modules/hook/service"
	hookusecase "readtrack/internal/modules/hook/usecase"
	libraryinadapter "readtrack/internal/modules/library/adapter/in"
	libraryoutadapter "readtrack/internal/modules/library/adapter/out"
	libraryservice "readtrack/internal/modules/library/service"
	libraryusecase "readtrack/internal/modules/library/usecase"
	sessioninadapter "readtrack/internal/modules/session/adapter/in"
	sessionoutadapter "readtrack/internal/modules/session/adapter/out"
	sessionservice "readtrack/internal/modules/session/service"
	sessionusecase "readtrack/internal/modules/session/usecase"
	timerinadapter "readtrack/internal/modules/timer/adapter/in"
	timeroutadapter "readtrack/internal/modules/timer/adapter/out"
	timerout "readtrack/internal/modules/timer/port/out"
	timerservice "readtrack/internal/modules/timer/service"
	timerusecase "readtrack/internal/modules/timer/usecase"
	"readtrack/internal/platform/clock"
	"readtrack/internal/platform/config"
	"readtrack/internal/platform/id"
	"readtrack/internal/platform/logging"
	uiapp "readtrack/internal/ui/app"
)

type App struct {
	LibraryCLI libraryinadapter.CLIHandler
	SessionCLI sessioninadapter.CLIHandler
	TimerCLI   timerinadapter.CLIHandler
	HookCLI    hookinadapter.CLIHandler
	Logger     hclog.Logger
	Config     config.Config

	closers []io.Closer
}

func New(cfg config.Config) (*App, error) {
	logger, logFile, err := logging.New(cfg.LogPath, cfg.Settings.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("new logger: %w", err)
	}
	app := &App{Logger: logger, Config: cfg, closers: []io.Closer{logFile}}

	clk := clock.SystemClock{}
	ids := id.UUID{}

	bookProjector, err := libraryoutadapter.NewSQLiteBookProjector(cfg.DBPath)
	if err != nil {
		_ = app.Close()
		return nil, fmt.Errorf("new book projector: %w", err)
	}
	if c, ok := bookProjector.(io.Closer); ok {
		app.closers = append(app.closers, c)
	}
	librarySvc := libraryservice.NewBookService(clk, ids,
		libraryoutadapter.NewVaultBookStore(cfg.VaultPath),
		bookProjector,
		libraryoutadapter.NewPDFPageCounter(),
	)
	libraryUC := libraryusecase.NewInteractor(librarySvc)

	sessionIndex, err := sessionoutadapter.NewSQLiteSessionIndex(cfg.DBPath)
	if err != nil {
		_ = app.Close()
		return nil, fmt.Errorf("new session index: %w", err)
	}
	if c, ok := sessionIndex.(io.Closer); ok {
		app.closers = append(app.closers, c)
	}
	sessionUC := sessionusecase.NewInteractor(
		sessionservice.NewSessionService(clk, ids, sessionoutadapter.NewVaultSessionStore(cfg.VaultPath), sessionIndex),
		libraryUC,
		sessionoutadapter.NewFileActiveSessionStore(cfg.DataDir),
	)

	hookSvc := hookservice.NewHookService(
		hookoutadapter.NewFileManifestStore(cfg.VaultPath),
		hookoutadapter.NewGRPCHost(logger.Named("hook-host")),
		clk,
		logger.Named("hooks"),
	)
	hookUC := hookusecase.NewInteractor(hookSvc, cfg.Settings.HooksEnabled)

	var chime timerout.Chime = timeroutadapter.NopChime{}
	if cfg.Settings.Chime {
		chime = timeroutadapter.NewSpeakerChime()
	}
	lifecycle := timerservice.NewLifecycleService(
		timeroutadapter.NewSessionGateway(sessionUC),
		timeroutadapter.NewHookDispatcher(hookUC, cfg.VaultPath),
		chime,
		clk,
		logger.Named("timer"),
	)
	timerUC := timerusecase.NewInteractor(lifecycle, clk, timerservice.RunnerOptions{
		TickInterval: cfg.Settings.TickInterval,
		NewTicker:    clock.NewSystemTicker,
		Logger:       logger.Named("runner"),
	})

	app.LibraryCLI = libraryinadapter.NewCLIHandler(libraryUC)
	app.SessionCLI = sessioninadapter.NewCLIHandler(sessionUC)
	app.TimerCLI = timerinadapter.NewCLIHandler(timerUC)
	app.HookCLI = hookinadapter.NewCLIHandler(hookUC, cfg.VaultPath)
	return app, nil
}

// Close releases the index databases and the log file, newest first.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func RunTUI(app *App) error {
	model := uiapp.NewModel(app.LibraryCLI, app.TimerCLI, app.HookCLI, uiapp.Options{
		Clock:                 clock.SystemClock{},
		DefaultReadingMinutes: app.Config.Settings.DefaultReadingMinutes,
		TickInterval:          app.Config.Settings.TickInterval,
	})
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err := program.Run()
	return err
}

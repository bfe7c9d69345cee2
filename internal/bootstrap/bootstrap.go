package bootstrap

import (
	"fmt"

	activityinadapter "tally/internal/modules/activity/adapter/in"
	activityoutadapter "tally/internal/modules/activity/adapter/out"
	activityservice "tally/internal/modules/activity/service"
	activityusecase "tally/internal/modules/activity/usecase"
	backupinadapter "tally/internal/modules/backup/adapter/in"
	backupservice "tally/internal/modules/backup/service"
	backupusecase "tally/internal/modules/backup/usecase"
	mirrorinadapter "tally/internal/modules/mirror/adapter/in"
	mirroroutadapter "tally/internal/modules/mirror/adapter/out"
	mirrorin "tally/internal/modules/mirror/port/in"
	mirrorservice "tally/internal/modules/mirror/service"
	mirrorusecase "tally/internal/modules/mirror/usecase"
	timerinadapter "tally/internal/modules/timer/adapter/in"
	timeroutadapter "tally/internal/modules/timer/adapter/out"
	timerin "tally/internal/modules/timer/port/in"
	timerservice "tally/internal/modules/timer/service"
	timerusecase "tally/internal/modules/timer/usecase"
	"tally/internal/platform/clock"
	"tally/internal/platform/config"
	"tally/internal/platform/id"
	uiapp "tally/internal/ui/app"

	tea "github.com/charmbracelet/bubbletea"
)

type App struct {
	ActivityCLI activityinadapter.CLIHandler
	TimerCLI    timerinadapter.CLIHandler
	MirrorCLI   mirrorinadapter.CLIHandler
	BackupCLI   backupinadapter.CLIHandler

	Timer  timerin.Usecase
	Mirror mirrorin.Usecase
}

func New(cfg config.Config) (*App, error) {
	clk := clock.SystemClock{}
	ids := id.UUID{}

	activityStore := activityoutadapter.NewFileActivityStore(cfg.DataDir, clk, ids)
	activityProjector, err := activityoutadapter.NewSQLiteActivityProjector(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("new activity projector: %w", err)
	}
	sessionStore := timeroutadapter.NewFileSessionStore(cfg.DataDir)
	activeStore := timeroutadapter.NewFileCurrentSessionStore(cfg.DataDir)
	sessionProjector, err := timeroutadapter.NewSQLiteSessionProjector(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("new session projector: %w", err)
	}

	mirrorUC := mirrorusecase.NewInteractor(mirrorservice.NewMirrorService(
		clk,
		mirroroutadapter.NewHTTPDocumentClient(
			cfg.Settings.Mirror.Endpoint,
			mirroroutadapter.NewOAuthCredentialSource(cfg.Settings.Mirror.CredentialsFile),
		),
		mirroroutadapter.NewFileHandleStore(cfg.DataDir),
		mirroroutadapter.NewStoreLocalSource(activityStore, sessionStore),
		cfg.Settings.Mirror.DocumentTitle,
	))

	timerSvc := timerservice.NewTimerService(clk, ids, sessionStore, activeStore, sessionProjector)
	activityUC := activityusecase.NewInteractor(
		activityservice.NewActivityService(clk, ids, activityStore, activityProjector),
		timerSvc,
		mirrorUC,
	)
	timerUC := timerusecase.NewInteractor(timerSvc, activityUC, activeStore, clk, mirrorUC)
	backupUC := backupusecase.NewInteractor(
		backupservice.NewBackupService(clk, activityStore, activityProjector, sessionStore, sessionProjector, activeStore),
		mirrorUC,
	)

	return &App{
		ActivityCLI: activityinadapter.NewCLIHandler(activityUC),
		TimerCLI:    timerinadapter.NewCLIHandler(timerUC),
		MirrorCLI:   mirrorinadapter.NewCLIHandler(mirrorUC),
		BackupCLI:   backupinadapter.NewCLIHandler(backupUC),
		Timer:       timerUC,
		Mirror:      mirrorUC,
	}, nil
}

// Drain blocks until in-flight mirror syncs settle; commands call it
// before the process exits so fire-and-forget work is not torn down.
func (a *App) Drain() {
	a.Mirror.Wait()
}

func RunTUI(app *App) error {
	model := uiapp.NewModel(app.ActivityCLI, app.TimerCLI, app.MirrorCLI)
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err := program.Run()
	return err
}

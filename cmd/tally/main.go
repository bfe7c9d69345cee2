package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"tally/internal/bootstrap"
	activitydto "tally/internal/modules/activity/dto"
	"tally/internal/platform/config"
	apperrors "tally/internal/platform/errors"
	"tally/internal/platform/timeutil"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var dataPath string

	root := &cobra.Command{
		Use:           "tally",
		Short:         "Track time against named activities",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&dataPath, "data", "", "data directory (default $HOME/.tally)")

	root.AddCommand(newStartCmd(&dataPath))
	root.AddCommand(newStopCmd(&dataPath))
	root.AddCommand(newStatusCmd(&dataPath))
	root.AddCommand(newActivityCmd(&dataPath))
	root.AddCommand(newSessionsCmd(&dataPath))
	root.AddCommand(newStatsCmd(&dataPath))
	root.AddCommand(newExportCmd(&dataPath))
	root.AddCommand(newImportCmd(&dataPath))
	root.AddCommand(newClearCmd(&dataPath))
	root.AddCommand(newMirrorCmd(&dataPath))
	root.AddCommand(newTUICmd(&dataPath))
	return root
}

func loadApp(dataPath string) (*bootstrap.App, error) {
	cfg, err := config.New(dataPath)
	if err != nil {
		return nil, err
	}
	return bootstrap.New(cfg)
}

// resolveActivity accepts an activity id or a (case-insensitive) name.
func resolveActivity(ctx context.Context, app *bootstrap.App, ref string) (activitydto.ActivityOutput, error) {
	activities, err := app.ActivityCLI.List(ctx)
	if err != nil {
		return activitydto.ActivityOutput{}, err
	}
	for _, activity := range activities {
		if activity.ID == ref {
			return activity, nil
		}
	}
	key := strings.ToLower(strings.TrimSpace(ref))
	for _, activity := range activities {
		if strings.ToLower(activity.Name) == key {
			return activity, nil
		}
	}
	return activitydto.ActivityOutput{}, fmt.Errorf("%w: activity %q", apperrors.ErrNotFound, ref)
}

func newStartCmd(dataPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start <activity>",
		Short: "Start the timer for an activity (by name or id)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(*dataPath)
			if err != nil {
				return err
			}
			defer app.Drain()
			activity, err := resolveActivity(cmd.Context(), app, args[0])
			if err != nil {
				return err
			}
			out, err := app.TimerCLI.Start(cmd.Context(), activity.ID)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "started %s at %s\n", out.ActivityName, timeutil.FormatStamp(out.StartedAt))
			return nil
		},
	}
}

func newStopCmd(dataPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the running timer",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*dataPath)
			if err != nil {
				return err
			}
			defer app.Drain()
			session, err := app.TimerCLI.Stop(cmd.Context())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "stopped %s after %s (+%dm)\n",
				session.ActivityName, timeutil.FormatElapsed(session.Duration), session.Minutes)
			return nil
		},
	}
}

func newStatusCmd(dataPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the running timer and mirror state",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*dataPath)
			if err != nil {
				return err
			}
			active, err := app.TimerCLI.GetActive(cmd.Context())
			switch {
			case errors.Is(err, apperrors.ErrTimerIdle):
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "idle")
			case err != nil:
				return err
			default:
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "tracking %s for %s (since %s)\n",
					active.ActivityName, timeutil.FormatElapsed(active.Elapsed), timeutil.FormatStamp(active.StartedAt))
			}
			mirror, err := app.MirrorCLI.Status(cmd.Context())
			if err != nil {
				return err
			}
			line := "mirror: " + mirror.Status
			if mirror.DocumentID != "" {
				line += " (document " + mirror.DocumentID + ")"
			}
			if mirror.LastError != "" {
				line += " last error: " + mirror.LastError
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), line)
			return nil
		},
	}
}

func newActivityCmd(dataPath *string) *cobra.Command {
	activity := &cobra.Command{Use: "activity", Short: "Manage activities"}

	var color string
	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a new activity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(*dataPath)
			if err != nil {
				return err
			}
			defer app.Drain()
			out, err := app.ActivityCLI.Create(cmd.Context(), args[0], color)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "added %s (%s) %s\n", out.Name, out.ID, out.Color)
			return nil
		},
	}
	add.Flags().StringVar(&color, "color", "", "swatch color, e.g. #4ECDC4")

	list := &cobra.Command{
		Use:   "list",
		Short: "List activities with totals",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*dataPath)
			if err != nil {
				return err
			}
			activities, err := app.ActivityCLI.List(cmd.Context())
			if err != nil {
				return err
			}
			for _, a := range activities {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\n", a.ID, a.Name, a.Color, timeutil.FormatMinutes(a.TotalMinutes))
			}
			return nil
		},
	}

	remove := &cobra.Command{
		Use:   "rm <activity>",
		Short: "Delete an activity and its sessions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(*dataPath)
			if err != nil {
				return err
			}
			defer app.Drain()
			activity, err := resolveActivity(cmd.Context(), app, args[0])
			if err != nil {
				return err
			}
			out, err := app.ActivityCLI.Delete(cmd.Context(), activity.ID)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "deleted %s and %d sessions\n", out.Name, out.RemovedSessions)
			return nil
		},
	}

	activity.AddCommand(add, list, remove)
	return activity
}

func newSessionsCmd(dataPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "sessions",
		Short: "List the session log",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*dataPath)
			if err != nil {
				return err
			}
			sessions, err := app.TimerCLI.ListSessions(cmd.Context())
			if err != nil {
				return err
			}
			if len(sessions) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no sessions")
				return nil
			}
			for _, s := range sessions {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%dm\n",
					timeutil.FormatDay(s.StartedAt), s.ActivityName, timeutil.FormatElapsed(s.Duration), s.Minutes)
			}
			return nil
		},
	}
}

func newStatsCmd(dataPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Per-activity session counts and minute totals",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*dataPath)
			if err != nil {
				return err
			}
			stats, err := app.TimerCLI.Stats(cmd.Context())
			if err != nil {
				return err
			}
			if len(stats) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no completed sessions")
				return nil
			}
			for _, stat := range stats {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d sessions\t%s\n",
					stat.ActivityName, stat.Sessions, timeutil.FormatMinutes(stat.Minutes))
			}
			return nil
		},
	}
}

func newExportCmd(dataPath *string) *cobra.Command {
	var out string
	export := &cobra.Command{
		Use:   "export",
		Short: "Export activities and sessions to a snapshot file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*dataPath)
			if err != nil {
				return err
			}
			snapshot, err := app.BackupCLI.Export(cmd.Context(), out)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "exported %d activities and %d sessions to %s\n",
				snapshot.Activities, snapshot.Sessions, snapshot.Path)
			return nil
		},
	}
	export.Flags().StringVar(&out, "out", "tally-export.json", "output file")
	return export
}

func newImportCmd(dataPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace local data with a snapshot file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(*dataPath)
			if err != nil {
				return err
			}
			defer app.Drain()
			snapshot, err := app.BackupCLI.Import(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "imported %d activities and %d sessions\n",
				snapshot.Activities, snapshot.Sessions)
			return nil
		},
	}
}

func newClearCmd(dataPath *string) *cobra.Command {
	var yes bool
	clear := &cobra.Command{
		Use:   "clear",
		Short: "Delete all local data",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return fmt.Errorf("refusing to clear without --yes")
			}
			app, err := loadApp(*dataPath)
			if err != nil {
				return err
			}
			defer app.Drain()
			if err := app.BackupCLI.Clear(cmd.Context()); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "cleared")
			return nil
		},
	}
	clear.Flags().BoolVar(&yes, "yes", false, "confirm deletion")
	return clear
}

func newMirrorCmd(dataPath *string) *cobra.Command {
	mirror := &cobra.Command{Use: "mirror", Short: "Manage the external spreadsheet mirror"}

	mirror.AddCommand(&cobra.Command{
		Use:   "connect",
		Short: "Connect and resync the mirror document",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*dataPath)
			if err != nil {
				return err
			}
			status, err := app.MirrorCLI.Connect(cmd.Context())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "connected to document %s (%s)\n", status.DocumentID, status.Status)
			return nil
		},
	})

	mirror.AddCommand(&cobra.Command{
		Use:   "disconnect",
		Short: "Forget the mirror document (the document itself is kept)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*dataPath)
			if err != nil {
				return err
			}
			if err := app.MirrorCLI.Disconnect(cmd.Context()); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "disconnected")
			return nil
		},
	})

	mirror.AddCommand(&cobra.Command{
		Use:   "sync",
		Short: "Run a full resync now",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*dataPath)
			if err != nil {
				return err
			}
			if err := app.MirrorCLI.SyncNow(cmd.Context()); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "synced")
			return nil
		},
	})

	mirror.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show mirror connectivity",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*dataPath)
			if err != nil {
				return err
			}
			status, err := app.MirrorCLI.Status(cmd.Context())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "status: %s\n", status.Status)
			if status.DocumentID != "" {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "document: %s\n", status.DocumentID)
			}
			if !status.LastSync.IsZero() {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "last sync: %s\n", timeutil.FormatStamp(status.LastSync))
			}
			if status.LastError != "" {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "last error: %s\n", status.LastError)
			}
			return nil
		},
	})

	return mirror
}

func newTUICmd(dataPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run the tally dashboard",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*dataPath)
			if err != nil {
				return err
			}
			defer app.Drain()
			if err := app.Timer.Resume(cmd.Context()); err != nil {
				return err
			}
			return bootstrap.RunTUI(app)
		},
	}
}

package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"readtrack/internal/bootstrap"
	libdto "readtrack/internal/modules/library/dto"
	"readtrack/internal/modules/timer/domain"
	timerdto "readtrack/internal/modules/timer/dto"
	"readtrack/internal/platform/config"
)

const timestampLayout = "2006-01-02T15:04:05Z07:00"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var vaultPath string

	root := &cobra.Command{
		Use:           "readtrack",
		Short:         "Reading timer and book tracker",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&vaultPath, "vault", ".", "Obsidian vault path")

	root.AddCommand(newTUICmd(&vaultPath))
	root.AddCommand(newBookCmd(&vaultPath))
	root.AddCommand(newSessionCmd(&vaultPath))
	root.AddCommand(newTimerCmd(&vaultPath))
	root.AddCommand(newHookCmd(&vaultPath))
	root.AddCommand(newReindexCmd(&vaultPath))
	root.AddCommand(newConfigCmd(&vaultPath))
	return root
}

// withApp builds the application for vaultPath, runs fn and releases it.
func withApp(vaultPath string, fn func(*bootstrap.App) error) error {
	cfg, err := config.New(vaultPath)
	if err != nil {
		return err
	}
	app, err := bootstrap.New(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = app.Close() }()
	return fn(app)
}

func newTUICmd(vaultPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run the readtrack terminal UI",
		RunE: func(_ *cobra.Command, _ []string) error {
			return withApp(*vaultPath, bootstrap.RunTUI)
		},
	}
}

func newBookCmd(vaultPath *string) *cobra.Command {
	book := &cobra.Command{Use: "book", Short: "Book library commands"}

	var title, filePath string
	var authors []string
	var pagesTotal, pagesRead int
	add := &cobra.Command{
		Use:   "add --title <name>",
		Short: "Add a book to the library",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(title) == "" {
				return fmt.Errorf("--title is required")
			}
			return withApp(*vaultPath, func(app *bootstrap.App) error {
				out, err := app.LibraryCLI.AddBook(cmd.Context(), title, filePath, authors, pagesTotal, pagesRead)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "book added: %s title=%q pages=%d/%d note=%s\n", out.ID, out.Title, out.PagesRead, out.PagesTotal, out.NotePath)
				return nil
			})
		},
	}
	add.Flags().StringVar(&title, "title", "", "book name")
	add.Flags().StringVar(&filePath, "file", "", "optional PDF or markdown file (PDF page count fills --pages)")
	add.Flags().StringSliceVar(&authors, "authors", nil, "comma-separated authors")
	add.Flags().IntVar(&pagesTotal, "pages", 0, "total number of pages")
	add.Flags().IntVar(&pagesRead, "read", 0, "number of pages already read")

	book.AddCommand(add, &cobra.Command{
		Use:   "list",
		Short: "List books",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(*vaultPath, func(app *bootstrap.App) error {
				books, err := app.LibraryCLI.ListBooks(cmd.Context())
				if err != nil {
					return err
				}
				if len(books) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no books")
					return nil
				}
				for _, b := range books {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%d/%d\t%.1f%%\n", b.ID, b.Status, b.Title, b.PagesRead, b.PagesTotal, b.Percent)
				}
				return nil
			})
		},
	})

	var showID string
	show := &cobra.Command{
		Use:   "show --id <id>",
		Short: "Show book details",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(showID) == "" {
				return fmt.Errorf("--id is required")
			}
			return withApp(*vaultPath, func(app *bootstrap.App) error {
				b, err := app.LibraryCLI.GetBook(cmd.Context(), showID)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "id: %s\ntitle: %s\nauthors: %s\nstatus: %s\npages: %d/%d (%.1f%%)\nfile: %s\nnote: %s\nlast session: %s\n",
					b.ID, b.Title, strings.Join(b.Authors, ", "), b.Status, b.PagesRead, b.PagesTotal, b.Percent, b.FilePath, b.NotePath, b.LastSessionID)
				return nil
			})
		},
	}
	show.Flags().StringVar(&showID, "id", "", "book id")

	var progressID string
	var readPages, addPages int
	progress := &cobra.Command{
		Use:   "progress --id <id> (--read <pages> | --add <pages>)",
		Short: "Record reading progress",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(progressID) == "" {
				return fmt.Errorf("--id is required")
			}
			setChanged := cmd.Flags().Changed("read")
			if setChanged == cmd.Flags().Changed("add") {
				return fmt.Errorf("exactly one of --read or --add is required")
			}
			return withApp(*vaultPath, func(app *bootstrap.App) error {
				var out libdto.BookOutput
				var err error
				if setChanged {
					out, err = app.LibraryCLI.SetPagesRead(cmd.Context(), progressID, readPages)
				} else {
					out, err = app.LibraryCLI.AddPages(cmd.Context(), progressID, addPages)
				}
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "progress saved: %s pages=%d/%d status=%s\n", out.Title, out.PagesRead, out.PagesTotal, out.Status)
				return nil
			})
		},
	}
	progress.Flags().StringVar(&progressID, "id", "", "book id")
	progress.Flags().IntVar(&readPages, "read", 0, "pages read so far")
	progress.Flags().IntVar(&addPages, "add", 0, "pages read since the last update")

	book.AddCommand(show, progress)
	return book
}

func newSessionCmd(vaultPath *string) *cobra.Command {
	session := &cobra.Command{Use: "session", Short: "Reading session records"}

	session.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the active reading session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(*vaultPath, func(app *bootstrap.App) error {
				out, err := app.TimerCLI.Resume(cmd.Context())
				if err != nil {
					return err
				}
				switch {
				case out.Active:
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "reading: %s book=%s until=%s\n", out.SessionID, out.BookTitle, out.EndTime.Local().Format(timestampLayout))
				case out.Expired:
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "session %s for %s expired while away; saved\n", out.SessionID, out.BookTitle)
				default:
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no active session")
				}
				return nil
			})
		},
	})

	var limit int
	history := &cobra.Command{
		Use:   "history",
		Short: "List recent sessions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(*vaultPath, func(app *bootstrap.App) error {
				sessions, err := app.SessionCLI.History(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if len(sessions) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no sessions")
					return nil
				}
				for _, s := range sessions {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\t%ds\t%d pages\n", s.ID, s.StartedAt.Local().Format(timestampLayout), s.BookTitle, s.Reason, s.DurationSec, s.PagesRead)
				}
				return nil
			})
		},
	}
	history.Flags().IntVar(&limit, "limit", 20, "maximum sessions to list")

	var pages int
	var reason string
	end := &cobra.Command{
		Use:   "end [--reason stopped] [--pages <n>]",
		Short: "Stop the active session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(*vaultPath, func(app *bootstrap.App) error {
				out, err := app.TimerCLI.Finish(cmd.Context(), reason, pages)
				if err != nil {
					return err
				}
				printFinish(cmd, out)
				return nil
			})
		},
	}
	end.Flags().StringVar(&reason, "reason", string(domain.EndReasonStopped), "end reason: stopped|expired")
	end.Flags().IntVar(&pages, "pages", 0, "pages read during the session")

	session.AddCommand(history, end)
	return session
}

func newTimerCmd(vaultPath *string) *cobra.Command {
	timer := &cobra.Command{Use: "timer", Short: "Reading timer"}

	var bookID, until string
	var forDuration string
	run := &cobra.Command{
		Use:   "run --book-id <id> (--until HH:MM | --for 25m)",
		Short: "Read until a time, counting down in the terminal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(bookID) == "" {
				return fmt.Errorf("--book-id is required")
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return withApp(*vaultPath, func(app *bootstrap.App) error {
				endTime, err := resolveEndTime(time.Now(), until, forDuration, app.Config.Settings.DefaultReadingMinutes)
				if err != nil {
					return err
				}
				out, err := app.TimerCLI.Run(ctx, bookID, endTime, func(tick timerdto.TickOutput) {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "\r%s  %s\033[K", tick.Clock, tick.Display)
				})
				_, _ = fmt.Fprintln(cmd.OutOrStdout())
				if err != nil {
					return err
				}
				if out.Reason == string(domain.EndReasonExpired) {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Time's up!")
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "session %s: %s reason=%s duration=%ds note=%s\n", out.SessionID, out.BookTitle, out.Reason, out.DurationSec, out.NotePath)
				return nil
			})
		},
	}
	run.Flags().StringVar(&bookID, "book-id", "", "book id")
	run.Flags().StringVar(&until, "until", "", "end time of day (HH:MM)")
	run.Flags().StringVar(&forDuration, "for", "", "reading duration (e.g. 25m)")

	timer.AddCommand(run)
	return timer
}

// resolveEndTime picks the end of the reading window from the flags. With
// neither flag set the window is the configured default.
func resolveEndTime(now time.Time, until, forDuration string, defaultMinutes int) (time.Time, error) {
	switch {
	case until != "" && forDuration != "":
		return time.Time{}, errors.New("use only one of --until or --for")
	case until != "":
		return domain.AtClockTime(now, until)
	case forDuration != "":
		return domain.AfterDuration(now, forDuration)
	default:
		return domain.DefaultEndTime(now, defaultMinutes), nil
	}
}

func newHookCmd(vaultPath *string) *cobra.Command {
	hook := &cobra.Command{Use: "hook", Short: "Reading lifecycle hooks"}
	hook.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List hook manifests",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(*vaultPath, func(app *bootstrap.App) error {
				hooks, err := app.HookCLI.List(cmd.Context())
				if err != nil {
					return err
				}
				if len(hooks) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no hooks configured")
					return nil
				}
				for _, h := range hooks {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s@%s enabled=%t events=%s binary=%s\n", h.Name, h.Version, h.Enabled, strings.Join(h.Events, ","), h.Binary)
				}
				return nil
			})
		},
	})

	hook.AddCommand(&cobra.Command{
		Use:   "doctor",
		Short: "Validate hook checksums and lifecycle",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(*vaultPath, func(app *bootstrap.App) error {
				results, err := app.HookCLI.Doctor(cmd.Context())
				if err != nil {
					return err
				}
				if len(results) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no hooks configured")
					return nil
				}
				for _, r := range results {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s checksum=%t reachable=%t lifecycle=%t", r.Name, r.ChecksumValid, r.BinaryReachable, r.LifecycleOK)
					if r.Error != "" {
						_, _ = fmt.Fprintf(cmd.OutOrStdout(), " error=%s", r.Error)
					}
					_, _ = fmt.Fprintln(cmd.OutOrStdout())
				}
				return nil
			})
		},
	})

	var event, reason string
	fire := &cobra.Command{
		Use:   "fire --event <read_start|read_end>",
		Short: "Send a test event to subscribed hooks",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(event) == "" {
				return fmt.Errorf("--event is required")
			}
			return withApp(*vaultPath, func(app *bootstrap.App) error {
				out, err := app.HookCLI.Fire(cmd.Context(), event, reason)
				for _, msg := range out.Messages {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), msg)
				}
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s delivered to %d hook(s)\n", out.Event, len(out.Notified))
				return nil
			})
		},
	}
	fire.Flags().StringVar(&event, "event", "", "event name")
	fire.Flags().StringVar(&reason, "reason", "", "end reason for read_end")

	hook.AddCommand(fire)
	return hook
}

func newReindexCmd(vaultPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild SQLite projections from vault markdown",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(*vaultPath, func(app *bootstrap.App) error {
				if err := app.LibraryCLI.Reindex(cmd.Context()); err != nil {
					return err
				}
				if err := app.SessionCLI.Reindex(cmd.Context()); err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "reindex completed")
				return nil
			})
		},
	}
}

func newConfigCmd(vaultPath *string) *cobra.Command {
	cfgCmd := &cobra.Command{Use: "config", Short: "Settings file"}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default settings file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.New(*vaultPath)
			if err != nil {
				return err
			}
			path := cfg.SettingsPath()
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := config.SaveSettings(path, config.DefaultSettings()); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "settings written: %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing settings file")

	cfgCmd.AddCommand(initCmd)
	return cfgCmd
}

func printFinish(cmd *cobra.Command, out timerdto.FinishOutput) {
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "session ended: %s book=%s reason=%s duration=%ds pages=%d note=%s\n",
		out.SessionID, out.BookID, out.Reason, out.DurationSec, out.PagesAfter, out.NotePath)
	for _, msg := range out.HookMessages {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "  hook:", msg)
	}
}

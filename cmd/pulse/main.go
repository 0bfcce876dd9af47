package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"strconv"
	"syscall"

	"github.com/NathanEdg/pulse/internal/calendar"
	"github.com/NathanEdg/pulse/internal/claude"
	"github.com/NathanEdg/pulse/internal/config"
	"github.com/NathanEdg/pulse/internal/errors"
	"github.com/NathanEdg/pulse/internal/logging"
	"github.com/NathanEdg/pulse/internal/render"
	"github.com/NathanEdg/pulse/internal/replay"
	"github.com/NathanEdg/pulse/internal/report"
	"github.com/NathanEdg/pulse/internal/schedule"
	"github.com/NathanEdg/pulse/internal/store"
	"github.com/NathanEdg/pulse/internal/task"
	"github.com/NathanEdg/pulse/internal/timeline"
	"github.com/NathanEdg/pulse/internal/tui"
	"github.com/NathanEdg/pulse/internal/ui"
	"github.com/NathanEdg/pulse/internal/viewer"
	"github.com/NathanEdg/pulse/internal/viewport"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

var (
	flagConfig  string
	flagFile    string
	flagJSON    bool
	flagFilter  string
	flagVerbose bool
	flagDryRun  bool
	flagFormat  string
	flagOutput  string

	cfg    *config.Config
	logger = logging.NopLogger()
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "pulse",
		Short: "Interactive timeline scheduling for dated tasks",
		Long: `Pulse loads a task document (JSON, YAML or SQLite), keeps dependent
tasks in order when dates change, and lets you drag, resize and link tasks
from the terminal, a browser or a gesture script.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup()
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (default ~/.config/pulse/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&flagFile, "file", "f", "", "Task document (.json, .yaml, .yml or .db)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Machine-readable JSON output")
	rootCmd.PersistentFlags().StringVar(&flagFilter, "filter", "", "Filter tasks (id=GLOB, title=GLOB, status=X, priority=X, assignee=X)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Log at the configured level instead of warnings only")

	rootCmd.AddCommand(scheduleCmd())
	rootCmd.AddCommand(vizCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(importCmd())
	rootCmd.AddCommand(moveCmd())
	rootCmd.AddCommand(linkCmd())
	rootCmd.AddCommand(unlinkCmd())
	rootCmd.AddCommand(replayCmd())
	rootCmd.AddCommand(tuiCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(inferDepsCmd())

	err := rootCmd.Execute()
	logger.Close()
	if err != nil {
		os.Exit(1)
	}
}

// setup loads configuration and the logger shared by every command.
func setup() error {
	v := viper.New()
	if err := config.Init(v, flagConfig); err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	c, err := config.Load(v)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	cfg = c

	level := cfg.Logging.Level
	if cfg.Logging.Dir == "" && !flagVerbose {
		level = logging.LevelWarn
	}
	l, err := logging.NewLogger(cfg.Logging.Dir, level)
	if err != nil {
		return err
	}
	logger = l
	return nil
}

// --- Document access ---

// docStore is an opened task document and the notifier that writes
// timeline changes back to it.
type docStore struct {
	path     string
	doc      *store.Document
	notifier timeline.Notifier
	file     *store.FileStore   // set for JSON/YAML documents
	db       *store.SQLiteStore // set for SQLite databases
	pending  *timeline.Recorder // dry-run writes that were not saved
}

func documentPath() string {
	if flagFile != "" {
		return flagFile
	}
	return cfg.Store.Path
}

func openStore() (*docStore, error) {
	path := documentPath()
	ds := &docStore{path: path}

	switch cfg.StoreDriver(path) {
	case "sqlite":
		db, err := store.OpenSQLite(path, logger)
		if err != nil {
			return nil, err
		}
		doc, err := db.Load()
		if err != nil {
			db.Close()
			return nil, err
		}
		ds.db, ds.doc, ds.notifier = db, doc, db
	default:
		fs, err := store.OpenFile(path, logger)
		if err != nil {
			return nil, err
		}
		ds.file, ds.doc, ds.notifier = fs, fs.Document(), fs
		for _, w := range ds.doc.Warnings {
			fmt.Fprintf(os.Stderr, "%s %s\n", ui.Yellow("⚠"), w)
		}
	}
	return ds, nil
}

func (ds *docStore) Close() {
	if ds.db != nil {
		ds.db.Close()
	}
}

// sink returns the notifier for edits. In dry-run mode edits are recorded
// instead of saved.
func (ds *docStore) sink() timeline.Notifier {
	if flagDryRun {
		if ds.pending == nil {
			ds.pending = &timeline.Recorder{}
		}
		return ds.pending
	}
	return ds.notifier
}

// printPending reports what a dry run would have written.
func (ds *docStore) printPending() {
	var moved, added, removed int
	if ds.pending != nil {
		moved, added, removed = len(ds.pending.Moved), len(ds.pending.Added), len(ds.pending.Removed)
	}
	fmt.Printf("\n🎯 %s\n", ui.Yellow(fmt.Sprintf("Dry run — nothing saved (%d task writes, %d links, %d unlinks skipped).", moved, added, removed)))
}

// watchPath is the file to watch for external edits; SQLite is not watched.
func (ds *docStore) watchPath() string {
	if ds.file == nil {
		return ""
	}
	return ds.path
}

func (ds *docStore) reload() (*store.Document, error) {
	if ds.file != nil {
		return ds.file.Reload()
	}
	return ds.db.Load()
}

func filteredTasks(tasks []task.Task) ([]task.Task, error) {
	if flagFilter == "" {
		return tasks, nil
	}
	out, err := task.Filter(tasks, flagFilter)
	if err != nil {
		return nil, fmt.Errorf("apply filter: %w", err)
	}
	return out, nil
}

func timelineOptions(n timeline.Notifier) timeline.Options {
	opts := timeline.DefaultOptions()
	opts.PixelsPerDay = cfg.Timeline.PixelsPerDay
	opts.MinPixelsPerDay = cfg.Timeline.MinPixelsPerDay
	opts.MaxPixelsPerDay = cfg.Timeline.MaxPixelsPerDay
	opts.Viewport = viewport.Options{
		MonthsBefore: cfg.Viewport.InitialMonthsBefore,
		MonthsAfter:  cfg.Viewport.InitialMonthsAfter,
		BatchMonths:  cfg.Viewport.BatchMonths,
		Threshold:    cfg.Viewport.EdgeThresholdPx,
		Cooldown:     cfg.Viewport.Cooldown(),
	}
	opts.Strategy = schedule.Strategy(cfg.Schedule.Strategy)
	opts.Notifier = n
	opts.Logger = logger
	return opts
}

// newTimeline opens the document and starts a session that writes back to
// it unless --dry-run is set.
func newTimeline() (*timeline.Timeline, *docStore, error) {
	ds, err := openStore()
	if err != nil {
		return nil, nil, err
	}
	tl := timeline.New(ds.doc.Tasks, ds.doc.Cycles, timelineOptions(ds.sink()))
	return tl, ds, nil
}

// --- Commands ---

func scheduleCmd() *cobra.Command {
	var (
		flagReverse bool
		flagFixed   []string
		flagWrite   bool
	)

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Auto-schedule the document so every task starts after its dependencies",
		Long: `Runs the forward pass: each task is pushed to start no earlier than the
latest due date of its dependencies, keeping its duration. With --reverse,
predecessors are first pulled earlier to meet their successors, and tasks
listed in --fixed stay put. Prints the result; --write saves it.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if flagWrite && flagFilter != "" {
				return fmt.Errorf("--filter cannot be combined with --write")
			}
			ds, err := openStore()
			if err != nil {
				return err
			}
			defer ds.Close()

			before, err := filteredTasks(ds.doc.Tasks)
			if err != nil {
				return err
			}
			strategy := schedule.Strategy(cfg.Schedule.Strategy)

			var res schedule.Result
			if flagReverse {
				fixed := make(map[string]bool, len(flagFixed))
				for _, id := range flagFixed {
					fixed[id] = true
				}
				res = schedule.Reschedule(strategy, before, fixed)
			} else {
				res = schedule.Forward(strategy, before)
			}
			logger.Info("scheduled", "passes", res.Passes, "converged", res.Converged, "moved", len(res.Moved))

			r := report.FromResult(before, res)
			if flagJSON {
				data, err := r.JSON()
				if err != nil {
					return err
				}
				fmt.Println(string(data))
			} else {
				r.PrintTable(os.Stdout)
				fmt.Printf("\n%s\n", r.Summary())
			}

			if !flagWrite {
				return nil
			}
			written := 0
			for _, t := range task.Changed(before, res.Tasks) {
				if err := ds.notifier.TaskMoved(t); err != nil {
					return fmt.Errorf("save %s: %w", t.ID, err)
				}
				written++
			}
			if !flagJSON {
				fmt.Printf("\n💾 Saved %s tasks to %s\n", ui.Bold(written), ui.Dim(ds.path))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&flagReverse, "reverse", false, "Pull predecessors earlier before pushing successors")
	cmd.Flags().StringSliceVar(&flagFixed, "fixed", nil, "Task ids the reverse pass must not move")
	cmd.Flags().BoolVarP(&flagWrite, "write", "w", false, "Save the scheduled dates back to the document")

	return cmd
}

func vizCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "viz",
		Short: "Print an ASCII Gantt chart or a DOT dependency graph",
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := openStore()
			if err != nil {
				return err
			}
			defer ds.Close()

			tasks, err := filteredTasks(ds.doc.Tasks)
			if err != nil {
				return err
			}

			switch flagFormat {
			case "dot":
				report.WriteDOT(os.Stdout, tasks)
			case "ascii", "":
				report.PrintGantt(os.Stdout, tasks, terminalWidth())
			default:
				return fmt.Errorf("unknown format %q (want ascii or dot)", flagFormat)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&flagFormat, "format", "ascii", "Output format (ascii, dot)")

	return cmd
}

func exportCmd() *cobra.Command {
	var (
		flagStyle        string
		flagPixelsPerDay float64
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the timeline as SVG, or the document as JSON or YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := openStore()
			if err != nil {
				return err
			}
			defer ds.Close()

			tasks, err := filteredTasks(ds.doc.Tasks)
			if err != nil {
				return err
			}

			var data []byte
			switch flagFormat {
			case "svg", "":
				style := render.DefaultStyle()
				if flagStyle != "" {
					if style, err = render.LoadStyle(flagStyle); err != nil {
						return err
					}
				}
				opts := timelineOptions(timeline.NopNotifier{})
				if flagPixelsPerDay > 0 {
					opts.PixelsPerDay = flagPixelsPerDay
				}
				tl := timeline.New(tasks, ds.doc.Cycles, opts)
				tl.CoverTasks()
				data = []byte(render.SVG(tl.Layout(), style))
			case store.FormatJSON, store.FormatYAML:
				data, err = store.Encode(&store.Document{Tasks: tasks, Cycles: ds.doc.Cycles}, flagFormat)
				if err != nil {
					return err
				}
			default:
				return fmt.Errorf("unknown format %q (want svg, json or yaml)", flagFormat)
			}

			if flagOutput == "" {
				_, err := os.Stdout.Write(data)
				return err
			}
			if err := os.WriteFile(flagOutput, data, 0644); err != nil {
				return err
			}
			fmt.Printf("📄 Wrote %s\n", ui.Dim(flagOutput))
			return nil
		},
	}

	cmd.Flags().StringVar(&flagFormat, "format", "svg", "Output format (svg, json, yaml)")
	cmd.Flags().StringVarP(&flagOutput, "output", "o", "", "Write to a file instead of stdout")
	cmd.Flags().StringVar(&flagStyle, "style", "", "SVG style file (YAML)")
	cmd.Flags().Float64Var(&flagPixelsPerDay, "pixels-per-day", 0, "SVG scale (default: timeline.pixels_per_day)")

	return cmd
}

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <source>",
		Short: "Copy a JSON or YAML document into the --file document or database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := store.Load(args[0])
			if err != nil {
				return err
			}
			for _, w := range doc.Warnings {
				fmt.Fprintf(os.Stderr, "%s %s\n", ui.Yellow("⚠"), w)
			}

			target := documentPath()
			if cfg.StoreDriver(target) == "sqlite" {
				db, err := store.OpenSQLite(target, logger)
				if err != nil {
					return err
				}
				defer db.Close()
				err = db.Import(doc)
				if err != nil {
					return err
				}
			} else if err := store.Save(target, doc); err != nil {
				return err
			}
			fmt.Printf("📥 Imported %s tasks and %d cycles into %s\n", ui.Bold(len(doc.Tasks)), len(doc.Cycles), ui.Dim(target))
			return nil
		},
	}
	return cmd
}

func moveCmd() *cobra.Command {
	var (
		flagKind  string
		flagShift bool
		flagCtrl  bool
	)

	cmd := &cobra.Command{
		Use:   "move <task> <days>",
		Short: "Move or resize a task as if its bar were dragged",
		Long: `Applies a complete drag gesture. --kind selects move, resize-left or
resize-right. --shift moves every task connected to the dragged one;
--ctrl also pulls predecessors earlier when the move breaks a dependency.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			days, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid days %q: %w", args[1], err)
			}
			kind, err := timeline.ParseKind(flagKind)
			if err != nil {
				return err
			}

			tl, ds, err := newTimeline()
			if err != nil {
				return err
			}
			defer ds.Close()

			changed, err := tl.Move(args[0], kind, days, timeline.Modifiers{Shift: flagShift, Ctrl: flagCtrl})
			if err != nil {
				return userError(err)
			}
			return printChanges(ds, fmt.Sprintf("%s %s", kind, ui.Days(days)), changed)
		},
	}

	cmd.Flags().StringVar(&flagKind, "kind", "move", "Gesture kind (move, resize-left, resize-right)")
	cmd.Flags().BoolVar(&flagShift, "shift", false, "Move the whole connected group")
	cmd.Flags().BoolVar(&flagCtrl, "ctrl", false, "Also reschedule predecessors")
	cmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "Show the result without saving")

	return cmd
}

func linkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "link <source> <target>",
		Short: "Make target depend on source and push it later if needed",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tl, ds, err := newTimeline()
			if err != nil {
				return err
			}
			defer ds.Close()

			changed, err := tl.CreateDependency(args[0], args[1])
			if err != nil {
				return userError(err)
			}
			return printChanges(ds, ui.Green("+ ")+ui.Edge(args[0], args[1]), changed)
		},
	}
	cmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "Show the result without saving")
	return cmd
}

func unlinkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "unlink <source> <target>",
		Short: "Remove a dependency; dates are left unchanged",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tl, ds, err := newTimeline()
			if err != nil {
				return err
			}
			defer ds.Close()

			if err := tl.RemoveDependency(args[0], args[1]); err != nil {
				return userError(err)
			}
			return printChanges(ds, ui.Red("- ")+ui.Edge(args[0], args[1]), nil)
		},
	}
	cmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "Show the result without saving")
	return cmd
}

func replayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay <script|->",
		Short: "Apply a newline-delimited JSON gesture script",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = os.Stdin
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				r = f
			}

			tl, ds, err := newTimeline()
			if err != nil {
				return err
			}
			defer ds.Close()

			out := io.Writer(os.Stdout)
			if flagJSON {
				out = io.Discard
			}
			stats, err := replay.Play(tl, r, out, logger)
			if err != nil {
				return err
			}
			if flagJSON {
				return outputJSON(stats)
			}
			fmt.Printf("\n🏁 %s applied, %s rejected, %s failed\n",
				ui.BoldGreen(stats.Applied), ui.Yellow(stats.Rejected), ui.Red(stats.Failed))
			if flagDryRun {
				ds.printPending()
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "Apply to a scratch copy without saving")
	return cmd
}

func tuiCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive terminal timeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !term.IsTerminal(int(os.Stdout.Fd())) {
				return fmt.Errorf("tui needs an interactive terminal")
			}
			if cfg.Logging.Dir == "" {
				// stderr would draw over the alternate screen
				logger = logging.NopLogger()
			}

			ds, err := openStore()
			if err != nil {
				return err
			}
			defer ds.Close()

			tl := timeline.New(ds.doc.Tasks, ds.doc.Cycles, tui.TimelineOptions(timelineOptions(ds.sink())))
			model := tui.NewModel(tl, calendar.Today(), logger)

			var reload func() (*store.Document, error)
			if ds.file != nil {
				reload = ds.reload
			}
			return tui.New(model, ds.watchPath(), reload).Run()
		},
	}
	cmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "Edit without saving")
	return cmd
}

func serveCmd() *cobra.Command {
	var (
		flagPort   int
		flagHost   string
		flagStyle  string
		flagNoOpen bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the timeline over HTTP for a browser front end",
		Long: `Starts the timeline API: GET /timeline returns the layout, the
/gestures endpoints drive drags, /dependencies adds and removes links and
GET /timeline.svg renders the current state. Edits are saved to the document,
and external edits to a JSON or YAML document are picked up live.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if flagPort == 0 {
				flagPort = cfg.Server.Port
			}
			if flagHost == "" {
				flagHost = cfg.Server.Host
			}
			addr := net.JoinHostPort(flagHost, strconv.Itoa(flagPort))
			if viewer.IsPortOpen(addr) {
				return fmt.Errorf("%s is already in use", addr)
			}

			style := render.DefaultStyle()
			if flagStyle != "" {
				var err error
				if style, err = render.LoadStyle(flagStyle); err != nil {
					return err
				}
			}

			tl, ds, err := newTimeline()
			if err != nil {
				return err
			}
			defer ds.Close()
			tl.CoverTasks()

			srv := viewer.NewServer(tl, style, logger)
			url, err := srv.Start(flagHost, flagPort)
			if err != nil {
				return err
			}
			ui.PrintBanner(os.Stdout)
			fmt.Printf("🌐 Serving %s tasks from %s at %s\n", ui.Bold(tl.State().Len()), ui.Dim(ds.path), ui.BoldCyan(url))
			if !flagNoOpen {
				openBrowser(url + "/timeline.svg")
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if path := ds.watchPath(); path != "" {
				go func() {
					err := store.Watch(ctx, path, store.DefaultDebounce, func(_ *store.Document, err error) {
						if err != nil {
							logger.Warn("document reload failed", "path", path, "error", err)
							return
						}
						doc, err := ds.reload()
						if err != nil {
							logger.Warn("document reload failed", "path", path, "error", err)
							return
						}
						if srv.Reconcile(doc) {
							fmt.Printf("🔄 Reloaded %s\n", ui.Dim(path))
						}
					})
					if err != nil {
						logger.Error("watch failed", "path", path, "error", err)
					}
				}()
			}

			<-ctx.Done()
			fmt.Println("\n👋 Stopped")
			return nil
		},
	}

	cmd.Flags().IntVar(&flagPort, "port", 0, "Listen port (default: server.port)")
	cmd.Flags().StringVar(&flagHost, "host", "", "Listen host (default: server.host)")
	cmd.Flags().StringVar(&flagStyle, "style", "", "SVG style file (YAML)")
	cmd.Flags().BoolVar(&flagNoOpen, "no-open", false, "Skip opening browser")
	cmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "Serve without saving edits")

	return cmd
}

func inferDepsCmd() *cobra.Command {
	var (
		flagApply    bool
		flagModel    string
		flagFromFile string
	)

	cmd := &cobra.Command{
		Use:   "infer-deps",
		Short: "Use Claude to infer task dependencies from titles and dates",
		Long: `Sends task titles and dates to Claude and infers dependency edges.
Each edge is added through the timeline, so cyclic, duplicate and
self-referencing suggestions are rejected and dependents are pushed later.
By default runs in dry-run mode — use --apply to save the result.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			flagDryRun = !flagApply
			tl, ds, err := newTimeline()
			if err != nil {
				return err
			}
			defer ds.Close()

			tasks, err := filteredTasks(tl.Tasks())
			if err != nil {
				return err
			}
			if len(tasks) == 0 {
				return fmt.Errorf("no tasks found in %s", ds.path)
			}

			var result *claude.InferDepsResult
			if flagFromFile != "" {
				data, err := os.ReadFile(flagFromFile)
				if err != nil {
					return fmt.Errorf("read from-file: %w", err)
				}
				if result, err = claude.ParseResult(data); err != nil {
					return fmt.Errorf("parse from-file: %w", err)
				}
				if !flagJSON {
					fmt.Printf("📂 Loaded %s edges from %s\n", ui.Bold(len(result.Edges)), ui.Dim(flagFromFile))
				}
			} else {
				if !flagJSON {
					fmt.Printf("🔍 Sending %s tasks to Claude for dependency inference...\n", ui.Bold(len(tasks)))
				}
				model := flagModel
				if model == "" {
					model = cfg.Claude.Model
				}
				client, err := claude.NewClient("", model, cfg.Claude.MaxTokens)
				if err != nil {
					return err
				}
				if result, err = client.InferDeps(context.Background(), claude.Summaries(tasks)); err != nil {
					return fmt.Errorf("infer deps: %w", err)
				}
			}

			applied := claude.Apply(tl, result)

			if flagJSON {
				rejected := make([]map[string]string, 0, len(applied.Rejected))
				for _, r := range applied.Rejected {
					rejected = append(rejected, map[string]string{
						"source": r.Edge.SourceID,
						"target": r.Edge.TargetID,
						"error":  errors.UserMessage(r.Err),
					})
				}
				return outputJSON(map[string]any{
					"added":    nonNilEdges(applied.Added),
					"rejected": rejected,
					"summary":  result.Summary,
					"applied":  flagApply,
				})
			}

			for _, r := range applied.Rejected {
				fmt.Printf("  %s %s: %s\n", ui.Yellow("⏭️  SKIP:"), ui.Edge(r.Edge.SourceID, r.Edge.TargetID), errors.UserMessage(r.Err))
			}
			fmt.Printf("\n🔗 Inferred %s dependencies (%d from Claude, %d moved tasks):\n\n",
				ui.Bold(len(applied.Added)), len(result.Edges), len(applied.Moved))
			reasons := make(map[timeline.Edge]string, len(result.Edges))
			for _, e := range result.Edges {
				reasons[timeline.Edge{SourceID: e.BlockerID, TargetID: e.BlockedID}] = e.Reason
			}
			for _, e := range applied.Added {
				fmt.Printf("  %s %s blocked by %s  — %s\n", ui.Cyan("→"), ui.BoldMagenta(e.TargetID), ui.BoldMagenta(e.SourceID), ui.Dim(reasons[e]))
			}
			if result.Summary != "" {
				fmt.Printf("\n💡 %s %s\n", ui.BoldWhite("Summary:"), result.Summary)
			}

			if !flagApply {
				fmt.Printf("\n🎯 %s\n", ui.Yellow("Dry run — use --apply to save these dependencies."))
				return nil
			}
			fmt.Printf("\n🏁 Saved %s dependencies to %s\n", ui.BoldGreen(len(applied.Added)), ui.Dim(ds.path))
			return nil
		},
	}

	cmd.Flags().BoolVar(&flagApply, "apply", false, "Save inferred deps to the document (default: dry-run)")
	cmd.Flags().StringVar(&flagModel, "model", "", "Claude model to use (default: claude.model)")
	cmd.Flags().StringVar(&flagFromFile, "from-file", "", "Load inferred deps from a JSON file instead of calling Claude")

	return cmd
}

// --- Output helpers ---

func outputJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func printChanges(ds *docStore, action string, changed []task.Task) error {
	if flagJSON {
		if changed == nil {
			changed = []task.Task{}
		}
		return outputJSON(map[string]any{"changed": changed, "saved": !flagDryRun})
	}

	fmt.Printf("✅ %s\n", action)
	for _, t := range changed {
		start, due, _ := t.Bounds()
		fmt.Printf("  %s %s → %s\n", ui.TaskPrefix(t.ID), start, due)
	}
	if flagDryRun {
		ds.printPending()
	}
	return nil
}

// userError reduces advisory errors to their notice text.
func userError(err error) error {
	if errors.IsUserFacing(err) {
		return errors.New(errors.UserMessage(err))
	}
	return err
}

func nonNilEdges(edges []timeline.Edge) []timeline.Edge {
	if edges == nil {
		return []timeline.Edge{}
	}
	return edges
}

// terminalWidth returns the stdout width, or 100 when not a terminal.
func terminalWidth() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return 100
}

// openBrowser opens the given URL in the default browser.
func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	default:
		cmd = exec.Command("cmd", "/c", "start", url)
	}
	cmd.Start()
}

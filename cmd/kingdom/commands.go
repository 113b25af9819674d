package main

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/napolitain/kingdom/internal/advisor"
	"github.com/napolitain/kingdom/internal/config"
	"github.com/napolitain/kingdom/internal/engine"
	"github.com/napolitain/kingdom/internal/models"
	"github.com/napolitain/kingdom/internal/schema"
	"github.com/napolitain/kingdom/internal/tui"
)

func newNewCmd() *cobra.Command {
	var name, ruler string
	cmd := &cobra.Command{
		Use:   "new",
		Short: "Found a new kingdom, replacing the saved one",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(os.Stderr)
			if err != nil {
				return err
			}
			defer a.Close()

			n, err := a.session.NewGame(cmd.Context(), name, ruler)
			if err != nil {
				return err
			}
			printNotice(n)
			successColor := color.New(color.FgGreen, color.Bold)
			successColor.Printf("✓ The kingdom of %s was founded by %s\n\n", name, ruler)
			printStatus(a)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Kingdom name")
	cmd.Flags().StringVar(&ruler, "ruler", "", "Ruler name")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("ruler")
	return cmd
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show resources and buildings",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(os.Stderr)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.start(cmd.Context()); err != nil {
				return err
			}
			printStatus(a)
			return nil
		},
	}
}

func newBuildCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "build <building>",
		Short: "Start building or upgrading a structure",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(os.Stderr)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.start(cmd.Context()); err != nil {
				return err
			}
			res, n := a.session.Build(cmd.Context(), models.BuildingID(args[0]))
			printBuildResult(res)
			printNotice(n)
			if res.Outcome != engine.Built {
				return res.Err
			}
			return nil
		},
	}
}

func newTickCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tick",
		Short: "Reconcile the time elapsed since the last update",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(os.Stderr)
			if err != nil {
				return err
			}
			defer a.Close()

			ok, err := a.session.Load(cmd.Context())
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("no kingdom yet, found one with: kingdom new --name <name> --ruler <ruler>")
			}
			res, n := a.session.Tick(cmd.Context())
			printTickResult(res)
			printNotice(n)
			return nil
		},
	}
}

func newLogCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show the most recent events",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(os.Stderr)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.start(cmd.Context()); err != nil {
				return err
			}
			if limit <= 0 {
				limit = a.cfg.ActionWindow
			}
			printActions(a.session.RecentActions(limit))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Number of events (default action_window)")
	return cmd
}

func newAdviseCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "advise",
		Short: "Rank the next constructions by return on investment",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(os.Stderr)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.start(cmd.Context()); err != nil {
				return err
			}
			recs := advisor.Recommend(a.session.State(), a.session.Production())
			if limit > 0 && len(recs) > limit {
				recs = recs[:limit]
			}
			printRecommendations(recs)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 5, "Number of suggestions (0 for all)")
	return cmd
}

func newCatalogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "List the buildings a kingdom can raise",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			catalog, err := loadCatalog(cfg)
			if err != nil {
				return fmt.Errorf("loading catalog: %w", err)
			}
			printCatalog(catalog)
			return nil
		},
	}
}

func newPlayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "play",
		Short: "Play interactively; production ticks in real time",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logOut, closeLog, err := openLogFile(cfg)
			if err != nil {
				return err
			}
			defer closeLog()

			a, err := openApp(logOut)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.start(cmd.Context()); err != nil {
				return err
			}
			return tui.Run(cmd.Context(), a.session, a.cfg.TickInterval, a.cfg.ActionWindow)
		},
	}
}

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "schema [save|catalog]",
		Short:     "Print the JSON schema of save files or catalog files",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{string(schema.SaveState), string(schema.Catalog)},
		RunE: func(cmd *cobra.Command, args []string) error {
			kind := schema.SaveState
			if len(args) == 1 {
				kind = schema.Kind(args[0])
			}
			doc, err := schema.Document(kind)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(doc)
			return err
		},
	}
}

func newConfigCmd() *cobra.Command {
	var write bool
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if write {
				path := configFile
				if path == "" {
					path = filepath.Join(cfg.DataDir, config.FileName)
				}
				if err := config.Write(path, cfg); err != nil {
					return err
				}
				color.Green("✓ Wrote %s", path)
				return nil
			}
			raw, err := yaml.Marshal(cfg)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(raw)
			return err
		},
	}
	cmd.Flags().BoolVarP(&write, "write", "w", false, "Write the configuration file")
	return cmd
}

// openLogFile sends the TUI's structured log to log_file, or drops it
func openLogFile(cfg config.Config) (io.Writer, func(), error) {
	if cfg.LogFile == "" {
		return io.Discard, func() {}, nil
	}
	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	return f, func() { f.Close() }, nil
}

func printStatus(a *app) {
	titleColor := color.New(color.FgCyan, color.Bold)
	infoColor := color.New(color.FgYellow)

	state := a.session.State()
	now := a.session.Now()
	yield := a.session.Production()

	titleColor.Printf("👑 %s, ruled by %s\n", state.Kingdom.Name, state.Kingdom.Ruler)
	infoColor.Printf("   Day %.1f, last updated %s\n\n",
		state.Kingdom.Age, engine.FromMillis(state.Kingdom.LastUpdated).Local().Format(time.DateTime))

	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"Resource", "Stock", "Per hour"}),
	)
	for _, rt := range models.AllResourceTypes() {
		rate := ""
		if r := yield.Get(rt); r != 0 {
			rate = fmt.Sprintf("%+.0f", r)
		}
		_ = table.Append([]string{tui.FormatName(string(rt)), strconv.FormatInt(state.Resources.Get(rt), 10), rate})
	}
	_ = table.Render()
	fmt.Println()

	table = tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"Building", "Type", "Level", "Status", "Progress"}),
	)
	for _, b := range state.Buildings {
		_ = table.Append([]string{
			b.Name,
			string(b.Type),
			strconv.Itoa(b.Level),
			buildingStatus(b, now),
			tui.ProgressBar(b.Progress(now), 10),
		})
	}
	_ = table.Render()
}

func buildingStatus(b models.Building, now int64) string {
	switch {
	case b.UnderConstruction():
		left := (*b.CompletionTime - now) / engine.MillisPerMinute
		if left < 0 {
			left = 0
		}
		return fmt.Sprintf("🏗️ %s left", engine.FormatMinutes(int(left)))
	case b.Level == 0:
		return "not built"
	default:
		return "✅ ready"
	}
}

func printBuildResult(res engine.BuildResult) {
	successColor := color.New(color.FgGreen, color.Bold)
	errorColor := color.New(color.FgRed)

	switch res.Outcome {
	case engine.Built:
		b := res.Building
		successColor.Printf("✓ Started %s (level %d), completes at %s\n",
			b.Name, b.Level, engine.FromMillis(*b.CompletionTime).Local().Format(time.DateTime))
	case engine.Rejected:
		errorColor.Printf("❌ Cannot build %s: %v\n", res.Building.Name, res.Err)
		for _, s := range res.Shortfalls {
			fmt.Printf("   • %s: need %d, have %d\n", tui.FormatName(string(s.Resource)), s.Need, s.Have)
		}
	case engine.NotFound:
		errorColor.Println("❌ Unknown building; see: kingdom catalog")
	}
}

func printTickResult(res engine.TickResult) {
	infoColor := color.New(color.FgYellow)
	successColor := color.New(color.FgGreen)

	if !res.Applied {
		infoColor.Printf("Nothing to do: %.0f minutes since the last update\n", res.Hours*60)
		return
	}
	successColor.Printf("✓ Reconciled %.1f hours (production for %.1f)\n", res.Hours, res.Multiplier)
	for _, rt := range models.ProducedResourceTypes() {
		fmt.Printf("   • %s: %+d\n", tui.FormatName(string(rt)), res.Produced.Get(rt))
	}
	for _, id := range res.Completed {
		successColor.Printf("   ✅ %s completed\n", tui.FormatName(string(id)))
	}
}

func printActions(actions []models.GameAction) {
	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"Time", "Event", "Message"}),
	)
	for _, a := range actions {
		_ = table.Append([]string{
			engine.FromMillis(a.Timestamp).Local().Format(time.DateTime),
			string(a.Type),
			a.Message,
		})
	}
	_ = table.Render()
}

func printCatalog(catalog models.Catalog) {
	byType := catalog.ByType()
	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"ID", "Building", "Type", "Cost", "Per level/hour", "Build time"}),
	)
	for _, bt := range models.AllBuildingTypes() {
		for _, t := range byType[bt] {
			_ = table.Append([]string{
				string(t.ID),
				t.Name,
				string(t.Type),
				tui.FormatCosts(t.Cost),
				formatYield(t.Production),
				engine.FormatMinutes(t.ConstructionTimeMinutes),
			})
		}
	}
	_ = table.Render()
}

func printRecommendations(recs []advisor.Recommendation) {
	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"#", "Building", "To level", "ROI", "Payback", "Ready in"}),
	)
	for i, r := range recs {
		ready := "now"
		if !r.Affordable {
			ready = formatHours(r.WaitHours)
		}
		_ = table.Append([]string{
			strconv.Itoa(i + 1),
			r.Name,
			strconv.Itoa(r.ToLevel),
			fmt.Sprintf("%.3f", r.ROI),
			formatHours(r.PaybackHours),
			ready,
		})
	}
	_ = table.Render()
}

func formatHours(h float64) string {
	if math.IsInf(h, 1) {
		return "never"
	}
	return engine.FormatMinutes(int(math.Ceil(h * 60)))
}

func formatYield(y models.Yield) string {
	out := ""
	for _, rt := range models.ProducedResourceTypes() {
		if v := y.Get(rt); v != 0 {
			if out != "" {
				out += " "
			}
			out += fmt.Sprintf("%+g %s", v, rt)
		}
	}
	if out == "" {
		return "-"
	}
	return out
}

package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/rigidsim/internal/config"
	"github.com/san-kum/rigidsim/internal/export"
	"github.com/san-kum/rigidsim/internal/metrics"
	"github.com/san-kum/rigidsim/internal/scene"
	"github.com/san-kum/rigidsim/internal/sim"
	"github.com/san-kum/rigidsim/internal/storage"
	"github.com/san-kum/rigidsim/internal/viz"
	"github.com/san-kum/rigidsim/internal/vmath"
	"github.com/spf13/cobra"
)

var (
	dataDir     string
	dt          float64
	duration    float64
	sampleEvery int
	configFile  string
	preset      string
	frameRate   int
	// events filters
	eventKind  string
	eventShape string
	eventLimit int
	// predict
	entityName string
	velocity   []float64
	steps      int
	// check
	numRuns int
	// export-svg
	svgOut  string
	svgView string
	// snapshot
	snapAt float64
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(20)
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	okStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("82"))
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "rigidsim",
		Short: "deterministic rigid body simulation",
		RunE: func(cmd *cobra.Command, args []string) error {
			return viz.RunInteractive(frameRate)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".rigidsim", "data directory")
	rootCmd.Flags().IntVar(&frameRate, "fps", 30, "frame rate")

	sceneFlags := func(c *cobra.Command) {
		c.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
		c.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration")
		c.Flags().StringVar(&configFile, "config", "", "scene file path (yaml)")
		c.Flags().StringVar(&preset, "preset", "", "use a preset scene")
	}

	runCmd := &cobra.Command{
		Use:   "run [scene]",
		Short: "run a scene and save the result",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	sceneFlags(runCmd)
	runCmd.Flags().IntVar(&sampleEvery, "sample-every", config.DefaultSampleEvery, "record positions every n ticks")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot body heights of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	eventsCmd := &cobra.Command{
		Use:   "events [run_id]",
		Short: "print the contact event log of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  printEvents,
	}
	eventsCmd.Flags().StringVar(&eventKind, "kind", "", "only show events of this kind")
	eventsCmd.Flags().StringVar(&eventShape, "shape", "", "only show events reported by this shape")
	eventsCmd.Flags().IntVar(&eventLimit, "limit", 0, "show at most n events")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "draw run trajectories as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&svgOut, "out", "o", "", "output file (default: <run_id>.svg)")
	exportSVGCmd.Flags().StringVar(&svgView, "view", "side", "projection: side or top")

	snapshotCmd := &cobra.Command{
		Use:   "snapshot [scene]",
		Short: "draw a scene at a point in time as SVG",
		Args:  cobra.MaximumNArgs(1),
		RunE:  snapshot,
	}
	sceneFlags(snapshotCmd)
	snapshotCmd.Flags().Float64Var(&snapAt, "at", 0, "time to advance the scene to")
	snapshotCmd.Flags().StringVarP(&svgOut, "out", "o", "", "output file (default: <scene>.svg)")
	snapshotCmd.Flags().StringVar(&svgView, "view", "side", "projection: side or top")

	liveCmd := &cobra.Command{
		Use:   "live [scene]",
		Short: "run a scene with live visualization",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	sceneFlags(liveCmd)
	liveCmd.Flags().IntVar(&frameRate, "fps", 30, "frame rate")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available scene presets",
		RunE:  listPresets,
	}

	predictCmd := &cobra.Command{
		Use:   "predict [scene]",
		Short: "predict the path of a launched body",
		Args:  cobra.MaximumNArgs(1),
		RunE:  predictPath,
	}
	sceneFlags(predictCmd)
	predictCmd.Flags().StringVar(&entityName, "entity", "", "entity to launch (default: first movable body)")
	predictCmd.Flags().Float64SliceVar(&velocity, "velocity", []float64{6, 6, 0}, "launch velocity x,y,z")
	predictCmd.Flags().IntVar(&steps, "steps", 300, "maximum number of steps")

	checkCmd := &cobra.Command{
		Use:   "check [scene]",
		Short: "run a scene several times in parallel and compare the results",
		Args:  cobra.MaximumNArgs(1),
		RunE:  checkDeterminism,
	}
	sceneFlags(checkCmd)
	checkCmd.Flags().IntVar(&numRuns, "runs", 4, "number of parallel runs")

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, eventsCmd, exportJSONCmd, exportSVGCmd, snapshotCmd, liveCmd, presetsCmd, predictCmd, checkCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadScene resolves the scene from --config, --preset or the argument, in
// that order, and applies any run flags the user set.
func loadScene(cmd *cobra.Command, args []string) (*config.Config, error) {
	var cfg *config.Config
	switch {
	case configFile != "":
		c, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = c
	default:
		name := preset
		if name == "" && len(args) > 0 {
			name = args[0]
		}
		if name == "" {
			name = "drop"
		}
		cfg = config.GetPreset(name)
		if cfg == nil {
			return nil, fmt.Errorf("unknown scene: %s (available: %s)", name, strings.Join(config.ListPresets(), ", "))
		}
	}

	if cmd.Flags().Changed("dt") {
		cfg.Dt = dt
	}
	if cmd.Flags().Changed("time") {
		cfg.Duration = duration
	}
	if cmd.Flags().Changed("sample-every") {
		cfg.SampleEvery = sampleEvery
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadScene(cmd, args)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	sc, err := scene.Build(cfg)
	if err != nil {
		return err
	}

	s := sim.New()
	for _, m := range metrics.Default() {
		s.AddMetric(m)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("running %s scene...\n", cfg.Scene)
	start := time.Now()

	result, err := s.Run(ctx, sc, sim.ConfigFrom(cfg))
	if err != nil {
		return err
	}

	elapsed := time.Since(start)

	runID, err := st.Save(cfg, result)
	if err != nil {
		return err
	}

	fmt.Println(titleStyle.Render("completed in " + elapsed.String()))
	row := func(label, value string) {
		fmt.Println(labelStyle.Render(label) + valueStyle.Render(value))
	}
	row("run id", runID)
	row("steps", fmt.Sprintf("%d", result.StepsTaken))
	row("samples", fmt.Sprintf("%d", len(result.Samples)))
	row("events", fmt.Sprintf("%d", len(result.Events)))
	fmt.Println("\nmetrics:")
	for _, name := range sortedKeys(result.Metrics) {
		row("  "+name, fmt.Sprintf("%.6f", result.Metrics[name]))
	}

	return nil
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENE\tTIME\tDURATION\tDT\tSTEPS\tEVENTS")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%.4fs\t%d\t%d\n",
			run.ID,
			run.Scene,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.Steps,
			run.Events,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, result, err := st.LoadResult(args[0])
	if err != nil {
		return err
	}

	graph := viz.PlotHeights(result, 80, 12)
	if graph == "" {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("scene: %s\n", meta.Scene)
	fmt.Printf("samples: %d\n\n", len(result.Samples))
	fmt.Println(graph)

	if len(result.Bodies) > 6 {
		fmt.Printf("\n(showing 6 of %d bodies)\n", len(result.Bodies))
	}
	return nil
}

func printEvents(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	events, err := st.LoadEvents(args[0])
	if err != nil {
		return err
	}

	shown := 0
	for _, e := range events {
		if eventKind != "" && string(e.Kind) != eventKind {
			continue
		}
		if eventShape != "" && e.Shape != eventShape {
			continue
		}
		fmt.Println(viz.EventStyle(e.Kind)(viz.FormatEvent(e)))
		shown++
		if eventLimit > 0 && shown >= eventLimit {
			break
		}
	}

	if shown == 0 {
		fmt.Println("no events")
	}
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, result, err := st.LoadResult(args[0])
	if err != nil {
		return err
	}
	return storage.ExportJSONStdout(meta, result)
}

func projection() (viz.Projection, error) {
	switch svgView {
	case "side":
		return viz.SideView, nil
	case "top":
		return viz.TopView, nil
	}
	return 0, fmt.Errorf("unknown view: %s", svgView)
}

func writeSVG(out, svg string) error {
	if err := os.WriteFile(out, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", out)
	return nil
}

func exportSVG(cmd *cobra.Command, args []string) error {
	proj, err := projection()
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	_, result, err := st.LoadResult(args[0])
	if err != nil {
		return err
	}

	svg := export.TrajectoriesToSVG(result, proj, 800, 600)
	if svg == "" {
		return fmt.Errorf("no data to draw")
	}

	out := svgOut
	if out == "" {
		out = args[0] + ".svg"
	}
	return writeSVG(out, svg)
}

func snapshot(cmd *cobra.Command, args []string) error {
	proj, err := projection()
	if err != nil {
		return err
	}
	cfg, err := loadScene(cmd, args)
	if err != nil {
		return err
	}
	sc, err := scene.Build(cfg, scene.WithLogger(discard{}))
	if err != nil {
		return err
	}

	for i, n := 0, int(math.Round(snapAt/cfg.Dt)); i < n; i++ {
		if err := sc.Step(cfg.Dt); err != nil {
			return err
		}
	}

	c := viz.NewCanvas(80, 24)
	viz.DrawScene(c, viz.FitViewport(sc, c, proj), sc)

	out := svgOut
	if out == "" {
		out = cfg.Scene + ".svg"
	}
	return writeSVG(out, export.CanvasToSVG(c, 6))
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadScene(cmd, args)
	if err != nil {
		return err
	}
	return viz.RunLive(cfg, frameRate)
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tENTITIES\tLAUNCHES\tDURATION")
	for _, name := range config.ListPresets() {
		cfg := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%d\t%d\t%.0fs\n", name, len(cfg.Entities), len(cfg.Launches), cfg.Duration)
	}
	return w.Flush()
}

func predictPath(cmd *cobra.Command, args []string) error {
	if len(velocity) != 3 {
		return fmt.Errorf("velocity needs 3 components, got %d", len(velocity))
	}

	cfg, err := loadScene(cmd, args)
	if err != nil {
		return err
	}
	sc, err := scene.Build(cfg)
	if err != nil {
		return err
	}

	ent, err := pickEntity(sc, entityName)
	if err != nil {
		return err
	}

	start := ent.Body.Position()
	v := vmath.Vec3{velocity[0], velocity[1], velocity[2]}
	path := sc.World.PredictPath(start, v, ent.Shapes[0], steps, cfg.Dt)
	if len(path) == 0 {
		return fmt.Errorf("no path predicted (are the settings enabled?)")
	}

	end := path[len(path)-1]
	fmt.Printf("entity: %s\n", ent.Name)
	fmt.Printf("from (%.2f, %.2f, %.2f) at (%.2f, %.2f, %.2f) m/s\n",
		start.X(), start.Y(), start.Z(), v.X(), v.Y(), v.Z())
	fmt.Printf("points: %d (%.2fs)\n", len(path), float64(len(path)-1)*cfg.Dt)
	fmt.Printf("ends at (%.2f, %.2f, %.2f)\n\n", end.X(), end.Y(), end.Z())

	heights := make([]float64, len(path))
	for i, p := range path {
		heights[i] = p.Y()
	}
	if graph := viz.PlotSeries(heights, "predicted height per step", 80, 10); graph != "" {
		fmt.Println(graph)
	}
	return nil
}

func pickEntity(sc *scene.Scene, name string) (*scene.Entity, error) {
	if name == "" {
		movers := sc.Movers()
		if len(movers) == 0 {
			return nil, fmt.Errorf("scene %s has no movable bodies", sc.Name)
		}
		return movers[0], nil
	}
	ent, ok := sc.Entity(name)
	if !ok || ent.Body == nil || len(ent.Shapes) == 0 {
		return nil, fmt.Errorf("entity %q is not a body with shapes", name)
	}
	return ent, nil
}

func checkDeterminism(cmd *cobra.Command, args []string) error {
	cfg, err := loadScene(cmd, args)
	if err != nil {
		return err
	}

	build := func() (*scene.Scene, error) { return scene.Build(cfg, scene.WithLogger(discard{})) }
	ens := sim.NewEnsemble(build, metrics.Default, numRuns)

	fmt.Printf("running %s %d times...\n", cfg.Scene, numRuns)
	if err := ens.CheckDeterminism(cmd.Context(), sim.ConfigFrom(cfg)); err != nil {
		return err
	}
	fmt.Println(okStyle.Render("all runs identical"))
	return nil
}

type discard struct{}

func (discard) Printf(string, ...any) {}

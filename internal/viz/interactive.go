package viz

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"k8s.io/klog/v2"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/scene"
	"github.com/san-kum/gravsim/internal/sim"
	"github.com/san-kum/gravsim/internal/world"
)

const (
	fps             = 60
	sidebarWidth    = 36
	energyCapacity  = 120
	energyEvery     = 6
	defaultExtent   = 500
	placeMassFactor = 1.5
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/fps, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// App is the interactive control surface: it drives the simulation from
// bubbletea ticks and turns keys and mouse drags into scene edits, commits
// and body placements.
type App struct {
	sim    *sim.Simulation
	dt     float64
	camera *Camera
	canvas *Canvas
	theme  Theme

	width, height int

	panel       bool
	draft       scene.Descriptor
	sceneIdx    int
	paramCursor int

	placeMass  float64
	drag       *drag
	lastPlaced world.Entity

	energy   []float64
	tickCost []float64
	frame    int
	report   sim.Report
	status   string
	showHelp bool
	fitted   bool
}

func NewApp(s *sim.Simulation, dt float64) *App {
	a := &App{
		sim:       s,
		dt:        dt,
		camera:    NewCamera(fps),
		theme:     Themes[0],
		placeMass: 1,
		energy:    make([]float64, 0, energyCapacity),
	}
	a.resize(80+sidebarWidth, 24)
	return a
}

func (a *App) resize(w, h int) {
	a.width, a.height = w, h
	cw := max(w-sidebarWidth, 10)
	ch := max(h-1, 5)
	a.canvas = NewCanvas(cw, ch)
}

func (a *App) Init() tea.Cmd { return tick() }

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.resize(msg.Width, msg.Height)
		a.fitted = false
	case tea.KeyMsg:
		if a.panel {
			return a, a.panelKey(msg)
		}
		return a, a.simKey(msg)
	case tea.MouseMsg:
		a.mouse(msg)
	case TickMsg:
		a.step()
		return a, tick()
	}
	return a, nil
}

func (a *App) step() {
	r, err := a.sim.Tick(a.dt)
	a.report = r
	if err != nil {
		a.status = err.Error()
		klog.ErrorS(err, "tick failed", "tick", r.Tick)
	}
	if r.Reloaded || !a.fitted {
		a.fit()
		if !a.fitted {
			a.camera.Snap()
		}
		a.fitted = true
	}
	a.camera.Update()

	if a.frame%energyEvery == 0 {
		a.energy = append(a.energy, a.sim.Energy().Total())
		if len(a.energy) > energyCapacity {
			a.energy = a.energy[1:]
		}
	}
	if r.Reloaded {
		a.energy = a.energy[:0]
	}
	a.tickCost = append(a.tickCost, float64(r.Duration.Microseconds()))
	if len(a.tickCost) > sidebarWidth {
		a.tickCost = a.tickCost[1:]
	}
	a.frame++
}

func (a *App) fit() {
	extent := sceneExtent(a.sim.World())
	if extent == 0 {
		extent = defaultExtent
	}
	a.camera.Fit(extent*1.1, a.canvas.SubWidth(), a.canvas.SubHeight())
}

func (a *App) simKey(msg tea.KeyMsg) tea.Cmd {
	sw, sh := a.canvas.SubWidth(), a.canvas.SubHeight()
	switch msg.String() {
	case "q", "ctrl+c":
		return tea.Quit
	case " ":
		if a.sim.TogglePause() {
			a.status = "paused"
		} else {
			a.status = ""
		}
	case "s", "tab":
		a.openPanel()
	case "n":
		a.commit()
	case "left", "h":
		a.camera.Pan(-0.1, 0, sw, sh)
	case "right", "l":
		a.camera.Pan(0.1, 0, sw, sh)
	case "up", "k":
		a.camera.Pan(0, 0.1, sw, sh)
	case "down", "j":
		a.camera.Pan(0, -0.1, sw, sh)
	case "+", "=":
		a.camera.ZoomBy(1.25)
	case "-", "_":
		a.camera.ZoomBy(1 / 1.25)
	case "f":
		a.fit()
	case "]":
		a.placeMass *= placeMassFactor
		a.clampPlaceMass()
	case "[":
		a.placeMass /= placeMassFactor
		a.clampPlaceMass()
	case "t":
		a.theme = NextTheme(a.theme)
	case "x":
		a.toggleTrail()
	case "?":
		a.showHelp = !a.showHelp
	}
	return nil
}

func (a *App) clampPlaceMass() {
	sp := a.sim.Loaded().Spawnable()
	if sp.Kind == scene.Massive {
		a.placeMass = dynamo.Clamp(a.placeMass, sp.MinMass, sp.MaxMass)
	}
}

func (a *App) openPanel() {
	a.panel = true
	a.paramCursor = 0
	if a.draft == nil {
		a.draft = a.sim.Loaded().Scene()
	}
	names := a.sim.Catalog().Names()
	for i, n := range names {
		if n == a.draft.Name() {
			a.sceneIdx = i
		}
	}
}

// commit makes the draft live; without a draft it restarts the current scene.
func (a *App) commit() {
	d := a.draft
	if d == nil {
		d = a.sim.Loaded().Scene()
	}
	a.sim.Commit(d)
	a.draft = nil
	a.panel = false
	a.status = "loaded " + d.Name()
}

func (a *App) panelKey(msg tea.KeyMsg) tea.Cmd {
	params := a.draft.Params()
	switch msg.String() {
	case "ctrl+c":
		return tea.Quit
	case "esc", "s", "tab", "q":
		a.panel = false
	case "up", "k":
		if a.paramCursor > 0 {
			a.paramCursor--
		}
	case "down", "j":
		if a.paramCursor < len(params) {
			a.paramCursor++
		}
	case "left", "h":
		a.adjust(-1)
	case "right", "l":
		a.adjust(1)
	case "n", "enter":
		a.commit()
	}
	return nil
}

// adjust moves the scene selector (row 0) or the selected parameter one step.
func (a *App) adjust(dir int) {
	if a.paramCursor == 0 {
		cat := a.sim.Catalog()
		a.sceneIdx = (a.sceneIdx + dir + cat.Len()) % cat.Len()
		a.draft = cat.At(a.sceneIdx)
		return
	}
	p := a.draft.Params()[a.paramCursor-1]
	v := stepParam(p, dir)
	if err := a.draft.SetParam(p.Name, v); err != nil {
		a.status = err.Error()
		return
	}
	a.status = ""
}

func stepParam(p dynamo.Param, dir int) float64 {
	var v float64
	if p.Log && p.Min > 0 {
		v = p.Value * math.Pow(1.1, float64(dir))
	} else {
		v = p.Value + float64(dir)*(p.Max-p.Min)/50
	}
	if p.Integer {
		r := math.Round(v)
		if r == p.Value {
			r += float64(dir)
		}
		v = r
	}
	return dynamo.Clamp(v, p.Min, p.Max)
}

func (a *App) mouse(msg tea.MouseMsg) {
	if a.panel {
		return
	}
	x, y := float64(msg.X*2+1), float64(msg.Y*4+2)
	inCanvas := msg.X < a.canvas.Width && msg.Y < a.canvas.Height

	switch msg.Action {
	case tea.MouseActionPress:
		if inCanvas && msg.Button == tea.MouseButtonLeft {
			a.drag = &drag{startX: x, startY: y, curX: x, curY: y}
		}
	case tea.MouseActionMotion:
		if a.drag != nil {
			a.drag.curX, a.drag.curY = x, y
		}
	case tea.MouseActionRelease:
		if a.drag == nil {
			return
		}
		a.drag.curX, a.drag.curY = x, y
		a.place(*a.drag)
		a.drag = nil
	}
}

// place spawns a body at the drag start. The drag works like a slingshot:
// the body leaves opposite to the pull with the pull length as speed.
func (a *App) place(d drag) {
	sw, sh := a.canvas.SubWidth(), a.canvas.SubHeight()
	pos := a.camera.Unproject(d.startX, d.startY, sw, sh)
	vel := pos.Sub(a.camera.Unproject(d.curX, d.curY, sw, sh))

	e, err := a.sim.PlaceBody(pos, vel, a.placeMass)
	if err != nil {
		if errors.Is(err, dynamo.ErrNoScene) {
			a.status = "no scene yet"
		} else {
			a.status = err.Error()
		}
		return
	}
	a.lastPlaced = e
	a.status = fmt.Sprintf("placed at (%.0f, %.0f)", pos.X(), pos.Y())
}

// toggleTrail switches the trail of the last placed body.
func (a *App) toggleTrail() {
	on, err := a.sim.ToggleTrail(a.lastPlaced)
	switch {
	case err != nil:
		a.status = "no placed body"
	case on:
		a.status = "trail on"
	default:
		a.status = "trail off"
	}
}

func (a *App) View() string {
	drawScene(a.canvas, a.camera, a.sim.World(), a.sim.Lines().Segments(), a.drag)
	canvasView := a.canvas.Render(a.theme.CanvasStyles())

	st := newPanelStyles(a.theme)
	main := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, st.frame.Render(a.sidebar(st)))
	if a.showHelp {
		return helpText + "\n" + main
	}
	return main
}

func (a *App) sidebar(st panelStyles) string {
	var b strings.Builder
	b.WriteString(st.header.Render(strings.ToUpper(a.sim.LoadedName())) + "\n")

	if a.sim.Clock().Paused() {
		b.WriteString(st.paused.Render("PAUSED"))
	} else {
		b.WriteString(st.running.Render("RUNNING"))
	}
	b.WriteString("\n\n")

	row := func(label, value string) {
		b.WriteString(st.label.Render(label) + st.value.Render(value) + "\n")
	}
	r := a.report
	row("Time", fmt.Sprintf("%.2fs", r.Elapsed))
	row("Bodies", fmt.Sprintf("%d (%d massive)", r.Bodies, r.Sources))
	row("Trails", fmt.Sprintf("%d / %d seg", r.TrailEntries, r.Segments))
	row("Tick", r.Duration.Round(time.Microsecond).String())
	b.WriteString(st.label.Render("") + st.spark.Render(Sparkline(a.tickCost, sidebarWidth-16)) + "\n")
	if r.Degenerate > 0 {
		row("Degenerate", fmt.Sprintf("%d", r.Degenerate))
	}

	sp := a.sim.Loaded().Spawnable()
	if sp.Kind == scene.Massive {
		row("Place mass", fmt.Sprintf("%.3g / %.3g", a.placeMass, sp.MaxSpawnableMass()))
	} else {
		row("Place mass", "test body")
	}

	if len(a.energy) > 1 {
		chart := asciigraph.Plot(a.energy,
			asciigraph.Height(5),
			asciigraph.Width(sidebarWidth-12),
			asciigraph.Caption("Energy"))
		b.WriteString("\n" + chart + "\n")
	} else {
		b.WriteString("\n" + st.hint.Render("energy: sampling") + "\n")
	}

	b.WriteString("\n" + st.rule.Render(Rule(sidebarWidth-4)) + "\n")
	if a.panel {
		b.WriteString(a.panelView(st))
	} else {
		b.WriteString(st.hint.Render("spc pause  s scenes  n reload\ndrag place  [ ] mass  +/- zoom\nhjkl pan  f fit  x trail  ? help"))
	}
	if a.status != "" {
		b.WriteString("\n\n" + st.status.Render(a.status))
	}
	return b.String()
}

func (a *App) panelView(st panelStyles) string {
	var b strings.Builder
	line := func(i int, s string) {
		if i == a.paramCursor {
			b.WriteString(st.sel.Render("▸ "+s) + "\n")
		} else {
			b.WriteString(st.rule.Render("  "+s) + "\n")
		}
	}
	line(0, fmt.Sprintf("scene  ◂ %s ▸", a.draft.Name()))
	for i, p := range a.draft.Params() {
		line(i+1, fmt.Sprintf("%-16s %s %.4g", p.Name, ParamBar(p, 6), p.Value))
	}
	b.WriteString(st.hint.Render("\nj/k select  h/l adjust\nn commit  esc close"))
	return b.String()
}

const helpText = `
╔══════════════════════════════════════╗
║           KEYBOARD SHORTCUTS         ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume             ║
║  S / Tab  - Scene panel              ║
║  N        - Commit scene / reload    ║
║  Drag     - Place body, drag = vel   ║
║  [ ]      - Placement mass           ║
║  HJKL     - Pan                      ║
║  + / -    - Zoom                     ║
║  F        - Fit scene                ║
║  X        - Trail on last placed     ║
║  T        - Cycle themes             ║
║  ?        - Toggle this help         ║
║  Q        - Quit                     ║
╚══════════════════════════════════════╝`

// Run starts the TUI on the current terminal.
func Run(s *sim.Simulation, dt float64) error {
	p := tea.NewProgram(NewApp(s, dt), tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}

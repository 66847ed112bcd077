// cmd/simview/main.go
// Copyright(c) 2025-2026 OpenRA contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// simview is a terminal viewer for simulation runs. Pointed at a replay
// file it plays the recording back with pause, single-step, seek and
// speed control; started with a scenario it runs the simulation live at
// the scenario tick rate and accepts aircraft orders from the keyboard.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"
	"unicode"

	"github.com/gdamore/tcell/v2"

	"github.com/gatekeep/OpenRA/flight"
	"github.com/gatekeep/OpenRA/game"
	"github.com/gatekeep/OpenRA/log"
	"github.com/gatekeep/OpenRA/math"
	"github.com/gatekeep/OpenRA/sim"
	"github.com/gatekeep/OpenRA/util"
)

var (
	scenarioFile = flag.String("scenario", "", "scenario file to run live; empty uses the built-in demo scenario")
	seed         = flag.Int64("seed", 1, "random seed for live runs")
	logLevel     = flag.String("loglevel", "warn", "logging level: debug, info, warn, error")
	logDir       = flag.String("logdir", "", "log file directory")
)

// Action represents the result of handling an event.
type Action int

const (
	ActionNone Action = iota
	ActionQuit
)

const (
	mapLeft  = 2
	mapTop   = 2
	maxSpeed = 32
	feedSize = 64
)

// AppState holds whichever of the two sources is active (a loaded
// replay or a live world) plus the cursor, selection and event feed
// shared by both.
type AppState struct {
	static sim.StaticState
	types  map[string]*game.UnitType

	// replay playback
	replay *sim.Replay
	frame  int

	// live simulation
	world *sim.World
	sub   *sim.EventsSubscription

	playing   bool // replay only; live pausing lives on the world
	speed     int  // frames advanced per timer tick
	selected  sim.ActorID
	cursor    math.Cell
	feed      *util.RingBuffer[sim.Event]
	status    string
	statusBad bool
}

func (state *AppState) live() bool { return state.world != nil }

func main() {
	flag.Parse()

	lg := log.New(false, *logLevel, *logDir)
	defer lg.CatchAndReportCrash()

	state := &AppState{
		speed: 1,
		feed:  util.NewRingBuffer[sim.Event](feedSize),
	}

	var e util.ErrorLogger
	var tickRate int32
	if len(flag.Args()) > 0 {
		replay, err := sim.LoadReplay(flag.Arg(0))
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", flag.Arg(0), err)
			os.Exit(1)
		}
		sc := game.LoadScenarioBytes(replay.Header.ScenarioName, replay.Header.Scenario, &e)
		if e.HaveErrors() {
			e.PrintErrors(lg)
			os.Exit(1)
		}
		state.replay = replay
		state.static = sim.StaticViewOf(sc)
		state.types = sc.UnitTypes
		tickRate = replay.Header.TickRate
	} else {
		var sc *game.Scenario
		if *scenarioFile != "" {
			sc = game.LoadScenario(*scenarioFile, &e)
		} else {
			sc = game.DefaultScenario(&e)
		}
		if e.HaveErrors() {
			e.PrintErrors(lg)
			os.Exit(1)
		}
		w := sim.NewWorld(sc, *seed, lg)
		defer w.Destroy()

		state.world = w
		state.sub = w.Events.Subscribe()
		state.static = w.StaticView()
		state.types = sc.UnitTypes
		tickRate = sc.TickRate
	}
	state.cursor = math.Cell{X: state.static.Width / 2, Y: state.static.Height / 2}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating screen: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing screen: %v\n", err)
		os.Exit(1)
	}
	defer screen.Fini()

	screen.SetStyle(tcell.StyleDefault.
		Background(tcell.ColorReset).
		Foreground(tcell.ColorReset))

	// The poll loop only wakes on input, so a timer goroutine posts an
	// interrupt at the tick rate to drive playback and live updates.
	done := make(chan struct{})
	defer close(done)
	go func() {
		tick := time.NewTicker(time.Second / time.Duration(tickRate))
		defer tick.Stop()
		for {
			select {
			case <-done:
				return
			case <-tick.C:
				_ = screen.PostEvent(tcell.NewEventInterrupt(nil))
			}
		}
	}()

	for {
		render(screen, state)
		screen.Show()

		ev := screen.PollEvent()
		if handleEvent(ev, state, screen) == ActionQuit {
			return
		}
	}
}

///////////////////////////////////////////////////////////////////////////
// playback state

// current returns the tick and actors to draw, from the replay frame or
// the live world.
func (state *AppState) current() (int64, []sim.ReplayActor, error) {
	if state.live() {
		dv := state.world.DynamicView()
		return dv.Tick, dv.Actors, nil
	}
	fr, err := state.replay.Frame(state.frame)
	if err != nil {
		return 0, nil, err
	}
	return fr.Tick, fr.Actors, nil
}

// advance runs on each timer interrupt.
func (state *AppState) advance() {
	if state.live() {
		state.world.Update()
		state.feed.Add(state.sub.Get()...)
		return
	}
	if !state.playing {
		return
	}
	state.seekTo(state.frame + state.speed)
	if state.frame == state.replay.NumFrames()-1 {
		state.playing = false
	}
}

// seekTo moves replay playback to the given frame, clamped to the
// recording. Small forward moves accumulate the events of every frame
// passed over; jumps restart the feed from the target frame.
func (state *AppState) seekTo(target int) {
	n := state.replay.NumFrames()
	if n == 0 {
		return
	}
	target = min(max(target, 0), n-1)
	if target == state.frame {
		return
	}

	if target > state.frame && target-state.frame <= state.speed {
		for i := state.frame + 1; i <= target; i++ {
			if fr, err := state.replay.Frame(i); err == nil {
				state.feed.Add(fr.Events...)
			}
		}
	} else {
		state.feed = util.NewRingBuffer[sim.Event](feedSize)
		if fr, err := state.replay.Frame(target); err == nil {
			state.feed.Add(fr.Events...)
		}
	}
	state.frame = target
}

func (state *AppState) togglePause() {
	if state.live() {
		state.world.Paused = !state.world.Paused
		return
	}
	if !state.playing && state.frame == state.replay.NumFrames()-1 {
		state.seekTo(0) // play again from the top
	}
	state.playing = !state.playing
}

func (state *AppState) stepForward() {
	if state.live() {
		state.world.Paused = true
		state.world.Tick()
		state.feed.Add(state.sub.Get()...)
		return
	}
	state.playing = false
	state.seekTo(state.frame + 1)
}

func (state *AppState) stepBack() {
	if state.live() {
		state.setStatus("a live run cannot step backwards", true)
		return
	}
	state.playing = false
	state.seekTo(state.frame - 1)
}

func (state *AppState) seekSeconds(n int) {
	if state.live() {
		return
	}
	state.seekTo(state.frame + n*int(state.static.TickRate))
}

func (state *AppState) setSpeed(speed int) {
	if state.live() {
		state.setStatus("live runs play at the scenario tick rate", true)
		return
	}
	state.speed = min(max(speed, 1), maxSpeed)
}

func (state *AppState) setStatus(msg string, bad bool) {
	state.status = msg
	state.statusBad = bad
}

///////////////////////////////////////////////////////////////////////////
// selection, cursor and orders

// selectNext cycles the selection through the aircraft of the current
// frame in actor order.
func (state *AppState) selectNext() {
	_, actors, err := state.current()
	if err != nil {
		return
	}
	var ids []sim.ActorID
	for _, a := range actors {
		if ut := state.types[a.Type]; ut != nil && ut.Aircraft {
			ids = append(ids, a.ID)
		}
	}
	if len(ids) == 0 {
		state.selected = 0
		return
	}
	next := ids[0]
	for i, id := range ids {
		if id == state.selected && i+1 < len(ids) {
			next = ids[i+1]
			break
		}
	}
	state.selected = next
}

func (state *AppState) moveCursor(dx, dy int32) {
	c := state.cursor.Add(dx, dy)
	if state.contains(c) {
		state.cursor = c
	}
}

func (state *AppState) contains(c math.Cell) bool {
	return c.X >= 0 && c.X < state.static.Width && c.Y >= 0 && c.Y < state.static.Height
}

func (state *AppState) terrainAt(c math.Cell) (string, int64) {
	i := int(c.Y)*int(state.static.Width) + int(c.X)
	return state.static.Terrain[i], state.static.Elevation[i]
}

// order applies f to the selected aircraft if there is one and the run
// is live, reporting the outcome on the status line.
func (state *AppState) order(what string, f func(id sim.ActorID) error) {
	if !state.live() {
		state.setStatus("orders need a live run (start with -scenario)", true)
		return
	}
	if state.selected == 0 {
		state.setStatus("no aircraft selected; Tab cycles", true)
		return
	}
	if err := f(state.selected); err != nil {
		state.setStatus(err.Error(), true)
		return
	}
	state.setStatus(fmt.Sprintf("#%d: %s", state.selected, what), false)
}

///////////////////////////////////////////////////////////////////////////
// rendering

type glyph struct {
	r  rune
	st tcell.Style
}

var playerPalette = []tcell.Color{tcell.ColorBlue, tcell.ColorRed, tcell.ColorGreen,
	tcell.ColorYellow, tcell.ColorFuchsia, tcell.ColorAqua}

func (state *AppState) ownerColor(name string) tcell.Color {
	for i, p := range state.static.Players {
		if p.Name == name {
			return playerPalette[i%len(playerPalette)]
		}
	}
	return tcell.ColorWhite
}

func terrainGlyph(name string) glyph {
	switch name {
	case "Clear":
		return glyph{'.', tcell.StyleDefault.Foreground(tcell.ColorGray)}
	case "Water":
		return glyph{'~', tcell.StyleDefault.Foreground(tcell.ColorTeal)}
	case "Road":
		return glyph{'=', tcell.StyleDefault.Foreground(tcell.ColorOlive)}
	case "Buildings":
		return glyph{'#', tcell.StyleDefault.Foreground(tcell.ColorSilver)}
	default:
		return glyph{'?', tcell.StyleDefault.Foreground(tcell.ColorGray)}
	}
}

// actorGlyph picks an actor's map representation: reservable hosts draw
// as pads, other ground units as their type's initial, and aircraft as
// an uppercase initial once airborne, bold at cruise.
func (state *AppState) actorGlyph(a sim.ReplayActor) (rune, tcell.Style) {
	st := tcell.StyleDefault.Foreground(state.ownerColor(a.Owner))
	ut := state.types[a.Type]
	if ut == nil {
		return '?', st
	}
	if !ut.Aircraft {
		if ut.Reservable {
			return 'O', st
		}
		return rune(a.Type[0]), st
	}

	r := unicode.ToUpper(rune(a.Type[0]))
	c := math.CellContaining(a.Pos)
	_, elev := state.terrainAt(c)
	cls := flight.ClassifyAltitude(a.Pos.Z-elev, ut)
	switch {
	case cls.Grounded:
		r = unicode.ToLower(r)
	case cls.Cruising:
		st = st.Bold(true)
	}
	return r, st
}

func (state *AppState) place(grid []glyph, a sim.ReplayActor) {
	c := math.CellContaining(a.Pos)
	if !state.contains(c) {
		return
	}
	r, st := state.actorGlyph(a)
	if a.ID == state.selected {
		st = st.Reverse(true)
	}
	grid[int(c.Y)*int(state.static.Width)+int(c.X)] = glyph{r, st}
}

func (state *AppState) buildGrid(actors []sim.ReplayActor) []glyph {
	grid := make([]glyph, int(state.static.Width)*int(state.static.Height))
	for i := range grid {
		grid[i] = terrainGlyph(state.static.Terrain[i])
	}
	// Ground units first so aircraft draw over the host they sit on.
	for _, a := range actors {
		if ut := state.types[a.Type]; ut == nil || !ut.Aircraft {
			state.place(grid, a)
		}
	}
	for _, a := range actors {
		if ut := state.types[a.Type]; ut != nil && ut.Aircraft {
			state.place(grid, a)
		}
	}
	return grid
}

// render draws the UI.
func render(screen tcell.Screen, state *AppState) {
	screen.Clear()
	width, height := screen.Size()

	styleHeader := tcell.StyleDefault.Bold(true).Reverse(true)
	styleHelp := tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleLabel := tcell.StyleDefault.Foreground(tcell.ColorTeal)
	styleBad := tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)

	tick, actors, err := state.current()
	if err != nil {
		drawText(screen, 0, 0, width, styleBad, " "+err.Error())
		return
	}

	// Header
	title := fmt.Sprintf(" simview %s [%s] tick %d ",
		state.static.MapName, state.static.ScenarioName, tick)
	var play string
	if state.live() {
		play = fmt.Sprintf(" live seed %d %s ", *seed, playWord(!state.world.Paused))
	} else {
		play = fmt.Sprintf(" frame %d/%d %dx %s ",
			state.frame+1, state.replay.NumFrames(), state.speed, playWord(state.playing))
	}
	drawText(screen, 0, 0, width, styleHeader,
		title+strings.Repeat(" ", max(0, width-len(title)-len(play)))+play)

	// Map
	w, h := int(state.static.Width), int(state.static.Height)
	grid := state.buildGrid(actors)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			g := grid[y*w+x]
			st := g.st
			if state.cursor.X == int32(x) && state.cursor.Y == int32(y) {
				st = st.Underline(true).Bold(true)
			}
			screen.SetContent(mapLeft+x, mapTop+y, g.r, nil, st)
		}
	}

	// Selected aircraft panel to the right of the map
	px := mapLeft + w + 3
	drawText(screen, px, mapTop, width-px, styleLabel, "selected")
	if sel, ok := findActor(actors, state.selected); !ok {
		drawText(screen, px, mapTop+1, width-px, styleHelp, "none; Tab cycles aircraft")
	} else {
		c := math.CellContaining(sel.Pos)
		_, elev := state.terrainAt(c)
		lines := []string{
			fmt.Sprintf("#%d %s (%s)", sel.ID, sel.Type, sel.Owner),
			fmt.Sprintf("cell %v  alt %d", c, sel.Pos.Z-elev),
			fmt.Sprintf("hdg %s (%d)", sel.Facing.Compass(), sel.Facing),
			fmt.Sprintf("health %d  ammo %d", sel.Health, sel.Ammo),
			fmt.Sprintf("movement %v", sel.Movement),
		}
		if sel.Activity != "" {
			lines = append(lines, "activity "+sel.Activity)
		} else {
			lines = append(lines, "activity idle")
		}
		for i, ln := range lines {
			drawText(screen, px, mapTop+1+i, width-px, tcell.StyleDefault, ln)
		}
	}

	// Cursor line, status line, event feed
	infoY := mapTop + h + 1
	tname, elev := state.terrainAt(state.cursor)
	info := fmt.Sprintf(" %v %s elev %d", state.cursor, tname, elev)
	for _, a := range actors {
		if math.CellContaining(a.Pos) == state.cursor {
			info += fmt.Sprintf("  %s #%d (%s)", a.Type, a.ID, a.Owner)
		}
	}
	drawText(screen, 0, infoY, width, tcell.StyleDefault, info)

	if state.status != "" {
		st := tcell.StyleDefault
		if state.statusBad {
			st = styleBad
		}
		drawText(screen, 0, infoY+1, width, st, " "+state.status)
	}

	feedTop := infoY + 2
	if avail := height - 2 - feedTop; avail > 0 {
		drawText(screen, 0, feedTop, width, styleLabel, " events")
		k := min(state.feed.Size(), avail)
		for i := 0; i < k; i++ {
			ev := state.feed.Get(state.feed.Size() - k + i)
			drawText(screen, 2, feedTop+1+i, width-2, tcell.StyleDefault, ev.String())
		}
	}

	// Help
	help := " [Space]=Play/Pause [./,]=Step [<,>]=Seek 1s [g/G]=Start/End [+,-]=Speed [Tab]=Select [q]=Quit "
	if state.live() {
		help = " [Space]=Pause [.]=Step [Tab]=Select [Arrows]=Cursor [m]=Move [r/R]=RTB [l/L]=Land/Resume [s]=Stop [q]=Quit "
	}
	drawText(screen, 0, height-1, width, styleHelp, help)
}

func playWord(playing bool) string {
	if playing {
		return "playing"
	}
	return "paused"
}

func findActor(actors []sim.ReplayActor, id sim.ActorID) (sim.ReplayActor, bool) {
	for _, a := range actors {
		if a.ID == id {
			return a, true
		}
	}
	return sim.ReplayActor{}, false
}

func drawText(screen tcell.Screen, x, y, maxWidth int, style tcell.Style, text string) {
	col := 0
	for _, r := range text {
		if col >= maxWidth {
			break
		}
		screen.SetContent(x+col, y, r, nil, style)
		col++
	}
	// Fill remaining space
	for col < maxWidth {
		screen.SetContent(x+col, y, ' ', nil, style)
		col++
	}
}

///////////////////////////////////////////////////////////////////////////
// input

// handleEvent processes a tcell event and returns the appropriate action.
func handleEvent(ev tcell.Event, state *AppState, screen tcell.Screen) Action {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		screen.Sync()

	case *tcell.EventInterrupt:
		state.advance()

	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return ActionQuit

		case tcell.KeyTab:
			state.selectNext()

		case tcell.KeyUp:
			state.moveCursor(0, -1)
		case tcell.KeyDown:
			state.moveCursor(0, 1)
		case tcell.KeyLeft:
			state.moveCursor(-1, 0)
		case tcell.KeyRight:
			state.moveCursor(1, 0)

		case tcell.KeyRune:
			return handleRune(ev.Rune(), state)
		}
	}
	return ActionNone
}

func handleRune(r rune, state *AppState) Action {
	switch r {
	case 'q', 'Q':
		return ActionQuit

	case ' ':
		state.togglePause()
	case '.':
		state.stepForward()
	case ',':
		state.stepBack()
	case '<':
		state.seekSeconds(-1)
	case '>':
		state.seekSeconds(1)
	case 'g':
		if !state.live() {
			state.playing = false
			state.seekTo(0)
		}
	case 'G':
		if !state.live() {
			state.playing = false
			state.seekTo(state.replay.NumFrames() - 1)
		}
	case '+', '=':
		state.setSpeed(state.speed * 2)
	case '-':
		state.setSpeed(state.speed / 2)

	case 'm':
		cursor := state.cursor
		state.order(fmt.Sprintf("move to %v", cursor), func(id sim.ActorID) error {
			return state.world.DispatchMove(id, cursor)
		})
	case 'r':
		state.order("return to base", func(id sim.ActorID) error {
			return state.world.DispatchReturnToBase(id, false)
		})
	case 'R':
		state.order("return to base and land", func(id sim.ActorID) error {
			return state.world.DispatchReturnToBase(id, true)
		})
	case 'l':
		state.order("land now", func(id sim.ActorID) error {
			return state.world.DispatchLandNow(id, true)
		})
	case 'L':
		state.order("resume flight", func(id sim.ActorID) error {
			return state.world.DispatchLandNow(id, false)
		})
	case 's':
		state.order("stop", func(id sim.ActorID) error {
			return state.world.DispatchStop(id)
		})
	}
	return ActionNone
}

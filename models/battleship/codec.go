package battleship

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	cerr "github.com/saeidalz13/seabattle/internal/error"
)

// Saved sessions are a flat, whitespace separated text record read
// back strictly in the order it was written. Strings are quoted.

const MaxFieldSize = 26

type encoder struct {
	w   *bufio.Writer
	err error
}

func newEncoder(w io.Writer) *encoder {
	return &encoder{w: bufio.NewWriter(w)}
}

func (e *encoder) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}

func (e *encoder) quoted(s string) {
	e.printf("%s", strconv.Quote(s))
}

func (e *encoder) flush() error {
	if e.err != nil {
		return e.err
	}
	return e.w.Flush()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

type decoder struct {
	r *bufio.Reader
}

func newDecoder(r io.Reader) *decoder {
	return &decoder{r: bufio.NewReader(r)}
}

func (d *decoder) skipSpace() error {
	for {
		r, _, err := d.r.ReadRune()
		if err != nil {
			return err
		}
		if !unicode.IsSpace(r) {
			return d.r.UnreadRune()
		}
	}
}

func (d *decoder) token() (string, error) {
	if err := d.skipSpace(); err != nil {
		if errors.Is(err, io.EOF) {
			return "", cerr.ErrSaveData("unexpected end of data")
		}
		return "", err
	}

	var sb strings.Builder
	for {
		r, _, err := d.r.ReadRune()
		if errors.Is(err, io.EOF) {
			return sb.String(), nil
		}
		if err != nil {
			return "", err
		}
		if unicode.IsSpace(r) {
			return sb.String(), nil
		}
		sb.WriteRune(r)
	}
}

func (d *decoder) quoted() (string, error) {
	if err := d.skipSpace(); err != nil {
		return "", cerr.ErrSaveData("unexpected end of data, expected string")
	}

	first, _, err := d.r.ReadRune()
	if err != nil {
		return "", err
	}
	if first != '"' {
		return "", cerr.ErrSaveData("expected quoted string, got %q", first)
	}

	var sb strings.Builder
	sb.WriteRune('"')
	escaped := false
	for {
		r, _, err := d.r.ReadRune()
		if err != nil {
			return "", cerr.ErrSaveData("unterminated string")
		}
		sb.WriteRune(r)
		if escaped {
			escaped = false
			continue
		}
		if r == '\\' {
			escaped = true
			continue
		}
		if r == '"' {
			break
		}
	}

	s, err := strconv.Unquote(sb.String())
	if err != nil {
		return "", cerr.ErrSaveData("invalid string %s", sb.String())
	}
	return s, nil
}

func (d *decoder) int() (int, error) {
	tok, err := d.token()
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(tok)
	if err != nil {
		return 0, cerr.ErrSaveData("expected integer, got %q", tok)
	}
	return n, nil
}

func (d *decoder) intRange(lo, hi int, what string) (int, error) {
	n, err := d.int()
	if err != nil {
		return 0, err
	}
	if n < lo || n > hi {
		return 0, cerr.ErrSaveData("%s out of range: %d", what, n)
	}
	return n, nil
}

func (d *decoder) float() (float64, error) {
	tok, err := d.token()
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, cerr.ErrSaveData("expected number, got %q", tok)
	}
	return f, nil
}

func (d *decoder) bool() (bool, error) {
	n, err := d.intRange(0, 1, "flag")
	return n == 1, err
}

// Fleet: count followed by the sizes
func (f Fleet) encode(e *encoder) {
	e.printf("%d\n", len(f.sizes))
	for _, s := range f.sizes {
		e.printf("%d ", s)
	}
	e.printf("\n")
}

func decodeFleet(d *decoder) (Fleet, error) {
	n, err := d.intRange(1, MaxFleetShips, "fleet size")
	if err != nil {
		return Fleet{}, err
	}
	sizes := make([]int, n)
	for i := range sizes {
		if sizes[i], err = d.intRange(MinShipSize, MaxShipSize, "ship size"); err != nil {
			return Fleet{}, err
		}
	}
	return NewFleet(sizes...)
}

func (g Grid) encode(e *encoder) {
	for y := range g {
		for x := range g[y] {
			c := g[y][x]
			e.printf("%d %d %d ", c.State, c.ShipIndex, c.SegmentIndex)
		}
		e.printf("\n")
	}
}

func decodeGrid(d *decoder, width, height int) (Grid, error) {
	grid := NewGrid(width, height, CellUnknown)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			state, err := d.intRange(int(CellUnknown), int(CellShip), "cell state")
			if err != nil {
				return nil, err
			}
			shipIdx, err := d.int()
			if err != nil {
				return nil, err
			}
			segmentIdx, err := d.int()
			if err != nil {
				return nil, err
			}

			if CellState(state) == CellShip {
				grid[y][x].setShip(shipIdx, segmentIdx)
			} else {
				grid[y][x] = NewCell(CellState(state))
			}
		}
	}
	return grid, nil
}

func (sh *Ship) encode(e *encoder) {
	e.printf("%d %d %d %d %d %d %d\n", sh.start.X, sh.start.Y, sh.Size(), sh.orientation, sh.number, sh.destroyedSegments, sh.hits)
	for _, s := range sh.segments {
		e.printf("%d ", s)
	}
	e.printf("\n")
}

func decodeShip(d *decoder) (*Ship, error) {
	var vals [7]int
	for i := range vals {
		v, err := d.int()
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	x, y, size, orientation, number, hits := vals[0], vals[1], vals[2], vals[3], vals[4], vals[6]
	if orientation != int(Horizontal) && orientation != int(Vertical) {
		return nil, cerr.ErrSaveData("invalid orientation %d", orientation)
	}

	ship, err := NewShip(NewPosition(x, y), Orientation(orientation), size, number)
	if err != nil {
		return nil, cerr.ErrSaveData("invalid ship: %v", err)
	}

	states := make([]SegmentState, size)
	for i := range states {
		s, err := d.intRange(int(SegmentIntact), int(SegmentDestroyed), "segment state")
		if err != nil {
			return nil, err
		}
		states[i] = SegmentState(s)
	}
	ship.setSegments(states)
	ship.hits = hits
	return ship, nil
}

func (pf *PlayingField) encode(e *encoder) {
	e.printf("%d %d\n", pf.width, pf.height)
	e.printf("%d %d %d\n", len(pf.ships), boolToInt(pf.replacementMode), pf.orientation)
	pf.real.encode(e)
	pf.visible.encode(e)
	for y := range pf.scanned {
		for x := range pf.scanned[y] {
			e.printf("%d ", boolToInt(pf.scanned[y][x]))
		}
		e.printf("\n")
	}

	e.printf("%d\n", len(pf.ships))
	for _, s := range pf.ships {
		s.encode(e)
	}
	e.printf("%d\n", len(pf.removed))
	for _, s := range pf.removed {
		s.encode(e)
	}
}

func decodePlayingField(d *decoder) (*PlayingField, error) {
	width, err := d.intRange(1, MaxFieldSize, "field width")
	if err != nil {
		return nil, err
	}
	height, err := d.intRange(1, MaxFieldSize, "field height")
	if err != nil {
		return nil, err
	}

	pf := NewPlayingField(width, height)

	count, err := d.intRange(0, width*height, "ship count")
	if err != nil {
		return nil, err
	}
	if pf.replacementMode, err = d.bool(); err != nil {
		return nil, err
	}
	orientation, err := d.intRange(int(Horizontal), int(Vertical), "orientation")
	if err != nil {
		return nil, err
	}
	pf.orientation = Orientation(orientation)

	if pf.real, err = decodeGrid(d, width, height); err != nil {
		return nil, err
	}
	if pf.visible, err = decodeGrid(d, width, height); err != nil {
		return nil, err
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if pf.scanned[y][x], err = d.bool(); err != nil {
				return nil, err
			}
		}
	}

	shipCount, err := d.intRange(0, width*height, "ship list length")
	if err != nil {
		return nil, err
	}
	if shipCount != count {
		return nil, cerr.ErrSaveData("ship count mismatch: %d != %d", count, shipCount)
	}
	for i := 0; i < shipCount; i++ {
		ship, err := decodeShip(d)
		if err != nil {
			return nil, err
		}
		pf.ships = append(pf.ships, ship)
	}

	removedCount, err := d.intRange(0, MaxFleetShips, "removed ship count")
	if err != nil {
		return nil, err
	}
	for i := 0; i < removedCount; i++ {
		ship, err := decodeShip(d)
		if err != nil {
			return nil, err
		}
		pf.removed = append(pf.removed, ship)
	}

	if err := pf.validate(); err != nil {
		return nil, err
	}
	return pf, nil
}

// validate checks that the grids and the ship list agree
// with each other after decoding.
func (pf *PlayingField) validate() error {
	occupied := 0
	for i, ship := range pf.ships {
		if ship.number != i {
			return cerr.ErrSaveData("ship %d has number %d", i, ship.number)
		}
		for seg, c := range ship.Cells() {
			if !pf.IsValid(c.X, c.Y) {
				return cerr.ErrSaveData("ship %d out of field", i)
			}
			cell := pf.real[c.Y][c.X]
			if !cell.IsShip() || cell.ShipIndex != i || cell.SegmentIndex != seg {
				return cerr.ErrSaveData("real grid does not match ship %d at %d,%d", i, c.X, c.Y)
			}
			occupied++
		}
	}

	realShipCells := 0
	for y := range pf.real {
		for x := range pf.real[y] {
			if pf.real[y][x].IsShip() {
				realShipCells++
			}
			if err := pf.validateVisible(x, y); err != nil {
				return err
			}
		}
	}
	if realShipCells != occupied {
		return cerr.ErrSaveData("real grid holds %d ship cells, ships cover %d", realShipCells, occupied)
	}
	if pf.replacementMode && len(pf.removed) == 0 {
		pf.replacementMode = false
	}
	return nil
}

// A revealed ship cell must sit over a hit segment of the same ship,
// and revealed water must not hide a ship.
func (pf *PlayingField) validateVisible(x, y int) error {
	vis, rc := pf.visible[y][x], pf.real[y][x]
	switch {
	case vis.IsShip():
		if vis.ShipIndex < 0 || vis.ShipIndex >= len(pf.ships) {
			return cerr.ErrSaveData("visible cell %d,%d points to unknown ship %d", x, y, vis.ShipIndex)
		}
		if !rc.IsShip() || rc.ShipIndex != vis.ShipIndex || rc.SegmentIndex != vis.SegmentIndex {
			return cerr.ErrSaveData("visible cell %d,%d shows a ship the real grid does not hold", x, y)
		}
		if state, ok := pf.ships[vis.ShipIndex].SegmentState(vis.SegmentIndex); !ok || state == SegmentIntact {
			return cerr.ErrSaveData("visible cell %d,%d reveals an intact segment", x, y)
		}

	case vis.IsEmpty():
		if rc.IsShip() {
			return cerr.ErrSaveData("visible cell %d,%d shows water over a ship", x, y)
		}
	}
	return nil
}

func (ps PlayerStats) encode(e *encoder) {
	e.quoted(ps.Name)
	e.printf(" %d %d %g %d %d\n", ps.Hits, ps.Shots, ps.Accuracy, ps.Destroyed, ps.Remaining)
}

func decodePlayerStats(d *decoder) (PlayerStats, error) {
	var ps PlayerStats
	var err error
	if ps.Name, err = d.quoted(); err != nil {
		return ps, err
	}
	if ps.Hits, err = d.intRange(0, MaxFieldSize*MaxFieldSize, "hits"); err != nil {
		return ps, err
	}
	if ps.Shots, err = d.intRange(0, MaxFieldSize*MaxFieldSize, "shots"); err != nil {
		return ps, err
	}
	if ps.Accuracy, err = d.float(); err != nil {
		return ps, err
	}
	if ps.Destroyed, err = d.intRange(0, MaxFleetShips, "destroyed ships"); err != nil {
		return ps, err
	}
	if ps.Remaining, err = d.intRange(0, MaxFleetShips, "remaining ships"); err != nil {
		return ps, err
	}
	return ps, nil
}

func (ts TotalPlayerStats) encode(e *encoder) {
	e.quoted(ts.Name)
	e.printf(" %d %d %g %d %d\n", ts.TotalHits, ts.TotalShots, ts.Accuracy, ts.Rounds, ts.Wins)
}

func decodeTotalStats(d *decoder) (TotalPlayerStats, error) {
	var ts TotalPlayerStats
	var err error
	if ts.Name, err = d.quoted(); err != nil {
		return ts, err
	}
	vals := []*int{&ts.TotalHits, &ts.TotalShots}
	for _, v := range vals {
		if *v, err = d.int(); err != nil {
			return ts, err
		}
	}
	if ts.Accuracy, err = d.float(); err != nil {
		return ts, err
	}
	if ts.Rounds, err = d.int(); err != nil {
		return ts, err
	}
	if ts.Wins, err = d.int(); err != nil {
		return ts, err
	}
	if ts.TotalHits < 0 || ts.TotalShots < 0 || ts.Rounds < 0 || ts.Wins < 0 {
		return ts, cerr.ErrSaveData("negative total statistics for %q", ts.Name)
	}
	return ts, nil
}

// Encode writes the whole session in save order.
func (gs *GameState) Encode(w io.Writer) error {
	if gs.PlayerField == nil || gs.EnemyField == nil {
		return cerr.ErrSaveData("game state has no field snapshots")
	}

	e := newEncoder(w)
	e.quoted(gs.SaveDate)
	e.printf("\n%d\n", gs.Status)
	e.printf("%d %d\n", gs.RoundResult, boolToInt(gs.PlayerTurn))
	e.printf("%d\n", gs.Round)
	e.printf("%d %d\n", gs.Cursor.X, gs.Cursor.Y)
	gs.PlayerStats.encode(e)
	gs.EnemyStats.encode(e)
	gs.TotalPlayer.encode(e)
	gs.TotalEnemy.encode(e)
	gs.Fleet.encode(e)
	e.printf("%d %d\n", gs.PlayerField.width, gs.PlayerField.height)
	e.printf("%d %d\n", gs.EnemyField.width, gs.EnemyField.height)
	gs.PlayerField.encode(e)
	gs.EnemyField.encode(e)

	e.printf("%d\n", len(gs.Abilities))
	for _, k := range gs.Abilities {
		e.quoted(k.String())
		e.printf("\n")
	}
	return e.flush()
}

// DecodeGameState reads a session written by Encode. Nothing is
// returned unless the whole record parsed and validated.
func DecodeGameState(r io.Reader) (GameState, error) {
	d := newDecoder(r)
	var gs GameState
	var err error

	if gs.SaveDate, err = d.quoted(); err != nil {
		return GameState{}, err
	}
	status, err := d.intRange(0, int(statusCount)-1, "status")
	if err != nil {
		return GameState{}, err
	}
	gs.Status = GameStatus(status)

	result, err := d.intRange(int(RoundUndecided), int(RoundPlayerWon), "round result")
	if err != nil {
		return GameState{}, err
	}
	gs.RoundResult = RoundResult(result)
	if gs.PlayerTurn, err = d.bool(); err != nil {
		return GameState{}, err
	}
	if gs.Round, err = d.intRange(1, 1<<30, "round"); err != nil {
		return GameState{}, err
	}
	if gs.Cursor.X, err = d.int(); err != nil {
		return GameState{}, err
	}
	if gs.Cursor.Y, err = d.int(); err != nil {
		return GameState{}, err
	}

	if gs.PlayerStats, err = decodePlayerStats(d); err != nil {
		return GameState{}, err
	}
	if gs.EnemyStats, err = decodePlayerStats(d); err != nil {
		return GameState{}, err
	}
	if gs.TotalPlayer, err = decodeTotalStats(d); err != nil {
		return GameState{}, err
	}
	if gs.TotalEnemy, err = decodeTotalStats(d); err != nil {
		return GameState{}, err
	}
	if gs.Fleet, err = decodeFleet(d); err != nil {
		return GameState{}, err
	}

	var dims [4]int
	for i := range dims {
		if dims[i], err = d.intRange(1, MaxFieldSize, "field size"); err != nil {
			return GameState{}, err
		}
	}

	if gs.PlayerField, err = decodePlayingField(d); err != nil {
		return GameState{}, err
	}
	if gs.EnemyField, err = decodePlayingField(d); err != nil {
		return GameState{}, err
	}
	if gs.PlayerField.width != dims[0] || gs.PlayerField.height != dims[1] ||
		gs.EnemyField.width != dims[2] || gs.EnemyField.height != dims[3] {
		return GameState{}, cerr.ErrSaveData("field size header does not match field data")
	}

	n, err := d.intRange(0, 1<<16, "ability count")
	if err != nil {
		return GameState{}, err
	}
	gs.Abilities = make([]AbilityKind, 0, n)
	for i := 0; i < n; i++ {
		name, err := d.quoted()
		if err != nil {
			return GameState{}, err
		}
		kind, ok := AbilityKindByName(name)
		if !ok {
			return GameState{}, cerr.ErrSaveData("unknown ability %q", name)
		}
		gs.Abilities = append(gs.Abilities, kind)
	}

	return gs, nil
}

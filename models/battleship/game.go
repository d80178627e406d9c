package battleship

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	cerr "github.com/saeidalz13/seabattle/internal/error"
)

const (
	SaveDateLayout = "2006-01-02 15:04:05"

	// How many times a whole fleet is thrown on a cleared field
	// before the fleet is declared impossible
	fleetPlacementRetries = 5
)

type Option func(*Game) error

func WithRand(rng Rand) Option {
	return func(g *Game) error {
		if rng == nil {
			return errors.New("random source cannot be nil")
		}
		g.rng = rng
		return nil
	}
}

func WithClock(now func() time.Time) Option {
	return func(g *Game) error {
		if now == nil {
			return errors.New("clock cannot be nil")
		}
		g.now = now
		return nil
	}
}

func WithUuid(id string) Option {
	return func(g *Game) error {
		if id == "" {
			return errors.New("game uuid cannot be empty")
		}
		g.Uuid = id
		return nil
	}
}

// Game runs the rounds between the human and the computer. It is not
// safe for concurrent use; the owner serialises calls.
type Game struct {
	Uuid string

	settings Settings
	state    GameState
	human    *Player
	ai       *Player

	// Status to go back to when a pause ends
	resumeStatus GameStatus

	rng Rand
	now func() time.Time
}

// AI shot resolved during the enemy turn
type Shot struct {
	X      int        `json:"x"`
	Y      int        `json:"y"`
	Result ShotResult `json:"result"`
}

type StatsSnapshot struct {
	Round       int              `json:"round"`
	RoundResult RoundResult      `json:"round_result"`
	Player      PlayerStats      `json:"player"`
	Enemy       PlayerStats      `json:"enemy"`
	TotalPlayer TotalPlayerStats `json:"total_player"`
	TotalEnemy  TotalPlayerStats `json:"total_enemy"`
}

type ShipInfo struct {
	Number      int         `json:"number"`
	IsPlaced    bool        `json:"is_placed"`
	Start       Position    `json:"start"`
	Orientation Orientation `json:"orientation"`
	Size        int         `json:"size"`
}

func NewGame(settings Settings, opts ...Option) (*Game, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	g := &Game{
		Uuid:     uuid.NewString()[:6],
		settings: settings,
		state:    NewGameState(settings.PlayerName, settings.EnemyName),
		now:      time.Now,
	}
	for _, opt := range opts {
		if err := opt(g); err != nil {
			return nil, err
		}
	}
	if g.rng == nil {
		g.rng = newTimeSeededRand()
	}

	if err := g.startRound(false); err != nil {
		return nil, err
	}
	return g, nil
}

// startRound deals new fields to both sides. With reuse set the previous
// layouts are kept and only the damage is wiped.
func (g *Game) startRound(reuse bool) error {
	size := g.settings.FieldSize
	fleet := g.settings.Fleet

	var prevHuman, prevAI *PlayingField
	if reuse && g.human != nil && g.ai != nil {
		prevHuman, prevAI = g.human.field, g.ai.field
	}

	g.human = NewPlayer(g.settings.PlayerName, PlayerHuman, fleet, size, size, NewAbilityManager(g.rng))
	g.ai = NewPlayer(g.settings.EnemyName, PlayerAI, fleet, size, size, nil)
	g.state.Fleet = fleet
	g.state.Cursor = Position{}

	if prevHuman != nil && prevAI != nil {
		prevHuman.ReturnStartState()
		prevAI.ReturnStartState()
		g.human.setField(prevHuman)
		g.ai.setField(prevAI)
		g.setStatus(StatusPlayerTurn)
		g.updateScore()
		return nil
	}

	if g.settings.PlacementMode == PlacementManual {
		g.setStatus(StatusPlacingShips)
		g.updateScore()
		return nil
	}

	if err := g.placeFleet(g.human); err != nil {
		return g.impossibleFleet(err)
	}
	if err := g.placeFleet(g.ai); err != nil {
		return g.impossibleFleet(err)
	}
	g.setStatus(StatusPlayerTurn)
	g.updateScore()
	return nil
}

func (g *Game) placeFleet(p *Player) error {
	var err error
	for try := 0; try < fleetPlacementRetries; try++ {
		p.field.ClearField()
		if err = p.PlaceShipsRandomly(g.rng, g.settings.MaxPlacementAttempts); err == nil {
			return nil
		}
	}
	p.field.ClearField()
	return err
}

// impossibleFleet falls back to the default field and fleet so the
// next round can be dealt, and reports the fleet that did not fit.
func (g *Game) impossibleFleet(cause error) error {
	g.settings.FieldSize = DefaultFieldSize
	g.settings.Fleet = StandardFleet()
	g.human = NewPlayer(g.settings.PlayerName, PlayerHuman, g.settings.Fleet, DefaultFieldSize, DefaultFieldSize, NewAbilityManager(g.rng))
	g.ai = NewPlayer(g.settings.EnemyName, PlayerAI, g.settings.Fleet, DefaultFieldSize, DefaultFieldSize, nil)
	g.state.Fleet = g.settings.Fleet
	g.setStatus(StatusPlacingShips)
	g.updateScore()

	if errors.Is(cause, cerr.ErrImpossibleFleet) {
		return cause
	}
	return fmt.Errorf("%w: %v", cerr.ErrImpossibleFleet, cause)
}

func (g *Game) setStatus(s GameStatus) {
	g.state.Status = s
	g.state.PlayerTurn = s != StatusEnemyTurn
}

func (g *Game) requireStatus(action string, allowed ...GameStatus) error {
	for _, s := range allowed {
		if g.state.Status == s {
			return nil
		}
	}
	return cerr.ErrStatus(action, g.state.Status)
}

// CurrentShip is the size and orientation of the ship the next
// PlaceShip call puts down. False once the whole fleet is placed.
func (g *Game) CurrentShip() (int, Orientation, bool) {
	field := g.human.field
	if size, ok := field.PendingShipSize(); ok {
		return size, field.Orientation(), true
	}
	size, err := g.settings.Fleet.ShipSize(field.Count())
	if err != nil {
		return 0, field.Orientation(), false
	}
	return size, field.Orientation(), true
}

func (g *Game) PlaceShip(x, y int) error {
	if err := g.requireStatus("place ship", StatusPlacingShips); err != nil {
		return err
	}
	size, orientation, ok := g.CurrentShip()
	if !ok {
		return cerr.ErrAllShipsPlaced
	}
	if err := g.human.field.PlaceShip(x, y, size, orientation); err != nil {
		return err
	}

	if g.human.IsAllShipsPlaced() {
		return g.finishPlacement()
	}
	return nil
}

func (g *Game) RotateShip() error {
	if err := g.requireStatus("rotate ship", StatusPlacingShips); err != nil {
		return err
	}
	g.human.field.RotateOrientation()
	return nil
}

func (g *Game) ClearShip(x, y int) error {
	if err := g.requireStatus("clear ship", StatusPlacingShips); err != nil {
		return err
	}
	return g.human.field.ClearShip(x, y)
}

// PlaceShipsRandomly throws the whole human fleet at random and starts
// the battle.
func (g *Game) PlaceShipsRandomly() error {
	if err := g.requireStatus("place ships randomly", StatusPlacingShips); err != nil {
		return err
	}
	if err := g.placeFleet(g.human); err != nil {
		return g.impossibleFleet(err)
	}
	return g.finishPlacement()
}

// finishPlacement hides the computer fleet once the human one is down.
func (g *Game) finishPlacement() error {
	if err := g.placeFleet(g.ai); err != nil {
		return g.impossibleFleet(err)
	}
	g.setStatus(StatusPlayerTurn)
	g.updateScore()
	return nil
}

// Attack fires a regular shot at the enemy field. A redundant shot is
// reported as ShotAlreadyResolved and keeps the turn.
func (g *Game) Attack(x, y int) (ShotResult, error) {
	if err := g.requireStatus("attack", StatusPlayerTurn); err != nil {
		return ShotOutOfBounds, err
	}

	res, err := g.human.MakeMove(g.ai, x, y)
	if err != nil {
		return res, err
	}
	if res == ShotAlreadyResolved {
		return res, nil
	}

	g.updateTotalStats()
	g.updateScore()
	g.setStatus(StatusEnemyTurn)
	g.checkWinCondition()
	return res, nil
}

// UseAbility fires the front ability of the queue. A successful use
// passes the turn; a failed one is consumed and the turn is kept.
func (g *Game) UseAbility(x, y int) (AbilityResult, error) {
	if err := g.requireStatus("use ability", StatusPlayerTurn); err != nil {
		return AbilityResult{Coords: NoPosition}, err
	}

	res, err := g.human.UseAbility(g.ai, x, y)
	g.updateScore()
	if err != nil {
		return res, err
	}

	g.setStatus(StatusEnemyTurn)
	g.checkWinCondition()
	return res, nil
}

// MakeAIMove lets the computer fire one shot. The turn goes back to
// the human only after a valid shot.
func (g *Game) MakeAIMove() (Shot, error) {
	if err := g.requireStatus("enemy move", StatusEnemyTurn); err != nil {
		return Shot{X: -1, Y: -1, Result: ShotOutOfBounds}, err
	}

	target, ok := ChooseTarget(g.human.field, g.rng)
	if !ok {
		return Shot{X: -1, Y: -1, Result: ShotOutOfBounds}, cerr.ErrNoTargets
	}

	res, err := g.ai.MakeMove(g.human, target.X, target.Y)
	shot := Shot{X: target.X, Y: target.Y, Result: res}
	if err != nil {
		return shot, err
	}

	g.updateTotalStats()
	g.updateScore()
	g.checkWinCondition()

	if res != ShotAlreadyResolved && g.state.Status == StatusEnemyTurn {
		g.setStatus(StatusPlayerTurn)
	}
	return shot, nil
}

// updateTotalStats adds what happened since the last snapshot to the
// cumulative totals. Must run before updateScore refreshes the snapshot.
func (g *Game) updateTotalStats() {
	tp := &g.state.TotalPlayer
	tp.TotalHits += g.human.Hits() - g.state.PlayerStats.Hits
	tp.TotalShots += g.human.Shots() - g.state.PlayerStats.Shots
	tp.updateAccuracy()

	te := &g.state.TotalEnemy
	te.TotalHits += g.ai.Hits() - g.state.EnemyStats.Hits
	te.TotalShots += g.ai.Shots() - g.state.EnemyStats.Shots
	te.updateAccuracy()
}

func (g *Game) updateScore() {
	g.state.PlayerStats = statsOf(g.human)
	g.state.EnemyStats = statsOf(g.ai)
}

func statsOf(p *Player) PlayerStats {
	return PlayerStats{
		Name:      p.Name(),
		Hits:      p.Hits(),
		Shots:     p.Shots(),
		Accuracy:  p.Accuracy(),
		Destroyed: p.DestroyedShips(),
		Remaining: p.RemainingShips(),
	}
}

func (g *Game) checkWinCondition() {
	switch {
	case g.ai.IsAllShipsDestroyed():
		g.endRound(RoundPlayerWon)
	case g.human.IsAllShipsDestroyed():
		g.endRound(RoundEnemyWon)
	}
}

// endRound records the winner once per round.
func (g *Game) endRound(result RoundResult) {
	if g.state.RoundResult != RoundUndecided || g.state.Status == StatusGameOver {
		return
	}

	g.state.RoundResult = result
	if result == RoundPlayerWon {
		g.state.TotalPlayer.Wins++
	} else {
		g.state.TotalEnemy.Wins++
	}
	g.state.TotalPlayer.Rounds++
	g.state.TotalEnemy.Rounds++
	g.setStatus(StatusWaitingNextRound)
}

func (g *Game) AdvanceRound() error {
	if err := g.requireStatus("advance round", StatusWaitingNextRound, StatusPlayerWon, StatusEnemyWon); err != nil {
		return err
	}
	g.state.Round++
	g.state.ResetForNewRound()
	return g.startRound(g.settings.KeepLayout)
}

// NewGame starts over with a new field size and fleet, wiping the
// cumulative totals. A zero fieldSize or fleet keeps the current one.
func (g *Game) NewGame(fieldSize int, fleet Fleet) error {
	next := g.settings
	if fieldSize != 0 {
		next.FieldSize = fieldSize
	}
	if !fleet.IsZero() {
		next.Fleet = fleet
	}
	if err := next.Validate(); err != nil {
		if errors.Is(err, cerr.ErrImpossibleFleet) {
			g.state.ResetForNewGame()
			return g.impossibleFleet(err)
		}
		return err
	}

	g.settings = next
	g.state.ResetForNewGame()
	return g.startRound(false)
}

func (g *Game) TogglePause() error {
	if g.state.Status == StatusPaused {
		g.setStatus(g.resumeStatus)
		return nil
	}
	if err := g.requireStatus("pause", StatusPlayerTurn, StatusEnemyTurn, StatusPlacingShips); err != nil {
		return err
	}
	g.resumeStatus = g.state.Status
	g.setStatus(StatusPaused)
	return nil
}

func (g *Game) Exit() {
	g.setStatus(StatusGameOver)
}

// SetStatus moves the state machine to one of the dialog statuses that
// collaborators drive on their own.
func (g *Game) SetStatus(s GameStatus) error {
	if !s.IsValid() {
		return cerr.ErrStatus("set status", s)
	}
	g.setStatus(s)
	return nil
}

func (g *Game) MoveCursorBy(dx, dy int) {
	field := g.ai.field
	g.state.MoveCursorBy(dx, dy, field.Width(), field.Height())
}

func (g *Game) SetCursor(x, y int) {
	field := g.ai.field
	g.state.Cursor = NewPosition(clamp(x, 0, field.Width()-1), clamp(y, 0, field.Height()-1))
}

func (g *Game) snapshot() GameState {
	gs := g.state
	gs.SaveDate = g.now().Format(SaveDateLayout)
	gs.Fleet = g.settings.Fleet
	gs.PlayerField = g.human.field.Clone()
	gs.EnemyField = g.ai.field.Clone()
	gs.Abilities = g.human.abilities.Kinds()
	return gs
}

func (g *Game) Save(w io.Writer) error {
	if !g.state.CanSave() {
		return cerr.ErrStatus("save", g.state.Status)
	}
	gs := g.snapshot()
	if err := gs.Encode(w); err != nil {
		return err
	}
	g.state.SaveDate = gs.SaveDate
	return nil
}

// Load replaces the session with a saved one. The current session is
// left untouched unless the whole record decodes and validates.
func (g *Game) Load(r io.Reader) error {
	if !g.state.CanLoad() {
		return cerr.ErrStatus("load", g.state.Status)
	}

	gs, err := DecodeGameState(r)
	if err != nil {
		return err
	}
	if gs.PlayerField.Width() != gs.EnemyField.Width() || gs.PlayerField.Height() != gs.EnemyField.Height() {
		return cerr.ErrSaveData("fields differ in size")
	}
	if gs.PlayerField.Count()+len(gs.PlayerField.removed) > gs.Fleet.Count() || gs.EnemyField.Count() > gs.Fleet.Count() {
		return cerr.ErrSaveData("more ships on the field than in the fleet")
	}

	settings := g.settings
	settings.FieldSize = gs.PlayerField.Width()
	settings.Fleet = gs.Fleet
	settings.PlayerName = gs.PlayerStats.Name
	settings.EnemyName = gs.EnemyStats.Name

	abilities := NewAbilityManager(g.rng)
	abilities.SetQueue(gs.Abilities)

	human := NewPlayer(settings.PlayerName, PlayerHuman, gs.Fleet, settings.FieldSize, settings.FieldSize, abilities)
	human.setField(gs.PlayerField)
	human.setCounters(gs.PlayerStats.Destroyed, gs.PlayerStats.Hits, gs.PlayerStats.Shots)

	ai := NewPlayer(settings.EnemyName, PlayerAI, gs.Fleet, settings.FieldSize, settings.FieldSize, nil)
	ai.setField(gs.EnemyField)
	ai.setCounters(gs.EnemyStats.Destroyed, gs.EnemyStats.Hits, gs.EnemyStats.Shots)

	gs.PlayerField, gs.EnemyField, gs.Abilities = nil, nil, nil
	g.settings = settings
	g.human = human
	g.ai = ai
	g.state = gs
	if g.state.Status == StatusPaused {
		g.resumeStatus = StatusPlayerTurn
	}
	return nil
}

// RestoreGame builds a game straight from a saved record.
func RestoreGame(settings Settings, r io.Reader, opts ...Option) (*Game, error) {
	g, err := NewGame(settings, opts...)
	if err != nil {
		return nil, err
	}
	g.setStatus(StatusGameOver)
	if err := g.Load(r); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *Game) Settings() Settings         { return g.settings }
func (g *Game) Status() GameStatus         { return g.state.Status }
func (g *Game) RoundResult() RoundResult   { return g.state.RoundResult }
func (g *Game) Round() int                 { return g.state.Round }
func (g *Game) SaveDate() string           { return g.state.SaveDate }
func (g *Game) Cursor() Position           { return g.state.Cursor }
func (g *Game) IsPlayerTurn() bool         { return g.state.PlayerTurn }
func (g *Game) CanSave() bool              { return g.state.CanSave() }
func (g *Game) CanLoad() bool              { return g.state.CanLoad() }
func (g *Game) Human() *Player             { return g.human }
func (g *Game) Enemy() *Player             { return g.ai }
func (g *Game) PlayerField() *PlayingField { return g.human.field }
func (g *Game) EnemyField() *PlayingField  { return g.ai.field }
func (g *Game) PlayerShips() []Ship        { return g.human.field.Ships() }
func (g *Game) FleetSummary() []string     { return g.settings.Fleet.Summary() }
func (g *Game) NextAbility() string        { return g.human.abilities.PeekNextAbility() }
func (g *Game) AbilityNames() []string     { return g.human.abilities.Names() }

// IsRunning is false while the game is over, paused or between rounds.
func (g *Game) IsRunning() bool {
	switch g.state.Status {
	case StatusGameOver, StatusPaused, StatusPlayerWon, StatusEnemyWon, StatusWaitingNextRound:
		return false
	}
	return true
}

func (g *Game) Stats() StatsSnapshot {
	return StatsSnapshot{
		Round:       g.state.Round,
		RoundResult: g.state.RoundResult,
		Player:      g.state.PlayerStats,
		Enemy:       g.state.EnemyStats,
		TotalPlayer: g.state.TotalPlayer,
		TotalEnemy:  g.state.TotalEnemy,
	}
}

// ShipsInfo lists every fleet slot of the human, placed or not.
func (g *Game) ShipsInfo() []ShipInfo {
	fleet := g.settings.Fleet
	field := g.human.field

	infos := make([]ShipInfo, fleet.Count())
	for i := range infos {
		size, _ := fleet.ShipSize(i)
		infos[i] = ShipInfo{Number: i + 1, Start: NoPosition, Orientation: Horizontal, Size: size}

		if ship, err := field.Ship(i); err == nil {
			infos[i].IsPlaced = true
			infos[i].Start = ship.Start()
			infos[i].Orientation = ship.Orientation()
			infos[i].Size = ship.Size()
		}
	}
	return infos
}

func percent(hits, shots int) string {
	if shots == 0 {
		return "-"
	}
	return fmt.Sprintf("%d%%", hits*100/shots)
}

// Statistics renders the round and cumulative statistics as text.
func (g *Game) Statistics() string {
	var sb strings.Builder
	st := g.state

	fmt.Fprintf(&sb, "ROUND %d STATISTICS\n", st.Round)
	winner := "undecided"
	switch st.RoundResult {
	case RoundPlayerWon:
		winner = st.PlayerStats.Name
	case RoundEnemyWon:
		winner = st.EnemyStats.Name
	}
	fmt.Fprintf(&sb, "Winner: %s\n\n", winner)

	for _, p := range []PlayerStats{st.PlayerStats, st.EnemyStats} {
		fmt.Fprintf(&sb, "%-10s| Hits: %-3d| Shots: %-3d| Accuracy: %-5s| Destroyed: %-2d| Remaining: %d\n",
			p.Name, p.Hits, p.Shots, percent(p.Hits, p.Shots), p.Destroyed, p.Remaining)
	}

	sb.WriteString("\nOVERALL STATISTICS\n")
	fmt.Fprintf(&sb, "Score: %d : %d\n\n", st.TotalPlayer.Wins, st.TotalEnemy.Wins)

	for _, p := range []TotalPlayerStats{st.TotalPlayer, st.TotalEnemy} {
		fmt.Fprintf(&sb, "%-10s| Hits: %-3d| Shots: %-3d| Accuracy: %-5s| Wins: %-2d| Rounds: %d\n",
			p.Name, p.TotalHits, p.TotalShots, percent(p.TotalHits, p.TotalShots), p.Wins, p.Rounds)
	}
	return sb.String()
}

func (g *Game) Help() string {
	return HelpText
}

const HelpText = `OBJECTIVE:
   Be the first to destroy every enemy ship

RULES:
   - Each side has a fleet of ships of different sizes
   - Ships are placed on a hidden field and may not touch, not even diagonally
   - Players take turns firing at coordinates
   - A hit is marked on the enemy field
   - A segment is destroyed after taking 2 points of damage
   - A regular attack deals 1 point of damage
   - The computer only uses regular attacks
   - A ship is sunk when all of its segments are destroyed

FLOW:
   1. Place your ships on your own field
   2. Take turns hunting the enemy ships
   3. Use special abilities: double damage, scanner, shelling
   4. Win by destroying the whole enemy fleet

ABILITIES:
   - Every round starts with 3 abilities, one of each kind, in random order
   - Sinking an enemy ship adds 1 random ability to the queue
   - Double Damage: the attack deals 2 damage
   - Scanner: reveals whether ships are present in a 3x3 area
   - Shelling: deals 1 damage to a random segment of a living enemy ship

SAVING:
   - The game can be saved outside of the enemy turn
   - A saved game can be loaded to continue later
   - Statistics and progress are saved too

GAME:
   - A game is a sequence of rounds
   - Rounds can be replayed with new or kept settings
   - Field size and fleet can be changed when a new game starts
   - Statistics show the results over all rounds`

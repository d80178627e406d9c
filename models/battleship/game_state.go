package battleship

type GameStatus uint8

const (
	StatusPlacingShips GameStatus = iota
	StatusPlayerTurn
	StatusEnemyTurn
	StatusPlayerWon
	StatusEnemyWon
	StatusPaused
	StatusGameOver
	StatusSetField
	StatusSetSizes
	StatusSetPlacementMode
	StatusSettingShips
	StatusAskExit
	StatusAskSave
	StatusWaitingNextRound
	StatusSelectSaveSlot
	StatusSelectLoadSlot

	statusCount
)

var statusNames = [statusCount]string{
	StatusPlacingShips:     "placing_ships",
	StatusPlayerTurn:       "player_turn",
	StatusEnemyTurn:        "enemy_turn",
	StatusPlayerWon:        "player_won",
	StatusEnemyWon:         "enemy_won",
	StatusPaused:           "paused",
	StatusGameOver:         "game_over",
	StatusSetField:         "set_field",
	StatusSetSizes:         "set_sizes",
	StatusSetPlacementMode: "set_placement_mode",
	StatusSettingShips:     "setting_ships",
	StatusAskExit:          "ask_exit",
	StatusAskSave:          "ask_save",
	StatusWaitingNextRound: "waiting_next_round",
	StatusSelectSaveSlot:   "select_save_slot",
	StatusSelectLoadSlot:   "select_load_slot",
}

func (s GameStatus) IsValid() bool { return s < statusCount }

func (s GameStatus) String() string {
	if !s.IsValid() {
		return "invalid"
	}
	return statusNames[s]
}

// RoundResult of the round being played or last played.
type RoundResult int8

const (
	RoundUndecided RoundResult = -1
	RoundEnemyWon  RoundResult = 0
	RoundPlayerWon RoundResult = 1
)

// Per-round statistics of one side
type PlayerStats struct {
	Name      string  `json:"name"`
	Hits      int     `json:"hits"`
	Shots     int     `json:"shots"`
	Accuracy  float64 `json:"accuracy"`
	Destroyed int     `json:"destroyed"`
	Remaining int     `json:"remaining"`
}

// Statistics of one side accumulated over every round of the game
type TotalPlayerStats struct {
	Name       string  `json:"name"`
	TotalHits  int     `json:"total_hits"`
	TotalShots int     `json:"total_shots"`
	Accuracy   float64 `json:"accuracy"`
	Rounds     int     `json:"rounds"`
	Wins       int     `json:"wins"`
}

func (t *TotalPlayerStats) updateAccuracy() {
	if t.TotalShots == 0 {
		t.Accuracy = 0
		return
	}
	t.Accuracy = float64(t.TotalHits) * 100 / float64(t.TotalShots)
}

// GameState is everything needed to restore a session: the status of
// the state machine, statistics and snapshots of both fields.
type GameState struct {
	SaveDate    string
	Status      GameStatus
	RoundResult RoundResult
	PlayerTurn  bool
	Round       int
	Cursor      Position

	PlayerStats PlayerStats
	EnemyStats  PlayerStats
	TotalPlayer TotalPlayerStats
	TotalEnemy  TotalPlayerStats

	Fleet       Fleet
	PlayerField *PlayingField
	EnemyField  *PlayingField
	Abilities   []AbilityKind
}

func NewGameState(playerName, enemyName string) GameState {
	return GameState{
		Status:      StatusPlacingShips,
		RoundResult: RoundUndecided,
		PlayerTurn:  true,
		Round:       1,
		PlayerStats: PlayerStats{Name: playerName},
		EnemyStats:  PlayerStats{Name: enemyName},
		TotalPlayer: TotalPlayerStats{Name: playerName},
		TotalEnemy:  TotalPlayerStats{Name: enemyName},
	}
}

func (gs *GameState) CanSave() bool {
	switch gs.Status {
	case StatusEnemyTurn, StatusAskSave, StatusSetField, StatusSetSizes, StatusSelectLoadSlot:
		return false
	default:
		return true
	}
}

func (gs *GameState) CanLoad() bool {
	switch gs.Status {
	case StatusGameOver, StatusPaused, StatusPlacingShips, StatusPlayerWon, StatusEnemyWon, StatusWaitingNextRound:
		return true
	default:
		return false
	}
}

// MoveCursorBy moves the cursor and clamps it to a maxX by maxY
// field. With no field size only negative coordinates are clamped.
func (gs *GameState) MoveCursorBy(dx, dy, maxX, maxY int) {
	x, y := gs.Cursor.X+dx, gs.Cursor.Y+dy
	if maxX <= 0 || maxY <= 0 {
		gs.Cursor = NewPosition(max(x, 0), max(y, 0))
		return
	}
	gs.Cursor = NewPosition(clamp(x, 0, maxX-1), clamp(y, 0, maxY-1))
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}

func (gs *GameState) ResetForNewRound() {
	gs.PlayerStats = PlayerStats{Name: gs.PlayerStats.Name}
	gs.EnemyStats = PlayerStats{Name: gs.EnemyStats.Name}
	gs.RoundResult = RoundUndecided
	gs.PlayerTurn = true
	gs.Cursor = Position{}
}

func (gs *GameState) ResetForNewGame() {
	gs.ResetForNewRound()
	gs.Round = 1
	gs.TotalPlayer = TotalPlayerStats{Name: gs.TotalPlayer.Name}
	gs.TotalEnemy = TotalPlayerStats{Name: gs.TotalEnemy.Name}
}

package connection

import (
	mb "github.com/saeidalz13/seabattle/models/battleship"
)

type RespSessionId struct {
	SessionID string `json:"session_id"`
}

type RespNewGame struct {
	GameUuid      string   `json:"game_uuid"`
	Status        string   `json:"status"`
	FieldSize     int      `json:"field_size"`
	Fleet         string   `json:"fleet"`
	PlacementMode string   `json:"placement_mode"`
	Abilities     []string `json:"abilities"`
}

type RespPlaceShip struct {
	Status      string        `json:"status"`
	NextSize    int           `json:"next_size,omitempty"`
	Orientation string        `json:"orientation"`
	Ships       []mb.ShipInfo `json:"ships"`
	Field       []string      `json:"field"`
}

type RespShot struct {
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Result string `json:"result"`
}

type RespAttack struct {
	RespShot
	Status        string     `json:"status"`
	IsTurn        bool       `json:"is_turn"`
	SunkenShips   int        `json:"sunken_ships"`
	EnemyShots    []RespShot `json:"enemy_shots,omitempty"`
	NextAbility   string     `json:"next_ability"`
	AbilitiesLeft int        `json:"abilities_left"`
}

type RespAbility struct {
	Ability     string     `json:"ability"`
	X           int        `json:"x"`
	Y           int        `json:"y"`
	Status      string     `json:"status"`
	IsTurn      bool       `json:"is_turn"`
	EnemyShots  []RespShot `json:"enemy_shots,omitempty"`
	NextAbility string     `json:"next_ability"`
}

type RespRoundEnded struct {
	Round  int    `json:"round"`
	Winner string `json:"winner"`
	Score  [2]int `json:"score"`
	Report string `json:"report"`
}

type RespFieldView struct {
	Status string      `json:"status"`
	Cursor mb.Position `json:"cursor"`
	Player []string    `json:"player"`
	Enemy  []string    `json:"enemy"`
}

type RespCursor struct {
	Cursor mb.Position `json:"cursor"`
}

type RespStatus struct {
	Status string `json:"status"`
	Round  int    `json:"round"`
}

type RespStatistics struct {
	Stats  mb.StatsSnapshot `json:"stats"`
	Report string           `json:"report"`
}

type RespHelp struct {
	Text string `json:"text"`
}

type RespFleetSummary struct {
	Lines []string `json:"lines"`
}

type RespShipsInfo struct {
	Ships []mb.ShipInfo `json:"ships"`
}

type RespSave struct {
	Slot    string `json:"slot"`
	SavedAt string `json:"saved_at"`
	Bytes   int    `json:"bytes"`
}

type RespLoad struct {
	Slot   string `json:"slot"`
	Status string `json:"status"`
	Round  int    `json:"round"`
}

type RespErr struct {
	ErrorDetails string `json:"error_details,omitempty"`
	Message      string `json:"message,omitempty"`
}

func NewRespErr(errorDetails, message string) *RespErr {
	return &RespErr{
		ErrorDetails: errorDetails,
		Message:      message,
	}
}

// NewErrMessage builds a reply carrying only an error.
func NewErrMessage(code uint8, err error, message string) Message[NoPayload] {
	msg := NewMessage[NoPayload](code)
	msg.AddError(err.Error(), message)
	return msg
}

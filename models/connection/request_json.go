package connection

type ReqNewGame struct {
	PlayerName    string `json:"player_name"`
	FieldSize     int    `json:"field_size"`
	Fleet         string `json:"fleet"`
	PlacementMode string `json:"placement_mode"`
	KeepLayout    bool   `json:"keep_layout"`
}

// Used by place ship, clear ship, attack and ability requests
type ReqCoordinates struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type ReqSave struct {
	Slot string `json:"slot"`
}

type ReqLoad struct {
	Slot string `json:"slot"`
}

type ReqCursor struct {
	Dx int `json:"dx"`
	Dy int `json:"dy"`
}

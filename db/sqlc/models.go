package sqlc

import "github.com/sqlc-dev/pqtype"

type SaveSlot struct {
	Name    string `json:"name"`
	Data    string `json:"data"`
	SavedAt string `json:"saved_at"`
}

type GameServerAnalytic struct {
	ServerIp     pqtype.Inet `json:"server_ip"`
	GamesCreated int64       `json:"games_created"`
	RoundsPlayed int64       `json:"rounds_played"`
}

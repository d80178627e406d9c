package sqlc

import (
	"context"

	"github.com/sqlc-dev/pqtype"
)

const analyticsGetGamesCreatedCount = `-- name: AnalyticsGetGamesCreatedCount :one
SELECT games_created FROM game_server_analytics WHERE server_ip = $1
`

func (q *Queries) AnalyticsGetGamesCreatedCount(ctx context.Context, serverIp pqtype.Inet) (int64, error) {
	row := q.db.QueryRowContext(ctx, q.rebind(analyticsGetGamesCreatedCount), serverIp)
	var games_created int64
	err := row.Scan(&games_created)
	return games_created, err
}

const analyticsGetRoundsPlayedCount = `-- name: AnalyticsGetRoundsPlayedCount :one
SELECT rounds_played FROM game_server_analytics WHERE server_ip = $1
`

func (q *Queries) AnalyticsGetRoundsPlayedCount(ctx context.Context, serverIp pqtype.Inet) (int64, error) {
	row := q.db.QueryRowContext(ctx, q.rebind(analyticsGetRoundsPlayedCount), serverIp)
	var rounds_played int64
	err := row.Scan(&rounds_played)
	return rounds_played, err
}

const analyticsIncrementGamesCreatedCount = `-- name: AnalyticsIncrementGamesCreatedCount :exec
INSERT INTO game_server_analytics (server_ip, games_created) VALUES ($1, 1)
ON CONFLICT (server_ip) DO UPDATE SET games_created = game_server_analytics.games_created + 1
`

func (q *Queries) AnalyticsIncrementGamesCreatedCount(ctx context.Context, serverIp pqtype.Inet) error {
	_, err := q.db.ExecContext(ctx, q.rebind(analyticsIncrementGamesCreatedCount), serverIp)
	return err
}

const analyticsIncrementRoundsPlayedCount = `-- name: AnalyticsIncrementRoundsPlayedCount :exec
INSERT INTO game_server_analytics (server_ip, rounds_played) VALUES ($1, 1)
ON CONFLICT (server_ip) DO UPDATE SET rounds_played = game_server_analytics.rounds_played + 1
`

func (q *Queries) AnalyticsIncrementRoundsPlayedCount(ctx context.Context, serverIp pqtype.Inet) error {
	_, err := q.db.ExecContext(ctx, q.rebind(analyticsIncrementRoundsPlayedCount), serverIp)
	return err
}

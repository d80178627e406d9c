package sqlc

import (
	"context"

	"github.com/sqlc-dev/pqtype"
)

type Querier interface {
	AnalyticsGetGamesCreatedCount(ctx context.Context, serverIp pqtype.Inet) (int64, error)
	AnalyticsGetRoundsPlayedCount(ctx context.Context, serverIp pqtype.Inet) (int64, error)
	AnalyticsIncrementGamesCreatedCount(ctx context.Context, serverIp pqtype.Inet) error
	AnalyticsIncrementRoundsPlayedCount(ctx context.Context, serverIp pqtype.Inet) error
	DeleteSaveSlot(ctx context.Context, name string) (int64, error)
	GetSaveSlot(ctx context.Context, name string) (SaveSlot, error)
	ListSaveSlots(ctx context.Context) ([]ListSaveSlotsRow, error)
	UpsertSaveSlot(ctx context.Context, arg UpsertSaveSlotParams) error
}

var _ Querier = (*Queries)(nil)

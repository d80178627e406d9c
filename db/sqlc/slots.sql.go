package sqlc

import "context"

const deleteSaveSlot = `-- name: DeleteSaveSlot :execrows
DELETE FROM save_slots WHERE name = $1
`

func (q *Queries) DeleteSaveSlot(ctx context.Context, name string) (int64, error) {
	result, err := q.db.ExecContext(ctx, q.rebind(deleteSaveSlot), name)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const getSaveSlot = `-- name: GetSaveSlot :one
SELECT name, data, saved_at FROM save_slots WHERE name = $1
`

func (q *Queries) GetSaveSlot(ctx context.Context, name string) (SaveSlot, error) {
	row := q.db.QueryRowContext(ctx, q.rebind(getSaveSlot), name)
	var i SaveSlot
	err := row.Scan(&i.Name, &i.Data, &i.SavedAt)
	return i, err
}

const listSaveSlots = `-- name: ListSaveSlots :many
SELECT name, saved_at FROM save_slots ORDER BY name
`

type ListSaveSlotsRow struct {
	Name    string `json:"name"`
	SavedAt string `json:"saved_at"`
}

func (q *Queries) ListSaveSlots(ctx context.Context) ([]ListSaveSlotsRow, error) {
	rows, err := q.db.QueryContext(ctx, q.rebind(listSaveSlots))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ListSaveSlotsRow
	for rows.Next() {
		var i ListSaveSlotsRow
		if err := rows.Scan(&i.Name, &i.SavedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const upsertSaveSlot = `-- name: UpsertSaveSlot :exec
INSERT INTO save_slots (name, data, saved_at) VALUES ($1, $2, $3)
ON CONFLICT (name) DO UPDATE SET data = excluded.data, saved_at = excluded.saved_at
`

type UpsertSaveSlotParams struct {
	Name    string `json:"name"`
	Data    string `json:"data"`
	SavedAt string `json:"saved_at"`
}

func (q *Queries) UpsertSaveSlot(ctx context.Context, arg UpsertSaveSlotParams) error {
	_, err := q.db.ExecContext(ctx, q.rebind(upsertSaveSlot), arg.Name, arg.Data, arg.SavedAt)
	return err
}

package sqlc

import (
	"context"
	"database/sql"
	"errors"

	cerr "github.com/saeidalz13/seabattle/internal/error"
)

const maxSlotNameLen = 32

// SlotManager stores serialised games under short user-chosen names.
type SlotManager struct {
	queries Querier
}

func NewSlotManager(queries Querier) *SlotManager {
	return &SlotManager{queries: queries}
}

// ValidateSlotName accepts 1 to 32 letters, digits, '-' or '_'.
func ValidateSlotName(name string) error {
	if name == "" || len(name) > maxSlotNameLen {
		return cerr.ErrInvalidSlotName(name)
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return cerr.ErrInvalidSlotName(name)
		}
	}
	return nil
}

func (s *SlotManager) Save(ctx context.Context, name string, data []byte, savedAt string) error {
	if err := ValidateSlotName(name); err != nil {
		return err
	}
	return s.queries.UpsertSaveSlot(ctx, UpsertSaveSlotParams{
		Name:    name,
		Data:    string(data),
		SavedAt: savedAt,
	})
}

func (s *SlotManager) Load(ctx context.Context, name string) ([]byte, error) {
	if err := ValidateSlotName(name); err != nil {
		return nil, err
	}

	slot, err := s.queries.GetSaveSlot(ctx, name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, cerr.ErrSlotNotFound(name)
		}
		return nil, err
	}
	return []byte(slot.Data), nil
}

func (s *SlotManager) List(ctx context.Context) ([]ListSaveSlotsRow, error) {
	slots, err := s.queries.ListSaveSlots(ctx)
	if err != nil {
		return nil, err
	}
	if slots == nil {
		slots = []ListSaveSlotsRow{}
	}
	return slots, nil
}

func (s *SlotManager) Delete(ctx context.Context, name string) error {
	if err := ValidateSlotName(name); err != nil {
		return err
	}

	n, err := s.queries.DeleteSaveSlot(ctx, name)
	if err != nil {
		return err
	}
	if n == 0 {
		return cerr.ErrSlotNotFound(name)
	}
	return nil
}

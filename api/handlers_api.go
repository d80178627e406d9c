package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"

	cerr "github.com/saeidalz13/seabattle/internal/error"
	mb "github.com/saeidalz13/seabattle/models/battleship"
	mc "github.com/saeidalz13/seabattle/models/connection"
)

type RequestHandler interface {
	HandleNewGame(gm mb.GameManager, defaults mb.Settings) (*mb.Game, mc.Message[mc.RespNewGame])
	HandlePlaceShip(game *mb.Game) mc.Message[mc.RespPlaceShip]
	HandleClearShip(game *mb.Game) mc.Message[mc.RespPlaceShip]
	HandleAttack(game *mb.Game) mc.Message[mc.RespAttack]
	HandleUseAbility(game *mb.Game) mc.Message[mc.RespAbility]
	HandleSave(ctx context.Context, game *mb.Game, slots SlotStore) mc.Message[mc.RespSave]
	HandleLoad(ctx context.Context, gm mb.GameManager, game *mb.Game, slots SlotStore, defaults mb.Settings) (*mb.Game, mc.Message[mc.RespLoad])
}

// Request wraps the raw frame of one incoming message.
type Request struct {
	payload []byte
}

var _ RequestHandler = Request{}

func NewRequest(payload ...[]byte) Request {
	var req Request
	if len(payload) != 0 {
		req.payload = payload[0]
	}
	return req
}

func decodePayload[T any](payload []byte) (T, error) {
	var msg mc.Message[T]
	if len(payload) == 0 {
		return msg.Payload, nil
	}
	err := json.Unmarshal(payload, &msg)
	return msg.Payload, err
}

func newRespPlaceShip(game *mb.Game) mc.RespPlaceShip {
	resp := mc.RespPlaceShip{
		Status:      game.Status().String(),
		Orientation: game.PlayerField().Orientation().String(),
		Ships:       game.ShipsInfo(),
		Field:       mc.OwnFieldRows(game.PlayerField()),
	}
	if size, orientation, ok := game.CurrentShip(); ok {
		resp.NextSize = size
		resp.Orientation = orientation.String()
	}
	return resp
}

func newRespStatus(game *mb.Game) mc.RespStatus {
	return mc.RespStatus{Status: game.Status().String(), Round: game.Round()}
}

// HandleNewGame starts a game from the server defaults overridden by
// whatever the client sent.
func (r Request) HandleNewGame(gm mb.GameManager, defaults mb.Settings) (*mb.Game, mc.Message[mc.RespNewGame]) {
	resp := mc.NewMessage[mc.RespNewGame](mc.CodeNewGame)

	req, err := decodePayload[mc.ReqNewGame](r.payload)
	if err != nil {
		resp.AddError(err.Error(), "invalid new game payload")
		return nil, resp
	}

	settings := defaults
	if req.PlayerName != "" {
		settings.PlayerName = req.PlayerName
	}
	if req.FieldSize != 0 {
		settings.FieldSize = req.FieldSize
	}
	if req.Fleet != "" {
		fleet, err := mb.ParseFleet(req.Fleet)
		if err != nil {
			resp.AddError(err.Error(), "invalid fleet")
			return nil, resp
		}
		settings.Fleet = fleet
	}
	if req.PlacementMode != "" {
		mode, err := mb.ParsePlacementMode(req.PlacementMode)
		if err != nil {
			resp.AddError(err.Error(), "invalid placement mode")
			return nil, resp
		}
		settings.PlacementMode = mode
	}
	settings.KeepLayout = settings.KeepLayout || req.KeepLayout

	game, err := gm.CreateGame(settings)
	if err != nil {
		resp.AddError(err.Error(), "failed to create game")
		return nil, resp
	}

	s := game.Settings()
	resp.AddPayload(mc.RespNewGame{
		GameUuid:      game.Uuid,
		Status:        game.Status().String(),
		FieldSize:     s.FieldSize,
		Fleet:         s.Fleet.String(),
		PlacementMode: s.PlacementMode.String(),
		Abilities:     game.AbilityNames(),
	})
	return game, resp
}

func (r Request) HandlePlaceShip(game *mb.Game) mc.Message[mc.RespPlaceShip] {
	resp := mc.NewMessage[mc.RespPlaceShip](mc.CodePlaceShip)

	req, err := decodePayload[mc.ReqCoordinates](r.payload)
	if err != nil {
		resp.AddError(err.Error(), "invalid coordinates payload")
		return resp
	}
	if err := game.PlaceShip(req.X, req.Y); err != nil {
		resp.AddError(err.Error(), cerr.ConstErrPlaceFailed)
		return resp
	}

	resp.AddPayload(newRespPlaceShip(game))
	return resp
}

func (r Request) HandleRotateShip(game *mb.Game) mc.Message[mc.RespPlaceShip] {
	resp := mc.NewMessage[mc.RespPlaceShip](mc.CodeRotateShip)
	if err := game.RotateShip(); err != nil {
		resp.AddError(err.Error(), "rotation failed")
		return resp
	}
	resp.AddPayload(newRespPlaceShip(game))
	return resp
}

func (r Request) HandleClearShip(game *mb.Game) mc.Message[mc.RespPlaceShip] {
	resp := mc.NewMessage[mc.RespPlaceShip](mc.CodeClearShip)

	req, err := decodePayload[mc.ReqCoordinates](r.payload)
	if err != nil {
		resp.AddError(err.Error(), "invalid coordinates payload")
		return resp
	}
	if err := game.ClearShip(req.X, req.Y); err != nil {
		resp.AddError(err.Error(), "failed to clear ship")
		return resp
	}

	resp.AddPayload(newRespPlaceShip(game))
	return resp
}

func (r Request) HandleRandomShips(game *mb.Game) mc.Message[mc.RespPlaceShip] {
	resp := mc.NewMessage[mc.RespPlaceShip](mc.CodeRandomShips)
	if err := game.PlaceShipsRandomly(); err != nil {
		resp.AddError(err.Error(), cerr.ConstErrPlaceFailed)
		return resp
	}
	resp.AddPayload(newRespPlaceShip(game))
	return resp
}

// playEnemyTurn lets the computer shoot until the turn comes back.
func playEnemyTurn(game *mb.Game) []mc.RespShot {
	var shots []mc.RespShot
	for game.Status() == mb.StatusEnemyTurn {
		shot, err := game.MakeAIMove()
		if err != nil {
			break
		}
		shots = append(shots, mc.RespShot{X: shot.X, Y: shot.Y, Result: shot.Result.String()})
	}
	return shots
}

// HandleAttack fires the human shot and answers with the computer's
// reply in the same message.
func (r Request) HandleAttack(game *mb.Game) mc.Message[mc.RespAttack] {
	resp := mc.NewMessage[mc.RespAttack](mc.CodeAttack)

	req, err := decodePayload[mc.ReqCoordinates](r.payload)
	if err != nil {
		resp.AddError(err.Error(), "invalid coordinates payload")
		return resp
	}

	res, err := game.Attack(req.X, req.Y)
	if err != nil {
		resp.AddError(err.Error(), cerr.ConstErrAttackFailed)
		return resp
	}

	enemyShots := playEnemyTurn(game)
	resp.AddPayload(mc.RespAttack{
		RespShot:      mc.RespShot{X: req.X, Y: req.Y, Result: res.String()},
		Status:        game.Status().String(),
		IsTurn:        game.IsPlayerTurn(),
		SunkenShips:   game.Human().DestroyedShips(),
		EnemyShots:    enemyShots,
		NextAbility:   game.NextAbility(),
		AbilitiesLeft: game.Human().Abilities().Len(),
	})
	return resp
}

func (r Request) HandleUseAbility(game *mb.Game) mc.Message[mc.RespAbility] {
	resp := mc.NewMessage[mc.RespAbility](mc.CodeUseAbility)

	req, err := decodePayload[mc.ReqCoordinates](r.payload)
	if err != nil {
		resp.AddError(err.Error(), "invalid coordinates payload")
		return resp
	}

	res, err := game.UseAbility(req.X, req.Y)
	if err != nil {
		var abilityErr *cerr.AbilityApplicationError
		if errors.As(err, &abilityErr) {
			resp.AddError(err.Error(), abilityErr.Ability+" failed, turn kept")
		} else {
			resp.AddError(err.Error(), cerr.ConstErrAbilityFailed)
		}
		return resp
	}

	enemyShots := playEnemyTurn(game)
	resp.AddPayload(mc.RespAbility{
		Ability:     res.Ability,
		X:           res.Coords.X,
		Y:           res.Coords.Y,
		Status:      game.Status().String(),
		IsTurn:      game.IsPlayerTurn(),
		EnemyShots:  enemyShots,
		NextAbility: game.NextAbility(),
	})
	return resp
}

// roundEnded returns the end-of-round notice once the last shot
// of a round has been resolved.
func roundEnded(game *mb.Game) (mc.Message[mc.RespRoundEnded], bool) {
	msg := mc.NewMessage[mc.RespRoundEnded](mc.CodeRoundEnded)
	if game.Status() != mb.StatusWaitingNextRound {
		return msg, false
	}

	stats := game.Stats()
	winner := stats.Enemy.Name
	if stats.RoundResult == mb.RoundPlayerWon {
		winner = stats.Player.Name
	}

	msg.AddPayload(mc.RespRoundEnded{
		Round:  stats.Round,
		Winner: winner,
		Score:  [2]int{stats.TotalPlayer.Wins, stats.TotalEnemy.Wins},
		Report: game.Statistics(),
	})
	return msg, true
}

func (r Request) HandleAdvanceRound(game *mb.Game) mc.Message[mc.RespStatus] {
	resp := mc.NewMessage[mc.RespStatus](mc.CodeAdvanceRound)
	if err := game.AdvanceRound(); err != nil {
		resp.AddError(err.Error(), "cannot start next round")
		return resp
	}
	resp.AddPayload(newRespStatus(game))
	return resp
}

func (r Request) HandleTogglePause(game *mb.Game) mc.Message[mc.RespStatus] {
	resp := mc.NewMessage[mc.RespStatus](mc.CodeTogglePause)
	if err := game.TogglePause(); err != nil {
		resp.AddError(err.Error(), "cannot pause now")
		return resp
	}
	resp.AddPayload(newRespStatus(game))
	return resp
}

func (r Request) HandleExit(game *mb.Game) mc.Message[mc.RespStatus] {
	resp := mc.NewMessage[mc.RespStatus](mc.CodeExit)
	game.Exit()
	resp.AddPayload(newRespStatus(game))
	return resp
}

func (r Request) HandleSave(ctx context.Context, game *mb.Game, slots SlotStore) mc.Message[mc.RespSave] {
	resp := mc.NewMessage[mc.RespSave](mc.CodeSave)

	req, err := decodePayload[mc.ReqSave](r.payload)
	if err != nil {
		resp.AddError(err.Error(), "invalid save payload")
		return resp
	}
	if slots == nil {
		resp.AddError(cerr.ErrUnknownSlotStore("none").Error(), "saving is disabled")
		return resp
	}

	var buf bytes.Buffer
	if err := game.Save(&buf); err != nil {
		resp.AddError(err.Error(), "cannot save now")
		return resp
	}
	if err := slots.Save(ctx, req.Slot, buf.Bytes(), game.SaveDate()); err != nil {
		resp.AddError(err.Error(), "failed to store save slot")
		return resp
	}

	resp.AddPayload(mc.RespSave{Slot: req.Slot, SavedAt: game.SaveDate(), Bytes: buf.Len()})
	return resp
}

// HandleLoad restores a slot into the current game, or into a new one
// when the session has none yet. A corrupt slot leaves the game as is.
func (r Request) HandleLoad(
	ctx context.Context,
	gm mb.GameManager,
	game *mb.Game,
	slots SlotStore,
	defaults mb.Settings,
) (*mb.Game, mc.Message[mc.RespLoad]) {
	resp := mc.NewMessage[mc.RespLoad](mc.CodeLoad)

	req, err := decodePayload[mc.ReqLoad](r.payload)
	if err != nil {
		resp.AddError(err.Error(), "invalid load payload")
		return game, resp
	}
	if slots == nil {
		resp.AddError(cerr.ErrUnknownSlotStore("none").Error(), "loading is disabled")
		return game, resp
	}
	if game != nil && !game.CanLoad() {
		resp.AddError(cerr.ErrStatus("load", game.Status()).Error(), "pause the game before loading")
		return game, resp
	}

	data, err := slots.Load(ctx, req.Slot)
	if err != nil {
		resp.AddError(err.Error(), "failed to read save slot")
		return game, resp
	}

	if game == nil {
		game, err = gm.RestoreGame(defaults, bytes.NewReader(data))
	} else {
		err = game.Load(bytes.NewReader(data))
	}
	if err != nil {
		resp.AddError(err.Error(), "failed to load save slot")
		return game, resp
	}

	resp.AddPayload(mc.RespLoad{Slot: req.Slot, Status: game.Status().String(), Round: game.Round()})
	return game, resp
}

func (r Request) HandleStatistics(game *mb.Game) mc.Message[mc.RespStatistics] {
	resp := mc.NewMessage[mc.RespStatistics](mc.CodeStatistics)
	resp.AddPayload(mc.RespStatistics{Stats: game.Stats(), Report: game.Statistics()})
	return resp
}

func (r Request) HandleHelp() mc.Message[mc.RespHelp] {
	resp := mc.NewMessage[mc.RespHelp](mc.CodeHelp)
	resp.AddPayload(mc.RespHelp{Text: mb.HelpText})
	return resp
}

func (r Request) HandleFleetSummary(game *mb.Game) mc.Message[mc.RespFleetSummary] {
	resp := mc.NewMessage[mc.RespFleetSummary](mc.CodeFleetSummary)
	resp.AddPayload(mc.RespFleetSummary{Lines: game.FleetSummary()})
	return resp
}

func (r Request) HandleFieldView(game *mb.Game) mc.Message[mc.RespFieldView] {
	resp := mc.NewMessage[mc.RespFieldView](mc.CodeFieldView)
	resp.AddPayload(mc.NewRespFieldView(game))
	return resp
}

func (r Request) HandleMoveCursor(game *mb.Game) mc.Message[mc.RespCursor] {
	resp := mc.NewMessage[mc.RespCursor](mc.CodeMoveCursor)

	req, err := decodePayload[mc.ReqCursor](r.payload)
	if err != nil {
		resp.AddError(err.Error(), "invalid cursor payload")
		return resp
	}
	game.MoveCursorBy(req.Dx, req.Dy)

	resp.AddPayload(mc.RespCursor{Cursor: game.Cursor()})
	return resp
}

func (r Request) HandleShipsInfo(game *mb.Game) mc.Message[mc.RespShipsInfo] {
	resp := mc.NewMessage[mc.RespShipsInfo](mc.CodeShipsInfo)
	resp.AddPayload(mc.RespShipsInfo{Ships: game.ShipsInfo()})
	return resp
}

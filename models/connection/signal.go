package connection

const (
	CodeSessionID uint8 = iota
	CodeReceivedInvalidSessionID

	// Session setup
	CodeNewGame
	CodePlaceShip
	CodeRotateShip
	CodeClearShip
	CodeRandomShips

	// Battle
	CodeAttack
	CodeUseAbility
	CodeRoundEnded
	CodeAdvanceRound
	CodeTogglePause
	CodeExit

	// Persistence
	CodeSave
	CodeLoad

	// Read only queries
	CodeStatistics
	CodeHelp
	CodeFleetSummary
	CodeFieldView
	CodeShipsInfo

	// Moves the aiming cursor over the enemy field
	CodeMoveCursor

	CodeInvalidSignal

	// if the req msg does not contain "code" field
	CodeSignalAbsent
)

type Signal struct {
	Code uint8 `json:"code"`
}

func NewSignal(code uint8) Signal {
	return Signal{Code: code}
}

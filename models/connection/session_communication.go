package connection

// SessionMessage is one outbound frame produced by a handler.
// A single request may yield several of them, for example an
// attack reply followed by the computer's shots.
type SessionMessage struct {
	PayloadType uint8
	ReceiverID  string
	GameUuid    string
	Payload     interface{}
}

func NewSessionMessageJSON(receiverId string, gameUuid string, p interface{}) SessionMessage {
	return SessionMessage{
		PayloadType: MessageTypeJSON,
		ReceiverID:  receiverId,
		GameUuid:    gameUuid,
		Payload:     p,
	}
}

func NewSessionMessageBytes(receiverId string, gameUuid string, p []byte) SessionMessage {
	return SessionMessage{
		PayloadType: MessageTypeBytes,
		ReceiverID:  receiverId,
		GameUuid:    gameUuid,
		Payload:     p,
	}
}

// Outbox keeps the frames of one request in the order they must be sent.
type Outbox struct {
	receiverId string
	gameUuid   string
	msgs       []SessionMessage
}

func NewOutbox(receiverId, gameUuid string) *Outbox {
	return &Outbox{receiverId: receiverId, gameUuid: gameUuid}
}

func (o *Outbox) Push(p interface{}) {
	o.msgs = append(o.msgs, NewSessionMessageJSON(o.receiverId, o.gameUuid, p))
}

func (o *Outbox) Messages() []SessionMessage {
	return o.msgs
}

func (o *Outbox) Len() int {
	return len(o.msgs)
}

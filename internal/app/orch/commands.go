package orch

import "github.com/dkeye/campfire/internal/domain"

// Command is one client intent. The set of variants is closed;
// Dispatch handles each of them.
type Command interface {
	isCommand()
}

type CreateRoom struct {
	Name string
}

type JoinRoom struct {
	Ref      domain.RoomRef
	Username string
}

// SendMessage with a nil Ref targets the connection's current room.
type SendMessage struct {
	Ref      domain.RoomRef
	Text     string
	Username string
}

type LeaveRoom struct {
	Ref      domain.RoomRef
	Username string
}

type Disconnect struct{}

func (CreateRoom) isCommand()  {}
func (JoinRoom) isCommand()    {}
func (SendMessage) isCommand() {}
func (LeaveRoom) isCommand()   {}
func (Disconnect) isCommand()  {}

// Ack is the reply to the connection that issued a command.
type Ack struct {
	OK       bool
	Error    string
	RoomID   domain.RoomID
	RoomName domain.RoomName
	History  []domain.Message
}

type AckFunc func(Ack)

func okAck() Ack { return Ack{OK: true} }

func failAck(err error) Ack { return Ack{Error: ErrorCode(err)} }

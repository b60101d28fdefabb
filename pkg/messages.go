package pkg

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"
)

// MaxMessageSize bounds a single newline-delimited frame. A full 99×99 board
// fits comfortably.
const MaxMessageSize = 4 << 20

type MessageType int

const (
	TypeMessageTransport MessageType = iota
	TypeMessageJoin
	TypeMessageConnect
	TypeMessageAction
	TypeMessageBoard
	TypeMessageNotify
)

func (m MessageType) String() string {
	switch m {
	case TypeMessageTransport:
		return "TypeMessageTransport"
	case TypeMessageJoin:
		return "TypeMessageJoin"
	case TypeMessageConnect:
		return "TypeMessageConnect"
	case TypeMessageAction:
		return "TypeMessageAction"
	case TypeMessageBoard:
		return "TypeMessageBoard"
	case TypeMessageNotify:
		return "TypeMessageNotify"
	default:
		return "Unknown MessageType"
	}
}

type MessageInterface interface {
	Type() MessageType
}

// Message types

// MessageTransport wraps every frame on the wire
type MessageTransport struct {
	MsgType MessageType
	Data    json.RawMessage
}

func (m MessageTransport) Type() MessageType {
	return TypeMessageTransport
}

// MessageJoin is the first frame a client sends
type MessageJoin struct {
	Nickname string
}

func (m MessageJoin) Type() MessageType {
	return TypeMessageJoin
}

// MessageConnect answers a join with the player's identity and board
type MessageConnect struct {
	Nickname string
	Board    BoardView
}

func (m MessageConnect) Type() MessageType {
	return TypeMessageConnect
}

type MessageAction struct {
	Action Action
	Row    int
	Col    int
}

func (m MessageAction) Type() MessageType {
	return TypeMessageAction
}

type MessageBoard struct {
	Board BoardView
}

func (m MessageBoard) Type() MessageType {
	return TypeMessageBoard
}

// MessageNotify carries the game over and victory notifications
type MessageNotify struct {
	Title string
	Text  string
	Won   bool
}

func (m MessageNotify) Type() MessageType {
	return TypeMessageNotify
}

func Encode(v interface{}) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %T: %w", v, err)
	}
	return data, nil
}

func Decode(data []byte, v interface{}) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode %T: %w", v, err)
	}
	return nil
}

// WriteMessage wraps m in a transport frame and writes it as one line
func WriteMessage(w io.Writer, m MessageInterface) error {
	data, err := Encode(m)
	if err != nil {
		return err
	}

	b, err := Encode(MessageTransport{MsgType: m.Type(), Data: data})
	if err != nil {
		return err
	}
	b = append(b, '\n')

	if _, err := w.Write(b); err != nil {
		return fmt.Errorf("failed to write %s: %w", m.Type(), err)
	}
	return nil
}

// NewScanner returns a line scanner able to hold a full frame
func NewScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), MaxMessageSize)
	return scanner
}

// ReadMessages decodes frames from r until it is exhausted. Frames that fail
// to decode are logged and skipped.
func ReadMessages(r io.Reader, fn func(MessageTransport)) error {
	scanner := NewScanner(r)
	for scanner.Scan() {
		var messageTransport MessageTransport
		if err := Decode(scanner.Bytes(), &messageTransport); err != nil {
			log.WithError(err).Warn("Dropped malformed frame")
			continue
		}
		fn(messageTransport)
	}
	return scanner.Err()
}

package pkg

import (
	"net"
	"sync"
	"time"

	petname "github.com/dustinkirkland/golang-petname"
	log "github.com/sirupsen/logrus"
)

type Player struct {
	Conn     net.Conn
	Nickname string
	Out      chan MessageInterface

	closeOnce sync.Once
	writeDone chan struct{}
}

func NewPlayer(conn net.Conn) *Player {
	Out := make(chan MessageInterface, ConnQueueSize)

	p := &Player{
		Conn:     conn,
		Nickname: Nickname(""),
		Out:      Out,

		writeDone: make(chan struct{}),
	}
	return p
}

// Nickname trims a requested name, falling back to a generated one
func Nickname(name string) string {
	name = sanitizeNickname(name)
	if name == "" {
		return petname.Generate(2, "-")
	}
	return name
}

// HandleRead forwards every frame from the connection to In and closes In
// when the connection ends. Once done is closed nobody reads In anymore, so
// frames are discarded until the connection goes away.
func (p *Player) HandleRead(In chan<- MessageTransport, done <-chan struct{}) {
	defer close(In)

	err := ReadMessages(p.Conn, func(m MessageTransport) {
		select {
		case In <- m:
		case <-done:
		}
	})
	if err != nil {
		log.WithError(err).WithField("remote", p.Conn.RemoteAddr()).Debug("Read loop ended")
	}
}

func (p *Player) HandleWrite() {
	defer close(p.writeDone)

	for message := range p.Out {
		if err := WriteMessage(p.Conn, message); err != nil {
			log.WithError(err).WithField("remote", p.Conn.RemoteAddr()).Warn("Failed to write")
		}
	}
}

// Flush waits until every queued frame was written, or timeout passes. Out
// must be closed first.
func (p *Player) Flush(timeout time.Duration) bool {
	select {
	case <-p.writeDone:
		return true
	case <-time.After(timeout):
		return false
	}
}

func (p *Player) Disconnect() {
	p.closeOnce.Do(func() {
		p.Conn.Close()
	})
}

package pkg

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/qnkhuat/sweepterm/pkg/grid"
	"github.com/qnkhuat/sweepterm/pkg/store"
	log "github.com/sirupsen/logrus"
)

const saveTimeout = 5 * time.Second

// Match binds one player to one session. Frames are handled one at a time by
// Run so the session needs no locking of its own beyond what readers use.
type Match struct {
	ID     string
	Player *Player
	In     chan MessageTransport

	done       chan struct{}
	mu         sync.RWMutex
	session    Session
	clock      *Clock
	lastActive time.Time

	store store.Store
	rng   *rand.Rand
	now   func() time.Time
}

// MatchInfo is the public summary of a live match
type MatchInfo struct {
	ID             string    `json:"id"`
	SessionID      string    `json:"session_id"`
	Nickname       string    `json:"nickname"`
	State          GameState `json:"state"`
	Score          int       `json:"score"`
	MinesRemaining int       `json:"mines_remaining"`
	Flags          int       `json:"flags"`
	ElapsedMs      int64     `json:"elapsed_ms"`
	LastActive     time.Time `json:"last_active"`
}

func NewMatch(p *Player, size, mines int, rng *rand.Rand, st store.Store) *Match {
	if rng == nil {
		rng = grid.NewRand(0)
	}

	m := &Match{
		ID:      uuid.New().String(),
		Player:  p,
		In:      make(chan MessageTransport, ConnQueueSize),
		done:    make(chan struct{}),
		session: NewSession(size, mines, rng),
		clock:   NewClock(),
		store:   st,
		rng:     rng,
		now:     time.Now,
	}
	m.lastActive = m.now()
	return m
}

// Run feeds every incoming frame through Handle until the player leaves or
// ctx is cancelled. It closes the player's outgoing queue on return.
func (m *Match) Run(ctx context.Context) {
	defer func() {
		m.clock.Pause()
		close(m.Player.Out)
		close(m.done)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-m.In:
			if !ok {
				return
			}
			replies, keep := m.Handle(msg)
			for _, reply := range replies {
				m.Player.Out <- reply
			}
			if !keep {
				return
			}
		}
	}
}

// Done is closed once Run returned
func (m *Match) Done() <-chan struct{} {
	return m.done
}

// Handle applies one frame and returns the replies for the player. The
// boolean is false once the player asked to leave.
func (m *Match) Handle(msg MessageTransport) ([]MessageInterface, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastActive = m.now()

	switch msg.MsgType {
	case TypeMessageJoin:
		var join MessageJoin
		if err := Decode(msg.Data, &join); err != nil {
			log.WithError(err).WithField("match", m.ID).Warn("Bad join")
			return nil, true
		}
		if join.Nickname != "" {
			m.Player.Nickname = Nickname(join.Nickname)
		}
		log.WithFields(log.Fields{"match": m.ID, "player": m.Player.Nickname}).Info("Player joined")
		return []MessageInterface{MessageConnect{Nickname: m.Player.Nickname, Board: m.board()}}, true

	case TypeMessageAction:
		var action MessageAction
		if err := Decode(msg.Data, &action); err != nil {
			log.WithError(err).WithField("match", m.ID).Warn("Bad action")
			return nil, true
		}
		return m.apply(action)

	default:
		log.WithFields(log.Fields{"match": m.ID, "type": msg.MsgType}).Debug("Ignored frame")
		return nil, true
	}
}

func (m *Match) apply(a MessageAction) ([]MessageInterface, bool) {
	log.WithFields(log.Fields{
		"session": m.session.ID,
		"action":  a.Action,
		"row":     a.Row,
		"col":     a.Col,
	}).Debug("Action")

	var replies []MessageInterface

	switch a.Action {
	case ActionReveal:
		// The clock starts with the first reveal that can change the board
		if v, ok := m.session.View(a.Row, a.Col); ok && v.State == grid.Hidden && m.session.State == Playing {
			m.clock.Start()
		}

		var ev Event
		m.session, ev = m.session.Reveal(a.Row, a.Col)
		switch ev {
		case EventLost:
			m.clock.Pause()
			replies = append(replies, MessageNotify{Title: NotifyLostTitle, Text: NotifyLostText})
			m.record(false)
		case EventWon:
			m.clock.Pause()
			replies = append(replies, MessageNotify{Title: NotifyWonTitle, Text: NotifyWonText, Won: true})
			m.record(true)
		}

	case ActionFlag:
		m.session = m.session.Flag(a.Row, a.Col)

	case ActionRestart:
		m.session = m.session.Restart(m.rng)
		m.clock.Reset()

	case ActionExit:
		return nil, false

	default:
		return nil, true
	}

	// The board goes first so the notification is drawn over the final state
	return append([]MessageInterface{MessageBoard{Board: m.board()}}, replies...), true
}

func (m *Match) board() BoardView {
	b := m.session.Snapshot()
	b.ElapsedMs = m.clock.Elapsed().Milliseconds()
	b.Running = m.clock.Running()
	return b
}

func (m *Match) record(won bool) {
	if m.store == nil {
		return
	}

	r := &store.Result{
		SessionID:  m.session.ID,
		Nickname:   m.Player.Nickname,
		Size:       m.session.Grid.Size(),
		Mines:      m.session.Grid.Mines(),
		Score:      m.session.Score,
		Won:        won,
		DurationMs: m.clock.Elapsed().Milliseconds(),
		FinishedAt: m.now(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()

	if err := m.store.SaveResult(ctx, r); err != nil {
		log.WithError(err).WithField("session", m.session.ID).Error("Failed to save result")
		return
	}
	log.WithFields(log.Fields{"session": m.session.ID, "won": won, "score": r.Score}).Info("Game finished")
}

func (m *Match) Info() MatchInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return MatchInfo{
		ID:             m.ID,
		SessionID:      m.session.ID,
		Nickname:       m.Player.Nickname,
		State:          m.session.State,
		Score:          m.session.Score,
		MinesRemaining: m.session.MinesRemaining,
		Flags:          m.session.Grid.Flags(),
		ElapsedMs:      m.clock.Elapsed().Milliseconds(),
		LastActive:     m.lastActive,
	}
}

// Idle reports whether nothing arrived from the player for longer than timeout
func (m *Match) Idle(timeout time.Duration) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.now().Sub(m.lastActive) > timeout
}

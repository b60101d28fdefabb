package pkg

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sort"
	"sync"
	"time"

	"github.com/qnkhuat/sweepterm/pkg/config"
	"github.com/qnkhuat/sweepterm/pkg/grid"
	"github.com/qnkhuat/sweepterm/pkg/store"
	log "github.com/sirupsen/logrus"
)

const (
	CleanInterval = 30 * time.Second
	ConnQueueSize = 20
)

// Server hosts one match per connection
type Server struct {
	Config config.Config
	Store  store.Store

	mu       sync.RWMutex
	matches  map[string]*Match
	listener net.Listener
}

func NewServer(cfg config.Config, st store.Store) *Server {
	cfg.Validate()
	if st == nil {
		st = store.NewMemoryStore()
	}

	return &Server{
		Config:  cfg,
		Store:   st,
		matches: make(map[string]*Match),
	}
}

// Listen accepts TCP connections on addr until ctx is cancelled
func (s *Server) Listen(ctx context.Context, addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	log.Infof("Listening on %s", listener.Addr())

	go func() {
		<-ctx.Done()
		s.StopListening()
	}()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) || ctx.Err() != nil {
				return nil
			}
			log.WithError(err).Warn("Failed to accept connection")
			continue
		}

		go s.HandleConn(ctx, conn)
	}
}

func (s *Server) StopListening() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener != nil {
		s.listener.Close()
		s.listener = nil
	}
}

// HandleConn plays one match over conn and returns when it ends
func (s *Server) HandleConn(ctx context.Context, conn net.Conn) {
	p := NewPlayer(conn)
	m := NewMatch(p, s.Config.Size, s.Config.Mines, grid.NewRand(s.Config.Seed), s.Store)

	s.mu.Lock()
	s.matches[m.ID] = m
	s.mu.Unlock()

	log.WithFields(log.Fields{"match": m.ID, "remote": conn.RemoteAddr()}).Info("New connection")

	go p.HandleRead(m.In, m.Done())
	go p.HandleWrite()
	m.Run(ctx)

	s.mu.Lock()
	delete(s.matches, m.ID)
	s.mu.Unlock()

	if !p.Flush(writeDrainTimeout) {
		log.WithField("match", m.ID).Warn("Dropped unsent frames")
	}
	p.Disconnect()
	log.WithFields(log.Fields{"match": m.ID, "player": m.Info().Nickname}).Info("Connection closed")
}

// CleanIdleMatches disconnects players that stopped sending for longer than
// the configured idle timeout. The match ends once its read loop notices.
func (s *Server) CleanIdleMatches(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.cleanIdle()
		}
	}
}

func (s *Server) cleanIdle() int {
	timeout := s.Config.IdleTimeout()

	s.mu.RLock()
	var idle []*Match
	for _, m := range s.matches {
		if m.Idle(timeout) {
			idle = append(idle, m)
		}
	}
	s.mu.RUnlock()

	for _, m := range idle {
		log.WithField("match", m.ID).Info("Closing idle match")
		m.Player.Disconnect()
	}
	return len(idle)
}

// Matches lists the live matches, most recently active first
func (s *Server) Matches() []MatchInfo {
	s.mu.RLock()
	infos := make([]MatchInfo, 0, len(s.matches))
	for _, m := range s.matches {
		infos = append(infos, m.Info())
	}
	s.mu.RUnlock()

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].LastActive.After(infos[j].LastActive)
	})
	return infos
}

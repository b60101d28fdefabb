package pkg

import (
	"bytes"
	"context"
	"net"
	"testing"
	"time"

	"github.com/qnkhuat/sweepterm/pkg/config"
	"github.com/qnkhuat/sweepterm/pkg/grid"
	"github.com/qnkhuat/sweepterm/pkg/store"
)

func frame(t *testing.T, m MessageInterface) MessageTransport {
	t.Helper()

	data, err := Encode(m)
	if err != nil {
		t.Fatalf("failed to encode %T: %v", m, err)
	}
	return MessageTransport{MsgType: m.Type(), Data: data}
}

// newTestMatch returns a match on a 3x3 board with a single mine at (0,0)
func newTestMatch(t *testing.T) (*Match, *store.MemoryStore, net.Conn) {
	t.Helper()

	server, client := net.Pipe()
	t.Cleanup(func() {
		server.Close()
		client.Close()
	})

	st := store.NewMemoryStore()
	m := NewMatch(NewPlayer(server), 3, 1, nil, st)
	m.session = newSession(grid.FromMines(3, []grid.Pos{{Row: 0, Col: 0}}))
	return m, st, client
}

func TestMatchJoin(t *testing.T) {
	m, _, _ := newTestMatch(t)

	replies, keep := m.Handle(frame(t, MessageJoin{Nickname: "  alice "}))
	if !keep || len(replies) != 1 {
		t.Fatalf("expected one reply, got %d (keep %v)", len(replies), keep)
	}

	connect, ok := replies[0].(MessageConnect)
	if !ok {
		t.Fatalf("expected MessageConnect, got %T", replies[0])
	}
	if connect.Nickname != "alice" {
		t.Errorf("expected nickname alice, got %q", connect.Nickname)
	}
	if connect.Board.Size != 3 || connect.Board.MinesRemaining != 1 || connect.Board.State != Playing {
		t.Errorf("unexpected board %+v", connect.Board)
	}

	// An empty nickname keeps the generated one
	before := m.Player.Nickname
	m.Handle(frame(t, MessageJoin{}))
	if m.Player.Nickname != before || before == "" {
		t.Errorf("expected generated nickname to be kept, got %q then %q", before, m.Player.Nickname)
	}
}

func TestMatchWin(t *testing.T) {
	m, st, _ := newTestMatch(t)
	m.Handle(frame(t, MessageJoin{Nickname: "alice"}))

	replies, keep := m.Handle(frame(t, MessageAction{Action: ActionReveal, Row: 2, Col: 2}))
	if !keep || len(replies) != 2 {
		t.Fatalf("expected board and notification, got %d replies", len(replies))
	}

	board := replies[0].(MessageBoard).Board
	if board.State != Won || board.Score != 8 || board.Running {
		t.Errorf("unexpected board %+v", board)
	}
	if board.Cells[0][0].State != grid.Flagged {
		t.Errorf("expected mine to be flagged on win, got %s", board.Cells[0][0].State)
	}

	notify := replies[1].(MessageNotify)
	if !notify.Won || notify.Title != NotifyWonTitle || notify.Text != NotifyWonText {
		t.Errorf("unexpected notification %+v", notify)
	}

	results, _ := st.RecentResults(context.Background(), 10)
	if len(results) != 1 || !results[0].Won || results[0].Score != 8 || results[0].Nickname != "alice" {
		t.Errorf("unexpected results %+v", results)
	}

	// Terminal sessions ignore further actions
	replies, _ = m.Handle(frame(t, MessageAction{Action: ActionFlag, Row: 0, Col: 0}))
	if b := replies[0].(MessageBoard).Board; b.Cells[0][0].State != grid.Flagged || b.MinesRemaining != 1 {
		t.Errorf("expected terminal board to be unchanged, got %+v", b)
	}
}

func TestMatchLoss(t *testing.T) {
	m, st, _ := newTestMatch(t)

	replies, _ := m.Handle(frame(t, MessageAction{Action: ActionReveal, Row: 0, Col: 0}))
	if len(replies) != 2 {
		t.Fatalf("expected board and notification, got %d replies", len(replies))
	}

	board := replies[0].(MessageBoard).Board
	if board.State != Lost || !board.Cells[0][0].Mine {
		t.Errorf("expected a lost board with the mine shown, got %+v", board)
	}
	if notify := replies[1].(MessageNotify); notify.Won || notify.Title != NotifyLostTitle {
		t.Errorf("unexpected notification %+v", notify)
	}

	st2, _ := st.Stats(context.Background())
	if st2.Lost != 1 {
		t.Errorf("expected one lost game, got %+v", st2)
	}

	// Restart deals a fresh board
	id := m.session.ID
	replies, _ = m.Handle(frame(t, MessageAction{Action: ActionRestart}))
	board = replies[0].(MessageBoard).Board
	if board.State != Playing || board.SessionID == id || board.ElapsedMs != 0 || board.Running {
		t.Errorf("unexpected board after restart %+v", board)
	}
}

func TestMatchInvalidInput(t *testing.T) {
	m, _, _ := newTestMatch(t)

	replies, keep := m.Handle(frame(t, MessageAction{Action: ActionReveal, Row: 7, Col: -1}))
	if !keep || len(replies) != 1 {
		t.Fatalf("expected a single board reply, got %d", len(replies))
	}
	if b := replies[0].(MessageBoard).Board; b.Score != 0 || b.Running {
		t.Errorf("expected out of range reveal to be a no-op, got %+v", b)
	}

	if replies, keep := m.Handle(frame(t, MessageAction{Action: "dance"})); replies != nil || !keep {
		t.Errorf("expected unknown action to be ignored, got %v", replies)
	}

	bad := MessageTransport{MsgType: TypeMessageAction, Data: []byte(`"reveal"`)}
	if replies, keep := m.Handle(bad); replies != nil || !keep {
		t.Errorf("expected undecodable action to be ignored, got %v", replies)
	}

	if replies, keep := m.Handle(frame(t, MessageNotify{Title: "hi"})); replies != nil || !keep {
		t.Errorf("expected server-bound notify to be ignored, got %v", replies)
	}

	if _, keep := m.Handle(frame(t, MessageAction{Action: ActionExit})); keep {
		t.Error("expected exit to end the match")
	}
}

func TestMatchClock(t *testing.T) {
	m, _, _ := newTestMatch(t)
	now := time.Date(2021, 3, 1, 12, 0, 0, 0, time.UTC)
	m.clock.now = func() time.Time { return now }

	// Flags do not start the clock
	m.Handle(frame(t, MessageAction{Action: ActionFlag, Row: 1, Col: 1}))
	if m.clock.Running() {
		t.Fatal("expected clock to wait for the first reveal")
	}

	replies, _ := m.Handle(frame(t, MessageAction{Action: ActionReveal, Row: 2, Col: 1}))
	if b := replies[0].(MessageBoard).Board; !b.Running {
		t.Errorf("expected clock to run after the first reveal, got %+v", b)
	}

	now = now.Add(3 * time.Second)
	if info := m.Info(); info.ElapsedMs != 3000 || info.Flags != 1 {
		t.Errorf("expected 3000ms elapsed and one flag, got %+v", info)
	}
}

func TestMatchIdle(t *testing.T) {
	m, _, _ := newTestMatch(t)
	now := time.Now()
	m.now = func() time.Time { return now }

	m.Handle(frame(t, MessageJoin{}))
	if m.Idle(time.Minute) {
		t.Error("expected fresh match to be active")
	}

	now = now.Add(2 * time.Minute)
	if !m.Idle(time.Minute) {
		t.Error("expected match to be idle")
	}
}

func TestServerConn(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := NewServer(config.Default(), store.NewMemoryStore())
	server, client := net.Pipe()
	defer client.Close()

	done := make(chan struct{})
	go func() {
		srv.HandleConn(ctx, server)
		close(done)
	}()

	if err := WriteMessage(client, MessageJoin{Nickname: "bob"}); err != nil {
		t.Fatalf("failed to send join: %v", err)
	}

	scanner := NewScanner(client)
	if !scanner.Scan() {
		t.Fatalf("expected a reply: %v", scanner.Err())
	}
	var mt MessageTransport
	if err := Decode(scanner.Bytes(), &mt); err != nil {
		t.Fatalf("failed to decode reply: %v", err)
	}
	if mt.MsgType != TypeMessageConnect {
		t.Fatalf("expected connect, got %s", mt.MsgType)
	}
	var connect MessageConnect
	if err := Decode(mt.Data, &connect); err != nil {
		t.Fatalf("failed to decode connect: %v", err)
	}
	if connect.Nickname != "bob" || connect.Board.Size != 10 || len(connect.Board.Cells) != 10 {
		t.Errorf("unexpected connect %+v", connect)
	}

	matches := srv.Matches()
	if len(matches) != 1 || matches[0].Nickname != "bob" {
		t.Errorf("unexpected live matches %+v", matches)
	}

	if err := WriteMessage(client, MessageAction{Action: ActionExit}); err != nil {
		t.Fatalf("failed to send exit: %v", err)
	}
	for scanner.Scan() {
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("match did not end after exit")
	}
	if n := len(srv.Matches()); n != 0 {
		t.Errorf("expected no live matches, got %d", n)
	}
}

func TestCleanIdleMatches(t *testing.T) {
	srv := NewServer(config.Default(), nil)
	m, _, client := newTestMatch(t)
	m.now = func() time.Time { return time.Now().Add(time.Hour) }

	srv.matches[m.ID] = m
	if n := srv.cleanIdle(); n != 1 {
		t.Fatalf("expected one idle match, got %d", n)
	}

	if _, err := client.Read(make([]byte, 1)); err == nil {
		t.Error("expected idle connection to be closed")
	}
}

func TestServerExitWithTrailingFrames(t *testing.T) {
	srv := NewServer(config.Default(), nil)
	server, client := net.Pipe()
	defer client.Close()

	done := make(chan struct{})
	go func() {
		srv.HandleConn(context.Background(), server)
		close(done)
	}()

	// The player leaves and keeps sending more than the match queue holds
	var buf bytes.Buffer
	WriteMessage(&buf, MessageJoin{Nickname: "bob"})
	WriteMessage(&buf, MessageAction{Action: ActionExit})
	for i := 0; i < 2*ConnQueueSize; i++ {
		WriteMessage(&buf, MessageAction{Action: ActionFlag, Row: 1, Col: 1})
	}
	go client.Write(buf.Bytes())

	// The reply queued before the exit still arrives
	scanner := NewScanner(client)
	if !scanner.Scan() {
		t.Fatalf("expected the connect reply: %v", scanner.Err())
	}
	var mt MessageTransport
	if err := Decode(scanner.Bytes(), &mt); err != nil || mt.MsgType != TypeMessageConnect {
		t.Fatalf("expected connect, got %s (%v)", mt.MsgType, err)
	}
	for scanner.Scan() {
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("match did not end after exit")
	}
}

func TestPlayerReadStopsAfterDone(t *testing.T) {
	server, client := net.Pipe()
	defer client.Close()

	p := NewPlayer(server)
	in := make(chan MessageTransport)
	done := make(chan struct{})
	close(done)

	finished := make(chan struct{})
	go func() {
		p.HandleRead(in, done)
		close(finished)
	}()

	// Nobody receives from in, the reader must keep draining the connection
	for i := 0; i < 2*ConnQueueSize; i++ {
		if err := WriteMessage(client, MessageAction{Action: ActionFlag}); err != nil {
			t.Fatalf("failed to write frame %d: %v", i, err)
		}
	}
	p.Disconnect()

	select {
	case <-finished:
	case <-time.After(5 * time.Second):
		t.Fatal("read loop blocked after the match ended")
	}
	if _, ok := <-in; ok {
		t.Error("expected in to be closed")
	}
}

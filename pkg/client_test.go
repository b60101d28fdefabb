package pkg

import (
	"net"
	"testing"

	"github.com/qnkhuat/sweepterm/pkg/grid"
	"github.com/qnkhuat/sweepterm/pkg/gui"
)

func TestClientApply(t *testing.T) {
	cl := NewClient(gui.ThemeBasic, "")
	s := newSession(grid.FromMines(3, []grid.Pos{{Row: 0, Col: 0}}))

	if !cl.apply(frame(t, MessageConnect{Nickname: "brave-otter", Board: s.Snapshot()})) {
		t.Fatal("expected connect to redraw")
	}
	f := cl.Frame()
	if f.Size() != 3 || f.Status.Nickname != "brave-otter" || f.Status.MinesRemaining != 1 {
		t.Errorf("unexpected frame after connect %+v", f.Status)
	}

	s, _ = s.Reveal(2, 2)
	b := s.Snapshot()
	b.ElapsedMs = 65000
	cl.apply(frame(t, MessageBoard{Board: b}))
	cl.apply(frame(t, MessageNotify{Title: NotifyWonTitle, Text: NotifyWonText, Won: true}))

	f = cl.Frame()
	if !f.Status.Won || f.Status.Score != 8 || f.Status.Notice != NotifyWonText {
		t.Errorf("unexpected status after win %+v", f.Status)
	}
	if f.Status.Clock != "1:05" {
		t.Errorf("expected clock 1:05, got %s", f.Status.Clock)
	}
	if f.Selectable(2, 2) || !f.Selectable(0, 0) {
		t.Errorf("unexpected selectable cells in %+v", f.Cells)
	}

	// A fresh board clears the notification
	cl.apply(frame(t, MessageBoard{Board: s.Restart(nil).Snapshot()}))
	if f := cl.Frame(); f.Status.Won || f.Status.Notice != "" {
		t.Errorf("expected notification to be cleared, got %+v", f.Status)
	}

	if cl.apply(MessageTransport{MsgType: TypeMessageBoard, Data: []byte(`[]`)}) {
		t.Error("expected bad board to be ignored")
	}
	if cl.apply(frame(t, MessageJoin{})) {
		t.Error("expected client-bound join to be ignored")
	}
}

func TestClientSend(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()

	cl := NewClient(gui.ThemeBasic, "bob")
	cl.Attach(client)
	go cl.HandleWrite()

	cl.Send(ActionFlag, 1, 2)

	var got []MessageTransport
	done := make(chan struct{})
	go func() {
		ReadMessages(server, func(m MessageTransport) { got = append(got, m) })
		close(done)
	}()

	cl.Disconnect()
	<-done

	if len(got) != 1 || got[0].MsgType != TypeMessageAction {
		t.Fatalf("expected one action frame, got %+v", got)
	}
	var a MessageAction
	if err := Decode(got[0].Data, &a); err != nil {
		t.Fatalf("failed to decode action: %v", err)
	}
	if a.Action != ActionFlag || a.Row != 1 || a.Col != 2 {
		t.Errorf("unexpected action %+v", a)
	}

	// Sending after disconnect is dropped instead of panicking
	cl.Send(ActionReveal, 0, 0)
}

func TestClientActSkipsOpenCells(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()

	cl := NewClient(gui.ThemeBasic, "bob")
	cl.Attach(client)
	go cl.HandleWrite()

	if cl.act(ActionReveal, 0, 0) {
		t.Error("expected no action before the first board")
	}

	s := newSession(grid.FromMines(3, []grid.Pos{{Row: 0, Col: 0}}))
	s, _ = s.Reveal(2, 2)
	cl.apply(frame(t, MessageBoard{Board: s.Snapshot()}))

	if cl.act(ActionFlag, 2, 2) {
		t.Error("expected revealed cell to be skipped")
	}
	if cl.act(ActionReveal, 3, 0) {
		t.Error("expected off-board cell to be skipped")
	}

	var got []MessageTransport
	done := make(chan struct{})
	go func() {
		ReadMessages(server, func(m MessageTransport) { got = append(got, m) })
		close(done)
	}()

	if !cl.act(ActionFlag, 0, 0) {
		t.Error("expected hidden cell to be sent")
	}
	cl.Disconnect()
	<-done

	if len(got) != 1 {
		t.Fatalf("expected one action frame, got %d", len(got))
	}
}

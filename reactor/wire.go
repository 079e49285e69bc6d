package reactor

import (
	"context"

	"github.com/gorilla/websocket"
)

// Wire is the Go analogue of spec.md §4.4's "writable/readable stream
// pair": Commands carries driver-to-delegate input, Updates carries
// delegate-to-driver output. Used directly (in-process) when the reactor
// and its DOM share a process, e.g. under test or in a `syscall/js` build.
type Wire struct {
	Commands chan Command
	Updates  chan Update
}

// NewWire creates a Wire with the given channel buffer depth.
func NewWire(buffer int) *Wire {
	return &Wire{Commands: make(chan Command, buffer), Updates: make(chan Update, buffer)}
}

// WebsocketWire bridges a Wire to a gorilla/websocket connection — the
// transport used when the reactor runs in a different process than its
// DOM, e.g. a headless test harness or a server-hosted client session
// (spec.md §4.4 expansion, "transport-agnostic event channel", grounded on
// the teacher pack's websocket signal-bridge pattern).
type WebsocketWire struct {
	Conn *websocket.Conn
	Wire *Wire
}

// NewWebsocketWire creates a WebsocketWire over conn with a fresh Wire of
// the given buffer depth.
func NewWebsocketWire(conn *websocket.Conn, buffer int) *WebsocketWire {
	return &WebsocketWire{Conn: conn, Wire: NewWire(buffer)}
}

// Pump relays frames between the socket and the Wire until ctx is
// cancelled or the socket errors. Commands is closed when the read side
// exits, so a Delegate's Run loop sees a clean EOF.
func (w *WebsocketWire) Pump(ctx context.Context) error {
	errs := make(chan error, 2)

	go func() {
		defer close(w.Wire.Commands)
		for {
			var cmd Command
			if err := w.Conn.ReadJSON(&cmd); err != nil {
				errs <- err
				return
			}
			select {
			case w.Wire.Commands <- cmd:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		for {
			select {
			case u, ok := <-w.Wire.Updates:
				if !ok {
					return
				}
				if err := w.Conn.WriteJSON(u); err != nil {
					errs <- err
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

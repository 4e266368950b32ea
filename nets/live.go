package nets

import (
	"time"

	"github.com/reusee/softplc/ilvm"
	"github.com/reusee/softplc/syncs"
	"golang.org/x/net/websocket"
)

// liveHandler pushes one frame per second with the watched addresses and
// the run state, until the client goes away.

type liveFrame struct {
	Running   bool           `json:"running"`
	ScanCount int            `json:"scan_count"`
	Values    map[string]any `json:"values"`
}

func liveHandler(interp *ilvm.Interpreter, sem syncs.Semaphore) websocket.Handler {
	return websocket.Handler(func(conn *websocket.Conn) {
		defer conn.Close()

		addrs := conn.Request().URL.Query()["addr"]
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()

		for range ticker.C {
			sem.Acquire()
			frame := liveFrame{
				Running:   interp.Running(),
				ScanCount: interp.Stats().ScanCount,
				Values:    readAddrs(interp, addrs),
			}
			sem.Release()

			if err := websocket.JSON.Send(conn, frame); err != nil {
				return
			}
		}
	})
}

package nets

import (
	"encoding/json"
	"net"
	"net/http"

	"github.com/reusee/softplc/illang"
	"github.com/reusee/softplc/ilvm"
	"github.com/reusee/softplc/ladders"
	"github.com/reusee/softplc/logs"
	"github.com/reusee/softplc/plcconfigs"
	"github.com/reusee/softplc/syncs"
)

// The monitor server observes a running interpreter. It only reads: status
// and statistics, data table snapshots, and the ladder document. Snapshot
// handlers go through a semaphore so observers cannot pile up deep copies
// faster than the scan loop can absorb.

type statusBody struct {
	Running     bool     `json:"running"`
	ExitCode    string   `json:"exit_code"`
	ScanCount   int      `json:"scan_count"`
	LastTimeMs  float64  `json:"last_scan_time_ms"`
	AvgTimeMs   float64  `json:"avg_scan_time_ms"`
	MinTimeMs   float64  `json:"min_scan_time_ms"`
	MaxTimeMs   float64  `json:"max_scan_time_ms"`
	ErrorCount  int      `json:"error_count"`
	Subroutines []string `json:"subroutines"`
}

// StartMonitor serves the monitor endpoints for one interpreter and
// returns a function that shuts the listener down.
type StartMonitor func(interp *ilvm.Interpreter, program *illang.Program) (stop func(), err error)

func (Module) StartMonitor(
	listenAddr plcconfigs.ListenAddr,
	logger logs.Logger,
) StartMonitor {
	return func(interp *ilvm.Interpreter, program *illang.Program) (func(), error) {

		ladderDocs := ladders.Build(program)
		snapshotSem := syncs.NewSemaphore(2)

		mux := http.NewServeMux()

		mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
			stats := interp.Stats()
			writeJSON(w, statusBody{
				Running:     interp.Running(),
				ExitCode:    string(interp.ExitCode()),
				ScanCount:   stats.ScanCount,
				LastTimeMs:  stats.LastTime,
				AvgTimeMs:   stats.Average(),
				MinTimeMs:   stats.MinTime,
				MaxTimeMs:   stats.MaxTime,
				ErrorCount:  stats.Errors,
				Subroutines: program.SubrNames,
			})
		})

		mux.HandleFunc("/data", func(w http.ResponseWriter, r *http.Request) {
			snapshotSem.Acquire()
			defer snapshotSem.Release()
			addrs := r.URL.Query()["addr"]
			writeJSON(w, readAddrs(interp, addrs))
		})

		mux.HandleFunc("/ladder", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, ladderDocs)
		})

		mux.Handle("/live", liveHandler(interp, snapshotSem))

		listener, err := net.Listen("tcp", string(listenAddr))
		if err != nil {
			return nil, err
		}
		logger.Info("monitor listening",
			"addr", listener.Addr().String(),
		)

		server := &http.Server{
			Handler: mux,
		}
		go func() {
			if err := server.Serve(listener); err != http.ErrServerClosed {
				logger.Error("monitor server",
					"error", err,
				)
			}
		}()

		return func() {
			server.Close()
		}, nil
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.Encode(v)
}

func readAddrs(interp *ilvm.Interpreter, addrs []string) map[string]any {
	snapshot := interp.Snapshot()
	values := make(map[string]any, len(addrs))
	for _, addr := range addrs {
		values[addr] = snapshot.Get(addr)
	}
	return values
}

package ilvm

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/reusee/softplc/datatables"
)

type ExitCode string

const (
	ExitNone     ExitCode = ""
	ExitEnd      ExitCode = "end"
	ExitMaxScans ExitCode = "max-scans-reached"
	ExitStopped  ExitCode = "stopped"
)

// ScanError describes one recovered runtime failure.
type ScanError struct {
	Scan    int
	Network int
	Err     error
}

// ErrorHook receives recovered runtime errors. It runs on the scan
// goroutine and must not panic.
type ErrorHook func(ScanError)

// Stats are written only by the scan goroutine. Observers tolerating one
// scan of staleness may read them without synchronization.
type Stats struct {
	ScanCount int
	TotalTime float64 // ms
	MinTime   float64
	MaxTime   float64
	LastTime  float64
	Errors    int
}

func (s Stats) Average() float64 {
	if s.ScanCount == 0 {
		return 0
	}
	return s.TotalTime / float64(s.ScanCount)
}

type Options struct {
	Table     *datatables.DataTable // nil for a fresh table
	ErrorHook ErrorHook
}

type RunOptions struct {
	MaxScans       int           // 0 for unlimited
	TargetScanTime time.Duration // 0 to scan as fast as possible
}

// Interpreter owns the scan cycle: system bits, statistics, per-network
// error recovery and cooperative stop.
type Interpreter struct {
	program *Program
	table   *datatables.DataTable
	cx      *Context

	errorHook ErrorHook

	running  atomic.Bool
	exitCode atomic.Value // ExitCode

	stats     Stats
	firstScan bool
	pulseRef  time.Time
}

func New(program *Program, options Options) *Interpreter {
	table := options.Table
	if table == nil {
		table = datatables.New()
	}
	interp := &Interpreter{
		program:   program,
		table:     table,
		errorHook: options.ErrorHook,
		firstScan: true,
		pulseRef:  time.Now(),
	}
	interp.exitCode.Store(ExitNone)
	interp.cx = newContext(table, program.Subroutines)
	interp.cx.interp = interp
	return interp
}

func (i *Interpreter) Table() *datatables.DataTable {
	return i.table
}

func (i *Interpreter) Stats() Stats {
	return i.stats
}

func (i *Interpreter) ExitCode() ExitCode {
	return i.exitCode.Load().(ExitCode)
}

func (i *Interpreter) Running() bool {
	return i.running.Load()
}

// Stop requests a cooperative stop, observed between scans.
func (i *Interpreter) Stop() {
	i.running.Store(false)
}

// Snapshot returns a consistent copy of the data table, aligned to a scan
// boundary.
func (i *Interpreter) Snapshot() *datatables.Snapshot {
	return i.table.Snapshot()
}

// RunScan executes one full scan and returns its duration in milliseconds.
func (i *Interpreter) RunScan() float64 {
	i.table.BeginScan()
	defer i.table.EndScan()

	t0 := time.Now()
	scanNumber := i.stats.ScanCount + 1
	i.updateSystemBits(scanNumber)

	for _, network := range i.program.Main {
		signal, err := i.runNetworkGuarded(scanNumber, network)
		if err != nil {
			i.stats.Errors++
			if i.errorHook != nil {
				i.errorHook(ScanError{
					Scan:    scanNumber,
					Network: network.Number,
					Err:     err,
				})
			}
			continue
		}
		if signal == SignalEndScan {
			i.exitCode.Store(ExitEnd)
			break
		}
		if signal == SignalReturn {
			break
		}
	}

	scanTime := float64(time.Since(t0)) / float64(time.Millisecond)
	i.stats.ScanCount = scanNumber
	i.stats.TotalTime += scanTime
	i.stats.LastTime = scanTime
	if i.stats.MinTime == 0 || scanTime < i.stats.MinTime {
		i.stats.MinTime = scanTime
	}
	if scanTime > i.stats.MaxTime {
		i.stats.MaxTime = scanTime
	}

	i.table.SetBool("SC7", true)
	return scanTime
}

// updateSystemBits publishes the scan-status area before the logic runs.
func (i *Interpreter) updateSystemBits(scanNumber int) {
	t := i.table
	t.SetBool("SC1", true)
	t.SetBool("SC2", false)
	t.SetBool("SC3", scanNumber%2 == 1)
	t.SetBool("SC4", i.running.Load())
	t.SetBool("SC5", i.firstScan)
	if time.Since(i.pulseRef) >= time.Second {
		t.SetBool("SC6", true)
		i.pulseRef = time.Now()
	} else {
		t.SetBool("SC6", false)
	}
	t.SetBool("SC7", false)
	t.SetWord("SD1", scanNumber%65536)
	t.SetWord("SD2", int(i.stats.LastTime))
	t.SetWord("SD3", int(i.stats.Average()))
	i.firstScan = false
}

func (i *Interpreter) runNetworkGuarded(scanNumber int, network *Network) (signal Signal, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("network %d panicked: %v", network.Number, r)
		}
	}()

	i.cx.resetStack()
	for _, op := range network.Ops {
		signal, err = op(i.cx)
		if err != nil {
			return SignalNone, err
		}
		if signal != SignalNone {
			return signal, nil
		}
	}
	return SignalNone, nil
}

// RunContinuous loops scans until stopped, a scan limit is hit, or the
// program executes END. With a target scan time, fast scans sleep off the
// difference.
func (i *Interpreter) RunContinuous(options RunOptions) ExitCode {
	i.running.Store(true)
	i.exitCode.Store(ExitNone)
	scans := 0

	for {
		scanTime := i.RunScan()
		scans++

		if code := i.ExitCode(); code != ExitNone {
			i.running.Store(false)
			return code
		}
		if options.MaxScans > 0 && scans >= options.MaxScans {
			i.running.Store(false)
			i.exitCode.Store(ExitMaxScans)
			return ExitMaxScans
		}
		if !i.running.Load() {
			i.exitCode.Store(ExitStopped)
			return ExitStopped
		}

		if options.TargetScanTime > 0 {
			elapsed := time.Duration(scanTime * float64(time.Millisecond))
			if sleep := options.TargetScanTime - elapsed; sleep > 0 {
				time.Sleep(sleep)
			}
		}
	}
}

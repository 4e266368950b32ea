package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/reusee/dscope"
	"github.com/reusee/softplc/cmds"
	"github.com/reusee/softplc/datatables"
	"github.com/reusee/softplc/debugs"
	"github.com/reusee/softplc/illang"
	"github.com/reusee/softplc/ilvm"
	"github.com/reusee/softplc/logs"
	"github.com/reusee/softplc/modes"
	"github.com/reusee/softplc/nets"
	"github.com/reusee/softplc/plcconfigs"
	"github.com/reusee/softplc/procs"
	"github.com/reusee/softplc/storages"
)

var (
	scenarioFlag = cmds.Var[string]("-scenario")
	checkFlag    = cmds.Switch("-check")
)

// runState threads the load-run-persist pipeline.
type runState struct {
	ctx     context.Context
	logger  logs.Logger
	parsed  *illang.Program
	program *ilvm.Program
	interp  *ilvm.Interpreter

	programPath   plcconfigs.ProgramPath
	targetTime    plcconfigs.TargetScanTime
	maxScans      plcconfigs.MaxScans
	listenAddr    plcconfigs.ListenAddr
	retentiveFile plcconfigs.RetentiveFile
	startMonitor  nets.StartMonitor
	runScenario   debugs.RunScenario
}

type step func(s *runState) (procs.Proc[*runState], error)

func (f step) Run(s *runState) (procs.Proc[*runState], error) {
	return f(s)
}

func main() {
	cmds.Execute(os.Args[1:])
	ctx := context.Background()

	scope := dscope.New(
		new(Module),
		modes.ForProduction(),
	)

	scope.Call(func(
		logger logs.Logger,
		newSpan logs.NewSpan,
		programPath plcconfigs.ProgramPath,
		targetTime plcconfigs.TargetScanTime,
		maxScans plcconfigs.MaxScans,
		listenAddr plcconfigs.ListenAddr,
		retentiveFile plcconfigs.RetentiveFile,
		startMonitor nets.StartMonitor,
		runScenario debugs.RunScenario,
	) {
		ctx, _ := newSpan(ctx, "")

		state := &runState{
			ctx:           ctx,
			logger:        logger,
			programPath:   programPath,
			targetTime:    targetTime,
			maxScans:      maxScans,
			listenAddr:    listenAddr,
			retentiveFile: retentiveFile,
			startMonitor:  startMonitor,
			runScenario:   runScenario,
		}

		var proc procs.Proc[*runState] = procs.Procs[*runState]{
			step(loadProgram),
			step(runController),
		}
		for proc != nil {
			var err error
			proc, err = proc.Run(state)
			ce(err)
		}
	})
}

func loadProgram(s *runState) (procs.Proc[*runState], error) {
	if s.programPath == "" {
		return nil, fmt.Errorf("no program: pass -program or set program in softplc.cue")
	}
	source, err := os.ReadFile(string(s.programPath))
	if err != nil {
		return nil, err
	}

	s.parsed = illang.Parse(string(source))
	for _, warning := range s.parsed.Warnings {
		s.logger.Warn("parse warning",
			"diag", warning.String(),
		)
	}
	for _, parseErr := range s.parsed.Errors {
		s.logger.Error("parse error",
			"diag", parseErr.String(),
		)
	}
	if *checkFlag {
		if len(s.parsed.Errors) > 0 {
			os.Exit(1)
		}
		return nil, nil
	}

	s.program, err = ilvm.Compile(s.parsed)
	if err != nil {
		return nil, err
	}

	table := datatables.New()
	if s.retentiveFile != "" {
		if err := storages.LoadRetentive(string(s.retentiveFile), table); err != nil {
			return nil, err
		}
	}

	s.interp = ilvm.New(s.program, ilvm.Options{
		Table: table,
		ErrorHook: func(scanErr ilvm.ScanError) {
			s.logger.Error("scan error",
				"scan", scanErr.Scan,
				"network", scanErr.Network,
				"error", scanErr.Err,
			)
		},
	})
	return nil, nil
}

func runController(s *runState) (procs.Proc[*runState], error) {
	if *checkFlag {
		return nil, nil
	}

	if *scenarioFlag != "" {
		return nil, s.runScenario(s.ctx, s.interp, *scenarioFlag)
	}

	if s.listenAddr != "" {
		stop, err := s.startMonitor(s.interp, s.parsed)
		if err != nil {
			return nil, err
		}
		defer stop()
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-signals
		s.logger.Info("stop requested")
		s.interp.Stop()
	}()

	exitCode := s.interp.RunContinuous(ilvm.RunOptions{
		MaxScans:       int(s.maxScans),
		TargetScanTime: s.targetTime.Duration(),
	})
	stats := s.interp.Stats()
	s.logger.Info("controller stopped",
		"exit", string(exitCode),
		"scans", stats.ScanCount,
		"avg_ms", stats.Average(),
		"errors", stats.Errors,
	)

	if s.retentiveFile != "" {
		if err := storages.SaveRetentive(string(s.retentiveFile), s.interp.Snapshot()); err != nil {
			return nil, err
		}
	}
	return nil, nil
}

func ce(err error) {
	if err != nil {
		panic(err)
	}
}

package plcconfigs

import (
	"time"

	"github.com/reusee/softplc/cmds"
	"github.com/reusee/softplc/configs"
	"github.com/reusee/softplc/vars"
)

// ProgramPath is the IL source file to load.
type ProgramPath string

var _ configs.Configurable = ProgramPath("")

func (p ProgramPath) ConfigExpr() string {
	return "program"
}

var programFlag = cmds.Var[string]("-program")

func (Module) ProgramPath(
	loader configs.Loader,
) ProgramPath {
	return ProgramPath(vars.FirstNonZero(
		*programFlag,
		configs.First[string](loader, "program"),
	))
}

// TargetScanTime is the pacing target of the continuous scan loop; zero
// scans as fast as possible.
type TargetScanTime time.Duration

var _ configs.Configurable = TargetScanTime(0)

func (t TargetScanTime) ConfigExpr() string {
	return "target_scan_time_ms"
}

func (t TargetScanTime) Duration() time.Duration {
	return time.Duration(t)
}

var targetScanTimeFlag = cmds.Var[int]("-target-scan-time")

func (Module) TargetScanTime(
	loader configs.Loader,
) TargetScanTime {
	ms := vars.FirstNonZero(
		*targetScanTimeFlag,
		configs.First[int](loader, "target_scan_time_ms"),
	)
	return TargetScanTime(time.Duration(ms) * time.Millisecond)
}

// MaxScans bounds the continuous run; zero runs until stopped.
type MaxScans int

var _ configs.Configurable = MaxScans(0)

func (m MaxScans) ConfigExpr() string {
	return "max_scans"
}

var maxScansFlag = cmds.Var[int]("-max-scans")

func (Module) MaxScans(
	loader configs.Loader,
) MaxScans {
	return MaxScans(vars.FirstNonZero(
		*maxScansFlag,
		configs.First[int](loader, "max_scans"),
	))
}

// ListenAddr is the monitor server address; empty disables the server.
type ListenAddr string

var _ configs.Configurable = ListenAddr("")

func (l ListenAddr) ConfigExpr() string {
	return "listen_addr"
}

var listenAddrFlag = cmds.Var[string]("-listen")

func (Module) ListenAddr(
	loader configs.Loader,
) ListenAddr {
	return ListenAddr(vars.FirstNonZero(
		*listenAddrFlag,
		configs.First[string](loader, "listen_addr"),
	))
}

// RetentiveFile is where retained data table values persist across runs;
// empty disables persistence.
type RetentiveFile string

var _ configs.Configurable = RetentiveFile("")

func (r RetentiveFile) ConfigExpr() string {
	return "retentive_file"
}

var retentiveFileFlag = cmds.Var[string]("-retentive-file")

func (Module) RetentiveFile(
	loader configs.Loader,
) RetentiveFile {
	return RetentiveFile(vars.FirstNonZero(
		*retentiveFileFlag,
		configs.First[string](loader, "retentive_file"),
	))
}

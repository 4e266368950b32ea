package ilvm

import (
	"strings"
	"testing"

	"github.com/reusee/softplc/illang"
)

func TestCompileRejectsParseErrors(t *testing.T) {
	parsed := illang.Parse("NETWORK 1\nFROB X1\n")
	if len(parsed.Errors) == 0 {
		t.Fatal()
	}
	if _, err := Compile(parsed); err == nil {
		t.Fatal("expected compile error")
	}
}

func TestCompileSucceedsWithWarnings(t *testing.T) {
	parsed := illang.Parse("NETWORK 1\nSTR X1 X2\nOUT Y1\n")
	if len(parsed.Warnings) == 0 {
		t.Fatal()
	}
	if _, err := Compile(parsed); err != nil {
		t.Fatal(err)
	}
}

func TestUnknownCallTarget(t *testing.T) {
	parsed := illang.Parse("NETWORK 1\nSTR X1\nCALL NOPE\n")
	_, err := Compile(parsed)
	if err == nil || !strings.Contains(err.Error(), "NOPE") {
		t.Fatalf("got %v", err)
	}
}

func TestForWithoutNext(t *testing.T) {
	parsed := illang.Parse("NETWORK 1\nSTR X1\nFOR 3\nOUT Y1\n")
	if _, err := Compile(parsed); err == nil {
		t.Fatal("expected compile error")
	}
}

func TestNextWithoutFor(t *testing.T) {
	parsed := illang.Parse("NETWORK 1\nSTR X1\nNEXT\n")
	if _, err := Compile(parsed); err == nil {
		t.Fatal("expected compile error")
	}
}

func TestNegativeForCount(t *testing.T) {
	parsed := illang.Parse("NETWORK 1\nSTR X1\nFOR -2\nOUT Y1\nNEXT\n")
	if _, err := Compile(parsed); err == nil {
		t.Fatal("expected compile error")
	}
}

func TestForLoop(t *testing.T) {
	interp := newTestInterp(t,
		"NETWORK 1",
		"STR SC1",
		"FOR 5",
		"MATHDEC DS1 0 DS1 + 1",
		"NEXT",
	)
	interp.RunScan()
	if got := interp.Table().GetWord("DS1"); got != 5 {
		t.Fatalf("got %d", got)
	}
}

func TestNestedFor(t *testing.T) {
	interp := newTestInterp(t,
		"NETWORK 1",
		"STR SC1",
		"FOR 3",
		"FOR 4",
		"MATHDEC DS1 0 DS1 + 1",
		"NEXT",
		"MATHDEC DS2 0 DS2 + 1",
		"NEXT",
	)
	interp.RunScan()
	table := interp.Table()
	if table.GetWord("DS1") != 12 || table.GetWord("DS2") != 3 {
		t.Fatalf("got %d %d", table.GetWord("DS1"), table.GetWord("DS2"))
	}
}

func TestCallAndReturn(t *testing.T) {
	interp := newTestInterp(t,
		"NETWORK 1",
		"STR X1",
		"CALL DOUBLE",
		"NETWORK 2",
		"STR X1",
		"OUT Y2",
		"SBR DOUBLE",
		"NETWORK 1",
		"STR SC1",
		"MATHDEC DS1 0 DS1 * 2",
		"RTC",
		"NETWORK 2",
		"STR SC1",
		"MATHDEC DS1 0 DS1 + 100",
	)
	table := interp.Table()
	table.SetWord("DS1", 3)
	table.SetBool("X1", true)

	interp.RunScan()

	// RTC fired on a true stack top, so network 2 of the subroutine is
	// skipped and the caller continues
	if got := table.GetWord("DS1"); got != 6 {
		t.Fatalf("DS1 = %d", got)
	}
	if !table.GetBool("Y2") {
		t.Fatal("caller network after CALL must run")
	}
}

func TestCallPreservesCallerStack(t *testing.T) {
	interp := newTestInterp(t,
		"NETWORK 1",
		"STR X1",
		"CALL NOISE",
		"OUT Y1",
		"SBR NOISE",
		"NETWORK 1",
		"STRN X1",
		"OUT Y3",
	)
	table := interp.Table()
	table.SetBool("X1", true)
	interp.RunScan()

	// the subroutine pushed a false; the caller's rung result survives
	if !table.GetBool("Y1") {
		t.Fatal("caller stack clobbered")
	}
	if table.GetBool("Y3") {
		t.Fatal()
	}
}

func TestEndcInSubroutineEndsScan(t *testing.T) {
	interp := newTestInterp(t,
		"NETWORK 1",
		"STR SC1",
		"CALL HALT",
		"NETWORK 2",
		"STR SC1",
		"OUT Y1",
		"SBR HALT",
		"NETWORK 1",
		"STR SC1",
		"ENDC",
	)
	interp.RunScan()

	if interp.Table().GetBool("Y1") {
		t.Fatal("ENDC in a subroutine must end the whole scan")
	}
	if interp.ExitCode() != ExitEnd {
		t.Fatalf("got %s", interp.ExitCode())
	}
}

func TestRecursionBounded(t *testing.T) {
	interp := newTestInterp(t,
		"NETWORK 1",
		"STR SC1",
		"CALL LOOP",
		"SBR LOOP",
		"NETWORK 1",
		"STR SC1",
		"CALL LOOP",
	)
	var hooked []ScanError
	interp.errorHook = func(scanErr ScanError) {
		hooked = append(hooked, scanErr)
	}
	interp.RunScan()
	if len(hooked) != 1 {
		t.Fatalf("got %d errors", len(hooked))
	}
	if !strings.Contains(hooked[0].Err.Error(), "call depth") {
		t.Fatalf("got %v", hooked[0].Err)
	}
}

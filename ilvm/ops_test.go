package ilvm

import "testing"

func TestSetRst(t *testing.T) {
	interp := newTestInterp(t,
		"NETWORK 1",
		"STR X1",
		"SET Y1 Y2",
		"NETWORK 2",
		"STR X2",
		"RST Y1",
	)
	table := interp.Table()

	table.SetBool("X1", true)
	interp.RunScan()
	if !table.GetBool("Y1") || !table.GetBool("Y2") {
		t.Fatal("set")
	}

	// latched while the rung is false
	table.SetBool("X1", false)
	interp.RunScan()
	if !table.GetBool("Y1") || !table.GetBool("Y2") {
		t.Fatal("latch")
	}

	table.SetBool("X2", true)
	interp.RunScan()
	if table.GetBool("Y1") {
		t.Fatal("rst")
	}
	if !table.GetBool("Y2") {
		t.Fatal("Y2 untouched")
	}
}

func TestPdPulse(t *testing.T) {
	interp := newTestInterp(t,
		"NETWORK 1",
		"STR X1",
		"PD Y1",
	)
	table := interp.Table()

	table.SetBool("X1", true)
	interp.RunScan()
	if !table.GetBool("Y1") {
		t.Fatal("rising edge sets")
	}

	// no edge: untouched, even if forced from outside
	interp.RunScan()
	if !table.GetBool("Y1") {
		t.Fatal()
	}
	table.SetBool("Y1", false)
	interp.RunScan()
	if table.GetBool("Y1") {
		t.Fatal("no edge must not rewrite")
	}

	table.SetBool("X1", false)
	table.SetBool("Y1", true)
	interp.RunScan()
	if table.GetBool("Y1") {
		t.Fatal("falling edge clears")
	}
}

func TestEdgeContacts(t *testing.T) {
	interp := newTestInterp(t,
		"NETWORK 1",
		"STRPD X1",
		"OUT Y1",
		"NETWORK 2",
		"STRND X1",
		"OUT Y2",
	)
	table := interp.Table()

	table.SetBool("X1", true)
	interp.RunScan()
	if !table.GetBool("Y1") {
		t.Fatal("rising")
	}
	if table.GetBool("Y2") {
		t.Fatal()
	}

	interp.RunScan()
	if table.GetBool("Y1") {
		t.Fatal("edge is one scan wide")
	}

	table.SetBool("X1", false)
	interp.RunScan()
	if table.GetBool("Y1") {
		t.Fatal()
	}
	if !table.GetBool("Y2") {
		t.Fatal("falling")
	}
}

func TestStackCombinators(t *testing.T) {
	// (X1 AND (X2 OR X3)) via ANDSTR, X4 OR'd in via ORSTR
	interp := newTestInterp(t,
		"NETWORK 1",
		"STR X1",
		"STR X2",
		"OR X3",
		"ANDSTR",
		"STR X4",
		"ORSTR",
		"OUT Y1",
	)
	table := interp.Table()

	check := func(x1, x2, x3, x4, want bool) {
		t.Helper()
		table.SetBool("X1", x1)
		table.SetBool("X2", x2)
		table.SetBool("X3", x3)
		table.SetBool("X4", x4)
		interp.RunScan()
		if table.GetBool("Y1") != want {
			t.Fatalf("%v %v %v %v: got %v", x1, x2, x3, x4, !want)
		}
	}

	check(true, false, true, false, true)
	check(true, false, false, false, false)
	check(false, true, true, false, false)
	check(false, false, false, true, true)
}

func TestComparisons(t *testing.T) {
	interp := newTestInterp(t,
		"NETWORK 1",
		"STRGT DS1 10",
		"OUT Y1",
		"NETWORK 2",
		"STRE DS1 0Ah",
		"OUT Y2",
		"NETWORK 3",
		"STRLE DF1 2.5",
		"OUT Y3",
		"NETWORK 4",
		"STRNE DS1 DS2",
		"OUT Y4",
	)
	table := interp.Table()

	table.SetWord("DS1", 10)
	table.SetFloat("DF1", 2.5)
	interp.RunScan()

	if table.GetBool("Y1") {
		t.Fatal("10 > 10")
	}
	if !table.GetBool("Y2") {
		t.Fatal("hex literal 0Ah")
	}
	if !table.GetBool("Y3") {
		t.Fatal("float compare")
	}
	if !table.GetBool("Y4") {
		t.Fatal("10 != 0")
	}

	table.SetWord("DS1", 11)
	table.SetWord("DS2", 11)
	interp.RunScan()
	if !table.GetBool("Y1") {
		t.Fatal("11 > 10")
	}
	if table.GetBool("Y4") {
		t.Fatal("11 != 11")
	}
}

func TestCompareJoinsStack(t *testing.T) {
	interp := newTestInterp(t,
		"NETWORK 1",
		"STR X1",
		"ANDGE DS1 5",
		"ORE DS1 0",
		"OUT Y1",
	)
	table := interp.Table()

	// DS1 = 0: the OR leg fires regardless of X1
	interp.RunScan()
	if !table.GetBool("Y1") {
		t.Fatal()
	}

	table.SetWord("DS1", 3)
	table.SetBool("X1", true)
	interp.RunScan()
	if table.GetBool("Y1") {
		t.Fatal("3 < 5 and 3 != 0")
	}

	table.SetWord("DS1", 5)
	interp.RunScan()
	if !table.GetBool("Y1") {
		t.Fatal()
	}
}

func TestIntWidensToFloat(t *testing.T) {
	interp := newTestInterp(t,
		"NETWORK 1",
		"STRE DF1 1",
		"OUT Y1",
	)
	table := interp.Table()
	table.SetFloat("DF1", 1.0)
	interp.RunScan()
	if !table.GetBool("Y1") {
		t.Fatal("integer literal should widen against a float address")
	}
}

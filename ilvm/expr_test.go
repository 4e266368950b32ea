package ilvm

import (
	"testing"

	"github.com/reusee/softplc/datatables"
)

func evalDecSrc(t *testing.T, table *datatables.DataTable, src string) float64 {
	t.Helper()
	node, err := parseExpr(src, false)
	if err != nil {
		t.Fatalf("%s: %v", src, err)
	}
	return evalDec(node, table)
}

func evalHexSrc(t *testing.T, table *datatables.DataTable, src string) int64 {
	t.Helper()
	node, err := parseExpr(src, true)
	if err != nil {
		t.Fatalf("%s: %v", src, err)
	}
	return evalHex(node, table)
}

func TestDecPrecedence(t *testing.T) {
	table := datatables.New()
	table.SetWord("DS2", 3)
	table.SetWord("DS3", 4)

	if got := evalDecSrc(t, table, "DS2 + DS3 * 2"); got != 11 {
		t.Fatalf("got %v", got)
	}
	if got := evalDecSrc(t, table, "(DS2 + DS3) * 2"); got != 14 {
		t.Fatalf("got %v", got)
	}
	if got := evalDecSrc(t, table, "2 ^ 3 ^ 2"); got != 512 {
		t.Fatalf("power is right associative, got %v", got)
	}
	if got := evalDecSrc(t, table, "-2 ^ 2"); got != 4 {
		t.Fatalf("unary minus binds tighter, got %v", got)
	}
	if got := evalDecSrc(t, table, "10 % 4"); got != 2 {
		t.Fatalf("got %v", got)
	}
	if got := evalDecSrc(t, table, "1 - 2 - 3"); got != -4 {
		t.Fatalf("left to right, got %v", got)
	}
}

func TestDecComparison(t *testing.T) {
	table := datatables.New()
	if got := evalDecSrc(t, table, "1 + 1 == 2"); got != 1 {
		t.Fatalf("got %v", got)
	}
	if got := evalDecSrc(t, table, "3 >= 4"); got != 0 {
		t.Fatalf("got %v", got)
	}
	if got := evalDecSrc(t, table, "3 != 4"); got != 1 {
		t.Fatalf("got %v", got)
	}
}

func TestDivisionByZero(t *testing.T) {
	table := datatables.New()
	if got := evalDecSrc(t, table, "5 / DS1"); got != 0 {
		t.Fatalf("got %v", got)
	}
	if got := evalDecSrc(t, table, "5 % 0"); got != 0 {
		t.Fatalf("got %v", got)
	}
	if got := evalHexSrc(t, table, "0x10 / 0x0"); got != 0 {
		t.Fatalf("got %v", got)
	}
}

func TestFloats(t *testing.T) {
	table := datatables.New()
	table.SetFloat("DF1", 1.5)
	if got := evalDecSrc(t, table, "DF1 * 2"); got != 3 {
		t.Fatalf("got %v", got)
	}
	if got := evalDecSrc(t, table, "0.5 + 0.25"); got != 0.75 {
		t.Fatalf("got %v", got)
	}
}

func TestHexMode(t *testing.T) {
	table := datatables.New()
	table.SetWord("DS1", 0xF0)

	if got := evalHexSrc(t, table, "DS1 & 0x3C"); got != 0x30 {
		t.Fatalf("got %x", got)
	}
	if got := evalHexSrc(t, table, "DS1 | 0x0F"); got != 0xFF {
		t.Fatalf("got %x", got)
	}
	if got := evalHexSrc(t, table, "DS1 ^ 0xFF"); got != 0x0F {
		t.Fatalf("xor, got %x", got)
	}
	if got := evalHexSrc(t, table, "0x1 << 0x4"); got != 0x10 {
		t.Fatalf("got %x", got)
	}
	if got := evalHexSrc(t, table, "DS1 >> 0x4"); got != 0xF {
		t.Fatalf("got %x", got)
	}
	if got := evalHexSrc(t, table, "0x2 + 0x3 * 0x4"); got != 0xE {
		t.Fatalf("got %x", got)
	}
}

func TestExprErrors(t *testing.T) {
	for _, src := range []string{
		"",
		"1 +",
		"(1",
		"1.2.3",
		"NOPE1 + 1",
		"1 $ 2",
	} {
		if _, err := parseExpr(src, false); err == nil {
			t.Fatalf("%q should not parse", src)
		}
	}
}

func TestMathScenario(t *testing.T) {
	interp := newTestInterp(t,
		"NETWORK 1",
		"STR SC1",
		"MATHDEC DS1 0 DS2 + DS3 * 2",
		"MATHDEC DS4 0 7 / 2",
		"MATHDEC DS5 1 7 / 2",
		"MATHDEC DF1 0 7 / 2",
		"MATHHEX DS6 0 0xF0 | 0x0F",
	)
	table := interp.Table()
	table.SetWord("DS2", 3)
	table.SetWord("DS3", 4)
	interp.RunScan()

	if got := table.GetWord("DS1"); got != 11 {
		t.Fatalf("DS1 = %d", got)
	}
	if got := table.GetWord("DS4"); got != 3 {
		t.Fatalf("truncate: %d", got)
	}
	if got := table.GetWord("DS5"); got != 4 {
		t.Fatalf("round flag: %d", got)
	}
	if got := table.GetFloat("DF1"); got != 3.5 {
		t.Fatalf("DF1 = %v", got)
	}
	if got := table.GetWord("DS6"); got != 0xFF {
		t.Fatalf("DS6 = %x", got)
	}
}

package ladders

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/reusee/softplc/illang"
)

func buildRung(t *testing.T, lines ...string) Rung {
	t.Helper()
	program := illang.Parse(strings.Join(lines, "\n"))
	if len(program.Errors) > 0 {
		t.Fatalf("parse errors: %v", program.Errors)
	}
	if len(program.Networks) != 1 {
		t.Fatalf("want one network, got %d", len(program.Networks))
	}
	return BuildRung(program.Networks[0])
}

func cellAt(rung Rung, row, col int) *Cell {
	for i := range rung.Cells {
		if rung.Cells[i].Row == row && rung.Cells[i].Col == col {
			return &rung.Cells[i]
		}
	}
	return nil
}

func checkBounds(t *testing.T, rung Rung) {
	t.Helper()
	for _, cell := range rung.Cells {
		if cell.Row < 0 || cell.Row >= rung.Rows || cell.Col < 0 || cell.Col >= rung.Cols {
			t.Fatalf("cell %s out of bounds: (%d,%d) in %dx%d",
				cell.Symbol, cell.Row, cell.Col, rung.Rows, rung.Cols)
		}
	}
}

func TestSingleRung(t *testing.T) {
	rung := buildRung(t,
		"NETWORK 1",
		"STR X1",
		"AND X2",
		"OUT Y1",
	)
	checkBounds(t, rung)
	if rung.Rows != 1 {
		t.Fatalf("rows = %d", rung.Rows)
	}

	first := cellAt(rung, 0, 0)
	if first == nil || first.Type != CellContact || first.Symbol != "noc" || first.Addr != "X1" {
		t.Fatalf("got %+v", first)
	}
	second := cellAt(rung, 0, 1)
	if second == nil || second.Addr != "X2" {
		t.Fatalf("got %+v", second)
	}
	coil := cellAt(rung, 0, rung.Cols-1)
	if coil == nil || coil.Type != CellCoil || coil.Symbol != "out" || coil.Addr != "Y1" {
		t.Fatalf("got %+v", coil)
	}
}

func TestParallelRung(t *testing.T) {
	rung := buildRung(t,
		"NETWORK 1",
		"STR X1",
		"OR X2",
		"AND X3",
		"OUT Y1",
	)
	checkBounds(t, rung)
	if rung.Rows != 2 {
		t.Fatalf("rows = %d", rung.Rows)
	}

	if c := cellAt(rung, 0, 0); c == nil || c.Addr != "X1" {
		t.Fatalf("got %+v", c)
	}
	if c := cellAt(rung, 1, 0); c == nil || c.Addr != "X2" {
		t.Fatalf("got %+v", c)
	}

	// X3 continues row 0 after the branch closes
	foundX3 := false
	for _, cell := range rung.Cells {
		if cell.Addr == "X3" {
			foundX3 = true
			if cell.Row != 0 {
				t.Fatalf("X3 on row %d", cell.Row)
			}
		}
	}
	if !foundX3 {
		t.Fatal("missing X3")
	}

	// row 1 closes with branch connectors
	branches := 0
	for _, cell := range rung.Cells {
		if cell.Row == 1 && cell.Type == CellBranch && cell.Symbol != SymHBar {
			branches++
		}
	}
	if branches == 0 {
		t.Fatal("no branch connectors on row 1")
	}

	coil := cellAt(rung, 0, rung.Cols-1)
	if coil == nil || coil.Type != CellCoil || coil.Addr != "Y1" {
		t.Fatalf("got %+v", coil)
	}
}

func TestNestedBlock(t *testing.T) {
	rung := buildRung(t,
		"NETWORK 1",
		"STR X1",
		"STR X2",
		"OR X3",
		"ANDSTR",
		"OUT Y1",
	)
	checkBounds(t, rung)
	if rung.Rows != 2 {
		t.Fatalf("rows = %d", rung.Rows)
	}
	if c := cellAt(rung, 0, 0); c == nil || c.Addr != "X1" {
		t.Fatalf("got %+v", c)
	}

	// the nested group reconnects through right-branch connectors
	hasRight := false
	for _, cell := range rung.Cells {
		switch cell.Symbol {
		case SymBranchTR, SymBranchTTR, SymBranchR:
			hasRight = true
		}
	}
	if !hasRight {
		t.Fatal("no right-side branch connectors")
	}
}

func TestMultiCoil(t *testing.T) {
	rung := buildRung(t,
		"NETWORK 1",
		"STR X1",
		"OUT Y1 Y2 Y3",
	)
	checkBounds(t, rung)
	if rung.Rows != 3 {
		t.Fatalf("rows = %d", rung.Rows)
	}
	col := rung.Cols - 1
	for i, addr := range []string{"Y1", "Y2", "Y3"} {
		c := cellAt(rung, i, col)
		if c == nil || c.Type != CellCoil || c.Addr != addr {
			t.Fatalf("row %d: got %+v", i, c)
		}
	}
}

func TestBlockOutputs(t *testing.T) {
	rung := buildRung(t,
		"NETWORK 1",
		"STR X1",
		"STR X2",
		"CNTU CT1 3",
	)
	checkBounds(t, rung)
	if rung.Rows != 2 {
		t.Fatalf("rows = %d", rung.Rows)
	}

	block := cellAt(rung, 0, rung.Cols-1)
	if block == nil || block.Type != CellBlock || block.Symbol != "cntu" {
		t.Fatalf("got %+v", block)
	}
	if len(block.Addrs) != 1 || block.Addrs[0] != "CT1" {
		t.Fatalf("got %v", block.Addrs)
	}
	if block.Monitor != "counter" {
		t.Fatalf("got %q", block.Monitor)
	}

	// both input branches render
	if c := cellAt(rung, 0, 0); c == nil || c.Addr != "X1" {
		t.Fatalf("got %+v", c)
	}
	if c := cellAt(rung, 1, 0); c == nil || c.Addr != "X2" {
		t.Fatalf("got %+v", c)
	}
}

func TestControlCells(t *testing.T) {
	rung := buildRung(t,
		"NETWORK 1",
		"STR X1",
		"ENDC",
	)
	checkBounds(t, rung)
	c := cellAt(rung, 0, rung.Cols-1)
	if c == nil || c.Symbol != "endc" {
		t.Fatalf("got %+v", c)
	}
}

func TestComparisonCell(t *testing.T) {
	rung := buildRung(t,
		"NETWORK 1",
		"STRGT DS1 10",
		"OUT Y1",
	)
	checkBounds(t, rung)
	c := cellAt(rung, 0, 0)
	if c == nil || c.Symbol != "compgt" {
		t.Fatalf("got %+v", c)
	}
	if len(c.Addrs) != 1 || c.Addrs[0] != "DS1" {
		t.Fatalf("got %v", c.Addrs)
	}
	if c.Monitor != "word" {
		t.Fatal()
	}
}

func TestMalformedRungWarns(t *testing.T) {
	program := illang.Parse(strings.Join([]string{
		"NETWORK 1",
		"STR X1",
		"STR X2",
		"STR X3",
		"STR X4",
		"OUT Y1",
	}, "\n"))
	rung := BuildRung(program.Networks[0])
	if len(rung.Warnings) == 0 {
		t.Fatal("expected a warning")
	}
	if len(rung.IL) != 5 {
		t.Fatal("il fallback must carry the source")
	}
}

func TestBoundsInvariant(t *testing.T) {
	programs := [][]string{
		{"NETWORK 1", "STR X1", "OUT Y1"},
		{"NETWORK 1", "STR X1", "OR X2", "OR X3", "AND X4", "OUT Y1"},
		{"NETWORK 1", "STR X1", "STR X2", "OR X3", "ANDSTR", "STR X4", "ORSTR", "OUT Y1"},
		{"NETWORK 1", "STR X1", "AND X2", "STR X3", "AND X4", "ORSTR", "OUT Y1 Y2"},
		{"NETWORK 1", "STR X1", "STR X2", "STR X3", "UDC CT1 5"},
		{"NETWORK 1", "STR SC1", "FILL DS1 5 7", "MATHDEC DS6 0 DS1 + 1", "END"},
		{"NETWORK 1", "STRPD X1", "TMR T1 100"},
	}
	for _, lines := range programs {
		rung := buildRung(t, lines...)
		checkBounds(t, rung)
	}
}

func TestBuildDocument(t *testing.T) {
	program := illang.Parse(strings.Join([]string{
		"NETWORK 1",
		"STR X1",
		"CALL STEP",
		"SBR STEP",
		"NETWORK 1",
		"STR C1",
		"OUT Y1",
	}, "\n"))

	docs := Build(program)
	if len(docs) != 2 {
		t.Fatalf("got %d docs", len(docs))
	}
	if docs[0].Name != "main" || docs[1].Name != "STEP" {
		t.Fatalf("got %s %s", docs[0].Name, docs[1].Name)
	}
	if len(docs[0].Rungs) != 1 || len(docs[1].Rungs) != 1 {
		t.Fatal()
	}
	if got := strings.Join(docs[0].Addresses, " "); got != "C1 X1 Y1" {
		t.Fatalf("got %q", got)
	}
}

func TestCellJSON(t *testing.T) {
	cell := Cell{
		Type:   CellContact,
		Symbol: "noc",
		Addr:   "X1",
		Addrs:  []string{"X1"},
		Opcode: "STR",
		Params: []string{"X1"},
	}
	data, err := json.Marshal(cell)
	if err != nil {
		t.Fatal(err)
	}
	s := string(data)
	for _, want := range []string{
		`"type":"contact"`,
		`"symbol":"noc"`,
		`"addr":"X1"`,
		`"monitor":null`,
		`"row":0`,
	} {
		if !strings.Contains(s, want) {
			t.Fatalf("missing %s in %s", want, s)
		}
	}

	connector := Cell{Type: CellBranch, Symbol: SymHBar, Row: 1, Col: 2}
	data, err = json.Marshal(connector)
	if err != nil {
		t.Fatal(err)
	}
	s = string(data)
	if !strings.Contains(s, `"addr":null`) || !strings.Contains(s, `"opcode":null`) {
		t.Fatalf("got %s", s)
	}

	rung := Rung{Number: 3, Rows: 1, Cols: 2}
	data, err = json.Marshal(rung)
	if err != nil {
		t.Fatal(err)
	}
	s = string(data)
	if !strings.Contains(s, `"rungnum":3`) || !strings.Contains(s, `"comment":null`) {
		t.Fatalf("got %s", s)
	}
}

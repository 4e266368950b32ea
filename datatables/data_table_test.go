package datatables

import (
	"strings"
	"testing"
)

func TestAccessors(t *testing.T) {
	table := New()

	if table.GetBool("X1") != false {
		t.Fatal("unwritten bool should be false")
	}
	table.SetBool("X1", true)
	if !table.GetBool("X1") {
		t.Fatal()
	}

	if table.GetWord("DS10000") != 0 {
		t.Fatal("unwritten word should be 0")
	}
	table.SetWord("DS10000", -42)
	if table.GetWord("DS10000") != -42 {
		t.Fatal()
	}

	table.SetFloat("DF2000", 3.25)
	if table.GetFloat("DF2000") != 3.25 {
		t.Fatal()
	}

	table.SetString("TXT1", "hello")
	if table.GetString("TXT1") != "hello" {
		t.Fatal()
	}
}

func TestInvalidAddressDegrades(t *testing.T) {
	table := New()

	// unchecked: zero reads, no-op writes
	table.SetBool("X0", true)
	table.SetBool("X2001", true)
	table.SetWord("NOPE1", 7)
	if table.GetBool("X0") || table.GetBool("X2001") {
		t.Fatal()
	}
	if table.GetWord("NOPE1") != 0 {
		t.Fatal()
	}

	// checked: explicit failures
	if _, err := table.CheckedGetBool("X2001"); err == nil {
		t.Fatal("expected error")
	}
	if err := table.CheckedSetWord("DS10001", 1); err == nil {
		t.Fatal("expected error")
	}
	_, err := table.CheckedGetWord("QQ1")
	if err == nil || !strings.Contains(err.Error(), "QQ1") {
		t.Fatalf("got %v", err)
	}
}

func TestValueDispatch(t *testing.T) {
	table := New()

	table.SetValue("Y1", true)
	if v, ok := table.GetValue("Y1").(bool); !ok || !v {
		t.Fatalf("got %v", table.GetValue("Y1"))
	}

	table.SetValue("DS1", 42)
	if v, ok := table.GetValue("DS1").(int); !ok || v != 42 {
		t.Fatalf("got %v", table.GetValue("DS1"))
	}

	// numeric widening across domains
	table.SetValue("DF1", 7)
	if table.GetFloat("DF1") != 7 {
		t.Fatal()
	}
	table.SetValue("DS2", 7.9)
	if table.GetWord("DS2") != 7 {
		t.Fatal()
	}

	if table.GetValue("BAD1") != nil {
		t.Fatal()
	}
}

func TestStringTruncation(t *testing.T) {
	table := New()
	long := strings.Repeat("x", MaxStringLen+100)
	table.SetString("TXT5", long)
	if got := table.GetString("TXT5"); len(got) != MaxStringLen {
		t.Fatalf("got len %d", len(got))
	}
}

func TestSnapshot(t *testing.T) {
	table := New()
	table.SetBool("C7", true)
	table.SetWord("DD3", 99)
	table.SetFloat("DF1", 1.5)
	table.SetString("TXT2", "snap")

	snapshot := table.Snapshot()

	// mutate after the copy
	table.SetWord("DD3", 0)

	if snapshot.Get("C7") != true {
		t.Fatal()
	}
	if snapshot.Get("DD3") != 99 {
		t.Fatalf("got %v", snapshot.Get("DD3"))
	}
	if snapshot.Get("DF1") != 1.5 {
		t.Fatal()
	}
	if snapshot.Get("TXT2") != "snap" {
		t.Fatal()
	}
	if snapshot.Get("BAD1") != nil {
		t.Fatal()
	}
}

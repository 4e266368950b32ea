package ladders

import (
	"encoding/json"
)

type CellType string

const (
	CellContact CellType = "contact"
	CellCoil    CellType = "coil"
	CellBlock   CellType = "block"
	CellBranch  CellType = "branch"
	CellEmpty   CellType = "empty"
)

// Connector symbol ids, shared with the presentation layer.
const (
	SymHBar      = "hbar"
	SymVBarL     = "vbarl"
	SymVBarR     = "vbarr"
	SymBranchTL  = "branchtl"  // top left corner
	SymBranchTTL = "branchttl" // middle left T
	SymBranchL   = "branchl"   // bottom left corner
	SymBranchTR  = "branchtr"  // top right corner
	SymBranchTTR = "branchttr" // middle right T
	SymBranchR   = "branchr"   // bottom right corner
)

// Cell is one placed ladder cell.
type Cell struct {
	Type    CellType
	Symbol  string
	Addr    string
	Addrs   []string
	Opcode  string
	Params  []string
	Row     int
	Col     int
	Monitor string
}

func (c Cell) MarshalJSON() ([]byte, error) {
	shadow := struct {
		Type    CellType `json:"type"`
		Symbol  string   `json:"symbol"`
		Addr    *string  `json:"addr"`
		Addrs   []string `json:"addrs"`
		Opcode  *string  `json:"opcode"`
		Params  []string `json:"params"`
		Row     int      `json:"row"`
		Col     int      `json:"col"`
		Monitor *string  `json:"monitor"`
	}{
		Type:   c.Type,
		Symbol: c.Symbol,
		Addrs:  c.Addrs,
		Row:    c.Row,
		Col:    c.Col,
	}
	if c.Addrs == nil {
		shadow.Addrs = []string{}
	}
	if c.Addr != "" {
		shadow.Addr = &c.Addr
	}
	if c.Opcode != "" {
		shadow.Opcode = &c.Opcode
	}
	if c.Params != nil {
		shadow.Params = c.Params
	}
	if c.Monitor != "" {
		shadow.Monitor = &c.Monitor
	}
	return json.Marshal(shadow)
}

// Rung is one network rendered to cells.
type Rung struct {
	Number   int
	Rows     int
	Cols     int
	Comment  string
	Addrs    []string
	Cells    []Cell
	IL       []string
	Warnings []string
}

func (r Rung) MarshalJSON() ([]byte, error) {
	shadow := struct {
		Number  int      `json:"rungnum"`
		Rows    int      `json:"rows"`
		Cols    int      `json:"cols"`
		Comment *string  `json:"comment"`
		Addrs   []string `json:"addrs"`
		Cells   []Cell   `json:"cells"`
		IL      []string `json:"il"`
	}{
		Number: r.Number,
		Rows:   r.Rows,
		Cols:   r.Cols,
		Addrs:  r.Addrs,
		Cells:  r.Cells,
		IL:     r.IL,
	}
	if shadow.Addrs == nil {
		shadow.Addrs = []string{}
	}
	if shadow.Cells == nil {
		shadow.Cells = []Cell{}
	}
	if r.Comment != "" {
		shadow.Comment = &r.Comment
	}
	return json.Marshal(shadow)
}

// SubrDoc is the serialized ladder form of the main program or one
// subroutine.
type SubrDoc struct {
	Name      string   `json:"subrname"`
	Addresses []string `json:"addresses"`
	Rungs     []Rung   `json:"subrdata"`
}

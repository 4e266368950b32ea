package ladders

import (
	"fmt"
	"sort"
	"strings"

	"github.com/reusee/softplc/datatables"
	"github.com/reusee/softplc/illang"
)

// The matrix builder mirrors the IL stack semantics: store-family
// instructions open a new logic group, AND extends the current group to the
// right, OR extends it downward, and ANDSTR/ORSTR combine groups. Branch
// connectors are materialized as their own cells so the presentation layer
// only draws glyphs.

// mcell is one matrix slot; nil slots are padding.
type mcell struct {
	typ     CellType
	symbol  string
	addr    string
	addrs   []string
	opcode  string
	params  []string
	monitor string
}

func connector(symbol string) *mcell {
	return &mcell{typ: CellBranch, symbol: symbol}
}

func (c *mcell) isInstruction() bool {
	return c != nil && c.typ != CellBranch
}

func (c *mcell) isHBar() bool {
	return c != nil && c.typ == CellBranch && c.symbol == SymHBar
}

// isVertical covers every branch connector that carries a vertical wire.
func (c *mcell) isVertical() bool {
	return c != nil && c.typ == CellBranch && c.symbol != SymHBar
}

type matrix [][]*mcell

func newMatrix() matrix {
	return matrix{nil}
}

func (m matrix) width() int {
	w := 0
	for _, row := range m {
		if len(row) > w {
			w = len(row)
		}
	}
	return w
}

// appendCell places a cell at the right end of row 0 and pads every other
// row with a nil slot to keep the matrix rectangular.
func appendCell(m matrix, c *mcell) matrix {
	if len(m) == 0 {
		m = newMatrix()
	}
	m[0] = append(m[0], c)
	for i := 1; i < len(m); i++ {
		m[i] = append(m[i], nil)
	}
	return m
}

// padRow extends one row to width. Row 0 of a group always carries the wire,
// so it pads with horizontal bars; a row ending in padding or a vertical
// connector pads with nils; any other row carries a wire too.
func padRow(row []*mcell, width int, isRowZero bool) []*mcell {
	for len(row) < width {
		if isRowZero {
			row = append(row, connector(SymHBar))
			continue
		}
		last := lastNonNil(row)
		if last == nil || last.isVertical() {
			row = append(row, nil)
		} else {
			row = append(row, connector(SymHBar))
		}
	}
	return row
}

func lastNonNil(row []*mcell) *mcell {
	for i := len(row) - 1; i >= 0; i-- {
		if row[i] != nil {
			return row[i]
		}
	}
	return nil
}

// mergeBelow stacks lower under upper, equalizing widths first.
func mergeBelow(upper, lower matrix) matrix {
	width := upper.width()
	if w := lower.width(); w > width {
		width = w
	}
	var out matrix
	for i, row := range upper {
		out = append(out, padRow(row, width, i == 0))
	}
	for i, row := range lower {
		out = append(out, padRow(row, width, i == 0))
	}
	if len(out) == 0 {
		out = newMatrix()
	}
	return out
}

// mergeRight joins two groups horizontally. A multi-row right side gets a
// column of right-branch connectors so its rows reconnect to the wire.
func mergeRight(left, right matrix) matrix {
	if len(right) > 1 {
		for i := range right {
			var c *mcell
			switch {
			case i == 0:
				c = connector(SymBranchTR)
			case i == len(right)-1:
				c = connector(SymBranchR)
			default:
				c = connector(SymBranchTTR)
			}
			right[i] = append([]*mcell{c}, right[i]...)
		}
	}

	leftWidth := left.width()
	height := len(left)
	if len(right) > height {
		height = len(right)
	}

	var out matrix
	for i := 0; i < height; i++ {
		var row []*mcell
		if i < len(left) {
			row = padRow(left[i], leftWidth, i == 0)
		} else {
			row = make([]*mcell, leftWidth)
		}
		if i < len(right) {
			row = append(row, right[i]...)
		}
		out = append(out, row)
	}
	return out
}

// closeBranchBlock terminates a parallel group on its right side: rows that
// end in padding get a vertical bar, rows that end on a wire get a T, and
// the first and last connected rows become corners.
func closeBranchBlock(m matrix) matrix {
	if len(m) < 2 {
		return m
	}

	wideInstr := false
	lastRow := 0
	for i, row := range m {
		last := lastNonNil(row)
		if last.isInstruction() {
			wideInstr = true
		}
		if last != nil {
			lastRow = i
		}
	}

	setLast := func(i int, c *mcell) {
		if wideInstr {
			m[i] = append(m[i], c)
		} else if len(m[i]) > 0 {
			m[i][len(m[i])-1] = c
		} else {
			m[i] = append(m[i], c)
		}
	}

	width := m.width()
	for i, row := range m {
		if i > lastRow {
			if wideInstr {
				m[i] = append(m[i], nil)
			}
			continue
		}
		m[i] = padRow(row, width, i == 0)
		last := lastNonNil(m[i])
		switch {
		case last == nil:
			setLast(i, connector(SymVBarL))
		case last.isHBar() || last.isInstruction():
			setLast(i, connector(SymBranchTTL))
		default:
			if wideInstr {
				m[i] = append(m[i], nil)
			}
		}
	}

	// first and last connected rows close as corners
	if len(m[0]) > 0 {
		m[0][len(m[0])-1] = connector(SymBranchTL)
	}
	if len(m[lastRow]) > 0 {
		m[lastRow][len(m[lastRow])-1] = connector(SymBranchL)
	}
	return m
}

// builder walks one network's instructions.
type builder struct {
	current  matrix
	stack    []matrix
	warnings []string
}

func (b *builder) push() {
	b.stack = append(b.stack, b.current)
}

func (b *builder) pop() matrix {
	if len(b.stack) == 0 {
		b.warnings = append(b.warnings, "branch combine with empty stack")
		return newMatrix()
	}
	m := b.stack[len(b.stack)-1]
	b.stack = b.stack[:len(b.stack)-1]
	return m
}

func (b *builder) input(instr *illang.Instruction, def *illang.OpDef) {
	switch {

	case instr.Opcode == "ANDSTR":
		prev := b.pop()
		b.current = mergeRight(prev, b.current)

	case instr.Opcode == "ORSTR":
		prev := b.pop()
		b.current = closeBranchBlock(mergeBelow(prev, b.current))

	case strings.HasPrefix(instr.Opcode, "STR"):
		b.push()
		b.current = appendCell(newMatrix(), instructionCell(instr, def))

	case strings.HasPrefix(instr.Opcode, "AND"):
		b.current = appendCell(b.current, instructionCell(instr, def))

	case strings.HasPrefix(instr.Opcode, "OR"):
		group := appendCell(newMatrix(), instructionCell(instr, def))
		b.current = closeBranchBlock(mergeBelow(b.current, group))
	}
}

// instructionCell builds the matrix cell for one input instruction.
func instructionCell(instr *illang.Instruction, def *illang.OpDef) *mcell {
	c := &mcell{
		typ:     CellContact,
		symbol:  def.Symbol,
		opcode:  instr.Opcode,
		params:  instr.Params,
		monitor: def.Monitor,
		addrs:   addressParams(instr.Params),
	}
	if len(c.addrs) == 1 {
		c.addr = c.addrs[0]
	}
	return c
}

func addressParams(params []string) []string {
	var addrs []string
	for _, param := range params {
		for _, token := range strings.Fields(param) {
			if datatables.ValidAddress(token) {
				addrs = append(addrs, token)
			}
		}
	}
	return addrs
}

// BuildRung renders one network.
func BuildRung(network *illang.Network) Rung {
	rung := Rung{
		Number:  network.Number,
		Comment: network.Comment,
	}
	for _, instr := range network.Instructions {
		rung.IL = append(rung.IL, instr.String())
	}
	rung.Addrs = networkAddresses(network)

	var inputs, outputs []*illang.Instruction
	for _, instr := range network.Instructions {
		def := instr.Def()
		if def == nil {
			continue
		}
		switch def.Category {
		case illang.CategoryBoolIn, illang.CategoryCompare, illang.CategoryEdge, illang.CategoryStack:
			inputs = append(inputs, instr)
		case illang.CategorySpecial, illang.CategoryNoop:
			// no cells
		default:
			outputs = append(outputs, instr)
		}
	}

	b := &builder{current: newMatrix()}
	for _, instr := range inputs {
		b.input(instr, instr.Def())
	}

	// rung-shape recovery: each unmerged group left on the stack is one
	// more parallel row block
	input := b.current
	switch depth := len(b.stack); {
	case depth <= 1:
	case depth == 2 || depth == 3:
		groups := append(append([]matrix{}, b.stack[1:]...), input)
		width := 0
		for _, m := range groups {
			if w := m.width(); w > width {
				width = w
			}
		}
		var combined matrix
		for _, m := range groups {
			for i, row := range m {
				combined = append(combined, padRow(row, width, i == 0))
			}
		}
		input = combined
	default:
		b.warnings = append(b.warnings, fmt.Sprintf("malformed rung: %d unmerged branches", depth-1))
	}

	cells, rows, cols := flatten(input)

	outRow := 0
	outCol := cols
	for _, instr := range outputs {
		outCells := outputCells(instr, instr.Def(), outCol, &outRow)
		cells = append(cells, outCells...)
	}
	if len(outputs) > 0 {
		cols = outCol + 1
	}
	if outRow > rows {
		rows = outRow
	}
	if rows == 0 {
		rows = 1
	}

	rung.Cells = cells
	rung.Rows = rows
	rung.Cols = cols
	rung.Warnings = b.warnings
	return rung
}

// flatten emits placed cells row-major. Nil slots on a live wire become
// horizontal bars; nil slots past the last cell of a row are left out.
func flatten(m matrix) (cells []Cell, rows int, cols int) {
	cols = m.width()
	rows = 0
	for i, row := range m {
		lastCol := -1
		for j := len(row) - 1; j >= 0; j-- {
			if row[j] != nil {
				lastCol = j
				break
			}
		}
		if i == 0 && cols > 0 {
			lastCol = cols - 1
		}
		if lastCol >= 0 && i+1 > rows {
			rows = i + 1
		}
		for j := 0; j <= lastCol; j++ {
			var mc *mcell
			if j < len(row) {
				mc = row[j]
			}
			if mc == nil {
				cells = append(cells, Cell{
					Type:   CellBranch,
					Symbol: SymHBar,
					Row:    i,
					Col:    j,
				})
				continue
			}
			cells = append(cells, Cell{
				Type:    mc.typ,
				Symbol:  mc.symbol,
				Addr:    mc.addr,
				Addrs:   mc.addrs,
				Opcode:  mc.opcode,
				Params:  mc.params,
				Row:     i,
				Col:     j,
				Monitor: mc.monitor,
			})
		}
	}
	if rows == 0 && cols > 0 {
		rows = 1
	}
	return cells, rows, cols
}

// outputCells emits the right-rail cells of one output instruction. Coils
// stack one row per address; blocks and control markers take a single cell.
func outputCells(instr *illang.Instruction, def *illang.OpDef, col int, row *int) []Cell {
	var cells []Cell

	switch def.Category {
	case illang.CategoryBoolOut:
		for _, addr := range instr.Params {
			cells = append(cells, Cell{
				Type:    CellCoil,
				Symbol:  def.Symbol,
				Addr:    addr,
				Addrs:   []string{addr},
				Opcode:  instr.Opcode,
				Params:  instr.Params,
				Row:     *row,
				Col:     col,
				Monitor: def.Monitor,
			})
			*row++
		}
		return cells

	case illang.CategoryControl:
		// CALL and FOR render as blocks, the scan-control markers as
		// dedicated right-rail cells
		if instr.Opcode != "CALL" && instr.Opcode != "FOR" {
			cells = append(cells, Cell{
				Type:   CellCoil,
				Symbol: def.Symbol,
				Opcode: instr.Opcode,
				Params: instr.Params,
				Row:    *row,
				Col:    col,
			})
			*row++
			return cells
		}
	}

	addrs := addressParams(instr.Params)
	cell := Cell{
		Type:    CellBlock,
		Symbol:  def.Symbol,
		Addrs:   addrs,
		Opcode:  instr.Opcode,
		Params:  instr.Params,
		Row:     *row,
		Col:     col,
		Monitor: def.Monitor,
	}
	if len(addrs) > 0 {
		cell.Addr = addrs[0]
	}
	*row++
	return append(cells, cell)
}

func networkAddresses(network *illang.Network) []string {
	seen := make(map[string]bool)
	for _, instr := range network.Instructions {
		for _, addr := range addressParams(instr.Params) {
			seen[addr] = true
		}
	}
	addrs := make([]string, 0, len(seen))
	for addr := range seen {
		addrs = append(addrs, addr)
	}
	sort.Strings(addrs)
	return addrs
}

// Build renders the whole program: the main networks first, then each
// subroutine in declaration order.
func Build(program *illang.Program) []*SubrDoc {
	docs := []*SubrDoc{
		buildDoc("main", program.Networks, program),
	}
	for _, name := range program.SubrNames {
		sub := program.Subroutines[name]
		docs = append(docs, buildDoc(name, sub.Networks, program))
	}
	return docs
}

func buildDoc(name string, networks []*illang.Network, program *illang.Program) *SubrDoc {
	doc := &SubrDoc{
		Name:      name,
		Addresses: program.Addresses(),
	}
	for _, network := range networks {
		doc.Rungs = append(doc.Rungs, BuildRung(network))
	}
	return doc
}

package illang

import (
	"fmt"
	"sort"

	"github.com/reusee/softplc/datatables"
)

// Instruction is one parsed IL statement. Immutable after parsing.
type Instruction struct {
	Opcode  string
	Params  []string
	Line    int
	Comment string
}

func (i *Instruction) String() string {
	s := i.Opcode
	for _, p := range i.Params {
		s += " " + p
	}
	return s
}

// Def returns the catalog entry for the instruction's opcode.
func (i *Instruction) Def() *OpDef {
	def, _ := Lookup(i.Opcode)
	return def
}

type Network struct {
	Number       int
	Instructions []*Instruction
	Comment      string
}

type Subroutine struct {
	Name     string
	Networks []*Network
}

// Program is the parsed form of one IL source. The implicit main program is
// Networks; named subroutines are kept apart.
type Program struct {
	Networks    []*Network
	Subroutines map[string]*Subroutine
	SubrNames   []string // declaration order
	Errors      []Diagnostic
	Warnings    []Diagnostic
}

type Diagnostic struct {
	Line    int
	Message string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("line %d: %s", d.Line, d.Message)
}

// Addresses returns the sorted set of every valid address referenced by the
// program, main and subroutines alike.
func (p *Program) Addresses() []string {
	seen := make(map[string]bool)
	collect := func(networks []*Network) {
		for _, network := range networks {
			for _, instr := range network.Instructions {
				for _, param := range instr.Params {
					if datatables.ValidAddress(param) {
						seen[param] = true
					}
				}
			}
		}
	}
	collect(p.Networks)
	for _, sub := range p.Subroutines {
		collect(sub.Networks)
	}
	addrs := make([]string, 0, len(seen))
	for addr := range seen {
		addrs = append(addrs, addr)
	}
	sort.Strings(addrs)
	return addrs
}

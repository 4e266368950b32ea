package ilvm

import (
	"fmt"
	"strings"

	"github.com/reusee/softplc/datatables"
	"github.com/reusee/softplc/illang"
)

// Network is one compiled rung: the operations run in order after the logic
// stack is cleared.
type Network struct {
	Number int
	Ops    []Operation
}

// Program is the executable form of a parsed program, created once per load
// and read-only during execution.
type Program struct {
	Main        []*Network
	Subroutines map[string][]*Network
}

// maxForCount bounds FOR loops so a runaway count cannot wedge a scan.
const maxForCount = 100000

// Compile lowers a parsed program to operation closures. Parse errors make
// the whole compile fail; malformed parameters compile to operations that
// raise a runtime error when reached, so one bad instruction cannot take the
// program down.
func Compile(parsed *illang.Program) (*Program, error) {
	if len(parsed.Errors) > 0 {
		return nil, fmt.Errorf("program has %d parse errors, first: %s",
			len(parsed.Errors), parsed.Errors[0])
	}

	c := &compiler{
		subrNames: make(map[string]bool, len(parsed.Subroutines)),
	}
	for name := range parsed.Subroutines {
		c.subrNames[name] = true
	}

	program := &Program{
		Subroutines: make(map[string][]*Network, len(parsed.Subroutines)),
	}
	for name, sub := range parsed.Subroutines {
		networks, err := c.compileNetworks(sub.Networks)
		if err != nil {
			return nil, fmt.Errorf("subroutine %s: %w", name, err)
		}
		program.Subroutines[name] = networks
	}
	main, err := c.compileNetworks(parsed.Networks)
	if err != nil {
		return nil, err
	}
	program.Main = main
	return program, nil
}

type compiler struct {
	subrNames map[string]bool
}

func (c *compiler) compileNetworks(networks []*illang.Network) ([]*Network, error) {
	out := make([]*Network, 0, len(networks))
	for _, network := range networks {
		ops, _, hitNext, err := c.compileSeq(network.Instructions)
		if err != nil {
			return nil, fmt.Errorf("network %d: %w", network.Number, err)
		}
		if hitNext {
			return nil, fmt.Errorf("network %d: NEXT without FOR", network.Number)
		}
		out = append(out, &Network{
			Number: network.Number,
			Ops:    ops,
		})
	}
	return out, nil
}

// compileSeq compiles instructions until the list ends or a NEXT is hit,
// returning the unconsumed tail and whether a NEXT terminated it.
func (c *compiler) compileSeq(instrs []*illang.Instruction) ([]Operation, []*illang.Instruction, bool, error) {
	var ops []Operation
	for len(instrs) > 0 {
		instr := instrs[0]
		switch instr.Opcode {

		case "NEXT":
			return ops, instrs[1:], true, nil

		case "FOR":
			count, err := c.forCount(instr)
			if err != nil {
				return nil, nil, false, err
			}
			body, rest, hitNext, err := c.compileSeq(instrs[1:])
			if err != nil {
				return nil, nil, false, err
			}
			if !hitNext {
				return nil, nil, false, fmt.Errorf("FOR without NEXT at line %d", instr.Line)
			}
			ops = append(ops, opFor(count, body))
			instrs = rest

		default:
			op, err := c.compileInstr(instr)
			if err != nil {
				return nil, nil, false, err
			}
			if op != nil {
				ops = append(ops, op)
			}
			instrs = instrs[1:]
		}
	}
	return ops, instrs, false, nil
}

func (c *compiler) forCount(instr *illang.Instruction) (operand, error) {
	if len(instr.Params) == 0 {
		return operand{}, fmt.Errorf("FOR needs a count at line %d", instr.Line)
	}
	count, err := resolveOperand(instr.Params[0])
	if err != nil {
		return operand{}, fmt.Errorf("FOR count at line %d: %w", instr.Line, err)
	}
	if count.addr == "" {
		if count.constI < 0 {
			return operand{}, fmt.Errorf("negative FOR count at line %d: %d", instr.Line, count.constI)
		}
		if count.constI > maxForCount {
			return operand{}, fmt.Errorf("FOR count too large at line %d: %d", instr.Line, count.constI)
		}
	}
	return count, nil
}

func param(instr *illang.Instruction, i int) string {
	if i < len(instr.Params) {
		return instr.Params[i]
	}
	return ""
}

func boolAddr(token string) (string, error) {
	if datatables.DomainOf(token) != datatables.DomainBool {
		return "", fmt.Errorf("not a bit address: %s", token)
	}
	return token, nil
}

func boolAddrs(tokens []string) ([]string, error) {
	if len(tokens) == 0 {
		return nil, fmt.Errorf("missing bit address")
	}
	for _, token := range tokens {
		if _, err := boolAddr(token); err != nil {
			return nil, err
		}
	}
	return tokens, nil
}

func splitRangeAddr(token string, domain datatables.Domain) (*datatables.PrefixInfo, int, error) {
	info, index, ok := datatables.SplitAddress(token)
	if !ok || info.Domain != domain {
		return nil, 0, fmt.Errorf("bad %s address: %s", domain, token)
	}
	return info, index, nil
}

// compileInstr lowers one instruction. A nil Operation means the instruction
// has no runtime effect.
func (c *compiler) compileInstr(instr *illang.Instruction) (Operation, error) {
	wrap := func(op Operation, err error) (Operation, error) {
		if err != nil {
			return opRuntimeError(fmt.Errorf("line %d: %s: %w", instr.Line, instr.Opcode, err)), nil
		}
		return op, nil
	}

	switch instr.Opcode {

	case "STR", "STRN":
		addr, err := boolAddr(param(instr, 0))
		return wrap(opStore(addr, instr.Opcode == "STRN"), err)
	case "AND", "ANDN":
		addr, err := boolAddr(param(instr, 0))
		return wrap(opAnd(addr, instr.Opcode == "ANDN"), err)
	case "OR", "ORN":
		addr, err := boolAddr(param(instr, 0))
		return wrap(opOr(addr, instr.Opcode == "ORN"), err)

	case "ANDSTR":
		return opAndStr(), nil
	case "ORSTR":
		return opOrStr(), nil

	case "OUT":
		addrs, err := boolAddrs(instr.Params)
		return wrap(opOut(addrs), err)
	case "SET":
		addrs, err := boolAddrs(instr.Params)
		return wrap(opSet(addrs), err)
	case "RST":
		addrs, err := boolAddrs(instr.Params)
		return wrap(opRst(addrs), err)
	case "PD":
		addrs, err := boolAddrs(instr.Params)
		return wrap(opPd(addrs), err)

	case "STRPD", "STRND":
		addr, err := boolAddr(param(instr, 0))
		return wrap(opStoreEdge(instr.Opcode, addr, instr.Opcode == "STRPD"), err)
	case "ANDPD", "ANDND":
		addr, err := boolAddr(param(instr, 0))
		return wrap(opAndEdge(instr.Opcode, addr, instr.Opcode == "ANDPD"), err)
	case "ORPD", "ORND":
		addr, err := boolAddr(param(instr, 0))
		return wrap(opOrEdge(instr.Opcode, addr, instr.Opcode == "ORPD"), err)

	case "STRE", "STRNE", "STRGT", "STRLT", "STRGE", "STRLE",
		"ANDE", "ANDNE", "ANDGT", "ANDLT", "ANDGE", "ANDLE",
		"ORE", "ORNE", "ORGT", "ORLT", "ORGE", "ORLE":
		mode, relation := splitCompareOpcode(instr.Opcode)
		a, err := resolveOperand(param(instr, 0))
		if err != nil {
			return wrap(nil, err)
		}
		b, err := resolveOperand(param(instr, 1))
		if err != nil {
			return wrap(nil, err)
		}
		return opCompare(mode, relation, a, b), nil

	case "TMR", "TMRA", "TMROFF":
		return c.compileTimer(instr)

	case "CNTU", "CNTD", "UDC":
		return c.compileCounter(instr)

	case "COPY":
		dst := param(instr, 1)
		if !datatables.ValidAddress(dst) {
			return wrap(nil, fmt.Errorf("bad destination: %s", dst))
		}
		return opCopy(param(instr, 0), dst), nil

	case "CPYBLK":
		srcInfo, srcStart, err := splitAnyAddr(param(instr, 0))
		if err != nil {
			return wrap(nil, err)
		}
		dstInfo, dstStart, err := splitAnyAddr(param(instr, 1))
		if err != nil {
			return wrap(nil, err)
		}
		count, err := resolveOperand(param(instr, 2))
		if err != nil {
			return wrap(nil, err)
		}
		return opCpyBlk(srcInfo, srcStart, dstInfo, dstStart, count), nil

	case "FILL":
		info, start, err := splitAnyAddr(param(instr, 0))
		if err != nil {
			return wrap(nil, err)
		}
		count, err := resolveOperand(param(instr, 1))
		if err != nil {
			return wrap(nil, err)
		}
		return opFill(info, start, count, param(instr, 2)), nil

	case "PACK":
		info, start, err := splitRangeAddr(param(instr, 0), datatables.DomainBool)
		if err != nil {
			return wrap(nil, err)
		}
		dst := param(instr, 1)
		if datatables.DomainOf(dst) != datatables.DomainWord {
			return wrap(nil, fmt.Errorf("bad word destination: %s", dst))
		}
		return opPack(info, start, dst), nil

	case "UNPACK":
		src := param(instr, 0)
		if datatables.DomainOf(src) != datatables.DomainWord {
			return wrap(nil, fmt.Errorf("bad word source: %s", src))
		}
		info, start, err := splitRangeAddr(param(instr, 1), datatables.DomainBool)
		if err != nil {
			return wrap(nil, err)
		}
		return opUnpack(src, info, start), nil

	case "SHFRG":
		info, start, err := splitRangeAddr(param(instr, 0), datatables.DomainBool)
		if err != nil {
			return wrap(nil, err)
		}
		endInfo, end, err := splitRangeAddr(param(instr, 1), datatables.DomainBool)
		if err != nil {
			return wrap(nil, err)
		}
		if endInfo != info || end < start {
			return wrap(nil, fmt.Errorf("bad shift range: %s to %s", param(instr, 0), param(instr, 1)))
		}
		return opShfrg(info, start, end), nil

	case "SUM":
		info, start, err := splitRangeAddr(param(instr, 0), datatables.DomainWord)
		if err != nil {
			return wrap(nil, err)
		}
		count, err := resolveOperand(param(instr, 1))
		if err != nil {
			return wrap(nil, err)
		}
		dst := param(instr, 2)
		if datatables.DomainOf(dst) != datatables.DomainWord {
			return wrap(nil, fmt.Errorf("bad word destination: %s", dst))
		}
		return opSum(info, start, count, dst), nil

	case "FINDEQ", "FINDNE", "FINDGT", "FINDLT", "FINDGE", "FINDLE",
		"FINDIEQ", "FINDINE", "FINDIGT", "FINDILT", "FINDIGE", "FINDILE":
		return c.compileFind(instr)

	case "MATHDEC", "MATHHEX":
		dst := param(instr, 0)
		domain := datatables.DomainOf(dst)
		if domain != datatables.DomainWord && domain != datatables.DomainFloat {
			return wrap(nil, fmt.Errorf("bad destination: %s", dst))
		}
		node, err := parseExpr(param(instr, 2), instr.Opcode == "MATHHEX")
		if err != nil {
			return wrap(nil, err)
		}
		if instr.Opcode == "MATHHEX" {
			return opMathHex(dst, node), nil
		}
		return opMathDec(dst, param(instr, 1), node), nil

	case "CALL":
		name := param(instr, 0)
		if !c.subrNames[name] {
			return nil, fmt.Errorf("unknown subroutine %s at line %d", name, instr.Line)
		}
		return opCall(name), nil

	case "RT":
		return opReturn(false), nil
	case "RTC":
		return opReturn(true), nil
	case "END":
		return opEnd(false), nil
	case "ENDC":
		return opEnd(true), nil

	case "NETWORK", "SBR":
		// structural, handled by the parser
		return nil, nil
	}

	return nil, fmt.Errorf("unknown opcode %s at line %d", instr.Opcode, instr.Line)
}

func splitCompareOpcode(opcode string) (mode string, relation string) {
	for _, prefix := range []string{"STR", "AND", "OR"} {
		if len(opcode) > len(prefix) && opcode[:len(prefix)] == prefix {
			return prefix, opcode[len(prefix):]
		}
	}
	return "STR", opcode
}

func splitAnyAddr(token string) (*datatables.PrefixInfo, int, error) {
	info, index, ok := datatables.SplitAddress(token)
	if !ok {
		return nil, 0, fmt.Errorf("bad address: %s", token)
	}
	return info, index, nil
}

func (c *compiler) compileTimer(instr *illang.Instruction) (Operation, error) {
	wrap := func(op Operation, err error) (Operation, error) {
		if err != nil {
			return opRuntimeError(fmt.Errorf("line %d: %s: %w", instr.Line, instr.Opcode, err)), nil
		}
		return op, nil
	}
	bitAddr := param(instr, 0)
	wordAddr, err := timerWordAddr(bitAddr)
	if err != nil {
		return wrap(nil, err)
	}
	preset, err := resolveOperand(param(instr, 1))
	if err != nil {
		return wrap(nil, err)
	}
	scale, err := timeUnitScale(param(instr, 2))
	if err != nil {
		return wrap(nil, err)
	}
	switch instr.Opcode {
	case "TMR":
		return opTmr(bitAddr, wordAddr, preset, scale), nil
	case "TMRA":
		return opTmra(bitAddr, wordAddr, preset, scale), nil
	default:
		return opTmrOff(bitAddr, wordAddr, preset, scale), nil
	}
}

func (c *compiler) compileCounter(instr *illang.Instruction) (Operation, error) {
	wrap := func(op Operation, err error) (Operation, error) {
		if err != nil {
			return opRuntimeError(fmt.Errorf("line %d: %s: %w", instr.Line, instr.Opcode, err)), nil
		}
		return op, nil
	}
	bitAddr := param(instr, 0)
	wordAddr, err := counterWordAddr(bitAddr)
	if err != nil {
		return wrap(nil, err)
	}
	preset, err := resolveOperand(param(instr, 1))
	if err != nil {
		return wrap(nil, err)
	}
	switch instr.Opcode {
	case "CNTU":
		return opCntu(bitAddr, wordAddr, preset), nil
	case "CNTD":
		return opCntd(bitAddr, wordAddr, preset), nil
	default:
		return opUdc(bitAddr, wordAddr, preset), nil
	}
}

func (c *compiler) compileFind(instr *illang.Instruction) (Operation, error) {
	wrap := func(op Operation, err error) (Operation, error) {
		if err != nil {
			return opRuntimeError(fmt.Errorf("line %d: %s: %w", instr.Line, instr.Opcode, err)), nil
		}
		return op, nil
	}

	opcode := instr.Opcode
	incremental := strings.HasPrefix(opcode, "FINDI")
	relation := opcode[len("FIND"):]
	if incremental {
		relation = opcode[len("FINDI"):]
	}

	search, err := resolveOperand(param(instr, 0))
	if err != nil {
		return wrap(nil, err)
	}
	info, start, err := splitRangeAddr(param(instr, 1), datatables.DomainWord)
	if err != nil {
		return wrap(nil, err)
	}
	count, err := resolveOperand(param(instr, 2))
	if err != nil {
		return wrap(nil, err)
	}
	result := param(instr, 3)
	if datatables.DomainOf(result) != datatables.DomainWord {
		return wrap(nil, fmt.Errorf("bad result address: %s", result))
	}
	index := ""
	if incremental {
		index = param(instr, 4)
		if datatables.DomainOf(index) != datatables.DomainWord {
			return wrap(nil, fmt.Errorf("bad index address: %s", index))
		}
	}
	return opFind(relation, search, info, start, count, result, index), nil
}

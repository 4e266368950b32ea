package illang

import (
	"fmt"
	"strconv"
	"strings"
)

// Parse reads IL source text into a Program. It never fails: diagnostics are
// collected on the result and callers decide how to proceed.
func Parse(source string) *Program {
	p := &parser{
		program: &Program{
			Subroutines: make(map[string]*Subroutine),
		},
	}
	source = strings.ReplaceAll(source, "\r\n", "\n")
	source = strings.ReplaceAll(source, "\r", "\n")
	for i, line := range strings.Split(source, "\n") {
		p.line = i + 1
		p.parseLine(line)
	}
	return p.program
}

type parser struct {
	program *Program
	line    int

	currentSubr    *Subroutine
	currentNetwork *Network
	mainNumbers    map[int]bool
	subrNumbers    map[int]bool
	pendingComment []string
}

func (p *parser) scopeNumbers() map[int]bool {
	if p.currentSubr != nil {
		if p.subrNumbers == nil {
			p.subrNumbers = make(map[int]bool)
		}
		return p.subrNumbers
	}
	if p.mainNumbers == nil {
		p.mainNumbers = make(map[int]bool)
	}
	return p.mainNumbers
}

func (p *parser) errorf(format string, args ...any) {
	p.program.Errors = append(p.program.Errors, Diagnostic{
		Line:    p.line,
		Message: fmt.Sprintf(format, args...),
	})
}

func (p *parser) warnf(format string, args ...any) {
	p.program.Warnings = append(p.program.Warnings, Diagnostic{
		Line:    p.line,
		Message: fmt.Sprintf(format, args...),
	})
}

func (p *parser) takeComment() string {
	if len(p.pendingComment) == 0 {
		return ""
	}
	comment := strings.Join(p.pendingComment, "\n")
	p.pendingComment = nil
	return comment
}

func (p *parser) parseLine(line string) {
	code, comment, hasComment := stripComment(line)
	if strings.TrimSpace(code) == "" {
		if hasComment {
			p.pendingComment = append(p.pendingComment, comment)
		}
		return
	}

	tokens := splitLine(code)
	if len(tokens) == 0 {
		return
	}
	opcode := strings.ToUpper(tokens[0])
	params := tokens[1:]

	switch opcode {
	case "NETWORK":
		p.startNetwork(params)
		return
	case "SBR":
		p.startSubroutine(params)
		return
	}

	if p.currentNetwork == nil {
		if p.currentSubr != nil {
			p.warnf("instruction before first NETWORK in subroutine %s, ignored", p.currentSubr.Name)
		} else {
			p.warnf("instruction before first NETWORK, ignored")
		}
		return
	}

	def, known := Lookup(opcode)
	if !known {
		p.errorf("unknown opcode: %s", opcode)
		return
	}

	params = normalizeParams(def, params)
	if !def.ValidArity(len(params)) {
		p.warnf("%s expects %d to %d parameters, got %d",
			opcode, def.MinParams, def.MaxParams, len(params))
	}

	instr := &Instruction{
		Opcode:  opcode,
		Params:  params,
		Line:    p.line,
		Comment: p.takeComment(),
	}
	if hasComment {
		if instr.Comment != "" {
			instr.Comment += "\n"
		}
		instr.Comment += comment
	}
	p.currentNetwork.Instructions = append(p.currentNetwork.Instructions, instr)
}

func (p *parser) startNetwork(params []string) {
	if len(params) != 1 {
		p.warnf("NETWORK expects one number, got %d parameters", len(params))
	}
	number := 0
	if len(params) > 0 {
		n, err := strconv.Atoi(params[0])
		if err != nil || n < 1 {
			p.warnf("bad network number: %s", params[0])
		} else {
			number = n
		}
	}

	if p.scopeNumbers()[number] && number != 0 {
		p.warnf("duplicate network number: %d", number)
	}
	p.scopeNumbers()[number] = true

	network := &Network{
		Number:  number,
		Comment: p.takeComment(),
	}
	if p.currentSubr != nil {
		p.currentSubr.Networks = append(p.currentSubr.Networks, network)
	} else {
		p.program.Networks = append(p.program.Networks, network)
	}
	p.currentNetwork = network
}

func (p *parser) startSubroutine(params []string) {
	p.currentNetwork = nil
	p.pendingComment = nil
	if len(params) != 1 {
		p.warnf("SBR expects one name, got %d parameters", len(params))
		p.currentSubr = nil
		return
	}
	name := strings.ToUpper(params[0])
	if _, ok := p.program.Subroutines[name]; ok {
		p.warnf("duplicate subroutine name: %s", name)
	} else {
		p.program.SubrNames = append(p.program.SubrNames, name)
	}
	sub := &Subroutine{Name: name}
	p.program.Subroutines[name] = sub
	p.currentSubr = sub
	p.subrNumbers = make(map[int]bool)
}

// normalizeParams uppercases address-like tokens (quoted strings and
// expressions stay verbatim) and joins the expression tail of math opcodes
// into a single parameter.
func normalizeParams(def *OpDef, params []string) []string {
	if def.Category == CategoryMath && (def.Name == "MATHDEC" || def.Name == "MATHHEX") && len(params) > 2 {
		head := params[:2]
		expr := strings.Join(params[2:], " ")
		params = append(append([]string{}, head...), expr)
	}
	out := make([]string, len(params))
	for i, param := range params {
		kind := def.ParamKindAt(i)
		if kind == ParamExpression || strings.HasPrefix(param, `"`) {
			out[i] = param
			continue
		}
		out[i] = strings.ToUpper(param)
	}
	return out
}

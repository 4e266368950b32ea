package illang

import "strings"

type Category uint8

const (
	CategoryInvalid Category = iota
	CategoryBoolIn
	CategoryBoolOut
	CategoryCompare
	CategoryEdge
	CategoryStack
	CategoryTimer
	CategoryCounter
	CategoryDataMove
	CategoryDataPack
	CategoryMath
	CategorySearch
	CategoryControl
	CategorySpecial
	CategoryNoop
)

type ParamKind uint8

const (
	ParamBoolAddr ParamKind = iota
	ParamWordAddr
	ParamFloatAddr
	ParamStringAddr
	ParamAnyAddr
	ParamWordOrConst
	ParamBoolOrConst
	ParamAnyOrConst
	ParamFlags
	ParamExpression
	ParamTimeUnit
	ParamSubrName
	ParamNetworkNumber
)

// Monitor categories tell the presentation layer what kind of live value a
// cell should display.
const (
	MonitorNone    = ""
	MonitorBool    = "bool"
	MonitorWord    = "word"
	MonitorTimer   = "timer"
	MonitorCounter = "counter"
)

type OpDef struct {
	Name      string
	Desc      string
	Category  Category
	MinParams int
	MaxParams int
	Params    []ParamKind
	Symbol    string
	Monitor   string
}

// unlimited marks coil-style opcodes accepting a run of addresses.
const unlimited = 16

var opDefs = []OpDef{

	// boolean inputs
	{"STR", "store contact on stack", CategoryBoolIn, 1, 1, []ParamKind{ParamBoolAddr}, "noc", MonitorBool},
	{"STRN", "store negated contact on stack", CategoryBoolIn, 1, 1, []ParamKind{ParamBoolAddr}, "ncc", MonitorBool},
	{"AND", "and contact with stack top", CategoryBoolIn, 1, 1, []ParamKind{ParamBoolAddr}, "noc", MonitorBool},
	{"ANDN", "and negated contact with stack top", CategoryBoolIn, 1, 1, []ParamKind{ParamBoolAddr}, "ncc", MonitorBool},
	{"OR", "or contact with stack top", CategoryBoolIn, 1, 1, []ParamKind{ParamBoolAddr}, "noc", MonitorBool},
	{"ORN", "or negated contact with stack top", CategoryBoolIn, 1, 1, []ParamKind{ParamBoolAddr}, "ncc", MonitorBool},

	// stack combinators
	{"ANDSTR", "and top two stack entries", CategoryStack, 0, 0, nil, "", MonitorNone},
	{"ORSTR", "or top two stack entries", CategoryStack, 0, 0, nil, "", MonitorNone},

	// boolean outputs
	{"OUT", "write stack top to coils", CategoryBoolOut, 1, unlimited, []ParamKind{ParamBoolAddr}, "out", MonitorBool},
	{"SET", "latch coils on true stack top", CategoryBoolOut, 1, unlimited, []ParamKind{ParamBoolAddr}, "set", MonitorBool},
	{"RST", "unlatch coils on true stack top", CategoryBoolOut, 1, unlimited, []ParamKind{ParamBoolAddr}, "rst", MonitorBool},
	{"PD", "pulse coils on stack top edges", CategoryBoolOut, 1, unlimited, []ParamKind{ParamBoolAddr}, "pd", MonitorBool},

	// edge contacts
	{"STRPD", "store rising edge contact", CategoryEdge, 1, 1, []ParamKind{ParamBoolAddr}, "nocpd", MonitorBool},
	{"STRND", "store falling edge contact", CategoryEdge, 1, 1, []ParamKind{ParamBoolAddr}, "nocnd", MonitorBool},
	{"ANDPD", "and rising edge contact", CategoryEdge, 1, 1, []ParamKind{ParamBoolAddr}, "nocpd", MonitorBool},
	{"ANDND", "and falling edge contact", CategoryEdge, 1, 1, []ParamKind{ParamBoolAddr}, "nocnd", MonitorBool},
	{"ORPD", "or rising edge contact", CategoryEdge, 1, 1, []ParamKind{ParamBoolAddr}, "nocpd", MonitorBool},
	{"ORND", "or falling edge contact", CategoryEdge, 1, 1, []ParamKind{ParamBoolAddr}, "nocnd", MonitorBool},

	// comparison contacts
	{"STRE", "store equal compare", CategoryCompare, 2, 2, []ParamKind{ParamAnyOrConst, ParamAnyOrConst}, "compeq", MonitorWord},
	{"STRNE", "store not-equal compare", CategoryCompare, 2, 2, []ParamKind{ParamAnyOrConst, ParamAnyOrConst}, "compneq", MonitorWord},
	{"STRGT", "store greater-than compare", CategoryCompare, 2, 2, []ParamKind{ParamAnyOrConst, ParamAnyOrConst}, "compgt", MonitorWord},
	{"STRLT", "store less-than compare", CategoryCompare, 2, 2, []ParamKind{ParamAnyOrConst, ParamAnyOrConst}, "complt", MonitorWord},
	{"STRGE", "store greater-or-equal compare", CategoryCompare, 2, 2, []ParamKind{ParamAnyOrConst, ParamAnyOrConst}, "compge", MonitorWord},
	{"STRLE", "store less-or-equal compare", CategoryCompare, 2, 2, []ParamKind{ParamAnyOrConst, ParamAnyOrConst}, "comple", MonitorWord},
	{"ANDE", "and equal compare", CategoryCompare, 2, 2, []ParamKind{ParamAnyOrConst, ParamAnyOrConst}, "compeq", MonitorWord},
	{"ANDNE", "and not-equal compare", CategoryCompare, 2, 2, []ParamKind{ParamAnyOrConst, ParamAnyOrConst}, "compneq", MonitorWord},
	{"ANDGT", "and greater-than compare", CategoryCompare, 2, 2, []ParamKind{ParamAnyOrConst, ParamAnyOrConst}, "compgt", MonitorWord},
	{"ANDLT", "and less-than compare", CategoryCompare, 2, 2, []ParamKind{ParamAnyOrConst, ParamAnyOrConst}, "complt", MonitorWord},
	{"ANDGE", "and greater-or-equal compare", CategoryCompare, 2, 2, []ParamKind{ParamAnyOrConst, ParamAnyOrConst}, "compge", MonitorWord},
	{"ANDLE", "and less-or-equal compare", CategoryCompare, 2, 2, []ParamKind{ParamAnyOrConst, ParamAnyOrConst}, "comple", MonitorWord},
	{"ORE", "or equal compare", CategoryCompare, 2, 2, []ParamKind{ParamAnyOrConst, ParamAnyOrConst}, "compeq", MonitorWord},
	{"ORNE", "or not-equal compare", CategoryCompare, 2, 2, []ParamKind{ParamAnyOrConst, ParamAnyOrConst}, "compneq", MonitorWord},
	{"ORGT", "or greater-than compare", CategoryCompare, 2, 2, []ParamKind{ParamAnyOrConst, ParamAnyOrConst}, "compgt", MonitorWord},
	{"ORLT", "or less-than compare", CategoryCompare, 2, 2, []ParamKind{ParamAnyOrConst, ParamAnyOrConst}, "complt", MonitorWord},
	{"ORGE", "or greater-or-equal compare", CategoryCompare, 2, 2, []ParamKind{ParamAnyOrConst, ParamAnyOrConst}, "compge", MonitorWord},
	{"ORLE", "or less-or-equal compare", CategoryCompare, 2, 2, []ParamKind{ParamAnyOrConst, ParamAnyOrConst}, "comple", MonitorWord},

	// timers
	{"TMR", "on-delay timer", CategoryTimer, 2, 3, []ParamKind{ParamBoolAddr, ParamWordOrConst, ParamTimeUnit}, "tmr", MonitorTimer},
	{"TMRA", "retentive on-delay timer", CategoryTimer, 2, 3, []ParamKind{ParamBoolAddr, ParamWordOrConst, ParamTimeUnit}, "tmra", MonitorTimer},
	{"TMROFF", "off-delay timer", CategoryTimer, 2, 3, []ParamKind{ParamBoolAddr, ParamWordOrConst, ParamTimeUnit}, "tmroff", MonitorTimer},

	// counters
	{"CNTU", "up counter", CategoryCounter, 2, 2, []ParamKind{ParamBoolAddr, ParamWordOrConst}, "cntu", MonitorCounter},
	{"CNTD", "down counter", CategoryCounter, 2, 2, []ParamKind{ParamBoolAddr, ParamWordOrConst}, "cntd", MonitorCounter},
	{"UDC", "up-down counter", CategoryCounter, 2, 2, []ParamKind{ParamBoolAddr, ParamWordOrConst}, "udc", MonitorCounter},

	// data movement
	{"COPY", "copy one value", CategoryDataMove, 2, 2, []ParamKind{ParamAnyOrConst, ParamAnyAddr}, "copy", MonitorWord},
	{"CPYBLK", "copy a block of values", CategoryDataMove, 3, 3, []ParamKind{ParamAnyAddr, ParamAnyAddr, ParamWordOrConst}, "cpyblk", MonitorWord},
	{"FILL", "fill a block with one value", CategoryDataMove, 3, 3, []ParamKind{ParamAnyAddr, ParamWordOrConst, ParamAnyOrConst}, "fill", MonitorWord},

	// bit packing
	{"PACK", "pack 16 bits into a word", CategoryDataPack, 2, 2, []ParamKind{ParamBoolAddr, ParamWordAddr}, "pack", MonitorWord},
	{"UNPACK", "unpack a word into 16 bits", CategoryDataPack, 2, 2, []ParamKind{ParamWordAddr, ParamBoolAddr}, "unpack", MonitorWord},
	{"SHFRG", "shift register over a bit range", CategoryDataPack, 2, 2, []ParamKind{ParamBoolAddr, ParamBoolAddr}, "shfrg", MonitorBool},

	// math
	{"MATHDEC", "decimal math expression", CategoryMath, 3, 3, []ParamKind{ParamAnyAddr, ParamFlags, ParamExpression}, "mathdec", MonitorWord},
	{"MATHHEX", "hexadecimal math expression", CategoryMath, 3, 3, []ParamKind{ParamAnyAddr, ParamFlags, ParamExpression}, "mathhex", MonitorWord},
	{"SUM", "sum a word range", CategoryMath, 3, 3, []ParamKind{ParamWordAddr, ParamWordOrConst, ParamWordAddr}, "sum", MonitorWord},

	// table search
	{"FINDEQ", "find first equal value", CategorySearch, 4, 4, []ParamKind{ParamAnyOrConst, ParamWordAddr, ParamWordOrConst, ParamWordAddr}, "findeq", MonitorWord},
	{"FINDNE", "find first not-equal value", CategorySearch, 4, 4, []ParamKind{ParamAnyOrConst, ParamWordAddr, ParamWordOrConst, ParamWordAddr}, "findne", MonitorWord},
	{"FINDGT", "find first greater value", CategorySearch, 4, 4, []ParamKind{ParamAnyOrConst, ParamWordAddr, ParamWordOrConst, ParamWordAddr}, "findgt", MonitorWord},
	{"FINDLT", "find first lesser value", CategorySearch, 4, 4, []ParamKind{ParamAnyOrConst, ParamWordAddr, ParamWordOrConst, ParamWordAddr}, "findlt", MonitorWord},
	{"FINDGE", "find first greater-or-equal value", CategorySearch, 4, 4, []ParamKind{ParamAnyOrConst, ParamWordAddr, ParamWordOrConst, ParamWordAddr}, "findge", MonitorWord},
	{"FINDLE", "find first less-or-equal value", CategorySearch, 4, 4, []ParamKind{ParamAnyOrConst, ParamWordAddr, ParamWordOrConst, ParamWordAddr}, "findle", MonitorWord},
	{"FINDIEQ", "incremental find equal", CategorySearch, 5, 5, []ParamKind{ParamAnyOrConst, ParamWordAddr, ParamWordOrConst, ParamWordAddr, ParamWordAddr}, "findeq", MonitorWord},
	{"FINDINE", "incremental find not-equal", CategorySearch, 5, 5, []ParamKind{ParamAnyOrConst, ParamWordAddr, ParamWordOrConst, ParamWordAddr, ParamWordAddr}, "findne", MonitorWord},
	{"FINDIGT", "incremental find greater", CategorySearch, 5, 5, []ParamKind{ParamAnyOrConst, ParamWordAddr, ParamWordOrConst, ParamWordAddr, ParamWordAddr}, "findgt", MonitorWord},
	{"FINDILT", "incremental find lesser", CategorySearch, 5, 5, []ParamKind{ParamAnyOrConst, ParamWordAddr, ParamWordOrConst, ParamWordAddr, ParamWordAddr}, "findlt", MonitorWord},
	{"FINDIGE", "incremental find greater-or-equal", CategorySearch, 5, 5, []ParamKind{ParamAnyOrConst, ParamWordAddr, ParamWordOrConst, ParamWordAddr, ParamWordAddr}, "findge", MonitorWord},
	{"FINDILE", "incremental find less-or-equal", CategorySearch, 5, 5, []ParamKind{ParamAnyOrConst, ParamWordAddr, ParamWordOrConst, ParamWordAddr, ParamWordAddr}, "findle", MonitorWord},

	// control flow
	{"CALL", "call a subroutine", CategoryControl, 1, 1, []ParamKind{ParamSubrName}, "call", MonitorNone},
	{"RT", "return from subroutine", CategoryControl, 0, 0, nil, "rt", MonitorNone},
	{"RTC", "return from subroutine if stack top is true", CategoryControl, 0, 0, nil, "rtc", MonitorNone},
	{"END", "end the scan", CategoryControl, 0, 0, nil, "end", MonitorNone},
	{"ENDC", "end the scan if stack top is true", CategoryControl, 0, 0, nil, "endc", MonitorNone},
	{"FOR", "repeat following instructions", CategoryControl, 1, 1, []ParamKind{ParamWordOrConst}, "for", MonitorNone},
	{"NEXT", "close a FOR loop", CategoryControl, 0, 0, nil, "next", MonitorNone},

	// structure directives
	{"NETWORK", "start a network", CategorySpecial, 1, 1, []ParamKind{ParamNetworkNumber}, "", MonitorNone},
	{"SBR", "start a subroutine", CategorySpecial, 1, 1, []ParamKind{ParamSubrName}, "", MonitorNone},
}

var opDefByName = func() map[string]*OpDef {
	m := make(map[string]*OpDef, len(opDefs))
	for i := range opDefs {
		m[opDefs[i].Name] = &opDefs[i]
	}
	return m
}()

// Lookup finds an opcode definition, case-insensitively.
func Lookup(opcode string) (*OpDef, bool) {
	def, ok := opDefByName[strings.ToUpper(opcode)]
	return def, ok
}

// ValidArity reports whether n parameters fit the opcode's declared range.
func (d *OpDef) ValidArity(n int) bool {
	return n >= d.MinParams && n <= d.MaxParams
}

// ParamKindAt returns the expected kind of the i-th parameter. The last
// declared kind repeats for trailing parameters of variadic opcodes.
func (d *OpDef) ParamKindAt(i int) ParamKind {
	if len(d.Params) == 0 {
		return ParamAnyOrConst
	}
	if i >= len(d.Params) {
		i = len(d.Params) - 1
	}
	return d.Params[i]
}

package ilvm

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/reusee/softplc/datatables"
)

// Data movement and table operations. All of them except SHFRG act only while
// the rung result is true, like any other output block; SHFRG takes its data,
// clock and reset from the rung inputs instead.

// literalValue decodes a constant parameter: quoted string, float, hex
// (trailing h) or decimal integer.
func literalValue(token string) (any, error) {
	if strings.HasPrefix(token, `"`) && strings.HasSuffix(token, `"`) && len(token) >= 2 {
		return token[1 : len(token)-1], nil
	}
	if last := token[len(token)-1]; (last == 'h' || last == 'H') && len(token) > 1 {
		if n, err := strconv.ParseInt(token[:len(token)-1], 16, 64); err == nil {
			return int(n), nil
		}
	}
	if strings.Contains(token, ".") {
		if f, err := strconv.ParseFloat(token, 64); err == nil {
			return f, nil
		}
	}
	if n, err := strconv.Atoi(token); err == nil {
		return n, nil
	}
	return nil, fmt.Errorf("bad literal: %s", token)
}

func opCopy(src string, dst string) Operation {
	fromTable := datatables.ValidAddress(src)
	var constVal any
	if !fromTable {
		var err error
		constVal, err = literalValue(src)
		if err != nil {
			return opRuntimeError(err)
		}
	}
	return func(cx *Context) (Signal, error) {
		if !cx.top {
			return SignalNone, nil
		}
		if fromTable {
			cx.Table.SetValue(dst, cx.Table.GetValue(src))
		} else {
			cx.Table.SetValue(dst, constVal)
		}
		return SignalNone, nil
	}
}

func opCpyBlk(srcInfo *datatables.PrefixInfo, srcStart int, dstInfo *datatables.PrefixInfo, dstStart int, count operand) Operation {
	return func(cx *Context) (Signal, error) {
		if !cx.top {
			return SignalNone, nil
		}
		n := count.intValue(cx)
		if n < 0 {
			return SignalNone, fmt.Errorf("negative block count: %d", n)
		}
		if srcStart+n-1 > srcInfo.Max || dstStart+n-1 > dstInfo.Max {
			return SignalNone, fmt.Errorf("block copy out of range: %s%d..+%d to %s%d",
				srcInfo.Name, srcStart, n, dstInfo.Name, dstStart)
		}
		for i := 0; i < n; i++ {
			v := cx.Table.GetValue(datatables.Addr(srcInfo.Name, srcStart+i))
			cx.Table.SetValue(datatables.Addr(dstInfo.Name, dstStart+i), v)
		}
		return SignalNone, nil
	}
}

func opFill(info *datatables.PrefixInfo, start int, count operand, value string) Operation {
	var constVal any
	fromTable := datatables.ValidAddress(value)
	if !fromTable {
		var err error
		constVal, err = literalValue(value)
		if err != nil {
			return opRuntimeError(err)
		}
	}
	return func(cx *Context) (Signal, error) {
		if !cx.top {
			return SignalNone, nil
		}
		n := count.intValue(cx)
		if n < 0 {
			return SignalNone, fmt.Errorf("negative fill count: %d", n)
		}
		if start+n-1 > info.Max {
			return SignalNone, fmt.Errorf("fill out of range: %s%d..+%d", info.Name, start, n)
		}
		v := constVal
		if fromTable {
			v = cx.Table.GetValue(value)
		}
		for i := 0; i < n; i++ {
			cx.Table.SetValue(datatables.Addr(info.Name, start+i), v)
		}
		return SignalNone, nil
	}
}

func opPack(boolInfo *datatables.PrefixInfo, start int, dst string) Operation {
	return func(cx *Context) (Signal, error) {
		if !cx.top {
			return SignalNone, nil
		}
		if start+15 > boolInfo.Max {
			return SignalNone, fmt.Errorf("pack out of range: %s%d", boolInfo.Name, start)
		}
		word := 0
		for i := 0; i < 16; i++ {
			if cx.Table.GetBool(datatables.Addr(boolInfo.Name, start+i)) {
				word |= 1 << i
			}
		}
		cx.Table.SetWord(dst, word)
		return SignalNone, nil
	}
}

func opUnpack(src string, boolInfo *datatables.PrefixInfo, start int) Operation {
	return func(cx *Context) (Signal, error) {
		if !cx.top {
			return SignalNone, nil
		}
		if start+15 > boolInfo.Max {
			return SignalNone, fmt.Errorf("unpack out of range: %s%d", boolInfo.Name, start)
		}
		word := cx.Table.GetWord(src)
		for i := 0; i < 16; i++ {
			cx.Table.SetBool(datatables.Addr(boolInfo.Name, start+i), word&(1<<i) != 0)
		}
		return SignalNone, nil
	}
}

// opShfrg shifts the bit range start..end one place toward end on each
// rising clock edge, feeding the data input into the first bit. The reset
// input clears the whole range.
func opShfrg(info *datatables.PrefixInfo, start, end int) Operation {
	key := datatables.Addr(info.Name, start)
	return func(cx *Context) (Signal, error) {
		in := cx.inputs(3)
		data, clock, reset := in[0], in[1], in[2]

		s := cx.stateFor("SHFRG", key)
		rising := clock && !s.prevInputs[0]
		s.prevInputs[0] = clock

		if reset {
			for i := start; i <= end; i++ {
				cx.Table.SetBool(datatables.Addr(info.Name, i), false)
			}
			return SignalNone, nil
		}
		if rising {
			for i := end; i > start; i-- {
				cx.Table.SetBool(datatables.Addr(info.Name, i),
					cx.Table.GetBool(datatables.Addr(info.Name, i-1)))
			}
			cx.Table.SetBool(key, data)
		}
		return SignalNone, nil
	}
}

func opSum(info *datatables.PrefixInfo, start int, count operand, dst string) Operation {
	return func(cx *Context) (Signal, error) {
		if !cx.top {
			return SignalNone, nil
		}
		n := count.intValue(cx)
		if n < 0 {
			return SignalNone, fmt.Errorf("negative sum count: %d", n)
		}
		if start+n-1 > info.Max {
			return SignalNone, fmt.Errorf("sum out of range: %s%d..+%d", info.Name, start, n)
		}
		total := 0
		for i := 0; i < n; i++ {
			total += cx.Table.GetWord(datatables.Addr(info.Name, start+i))
		}
		cx.Table.SetWord(dst, total)
		return SignalNone, nil
	}
}

func findMatch(relation string, candidate, search int) bool {
	switch relation {
	case "EQ":
		return candidate == search
	case "NE":
		return candidate != search
	case "GT":
		return candidate > search
	case "LT":
		return candidate < search
	case "GE":
		return candidate >= search
	case "LE":
		return candidate <= search
	}
	return false
}

// opFind scans count words from start and writes the first matching 0-based
// offset, or -1, to result. With an index address the scan resumes from the
// stored position and advances it past each hit.
func opFind(relation string, search operand, info *datatables.PrefixInfo, start int, count operand, result string, index string) Operation {
	return func(cx *Context) (Signal, error) {
		if !cx.top {
			return SignalNone, nil
		}
		n := count.intValue(cx)
		if n < 0 {
			return SignalNone, fmt.Errorf("negative search count: %d", n)
		}
		if start+n-1 > info.Max {
			return SignalNone, fmt.Errorf("search out of range: %s%d..+%d", info.Name, start, n)
		}

		from := 0
		if index != "" {
			from = cx.Table.GetWord(index)
			if from < 0 {
				from = 0
			}
		}

		searchVal := search.intValue(cx)
		for i := from; i < n; i++ {
			candidate := cx.Table.GetWord(datatables.Addr(info.Name, start+i))
			if findMatch(relation, candidate, searchVal) {
				cx.Table.SetWord(result, i)
				if index != "" {
					cx.Table.SetWord(index, i+1)
				}
				return SignalNone, nil
			}
		}
		cx.Table.SetWord(result, -1)
		if index != "" {
			cx.Table.SetWord(index, 0)
		}
		return SignalNone, nil
	}
}

// opRuntimeError defers a malformed instruction to scan time, where the per
// network guard reports it without aborting the scan.
func opRuntimeError(err error) Operation {
	return func(cx *Context) (Signal, error) {
		return SignalNone, err
	}
}

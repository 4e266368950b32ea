package ilvm

import (
	"fmt"
	"strings"
)

// Timer instructions own a T bit address and its derived TD accumulator
// word. Presets are in milliseconds after unit scaling; accumulation uses
// the previous scan's duration. The fractional accumulator lives in the
// per-instruction state, the data table mirrors it as a whole number.

func timerWordAddr(bitAddr string) (string, error) {
	if strings.HasPrefix(bitAddr, "T") && !strings.HasPrefix(bitAddr, "TD") && !strings.HasPrefix(bitAddr, "TXT") {
		return "TD" + bitAddr[1:], nil
	}
	return "", fmt.Errorf("not a timer address: %s", bitAddr)
}

func counterWordAddr(bitAddr string) (string, error) {
	if strings.HasPrefix(bitAddr, "CT") && !strings.HasPrefix(bitAddr, "CTD") {
		return "CTD" + bitAddr[2:], nil
	}
	return "", fmt.Errorf("not a counter address: %s", bitAddr)
}

func timeUnitScale(unit string) (float64, error) {
	switch strings.ToLower(unit) {
	case "", "ms":
		return 1, nil
	case "s", "sec":
		return 1000, nil
	case "m", "min":
		return 60000, nil
	}
	return 0, fmt.Errorf("bad time unit: %s", unit)
}

func opTmr(bitAddr, wordAddr string, preset operand, scale float64) Operation {
	return func(cx *Context) (Signal, error) {
		s := cx.stateFor("TMR", bitAddr)
		presetMs := float64(preset.intValue(cx)) * scale

		if cx.top {
			s.acc += cx.scanTime()
			if s.acc >= presetMs {
				s.acc = presetMs
			}
		} else {
			s.acc = 0
		}
		cx.Table.SetBool(bitAddr, cx.top && s.acc >= presetMs)
		cx.Table.SetWord(wordAddr, int(s.acc))
		return SignalNone, nil
	}
}

// opTmra retains the accumulator while disabled; the reset rung input clears
// it regardless of enable.
func opTmra(bitAddr, wordAddr string, preset operand, scale float64) Operation {
	return func(cx *Context) (Signal, error) {
		s := cx.stateFor("TMRA", bitAddr)
		presetMs := float64(preset.intValue(cx)) * scale
		in := cx.inputs(2)
		enable, reset := in[0], in[1]

		if reset {
			s.acc = 0
		} else if enable {
			s.acc += cx.scanTime()
			if s.acc >= presetMs {
				s.acc = presetMs
			}
		}
		cx.Table.SetBool(bitAddr, !reset && s.acc >= presetMs)
		cx.Table.SetWord(wordAddr, int(s.acc))
		return SignalNone, nil
	}
}

func opTmrOff(bitAddr, wordAddr string, preset operand, scale float64) Operation {
	return func(cx *Context) (Signal, error) {
		s := cx.stateFor("TMROFF", bitAddr)
		presetMs := float64(preset.intValue(cx)) * scale

		if cx.top {
			s.acc = 0
			cx.Table.SetBool(bitAddr, true)
		} else {
			if s.acc < presetMs {
				s.acc += cx.scanTime()
			}
			if s.acc >= presetMs {
				s.acc = presetMs
				cx.Table.SetBool(bitAddr, false)
			} else {
				cx.Table.SetBool(bitAddr, true)
			}
		}
		cx.Table.SetWord(wordAddr, int(s.acc))
		return SignalNone, nil
	}
}

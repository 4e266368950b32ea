package ilvm

import "fmt"

// Control flow operations. CALL runs a subroutine's networks inline with the
// caller's logic stack saved and cleared; END terminates the scan whether it
// fires in the main program or inside a subroutine.

func opCall(name string) Operation {
	return func(cx *Context) (Signal, error) {
		networks, ok := cx.subroutines[name]
		if !ok {
			return SignalNone, fmt.Errorf("unknown subroutine: %s", name)
		}
		if cx.callDepth >= maxCallDepth {
			return SignalNone, fmt.Errorf("call depth exceeded at subroutine %s", name)
		}

		savedStack := append([]bool(nil), cx.stack...)
		savedTop := cx.top
		cx.callDepth++
		signal, err := runNetworks(cx, networks)
		cx.callDepth--
		cx.stack = append(cx.stack[:0], savedStack...)
		cx.top = savedTop

		if err != nil {
			return SignalNone, err
		}
		if signal == SignalEndScan {
			return SignalEndScan, nil
		}
		return SignalNone, nil
	}
}

// runNetworks executes a subroutine body: each network starts with a cleared
// stack, a return signal stops the body, an end signal propagates out.
func runNetworks(cx *Context, networks []*Network) (Signal, error) {
	for _, network := range networks {
		cx.resetStack()
		for _, op := range network.Ops {
			signal, err := op(cx)
			if err != nil {
				return SignalNone, err
			}
			switch signal {
			case SignalReturn:
				return SignalNone, nil
			case SignalEndScan:
				return SignalEndScan, nil
			}
		}
	}
	return SignalNone, nil
}

func opReturn(conditional bool) Operation {
	return func(cx *Context) (Signal, error) {
		if conditional && !cx.top {
			return SignalNone, nil
		}
		return SignalReturn, nil
	}
}

func opEnd(conditional bool) Operation {
	return func(cx *Context) (Signal, error) {
		if conditional && !cx.top {
			return SignalNone, nil
		}
		return SignalEndScan, nil
	}
}

// opFor repeats its body. Signals from the body break the loop and
// propagate.
func opFor(count operand, body []Operation) Operation {
	return func(cx *Context) (Signal, error) {
		n := count.intValue(cx)
		if n < 0 {
			return SignalNone, fmt.Errorf("negative FOR count: %d", n)
		}
		if n > maxForCount {
			n = maxForCount
		}
		for i := 0; i < n; i++ {
			for _, op := range body {
				signal, err := op(cx)
				if err != nil {
					return SignalNone, err
				}
				if signal != SignalNone {
					return signal, nil
				}
			}
		}
		return SignalNone, nil
	}
}

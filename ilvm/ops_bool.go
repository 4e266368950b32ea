package ilvm

// Boolean contact and coil operations. Each compile-time constructor closes
// over its decoded parameters; the returned Operation touches only the
// Context.

func opStore(addr string, negate bool) Operation {
	return func(cx *Context) (Signal, error) {
		v := cx.Table.GetBool(addr)
		if negate {
			v = !v
		}
		cx.push(v)
		return SignalNone, nil
	}
}

func opAnd(addr string, negate bool) Operation {
	return func(cx *Context) (Signal, error) {
		v := cx.Table.GetBool(addr)
		if negate {
			v = !v
		}
		cx.setTop(cx.top && v)
		return SignalNone, nil
	}
}

func opOr(addr string, negate bool) Operation {
	return func(cx *Context) (Signal, error) {
		v := cx.Table.GetBool(addr)
		if negate {
			v = !v
		}
		cx.setTop(cx.top || v)
		return SignalNone, nil
	}
}

func opAndStr() Operation {
	return func(cx *Context) (Signal, error) {
		b := cx.pop()
		a := cx.pop()
		cx.push(a && b)
		return SignalNone, nil
	}
}

func opOrStr() Operation {
	return func(cx *Context) (Signal, error) {
		b := cx.pop()
		a := cx.pop()
		cx.push(a || b)
		return SignalNone, nil
	}
}

func opOut(addrs []string) Operation {
	return func(cx *Context) (Signal, error) {
		for _, addr := range addrs {
			cx.Table.SetBool(addr, cx.top)
		}
		return SignalNone, nil
	}
}

func opSet(addrs []string) Operation {
	return func(cx *Context) (Signal, error) {
		if cx.top {
			for _, addr := range addrs {
				cx.Table.SetBool(addr, true)
			}
		}
		return SignalNone, nil
	}
}

func opRst(addrs []string) Operation {
	return func(cx *Context) (Signal, error) {
		if cx.top {
			for _, addr := range addrs {
				cx.Table.SetBool(addr, false)
			}
		}
		return SignalNone, nil
	}
}

// opPd pulses each coil: true on a rising edge of the rung result, false on
// a falling edge, untouched otherwise.
func opPd(addrs []string) Operation {
	return func(cx *Context) (Signal, error) {
		for _, addr := range addrs {
			s := cx.stateFor("PD", addr)
			prev := s.prevInputs[0]
			s.prevInputs[0] = cx.top
			if cx.top && !prev {
				cx.Table.SetBool(addr, true)
			} else if !cx.top && prev {
				cx.Table.SetBool(addr, false)
			}
		}
		return SignalNone, nil
	}
}

// edgeOf updates the remembered value for (opcode, addr) and reports whether
// this scan saw the requested transition.
func edgeOf(cx *Context, opcode, addr string, rising bool) bool {
	v := cx.Table.GetBool(addr)
	s := cx.stateFor(opcode, addr)
	prev := s.prevInputs[0]
	s.prevInputs[0] = v
	if rising {
		return v && !prev
	}
	return !v && prev
}

func opStoreEdge(opcode, addr string, rising bool) Operation {
	return func(cx *Context) (Signal, error) {
		cx.push(edgeOf(cx, opcode, addr, rising))
		return SignalNone, nil
	}
}

func opAndEdge(opcode, addr string, rising bool) Operation {
	return func(cx *Context) (Signal, error) {
		v := edgeOf(cx, opcode, addr, rising)
		cx.setTop(cx.top && v)
		return SignalNone, nil
	}
}

func opOrEdge(opcode, addr string, rising bool) Operation {
	return func(cx *Context) (Signal, error) {
		v := edgeOf(cx, opcode, addr, rising)
		cx.setTop(cx.top || v)
		return SignalNone, nil
	}
}

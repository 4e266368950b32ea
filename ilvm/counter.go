package ilvm

// Counter instructions own a CT bit address and its derived CTD count word.
// Counting is edge triggered; previous enable values live in the
// per-instruction state table.

func opCntu(bitAddr, wordAddr string, preset operand) Operation {
	return func(cx *Context) (Signal, error) {
		s := cx.stateFor("CNTU", bitAddr)
		presetVal := preset.intValue(cx)
		in := cx.inputs(2)
		enable, reset := in[0], in[1]

		rising := enable && !s.prevInputs[0]
		s.prevInputs[0] = enable

		count := cx.Table.GetWord(wordAddr)
		if reset {
			count = 0
		} else if rising {
			count++
			if count >= presetVal {
				count = presetVal
			}
		}
		cx.Table.SetWord(wordAddr, count)
		cx.Table.SetBool(bitAddr, !reset && count >= presetVal)
		return SignalNone, nil
	}
}

// opCntd counts down from the preset: reset loads the preset, the bit turns
// on at zero.
func opCntd(bitAddr, wordAddr string, preset operand) Operation {
	return func(cx *Context) (Signal, error) {
		s := cx.stateFor("CNTD", bitAddr)
		presetVal := preset.intValue(cx)
		in := cx.inputs(2)
		enable, reset := in[0], in[1]

		rising := enable && !s.prevInputs[0]
		s.prevInputs[0] = enable

		count := cx.Table.GetWord(wordAddr)
		if reset {
			count = presetVal
		} else if rising {
			count--
			if count < 0 {
				count = 0
			}
		}
		cx.Table.SetWord(wordAddr, count)
		cx.Table.SetBool(bitAddr, !reset && count <= 0)
		return SignalNone, nil
	}
}

// opUdc counts up and down with independent edge detection; up wins when
// both edges land in the same scan. The count is clamped to a 16 bit range
// and the bit is true only at exactly the preset.
func opUdc(bitAddr, wordAddr string, preset operand) Operation {
	return func(cx *Context) (Signal, error) {
		s := cx.stateFor("UDC", bitAddr)
		presetVal := preset.intValue(cx)
		in := cx.inputs(3)
		up, down, reset := in[0], in[1], in[2]

		risingUp := up && !s.prevInputs[0]
		risingDown := down && !s.prevInputs[1]
		s.prevInputs[0] = up
		s.prevInputs[1] = down

		count := cx.Table.GetWord(wordAddr)
		switch {
		case reset:
			count = 0
		case risingUp:
			count++
		case risingDown:
			count--
		}
		if count < 0 {
			count = 0
		}
		if count > 65535 {
			count = 65535
		}
		cx.Table.SetWord(wordAddr, count)
		cx.Table.SetBool(bitAddr, count == presetVal)
		return SignalNone, nil
	}
}

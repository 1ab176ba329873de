package cpu

import (
	"github.com/AdminOfLife/pcjs/cpu/instructions"
	"github.com/AdminOfLife/pcjs/curated"
)

// StepCPU implements the §4.7 step loop. It runs until at least
// minCycles have been spent or the CPU halts, dispatching exactly one
// instruction (plus any carried-over prefixes) per pass through the
// body. The returned value follows the documented accounting contract:
// cycles actually executed on a normal return, 0 if execution never
// dispatched (not used by this implementation, which has no debugger
// breakpoint hook), -1 is likewise unused here for the same reason.
func (c *CPU) StepCPU(minCycles int) (int, error) {
	remaining := minCycles
	spent := 0

	for remaining > 0 && !c.Halted {
		if c.cancelRequested {
			c.cancelRequested = false
			break
		}
		n, err := c.stepOne()
		if err != nil {
			if curated.IsAny(err) {
				if ierr := c.deliverFault(err); ierr != nil {
					return spent, ierr
				}
				continue
			}
			return spent, err
		}
		remaining -= n
		spent += n
		c.TotalCycles += int64(n)
	}
	return spent, nil
}

// HaltCPU clamps the current (or next) StepCPU call's remaining budget
// to zero: the instruction in flight completes, then the loop exits.
// Debugger breakpoints use the same mechanism.
func (c *CPU) HaltCPU() { c.cancelRequested = true }

// deliverFault routes a curated fault error to the interrupt unit
// instead of aborting the step loop, per §7's recovery policy.
func (c *CPU) deliverFault(err error) error {
	cat := curated.CategoryOf(err)
	if cat == curated.None || cat == curated.Fatal {
		return err
	}
	errCode := -1
	if cat.HasErrorCode() {
		errCode = curated.ErrorCodeOf(err)
	}
	return c.Interrupt.RaiseInterrupt(c.interruptState(), cat.Vector(), errCode)
}

// stepOne dispatches one full instruction, including however many
// prefix bytes (segment override, LOCK, REP/REPNE) precede its opcode.
// Prefix state is cleared once at the top and carried forward across
// every iteration of the loop below rather than being reset per byte,
// so a prefix set by one pass survives to the opcode dispatched by a
// later pass in the same call (§4.7 step 1: "loop to 4 without
// resetting prefix state").
func (c *CPU) stepOne() (int, error) {
	c.Timers.UpdateAll()

	if c.intFlags != 0 {
		raised, _, err := c.Interrupt.CheckINTR(c.interruptState(), &c.intFlags, c.PIC, c.DMA)
		if err != nil {
			return 0, err
		}
		if raised {
			return 0, nil
		}
		if c.Halted {
			return 0, nil
		}
	}

	c.segOverride = nil
	c.lockPrefix = false

	opAddr := c.linearIP()
	c.Registry.FireReturn(opAddr)
	// prefixIP is the address of the first prefix byte of the group (or
	// the opcode itself if there is no prefix) — the point a REP string
	// instruction resumes at if interrupted mid-count, matching how real
	// hardware backs IP up to the earliest prefix byte rather than the
	// REP byte specifically when one or more prefixes precede it.
	prefixIP := c.IP.Value()
	total := 0

	for {
		op, cost := c.fetchIPByte()
		total += cost

		switch op {
		case 0x26:
			c.segOverride = c.ES
			continue
		case 0x2E:
			c.segOverride = c.CS
			continue
		case 0x36:
			c.segOverride = c.SS
			continue
		case 0x3E:
			c.segOverride = c.DS
			continue
		case 0xF0:
			c.lockPrefix = true
			continue
		case 0xF2, 0xF3:
			c.repPrefixIP = prefixIP
			n, err := c.stepRep(op)
			return total + n, err
		}

		handler := c.table[op]
		if handler == nil {
			mnemonic := instructions.Primary[op].Mnemonic
			if mnemonic == "" {
				mnemonic = "?"
			}
			return 0, curated.Fault(curated.UD, 0, "unimplemented opcode %#02x [%s] at %05x", op, mnemonic, opAddr)
		}

		res, err := handler(c)
		if err != nil {
			return 0, err
		}
		res.Opcode = op
		res.Final = true
		return total + res.TotalCycles(), nil
	}
}

// stepRep consumes the string opcode a REP/REPNE prefix modifies. The
// string handlers themselves consult c.repMode and loop over CX, so
// this just dispatches once with the mode set and lets the handler's
// Result carry the full repetition's charged cycles.
func (c *CPU) stepRep(prefixOp uint8) (int, error) {
	c.repMode = prefixOp
	defer func() { c.repMode = 0 }()

	op, cost := c.fetchIPByte()
	handler := c.table[op]
	if handler == nil {
		return cost, curated.Fault(curated.UD, 0, "unimplemented string opcode %#02x", op)
	}
	res, err := handler(c)
	if err != nil {
		return cost, err
	}
	res.Opcode = op
	res.Final = true
	return res.TotalCycles() + cost, nil
}

package cpu

import "github.com/AdminOfLife/pcjs/cpu/execution"

// BCD adjustment opcodes: DAA/DAS correct a packed-BCD byte left in AL
// by ADD/SUB; AAA/AAS do the same for the unpacked-BCD-in-AX form;
// AAM/AAD convert between unpacked BCD and binary around MUL/DIV. All
// six are base 8086 opcodes that packed-decimal DOS/BASIC/COBOL
// runtimes lean on heavily.

func opDaa(c *CPU) (execution.Result, error) {
	c.AX.LoadLow(c.Flags.DecimalAdjustAdd(c.AX.Low()))
	return execution.Result{Mnemonic: "DAA", Cycles: 4, ByteCount: 1}, nil
}

func opDas(c *CPU) (execution.Result, error) {
	c.AX.LoadLow(c.Flags.DecimalAdjustSub(c.AX.Low()))
	return execution.Result{Mnemonic: "DAS", Cycles: 4, ByteCount: 1}, nil
}

func opAaa(c *CPU) (execution.Result, error) {
	al, ah := c.Flags.AdjustASCIIAdd(c.AX.Low(), c.AX.High())
	c.AX.LoadLow(al)
	c.AX.LoadHigh(ah)
	return execution.Result{Mnemonic: "AAA", Cycles: 8, ByteCount: 1}, nil
}

func opAas(c *CPU) (execution.Result, error) {
	al, ah := c.Flags.AdjustASCIISub(c.AX.Low(), c.AX.High())
	c.AX.LoadLow(al)
	c.AX.LoadHigh(ah)
	return execution.Result{Mnemonic: "AAS", Cycles: 8, ByteCount: 1}, nil
}

// opAam reads the divisor byte the assembler always emits after 0xD4
// (0x0A for the documented AAM, though the CPU honors whatever byte is
// there).
func opAam(c *CPU) (execution.Result, error) {
	divisor, cost := c.fetchIPByte()
	al, ah := c.Flags.AdjustASCIIMul(c.AX.Low(), divisor)
	c.AX.LoadLow(al)
	c.AX.LoadHigh(ah)
	return execution.Result{Mnemonic: "AAM", Cycles: 83 + cost, ByteCount: 2}, nil
}

// opAad reads the multiplier byte the assembler always emits after
// 0xD5 (0x0A for the documented AAD).
func opAad(c *CPU) (execution.Result, error) {
	multiplier, cost := c.fetchIPByte()
	al, ah := c.Flags.AdjustASCIIDiv(c.AX.Low(), c.AX.High(), multiplier)
	c.AX.LoadLow(al)
	c.AX.LoadHigh(ah)
	return execution.Result{Mnemonic: "AAD", Cycles: 60 + cost, ByteCount: 2}, nil
}

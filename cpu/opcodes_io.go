package cpu

import "github.com/AdminOfLife/pcjs/cpu/execution"

func opInALImm8(c *CPU) (execution.Result, error) {
	port, cost := c.fetchIPByte()
	c.AX.LoadLow(c.Ports.In8(uint16(port)))
	return execution.Result{Mnemonic: "IN AL,imm8", Cycles: 10 + cost, ByteCount: 2}, nil
}

func opInAXImm8(c *CPU) (execution.Result, error) {
	port, cost := c.fetchIPByte()
	c.AX.Load(c.Ports.In16(uint16(port)))
	return execution.Result{Mnemonic: "IN AX,imm8", Cycles: 10 + cost, ByteCount: 2}, nil
}

func opOutImm8AL(c *CPU) (execution.Result, error) {
	port, cost := c.fetchIPByte()
	c.Ports.Out8(uint16(port), c.AX.Low())
	return execution.Result{Mnemonic: "OUT imm8,AL", Cycles: 10 + cost, ByteCount: 2}, nil
}

func opOutImm8AX(c *CPU) (execution.Result, error) {
	port, cost := c.fetchIPByte()
	c.Ports.Out16(uint16(port), c.AX.Value())
	return execution.Result{Mnemonic: "OUT imm8,AX", Cycles: 10 + cost, ByteCount: 2}, nil
}

func opInALDX(c *CPU) (execution.Result, error) {
	c.AX.LoadLow(c.Ports.In8(c.DX.Value()))
	return execution.Result{Mnemonic: "IN AL,DX", Cycles: 8, ByteCount: 1}, nil
}

func opInAXDX(c *CPU) (execution.Result, error) {
	c.AX.Load(c.Ports.In16(c.DX.Value()))
	return execution.Result{Mnemonic: "IN AX,DX", Cycles: 8, ByteCount: 1}, nil
}

func opOutDXAL(c *CPU) (execution.Result, error) {
	c.Ports.Out8(c.DX.Value(), c.AX.Low())
	return execution.Result{Mnemonic: "OUT DX,AL", Cycles: 8, ByteCount: 1}, nil
}

func opOutDXAX(c *CPU) (execution.Result, error) {
	c.Ports.Out16(c.DX.Value(), c.AX.Value())
	return execution.Result{Mnemonic: "OUT DX,AX", Cycles: 8, ByteCount: 1}, nil
}

package vm

import (
	"fmt"
	"strings"
)

// Dump renders the whole machine for human inspection: the pc and stack
// pointer values, a 16x16 hex grid of memory with the pc and stack cells
// ANSI-inverted, and a per-row ASCII sidebar where printable bytes show as
// themselves and everything else as '.'. It is a pure view of state and
// never mutates the machine.
func (m *Machine) Dump() string {
	var b strings.Builder

	fmt.Fprintf(&b, "   pc: %d\n", m.pc)
	fmt.Fprintf(&b, "stack: %d\n", m.sp)

	b.WriteString("   ")
	for j := 0; j < 16; j++ {
		fmt.Fprintf(&b, " _%x", j)
	}
	b.WriteByte('\n')

	for i := 0; i < 16; i++ {
		fmt.Fprintf(&b, "%x_ ", i)
		for j := 0; j < 16; j++ {
			addr := byte(16*i + j)
			if addr == m.pc || addr == m.sp {
				fmt.Fprintf(&b, " \x1b[7m%02x\x1b[m", m.mem[addr])
			} else {
				fmt.Fprintf(&b, " %02x", m.mem[addr])
			}
		}
		b.WriteString("  ")
		for j := 0; j < 16; j++ {
			ch := m.mem[16*i+j]
			if ch >= 0x20 && ch <= 0x7e {
				b.WriteByte(ch)
			} else {
				b.WriteByte('.')
			}
		}
		b.WriteByte('\n')
	}

	return b.String()
}

package vm

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// MemSize is the entire address space. Code, data, and the stack all live in
// the same 256 bytes; an address is one byte, so indexing wraps instead of
// ever going out of range.
const MemSize = 256

// ErrDivideByZero is returned by '/' and '%' when the popped divisor is
// zero. It travels the same error channel as stream failures, so the driver
// sees a single kind of fatal step error.
var ErrDivideByZero = errors.New("division by zero")

// Machine is one run of one program. The loaded program, anything it writes,
// and the operand stack share mem and can alias each other, so the opcode
// under pc is fetched fresh from memory on every step.
type Machine struct {
	mem [MemSize]byte
	// program counter, wraps modulo 256 on increment
	pc byte
	// stack pointer. starts at the top of memory and grows down, wrapping
	// at both ends. there is no overflow or underflow detection; that is a
	// property of the machine, not a missing check.
	sp byte

	console Console
	// maxSteps bounds Run. zero means no bound.
	maxSteps int
	steps    int

	logger *zap.Logger
}

type MachineOpt func(*Machine) *Machine

func LoggerOpt(l *zap.Logger) MachineOpt {
	return func(m *Machine) *Machine {
		m.logger = l
		return m
	}
}

func ConsoleOpt(c Console) MachineOpt {
	return func(m *Machine) *Machine {
		m.console = c
		return m
	}
}

func MaxStepsOpt(n int) MachineOpt {
	return func(m *Machine) *Machine {
		m.maxSteps = n
		return m
	}
}

// NewMachine builds a machine with the program's raw bytes copied to address
// 0 and the rest of memory zeroed. Programs longer than memory are
// truncated. Without a ConsoleOpt the machine talks to the process's own
// stdin and stdout.
func NewMachine(program []byte, opts ...MachineOpt) *Machine {
	m := &Machine{
		sp:     0xff,
		logger: zap.L(),
	}
	copy(m.mem[:], program)

	for _, opt := range opts {
		m = opt(m)
	}

	if m.console == nil {
		m.console = NewStreamConsole(os.Stdin, os.Stdout)
	}
	m.logger = m.logger.Named("vm")

	return m
}

// Push writes v at the stack pointer and moves it down.
func (m *Machine) Push(v byte) {
	m.mem[m.sp] = v
	m.sp--
}

// Pop moves the stack pointer up and reads the byte there.
func (m *Machine) Pop() byte {
	m.sp++
	return m.mem[m.sp]
}

// Steps reports how many instructions have executed so far.
func (m *Machine) Steps() int {
	return m.steps
}

// Run steps the machine until it halts or a step fails. With a step bound
// set, Run stops once the budget is spent and reports halted=false.
func (m *Machine) Run() (halted bool, err error) {
	for {
		if m.maxSteps > 0 && m.steps >= m.maxSteps {
			m.logger.Debug("step budget exhausted",
				zap.Int("steps", m.steps))
			return false, nil
		}
		halted, err = m.Step()
		if err != nil {
			return true, fmt.Errorf("vm run: %w", err)
		}
		m.steps++
		if halted {
			return true, nil
		}
	}
}

// Step fetches the byte under the program counter and executes it as one
// instruction, then advances pc by one (wrapping) unless the instruction set
// pc itself. It reports halted=true for the halt opcode and for any byte
// that is not a recognized opcode; that is the machine's halt policy, not a
// decode error. Stream failures, unparseable 'i' input, and zero divisors
// all come back on the single error return and end the run.
func (m *Machine) Step() (halted bool, err error) {
	code := Instruction(m.mem[m.pc])

	m.logger.Debug("step",
		zap.Uint8("pc", m.pc),
		zap.Uint8("sp", m.sp),
		zap.Stringer("op", code),
	)

	// constant numbers: each digit pushes one nibble
	if code >= '0' && code <= '9' {
		m.Push(byte(code) - '0')
		m.pc++
		return false, nil
	}
	if code >= 'a' && code <= 'f' {
		m.Push(byte(code) - 'a' + 10)
		m.pc++
		return false, nil
	}

	switch code {
	case InstructionHalt:
		return true, nil

	case InstructionCombine:
		lo := m.Pop()
		hi := m.Pop()
		m.Push(hi<<4 | lo)

	case InstructionReadNum:
		if err := m.console.WriteString("> "); err != nil {
			return true, fmt.Errorf("write prompt: %w", err)
		}
		if err := m.console.Flush(); err != nil {
			return true, fmt.Errorf("flush prompt: %w", err)
		}
		line, err := m.console.ReadLine()
		if err != nil {
			return true, fmt.Errorf("read number: %w", err)
		}
		// a bad number is fatal just like a dead stream
		n, err := strconv.ParseUint(strings.TrimSpace(line), 10, 8)
		if err != nil {
			return true, fmt.Errorf("read number: %w", err)
		}
		m.Push(byte(n))

	case InstructionWriteNum:
		a := m.Pop()
		if err := m.console.WriteString(strconv.Itoa(int(a)) + "\n"); err != nil {
			return true, fmt.Errorf("write number: %w", err)
		}

	case InstructionReadByte:
		b, err := m.console.ReadByte()
		if err != nil {
			return true, fmt.Errorf("read byte: %w", err)
		}
		m.Push(b)

	case InstructionWriteByte:
		a := m.Pop()
		if err := m.console.WriteByte(a); err != nil {
			return true, fmt.Errorf("write byte: %w", err)
		}

	case InstructionDump:
		if err := m.console.WriteString(m.Dump() + "\n"); err != nil {
			return true, fmt.Errorf("write dump: %w", err)
		}

	case InstructionSwap:
		b := m.Pop()
		a := m.Pop()
		m.Push(b)
		m.Push(a)

	case InstructionDup:
		a := m.Pop()
		m.Push(a)
		m.Push(a)

	case InstructionDrop:
		m.Pop()

	case InstructionAdd:
		b := m.Pop()
		a := m.Pop()
		m.Push(a + b)

	case InstructionSub:
		b := m.Pop()
		a := m.Pop()
		m.Push(a - b)

	case InstructionMul:
		b := m.Pop()
		a := m.Pop()
		m.Push(a * b)

	case InstructionDiv:
		b := m.Pop()
		a := m.Pop()
		if b == 0 {
			return true, fmt.Errorf("exec %q at pc %d: %w", byte(code), m.pc, ErrDivideByZero)
		}
		m.Push(a / b)

	case InstructionRem:
		b := m.Pop()
		a := m.Pop()
		if b == 0 {
			return true, fmt.Errorf("exec %q at pc %d: %w", byte(code), m.pc, ErrDivideByZero)
		}
		m.Push(a % b)

	case InstructionPow:
		b := m.Pop()
		a := m.Pop()
		m.Push(pow(a, b))

	case InstructionNot:
		a := m.Pop()
		m.Push(boolByte(a == 0))

	case InstructionEq:
		b := m.Pop()
		a := m.Pop()
		m.Push(boolByte(a == b))

	case InstructionLt:
		b := m.Pop()
		a := m.Pop()
		m.Push(boolByte(a < b))

	case InstructionGt:
		b := m.Pop()
		a := m.Pop()
		m.Push(boolByte(a > b))

	case InstructionInvert:
		a := m.Pop()
		m.Push(^a)

	case InstructionOr:
		b := m.Pop()
		a := m.Pop()
		m.Push(a | b)

	case InstructionAnd:
		b := m.Pop()
		a := m.Pop()
		m.Push(a & b)

	case InstructionXor:
		b := m.Pop()
		a := m.Pop()
		m.Push(a ^ b)

	case InstructionJump:
		// jumps land exactly on the popped address, no auto-increment
		m.pc = m.Pop()
		return false, nil

	case InstructionJumpIf:
		addr := m.Pop()
		cond := m.Pop()
		if cond != 0 {
			m.pc = addr
			return false, nil
		}

	case InstructionLoad:
		addr := m.Pop()
		m.Push(m.mem[addr])

	case InstructionStore:
		addr := m.Pop()
		val := m.Pop()
		m.mem[addr] = val

	default:
		// unknown instruction, same as halt
		return true, nil
	}

	m.pc++
	return false, nil
}

// pow is a to the b'th power with the same modulo-256 wraparound as the
// other arithmetic opcodes.
func pow(a, b byte) byte {
	var r byte = 1
	for ; b > 0; b-- {
		r *= a
	}
	return r
}

func boolByte(v bool) byte {
	if v {
		return 1
	}
	return 0
}

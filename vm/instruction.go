package vm

import "fmt"

// Instruction is a single byte of memory interpreted as an opcode when the
// program counter lands on it. The digits '0'-'9' and 'a'-'f' push their
// nibble value and are handled as ranges in the dispatch loop; every byte
// not named here and not a digit halts the machine.
type Instruction byte

const (
	InstructionHalt Instruction = 'x'

	// stack building
	InstructionCombine Instruction = '.'

	// input/output
	InstructionReadNum   Instruction = 'i'
	InstructionWriteNum  Instruction = 'o'
	InstructionReadByte  Instruction = ':'
	InstructionWriteByte Instruction = '\''
	InstructionDump      Instruction = '"'

	// stack manipulation
	InstructionSwap Instruction = '@'
	InstructionDup  Instruction = '('
	InstructionDrop Instruction = ')'

	// math
	InstructionAdd Instruction = '+'
	InstructionSub Instruction = '-'
	InstructionMul Instruction = '*'
	InstructionDiv Instruction = '/'
	InstructionRem Instruction = '%'
	InstructionPow Instruction = '^'

	// logical and comparison
	InstructionNot Instruction = '!'
	InstructionEq  Instruction = '='
	InstructionLt  Instruction = '<'
	InstructionGt  Instruction = '>'

	// bitwise
	InstructionInvert Instruction = '~'
	InstructionOr     Instruction = '|'
	InstructionAnd    Instruction = '&'
	InstructionXor    Instruction = 'X'

	// control flow
	InstructionJump   Instruction = 'g'
	InstructionJumpIf Instruction = 'j'

	// memory access
	InstructionLoad  Instruction = 'l'
	InstructionStore Instruction = 's'
)

func (i Instruction) String() string {
	if i >= 0x20 && i <= 0x7e {
		return string(rune(i))
	}
	return fmt.Sprintf("0x%02x", byte(i))
}

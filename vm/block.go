package vm

// BlockType enumerates the kinds of entry pushed onto a Frame's block
// stack by SETUP_*/POP_BLOCK (spec.md §4.4 "Exceptions / blocks"),
// corresponding to the teacher's checkpoints list (runtime/frame.go) but
// tracked as an explicit stack of typed records instead of bare RunState
// values, since this VM has no RunState to resume into.
type BlockType int

const (
	BlockLoop BlockType = iota
	BlockExcept
	BlockFinally
	BlockWith
)

// Block is one entry on a Frame's block stack.
type Block struct {
	Type       BlockType
	Handler    int // PC to jump to when this block is triggered
	StackLevel int // value-stack depth to restore to when unwinding into it
}

package mir

// Builder accumulates locals and basic blocks for one Function,
// mirroring the teacher's Chunk-builder style (bytecode.Chunk's
// WriteInstruction/EmitJump) but at MIR granularity: blocks rather
// than a flat instruction stream, since MIR's only control-flow
// mechanism is the terminator.
type Builder struct {
	fn      *Function
	current *BasicBlock
}

// NewBuilder starts a builder for a fresh function. Callers set
// Name/OwnerClass/IsStatic/IsConstructor on the returned Function
// directly before or after building its body.
func NewBuilder() *Builder {
	fn := &Function{}
	b := &Builder{fn: fn}
	b.current = b.NewBlock()
	fn.Entry = b.current.ID
	return b
}

// Function returns the function under construction.
func (b *Builder) Function() *Function { return b.fn }

// NewBlock allocates a fresh, empty basic block and appends it to the
// function without making it current.
func (b *Builder) NewBlock() *BasicBlock {
	blk := &BasicBlock{ID: len(b.fn.Blocks)}
	b.fn.Blocks = append(b.fn.Blocks, blk)
	return blk
}

// SetCurrent switches the block subsequent Emit calls append to.
func (b *Builder) SetCurrent(blk *BasicBlock) { b.current = blk }

// Current returns the block currently being appended to.
func (b *Builder) Current() *BasicBlock { return b.current }

// NewLocal allocates a fresh typed local and returns its index.
func (b *Builder) NewLocal(name string, t Type) int {
	idx := len(b.fn.Locals)
	b.fn.Locals = append(b.fn.Locals, Local{Index: idx, Name: name, Type: t})
	return idx
}

// Emit appends an instruction to the current block.
func (b *Builder) Emit(inst Instruction) {
	b.current.Instructions = append(b.current.Instructions, inst)
}

// Terminate sets the current block's terminator. A block must be
// terminated exactly once; callers typically call SetCurrent
// immediately after to continue building into a new block.
func (b *Builder) Terminate(term Terminator) {
	b.current.Term = term
	b.current.Terminated = true
}

// AddTry appends one try/catch table entry.
func (b *Builder) AddTry(entry TryEntry) {
	b.fn.TryTable = append(b.fn.TryTable, entry)
}

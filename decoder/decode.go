package decoder

// Decode implements §6 entry point 1, running every stage of the pipeline
// in the dependency order §2 describes: effective-size resolution is
// computed immediately once an entry is matched, ahead of payload fetching,
// since payload widths (`v`/`z` immediates) depend on it — the remaining
// post-decode resolution (vector length, decorator activation, prefix
// activation) follows payload fetching, matching §2's numbered ordering.
func Decode(buf []byte, mode ModeConfig) (*Instruction, error) {
	if err := mode.Validate(); err != nil {
		return nil, err
	}
	c := newDecodeCtx(buf, mode)

	entry, err := runPipeline(c)
	if err != nil {
		return nil, err
	}

	operands, err := materializeOperands(c, entry)
	if err != nil {
		return nil, err
	}
	return c.finish(entry, operands), nil
}

// DecodeCompact implements §6 entry point 2: every stage runs except
// operand materialization, and the decode context is retained on the
// result so MaterializeOperand can expand operands later without
// re-running the pipeline.
func DecodeCompact(buf []byte, mode ModeConfig) (*CompactInstruction, error) {
	if err := mode.Validate(); err != nil {
		return nil, err
	}
	c := newDecodeCtx(buf, mode)

	entry, err := runPipeline(c)
	if err != nil {
		return nil, err
	}
	return c.finishCompact(entry), nil
}

// MaterializeOperand implements §6 entry point 3: on-demand expansion of a
// single operand from a compact result, identified by its index into the
// matched entry's operand-spec array.
func MaterializeOperand(ci *CompactInstruction, index int) (Operand, error) {
	if ci.Entry == nil || index < 0 || index >= len(ci.Entry.Operands) {
		return Operand{}, newErr(ErrInvalidParameter, 0)
	}
	spec := ci.Entry.Operands[index]
	o, _, err := materializeOne(ci.ctx, ci.Entry, spec)
	if err != nil {
		return Operand{}, err
	}
	o.Access = spec.Access
	o.Slot = spec.Slot
	o.IsDefault = spec.IsDefault
	applyDecorators(ci.ctx, &o, spec)
	if o.Kind == OperandRegister && spec.Access.Has(AccessWrite) && ci.ctx.decorators.ZeroUpper {
		o.Register.ZeroUpper = true
	}
	return o, nil
}

// runPipeline drives stages 1-7 of §2 (everything up to, but not including,
// operand materialization), shared by Decode and DecodeCompact.
func runPipeline(c *DecodeCtx) (*InstructionEntry, error) {
	if err := scanPrefixes(c); err != nil {
		return nil, err
	}
	if err := fetchOpcode(c); err != nil {
		return nil, err
	}
	if err := fetchModRM(c); err != nil {
		return nil, err
	}

	root, ok := dispatchRoot(c)
	if !ok {
		return nil, newErr(ErrInvalidEncoding, c.primaryOpcodeOffset)
	}
	entry, err := walkDispatch(c, root)
	if err != nil {
		return nil, err
	}
	if !entry.validInMode(c.mode.CodeMode) {
		return nil, newErr(ErrInvalidEncodingInMode, c.primaryOpcodeOffset)
	}

	resolveEffectiveSizes(c, entry)

	if err := fetchPayload(c, entry); err != nil {
		return nil, err
	}

	resolveVectorLength(c, entry)
	if err := activateLegacyPrefixes(c, entry); err != nil {
		return nil, err
	}
	if err := resolveDecorators(c, entry); err != nil {
		return nil, err
	}

	c.entry = entry
	return entry, nil
}

// Mnemonic, Category, ISASet, CPUIDFeature, FlagsAccess, ExceptionClass, and
// TupleType accessors over a compact instruction (§6 entry point 4): each
// simply consults the matched instruction-database entry the compact record
// already points to, never re-running any part of the pipeline.

func (ci *CompactInstruction) Mnemonic() string {
	if ci.Entry == nil {
		return ""
	}
	return ci.Entry.Mnemonic
}

func (ci *CompactInstruction) CategoryOf() Category {
	if ci.Entry == nil {
		return ""
	}
	return ci.Entry.Category
}

func (ci *CompactInstruction) ISASetOf() ISASet {
	if ci.Entry == nil {
		return ""
	}
	return ci.Entry.ISASet
}

func (ci *CompactInstruction) CPUIDFeatureOf() CPUIDFeature {
	if ci.Entry == nil {
		return CPUIDNone
	}
	return ci.Entry.CPUIDFeature
}

func (ci *CompactInstruction) FlagsAccessOf() FlagsAccess {
	if ci.Entry == nil {
		return FlagsAccess{}
	}
	return ci.Entry.Flags
}

func (ci *CompactInstruction) ExceptionClassOf() ExceptionClass {
	if ci.Entry == nil {
		return ExcClassNone
	}
	return ci.Entry.ExcClass
}

func (ci *CompactInstruction) TupleTypeOf() TupleType {
	if ci.Entry == nil {
		return TupleNone
	}
	return ci.Entry.Tuple
}

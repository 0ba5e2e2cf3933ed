package decoder

// AccessMap aggregates per-register, per-flag, and memory/stack access into
// a flat summary suitable for static analysis tooling (§6, entry point 5).
type AccessMap struct {
	RegisterReads  []RegisterRef
	RegisterWrites []RegisterRef
	FlagsTested    FlagBit
	FlagsModified  FlagBit
	FlagsSet       FlagBit
	FlagsCleared   FlagBit
	ReadsMemory    bool
	WritesMemory   bool
	TouchesStack   bool
}

// BuildAccessMap implements §6 entry point 5.
func BuildAccessMap(ins *Instruction) AccessMap {
	var am AccessMap
	if ins.Entry != nil {
		am.FlagsTested = ins.Entry.Flags.Tested
		am.FlagsModified = ins.Entry.Flags.Modified
		am.FlagsSet = ins.Entry.Flags.Set
		am.FlagsCleared = ins.Entry.Flags.Cleared
		am.TouchesStack = ins.Entry.Implicit&ImplicitStack != 0
	}
	for _, o := range ins.Operands {
		switch o.Kind {
		case OperandRegister:
			if o.Access.Has(AccessRead) || o.Access.Has(AccessCondRead) {
				am.RegisterReads = append(am.RegisterReads, o.Register)
			}
			if o.Access.Has(AccessWrite) || o.Access.Has(AccessCondWrite) {
				am.RegisterWrites = append(am.RegisterWrites, o.Register)
			}
		case OperandMemory:
			if o.Access.Has(AccessRead) {
				am.ReadsMemory = true
			}
			if o.Access.Has(AccessWrite) {
				am.WritesMemory = true
			}
			if o.Memory.Flags&MemStack != 0 {
				am.TouchesStack = true
			}
		}
	}
	return am
}

// OperandLookup returns pointers/indices to the canonical operand slots a
// consumer most often wants, without re-scanning the operand list (§6, entry
// point 6).
type OperandLookup struct {
	Dest1       *Operand
	Dest2       *Operand
	Sources     []*Operand // up to the first four source operands
	Memory      *Operand
	Stack       *Operand
	ImplicitRIP *Operand
	ImplicitFlags *Operand
	ImplicitCS  *Operand
	ImplicitSS  *Operand
	ImplicitGPR [8]*Operand // rAX-rDI, when present and implicit
}

// BuildOperandLookup implements §6 entry point 6.
func BuildOperandLookup(ins *Instruction) OperandLookup {
	var lut OperandLookup
	for i := range ins.Operands {
		o := &ins.Operands[i]

		if o.Access.Has(AccessWrite) || o.Access.Has(AccessCondWrite) {
			if lut.Dest1 == nil {
				lut.Dest1 = o
			} else if lut.Dest2 == nil {
				lut.Dest2 = o
			}
		}
		if (o.Access.Has(AccessRead) || o.Access.Has(AccessCondRead)) && len(lut.Sources) < 4 {
			lut.Sources = append(lut.Sources, o)
		}
		if o.Kind == OperandMemory && lut.Memory == nil {
			lut.Memory = o
			if o.Memory.Flags&MemStack != 0 {
				lut.Stack = o
			}
		}
		if o.Kind == OperandRegister {
			switch o.Register.Bank {
			case BankRIP:
				lut.ImplicitRIP = o
			case BankFlags:
				lut.ImplicitFlags = o
			case BankSegment:
				switch o.Register {
				case RegCS:
					lut.ImplicitCS = o
				case RegSS:
					lut.ImplicitSS = o
				}
			case BankGPR:
				if o.Register.Number < 8 && o.IsDefault {
					lut.ImplicitGPR[o.Register.Number] = o
				}
			}
		}
	}
	return lut
}

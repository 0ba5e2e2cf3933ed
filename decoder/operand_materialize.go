package decoder

// materializeOperands implements §4.11 for every operand specifier on the
// matched entry. It must run last, after every other resolution stage, since
// it reads effective sizes, vector length, decorators, and the raw
// ModR/M/SIB/displacement/payload fields all at once.
func materializeOperands(c *DecodeCtx, entry *InstructionEntry) ([]Operand, error) {
	operands := make([]Operand, 0, len(entry.Operands))
	immIdx := 0
	for _, spec := range entry.Operands {
		o, consumedImm, err := materializeOne(c, entry, spec)
		if err != nil {
			return nil, err
		}
		if consumedImm {
			immIdx++
		}
		o.Access = spec.Access
		o.Slot = spec.Slot
		o.IsDefault = spec.IsDefault
		applyDecorators(c, &o, spec)
		if o.Kind == OperandRegister && spec.Access.Has(AccessWrite) && c.decorators.ZeroUpper {
			o.Register.ZeroUpper = true
		}
		operands = append(operands, o)
	}
	_ = immIdx
	return operands, nil
}

func applyDecorators(c *DecodeCtx, o *Operand, spec OperandSpec) {
	if spec.Decorators&DecMaskOK != 0 {
		o.Decorators.MaskRegister = c.decorators.MaskRegister
	}
	if spec.Decorators&DecZeroOK != 0 {
		o.Decorators.Zeroing = c.decorators.Zeroing
	}
	if spec.Decorators&DecBroadcastOK != 0 && o.Kind == OperandMemory {
		o.Decorators.BroadcastCount = c.decorators.BroadcastCount
		o.Decorators.BroadcastSize = c.decorators.BroadcastSize
		o.Memory.BroadcastCount = c.decorators.BroadcastCount
		o.Memory.BroadcastSize = c.decorators.BroadcastSize
	}
	if spec.Decorators&DecSAEOK != 0 {
		o.Decorators.SAE = c.decorators.SAE
	}
	if spec.Decorators&DecEROK != 0 {
		o.Decorators.EmbeddedRound = c.decorators.EmbeddedRound
		o.Decorators.RoundingMode = c.decorators.RoundingMode
	}
}

func sizeCodeBytes(c *DecodeCtx, size SizeCode) byte {
	switch size {
	case Size1:
		return 1
	case Size2:
		return 2
	case Size4:
		return 4
	case Size8:
		return 8
	case Size10:
		return 10
	case SizeV:
		return c.effOpSize / 8
	case SizeZ:
		return byte(zSizeBytes(c.effOpSize))
	case SizeP:
		if c.effOpSize == 16 {
			return 4
		}
		return 6
	case SizeVec, SizeVecOrBcst:
		return byte(c.effVecLen / 8)
	case SizeAddr:
		return c.effAddrSize
	case SizeStack:
		return c.wordSize
	case SizeElem1:
		return 1
	case SizeElem2:
		return 2
	case SizeElem4:
		return 4
	case SizeElem8:
		return 8
	}
	return 0
}

// regNumberReg, regNumberRm and regNumberVvvv combine a raw register field with the matching
// REX/REX2/VEX/EVEX high-extension bit(s), per §4.11's "applying extension
// bits appropriately".
func regNumberReg(c *DecodeCtx) byte {
	n := c.reg
	if c.ext.R {
		n |= 8
	}
	if c.ext.RPrime {
		n |= 16
	}
	return n
}

func regNumberRm(c *DecodeCtx) byte {
	n := c.rm
	if c.mod == 3 {
		if c.ext.B {
			n |= 8
		}
		if c.ext.B4 {
			n |= 16
		}
	}
	return n
}

func regNumberVvvv(c *DecodeCtx) byte {
	n := c.ext.V
	if c.ext.VPrime {
		n |= 16
	}
	return n
}

func legacyHigh8Eligible(c *DecodeCtx) bool {
	return c.encoding == EncodingLegacy && !c.prefixes.HasREX
}

func materializeOne(c *DecodeCtx, entry *InstructionEntry, spec OperandSpec) (Operand, bool, error) {
	size := sizeCodeBytes(c, spec.Size)

	switch spec.Type {
	case TypeImplicit1:
		return Operand{Kind: OperandImplicitConst, ImplicitInt: 1}, false, nil
	case TypeImplicitAL:
		return Operand{Kind: OperandRegister, Register: RegAL}, false, nil
	case TypeImplicitAX:
		return Operand{Kind: OperandRegister, Register: RegAX}, false, nil
	case TypeImplicitEAX:
		return Operand{Kind: OperandRegister, Register: RegEAX}, false, nil
	case TypeImplicitRAX:
		return Operand{Kind: OperandRegister, Register: RegRAX}, false, nil
	case TypeImplicitCL:
		return Operand{Kind: OperandRegister, Register: RegCL}, false, nil
	case TypeImplicitDX:
		return Operand{Kind: OperandRegister, Register: RegDX}, false, nil
	case TypeImplicitCS:
		return Operand{Kind: OperandRegister, Register: RegCS}, false, nil
	case TypeImplicitSS:
		return Operand{Kind: OperandRegister, Register: RegSS}, false, nil
	case TypeImplicitDS:
		return Operand{Kind: OperandRegister, Register: RegDS}, false, nil
	case TypeImplicitES:
		return Operand{Kind: OperandRegister, Register: RegES}, false, nil
	case TypeImplicitFS:
		return Operand{Kind: OperandRegister, Register: RegFS}, false, nil
	case TypeImplicitGS:
		return Operand{Kind: OperandRegister, Register: RegGS}, false, nil
	case TypeImplicitFlags:
		return Operand{Kind: OperandRegister, Register: RegFlags}, false, nil
	case TypeImplicitRIP:
		return Operand{Kind: OperandRegister, Register: RegRIP}, false, nil

	case TypeG:
		r := gprOfSize(regNumberReg(c), size, legacyHigh8Eligible(c))
		return Operand{Kind: OperandRegister, Register: r}, false, nil
	case TypeR, TypeU:
		r := gprOfSize(regNumberRm(c), size, legacyHigh8Eligible(c))
		return Operand{Kind: OperandRegister, Register: r}, false, nil
	case TypeE:
		if c.hasModRM && c.mod == 3 {
			r := gprOfSize(regNumberRm(c), size, legacyHigh8Eligible(c))
			return Operand{Kind: OperandRegister, Register: r}, false, nil
		}
		return Operand{Kind: OperandMemory, Memory: materializeMemory(c, entry, size, nil)}, false, nil
	case TypeM:
		return Operand{Kind: OperandMemory, Memory: materializeMemory(c, entry, size, nil)}, false, nil

	case TypeV:
		return Operand{Kind: OperandRegister, Register: vectorReg(regNumberReg(c), size)}, false, nil
	case TypeH:
		return Operand{Kind: OperandRegister, Register: vectorReg(regNumberVvvv(c), size)}, false, nil
	case TypeL:
		num := byte(0)
		if c.is4Present {
			num = c.is4Value >> 4
		}
		return Operand{Kind: OperandRegister, Register: vectorReg(num, size)}, false, nil
	case TypeW:
		if c.hasModRM && c.mod == 3 {
			return Operand{Kind: OperandRegister, Register: vectorReg(regNumberRm(c), size)}, false, nil
		}
		mem := materializeMemory(c, entry, size, nil)
		if c.decorators.BroadcastSize != 0 {
			mem.Flags |= MemCompressedDisp
			mem.BroadcastSize = c.decorators.BroadcastSize
		}
		return Operand{Kind: OperandMemory, Memory: mem}, false, nil

	case TypeN, TypeP, TypeQ:
		num := regNumberRm(c)
		if spec.Type == TypeP {
			num = regNumberReg(c)
		}
		if spec.Type == TypeQ && c.hasModRM && c.mod != 3 {
			return Operand{Kind: OperandMemory, Memory: materializeMemory(c, entry, size, nil)}, false, nil
		}
		return Operand{Kind: OperandRegister, Register: RegisterRef{Bank: BankMMX, Number: num & 7, Size: 8}}, false, nil

	case TypeC:
		n := regNumberReg(c)
		if c.prefixes.Lock && entry.Attrs.has(AttrLockMovCR8) {
			n |= 8
		}
		return Operand{Kind: OperandRegister, Register: RegisterRef{Bank: BankControl, Number: n, Size: 8}}, false, nil
	case TypeD:
		return Operand{Kind: OperandRegister, Register: RegisterRef{Bank: BankDebug, Number: regNumberReg(c), Size: 8}}, false, nil
	case TypeS:
		return Operand{Kind: OperandRegister, Register: segmentReg(c.reg)}, false, nil

	case TypeO:
		num := c.primaryOpcode & 0x07
		if c.ext.B {
			num |= 8
		}
		return Operand{Kind: OperandRegister, Register: gprOfSize(num, size, legacyHigh8Eligible(c))}, false, nil

	case TypeRK:
		return Operand{Kind: OperandRegister, Register: maskReg(c.reg)}, false, nil
	case TypeVK, TypeMK:
		if spec.Type == TypeMK && c.hasModRM && c.mod != 3 {
			return Operand{Kind: OperandMemory, Memory: materializeMemory(c, entry, size, nil)}, false, nil
		}
		return Operand{Kind: OperandRegister, Register: maskReg(c.rm & 7)}, false, nil
	case TypeAK:
		return Operand{Kind: OperandRegister, Register: maskReg(c.ext.V & 7)}, false, nil

	case TypeRT:
		return Operand{Kind: OperandRegister, Register: tileReg(c.reg & 7)}, false, nil
	case TypeMT:
		if c.hasModRM && c.mod == 3 {
			return Operand{Kind: OperandRegister, Register: tileReg(c.rm & 7)}, false, nil
		}
		return Operand{Kind: OperandMemory, Memory: materializeMemory(c, entry, size, nil)}, false, nil
	case TypeVT:
		return Operand{Kind: OperandRegister, Register: tileReg(c.ext.V & 7)}, false, nil

	case TypeRB:
		return Operand{Kind: OperandRegister, Register: RegisterRef{Bank: BankBound, Number: c.reg & 3, Size: 16}}, false, nil
	case TypeMB:
		if c.hasModRM && c.mod == 3 {
			return Operand{Kind: OperandRegister, Register: RegisterRef{Bank: BankBound, Number: c.rm & 3, Size: 16}}, false, nil
		}
		return Operand{Kind: OperandMemory, Memory: materializeMemory(c, entry, size, nil)}, false, nil

	case TypeOffs:
		addr := uint64(0)
		addrLen := byte(0)
		if c.moffsetField != nil {
			addr, addrLen = c.moffsetField.addr, c.moffsetField.addrLen
		}
		seg := defaultDataSegment(c)
		return Operand{Kind: OperandMoffset, Moffset: Moffset{Segment: seg, Address: addr, AddrLen: addrLen}}, false, nil

	case TypeXStr:
		return Operand{Kind: OperandMemory, Memory: Memory{
			Segment: segPtr(defaultDataSegment(c)), Base: gprPtr(6, c.effAddrSize), Flags: MemString, AddrSize: c.effAddrSize,
		}}, false, nil
	case TypeYStr:
		return Operand{Kind: OperandMemory, Memory: Memory{
			Segment: segPtr(RegES), Base: gprPtr(7, c.effAddrSize), Flags: MemString, AddrSize: c.effAddrSize,
		}}, false, nil

	case TypeJ:
		rel := int64(0)
		rawLen := byte(0)
		if c.relOffset != nil {
			rel, rawLen = c.relOffset.value, c.relOffset.rawLen
		}
		return Operand{Kind: OperandRelative, Relative: RelativeOffset{Offset: rel, RawLen: rawLen}}, false, nil

	case TypeA:
		if c.farPtr != nil {
			return Operand{Kind: OperandFarPointer, FarPointer: FarPointer{
				Selector: c.farPtr.selector, Offset: c.farPtr.off, OffsetLen: c.farPtr.offLen,
			}}, false, nil
		}
		return Operand{Kind: OperandFarPointer}, false, nil

	case TypeI, TypeI1, TypeI2, TypeM2zI:
		idx := immediateIndexFor(spec.Type)
		if idx < len(c.immediates) {
			f := c.immediates[idx]
			return Operand{Kind: OperandImmediate, Immediate: Immediate{Value: f.value, RawLen: f.rawLen, SignExtended: f.signExtended}}, true, nil
		}
		return Operand{Kind: OperandImmediate}, true, nil

	case TypeDFV:
		v := regNumberVvvv(c)
		return Operand{Kind: OperandDefaultFlagsValue, DefaultFlags: DefaultFlagsValue{
			CF: v&1 != 0, ZF: v&2 != 0, SF: v&4 != 0, OF: v&8 != 0,
		}}, false, nil

	case TypePBXAL:
		return Operand{Kind: OperandMemory, Memory: Memory{
			Segment: segPtr(defaultDataSegment(c)), Base: gprPtr(3, c.effAddrSize), Index: gprPtr(0, 1), AddrSize: c.effAddrSize,
		}}, false, nil
	case TypePAX:
		return Operand{Kind: OperandMemory, Memory: Memory{Base: gprPtr(0, c.effAddrSize), AddrSize: c.effAddrSize}}, false, nil
	case TypePCX:
		return Operand{Kind: OperandMemory, Memory: Memory{Base: gprPtr(1, c.effAddrSize), AddrSize: c.effAddrSize}}, false, nil
	case TypePBP:
		return Operand{Kind: OperandMemory, Memory: Memory{Base: gprPtr(5, c.effAddrSize), AddrSize: c.effAddrSize}}, false, nil

	case TypeSHS, TypeSHS0, TypeSHSP:
		kind := ShadowStackNone
		switch spec.Type {
		case TypeSHS:
			kind = ShadowStackPush
		case TypeSHS0:
			kind = ShadowStackRestoreToken
		case TypeSHSP:
			kind = ShadowStackPop
		}
		return Operand{Kind: OperandMemory, Memory: Memory{Flags: MemShadowStack, ShadowStack: kind}}, false, nil

	case TypeRegBank:
		return Operand{Kind: OperandRegisterBank, RegisterBankTag: entry.Class}, false, nil

	case TypeImplicitCR0:
		return Operand{Kind: OperandRegister, Register: RegisterRef{Bank: BankControl, Number: 0, Size: 8}}, false, nil
	case TypeImplicitXCR0:
		return Operand{Kind: OperandRegister, Register: RegisterRef{Bank: BankXCR, Number: 0, Size: 8}}, false, nil
	case TypeImplicitMSR:
		return Operand{Kind: OperandRegister, Register: RegisterRef{Bank: BankMSR, Size: 8}}, false, nil
	case TypeImplicitX87Control, TypeImplicitX87Status, TypeImplicitX87Tag:
		return Operand{Kind: OperandRegister, Register: RegisterRef{Bank: BankX87, Size: 2}}, false, nil
	case TypeImplicitMXCSR:
		return Operand{Kind: OperandRegister, Register: RegMXCSR}, false, nil
	case TypeImplicitST0:
		return Operand{Kind: OperandRegister, Register: RegisterRef{Bank: BankX87, Number: 0, Size: 10}}, false, nil
	case TypeImplicitST:
		return Operand{Kind: OperandRegister, Register: RegisterRef{Bank: BankX87, Number: c.primaryOpcode & 0x07, Size: 10}}, false, nil
	}

	return Operand{}, false, nil
}

// immediateIndexFor picks which fetched immediate field an I1/I2-tagged
// specifier refers to; plain I always refers to the (only) immediate.
func immediateIndexFor(t OperandTypeCode) int {
	if t == TypeI2 {
		return 1
	}
	return 0
}

func defaultDataSegment(c *DecodeCtx) RegisterRef {
	if c.prefixes.SegmentOverride != nil {
		return *c.prefixes.SegmentOverride
	}
	return RegDS
}

func segPtr(r RegisterRef) *RegisterRef { return &r }
func gprPtr(n, size byte) *RegisterRef  { r := gpr(n, size); return &r }

// materializeMemory builds the Memory operand variant from the already
// fetched ModR/M/SIB/displacement fields, per §4.5/§4.11. indexOverride, if
// non-nil, supplies a VSIB vector index register instead of the ordinary
// GPR index (not used by this representative table but kept for entries
// that need VSIB addressing).
func materializeMemory(c *DecodeCtx, entry *InstructionEntry, size byte, indexOverride *RegisterRef) Memory {
	m := Memory{AddrSize: c.effAddrSize}
	if c.prefixes.SegmentOverride != nil {
		seg := *c.prefixes.SegmentOverride
		m.Segment = &seg
	}

	addrRegSize := c.effAddrSize

	if c.ripRelative {
		m.Flags |= MemRIPRelative
		m.HasDisp = true
		m.Disp = signExtendDisp(c.dispRaw, c.dispLen)
		m.DispRawLen = c.dispLen
		return m
	}

	if c.effAddrSize == 2 {
		if !(c.mod == 0 && c.rm == 6) {
			base, index := sixteenBitAddressing(c.rm)
			if base != nil {
				m.Base = gprPtr(*base, 2)
			}
			if index != nil {
				m.Index = gprPtr(*index, 2)
			}
		}
	} else {
		if c.hasSIB {
			if c.index != 4 || c.ext.X {
				idxNum := c.index
				if c.ext.X {
					idxNum |= 8
				}
				if indexOverride != nil {
					m.Index = indexOverride
				} else {
					m.Index = gprPtr(idxNum, addrRegSize)
				}
				m.Scale = 1 << c.scale
			}
			if !(c.base == 5 && c.mod == 0) {
				baseNum := c.base
				if c.ext.B {
					baseNum |= 8
				}
				m.Base = gprPtr(baseNum, addrRegSize)
			}
		} else {
			baseNum := c.rm
			if c.ext.B {
				baseNum |= 8
			}
			m.Base = gprPtr(baseNum, addrRegSize)
		}
	}

	if c.hasDisp {
		m.HasDisp = true
		m.DispRawLen = c.dispLen
		if c.dispLen == 1 && entry.Tuple != TupleNone {
			factor := compressedDispFactor(entry, c.effVecLen, c.ext.W, c.decorators.BroadcastSize)
			if factor > 0 {
				m.Flags |= MemCompressedDisp
				m.CompressFactor = factor
				m.Disp = int64(int8(c.dispRaw)) * int64(factor)
				return m
			}
		}
		m.Disp = signExtendDisp(c.dispRaw, c.dispLen)
	}

	return m
}

func signExtendDisp(raw uint64, rawLen byte) int64 {
	switch rawLen {
	case 1:
		return int64(int8(raw))
	case 2:
		return int64(int16(raw))
	case 4:
		return int64(int32(raw))
	}
	return int64(raw)
}

// sixteenBitAddressing implements the classic 16-bit ModR/M.rm base/index
// table (no SIB byte exists in 16-bit addressing).
func sixteenBitAddressing(rm byte) (base, index *byte) {
	bxIdx, siIdx, diIdx, bpIdx := byte(3), byte(6), byte(7), byte(5)
	switch rm {
	case 0:
		return &bxIdx, &siIdx
	case 1:
		return &bxIdx, &diIdx
	case 2:
		return &bpIdx, &siIdx
	case 3:
		return &bpIdx, &diIdx
	case 4:
		return &siIdx, nil
	case 5:
		return &diIdx, nil
	case 6:
		return &bpIdx, nil
	case 7:
		return &bxIdx, nil
	}
	return nil, nil
}

package decoder

// This file builds the representative instruction database and the root
// dispatch tables that key into it. A real build of this library generates
// these tables offline from the processor manuals (§1's stated out-of-scope
// boundary); this table is hand-authored but deliberately shaped to exercise
// many of the dispatch-node kinds in dispatch.go (NodeModRmMod, NodeModRmRm,
// NodeMode, NodeDsize, NodeAsize, NodeExM, NodeExW, NodeExWi, NodeExNd,
// NodeExNf and NodeExLpdf have no entry here) and every end-to-end scenario
// named in spec §8, rather than to be an exhaustive opcode map.

type opcodeTableKey struct {
	encoding EncodingMode
	mapID    byte
	opcode   byte
}

var rootDispatch = map[opcodeTableKey]*dispatchNode{}

// define registers one root dispatch entry and its ModR/M-presence metadata
// together, so the two tables can never drift apart.
func define(encoding EncodingMode, mapID, opcode byte, hasModRM, forcedReg bool, node *dispatchNode) {
	rootDispatch[opcodeTableKey{encoding, mapID, opcode}] = node
	registerModRMInfo(encoding, mapID, opcode, hasModRM, forcedReg)
}

func dispatchRoot(c *DecodeCtx) (*dispatchNode, bool) {
	n, ok := rootDispatch[opcodeTableKey{c.encoding, c.mapID, c.primaryOpcode}]
	return n, ok
}

func op(typ OperandTypeCode, size SizeCode, access AccessMode, slot EncodingSlot) OperandSpec {
	return OperandSpec{Type: typ, Size: size, Access: access, Slot: slot}
}

func init() {
	buildLegacyGroupA()
	buildLegacyMiscellaneous()
	buildVexEntries()
	buildEvexEntries()
	buildXopEntries()
	buildRex2Entries()
	buildApxConditionalEntries()
	buildApxPromotedEntries()
	buildThreeDNowEntries()
	buildFilterEntries()
}

// --- NOP, MOV, CMPXCHG, unary/group5: spec §8 scenarios 1,2,3,6 -----------

func buildLegacyGroupA() {
	nop := &InstructionEntry{
		Mnemonic: "nop", Category: CatGeneral, ValidModes: ModeMaskAll,
	}
	define(EncodingLegacy, 0, 0x90, false, false, leaf(nop))

	mov := &InstructionEntry{
		Mnemonic: "mov", Category: CatGeneral, ValidModes: ModeMaskAll,
		Operands: []OperandSpec{
			op(TypeE, SizeV, AccessWrite, SlotModRMRM),
			op(TypeG, SizeV, AccessRead, SlotModRMReg),
		},
	}
	define(EncodingLegacy, 0, 0x89, true, false, leaf(mov))

	cmpxchg := &InstructionEntry{
		Mnemonic: "cmpxchg", Category: CatGeneral, ValidModes: ModeMaskAll,
		Attrs:         AttrLockable,
		ValidPrefixes: PrefixMaskLock,
		Operands: []OperandSpec{
			op(TypeE, SizeV, AccessRead|AccessWrite, SlotModRMRM),
			op(TypeG, SizeV, AccessRead, SlotModRMReg),
		},
		Flags: FlagsAccess{Modified: FlagZF | FlagCF | FlagPF | FlagAF | FlagSF | FlagOF},
	}
	define(EncodingLegacy, 1, 0xB1, true, false, leaf(cmpxchg))

	// Group 3 unary opcode (F6/F7): TEST/NOT/NEG/MUL/IMUL/DIV/IDIV,
	// selected by ModR/M.reg. Exercises NodeModRmReg.
	unaryMnemonics := [8]string{"test", "test", "not", "neg", "mul", "imul", "div", "idiv"}
	unaryChildren := map[byte]*dispatchNode{}
	for reg, mnem := range unaryMnemonics {
		entry := &InstructionEntry{
			Mnemonic: mnem, Category: CatGeneral, ValidModes: ModeMaskAll,
			Operands: []OperandSpec{op(TypeE, SizeV, AccessRead|AccessWrite, SlotModRMRM)},
		}
		if reg == 0 || reg == 1 {
			entry.Operands = append(entry.Operands, op(TypeI, SizeZ, AccessRead, SlotImmediate))
			entry.Payload = PayloadImmZ
		}
		unaryChildren[byte(reg)] = leaf(entry)
	}
	define(EncodingLegacy, 0, 0xF7, true, false, branch(NodeModRmReg, unaryChildren))

	// Group 5 (FF): INC/DEC/CALL/CALLF/JMP/JMPF/PUSH, selected by reg.
	group5 := map[byte]*dispatchNode{
		0: leaf(&InstructionEntry{Mnemonic: "inc", Category: CatGeneral, ValidModes: ModeMaskAll,
			Operands: []OperandSpec{op(TypeE, SizeV, AccessRead|AccessWrite, SlotModRMRM)}}),
		1: leaf(&InstructionEntry{Mnemonic: "dec", Category: CatGeneral, ValidModes: ModeMaskAll,
			Operands: []OperandSpec{op(TypeE, SizeV, AccessRead|AccessWrite, SlotModRMRM)}}),
		2: leaf(&InstructionEntry{Mnemonic: "call", Category: CatBranch, ValidModes: ModeMaskAll,
			Implicit: ImplicitStack, Operands: []OperandSpec{op(TypeE, SizeV, AccessRead, SlotModRMRM)}}),
		3: leaf(&InstructionEntry{Mnemonic: "call far", Category: CatBranch, ValidModes: ModeMaskAll,
			Implicit: ImplicitStack, Operands: []OperandSpec{op(TypeM, SizeP, AccessRead, SlotModRMRM)}}),
		4: leaf(&InstructionEntry{Mnemonic: "jmp", Category: CatBranch, ValidModes: ModeMaskAll,
			Operands: []OperandSpec{op(TypeE, SizeV, AccessRead, SlotModRMRM)}}),
		5: leaf(&InstructionEntry{Mnemonic: "jmp far", Category: CatBranch, ValidModes: ModeMaskAll,
			Operands: []OperandSpec{op(TypeM, SizeP, AccessRead, SlotModRMRM)}}),
		6: leaf(&InstructionEntry{Mnemonic: "push", Category: CatGeneral, ValidModes: ModeMaskAll,
			Implicit: ImplicitStack, Operands: []OperandSpec{op(TypeE, SizeV, AccessRead, SlotModRMRM)}}),
	}
	define(EncodingLegacy, 0, 0xFF, true, false, branch(NodeModRmReg, group5))
}

// --- multi-byte NOP and ENDBR64/32: scenario 8 and the CET feature gate ---

func buildLegacyMiscellaneous() {
	multiNop := &InstructionEntry{
		Mnemonic: "nop", Category: CatGeneral, ValidModes: ModeMaskAll,
		ValidPrefixes: PrefixMaskBranchHint | PrefixMaskSeg,
		Operands:      []OperandSpec{op(TypeE, SizeV, AccessRead, SlotModRMRM)},
	}

	endbr64 := &InstructionEntry{
		Mnemonic: "endbr64", Category: CatSystem, ValidModes: ModeMask64,
		Attrs: AttrCETTracked, CPUIDFeature: CPUIDCET,
	}
	endbr32 := &InstructionEntry{
		Mnemonic: "endbr32", Category: CatSystem, ValidModes: ModeMaskAll,
		Attrs: AttrCETTracked, CPUIDFeature: CPUIDCET,
	}

	// 0F 1E /modrm: when F3 is the mandatory prefix and ModR/M is exactly
	// 0xFA/0xFB (mod=3, reg=7, rm=2/3), and the CET feature gate is on,
	// this is ENDBR64/ENDBR32; otherwise (feature off, or any other
	// ModR/M byte) it decodes generically as a multi-byte NOP, since the
	// encoding space is NOP-compatible by architectural design.
	endbrChildren := map[byte]*dispatchNode{
		0xFA: featureBranch(FeatureCET, leaf(endbr64), leaf(multiNop)),
		0xFB: featureBranch(FeatureCET, leaf(endbr32), leaf(multiNop)),
	}
	f3Node := branch(NodeAuxiliary, endbrChildren)
	f3Node.Children[wildcardKey] = leaf(multiNop)

	mandatoryChildren := map[byte]*dispatchNode{
		2: f3Node, // F3
	}
	mandatoryChildren[wildcardKey] = leaf(multiNop)

	define(EncodingLegacy, 1, 0x1E, true, false, branch(NodeMandatoryPrefix, mandatoryChildren))
	define(EncodingLegacy, 1, 0x1F, true, false, leaf(multiNop))

	// MOV r32/64, CRn (0F 20): under LOCK with no REX.R, AMD targets CR8
	// instead of CR0 (SPEC_FULL.md's Open Question 2 resolution). Exercises
	// NodeVendor.
	movCRDefault := &InstructionEntry{
		Mnemonic: "mov", Class: "MOV-CR", Category: CatSystem, ValidModes: ModeMask32 | ModeMask64,
		Operands: []OperandSpec{
			op(TypeR, SizeV, AccessWrite, SlotModRMRM),
			op(TypeC, SizeV, AccessRead, SlotModRMReg),
		},
	}
	movCRAmdCR8 := &InstructionEntry{
		Mnemonic: "mov", Class: "MOV-CR", Category: CatSystem, ValidModes: ModeMask32 | ModeMask64,
		Attrs:         AttrLockMovCR8,
		ValidPrefixes: PrefixMaskLock,
		Operands: []OperandSpec{
			op(TypeR, SizeV, AccessWrite, SlotModRMRM),
			op(TypeC, SizeV, AccessRead, SlotModRMReg),
		},
	}
	// Only CR0, CR2, CR3, CR4, and CR8 are architecturally defined targets
	// of this encoding; CR1/CR5/CR6/CR7 are reserved.
	vendorChildren := map[byte]*dispatchNode{
		byte(VendorAMD): regFilterNode(FltCRIn02348, leaf(movCRAmdCR8)),
	}
	vendorChildren[wildcardKey] = regFilterNode(FltCRIn02348, leaf(movCRDefault))
	define(EncodingLegacy, 1, 0x20, true, true, branch(NodeVendor, vendorChildren))
}

// --- VZEROUPPER/VZEROALL via VEX2, scenario 4 -----------------------------

func buildVexEntries() {
	vzeroupper := &InstructionEntry{Mnemonic: "vzeroupper", Category: CatAVX, ValidModes: ModeMaskAll, CPUIDFeature: CPUIDAVX}
	vzeroall := &InstructionEntry{Mnemonic: "vzeroall", Category: CatAVX, ValidModes: ModeMaskAll, CPUIDFeature: CPUIDAVX}

	// VZEROUPPER/VZEROALL carry no vvvv operand, so the encoding reserves
	// VEX.vvvv = 1111b (decoded V = 0); any other value is #UD.
	lChildren := map[byte]*dispatchNode{
		0: filterNode(FltNoV, leaf(vzeroupper)),
		1: filterNode(FltNoV, leaf(vzeroall)),
	}
	ppChildren := map[byte]*dispatchNode{
		0: branch(NodeExL, lChildren), // pp=0: no mandatory prefix
	}
	define(EncodingVEX, 1, 0x77, false, false, branch(NodeExPP, ppChildren))

	vmovupsReg := &InstructionEntry{
		Mnemonic: "vmovups", Category: CatAVX, ValidModes: ModeMaskAll, CPUIDFeature: CPUIDAVX,
		Operands: []OperandSpec{
			op(TypeV, SizeVec, AccessWrite, SlotModRMReg),
			op(TypeW, SizeVec, AccessRead, SlotModRMRM),
		},
	}
	define(EncodingVEX, 1, 0x10, true, false, branch(NodeExPP, map[byte]*dispatchNode{0: leaf(vmovupsReg)}))
}

// --- VMOVUPS via EVEX with compressed displacement, scenario 5 -----------

func buildEvexEntries() {
	vmovupsEvex := &InstructionEntry{
		Mnemonic: "vmovups", Category: CatAVX512, ValidModes: ModeMaskAll, CPUIDFeature: CPUIDAVX512F,
		Attrs:           AttrMaskOK | AttrEvexBroadcastOK,
		ValidDecorators: DecMaskOK | DecZeroOK,
		Tuple:           TupleFV,
		Operands: []OperandSpec{
			op(TypeV, SizeVec, AccessWrite, SlotModRMReg),
			op(TypeW, SizeVecOrBcst, AccessRead, SlotModRMRM),
		},
	}
	define(EncodingEVEX, 1, 0x10, true, false, branch(NodeExPP, map[byte]*dispatchNode{0: leaf(vmovupsEvex)}))

	vaddpsEvex := &InstructionEntry{
		Mnemonic: "vaddps", Category: CatAVX512, ValidModes: ModeMaskAll, CPUIDFeature: CPUIDAVX512F,
		Attrs:           AttrMaskOK | AttrEvexBroadcastOK,
		ValidDecorators: DecMaskOK | DecZeroOK,
		Tuple:           TupleFV,
		Operands: []OperandSpec{
			op(TypeV, SizeVec, AccessWrite, SlotModRMReg),
			op(TypeH, SizeVec, AccessRead, SlotVEXvvvv),
			op(TypeW, SizeVecOrBcst, AccessRead, SlotModRMRM),
		},
	}
	define(EncodingEVEX, 1, 0x58, true, false, branch(NodeExPP, map[byte]*dispatchNode{0: leaf(vaddpsEvex)}))
}

// --- XOP: VPCMOV, exercises the is4 operand-selected-register form -------

func buildXopEntries() {
	vpcmov := &InstructionEntry{
		Mnemonic: "vpcmov", Category: CatAVX, ValidModes: ModeMaskAll,
		Payload: PayloadIs4B,
		Operands: []OperandSpec{
			op(TypeV, SizeVec, AccessWrite, SlotModRMReg),
			op(TypeH, SizeVec, AccessRead, SlotVEXvvvv),
			op(TypeW, SizeVec, AccessRead, SlotModRMRM),
			op(TypeL, SizeVec, AccessRead, SlotIs4),
		},
	}
	define(EncodingXOP, 9, 0xA2, true, false, branch(NodeExPP, map[byte]*dispatchNode{0: leaf(vpcmov)}))
}

// --- REX2 ADD, scenario 7 -------------------------------------------------

func buildRex2Entries() {
	add := &InstructionEntry{
		Mnemonic: "add", Category: CatGeneral, ValidModes: ModeMask64,
		Operands: []OperandSpec{
			op(TypeE, SizeV, AccessRead|AccessWrite, SlotModRMRM),
			op(TypeG, SizeV, AccessRead, SlotModRMReg),
		},
		Flags: FlagsAccess{Modified: FlagCF | FlagPF | FlagAF | FlagZF | FlagSF | FlagOF},
	}
	define(EncodingREX2, 0, 0x01, true, false, leaf(add))
}

// --- APX conditional EVEX (CCMP/CTEST family), exercises NodeExSc --------

func buildApxConditionalEntries() {
	conditionNames := [2]string{"o", "no"} // representative subset of the 16 SC condition codes
	scChildren := map[byte]*dispatchNode{}
	for sc, suffix := range conditionNames {
		entry := &InstructionEntry{
			Mnemonic: "ccmp" + suffix, Class: "CCMP", Category: CatAPX, ValidModes: ModeMask64,
			CPUIDFeature: CPUIDAPX, EvexSubmode: EvexConditional,
			Operands: []OperandSpec{
				op(TypeE, SizeV, AccessRead, SlotModRMRM),
				op(TypeG, SizeV, AccessRead, SlotModRMReg),
				op(TypeDFV, SizeNone, AccessRead, SlotVEXvvvv),
			},
		}
		scChildren[byte(sc)] = leaf(entry)
	}
	define(EncodingEVEX, 4, 0x38, true, false, branch(NodeExSc, scChildren))
}

// --- APX legacy-promoted ADD (map 4), exercises ND/NF/ZU decorators --------
//
// Unlike the CCMP family above, a legacy-promoted (non-conditional) APX
// opcode dispatches directly on its opcode byte: the standard-condition
// field only carries meaning for the conditional submode, so this entry
// never branches on it.
func buildApxPromotedEntries() {
	addPromoted := &InstructionEntry{
		Mnemonic: "add", Class: "ADD-NDD", Category: CatAPX, ValidModes: ModeMask64,
		CPUIDFeature: CPUIDAPX, EvexSubmode: EvexLegacyPromoted,
		Attrs: AttrND | AttrZU | AttrNF,
		Operands: []OperandSpec{
			op(TypeE, SizeV, AccessRead|AccessWrite, SlotModRMRM),
			op(TypeG, SizeV, AccessRead, SlotModRMReg),
		},
		Flags: FlagsAccess{Modified: FlagCF | FlagPF | FlagAF | FlagZF | FlagSF | FlagOF},
	}
	define(EncodingEVEX, 4, 0x39, true, false, leaf(addPromoted))
}

// --- Filter / register-constraint / distinct-register dispatch nodes -----
//
// Each entry below exists to give one of the no-op, register-range, or
// cross-register dispatch-node kinds a real instruction to gate, the same
// way buildVexEntries gives NodeExL a real instruction to branch on. None
// of these duplicate an opcode slot used elsewhere in this file.

func buildFilterEntries() {
	// MOV Sreg, r/m16/32/64 (8E /r): CS (segment encoding 1) can never be
	// the destination of a segment-register load; ES/SS/DS/FS/GS are.
	movToSreg := &InstructionEntry{
		Mnemonic: "mov", Class: "MOV-SREG", Category: CatSystem, ValidModes: ModeMaskAll,
		Operands: []OperandSpec{
			op(TypeS, SizeNone, AccessWrite, SlotModRMReg),
			op(TypeE, SizeV, AccessRead, SlotModRMRM),
		},
	}
	define(EncodingLegacy, 0, 0x8E, true, false, regFilterNode(FltSRIn02345, leaf(movToSreg)))

	// MOV r32/64, DRn (0F 21 /r): debug registers are DR0-DR7; REX.R would
	// otherwise let ModR/M.reg name a nonexistent DR8-DR15.
	movFromDR := &InstructionEntry{
		Mnemonic: "mov", Class: "MOV-DR", Category: CatSystem, ValidModes: ModeMask32 | ModeMask64,
		Operands: []OperandSpec{
			op(TypeR, SizeV, AccessWrite, SlotModRMRM),
			op(TypeD, SizeNone, AccessRead, SlotModRMReg),
		},
	}
	define(EncodingLegacy, 1, 0x21, true, true, regFilterNode(FltDRLt8, leaf(movFromDR)))

	// BNDMK bnd, m32/m64 (F3 0F 1B /r): the source must be an ordinary
	// memory operand; RIP-relative addressing is explicitly disallowed.
	bndmk := &InstructionEntry{
		Mnemonic: "bndmk", Category: CatSystem, ValidModes: ModeMask32 | ModeMask64, CPUIDFeature: CPUIDMPX,
		Operands: []OperandSpec{
			op(TypeRB, SizeNone, AccessWrite, SlotModRMReg),
			op(TypeMB, SizeNone, AccessRead, SlotModRMRM),
		},
	}
	bndmkChildren := map[byte]*dispatchNode{
		2: filterNode(FltNoRipRel, leaf(bndmk)), // F3 mandatory prefix
	}
	define(EncodingLegacy, 1, 0x1B, true, false, branch(NodeMandatoryPrefix, bndmkChildren))

	// VGATHERDPS zmm1{k1}, vm32z (EVEX.512.66.0F38.W0 92 /vsib): 16-bit
	// addressing cannot express VSIB, and the destination, mask, and VSIB
	// index register must all be mutually distinct.
	vgatherdps := &InstructionEntry{
		Mnemonic: "vgatherdps", Category: CatAVX512, ValidModes: ModeMask32 | ModeMask64, CPUIDFeature: CPUIDAVX512F,
		Attrs: AttrMaskOK, ValidDecorators: DecMaskOK, Tuple: TupleT1S,
		Operands: []OperandSpec{
			op(TypeV, SizeVec, AccessWrite, SlotModRMReg),
			op(TypeM, SizeVec, AccessRead, SlotModRMRM),
		},
	}
	gatherNode := filterNode(FltNoA16, distinctFilterNode(FltVXneVR_VXneVV_VRneVV, leaf(vgatherdps)))
	define(EncodingEVEX, 2, 0x92, true, false, branch(NodeExPP, map[byte]*dispatchNode{1: gatherNode}))

	// TDPBSSD tmm1, tmm2, tmm3 (EVEX.128.66.0F38.W0 5E /r): the three tile
	// operands (destination, vvvv source, rm source) must be pairwise
	// distinct tile registers.
	tdpbssd := &InstructionEntry{
		Mnemonic: "tdpbssd", Category: CatAMX, ValidModes: ModeMask64, CPUIDFeature: CPUIDAMXTile,
		Operands: []OperandSpec{
			op(TypeRT, SizeNone, AccessRead|AccessWrite, SlotModRMReg),
			op(TypeVT, SizeNone, AccessRead, SlotVEXvvvv),
			op(TypeMT, SizeNone, AccessRead, SlotModRMRM),
		},
	}
	define(EncodingEVEX, 2, 0x5E, true, true, branch(NodeExPP, map[byte]*dispatchNode{
		1: distinctFilterNode(FltTRneTM_TRneTV_TVneTM, leaf(tdpbssd)),
	}))

	// VP4DPWSSD zmm1, zmm2+3, m128 (EVEX.512.F2.0F38.W0 52 /r): the vvvv
	// field names the first of four consecutive source registers; the
	// destination must not overlap it or the rm operand.
	vp4dpwssd := &InstructionEntry{
		Mnemonic: "vp4dpwssd", Category: CatAVX512, ValidModes: ModeMask64, CPUIDFeature: CPUIDAVX512F,
		Tuple: TupleT1S,
		Operands: []OperandSpec{
			op(TypeV, SizeVec, AccessWrite, SlotModRMReg),
			op(TypeH, SizeVec, AccessRead, SlotVEXvvvv),
			op(TypeW, SizeVec, AccessRead, SlotModRMRM),
		},
	}
	define(EncodingEVEX, 2, 0x52, true, false, branch(NodeExPP, map[byte]*dispatchNode{
		3: distinctFilterNode(FltVRneVV_VRneVM, leaf(vp4dpwssd)),
	}))
}

// --- 3DNow!: trailing opcode byte selects the mnemonic --------------------

func buildThreeDNowEntries() {
	trailing := map[byte]*dispatchNode{
		0x9E: leaf(&InstructionEntry{Mnemonic: "pfadd", Category: CatAMD3DNow, ValidModes: ModeMask32 | ModeMask64, CPUIDFeature: CPUID3DNow,
			Operands: []OperandSpec{op(TypeP, Size8, AccessRead|AccessWrite, SlotModRMReg), op(TypeQ, Size8, AccessRead, SlotModRMRM)}}),
		0x9A: leaf(&InstructionEntry{Mnemonic: "pfsub", Category: CatAMD3DNow, ValidModes: ModeMask32 | ModeMask64, CPUIDFeature: CPUID3DNow,
			Operands: []OperandSpec{op(TypeP, Size8, AccessRead|AccessWrite, SlotModRMReg), op(TypeQ, Size8, AccessRead, SlotModRMRM)}}),
		0xB0: leaf(&InstructionEntry{Mnemonic: "pavgusb", Category: CatAMD3DNow, ValidModes: ModeMask32 | ModeMask64, CPUIDFeature: CPUID3DNow,
			Operands: []OperandSpec{op(TypeP, Size8, AccessRead|AccessWrite, SlotModRMReg), op(TypeQ, Size8, AccessRead, SlotModRMRM)}}),
	}
	define(EncodingLegacy, 1, 0x0F, true, false, branch(NodeOpcodeLast, trailing))
}

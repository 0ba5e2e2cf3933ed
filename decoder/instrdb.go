package decoder

// This file defines the instruction-database entry shape from spec §3,
// adapted from the teacher's asm.Instruction/asm.InstructionForm
// (internal/asm/instruction.go, instruction_form.go): where the teacher's
// InstructionForm maps an operand-type list to an encoding for *assembling*,
// InstructionEntry maps a table-resident operand-spec list to an encoding
// for *disassembling* — same shape, opposite direction. Entries are
// immutable and table-resident; the dispatch walker (dispatch.go) never
// copies one, only returns a pointer into the tables built in tables.go.

// EncodingMode mirrors the teacher's InstructionEncoding constants
// (architecture/x86_64/instruction_encoding.go), extended with the two
// prefix forms the teacher's assembler never had to emit: REX2 and a
// legacy/no-prefix tag distinct from "has REX".
type EncodingMode uint8

const (
	EncodingLegacy EncodingMode = iota
	EncodingVEX
	EncodingEVEX
	EncodingXOP
	EncodingREX2
)

// AttrFlag is a bitmask of per-entry attribute bits consulted throughout
// post-decode resolution (§4.7-§4.10) and prefix activation (§4.9).
type AttrFlag uint32

const (
	AttrModRM        AttrFlag = 1 << iota
	AttrModForcedReg          // MFR: mod is forced to 3 (register-register only)
	AttrW64                   // entry requires REX.W/VEX.W/EVEX.W = 1
	AttrForced64               // f64: operand size is always 64 in 64-bit mode
	AttrDefault64               // d64: operand size defaults to 64 in 64-bit mode absent 0x66
	AttrMandatory66             // entry's 0x66 is an opcode extender, not a size prefix
	AttrKeep66AsSize            // MOVBE/CRC32 exception: 0x66 stays a size prefix despite being "mandatory"
	AttrAddr64                  // I67: effective address size forced to 64 in 64-bit mode
	AttrLIgnored                // collapse effective vector length back to 128
	AttrLockable                // memory-destination RMW opcode: LOCK may activate
	AttrLockMovCR8               // AMD: LOCK + MOV CR in 32-bit mode accesses CR8
	AttrRepClass                 // mnemonic classified REP (string op)
	AttrRepCondClass             // mnemonic classified REP-conditional (SCAS/CMPS)
	AttrBND                      // BND prefix candidate
	AttrHLENoLock                 // XACQUIRE/XRELEASE without LOCK permitted
	AttrBranchHint                // conditional branch accepts 2E/3E hints
	AttrCETTracked                 // indirect branch honors do-not-track
	AttrMaskOK                     // k!=0 permitted
	AttrMaskRequiredAttr            // k=0 is rejected
	AttrEvexERPermitted              // entry permits embedded rounding
	AttrEvexSAEPermitted              // entry permits SAE
	AttrEvexIgnoredER                  // IER: bm=1 ignored rather than decoded as ER/SAE
	AttrEvexBroadcastOK                  // memory form supports broadcast
	AttrWritesMemory
	AttrND // APX new-data-destination
	AttrNF // APX no-flags-written
	AttrZU // APX zero-upper on destination
)

func (e AttrFlag) has(f AttrFlag) bool { return e&f != 0 }

// Category loosely buckets an entry for tooling/analysis (not used by
// dispatch itself).
type Category string

const (
	CatGeneral  Category = "general"
	CatSystem   Category = "system"
	CatString   Category = "string"
	CatBranch   Category = "branch"
	CatX87      Category = "x87"
	CatMMX      Category = "mmx"
	CatSSE      Category = "sse"
	CatAVX      Category = "avx"
	CatAVX512   Category = "avx512"
	CatAMX      Category = "amx"
	CatAPX      Category = "apx"
	CatVirt     Category = "virtualization"
	CatAMD3DNow Category = "3dnow"
)

// ISASet names the instruction-set extension an entry belongs to.
type ISASet string

// CPUIDFeature is a typed CPUID feature-gate enum, per SPEC_FULL's
// supplemented-feature note 5 (bdx86_helpers.c models this as an enum, not
// a free string).
type CPUIDFeature uint16

const (
	CPUIDNone CPUIDFeature = iota
	CPUIDSSE
	CPUIDSSE2
	CPUIDAVX
	CPUIDAVX2
	CPUIDAVX512F
	CPUIDAVX512BW
	CPUIDAVX512VL
	CPUIDBMI1
	CPUIDBMI2
	CPUIDAMXTile
	CPUIDCET
	CPUIDMPX
	CPUIDAPX
	CPUID3DNow
)

// FlagBit is a single x86 status/control flag.
type FlagBit uint16

const (
	FlagCF FlagBit = 1 << iota
	FlagPF
	FlagAF
	FlagZF
	FlagSF
	FlagTF
	FlagIF
	FlagDF
	FlagOF
)

// FlagsAccess is the per-entry flags-access descriptor: which bits are
// tested (read), modified (may change, data-dependent), set unconditionally,
// cleared unconditionally, or left undefined.
type FlagsAccess struct {
	Tested    FlagBit
	Modified  FlagBit
	Set       FlagBit
	Cleared   FlagBit
	Undefined FlagBit
}

// FPUFlagsAccess tracks x87 condition-code (C0-C3) access, per SPEC_FULL's
// supplemented-feature note 4.
type FPUFlagsAccess uint8

const (
	FPUFlagsNone FPUFlagsAccess = 0
	FPUFlagC0    FPUFlagsAccess = 1 << 0
	FPUFlagC1    FPUFlagsAccess = 1 << 1
	FPUFlagC2    FPUFlagsAccess = 1 << 2
	FPUFlagC3    FPUFlagsAccess = 1 << 3
)

// ExceptionClass and ExceptionType classify the SIMD/FP exception behavior
// of an entry, per SPEC_FULL's supplemented-feature note 4.
type ExceptionClass uint8
type ExceptionType uint8

const (
	ExcClassNone ExceptionClass = iota
	ExcClassGeneral
	ExcClassSIMD
	ExcClassFPU
)

const (
	ExcTypeNone ExceptionType = iota
	ExcType1
	ExcType2
	ExcType3
	ExcType4
	ExcType5
	ExcType6
	ExcTypeE1
	ExcTypeE2
	ExcTypeE3
	ExcTypeE4
)

// TupleType is the EVEX memory-operand-shape metadata that drives the
// compressed-displacement scaling factor (§4.10).
type TupleType uint8

const (
	TupleNone TupleType = iota
	TupleFV
	TupleHV
	TupleQV
	TupleFVM
	TupleHVM
	TupleQVM
	TupleOVM
	TupleDUP
	TupleM128
	TupleT1S8
	TupleT1S16
	TupleT1S
	TupleT1F
	TupleT2
	TupleT4
	TupleT8
	TupleT1_4X
)

// PayloadKind is the compact "Ipb" payload-byte descriptor (§4.6).
type PayloadKind uint8

const (
	PayloadNone PayloadKind = iota
	PayloadImmB            // 1-byte immediate
	PayloadImmW            // 2-byte immediate
	PayloadImmD            // 4-byte immediate
	PayloadImmV            // operand-size immediate
	PayloadImmZ            // min(operand size, 32)-bit immediate
	PayloadImmPairWB       // ENTER-style word+byte pair
	PayloadImmPairBB       // EXTRQ/INSERTQ-style byte+byte pair
	PayloadRelB            // 1-byte relative offset
	PayloadRelZ            // operand-size-limited-to-32 relative offset
	PayloadFarP            // far pointer (16:16/16:32/16:64 by operand mode)
	PayloadNearQ           // 64-bit absolute near address
	PayloadMoffsetA        // address-size-sized moffset
	PayloadIs4B            // is4 SSE register-in-immediate byte
)

// EvexSubmode distinguishes the regular AVX-512 EVEX form from the three
// APX-introduced EVEX submodes.
type EvexSubmode uint8

const (
	EvexRegular EvexSubmode = iota
	EvexLegacyPromoted
	EvexVexPromoted
	EvexConditional
)

// ImplicitAccess is a bitmask of implicit architectural state an entry
// reads or writes beyond its explicit operand list.
type ImplicitAccess uint16

const (
	ImplicitCS ImplicitAccess = 1 << iota
	ImplicitRIP
	ImplicitFlags
	ImplicitMemory
	ImplicitStack
)

// OperandTypeCode is the compact operand "type" half of a specifier (§4.11).
// This is a representative subset of the ~70 type codes spec.md names — the
// full table is generated offline (out of scope per §1) from the
// instruction database; this subset covers every category the spec
// enumerates (implicit constants, named implicit registers, generic
// register classes, memory classes, moffset/string/relative/far/immediate,
// and the APX/EVEX special cases). tables.go instantiates only the codes its
// representative entries use, so several §4.11 materialization paths (for
// example TypeXStr, TypeOffs, TypeJ and TypeA) have no instance there.
type OperandTypeCode uint8

const (
	TypeNone OperandTypeCode = iota
	TypeImplicit1                  // implicit constant 1 (shift count)
	TypeImplicitAL
	TypeImplicitAX
	TypeImplicitEAX
	TypeImplicitRAX
	TypeImplicitCL
	TypeImplicitDX
	TypeImplicitCS
	TypeImplicitSS
	TypeImplicitDS
	TypeImplicitES
	TypeImplicitFS
	TypeImplicitGS
	TypeImplicitFlags
	TypeImplicitRIP
	TypeG // GPR from ModR/M.reg
	TypeE // GPR/mem from ModR/M.rm
	TypeM // memory only from ModR/M.rm (mod != 3 required)
	TypeR // GPR from ModR/M.rm, register-only
	TypeV // vector reg from ModR/M.reg
	TypeW // vector reg/mem from ModR/M.rm
	TypeH // vector reg from VEX/EVEX.vvvv
	TypeL // vector reg from is4 immediate
	TypeU // vector reg from ModR/M.rm, register-only
	TypeN // MMX reg from ModR/M.rm, register-only
	TypeQ // MMX reg/mem from ModR/M.rm
	TypeP // MMX reg from ModR/M.reg
	TypeC // control reg from ModR/M.reg
	TypeD // debug reg from ModR/M.reg
	TypeS // segment reg from ModR/M.reg
	TypeO // offset/relative GPR encoded in opcode low 3 bits
	TypeRK  // mask reg from ModR/M.reg
	TypeVK  // mask reg from ModR/M.rm, register-only
	TypeMK  // mask reg from ModR/M.rm, memory or register
	TypeAK  // mask reg from VEX/EVEX.vvvv
	TypeRT  // tile reg from ModR/M.reg
	TypeMT  // tile reg or sibmem from ModR/M.rm
	TypeVT  // tile reg from VEX/EVEX.vvvv
	TypeRB  // bound reg from ModR/M.reg
	TypeMB  // bound reg or mem from ModR/M.rm
	TypeOffs // direct moffset address (A0-A3 MOV)
	TypeXStr // string source, DS:rSI
	TypeYStr // string dest, ES:rDI
	TypeJ    // relative branch target
	TypeA    // far pointer
	TypeI    // immediate
	TypeI1   // first of two chained immediates (ENTER)
	TypeI2   // second of two chained immediates (ENTER)
	TypeM2zI // is4 2-bit immediate selecting a register (VPERMIL2 etc.)
	TypeDFV  // APX default-flags-value packed into vvvv
	TypePBXAL // [rBX+AL], XLAT
	TypePAX   // implicit [rAX]
	TypePCX   // implicit [rCX]
	TypePBP   // implicit [rBP]
	TypeSHS   // shadow-stack memory operand
	TypeSHS0  // shadow-stack memory operand, SSP-relative
	TypeSHSP  // shadow-stack push-target memory operand
	TypeRegBank // whole register-class operand (PUSHA/POPA/XSAVE family)
	TypeImplicitCR0
	TypeImplicitXCR0
	TypeImplicitMSR
	TypeImplicitX87Control
	TypeImplicitX87Status
	TypeImplicitX87Tag
	TypeImplicitMXCSR
	TypeImplicitST0
	TypeImplicitST // x87 ST(i) from opcode low 3 bits
)

// SizeCode is the compact operand "size" half of a specifier (§4.11); a
// representative subset of the ~50 size codes, covering every
// size-resolution rule §4.7-§4.8 and §4.10 name.
type SizeCode uint8

const (
	SizeNone SizeCode = iota
	Size1
	Size2
	Size4
	Size8
	Size10 // x87 80-bit extended precision
	SizeV  // = effective operand size
	SizeZ  // = min(effective operand size, 32)
	SizeP  // far pointer, 32/48/80 bits by operand mode
	SizeVec // = effective vector length in bytes
	SizeVecOrBcst // vector length, or broadcast element size when broadcasting
	SizeAddr // = effective address size
	SizeStack // = word size (2x the effective operand mode's "natural" unit)
	SizeElem1
	SizeElem2
	SizeElem4
	SizeElem8
)

// OperandDecoratorFlags marks which AVX-512/APX decorators a single operand
// slot may carry; the decode-wide activation state in decorators.go is
// filled onto the operand only where the spec's bit is set.
type OperandDecoratorFlags uint8

const (
	DecMaskOK OperandDecoratorFlags = 1 << iota
	DecZeroOK
	DecBroadcastOK
	DecSAEOK
	DecEROK
)

// OperandSpec is the packed, table-resident operand specifier spec §9
// describes as a 64-bit bitfield; it is exposed here as a plain struct with
// named fields (the reimplementation note in spec §9 explicitly calls for
// this — keep the bit layout's *meaning*, not its byte-for-byte packing,
// since nothing downstream of this library depends on the offline
// generator's physical layout).
type OperandSpec struct {
	Type       OperandTypeCode
	Size       SizeCode
	Access     AccessMode
	Slot       EncodingSlot
	BlockCount byte
	Decorators OperandDecoratorFlags
	IsDefault  bool
}

// InstructionEntry is one immutable, table-resident instruction-database
// entry (§3). A successful dispatch-walker descent (dispatch.go) always
// terminates at a pointer to one of these.
type InstructionEntry struct {
	Mnemonic  string
	Class     string // groups variants sharing one mnemonic class, e.g. "Jcc"
	Category  Category
	ISASet    ISASet
	Operands  []OperandSpec
	Attrs     AttrFlag
	ValidModes    CodeModeMask
	ValidPrefixes PrefixMask
	ValidDecorators OperandDecoratorFlags
	Flags         FlagsAccess
	FPUFlags      FPUFlagsAccess
	CPUIDFeature  CPUIDFeature
	ExcClass      ExceptionClass
	ExcType       ExceptionType
	Tuple         TupleType
	Payload       PayloadKind
	StackWords    int8
	Implicit      ImplicitAccess
	EvexSubmode   EvexSubmode
}

// CodeModeMask is a bitmask over {16,32,64}-bit code modes.
type CodeModeMask uint8

const (
	ModeMask16 CodeModeMask = 1 << iota
	ModeMask32
	ModeMask64
	ModeMaskAll = ModeMask16 | ModeMask32 | ModeMask64
)

func codeModeMaskBit(m CodeMode) CodeModeMask {
	switch m {
	case Mode16:
		return ModeMask16
	case Mode32:
		return ModeMask32
	case Mode64:
		return ModeMask64
	}
	return 0
}

func (e *InstructionEntry) validInMode(m CodeMode) bool {
	return e.ValidModes&codeModeMaskBit(m) != 0
}

// PrefixMask is a bitmask over the legacy prefix classes an entry permits
// to be active (beyond the mandatory prefix consumed by dispatch itself).
type PrefixMask uint16

const (
	PrefixMaskLock PrefixMask = 1 << iota
	PrefixMaskRep
	PrefixMaskRepne
	PrefixMaskSeg
	PrefixMaskBranchHint
	PrefixMaskDNT
	PrefixMaskAll = PrefixMaskLock | PrefixMaskRep | PrefixMaskRepne | PrefixMaskSeg | PrefixMaskBranchHint | PrefixMaskDNT
)

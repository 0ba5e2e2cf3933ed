package decoder

// OperandKind tags which variant of the Operand tagged union is populated.
type OperandKind uint8

const (
	OperandRegister OperandKind = iota
	OperandMemory
	OperandImmediate
	OperandRelative
	OperandFarPointer
	OperandMoffset
	OperandImplicitConst
	OperandRegisterBank
	OperandDefaultFlagsValue
)

// AccessMode is a bitmask of how an operand is touched by the instruction.
// Read and write bits may combine (read-modify-write); conditional variants
// mark accesses that only occur for some inputs (e.g. CMOVcc's destination).
type AccessMode uint8

const (
	AccessRead AccessMode = 1 << iota
	AccessWrite
	AccessCondRead
	AccessCondWrite
	AccessPrefetch
)

func (a AccessMode) Has(bit AccessMode) bool { return a&bit != 0 }

// EncodingSlot records which field of the instruction encoding produced an
// operand's value, for tooling that needs to trace provenance.
type EncodingSlot uint8

const (
	SlotNone EncodingSlot = iota
	SlotModRMReg
	SlotModRMRM
	SlotVEXvvvv
	SlotOpcode
	SlotImmediate
	SlotIs4
	SlotDefault
	SlotCompressedDisp
	SlotFixed
)

// Decorators carries the AVX-512/APX per-operand decorator state, filled in
// from the already-computed decode-wide activation state (§4.10). Fields
// are meaningful only when the corresponding operand-spec flag permits them.
type Decorators struct {
	MaskRegister   byte // k0 means "no mask"; non-zero iff masking is active
	Zeroing        bool
	SAE            bool
	EmbeddedRound  bool
	RoundingMode   byte // 0=RN,1=RD,2=RU,3=RZ, meaningful iff EmbeddedRound
	BroadcastCount byte // >0 iff broadcast is active
	BroadcastSize  byte // element size in bytes, iff broadcast is active
	NewDataDest    bool // APX ND: destination is a new third operand
	NoFlags        bool // APX NF: this encoding suppresses flag writes
	ZeroUpper      bool // APX ND/ZU: destination register's upper bits are zeroed
}

// MemoryFlags is a bitmask of addressing-mode qualifiers for a Memory
// operand.
type MemoryFlags uint16

const (
	MemRIPRelative MemoryFlags = 1 << iota
	MemStack
	MemString
	MemShadowStack
	MemDirect
	MemBitbase
	MemAddressGeneratorOnly
	MemMIB
	MemVSIB
	MemSibmem
	MemCompressedDisp
)

// ShadowStackKind distinguishes the CET shadow-stack access forms.
type ShadowStackKind uint8

const (
	ShadowStackNone ShadowStackKind = iota
	ShadowStackPush
	ShadowStackPop
	ShadowStackRestoreToken
)

// Memory is the Memory operand variant: an optional segment, optional base,
// optional index (possibly vector, for VSIB), an optional displacement, and
// addressing-mode flags.
type Memory struct {
	Segment      *RegisterRef
	Base         *RegisterRef
	Index        *RegisterRef
	Scale        byte // 1, 2, 4, or 8; meaningful only when Index != nil
	HasDisp      bool
	Disp         int64 // sign-extended to 64 bits
	DispRawLen   byte  // 1, 2, or 4 raw bytes as encoded
	CompressFactor byte // disp8*N scaling factor, iff MemCompressedDisp
	Flags        MemoryFlags
	ShadowStack  ShadowStackKind
	VSIBIndexSize  byte // bytes, iff MemVSIB
	VSIBElemSize   byte // bytes, iff MemVSIB
	VSIBElemCount  byte // iff MemVSIB
	BroadcastCount byte // iff broadcast decorator active on this operand
	BroadcastSize  byte
	AddrSize     byte // 2, 4, or 8: width of Base/Index when present
}

// Immediate is the Immediate operand variant.
type Immediate struct {
	Value        uint64
	RawLen       byte
	SignExtended bool
}

// RelativeOffset is the relative-branch-target operand variant; Target is
// computed by the caller as RIP + instruction length + Offset, since RIP is
// not known to a pure decode call.
type RelativeOffset struct {
	Offset int64
	RawLen byte
}

// FarPointer is the absolute far-address operand variant (CALL/JMP far,
// opcode 9A/EA).
type FarPointer struct {
	Selector uint16
	Offset   uint64
	OffsetLen byte // 2, 4 (16/32-bit offset); 4 only in non-64-bit mode
}

// Moffset is the segment-relative direct memory address used by the A0-A3
// MOV forms.
type Moffset struct {
	Segment RegisterRef
	Address uint64
	AddrLen byte
}

// DefaultFlagsValue is the APX DFV operand: four boolean flag values packed
// into VEX.vvvv for *-DF conditional instructions.
type DefaultFlagsValue struct {
	CF, ZF, SF, OF bool
}

// Operand is a tagged union over the variants named in spec §3. Exactly one
// of the *Value fields is meaningful, selected by Kind.
type Operand struct {
	Kind OperandKind

	Register    RegisterRef
	Memory      Memory
	Immediate   Immediate
	Relative    RelativeOffset
	FarPointer  FarPointer
	Moffset     Moffset
	ImplicitInt int64
	RegisterBankTag string // e.g. "xsave-area", "all-gprs" for PUSHA/POPA/XSAVE family
	DefaultFlags DefaultFlagsValue

	Access    AccessMode
	Slot      EncodingSlot
	IsDefault bool
	SignExtendedFlag bool
	Decorators Decorators
}

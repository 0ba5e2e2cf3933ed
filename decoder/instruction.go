package decoder

// RepKind distinguishes the REP-family legacy prefix's meaning once
// resolved against the matched entry (§4.2, §4.9).
type RepKind uint8

const (
	RepNone RepKind = iota
	RepZ            // F3: REP/REPE/REPZ, or XRELEASE, or mandatory-prefix candidate
	RepNZ           // F2: REPNE/REPNZ, or XACQUIRE, or BND, or mandatory-prefix candidate
)

// BranchHint records the 2E/3E segment-override bytes when they are acting
// as Jcc not-taken/taken hints rather than as segment overrides.
type BranchHint uint8

const (
	HintNone BranchHint = iota
	HintNotTaken          // 2E
	HintTaken             // 3E
)

// ExtBits is the flat, compressed extension-bit view spec §3 calls for:
// every REX/REX2/VEX/XOP/EVEX extension bit collapsed into one struct,
// regardless of which prefix family produced it. Fields the producing
// prefix family does not define are left zero after prefix resolution
// rather than carrying stale bits from a previous decode (spec §9's "global
// mutable context" note — here there is no global, but the same zeroing
// discipline applies to this per-call struct). EVEX is the exception: its
// byte 3 fills both the regular fields (Z, L, BM, VPrime, K) and the APX
// view of the same bits (NF, ND, SC) for every EVEX prefix.
type ExtBits struct {
	W  bool // operand-size-64 / element-width selector
	R  bool // ModR/M.reg high bit
	X  bool // SIB.index high bit
	B  bool // ModR/M.rm/SIB.base/opcode-reg high bit
	RPrime bool // EVEX.R', APX high extension of R
	X4 bool // APX/EVEX high extension of X (EVEX.X4 via B4 field reuse for some forms)
	B4 bool // APX/EVEX high extension of B
	V  byte // VEX/XOP/EVEX.vvvv: 4 bits in 64-bit mode, 3 otherwise (EVEX's fifth bit is VPrime)
	VPrime bool // EVEX.V', inverted
	M  byte // opcode map id
	P  byte // mandatory prefix code: 0 none, 1=66, 2=F3, 3=F2
	L  byte // vector-length field, 0/1/2 before resolution to 128/256/512
	Z  bool // EVEX.z zeroing bit
	K  byte // EVEX.aaa mask register number
	BM bool // EVEX.b (broadcast/rounding/SAE) bit
	NF bool // APX no-flags bit
	ND bool // APX new-data-destination bit
	SC byte // APX standard-condition field
}

// PrefixState is the resolved legacy-prefix state after the prefix scanner
// runs (§4.2), independent of which extended-prefix family (if any)
// followed it.
type PrefixState struct {
	Lock            bool
	Rep             RepKind
	SegmentOverride *RegisterRef // nil if none is active
	DoNotTrack      bool         // 3E seen with no FS/GS override active
	Hint            BranchHint
	OperandSizeOverride bool // 0x66 seen
	AddressSizeOverride bool // 0x67 seen
	HasREX          bool
	REX             byte
	HasREX2         bool
	REX2            [2]byte
}

// DecodeCtx is the transient, mutable state threaded explicitly through
// every pipeline stage for the duration of one decode call (spec §9's
// "macro-scoped context aliasing" note: the teacher's C source aliases an
// in-progress record through preprocessor macros; here every stage takes
// *DecodeCtx as an explicit parameter instead).
type DecodeCtx struct {
	buf       []byte
	mode      ModeConfig
	cursor    int
	length    int

	encoding  EncodingMode
	prefixes  PrefixState
	ext       ExtBits

	opcodeOffset       int
	primaryOpcodeOffset int
	mapID              byte
	primaryOpcode      byte

	hasModRM bool
	modrmOffset int
	modrm    byte
	mod, reg, rm byte

	hasSIB   bool
	sibOffset int
	sib      byte
	scale, index, base byte

	hasDisp    bool
	dispOffset int
	dispRaw    uint64
	dispLen    byte
	ripRelative bool

	immediates    []immField
	relOffset     *relField
	farPtr        *farField
	moffsetField  *moffField
	is4Offset     int
	is4Present    bool
	is4Value      byte

	entry *InstructionEntry

	effOpSize   byte
	effAddrSize byte
	effVecLen   uint16
	wordSize    byte

	decorators Decorators
	cetTracked bool

	modForcedReg bool // this opcode's ModR/M, if present, never addresses memory
}

type immField struct {
	offset int
	value  uint64
	rawLen byte
	signExtended bool
}

type relField struct {
	offset int
	value  int64
	rawLen byte
}

type farField struct {
	offset    int
	selector  uint16
	off       uint64
	offLen    byte
}

type moffField struct {
	offset int
	addr   uint64
	addrLen byte
}

func newDecodeCtx(buf []byte, mode ModeConfig) *DecodeCtx {
	return &DecodeCtx{buf: buf, mode: mode}
}

// remaining is how many bytes are left in the caller's buffer from the
// cursor.
func (c *DecodeCtx) remaining() int {
	return len(c.buf) - c.cursor
}

// fetch advances the cursor by n bytes, enforcing both the caller's buffer
// bound and the architectural 15-byte instruction length limit (§4.1),
// and returns the consumed slice.
func (c *DecodeCtx) fetch(n int) ([]byte, error) {
	if c.length+n > 15 {
		return nil, newErr(ErrInstructionTooLong, c.cursor)
	}
	if c.remaining() < n {
		return nil, newErr(ErrBufferTooSmall, c.cursor)
	}
	b := c.buf[c.cursor : c.cursor+n]
	c.cursor += n
	c.length += n
	return b, nil
}

func (c *DecodeCtx) fetchByte() (byte, error) {
	b, err := c.fetch(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (c *DecodeCtx) peekByte() (byte, bool) {
	if c.remaining() < 1 {
		return 0, false
	}
	return c.buf[c.cursor], true
}

// Instruction is the final, read-only decoded instruction record (§3). It
// is produced once by Decode/DecodeCompact and never mutated afterward.
type Instruction struct {
	Bytes  [15]byte
	Length int

	Mode     CodeMode
	Encoding EncodingMode
	Prefixes PrefixState
	Ext      ExtBits

	HasModRM    bool
	ModRM       byte
	ModRMOffset int
	Mod, Reg, Rm byte

	HasSIB    bool
	SIB       byte
	SIBOffset int
	Scale, Index, Base byte

	HasDisp       bool
	Disp          uint64
	DispLen       byte
	DispOffset    int
	RIPRelative   bool

	OpcodeOffset        int
	PrimaryOpcodeOffset int
	MapID               byte
	PrimaryOpcode       byte

	EffectiveOperandSize byte
	EffectiveAddressSize byte
	EffectiveVectorLen   uint16
	WordSize             byte

	Decorators Decorators
	CETTracked bool

	Entry    *InstructionEntry
	Operands []Operand
}

func (c *DecodeCtx) finish(entry *InstructionEntry, operands []Operand) *Instruction {
	ins := &Instruction{
		Length:               c.length,
		Mode:                 c.mode.CodeMode,
		Encoding:             c.encoding,
		Prefixes:             c.prefixes,
		Ext:                  c.ext,
		HasModRM:             c.hasModRM,
		ModRM:                c.modrm,
		ModRMOffset:          c.modrmOffset,
		Mod:                  c.mod,
		Reg:                  c.reg,
		Rm:                   c.rm,
		HasSIB:               c.hasSIB,
		SIB:                  c.sib,
		SIBOffset:            c.sibOffset,
		Scale:                c.scale,
		Index:                c.index,
		Base:                 c.base,
		HasDisp:              c.hasDisp,
		Disp:                 c.dispRaw,
		DispLen:              c.dispLen,
		DispOffset:           c.dispOffset,
		RIPRelative:          c.ripRelative,
		OpcodeOffset:         c.opcodeOffset,
		PrimaryOpcodeOffset:  c.primaryOpcodeOffset,
		MapID:                c.mapID,
		PrimaryOpcode:        c.primaryOpcode,
		EffectiveOperandSize: c.effOpSize,
		EffectiveAddressSize: c.effAddrSize,
		EffectiveVectorLen:   c.effVecLen,
		WordSize:             c.wordSize,
		Decorators:           c.decorators,
		CETTracked:           c.cetTracked,
		Entry:                entry,
		Operands:             operands,
	}
	copy(ins.Bytes[:], c.buf[:c.length])
	return ins
}

// CompactInstruction is the mini-record yielded by DecodeCompact: enough to
// identify the matched entry and recompute sizes, but without materialized
// operands, for performance-critical scanning (spec §6, entry point 2).
type CompactInstruction struct {
	Bytes  [15]byte
	Length int

	Mode     CodeMode
	Encoding EncodingMode
	Prefixes PrefixState
	Ext      ExtBits

	HasModRM bool
	Mod, Reg, Rm byte
	HasSIB   bool
	Scale, Index, Base byte
	HasDisp  bool
	Disp     uint64
	DispLen  byte
	RIPRelative bool

	EffectiveOperandSize byte
	EffectiveAddressSize byte
	EffectiveVectorLen   uint16

	Decorators Decorators
	CETTracked bool

	Entry *InstructionEntry

	// opaque decode context retained to support on-demand
	// MaterializeOperand calls without re-running the pipeline.
	ctx *DecodeCtx
}

func (c *DecodeCtx) finishCompact(entry *InstructionEntry) *CompactInstruction {
	ci := &CompactInstruction{
		Length:               c.length,
		Mode:                 c.mode.CodeMode,
		Encoding:             c.encoding,
		Prefixes:             c.prefixes,
		Ext:                  c.ext,
		HasModRM:             c.hasModRM,
		Mod:                  c.mod,
		Reg:                  c.reg,
		Rm:                   c.rm,
		HasSIB:               c.hasSIB,
		Scale:                c.scale,
		Index:                c.index,
		Base:                 c.base,
		HasDisp:              c.hasDisp,
		Disp:                 c.dispRaw,
		DispLen:              c.dispLen,
		RIPRelative:          c.ripRelative,
		EffectiveOperandSize: c.effOpSize,
		EffectiveAddressSize: c.effAddrSize,
		EffectiveVectorLen:   c.effVecLen,
		Decorators:           c.decorators,
		CETTracked:           c.cetTracked,
		Entry:                entry,
		ctx:                  c,
	}
	copy(ci.Bytes[:], c.buf[:c.length])
	return ci
}

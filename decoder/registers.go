package decoder

// RegisterBank identifies which register file a RegisterRef indexes into.
// Adapted from the teacher's RegisterType enumeration (architecture/x86_64/
// registers.go), extended with every bank spec §3 names.
type RegisterBank uint8

const (
	BankGPR      RegisterBank = iota // general purpose, size selects al/ax/eax/rax view
	BankSegment                     // ES/CS/SS/DS/FS/GS
	BankX87                          // ST(0)-ST(7)
	BankMMX                          // MM0-MM7
	BankVector                       // XMM/YMM/ZMM, size selects the view (16/32/64 bytes)
	BankControl                      // CR0-CR15
	BankDebug                        // DR0-DR15
	BankTest                         // TR0-TR7 (legacy test registers)
	BankBound                        // BND0-BND3 (MPX)
	BankMask                         // K0-K7 (AVX-512 mask registers)
	BankTile                         // TMM0-TMM7 (AMX)
	BankSystem                       // GDTR/IDTR/LDTR/TR (system table/selector registers)
	BankMSR                          // model-specific register, indexed by ECX at decode time
	BankXCR                          // extended control register, indexed by ECX at decode time
	BankMXCSR                        // the MXCSR control/status register, a singleton
	BankPKRU                         // the PKRU register, a singleton
	BankSSP                          // shadow stack pointer, a singleton
	BankFlags                        // RFLAGS/EFLAGS/FLAGS, a singleton
	BankRIP                          // the instruction pointer, a singleton
	BankUIF                          // the user interrupt flag, a singleton
)

// RegisterRef identifies a concrete register operand: which bank, which
// number within the bank, its size in bytes, and the APX/EVEX/legacy
// decorations (block count, high-8 aliasing, zero-upper) that change how a
// consumer should treat it.
type RegisterRef struct {
	Bank RegisterBank
	// Number is the register's encoding number (0-31 for GPR/vector in
	// 64-bit mode with APX, 0-7 for mask/tile/x87/mmx/segment/test/bound,
	// 0-15 for control/debug).
	Number byte
	// Size is the register width in bytes (1,2,4,8 for GPR; 8 for
	// MMX/control/debug; 10 for x87 ST registers and 2 for the x87
	// control/status/tag registers; 16/32/64 for vector banks).
	Size byte
	// Count is >1 for block-register addressing (a contiguous run of
	// registers starting at Number, used by some AVX-512/AMX forms).
	Count byte
	// High8 marks the legacy AH/CH/DH/BH aliasing of a 1-byte GPR operand
	// (Number in 4..7, no REX/REX2 present).
	High8 bool
	// ZeroUpper marks APX/EVEX "zero the upper bits of the destination"
	// semantics (the ND/ZU attributes).
	ZeroUpper bool
}

func gpr(n byte, size byte) RegisterRef { return RegisterRef{Bank: BankGPR, Number: n, Size: size} }

// GPR name tables, by size then encoding number (0-15). Numbers 16-31 are
// APX extended GPRs (R16-R31) and are rendered as "rNN"/"rNNd"/"rNNw"/"rNNb".
var gprNames64 = [...]string{"rax", "rcx", "rdx", "rbx", "rsp", "rbp", "rsi", "rdi",
	"r8", "r9", "r10", "r11", "r12", "r13", "r14", "r15"}
var gprNames32 = [...]string{"eax", "ecx", "edx", "ebx", "esp", "ebp", "esi", "edi",
	"r8d", "r9d", "r10d", "r11d", "r12d", "r13d", "r14d", "r15d"}
var gprNames16 = [...]string{"ax", "cx", "dx", "bx", "sp", "bp", "si", "di",
	"r8w", "r9w", "r10w", "r11w", "r12w", "r13w", "r14w", "r15w"}
var gprNames8 = [...]string{"al", "cl", "dl", "bl", "spl", "bpl", "sil", "dil",
	"r8b", "r9b", "r10b", "r11b", "r12b", "r13b", "r14b", "r15b"}
var gprNames8High = [...]string{"ah", "ch", "dh", "bh"}

var segmentNames = [...]string{"es", "cs", "ss", "ds", "fs", "gs"}
var controlNames = [...]string{"cr0", "cr1", "cr2", "cr3", "cr4", "cr5", "cr6", "cr7",
	"cr8", "cr9", "cr10", "cr11", "cr12", "cr13", "cr14", "cr15"}
var debugNames = [...]string{"dr0", "dr1", "dr2", "dr3", "dr4", "dr5", "dr6", "dr7",
	"dr8", "dr9", "dr10", "dr11", "dr12", "dr13", "dr14", "dr15"}

// RegisterName renders a RegisterRef as its canonical lower-case assembly
// name. This is not the (out-of-scope) textual formatter: it exists for
// tooling/debugging (the CLI dump command, test failure messages) and makes
// no attempt at Intel-syntax operand composition.
func RegisterName(r RegisterRef) string {
	switch r.Bank {
	case BankGPR:
		if r.High8 {
			return gprNames8High[r.Number-4]
		}
		switch r.Size {
		case 1:
			if int(r.Number) < len(gprNames8) {
				return gprNames8[r.Number]
			}
		case 2:
			if int(r.Number) < len(gprNames16) {
				return gprNames16[r.Number]
			}
		case 4:
			if int(r.Number) < len(gprNames32) {
				return gprNames32[r.Number]
			}
		case 8:
			if int(r.Number) < len(gprNames64) {
				return gprNames64[r.Number]
			}
		}
		return apxGPRName(r)
	case BankSegment:
		if int(r.Number) < len(segmentNames) {
			return segmentNames[r.Number]
		}
	case BankControl:
		if int(r.Number) < len(controlNames) {
			return controlNames[r.Number]
		}
	case BankDebug:
		if int(r.Number) < len(debugNames) {
			return debugNames[r.Number]
		}
	case BankX87:
		return "st(" + digit(r.Number) + ")"
	case BankMMX:
		return "mm" + itoa(r.Number)
	case BankVector:
		switch r.Size {
		case 16:
			return "xmm" + itoa(r.Number)
		case 32:
			return "ymm" + itoa(r.Number)
		case 64:
			return "zmm" + itoa(r.Number)
		}
	case BankMask:
		return "k" + itoa(r.Number)
	case BankBound:
		return "bnd" + itoa(r.Number)
	case BankTile:
		return "tmm" + itoa(r.Number)
	case BankTest:
		return "tr" + itoa(r.Number)
	case BankMSR:
		return "msr"
	case BankXCR:
		return "xcr" + itoa(r.Number)
	case BankMXCSR:
		return "mxcsr"
	case BankPKRU:
		return "pkru"
	case BankSSP:
		return "ssp"
	case BankFlags:
		return "flags"
	case BankRIP:
		return "rip"
	case BankUIF:
		return "uif"
	case BankSystem:
		return systemRegNames[r.Number]
	}
	return "?"
}

var systemRegNames = [...]string{"gdtr", "idtr", "ldtr", "tr"}

// apxGPRName renders the APX extended GPR numbers 16-31, which have no
// legacy short name.
func apxGPRName(r RegisterRef) string {
	suffix := ""
	switch r.Size {
	case 1:
		suffix = "b"
	case 2:
		suffix = "w"
	case 4:
		suffix = "d"
	}
	return "r" + itoa(r.Number) + suffix
}

func digit(n byte) string { return itoa(n) }

func itoa(n byte) string {
	if n == 0 {
		return "0"
	}
	buf := [3]byte{}
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}

// Fixed/implicit registers used directly by operand materialization for
// named-implicit-register operand types (§4.11).
var (
	RegAL  = gpr(0, 1)
	RegAX  = gpr(0, 2)
	RegEAX = gpr(0, 4)
	RegRAX = gpr(0, 8)
	RegCL  = gpr(1, 1)
	RegCX  = gpr(1, 2)
	RegECX = gpr(1, 4)
	RegRCX = gpr(1, 8)
	RegDX  = gpr(2, 2)
	RegEDX = gpr(2, 4)
	RegRDX = gpr(2, 8)

	RegCS = RegisterRef{Bank: BankSegment, Number: 1, Size: 2}
	RegSS = RegisterRef{Bank: BankSegment, Number: 2, Size: 2}
	RegDS = RegisterRef{Bank: BankSegment, Number: 3, Size: 2}
	RegES = RegisterRef{Bank: BankSegment, Number: 0, Size: 2}
	RegFS = RegisterRef{Bank: BankSegment, Number: 4, Size: 2}
	RegGS = RegisterRef{Bank: BankSegment, Number: 5, Size: 2}

	RegFlags = RegisterRef{Bank: BankFlags}
	RegRIP   = RegisterRef{Bank: BankRIP, Size: 8}
	RegUIF   = RegisterRef{Bank: BankUIF}
	RegMXCSR = RegisterRef{Bank: BankMXCSR, Size: 4}
	RegPKRU  = RegisterRef{Bank: BankPKRU, Size: 4}
	RegSSP   = RegisterRef{Bank: BankSSP, Size: 8}

	RegGDTR = RegisterRef{Bank: BankSystem, Number: 0}
	RegIDTR = RegisterRef{Bank: BankSystem, Number: 1}
	RegLDTR = RegisterRef{Bank: BankSystem, Number: 2}
	RegTR   = RegisterRef{Bank: BankSystem, Number: 3}
)

// gprOfSize returns the general-purpose register ref for a decoded register
// number and operand size in bytes, applying AH/CH/DH/BH high-8 aliasing
// when the encoding permits it (legacy encoding, number 4-7, size 1, no
// REX/REX2 byte observed for this instruction).
func gprOfSize(number byte, size byte, legacyHigh8 bool) RegisterRef {
	if size == 1 && legacyHigh8 && number >= 4 && number <= 7 {
		return RegisterRef{Bank: BankGPR, Number: number, Size: 1, High8: true}
	}
	return RegisterRef{Bank: BankGPR, Number: number, Size: size}
}

func segmentReg(number byte) RegisterRef {
	return RegisterRef{Bank: BankSegment, Number: number, Size: 2}
}

func vectorReg(number byte, sizeBytes byte) RegisterRef {
	return RegisterRef{Bank: BankVector, Number: number, Size: sizeBytes}
}

func maskReg(number byte) RegisterRef { return RegisterRef{Bank: BankMask, Number: number, Size: 8} }

func tileReg(number byte) RegisterRef { return RegisterRef{Bank: BankTile, Number: number} }

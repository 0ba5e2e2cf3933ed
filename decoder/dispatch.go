package decoder

// This file implements the dispatch-node DAG walker of §4.3: a chain of
// typed branch nodes, keyed on some already-fetched field of the
// in-progress decode, that terminates at a table-resident *InstructionEntry.
// Each node kind names exactly one field it branches on; the walker never
// branches on a field a node kind doesn't name, keeping the DAG's shape an
// honest description of what distinguishes one entry from its siblings.

// NodeKind enumerates the dispatch-node kinds named in spec §4.3.
type NodeKind uint8

const (
	NodeEntry NodeKind = iota // terminal: holds the matched *InstructionEntry
	NodeOpcodeLast            // fetches one more opcode byte (3DNow! trailing byte)
	NodeModRmMod              // branches on ModR/M.mod (0-3)
	NodeModRmReg              // branches on ModR/M.reg (0-7)
	NodeModRmRm               // branches on ModR/M.rm (0-7)
	NodeMandatoryPrefix       // branches on the resolved mandatory-prefix code (0/66/F3/F2)
	NodeMode                  // branches on code mode (16/32/64)
	NodeDsize                 // branches on operand-size override state
	NodeAsize                 // branches on address-size override state
	NodeAuxiliary             // branches on the full ModR/M byte (mod==3 sub-opcode groups)
	NodeVendor                // branches on the configured vendor preference
	NodeFeature               // branches on whether a specific optional feature is enabled
	NodeExM                   // branches on the VEX/XOP/EVEX/REX2 opcode map id
	NodeExPP                  // branches on the VEX/XOP/EVEX pp (mandatory-prefix) field
	NodeExL                   // branches on the vector-length field (0/1/2/3)
	NodeExW                   // branches on the W bit
	NodeExWi                  // W bit is don't-care: single child regardless of W
	NodeExNd                  // branches on the APX ND bit
	NodeExNf                  // branches on the APX NF bit
	NodeExSc                  // branches on the APX standard-condition field
	NodeExLpdf                // branches on the EVEX submode (regular/legacy-promoted/vex-promoted/conditional)
	NodeFilter                // no-op/gating check: pass through or reject with a fixed error
	NodeRegFilter             // rejects if a decoded register number falls outside the named set
	NodeDistinctFilter        // rejects if a named pair/triple of decoded registers collide
)

// FilterID names one of the no-op/gating predicate checks a NodeFilter node
// runs: each either passes through to its single child or rejects with one
// fixed error, never branching the DAG on a decoded value.
type FilterID uint8

const (
	FltNo64 FilterID = iota
	FltNo1632
	FltNoRipRel
	FltNoA16
	FltNo66
	FltNo67
	FltNoRep
	FltNoRex2
	FltNoL0
	FltNoV
	FltNoVp
	FltNoVvp
)

// RegFilterID names one of the register-constraint checks a NodeRegFilter
// node runs against an already-decoded register number.
type RegFilterID uint8

const (
	FltRRLt16 RegFilterID = iota
	FltRVLt16
	FltSRIn012345
	FltSRIn02345
	FltBRLt4
	FltBMLt4
	FltCRIn02348
	FltDRLt8
	FltQRLt8
	FltKRLt8
	FltKVLt8
	FltTRLt8
	FltTMLt8
	FltTVLt8
)

// DistinctFilterID names one of the cross-register inequality checks a
// NodeDistinctFilter node runs.
type DistinctFilterID uint8

const (
	FltVXneVR_VXneVV_VRneVV DistinctFilterID = iota
	FltVXneVR
	FltTRneTM_TRneTV_TVneTM
	FltVRneVV_VRneVM
	FltRVne4_RMne4
	FltRVneRM
)

// dispatchNode is one node in the DAG. Exactly one of Entry (for NodeEntry)
// or Children (for every branching kind) is populated. Param carries the
// extra piece of context a handful of kinds need beyond the node kind
// itself: which Feature bit NodeFeature tests, for instance.
type dispatchNode struct {
	Kind     NodeKind
	Children map[byte]*dispatchNode
	Entry    *InstructionEntry
	Param    uint32
}

func leaf(e *InstructionEntry) *dispatchNode {
	return &dispatchNode{Kind: NodeEntry, Entry: e}
}

func branch(kind NodeKind, children map[byte]*dispatchNode) *dispatchNode {
	return &dispatchNode{Kind: kind, Children: children}
}

// filterNode, regFilterNode, and distinctFilterNode build the three
// gating-node kinds: a single child, taken iff the named predicate holds,
// otherwise the walk fails with the predicate's fixed error.
func filterNode(id FilterID, next *dispatchNode) *dispatchNode {
	return &dispatchNode{Kind: NodeFilter, Param: uint32(id), Children: map[byte]*dispatchNode{0: next}}
}

func regFilterNode(id RegFilterID, next *dispatchNode) *dispatchNode {
	return &dispatchNode{Kind: NodeRegFilter, Param: uint32(id), Children: map[byte]*dispatchNode{0: next}}
}

func distinctFilterNode(id DistinctFilterID, next *dispatchNode) *dispatchNode {
	return &dispatchNode{Kind: NodeDistinctFilter, Param: uint32(id), Children: map[byte]*dispatchNode{0: next}}
}

func featureBranch(feature Feature, ifSet, ifClear *dispatchNode) *dispatchNode {
	return &dispatchNode{
		Kind:     NodeFeature,
		Param:    uint32(feature),
		Children: map[byte]*dispatchNode{1: ifSet, 0: ifClear},
	}
}

// wildcardKey is the map key a branch node may populate to match any value
// not otherwise present, used by nodes whose entries don't exhaustively
// partition the key space (Vendor, Feature's default-disabled path, Auxiliary
// groups with a register-only default form, and so on).
const wildcardKey byte = 0xFF

func (n *dispatchNode) child(key byte) (*dispatchNode, bool) {
	if c, ok := n.Children[key]; ok {
		return c, true
	}
	if c, ok := n.Children[wildcardKey]; ok {
		return c, true
	}
	return nil, false
}

// walkDispatch descends root according to the already-scanned prefix/opcode
// state in c and returns the matched entry or ErrInvalidEncoding. It fetches
// no ModR/M/SIB/displacement itself: those are fetched before the walk, and
// a ModR/M-keyed node reached without a ModR/M byte rejects the encoding.
func walkDispatch(c *DecodeCtx, root *dispatchNode) (*InstructionEntry, error) {
	n := root
	for {
		switch n.Kind {
		case NodeEntry:
			return n.Entry, nil

		case NodeOpcodeLast:
			off := c.cursor
			b, err := c.fetchByte()
			if err != nil {
				return nil, err
			}
			next, ok := n.child(b)
			if !ok {
				return nil, newErr(ErrInvalidEncoding, off)
			}
			n = next

		case NodeModRmMod:
			if !c.hasModRM {
				return nil, newErr(ErrInvalidEncoding, c.cursor)
			}
			next, ok := n.child(c.mod)
			if !ok {
				return nil, newErr(ErrInvalidEncoding, c.modrmOffset)
			}
			n = next

		case NodeModRmReg:
			if !c.hasModRM {
				return nil, newErr(ErrInvalidEncoding, c.cursor)
			}
			next, ok := n.child(c.reg)
			if !ok {
				return nil, newErr(ErrInvalidEncoding, c.modrmOffset)
			}
			n = next

		case NodeModRmRm:
			if !c.hasModRM {
				return nil, newErr(ErrInvalidEncoding, c.cursor)
			}
			next, ok := n.child(c.rm)
			if !ok {
				return nil, newErr(ErrInvalidEncoding, c.modrmOffset)
			}
			n = next

		case NodeAuxiliary:
			if !c.hasModRM {
				return nil, newErr(ErrInvalidEncoding, c.cursor)
			}
			next, ok := n.child(c.modrm)
			if !ok {
				return nil, newErr(ErrInvalidEncoding, c.modrmOffset)
			}
			n = next

		case NodeMandatoryPrefix:
			next, ok := n.child(mandatoryPrefixKey(c))
			if !ok {
				return nil, newErr(ErrInvalidEncoding, c.opcodeOffset)
			}
			n = next

		case NodeMode:
			next, ok := n.child(codeModeKey(c.mode.CodeMode))
			if !ok {
				return nil, newErr(ErrInvalidEncodingInMode, c.opcodeOffset)
			}
			n = next

		case NodeDsize:
			key := byte(0)
			if c.prefixes.OperandSizeOverride {
				key = 1
			}
			next, ok := n.child(key)
			if !ok {
				return nil, newErr(ErrInvalidEncoding, c.opcodeOffset)
			}
			n = next

		case NodeAsize:
			key := byte(0)
			if c.prefixes.AddressSizeOverride {
				key = 1
			}
			next, ok := n.child(key)
			if !ok {
				return nil, newErr(ErrInvalidEncoding, c.opcodeOffset)
			}
			n = next

		case NodeVendor:
			next, ok := n.child(byte(c.mode.Vendor))
			if !ok {
				return nil, newErr(ErrInvalidEncoding, c.opcodeOffset)
			}
			n = next

		case NodeFeature:
			key := byte(0)
			if c.mode.Features.Has(Feature(n.Param)) {
				key = 1
			}
			next, ok := n.child(key)
			if !ok {
				return nil, newErr(ErrInvalidEncoding, c.opcodeOffset)
			}
			n = next

		case NodeExM:
			next, ok := n.child(c.ext.M)
			if !ok {
				return nil, newErr(ErrInvalidEncoding, c.opcodeOffset)
			}
			n = next

		case NodeExPP:
			next, ok := n.child(c.ext.P)
			if !ok {
				return nil, newErr(ErrInvalidEncoding, c.opcodeOffset)
			}
			n = next

		case NodeExL:
			next, ok := n.child(c.ext.L)
			if !ok {
				return nil, newErr(ErrInvalidEncoding, c.opcodeOffset)
			}
			n = next

		case NodeExW:
			next, ok := n.child(boolToBit(c.ext.W))
			if !ok {
				return nil, newErr(ErrInvalidEncoding, c.opcodeOffset)
			}
			n = next

		case NodeExWi:
			next, ok := n.child(0)
			if !ok {
				return nil, newErr(ErrInvalidEncoding, c.opcodeOffset)
			}
			n = next

		case NodeExNd:
			next, ok := n.child(boolToBit(c.ext.ND))
			if !ok {
				return nil, newErr(ErrInvalidEncoding, c.opcodeOffset)
			}
			n = next

		case NodeExNf:
			next, ok := n.child(boolToBit(c.ext.NF))
			if !ok {
				return nil, newErr(ErrInvalidEncoding, c.opcodeOffset)
			}
			n = next

		case NodeExSc:
			next, ok := n.child(c.ext.SC)
			if !ok {
				return nil, newErr(ErrInvalidEncoding, c.opcodeOffset)
			}
			n = next

		case NodeExLpdf:
			next, ok := n.child(evexSubmodeKey(c))
			if !ok {
				return nil, newErr(ErrInvalidEncoding, c.opcodeOffset)
			}
			n = next

		case NodeFilter:
			if ok, kind := checkFilter(c, FilterID(n.Param)); !ok {
				return nil, newErr(kind, c.cursor)
			}
			n = n.Children[0]

		case NodeRegFilter:
			if ok, kind := checkRegFilter(c, RegFilterID(n.Param)); !ok {
				return nil, newErr(kind, c.cursor)
			}
			n = n.Children[0]

		case NodeDistinctFilter:
			if ok, kind := checkDistinctFilter(c, DistinctFilterID(n.Param)); !ok {
				return nil, newErr(kind, c.cursor)
			}
			n = n.Children[0]

		default:
			return nil, newErr(ErrInvalidEncoding, c.opcodeOffset)
		}
	}
}

// mandatoryPrefixKey resolves the dispatch-time mandatory-prefix code: for
// VEX/XOP/EVEX/REX2 this is simply ext.P; for legacy/REX encoding it is
// derived from the scanned 0x66/REP prefixes, since the legacy map has no
// dedicated pp field.
func mandatoryPrefixKey(c *DecodeCtx) byte {
	if c.encoding != EncodingLegacy && c.encoding != EncodingREX2 {
		return c.ext.P
	}
	switch {
	case c.prefixes.Rep == RepNZ:
		return 3
	case c.prefixes.Rep == RepZ:
		return 2
	case c.prefixes.OperandSizeOverride:
		return 1
	default:
		return 0
	}
}

// checkFilter evaluates one of the no-op/gating predicates: ok reports
// whether the check passed; kind is the error to reject with when it did not
// (ignored when ok is true).
func checkFilter(c *DecodeCtx, id FilterID) (ok bool, kind ErrorKind) {
	switch id {
	case FltNo64:
		return c.mode.CodeMode != Mode64, ErrInvalidEncodingInMode
	case FltNo1632:
		return c.mode.CodeMode == Mode64, ErrInvalidEncodingInMode
	case FltNoRipRel:
		return !c.ripRelative, ErrRipRelAddressingNotSupported
	case FltNoA16:
		return preliminaryAddressSize(c) != 2, Err16BitAddressingNotSupported
	case FltNo66:
		return !c.prefixes.OperandSizeOverride, ErrInvalidPrefixSequence
	case FltNo67:
		return !c.prefixes.AddressSizeOverride, ErrInvalidPrefixSequence
	case FltNoRep:
		return c.prefixes.Rep == RepNone, ErrInvalidPrefixSequence
	case FltNoRex2:
		return c.encoding != EncodingREX2, ErrInvalidEncodingInMode
	case FltNoL0:
		return c.ext.L != 0, ErrBadEvexLL
	case FltNoV:
		return c.ext.V == 0, ErrVexVvvvMustBeZero
	case FltNoVp:
		return !c.ext.VPrime, ErrBadEvexVPrime
	case FltNoVvp:
		return c.ext.V == 0 && !c.ext.VPrime, ErrVexVvvvMustBeZero
	default:
		return true, ErrInvalidEncoding
	}
}

// checkRegFilter evaluates one of the register-number-range constraints.
func checkRegFilter(c *DecodeCtx, id RegFilterID) (ok bool, kind ErrorKind) {
	switch id {
	case FltRRLt16:
		return regNumberReg(c) < 16, ErrInvalidRegisterInInstruction
	case FltRVLt16:
		return regNumberRm(c) < 16, ErrInvalidRegisterInInstruction
	case FltSRIn012345:
		return c.reg <= 5, ErrInvalidRegisterInInstruction
	case FltSRIn02345:
		if c.reg == 1 {
			return false, ErrCsLoad
		}
		return c.reg <= 5, ErrInvalidRegisterInInstruction
	case FltBRLt4:
		return regNumberReg(c) < 4, ErrInvalidRegisterInInstruction
	case FltBMLt4:
		return regNumberRm(c) < 4, ErrInvalidRegisterInInstruction
	case FltCRIn02348:
		n := regNumberReg(c)
		return n == 0 || n == 2 || n == 3 || n == 4 || n == 8, ErrInvalidRegisterInInstruction
	case FltDRLt8:
		return regNumberReg(c) < 8, ErrInvalidRegisterInInstruction
	case FltQRLt8:
		return regNumberReg(c) < 8, ErrInvalidRegisterInInstruction
	case FltKRLt8:
		return regNumberReg(c) < 8, ErrInvalidRegisterInInstruction
	case FltKVLt8:
		return regNumberVvvv(c) < 8, ErrInvalidRegisterInInstruction
	case FltTRLt8:
		return regNumberReg(c) < 8, ErrInvalidTileRegs
	case FltTMLt8:
		return regNumberRm(c) < 8, ErrInvalidTileRegs
	case FltTVLt8:
		return regNumberVvvv(c) < 8, ErrInvalidTileRegs
	default:
		return true, ErrInvalidEncoding
	}
}

// checkDistinctFilter evaluates one of the cross-register inequality checks.
func checkDistinctFilter(c *DecodeCtx, id DistinctFilterID) (ok bool, kind ErrorKind) {
	switch id {
	case FltVXneVR_VXneVV_VRneVV:
		idx, dst, vvvv := vsibIndexRegNumber(c), regNumberReg(c), regNumberVvvv(c)
		return idx != dst && idx != vvvv && dst != vvvv, ErrInvalidVsibRegs
	case FltVXneVR:
		return vsibIndexRegNumber(c) != regNumberReg(c), ErrInvalidVsibRegs
	case FltTRneTM_TRneTV_TVneTM:
		tr, tm, tv := regNumberReg(c)&7, regNumberRm(c)&7, regNumberVvvv(c)&7
		return tr != tm && tr != tv && tv != tm, ErrInvalidTileRegs
	case FltVRneVV_VRneVM:
		dst := regNumberReg(c)
		return dst != regNumberVvvv(c) && dst != regNumberRm(c), ErrInvalidDestRegs
	case FltRVne4_RMne4:
		return regNumberVvvv(c) != 4 && regNumberRm(c) != 4, ErrInvalidRegisterInInstruction
	case FltRVneRM:
		return regNumberVvvv(c) != regNumberRm(c), ErrInvalidDestRegs
	default:
		return true, ErrInvalidEncoding
	}
}

// vsibIndexRegNumber decodes the VSIB index vector-register number: the SIB
// index field extended by EVEX.X and EVEX.V', the same pair of bits EVEX
// reuses for the vvvv-slot high bit elsewhere (there is no dedicated fifth
// VSIB-index bit).
func vsibIndexRegNumber(c *DecodeCtx) byte {
	n := c.index
	if c.ext.X {
		n |= 8
	}
	if c.ext.VPrime {
		n |= 16
	}
	return n
}

func codeModeKey(m CodeMode) byte {
	switch m {
	case Mode16:
		return 0
	case Mode32:
		return 1
	default:
		return 2
	}
}

// evexSubmodeKey classifies the APX EVEX submode from the already-scanned
// extension bits: maps 4 and 7 carry the
// APX-promoted forms, distinguished from one another by the standard
// condition field being non-zero (conditional) vs zero (unconditional
// promoted legacy/VEX form); every other map is the regular AVX-512 form.
func evexSubmodeKey(c *DecodeCtx) byte {
	if c.encoding != EncodingEVEX {
		return byte(EvexRegular)
	}
	switch c.ext.M {
	case 4:
		if c.ext.SC != 0 {
			return byte(EvexConditional)
		}
		return byte(EvexLegacyPromoted)
	case 7:
		if c.ext.SC != 0 {
			return byte(EvexConditional)
		}
		return byte(EvexVexPromoted)
	default:
		return byte(EvexRegular)
	}
}

package decoder

// resolveDecorators implements §4.10: it must run after ModR/M, the matched
// entry, and the effective vector length are all known, and before operand
// materialization (which reads c.decorators to fill in per-operand masking/
// zeroing/broadcast state).
func resolveDecorators(c *DecodeCtx, entry *InstructionEntry) error {
	if c.encoding != EncodingEVEX {
		return nil
	}

	switch c.ext.M {
	case 4, 7:
		return resolveAPXDecorators(c, entry)
	}

	if c.ext.K != 0 {
		if !entry.Attrs.has(AttrMaskOK) {
			return newErr(ErrMaskNotSupported, c.opcodeOffset)
		}
		c.decorators.MaskRegister = c.ext.K
	} else if entry.Attrs.has(AttrMaskRequiredAttr) {
		return newErr(ErrMaskRequired, c.opcodeOffset)
	}

	if c.ext.Z {
		if c.ext.K == 0 {
			return newErr(ErrZeroingNoMask, c.opcodeOffset)
		}
		destIsMemory := c.hasModRM && c.mod != 3 && entry.Attrs.has(AttrWritesMemory)
		if destIsMemory {
			return newErr(ErrZeroingOnMemory, c.opcodeOffset)
		}
		c.decorators.Zeroing = true
	}

	if c.ext.BM {
		if c.hasModRM && c.mod != 3 {
			if !entry.Attrs.has(AttrEvexBroadcastOK) {
				return newErr(ErrBroadcastNotSupported, c.opcodeOffset)
			}
			_, size := broadcastShape(entry, c.ext.W)
			c.decorators.BroadcastCount = byte(c.effVecLen / 8 / uint16(size))
			c.decorators.BroadcastSize = size
		} else if entry.Attrs.has(AttrEvexIgnoredER) {
			// IER: bm=1 on a register form is simply ignored.
		} else if entry.Attrs.has(AttrEvexERPermitted) {
			c.decorators.EmbeddedRound = true
			c.decorators.RoundingMode = c.ext.L
		} else if entry.Attrs.has(AttrEvexSAEPermitted) {
			c.decorators.SAE = true
		} else {
			return newErr(ErrErSaeNotSupported, c.opcodeOffset)
		}
	}

	return nil
}

// resolveAPXDecorators implements the APX-flavored half of §4.10: regular
// EVEX fields (z, L'L, bm, k) are forced to zero, and ND, NF, and ZU each
// activate independently, iff the entry accepts that decorator and the
// corresponding raw bit is set. ZU reuses the same raw bit as ND (there is
// no separate wire bit for it), distinguished only by which attribute the
// entry carries.
func resolveAPXDecorators(c *DecodeCtx, entry *InstructionEntry) error {
	c.decorators = Decorators{}
	if entry.Attrs.has(AttrND) && c.ext.ND {
		c.decorators.NewDataDest = true
	}
	if entry.Attrs.has(AttrZU) && c.ext.ND {
		c.decorators.ZeroUpper = true
	}
	if entry.Attrs.has(AttrNF) && c.ext.NF {
		c.decorators.NoFlags = true
	}
	return nil
}

// broadcastShape returns the element size for a broadcasting memory
// operand: 8 bytes when W is set, 4 otherwise. The count it returns is
// always 0; resolveDecorators derives the count from the effective vector
// length.
func broadcastShape(entry *InstructionEntry, w bool) (count, size byte) {
	size = 4
	if w {
		size = 8
	}
	return 0, size
}

// compressedDispFactor implements the tuple-type scaling-factor table of
// §4.10. broadcastSize, when non-zero, means broadcast is active and the
// factor is simply the broadcasted element size per the spec's override
// rule.
func compressedDispFactor(entry *InstructionEntry, vecLen uint16, w bool, broadcastSize byte) byte {
	if broadcastSize != 0 {
		return broadcastSize
	}
	idx := 0
	switch vecLen {
	case 128:
		idx = 0
	case 256:
		idx = 1
	default:
		idx = 2
	}
	switch entry.Tuple {
	case TupleFV:
		return [3]byte{16, 32, 64}[idx]
	case TupleHV:
		return [3]byte{8, 16, 32}[idx]
	case TupleQV:
		return [3]byte{4, 8, 16}[idx]
	case TupleFVM:
		return [3]byte{16, 32, 64}[idx]
	case TupleHVM:
		return [3]byte{8, 16, 32}[idx]
	case TupleQVM:
		return [3]byte{4, 8, 16}[idx]
	case TupleOVM:
		return [3]byte{2, 4, 8}[idx]
	case TupleDUP:
		return [3]byte{8, 32, 64}[idx]
	case TupleM128:
		return 16
	case TupleT1S8:
		return 1
	case TupleT1S16:
		return 2
	case TupleT1S:
		if w {
			return 8
		}
		return 4
	case TupleT1F:
		if w {
			return 8
		}
		return 4
	case TupleT2:
		if w {
			return 16
		}
		return 8
	case TupleT4:
		if w {
			return 32
		}
		return 16
	case TupleT8:
		return 32
	case TupleT1_4X:
		return 16
	}
	return 0
}

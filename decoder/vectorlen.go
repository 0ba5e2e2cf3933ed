package decoder

// resolveVectorLength implements §4.8. Must run after ModR/M is known (the
// bm=1 ∧ mod=3 embedded-rounding/SAE special case needs mod) and after the
// entry is matched (tuple type, L-ignored attribute, entry's ER/SAE
// permissions).
func resolveVectorLength(c *DecodeCtx, entry *InstructionEntry) {
	if c.encoding == EncodingEVEX && c.ext.BM && c.mod == 3 {
		switch {
		case entry.Tuple == TupleT1S8 || entry.Tuple == TupleT1S16 || entry.Tuple == TupleT1S || entry.Tuple == TupleT1F:
			c.effVecLen = 128
		case !c.ext.Z && c.ext.M != 4 && c.ext.M != 7 && !evexUActive(c):
			c.effVecLen = 256
		default:
			c.effVecLen = 512
		}
	} else {
		switch c.ext.L {
		case 0:
			c.effVecLen = 128
		case 1:
			c.effVecLen = 256
		default:
			c.effVecLen = 512
		}
	}
	if entry.Attrs.has(AttrLIgnored) {
		c.effVecLen = 128
	}
}

// evexUActive reports EVEX.U, the AVX10-vs-AVX512 discriminator bit. It is
// not separately tracked in ExtBits (this library does not distinguish
// AVX10 maximum vector length from classic AVX-512), so it is conservatively
// treated as always set, collapsing the embedded-rounding "256" branch of
// §4.8 to the "512" default for every entry in this table. A full AVX10
// implementation would thread EVEX.U through ExtBits and this function.
func evexUActive(c *DecodeCtx) bool { return true }

package decoder

// resolveEffectiveSizes implements §4.7: operand size, address size, and
// word (stack) size, driven by the matched entry's attribute flags and the
// already-scanned prefix/extension state. Must run after dispatch matches
// an entry and before payload fetching, since payload widths depend on the
// resolved operand size.
func resolveEffectiveSizes(c *DecodeCtx, entry *InstructionEntry) {
	w64 := c.ext.W
	f64 := entry.Attrs.has(AttrForced64)
	d64 := entry.Attrs.has(AttrDefault64)
	has66 := effectiveOperandSizeToggle(c, entry)

	switch c.mode.CodeMode {
	case Mode16:
		if has66 {
			c.effOpSize = 32
		} else {
			c.effOpSize = 16
		}
	case Mode32:
		if has66 {
			c.effOpSize = 16
		} else {
			c.effOpSize = 32
		}
	default: // Mode64
		switch {
		case w64 || f64 || (d64 && !has66):
			c.effOpSize = 64
		case has66:
			c.effOpSize = 16
		default:
			c.effOpSize = 32
		}
	}

	c.effAddrSize = preliminaryAddressSize(c)
	if entry.Attrs.has(AttrAddr64) && c.mode.CodeMode == Mode64 {
		c.effAddrSize = 8
	}

	c.wordSize = 2 * (1 << log2OpModeUnit(c.effOpSize))
}

// effectiveOperandSizeToggle resolves has66 from §4.7: the 0x66 prefix
// toggles operand size, except for the MOVBE/CRC32 "mandatory 0x66 is
// still a size prefix" exception the entry marks with AttrKeep66AsSize, and
// except where 0x66 was consumed as a genuine opcode-map mandatory prefix
// (AttrMandatory66) rather than a size toggle.
func effectiveOperandSizeToggle(c *DecodeCtx, entry *InstructionEntry) bool {
	if !c.prefixes.OperandSizeOverride {
		return false
	}
	if entry.Attrs.has(AttrMandatory66) && !entry.Attrs.has(AttrKeep66AsSize) {
		return false
	}
	return true
}

// log2OpModeUnit maps an effective operand size in bits to the exponent
// spec §4.7's "2 x (1 << effective_op_mode)" word-size formula expects: the
// formula's "effective_op_mode" is the power-of-two index relative to a
// 16-bit unit (16=0,32=1,64=2), which makes the formula reproduce the
// natural word size (2,4,8 bytes) for each operand mode.
func log2OpModeUnit(bits byte) byte {
	switch bits {
	case 16:
		return 0
	case 32:
		return 1
	case 64:
		return 2
	}
	return 0
}

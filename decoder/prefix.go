package decoder

// byteClass classifies one of the 256 byte values for the prefix scanner,
// per §4.2's "static classification table mapping each of the 256 byte
// values to one of {none, legacy, REX, extended}".
type byteClass uint8

const (
	classNone byteClass = iota
	classLegacyGroup1
	classLegacyGroup2
	classLegacyGroup3
	classLegacyGroup4
	classREX
	classExtended
)

var byteClassTable = buildByteClassTable()

func buildByteClassTable() [256]byteClass {
	var t [256]byteClass
	t[0xF0] = classLegacyGroup1
	t[0xF2] = classLegacyGroup1
	t[0xF3] = classLegacyGroup1
	t[0x2E] = classLegacyGroup2
	t[0x36] = classLegacyGroup2
	t[0x3E] = classLegacyGroup2
	t[0x26] = classLegacyGroup2
	t[0x64] = classLegacyGroup2
	t[0x65] = classLegacyGroup2
	t[0x66] = classLegacyGroup3
	t[0x67] = classLegacyGroup4
	for b := 0x40; b <= 0x4F; b++ {
		t[b] = classREX
	}
	t[0xC5] = classExtended // VEX2
	t[0xC4] = classExtended // VEX3
	t[0x8F] = classExtended // XOP
	t[0x62] = classExtended // EVEX
	t[0xD5] = classExtended // REX2
	return t
}

// scanPrefixes runs the full prefix scanner of §4.2: it consumes legacy
// prefixes, at most one REX byte, and dispatches to an extended-prefix
// handler if one is encountered. On return, either an extended-prefix
// handler has already consumed the opcode map id and ctx.encoding is set to
// something other than EncodingLegacy, or ctx.encoding is EncodingLegacy
// (possibly with ctx.prefixes.HasREX set) and the opcode fetcher runs next.
func scanPrefixes(c *DecodeCtx) error {
	sawLockRepSegOrSize := false

	for {
		b, ok := c.peekByte()
		if !ok {
			return nil
		}
		class := byteClassTable[b]

		switch class {
		case classLegacyGroup1:
			if _, err := c.fetchByte(); err != nil {
				return err
			}
			switch b {
			case 0xF0:
				c.prefixes.Lock = true
			case 0xF2:
				c.prefixes.Rep = RepNZ
			case 0xF3:
				c.prefixes.Rep = RepZ
			}
			sawLockRepSegOrSize = true

		case classLegacyGroup2:
			if _, err := c.fetchByte(); err != nil {
				return err
			}
			applySegmentOverride(c, b)
			sawLockRepSegOrSize = true

		case classLegacyGroup3:
			if _, err := c.fetchByte(); err != nil {
				return err
			}
			c.prefixes.OperandSizeOverride = true
			sawLockRepSegOrSize = true

		case classLegacyGroup4:
			if _, err := c.fetchByte(); err != nil {
				return err
			}
			c.prefixes.AddressSizeOverride = true

		case classREX:
			if c.mode.CodeMode != Mode64 {
				// 0x40-0x4F are INC/DEC r16/r32 opcodes outside 64-bit
				// mode, not a prefix: stop scanning.
				return nil
			}
			if _, err := c.fetchByte(); err != nil {
				return err
			}
			c.prefixes.HasREX = true
			c.prefixes.REX = b
			c.ext.W = b&0x08 != 0
			c.ext.R = b&0x04 != 0
			c.ext.X = b&0x02 != 0
			c.ext.B = b&0x01 != 0
			// A later legacy prefix overwrites an earlier REX (§4.2: "any
			// legacy prefix appearing after REX invalidates that REX"); a
			// second REX replaces it.
			if next, ok := c.peekByte(); ok {
				switch byteClassTable[next] {
				case classLegacyGroup1, classLegacyGroup2, classLegacyGroup3, classLegacyGroup4:
					c.prefixes.HasREX = false
					c.prefixes.REX = 0
					c.ext.W, c.ext.R, c.ext.X, c.ext.B = false, false, false, false
				}
			}

		case classExtended:
			if sawLockRepSegOrSize || c.prefixes.HasREX {
				// "Extended prefixes must not coexist with LOCK, REP*,
				// 0x66, REX, or REX2 already seen" (§4.2).
				return classifyExtendedPrefixError(c, b)
			}
			return dispatchExtendedPrefix(c, b)

		default:
			return nil
		}
	}
}

// applySegmentOverride implements the group-2 segment-override priority
// rules from §4.2, resolved against Open Question 1 via
// original_source/bddisasm (see SPEC_FULL.md): FS/GS always take effect as
// segments and latch; once latched, a later 2E is recorded only as a
// branch-hint candidate and later CS/DS/ES/SS bytes are otherwise inert,
// never promoted back to a segment override.
func applySegmentOverride(c *DecodeCtx, b byte) {
	switch b {
	case 0x64:
		seg := RegFS
		c.prefixes.SegmentOverride = &seg
		c.prefixes.DoNotTrack = false
		c.prefixes.Hint = HintNone
	case 0x65:
		seg := RegGS
		c.prefixes.SegmentOverride = &seg
		c.prefixes.DoNotTrack = false
		c.prefixes.Hint = HintNone
	case 0x2E, 0x3E:
		if c.mode.CodeMode == Mode64 && fsOrGSActive(c) {
			if b == 0x3E {
				c.prefixes.Hint = HintNone
			} else {
				c.prefixes.Hint = HintNotTaken
			}
			return
		}
		if c.mode.CodeMode == Mode64 {
			// No FS/GS yet: 2E/3E act purely as branch hints in 64-bit
			// mode (CS/DS/ES/SS segments are architecturally ignored),
			// but 3E still latches as the do-not-track candidate.
			if b == 0x3E {
				c.prefixes.DoNotTrack = true
				c.prefixes.Hint = HintTaken
			} else {
				c.prefixes.Hint = HintNotTaken
			}
			return
		}
		seg := segForByte(b)
		c.prefixes.SegmentOverride = &seg
	case 0x36, 0x26:
		if c.mode.CodeMode == Mode64 && fsOrGSActive(c) {
			return // inert: overridden by the latched FS/GS
		}
		if c.mode.CodeMode == Mode64 {
			return // CS/DS/ES/SS are not real segments in 64-bit mode
		}
		seg := segForByte(b)
		c.prefixes.SegmentOverride = &seg
	}
}

func fsOrGSActive(c *DecodeCtx) bool {
	return c.prefixes.SegmentOverride != nil &&
		(*c.prefixes.SegmentOverride == RegFS || *c.prefixes.SegmentOverride == RegGS)
}

func segForByte(b byte) RegisterRef {
	switch b {
	case 0x2E:
		return RegCS
	case 0x36:
		return RegSS
	case 0x3E:
		return RegDS
	case 0x26:
		return RegES
	case 0x64:
		return RegFS
	case 0x65:
		return RegGS
	}
	return RegisterRef{}
}

// classifyExtendedPrefixError picks the specific *WithPrefix error variant
// for an extended-prefix introducer seen after an incompatible prefix.
func classifyExtendedPrefixError(c *DecodeCtx, introducer byte) error {
	switch introducer {
	case 0xC5, 0xC4:
		return newErr(ErrVexWithPrefix, c.cursor)
	case 0x8F:
		return newErr(ErrXopWithPrefix, c.cursor)
	case 0x62:
		return newErr(ErrEvexWithPrefix, c.cursor)
	}
	return newErr(ErrInvalidPrefixSequence, c.cursor)
}

func dispatchExtendedPrefix(c *DecodeCtx, introducer byte) error {
	switch introducer {
	case 0xC5:
		return scanVEX2(c)
	case 0xC4:
		return scanVEX3OrXOP(c, false)
	case 0x8F:
		return scanVEX3OrXOP(c, true)
	case 0x62:
		return scanEVEX(c)
	case 0xD5:
		return scanREX2(c)
	}
	return newErr(ErrInvalidEncoding, c.cursor)
}

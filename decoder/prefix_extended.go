package decoder

// This file implements the extended-prefix handlers of §4.2.1-§4.2.4: VEX2,
// VEX3/XOP, EVEX, and REX2. The caller only peeks the introducer byte
// without fetching it before dispatchExtendedPrefix invokes a handler, so
// each handler fetches the introducer itself first.

// topTwoBitsSet reports the "top-two-bits = 11" disambiguation shared by
// VEX2/VEX3/XOP: in non-64-bit mode, these introducer bytes are only a VEX
// prefix if the following byte's top two bits are both set (mod=3 in what
// would otherwise be ModR/M for the legacy LDS/LES/POP opcode).
func topTwoBitsSet(b byte) bool { return b&0xC0 == 0xC0 }

func scanVEX2(c *DecodeCtx) error {
	introducerOffset := c.cursor
	if _, err := c.fetchByte(); err != nil { // consume 0xC5
		return err
	}
	if c.mode.CodeMode != Mode64 {
		next, ok := c.peekByte()
		if !ok {
			return newErr(ErrBufferTooSmall, c.cursor)
		}
		if !topTwoBitsSet(next) {
			// Not a VEX prefix: 0xC5 is legacy LDS. Rewind and let the
			// opcode fetcher treat it as a normal legacy opcode byte.
			c.cursor = introducerOffset
			c.length = introducerOffset
			return nil
		}
	}
	b1, err := c.fetchByte()
	if err != nil {
		return err
	}
	c.encoding = EncodingVEX
	c.opcodeOffset = introducerOffset
	c.ext.R = b1&0x80 == 0
	c.ext.X = false
	c.ext.B = false
	c.ext.V = (^(b1 >> 3)) & 0x0F
	c.ext.L = boolToBit(b1&0x04 != 0)
	c.ext.P = mandatoryPrefixFromPP(b1 & 0x03)
	c.ext.M = 1 // VEX2 implies the 0F map
	c.ext.W = false
	if c.mode.CodeMode != Mode64 {
		c.ext.R = false
		c.ext.V &= 0x07
	}
	return nil
}

func scanVEX3OrXOP(c *DecodeCtx, isXOP bool) error {
	introducerOffset := c.cursor
	if _, err := c.fetchByte(); err != nil {
		return err
	}
	if c.mode.CodeMode != Mode64 {
		next, ok := c.peekByte()
		if !ok {
			return newErr(ErrBufferTooSmall, c.cursor)
		}
		if !topTwoBitsSet(next) {
			// Not VEX3/XOP: 0xC4 is legacy LES, 0x8F is legacy POP r/m.
			c.cursor = introducerOffset
			c.length = introducerOffset
			return nil
		}
	}
	b1, err := c.fetchByte()
	if err != nil {
		return err
	}
	b2, err := c.fetchByte()
	if err != nil {
		return err
	}
	m := b1 & 0x1F
	if isXOP && m < 8 {
		return newErr(ErrInvalidEncoding, c.cursor)
	}
	if isXOP {
		c.encoding = EncodingXOP
	} else {
		c.encoding = EncodingVEX
	}
	c.opcodeOffset = introducerOffset
	c.ext.R = b1&0x80 == 0
	c.ext.X = b1&0x40 == 0
	c.ext.B = b1&0x20 == 0
	c.ext.M = m
	c.ext.W = b2&0x80 != 0
	c.ext.V = (^(b2 >> 3)) & 0x0F
	c.ext.L = boolToBit(b2&0x04 != 0)
	c.ext.P = mandatoryPrefixFromPP(b2 & 0x03)
	if c.mode.CodeMode != Mode64 {
		if c.ext.R || c.ext.X {
			return newErr(ErrInvalidEncoding, c.cursor)
		}
		c.ext.V &= 0x07
		c.ext.B = false
	}
	return nil
}

func scanEVEX(c *DecodeCtx) error {
	introducerOffset := c.cursor
	if _, err := c.fetchByte(); err != nil { // consume 0x62
		return err
	}
	if c.mode.CodeMode != Mode64 {
		next, ok := c.peekByte()
		if !ok {
			return newErr(ErrBufferTooSmall, c.cursor)
		}
		if !topTwoBitsSet(next) {
			// Not EVEX: 0x62 is legacy BOUND.
			c.cursor = introducerOffset
			c.length = introducerOffset
			return nil
		}
	}
	b1, err := c.fetchByte()
	if err != nil {
		return err
	}
	b2, err := c.fetchByte()
	if err != nil {
		return err
	}
	b3, err := c.fetchByte()
	if err != nil {
		return err
	}

	m := b1 & 0x07
	if m == 0 {
		return newErr(ErrInvalidEvexByte3, c.cursor)
	}
	if !c.mode.Features.Has(FeatureAPX) && (m == 4 || m == 7) {
		return newErr(ErrInvalidEncoding, c.cursor)
	}

	c.encoding = EncodingEVEX
	c.opcodeOffset = introducerOffset
	c.ext.R = b1&0x80 == 0
	c.ext.X = b1&0x40 == 0
	c.ext.B = b1&0x20 == 0
	c.ext.RPrime = b1&0x10 == 0
	b4 := b1&0x08 != 0
	c.ext.M = m

	c.ext.W = b2&0x80 != 0
	c.ext.V = (^(b2 >> 3)) & 0x0F
	c.ext.P = mandatoryPrefixFromPP(b2 & 0x03)

	if m == 4 || m == 7 {
		// APX maps: byte1 bit3 is B4, and byte2's U bit (bit2) must be 1.
		c.ext.B4 = b4
		if b2&0x04 == 0 {
			return newErr(ErrBadEvexU, c.cursor)
		}
	} else {
		if b4 {
			return newErr(ErrInvalidEvexByte3, c.cursor)
		}
	}

	c.ext.Z = b3&0x80 != 0
	c.ext.L = (b3 >> 5) & 0x03
	c.ext.BM = b3&0x10 != 0
	c.ext.VPrime = b3&0x08 == 0
	c.ext.K = b3 & 0x07

	// APX maps overload byte3: the fields above are meaningful only for
	// regular EVEX and get discarded for maps 4/7 once decorator resolution
	// reinterprets the same bits as NF/ND/SC.
	c.ext.NF = b3&0x04 != 0
	c.ext.ND = b3&0x10 != 0
	c.ext.SC = b3 & 0x0F

	if c.mode.CodeMode != Mode64 {
		c.ext.R = false
		c.ext.RPrime = false
		c.ext.X = false
		c.ext.B = false
		c.ext.B4 = false
		if c.ext.VPrime {
			return newErr(ErrBadEvexVPrime, c.cursor)
		}
		c.ext.V &= 0x07
	}
	if c.ext.L > 2 && m != 4 && m != 7 {
		return newErr(ErrBadEvexLL, c.cursor)
	}
	return nil
}

func scanREX2(c *DecodeCtx) error {
	introducerOffset := c.cursor
	if c.mode.CodeMode != Mode64 || !c.mode.Features.Has(FeatureAPX) {
		return newErr(ErrInvalidEncodingInMode, c.cursor)
	}
	if _, err := c.fetchByte(); err != nil { // consume 0xD5
		return err
	}
	b1, err := c.fetchByte()
	if err != nil {
		return err
	}
	c.encoding = EncodingREX2
	c.opcodeOffset = introducerOffset
	c.ext.M = boolToByte(b1&0x80 != 0)
	c.ext.W = b1&0x08 != 0
	c.ext.RPrime = b1&0x40 != 0
	c.ext.X4 = b1&0x20 != 0
	c.ext.B4 = b1&0x10 != 0
	c.ext.R = b1&0x04 != 0
	c.ext.X = b1&0x02 != 0
	c.ext.B = b1&0x01 != 0
	return nil
}

func mandatoryPrefixFromPP(pp byte) byte {
	return pp // 0=none,1=0x66,2=0xF3,3=0xF2: identical numbering to §4.3's MandatoryPrefix node.
}

func boolToBit(b bool) byte {
	if b {
		return 1
	}
	return 0
}

func boolToByte(b bool) byte { return boolToBit(b) }

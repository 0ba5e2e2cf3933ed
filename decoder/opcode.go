package decoder

// fetchOpcode implements §4.4. For legacy/REX encoding it walks the
// 0F/0F 38/0F 3A escape bytes and records the map id; for VEX/XOP/EVEX/REX2
// the map id was already taken from the prefix payload and exactly one
// opcode byte follows. The 3DNow! trailing opcode byte is not handled here:
// per SPEC_FULL.md's supplemented-feature note 3, it is fetched later by
// the dispatch walker's OpcodeLast node, directly from the ModR/M/disp
// fetcher's output.
func fetchOpcode(c *DecodeCtx) error {
	switch c.encoding {
	case EncodingLegacy:
		return fetchLegacyOpcode(c)
	case EncodingREX2:
		return fetchREX2Opcode(c)
	default: // VEX, XOP, EVEX: exactly one opcode byte, map id already set
		off := c.cursor
		b, err := c.fetchByte()
		if err != nil {
			return err
		}
		c.primaryOpcodeOffset = off
		c.primaryOpcode = b
		c.mapID = c.ext.M
		return nil
	}
}

func fetchLegacyOpcode(c *DecodeCtx) error {
	if c.opcodeOffset == 0 {
		c.opcodeOffset = c.cursor
	}
	b, err := c.fetchByte()
	if err != nil {
		return err
	}
	mapID := byte(0)
	if b == 0x0F {
		next, ok := c.peekByte()
		if ok && (next == 0x38 || next == 0x3A) {
			esc, err := c.fetchByte()
			if err != nil {
				return err
			}
			if esc == 0x38 {
				mapID = 2
			} else {
				mapID = 3
			}
		} else {
			mapID = 1
		}
		primOff := c.cursor
		prim, err := c.fetchByte()
		if err != nil {
			return err
		}
		c.mapID = mapID
		c.primaryOpcodeOffset = primOff
		c.primaryOpcode = prim
		return nil
	}
	c.mapID = 0
	c.primaryOpcodeOffset = c.cursor - 1
	c.primaryOpcode = b
	return nil
}

// fetchREX2Opcode consumes the one opcode byte that follows a REX2 prefix
// and validates it against the per-map REX2-compatibility table (§4.2.4).
func fetchREX2Opcode(c *DecodeCtx) error {
	off := c.cursor
	b, err := c.fetchByte()
	if err != nil {
		return err
	}
	c.primaryOpcodeOffset = off
	c.primaryOpcode = b
	c.mapID = c.ext.M
	if !rex2CompatibleOpcode(c.mapID, b) {
		return newErr(ErrInvalidEncoding, off)
	}
	return nil
}

// rex2ExcludedLegacyOpcodes lists map-0 primary opcodes APX excludes from
// REX2 encoding: obsolete/legacy-only forms (BOUND, ARPL/MOVSXD-adjacent
// far forms, string-segment oddities) that APX does not extend. Map 1 (the
// 0F map) has no APX exclusions in this representative table.
var rex2ExcludedLegacyOpcodes = map[byte]bool{
	0x62: true, // BOUND
	0x9A: true, // far CALL
	0xC4: true, // legacy LES (without REX2, 0xC4 is claimed by VEX3 first)
	0xC5: true, // legacy LDS (without REX2, 0xC5 is claimed by VEX2 first)
	0xCE: true, // INTO
	0xD4: true, // AAM
	0xD5: true, // AAD (also the REX2 introducer itself)
	0xD6: true, // SALC
	0xEA: true, // far JMP
	0xF1: true, // ICEBP
}

// rex2CompatibleOpcode implements the per-map REX2-compatibility check of
// §4.2.4: REX2 only extends the legacy map (0) and the 0F map (1), and even
// within those maps a handful of opcodes APX never extended are rejected.
func rex2CompatibleOpcode(mapID, opcode byte) bool {
	if mapID != 0 && mapID != 1 {
		return false
	}
	if mapID == 0 && rex2ExcludedLegacyOpcodes[opcode] {
		return false
	}
	return true
}

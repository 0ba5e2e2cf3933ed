package decoder

// opKey identifies one (encoding family, opcode map, primary opcode) triple
// for the per-opcode ModR/M-presence lookup of §4.5.
type opKey struct {
	encoding EncodingMode
	mapID    byte
	opcode   byte
}

type modrmInfo struct {
	hasModRM  bool
	forcedReg bool // addressing mode forced to register-register: skip SIB/disp
}

var modrmInfoTable = map[opKey]modrmInfo{}

// registerModRMInfo records (or reconciles) the ModR/M-presence metadata for
// one opcode triple. Called from tables.go while building the instruction
// database so the per-opcode table stays in lock-step with the entries that
// exist, instead of being hand-duplicated.
func registerModRMInfo(encoding EncodingMode, mapID, opcode byte, hasModRM, forcedReg bool) {
	key := opKey{encoding, mapID, opcode}
	modrmInfoTable[key] = modrmInfo{hasModRM: hasModRM, forcedReg: forcedReg}
}

func lookupModRMInfo(c *DecodeCtx) modrmInfo {
	key := opKey{c.encoding, c.mapID, c.primaryOpcode}
	if info, ok := modrmInfoTable[key]; ok {
		return info
	}
	return modrmInfo{}
}

// fetchModRM implements §4.5: read ModR/M when the per-opcode table says
// this primary opcode carries one, then SIB and displacement per the
// effective address size, honoring the "forced register-register" shortcut
// that skips SIB/displacement entirely.
func fetchModRM(c *DecodeCtx) error {
	info := lookupModRMInfo(c)
	c.modForcedReg = info.forcedReg
	if !info.hasModRM {
		return nil
	}
	off := c.cursor
	b, err := c.fetchByte()
	if err != nil {
		return err
	}
	c.hasModRM = true
	c.modrmOffset = off
	c.modrm = b
	c.mod = (b >> 6) & 0x03
	c.reg = (b >> 3) & 0x07
	c.rm = b & 0x07

	if c.mod == 3 || info.forcedReg {
		return nil
	}

	addrSize := preliminaryAddressSize(c)
	if addrSize == 2 {
		return fetch16BitMemory(c)
	}
	return fetch32Or64BitMemory(c, addrSize)
}

// preliminaryAddressSize resolves the effective address size early enough
// to drive ModR/M/SIB/displacement decoding, ahead of the full post-decode
// resolution pass (§4.7 only finalizes operand size; address size here
// follows the same mode x 0x67 rule and never depends on the matched
// entry).
func preliminaryAddressSize(c *DecodeCtx) byte {
	switch c.mode.CodeMode {
	case Mode16:
		if c.prefixes.AddressSizeOverride {
			return 4
		}
		return 2
	case Mode32:
		if c.prefixes.AddressSizeOverride {
			return 2
		}
		return 4
	default: // Mode64
		if c.prefixes.AddressSizeOverride {
			return 4
		}
		return 8
	}
}

// fetch16BitMemory implements the 16-bit addressing disp rules of §4.5.
func fetch16BitMemory(c *DecodeCtx) error {
	switch {
	case c.mod == 1:
		return fetchDisp(c, 1)
	case c.mod == 2 || (c.mod == 0 && c.rm == 6):
		return fetchDisp(c, 2)
	}
	return nil
}

// fetch32Or64BitMemory implements the 32/64-bit addressing SIB/disp rules
// of §4.5, including RIP-relative detection.
func fetch32Or64BitMemory(c *DecodeCtx, addrSize byte) error {
	effectiveBase := c.rm
	if c.rm == 4 {
		off := c.cursor
		b, err := c.fetchByte()
		if err != nil {
			return err
		}
		c.hasSIB = true
		c.sibOffset = off
		c.sib = b
		c.scale = (b >> 6) & 0x03
		c.index = (b >> 3) & 0x07
		c.base = b & 0x07
		effectiveBase = c.base
	}

	switch {
	case c.mod == 1:
		return fetchDisp(c, 1)
	case c.mod == 2:
		return fetchDisp(c, 4)
	case c.mod == 0 && effectiveBase == 5:
		if c.rm == 5 && !c.hasSIB && addrSize == 8 && c.mode.CodeMode == Mode64 {
			c.ripRelative = true
		}
		return fetchDisp(c, 4)
	}
	return nil
}

func fetchDisp(c *DecodeCtx, n byte) error {
	off := c.cursor
	b, err := c.fetch(int(n))
	if err != nil {
		return err
	}
	var v uint64
	for i := int(n) - 1; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	c.hasDisp = true
	c.dispOffset = off
	c.dispRaw = v
	c.dispLen = n
	return nil
}

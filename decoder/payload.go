package decoder

// fetchPayload implements §4.6. Must run after effective-size resolution,
// since `v`/`z`/`p` payload widths depend on the effective operand mode.
func fetchPayload(c *DecodeCtx, entry *InstructionEntry) error {
	switch entry.Payload {
	case PayloadNone:
		return nil
	case PayloadImmB:
		return fetchImmediate(c, 1, false)
	case PayloadImmW:
		return fetchImmediate(c, 2, false)
	case PayloadImmD:
		return fetchImmediate(c, 4, false)
	case PayloadImmV:
		return fetchImmediate(c, operandSizeBytes(c.effOpSize), false)
	case PayloadImmZ:
		return fetchImmediate(c, zSizeBytes(c.effOpSize), true)
	case PayloadImmPairWB:
		if err := fetchImmediate(c, 2, false); err != nil {
			return err
		}
		return fetchImmediate(c, 1, false)
	case PayloadImmPairBB:
		if err := fetchImmediate(c, 1, false); err != nil {
			return err
		}
		return fetchImmediate(c, 1, false)
	case PayloadRelB:
		return fetchRelative(c, 1)
	case PayloadRelZ:
		return fetchRelative(c, zSizeBytes(c.effOpSize))
	case PayloadFarP:
		return fetchFarPointer(c)
	case PayloadNearQ:
		return fetchImmediate(c, 8, false)
	case PayloadMoffsetA:
		return fetchMoffset(c)
	case PayloadIs4B:
		return fetchIs4(c)
	}
	return nil
}

func operandSizeBytes(bits byte) int { return int(bits) / 8 }

// zSizeBytes implements "z widens to the smaller of operand size and 32"
// (§4.6/§4.7): 16-bit operand size yields a 2-byte immediate, 32 and 64-bit
// operand sizes both yield a 4-byte immediate.
func zSizeBytes(effOpSize byte) int {
	if effOpSize == 16 {
		return 2
	}
	return 4
}

func fetchImmediate(c *DecodeCtx, n int, signExtendToOpSize bool) error {
	off := c.cursor
	b, err := c.fetch(n)
	if err != nil {
		return err
	}
	var v uint64
	for i := n - 1; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	c.immediates = append(c.immediates, immField{offset: off, value: v, rawLen: byte(n), signExtended: signExtendToOpSize})
	return nil
}

func fetchRelative(c *DecodeCtx, n int) error {
	off := c.cursor
	b, err := c.fetch(n)
	if err != nil {
		return err
	}
	var u uint64
	for i := n - 1; i >= 0; i-- {
		u = u<<8 | uint64(b[i])
	}
	shift := uint(64 - 8*n)
	v := int64(u<<shift) >> shift // sign-extend from n bytes
	c.relOffset = &relField{offset: off, value: v, rawLen: byte(n)}
	return nil
}

func fetchFarPointer(c *DecodeCtx) error {
	off := c.cursor
	offLen := 4
	if c.effOpSize == 16 {
		offLen = 2
	}
	offBytes, err := c.fetch(offLen)
	if err != nil {
		return err
	}
	var offVal uint64
	for i := offLen - 1; i >= 0; i-- {
		offVal = offVal<<8 | uint64(offBytes[i])
	}
	selBytes, err := c.fetch(2)
	if err != nil {
		return err
	}
	sel := uint16(selBytes[0]) | uint16(selBytes[1])<<8
	c.farPtr = &farField{offset: off, selector: sel, off: offVal, offLen: byte(offLen)}
	return nil
}

func fetchMoffset(c *DecodeCtx) error {
	off := c.cursor
	n := int(c.effAddrSize)
	b, err := c.fetch(n)
	if err != nil {
		return err
	}
	var v uint64
	for i := n - 1; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	c.moffsetField = &moffField{offset: off, addr: v, addrLen: byte(n)}
	return nil
}

func fetchIs4(c *DecodeCtx) error {
	off := c.cursor
	b, err := c.fetchByte()
	if err != nil {
		return err
	}
	c.is4Offset = off
	c.is4Present = true
	c.is4Value = b
	return nil
}

package decoder

// activateLegacyPrefixes implements §4.9. It only applies anything for
// legacy (and REX2, which shares the legacy prefix byte space) encoding;
// VEX/XOP/EVEX prefixes already fold LOCK/REP/0x66 into mandatory-prefix
// selection during dispatch and carry no further activation step here.
func activateLegacyPrefixes(c *DecodeCtx, entry *InstructionEntry) error {
	if c.encoding != EncodingLegacy && c.encoding != EncodingREX2 {
		return nil
	}

	if c.prefixes.Lock {
		allowed := entry.Attrs.has(AttrLockable) && c.hasModRM && c.mod != 3
		amdCR8 := entry.Attrs.has(AttrLockMovCR8) && c.mode.Vendor == VendorAMD && c.mode.CodeMode == Mode32
		if !allowed && !amdCR8 {
			return newErr(ErrBadLockPrefix, c.opcodeOffset)
		}
	}

	switch c.prefixes.Rep {
	case RepZ:
		if !entry.Attrs.has(AttrRepClass) && !entry.Attrs.has(AttrRepCondClass) &&
			!entry.Attrs.has(AttrHLENoLock) {
			// F3 on a non-REP-classified entry outside HLE is simply inert
			// (commonly a mandatory-prefix candidate already consumed by
			// dispatch); nothing further to validate here.
			break
		}
		if entry.Attrs.has(AttrHLENoLock) && !c.prefixes.Lock && (!c.hasModRM || c.mod == 3) {
			return newErr(ErrBadLockPrefix, c.opcodeOffset)
		}
	case RepNZ:
		if entry.Attrs.has(AttrHLENoLock) && !c.prefixes.Lock && (!c.hasModRM || c.mod == 3) {
			return newErr(ErrBadLockPrefix, c.opcodeOffset)
		}
	}

	if (c.prefixes.Hint == HintTaken || c.prefixes.Hint == HintNotTaken) && !entry.Attrs.has(AttrBranchHint) {
		c.prefixes.Hint = HintNone
	}

	c.cetTracked = entry.Attrs.has(AttrCETTracked) && !c.prefixes.DoNotTrack

	return nil
}

package decoder

import "github.com/keurnel/x86decode/internal/decodetrace"

// DecodeTraced runs the same pipeline as Decode but narrates each stage into
// a *decodetrace.Trace, for tooling that wants to show why a buffer decoded
// (or failed to decode) the way it did. The trace is returned even on
// failure so a caller can inspect how far the pipeline got.
func DecodeTraced(buf []byte, mode ModeConfig) (*Instruction, *decodetrace.Trace, error) {
	tr := decodetrace.New()

	if err := mode.Validate(); err != nil {
		tr.Error(0, "mode configuration rejected")
		return nil, tr, err
	}
	c := newDecodeCtx(buf, mode)

	tr.SetStage("prefix")
	if err := scanPrefixes(c); err != nil {
		tr.Error(c.cursor, "prefix scan failed")
		return nil, tr, err
	}
	tr.Info(c.cursor, "prefixes scanned")

	tr.SetStage("opcode")
	if err := fetchOpcode(c); err != nil {
		tr.Error(c.cursor, "opcode fetch failed")
		return nil, tr, err
	}
	tr.Info(c.cursor, "opcode fetched").WithDetail(byteHex(c.primaryOpcode))

	tr.SetStage("modrm")
	if err := fetchModRM(c); err != nil {
		tr.Error(c.cursor, "ModR/M/SIB/displacement fetch failed")
		return nil, tr, err
	}
	if c.hasModRM {
		tr.Info(c.cursor, "ModR/M fetched").WithDetail(byteHex(c.modrm))
	}

	tr.SetStage("dispatch")
	root, ok := dispatchRoot(c)
	if !ok {
		err := newErr(ErrInvalidEncoding, c.primaryOpcodeOffset)
		tr.Error(c.primaryOpcodeOffset, "no root dispatch entry for this opcode")
		return nil, tr, err
	}
	entry, err := walkDispatch(c, root)
	if err != nil {
		tr.Error(c.cursor, "dispatch walk failed")
		return nil, tr, err
	}
	if !entry.validInMode(c.mode.CodeMode) {
		err := newErr(ErrInvalidEncodingInMode, c.primaryOpcodeOffset)
		tr.Error(c.primaryOpcodeOffset, "matched entry invalid in current mode")
		return nil, tr, err
	}
	tr.Info(c.cursor, "matched "+entry.Mnemonic)

	tr.SetStage("sizes")
	resolveEffectiveSizes(c, entry)
	tr.Step(c.cursor, "effective sizes resolved")

	tr.SetStage("payload")
	if err := fetchPayload(c, entry); err != nil {
		tr.Error(c.cursor, "payload fetch failed")
		return nil, tr, err
	}
	tr.Step(c.cursor, "payload fetched")

	tr.SetStage("postdecode")
	resolveVectorLength(c, entry)
	if err := activateLegacyPrefixes(c, entry); err != nil {
		tr.Error(c.cursor, "prefix activation failed")
		return nil, tr, err
	}
	if err := resolveDecorators(c, entry); err != nil {
		tr.Error(c.cursor, "decorator resolution failed")
		return nil, tr, err
	}
	tr.Step(c.cursor, "vector length, decorators, and prefix activation resolved")

	tr.SetStage("operands")
	operands, err := materializeOperands(c, entry)
	if err != nil {
		tr.Error(c.cursor, "operand materialization failed")
		return nil, tr, err
	}
	tr.Info(c.cursor, "operands materialized")

	return c.finish(entry, operands), tr, nil
}

var hexDigits = "0123456789abcdef"

func byteHex(b byte) string {
	return "0x" + string([]byte{hexDigits[b>>4], hexDigits[b&0xF]})
}

package cmd

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/keurnel/x86decode/decoder"
	"github.com/spf13/cobra"
)

var (
	dumpMode   string
	dumpVendor string
	dumpTrace  bool
)

var dumpCmd = &cobra.Command{
	Use:   "dump <hex-bytes>",
	Short: "Decode a hex byte string into one instruction",
	Long:  `dump decodes a hex byte string (e.g. "48 89 d8" or "4889d8") into one instruction and prints its fields.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runDump(cmd, args[0]); err != nil {
			cmd.PrintErrln("Error:", err)
		}
	},
}

func init() {
	dumpCmd.Flags().StringVar(&dumpMode, "mode", "64", "code mode: 16, 32, or 64")
	dumpCmd.Flags().StringVar(&dumpVendor, "vendor", "any", "preferred vendor for ambiguous encodings: any, intel, amd, cyrix, geode")
	dumpCmd.Flags().BoolVar(&dumpTrace, "trace", false, "narrate each pipeline stage")
}

func runDump(cmd *cobra.Command, hexBytes string) error {
	buf, err := parseHexBytes(hexBytes)
	if err != nil {
		return err
	}

	mode, err := resolveModeConfig(dumpMode, dumpVendor)
	if err != nil {
		return err
	}

	if dumpTrace {
		ins, tr, err := decoder.DecodeTraced(buf, mode)
		for _, e := range tr.Entries() {
			cmd.Println(e.String())
		}
		if err != nil {
			return err
		}
		printInstruction(cmd, ins)
		return nil
	}

	ins, err := decoder.Decode(buf, mode)
	if err != nil {
		return err
	}
	printInstruction(cmd, ins)
	return nil
}

// parseHexBytes accepts either "48 89 d8" or "4889d8" and returns the raw
// bytes.
func parseHexBytes(s string) ([]byte, error) {
	clean := strings.ReplaceAll(s, " ", "")
	clean = strings.ReplaceAll(clean, "0x", "")
	buf, err := hex.DecodeString(clean)
	if err != nil {
		return nil, fmt.Errorf("invalid hex byte string %q: %w", s, err)
	}
	if len(buf) == 0 {
		return nil, fmt.Errorf("no bytes given")
	}
	return buf, nil
}

func resolveModeConfig(mode, vendor string) (decoder.ModeConfig, error) {
	var cfg decoder.ModeConfig
	switch mode {
	case "16":
		cfg = decoder.Mode16Config()
	case "32":
		cfg = decoder.Mode32Config()
	case "64":
		cfg = decoder.Mode64Config()
	default:
		return cfg, fmt.Errorf("invalid --mode %q: want 16, 32, or 64", mode)
	}

	switch vendor {
	case "any", "":
		cfg.Vendor = decoder.VendorAny
	case "intel":
		cfg.Vendor = decoder.VendorIntel
	case "amd":
		cfg.Vendor = decoder.VendorAMD
	case "cyrix":
		cfg.Vendor = decoder.VendorCyrix
	case "geode":
		cfg.Vendor = decoder.VendorGeode
	default:
		return cfg, fmt.Errorf("invalid --vendor %q", vendor)
	}
	return cfg, nil
}

func printInstruction(cmd *cobra.Command, ins *decoder.Instruction) {
	cmd.Printf("mnemonic:  %s\n", ins.Entry.Mnemonic)
	cmd.Printf("length:    %d\n", ins.Length)
	cmd.Printf("bytes:     % x\n", ins.Bytes[:ins.Length])
	cmd.Printf("encoding:  %s\n", encodingName(ins.Encoding))
	cmd.Printf("op size:   %d\n", ins.EffectiveOperandSize)
	cmd.Printf("addr size: %d\n", ins.EffectiveAddressSize)
	if ins.EffectiveVectorLen > 0 {
		cmd.Printf("vec len:   %d\n", ins.EffectiveVectorLen)
	}
	cmd.Printf("operands:  %d\n", len(ins.Operands))
	for i, o := range ins.Operands {
		cmd.Printf("  [%d] %s\n", i, describeOperand(o))
	}
}

func encodingName(e decoder.EncodingMode) string {
	switch e {
	case decoder.EncodingLegacy:
		return "legacy"
	case decoder.EncodingVEX:
		return "vex"
	case decoder.EncodingEVEX:
		return "evex"
	case decoder.EncodingXOP:
		return "xop"
	case decoder.EncodingREX2:
		return "rex2"
	}
	return "unknown(" + strconv.Itoa(int(e)) + ")"
}

func describeOperand(o decoder.Operand) string {
	switch o.Kind {
	case decoder.OperandRegister:
		return decoder.RegisterName(o.Register)
	case decoder.OperandMemory:
		return describeMemory(o.Memory)
	case decoder.OperandImmediate:
		return fmt.Sprintf("imm 0x%x", o.Immediate.Value)
	case decoder.OperandRelative:
		return fmt.Sprintf("rel %+d", o.Relative.Offset)
	case decoder.OperandFarPointer:
		return fmt.Sprintf("far %04x:%08x", o.FarPointer.Selector, o.FarPointer.Offset)
	case decoder.OperandMoffset:
		return fmt.Sprintf("moffs %08x", o.Moffset.Address)
	case decoder.OperandImplicitConst:
		return fmt.Sprintf("imm %d", o.ImplicitInt)
	case decoder.OperandRegisterBank:
		return o.RegisterBankTag
	case decoder.OperandDefaultFlagsValue:
		return fmt.Sprintf("dfv cf=%v zf=%v sf=%v of=%v",
			o.DefaultFlags.CF, o.DefaultFlags.ZF, o.DefaultFlags.SF, o.DefaultFlags.OF)
	}
	return "?"
}

func describeMemory(m decoder.Memory) string {
	var sb strings.Builder
	sb.WriteString("[")
	if m.Segment != nil {
		sb.WriteString(decoder.RegisterName(*m.Segment))
		sb.WriteString(":")
	}
	if m.Flags&decoder.MemRIPRelative != 0 {
		sb.WriteString("rip")
	} else if m.Base != nil {
		sb.WriteString(decoder.RegisterName(*m.Base))
	}
	if m.Index != nil {
		sb.WriteString("+")
		sb.WriteString(decoder.RegisterName(*m.Index))
		if m.Scale > 1 {
			sb.WriteString("*")
			sb.WriteString(strconv.Itoa(int(m.Scale)))
		}
	}
	if m.HasDisp {
		sb.WriteString(fmt.Sprintf("%+d", m.Disp))
	}
	sb.WriteString("]")
	return sb.String()
}

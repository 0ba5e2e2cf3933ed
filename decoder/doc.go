// Package decoder implements a pure, side-effect-free x86/x86-64 instruction
// decoder: given a byte buffer and a mode configuration it produces a fully
// resolved Instruction record or a typed DecodeError.
//
// The pipeline runs in a fixed order on a short-lived *DecodeCtx: prefix
// scanner (prefix.go, prefix_extended.go) -> opcode fetcher (opcode.go) ->
// ModR/M/SIB/displacement fetcher (modrm.go) -> dispatch walker
// (dispatch.go, tables.go) -> effective-size resolution (sizes.go) ->
// payload fetcher (payload.go) -> vector-length/decorator/prefix-activation
// resolution (vectorlen.go, decorators.go, prefixactivation.go) -> operand
// materialization (operand_materialize.go). Decode (decode.go) runs every
// stage; DecodeCompact (decode.go) stops short of operand
// materialization and retains the context for on-demand MaterializeOperand
// calls.
//
// The instruction database and dispatch tables are immutable package-level
// data built once at init time; nothing in this package holds process-wide
// mutable state, and a *DecodeCtx is never shared across concurrent calls.
package decoder

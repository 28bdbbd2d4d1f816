// Package section implements the binary payloads stored in a FullData row.
//
// A section covers a 64×64 grid of columns. Its four payloads are:
//
//	Data                        per-column stacks of DataPoint words
//	ColumnGenerationStep        one format.WorldGenStep byte per column
//	ColumnWorldCompressionMode  one format.WorldCompressionMode byte per column
//	Mapping                     the table resolving DataPoint ids to Entry values
//
// # Data Layout
//
// All integers are big-endian. The Data payload is 4096 columns in row-major
// order (index z*64+x), each written as:
//
//	[Count: uint16] [DataPoint: uint64] × Count
//
// A DataPoint packs, counted from the least significant bit:
//
//	bits  0-31  id           index into the Mapping
//	bits 32-43  height
//	bits 44-55  min_y
//	bits 56-59  sky light
//	bits 60-63  block light
//
// The Mapping payload is a string table:
//
//	[Count: uint32] ([Len: uint16] [modified UTF-8 bytes]) × Count
//
// where each string has the form
//
//	<biome>_DH-BSW_<block>[_STATE_{key:value}{key:value}...]
//
// Every decoder must consume its payload exactly; short payloads and trailing
// bytes are errs.ErrCorruptStream.
package section

package fulldata

import (
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/arloliu/lodsnap/errs"
	"github.com/arloliu/lodsnap/format"
	"github.com/arloliu/lodsnap/intern"
	"github.com/arloliu/lodsnap/lazy"
	"github.com/arloliu/lodsnap/pos"
	"github.com/arloliu/lodsnap/section"
)

// Names of the compressed payloads of a Section, used in error context and by
// schedulers.
const (
	FieldData             = "data"
	FieldWorldGenSteps    = "world_gen_steps"
	FieldWorldCompression = "world_compression"
	FieldMapping          = "mapping"
)

// CurrentFormatVersion is the data format version written by NewSection.
const CurrentFormatVersion uint8 = 1

type (
	// DataColumns is the decoded data payload.
	DataColumns = section.Columns[section.Column]
	// WorldGenSteps is the decoded world generation step payload.
	WorldGenSteps = section.Columns[format.WorldGenStep]
	// WorldCompression is the decoded world compression mode payload.
	WorldCompression = section.Columns[format.WorldCompressionMode]
)

// Section is one row of the FullData table.
//
// The four payloads stay compressed until they are accessed. A Section is not
// safe for concurrent use, except that the jobs returned by Pending touch
// disjoint payloads and may run in parallel.
type Section struct {
	Pos      pos.SectionPos
	MinY     int32
	Checksum int32

	FormatVersion   uint8
	Compression     format.CompressionType
	ApplyToParent   *bool
	ApplyToChildren *bool

	// LastModified and Created are unix timestamps in milliseconds.
	LastModified int64
	Created      int64

	data             lazy.Value[DataColumns]
	worldGenSteps    lazy.Value[WorldGenSteps]
	worldCompression lazy.Value[WorldCompression]
	mapping          lazy.Value[section.Mapping]

	pool *intern.Pool
}

// NewSection builds a decoded section ready to be recompressed and inserted.
//
// Timestamps are set to now; callers may overwrite them before persisting.
func NewSection(p pos.SectionPos, compression format.CompressionType, data DataColumns,
	steps WorldGenSteps, modes WorldCompression, mapping section.Mapping,
) *Section {
	now := time.Now().UnixMilli()

	return &Section{
		Pos:              p,
		FormatVersion:    CurrentFormatVersion,
		Compression:      compression,
		LastModified:     now,
		Created:          now,
		data:             lazy.NewDecoded(compression, data),
		worldGenSteps:    lazy.NewDecoded(compression, steps),
		worldCompression: lazy.NewDecoded(compression, modes),
		mapping:          lazy.NewDecoded(compression, mapping),
	}
}

func (s *Section) internPool() *intern.Pool {
	if s.pool == nil {
		return intern.Default()
	}

	return s.pool
}

func (s *Section) decodeData() error {
	_, err := s.data.Decompress(section.DecodeDataColumns)
	return err
}

func (s *Section) decodeWorldGenSteps() error {
	_, err := s.worldGenSteps.Decompress(section.DecodeWorldGenSteps)
	return err
}

func (s *Section) decodeWorldCompression() error {
	_, err := s.worldCompression.Decompress(section.DecodeWorldCompression)
	return err
}

func (s *Section) decodeMapping() error {
	p := s.internPool()
	_, err := s.mapping.Decompress(func(data []byte) (section.Mapping, error) {
		return section.DecodeMapping(data, p)
	})

	return err
}

func (s *Section) fields() []lazy.Field {
	return []lazy.Field{
		{Name: FieldData, Decompress: s.decodeData},
		{Name: FieldWorldGenSteps, Decompress: s.decodeWorldGenSteps},
		{Name: FieldWorldCompression, Decompress: s.decodeWorldCompression},
		{Name: FieldMapping, Decompress: s.decodeMapping},
	}
}

func (s *Section) decompressed(name string) bool {
	switch name {
	case FieldData:
		return s.data.IsDecompressed()
	case FieldWorldGenSteps:
		return s.worldGenSteps.IsDecompressed()
	case FieldWorldCompression:
		return s.worldCompression.IsDecompressed()
	default:
		return s.mapping.IsDecompressed()
	}
}

// Decompress decodes every payload that is still compressed.
//
// All payloads are attempted; failures are joined, each prefixed with the
// payload name. Payloads that decoded successfully stay decoded.
func (s *Section) Decompress() error {
	var errList []error
	for _, f := range s.Pending() {
		if err := f.Decompress(); err != nil {
			errList = append(errList, fmt.Errorf("decompressing %s: %w", f.Name, err))
		}
	}

	return errors.Join(errList...)
}

// Pending returns one decode job per payload that is still compressed only.
func (s *Section) Pending() []lazy.Field {
	fields := s.fields()
	pending := fields[:0]
	for _, f := range fields {
		if !s.decompressed(f.Name) {
			pending = append(pending, f)
		}
	}

	return pending
}

// IsCompressed reports whether any payload has compressed bytes available.
func (s *Section) IsCompressed() bool {
	return s.data.IsCompressed() ||
		s.worldGenSteps.IsCompressed() ||
		s.worldCompression.IsCompressed() ||
		s.mapping.IsCompressed()
}

// IsDecompressed reports whether every payload is decoded.
func (s *Section) IsDecompressed() bool {
	return s.data.IsDecompressed() &&
		s.worldGenSteps.IsDecompressed() &&
		s.worldCompression.IsDecompressed() &&
		s.mapping.IsDecompressed()
}

// DropCaches releases the compressed bytes of every decoded payload.
func (s *Section) DropCaches() {
	s.data.DropCache()
	s.worldGenSteps.DropCache()
	s.worldCompression.DropCache()
	s.mapping.DropCache()
}

// Recompress re-encodes every payload that only exists decoded, using the
// section's compression.
func (s *Section) Recompress() error {
	if err := s.data.Recompress(section.EncodeDataColumns); err != nil {
		return fmt.Errorf("recompressing %s: %w", FieldData, err)
	}
	if err := s.worldGenSteps.Recompress(section.EncodeWorldGenSteps); err != nil {
		return fmt.Errorf("recompressing %s: %w", FieldWorldGenSteps, err)
	}
	if err := s.worldCompression.Recompress(section.EncodeWorldCompression); err != nil {
		return fmt.Errorf("recompressing %s: %w", FieldWorldCompression, err)
	}
	if err := s.mapping.Recompress(section.EncodeMapping); err != nil {
		return fmt.Errorf("recompressing %s: %w", FieldMapping, err)
	}

	return nil
}

// Payloads holds the compressed bytes of a section, as stored in the table.
type Payloads struct {
	Data             []byte
	WorldGenSteps    []byte
	WorldCompression []byte
	Mapping          []byte
}

// Payloads returns the compressed bytes of all four payloads.
//
// It fails with errs.ErrNeedsRecompression if any payload was modified or
// dropped its cache since it was last compressed.
func (s *Section) Payloads() (Payloads, error) {
	var p Payloads
	var err error

	if p.Data, err = s.data.Bytes(); err != nil {
		return Payloads{}, fmt.Errorf("%s: %w", FieldData, err)
	}
	if p.WorldGenSteps, err = s.worldGenSteps.Bytes(); err != nil {
		return Payloads{}, fmt.Errorf("%s: %w", FieldWorldGenSteps, err)
	}
	if p.WorldCompression, err = s.worldCompression.Bytes(); err != nil {
		return Payloads{}, fmt.Errorf("%s: %w", FieldWorldCompression, err)
	}
	if p.Mapping, err = s.mapping.Bytes(); err != nil {
		return Payloads{}, fmt.Errorf("%s: %w", FieldMapping, err)
	}

	return p, nil
}

// Owned returns a copy of s whose compressed bytes are detached from any
// driver buffer. Decoded payloads are shared.
func (s *Section) Owned() *Section {
	out := *s
	out.data = s.data.Owned()
	out.worldGenSteps = s.worldGenSteps.Owned()
	out.worldCompression = s.worldCompression.Owned()
	out.mapping = s.mapping.Owned()

	if s.ApplyToParent != nil {
		v := *s.ApplyToParent
		out.ApplyToParent = &v
	}
	if s.ApplyToChildren != nil {
		v := *s.ApplyToChildren
		out.ApplyToChildren = &v
	}

	return &out
}

// Columns returns the data point columns, decoding them on first use.
func (s *Section) Columns() (DataColumns, error) {
	v, err := s.data.Decompress(section.DecodeDataColumns)
	if err != nil {
		return DataColumns{}, fmt.Errorf("decompressing %s: %w", FieldData, err)
	}

	return v, nil
}

// WorldGenSteps returns the per-column world generation steps, decoding them on
// first use.
func (s *Section) WorldGenSteps() (WorldGenSteps, error) {
	v, err := s.worldGenSteps.Decompress(section.DecodeWorldGenSteps)
	if err != nil {
		return WorldGenSteps{}, fmt.Errorf("decompressing %s: %w", FieldWorldGenSteps, err)
	}

	return v, nil
}

// WorldCompression returns the per-column world compression modes, decoding
// them on first use.
func (s *Section) WorldCompression() (WorldCompression, error) {
	v, err := s.worldCompression.Decompress(section.DecodeWorldCompression)
	if err != nil {
		return WorldCompression{}, fmt.Errorf("decompressing %s: %w", FieldWorldCompression, err)
	}

	return v, nil
}

// Mapping returns the id mapping, decoding it on first use.
func (s *Section) Mapping() (section.Mapping, error) {
	if err := s.decodeMapping(); err != nil {
		return section.Mapping{}, fmt.Errorf("decompressing %s: %w", FieldMapping, err)
	}

	v, _ := s.mapping.Get()

	return v, nil
}

// SetColumns replaces the data point columns.
func (s *Section) SetColumns(cols DataColumns) {
	s.data.Set(cols)
}

// SetWorldGenSteps replaces the world generation steps.
func (s *Section) SetWorldGenSteps(steps WorldGenSteps) {
	s.worldGenSteps.Set(steps)
}

// SetWorldCompression replaces the world compression modes.
func (s *Section) SetWorldCompression(modes WorldCompression) {
	s.worldCompression.Set(modes)
}

// SetMapping replaces the id mapping.
func (s *Section) SetMapping(m section.Mapping) {
	s.mapping.Set(m)
}

// PayloadStates returns the lazy state of each payload keyed by payload name.
func (s *Section) PayloadStates() map[string]lazy.State {
	return map[string]lazy.State{
		FieldData:             s.data.State(),
		FieldWorldGenSteps:    s.worldGenSteps.State(),
		FieldWorldCompression: s.worldCompression.State(),
		FieldMapping:          s.mapping.State(),
	}
}

// Points iterates over the data points of column (x, z) together with the
// mapping entry each one refers to.
//
// Both the data and the mapping are decoded if needed. A data point whose id
// is outside the mapping yields an error wrapping errs.ErrCorruptStream
// instead of the iterator.
func (s *Section) Points(x, z int) (iter.Seq2[section.DataPoint, section.Entry], error) {
	cols, err := s.Columns()
	if err != nil {
		return nil, err
	}

	mapping, err := s.Mapping()
	if err != nil {
		return nil, err
	}

	column := cols.At(x, z)
	for _, dp := range column {
		if int(dp.ID()) >= mapping.Len() {
			return nil, fmt.Errorf("%w: column (%d, %d) references id %d, mapping has %d entries",
				errs.ErrCorruptStream, x, z, dp.ID(), mapping.Len())
		}
	}

	return func(yield func(section.DataPoint, section.Entry) bool) {
		for _, dp := range column {
			if !yield(dp, mapping.Lookup(dp)) {
				return
			}
		}
	}, nil
}

// DetailLevel returns the detail level of the section's position.
func (s *Section) DetailLevel() format.DetailLevel {
	return s.Pos.DetailLevel()
}

// BlockWidth returns the number of blocks covered by one column.
func (s *Section) BlockWidth() int32 {
	return s.Pos.BlockWidth()
}

// CreatedAt returns the creation time.
func (s *Section) CreatedAt() time.Time {
	return time.UnixMilli(s.Created)
}

// LastModifiedAt returns the last modification time.
func (s *Section) LastModifiedAt() time.Time {
	return time.UnixMilli(s.LastModified)
}

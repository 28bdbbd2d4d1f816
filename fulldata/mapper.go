package fulldata

import (
	"fmt"

	"github.com/arloliu/lodsnap/errs"
	"github.com/arloliu/lodsnap/format"
	"github.com/arloliu/lodsnap/intern"
	"github.com/arloliu/lodsnap/lazy"
	"github.com/arloliu/lodsnap/pos"
	"github.com/arloliu/lodsnap/repo"
	"github.com/arloliu/lodsnap/section"
)

// TableName is the table holding full data sections.
const TableName = "FullData"

// Column names of the FullData table.
const (
	ColDetailLevel      = "DetailLevel"
	ColPosX             = "PosX"
	ColPosZ             = "PosZ"
	ColMinY             = "MinY"
	ColDataChecksum     = "DataChecksum"
	ColData             = "Data"
	ColGenerationStep   = "ColumnGenerationStep"
	ColWorldCompression = "ColumnWorldCompressionMode"
	ColMapping          = "Mapping"
	ColFormatVersion    = "DataFormatVersion"
	ColCompressionMode  = "CompressionMode"
	ColApplyToParent    = "ApplyToParent"
	ColApplyToChildren  = "ApplyToChildren"
	ColLastModified     = "LastModifiedUnixDateTime"
	ColCreated          = "CreatedUnixDateTime"
)

var insertColumns = []string{
	ColDetailLevel,
	ColPosX,
	ColPosZ,
	ColMinY,
	ColDataChecksum,
	ColData,
	ColGenerationStep,
	ColWorldCompression,
	ColMapping,
	ColFormatVersion,
	ColCompressionMode,
	ColApplyToParent,
	ColApplyToChildren,
	ColLastModified,
	ColCreated,
}

// Mapper converts FullData rows to sections and back.
//
// The stored DetailLevel is relative to pos.SectionMinimumDetailLevel. The
// payload columns are kept compressed; mapping entries decoded later are
// interned into Pool, or into intern.Default when Pool is nil.
type Mapper struct {
	Pool *intern.Pool
}

var _ repo.Mapper[*Section] = Mapper{}

// Table returns the FullData table name.
func (Mapper) Table() string {
	return TableName
}

// FromRow maps one row. The payloads borrow the row's bytes until Owned is
// called.
func (m Mapper) FromRow(row *repo.Row) (*Section, error) {
	stored, err := row.Uint8(ColDetailLevel)
	if err != nil {
		return nil, err
	}
	if uint16(stored)+uint16(pos.SectionMinimumDetailLevel) > uint16(format.MaxDetailLevel) {
		return nil, fmt.Errorf("%w: stored detail level %d", errs.ErrInvalidDetailLevel, stored)
	}
	level := format.DetailLevel(stored).Add(pos.SectionMinimumDetailLevel)

	x, err := row.Int32(ColPosX)
	if err != nil {
		return nil, err
	}
	z, err := row.Int32(ColPosZ)
	if err != nil {
		return nil, err
	}

	p, err := pos.New(level, x, z)
	if err != nil {
		return nil, err
	}

	s := &Section{Pos: p, pool: m.Pool}

	if s.MinY, err = row.Int32(ColMinY); err != nil {
		return nil, err
	}
	if s.Checksum, err = row.Int32(ColDataChecksum); err != nil {
		return nil, err
	}
	if s.FormatVersion, err = row.Uint8(ColFormatVersion); err != nil {
		return nil, err
	}

	tag, err := row.Uint8(ColCompressionMode)
	if err != nil {
		return nil, err
	}
	if s.Compression, err = format.ParseCompressionType(tag); err != nil {
		return nil, err
	}

	if s.ApplyToParent, err = row.OptionalBool(ColApplyToParent); err != nil {
		return nil, err
	}
	if s.ApplyToChildren, err = row.OptionalBool(ColApplyToChildren); err != nil {
		return nil, err
	}

	if s.LastModified, err = row.Int64(ColLastModified); err != nil {
		return nil, err
	}
	if s.Created, err = row.Int64(ColCreated); err != nil {
		return nil, err
	}

	data, err := row.Bytes(ColData)
	if err != nil {
		return nil, err
	}
	steps, err := row.Bytes(ColGenerationStep)
	if err != nil {
		return nil, err
	}
	modes, err := row.Bytes(ColWorldCompression)
	if err != nil {
		return nil, err
	}
	mapping, err := row.Bytes(ColMapping)
	if err != nil {
		return nil, err
	}

	s.data = lazy.NewRaw[DataColumns](s.Compression, data)
	s.worldGenSteps = lazy.NewRaw[WorldGenSteps](s.Compression, steps)
	s.worldCompression = lazy.NewRaw[WorldCompression](s.Compression, modes)
	s.mapping = lazy.NewRaw[section.Mapping](s.Compression, mapping)

	return s, nil
}

// Owned detaches s from the row it was read from.
func (Mapper) Owned(s *Section) *Section {
	return s.Owned()
}

// InsertColumns lists the columns bound by InsertValues, in order.
func (Mapper) InsertColumns() []string {
	return insertColumns
}

// InsertValues binds a section for insertion. Every payload must hold
// compressed bytes; call Section.Recompress after modifying one.
func (Mapper) InsertValues(s *Section) ([]any, error) {
	level, err := storedDetailLevel(s.DetailLevel())
	if err != nil {
		return nil, err
	}

	payloads, err := s.Payloads()
	if err != nil {
		return nil, err
	}

	return []any{
		level,
		s.Pos.X(),
		s.Pos.Z(),
		s.MinY,
		s.Checksum,
		payloads.Data,
		payloads.WorldGenSteps,
		payloads.WorldCompression,
		payloads.Mapping,
		s.FormatVersion,
		uint8(s.Compression),
		optionalBool(s.ApplyToParent),
		optionalBool(s.ApplyToChildren),
		s.LastModified,
		s.Created,
	}, nil
}

func optionalBool(b *bool) any {
	if b == nil {
		return nil
	}

	return *b
}

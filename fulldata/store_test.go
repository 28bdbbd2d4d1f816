package fulldata

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/arloliu/lodsnap/errs"
	"github.com/arloliu/lodsnap/format"
	"github.com/arloliu/lodsnap/intern"
	"github.com/arloliu/lodsnap/pos"
	"github.com/arloliu/lodsnap/repo"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T, opts ...Option) (*Store, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "DistantHorizons.sqlite")
	store, err := Open(context.Background(), path, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	require.NoError(t, store.EnsureSchema(context.Background()))

	return store, path
}

func insertSection(t *testing.T, store *Store, s *Section) {
	t.Helper()

	require.NoError(t, s.Recompress())
	require.NoError(t, store.Insert(context.Background(), s))
}

func TestStore_RoundTrip(t *testing.T) {
	tests := []struct {
		name        string
		compression format.CompressionType
	}{
		{name: "none", compression: format.CompressionNone},
		{name: "lzma2", compression: format.CompressionLZMA2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			store, _ := openTestStore(t, WithPool(intern.NewPool()))

			want := testSection(t, tt.compression, format.Chunk8, -12, 40)
			insertSection(t, store, want)

			got, err := store.All(ctx)
			require.NoError(t, err)
			require.Len(t, got, 1)

			s := got[0]
			require.True(t, s.IsCompressed())
			require.False(t, s.IsDecompressed())
			require.Len(t, s.Pending(), 4)

			require.Equal(t, want.Pos, s.Pos)
			require.Equal(t, format.Chunk8, s.DetailLevel())
			require.Equal(t, want.MinY, s.MinY)
			require.Equal(t, want.Checksum, s.Checksum)
			require.Equal(t, CurrentFormatVersion, s.FormatVersion)
			require.Equal(t, tt.compression, s.Compression)
			require.Equal(t, want.ApplyToParent, s.ApplyToParent)
			require.Equal(t, want.ApplyToChildren, s.ApplyToChildren)
			require.Equal(t, want.Created, s.Created)
			require.Equal(t, want.LastModified, s.LastModified)

			require.NoError(t, s.Decompress())
			require.True(t, s.IsDecompressed())
			require.Empty(t, s.Pending())

			wantCols, err := want.Columns()
			require.NoError(t, err)
			gotCols, err := s.Columns()
			require.NoError(t, err)
			require.Equal(t, wantCols, gotCols)

			wantMapping, err := want.Mapping()
			require.NoError(t, err)
			gotMapping, err := s.Mapping()
			require.NoError(t, err)
			require.True(t, wantMapping.Equal(gotMapping))

			wantSteps, err := want.WorldGenSteps()
			require.NoError(t, err)
			gotSteps, err := s.WorldGenSteps()
			require.NoError(t, err)
			require.Equal(t, wantSteps, gotSteps)

			wantModes, err := want.WorldCompression()
			require.NoError(t, err)
			gotModes, err := s.WorldCompression()
			require.NoError(t, err)
			require.Equal(t, wantModes, gotModes)

			// Cached payloads are written back unchanged.
			wantPayloads, err := want.Payloads()
			require.NoError(t, err)
			gotPayloads, err := s.Payloads()
			require.NoError(t, err)
			require.Equal(t, wantPayloads, gotPayloads)
		})
	}
}

func TestStore_PendingShrinksOnAccess(t *testing.T) {
	ctx := context.Background()
	store, _ := openTestStore(t)
	insertSection(t, store, testSection(t, format.CompressionLZMA2, format.Chunk4, 0, 0))

	got, err := store.All(ctx)
	require.NoError(t, err)
	s := got[0]

	_, err = s.Columns()
	require.NoError(t, err)

	var names []string
	for _, f := range s.Pending() {
		names = append(names, f.Name)
	}
	require.Equal(t, []string{FieldWorldGenSteps, FieldWorldCompression, FieldMapping}, names)
}

func TestStore_OrderAndFilter(t *testing.T) {
	ctx := context.Background()
	store, _ := openTestStore(t, WithSizeHint(true))

	insertSection(t, store, testSection(t, format.CompressionNone, format.Chunk4, 1, 1))
	insertSection(t, store, testSection(t, format.CompressionNone, format.Chunk4, 10, -10))
	insertSection(t, store, testSection(t, format.CompressionNone, format.Region, 3, 0))

	n, err := store.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, n)

	all, err := store.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, int32(10), all[0].Pos.X())
	require.Equal(t, int32(3), all[1].Pos.X())
	require.Equal(t, int32(1), all[2].Pos.X())

	regions, err := store.ByDetailLevel(ctx, format.Region)
	require.NoError(t, err)
	require.Len(t, regions, 1)
	require.Equal(t, pos.MustNew(format.Region, 3, 0), regions[0].Pos)

	_, err = store.ByDetailLevel(ctx, format.Chunk)
	require.ErrorIs(t, err, errs.ErrInvalidDetailLevel)

	found, err := store.Get(ctx, pos.MustNew(format.Chunk4, 10, -10))
	require.NoError(t, err)
	require.NotNil(t, found)
	require.Equal(t, int32(-10), found.Pos.Z())

	missing, err := store.Get(ctx, pos.MustNew(format.Chunk4, 99, 99))
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestStore_StoredDetailLevelOffset(t *testing.T) {
	ctx := context.Background()
	store, _ := openTestStore(t)
	insertSection(t, store, testSection(t, format.CompressionNone, format.Region, 0, 0))

	var stored int
	require.NoError(t, store.DB().QueryRowContext(ctx, "SELECT DetailLevel FROM FullData").Scan(&stored))
	require.Equal(t, int(format.Region-pos.SectionMinimumDetailLevel), stored)
}

func TestStore_InsertRequiresCompressedPayloads(t *testing.T) {
	store, _ := openTestStore(t)

	s := testSection(t, format.CompressionNone, format.Chunk4, 0, 0)
	err := store.Insert(context.Background(), s)
	require.ErrorIs(t, err, errs.ErrNeedsRecompression)

	low := testSection(t, format.CompressionNone, format.Chunk, 0, 0)
	require.NoError(t, low.Recompress())
	err = store.Insert(context.Background(), low)
	require.ErrorIs(t, err, errs.ErrInvalidDetailLevel)
}

func TestStore_InsertDuplicate(t *testing.T) {
	store, _ := openTestStore(t)
	insertSection(t, store, testSection(t, format.CompressionNone, format.Chunk4, 0, 0))

	err := store.Insert(context.Background(), recompressed(t, testSection(t, format.CompressionNone, format.Chunk4, 0, 0)))
	require.Error(t, err)
}

func recompressed(t *testing.T, s *Section) *Section {
	t.Helper()
	require.NoError(t, s.Recompress())

	return s
}

func TestStore_CorruptPayload(t *testing.T) {
	ctx := context.Background()
	store, _ := openTestStore(t)

	good := testSection(t, format.CompressionLZMA2, format.Chunk4, 0, 0)
	require.NoError(t, good.Recompress())
	payloads, err := good.Payloads()
	require.NoError(t, err)

	_, err = store.DB().ExecContext(ctx, `INSERT INTO FullData
		(DetailLevel, PosX, PosZ, MinY, DataChecksum, Data, ColumnGenerationStep,
		 ColumnWorldCompressionMode, Mapping, DataFormatVersion, CompressionMode,
		 LastModifiedUnixDateTime, CreatedUnixDateTime)
		VALUES (0, 5, 5, 0, 0, ?, ?, ?, ?, 1, 3, 0, 0)`,
		[]byte("not an xz stream"), payloads.WorldGenSteps, payloads.WorldCompression, []byte{0xFD, 0x37})
	require.NoError(t, err)

	got, err := store.All(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)

	s := got[0]
	require.Nil(t, s.ApplyToParent)
	require.Nil(t, s.ApplyToChildren)

	err = s.Decompress()
	require.ErrorIs(t, err, errs.ErrCorruptStream)
	require.ErrorContains(t, err, "decompressing data")
	require.ErrorContains(t, err, "decompressing mapping")

	// The valid payloads decoded; only the corrupt ones remain pending.
	var names []string
	for _, f := range s.Pending() {
		names = append(names, f.Name)
	}
	require.Equal(t, []string{FieldData, FieldMapping}, names)
}

func TestStore_DeprecatedCompression(t *testing.T) {
	ctx := context.Background()
	store, _ := openTestStore(t)

	_, err := store.DB().ExecContext(ctx, `INSERT INTO FullData
		(DetailLevel, PosX, PosZ, MinY, DataChecksum, Data, ColumnGenerationStep,
		 ColumnWorldCompressionMode, Mapping, DataFormatVersion, CompressionMode,
		 LastModifiedUnixDateTime, CreatedUnixDateTime)
		VALUES (0, 0, 0, 0, 0, x'00', x'00', x'00', x'00', 1, 2, 0, 0)`)
	require.NoError(t, err)

	got, err := store.All(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, format.CompressionZstd, got[0].Compression)

	_, err = got[0].Columns()
	require.ErrorIs(t, err, errs.ErrUnsupportedCodec)
}

func TestStore_UnmappableRows(t *testing.T) {
	ctx := context.Background()
	store, _ := openTestStore(t)
	insertSection(t, store, testSection(t, format.CompressionNone, format.Chunk4, 0, 0))

	// Stored level 13 would be 19, past Region512; tag 9 is no codec.
	_, err := store.DB().ExecContext(ctx, `INSERT INTO FullData
		(DetailLevel, PosX, PosZ, MinY, DataChecksum, DataFormatVersion, CompressionMode,
		 LastModifiedUnixDateTime, CreatedUnixDateTime)
		VALUES (13, 1, 1, 0, 0, 1, 0, 0, 0), (0, 2, 2, 0, 0, 1, 9, 0, 0)`)
	require.NoError(t, err)

	got, err := store.All(ctx)
	require.Len(t, got, 1)
	require.ErrorIs(t, err, errs.ErrInvalidDetailLevel)
	require.ErrorIs(t, err, errs.ErrUnsupportedCodec)

	var rowErrs *repo.RowErrors
	require.True(t, errors.As(err, &rowErrs))
	require.Len(t, rowErrs.Rows, 2)
}

func TestStore_LegacyTableWithoutApplyToChildren(t *testing.T) {
	ctx := context.Background()

	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "legacy.sqlite"))
	require.NoError(t, err)

	store, err := NewStore(db)
	require.NoError(t, err)
	defer store.Close()

	_, err = db.ExecContext(ctx, `CREATE TABLE FullData (
		DetailLevel TINYINT NOT NULL, PosX INT NOT NULL, PosZ INT NOT NULL,
		MinY INT NOT NULL, DataChecksum INT NOT NULL,
		Data BLOB, ColumnGenerationStep BLOB, ColumnWorldCompressionMode BLOB, Mapping BLOB,
		DataFormatVersion TINYINT, CompressionMode TINYINT, ApplyToParent BIT,
		LastModifiedUnixDateTime BIGINT NOT NULL, CreatedUnixDateTime BIGINT NOT NULL,
		PRIMARY KEY (DetailLevel, PosX, PosZ))`)
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, `INSERT INTO FullData
		(DetailLevel, PosX, PosZ, MinY, DataChecksum, DataFormatVersion, CompressionMode,
		 ApplyToParent, LastModifiedUnixDateTime, CreatedUnixDateTime)
		VALUES (1, -7, 3, -64, 42, 1, 0, 1, 10, 20)`)
	require.NoError(t, err)

	got, err := store.All(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)

	s := got[0]
	require.Equal(t, format.Chunk8, s.DetailLevel())
	require.Equal(t, int32(-7), s.Pos.X())
	require.NotNil(t, s.ApplyToParent)
	require.True(t, *s.ApplyToParent)
	require.Nil(t, s.ApplyToChildren)
}

func TestStore_ReadOnly(t *testing.T) {
	ctx := context.Background()
	_, path := openTestStore(t)

	ro, err := Open(ctx, path, WithReadOnly(true))
	require.NoError(t, err)
	defer ro.Close()

	n, err := ro.Count(ctx)
	require.NoError(t, err)
	require.Zero(t, n)

	err = ro.Insert(ctx, recompressed(t, testSection(t, format.CompressionNone, format.Chunk4, 0, 0)))
	require.Error(t, err)
}

func TestOpen_InvalidOptions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.sqlite")

	_, err := Open(context.Background(), path, WithMaxOpenConns(0))
	require.Error(t, err)

	_, err = Open(context.Background(), path, WithBusyTimeout(-1))
	require.Error(t, err)
}

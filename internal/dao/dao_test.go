package dao

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/haierkeys/margin-note-import-service/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// createFixtureDB 用 gorm 造一个最小的 MarginNote 形状数据库
func createFixtureDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.sqlite")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	require.NoError(t, err)

	stmts := []string{
		`CREATE TABLE ZBOOKNOTE (
			Z_PK INTEGER PRIMARY KEY,
			ZNOTEID TEXT, ZTOPICID TEXT, ZGROUPNOTEID TEXT, ZEVERNOTEID TEXT,
			ZNOTETITLE TEXT, ZHIGHLIGHT_TEXT TEXT, ZNOTES_TEXT TEXT,
			ZSTARTPAGE INTEGER, ZSTARTPOS TEXT, ZMEDIA_LIST TEXT,
			ZHIGHLIGHT_DATE REAL, ZNOTE_DATE REAL,
			ZNOTES BLOB, ZHIGHLIGHTS BLOB
		)`,
		`CREATE TABLE ZTOPIC (
			Z_PK INTEGER PRIMARY KEY,
			ZTOPICID TEXT, ZTITLE TEXT, ZCONFIG BLOB
		)`,
		`CREATE TABLE ZMEDIA (
			Z_PK INTEGER PRIMARY KEY,
			ZMD5 TEXT, ZDATA BLOB
		)`,
		`INSERT INTO ZBOOKNOTE (Z_PK, ZNOTEID, ZTOPICID, ZNOTETITLE, ZHIGHLIGHT_TEXT, ZNOTES)
			VALUES (2, 'N2', 'T1', 'second', 'excerpt two', NULL)`,
		`INSERT INTO ZBOOKNOTE (Z_PK, ZNOTEID, ZTOPICID, ZNOTETITLE, ZHIGHLIGHT_TEXT, ZNOTES)
			VALUES (1, 'N1', 'T1', 'first', 'excerpt one', X'62706C697374')`,
		`INSERT INTO ZTOPIC (Z_PK, ZTOPICID, ZTITLE) VALUES (1, 'T1', 'My Book')`,
		`INSERT INTO ZMEDIA (Z_PK, ZMD5, ZDATA) VALUES (1, 'abc123', X'89504E47')`,
	}
	for _, stmt := range stmts {
		require.NoError(t, db.Exec(stmt).Error, stmt)
	}

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())
	return path
}

func TestNotesKeepPrimaryKeyOrder(t *testing.T) {
	d, err := Open(createFixtureDB(t))
	require.NoError(t, err)
	defer d.Close()

	rows, err := d.Notes(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// Z_PK 顺序而不是插入顺序
	assert.Equal(t, "N1", rows[0][domain.RowKeyNoteID])
	assert.Equal(t, "N2", rows[1][domain.RowKeyNoteID])
	assert.Equal(t, "excerpt one", rows[0][domain.RowKeyExcerpt])
	assert.Equal(t, "first", rows[0][domain.RowKeyTitle])

	blob, ok := rows[0][domain.RowKeyNotesBlob].([]byte)
	assert.True(t, ok, "blob column should scan as bytes, got %T", rows[0][domain.RowKeyNotesBlob])
	assert.Equal(t, []byte("bplist"), blob)
	assert.Nil(t, rows[1][domain.RowKeyNotesBlob])
}

func TestTopicsAndMedia(t *testing.T) {
	d, err := Open(createFixtureDB(t))
	require.NoError(t, err)
	defer d.Close()

	topics, err := d.Topics(context.Background())
	require.NoError(t, err)
	require.Len(t, topics, 1)
	assert.Equal(t, "T1", topics[0][domain.RowKeyTopicIDSelf])
	assert.Equal(t, "My Book", topics[0][domain.RowKeyTopicTitle])

	media, err := d.Media(context.Background())
	require.NoError(t, err)
	require.Len(t, media, 1)
	assert.Equal(t, "abc123", media[0][domain.RowKeyMediaHash])
	assert.Equal(t, []byte{0x89, 0x50, 0x4E, 0x47}, media[0][domain.RowKeyMediaData])
}

func TestNewFromBytes(t *testing.T) {
	raw, err := os.ReadFile(createFixtureDB(t))
	require.NoError(t, err)

	d, err := NewFromBytes(raw, t.TempDir())
	require.NoError(t, err)

	rows, err := d.Notes(context.Background())
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	tempPath := d.TempPath()
	require.NoError(t, d.Close())
	assert.NoFileExists(t, tempPath, "temp database should be removed on close")
}

func TestShapeValidation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.sqlite")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.Exec(`CREATE TABLE ZBOOKNOTE (Z_PK INTEGER PRIMARY KEY)`).Error)
	sqlDB, _ := db.DB()
	require.NoError(t, sqlDB.Close())

	_, err = Open(path)
	assert.True(t, errors.Is(err, ErrDatabaseShape), "err = %v", err)
}

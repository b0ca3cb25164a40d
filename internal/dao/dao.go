// Package dao 实现数据库行抽取
// 解压出的 SQLite 字节落到临时文件后用 gorm + 纯 Go sqlite 驱动只读打开
package dao

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/haierkeys/margin-note-import-service/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/pkg/errors"
	gormlogger "gorm.io/gorm/logger"

	"gorm.io/gorm"
)

// requiredTables 数据库基本形状：三张 Core Data 表必须存在
var requiredTables = []string{"ZBOOKNOTE", "ZTOPIC", "ZMEDIA"}

// ErrDatabaseShape 缺少必需的表，数据库形状不可用
var ErrDatabaseShape = errors.New("dao: database is missing required tables")

// Dao 只读数据库访问对象，实现 domain.RowSource
type Dao struct {
	Db       *gorm.DB
	tempFile string
}

// NewFromBytes writes the extracted database bytes to a temp file under
// tempDir and opens it read-only. The temp file is removed on Close.
// NewFromBytes 将数据库字节写入临时文件并只读打开，Close 时删除
func NewFromBytes(data []byte, tempDir string) (*Dao, error) {
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	if err := os.MkdirAll(tempDir, 0o755); err != nil {
		return nil, errors.Wrap(err, "dao: create temp dir")
	}

	f, err := os.CreateTemp(tempDir, "margin-import-*.sqlite")
	if err != nil {
		return nil, errors.Wrap(err, "dao: create temp database file")
	}
	path := f.Name()
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(path)
		return nil, errors.Wrap(err, "dao: write temp database file")
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return nil, errors.Wrap(err, "dao: close temp database file")
	}

	d, err := Open(path)
	if err != nil {
		os.Remove(path)
		return nil, err
	}
	d.tempFile = path
	return d, nil
}

// Open 打开一个已存在的数据库文件
func Open(path string) (*Dao, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, errors.Wrap(err, "dao: open sqlite database")
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "dao: unwrap sql.DB")
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)

	d := &Dao{Db: db}
	if err := d.validateShape(); err != nil {
		d.Close()
		return nil, err
	}
	return d, nil
}

// validateShape 校验三张必需表存在，缺失为致命错误
func (d *Dao) validateShape() error {
	var names []string
	if err := d.Db.Raw(
		"SELECT name FROM sqlite_master WHERE type = 'table'",
	).Scan(&names).Error; err != nil {
		return errors.Wrap(err, "dao: read sqlite_master")
	}
	present := make(map[string]bool, len(names))
	for _, name := range names {
		present[name] = true
	}
	for _, table := range requiredTables {
		if !present[table] {
			return errors.Wrapf(ErrDatabaseShape, "missing %s", table)
		}
	}
	return nil
}

// Close 关闭数据库并清理临时文件
func (d *Dao) Close() error {
	var firstErr error
	if d.Db != nil {
		if sqlDB, err := d.Db.DB(); err == nil {
			firstErr = sqlDB.Close()
		}
	}
	if d.tempFile != "" {
		if err := os.Remove(d.tempFile); err != nil && firstErr == nil && !os.IsNotExist(err) {
			firstErr = err
		}
		d.tempFile = ""
	}
	return firstErr
}

// TempPath 返回临时文件路径（测试用）
func (d *Dao) TempPath() string {
	return filepath.Clean(d.tempFile)
}

// queryRows 执行查询并把每一行装进扁平 map，键按 rename 重命名
func (d *Dao) queryRows(ctx context.Context, query string, rename map[string]string) ([]domain.Row, error) {
	rows, err := d.Db.WithContext(ctx).Raw(query).Rows()
	if err != nil {
		return nil, errors.Wrap(err, "dao: query")
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, errors.Wrap(err, "dao: read columns")
	}

	var out []domain.Row
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, errors.Wrap(err, "dao: scan row")
		}
		row := make(domain.Row, len(columns))
		for i, col := range columns {
			key := col
			if mapped, ok := rename[col]; ok {
				key = mapped
			}
			row[key] = values[i]
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

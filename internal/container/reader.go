// Package container 实现 .marginpkg 容器（ZIP 兼容子集）的只读解析
// 直接遍历中央目录与本地文件头，不依赖通用归档库
package container

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/haierkeys/margin-note-import-service/pkg/fileurl"

	"github.com/klauspost/compress/flate"
	"github.com/pkg/errors"
)

// 三个标准 ZIP 魔数
const (
	endOfCentralDirSignature uint32 = 0x06054b50
	centralDirSignature      uint32 = 0x02014b50
	localHeaderSignature     uint32 = 0x04034b50
)

// 压缩方法码
const (
	// MethodStored 原样存储
	MethodStored uint16 = 0
	// MethodDeflate 原始 deflate（无 zlib/gzip 包装）
	MethodDeflate uint16 = 8
)

const (
	endOfCentralDirLen = 22
	centralDirEntryLen = 46
	localHeaderLen     = 30
	// maxCommentLen 中央目录记录靠近文件尾，反向扫描不超过该窗口
	maxCommentLen = 0xFFFF
)

var (
	// ErrNoEndOfCentralDir 找不到中央目录结束记录，不是可识别的容器
	ErrNoEndOfCentralDir = errors.New("container: end of central directory signature not found")
	// ErrUnsupportedMethod 条目使用了不支持的压缩方法
	ErrUnsupportedMethod = errors.New("container: unsupported compression method")
	// ErrCorruptEntry 条目头或数据越界/损坏
	ErrCorruptEntry = errors.New("container: corrupt entry")
	// ErrEntryNotFound 按名称查找条目失败
	ErrEntryNotFound = errors.New("container: entry not found")
)

// Entry 中央目录扫描产出的条目，创建后不可变
type Entry struct {
	// Name 条目路径
	Name string
	// Method 压缩方法（0 存储 / 8 deflate）
	Method uint16
	// CompressedSize 压缩后字节数
	CompressedSize uint32
	// UncompressedSize 原始字节数
	UncompressedSize uint32
	// HeaderOffset 对应本地文件头的偏移
	HeaderOffset uint32
}

// Reader 容器只读解析器
type Reader struct {
	data    []byte
	entries []Entry
}

// New parses the central directory of a ZIP-compatible buffer.
// A missing end-of-central-directory record is fatal; individual entry
// problems surface later, during extraction.
// New 解析容器中央目录；找不到结束记录为致命错误
func New(data []byte) (*Reader, error) {
	eocd, err := findEndOfCentralDir(data)
	if err != nil {
		return nil, err
	}

	entryCount := int(binary.LittleEndian.Uint16(data[eocd+10:]))
	cdOffset := int(binary.LittleEndian.Uint32(data[eocd+16:]))
	if cdOffset > len(data) {
		return nil, errors.Wrapf(ErrNoEndOfCentralDir, "central directory offset %d beyond buffer", cdOffset)
	}

	r := &Reader{data: data}
	pos := cdOffset
	for i := 0; i < entryCount; i++ {
		if pos+centralDirEntryLen > len(data) {
			return nil, errors.Wrapf(ErrNoEndOfCentralDir, "central directory truncated at entry %d", i)
		}
		if binary.LittleEndian.Uint32(data[pos:]) != centralDirSignature {
			return nil, errors.Wrapf(ErrNoEndOfCentralDir, "bad central directory signature at entry %d", i)
		}

		method := binary.LittleEndian.Uint16(data[pos+10:])
		compressedSize := binary.LittleEndian.Uint32(data[pos+20:])
		uncompressedSize := binary.LittleEndian.Uint32(data[pos+24:])
		nameLen := int(binary.LittleEndian.Uint16(data[pos+28:]))
		extraLen := int(binary.LittleEndian.Uint16(data[pos+30:]))
		commentLen := int(binary.LittleEndian.Uint16(data[pos+32:]))
		headerOffset := binary.LittleEndian.Uint32(data[pos+42:])

		if pos+centralDirEntryLen+nameLen > len(data) {
			return nil, errors.Wrapf(ErrNoEndOfCentralDir, "entry %d name exceeds buffer", i)
		}
		name := string(data[pos+centralDirEntryLen : pos+centralDirEntryLen+nameLen])

		r.entries = append(r.entries, Entry{
			Name:             name,
			Method:           method,
			CompressedSize:   compressedSize,
			UncompressedSize: uncompressedSize,
			HeaderOffset:     headerOffset,
		})

		pos += centralDirEntryLen + nameLen + extraLen + commentLen
	}

	return r, nil
}

// findEndOfCentralDir 在尾部窗口内反向扫描结束记录签名
func findEndOfCentralDir(data []byte) (int, error) {
	if len(data) < endOfCentralDirLen {
		return 0, ErrNoEndOfCentralDir
	}
	low := len(data) - endOfCentralDirLen - maxCommentLen
	if low < 0 {
		low = 0
	}
	for pos := len(data) - endOfCentralDirLen; pos >= low; pos-- {
		if binary.LittleEndian.Uint32(data[pos:]) == endOfCentralDirSignature {
			return pos, nil
		}
	}
	return 0, ErrNoEndOfCentralDir
}

// Entries 返回全部条目
func (r *Reader) Entries() []Entry {
	return r.entries
}

// Entry 按名称查找条目
func (r *Reader) Entry(name string) (Entry, bool) {
	for _, e := range r.entries {
		if e.Name == name {
			return e, true
		}
	}
	return Entry{}, false
}

// FindSuffix returns all entries whose name ends with suffix (case-insensitive)
// FindSuffix 返回名称以某后缀结尾的全部条目（忽略大小写）
func (r *Reader) FindSuffix(suffix string) []Entry {
	var out []Entry
	for _, e := range r.entries {
		if fileurl.HasSuffixFold(e.Name, suffix) {
			out = append(out, e)
		}
	}
	return out
}

// Extract returns the decompressed payload of one entry. Extraction is
// all-or-nothing: any header mismatch, bounds overrun or inflate failure
// returns an error and no partial data.
// Extract 解出单个条目的原始字节，头部不符/越界/解压失败均整体报错
func (r *Reader) Extract(e Entry) ([]byte, error) {
	pos := int(e.HeaderOffset)
	if pos+localHeaderLen > len(r.data) {
		return nil, errors.Wrapf(ErrCorruptEntry, "%s: local header offset %d beyond buffer", e.Name, pos)
	}
	if binary.LittleEndian.Uint32(r.data[pos:]) != localHeaderSignature {
		return nil, errors.Wrapf(ErrCorruptEntry, "%s: bad local header signature", e.Name)
	}

	// 本地头中的名称/扩展字段长度可能与中央目录不同，以本地头为准
	nameLen := int(binary.LittleEndian.Uint16(r.data[pos+26:]))
	extraLen := int(binary.LittleEndian.Uint16(r.data[pos+28:]))

	dataStart := pos + localHeaderLen + nameLen + extraLen
	dataEnd := dataStart + int(e.CompressedSize)
	if dataStart > len(r.data) || dataEnd > len(r.data) || dataEnd < dataStart {
		return nil, errors.Wrapf(ErrCorruptEntry, "%s: payload exceeds buffer", e.Name)
	}
	payload := r.data[dataStart:dataEnd]

	switch e.Method {
	case MethodStored:
		out := make([]byte, len(payload))
		copy(out, payload)
		return out, nil
	case MethodDeflate:
		fr := flate.NewReader(bytes.NewReader(payload))
		defer fr.Close()
		out, err := io.ReadAll(fr)
		if err != nil {
			return nil, errors.Wrapf(err, "container: inflate %s", e.Name)
		}
		return out, nil
	default:
		return nil, errors.Wrapf(ErrUnsupportedMethod, "%s: method %d", e.Name, e.Method)
	}
}

// ExtractName 按名称解出条目
func (r *Reader) ExtractName(name string) ([]byte, error) {
	e, ok := r.Entry(name)
	if !ok {
		return nil, errors.Wrap(ErrEntryNotFound, name)
	}
	return r.Extract(e)
}

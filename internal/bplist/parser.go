package bplist

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/haierkeys/margin-note-import-service/pkg/timex"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding/unicode"
)

// 头部 8 字节标记，第 7/8 字节为版本（通常 "00"）
var headerMagic = []byte("bplist0")

const (
	headerLen  = 8
	trailerLen = 32
	// maxDepth 对象引用的最大嵌套深度，防御恶意/损坏输入
	maxDepth = 512
)

var (
	// ErrNotPlist 缺少 bplist 头部标记
	ErrNotPlist = errors.New("bplist: missing binary plist header")
	// ErrMalformed 对象表/偏移越界或标记字节无法解释
	ErrMalformed = errors.New("bplist: malformed data")
	// ErrReferenceCycle 对象引用形成环
	ErrReferenceCycle = errors.New("bplist: object reference cycle")
)

var utf16Decoder = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)

type parser struct {
	data        []byte
	offsets     []uint64
	refSize     int
	objects     []any
	parsed      []bool
	visiting    []bool
}

// Parse decodes a binary plist buffer into an ObjectGraph. When the trailer
// is absent or inconsistent it falls back to a best-effort linear scan that
// only recovers strings and integers (Degraded result).
// Parse 解码二进制 plist；trailer 异常时降级为线性扫描
func Parse(data []byte) (*ObjectGraph, error) {
	if len(data) < headerLen || !bytes.HasPrefix(data, headerMagic) {
		return nil, ErrNotPlist
	}
	if len(data) < headerLen+trailerLen {
		return fallbackScan(data), nil
	}

	trailer := data[len(data)-trailerLen:]
	offsetIntSize := int(trailer[6])
	refSize := int(trailer[7])
	numObjects := binary.BigEndian.Uint64(trailer[8:16])
	topObject := binary.BigEndian.Uint64(trailer[16:24])
	offsetTableStart := binary.BigEndian.Uint64(trailer[24:32])

	if !trailerConsistent(len(data), offsetIntSize, refSize, numObjects, topObject, offsetTableStart) {
		return fallbackScan(data), nil
	}

	p := &parser{
		data:     data,
		offsets:  make([]uint64, numObjects),
		refSize:  refSize,
		objects:  make([]any, numObjects),
		parsed:   make([]bool, numObjects),
		visiting: make([]bool, numObjects),
	}
	for i := uint64(0); i < numObjects; i++ {
		start := offsetTableStart + i*uint64(offsetIntSize)
		off := readBigEndianUint(data[start : start+uint64(offsetIntSize)])
		if off >= uint64(len(data)-trailerLen) {
			return fallbackScan(data), nil
		}
		p.offsets[i] = off
	}

	for i := range p.objects {
		if _, err := p.object(uint64(i), 0); err != nil {
			return nil, err
		}
	}

	return &ObjectGraph{
		Objects: p.objects,
		Root:    p.objects[topObject],
	}, nil
}

// trailerConsistent 校验 trailer 各字段与缓冲区长度的一致性
func trailerConsistent(dataLen, offsetIntSize, refSize int, numObjects, topObject, offsetTableStart uint64) bool {
	if offsetIntSize < 1 || offsetIntSize > 8 || refSize < 1 || refSize > 8 {
		return false
	}
	if numObjects == 0 || topObject >= numObjects {
		return false
	}
	if offsetTableStart < headerLen || offsetTableStart >= uint64(dataLen-trailerLen) {
		return false
	}
	tableEnd := offsetTableStart + numObjects*uint64(offsetIntSize)
	return tableEnd <= uint64(dataLen-trailerLen)
}

// object 物化对象表第 idx 项，带备忘与结构环检测
func (p *parser) object(idx uint64, depth int) (any, error) {
	if idx >= uint64(len(p.objects)) {
		return nil, errors.Wrapf(ErrMalformed, "object ref %d out of table", idx)
	}
	if p.parsed[idx] {
		return p.objects[idx], nil
	}
	if p.visiting[idx] {
		return nil, errors.Wrapf(ErrReferenceCycle, "object %d", idx)
	}
	if depth > maxDepth {
		return nil, errors.Wrapf(ErrMalformed, "object nesting exceeds depth %d", maxDepth)
	}

	p.visiting[idx] = true
	v, err := p.parseAt(p.offsets[idx], depth)
	p.visiting[idx] = false
	if err != nil {
		return nil, err
	}
	p.objects[idx] = v
	p.parsed[idx] = true
	return v, nil
}

// parseAt 解析一个标记字节引导的对象
// 高半字节为类型标签，低半字节为内联小尺寸或读出线外尺寸的标志
func (p *parser) parseAt(off uint64, depth int) (any, error) {
	if off >= uint64(len(p.data)) {
		return nil, errors.Wrapf(ErrMalformed, "object offset %d out of range", off)
	}
	marker := p.data[off]
	pos := off + 1

	switch marker >> 4 {
	case 0x0:
		switch marker {
		case 0x00: // null
			return nil, nil
		case 0x08:
			return false, nil
		case 0x09:
			return true, nil
		case 0x0F: // fill byte
			return nil, nil
		}
		return nil, errors.Wrapf(ErrMalformed, "unknown marker 0x%02x at %d", marker, off)

	case 0x1: // int, 2^nibble bytes big endian
		width := uint64(1) << (marker & 0x0F)
		if width > 8 {
			return nil, errors.Wrapf(ErrMalformed, "integer width %d at %d", width, off)
		}
		raw, err := p.slice(pos, width)
		if err != nil {
			return nil, err
		}
		return int64(readBigEndianUint(raw)), nil

	case 0x2: // real
		width := uint64(1) << (marker & 0x0F)
		raw, err := p.slice(pos, width)
		if err != nil {
			return nil, err
		}
		switch width {
		case 4:
			return float64(math.Float32frombits(uint32(readBigEndianUint(raw)))), nil
		case 8:
			return math.Float64frombits(readBigEndianUint(raw)), nil
		}
		return nil, errors.Wrapf(ErrMalformed, "real width %d at %d", width, off)

	case 0x3: // date: 8-byte float seconds since the Apple reference date
		if marker != 0x33 {
			return nil, errors.Wrapf(ErrMalformed, "unknown date marker 0x%02x at %d", marker, off)
		}
		raw, err := p.slice(pos, 8)
		if err != nil {
			return nil, err
		}
		seconds := math.Float64frombits(readBigEndianUint(raw))
		return timex.FromAppleSeconds(seconds).Time(), nil

	case 0x4: // byte string
		count, pos, err := p.count(marker, pos)
		if err != nil {
			return nil, err
		}
		raw, err := p.slice(pos, count)
		if err != nil {
			return nil, err
		}
		out := make([]byte, len(raw))
		copy(out, raw)
		return out, nil

	case 0x5: // ascii string
		count, pos, err := p.count(marker, pos)
		if err != nil {
			return nil, err
		}
		raw, err := p.slice(pos, count)
		if err != nil {
			return nil, err
		}
		return string(raw), nil

	case 0x6: // utf-16be string, count is in code units
		count, pos, err := p.count(marker, pos)
		if err != nil {
			return nil, err
		}
		raw, err := p.slice(pos, count*2)
		if err != nil {
			return nil, err
		}
		decoded, err := utf16Decoder.NewDecoder().Bytes(raw)
		if err != nil {
			return nil, errors.Wrapf(ErrMalformed, "utf16 string at %d: %v", off, err)
		}
		return string(decoded), nil

	case 0x8: // uid, (nibble+1) bytes big endian
		width := uint64(marker&0x0F) + 1
		raw, err := p.slice(pos, width)
		if err != nil {
			return nil, err
		}
		return UID(readBigEndianUint(raw)), nil

	case 0xA, 0xC: // array / set: ordered object-table refs
		count, pos, err := p.count(marker, pos)
		if err != nil {
			return nil, err
		}
		refs, err := p.refs(pos, count)
		if err != nil {
			return nil, err
		}
		out := make([]any, 0, count)
		for _, ref := range refs {
			v, err := p.object(ref, depth+1)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil

	case 0xD: // dict: count key refs then count value refs
		count, pos, err := p.count(marker, pos)
		if err != nil {
			return nil, err
		}
		keyRefs, err := p.refs(pos, count)
		if err != nil {
			return nil, err
		}
		valueRefs, err := p.refs(pos+count*uint64(p.refSize), count)
		if err != nil {
			return nil, err
		}
		d := &Dict{
			Keys:   make([]any, 0, count),
			Values: make([]any, 0, count),
		}
		for i := uint64(0); i < count; i++ {
			k, err := p.object(keyRefs[i], depth+1)
			if err != nil {
				return nil, err
			}
			v, err := p.object(valueRefs[i], depth+1)
			if err != nil {
				return nil, err
			}
			d.Keys = append(d.Keys, k)
			d.Values = append(d.Values, v)
		}
		return d, nil
	}

	return nil, errors.Wrapf(ErrMalformed, "unknown marker 0x%02x at %d", marker, off)
}

// count 解析对象尺寸：低半字节 0xF 表示后随一个整数对象为线外尺寸
func (p *parser) count(marker byte, pos uint64) (uint64, uint64, error) {
	nibble := uint64(marker & 0x0F)
	if nibble != 0x0F {
		return nibble, pos, nil
	}
	if pos >= uint64(len(p.data)) {
		return 0, 0, errors.Wrapf(ErrMalformed, "size marker beyond buffer at %d", pos)
	}
	sizeMarker := p.data[pos]
	if sizeMarker>>4 != 0x1 {
		return 0, 0, errors.Wrapf(ErrMalformed, "expected int size marker at %d, got 0x%02x", pos, sizeMarker)
	}
	width := uint64(1) << (sizeMarker & 0x0F)
	raw, err := p.slice(pos+1, width)
	if err != nil {
		return 0, 0, err
	}
	return readBigEndianUint(raw), pos + 1 + width, nil
}

// refs 读取 count 个对象表引用
func (p *parser) refs(pos, count uint64) ([]uint64, error) {
	raw, err := p.slice(pos, count*uint64(p.refSize))
	if err != nil {
		return nil, err
	}
	out := make([]uint64, count)
	for i := uint64(0); i < count; i++ {
		out[i] = readBigEndianUint(raw[i*uint64(p.refSize) : (i+1)*uint64(p.refSize)])
	}
	return out, nil
}

// slice 带边界检查的切片读取
func (p *parser) slice(pos, n uint64) ([]byte, error) {
	if pos > uint64(len(p.data)) || pos+n > uint64(len(p.data)) || pos+n < pos {
		return nil, errors.Wrapf(ErrMalformed, "read of %d bytes at %d exceeds buffer", n, pos)
	}
	return p.data[pos : pos+n], nil
}

// readBigEndianUint 读取 1..8 字节的大端无符号整数
func readBigEndianUint(b []byte) uint64 {
	var v uint64
	for _, c := range b {
		v = v<<8 | uint64(c)
	}
	return v
}

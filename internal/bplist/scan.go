package bplist

import "unicode/utf8"

// fallbackScan is the degraded path for buffers whose trailer is absent or
// inconsistent: walk marker bytes from just past the header and pull out
// whatever strings and integers decode cleanly. Nested structure is not
// reconstructed here.
// fallbackScan 线性扫描降级路径：只可靠提取字符串与整数，不重建嵌套结构
func fallbackScan(data []byte) *ObjectGraph {
	var objects []any

	pos := headerLen
	for pos < len(data) {
		marker := data[pos]
		switch marker >> 4 {
		case 0x1: // int
			width := 1 << (marker & 0x0F)
			if width <= 8 && pos+1+width <= len(data) {
				objects = append(objects, int64(readBigEndianUint(data[pos+1:pos+1+width])))
				pos += 1 + width
				continue
			}
		case 0x5: // ascii string
			if n, consumed, ok := scanSize(data, pos); ok && pos+consumed+n <= len(data) {
				s := data[pos+consumed : pos+consumed+n]
				if n > 0 && isPrintableASCII(s) {
					objects = append(objects, string(s))
					pos += consumed + n
					continue
				}
			}
		case 0x6: // utf-16be string
			if n, consumed, ok := scanSize(data, pos); ok && pos+consumed+n*2 <= len(data) {
				raw := data[pos+consumed : pos+consumed+n*2]
				if n > 0 {
					if decoded, err := utf16Decoder.NewDecoder().Bytes(raw); err == nil && utf8.Valid(decoded) {
						objects = append(objects, string(decoded))
						pos += consumed + n*2
						continue
					}
				}
			}
		}
		pos++
	}

	return &ObjectGraph{
		Objects:  objects,
		Root:     objects,
		Degraded: true,
	}
}

// scanSize 读取标记对象的尺寸（内联或线外），返回尺寸与消耗的字节数
func scanSize(data []byte, pos int) (int, int, bool) {
	nibble := int(data[pos] & 0x0F)
	if nibble != 0x0F {
		return nibble, 1, true
	}
	if pos+1 >= len(data) {
		return 0, 0, false
	}
	sizeMarker := data[pos+1]
	if sizeMarker>>4 != 0x1 {
		return 0, 0, false
	}
	width := 1 << (sizeMarker & 0x0F)
	if width > 8 || pos+2+width > len(data) {
		return 0, 0, false
	}
	return int(readBigEndianUint(data[pos+2 : pos+2+width])), 2 + width, true
}

// isPrintableASCII 判断字节串是否全部为可打印 ASCII
func isPrintableASCII(b []byte) bool {
	for _, c := range b {
		if c < 0x20 || c > 0x7E {
			if c != '\n' && c != '\t' && c != '\r' {
				return false
			}
		}
	}
	return true
}

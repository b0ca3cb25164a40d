// Package keyedarchive 解析 NSKeyedArchiver 载荷
// 将 $objects 表中的 UID 间接引用展开，并把 Foundation 容器编码
// 折叠为普通的数组/映射，供上层按字段名匹配
package keyedarchive

import (
	"github.com/haierkeys/margin-note-import-service/internal/bplist"

	"github.com/pkg/errors"
	"github.com/spf13/cast"
)

// 归档载荷必备的四个顶层键
var requiredKeys = [4]string{"$archiver", "$version", "$objects", "$top"}

// nullSentinel 对象表中的空值哨兵
const nullSentinel = "$null"

// maxDepth UID 解析的最大深度，防御恶意构造的深层嵌套
const maxDepth = 512

// ErrUIDCycle UID 引用回到了祖先对象
var ErrUIDCycle = errors.New("keyedarchive: uid reference cycle")

// IsArchive reports whether the parsed plist root carries the four mandatory
// keyed-archiver top-level keys.
// IsArchive 判断 plist 根对象是否为 keyed archiver 载荷
func IsArchive(g *bplist.ObjectGraph) bool {
	if g == nil {
		return false
	}
	root, ok := g.Root.(*bplist.Dict)
	if !ok {
		return false
	}
	for _, key := range requiredKeys {
		if _, found := root.Get(key); !found {
			return false
		}
	}
	return true
}

// resolver 持有对象表与解析状态
type resolver struct {
	objects   []any
	strict    bool
	truncated int
	visiting  map[bplist.UID]bool
}

// Decode resolves and simplifies an archiver payload. A non-archiver graph
// yields (nil, 0, nil) — absence of the archiver shape is not an error.
// In strict mode a UID cycle is returned as ErrUIDCycle; otherwise the
// offending branch is truncated to null and counted.
// Decode 解析并简化归档载荷；非归档载荷返回空结果而不是错误
// 严格模式下 UID 环返回错误，默认截断为 null 并计数
func Decode(g *bplist.ObjectGraph, strict bool) (any, int, error) {
	if !IsArchive(g) {
		return nil, 0, nil
	}
	root := g.Root.(*bplist.Dict)

	objsRaw, _ := root.Get("$objects")
	objects, ok := objsRaw.([]any)
	if !ok {
		return nil, 0, nil
	}
	topRaw, _ := root.Get("$top")
	top, ok := topRaw.(*bplist.Dict)
	if !ok {
		return nil, 0, nil
	}
	rootRef, found := top.Get("root")
	if !found {
		return nil, 0, nil
	}

	r := &resolver{
		objects:  objects,
		strict:   strict,
		visiting: make(map[bplist.UID]bool),
	}
	resolved, err := r.resolve(rootRef, 0)
	if err != nil {
		return nil, r.truncated, err
	}
	return Simplify(resolved), r.truncated, nil
}

// resolve 递归替换 UID 引用，"$null" 哨兵解析为 nil
func (r *resolver) resolve(v any, depth int) (any, error) {
	if depth > maxDepth {
		if r.strict {
			return nil, errors.Wrapf(ErrUIDCycle, "nesting exceeds depth %d", maxDepth)
		}
		r.truncated++
		return nil, nil
	}

	switch val := v.(type) {
	case bplist.UID:
		if uint64(val) >= uint64(len(r.objects)) {
			if r.strict {
				return nil, errors.Errorf("keyedarchive: uid %d out of object table", val)
			}
			r.truncated++
			return nil, nil
		}
		if r.visiting[val] {
			if r.strict {
				return nil, errors.Wrapf(ErrUIDCycle, "uid %d", val)
			}
			r.truncated++
			return nil, nil
		}
		entry := r.objects[val]
		if s, ok := entry.(string); ok && s == nullSentinel {
			return nil, nil
		}
		r.visiting[val] = true
		resolved, err := r.resolve(entry, depth+1)
		delete(r.visiting, val)
		return resolved, err

	case []any:
		out := make([]any, 0, len(val))
		for _, item := range val {
			resolved, err := r.resolve(item, depth+1)
			if err != nil {
				return nil, err
			}
			out = append(out, resolved)
		}
		return out, nil

	case *bplist.Dict:
		out := &bplist.Dict{
			Keys:   make([]any, 0, len(val.Keys)),
			Values: make([]any, 0, len(val.Values)),
		}
		for i := range val.Keys {
			k, err := r.resolve(val.Keys[i], depth+1)
			if err != nil {
				return nil, err
			}
			value, err := r.resolve(val.Values[i], depth+1)
			if err != nil {
				return nil, err
			}
			out.Keys = append(out.Keys, k)
			out.Values = append(out.Values, value)
		}
		return out, nil

	default:
		return v, nil
	}
}

// Foundation 容器类名
var (
	arrayClasses = map[string]bool{
		"NSArray":        true,
		"NSMutableArray": true,
		"NSSet":          true,
		"NSMutableSet":   true,
	}
	dictClasses = map[string]bool{
		"NSDictionary":        true,
		"NSMutableDictionary": true,
	}
)

// Simplify collapses Foundation container shapes in a resolved tree:
// array-classed objects become plain lists of their simplified NS.objects
// (nulls dropped), dictionary-classed objects become plain maps from zipped
// NS.keys/NS.objects (nil-sided pairs dropped), any other object becomes a
// map of its non-$ fields, collapsing to nil when that map ends up empty.
// Simplify 折叠 Foundation 容器编码，归档簿记对象化简后为空则消失
func Simplify(v any) any {
	switch val := v.(type) {
	case []any:
		out := make([]any, 0, len(val))
		for _, item := range val {
			out = append(out, Simplify(item))
		}
		return out

	case *bplist.Dict:
		class := classNameOf(val)

		if arrayClasses[class] {
			objs, _ := val.Get("NS.objects")
			items, _ := objs.([]any)
			out := make([]any, 0, len(items))
			for _, item := range items {
				if simplified := Simplify(item); simplified != nil {
					out = append(out, simplified)
				}
			}
			return out
		}

		if dictClasses[class] {
			keysRaw, _ := val.Get("NS.keys")
			valuesRaw, _ := val.Get("NS.objects")
			keys, _ := keysRaw.([]any)
			values, _ := valuesRaw.([]any)
			out := make(map[string]any, len(keys))
			for i := 0; i < len(keys) && i < len(values); i++ {
				k := Simplify(keys[i])
				value := Simplify(values[i])
				if k == nil || value == nil {
					continue
				}
				out[cast.ToString(k)] = value
			}
			if len(out) == 0 {
				return nil
			}
			return out
		}

		out := make(map[string]any, val.Len())
		for i, k := range val.Keys {
			name := cast.ToString(k)
			if len(name) > 0 && name[0] == '$' {
				continue
			}
			if simplified := Simplify(val.Values[i]); simplified != nil {
				out[name] = simplified
			}
		}
		if len(out) == 0 {
			return nil
		}
		return out

	default:
		return v
	}
}

// classNameOf 读取对象的 $class.$classname 标签
func classNameOf(d *bplist.Dict) string {
	classRaw, ok := d.Get("$class")
	if !ok {
		return ""
	}
	switch class := classRaw.(type) {
	case *bplist.Dict:
		return class.GetString("$classname")
	case string:
		return class
	}
	return ""
}

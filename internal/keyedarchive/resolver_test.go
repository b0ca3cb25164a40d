package keyedarchive

import (
	"reflect"
	"testing"

	"github.com/haierkeys/margin-note-import-service/internal/bplist"

	"github.com/pkg/errors"
)

func dict(pairs ...any) *bplist.Dict {
	d := &bplist.Dict{}
	for i := 0; i+1 < len(pairs); i += 2 {
		d.Keys = append(d.Keys, pairs[i])
		d.Values = append(d.Values, pairs[i+1])
	}
	return d
}

// graph 构造一个以 $objects 表为内容的归档图
func graph(objects ...any) *bplist.ObjectGraph {
	root := dict(
		"$archiver", "NSKeyedArchiver",
		"$version", int64(100000),
		"$objects", objects,
		"$top", dict("root", bplist.UID(1)),
	)
	return &bplist.ObjectGraph{Root: root, Objects: []any{root}}
}

func TestNotAnArchive(t *testing.T) {
	// 缺少必备顶层键时返回空结果而不是错误
	g := &bplist.ObjectGraph{Root: dict("some", "dict")}
	v, truncated, err := Decode(g, true)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if v != nil || truncated != 0 {
		t.Errorf("Decode = (%v, %d), want (nil, 0)", v, truncated)
	}

	if IsArchive(g) {
		t.Error("dict without archiver keys should not be an archive")
	}
	if IsArchive(&bplist.ObjectGraph{Root: "scalar"}) {
		t.Error("scalar root should not be an archive")
	}
}

func TestResolveScalarRoot(t *testing.T) {
	g := graph("$null", "plain value")
	v, _, err := Decode(g, true)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if v != "plain value" {
		t.Errorf("Decode = %#v, want %q", v, "plain value")
	}
}

func TestResolveNSArray(t *testing.T) {
	g := graph(
		"$null",
		dict(
			"NS.objects", []any{bplist.UID(2), bplist.UID(0), bplist.UID(3)},
			"$class", bplist.UID(4),
		),
		"alpha",
		"beta",
		dict("$classname", "NSMutableArray", "$classes", []any{"NSMutableArray", "NSArray", "NSObject"}),
	)
	v, _, err := Decode(g, false)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	// UID(0) 指向 $null，折叠时被丢弃
	want := []any{"alpha", "beta"}
	if !reflect.DeepEqual(v, want) {
		t.Errorf("Decode = %#v, want %#v", v, want)
	}
}

func TestResolveNSDictionary(t *testing.T) {
	g := graph(
		"$null",
		dict(
			"NS.keys", []any{bplist.UID(2), bplist.UID(3)},
			"NS.objects", []any{bplist.UID(4), bplist.UID(0)},
			"$class", bplist.UID(5),
		),
		"title",
		"missing",
		"Chapter One",
		dict("$classname", "NSDictionary"),
	)
	v, _, err := Decode(g, false)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	// 值为 null 的键值对被丢弃
	want := map[string]any{"title": "Chapter One"}
	if !reflect.DeepEqual(v, want) {
		t.Errorf("Decode = %#v, want %#v", v, want)
	}
}

func TestGenericObjectStripsArchiverKeys(t *testing.T) {
	g := graph(
		"$null",
		dict(
			"noteid", bplist.UID(2),
			"q_htext", bplist.UID(3),
			"$class", bplist.UID(4),
		),
		"N123",
		"highlighted words",
		dict("$classname", "LinkNote"),
	)
	v, _, err := Decode(g, false)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	want := map[string]any{"noteid": "N123", "q_htext": "highlighted words"}
	if !reflect.DeepEqual(v, want) {
		t.Errorf("Decode = %#v, want %#v", v, want)
	}
}

func TestEmptyBookkeepingObjectVanishes(t *testing.T) {
	// 只有 $ 前缀字段的对象化简后为空，折叠为 null，并在数组中消失
	g := graph(
		"$null",
		dict(
			"NS.objects", []any{bplist.UID(2), bplist.UID(3)},
			"$class", bplist.UID(4),
		),
		dict("$class", bplist.UID(5)),
		"kept",
		dict("$classname", "NSArray"),
		dict("$classname", "SyncStamp"),
	)
	v, _, err := Decode(g, false)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	want := []any{"kept"}
	if !reflect.DeepEqual(v, want) {
		t.Errorf("Decode = %#v, want %#v", v, want)
	}
}

func TestUIDCycleStrict(t *testing.T) {
	// 对象 1 引用对象 2，对象 2 又引用回对象 1
	g := graph(
		"$null",
		dict("next", bplist.UID(2)),
		dict("back", bplist.UID(1)),
	)
	_, _, err := Decode(g, true)
	if !errors.Is(err, ErrUIDCycle) {
		t.Errorf("err = %v, want ErrUIDCycle", err)
	}
}

func TestUIDCycleTruncates(t *testing.T) {
	g := graph(
		"$null",
		dict("name", bplist.UID(3), "next", bplist.UID(2)),
		dict("back", bplist.UID(1)),
		"node",
	)
	v, truncated, err := Decode(g, false)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if truncated == 0 {
		t.Error("cycle should be counted as truncated")
	}
	m, ok := v.(map[string]any)
	if !ok {
		t.Fatalf("result type = %T", v)
	}
	if m["name"] != "node" {
		t.Errorf("name = %#v, want %q", m["name"], "node")
	}
}

func TestUIDOutOfRange(t *testing.T) {
	g := graph("$null", dict("ref", bplist.UID(99)))

	if _, _, err := Decode(g, true); err == nil {
		t.Error("strict mode should reject out-of-range uid")
	}

	v, truncated, err := Decode(g, false)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if truncated != 1 {
		t.Errorf("truncated = %d, want 1", truncated)
	}
	// ref 被截断为 null 后对象为空，整体折叠为 null
	if v != nil {
		t.Errorf("Decode = %#v, want nil", v)
	}
}

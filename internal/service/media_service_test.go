package service

import (
	"testing"

	"github.com/haierkeys/margin-note-import-service/internal/domain"
	"github.com/haierkeys/margin-note-import-service/pkg/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testMediaService() MediaService {
	return NewMediaService(zap.NewNop())
}

func TestClassifyPNG(t *testing.T) {
	svc := testMediaService()
	payload := append([]byte{0x00, 0x01, 0x02}, pngSignature...)
	payload = append(payload, []byte("IHDR-fake-body")...)

	record := svc.Classify(payload)
	assert.Equal(t, domain.MediaKindImage, record.Kind)
	require.NotEmpty(t, record.Image)
	// 图片载荷从签名起始，丢弃前置包装字节
	assert.Equal(t, pngSignature, record.Image[:len(pngSignature)])
}

func TestClassifyInk(t *testing.T) {
	svc := testMediaService()
	record := svc.Classify([]byte("bplist00...strokes...binary tail"))
	assert.Equal(t, domain.MediaKindInk, record.Kind)
	assert.True(t, record.HasStrokes)
}

func TestClassifyCoords(t *testing.T) {
	svc := testMediaService()
	record := svc.Classify([]byte("{12.5,40.25},{318.0,62.75}"))
	assert.Equal(t, domain.MediaKindCoords, record.Kind)
	assert.Contains(t, record.TextSample, "{12.5,40.25}")
}

func TestClassifyUnknown(t *testing.T) {
	svc := testMediaService()
	record := svc.Classify([]byte{0xFF, 0xFE, 0x00, 0x10, 0x80})
	assert.Equal(t, domain.MediaKindUnknown, record.Kind)
}

func TestBuildLookupHashPreference(t *testing.T) {
	svc := testMediaService()
	rows := []domain.Row{
		{domain.RowKeyMediaHash: "abc123", domain.RowKeyMediaData: []byte("{1.0,2.0}")},
		{domain.RowKeyMediaHash: "", domain.RowKeyMediaData: []byte("{3.0,4.0}")},
		{domain.RowKeyMediaHash: "empty-data", domain.RowKeyMediaData: []byte(nil)},
	}

	lookup := svc.BuildLookup(rows)
	require.Len(t, lookup, 2)

	// 行自带哈希直接作为键
	require.Contains(t, lookup, "abc123")

	// 缺失哈希按同一约定补 md5 键
	contentKey := util.EncodeMD5("{3.0,4.0}")
	require.Contains(t, lookup, contentKey)
	assert.Equal(t, domain.MediaKindCoords, lookup[contentKey].Kind)
}

func TestBuildLookupSharesIdenticalBytes(t *testing.T) {
	svc := testMediaService()
	payload := []byte("{5.0,6.0}")
	rows := []domain.Row{
		{domain.RowKeyMediaHash: "key-a", domain.RowKeyMediaData: payload},
		{domain.RowKeyMediaHash: "key-b", domain.RowKeyMediaData: payload},
	}

	lookup := svc.BuildLookup(rows)
	require.Len(t, lookup, 2)
	// 相同字节只分类一次，两个键指向同一条记录
	assert.Same(t, lookup["key-a"], lookup["key-b"])
}

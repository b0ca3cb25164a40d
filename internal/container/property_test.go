package container

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// 任意负载经过 deflate 条目写入再解出后必须逐字节一致

func TestProperty_DeflateRoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("deflate entries reproduce original bytes", prop.ForAll(
		func(payload []byte) bool {
			var buf bytes.Buffer
			zw := zip.NewWriter(&buf)
			w, err := zw.CreateHeader(&zip.FileHeader{Name: "prop.bin", Method: zip.Deflate})
			if err != nil {
				return false
			}
			if _, err := w.Write(payload); err != nil {
				return false
			}
			if err := zw.Close(); err != nil {
				return false
			}

			r, err := New(buf.Bytes())
			if err != nil {
				t.Logf("New failed: %v", err)
				return false
			}
			got, err := r.ExtractName("prop.bin")
			if err != nil {
				t.Logf("Extract failed: %v", err)
				return false
			}
			return bytes.Equal(got, payload)
		},
		gen.SliceOf(gen.UInt8()),
	))

	properties.Property("stored entries reproduce original bytes", prop.ForAll(
		func(payload []byte) bool {
			var buf bytes.Buffer
			zw := zip.NewWriter(&buf)
			w, err := zw.CreateHeader(&zip.FileHeader{Name: "prop.bin", Method: zip.Store})
			if err != nil {
				return false
			}
			if _, err := w.Write(payload); err != nil {
				return false
			}
			if err := zw.Close(); err != nil {
				return false
			}

			r, err := New(buf.Bytes())
			if err != nil {
				return false
			}
			got, err := r.ExtractName("prop.bin")
			if err != nil {
				return false
			}
			return bytes.Equal(got, payload)
		},
		gen.SliceOf(gen.UInt8()),
	))

	properties.TestingRun(t)
}

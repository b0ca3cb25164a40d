package cmd

import (
	"fmt"
	"os"

	"github.com/haierkeys/margin-note-import-service/internal/bplist"
	"github.com/haierkeys/margin-note-import-service/internal/container"
	"github.com/haierkeys/margin-note-import-service/internal/keyedarchive"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type inspectFlags struct {
	entry  string // Entry to extract and decode // 要解出并解码的条目
	strict bool   // Strict blob decoding // 严格解码
}

func init() {
	inspectEnv := new(inspectFlags)

	var inspectCommand = &cobra.Command{
		Use:   "inspect <package-file> [-e entry]",
		Short: "List package entries or decode one entry to JSON",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			data, err := os.ReadFile(args[0])
			if err != nil {
				bootstrapLogger.Error("package read err", zap.Error(err))
				return
			}
			reader, err := container.New(data)
			if err != nil {
				bootstrapLogger.Error("package open err", zap.Error(err))
				return
			}

			if inspectEnv.entry == "" {
				for _, entry := range reader.Entries() {
					fmt.Printf("%10d  %10d  method=%d  %s\n",
						entry.CompressedSize, entry.UncompressedSize, entry.Method, entry.Name)
				}
				return
			}

			payload, err := reader.ExtractName(inspectEnv.entry)
			if err != nil {
				bootstrapLogger.Error("entry extract err",
					zap.String("entry", inspectEnv.entry), zap.Error(err))
				return
			}

			decoded, err := decodeEntry(payload, inspectEnv.strict)
			if err != nil {
				bootstrapLogger.Error("entry decode err", zap.Error(err))
				return
			}
			out, err := sonic.MarshalIndent(decoded, "", "  ")
			if err != nil {
				bootstrapLogger.Error("entry marshal err", zap.Error(err))
				return
			}
			fmt.Println(string(out))
		},
	}

	rootCmd.AddCommand(inspectCommand)
	fs := inspectCommand.Flags()
	fs.StringVarP(&inspectEnv.entry, "entry", "e", "", "entry name to decode")
	fs.BoolVar(&inspectEnv.strict, "strict", false, "fail on decode errors")
}

// decodeEntry 尝试把条目字节按二进制 plist 解码
// 是 keyed archiver 归档时继续解到对象树，否则给出原始值树
func decodeEntry(payload []byte, strict bool) (any, error) {
	g, err := bplist.Parse(payload)
	if err != nil {
		// 非 plist 条目退回字节统计
		return map[string]any{"size": len(payload), "plist": false}, nil
	}
	if keyedarchive.IsArchive(g) {
		v, truncated, err := keyedarchive.Decode(g, strict)
		if err != nil {
			return nil, err
		}
		return map[string]any{"root": jsonValue(v), "truncated": truncated}, nil
	}
	return jsonValue(g.Root), nil
}

// jsonValue 把 plist 值树转成可 JSON 序列化的形式
func jsonValue(v any) any {
	switch t := v.(type) {
	case *bplist.Dict:
		m := make(map[string]any, t.Len())
		for i, key := range t.Keys {
			m[fmt.Sprint(key)] = jsonValue(t.Values[i])
		}
		return m
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, child := range t {
			m[k] = jsonValue(child)
		}
		return m
	case []any:
		out := make([]any, len(t))
		for i, child := range t {
			out[i] = jsonValue(child)
		}
		return out
	case bplist.UID:
		return uint64(t)
	case []byte:
		return map[string]any{"bytes": len(t)}
	default:
		return v
	}
}

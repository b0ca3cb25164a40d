package global

import (
	"github.com/haierkeys/margin-note-import-service/pkg/fileurl"
)

var (
	// 程序执行目录
	ROOT string
	Name string = "Margin Note Import Service"
)

func init() {

	filename := fileurl.GetExePath()
	ROOT = filename + "/"

}

package code

// 导入流程错误码
// 容器级错误为致命错误，条目/行级错误可恢复
var (
	Success = NewSuss(0, "success")

	// ErrorContainerFormat 容器结构损坏（找不到中央目录等），整个导入终止
	ErrorContainerFormat = NewError(30001, "container format invalid")
	// ErrorEntryExtraction 单个条目解压失败，跳过该条目
	ErrorEntryExtraction = NewError(30002, "archive entry extraction failed")
	// ErrorDatabaseShape 数据库基本形状校验失败（缺表），整个导入终止
	ErrorDatabaseShape = NewError(30003, "database shape invalid")
	// ErrorPlistDecode 二进制 plist 解码失败，默认降级为空结果
	ErrorPlistDecode = NewError(30004, "binary plist decode failed")
	// ErrorArchiverResolve keyed archiver 解析失败
	ErrorArchiverResolve = NewError(30005, "keyed archiver resolve failed")
	// ErrorRowMapping 单行映射失败，跳过该行
	ErrorRowMapping = NewError(30006, "row mapping failed")
	// ErrorGroupingInvariant 分组成员引用了未知记录，防御性断言
	ErrorGroupingInvariant = NewError(30007, "content group references unknown note")
	// ErrorReportWrite 报告输出失败
	ErrorReportWrite = NewError(30008, "import report write failed")
)

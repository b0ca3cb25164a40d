package domain

// ContentGroup 被判定为同一逻辑批注的一组笔记记录
// 不变量：每个成员 ID 都能解析到已知记录，主记录必须在成员列表中
type ContentGroup struct {
	// MasterID 主记录 ID，同时是分组标识
	MasterID string `json:"masterId"`
	// MemberIDs 成员 ID 集合，按输入顺序
	MemberIDs []string `json:"memberIds"`
	// Members 成员记录，按输入顺序
	Members []*NoteRecord `json:"-"`
	// Master 选出的主记录
	Master *NoteRecord `json:"master"`
	// Class 分组分类，继承自主记录的主题
	Class TopicClass `json:"class"`
}

// Contains 判断分组是否包含某个成员
func (g *ContentGroup) Contains(noteID string) bool {
	for _, id := range g.MemberIDs {
		if id == noteID {
			return true
		}
	}
	return false
}

// Package unionfind 提供基于整数下标的并查集实现
// 使用路径压缩与按秩合并，单次操作均摊近似常数
package unionfind

// Set 并查集，元素为 [0, n) 的整数下标
type Set struct {
	parent []int
	rank   []int
	count  int
}

// New 创建容量为 n 的并查集，初始时每个元素自成一组
func New(n int) *Set {
	s := &Set{
		parent: make([]int, n),
		rank:   make([]int, n),
		count:  n,
	}
	for i := range s.parent {
		s.parent[i] = i
	}
	return s
}

// Len 返回元素数量
func (s *Set) Len() int {
	return len(s.parent)
}

// Count 返回当前分组数量
func (s *Set) Count() int {
	return s.count
}

// Find 返回 x 所在分组的根，带路径压缩
func (s *Set) Find(x int) int {
	for s.parent[x] != x {
		s.parent[x] = s.parent[s.parent[x]]
		x = s.parent[x]
	}
	return x
}

// Union 合并 x 与 y 所在的分组，返回是否发生了合并
func (s *Set) Union(x, y int) bool {
	rx, ry := s.Find(x), s.Find(y)
	if rx == ry {
		return false
	}
	if s.rank[rx] < s.rank[ry] {
		rx, ry = ry, rx
	}
	s.parent[ry] = rx
	if s.rank[rx] == s.rank[ry] {
		s.rank[rx]++
	}
	s.count--
	return true
}

// Connected 判断 x 与 y 是否属于同一分组
func (s *Set) Connected(x, y int) bool {
	return s.Find(x) == s.Find(y)
}

// Groups returns every partition as index slices, ordered by the first
// member's index so the result is deterministic for a fixed input order.
// Groups 以分区首个成员的下标排序返回所有分组，结果对固定输入顺序确定
func (s *Set) Groups() [][]int {
	byRoot := make(map[int]int)
	var groups [][]int
	for i := 0; i < len(s.parent); i++ {
		root := s.Find(i)
		gi, ok := byRoot[root]
		if !ok {
			gi = len(groups)
			byRoot[root] = gi
			groups = append(groups, nil)
		}
		groups[gi] = append(groups[gi], i)
	}
	return groups
}

package unionfind

import (
	"reflect"
	"testing"
)

func TestUnionFind(t *testing.T) {
	s := New(5)

	if s.Count() != 5 {
		t.Fatalf("initial Count() = %d, want 5", s.Count())
	}

	if !s.Union(0, 1) {
		t.Error("Union(0,1) should merge")
	}
	if s.Union(1, 0) {
		t.Error("Union(1,0) should be a no-op")
	}
	s.Union(1, 2)

	if !s.Connected(0, 2) {
		t.Error("0 and 2 should be connected after transitive unions")
	}
	if s.Connected(0, 3) {
		t.Error("0 and 3 should not be connected")
	}
	if s.Count() != 3 {
		t.Errorf("Count() = %d, want 3", s.Count())
	}
}

func TestGroupsDeterministicOrder(t *testing.T) {
	s := New(6)
	// {0,3}, {1}, {2,4,5}
	s.Union(3, 0)
	s.Union(4, 2)
	s.Union(5, 4)

	want := [][]int{{0, 3}, {1}, {2, 4, 5}}
	if got := s.Groups(); !reflect.DeepEqual(got, want) {
		t.Errorf("Groups() = %v, want %v", got, want)
	}
}

func TestLargeChain(t *testing.T) {
	const n = 10000
	s := New(n)
	for i := 1; i < n; i++ {
		s.Union(i-1, i)
	}
	if s.Count() != 1 {
		t.Fatalf("Count() = %d, want 1", s.Count())
	}
	if !s.Connected(0, n-1) {
		t.Error("chain endpoints should be connected")
	}
}

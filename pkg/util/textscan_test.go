package util

import (
	"reflect"
	"testing"
)

func TestParseHashtags(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{
			name:    "half and full width markers",
			content: "#Example\nsome text\n＃OnlyDue",
			want:    []string{"Example", "OnlyDue"},
		},
		{
			name:    "deduplicated first-seen order",
			content: "#foo #bar #foo",
			want:    []string{"foo", "bar"},
		},
		{
			name:    "inline tag after text",
			content: "reading notes #philosophy today",
			want:    []string{"philosophy"},
		},
		{
			name:    "no tags",
			content: "plain text without markers",
			want:    nil,
		},
		{
			name:    "empty",
			content: "",
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseHashtags(tt.content)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseHashtags(%q) = %v, want %v", tt.content, got, tt.want)
			}
		})
	}
}

func TestParseNoteLinks(t *testing.T) {
	content := "see marginnote4app://note/ABC123 for details"
	links := ParseNoteLinks(content)
	if len(links) != 1 {
		t.Fatalf("expected 1 link, got %d", len(links))
	}
	if links[0].NoteID != "ABC123" {
		t.Errorf("NoteID = %q, want %q", links[0].NoteID, "ABC123")
	}
	if links[0].Raw != "marginnote4app://note/ABC123" {
		t.Errorf("Raw = %q", links[0].Raw)
	}

	// duplicate ids collapse to one link
	// 重复 ID 合并为一个链接
	links = ParseNoteLinks("marginnote4app://note/X1 and marginnote4app://note/X1")
	if len(links) != 1 {
		t.Errorf("expected dedupe to 1 link, got %d", len(links))
	}
}

func TestLooksLikeList(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"numbered", "1. first\n2. second\n3. third", true},
		{"bullets", "- one\n- two\nsome prose", true},
		{"roman", "i. intro\nii. body\n", true},
		{"fullwidth numbered", "（1）甲\n（2）乙", true},
		{"prose", "This is a paragraph.\nIt has two lines of prose.", false},
		{"mostly prose", "1. point\nline\nline\nline", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LooksLikeList(tt.text); got != tt.want {
				t.Errorf("LooksLikeList(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestIsTagOrLinkLine(t *testing.T) {
	if !IsTagOrLinkLine("#foo ＃bar") {
		t.Error("tag-only line should be recognized")
	}
	if !IsTagOrLinkLine("marginnote4app://note/ABC #tag") {
		t.Error("link+tag line should be recognized")
	}
	if IsTagOrLinkLine("#foo plus prose") {
		t.Error("line with prose should not be tag-only")
	}
}

func TestCountWords(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"hello world", 2},
		{"中文字符", 4},
		{"mix 中文 words", 4},
		{"ひらがなとカタカナ", 9},
		{"한글 text", 3},
		{"", 0},
	}
	for _, tt := range tests {
		if got := CountWords(tt.text); got != tt.want {
			t.Errorf("CountWords(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}

package util

import (
	"regexp"
	"unicode"
)

// latinWordRegex matches latin word runs for word counting
var latinWordRegex = regexp.MustCompile(`[A-Za-z0-9_'’-]+`)

// isCJK reports whether the rune is a CJK ideograph, kana or hangul
// isCJK 判断字符是否属于中日韩表意文字、假名或谚文
func isCJK(r rune) bool {
	return unicode.Is(unicode.Han, r) ||
		unicode.Is(unicode.Hiragana, r) ||
		unicode.Is(unicode.Katakana, r) ||
		unicode.Is(unicode.Hangul, r)
}

// CountWords counts words with CJK awareness: each CJK rune counts as one
// word, remaining latin text is counted by word-boundary runs.
// CountWords 统计词数：每个 CJK 字符计一个词，拉丁文字按词边界统计
func CountWords(text string) int {
	if text == "" {
		return 0
	}

	count := 0
	latin := make([]rune, 0, len(text))
	for _, r := range text {
		if isCJK(r) {
			count++
			latin = append(latin, ' ')
			continue
		}
		latin = append(latin, r)
	}
	count += len(latinWordRegex.FindAllString(string(latin), -1))
	return count
}

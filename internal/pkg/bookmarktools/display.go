package bookmarktools

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// ModelDisplayName 模型展示名
// gpt-3.5-turbo 固定为 GPT-3.5，其余按 - 和 _ 拆分后每段首字母大写
func ModelDisplayName(name string) string {
	if name == "gpt-3.5-turbo" {
		return "GPT-3.5"
	}

	words := strings.Split(strings.ReplaceAll(name, "_", "-"), "-")
	for i, w := range words {
		words[i] = capitalize(w)
	}
	return strings.Join(words, " ")
}

func capitalize(word string) string {
	if word == "" {
		return word
	}
	r, size := utf8.DecodeRuneInString(word)
	return string(unicode.ToUpper(r)) + strings.ToLower(word[size:])
}

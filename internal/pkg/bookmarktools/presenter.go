package bookmarktools

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"tutor/internal/model"
)

// 解析助手时间戳时依次尝试的格式
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"1/2/2006, 3:04:05 PM",
	"1/2/2006, 15:04:05",
}

type presented struct {
	bookmark model.Bookmark
	at       time.Time
	parsed   bool
	raw      string
}

// Present 过滤无效记录并按助手时间戳倒序排列，时间相同按 id 倒序
// 返回新切片，不修改输入
func Present(bookmarks []model.Bookmark) []model.Bookmark {
	entries := make([]presented, 0, len(bookmarks))
	for i := range bookmarks {
		if !IsValid(&bookmarks[i]) {
			continue
		}
		raw := bookmarks[i].Conversation.Assistant.Metadata.Timestamp
		at, ok := ParseTimestamp(raw)
		entries = append(entries, presented{bookmark: bookmarks[i], at: at, parsed: ok, raw: raw})
	}

	slices.SortStableFunc(entries, newestFirst)

	out := make([]model.Bookmark, len(entries))
	for i, e := range entries {
		out[i] = e.bookmark
	}
	return out
}

// ParseTimestamp 解析助手时间戳
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// newestFirst 可解析的时间戳排在无法解析的前面，后者按字符串比较
func newestFirst(a, b presented) int {
	switch {
	case a.parsed && b.parsed:
		if c := b.at.Compare(a.at); c != 0 {
			return c
		}
	case a.parsed != b.parsed:
		if a.parsed {
			return -1
		}
		return 1
	default:
		if c := strings.Compare(b.raw, a.raw); c != 0 {
			return c
		}
	}
	return cmp.Compare(b.bookmark.ID, a.bookmark.ID)
}

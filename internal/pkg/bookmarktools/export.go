package bookmarktools

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"

	"tutor/internal/model"
)

// ErrUnsupportedFormat 不支持的导出格式
var ErrUnsupportedFormat = errors.New("unsupported export format")

// 导出格式
const (
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
)

// RenderMarkdown 将收藏渲染为 Markdown，按传入顺序输出
func RenderMarkdown(bookmarks []model.Bookmark) string {
	var sb strings.Builder
	sb.WriteString("# Bookmarks\n\n")

	if len(bookmarks) == 0 {
		sb.WriteString("*No bookmarks yet.*\n")
		return sb.String()
	}

	for i := range bookmarks {
		b := &bookmarks[i]
		fmt.Fprintf(&sb, "## %d. Question\n\n", i+1)
		for _, line := range strings.Split(strings.TrimSpace(b.UserContent()), "\n") {
			sb.WriteString("> ")
			sb.WriteString(line)
			sb.WriteString("\n")
		}
		sb.WriteString("\n### Answer\n\n")
		sb.WriteString(strings.TrimSpace(b.AssistantContent()))
		sb.WriteString("\n\n")

		if meta := b.AssistantMetadata(); meta != nil {
			fmt.Fprintf(&sb, "*Model: %s • %s*\n\n", ModelDisplayName(meta.Model), meta.Timestamp)
		}
		if i < len(bookmarks)-1 {
			sb.WriteString("---\n\n")
		}
	}
	return sb.String()
}

// RenderHTML 通过 goldmark 将 Markdown 导出转换为 HTML 片段
func RenderHTML(bookmarks []model.Bookmark) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(RenderMarkdown(bookmarks)), &buf); err != nil {
		return "", fmt.Errorf("render bookmarks html: %w", err)
	}
	return buf.String(), nil
}

// Render 按格式导出，返回内容和 Content-Type
func Render(bookmarks []model.Bookmark, format string) (string, string, error) {
	switch strings.ToLower(format) {
	case "", FormatMarkdown, "md":
		return RenderMarkdown(bookmarks), "text/markdown; charset=utf-8", nil
	case FormatHTML:
		out, err := RenderHTML(bookmarks)
		if err != nil {
			return "", "", err
		}
		return out, "text/html; charset=utf-8", nil
	default:
		return "", "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

package bookmarktools

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"tutor/internal/model"
)

var (
	// ErrMigrationFailure 记录无法迁移为当前格式，调用方应丢弃该记录
	ErrMigrationFailure = errors.New("bookmark record cannot be migrated")
	// ErrCorruptCollection 存储的集合不是 JSON 数组
	ErrCorruptCollection = errors.New("bookmark collection is not a JSON array")
)

// UnknownModel 扁平旧格式没有模型信息时使用
const UnknownModel = "unknown"

// Shape 存储记录的格式
type Shape int

const (
	ShapeUnknown Shape = iota
	// ShapeCurrent {id, conversation: {user, assistant}}
	ShapeCurrent
	// ShapeMessages {id, timestamp, messages: [Message, Message]}
	ShapeMessages
	// ShapeFlat {id, question, answer, timestamp}
	ShapeFlat
)

func (s Shape) String() string {
	switch s {
	case ShapeCurrent:
		return "current"
	case ShapeMessages:
		return "messages"
	case ShapeFlat:
		return "flat"
	default:
		return "unknown"
	}
}

// Codec 收藏记录编解码器，负责旧格式迁移
type Codec struct {
	now func() time.Time
}

// NewCodec 创建编解码器，now 为 nil 时使用 time.Now
func NewCodec(now func() time.Time) *Codec {
	if now == nil {
		now = time.Now
	}
	return &Codec{now: now}
}

// DetectShape 判断原始记录属于哪种格式
func DetectShape(raw []byte) Shape {
	fields, ok := parseObject(raw)
	if !ok {
		return ShapeUnknown
	}
	return detect(fields)
}

// Decode 将任意一种存储格式解码为 Bookmark
// 不修改输入；对 Encode 的输出再次解码结果不变
func (c *Codec) Decode(raw []byte) (model.Bookmark, error) {
	fields, ok := parseObject(raw)
	if !ok {
		return model.Bookmark{}, fmt.Errorf("%w: record is not a JSON object", ErrMigrationFailure)
	}

	switch detect(fields) {
	case ShapeCurrent:
		return c.decodeCurrent(fields)
	case ShapeMessages:
		return c.decodeMessages(fields)
	case ShapeFlat:
		return c.decodeFlat(fields)
	default:
		return model.Bookmark{}, fmt.Errorf("%w: unrecognized record shape", ErrMigrationFailure)
	}
}

// Encode 总是输出当前格式 {id, conversation}
func Encode(b model.Bookmark) (json.RawMessage, error) {
	data, err := json.Marshal(b)
	if err != nil {
		return nil, fmt.Errorf("encode bookmark %d: %w", b.ID, err)
	}
	return data, nil
}

// EncodeAll 编码整个集合为 JSON 数组
func EncodeAll(bookmarks []model.Bookmark) ([]byte, error) {
	records := make([]json.RawMessage, 0, len(bookmarks))
	for _, b := range bookmarks {
		rec, err := Encode(b)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return json.Marshal(records)
}

// SplitCollection 将存储值拆分为原始记录，空值视为空集合
func SplitCollection(data string) ([]json.RawMessage, error) {
	trimmed := strings.TrimSpace(data)
	if trimmed == "" || trimmed == "null" {
		return nil, nil
	}
	var records []json.RawMessage
	if err := json.Unmarshal([]byte(trimmed), &records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptCollection, err)
	}
	return records, nil
}

func (c *Codec) decodeCurrent(fields map[string]json.RawMessage) (model.Bookmark, error) {
	id, present, err := parseID(fields["id"])
	if err != nil {
		return model.Bookmark{}, err
	}
	if !present {
		// 当前格式不补 id，交给校验器拒绝
		id = 0
	}

	var conv model.Conversation
	if err := json.Unmarshal(fields["conversation"], &conv); err != nil {
		return model.Bookmark{}, fmt.Errorf("%w: conversation: %v", ErrMigrationFailure, err)
	}
	return model.Bookmark{ID: id, Conversation: &conv}, nil
}

func (c *Codec) decodeMessages(fields map[string]json.RawMessage) (model.Bookmark, error) {
	id, err := c.legacyID(fields["id"])
	if err != nil {
		return model.Bookmark{}, err
	}

	var items []json.RawMessage
	if err := json.Unmarshal(fields["messages"], &items); err != nil {
		return model.Bookmark{}, fmt.Errorf("%w: messages: %v", ErrMigrationFailure, err)
	}

	// 两种旧写法顺序不同，按角色查找
	var user, assistant *model.Message
	for _, item := range items {
		var msg model.Message
		if err := json.Unmarshal(item, &msg); err != nil {
			return model.Bookmark{}, fmt.Errorf("%w: message: %v", ErrMigrationFailure, err)
		}
		switch msg.Role {
		case model.RoleUser:
			if user == nil {
				user = &msg
			}
		case model.RoleAssistant:
			if assistant == nil {
				assistant = &msg
			}
		}
	}
	if user == nil || assistant == nil {
		return model.Bookmark{}, fmt.Errorf("%w: messages lack a user or assistant entry", ErrMigrationFailure)
	}

	return model.Bookmark{
		ID:           id,
		Conversation: &model.Conversation{User: user, Assistant: assistant},
	}, nil
}

func (c *Codec) decodeFlat(fields map[string]json.RawMessage) (model.Bookmark, error) {
	id, err := c.legacyID(fields["id"])
	if err != nil {
		return model.Bookmark{}, err
	}

	var question, answer string
	if err := json.Unmarshal(fields["question"], &question); err != nil {
		return model.Bookmark{}, fmt.Errorf("%w: question: %v", ErrMigrationFailure, err)
	}
	if err := json.Unmarshal(fields["answer"], &answer); err != nil {
		return model.Bookmark{}, fmt.Errorf("%w: answer: %v", ErrMigrationFailure, err)
	}

	timestamp, ok := scalarString(fields["timestamp"])
	if !ok {
		timestamp = c.now().UTC().Format(time.RFC3339)
	}

	return model.Bookmark{
		ID: id,
		Conversation: &model.Conversation{
			User: &model.Message{Content: question, Role: model.RoleUser},
			Assistant: &model.Message{
				Content:  answer,
				Role:     model.RoleAssistant,
				Metadata: &model.Metadata{Model: UnknownModel, Timestamp: timestamp},
			},
		},
	}, nil
}

// legacyID 旧格式缺少 id 时使用当前毫秒时间
func (c *Codec) legacyID(raw json.RawMessage) (int64, error) {
	id, present, err := parseID(raw)
	if err != nil {
		return 0, err
	}
	if !present {
		return c.now().UnixMilli(), nil
	}
	return id, nil
}

func detect(fields map[string]json.RawMessage) Shape {
	if isPairObject(fields["conversation"]) {
		return ShapeCurrent
	}
	if isPairArray(fields["messages"]) {
		return ShapeMessages
	}
	if present(fields["question"]) && present(fields["answer"]) {
		return ShapeFlat
	}
	return ShapeUnknown
}

func parseObject(raw []byte) (map[string]json.RawMessage, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return nil, false
	}
	return fields, true
}

func present(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

func isPairObject(raw json.RawMessage) bool {
	if !present(raw) {
		return false
	}
	fields, ok := parseObject(raw)
	return ok && present(fields["user"]) && present(fields["assistant"])
}

func isPairArray(raw json.RawMessage) bool {
	if !present(raw) {
		return false
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return false
	}
	return len(items) == 2
}

// parseID 接受数字或数字字符串，小数部分截断
func parseID(raw json.RawMessage) (int64, bool, error) {
	if !present(raw) {
		return 0, false, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return 0, false, fmt.Errorf("%w: id: %v", ErrMigrationFailure, err)
	}

	var text string
	switch t := v.(type) {
	case json.Number:
		text = t.String()
	case string:
		text = strings.TrimSpace(t)
	default:
		return 0, false, fmt.Errorf("%w: id has type %T", ErrMigrationFailure, v)
	}

	if id, err := strconv.ParseInt(text, 10, 64); err == nil {
		return id, true, nil
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, false, fmt.Errorf("%w: id %q is not numeric", ErrMigrationFailure, text)
	}
	// float64(math.MaxInt64) 舍入为 2^63，超出 int64 的值不能直接转换
	if math.IsNaN(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false, fmt.Errorf("%w: id %q is out of range", ErrMigrationFailure, text)
	}
	return int64(f), true, nil
}

// scalarString 读取字符串或数字字段，缺失或为 null 时返回 false
func scalarString(raw json.RawMessage) (string, bool) {
	if !present(raw) {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, true
	}
	trimmed := bytes.TrimSpace(raw)
	if trimmed[0] == '{' || trimmed[0] == '[' {
		return "", false
	}
	return string(trimmed), true
}

package service

import (
	"context"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"tutor/internal/ai"
	"tutor/internal/config"
	"tutor/internal/model"
	"tutor/internal/pkg/conversation"
)

func TestChatService_Chat(t *testing.T) {
	Convey("对话服务", t, func() {
		ctx := context.Background()
		sessions := conversation.NewRegistry()
		svc := NewChatService(ai.NewClient(&config.AIConfig{}), sessions)

		Convey("模型列表包含 test_mode", func() {
			models := svc.Models()
			So(models.Default, ShouldEqual, "gpt-3.5-turbo")
			So(models.Models, ShouldContain, "test_mode")
		})

		Convey("test_mode 回复带元数据", func() {
			resp, err := svc.Chat(ctx, &model.ChatRequest{Content: "Hi", Model: ai.TestModeModel})
			So(err, ShouldBeNil)
			So(resp.Content, ShouldEqual, "Test response to: Hi")
			So(resp.Role, ShouldEqual, model.RoleAssistant)
			So(resp.Metadata.Model, ShouldEqual, "test_mode")
			So(resp.Metadata.Timestamp, ShouldNotBeEmpty)
			So(resp.Metadata.ResponseTime, ShouldNotBeEmpty)
		})

		Convey("空内容", func() {
			_, err := svc.Chat(ctx, &model.ChatRequest{Content: "   "})
			So(errors.Is(err, ai.ErrEmptyContent), ShouldBeTrue)
		})

		Convey("带会话时回复进入配对跟踪器", func() {
			sessionID := svc.CreateSession()
			_, err := svc.Chat(ctx, &model.ChatRequest{Content: "Hi", Model: ai.TestModeModel, SessionID: sessionID})
			So(err, ShouldBeNil)

			pair, err := svc.LatestPair(sessionID)
			So(err, ShouldBeNil)
			So(pair.State, ShouldEqual, "pair_complete")
			So(pair.Pair.User.Content, ShouldEqual, "Hi")
			So(pair.Pair.Assistant.Content, ShouldEqual, "Test response to: Hi")
			So(pair.Pair.Assistant.Metadata.Model, ShouldEqual, "test_mode")
		})

		Convey("模型调用失败时记录错误事件", func() {
			sessionID := svc.CreateSession()
			_, err := svc.Chat(ctx, &model.ChatRequest{Content: "Hi", Model: ai.DefaultModel, SessionID: sessionID})
			So(errors.Is(err, ErrChatFailed), ShouldBeTrue)
			So(errors.Is(err, ai.ErrProviderNotReady), ShouldBeTrue)

			pair, err := svc.LatestPair(sessionID)
			So(err, ShouldBeNil)
			So(pair.State, ShouldEqual, "awaiting_user")
			So(pair.Pair, ShouldBeNil)
		})

		Convey("未提供的模型直接拒绝，不记录用户消息", func() {
			sessionID := svc.CreateSession()
			_, err := svc.Chat(ctx, &model.ChatRequest{Content: "Hi", Model: "gpt-4-unlisted", SessionID: sessionID})
			So(errors.Is(err, ai.ErrUnknownModel), ShouldBeTrue)
			So(errors.Is(err, ErrChatFailed), ShouldBeFalse)

			pair, err := svc.LatestPair(sessionID)
			So(err, ShouldBeNil)
			So(pair.State, ShouldEqual, "awaiting_user")
		})

		Convey("会话不存在", func() {
			_, err := svc.Chat(ctx, &model.ChatRequest{Content: "Hi", SessionID: "missing"})
			So(errors.Is(err, ErrSessionNotFound), ShouldBeTrue)

			_, err = svc.LatestPair("missing")
			So(errors.Is(err, ErrSessionNotFound), ShouldBeTrue)
		})
	})
}

func TestChatService_RecordMessage(t *testing.T) {
	Convey("记录外部消息", t, func() {
		svc := NewChatService(ai.NewClient(&config.AIConfig{}), conversation.NewRegistry())
		sessionID := svc.CreateSession()

		So(svc.RecordMessage(sessionID, &model.RecordMessageRequest{Content: "Q", Role: "user"}), ShouldBeNil)
		So(svc.RecordMessage(sessionID, &model.RecordMessageRequest{
			Content:  "A",
			Role:     "Assistant",
			Metadata: &model.Metadata{Model: "m1", Timestamp: "2024-01-01T00:00:00Z"},
		}), ShouldBeNil)

		pair, _ := svc.LatestPair(sessionID)
		So(pair.Pair.Assistant.Metadata.Model, ShouldEqual, "m1")

		Convey("未知角色", func() {
			err := svc.RecordMessage(sessionID, &model.RecordMessageRequest{Content: "x", Role: "system"})
			So(errors.Is(err, conversation.ErrUnknownRole), ShouldBeTrue)
		})

		Convey("孤立的助手消息", func() {
			err := svc.RecordMessage(sessionID, &model.RecordMessageRequest{Content: "x", Role: "assistant"})
			So(errors.Is(err, conversation.ErrOrphanMessage), ShouldBeTrue)
		})

		Convey("删除会话", func() {
			So(svc.DeleteSession(sessionID), ShouldBeTrue)
			So(svc.DeleteSession(sessionID), ShouldBeFalse)
			So(errors.Is(svc.RecordMessage(sessionID, &model.RecordMessageRequest{Content: "Q", Role: "user"}), ErrSessionNotFound), ShouldBeTrue)
		})
	})
}

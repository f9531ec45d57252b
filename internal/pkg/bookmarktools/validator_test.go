package bookmarktools

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"tutor/internal/model"
)

func TestValidate(t *testing.T) {
	Convey("Validate 按顺序检查记录", t, func() {
		Convey("完整记录有效", func() {
			b := sampleBookmark()
			So(Validate(&b), ShouldBeNil)
			So(IsValid(&b), ShouldBeTrue)
		})

		Convey("nil、缺少 id 或 conversation", func() {
			So(Validate(nil), ShouldEqual, ErrMissingRecord)
			So(Validate(&model.Bookmark{ID: 1}), ShouldEqual, ErrMissingRecord)

			b := sampleBookmark()
			b.ID = 0
			So(Validate(&b), ShouldEqual, ErrMissingRecord)
		})

		Convey("缺少用户或助手消息", func() {
			b := sampleBookmark()
			b.Conversation.Assistant = nil
			So(Validate(&b), ShouldEqual, ErrMissingMessage)
		})

		Convey("用户消息为空白或角色错误", func() {
			b := sampleBookmark()
			b.Conversation.User.Content = "   "
			So(Validate(&b), ShouldEqual, ErrInvalidUser)

			b = sampleBookmark()
			b.Conversation.User.Role = model.RoleAssistant
			So(Validate(&b), ShouldEqual, ErrInvalidUser)
		})

		Convey("助手缺少 metadata 时即使内容完整也无效", func() {
			b := sampleBookmark()
			b.Conversation.Assistant.Metadata = nil
			So(b.UserContent(), ShouldNotBeEmpty)
			So(b.AssistantContent(), ShouldNotBeEmpty)
			So(Validate(&b), ShouldEqual, ErrInvalidAssistant)
			So(IsValid(&b), ShouldBeFalse)
		})

		Convey("助手角色为 error 时无效", func() {
			b := sampleBookmark()
			b.Conversation.Assistant.Role = model.RoleError
			So(Validate(&b), ShouldEqual, ErrInvalidAssistant)
		})

		Convey("metadata 缺少 timestamp 或 model", func() {
			b := sampleBookmark()
			b.Conversation.Assistant.Metadata.Timestamp = ""
			So(Validate(&b), ShouldEqual, ErrInvalidMetadata)

			b = sampleBookmark()
			b.Conversation.Assistant.Metadata.Model = ""
			So(Validate(&b), ShouldEqual, ErrInvalidMetadata)
		})

		Convey("短路：先报告靠前的失败", func() {
			b := sampleBookmark()
			b.Conversation.User.Content = ""
			b.Conversation.Assistant.Metadata = nil
			So(Validate(&b), ShouldEqual, ErrInvalidUser)
		})

		Convey("ValidatePair 不需要 id", func() {
			b := sampleBookmark()
			So(ValidatePair(b.Conversation), ShouldBeNil)
			So(ValidatePair(nil), ShouldEqual, ErrMissingRecord)
		})
	})
}

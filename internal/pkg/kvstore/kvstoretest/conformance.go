// Package kvstoretest 提供所有键值存储实现共用的行为测试
package kvstoretest

import (
	"context"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"tutor/internal/pkg/kvstore"
)

// Run 对 store 执行读写删除的基本行为检查，调用方负责关闭 store
func Run(t *testing.T, store kvstore.Store) {
	t.Helper()

	Convey("键值存储 "+store.Type()+" 行为一致", t, func() {
		ctx := context.Background()
		key := "kvstoretest-" + t.Name()
		_ = store.Remove(ctx, key)

		Convey("不存在的键返回 ok=false", func() {
			v, ok, err := store.Get(ctx, key)
			So(err, ShouldBeNil)
			So(ok, ShouldBeFalse)
			So(v, ShouldBeEmpty)
		})

		Convey("写入后可以读回，覆盖写入取最新值", func() {
			So(store.Set(ctx, key, `[{"id":1}]`), ShouldBeNil)
			v, ok, err := store.Get(ctx, key)
			So(err, ShouldBeNil)
			So(ok, ShouldBeTrue)
			So(v, ShouldEqual, `[{"id":1}]`)

			So(store.Set(ctx, key, `[]`), ShouldBeNil)
			v, _, _ = store.Get(ctx, key)
			So(v, ShouldEqual, `[]`)
		})

		Convey("删除后读不到，重复删除不报错", func() {
			So(store.Set(ctx, key, "x"), ShouldBeNil)
			So(store.Remove(ctx, key), ShouldBeNil)
			_, ok, err := store.Get(ctx, key)
			So(err, ShouldBeNil)
			So(ok, ShouldBeFalse)
			So(store.Remove(ctx, key), ShouldBeNil)
		})

		Convey("键中的特殊字符", func() {
			special := key + "/a b:c"
			So(store.Set(ctx, special, "v"), ShouldBeNil)
			v, ok, err := store.Get(ctx, special)
			So(err, ShouldBeNil)
			So(ok, ShouldBeTrue)
			So(v, ShouldEqual, "v")
			So(store.Remove(ctx, special), ShouldBeNil)
		})

		Reset(func() {
			_ = store.Remove(ctx, key)
		})
	})
}

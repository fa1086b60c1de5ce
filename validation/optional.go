package validation

import (
	"bytes"
	"encoding/json"
)

// Optional 三态字段：区分「请求中未出现」「显式 null」「有值」
// 部分更新时必须能区分“没传”和“传了要清空”，普通指针做不到这一点
type Optional[T any] struct {
	Set   bool // 字段出现在请求中
	Null  bool // 字段值为 JSON null
	Value T
}

// UnmarshalJSON 只有字段出现在 JSON 中才会被调用，借此记录 Set 状态
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(data, []byte("null")) {
		o.Null = true
		var zero T
		o.Value = zero
		return nil
	}
	return json.Unmarshal(data, &o.Value)
}

// MarshalJSON 输出时 unset/null 均序列化为 null
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Set || o.Null {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// Present 字段出现且非 null
func (o Optional[T]) Present() bool {
	return o.Set && !o.Null
}

// Some 构造有值的 Optional
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: v}
}

// None 构造 unset 的 Optional
func None[T any]() Optional[T] {
	return Optional[T]{}
}

// Cleared 构造显式清空（null）的 Optional
func Cleared[T any]() Optional[T] {
	return Optional[T]{Set: true, Null: true}
}

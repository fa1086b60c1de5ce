package validation

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moneybook/errs"
)

func amt(s string) Optional[json.Number] {
	return Some(json.Number(s))
}

func TestValidateAmount(t *testing.T) {
	// 合法金额原样返回
	for _, tc := range []struct {
		in   string
		want float64
	}{
		{"19.99", 19.99},
		{"0.01", 0.01},
		{"1", 1},
		{"99999999.99", 99999999.99},
		{"12.3", 12.3},
	} {
		got, err := ValidateAmount(amt(tc.in), true)
		require.NoError(t, err, tc.in)
		assert.True(t, got.Present())
		assert.Equal(t, tc.want, got.Value)
	}
}

func TestValidateAmount_Required(t *testing.T) {
	// 必填且未提供
	_, err := ValidateAmount(None[json.Number](), true)
	require.Error(t, err)
	assert.Equal(t, "金额不能为空", err.Error())
	assert.True(t, errs.IsValidation(err))

	// 必填且为0
	_, err = ValidateAmount(amt("0"), true)
	require.Error(t, err)
	assert.Equal(t, "金额不能为空", err.Error())

	// 非必填且未提供：返回 unset，不报错
	got, err := ValidateAmount(None[json.Number](), false)
	require.NoError(t, err)
	assert.False(t, got.Set)

	// JSON null 等同于未提供
	got, err = ValidateAmount(Cleared[json.Number](), false)
	require.NoError(t, err)
	assert.False(t, got.Present())
}

func TestValidateAmount_Invalid(t *testing.T) {
	cases := []struct {
		in  string
		msg string
	}{
		{"abc", "金额必须是有效数字"},
		{"-5", "金额必须大于零"},
		{"0.00", "金额必须大于零"},
		{"100000000", "金额不能超过 99,999,999.99"},
		{"123456789.00", "金额不能超过 99,999,999.99"},
		{"12.345", "金额最多保留2位小数"},
		{"0.001", "金额最多保留2位小数"},
	}
	for _, tc := range cases {
		_, err := ValidateAmount(amt(tc.in), true)
		require.Error(t, err, tc.in)
		assert.Equal(t, tc.msg, err.Error(), tc.in)
	}
}

func TestValidateAmount_DecimalsOnOriginalString(t *testing.T) {
	// 12.349 解析成 float 后可能被当作 12.35，但小数位检查必须在原始串上进行
	_, err := ValidateAmount(amt("12.349"), true)
	require.Error(t, err)
	assert.Equal(t, "金额最多保留2位小数", err.Error())
}

func TestValidateDescription(t *testing.T) {
	// 正常值返回 trim 结果
	got, err := ValidateDescription(Some("  咖啡  "), true)
	require.NoError(t, err)
	assert.Equal(t, "咖啡", got.Value)

	// 必填且未提供
	_, err = ValidateDescription(None[string](), true)
	require.Error(t, err)
	assert.Equal(t, "描述不能为空", err.Error())

	// 全空格
	_, err = ValidateDescription(Some("   "), true)
	require.Error(t, err)
	assert.Equal(t, "描述不能全为空格", err.Error())

	// 超长（按未 trim 的长度计）
	_, err = ValidateDescription(Some(strings.Repeat("a", 256)), true)
	require.Error(t, err)
	assert.Equal(t, "描述不能超过255个字符", err.Error())

	// 255 恰好合法
	got, err = ValidateDescription(Some(strings.Repeat("a", 255)), true)
	require.NoError(t, err)
	assert.Len(t, got.Value, 255)

	// 非必填未提供返回 unset
	got, err = ValidateDescription(None[string](), false)
	require.NoError(t, err)
	assert.False(t, got.Set)
}

func TestValidateNotes(t *testing.T) {
	// 未提供返回 unset
	got, err := ValidateNotes(None[string]())
	require.NoError(t, err)
	assert.False(t, got.Set)

	// 空字符串视为显式清空
	got, err = ValidateNotes(Some(""))
	require.NoError(t, err)
	assert.True(t, got.Set)
	assert.True(t, got.Null)

	// 显式 null 同样清空
	got, err = ValidateNotes(Cleared[string]())
	require.NoError(t, err)
	assert.True(t, got.Set)
	assert.True(t, got.Null)

	// 正常值 trim 后返回
	got, err = ValidateNotes(Some(" 备注 "))
	require.NoError(t, err)
	assert.Equal(t, "备注", got.Value)

	// 超长
	_, err = ValidateNotes(Some(strings.Repeat("x", 1001)))
	require.Error(t, err)
	assert.Equal(t, "备注不能超过1000个字符", err.Error())
}

func TestValidatorsAreDeterministic(t *testing.T) {
	// 幂等更新依赖校验结果的确定性
	for i := 0; i < 3; i++ {
		got, err := ValidateAmount(amt("19.99"), true)
		require.NoError(t, err)
		assert.Equal(t, 19.99, got.Value)

		notes, err := ValidateNotes(Some(""))
		require.NoError(t, err)
		assert.True(t, notes.Null)
	}
}

func TestOptionalUnmarshalJSON(t *testing.T) {
	type body struct {
		Amount Optional[json.Number] `json:"amount"`
		Notes  Optional[string]      `json:"notes"`
	}

	// 字段缺失
	var b body
	require.NoError(t, json.Unmarshal([]byte(`{}`), &b))
	assert.False(t, b.Amount.Set)
	assert.False(t, b.Notes.Set)

	// 显式 null 与有值
	b = body{}
	require.NoError(t, json.Unmarshal([]byte(`{"amount":19.99,"notes":null}`), &b))
	assert.True(t, b.Amount.Present())
	assert.Equal(t, "19.99", b.Amount.Value.String())
	assert.True(t, b.Notes.Set)
	assert.True(t, b.Notes.Null)
}

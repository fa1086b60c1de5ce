package validation

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"moneybook/errs"
)

// 金额上限：decimal(10,2) 能表示的最大值
const maxAmount = 100000000

// ValidateAmount 校验金额
// required 且缺失/为0时报错；未提供且非必填返回 unset；
// 小数位数在原始字符串上检查，避免浮点解析吞掉第3位小数
func ValidateAmount(raw Optional[json.Number], required bool) (Optional[float64], error) {
	s := strings.TrimSpace(raw.Value.String())

	if required && (!raw.Present() || s == "" || s == "0") {
		return None[float64](), errs.Validation("金额不能为空")
	}

	if !raw.Present() || s == "" {
		return None[float64](), nil
	}

	parsed, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
		return None[float64](), errs.Validation("金额必须是有效数字")
	}

	if parsed <= 0 {
		return None[float64](), errs.Validation("金额必须大于零")
	}

	if parsed >= maxAmount {
		return None[float64](), errs.Validation("金额不能超过 99,999,999.99")
	}

	if i := strings.IndexByte(s, '.'); i >= 0 && len(s)-i-1 > 2 {
		return None[float64](), errs.Validation("金额最多保留2位小数")
	}

	return Some(parsed), nil
}

// ValidateDescription 校验描述
// 长度按未 trim 的原始值检查，返回 trim 后的值
func ValidateDescription(raw Optional[string], required bool) (Optional[string], error) {
	if required && (!raw.Present() || raw.Value == "") {
		return None[string](), errs.Validation("描述不能为空")
	}

	if !raw.Present() {
		return None[string](), nil
	}

	trimmed := strings.TrimSpace(raw.Value)
	if required && trimmed == "" {
		return None[string](), errs.Validation("描述不能全为空格")
	}

	if len([]rune(raw.Value)) > 255 {
		return None[string](), errs.Validation("描述不能超过255个字符")
	}

	return Some(trimmed), nil
}

// ValidateNotes 校验备注（始终可选）
// 未提供返回 unset；传 null 或空字符串视为显式清空（存 NULL）
func ValidateNotes(raw Optional[string]) (Optional[string], error) {
	if !raw.Set {
		return None[string](), nil
	}
	if raw.Null {
		return Cleared[string](), nil
	}

	if len([]rune(raw.Value)) > 1000 {
		return None[string](), errs.Validation("备注不能超过1000个字符")
	}

	if raw.Value == "" {
		return Cleared[string](), nil
	}

	return Some(strings.TrimSpace(raw.Value)), nil
}

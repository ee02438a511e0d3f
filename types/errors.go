package types

import "github.com/pkg/errors"

// 错误定义
var (
	ErrInvalidParameter = errors.New("invalid parameter")    // S 或 C 不是正有限值
	ErrUnknownVariant   = errors.New("unknown variant")      // 未知积分器变体
	ErrInvalidValue     = errors.New("invalid numeric value") // 数值格式无法解析
)

package logic

import (
	"errors"
	"strings"
)

// 业务错误分类。handler 层据此映射 HTTP 状态码，除并发冲突外均不应重试。
var (
	// ErrNotFound 目标记录不存在
	ErrNotFound = errors.New("记录不存在")
	// ErrUnauthorized 操作者无权执行该变更
	ErrUnauthorized = errors.New("无权执行该操作")
	// ErrStateConflict 操作与实体当前状态不符
	ErrStateConflict = errors.New("当前状态不允许该操作")
	// ErrConcurrencyConflict 乐观锁版本不匹配，调用方可安全重试
	ErrConcurrencyConflict = errors.New("并发更新冲突，请重试")
	// ErrDuplicateRequest 同一活动同一类型已存在待处理/已批准的执行申请
	ErrDuplicateRequest = errors.New("已存在待处理的同类执行申请")
)

// ValidationError 入参校验错误，聚合全部字段问题后一次返回
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "参数校验失败: " + strings.Join(e.Fields, "; ")
}

// NewValidationError 创建校验错误
func NewValidationError(fields ...string) *ValidationError {
	return &ValidationError{Fields: fields}
}

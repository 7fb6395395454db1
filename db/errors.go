// db/errors.go
package db

import "fmt"

// 引擎错误分类：校验失败 / 找不到 / 冲突。
// 其它一律当存储错误处理（事务已回滚），controller 映射成 500。

type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

type NotFoundError struct {
	Kind string // "item" / "loan" / "template"
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Key)
}

type ConflictError struct {
	Msg string
}

func (e *ConflictError) Error() string { return e.Msg }

func validationf(format string, a ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, a...)}
}

func conflictf(format string, a ...any) error {
	return &ConflictError{Msg: fmt.Sprintf(format, a...)}
}

// Package errors 定义 Taoda 的错误分类。
// 调用方通过 errors.Is 与哨兵错误比较来判断错误类别，而不依赖错误文本。
package errors

import (
	"errors"
	"fmt"
)

// 标准库便捷别名，调用方只需导入本包
var (
	New    = errors.New
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	Join   = errors.Join
)

// 哨兵错误
var (
	// ErrInvalidArgument 必需参数缺失或非法
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotFound 引用的模板或数据文件不存在
	ErrNotFound = errors.New("not found")

	// ErrMalformedData 数据结构无法读取（如缺少表头行）
	ErrMalformedData = errors.New("malformed data")

	// ErrRender 单个文档渲染失败
	ErrRender = errors.New("render failed")

	// ErrBatchAborted 批量生成在单条记录边界之外失败
	ErrBatchAborted = errors.New("batch aborted")

	// ErrCanceled 操作被取消
	ErrCanceled = errors.New("operation canceled")
)

// ValidationError 参数校验失败
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid argument %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("invalid argument: %s", e.Message)
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidArgument
}

// NewValidationError 创建参数校验错误
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// NotFoundError 文件不存在
type NotFoundError struct {
	Resource string
	Path     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.Path)
}

// Is implements errors.Is support
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError 创建文件不存在错误
func NewNotFoundError(resource, path string) *NotFoundError {
	return &NotFoundError{Resource: resource, Path: path}
}

// MalformedDataError 数据文件格式或结构错误
type MalformedDataError struct {
	Path    string
	Message string
	Err     error
}

func (e *MalformedDataError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed data in %s: %s: %v", e.Path, e.Message, e.Err)
	}
	return fmt.Sprintf("malformed data in %s: %s", e.Path, e.Message)
}

func (e *MalformedDataError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *MalformedDataError) Is(target error) bool {
	return target == ErrMalformedData
}

// NewMalformedDataError 创建数据格式错误
func NewMalformedDataError(path, message string, err error) *MalformedDataError {
	return &MalformedDataError{Path: path, Message: message, Err: err}
}

// RenderError 单个文档渲染失败
type RenderError struct {
	OutputPath string
	Message    string
	Err        error
}

func (e *RenderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("render %s: %s: %v", e.OutputPath, e.Message, e.Err)
	}
	return fmt.Sprintf("render %s: %s", e.OutputPath, e.Message)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *RenderError) Is(target error) bool {
	return target == ErrRender
}

// NewRenderError 创建渲染错误
func NewRenderError(outputPath, message string, err error) *RenderError {
	return &RenderError{OutputPath: outputPath, Message: message, Err: err}
}

// BatchError 批量生成的致命错误，Completed 为中止前已尝试的记录数
type BatchError struct {
	Completed int
	Message   string
	Err       error
}

func (e *BatchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("batch aborted after %d records: %s: %v", e.Completed, e.Message, e.Err)
	}
	return fmt.Sprintf("batch aborted after %d records: %s", e.Completed, e.Message)
}

func (e *BatchError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *BatchError) Is(target error) bool {
	return target == ErrBatchAborted
}

// NewBatchError 创建批量中止错误
func NewBatchError(completed int, message string, err error) *BatchError {
	return &BatchError{Completed: completed, Message: message, Err: err}
}

// Package errors defines Bodhi's error taxonomy: a typed AppError that
// carries the HTTP status it maps to, following the same
// type+status-code+wrapping-constructor shape the rest of this codebase
// uses for domain errors.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppErrorType classifies an AppError for status mapping and logging.
type AppErrorType string

const (
	AliasNotFound        AppErrorType = "ALIAS_NOT_FOUND"
	AliasExists          AppErrorType = "ALIAS_EXISTS"
	ConversationNotFound AppErrorType = "CONVERSATION_NOT_FOUND"
	FileMissing          AppErrorType = "FILE_MISSING"
	TemplateMissing      AppErrorType = "TEMPLATE_MISSING"
	TemplateRender       AppErrorType = "TEMPLATE_RENDER"
	UnsupportedContent   AppErrorType = "UNSUPPORTED_CONTENT"
	UnsupportedRole      AppErrorType = "UNSUPPORTED_ROLE"
	EngineNotLoaded      AppErrorType = "ENGINE_NOT_LOADED"
	EngineInit           AppErrorType = "ENGINE_INIT"
	EngineCompletion     AppErrorType = "ENGINE_COMPLETION"
	EngineStop           AppErrorType = "ENGINE_STOP"
	BadRequest           AppErrorType = "BAD_REQUEST"
	InternalServer       AppErrorType = "INTERNAL_SERVER"
)

var statusByType = map[AppErrorType]int{
	AliasNotFound:        http.StatusNotFound,
	AliasExists:          http.StatusConflict,
	ConversationNotFound: http.StatusNotFound,
	FileMissing:          http.StatusNotFound,
	TemplateMissing:      http.StatusBadRequest,
	TemplateRender:       http.StatusBadRequest,
	UnsupportedContent:   http.StatusBadRequest,
	UnsupportedRole:      http.StatusBadRequest,
	EngineNotLoaded:      http.StatusServiceUnavailable,
	EngineInit:           http.StatusInternalServerError,
	EngineCompletion:     http.StatusInternalServerError,
	EngineStop:           http.StatusInternalServerError,
	BadRequest:           http.StatusBadRequest,
	InternalServer:       http.StatusInternalServerError,
}

// loggedWithBacktrace marks the kinds spec.md §7 requires the server to
// log with a captured stack frame, regardless of how they reach the HTTP
// boundary.
var loggedWithBacktrace = map[AppErrorType]bool{
	EngineInit:       true,
	EngineCompletion: true,
	EngineStop:       true,
}

// AppError is the error type returned across the serving runtime's
// package boundaries.
type AppError struct {
	Err        error
	Type       AppErrorType
	Message    string
	StatusCode int
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

// NeedsBacktrace reports whether this error's kind must be logged with a
// captured stack frame per spec.md §7.
func (e *AppError) NeedsBacktrace() bool { return loggedWithBacktrace[e.Type] }

// New constructs an AppError of the given kind.
func New(kind AppErrorType, message string) *AppError {
	return Wrap(kind, message, nil)
}

// Wrap constructs an AppError of the given kind around an underlying
// cause.
func Wrap(kind AppErrorType, message string, err error) *AppError {
	status, ok := statusByType[kind]
	if !ok {
		status = http.StatusInternalServerError
	}
	return &AppError{Err: err, Type: kind, Message: message, StatusCode: status}
}

// NewAliasNotFound builds the exact alias-not-found message the HTTP
// layer surfaces verbatim in scenario S2.
func NewAliasNotFound(alias string) *AppError {
	return New(AliasNotFound, fmt.Sprintf("alias '%s' not found", alias))
}

// NewAliasExists reports a duplicate alias name on POST /api/ui/models.
func NewAliasExists(alias string) *AppError {
	return New(AliasExists, fmt.Sprintf("alias '%s' already exists", alias))
}

// NewConversationNotFound reports an unknown conversation id to
// GET|POST|DELETE /api/ui/chats/:id.
func NewConversationNotFound(id string) *AppError {
	return New(ConversationNotFound, fmt.Sprintf("conversation '%s' not found", id))
}

// NewFileMissing builds the exact two-line message confirmed against
// original_source's interactive.rs test: the filename that could not be
// found and its snapshot directory relative to $HF_HOME.
func NewFileMissing(filename, dirname string) *AppError {
	msg := fmt.Sprintf(
		"file '%s' not found in $HF_HOME/%s.\nCheck Huggingface Home is set correctly using environment variable $HF_HOME or using command-line or settings file.",
		filename, dirname,
	)
	return New(FileMissing, msg)
}

// NewTemplateMissing reports that a tokenizer config carries neither a
// single chat_template string nor a "default"-named entry.
func NewTemplateMissing() *AppError {
	return New(TemplateMissing, "chat_template not found in tokenizer_config.json")
}

// NewTemplateRender wraps a template engine failure, prefixed per
// spec.md §4.2 with "syntax error:" or "runtime error:".
func NewTemplateRender(prefix string, err error) *AppError {
	return Wrap(TemplateRender, fmt.Sprintf("%s: %v", prefix, err), err)
}

// NewUnsupportedContent reports an image content part, which the prompt
// renderer cannot flatten to text.
func NewUnsupportedContent() *AppError {
	return New(UnsupportedContent, "unsupported message content: image parts are not supported")
}

// NewUnsupportedRole reports a tool or function role message.
func NewUnsupportedRole(role string) *AppError {
	return New(UnsupportedRole, fmt.Sprintf("unsupported message role: %s", role))
}

// NewEngineNotLoaded reports that a completion was requested while no
// engine is live and no params were supplied to load one.
func NewEngineNotLoaded() *AppError {
	return New(EngineNotLoaded, "no model is currently loaded")
}

// NewEngineInit wraps a native engine initialization failure.
func NewEngineInit(err error) *AppError {
	return Wrap(EngineInit, "failed to initialize inference engine", err)
}

// NewEngineCompletion wraps a native engine completion failure.
func NewEngineCompletion(err error) *AppError {
	return Wrap(EngineCompletion, "inference engine completion failed", err)
}

// NewEngineStop wraps a native engine shutdown failure.
func NewEngineStop(err error) *AppError {
	return Wrap(EngineStop, "failed to stop inference engine", err)
}

// NewBadRequest reports a malformed OpenAI payload or out-of-range value.
func NewBadRequest(message string) *AppError {
	return New(BadRequest, message)
}

// NewInternal wraps an error with no more specific kind.
func NewInternal(message string, err error) *AppError {
	return Wrap(InternalServer, message, err)
}

// As extracts the *AppError behind err, if any.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// StatusCode returns the HTTP status an error maps to, defaulting to 500
// for errors that are not an *AppError.
func StatusCode(err error) int {
	if appErr, ok := As(err); ok {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}

// IsNotFound reports whether err is an AliasNotFound or FileMissing
// AppError.
func IsNotFound(err error) bool {
	appErr, ok := As(err)
	return ok && (appErr.Type == AliasNotFound || appErr.Type == FileMissing)
}

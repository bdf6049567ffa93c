package apperr

import (
	"errors"
	"fmt"
)

const (
	MetaReason      = "reason"
	MetaStage       = "stage"
	MetaField       = "field"
	MetaAction      = "action"
	MetaDescription = "description"
	MetaFrameIndex  = "frame_index"
	MetaURL         = "url"

	StageBrowser     = "browser"
	StageFrames      = "frames"
	StageSecurity    = "security"
	StageResolve     = "resolve"
	StageNavigation  = "navigation"
	StageInteraction = "interaction"
	StageFallback    = "fallback"

	CodeInternal        = "internal"
	CodeInvalidArgument = "invalid_argument"
	CodeNotFound        = "not_found"
	CodeBrowserNotReady = "browser_not_ready"
	CodeActionFailed    = "action_failed"

	CodeElementNotFound      = "element_not_found"
	CodeFrameInaccessible    = "frame_inaccessible"
	CodeInterception         = "interception_detected"
	CodeStrategyTimeout      = "strategy_timeout"
	CodeActionBlocked        = "action_blocked"
	CodeConfirmationRequired = "confirmation_required"
	CodeConfirmationDenied   = "confirmation_denied"
	CodeRetryExhausted       = "retry_exhausted"
)

type Error struct {
	Op       string
	Code     string
	Err      error
	Metadata map[string]any
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}

	return e.Op
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Wrap(op, code string, err error, metadata map[string]any) error {
	if metadata == nil {
		metadata = make(map[string]any)
	}

	return &Error{
		Op:       op,
		Code:     code,
		Err:      err,
		Metadata: metadata,
	}
}

func WrapWithReason(op, code string, err error, reason string) error {
	return Wrap(op, code, err, map[string]any{
		MetaReason: reason,
	})
}

func WrapErrorWithReason(op, code, reason string) error {
	return Wrap(op, code, errors.New(reason), map[string]any{
		MetaReason: reason,
	})
}

func InvalidReqError(op, field string, err error) error {
	return Wrap(op, CodeInvalidArgument, err, map[string]any{
		MetaField:  field,
		MetaReason: "invalid_request",
	})
}

func NotFoundError(op string, err error) error {
	return Wrap(op, CodeNotFound, err, map[string]any{
		MetaReason: "not_found",
	})
}

// CodeOf returns the code of the outermost *Error in the chain, or
// CodeInternal when err carries none.
func CodeOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}

	return CodeInternal
}

func Is(err error, code string) bool {
	for err != nil {
		var appErr *Error
		if !errors.As(err, &appErr) {
			return false
		}

		if appErr.Code == code {
			return true
		}

		err = appErr.Err
	}

	return false
}

// Reason returns the MetaReason of the outermost *Error, if any.
func Reason(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		if reason, ok := appErr.Metadata[MetaReason].(string); ok {
			return reason
		}
	}

	return ""
}

package tracknumbers

import (
	"fmt"

	"github.com/pkg/errors"
)

type ErrorKind string

const (
	KindInvalidRequestShape ErrorKind = "INVALID_REQUEST_SHAPE"
	KindAllocation          ErrorKind = "ALLOCATION_ERROR"
	KindDuplicateIdentifier ErrorKind = "DUPLICATE_IDENTIFIER"
	KindPersistence         ErrorKind = "PERSISTENCE_ERROR"
	KindPublish             ErrorKind = "PUBLISH_ERROR"
)

// GenerationError — единственный тип ошибки, который пересекает границу
// пайплайна: человекочитаемая причина плюс тег, по которому внешний слой
// выбирает статус ответа.
type GenerationError struct {
	Kind  ErrorKind
	msg   string
	cause error
}

func (e *GenerationError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.msg, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.msg)
}

func (e *GenerationError) Unwrap() error {
	return e.cause
}

func genErr(kind ErrorKind, cause error, format string, args ...any) *GenerationError {
	return &GenerationError{Kind: kind, msg: fmt.Sprintf(format, args...), cause: cause}
}

// KindOf reports the error kind when err wraps a GenerationError.
func KindOf(err error) (ErrorKind, bool) {
	var ge *GenerationError
	if !errors.As(err, &ge) {
		return "", false
	}
	return ge.Kind, true
}

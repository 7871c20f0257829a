package engine

import (
	"errors"
	"fmt"
)

// Kind classifies transcript failures. Only InvalidURL and the chain's final
// exhaustion ever reach a caller; the rest are recovered inside the pipeline.
type Kind string

const (
	KindInvalidURL        Kind = "InvalidUrl"
	KindNoCaptions        Kind = "NoCaptionsAvailable"
	KindRateLimited       Kind = "RateLimited"
	KindSourceUnavailable Kind = "SourceUnavailable"
	KindFormatUnsupported Kind = "FormatUnsupported"
	KindTranslationFailed Kind = "TranslationFailed"
)

// Sentinel errors, one per kind. Match with errors.Is.
var (
	ErrInvalidURL        = errors.New("invalid youtube url")
	ErrNoCaptions        = errors.New("no captions available")
	ErrRateLimited       = errors.New("rate limited by upstream")
	ErrSourceUnavailable = errors.New("caption source unavailable")
	ErrFormatUnsupported = errors.New("caption format unsupported")
	ErrTranslationFailed = errors.New("translation failed")
)

var sentinels = map[Kind]error{
	KindInvalidURL:        ErrInvalidURL,
	KindNoCaptions:        ErrNoCaptions,
	KindRateLimited:       ErrRateLimited,
	KindSourceUnavailable: ErrSourceUnavailable,
	KindFormatUnsupported: ErrFormatUnsupported,
	KindTranslationFailed: ErrTranslationFailed,
}

// Error is a classified failure, optionally attributed to a caption source.
type Error struct {
	Kind   Kind
	Source string
	Err    error
}

// Errorf builds a classified error with a formatted cause.
func Errorf(kind Kind, source, format string, args ...any) *Error {
	return &Error{Kind: kind, Source: source, Err: fmt.Errorf(format, args...)}
}

func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Source != "" {
		return e.Source + ": " + msg
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the sentinel of the same kind.
func (e *Error) Is(target error) bool {
	return sentinels[e.Kind] == target
}

// KindOf returns the kind of err, or "" when err is not classified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	for k, s := range sentinels {
		if errors.Is(err, s) {
			return k
		}
	}
	return ""
}

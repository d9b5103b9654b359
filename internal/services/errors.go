package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrExternalTool  = errors.New("external tool error")
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("not found")
	ErrTimeout       = errors.New("timeout")
	ErrTransient     = errors.New("transient failure")
)

// Pipeline failure kinds. Every error leaving a pipeline stage carries exactly
// one of these markers so callers can tell them apart with errors.Is.
var (
	ErrAcquisition          = errors.New("acquisition error")
	ErrAudioProcessing      = errors.New("audio processing error")
	ErrTranscription        = errors.New("transcription failure")
	ErrEmptyTranscript      = errors.New("empty transcript")
	ErrIndexBuild           = errors.New("index build error")
	ErrEmbedding            = errors.New("embedding failure")
	ErrRetrievalUnavailable = errors.New("retrieval unavailable")
	ErrSynthesis            = errors.New("synthesis error")
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Describe maps an error to a short message suitable for showing to a user.
// Unclassified errors fall back to their own text.
func Describe(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrAcquisition):
		return "could not download audio for this video"
	case errors.Is(err, ErrAudioProcessing):
		return "could not read or split the downloaded audio"
	case errors.Is(err, ErrEmptyTranscript):
		return "transcription produced no text for this video"
	case errors.Is(err, ErrIndexBuild):
		return "could not build the search index for the transcript"
	case errors.Is(err, ErrEmbedding):
		return "the embedding provider could not embed the question"
	case errors.Is(err, ErrRetrievalUnavailable):
		return "no transcript context is available for this video"
	case errors.Is(err, ErrSynthesis):
		return "the language model could not produce an answer"
	case errors.Is(err, ErrConfiguration), errors.Is(err, ErrValidation):
		return "configuration problem: " + err.Error()
	case errors.Is(err, ErrNotFound):
		return err.Error()
	default:
		return err.Error()
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}

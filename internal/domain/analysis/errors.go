package analysis

import (
	"fmt"

	apperrors "github.com/yanqian/label-insight/pkg/errors"
)

// Error codes shared by every pipeline stage. The HTTP layer maps them to statuses.
const (
	CodeInvalidInput        = "invalid_input"
	CodeOCRFailed           = "ocr_failed"
	CodeClientNotConfigured = "client_not_configured"
	CodeServiceCallFailed   = "service_call_failed"
	CodeResponseNotJSON     = "response_not_json"
	CodeUnexpectedFailure   = "unexpected_failure"
)

const (
	// MessageResponseNotJSON is returned verbatim when the model reply does not decode.
	MessageResponseNotJSON = "Failed to parse AI response. The response was not valid JSON."

	messageOCR        = "OCR Error"
	messageUnexpected = "An unexpected error occurred while parsing the response"
)

// OCRError tags a recognition failure. Its text always starts with "OCR Error:".
func OCRError(err error) error {
	if err == nil {
		err = fmt.Errorf("unknown failure")
	}
	return apperrors.Wrap(CodeOCRFailed, messageOCR, err)
}

// InvalidInput rejects a request before the pipeline runs.
func InvalidInput(message string) error {
	return apperrors.Wrap(CodeInvalidInput, message, nil)
}

func notConfigured(provider string) error {
	return apperrors.Wrap(CodeClientNotConfigured, provider+" client not initialized. Check API key.", nil)
}

func serviceCallFailed(provider string, err error) error {
	return apperrors.Wrap(CodeServiceCallFailed, provider+" API error", err)
}

func unexpected(err error) error {
	return apperrors.Wrap(CodeUnexpectedFailure, messageUnexpected, err)
}

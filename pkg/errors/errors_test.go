package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWrapFormatsMessage(t *testing.T) {
	err := Wrap("ocr_failed", "OCR Error", errors.New("engine missing"))
	require.Equal(t, "OCR Error: engine missing", err.Error())

	bare := Wrap("client_not_configured", "Gemini client not initialized. Check API key.", nil)
	require.Equal(t, "Gemini client not initialized. Check API key.", bare.Error())
}

func TestCodeOfFollowsChain(t *testing.T) {
	inner := Wrap("response_not_json", "bad reply", nil)
	outer := fmt.Errorf("analyze: %w", inner)

	require.Equal(t, "response_not_json", CodeOf(outer))
	require.True(t, IsCode(outer, "response_not_json"))
	require.False(t, IsCode(outer, "ocr_failed"))
	require.False(t, IsCode(errors.New("plain"), ""))
	require.Empty(t, CodeOf(nil))
}

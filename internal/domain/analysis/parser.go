package analysis

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	apperrors "github.com/yanqian/label-insight/pkg/errors"
)

var fenceStripper = strings.NewReplacer("```json", "", "```", "")

// ParseResponse turns a model reply into a Result. Code fences anywhere in the
// reply are dropped before decoding. Every failure comes back as an AppError;
// the function does not panic.
func ParseResponse(raw string, logger *slog.Logger) (result Result, err error) {
	if logger == nil {
		logger = slog.Default()
	}
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = unexpected(fmt.Errorf("%v", r))
		}
	}()

	cleaned := fenceStripper.Replace(strings.TrimSpace(raw))

	value, decodeErr := decodeSingle(cleaned)
	if decodeErr != nil {
		logger.Warn("model reply is not valid json", "error", decodeErr, "raw", raw)
		return nil, apperrors.Wrap(CodeResponseNotJSON, MessageResponseNotJSON, nil)
	}

	obj, ok := value.(map[string]any)
	if !ok {
		return nil, unexpected(errors.New("AI response is not a JSON object"))
	}
	if reported, ok := obj["error"]; ok {
		return nil, apperrors.Wrap(CodeUnexpectedFailure, errorText(reported), nil)
	}
	return Result(obj), nil
}

func decodeSingle(s string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var value any
	if err := dec.Decode(&value); err != nil {
		return nil, err
	}
	var extra any
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		if err == nil {
			err = errors.New("extra data after json value")
		}
		return nil, err
	}
	return value, nil
}

func errorText(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	encoded, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(encoded)
}

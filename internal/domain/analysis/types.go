package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"strconv"
	"time"
)

// Entry points of the pipeline, used as metric and history labels.
const (
	SourceImage = "image"
	SourceText  = "text"
)

// Traffic light ratings.
const (
	LightGreen  = "Green"
	LightYellow = "Yellow"
	LightRed    = "Red"
)

// Profile is the snapshot of health attributes used to personalize a prompt.
// Missing keys and nil or blank values are ignored.
type Profile map[string]any

// Result is the model reply decoded without a schema. Numbers stay json.Number
// so re-encoding reproduces the reply exactly.
type Result map[string]any

// ImageRequest runs the full pipeline over an uploaded label photo on disk.
type ImageRequest struct {
	Path    string
	Profile Profile
}

// TextRequest runs the pipeline over label text the caller already has.
type TextRequest struct {
	Text    string
	Profile Profile
}

// Summary is the compact view of a Result kept in the history list.
type Summary struct {
	ProductName  string
	ProductType  string
	Score        int
	HasScore     bool
	TrafficLight string
}

// Preprocessor cleans a label photo for recognition. It never fails; a
// degraded image is still returned.
type Preprocessor interface {
	Preprocess(ctx context.Context, path string) *image.Gray
}

// TextExtractor recognizes text in a grayscale image.
type TextExtractor interface {
	Extract(ctx context.Context, img *image.Gray) (string, error)
}

// TokenCounter estimates the token size of a prompt.
type TokenCounter interface {
	Count(text string) int
}

// Observer receives pipeline telemetry.
type Observer interface {
	ObserveAnalysis(source, outcome string, elapsed time.Duration)
	ObservePromptTokens(tokens int)
}

// Summary extracts the fields shown in history. Missing or mistyped fields stay zero.
func (r Result) Summary() Summary {
	var out Summary
	if extraction, ok := r["extraction"].(map[string]any); ok {
		out.ProductName, _ = extraction["product_name"].(string)
		out.ProductType, _ = extraction["product_type"].(string)
	}
	if section, ok := r["analysis"].(map[string]any); ok {
		out.TrafficLight, _ = section["traffic_light"].(string)
		out.Score, out.HasScore = intValue(section["overall_safety_score"])
	}
	return out
}

// TrafficLightFor maps a 0-100 score to its rating.
func TrafficLightFor(score int) string {
	switch {
	case score >= 80:
		return LightGreen
	case score >= 50:
		return LightYellow
	default:
		return LightRed
	}
}

// CheckTrafficLight reports whether the score and rating in r disagree.
func CheckTrafficLight(r Result) error {
	summary := r.Summary()
	if !summary.HasScore {
		return fmt.Errorf("overall_safety_score missing or not an integer")
	}
	if summary.Score < 0 || summary.Score > 100 {
		return fmt.Errorf("overall_safety_score %d outside 0-100", summary.Score)
	}
	if want := TrafficLightFor(summary.Score); summary.TrafficLight != want {
		return fmt.Errorf("traffic_light %q does not match score %d (want %q)", summary.TrafficLight, summary.Score, want)
	}
	return nil
}

func intValue(v any) (int, bool) {
	switch n := v.(type) {
	case json.Number:
		parsed, err := strconv.Atoi(n.String())
		return parsed, err == nil
	case float64:
		if n == float64(int(n)) {
			return int(n), true
		}
	case int:
		return n, true
	}
	return 0, false
}

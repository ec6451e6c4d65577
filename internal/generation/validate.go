package generation

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
)

const (
	MinATSScore = 0
	MaxATSScore = 100
)

// ErrMalformedResponse is returned for any answer that is not a complete result object.
var ErrMalformedResponse = errors.New("malformed model response")

// Result is the structured answer of one optimization.
type Result struct {
	ATSScore           int      `json:"ats_score"`
	ATSRecommendations []string `json:"ats_recommendations"`
	OptimizedResume    string   `json:"optimized_resume"`
	CoverLetters       []string `json:"cover_letters"`
}

// rawResult uses pointers so absent keys can be told apart from zero values.
// The score is decoded as a float so whole numbers written as 85.0 are accepted.
type rawResult struct {
	ATSScore           *float64  `json:"ats_score"`
	ATSRecommendations *[]string `json:"ats_recommendations"`
	OptimizedResume    *string   `json:"optimized_resume"`
	CoverLetters       *[]string `json:"cover_letters"`
}

var (
	openingFence = regexp.MustCompile("(?i)^```(?:json)?\\s*")
	closingFence = regexp.MustCompile("\\s*```$")
)

// StripFence removes one leading ```json or ``` fence and one trailing ``` fence.
// Text without fences is returned trimmed and otherwise unchanged.
func StripFence(raw string) string {
	s := strings.TrimSpace(raw)
	s = openingFence.ReplaceAllString(s, "")
	s = closingFence.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// Validate parses a model answer into a Result. Every failure wraps ErrMalformedResponse;
// nothing is repaired or partially accepted.
func Validate(raw string) (Result, error) {
	cleaned := StripFence(raw)
	if cleaned == "" {
		return Result{}, fmt.Errorf("%w: empty response", ErrMalformedResponse)
	}

	var parsed rawResult
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	switch {
	case parsed.ATSScore == nil:
		return Result{}, missingField("ats_score")
	case parsed.ATSRecommendations == nil || *parsed.ATSRecommendations == nil:
		return Result{}, missingField("ats_recommendations")
	case parsed.OptimizedResume == nil:
		return Result{}, missingField("optimized_resume")
	case parsed.CoverLetters == nil || *parsed.CoverLetters == nil:
		return Result{}, missingField("cover_letters")
	}

	v := *parsed.ATSScore
	if math.Trunc(v) != v {
		return Result{}, fmt.Errorf("%w: ats_score %v is not a whole number", ErrMalformedResponse, v)
	}
	if v < MinATSScore || v > MaxATSScore {
		return Result{}, fmt.Errorf("%w: ats_score %v outside [%d,%d]", ErrMalformedResponse, v, MinATSScore, MaxATSScore)
	}
	score := int(v)
	if strings.TrimSpace(*parsed.OptimizedResume) == "" {
		return Result{}, fmt.Errorf("%w: optimized_resume is empty", ErrMalformedResponse)
	}
	if len(*parsed.CoverLetters) == 0 {
		return Result{}, fmt.Errorf("%w: cover_letters is empty", ErrMalformedResponse)
	}

	return Result{
		ATSScore:           score,
		ATSRecommendations: *parsed.ATSRecommendations,
		OptimizedResume:    *parsed.OptimizedResume,
		CoverLetters:       *parsed.CoverLetters,
	}, nil
}

func missingField(name string) error {
	return fmt.Errorf("%w: missing %s", ErrMalformedResponse, name)
}

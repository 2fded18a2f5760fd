package classify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/phrazzld/launchpad/internal/config"
	"github.com/phrazzld/launchpad/internal/domain"
)

// Classifier holds the marker words used by the text fallback.
type Classifier struct {
	english []string
	native  []string
}

// New creates a Classifier. English markers are lowercased once here and
// matched against lowercased text; native markers are matched verbatim.
func New(english, native []string) *Classifier {
	c := &Classifier{
		english: make([]string, 0, len(english)),
		native:  make([]string, 0, len(native)),
	}
	for _, m := range english {
		if m = strings.ToLower(strings.TrimSpace(m)); m != "" {
			c.english = append(c.english, m)
		}
	}
	for _, m := range native {
		if m = strings.TrimSpace(m); m != "" {
			c.native = append(c.native, m)
		}
	}
	return c
}

// NewFromConfig builds a Classifier from the classifier config section.
func NewFromConfig(cfg config.ClassifierConfig) *Classifier {
	return New(cfg.EnglishMarkers, cfg.NativeMarkers)
}

// Default returns a Classifier with the built-in marker lists.
func Default() *Classifier {
	return New(config.DefaultEnglishMarkers, config.DefaultNativeMarkers)
}

// IsCancellation reports whether v looks like cooperative cancellation.
// v may be an error, a string, or any other failure value.
func (c *Classifier) IsCancellation(v any) bool {
	if err, ok := v.(error); ok {
		if errors.Is(err, domain.ErrCancelled) || errors.Is(err, context.Canceled) {
			return true
		}
	}

	text := Text(v)
	if text == "" {
		return false
	}

	lower := strings.ToLower(text)
	for _, m := range c.english {
		if strings.Contains(lower, m) {
			return true
		}
	}
	for _, m := range c.native {
		if strings.Contains(text, m) {
			return true
		}
	}
	return false
}

// Text normalizes a failure value to its message. Values exposing a
// Message() method or a "message" map entry use that field; errors use
// Error(); everything else is formatted with fmt.
func Text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case interface{ Message() string }:
		return t.Message()
	case error:
		return t.Error()
	case map[string]any:
		if msg, ok := t["message"]; ok && msg != nil {
			return fmt.Sprint(msg)
		}
		return fmt.Sprint(t)
	case map[string]string:
		if msg, ok := t["message"]; ok {
			return msg
		}
		return fmt.Sprint(t)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

package sanitizer

import (
	"html"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

// MaxLabelLength is the rune limit applied by Label.
const MaxLabelLength = 64

var (
	strictPolicy *bluemonday.Policy
	initOnce     sync.Once
)

func initPolicies() {
	initOnce.Do(func() {
		strictPolicy = bluemonday.StrictPolicy()
	})
}

// PlainText strips all markup, decodes entities and collapses runs of
// whitespace into single spaces.
func PlainText(s string) string {
	initPolicies()
	s = html.UnescapeString(strictPolicy.Sanitize(s))
	return strings.Join(strings.Fields(s), " ")
}

// SpeechText prepares text for a MiIO TTS action, which rejects spaces:
// the text is reduced to plain text and every space becomes a comma.
func SpeechText(s string) string {
	return strings.ReplaceAll(PlainText(s), " ", ",")
}

// Label cleans a device alias or name for display and logs.
// Control characters are dropped and the result is cut at MaxLabelLength runes.
func Label(s string) string {
	s = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return ' '
		}
		return r
	}, PlainText(s))
	s = strings.Join(strings.Fields(s), " ")

	if utf8.RuneCountInString(s) <= MaxLabelLength {
		return s
	}
	return string([]rune(s)[:MaxLabelLength])
}

// Package respond renders accountability events into personality-voiced text
//
// Rendering is a pure function of its inputs: the same event, personality,
// locale and context always produce the same string, voice and emotion.
// Output may carry inline synthesis markers: bracketed tags such as [warm]
// select an emotion mid-utterance, angle-bracketed tags such as <chuckle>
// insert non-verbal sounds. Text-only channels strip both with StripVoiceTags
package respond

import (
	"fmt"
	"hash/fnv"
	"regexp"
	"strings"

	"golang.org/x/text/language"

	"stride/internal/platform/clock"
	perr "stride/internal/platform/errors"
	users "stride/internal/services/users/domain"
)

// EventKind names the accountability event being rendered
type EventKind string

// Event kinds
const (
	EventCheckin           EventKind = "checkin"
	EventCheckinWithStreak EventKind = "checkin_with_streak"
	EventCelebration       EventKind = "celebration"
	EventStruggle          EventKind = "struggle"
)

// Milestones are the streak lengths that earn a celebration
var Milestones = []int{3, 7, 14, 30, 60, 90, 180, 365}

// IsMilestone reports whether streak is a celebration point
func IsMilestone(streak int) bool {
	for _, m := range Milestones {
		if streak == m {
			return true
		}
	}
	return false
}

// Context carries the facts a template can mention
type Context struct {
	TrackerName       string
	Streak            int
	Milestone         int
	ConsecutiveMisses int
	Greeting          string
}

// Rendered is the generator's output: body text plus the synthesis parameters
// the voice collaborator needs
type Rendered struct {
	Body    string
	Voice   string
	Emotion string
}

// supported locales; anything else falls back to English
var matcher = language.NewMatcher([]language.Tag{
	language.English,
	language.Spanish,
})

// Render produces the event text for one user
func Render(kind EventKind, p users.Personality, style users.CelebrationStyle, locale string, c Context) (Rendered, error) {
	if !p.Valid() {
		return Rendered{}, perr.InvalidArgf("unknown personality %q", p)
	}
	tag, _ := language.MatchStrings(matcher, locale)
	base, _ := tag.Base()

	set, ok := templates[base.String()]
	if !ok {
		set = templates["en"]
	}
	variants, ok := set[key{kind, p}]
	if !ok || len(variants) == 0 {
		return Rendered{}, perr.InvalidArgf("no template for event %q", kind)
	}

	// Variant choice is a stable hash so rendering stays deterministic
	body := fmt.Sprintf(variants[pick(c, len(variants))],
		templateArgs(kind, c)...)

	if kind == EventCelebration {
		body = applyCelebrationStyle(body, style)
	}

	return Rendered{
		Body:    body,
		Voice:   voices[p],
		Emotion: emotions[key{kind, p}],
	}, nil
}

// pick selects a template variant deterministically from the context
func pick(c Context, n int) int {
	h := fnv.New32a()
	fmt.Fprintf(h, "%s|%d|%d", c.TrackerName, c.Streak, c.ConsecutiveMisses)
	return int(h.Sum32() % uint32(n))
}

func templateArgs(kind EventKind, c Context) []any {
	switch kind {
	case EventCheckin:
		return []any{c.Greeting, c.TrackerName}
	case EventCheckinWithStreak:
		return []any{c.Greeting, c.TrackerName, c.Streak}
	case EventCelebration:
		return []any{c.Milestone, c.TrackerName}
	case EventStruggle:
		return []any{c.TrackerName, c.ConsecutiveMisses}
	}
	return nil
}

// applyCelebrationStyle adjusts enthusiasm after template rendering
func applyCelebrationStyle(body string, style users.CelebrationStyle) string {
	switch style {
	case users.CelebrationQuiet:
		body = stripEmoji(body)
		body = strings.ReplaceAll(body, "!", ".")
	case users.CelebrationEnthusiastic:
		body += " [excited] <cheer>"
	}
	return body
}

var voiceTagRe = regexp.MustCompile(`\[[^\[\]]*\]|<[^<>]*>`)

// StripVoiceTags removes synthesis markers for text-only channels
func StripVoiceTags(s string) string {
	s = voiceTagRe.ReplaceAllString(s, "")
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimSpace(s)
}

var emojiRanges = []struct{ lo, hi rune }{
	{0x1F300, 0x1FAFF},
	{0x2600, 0x27BF},
	{0x2B00, 0x2BFF},
	{0xFE0F, 0xFE0F},
}

func stripEmoji(s string) string {
	return strings.Map(func(r rune) rune {
		for _, rg := range emojiRanges {
			if r >= rg.lo && r <= rg.hi {
				return -1
			}
		}
		return r
	}, s)
}

// GreetingFor returns the time-of-day salutation used in check-in templates
func GreetingFor(t clock.TimeOfDay) string {
	switch {
	case t.Hour < 5:
		return "Still up"
	case t.Hour < 12:
		return "Good morning"
	case t.Hour < 18:
		return "Good afternoon"
	default:
		return "Good evening"
	}
}

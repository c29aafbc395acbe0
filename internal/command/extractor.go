// Package command detects a wake/acknowledgment delimited voice command inside
// a continuously growing recognition stream.
package command

import (
	"fmt"
	"regexp"
	"strings"
)

// separator keeps independently fed recognition results from gluing words
// together. A plain space means a payload spanning feeds still reads as
// spoken text.
const separator = " "

var punctuationPattern = regexp.MustCompile(`[.,;:!?]`)

// Trigger is the compiled three-group pattern: wake token, payload, closing
// acknowledgment token.
type Trigger struct {
	re *regexp.Regexp
}

// NewTrigger compiles the trigger pattern for a wake word and an ack word.
// The wake word tolerates a missing leading consonant and a doubled trailing
// consonant before its final vowel, so "hanna" also matches "ana", "anna",
// and "hana". The ack word "thanks" also accepts "thank you".
func NewTrigger(wakeWord, ackWord string) (*Trigger, error) {
	wake := wakePattern(strings.ToLower(strings.TrimSpace(wakeWord)))
	if wake == "" {
		return nil, fmt.Errorf("empty wake word")
	}
	ack := ackPattern(strings.ToLower(strings.TrimSpace(ackWord)))
	if ack == "" {
		return nil, fmt.Errorf("empty ack word")
	}

	re, err := regexp.Compile(`(?P<wake>` + wake + `)(?P<payload>.*?)(?P<ack>` + ack + `)`)
	if err != nil {
		return nil, fmt.Errorf("compile trigger pattern: %w", err)
	}
	return &Trigger{re: re}, nil
}

// Match returns the first payload delimited by wake and ack tokens in text,
// already lower-cased and punctuation-stripped by the caller.
func (t *Trigger) Match(text string) (payload string, ok bool) {
	m := t.re.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[t.re.SubexpIndex("payload")]), true
}

// wakePattern loosens the wake word for ASR misspellings: the leading
// consonant becomes optional and doubled inner consonants collapse to an
// optional repeat ("hanna" -> `h?ann?a`).
func wakePattern(word string) string {
	if word == "" {
		return ""
	}

	runes := []rune(word)
	var b strings.Builder
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		quoted := regexp.QuoteMeta(string(r))
		if i == 0 && !isVowel(r) {
			b.WriteString(quoted + "?")
			continue
		}
		if i+1 < len(runes) && runes[i+1] == r {
			b.WriteString(quoted + quoted + "?")
			i++
			continue
		}
		b.WriteString(quoted)
	}
	return b.String()
}

// ackPattern accepts the configured ack word; for "thanks"-shaped words the
// "thank you" long form is accepted as well.
func ackPattern(word string) string {
	if word == "" {
		return ""
	}
	if base, found := strings.CutSuffix(word, "s"); found {
		return regexp.QuoteMeta(base) + `(?:s| you)`
	}
	return regexp.QuoteMeta(word)
}

func isVowel(r rune) bool {
	switch r {
	case 'a', 'e', 'i', 'o', 'u':
		return true
	default:
		return false
	}
}

// Extractor accumulates recognized text and emits the payload of the first
// trigger match. The steady state between commands is "no match"; that is not
// an error.
type Extractor struct {
	trigger *Trigger
	// maxRunes caps the accumulator between matches; 0 keeps it unbounded.
	maxRunes int

	accumulator strings.Builder
}

// NewExtractor builds an extractor around a compiled trigger.
func NewExtractor(trigger *Trigger, maxRunes int) *Extractor {
	return &Extractor{trigger: trigger, maxRunes: maxRunes}
}

// Feed appends newly recognized text and scans for the trigger. On a match it
// returns the trimmed command payload and resets the accumulator to empty; on
// no match the accumulator keeps growing.
func (e *Extractor) Feed(text string) (payload string, matched bool) {
	e.accumulator.WriteString(text)
	e.accumulator.WriteString(separator)
	e.enforceCap()

	scan := Normalize(e.accumulator.String())
	payload, matched = e.trigger.Match(scan)
	if !matched {
		return "", false
	}

	e.accumulator.Reset()
	return payload, true
}

// Pending returns the raw accumulated text awaiting a match.
func (e *Extractor) Pending() string {
	return e.accumulator.String()
}

// enforceCap drops the oldest half of the accumulator when it outgrows the
// configured bound, keeping a recent window a trigger can still land in.
func (e *Extractor) enforceCap() {
	if e.maxRunes <= 0 {
		return
	}
	runes := []rune(e.accumulator.String())
	if len(runes) <= e.maxRunes {
		return
	}
	kept := string(runes[len(runes)/2:])
	e.accumulator.Reset()
	e.accumulator.WriteString(kept)
}

// Normalize prepares recognized text for trigger scanning: sentence
// punctuation becomes spaces and everything is lower-cased.
func Normalize(text string) string {
	cleaned := punctuationPattern.ReplaceAllString(text, " ")
	return strings.ToLower(cleaned)
}

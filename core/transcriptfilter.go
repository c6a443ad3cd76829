package pipeline

import (
	"regexp"
	"strings"
)

// Recognizers routinely emit filler tokens, short homophone-prone words, and
// whole hallucinated sentences on near-silent audio. These filters sit between
// the recognizer and submission so that noise never reaches the agent.

var fillerWords = map[string]struct{}{
	"um":   {},
	"uh":   {},
	"uhm":  {},
	"hmm":  {},
	"hm":   {},
	"mhm":  {},
	"mm":   {},
	"ah":   {},
	"oh":   {},
	"er":   {},
	"erm":  {},
	"huh":  {},
	"like": {},
}

// homophoneRiskWords are short words recognizers frequently invent out of
// breaths and room tone. Alone they are discarded unless repeated shortly
// after, which is treated as the speaker insisting.
var homophoneRiskWords = map[string]struct{}{
	"you":    {},
	"yeah":   {},
	"yes":    {},
	"no":     {},
	"so":     {},
	"okay":   {},
	"ok":     {},
	"the":    {},
	"bye":    {},
	"hi":     {},
	"hey":    {},
	"thanks": {},
}

var hesitationTails = []string{"um", "uh", "uhm", "hmm", "well", "so", "like", "and"}

// hallucinationPatterns match stock phrases recognizers produce from silence,
// typically learned from video captions.
var hallucinationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^thanks? (?:you )?for watching`),
	regexp.MustCompile(`(?i)subscribe to (?:my|the|our) channel`),
	regexp.MustCompile(`(?i)^(?:please )?(?:like,? )?(?:comment,? )?(?:and )?subscribe`),
	regexp.MustCompile(`(?i)captions? by`),
	regexp.MustCompile(`(?i)^see you (?:in the )?next (?:video|time)`),
	regexp.MustCompile(`(?i)^https?://\S+$`),
	regexp.MustCompile(`(?i)^www\.\S+$`),
}

var wordSplitter = regexp.MustCompile(`\s+`)

func normalizeTranscript(text string) string {
	text = strings.TrimSpace(text)
	text = strings.Trim(text, ".,!?;:")
	return strings.ToLower(strings.TrimSpace(text))
}

// isFillerOnly reports whether the transcript consists entirely of filler
// tokens.
func isFillerOnly(text string) bool {
	normalized := normalizeTranscript(text)
	if normalized == "" {
		return true
	}

	for _, word := range wordSplitter.Split(normalized, -1) {
		word = strings.Trim(word, ".,!?;:")
		if word == "" {
			continue
		}
		if _, ok := fillerWords[word]; !ok {
			return false
		}
	}
	return true
}

// isHomophoneRisk reports whether the transcript is a single short word prone
// to misrecognition from non-speech audio.
func isHomophoneRisk(text string) bool {
	normalized := normalizeTranscript(text)
	if normalized == "" || strings.ContainsAny(normalized, " \t") {
		return false
	}

	_, ok := homophoneRiskWords[normalized]
	return ok
}

// isLikelyHallucination reports whether the transcript matches a known
// recognizer hallucination phrase.
func isLikelyHallucination(text string) bool {
	trimmed := strings.TrimSpace(text)
	for _, pattern := range hallucinationPatterns {
		if pattern.MatchString(trimmed) {
			return true
		}
	}
	return false
}

// endsWithHesitation reports whether the transcript trails off on a verbal
// hesitation marker, signalling the speaker is mid-thought.
func endsWithHesitation(text string) bool {
	normalized := normalizeTranscript(text)
	if normalized == "" {
		return false
	}

	words := wordSplitter.Split(normalized, -1)
	last := strings.Trim(words[len(words)-1], ".,!?;:")
	for _, tail := range hesitationTails {
		if last == tail {
			return true
		}
	}
	return false
}

// stripTriggerSuffix removes a trailing trigger word and reports which one it
// found. Trigger words only count at the very end of the transcript.
func stripTriggerSuffix(text string) (stripped string, trigger string) {
	trimmed := strings.TrimRight(strings.TrimSpace(text), ".,!?;: ")
	lowered := strings.ToLower(trimmed)

	for _, candidate := range []string{"wait", "over"} {
		if lowered == candidate {
			return "", candidate
		}
		if strings.HasSuffix(lowered, " "+candidate) {
			cut := strings.TrimSpace(trimmed[:len(trimmed)-len(candidate)])
			cut = strings.TrimRight(cut, ",;: ")
			return cut, candidate
		}
	}
	return strings.TrimSpace(text), ""
}

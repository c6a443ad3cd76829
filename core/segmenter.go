package pipeline

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Segment is a synthesizable unit of reply text. The sequence number is the
// ordering key for everything downstream.
type Segment struct {
	Sequence int
	Text     string
}

// pauseMarkup matches explicit pause annotations agents emit for pacing.
// They carry no spoken content and are removed before segmentation.
var pauseMarkup = regexp.MustCompile(`(?i)\[pause(?::\s*\d+\s*m?s)?\]|<break\b[^>]*/?>`)

const segmentClosers = `"')]}` + "”’»"

// sentenceSegmenter turns an incrementally growing reply into sentence-like
// segments. Short segments are held back and concatenated with the next one,
// and overly long punctuation-free runs are force-cut at word boundaries.
//
// Not safe for concurrent use; each reply stream owns one.
type sentenceSegmenter struct {
	tunables Tunables

	buffer     string
	held       string
	sequence   int
	emittedAny bool
}

func newSentenceSegmenter(tunables Tunables) *sentenceSegmenter {
	return &sentenceSegmenter{tunables: tunables}
}

// Feed appends a reply chunk and returns every segment it completes. Chunks
// can be arbitrarily small; a single rune at a time works.
func (s *sentenceSegmenter) Feed(chunk string) []Segment {
	s.buffer = pauseMarkup.ReplaceAllString(s.buffer+chunk, " ")

	var segments []Segment
	for {
		cut := sentenceBoundary(s.buffer)
		if cut < 0 {
			break
		}
		candidate := strings.TrimSpace(s.buffer[:cut])
		s.buffer = s.buffer[cut:]
		segments = append(segments, s.accept(candidate)...)
	}

	segments = append(segments, s.forceCutOverflow()...)
	return segments
}

// Flush emits whatever text remains once the reply has ended. Leftovers
// shorter than the flush minimum are discarded as non-spoken trailers.
func (s *sentenceSegmenter) Flush() []Segment {
	remainder := strings.TrimSpace(s.buffer)
	s.buffer = ""

	combined := joinSegmentText(s.held, remainder)
	s.held = ""

	if len(combined) < s.tunables.FlushMinLength {
		return nil
	}
	return []Segment{s.emit(combined)}
}

func (s *sentenceSegmenter) accept(candidate string) []Segment {
	if candidate == "" {
		return nil
	}

	combined := joinSegmentText(s.held, candidate)
	if len(combined) < s.tunables.MinSegmentLength {
		s.held = combined
		return nil
	}

	s.held = ""
	return []Segment{s.emit(combined)}
}

// forceCutOverflow cuts punctuation-free buffers that exceed the length
// ceiling. The first segment of a reply uses a tighter ceiling so audio
// starts sooner.
func (s *sentenceSegmenter) forceCutOverflow() []Segment {
	var segments []Segment
	for {
		ceiling := s.tunables.SegmentMaxLength
		if !s.emittedAny {
			ceiling = s.tunables.FirstSegmentMaxLength
		}
		if len(s.buffer) <= ceiling {
			return segments
		}

		cut := forceCutPoint(s.buffer, ceiling)
		if cut <= 0 {
			return segments
		}

		candidate := strings.TrimSpace(s.buffer[:cut])
		s.buffer = s.buffer[cut:]
		segments = append(segments, s.accept(candidate)...)
	}
}

func (s *sentenceSegmenter) emit(text string) Segment {
	segment := Segment{Sequence: s.sequence, Text: text}
	s.sequence++
	s.emittedAny = true
	return segment
}

func joinSegmentText(held, text string) string {
	switch {
	case held == "":
		return text
	case text == "":
		return held
	default:
		return held + " " + text
	}
}

// sentenceBoundary returns the index just past a completed sentence, or -1.
// A sentence completes at terminal punctuation plus any closing quotes or
// brackets, but only once a following whitespace character confirms the run
// has ended. This keeps abbreviations like "3.14" intact and avoids splitting
// before a trailing quote arrives.
func sentenceBoundary(text string) int {
	for i := 0; i < len(text); i++ {
		if text[i] != '.' && text[i] != '!' && text[i] != '?' {
			continue
		}

		j := i + 1
		for j < len(text) {
			r, width := utf8.DecodeRuneInString(text[j:])
			if r != '.' && r != '!' && r != '?' && !strings.ContainsRune(segmentClosers, r) {
				break
			}
			j += width
		}

		if j >= len(text) {
			return -1
		}
		if text[j] == ' ' || text[j] == '\t' || text[j] == '\n' || text[j] == '\r' {
			return j
		}
		i = j
	}
	return -1
}

// forceCutPoint finds the last whitespace before the ceiling that is not
// inside an unclosed markup tag, so force-cutting never splits an annotation
// in half.
func forceCutPoint(text string, ceiling int) int {
	limit := ceiling
	if limit > len(text) {
		limit = len(text)
	}

	cut := -1
	for i := 0; i < limit; i++ {
		if text[i] == ' ' || text[i] == '\t' || text[i] == '\n' {
			if !insideUnclosedTag(text[:i]) {
				cut = i
			}
		}
	}
	return cut
}

func insideUnclosedTag(prefix string) bool {
	if open := strings.LastIndexByte(prefix, '<'); open >= 0 && !strings.ContainsRune(prefix[open:], '>') {
		return true
	}
	if open := strings.LastIndexByte(prefix, '['); open >= 0 && !strings.ContainsRune(prefix[open:], ']') {
		return true
	}
	return false
}

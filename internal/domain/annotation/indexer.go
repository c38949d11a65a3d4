package annotation

import (
	"strings"
	"unicode"

	"github.com/docsight/docsight/internal/domain/analysis"
	"github.com/docsight/docsight/internal/infrastructure/monitoring/logging"
)

// legacyPhraseWords is how many leading words of a legacy finding form its
// search phrase.
const legacyPhraseWords = 5

// Indexer turns the finding collections of an analysis result into validated
// annotations over the document text.
type Indexer struct {
	logger logging.Logger
}

// NewIndexer constructs an Indexer.
func NewIndexer(logger logging.Logger) *Indexer {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Indexer{logger: logger.Named("indexer")}
}

// Index produces one Annotation per finding in res, insights first, risks
// second.  Findings whose range cannot be validated or located come back
// unresolved rather than being dropped.
func (ix *Indexer) Index(res *analysis.Result) []Annotation {
	if res == nil {
		return nil
	}
	out := make([]Annotation, 0, len(res.Analysis.KeyPoints)+len(res.Analysis.RiskFlags))
	for i, f := range res.Analysis.KeyPoints {
		out = append(out, ix.indexOne(KindInsight, i, f, res.DocumentText))
	}
	for i, f := range res.Analysis.RiskFlags {
		out = append(out, ix.indexOne(KindRisk, i, f, res.DocumentText))
	}
	return out
}

func (ix *Indexer) indexOne(kind Kind, index int, f analysis.Finding, text string) Annotation {
	ann := Annotation{
		ID:          AnnotationID(kind, index),
		Kind:        kind,
		SourceIndex: index,
		DisplayText: f.Text,
		SourceQuote: f.Quote,
	}
	if kind == KindRisk {
		ann.Category = RiskCategory(f.Text)
		ann.Severity = RiskSeverity(f.Text)
	} else {
		ann.Category = InsightCategory(f.Text)
	}

	switch f.Kind {
	case analysis.FindingStructured:
		ann.Range = ix.resolveStructured(ann.ID, f, text)
	default:
		ann.Range = ix.resolveLegacy(ann.ID, kind, f.Text, text)
	}
	return ann
}

// resolveStructured validates a backend-resolved position, falling back to a
// quote search when the backend did not locate the quote itself.
func (ix *Indexer) resolveStructured(id string, f analysis.Finding, text string) Range {
	if f.Position.Found {
		r := Range{Start: f.Position.Start, End: f.Position.End, Resolved: true}
		if !r.ValidFor(len(text)) {
			ix.logger.Warn("structured finding has invalid range, leaving unresolved",
				logging.String("annotation_id", id),
				logging.Int("start", r.Start),
				logging.Int("end", r.End),
				logging.Int("text_len", len(text)))
			return Range{}
		}
		return r
	}
	if f.Quote != "" {
		if start, end, ok := findQuote(text, f.Quote); ok {
			return Range{Start: start, End: end, Resolved: true}
		}
		ix.logger.Debug("quote not found in document text",
			logging.String("annotation_id", id))
	}
	return Range{}
}

// resolveLegacy derives a search phrase from the first few words of the
// finding text and locates it case-insensitively in the document.
func (ix *Indexer) resolveLegacy(id string, kind Kind, findingText, text string) Range {
	phrase := legacyPhrase(findingText, kind)
	if phrase == "" || text == "" {
		return Range{}
	}
	offset := findCaseInsensitive(text, phrase)
	if offset < 0 {
		ix.logger.Debug("legacy phrase not found in document text",
			logging.String("annotation_id", id),
			logging.String("phrase", phrase))
		return Range{}
	}
	return Range{Start: offset, End: offset + len(phrase), Resolved: true}
}

// legacyPhrase extracts the search phrase for a legacy finding: up to the
// first five words, with leading marker glyphs stripped from risk items.
func legacyPhrase(text string, kind Kind) string {
	if kind == KindRisk {
		text = strings.TrimLeftFunc(text, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
	}
	words := strings.Fields(text)
	if len(words) > legacyPhraseWords {
		words = words[:legacyPhraseWords]
	}
	return strings.Join(words, " ")
}

// lowerASCII folds A-Z to a-z without touching any other byte, so offsets in
// the folded string are valid offsets in the original.
func lowerASCII(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		b.WriteByte(c)
	}
	return b.String()
}

// findCaseInsensitive returns the byte offset of the first case-insensitive
// occurrence of phrase in text, or -1.
func findCaseInsensitive(text, phrase string) int {
	return strings.Index(lowerASCII(text), lowerASCII(phrase))
}

// findQuote locates a supporting quote in the document text.  An exact
// case-insensitive match is preferred; quotes longer than three words fall
// back to a window match spanning from the first two words to the next
// occurrence of the last two.
func findQuote(text, quote string) (start, end int, ok bool) {
	quote = strings.TrimSpace(quote)
	if quote == "" {
		return 0, 0, false
	}
	if i := findCaseInsensitive(text, quote); i >= 0 {
		return i, i + len(quote), true
	}

	words := strings.Fields(quote)
	if len(words) <= 3 {
		return 0, 0, false
	}
	head := words[0] + " " + words[1]
	tail := words[len(words)-2] + " " + words[len(words)-1]

	lowText := lowerASCII(text)
	hi := strings.Index(lowText, lowerASCII(head))
	if hi < 0 {
		return 0, 0, false
	}
	rest := lowText[hi+len(head):]
	ti := strings.Index(rest, lowerASCII(tail))
	if ti < 0 {
		return 0, 0, false
	}
	return hi, hi + len(head) + ti + len(tail), true
}

package core

import "strings"

// Tag delimiter convention: "<classifier>_<value>_<source>" for sentiment,
// "harsh_<source>" for harshness, anything else is a bare source
const (
	TagSeparator = "_"

	ClassifierHarsh     = "harsh"
	ClassifierSentiment = "sentiment"
)

// Tag is the decoded form of a particle tag
type Tag struct {
	Classifier string
	Value      string
	Source     string
}

// ParseTag splits a tag string using the delimiter convention
// Sources may themselves contain the separator (truth_social)
func ParseTag(s string) Tag {
	if rest, ok := strings.CutPrefix(s, ClassifierHarsh+TagSeparator); ok && rest != "" {
		return Tag{Classifier: ClassifierHarsh, Source: rest}
	}
	if rest, ok := strings.CutPrefix(s, ClassifierSentiment+TagSeparator); ok {
		value, source, found := strings.Cut(rest, TagSeparator)
		if found && value != "" && source != "" {
			return Tag{Classifier: ClassifierSentiment, Value: value, Source: source}
		}
	}
	return Tag{Source: s}
}

// String encodes the tag back into its delimited form
func (t Tag) String() string {
	switch t.Classifier {
	case ClassifierHarsh:
		return ClassifierHarsh + TagSeparator + t.Source
	case ClassifierSentiment:
		if t.Value == "" {
			return t.Source
		}
		return ClassifierSentiment + TagSeparator + t.Value + TagSeparator + t.Source
	default:
		return t.Source
	}
}

// BuildTag encodes classifier/value/source, falling back to the bare source
func BuildTag(classifier, value, source string) string {
	return Tag{Classifier: classifier, Value: value, Source: source}.String()
}

package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTag(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Tag
	}{
		{"bare source", "truth_social", Tag{Source: "truth_social"}},
		{"harsh", "harsh_truth_social", Tag{Classifier: ClassifierHarsh, Source: "truth_social"}},
		{"sentiment", "sentiment_negative_rev", Tag{Classifier: ClassifierSentiment, Value: "negative", Source: "rev"}},
		{"sentiment compound source", "sentiment_positive_truth_social", Tag{Classifier: ClassifierSentiment, Value: "positive", Source: "truth_social"}},
		{"harsh without source", "harsh_", Tag{Source: "harsh_"}},
		{"sentiment without source", "sentiment_positive", Tag{Source: "sentiment_positive"}},
		{"empty", "", Tag{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseTag(tt.in))
		})
	}
}

func TestTagRoundTrip(t *testing.T) {
	for _, s := range []string{"truth_social", "harsh_truth_social", "sentiment_neutral_american_presidency"} {
		assert.Equal(t, s, ParseTag(s).String())
	}
}

func TestBuildTag(t *testing.T) {
	assert.Equal(t, "harsh_rev", BuildTag(ClassifierHarsh, "", "rev"))
	assert.Equal(t, "sentiment_positive_rev", BuildTag(ClassifierSentiment, "positive", "rev"))
	assert.Equal(t, "rev", BuildTag(ClassifierSentiment, "", "rev"))
	assert.Equal(t, "rev", BuildTag("", "", "rev"))
}

func TestNewParticleDefaults(t *testing.T) {
	p := NewParticle(7, "hello", "rev")
	assert.Equal(t, uint64(7), p.ID)
	assert.Equal(t, 1.0, p.Size)
	assert.Zero(t, p.Opacity)
	assert.Zero(t, p.Age)
	assert.Equal(t, Scratch{}, p.Scratch)
}

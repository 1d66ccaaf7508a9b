package render

import (
	"hash/fnv"

	"github.com/lixenwraith/firehose/core"
)

// Tag colors
var (
	RGBHarsh     = RGB{255, 70, 70}
	RGBPositive  = RGB{80, 220, 100}
	RGBNegative  = RGB{230, 80, 80}
	RGBNeutral   = RGB{160, 160, 170}
	RGBSentiment = RGB{230, 200, 80}
	RGBStatusBar = RGB{40, 42, 58}
	RGBStatusFg  = RGB{255, 255, 255}
)

// sourceHues are assigned to sources by name hash
var sourceHues = []RGB{
	{122, 162, 247}, // blue
	{125, 207, 255}, // cyan
	{187, 154, 247}, // purple
	{224, 175, 104}, // orange
	{158, 206, 106}, // green
	{255, 158, 100}, // peach
	{115, 218, 202}, // teal
	{247, 118, 142}, // pink
}

// Appearance is the resolved look of a tag
type Appearance struct {
	Color RGB
	Bold  bool
}

// TagAppearance maps a tag to its color family
// harsh tags are bold red, sentiment tags follow the value, bare sources hash to a hue
func TagAppearance(tag string) Appearance {
	if tag == "" {
		return Appearance{Color: RGBForeground}
	}

	t := core.ParseTag(tag)
	switch t.Classifier {
	case core.ClassifierHarsh:
		return Appearance{Color: RGBHarsh, Bold: true}
	case core.ClassifierSentiment:
		switch t.Value {
		case "positive":
			return Appearance{Color: RGBPositive}
		case "negative":
			return Appearance{Color: RGBNegative}
		case "neutral":
			return Appearance{Color: RGBNeutral}
		}
		return Appearance{Color: RGBSentiment}
	}
	return Appearance{Color: SourceColor(t.Source)}
}

// SourceColor returns a stable hue for a source name
func SourceColor(source string) RGB {
	if source == "" {
		return RGBForeground
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(source))
	return sourceHues[h.Sum32()%uint32(len(sourceHues))]
}

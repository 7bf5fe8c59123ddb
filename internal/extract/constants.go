package extract

// Confidence each strategy reports when it yields at least one event.
const (
	TableConfidence      = 0.95
	StructuralConfidence = 0.85
	TextConfidence       = 0.7
)

// Minimum confidence the arbitrator accepts from each strategy.
//
// TextConfidence is below TextThreshold, so the text strategy is never
// selected. That is current behavior; changing either number changes which
// documents produce events.
const (
	TableThreshold      = 0.9
	StructuralThreshold = 0.8
	TextThreshold       = 0.8
)

// requiredHeaders must each appear in some header cell of a schedule table.
var requiredHeaders = []string{"class", "days", "start", "end", "location"}

// containerTags are the elements considered as event cards.
var containerTags = []string{"div", "li"}

const (
	// minCardChildren is the fewest child elements a card may have.
	minCardChildren = 3
	// textWindow is the number of consecutive lines evaluated together.
	textWindow = 3
)

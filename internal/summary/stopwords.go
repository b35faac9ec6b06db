package summary

// stopwords filters filler terms out of the keyword ranking. Tokens
// shorter than three characters never reach this table.
var stopwords = map[string]struct{}{
	"about": {}, "after": {}, "all": {}, "also": {}, "and": {},
	"any": {}, "are": {}, "because": {}, "been": {}, "before": {},
	"being": {}, "but": {}, "can": {}, "could": {}, "did": {},
	"does": {}, "doing": {}, "each": {}, "for": {}, "from": {},
	"had": {}, "has": {}, "have": {}, "having": {}, "her": {},
	"here": {}, "him": {}, "his": {}, "how": {}, "into": {},
	"its": {}, "just": {}, "like": {}, "more": {}, "most": {},
	"not": {}, "now": {}, "only": {}, "other": {}, "our": {},
	"out": {}, "over": {}, "really": {}, "she": {}, "some": {},
	"such": {}, "than": {}, "that": {}, "the": {}, "their": {},
	"them": {}, "then": {}, "there": {}, "these": {}, "they": {},
	"thing": {}, "things": {}, "this": {}, "those": {}, "through": {},
	"very": {}, "was": {}, "well": {}, "were": {}, "what": {},
	"when": {}, "where": {}, "which": {}, "while": {}, "who": {},
	"will": {}, "with": {}, "would": {}, "you": {}, "your": {},
}

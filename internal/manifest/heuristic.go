package manifest

import "strings"

// returnPrefixes are the conventional name prefixes that mark a function as
// an accessor, predicate or calculator, and therefore likely to return a
// value. "Caculate" appears as-is in historical dumps; both spellings stay.
var returnPrefixes = []string{
	"Get",
	"Is",
	"Has",
	"Can",
	"Calculate",
	"Caculate",
}

// InferReturnFromName guesses whether a function returns a value from its
// name alone. It is applied only when the dump carried no type information
// for the function, never over a confirmed void, and is a known source of
// false positives and negatives.
func InferReturnFromName(name string) bool {
	for _, p := range returnPrefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}

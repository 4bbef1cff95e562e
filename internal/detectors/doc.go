// Package detectors holds the rule catalog used by secscan and the entropy
// analyzer that backs the high-entropy fallback.
//
// The catalog is plain data: a Rule carries ECMAScript regex source, flag
// letters, an optional keyword gate, and its severity and category. Callers
// compile rules themselves (Rule.Compile) so each worker owns its matchers.
package detectors

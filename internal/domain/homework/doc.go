// Package homework contains the review-status domain of the bot: the shape of
// a homework API answer, the verdict table, and the error taxonomy shared by
// every stage of a polling cycle.
//
// The package has no external dependencies. Responses are validated from the
// generic JSON value (map[string]any) the API client decodes, so that shape
// problems are reported as typed errors instead of decoding failures.
package homework

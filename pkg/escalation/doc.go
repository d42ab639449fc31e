// Package escalation decides whether an engine event needs elevated attention.
//
// The default policy flags any event whose text, or any metadata value in its
// string form, contains "danger", "critical" or "delete". Matching folds case
// with golang.org/x/text/cases and searches substrings, so it deliberately
// over-escalates: "criticality", "deleted" and "Danger Zone promo" all match.
//
// Custom term sets can be supplied in code with WithTerms or loaded from YAML
// with LoadPolicy.
package escalation

package patterns

import (
	"github.com/PuerkitoBio/goquery"
)

// Resolve evaluates the field's candidates in order against scope and returns
// every match of the first candidate that matches at least one element.
// ok is false when no candidate matched; callers must supply their own fallback.
func Resolve(scope *goquery.Selection, set *PatternSet, field Field) (sel *goquery.Selection, ok bool) {
	return ResolveCandidates(scope, set.Candidates(field))
}

// ResolveFirst is Resolve narrowed to the first matching element.
func ResolveFirst(scope *goquery.Selection, set *PatternSet, field Field) (*goquery.Selection, bool) {
	sel, ok := Resolve(scope, set, field)
	if !ok {
		return nil, false
	}
	return sel.First(), true
}

// ResolveCandidates tries an explicit candidate list. Invalid selectors
// match nothing and are skipped.
func ResolveCandidates(scope *goquery.Selection, candidates []string) (*goquery.Selection, bool) {
	if scope == nil {
		return nil, false
	}
	for _, candidate := range candidates {
		if sel := scope.Find(candidate); sel.Length() > 0 {
			return sel, true
		}
	}
	return nil, false
}

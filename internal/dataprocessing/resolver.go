package dataprocessing

import (
	"fmt"
	"strings"
)

// DefaultAliases returns the built-in alias table: canonical field to
// priority-ordered recognized names. Matching policy lives entirely in this
// table plus resolveHeaders; callers can substitute their own table through
// Config without touching resolution logic.
func DefaultAliases() map[Field][]string {
	return map[Field][]string{
		FieldImpressions: {"impressions", "impression", "impressions served", "impress", "views"},
		FieldClicks:      {"clicks", "click", "link clicks", "total clicks"},
		FieldSpend:       {"spend", "ad spend", "cost", "total cost", "amount", "amount spent"},
		FieldConversions: {"conversions", "conversion", "conv", "sales", "purchases", "results"},
		FieldRevenue:     {"revenue", "conversion value", "purchase value", "total revenue"},
		FieldPlatform:    {"platform", "channel", "network", "ad network", "source platform"},
		FieldCampaign:    {"campaign", "campaign name", "campaign id", "ad group"},
		FieldDate:        {"date", "day", "report date", "reporting period"},
	}
}

// Resolution is the outcome of matching one table's headers against the
// alias table. Pure data: applying it to the table is the merger's job.
type Resolution struct {
	// Assigned maps each matched canonical field to the index of the source
	// header that won it.
	Assigned map[Field]int
	// Unresolved lists header indices that matched nothing (or lost an
	// ambiguity) and pass through verbatim.
	Unresolved []int
	Warnings   []Warning
}

// Missing reports the required fields the table failed to resolve.
func (r Resolution) Missing() []Field {
	var out []Field
	for _, f := range requiredFields {
		if _, ok := r.Assigned[f]; !ok {
			out = append(out, f)
		}
	}
	return out
}

// normalizeHeader folds case, surrounding whitespace, and the usual
// underscore-vs-space-vs-punctuation drift between platform exports.
func normalizeHeader(h string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(h)) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// resolveHeaders matches headers against the alias table with a
// deterministic first-match-wins rule. Two passes: exact normalized match
// for every field first, then substring match for fields still unassigned.
// Within a pass, fields claim columns in fieldOrder, aliases in priority
// order, headers in source order. When several columns resolve to the same
// field the first encountered wins and the rest are reported as ambiguous
// and left unresolved, never silently summed.
func resolveHeaders(source string, headers []string, aliases map[Field][]string) Resolution {
	res := Resolution{Assigned: make(map[Field]int)}
	norm := make([]string, len(headers))
	for i, h := range headers {
		norm[i] = normalizeHeader(h)
	}
	claimed := make([]bool, len(headers))

	match := func(field Field, exact bool) {
		var hits []int
		for _, alias := range aliases[field] {
			a := normalizeHeader(alias)
			if a == "" {
				continue
			}
			for i := range headers {
				if claimed[i] || contains(hits, i) {
					continue
				}
				ok := norm[i] == a
				if !exact {
					ok = norm[i] != a && strings.Contains(norm[i], a)
				}
				if ok {
					hits = append(hits, i)
				}
			}
		}
		if len(hits) == 0 {
			return
		}

		winner, ok := res.Assigned[field]
		losers := hits
		if !ok {
			winner, losers = hits[0], hits[1:]
			res.Assigned[field] = winner
			claimed[winner] = true
		}
		for _, i := range losers {
			res.Warnings = append(res.Warnings, Warning{
				Code:   WarnAmbiguousColumn,
				Source: source,
				Column: headers[i],
				Message: fmt.Sprintf("column %q also maps to %s; keeping %q and ignoring the duplicate",
					headers[i], field, headers[winner]),
			})
		}
	}

	// Exact normalized matches claim columns for every field first; the
	// substring pass then fills fields still unassigned and reports stray
	// columns that would have resolved to an already-claimed field.
	for _, f := range fieldOrder {
		match(f, true)
	}
	for _, f := range fieldOrder {
		match(f, false)
	}

	for i := range headers {
		if !claimed[i] {
			res.Unresolved = append(res.Unresolved, i)
		}
	}
	return res
}

func contains(xs []int, x int) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}

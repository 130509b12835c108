package dataprocessing

import (
	"fmt"
)

// merge concatenates the resolved tables into one unified dataset. Row order
// is insertion order: tables in input order, original row order within each.
// Schema drift is tolerated, not fatal: optional fields back-fill with
// nulls, a source with no resolvable required field still contributes rows
// (with null KPIs downstream), and a source without a platform column gets
// its source identifier as the platform label so every row stays
// attributable to exactly one platform string.
func merge(tables []RawTable, aliases map[Field][]string) (*UnifiedTable, []Warning, error) {
	if len(tables) == 0 {
		return nil, nil, ErrEmptyInput
	}

	out := &UnifiedTable{}
	var warnings []Warning
	extraSeen := make(map[string]bool)

	for _, t := range tables {
		res := resolveHeaders(t.Source, t.Headers, aliases)
		warnings = append(warnings, res.Warnings...)

		for _, f := range res.Missing() {
			warnings = append(warnings, Warning{
				Code:    WarnMissingRequiredField,
				Source:  t.Source,
				Column:  string(f),
				Message: fmt.Sprintf("source %q has no column mappable to %s; its rows will carry null KPIs", t.Source, f),
			})
		}

		if _, ok := res.Assigned[FieldRevenue]; ok {
			out.HasRevenue = true
		}
		if _, ok := res.Assigned[FieldCampaign]; ok {
			out.HasCampaign = true
		}
		if _, ok := res.Assigned[FieldDate]; ok {
			out.HasDate = true
		}
		for _, i := range res.Unresolved {
			if !extraSeen[t.Headers[i]] {
				extraSeen[t.Headers[i]] = true
				out.ExtraColumns = append(out.ExtraColumns, t.Headers[i])
			}
		}

		for rowIdx, raw := range t.Rows {
			row := UnifiedRow{Source: t.Source, Platform: t.Source}

			cell := func(f Field) (string, string, bool) {
				i, ok := res.Assigned[f]
				if !ok || i >= len(raw) {
					return "", "", false
				}
				return raw[i], t.Headers[i], true
			}
			numeric := func(f Field) Number {
				s, header, ok := cell(f)
				if !ok {
					return Number{}
				}
				n, parsed := parseNumber(s)
				if !parsed {
					warnings = append(warnings, Warning{
						Code:    WarnMalformedValue,
						Source:  t.Source,
						Column:  header,
						Message: fmt.Sprintf("row %d: cannot parse %q as a number for %s; cell treated as missing", rowIdx+1, s, f),
					})
				}
				return n
			}

			row.Impressions = numeric(FieldImpressions)
			row.Clicks = numeric(FieldClicks)
			row.Spend = numeric(FieldSpend)
			row.Conversions = numeric(FieldConversions)
			row.Revenue = numeric(FieldRevenue)
			if s, _, ok := cell(FieldPlatform); ok && s != "" {
				row.Platform = s
			}
			if s, _, ok := cell(FieldCampaign); ok {
				row.Campaign = s
			}
			if s, _, ok := cell(FieldDate); ok {
				row.Date = s
			}

			for _, i := range res.Unresolved {
				if i >= len(raw) {
					continue
				}
				if row.Extra == nil {
					row.Extra = make(map[string]string)
				}
				row.Extra[t.Headers[i]] = raw[i]
			}

			out.Rows = append(out.Rows, row)
		}
	}

	return out, warnings, nil
}

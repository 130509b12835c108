package dataprocessing

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
)

// ErrEmptyInput is returned when the pipeline is invoked with no tables.
// An empty input set is the one fatal data condition: producing empty
// summaries for it would be misleading.
var ErrEmptyInput = errors.New("no input tables provided")

// Field identifies one canonical semantic column. Every pipeline stage
// operates on canonical names only; source naming is resolved away at the
// boundary by the column resolver.
type Field string

const (
	FieldImpressions Field = "impressions"
	FieldClicks      Field = "clicks"
	FieldSpend       Field = "spend"
	FieldConversions Field = "conversions"
	FieldRevenue     Field = "revenue"
	FieldPlatform    Field = "platform"
	FieldCampaign    Field = "campaign"
	FieldDate        Field = "date"
)

// fieldOrder fixes the order in which fields claim source columns.
// Resolution must be deterministic, so this order is part of the contract.
var fieldOrder = []Field{
	FieldImpressions,
	FieldClicks,
	FieldSpend,
	FieldConversions,
	FieldRevenue,
	FieldPlatform,
	FieldCampaign,
	FieldDate,
}

// requiredFields are the counts every KPI formula depends on. A table that
// resolves none of a required field still merges; its rows simply carry null
// KPIs downstream.
var requiredFields = []Field{FieldImpressions, FieldClicks, FieldSpend, FieldConversions}

// RequiredFields returns the canonical fields a source must provide for its
// rows to yield non-null KPIs.
func RequiredFields() []Field {
	out := make([]Field, len(requiredFields))
	copy(out, requiredFields)
	return out
}

// Number is a nullable float. The zero value is null. KPI math never
// fabricates a value: a missing or zero denominator yields the null Number,
// and null cells are excluded from every sum and comparison downstream.
type Number struct {
	Float64 float64
	Valid   bool
}

// N wraps a float in a valid Number.
func N(v float64) Number { return Number{Float64: v, Valid: true} }

// MarshalJSON encodes null Numbers as JSON null so exported reports
// round-trip missing values instead of inventing zeros.
func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Float64)
}

// UnmarshalJSON accepts a JSON number or null.
func (n *Number) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*n = Number{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*n = N(v)
	return nil
}

// String renders the value for CSV export; null becomes the empty cell.
func (n Number) String() string {
	if !n.Valid {
		return ""
	}
	return strconv.FormatFloat(n.Float64, 'f', -1, 64)
}

// RawTable is one source export as delivered by a collaborator: original
// headers, string cells, and a source identifier (typically the file name).
type RawTable struct {
	Source  string     `json:"source" validate:"required"`
	Headers []string   `json:"headers" validate:"required,min=1"`
	Rows    [][]string `json:"rows"`
}

// UnifiedRow is a raw record rewritten onto the canonical schema. Unresolved
// source columns survive verbatim in Extra but are invisible to KPI math.
type UnifiedRow struct {
	Source      string            `json:"source"`
	Platform    string            `json:"platform"`
	Campaign    string            `json:"campaign,omitempty"`
	Date        string            `json:"date,omitempty"`
	Impressions Number            `json:"impressions"`
	Clicks      Number            `json:"clicks"`
	Spend       Number            `json:"spend"`
	Conversions Number            `json:"conversions"`
	Revenue     Number            `json:"revenue"`
	Extra       map[string]string `json:"extra,omitempty"`
}

// UnifiedTable is the merged dataset: every row attributable to exactly one
// platform, rows in concatenation order.
type UnifiedTable struct {
	Rows []UnifiedRow `json:"rows"`
	// ExtraColumns is the union of unresolved source headers in first-seen
	// order, kept so exports can reproduce pass-through columns.
	ExtraColumns []string `json:"extra_columns,omitempty"`
	// HasRevenue, HasCampaign and HasDate record whether any source supplied
	// the optional field at all; ROAS and campaign-level statistics are
	// suppressed rather than zero-filled when the column never existed.
	HasRevenue  bool `json:"has_revenue"`
	HasCampaign bool `json:"has_campaign"`
	HasDate     bool `json:"has_date"`
}

// MetricRow extends a unified row with the derived KPI columns.
type MetricRow struct {
	UnifiedRow
	CTR            Number `json:"ctr"`
	CPC            Number `json:"cpc"`
	CPM            Number `json:"cpm"`
	CPA            Number `json:"cpa"`
	ConversionRate Number `json:"conversion_rate"`
	ROAS           Number `json:"roas"`
}

// MetricTable is the unified table augmented with per-row KPIs.
type MetricTable struct {
	Rows         []MetricRow `json:"rows"`
	ExtraColumns []string    `json:"extra_columns,omitempty"`
	HasRevenue   bool        `json:"has_revenue"`
	HasCampaign  bool        `json:"has_campaign"`
	HasDate      bool        `json:"has_date"`
}

// WarningCode classifies recoverable data-quality conditions raised while
// resolving and merging.
type WarningCode string

const (
	WarnMissingRequiredField WarningCode = "MISSING_REQUIRED_FIELD"
	WarnAmbiguousColumn      WarningCode = "AMBIGUOUS_COLUMN"
	WarnMalformedValue       WarningCode = "MALFORMED_VALUE"
)

// Warning is a recoverable condition attached to a source. Warnings are
// data, not errors: the pipeline never uses them for control flow, and the
// caller decides whether to halt or display them alongside the results.
type Warning struct {
	Code    WarningCode `json:"code"`
	Source  string      `json:"source"`
	Column  string      `json:"column,omitempty"`
	Message string      `json:"message"`
}

// parseNumber converts a raw cell into a nullable float. Blank cells and
// common not-available markers become null silently; anything else that
// fails to parse is malformed and reported by the caller. Currency symbols,
// thousands separators and trailing percent signs are tolerated because
// platform exports disagree on all three.
func parseNumber(raw string) (Number, bool) {
	s := strings.TrimSpace(raw)
	switch strings.ToLower(s) {
	case "", "-", "na", "n/a", "null", "none", "nan":
		return Number{}, true
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimPrefix(s, "$")
	s = strings.TrimPrefix(s, "€")
	s = strings.TrimPrefix(s, "£")
	s = strings.TrimSuffix(s, "%")
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return Number{}, false
	}
	return N(v), true
}

// Package core — raw audit report wire types.
// These mirror the JSON produced by the external page-audit tool. Item
// shapes vary per audit, so every field is optional; the normalizer in
// core/audit resolves each item into exactly one Location variant.
package core

import "encoding/json"

// AuditReport is the raw report consumed from the external audit tool.
type AuditReport struct {
	Score  float64               `json:"score"`
	Audits map[string]AuditEntry `json:"audits"`
}

// AuditEntry is one check inside the audit report.
type AuditEntry struct {
	Score            *float64      `json:"score"`
	Title            string        `json:"title"`
	ScoreDisplayMode string        `json:"scoreDisplayMode,omitempty"`
	ErrorMessage     string        `json:"errorMessage,omitempty"`
	Details          *AuditDetails `json:"details,omitempty"`
}

// AuditDetails holds the per-occurrence items of a failing audit.
type AuditDetails struct {
	Items []AuditItem `json:"items"`
}

// AuditItem is one occurrence reported by an audit.
type AuditItem struct {
	Node     *AuditNode     `json:"node,omitempty"`
	Source   *AuditSource   `json:"source,omitempty"`
	Href     string         `json:"href,omitempty"`
	Text     *string        `json:"text,omitempty"`
	URL      string         `json:"url,omitempty"`
	Line     *int           `json:"line,omitempty"`
	Column   *int           `json:"column,omitempty"`
	SubItems *AuditSubItems `json:"subItems,omitempty"`
}

// AuditNode mirrors the audit tool's node descriptor.
type AuditNode struct {
	Selector  string `json:"selector,omitempty"`
	Path      string `json:"path,omitempty"`
	Snippet   string `json:"snippet,omitempty"`
	NodeLabel string `json:"nodeLabel,omitempty"`
	LhID      string `json:"lhId,omitempty"`
}

// AuditSubItems is a nested list of findings under one item.
type AuditSubItems struct {
	Items []AuditSubItem `json:"items"`
}

// AuditSubItem is one nested finding, usually a reason phrase.
type AuditSubItem struct {
	Reason string `json:"reason,omitempty"`
}

// AuditSource is the "source" field of an item, which the audit tool emits
// either as a literal code string or as a nested node descriptor.
type AuditSource struct {
	Code string
	Node *AuditNode
}

// UnmarshalJSON accepts both the string and the object form.
func (s *AuditSource) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		s.Code = str
		return nil
	}
	var node AuditNode
	if err := json.Unmarshal(data, &node); err != nil {
		return err
	}
	s.Node = &node
	return nil
}

// MarshalJSON restores the original wire shape.
func (s AuditSource) MarshalJSON() ([]byte, error) {
	if s.Node != nil {
		return json.Marshal(s.Node)
	}
	return json.Marshal(s.Code)
}

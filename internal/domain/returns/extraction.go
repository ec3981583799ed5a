package returns

import (
	"encoding/json"
	"errors"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// ExtractionFields are the response keys an extraction service may supply.
// Any other key is ignored; order_id is always system-assigned.
var ExtractionFields = []string{"product", "store_name", "category", "cost", "return_reason", "approved_flag"}

// Partial is what an extraction response actually supplied. A nil field was
// missing or could not be parsed.
type Partial struct {
	Product      *string
	StoreName    *string
	Category     *string
	Cost         *float64
	ReturnReason *string
	ApprovedFlag *string
}

// ParseExtraction decodes a raw extraction response. It fails only when the
// response is not a JSON object at all; bad individual fields are left nil.
func ParseExtraction(raw string) (Partial, error) {
	fields, err := decodeObject(raw)
	if err != nil {
		return Partial{}, err
	}

	var p Partial
	p.Product = textField(fields["product"])
	p.StoreName = textField(fields["store_name"])
	p.Category = textField(fields["category"])
	p.ReturnReason = textField(fields["return_reason"])
	p.ApprovedFlag = textField(fields["approved_flag"])
	p.Cost = numberField(fields["cost"])
	return p, nil
}

// ApplyExtractionDefaults turns a partial response into a complete
// natural-language candidate: text falls back to "Unknown", cost falls back
// to 0.0, and the approved flag is always No.
func ApplyExtractionDefaults(p Partial) Candidate {
	c := Candidate{
		Product:      textOrUnknown(p.Product),
		StoreName:    textOrUnknown(p.StoreName),
		Category:     Category(textOrUnknown(p.Category)),
		ReturnReason: textOrUnknown(p.ReturnReason),
		Cost:         0.0,
		ApprovedFlag: ApprovedNo,
		Origin:       OriginNaturalLanguage,
	}
	if p.Cost != nil {
		c.Cost = *p.Cost
	}
	return c
}

func decodeObject(raw string) (map[string]json.RawMessage, error) {
	body := stripCodeFence(strings.TrimSpace(raw))
	if body == "" {
		return nil, errors.New("extraction response is empty")
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(body), &fields); err == nil && fields != nil {
		return lowerKeys(fields), nil
	}

	start := strings.Index(body, "{")
	end := strings.LastIndex(body, "}")
	if start < 0 || end <= start {
		return nil, errors.New("extraction response is not a JSON object")
	}
	if err := json.Unmarshal([]byte(body[start:end+1]), &fields); err != nil || fields == nil {
		return nil, errors.New("extraction response is not a JSON object")
	}
	return lowerKeys(fields), nil
}

func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.Index(s, "\n"); idx >= 0 {
		s = s[idx+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func lowerKeys(in map[string]json.RawMessage) map[string]json.RawMessage {
	out := make(map[string]json.RawMessage, len(in))
	for k, v := range in {
		out[strings.ToLower(strings.TrimSpace(k))] = v
	}
	return out
}

func textField(raw json.RawMessage) *string {
	if len(raw) == 0 {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func numberField(raw json.RawMessage) *float64 {
	if len(raw) == 0 {
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return parseAmount(n.String())
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return parseAmount(s)
	}
	return nil
}

// ParseAmount reads a money amount such as "25.5", "$1,200.00" or "  7 ".
// It returns false when the text is not a finite number.
func ParseAmount(s string) (float64, bool) {
	v := parseAmount(s)
	if v == nil {
		return 0, false
	}
	return *v, true
}

func parseAmount(s string) *float64 {
	cleaned := strings.NewReplacer("$", "", ",", "", " ", "").Replace(strings.TrimSpace(s))
	if cleaned == "" {
		return nil
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return nil
	}
	f, _ := d.Float64()
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

func textOrUnknown(v *string) string {
	if v == nil {
		return UnknownText
	}
	return *v
}

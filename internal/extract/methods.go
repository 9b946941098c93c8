package extract

import (
	"fmt"
	"regexp"
	"strings"
)

// DescriptionLabel matches a "Label: value" line in the flattened
// description block. This is the highest-priority method for brand and
// model because sellers fill these labels far more reliably than the
// marketplace's own attribute table.
func DescriptionLabel(label string) Method {
	re := regexp.MustCompile(fmt.Sprintf(`(?i)%s:\s*([^\n]+)`, regexp.QuoteMeta(label)))
	return Method{
		Name: "description:" + strings.ToLower(label),
		Run: func(d *Document) string {
			desc := d.Description()
			if desc == "" {
				return ""
			}
			if m := re.FindStringSubmatch(desc); m != nil {
				// The flattened block is markdown, so strip emphasis
				// markers left around the value.
				return strings.TrimSpace(strings.Trim(strings.TrimSpace(m[1]), "*_"))
			}
			return ""
		},
	}
}

// DescriptionList matches a "Label: a, b, c" line and splits it into
// trimmed entries, preserving order.
func DescriptionList(label string) func(d *Document) []string {
	m := DescriptionLabel(label)
	return func(d *Document) []string {
		raw := m.Run(d)
		if raw == "" {
			return nil
		}
		parts := strings.Split(raw, ",")
		notes := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				notes = append(notes, p)
			}
		}
		return notes
	}
}

// TitleInference is the free-text inference step. It is a named,
// order-significant placeholder: it always reports absent, and the chain
// falls through to the cross-reference lookups.
//
// TODO: wire a real classifier once the research service exposes its
// brand/model endpoint.
func TitleInference(field string) Method {
	return Method{
		Name: "title-inference:" + field,
		Run: func(d *Document) string {
			return ""
		},
	}
}

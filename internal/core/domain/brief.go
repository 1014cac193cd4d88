package domain

import "strings"

// Brief is the structured summary produced for one canonical document.
// The raw generator output is persisted verbatim as the brief artifact;
// this type is the parsed view used for display.
type Brief struct {
	// ContentHash keys the brief to its canonical file.
	ContentHash string `json:"content_hash"`

	// Synopsis is the one-sentence summary.
	Synopsis string `json:"synopsis,omitempty"`

	// Bullets are the key points, typically three to five.
	Bullets []string `json:"key_points,omitempty"`

	// Keywords are short topical labels, typically three to five.
	Keywords []string `json:"keywords,omitempty"`

	// Raw is the unmodified generator output.
	Raw string `json:"raw"`
}

// ParseBrief extracts the structured fields from a brief artifact written
// in the fixed Markdown template. Parsing is lenient: missing sections
// leave the corresponding fields empty and never produce an error, since
// the raw text is the artifact of record.
func ParseBrief(contentHash, raw string) Brief {
	brief := Brief{ContentHash: contentHash, Raw: raw}

	section := ""
	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "## "):
			section = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(trimmed, "## ")))
		case trimmed == "":
			continue
		case strings.HasPrefix(trimmed, "- "):
			item := strings.TrimSpace(strings.TrimPrefix(trimmed, "- "))
			if item == "" {
				continue
			}
			switch {
			case strings.Contains(section, "point"):
				brief.Bullets = append(brief.Bullets, item)
			case strings.Contains(section, "keyword"):
				brief.Keywords = append(brief.Keywords, item)
			}
		default:
			if strings.Contains(section, "synopsis") && brief.Synopsis == "" {
				brief.Synopsis = trimmed
			}
		}
	}

	return brief
}

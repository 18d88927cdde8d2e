package durecord

import (
	"strings"

	"github.com/Abraxas-365/docusync/internal/ducontract"
	"github.com/Abraxas-365/docusync/internal/duapi"
)

// Template is a flat field-rename of one template list entry; shared is
// coerced to its lowercased boolean string form (spec §3).
func Template(raw duapi.Record, log ducontract.Logger) (map[string]string, bool) {
	templateID := str(raw["templateId"])
	if templateID == "" {
		log.Warning("skipping a template record due to missing templateId")
		return nil, false
	}

	return map[string]string{
		"template_id":       templateID,
		"name":              str(raw["name"]),
		"description":       str(raw["description"]),
		"created_timestamp": str(raw["created"]),
		"last_modified_timestamp": str(raw["lastModified"]),
		"shared":            strings.ToLower(strOr(raw["shared"], "false")),
	}, true
}

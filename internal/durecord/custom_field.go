package durecord

import (
	"github.com/Abraxas-365/docusync/internal/ducontract"
	"github.com/Abraxas-365/docusync/internal/duapi"
)

// CustomField keys on the field's name (PK column field_name); raw may carry
// either the text or list custom field shape, both of which use "name" and
// "value" (spec §3, §4.4).
func CustomField(raw duapi.Record, envelopeID string, log ducontract.Logger) (map[string]string, bool) {
	name := str(raw["name"])
	if name == "" {
		log.Warning("skipping a custom field record due to missing name",
			ducontract.F("envelope_id", envelopeID))
		return nil, false
	}

	return map[string]string{
		"envelope_id": envelopeID,
		"field_name":  name,
		"value":       str(raw["value"]),
		"type":        str(raw["fieldType"]),
	}, true
}

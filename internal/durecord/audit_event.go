package durecord

import (
	"strings"

	"github.com/Abraxas-365/docusync/internal/duapi"
)

// AuditEvent flattens the event's eventFields array of {name,value} pairs
// into a dynamic column set keyed by lowercased name, and synthesizes
// event_id from envelope_id and the event's logtime field (spec §3, §4.5,
// scenario 4). Unlike the other normalizers, it has no PK guard: logtime
// absent just yields a degenerate event_id ("{envelope_id}_"), matching
// original_source/connector.py, which always emits the row.
func AuditEvent(raw duapi.Record, envelopeID string) map[string]string {
	row := map[string]string{}

	fields, _ := raw["eventFields"].([]any)
	for _, f := range fields {
		pair, ok := f.(map[string]any)
		if !ok {
			continue
		}
		name := strings.ToLower(str(pair["name"]))
		if name == "" {
			continue
		}
		row[name] = str(pair["value"])
	}

	// Fixed PK columns are set last so no dynamic eventFields entry (e.g. an
	// event literally named "EnvelopeId") can clobber them.
	row["envelope_id"] = envelopeID
	row["event_id"] = envelopeID + "_" + row["logtime"]

	return row
}

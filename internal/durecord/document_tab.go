package durecord

import (
	"strings"

	"github.com/Abraxas-365/docusync/internal/ducontract"
	"github.com/Abraxas-365/docusync/internal/duapi"
)

// fixedTabColumns are carried straight through rather than flattened
// generically, since they identify the row rather than describe the tab.
var fixedTabColumns = map[string]bool{
	"documentId": true,
	"tabId":      true,
	"tab_type":   true,
}

// DocumentTab keys on document_id+tab_id and flattens every remaining field
// on the tab object (lowercased) as a dynamic column, mirroring the way
// AuditEvent flattens eventFields (spec §3, §4.4).
func DocumentTab(raw duapi.Record, envelopeID string, log ducontract.Logger) (map[string]string, bool) {
	documentID := str(raw["documentId"])
	tabID := str(raw["tabId"])
	if documentID == "" || tabID == "" {
		log.Warning("skipping a document tab record due to missing documentId/tabId",
			ducontract.F("envelope_id", envelopeID))
		return nil, false
	}

	row := map[string]string{
		"envelope_id": envelopeID,
		"document_id": documentID,
		"tab_id":      tabID,
		"tab_type":    str(raw["tab_type"]),
	}
	for k, v := range raw {
		if fixedTabColumns[k] {
			continue
		}
		row[strings.ToLower(k)] = str(v)
	}

	return row, true
}

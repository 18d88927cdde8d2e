package durecord

import (
	"encoding/base64"

	"github.com/Abraxas-365/docusync/internal/ducontract"
	"github.com/Abraxas-365/docusync/internal/duapi"
)

// Document is a flat field-rename of one document list entry (spec §3).
func Document(raw duapi.Record, envelopeID string, log ducontract.Logger) (map[string]string, bool) {
	documentID := str(raw["documentId"])
	if documentID == "" {
		log.Warning("skipping a document record due to missing documentId",
			ducontract.F("envelope_id", envelopeID))
		return nil, false
	}

	return map[string]string{
		"envelope_id": envelopeID,
		"document_id": documentID,
		"name":        str(raw["name"]),
		"type":        str(raw["type"]),
		"pages":       strOr(raw["pages"], "0"),
	}, true
}

// DocumentContent base64-wraps the raw binary payload for the
// document_content table. Caller skips this emission entirely when content
// is nil (download failure, spec scenario 5). locator is the archiver's
// returned location; it is left empty when no archiver other than noop is
// active (spec §4.8).
func DocumentContent(envelopeID, documentID string, content []byte, locator string) map[string]string {
	return map[string]string{
		"envelope_id":      envelopeID,
		"document_id":      documentID,
		"content_base64":   base64.StdEncoding.EncodeToString(content),
		"archive_location": locator,
	}
}

package durecord

import (
	"github.com/Abraxas-365/docusync/internal/ducontract"
	"github.com/Abraxas-365/docusync/internal/duapi"
)

// Recipient normalizes one recipient array entry. recipient_type was already
// stamped onto raw by duapi.FetchRecipients (spec §3, §4.4).
func Recipient(raw duapi.Record, envelopeID string, log ducontract.Logger) (map[string]string, bool) {
	recipientID := str(raw["recipientId"])
	if recipientID == "" {
		log.Warning("skipping a recipient record due to missing recipientId",
			ducontract.F("envelope_id", envelopeID))
		return nil, false
	}

	return map[string]string{
		"envelope_id":   envelopeID,
		"recipient_id":  recipientID,
		"name":          str(raw["name"]),
		"email":         str(raw["email"]),
		"status":        str(raw["status"]),
		"type":          str(raw["recipient_type"]),
		"routing_order": strOr(raw["routingOrder"], "0"),
	}, true
}

// EnhancedRecipient adds declined_reason/sent_timestamp/signed_timestamp on
// top of the base recipient row; both tables are sourced from the same
// /recipients response (spec §3, §4.4).
func EnhancedRecipient(raw duapi.Record, envelopeID string, log ducontract.Logger) (map[string]string, bool) {
	row, ok := Recipient(raw, envelopeID, log)
	if !ok {
		return nil, false
	}
	row["declined_reason"] = str(raw["declinedReason"])
	row["sent_timestamp"] = str(raw["sentDateTime"])
	row["signed_timestamp"] = str(raw["signedDateTime"])
	return row, true
}

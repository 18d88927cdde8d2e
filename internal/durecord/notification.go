package durecord

import (
	"github.com/Abraxas-365/docusync/internal/ducontract"
	"github.com/Abraxas-365/docusync/internal/duapi"
)

// Notification is a flat field-rename of one envelope notification entry
// (spec §3).
func Notification(raw duapi.Record, envelopeID string, log ducontract.Logger) (map[string]string, bool) {
	notificationID := str(raw["notificationId"])
	if notificationID == "" {
		log.Warning("skipping a notification record due to missing notificationId",
			ducontract.F("envelope_id", envelopeID))
		return nil, false
	}

	return map[string]string{
		"envelope_id":     envelopeID,
		"notification_id": notificationID,
		"type":            str(raw["notificationType"]),
		"scheduled_date":  str(raw["scheduledDate"]),
		"sent_date":       str(raw["sentDate"]),
	}, true
}

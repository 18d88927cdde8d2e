package durecord

import (
	"github.com/Abraxas-365/docusync/internal/ducontract"
	"github.com/Abraxas-365/docusync/internal/duapi"
)

// Envelope normalizes one raw envelope object into the envelope table row.
// Returns ok=false when envelopeId is missing or blank (spec §3, §4.5).
func Envelope(raw duapi.Record, log ducontract.Logger) (map[string]string, bool) {
	id := str(raw["envelopeId"])
	if id == "" {
		log.Warning("skipping an envelope record due to missing envelopeId")
		return nil, false
	}

	status := str(raw["status"])
	row := map[string]string{
		"envelope_id":               id,
		"status":                    status,
		"sent_timestamp":            str(raw["sentDateTime"]),
		"completed_timestamp":       str(raw["completedDateTime"]),
		"created_timestamp":         str(raw["createdDateTime"]),
		"last_modified_timestamp":   str(raw["statusChangedDateTime"]),
		"subject":                   str(raw["emailSubject"]),
		"contract_cycle_time_hours": "",
		"conversion_status":         status,
	}

	if status == "completed" {
		if hours, ok := cycleTimeHours(row["sent_timestamp"], row["completed_timestamp"]); ok {
			row["contract_cycle_time_hours"] = formatHours(hours)
		} else {
			log.Warning("could not calculate cycle time for envelope", ducontract.F("envelope_id", id))
		}
	}

	return row, true
}

// cycleTimeHours computes (completed - sent) in hours when both timestamps
// parse as ISO 8601 (spec §4.5).
func cycleTimeHours(sent, completed string) (float64, bool) {
	if sent == "" || completed == "" {
		return 0, false
	}
	sentT, err := parseTimestamp(sent)
	if err != nil {
		return 0, false
	}
	completedT, err := parseTimestamp(completed)
	if err != nil {
		return 0, false
	}
	return completedT.Sub(sentT).Hours(), true
}

package durecord_test

import (
	"testing"

	"github.com/Abraxas-365/docusync/internal/ducontract"
	"github.com/Abraxas-365/docusync/internal/durecord"
)

// nopLogger discards every call; tests that care about warnings count them
// instead via countingLogger.
type nopLogger struct{}

func (nopLogger) Info(string, ...ducontract.Field)    {}
func (nopLogger) Warning(string, ...ducontract.Field) {}
func (nopLogger) Severe(string, ...ducontract.Field)  {}

type countingLogger struct {
	warnings int
}

func (l *countingLogger) Info(string, ...ducontract.Field)    {}
func (l *countingLogger) Warning(string, ...ducontract.Field) { l.warnings++ }
func (l *countingLogger) Severe(string, ...ducontract.Field)  {}

func TestEnvelope_CompletedCycleTime(t *testing.T) {
	raw := map[string]any{
		"envelopeId":        "E1",
		"status":            "completed",
		"sentDateTime":      "2024-01-01T00:00:00Z",
		"completedDateTime": "2024-01-02T12:00:00Z",
	}

	row, ok := durecord.Envelope(raw, nopLogger{})
	if !ok {
		t.Fatal("expected envelope row to be emitted")
	}
	if row["contract_cycle_time_hours"] != "36.0" {
		t.Fatalf("expected cycle time 36.0, got %q", row["contract_cycle_time_hours"])
	}
	if row["conversion_status"] != "completed" {
		t.Fatalf("expected conversion_status to mirror status, got %q", row["conversion_status"])
	}
}

func TestEnvelope_NotCompletedHasEmptyCycleTime(t *testing.T) {
	raw := map[string]any{
		"envelopeId": "E2",
		"status":     "sent",
	}

	row, ok := durecord.Envelope(raw, nopLogger{})
	if !ok {
		t.Fatal("expected envelope row to be emitted")
	}
	if row["contract_cycle_time_hours"] != "" {
		t.Fatalf("expected empty cycle time for non-completed envelope, got %q", row["contract_cycle_time_hours"])
	}
}

func TestEnvelope_MissingIDSkipped(t *testing.T) {
	log := &countingLogger{}
	raw := map[string]any{"status": "sent"}

	_, ok := durecord.Envelope(raw, log)
	if ok {
		t.Fatal("expected envelope without envelopeId to be skipped")
	}
	if log.warnings != 1 {
		t.Fatalf("expected one warning logged, got %d", log.warnings)
	}
}

func TestAuditEvent_FlattensFieldsAndSynthesizesEventID(t *testing.T) {
	raw := map[string]any{
		"eventFields": []any{
			map[string]any{"name": "LogTime", "value": "2024-05-05T10:00:00Z"},
			map[string]any{"name": "UserName", "value": "Ada"},
		},
	}

	row := durecord.AuditEvent(raw, "E1")
	want := map[string]string{
		"envelope_id": "E1",
		"event_id":    "E1_2024-05-05T10:00:00Z",
		"logtime":     "2024-05-05T10:00:00Z",
		"username":    "Ada",
	}
	for k, v := range want {
		if row[k] != v {
			t.Fatalf("row[%q] = %q, want %q", k, row[k], v)
		}
	}
}

func TestAuditEvent_MissingLogtimeStillEmitsDegenerateRow(t *testing.T) {
	raw := map[string]any{
		"eventFields": []any{
			map[string]any{"name": "UserName", "value": "Ada"},
		},
	}

	row := durecord.AuditEvent(raw, "E1")
	if row["event_id"] != "E1_" {
		t.Fatalf("expected degenerate event_id E1_, got %q", row["event_id"])
	}
	if row["username"] != "Ada" {
		t.Fatalf("expected the row to still be emitted with its other fields, got %+v", row)
	}
}

func TestAuditEvent_EventFieldCannotClobberEnvelopeID(t *testing.T) {
	raw := map[string]any{
		"eventFields": []any{
			map[string]any{"name": "EnvelopeId", "value": "someone-elses-envelope"},
			map[string]any{"name": "LogTime", "value": "2024-05-05T10:00:00Z"},
		},
	}

	row := durecord.AuditEvent(raw, "E1")
	if row["envelope_id"] != "E1" {
		t.Fatalf("expected envelope_id to stay E1, got %q", row["envelope_id"])
	}
	if row["event_id"] != "E1_2024-05-05T10:00:00Z" {
		t.Fatalf("expected event_id keyed off the real envelope_id, got %q", row["event_id"])
	}
}

func TestNotification_RenamesFields(t *testing.T) {
	raw := map[string]any{
		"notificationId":   "N1",
		"notificationType": "reminder",
		"scheduledDate":    "2024-01-03T00:00:00Z",
		"sentDate":         "2024-01-04T00:00:00Z",
	}

	row, ok := durecord.Notification(raw, "E1", nopLogger{})
	if !ok {
		t.Fatal("expected notification row to be emitted")
	}
	want := map[string]string{
		"envelope_id":     "E1",
		"notification_id": "N1",
		"type":            "reminder",
		"scheduled_date":  "2024-01-03T00:00:00Z",
		"sent_date":       "2024-01-04T00:00:00Z",
	}
	for k, v := range want {
		if row[k] != v {
			t.Fatalf("row[%q] = %q, want %q", k, row[k], v)
		}
	}
}

func TestNotification_MissingIDSkipped(t *testing.T) {
	log := &countingLogger{}
	_, ok := durecord.Notification(map[string]any{}, "E1", log)
	if ok {
		t.Fatal("expected notification without notificationId to be skipped")
	}
	if log.warnings != 1 {
		t.Fatalf("expected one warning logged, got %d", log.warnings)
	}
}

func TestRecipient_MissingIDSkipped(t *testing.T) {
	log := &countingLogger{}
	_, ok := durecord.Recipient(map[string]any{}, "E1", log)
	if ok {
		t.Fatal("expected recipient without recipientId to be skipped")
	}
	if log.warnings != 1 {
		t.Fatalf("expected one warning logged, got %d", log.warnings)
	}
}

func TestRecipient_DefaultsRoutingOrder(t *testing.T) {
	row, ok := durecord.Recipient(map[string]any{"recipientId": "R1"}, "E1", nopLogger{})
	if !ok {
		t.Fatal("expected recipient row to be emitted")
	}
	if row["routing_order"] != "0" {
		t.Fatalf("expected default routing_order 0, got %q", row["routing_order"])
	}
}

func TestEnhancedRecipient_AddsExtraColumns(t *testing.T) {
	raw := map[string]any{
		"recipientId":    "R1",
		"declinedReason": "not interested",
		"sentDateTime":   "2024-01-01T00:00:00Z",
		"signedDateTime": "2024-01-02T00:00:00Z",
	}

	row, ok := durecord.EnhancedRecipient(raw, "E1", nopLogger{})
	if !ok {
		t.Fatal("expected enhanced recipient row to be emitted")
	}
	if row["declined_reason"] != "not interested" {
		t.Fatalf("unexpected declined_reason: %q", row["declined_reason"])
	}
}

func TestDocument_DefaultsPages(t *testing.T) {
	row, ok := durecord.Document(map[string]any{"documentId": "D1"}, "E1", nopLogger{})
	if !ok {
		t.Fatal("expected document row to be emitted")
	}
	if row["pages"] != "0" {
		t.Fatalf("expected default pages 0, got %q", row["pages"])
	}
}

func TestDocumentContent_Base64Encodes(t *testing.T) {
	row := durecord.DocumentContent("E1", "D1", []byte("hello"), "")
	if row["content_base64"] != "aGVsbG8=" {
		t.Fatalf("unexpected base64 content: %q", row["content_base64"])
	}
	if row["archive_location"] != "" {
		t.Fatalf("expected empty archive_location when no archiver ran, got %q", row["archive_location"])
	}
}

func TestDocumentContent_CarriesArchiveLocation(t *testing.T) {
	row := durecord.DocumentContent("E1", "D1", []byte("hello"), "s3://bucket/documents/E1/D1")
	if row["archive_location"] != "s3://bucket/documents/E1/D1" {
		t.Fatalf("unexpected archive_location: %q", row["archive_location"])
	}
}

func TestDocumentTab_FlattensDynamicColumns(t *testing.T) {
	raw := map[string]any{
		"documentId": "D1",
		"tabId":      "T1",
		"tab_type":   "signHereTabs",
		"XPosition":  "100",
	}
	row, ok := durecord.DocumentTab(raw, "E1", nopLogger{})
	if !ok {
		t.Fatal("expected document tab row to be emitted")
	}
	if row["xposition"] != "100" {
		t.Fatalf("expected lowercased dynamic column, got %+v", row)
	}
}

func TestCustomField_TypeReadsFieldType(t *testing.T) {
	raw := map[string]any{
		"name":      "Department",
		"value":     "Engineering",
		"fieldType": "text",
	}
	row, ok := durecord.CustomField(raw, "E1", nopLogger{})
	if !ok {
		t.Fatal("expected custom field row to be emitted")
	}
	if row["type"] != "text" {
		t.Fatalf("expected type to read fieldType, got %q", row["type"])
	}
}

func TestCustomField_MissingNameSkipped(t *testing.T) {
	log := &countingLogger{}
	_, ok := durecord.CustomField(map[string]any{}, "E1", log)
	if ok {
		t.Fatal("expected custom field without name to be skipped")
	}
	if log.warnings != 1 {
		t.Fatalf("expected one warning logged, got %d", log.warnings)
	}
}

func TestTemplate_SharedLowercased(t *testing.T) {
	row, ok := durecord.Template(map[string]any{"templateId": "T1", "shared": true}, nopLogger{})
	if !ok {
		t.Fatal("expected template row to be emitted")
	}
	if row["shared"] != "true" {
		t.Fatalf("expected lowercased shared boolean, got %q", row["shared"])
	}
}

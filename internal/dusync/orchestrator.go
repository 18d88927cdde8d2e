// Package dusync drives the incremental traversal over envelopes and their
// eight child resources, emitting normalized rows to the host sink and
// checkpointing the advanced watermark (spec §4.6).
package dusync

import (
	"context"
	"sync"

	"github.com/Abraxas-365/docusync/internal/docuauth"
	"github.com/Abraxas-365/docusync/internal/docuconfig"
	"github.com/Abraxas-365/docusync/internal/duapi"
	"github.com/Abraxas-365/docusync/internal/duarchive"
	"github.com/Abraxas-365/docusync/internal/ducontract"
	"github.com/Abraxas-365/docusync/internal/durecord"
	"github.com/Abraxas-365/docusync/pkg/asyncx"
	"github.com/Abraxas-365/docusync/pkg/errx"
)

// Table names, exported so the root package's schema declaration (C7) and
// this orchestrator never drift apart.
const (
	TableEnvelope          = "envelope"
	TableRecipient         = "recipient"
	TableEnhancedRecipient = "enhanced_recipient"
	TableAuditEvent        = "audit_event"
	TableEnvelopeNotif     = "envelope_notification"
	TableDocument          = "document"
	TableDocumentContent   = "document_content"
	TableDocumentTab       = "document_tab"
	TableCustomField       = "custom_field"
	TableTemplate          = "template"
)

// Orchestrator wires together the authenticator, API client and archiver to
// run one full sync invocation (spec §4.6).
type Orchestrator struct {
	auth    *docuauth.Authenticator
	api     *duapi.Client
	archive duarchive.Archiver
	log     ducontract.Logger
	// Workers bounds per-envelope fan-out concurrency. 0 or 1 means the
	// envelopes are processed strictly sequentially (spec §5's baseline
	// scheduling model); >1 opts into the bounded worker-pool upgrade path
	// spec §5/§9 describe, built on pkg/asyncx.Pool.
	workers int
}

// New builds an Orchestrator. archive may be duarchive.NewNoop() to disable
// secondary document storage. workers <= 1 processes envelopes sequentially.
func New(auth *docuauth.Authenticator, api *duapi.Client, archive duarchive.Archiver, log ducontract.Logger, workers int) *Orchestrator {
	return &Orchestrator{auth: auth, api: api, archive: archive, log: log, workers: workers}
}

// Run executes one sync invocation: obtain a token, traverse envelopes and
// templates, emit rows, and checkpoint the new watermark (spec §4.6).
//
// Config is mutated in place by the authenticator to cache the access token,
// matching spec §9's "global mutable config" note. Auth failure is fatal and
// no checkpoint is written; every other child-resource failure degrades to a
// logged warning so the sync keeps making progress.
func (o *Orchestrator) Run(ctx context.Context, config map[string]string, state map[string]string, sink ducontract.Sink) error {
	if err := o.auth.EnsureToken(ctx, config); err != nil {
		return err
	}
	token := config[docuconfig.KeyAccessToken]

	now := nowWatermark()
	fromDate := watermark(state, KeyLastEnvelopeSync)

	envelopes, listErr := o.api.ListEnvelopes(ctx, token, fromDate)
	if listErr != nil {
		if authorizationFailure(listErr) {
			o.log.Severe("envelope listing failed authentication; aborting sync without checkpoint",
				ducontract.F("error", listErr.Error()))
			return listErr
		}
		o.log.Severe("envelope listing failed; continuing to templates and checkpoint",
			ducontract.F("error", listErr.Error()))
	}

	if o.workers > 1 {
		sink = &serializedSink{Sink: sink}
	}
	process := func(ctx context.Context, raw duapi.Record) (struct{}, error) {
		o.processEnvelope(ctx, token, raw, sink)
		return struct{}{}, nil
	}

	if o.workers > 1 && len(envelopes) > 0 {
		if _, err := asyncx.Pool(ctx, o.workers, envelopes, process); err != nil {
			o.log.Warning("envelope worker pool reported an error", ducontract.F("error", err.Error()))
		}
	} else {
		for _, raw := range envelopes {
			o.processEnvelope(ctx, token, raw, sink)
		}
	}

	o.processTemplates(ctx, token, sink)

	return sink.Checkpoint(ctx, map[string]string{
		KeyLastEnvelopeSync: now,
		KeyLastTemplateSync: now,
	})
}

// processEnvelope emits the envelope row (when well-formed) and then fans
// out, independently, to every child fetcher/normalizer pair. A failure in
// one child never skips another (spec §4.6 failure semantics).
func (o *Orchestrator) processEnvelope(ctx context.Context, token string, raw duapi.Record, sink ducontract.Sink) {
	row, ok := durecord.Envelope(raw, o.log)
	if !ok {
		return
	}
	envelopeID := row["envelope_id"]

	if err := sink.Upsert(ctx, TableEnvelope, row); err != nil {
		o.log.Severe("failed to upsert envelope row", ducontract.F("envelope_id", envelopeID), ducontract.F("error", err.Error()))
	}

	o.emitRecipients(ctx, token, envelopeID, sink)
	o.emitAuditEvents(ctx, token, envelopeID, sink)
	o.emitNotifications(ctx, token, envelopeID, sink)
	o.emitDocuments(ctx, token, envelopeID, sink)
	o.emitDocumentTabs(ctx, token, envelopeID, sink)
	o.emitCustomFields(ctx, token, envelopeID, sink)
}

func (o *Orchestrator) emitRecipients(ctx context.Context, token, envelopeID string, sink ducontract.Sink) {
	raws := o.api.FetchRecipients(ctx, token, envelopeID)
	for _, raw := range raws {
		if row, ok := durecord.Recipient(raw, envelopeID, o.log); ok {
			o.upsert(ctx, sink, TableRecipient, row)
		}
		if row, ok := durecord.EnhancedRecipient(raw, envelopeID, o.log); ok {
			o.upsert(ctx, sink, TableEnhancedRecipient, row)
		}
	}
}

func (o *Orchestrator) emitAuditEvents(ctx context.Context, token, envelopeID string, sink ducontract.Sink) {
	raws := o.api.FetchAuditEvents(ctx, token, envelopeID)
	for _, raw := range raws {
		o.upsert(ctx, sink, TableAuditEvent, durecord.AuditEvent(raw, envelopeID))
	}
}

func (o *Orchestrator) emitNotifications(ctx context.Context, token, envelopeID string, sink ducontract.Sink) {
	raws := o.api.FetchNotifications(ctx, token, envelopeID)
	for _, raw := range raws {
		if row, ok := durecord.Notification(raw, envelopeID, o.log); ok {
			o.upsert(ctx, sink, TableEnvelopeNotif, row)
		}
	}
}

// emitDocuments emits one document row per listed document, then attempts to
// download and archive its content. A content-download failure skips only
// the document_content row, not the document row itself (spec scenario 5).
func (o *Orchestrator) emitDocuments(ctx context.Context, token, envelopeID string, sink ducontract.Sink) {
	raws := o.api.FetchDocuments(ctx, token, envelopeID)
	for _, raw := range raws {
		row, ok := durecord.Document(raw, envelopeID, o.log)
		if !ok {
			continue
		}
		o.upsert(ctx, sink, TableDocument, row)

		documentID := row["document_id"]
		content := o.api.FetchDocumentContent(ctx, token, envelopeID, documentID)
		if content == nil {
			continue
		}

		locator, archErr := o.archive.Put(ctx, envelopeID, documentID, content)
		if archErr != nil {
			o.log.Warning("failed to archive document content",
				ducontract.F("envelope_id", envelopeID), ducontract.F("document_id", documentID), ducontract.F("error", archErr.Error()))
		}

		o.upsert(ctx, sink, TableDocumentContent, durecord.DocumentContent(envelopeID, documentID, content, locator))
	}
}

func (o *Orchestrator) emitDocumentTabs(ctx context.Context, token, envelopeID string, sink ducontract.Sink) {
	raws := o.api.FetchDocumentTabs(ctx, token, envelopeID)
	for _, raw := range raws {
		if row, ok := durecord.DocumentTab(raw, envelopeID, o.log); ok {
			o.upsert(ctx, sink, TableDocumentTab, row)
		}
	}
}

func (o *Orchestrator) emitCustomFields(ctx context.Context, token, envelopeID string, sink ducontract.Sink) {
	raws := o.api.FetchCustomFields(ctx, token, envelopeID)
	for _, raw := range raws {
		if row, ok := durecord.CustomField(raw, envelopeID, o.log); ok {
			o.upsert(ctx, sink, TableCustomField, row)
		}
	}
}

// processTemplates lists every template, ignoring last_template_sync for
// filtering: the endpoint is a full list and the watermark exists only for
// reporting (spec §4.6, SPEC_FULL.md §9).
func (o *Orchestrator) processTemplates(ctx context.Context, token string, sink ducontract.Sink) {
	templates, err := o.api.ListTemplates(ctx, token)
	if err != nil {
		o.log.Warning("template listing failed", ducontract.F("error", err.Error()))
	}
	for _, raw := range templates {
		if row, ok := durecord.Template(raw, o.log); ok {
			o.upsert(ctx, sink, TableTemplate, row)
		}
	}
}

func (o *Orchestrator) upsert(ctx context.Context, sink ducontract.Sink, table string, row map[string]string) {
	if err := sink.Upsert(ctx, table, row); err != nil {
		o.log.Severe("failed to upsert row", ducontract.F("table", table), ducontract.F("error", err.Error()))
	}
}

// serializedSink guards Upsert with a mutex so parallel envelope workers never call the sink concurrently.
type serializedSink struct {
	ducontract.Sink
	mu sync.Mutex
}

func (s *serializedSink) Upsert(ctx context.Context, table string, row map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Sink.Upsert(ctx, table, row)
}

// authorizationFailure reports whether err is a 401 from the DocuSign API
// (duhttp.ErrUnauthorized), as opposed to a transient or server-side
// failure. Only this class of envelope-listing error aborts the sync
// without a checkpoint (spec scenario 6); any other listing failure still
// lets templates sync and the watermark advance.
func authorizationFailure(err error) bool {
	var e *errx.Error
	if errx.As(err, &e) {
		return e.Type == errx.TypeAuthorization
	}
	return false
}

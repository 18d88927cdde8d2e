// Package docusync implements the host-facing entry points for the
// DocuSign connector: Schema declares the ten output tables and their
// primary keys (spec §3, §6); Update runs one incremental sync invocation
// (spec §4.6).
package docusync

import (
	"context"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/Abraxas-365/docusync/internal/docuauth"
	"github.com/Abraxas-365/docusync/internal/docuauth/tokencache"
	"github.com/Abraxas-365/docusync/internal/docuconfig"
	"github.com/Abraxas-365/docusync/internal/duapi"
	"github.com/Abraxas-365/docusync/internal/duarchive"
	"github.com/Abraxas-365/docusync/internal/ducontract"
	"github.com/Abraxas-365/docusync/internal/duhttp"
	"github.com/Abraxas-365/docusync/internal/dusync"
	"github.com/Abraxas-365/docusync/pkg/fsx/fsxlocal"
)

// keySyncWorkers optionally bounds per-envelope concurrency; absent or
// invalid defaults to sequential processing (spec §5's upgrade path).
const keySyncWorkers = "sync_workers"

// processTokenCache is shared across Update calls within one process so a
// single-flight refresh actually has concurrent callers to de-duplicate when
// the host invokes Update concurrently for multiple accounts sharing a token
// cache key (spec §5). It backs every call that doesn't configure redis_url.
var processTokenCache = tokencache.NewInMemory()

// Re-exported so callers never need to import the internal packages
// directly (spec §6's host contract).
type (
	Sink        = ducontract.Sink
	Logger      = ducontract.Logger
	Field       = ducontract.Field
	TableSchema = ducontract.TableSchema
)

// F builds a structured logging field.
func F(key string, value any) Field { return ducontract.F(key, value) }

// NewLogger adapts a pkg/logx logger (nil selects the package default) to
// the Logger the host expects.
var NewLogger = ducontract.NewStdLogger

// Schema enumerates the ten output tables and their primary-key columns
// (spec §3, §6). config is accepted for interface symmetry with Update and
// to allow future per-tenant table toggles; today every tenant gets the
// same ten tables.
func Schema(config map[string]string) []TableSchema {
	return []TableSchema{
		{Table: dusync.TableEnvelope, PrimaryKey: []string{"envelope_id"}},
		{Table: dusync.TableRecipient, PrimaryKey: []string{"envelope_id", "recipient_id"}},
		{Table: dusync.TableEnhancedRecipient, PrimaryKey: []string{"envelope_id", "recipient_id"}},
		{Table: dusync.TableAuditEvent, PrimaryKey: []string{"envelope_id", "event_id"}},
		{Table: dusync.TableEnvelopeNotif, PrimaryKey: []string{"envelope_id", "notification_id"}},
		{Table: dusync.TableDocument, PrimaryKey: []string{"envelope_id", "document_id"}},
		{Table: dusync.TableDocumentContent, PrimaryKey: []string{"envelope_id", "document_id"}},
		{Table: dusync.TableDocumentTab, PrimaryKey: []string{"envelope_id", "document_id", "tab_id"}},
		{Table: dusync.TableCustomField, PrimaryKey: []string{"envelope_id", "field_name"}},
		{Table: dusync.TableTemplate, PrimaryKey: []string{"template_id"}},
	}
}

// Update runs one sync invocation: authenticate, traverse envelopes and
// templates, emit rows to sink, and checkpoint the advanced watermark. An
// auth failure returns an error and sink.Checkpoint is never called (spec
// §4.6, §7).
//
// config carries the configuration surface documented at spec §6
// (integration_key, user_id, oauth_base_url, base_url, account_id, and
// either private_key or private_key_path); it is mutated in place to cache
// the access token. state carries last_envelope_sync/last_template_sync.
func Update(ctx context.Context, config map[string]string, state map[string]string, sink Sink, log Logger) error {
	keyReader, err := fsxlocal.NewLocalFileSystem("/")
	if err != nil {
		return err
	}

	archiver, err := archiverFromConfig(ctx, config, log)
	if err != nil {
		return err
	}

	auth := docuauth.New(keyReader, tokenCacheFromConfig(config, log), log)
	httpClient := duhttp.New(log)
	apiClient := duapi.New(httpClient, config[docuconfig.KeyBaseURL], config[docuconfig.KeyAccountID], log)
	orch := dusync.New(auth, apiClient, archiver, log, syncWorkers(config))

	return orch.Run(ctx, config, state, sink)
}

// archiverFromConfig selects the S3 document archiver when archive_bucket is
// configured, falling back to the noop archiver otherwise (spec §4.8).
func archiverFromConfig(ctx context.Context, config map[string]string, log Logger) (duarchive.Archiver, error) {
	bucket := strings.TrimSpace(config[docuconfig.KeyArchiveBucket])
	if bucket == "" {
		return duarchive.NewNoop(), nil
	}

	archiver, err := duarchive.NewS3(ctx, bucket, config[docuconfig.KeyArchiveRegion], config[docuconfig.KeyArchivePrefix])
	if err != nil {
		return nil, err
	}
	log.Info("document archiving enabled", F("archive_bucket", bucket))
	return archiver, nil
}

// tokenCacheFromConfig selects the Redis-backed token cache when redis_url is
// configured, so that multiple connector instances syncing the same account
// single-flight their JWT exchange through the shared cache rather than only
// within one process (spec §4.7). An unparsable redis_url falls back to the
// in-process cache rather than failing the sync.
func tokenCacheFromConfig(config map[string]string, log Logger) docuauth.TokenCache {
	url := strings.TrimSpace(config[docuconfig.KeyRedisURL])
	if url == "" {
		return processTokenCache
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		log.Warning("invalid redis_url, falling back to in-process token cache", F("error", err.Error()))
		return processTokenCache
	}
	return tokencache.NewRedis(redis.NewClient(opts))
}

// syncWorkers reads the optional sync_workers config override; anything
// absent, blank, or non-positive keeps the sequential baseline (1 worker).
func syncWorkers(config map[string]string) int {
	n, err := strconv.Atoi(config[keySyncWorkers])
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// Package docuconfig validates the connector's configuration surface and
// resolves the RSA private key used by the JWT-bearer exchange (spec §4.1).
package docuconfig

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Abraxas-365/docusync/pkg/errx"
	"github.com/Abraxas-365/docusync/pkg/fsx"
)

// Configuration keys (spec §6).
const (
	KeyIntegrationKey = "integration_key"
	KeyUserID         = "user_id"
	KeyOAuthBaseURL   = "oauth_base_url"
	KeyBaseURL        = "base_url"
	KeyAccountID      = "account_id"
	KeyPrivateKey     = "private_key"
	KeyPrivateKeyPath = "private_key_path"
	KeyAccessToken    = "access_token"

	// KeyArchiveBucket, when non-blank, switches the document archiver from
	// the noop default to the S3 backend (spec §4.8).
	KeyArchiveBucket = "archive_bucket"
	KeyArchiveRegion = "archive_region"
	KeyArchivePrefix = "archive_prefix"

	// KeyRedisURL, when non-blank, switches the token cache from the
	// in-process default to the Redis-backed one (spec §4.7).
	KeyRedisURL = "redis_url"

	defaultPrivateKeyFilename = "private_key"
)

var requiredAuthKeys = []string{KeyIntegrationKey, KeyUserID, KeyOAuthBaseURL}

var registry = errx.NewRegistry("DOCUCONFIG")

var (
	// ErrMissingConfig is raised when one or more required keys are absent
	// or blank after trimming.
	ErrMissingConfig = registry.Register(
		"MISSING_CONFIG", errx.TypeValidation, 400,
		"missing required DocuSign configuration values",
	)
	// ErrPrivateKeyNotFound is raised when neither an inline key nor a
	// readable key file is available.
	ErrPrivateKeyNotFound = registry.Register(
		"PRIVATE_KEY_NOT_FOUND", errx.TypeValidation, 400,
		"DocuSign private key file not found",
	)
)

// EnsureAuthConfig validates the three auth-critical keys are present and
// non-blank, trimming them in place (spec §4.1).
func EnsureAuthConfig(config map[string]string) error {
	var missing []string
	for _, key := range requiredAuthKeys {
		raw, ok := config[key]
		trimmed := strings.TrimSpace(raw)
		if !ok || trimmed == "" {
			missing = append(missing, key)
			continue
		}
		config[key] = trimmed
	}
	if len(missing) > 0 {
		return registry.NewWithMessage(
			ErrMissingConfig,
			fmt.Sprintf("missing required DocuSign configuration values: %s", strings.Join(missing, ", ")),
		)
	}
	return nil
}

// LoadPrivateKey returns the PEM-encoded private key, either inline from
// config or read from the resolved path via reader. Relative paths resolve
// against the running binary's directory, matching spec §4.1.
func LoadPrivateKey(ctx context.Context, config map[string]string, reader fsx.FileReader) (string, error) {
	if inline := strings.TrimSpace(config[KeyPrivateKey]); inline != "" {
		return inline, nil
	}

	path := strings.TrimSpace(config[KeyPrivateKeyPath])
	if path == "" {
		path = defaultPrivateKeyFilename
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(installDir(), path)
	}

	data, err := reader.ReadFile(ctx, path)
	if err != nil {
		return "", registry.NewWithCause(ErrPrivateKeyNotFound, err).WithDetail("path", path)
	}
	return string(data), nil
}

// installDir returns the directory containing the running executable, used
// to resolve a relative private_key_path the same way regardless of the
// caller's current working directory.
func installDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

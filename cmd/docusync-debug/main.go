// Command docusync-debug runs the connector against a real Postgres
// warehouse outside of the host ingestion platform, for local development
// and manual syncs (SPEC_FULL.md C10).
package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/Abraxas-365/docusync"
	"github.com/Abraxas-365/docusync/internal/dudebug"
	"github.com/Abraxas-365/docusync/internal/duwarehouse/localpg"
	"github.com/Abraxas-365/docusync/pkg/logx"
)

func main() {
	logx.Info("starting docusync-debug server")

	config, err := loadJSONFile(getEnv("DOCUSYNC_CONFIG_FILE", "configuration.json"))
	if err != nil {
		logx.Fatalf("failed to load configuration.json: %v", err)
	}

	log := docusync.NewLogger(logx.GetDefaultLogger())

	sink, err := localpg.Open(context.Background(), mustEnv("DOCUSYNC_DATABASE_URL"), docusync.Schema(config))
	if err != nil {
		logx.Fatalf("failed to open local warehouse: %v", err)
	}
	defer sink.Close()

	stateFile := getEnv("DOCUSYNC_STATE_FILE", "state.json")

	run := func(ctx context.Context) error {
		state, err := loadJSONFile(stateFile)
		if err != nil {
			return err
		}

		checkpointingSink := &fileCheckpointSink{Sink: sink, path: stateFile}
		return docusync.Update(ctx, config, state, checkpointingSink, log)
	}

	server := dudebug.New(run, log)
	if err := server.ListenAndWait(":" + getEnv("DOCUSYNC_DEBUG_PORT", "8090")); err != nil {
		logx.Fatalf("debug server error: %v", err)
	}
}

// fileCheckpointSink wraps a localpg.Sink so a successful sync also
// persists the new watermark to state.json, matching the host's
// checkpoint-to-disk behavior between debug-binary invocations.
type fileCheckpointSink struct {
	*localpg.Sink
	path string
}

func (s *fileCheckpointSink) Checkpoint(ctx context.Context, state map[string]string) error {
	if err := s.Sink.Checkpoint(ctx, state); err != nil {
		return err
	}
	return writeJSONFile(s.path, state)
}

func loadJSONFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, err
	}
	var out map[string]string
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func writeJSONFile(path string, data map[string]string) error {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func mustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		logx.Fatalf("required environment variable %s is not set", key)
	}
	return v
}

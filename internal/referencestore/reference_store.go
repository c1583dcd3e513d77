package referencestore

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"bambara-asr-leaderboard/internal/config"
	"bambara-asr-leaderboard/internal/logging"
	"bambara-asr-leaderboard/internal/objectstore"
)

// ReferenceSet is the immutable id → transcript mapping every submission
// is scored against. It is loaded once at startup and shared read-only.
type ReferenceSet map[string]string

// Load fetches the reference transcripts from the configured source. The
// source precedence is: MinIO object, HTTP(S) URL, local file. Any failure
// here is fatal to the process: the system cannot operate against a
// partial or empty reference mapping.
func Load(ctx context.Context, cfg config.ReferenceConfig, store *objectstore.MinioClient) (ReferenceSet, error) {
	var (
		data   []byte
		source string
		err    error
	)

	switch {
	case cfg.ObjectName != "":
		source = fmt.Sprintf("minio object %q", cfg.ObjectName)
		if store == nil {
			return nil, fmt.Errorf("failed to load the reference set: object %q configured but MinIO is not", cfg.ObjectName)
		}
		data, err = store.GetObjectBytes(ctx, cfg.ObjectName)
	case cfg.URL != "":
		source = fmt.Sprintf("url %q", cfg.URL)
		data, err = fetchURL(ctx, cfg.URL)
	default:
		source = fmt.Sprintf("file %q", cfg.FilePath)
		data, err = os.ReadFile(cfg.FilePath)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load the reference set from %s: %w", source, err)
	}

	refs, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load the reference set from %s: %w", source, err)
	}
	if len(refs) == 0 {
		return nil, fmt.Errorf("reference set from %s is empty", source)
	}

	logging.Log.Info().Int("samples", len(refs)).Msgf("loaded reference set from %s", source)
	return refs, nil
}

// IDs returns the set of sample ids, the shape validation needs.
func (r ReferenceSet) IDs() map[string]struct{} {
	ids := make(map[string]struct{}, len(r))
	for id := range r {
		ids[id] = struct{}{}
	}
	return ids
}

// parse reads an id,text CSV into a ReferenceSet. Duplicate ids are a
// collaborator-side defect and rejected outright.
func parse(data []byte) (ReferenceSet, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = 2

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read reference header: %w", err)
	}
	if len(header) != 2 || header[0] != "id" || header[1] != "text" {
		return nil, fmt.Errorf("reference data must have columns 'id,text', found: %v", header)
	}

	refs := make(ReferenceSet)
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read reference row: %w", err)
		}
		if _, exists := refs[rec[0]]; exists {
			return nil, fmt.Errorf("duplicate id %q in reference data", rec[0])
		}
		refs[rec[0]] = rec[1]
	}
	return refs, nil
}

func fetchURL(ctx context.Context, url string) ([]byte, error) {
	client := &http.Client{Timeout: 60 * time.Second}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}

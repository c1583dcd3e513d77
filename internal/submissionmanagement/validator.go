package submissionmanagement

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"bambara-asr-leaderboard/internal/coreengine/scoringengine"
	"bambara-asr-leaderboard/internal/datastore"
)

// Submission is a raw upload plus its metadata, before validation.
type Submission struct {
	ModelName string
	License   datastore.License
	ModelURL  string
	Rows      []scoringengine.Row
}

// ParseLicense maps a user-supplied license label onto the enum. The
// comparison ignores case and spacing so "OpenSource" and "open source"
// both resolve.
func ParseLicense(raw string) (datastore.License, bool) {
	switch strings.ReplaceAll(strings.ToLower(strings.TrimSpace(raw)), " ", "") {
	case "opensource":
		return datastore.LicenseOpenSource, true
	case "proprietary", "":
		// An omitted license defaults to Proprietary, the conservative choice.
		return datastore.LicenseProprietary, true
	default:
		return "", false
	}
}

// ParseCSV reads a two-column id,text upload into rows, keeping the header
// for the schema check. The column check itself is Validate's job; here
// only structurally unreadable CSV is rejected.
func ParseCSV(data []byte) (header []string, rows []scoringengine.Row, err error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil, nil
	}

	header = records[0]

	// The schema allows id,text in either order; map columns by name and
	// fall back to positional when the header is not the expected one (the
	// schema check will reject it anyway).
	idIdx, textIdx := 0, 1
	for i, name := range header {
		switch name {
		case "id":
			idIdx = i
		case "text":
			textIdx = i
		}
	}

	rows = make([]scoringengine.Row, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := scoringengine.Row{}
		if idIdx < len(rec) {
			row.ID = rec[idIdx]
		}
		if textIdx < len(rec) {
			row.Text = rec[textIdx]
		}
		rows = append(rows, row)
	}
	return header, rows, nil
}

// Validator checks a submission against structural and referential
// constraints before any scoring happens.
type Validator struct {
	// modelHubHost is the host an open-source model URL must live on.
	modelHubHost string
}

// NewValidator creates a Validator requiring open-source model URLs to
// point at modelHubHost.
func NewValidator(modelHubHost string) *Validator {
	return &Validator{modelHubHost: modelHubHost}
}

// Validate runs the checks in a fixed order and fails fast: the first
// violation wins and is returned immediately.
//
//  1. at least one data row
//  2. columns are exactly {id, text}
//  3. no duplicate ids
//  4. no reference id missing from the submission
//  5. no submitted id outside the reference set
//  6. model name non-blank
//  7. open-source license carries a valid model-hub URL
func (v *Validator) Validate(header []string, sub Submission, referenceIDs map[string]struct{}) *ValidationError {
	if len(sub.Rows) == 0 {
		return newEmptySubmissionError()
	}

	if !isIDTextHeader(header) {
		return newSchemaError(header)
	}

	seen := make(map[string]struct{}, len(sub.Rows))
	var duplicates []string
	dupSeen := make(map[string]struct{})
	for _, row := range sub.Rows {
		if _, ok := seen[row.ID]; ok {
			if _, reported := dupSeen[row.ID]; !reported {
				duplicates = append(duplicates, row.ID)
				dupSeen[row.ID] = struct{}{}
			}
			continue
		}
		seen[row.ID] = struct{}{}
	}
	if len(duplicates) > 0 {
		return newDuplicateIDsError(duplicates)
	}

	var missing []string
	for id := range referenceIDs {
		if _, ok := seen[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return newMissingIDsError(missing)
	}

	var extra []string
	for id := range seen {
		if _, ok := referenceIDs[id]; !ok {
			extra = append(extra, id)
		}
	}
	if len(extra) > 0 {
		sort.Strings(extra)
		return newExtraIDsError(extra)
	}

	if strings.TrimSpace(sub.ModelName) == "" {
		return newInvalidModelNameError()
	}

	if sub.License == datastore.LicenseOpenSource {
		if err := v.checkModelURL(sub.ModelURL); err != nil {
			return err
		}
	}

	return nil
}

// isIDTextHeader reports whether the header is exactly the columns id and
// text, in either order.
func isIDTextHeader(header []string) bool {
	if len(header) != 2 {
		return false
	}
	return (header[0] == "id" && header[1] == "text") || (header[0] == "text" && header[1] == "id")
}

func (v *Validator) checkModelURL(raw string) *ValidationError {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return newMissingModelURLError("no URL provided")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return newMissingModelURLError(fmt.Sprintf("%q is not a valid URL", raw))
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return newMissingModelURLError(fmt.Sprintf("%q must use http or https", raw))
	}
	host := u.Hostname()
	if host != v.modelHubHost && !strings.HasSuffix(host, "."+v.modelHubHost) {
		return newMissingModelURLError(fmt.Sprintf("%q must be a %s URL", raw, v.modelHubHost))
	}
	return nil
}

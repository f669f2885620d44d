// Package audit records every reminder email attempt.
package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/google/uuid"

	"task-reminder-bridge/internal/common/errors"
	"task-reminder-bridge/internal/models"
)

// Recorder stores dispatch records. Failures never affect sending or the ledger.
type Recorder interface {
	Record(ctx context.Context, rec models.DispatchRecord) error
}

// Nop discards records.
type Nop struct{}

func (Nop) Record(context.Context, models.DispatchRecord) error { return nil }

// ElasticsearchRecorder indexes one document per attempt.
type ElasticsearchRecorder struct {
	es    *elasticsearch.Client
	index string
}

func NewElasticsearchRecorder(es *elasticsearch.Client, index string) *ElasticsearchRecorder {
	return &ElasticsearchRecorder{es: es, index: index}
}

func (r *ElasticsearchRecorder) Record(ctx context.Context, rec models.DispatchRecord) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return errors.NewAuditFailedError(fmt.Errorf("failed to marshal dispatch record: %w", err))
	}

	res, err := r.es.Index(r.index, bytes.NewReader(body),
		r.es.Index.WithDocumentID(uuid.NewString()),
		r.es.Index.WithContext(ctx),
	)
	if err != nil {
		return errors.NewAuditFailedError(err)
	}
	defer res.Body.Close()

	if res.IsError() {
		var errResp map[string]interface{}
		if err := json.NewDecoder(res.Body).Decode(&errResp); err != nil {
			return errors.NewAuditFailedError(fmt.Errorf("error response [%s]", res.Status()))
		}
		return errors.NewAuditFailedError(fmt.Errorf("error indexing dispatch: [%s] %v", res.Status(), errResp["error"]))
	}
	return nil
}

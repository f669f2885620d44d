package audit

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "task-reminder-bridge/internal/common/errors"
	"task-reminder-bridge/internal/models"
)

type indexedDoc struct {
	path string
	body models.DispatchRecord
}

func setupES(t *testing.T, status int) (*elasticsearch.Client, func() []indexedDoc) {
	t.Helper()
	var (
		mu   sync.Mutex
		docs []indexedDoc
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")

		var rec models.DispatchRecord
		_ = json.NewDecoder(r.Body).Decode(&rec)
		mu.Lock()
		docs = append(docs, indexedDoc{path: r.URL.Path, body: rec})
		mu.Unlock()

		w.WriteHeader(status)
		if status >= 400 {
			_, _ = w.Write([]byte(`{"error":{"type":"cluster_block_exception"}}`))
			return
		}
		_, _ = w.Write([]byte(`{"result":"created"}`))
	}))
	t.Cleanup(server.Close)

	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{server.URL}})
	require.NoError(t, err)

	return es, func() []indexedDoc {
		mu.Lock()
		defer mu.Unlock()
		return append([]indexedDoc(nil), docs...)
	}
}

func TestElasticsearchRecorder_Record(t *testing.T) {
	es, docs := setupES(t, http.StatusCreated)
	recorder := NewElasticsearchRecorder(es, "reminder-dispatches")

	err := recorder.Record(context.Background(), models.DispatchRecord{
		CycleID:        "c-1",
		UserID:         "7",
		NotificationID: "1",
		TaskTitle:      "A",
		Recipient:      "ada@example.com",
		Status:         models.DispatchStatusSent,
		AttemptedAt:    time.Now().UTC(),
	})
	require.NoError(t, err)

	got := docs()
	require.Len(t, got, 1)
	assert.True(t, strings.HasPrefix(got[0].path, "/reminder-dispatches/_doc/"), got[0].path)
	assert.Equal(t, "1", got[0].body.NotificationID)
	assert.Equal(t, models.DispatchStatusSent, got[0].body.Status)
}

func TestElasticsearchRecorder_ErrorResponse(t *testing.T) {
	es, _ := setupES(t, http.StatusForbidden)
	recorder := NewElasticsearchRecorder(es, "reminder-dispatches")

	err := recorder.Record(context.Background(), models.DispatchRecord{NotificationID: "1"})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeAuditFailed))
	assert.Contains(t, err.Error(), "cluster_block_exception")
}

func TestNop(t *testing.T) {
	var r Recorder = Nop{}
	assert.NoError(t, r.Record(context.Background(), models.DispatchRecord{}))
}

// Package elastic keeps search projections in Elasticsearch. Writes are by
// document id, so replaying an upsert or a delete leaves the same index.
package elastic

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	json "github.com/goccy/go-json"
	"go.uber.org/zap"
)

// Indexer writes documents of one index.
type Indexer interface {
	Upsert(ctx context.Context, id string, doc any) error
	Delete(ctx context.Context, id string) error
}

// Index is an Indexer over one named index.
type Index struct {
	client  *elasticsearch.Client
	name    string
	timeout time.Duration
	log     *zap.Logger
}

// NewIndex binds name (with the configured prefix) to client.
func NewIndex(client *elasticsearch.Client, conf Config, name string, log *zap.Logger) *Index {
	return &Index{
		client:  client,
		name:    conf.IndexPrefix + name,
		timeout: conf.RequestTimeout,
		log:     log.With(zap.String("index", conf.IndexPrefix+name)),
	}
}

// Name is the full index name.
func (i *Index) Name() string { return i.name }

// Upsert replaces the document stored under id.
func (i *Index) Upsert(ctx context.Context, id string, doc any) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode document %s: %w", id, err)
	}

	ctx, cancel := i.withTimeout(ctx)
	defer cancel()

	res, err := i.client.Index(i.name, bytes.NewReader(body),
		i.client.Index.WithDocumentID(id),
		i.client.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("failed to index document %s: %w", id, err)
	}
	defer closeBody(res)

	if res.IsError() {
		return responseError("index", id, res)
	}
	i.log.Debug("document indexed", zap.String("id", id))
	return nil
}

// Delete removes the document. A missing document counts as deleted.
func (i *Index) Delete(ctx context.Context, id string) error {
	ctx, cancel := i.withTimeout(ctx)
	defer cancel()

	res, err := i.client.Delete(i.name, id, i.client.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to delete document %s: %w", id, err)
	}
	defer closeBody(res)

	if res.StatusCode == http.StatusNotFound {
		i.log.Debug("document already absent", zap.String("id", id))
		return nil
	}
	if res.IsError() {
		return responseError("delete", id, res)
	}
	i.log.Debug("document deleted", zap.String("id", id))
	return nil
}

func (i *Index) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if i.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, i.timeout)
}

// ResponseError is a non-2xx answer from Elasticsearch.
type ResponseError struct {
	Op         string
	ID         string
	StatusCode int
	Body       string
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("elasticsearch %s %s failed with status %d: %s", e.Op, e.ID, e.StatusCode, e.Body)
}

func responseError(op, id string, res *esapi.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
	return &ResponseError{Op: op, ID: id, StatusCode: res.StatusCode, Body: string(raw)}
}

func closeBody(res *esapi.Response) {
	if res != nil && res.Body != nil {
		_, _ = io.Copy(io.Discard, res.Body)
		_ = res.Body.Close()
	}
}

package elastic

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordedRequest struct {
	Method string
	Path   string
	Body   string
}

// fakeTransport answers every request with the next queued status.
type fakeTransport struct {
	mu       sync.Mutex
	statuses []int
	requests []recordedRequest
}

func (f *fakeTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var body string
	if req.Body != nil {
		raw, _ := io.ReadAll(req.Body)
		body = string(raw)
	}
	f.requests = append(f.requests, recordedRequest{Method: req.Method, Path: req.URL.Path, Body: body})

	status := http.StatusOK
	if len(f.statuses) > 0 {
		status, f.statuses = f.statuses[0], f.statuses[1:]
	}
	header := http.Header{}
	header.Set("X-Elastic-Product", "Elasticsearch")
	header.Set("Content-Type", "application/json")
	return &http.Response{
		StatusCode: status,
		Header:     header,
		Body:       io.NopCloser(strings.NewReader(`{"result":"ok"}`)),
		Request:    req,
	}, nil
}

func newTestIndex(t *testing.T, statuses ...int) (*Index, *fakeTransport) {
	t.Helper()
	ft := &fakeTransport{statuses: statuses}
	conf := Config{Addresses: []string{"http://es:9200"}, IndexPrefix: "test-"}
	applyDefaults(&conf)
	conf.MaxRetries = 0
	client, err := NewClient(conf, ft)
	require.NoError(t, err)
	return NewIndex(client, conf, "recipes", zap.NewNop()), ft
}

type recipeDoc struct {
	RecipeID   int64  `json:"recipe_id"`
	RecipeName string `json:"recipe_name"`
}

func TestIndex_Upsert(t *testing.T) {
	idx, ft := newTestIndex(t, http.StatusCreated)

	err := idx.Upsert(context.Background(), "12", recipeDoc{RecipeID: 12, RecipeName: "pho"})

	require.NoError(t, err)
	require.Len(t, ft.requests, 1)
	assert.Equal(t, http.MethodPut, ft.requests[0].Method)
	assert.Equal(t, "/test-recipes/_doc/12", ft.requests[0].Path)
	assert.JSONEq(t, `{"recipe_id":12,"recipe_name":"pho"}`, ft.requests[0].Body)
	assert.Equal(t, "test-recipes", idx.Name())
}

func TestIndex_UpsertError(t *testing.T) {
	idx, _ := newTestIndex(t, http.StatusBadRequest)

	err := idx.Upsert(context.Background(), "12", recipeDoc{RecipeID: 12})

	var respErr *ResponseError
	require.ErrorAs(t, err, &respErr)
	assert.Equal(t, http.StatusBadRequest, respErr.StatusCode)
	assert.Equal(t, "index", respErr.Op)
}

func TestIndex_Delete(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr bool
	}{
		{name: "deleted", status: http.StatusOK},
		{name: "already absent counts as success", status: http.StatusNotFound},
		{name: "server error", status: http.StatusInternalServerError, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx, ft := newTestIndex(t, tt.status)

			err := idx.Delete(context.Background(), "12")

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			require.Len(t, ft.requests, 1)
			assert.Equal(t, http.MethodDelete, ft.requests[0].Method)
			assert.Equal(t, "/test-recipes/_doc/12", ft.requests[0].Path)
		})
	}
}

func TestValidateConfig(t *testing.T) {
	assert.NoError(t, validateConfig(Config{Addresses: []string{"http://es:9200"}}))
	assert.ErrorContains(t, validateConfig(Config{}), "at least one address")
	assert.ErrorContains(t, validateConfig(Config{Addresses: []string{"a"}, APIKey: "k", Username: "u"}), "either api-key or username")
}

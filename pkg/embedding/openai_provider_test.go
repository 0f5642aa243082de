package embedding

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAIGenerateHitsVersionedEndpoint(t *testing.T) {
	var gotPath string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"index":0,"embedding":[3.0,4.0]}]}`))
	}))
	defer server.Close()

	p := NewOpenAIProvider("sk-test", server.URL, "")

	vector, err := p.Generate(context.Background(), "some text", TaskRetrievalQuery)
	require.NoError(t, err)

	assert.Equal(t, "/v1/embeddings", gotPath)
	require.Len(t, vector, 2)
	assert.InDelta(t, 0.6, vector[0], 1e-6)
	assert.InDelta(t, 0.8, vector[1], 1e-6)
}

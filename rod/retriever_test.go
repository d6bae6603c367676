//go:build integration

package rod_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DervishD/sacamantecas"
	"github.com/DervishD/sacamantecas/rod"
)

func TestRetriever_Retrieve_ContextCancellation(t *testing.T) {
	t.Parallel()

	// Server that never responds
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {}
	}))
	defer srv.Close()

	retriever, err := rod.NewRetriever()
	require.NoError(t, err)
	defer retriever.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // Cancel immediately

	_, err = retriever.Retrieve(ctx, srv.URL)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRetriever_Retrieve_ReturnsRenderedMarkup(t *testing.T) {
	t.Parallel()

	// Serve a record page whose metadata only exists after JavaScript runs
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>Registro</title></head>
<body>
<div id="metadata">Cargando...</div>
<script>
document.getElementById('metadata').innerHTML =
  '<span class="etiqueta">Autor:</span><span class="dato">Cervantes</span>';
</script>
</body>
</html>`))
	}))
	defer srv.Close()

	retriever, err := rod.NewRetriever()
	require.NoError(t, err)
	defer retriever.Close()

	doc, err := retriever.Retrieve(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.Contains(t, doc.Content, "Cervantes")
	assert.NotContains(t, doc.Content, "Cargando...")
	assert.Equal(t, "utf-8", doc.Charset)
}

func TestRetriever_Retrieve_FollowsRedirects(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/viejo", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/registro/1", http.StatusFound)
	})
	mux.HandleFunc("/registro/1", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body>destino</body></html>`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	retriever, err := rod.NewRetriever()
	require.NoError(t, err)
	defer retriever.Close()

	doc, err := retriever.Retrieve(context.Background(), srv.URL+"/viejo")

	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/viejo", doc.SourceURI)
	assert.Contains(t, doc.URI, "/registro/1")
	assert.Contains(t, doc.Content, "destino")
}

func TestRetriever_Retrieve_TimeoutTriggersOnSlowPage(t *testing.T) {
	t.Parallel()

	// Server that delays longer than the retrieval timeout
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body>tarde</body></html>`))
	}))
	defer srv.Close()

	retriever, err := rod.NewRetriever(rod.WithTimeout(100 * time.Millisecond))
	require.NoError(t, err)
	defer retriever.Close()

	_, err = retriever.Retrieve(context.Background(), srv.URL)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRetriever_Close_Idempotent(t *testing.T) {
	t.Parallel()

	retriever, err := rod.NewRetriever()
	require.NoError(t, err)

	err = retriever.Close()
	require.NoError(t, err)

	// Second close should also succeed (not panic or error)
	err = retriever.Close()
	require.NoError(t, err)
}

func TestRetriever_Retrieve_AfterClose_ReturnsError(t *testing.T) {
	t.Parallel()

	retriever, err := rod.NewRetriever()
	require.NoError(t, err)

	err = retriever.Close()
	require.NoError(t, err)

	_, err = retriever.Retrieve(context.Background(), "http://example.com")

	require.Error(t, err)
	assert.Equal(t, sacamantecas.EINVALID, sacamantecas.ErrorCode(err))
	assert.Contains(t, sacamantecas.ErrorMessage(err), "closed")
}

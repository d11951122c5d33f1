package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchToFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Kate", r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte("payload"))
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "out.bin")
	n, err := FetchToFile(context.Background(), NewDownloadClient(), srv.URL, map[string]string{"User-Agent": "Kate"}, dest)
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
}

func TestFetchToFileStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "out.bin")
	_, err := FetchToFile(context.Background(), NewAPIClient(), srv.URL, nil, dest)

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusForbidden, se.Status)
	assert.NoFileExists(t, dest)
}

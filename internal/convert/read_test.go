package convert

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/restaurant-cli/internal/fetcher"
)

func TestIsRemote(t *testing.T) {
	assert.True(t, IsRemote("https://example.com/list.csv"))
	assert.True(t, IsRemote("http://example.com/list.xlsx"))
	assert.False(t, IsRemote("list.csv"))
	assert.False(t, IsRemote("/tmp/https.csv"))
}

func TestReadFile_Remote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/data/list.csv", r.URL.Path)
		w.Write([]byte("name,address\n땀땀,서울 강남구 강남대로98길 12-5\n")) //nolint:errcheck
	}))
	defer srv.Close()

	f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{Timeout: 5 * time.Second, BaseBackoff: time.Millisecond})
	tbl, err := ReadFile(context.Background(), srv.URL+"/data/list.csv?token=x", ReadOptions{Fetcher: f})
	require.NoError(t, err)

	assert.Equal(t, srv.URL+"/data/list.csv?token=x", tbl.Path)
	assert.Equal(t, []string{"name", "address"}, tbl.Header)
	require.Len(t, tbl.Rows, 1)
	assert.Equal(t, "땀땀", tbl.Rows[0][0])
}

func TestReadFile_RemoteErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := ReadFile(context.Background(), srv.URL+"/list.json", ReadOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file type")

	_, err = ReadFile(context.Background(), srv.URL+"/list.csv", ReadOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "convert: download")
}

func TestReadFiles_MixedLocalAndRemote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("name\taddress\n을지로 노가리\t서울 중구 을지로13길 19\n")) //nolint:errcheck
	}))
	defer srv.Close()

	local := readSample(t, sampleCSV).Path
	tables, err := ReadFiles(context.Background(), []string{srv.URL + "/more.tsv", local}, ReadOptions{}, 2)
	require.NoError(t, err)
	require.Len(t, tables, 2)
	assert.Equal(t, "을지로 노가리", tables[0].Rows[0][0])
	assert.Equal(t, local, tables[1].Path)
}

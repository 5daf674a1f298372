package main

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voidshard/tallyman/pkg/adapter"
	"github.com/voidshard/tallyman/pkg/crypto"
	"github.com/voidshard/tallyman/pkg/detect"
	"github.com/voidshard/tallyman/pkg/pipeline"
)

func testServer(signKey string) *httptest.Server {
	proc := pipeline.New(nil, adapter.Options{})
	s := &server{
		proc:    proc,
		reg:     detect.DefaultRegistry(),
		signKey: signKey,
		format:  "tally-xml",
		log:     zerolog.Nop(),
	}
	return httptest.NewServer(s.router())
}

func TestHealthAndBanks(t *testing.T) {
	srv := testServer("")
	defer srv.Close()

	res, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.NotEmpty(t, res.Header.Get(headerRequestID))

	res, err = http.Get(srv.URL + "/v1/banks")
	require.NoError(t, err)
	defer res.Body.Close()

	var caps capabilities
	require.NoError(t, json.NewDecoder(res.Body).Decode(&caps))
	assert.Equal(t, detect.DefaultRegistry().Banks(), caps.Banks)

	res, err = http.Post(srv.URL+"/v1/banks", "text/plain", nil)
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, res.StatusCode)
}

func TestServeProcess(t *testing.T) {
	srv := testServer("")
	defer srv.Close()

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for name, content := range map[string]string{"sbi.csv": sbiCSV, "bad.csv": "A,B\n1,2\n"} {
		fw, err := mw.CreateFormFile("file", name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	res, err := http.Post(srv.URL+"/v1/process", mw.FormDataContentType(), body)
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	var results []map[string]interface{}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&results))
	require.Len(t, results, 2)

	byFile := map[string]map[string]interface{}{}
	for _, r := range results {
		byFile[r["file"].(string)] = r
	}
	assert.Equal(t, "success", byFile["sbi.csv"]["status"])
	assert.Equal(t, "SBI", byFile["sbi.csv"]["bank"])
	assert.Equal(t, "error", byFile["bad.csv"]["status"])
}

func TestServeProcessNoFiles(t *testing.T) {
	srv := testServer("")
	defer srv.Close()

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	require.NoError(t, mw.WriteField("note", "nothing here"))
	require.NoError(t, mw.Close())

	res, err := http.Post(srv.URL+"/v1/process", mw.FormDataContentType(), body)
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestServeExport(t *testing.T) {
	key := "0123456789abcdef0123456789abcdef"
	srv := testServer(key)
	defer srv.Close()

	res, err := http.Post(srv.URL+"/v1/export", "application/json", bytes.NewBufferString(txnsJSON))
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "application/xml", res.Header.Get("Content-Type"))

	doc, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	assert.Contains(t, string(doc), "<TALLYREQUEST>Import Data</TALLYREQUEST>")

	ok, err := crypto.Verify(doc, res.Header.Get(headerSignature), key)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestServeExportErrors(t *testing.T) {
	srv := testServer("")
	defer srv.Close()

	res, err := http.Post(srv.URL+"/v1/export?format=qif", "application/json", bytes.NewBufferString(txnsJSON))
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	res, err = http.Post(srv.URL+"/v1/export", "application/json", bytes.NewBufferString(`{"date": 1}`))
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	var reply map[string]interface{}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&reply))
	assert.Equal(t, false, reply["success"])
}

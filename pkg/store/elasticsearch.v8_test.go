package store

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeES answers index creation and _bulk requests, recording document IDs.
type fakeES struct {
	mu  sync.Mutex
	ids []string
}

func (f *fakeES) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Elastic-Product", "Elasticsearch")

	if !strings.HasSuffix(r.URL.Path, "_bulk") {
		fmt.Fprint(w, `{"acknowledged":true}`)
		return
	}

	items := []string{}
	sc := bufio.NewScanner(r.Body)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for n := 0; sc.Scan(); n++ {
		if n%2 == 1 {
			continue
		}
		var meta map[string]struct {
			ID string `json:"_id"`
		}
		if err := json.Unmarshal(sc.Bytes(), &meta); err != nil {
			continue
		}
		id := meta["index"].ID

		f.mu.Lock()
		f.ids = append(f.ids, id)
		f.mu.Unlock()

		items = append(items, fmt.Sprintf(`{"index":{"_index":"tallyman","_id":%q,"status":201,"result":"created"}}`, id))
	}

	fmt.Fprintf(w, `{"took":1,"errors":false,"items":[%s]}`, strings.Join(items, ","))
}

func TestElasticsearchV8Write(t *testing.T) {
	fake := &fakeES{}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	es := NewElasticsearchV8(Options{}, srv.URL)
	require.NoError(t, es.Write(context.Background(), statements()))

	records, err := Records(statements())
	require.NoError(t, err)

	want := []string{}
	for _, r := range records {
		want = append(want, r.ID)
	}
	assert.ElementsMatch(t, want, fake.ids)
}

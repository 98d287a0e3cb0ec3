package scan

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"sourcecheck/internal/probe"
)

// End-to-end pass with the real HTTP prober: one good source, one garbage
// location, one dead endpoint, under a concurrency cap of 2.
func TestScan_MixedCatalog(t *testing.T) {
	ok := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(200)
	}))
	defer ok.Close()

	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	deadURL := dead.URL
	dead.Close()

	records := []SourceRecord{
		{OwnerID: "ext1", Location: ok.URL},
		{OwnerID: "ext1", Location: "not a url"},
		{OwnerID: "ext2", Location: deadURL},
	}

	r, err := NewRunner(probe.NewHTTPProber(2*time.Second), nil, Options{MaxConcurrency: 2, Timeout: 2 * time.Second})
	if err != nil {
		t.Fatal(err)
	}
	rep := r.Run(context.Background(), records)

	ext1 := rep.Get("ext1")
	if len(ext1) != 2 {
		t.Fatalf("want 2 outcomes for ext1, got %d", len(ext1))
	}
	if ext1[0].Status != probe.StatusReachable {
		t.Fatalf("want ext1[0] reachable, got %+v", ext1[0])
	}
	if ext1[1].Status != probe.StatusMalformed {
		t.Fatalf("want ext1[1] malformed, got %+v", ext1[1])
	}

	ext2 := rep.Get("ext2")
	if len(ext2) != 1 {
		t.Fatalf("want 1 outcome for ext2, got %d", len(ext2))
	}
	if st := ext2[0].Status; st != probe.StatusUnreachable && st != probe.StatusTimedOut {
		t.Fatalf("want ext2 unreachable or timed_out, got %s", st)
	}
}

package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const sampleIndex = `[
  {"name":"Reader One","pkg":"com.example.readerone","apk":"readerone.apk","lang":"es","code":14,"version":"1.4.2","nsfw":0,
   "sources":[
     {"name":"Primary","lang":"es","id":"111","baseUrl":"https://primary.example"},
     {"name":"Mirror","lang":"es","id":"112","baseUrl":"https://mirror.example"}
   ]},
  {"name":"Reader Two","pkg":"com.example.readertwo","apk":"readertwo.apk","lang":"en","code":3,"version":"0.9.1","nsfw":1,
   "sources":[
     {"name":"Only","lang":"en","id":"211","baseUrl":"https://only.example"}
   ]},
  {"name":"No Pkg","pkg":"","apk":"nopkg.apk","lang":"es","code":1,"version":"0.1.0","nsfw":0,
   "sources":[
     {"name":"X","lang":"es","id":"311","baseUrl":"https://x.example"}
   ]}
]`

func TestParse(t *testing.T) {
	exts, err := Parse(strings.NewReader(sampleIndex))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(exts) != 3 {
		t.Fatalf("want 3 extensions, got %d", len(exts))
	}
	if exts[0].Pkg != "com.example.readerone" || len(exts[0].Sources) != 2 {
		t.Fatalf("first extension wrong: %+v", exts[0])
	}
	if exts[0].Sources[0].BaseURL != "https://primary.example" {
		t.Fatalf("baseUrl not decoded: %+v", exts[0].Sources[0])
	}
}

func TestParse_Garbage(t *testing.T) {
	if _, err := Parse(strings.NewReader(`{"not":"an array"}`)); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestRecords_OrderAndLangFilter(t *testing.T) {
	exts, err := Parse(strings.NewReader(sampleIndex))
	if err != nil {
		t.Fatal(err)
	}

	all := Records(exts, "")
	if len(all) != 4 {
		t.Fatalf("want 4 records, got %d", len(all))
	}
	// input order preserved across extensions and sources
	wantOrder := []string{
		"https://primary.example",
		"https://mirror.example",
		"https://only.example",
		"https://x.example",
	}
	for i, loc := range wantOrder {
		if all[i].Location != loc {
			t.Fatalf("record %d: want %s, got %s", i, loc, all[i].Location)
		}
	}

	es := Records(exts, "es")
	if len(es) != 3 {
		t.Fatalf("want 3 es records, got %d", len(es))
	}
	for _, rec := range es {
		if rec.Location == "https://only.example" {
			t.Fatalf("en source leaked through es filter")
		}
	}
	// owner falls back to the display name when pkg is empty
	if es[2].OwnerID != "No Pkg" {
		t.Fatalf("want fallback owner 'No Pkg', got %q", es[2].OwnerID)
	}
}

func TestClient_Fetch(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleIndex))
	}))
	defer s.Close()

	c := NewClient(2 * time.Second)
	exts, err := c.Fetch(context.Background(), s.URL)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(exts) != 3 {
		t.Fatalf("want 3 extensions, got %d", len(exts))
	}
}

func TestClient_FetchNon200(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", 500)
	}))
	defer s.Close()

	c := NewClient(2 * time.Second)
	if _, err := c.Fetch(context.Background(), s.URL); err == nil {
		t.Fatalf("expected error on 500")
	}
}

package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"sourcecheck/internal/probe"
	"sourcecheck/internal/scan"
)

func TestSlack_OK(t *testing.T) {
	var got string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]string
		_ = json.NewDecoder(r.Body).Decode(&payload)
		got = payload["text"]
		w.WriteHeader(200)
	}))
	defer ts.Close()

	s := NewSlack(ts.URL)
	if s == nil {
		t.Fatal("expected slack client")
	}
	if err := s.Send(context.Background(), "Title", "Hello"); err != nil {
		t.Fatalf("send err: %v", err)
	}
	if got == "" || got[0] != '*' { // starts with "*Title*"
		t.Fatalf("payload not as expected: %q", got)
	}
}

func TestSlack_Non2xx(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(500)
	}))
	defer ts.Close()

	s := NewSlack(ts.URL)
	if err := s.Send(context.Background(), "X", "Y"); err == nil {
		t.Fatalf("expected error on non-2xx")
	}
}

func TestNewSlack_EmptyWebhookDisabled(t *testing.T) {
	if s := NewSlack(""); s != nil {
		t.Fatalf("empty webhook should yield nil client")
	}
}

func TestReportMessage_ListsOnlyDeadSources(t *testing.T) {
	rep := &scan.Report{Owners: []scan.OwnerResult{
		{
			OwnerID: "com.example.readerone",
			Outcomes: []probe.Outcome{
				{Location: "https://alive.example", Status: probe.StatusReachable, Detail: "200 OK"},
				{Location: "https://gone.example", Status: probe.StatusUnreachable, Detail: "503 Service Unavailable"},
			},
		},
		{
			OwnerID: "com.example.allgood",
			Outcomes: []probe.Outcome{
				{Location: "https://fine.example", Status: probe.StatusReachable},
			},
		},
	}}

	title, text := ReportMessage(rep)
	if !strings.Contains(title, "1 dead of 3") {
		t.Fatalf("unexpected title: %q", title)
	}
	if strings.Contains(text, "alive.example") || strings.Contains(text, "fine.example") {
		t.Fatalf("reachable sources leaked into the body: %q", text)
	}
	if !strings.Contains(text, "gone.example") || !strings.Contains(text, "503") {
		t.Fatalf("dead source missing from body: %q", text)
	}
	if strings.Contains(text, "com.example.allgood") {
		t.Fatalf("owner without dead sources should not appear: %q", text)
	}
}

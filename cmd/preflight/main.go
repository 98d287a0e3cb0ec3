// cmd/preflight/main.go
package main

import (
	"fmt"
	"net/url"
	"os"
	"strings"
)

func main() {
	fail := func(msg string) {
		fmt.Fprintln(os.Stderr, "✖", msg)
		os.Exit(1)
	}
	warn := func(msg string) { fmt.Fprintln(os.Stderr, "⚠", msg) }
	ok := func(msg string) { fmt.Println("✔", msg) }

	admin := strings.TrimSpace(os.Getenv("ADMIN_API_KEYS"))
	pub := strings.TrimSpace(os.Getenv("PUBLIC_API_KEYS"))
	addr := strings.TrimSpace(os.Getenv("ADDR"))
	catalogURL := strings.TrimSpace(os.Getenv("CATALOG_URL"))
	webhook := strings.TrimSpace(os.Getenv("SLACK_WEBHOOK"))

	if admin == "" {
		fail("ADMIN_API_KEYS is empty (POST /api/scans will 403).")
	}
	if pub == "" {
		fail("PUBLIC_API_KEYS is empty (report routes will 401).")
	}
	for name, v := range map[string]string{"ADMIN_API_KEYS": admin, "PUBLIC_API_KEYS": pub} {
		if strings.Contains(v, " ") {
			warn(name + " contains spaces; use comma-separated with no spaces, e.g. key1,key2")
		}
	}

	if addr == "" {
		warn("ADDR is empty; the default bind address will be used.")
	} else {
		ok("ADDR=" + addr)
	}

	if catalogURL == "" {
		warn("CATALOG_URL empty — the built-in extension index will be checked.")
	} else if _, err := url.ParseRequestURI(catalogURL); err != nil {
		fail("CATALOG_URL is not a valid URL: " + err.Error())
	} else {
		ok("CATALOG_URL=" + catalogURL)
	}

	if webhook == "" {
		warn("SLACK_WEBHOOK empty — dead-source notifications are disabled.")
	} else {
		ok("SLACK_WEBHOOK present")
	}

	ok("preflight passed")
}

package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/chromedp/chromedp"

	"rota-engine/internal/middleware"
)

func TestE2E_Dashboard(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping browser test in short mode")
	}

	seedArtifacts(t)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/":
			middleware.CSRF(handleDashboard)(w, r)
		case "/api/search":
			middleware.CSRF(handleActiveSearch)(w, r)
		default:
			http.NotFound(w, r)
		}
	}))
	defer ts.Close()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)

	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)
	defer cancel()

	ctx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	ctx, cancel = context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	t.Run("RendersSchedule", func(t *testing.T) {
		var heading, body string
		err := chromedp.Run(ctx,
			chromedp.Navigate(ts.URL),
			chromedp.Text("h1", &heading, chromedp.ByQuery),
			chromedp.Text("body", &body, chromedp.ByQuery),
		)
		if err != nil {
			t.Fatalf("chromedp run failed: %v", err)
		}
		if heading != "Rota Dashboard" {
			t.Errorf("Expected dashboard heading, got %q", heading)
		}
		for _, want := range []string{"Alice", "Bob", "Mon 05/01"} {
			if !strings.Contains(body, want) {
				t.Errorf("Expected %q on the page", want)
			}
		}
	})

	t.Run("SearchFiltersEmployees", func(t *testing.T) {
		var results string
		err := chromedp.Run(ctx,
			chromedp.Navigate(ts.URL),
			chromedp.WaitVisible("#employee-results", chromedp.ByID),
			chromedp.SendKeys(`input[type="text"]`, "ali", chromedp.ByQuery),
			chromedp.Sleep(1*time.Second), // debounce plus patch round trip
			chromedp.Text("#employee-results", &results, chromedp.ByID),
		)
		if err != nil {
			t.Fatalf("chromedp run failed: %v", err)
		}
		if !strings.Contains(results, "Alice") {
			t.Errorf("Expected Alice in filtered results, got %q", results)
		}
		if strings.Contains(results, "Bob") {
			t.Errorf("Expected Bob filtered out, got %q", results)
		}
	})
}

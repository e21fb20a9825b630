package soopify

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"
)

func seedFeatured(t *testing.T, ta *testApp, n int) {
	t.Helper()
	base := time.Now().UTC().Add(-48 * time.Hour)
	for i := 0; i < n; i++ {
		d := base.Add(time.Duration(i) * time.Hour)
		seedBlogPost(t, ta.Store, BlogPost{
			ID:            fmt.Sprintf("f%d", i),
			Title:         fmt.Sprintf("featured %d", i),
			IsFeatured:    true,
			PublishedDate: &d,
		})
	}
}

func insightIDs(t *testing.T, ta *testApp, path string, cookies ...*http.Cookie) []string {
	t.Helper()
	rec := ta.doJSON(t, http.MethodGet, path, "", cookies...)
	if rec.Code != http.StatusOK {
		t.Fatalf("%s: status %d", path, rec.Code)
	}
	body := decodeBody(t, rec)
	data, ok := body["data"].([]interface{})
	if !ok {
		t.Fatalf("%s: expected data array, got %v", path, body)
	}
	ids := make([]string, 0, len(data))
	for _, item := range data {
		m, _ := item.(map[string]interface{})
		id, _ := m["id"].(string)
		ids = append(ids, id)
	}
	return ids
}

func TestPublicInsightsAreCappedAndOrdered(t *testing.T) {
	ta := newTestApp(t)
	seedFeatured(t, ta, 5)

	ids := insightIDs(t, ta, "/api/insights")
	want := []string{"f4", "f3", "f2"}
	if len(ids) != len(want) {
		t.Fatalf("got %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("got %v, want %v", ids, want)
		}
	}
}

func TestPublicInsightsEmpty(t *testing.T) {
	ta := newTestApp(t)
	if ids := insightIDs(t, ta, "/api/insights"); len(ids) != 0 {
		t.Fatalf("expected empty list, got %v", ids)
	}
}

func TestSetFeaturedRejectsSeventh(t *testing.T) {
	ta := newTestApp(t)
	seedFeatured(t, ta, MaxFeatured)
	seedBlogPost(t, ta.Store, BlogPost{ID: "extra", Title: "extra"})
	cookies := ta.login(t)

	rec := ta.doJSON(t, http.MethodPatch, "/api/admin/insights", `{"postId":"extra","isFeatured":true}`, cookies...)
	assertEnvelopeError(t, rec, http.StatusBadRequest, msgFeaturedLimit)

	n, err := ta.Store.CountFeatured(context.Background())
	if err != nil {
		t.Fatalf("CountFeatured: %v", err)
	}
	if n != MaxFeatured {
		t.Fatalf("featured count = %d, want %d", n, MaxFeatured)
	}

	rec = ta.doJSON(t, http.MethodPatch, "/api/admin/insights", `{"postId":"f0","isFeatured":false}`, cookies...)
	if rec.Code != http.StatusOK {
		t.Fatalf("unfeature: status %d body %s", rec.Code, rec.Body.String())
	}
	rec = ta.doJSON(t, http.MethodPatch, "/api/admin/insights", `{"postId":"extra","isFeatured":true}`, cookies...)
	if rec.Code != http.StatusOK {
		t.Fatalf("feature after freeing a slot: status %d body %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	data, _ := body["data"].(map[string]interface{})
	if data["id"] != "extra" || data["is_featured"] != true {
		t.Fatalf("unexpected response %v", body)
	}
}

func TestSetFeaturedInvalidatesPublicCache(t *testing.T) {
	ta := newTestApp(t)
	seedFeatured(t, ta, 2)
	cookies := ta.login(t)

	if ids := insightIDs(t, ta, "/api/insights"); len(ids) != 2 {
		t.Fatalf("expected 2 cached insights, got %v", ids)
	}

	rec := ta.doJSON(t, http.MethodPatch, "/api/admin/insights", `{"postId":"f1","isFeatured":false}`, cookies...)
	if rec.Code != http.StatusOK {
		t.Fatalf("toggle: status %d", rec.Code)
	}

	ids := insightIDs(t, ta, "/api/insights")
	if len(ids) != 1 || ids[0] != "f0" {
		t.Fatalf("expected cache to reflect the toggle, got %v", ids)
	}
}

func TestSetFeaturedValidation(t *testing.T) {
	ta := newTestApp(t)
	seedFeatured(t, ta, 1)
	cookies := ta.login(t)

	rec := ta.doJSON(t, http.MethodPatch, "/api/admin/insights", `{"postId":"f0"}`, cookies...)
	assertEnvelopeError(t, rec, http.StatusBadRequest, msgMissingFields)

	rec = ta.doJSON(t, http.MethodPatch, "/api/admin/insights", `{"isFeatured":true}`, cookies...)
	assertEnvelopeError(t, rec, http.StatusBadRequest, msgMissingFields)

	rec = ta.doJSON(t, http.MethodPatch, "/api/admin/insights", `{"postId":"f0","isFeatured":"yes"}`, cookies...)
	assertEnvelopeError(t, rec, http.StatusBadRequest, msgInvalidInput)

	rec = ta.doJSON(t, http.MethodPatch, "/api/admin/insights", `{"postId":"missing","isFeatured":false}`, cookies...)
	assertEnvelopeError(t, rec, http.StatusNotFound, msgInsightNotFound)
}

func TestAdminInsightsListsPublished(t *testing.T) {
	ta := newTestApp(t)
	seedFeatured(t, ta, 2)
	seedBlogPost(t, ta.Store, BlogPost{ID: "plain", Title: "plain"})
	seedBlogPost(t, ta.Store, BlogPost{ID: "draft", Title: "draft", Status: "draft"})
	cookies := ta.login(t)

	ids := insightIDs(t, ta, "/api/admin/insights", cookies...)
	if len(ids) != 3 {
		t.Fatalf("expected 3 published posts, got %v", ids)
	}
	for _, id := range ids {
		if id == "draft" {
			t.Fatalf("draft must not be listed")
		}
	}
}

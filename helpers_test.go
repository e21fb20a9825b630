package soopify

import (
	"encoding/json"
	"testing"
	"time"
)

func TestBuildURL(t *testing.T) {
	cases := []struct {
		base     string
		segments []string
		want     string
	}{
		{"https://soopify.kr", nil, "https://soopify.kr"},
		{"https://soopify.kr", []string{"board"}, "https://soopify.kr/board/"},
		{"https://soopify.kr", []string{"board", "abc"}, "https://soopify.kr/board/abc/"},
		{"https://soopify.kr/sub", []string{"admin", "login"}, "https://soopify.kr/sub/admin/login/"},
	}
	for _, tc := range cases {
		if got := BuildURL(tc.base, tc.segments...); got != tc.want {
			t.Errorf("BuildURL(%q, %v) = %q, want %q", tc.base, tc.segments, got, tc.want)
		}
	}
}

func TestFilterEmpty(t *testing.T) {
	got := FilterEmpty([]string{" a@soopify.kr ", "", "  ", "b@soopify.kr"})
	if len(got) != 2 || got[0] != "a@soopify.kr" || got[1] != "b@soopify.kr" {
		t.Fatalf("FilterEmpty = %v", got)
	}
}

func TestAnnouncementJsonLD(t *testing.T) {
	created := time.Date(2025, 3, 2, 9, 30, 0, 0, time.UTC)
	post := Post{ID: "p1", Title: "공지", Author: "관리자", CreatedAt: created, UpdatedAt: created}

	var out map[string]interface{}
	if err := json.Unmarshal([]byte(AnnouncementJsonLD(post, "Soopify", "https://soopify.kr", "요약")), &out); err != nil {
		t.Fatalf("invalid JSON-LD: %v", err)
	}
	if out["@type"] != "Article" || out["headline"] != "공지" || out["url"] != "https://soopify.kr/board/p1/" {
		t.Errorf("unexpected JSON-LD %v", out)
	}
	if out["datePublished"] != "2025-03-02T09:30:00Z" {
		t.Errorf("datePublished = %v", out["datePublished"])
	}
	author, _ := out["author"].(map[string]interface{})
	if author["name"] != "관리자" {
		t.Errorf("author = %v", out["author"])
	}

	var org map[string]interface{}
	if err := json.Unmarshal([]byte(OrganizationJsonLD("Soopify", "https://soopify.kr", "")), &org); err != nil {
		t.Fatalf("invalid JSON-LD: %v", err)
	}
	if _, ok := org["description"]; ok {
		t.Errorf("empty description should be omitted")
	}
}

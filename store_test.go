package soopify

import (
	"context"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"testing"
	"time"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	url := "sqlite:///" + filepath.Join(t.TempDir(), "test.db")

	s, err := NewStore(BackendConfig{URL: url})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func seedBlogPost(t *testing.T, s *Store, p BlogPost) BlogPost {
	t.Helper()
	if p.Status == "" {
		p.Status = statusPublished
	}
	if p.PublishedDate == nil {
		now := time.Now().UTC()
		p.PublishedDate = &now
	}
	if err := s.admin.Create(&p).Error; err != nil {
		t.Fatalf("seed blog post: %v", err)
	}
	return p
}

func TestNewStore(t *testing.T) {
	s := setupTestStore(t)
	if s.public == nil || s.admin == nil {
		t.Fatal("both handles should be set")
	}
	if s.public != s.admin {
		t.Fatal("sqlite tiers should share one handle")
	}
}

func TestBackendConfigDefaults(t *testing.T) {
	b := BackendConfig{URL: "postgres://anon@db/site"}
	if b.ServiceURL() != b.URL {
		t.Errorf("ServiceURL should fall back to URL")
	}
	if b.ShouldMigrate() {
		t.Errorf("postgres should not migrate by default")
	}
	b.ServiceDSN = "postgres://service@db/site"
	if b.ServiceURL() != "postgres://service@db/site" {
		t.Errorf("ServiceURL = %q", b.ServiceURL())
	}
	if !(BackendConfig{URL: "sqlite:///data/x.db"}).ShouldMigrate() {
		t.Errorf("sqlite should migrate by default")
	}
	off := false
	if (BackendConfig{URL: "sqlite:///data/x.db", Migrate: &off}).ShouldMigrate() {
		t.Errorf("explicit Migrate=false should win")
	}
}

func TestCreateAndListInquiries(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	base := time.Now().UTC().Add(-time.Hour)

	for i := 0; i < 3; i++ {
		inq := Inquiry{
			Name:      fmt.Sprintf("name-%d", i),
			Contact:   "c@example.com",
			Message:   "hello",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := s.CreateInquiry(ctx, &inq); err != nil {
			t.Fatalf("CreateInquiry failed: %v", err)
		}
		if inq.ID == "" {
			t.Fatalf("expected ID to be assigned")
		}
	}

	page, err := s.ListInquiries(ctx, 1, 2)
	if err != nil {
		t.Fatalf("ListInquiries failed: %v", err)
	}
	if page.Total != 3 {
		t.Errorf("Total = %d, want 3", page.Total)
	}
	if len(page.Items) != 2 {
		t.Fatalf("len(Items) = %d, want 2", len(page.Items))
	}
	if page.Items[0].Name != "name-2" || page.Items[1].Name != "name-1" {
		t.Errorf("expected newest first, got %q, %q", page.Items[0].Name, page.Items[1].Name)
	}

	page, err = s.ListInquiries(ctx, 2, 2)
	if err != nil {
		t.Fatalf("ListInquiries page 2 failed: %v", err)
	}
	if len(page.Items) != 1 || page.Items[0].Name != "name-0" {
		t.Errorf("unexpected second page %+v", page.Items)
	}
}

func TestPostLifecycle(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	post := Post{Title: "공지", Content: "<p>내용</p>", Author: "관리자"}
	if err := s.CreatePost(ctx, &post); err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}
	if post.ID == "" || post.CreatedAt.IsZero() {
		t.Fatalf("expected ID and CreatedAt, got %+v", post)
	}

	got, err := s.GetPost(ctx, post.ID)
	if err != nil {
		t.Fatalf("GetPost failed: %v", err)
	}
	if got.Title != "공지" || got.Author != "관리자" {
		t.Errorf("unexpected post %+v", got)
	}
	if got.Attachments == nil || len(got.Attachments) != 0 {
		t.Errorf("expected empty attachment list, got %#v", got.Attachments)
	}

	updated, err := s.UpdatePost(ctx, post.ID, PostUpdate{
		Title:       "수정된 공지",
		Content:     "<p>새 내용</p>",
		Attachments: []Attachment{{ID: "a1", Name: "guide.pdf", URL: "https://cdn/x.pdf", Size: 10, Type: "application/pdf"}},
	})
	if err != nil {
		t.Fatalf("UpdatePost failed: %v", err)
	}
	if updated.Title != "수정된 공지" {
		t.Errorf("Title = %q", updated.Title)
	}
	if updated.Author != "관리자" {
		t.Errorf("empty author should keep the stored one, got %q", updated.Author)
	}
	if len(updated.Attachments) != 1 || updated.Attachments[0].Name != "guide.pdf" {
		t.Errorf("unexpected attachments %+v", updated.Attachments)
	}
	if updated.UpdatedAt.Before(post.UpdatedAt) {
		t.Errorf("UpdatedAt should not move backwards")
	}

	if err := s.DeletePost(ctx, post.ID); err != nil {
		t.Fatalf("DeletePost failed: %v", err)
	}
	if _, err := s.GetPost(ctx, post.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestMissingPostIsNotFound(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	if _, err := s.GetPost(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetPost: expected ErrNotFound, got %v", err)
	}
	if _, err := s.UpdatePost(ctx, "missing", PostUpdate{Title: "t", Content: "c"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdatePost: expected ErrNotFound, got %v", err)
	}
	if err := s.DeletePost(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeletePost: expected ErrNotFound, got %v", err)
	}
}

func TestListPostsNewestFirst(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	base := time.Now().UTC().Add(-time.Hour)

	for i := 0; i < 3; i++ {
		p := Post{Title: fmt.Sprintf("p%d", i), Content: "c", Author: "a", CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		if err := s.CreatePost(ctx, &p); err != nil {
			t.Fatalf("CreatePost failed: %v", err)
		}
	}
	page, err := s.ListPosts(ctx, 1, 10)
	if err != nil {
		t.Fatalf("ListPosts failed: %v", err)
	}
	if page.Total != 3 || len(page.Items) != 3 {
		t.Fatalf("unexpected page %+v", page)
	}
	if page.Items[0].Title != "p2" || page.Items[2].Title != "p0" {
		t.Errorf("expected newest first, got %q..%q", page.Items[0].Title, page.Items[2].Title)
	}
}

func TestListPagesPastTheEndAreEmpty(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		p := Post{Title: fmt.Sprintf("p%d", i), Content: "c", Author: "a"}
		if err := s.CreatePost(ctx, &p); err != nil {
			t.Fatalf("CreatePost failed: %v", err)
		}
		inq := Inquiry{Name: "n", Contact: "c", Message: "m"}
		if err := s.CreateInquiry(ctx, &inq); err != nil {
			t.Fatalf("CreateInquiry failed: %v", err)
		}
	}

	for _, page := range []int{2, math.MaxInt / 10, math.MaxInt} {
		posts, err := s.ListPosts(ctx, page, 10)
		if err != nil {
			t.Fatalf("ListPosts(page=%d) failed: %v", page, err)
		}
		if posts.Total != 2 || len(posts.Items) != 0 || posts.Page != page {
			t.Errorf("ListPosts(page=%d) = total %d, %d items", page, posts.Total, len(posts.Items))
		}
		inquiries, err := s.ListInquiries(ctx, page, 10)
		if err != nil {
			t.Fatalf("ListInquiries(page=%d) failed: %v", page, err)
		}
		if inquiries.Total != 2 || len(inquiries.Items) != 0 {
			t.Errorf("ListInquiries(page=%d) = total %d, %d items", page, inquiries.Total, len(inquiries.Items))
		}
	}
}

func TestPageOffset(t *testing.T) {
	cases := []struct {
		page, limit int
		total       int64
		want        int
		ok          bool
	}{
		{1, 10, 5, 0, true},
		{2, 10, 15, 10, true},
		{2, 10, 10, 0, false},
		{0, 10, 5, 0, false},
		{1, 0, 5, 0, false},
		{math.MaxInt, 20, 5, 0, false},
		{math.MaxInt/20 + 2, 20, 5, 0, false},
	}
	for _, tc := range cases {
		got, ok := pageOffset(tc.page, tc.limit, tc.total)
		if ok != tc.ok || (ok && got != tc.want) {
			t.Errorf("pageOffset(%d, %d, %d) = %d, %t; want %d, %t", tc.page, tc.limit, tc.total, got, ok, tc.want, tc.ok)
		}
	}
}

func TestListFeaturedAndPublished(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	cat := Category{ID: "cat-1", Name: "교육", Slug: "edu"}
	if err := s.admin.Create(&cat).Error; err != nil {
		t.Fatalf("seed category: %v", err)
	}
	base := time.Now().UTC().Add(-24 * time.Hour)
	for i := 0; i < 5; i++ {
		d := base.Add(time.Duration(i) * time.Hour)
		seedBlogPost(t, s, BlogPost{
			ID:            fmt.Sprintf("b%d", i),
			Title:         fmt.Sprintf("post %d", i),
			PublishedDate: &d,
			IsFeatured:    i != 2,
			CategoryID:    &cat.ID,
		})
	}
	seedBlogPost(t, s, BlogPost{ID: "draft", Title: "draft", Status: "draft", IsFeatured: true})

	featured, err := s.ListFeatured(ctx, 3)
	if err != nil {
		t.Fatalf("ListFeatured failed: %v", err)
	}
	if len(featured) != 3 {
		t.Fatalf("len(featured) = %d, want 3", len(featured))
	}
	want := []string{"b4", "b3", "b1"}
	for i, p := range featured {
		if p.ID != want[i] {
			t.Errorf("featured[%d] = %s, want %s", i, p.ID, want[i])
		}
		if p.Category == nil || p.Category.Name != "교육" {
			t.Errorf("featured[%d] missing category", i)
		}
	}

	published, err := s.ListPublished(ctx)
	if err != nil {
		t.Fatalf("ListPublished failed: %v", err)
	}
	if len(published) != 5 {
		t.Errorf("len(published) = %d, want 5", len(published))
	}
	if published[0].ID != "b4" {
		t.Errorf("expected newest first, got %s", published[0].ID)
	}
}

func TestSetFeaturedEnforcesLimit(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	for i := 0; i < MaxFeatured; i++ {
		seedBlogPost(t, s, BlogPost{ID: fmt.Sprintf("f%d", i), Title: "f", IsFeatured: true})
	}
	seedBlogPost(t, s, BlogPost{ID: "extra", Title: "extra"})

	if _, err := s.SetFeatured(ctx, "extra", true); !errors.Is(err, ErrFeaturedLimit) {
		t.Fatalf("expected ErrFeaturedLimit, got %v", err)
	}
	n, err := s.CountFeatured(ctx)
	if err != nil {
		t.Fatalf("CountFeatured failed: %v", err)
	}
	if n != MaxFeatured {
		t.Fatalf("featured count = %d, want %d", n, MaxFeatured)
	}

	p, err := s.SetFeatured(ctx, "f0", false)
	if err != nil {
		t.Fatalf("unfeature failed: %v", err)
	}
	if p.IsFeatured {
		t.Fatalf("expected f0 to be unfeatured")
	}
	p, err = s.SetFeatured(ctx, "extra", true)
	if err != nil {
		t.Fatalf("feature after freeing a slot failed: %v", err)
	}
	if !p.IsFeatured {
		t.Fatalf("expected extra to be featured")
	}

	if _, err := s.SetFeatured(ctx, "missing", false); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

package soopify

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

// MaxFeatured is the number of blog posts that may be featured at once.
const MaxFeatured = 6

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("soopify: record not found")
	// ErrFeaturedLimit is returned when enabling the featured flag would
	// exceed MaxFeatured.
	ErrFeaturedLimit = errors.New("soopify: featured post limit reached")
)

const (
	maxOpenConns    = 25
	maxIdleConns    = 5
	connMaxLifetime = 5 * time.Minute
	connMaxIdleTime = 10 * time.Minute
	pingTimeout     = 5 * time.Second
)

// Store is the client for the external data backend. It holds two handles:
// public uses the restricted credential tier and only serves public reads,
// admin uses the privileged tier for every write and admin read.
type Store struct {
	public *gorm.DB
	admin  *gorm.DB

	// featureMu serializes the count-then-update in SetFeatured.
	featureMu sync.Mutex
}

// NewStore connects both credential tiers described by cfg. For SQLite both
// tiers share one connection pool.
func NewStore(cfg BackendConfig) (*Store, error) {
	admin, err := openDB(cfg.ServiceURL())
	if err != nil {
		return nil, fmt.Errorf("open privileged backend: %w", err)
	}
	public := admin
	if cfg.ServiceURL() != cfg.URL {
		public, err = openDB(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("open restricted backend: %w", err)
		}
	}
	s := &Store{public: public, admin: admin}
	if err := s.ping(); err != nil {
		s.Close()
		return nil, err
	}
	if cfg.ShouldMigrate() {
		if err := s.migrate(); err != nil {
			s.Close()
			return nil, fmt.Errorf("migrate backend: %w", err)
		}
	}
	return s, nil
}

func openDB(url string) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		// SQL is never logged; errors are returned to the handlers.
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	if isPostgresURL(url) {
		db, err := gorm.Open(postgres.Open(url), gormConfig)
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(maxOpenConns)
		sqlDB.SetMaxIdleConns(maxIdleConns)
		sqlDB.SetConnMaxLifetime(connMaxLifetime)
		sqlDB.SetConnMaxIdleTime(connMaxIdleTime)
		return db, nil
	}

	path := sqlitePath(url)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL with a busy timeout lets readers proceed while a writer waits
	// instead of failing with SQLITE_BUSY.
	if _, err := sqlDB.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
	`); err != nil {
		sqlDB.Close()
		return nil, err
	}
	sqlDB.SetMaxOpenConns(4)
	sqlDB.SetMaxIdleConns(4)
	return gorm.Open(sqlite.Dialector{
		DriverName: "sqlite",
		DSN:        path,
		Conn:       sqlDB,
	}, gormConfig)
}

func isPostgresURL(url string) bool {
	return strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://")
}

func sqlitePath(url string) string {
	return strings.TrimPrefix(url, "sqlite:///")
}

func (s *Store) ping() error {
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	for _, db := range s.handles() {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		if err := sqlDB.PingContext(ctx); err != nil {
			return fmt.Errorf("ping backend: %w", err)
		}
	}
	return nil
}

func (s *Store) handles() []*gorm.DB {
	if s.public == s.admin {
		return []*gorm.DB{s.admin}
	}
	return []*gorm.DB{s.public, s.admin}
}

func (s *Store) migrate() error {
	return s.admin.AutoMigrate(
		&Inquiry{},
		&Post{},
		&Category{},
		&BlogPost{},
	)
}

// Stats returns connection pool statistics of the privileged handle.
func (s *Store) Stats() sql.DBStats {
	sqlDB, err := s.admin.DB()
	if err != nil {
		return sql.DBStats{}
	}
	return sqlDB.Stats()
}

// Close closes the underlying connection pools.
func (s *Store) Close() error {
	var firstErr error
	for _, db := range s.handles() {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.Close()
		}
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// pageOffset returns the row offset of page. It reports false when the page
// starts past the last of total rows, including when the offset overflows.
func pageOffset(page, limit int, total int64) (int, bool) {
	if page < 1 || limit < 1 || page-1 > (math.MaxInt-limit)/limit {
		return 0, false
	}
	offset := (page - 1) * limit
	return offset, int64(offset) < total
}

// --- Inquiries ---

// CreateInquiry inserts a new inquiry and fills in its ID and CreatedAt.
func (s *Store) CreateInquiry(ctx context.Context, inq *Inquiry) error {
	return s.admin.WithContext(ctx).Create(inq).Error
}

// ListInquiries returns one page of inquiries, newest first.
func (s *Store) ListInquiries(ctx context.Context, page, limit int) (Page[Inquiry], error) {
	result := Page[Inquiry]{Page: page, Limit: limit}
	if err := s.admin.WithContext(ctx).Model(&Inquiry{}).Count(&result.Total).Error; err != nil {
		return result, err
	}
	offset, ok := pageOffset(page, limit, result.Total)
	if !ok {
		return result, nil
	}
	err := s.admin.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&result.Items).Error
	return result, err
}

// --- Announcements ---

// ListPosts returns one page of announcements, newest first.
func (s *Store) ListPosts(ctx context.Context, page, limit int) (Page[Post], error) {
	result := Page[Post]{Page: page, Limit: limit}
	if err := s.public.WithContext(ctx).Model(&Post{}).Count(&result.Total).Error; err != nil {
		return result, err
	}
	offset, ok := pageOffset(page, limit, result.Total)
	if !ok {
		return result, nil
	}
	err := s.public.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&result.Items).Error
	return result, err
}

// GetPost returns a single announcement by ID.
func (s *Store) GetPost(ctx context.Context, id string) (Post, error) {
	var p Post
	err := s.public.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Post{}, ErrNotFound
	}
	return p, err
}

// CreatePost inserts a new announcement.
func (s *Store) CreatePost(ctx context.Context, p *Post) error {
	return s.admin.WithContext(ctx).Create(p).Error
}

// PostUpdate holds the mutable fields of an announcement. An empty Author
// leaves the stored author unchanged.
type PostUpdate struct {
	Title       string
	Content     string
	Author      string
	Attachments []Attachment
}

// UpdatePost applies u to the announcement with the given ID and returns the
// stored result.
func (s *Store) UpdatePost(ctx context.Context, id string, u PostUpdate) (Post, error) {
	attachments := u.Attachments
	if attachments == nil {
		attachments = []Attachment{}
	}
	update := Post{
		Title:       u.Title,
		Content:     u.Content,
		Author:      u.Author,
		Attachments: attachments,
		UpdatedAt:   time.Now().UTC(),
	}
	cols := []string{"title", "content", "attachments", "updated_at"}
	if u.Author != "" {
		cols = append(cols, "author")
	}

	db := s.admin.WithContext(ctx)
	res := db.Model(&Post{}).Where("id = ?", id).Select(cols).Updates(&update)
	if res.Error != nil {
		return Post{}, res.Error
	}
	if res.RowsAffected == 0 {
		return Post{}, ErrNotFound
	}
	var p Post
	if err := db.Where("id = ?", id).First(&p).Error; err != nil {
		return Post{}, err
	}
	return p, nil
}

// DeletePost removes an announcement by ID.
func (s *Store) DeletePost(ctx context.Context, id string) error {
	res := s.admin.WithContext(ctx).Where("id = ?", id).Delete(&Post{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// --- External blog posts ---

const statusPublished = "published"

// ListFeatured returns up to limit published, featured blog posts, newest first.
func (s *Store) ListFeatured(ctx context.Context, limit int) ([]BlogPost, error) {
	var posts []BlogPost
	err := s.public.WithContext(ctx).
		Preload("Category").
		Where("status = ? AND is_featured = ?", statusPublished, true).
		Order("published_date DESC").
		Limit(limit).
		Find(&posts).Error
	return posts, err
}

// ListPublished returns every published blog post, newest first.
func (s *Store) ListPublished(ctx context.Context) ([]BlogPost, error) {
	var posts []BlogPost
	err := s.admin.WithContext(ctx).
		Preload("Category").
		Where("status = ?", statusPublished).
		Order("published_date DESC").
		Find(&posts).Error
	return posts, err
}

// CountFeatured returns how many blog posts currently carry the featured flag.
func (s *Store) CountFeatured(ctx context.Context) (int64, error) {
	var n int64
	err := s.admin.WithContext(ctx).Model(&BlogPost{}).Where("is_featured = ?", true).Count(&n).Error
	return n, err
}

// SetFeatured sets the featured flag of a blog post. Enabling it fails with
// ErrFeaturedLimit once MaxFeatured posts are featured.
func (s *Store) SetFeatured(ctx context.Context, id string, featured bool) (BlogPost, error) {
	s.featureMu.Lock()
	defer s.featureMu.Unlock()

	if featured {
		n, err := s.CountFeatured(ctx)
		if err != nil {
			return BlogPost{}, err
		}
		if n >= MaxFeatured {
			return BlogPost{}, ErrFeaturedLimit
		}
	}

	db := s.admin.WithContext(ctx)
	res := db.Model(&BlogPost{}).Where("id = ?", id).Update("is_featured", featured)
	if res.Error != nil {
		return BlogPost{}, res.Error
	}
	if res.RowsAffected == 0 {
		return BlogPost{}, ErrNotFound
	}
	var p BlogPost
	if err := db.Preload("Category").Where("id = ?", id).First(&p).Error; err != nil {
		return BlogPost{}, err
	}
	return p, nil
}

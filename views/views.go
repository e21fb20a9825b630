// Package views renders the site pages from embedded html/template files,
// exposed as templ components through soopify.ViewFuncs.
package views

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/a-h/templ"
	"github.com/dustin/go-humanize"

	soopify "github.com/soopify/site"
	"github.com/soopify/site/richtext"
)

//go:embed templates/*.html
var templateFS embed.FS

// Site holds the branding every page needs.
type Site struct {
	Name        string
	URL         string
	Description string
}

// pages lists the page templates; each is parsed together with layout.html.
var pages = []string{
	"home", "board", "board_post", "editor",
	"admin_login", "admin_dashboard", "admin_inquiries", "admin_insights",
	"not_found", "server_error",
}

// pageData is the root value of every template.
type pageData struct {
	Site   Site
	Meta   soopify.PageMeta
	Admin  bool
	JSONLD template.JS
	Data   interface{}
}

type renderer struct {
	site  Site
	pages map[string]*template.Template
}

func funcs() template.FuncMap {
	return template.FuncMap{
		"excerpt": richtext.Excerpt,
		"rawHTML": func(s string) template.HTML { return template.HTML(s) },
		"date": func(t time.Time) string {
			return t.In(seoul).Format("2006.01.02")
		},
		"datetime": func(t time.Time) string {
			return t.In(seoul).Format("2006.01.02 15:04")
		},
		"publishedDate": func(t *time.Time) string {
			if t == nil {
				return ""
			}
			return t.In(seoul).Format("2006.01.02")
		},
		"bytes": func(n int64) string {
			if n < 0 {
				n = 0
			}
			return humanize.Bytes(uint64(n))
		},
		"json": func(v interface{}) (string, error) {
			b, err := json.Marshal(v)
			return string(b), err
		},
		"deref": func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		},
		"maxFeatured": func() int { return soopify.MaxFeatured },
	}
}

// seoul is the display zone for dates. Korea observes no DST.
var seoul = time.FixedZone("KST", 9*60*60)

func parse() (map[string]*template.Template, error) {
	out := make(map[string]*template.Template, len(pages))
	for _, name := range pages {
		t, err := template.New("layout.html").Funcs(funcs()).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("views: parse %s: %w", name, err)
		}
		out[name] = t
	}
	return out, nil
}

func (r *renderer) component(name string, data pageData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		data.Site = r.site
		return r.pages[name].ExecuteTemplate(w, "layout", data)
	})
}

// New parses the embedded templates and returns the page components.
func New(site Site) (soopify.ViewFuncs, error) {
	parsed, err := parse()
	if err != nil {
		return soopify.ViewFuncs{}, err
	}
	r := &renderer{site: site, pages: parsed}

	return soopify.ViewFuncs{
		Home: func(meta soopify.PageMeta, insights []soopify.BlogPost) templ.Component {
			return r.component("home", pageData{
				Meta:   meta,
				JSONLD: template.JS(soopify.OrganizationJsonLD(site.Name, site.URL, site.Description)),
				Data:   insights,
			})
		},
		Board: func(meta soopify.PageMeta, posts soopify.Page[soopify.Post], admin bool) templ.Component {
			return r.component("board", pageData{Meta: meta, Admin: admin, Data: posts})
		},
		BoardPost: func(meta soopify.PageMeta, post soopify.Post, admin bool) templ.Component {
			return r.component("board_post", pageData{
				Meta:   meta,
				Admin:  admin,
				JSONLD: template.JS(soopify.AnnouncementJsonLD(post, site.Name, site.URL, meta.Description)),
				Data:   post,
			})
		},
		Editor: func(meta soopify.PageMeta, post soopify.Post) templ.Component {
			return r.component("editor", pageData{Meta: meta, Admin: true, Data: post})
		},
		AdminLogin: func(meta soopify.PageMeta) templ.Component {
			return r.component("admin_login", pageData{Meta: meta})
		},
		AdminDashboard: func(meta soopify.PageMeta, stats soopify.DashboardStats) templ.Component {
			return r.component("admin_dashboard", pageData{Meta: meta, Admin: true, Data: stats})
		},
		AdminInquiries: func(meta soopify.PageMeta, inquiries soopify.Page[soopify.Inquiry]) templ.Component {
			return r.component("admin_inquiries", pageData{Meta: meta, Admin: true, Data: inquiries})
		},
		AdminInsights: func(meta soopify.PageMeta, posts []soopify.BlogPost, featured int) templ.Component {
			return r.component("admin_insights", pageData{Meta: meta, Admin: true, Data: insightsData{Posts: posts, Featured: featured}})
		},
		NotFound: func() templ.Component {
			return r.component("not_found", pageData{Meta: soopify.PageMeta{Title: "페이지를 찾을 수 없습니다 | " + site.Name}})
		},
		ServerError: func() templ.Component {
			return r.component("server_error", pageData{Meta: soopify.PageMeta{Title: "오류 | " + site.Name}})
		},
	}, nil
}

type insightsData struct {
	Posts    []soopify.BlogPost
	Featured int
}

package soopify

import (
	"bytes"
	"encoding/xml"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/soopify/site/richtext"
)

const (
	// feedLimit is the number of announcements in the feed and sitemap.
	feedLimit          = 50
	feedExcerptLength  = 300
	sitemapNamespace   = "http://www.sitemaps.org/schemas/sitemap/0.9"
	atomNamespace      = "http://www.w3.org/2005/Atom"
	dcNamespace        = "http://purl.org/dc/elements/1.1/"
	rssContentType     = "application/rss+xml; charset=utf-8"
	sitemapContentType = "application/xml; charset=utf-8"
)

type rssFeed struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	AtomNS  string     `xml:"xmlns:atom,attr"`
	DCNS    string     `xml:"xmlns:dc,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Self          atomLink  `xml:"atom:link"`
	Description   string    `xml:"description"`
	Language      string    `xml:"language"`
	LastBuildDate string    `xml:"lastBuildDate,omitempty"`
	Items         []rssItem `xml:"item"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
	Type string `xml:"type,attr"`
}

type rssItem struct {
	Title       string  `xml:"title"`
	Link        string  `xml:"link"`
	Description string  `xml:"description"`
	Author      string  `xml:"dc:creator,omitempty"`
	PubDate     string  `xml:"pubDate"`
	GUID        rssGUID `xml:"guid"`
}

type rssGUID struct {
	IsPermaLink bool   `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
}

// writeXML encodes v with the XML declaration. Encoding happens before the
// response is committed so a failure still reaches the error handler.
func writeXML(c echo.Context, contentType string, v interface{}) error {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(v); err != nil {
		return err
	}
	return c.Blob(http.StatusOK, contentType, buf.Bytes())
}

func (a *App) renderRSS(c echo.Context, posts []Post) error {
	base := a.Config.URL
	channel := rssChannel{
		Title:       a.Config.Name + " 공지사항",
		Link:        BuildURL(base, "board"),
		Self:        atomLink{Href: base + "/feed.xml", Rel: "self", Type: "application/rss+xml"},
		Description: a.Config.Description,
		Language:    "ko",
		Items:       make([]rssItem, 0, len(posts)),
	}
	for _, p := range posts {
		link := BuildURL(base, "board", p.ID)
		channel.Items = append(channel.Items, rssItem{
			Title:       p.Title,
			Link:        link,
			Description: richtext.Excerpt(p.Content, feedExcerptLength),
			Author:      p.Author,
			PubDate:     p.CreatedAt.UTC().Format(time.RFC1123Z),
			GUID:        rssGUID{IsPermaLink: true, Value: link},
		})
	}
	// Posts arrive newest first.
	if len(posts) > 0 {
		channel.LastBuildDate = posts[0].UpdatedAt.UTC().Format(time.RFC1123Z)
	}
	return writeXML(c, rssContentType, rssFeed{
		Version: "2.0",
		AtomNS:  atomNamespace,
		DCNS:    dcNamespace,
		Channel: channel,
	})
}

func (a *App) renderSitemap(c echo.Context, posts []Post) error {
	base := a.Config.URL
	urls := []sitemapURL{
		{Loc: base + "/", ChangeFreq: "weekly"},
		{Loc: BuildURL(base, "board"), ChangeFreq: "daily"},
	}
	for _, p := range posts {
		urls = append(urls, sitemapURL{
			Loc:     BuildURL(base, "board", p.ID),
			LastMod: p.UpdatedAt.UTC().Format(time.DateOnly),
		})
	}
	return writeXML(c, sitemapContentType, urlSet{XMLNS: sitemapNamespace, URLs: urls})
}

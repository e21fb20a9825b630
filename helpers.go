package soopify

import (
	"encoding/json"
	"net/url"
	"path"
	"strings"
)

// BuildURL joins a base URL with path segments, ensuring a trailing slash.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if len(pathSegments) > 0 && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}

// FilterEmpty trims each value and drops the empty ones.
func FilterEmpty(vals []string) []string {
	var out []string
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// OrganizationJsonLD returns a JSON-LD string for an Organization schema.
func OrganizationJsonLD(name, siteURL, description string) string {
	data := map[string]interface{}{
		"@context": "https://schema.org",
		"@type":    "Organization",
		"name":     name,
		"url":      BuildURL(siteURL),
	}
	if description != "" {
		data["description"] = description
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// AnnouncementJsonLD returns a JSON-LD string for an announcement page.
func AnnouncementJsonLD(post Post, siteName, siteURL, description string) string {
	postURL := BuildURL(siteURL, "board", post.ID)
	data := map[string]interface{}{
		"@context":      "https://schema.org",
		"@type":         "Article",
		"headline":      post.Title,
		"description":   description,
		"datePublished": post.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		"dateModified":  post.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		"url":           postURL,
		"mainEntityOfPage": map[string]string{
			"@type": "WebPage",
			"@id":   postURL,
		},
	}
	if post.Author != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  post.Author,
		}
	}
	if siteName != "" {
		data["publisher"] = map[string]string{
			"@type": "Organization",
			"name":  siteName,
		}
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}

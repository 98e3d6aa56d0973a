// Package extractor pulls preview metadata out of raw page source with a
// handful of regular expressions. Lookups run in a fixed order and the first
// non-empty match wins.
package extractor

import (
	"regexp"
	"strings"

	"github.com/user/linkcard/internal/entity"
	"github.com/user/linkcard/pkg/utils"
)

// DefaultLogo is substituted when a page advertises neither an image nor an icon.
const DefaultLogo = "https://upload.wikimedia.org/wikipedia/commons/thumb/6/6a/Link_icon.svg/64px-Link_icon.svg.png"

var (
	// Quoted attribute values may contain '>' so the tag body alternates
	// between unquoted characters and whole quoted strings.
	metaTagPattern  = regexp.MustCompile(`(?is)<meta\b(?:[^>"']|"[^"]*"|'[^']*')*>`)
	linkTagPattern  = regexp.MustCompile(`(?is)<link\b(?:[^>"']|"[^"]*"|'[^']*')*>`)
	attrPattern     = regexp.MustCompile(`(?s)([a-zA-Z_:][-a-zA-Z0-9_:.]*)\s*=\s*(?:"([^"]*)"|'([^']*)')`)
	titleTagPattern = regexp.MustCompile(`(?is)<title\b[^>]*>(.*?)</title\s*>`)
)

// tagRule selects a tag whose attributes (other than take) carry a value
// containing needle, and yields the value of the take attribute.
type tagRule struct {
	pattern *regexp.Regexp
	needle  string
	take    string
}

var (
	titleRules = []tagRule{
		{pattern: metaTagPattern, needle: "title", take: "content"},
	}
	descriptionRules = []tagRule{
		{pattern: metaTagPattern, needle: "description", take: "content"},
	}
	logoRules = []tagRule{
		{pattern: metaTagPattern, needle: "image", take: "content"},
		{pattern: linkTagPattern, needle: "icon", take: "href"},
	}
)

// Extractor turns page text into a Metadata record.
type Extractor struct {
	defaultLogo string
}

type Option func(*Extractor)

// WithDefaultLogo replaces the logo used when a page has none.
func WithDefaultLogo(logo string) Option {
	return func(e *Extractor) {
		if strings.TrimSpace(logo) != "" {
			e.defaultLogo = logo
		}
	}
}

func New(opts ...Option) *Extractor {
	e := &Extractor{defaultLogo: DefaultLogo}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var defaultExtractor = New()

// Extract runs the default extractor over page.
func Extract(page entity.RawPage) *entity.Metadata {
	return defaultExtractor.Extract(page)
}

// ExtractFrom is Extract for callers holding the text and URL separately.
func ExtractFrom(text, sourceURL string) *entity.Metadata {
	return defaultExtractor.Extract(entity.RawPage{Text: text, SourceURL: sourceURL})
}

// DefaultLogo returns the logo substituted for pages without one.
func (e *Extractor) DefaultLogo() string {
	return e.defaultLogo
}

// Extract returns nil when the page yields no title, description or logo.
// A returned record always has an absolute Logo.
func (e *Extractor) Extract(page entity.RawPage) *entity.Metadata {
	title := extractTitle(page.Text)
	description := firstMatch(page.Text, descriptionRules)
	logo := firstMatch(page.Text, logoRules)

	if title == "" && description == "" && logo == "" {
		return nil
	}

	if logo == "" {
		logo = e.defaultLogo
	} else {
		logo = ResolveLogo(logo, page.SourceURL)
	}

	return &entity.Metadata{
		Title:       title,
		Description: description,
		Logo:        logo,
	}
}

// ResolveLogo makes candidate absolute against the origin of sourceURL.
// Absolute candidates are returned unchanged.
func ResolveLogo(candidate, sourceURL string) string {
	candidate = strings.TrimSpace(candidate)
	if utils.IsAbsoluteURL(candidate) {
		return candidate
	}
	return utils.JoinOrigin(utils.Origin(sourceURL), candidate)
}

func extractTitle(text string) string {
	if title := firstMatch(text, titleRules); title != "" {
		return title
	}
	m := titleTagPattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

func firstMatch(text string, rules []tagRule) string {
	for _, rule := range rules {
		for _, tag := range rule.pattern.FindAllString(text, -1) {
			if v, ok := rule.apply(tag); ok {
				return v
			}
		}
	}
	return ""
}

func (r tagRule) apply(tag string) (string, bool) {
	var (
		value   string
		matched bool
	)
	for _, attr := range attrPattern.FindAllStringSubmatch(tag, -1) {
		name := strings.ToLower(attr[1])
		val := attr[2]
		if val == "" {
			val = attr[3]
		}
		if name == r.take {
			if value == "" {
				value = val
			}
			continue
		}
		if strings.Contains(val, r.needle) {
			matched = true
		}
	}
	if !matched || strings.TrimSpace(value) == "" {
		return "", false
	}
	return value, true
}

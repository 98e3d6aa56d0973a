// Package render turns link metadata into the HTML fragment of a link card.
package render

import (
	"html"
	"strings"

	"github.com/user/linkcard/internal/entity"
	"github.com/user/linkcard/pkg/utils"
)

const (
	// ContainerClass is always present on the card body so sites can style it.
	ContainerClass = "linkcard-container"

	// NoTitle is shown when a page offers no title.
	NoTitle = "No title"

	// Custom properties read by the inline styles.
	BorderColorVar     = "--linkcard-border-color"
	BackgroundColorVar = "--linkcard-bg-color"
)

// CardRenderer produces the HTML for one card.
type CardRenderer interface {
	Render(meta *entity.Metadata, opts entity.CardOptions) string
}

// CardRendererFunc adapts an ordinary function to CardRenderer.
type CardRendererFunc func(meta *entity.Metadata, opts entity.CardOptions) string

func (f CardRendererFunc) Render(meta *entity.Metadata, opts entity.CardOptions) string {
	return f(meta, opts)
}

// Default is the built-in card layout.
type Default struct {
	defaultLogo string
}

// NewDefault returns the built-in renderer. defaultLogo is used when a record
// has no logo.
func NewDefault(defaultLogo string) *Default {
	return &Default{defaultLogo: defaultLogo}
}

type element struct {
	name  string
	style string
}

var (
	containerEl = element{"container", join(
		"display: flex",
		"align-items: center",
		"justify-content: space-between",
		"gap: 1em",
		"box-sizing: border-box",
		"width: 100%",
		"margin: 0.5em 0",
		"padding: 0.75em 1em",
		"border: 1px solid var("+BorderColorVar+", #e2e2e3)",
		"border-radius: 8px",
		"background-color: var("+BackgroundColorVar+", #f6f6f7)",
		"color: inherit",
	)}
	textsEl = element{"texts", join(
		"display: flex",
		"flex-direction: column",
		"min-width: 0",
		"gap: 0.25em",
	)}
	titleEl = element{"title", join(
		"font-weight: 600",
		"line-height: 1.4",
		"overflow: hidden",
		"text-overflow: ellipsis",
		"white-space: nowrap",
	)}
	domainEl = element{"domain", join(
		"font-size: 0.8em",
		"opacity: 0.7",
	)}
	descriptionEl = element{"description", join(
		"font-size: 0.9em",
		"line-height: 1.5",
		"overflow: hidden",
		"display: -webkit-box",
		"-webkit-line-clamp: 2",
		"-webkit-box-orient: vertical",
	)}
	logoEl = element{"logo", join(
		"flex-shrink: 0",
		"width: 3.5em",
		"height: 3.5em",
		"object-fit: contain",
		"margin: 0",
	)}
	anchorStyle = join("text-decoration: none", "color: inherit")
)

func join(decls ...string) string {
	return strings.Join(decls, "; ") + ";"
}

// Render builds the card. Text fields are escaped; attribute values are
// escaped and otherwise emitted as given.
func (d *Default) Render(meta *entity.Metadata, opts entity.CardOptions) string {
	if meta == nil {
		meta = &entity.Metadata{}
	}

	title := meta.Title
	description := meta.Description
	domain := utils.DomainLabel(opts.Href)
	if domain == gitHubDomain {
		title, description = CleanGitHub(title, description)
	}
	if strings.TrimSpace(title) == "" {
		title = NoTitle
	}
	logo := meta.Logo
	if logo == "" {
		logo = d.defaultLogo
	}

	target := opts.TargetOrDefault()
	attrs := func(el element) string {
		if opts.ClassPrefix != "" {
			return ` class="` + esc(opts.ClassPrefix+"-"+el.name) + `"`
		}
		return ` style="` + el.style + `"`
	}

	var b strings.Builder
	b.WriteString(`<span`)
	if opts.ClassPrefix != "" {
		b.WriteString(` class="` + esc(opts.ClassPrefix) + `"`)
	}
	b.WriteString(`><a href="` + esc(opts.Href) + `"`)
	if opts.LinkTitle != "" {
		b.WriteString(` title="` + esc(opts.LinkTitle) + `"`)
	}
	b.WriteString(` target="` + esc(string(target)) + `"`)
	if target == entity.TargetBlank {
		b.WriteString(` rel="noopener noreferrer"`)
	}
	if opts.ClassPrefix != "" {
		b.WriteString(` class="` + esc(opts.ClassPrefix+"-link") + `">`)
	} else {
		b.WriteString(` style="` + anchorStyle + `">`)
	}

	if opts.ClassPrefix != "" {
		b.WriteString(`<span class="` + ContainerClass + ` ` + esc(opts.ClassPrefix+"-"+containerEl.name) + `">`)
	} else {
		b.WriteString(`<span class="` + ContainerClass + `" style="` + containerEl.style + `">`)
	}

	b.WriteString(`<span` + attrs(textsEl) + `>`)
	b.WriteString(`<span` + attrs(titleEl) + `>` + esc(title) + `</span>`)
	b.WriteString(`<span` + attrs(domainEl) + `>` + esc(domain) + `</span>`)
	b.WriteString(`<span` + attrs(descriptionEl) + `>` + esc(description) + `</span>`)
	b.WriteString(`</span>`)
	b.WriteString(`<img src="` + esc(logo) + `" alt=""` + attrs(logoEl) + ` />`)

	b.WriteString(`</span></a></span>`)
	return b.String()
}

func esc(s string) string {
	return html.EscapeString(s)
}

package render

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/linkcard/internal/entity"
)

const testLogo = "https://cdn.example.com/default.png"

func parse(t *testing.T, fragment string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	require.NoError(t, err)
	return doc
}

func TestDefault_Render_InlineStyles(t *testing.T) {
	out := NewDefault(testLogo).Render(&entity.Metadata{
		Title:       "Example Title",
		Description: "Some text",
		Logo:        "https://www.example.com/logo.png",
	}, entity.CardOptions{Href: "https://www.example.com/page", LinkTitle: "x"})

	doc := parse(t, out)
	a := doc.Find("a")
	require.Equal(t, 1, a.Length())
	assert.Equal(t, "https://www.example.com/page", a.AttrOr("href", ""))
	assert.Equal(t, "x", a.AttrOr("title", ""))
	assert.Equal(t, "_blank", a.AttrOr("target", ""))
	assert.Equal(t, "noopener noreferrer", a.AttrOr("rel", ""))

	container := doc.Find("." + ContainerClass)
	require.Equal(t, 1, container.Length())
	style := container.AttrOr("style", "")
	assert.Contains(t, style, "var("+BorderColorVar)
	assert.Contains(t, style, "var("+BackgroundColorVar)

	assert.Contains(t, container.Text(), "Example Title")
	assert.Contains(t, container.Text(), "example.com")
	assert.NotContains(t, container.Text(), "www.example.com")
	assert.Contains(t, container.Text(), "Some text")
	assert.Equal(t, "https://www.example.com/logo.png", doc.Find("img").AttrOr("src", ""))
}

func TestDefault_Render_ClassPrefix(t *testing.T) {
	out := NewDefault(testLogo).Render(&entity.Metadata{Title: "T"}, entity.CardOptions{
		Href:        "https://example.com",
		Target:      entity.TargetSelf,
		ClassPrefix: "card",
	})

	doc := parse(t, out)
	assert.NotContains(t, out, "style=")
	assert.Equal(t, 1, doc.Find(".card-container."+ContainerClass).Length())
	assert.Equal(t, "T", doc.Find(".card-title").Text())
	assert.Equal(t, "example.com", doc.Find(".card-domain").Text())
	assert.Equal(t, 1, doc.Find("img.card-logo").Length())

	a := doc.Find("a")
	assert.Equal(t, "_self", a.AttrOr("target", ""))
	_, hasRel := a.Attr("rel")
	assert.False(t, hasRel)
}

func TestDefault_Render_Placeholders(t *testing.T) {
	out := NewDefault(testLogo).Render(nil, entity.CardOptions{Href: "https://example.com", ClassPrefix: "lc"})

	doc := parse(t, out)
	assert.Equal(t, NoTitle, doc.Find(".lc-title").Text())
	assert.Equal(t, "", doc.Find(".lc-description").Text())
	assert.Equal(t, testLogo, doc.Find("img").AttrOr("src", ""))
	_, hasTitle := doc.Find("a").Attr("title")
	assert.False(t, hasTitle)
}

func TestDefault_Render_Escapes(t *testing.T) {
	out := NewDefault(testLogo).Render(&entity.Metadata{
		Title:       `<script>alert("x")</script>`,
		Description: "a & b",
	}, entity.CardOptions{Href: `https://example.com/?q="x"`})

	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "&lt;script&gt;")
	assert.Contains(t, out, "a &amp; b")
	assert.Contains(t, out, `href="https://example.com/?q=&#34;x&#34;"`)
}

func TestDefault_Render_GitHub(t *testing.T) {
	out := NewDefault(testLogo).Render(&entity.Metadata{
		Title:       "GitHub - asumo-1xts/vitepress-linkcard: A VitePress plugin to generate a pretty linkcard.",
		Description: "A VitePress plugin to generate a pretty linkcard. Contribute to asumo-1xts/vitepress-linkcard development by creating an account on GitHub.",
		Logo:        "https://opengraph.githubassets.com/x/asumo-1xts/vitepress-linkcard",
	}, entity.CardOptions{Href: "https://github.com/asumo-1xts/vitepress-linkcard", ClassPrefix: "lc"})

	doc := parse(t, out)
	assert.Equal(t, "asumo-1xts/vitepress-linkcard", doc.Find(".lc-title").Text())
	assert.Equal(t, "A VitePress plugin to generate a pretty linkcard.", doc.Find(".lc-description").Text())
	assert.Equal(t, "github.com", doc.Find(".lc-domain").Text())
}

func TestDefault_Render_GitHubCleanupOnlyOnGitHub(t *testing.T) {
	out := NewDefault(testLogo).Render(&entity.Metadata{
		Title: "GitHub - notes: a mirror",
	}, entity.CardOptions{Href: "https://example.com", ClassPrefix: "lc"})

	assert.Equal(t, "GitHub - notes: a mirror", parse(t, out).Find(".lc-title").Text())
}

func TestCleanGitHub(t *testing.T) {
	tests := []struct {
		name                 string
		title, description   string
		wantTitle, wantDescr string
	}{
		{
			name:        "repository without description",
			title:       "GitHub - octo/hello",
			description: "Contribute to octo/hello development by creating an account on GitHub.",
			wantTitle:   "octo/hello",
		},
		{
			name:        "redundant title suffix",
			title:       "GitHub - octo/hello: Say hi",
			description: "Say hi - octo/hello",
			wantTitle:   "octo/hello",
			wantDescr:   "Say hi",
		},
		{
			name:        "only the trailing title is stripped",
			title:       "GitHub - a/b: x",
			description: "Port of c/d - a/b in Go - a/b",
			wantTitle:   "a/b",
			wantDescr:   "Port of c/d - a/b in Go",
		},
		{
			name:        "non repository page",
			title:       "Build software better, together",
			description: "GitHub is where people build software.",
			wantTitle:   "Build software better, together",
			wantDescr:   "GitHub is where people build software.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			title, descr := CleanGitHub(tt.title, tt.description)
			assert.Equal(t, tt.wantTitle, title)
			assert.Equal(t, tt.wantDescr, descr)
		})
	}
}

func TestCardRendererFunc(t *testing.T) {
	var r CardRenderer = CardRendererFunc(func(meta *entity.Metadata, opts entity.CardOptions) string {
		return "<b>" + meta.Title + "@" + opts.Href + "</b>"
	})
	assert.Equal(t, "<b>T@u</b>", r.Render(&entity.Metadata{Title: "T"}, entity.CardOptions{Href: "u"}))
}

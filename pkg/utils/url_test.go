package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashURL_Stable(t *testing.T) {
	a := HashURL("https://example.com")
	assert.Len(t, a, 64)
	assert.Equal(t, a, HashURL("https://example.com"))
	assert.NotEqual(t, a, HashURL("https://example.com/"))
}

func TestIsAbsoluteURL(t *testing.T) {
	cases := map[string]bool{
		"https://cdn.example.com/a.png": true,
		"http://example.com":            true,
		"data:image/png;base64,AAAA":    true,
		"/img/a.png":                    false,
		"img/a.png":                     false,
		"//cdn.example.com/a.png":       false,
		"":                              false,
	}
	for in, want := range cases {
		assert.Equal(t, want, IsAbsoluteURL(in), in)
	}
}

func TestOrigin(t *testing.T) {
	assert.Equal(t, "https://example.com", Origin("https://example.com/blog/post?q=1"))
	assert.Equal(t, "http://localhost:8080", Origin("http://localhost:8080/x"))
	assert.Equal(t, "", Origin("/relative"))
}

func TestJoinOrigin(t *testing.T) {
	assert.Equal(t, "https://example.com/img/a.png", JoinOrigin("https://example.com", "/img/a.png"))
	assert.Equal(t, "https://example.com/img/a.png", JoinOrigin("https://example.com", "img//a.png"))
	assert.Equal(t, "https://example.com/cdn.example.com/a.png", JoinOrigin("https://example.com", "//cdn.example.com/a.png"))
}

func TestDomainLabel(t *testing.T) {
	assert.Equal(t, "example.com", DomainLabel("https://www.example.com/path"))
	assert.Equal(t, "github.com", DomainLabel("https://github.com/a/b"))
	assert.Equal(t, "docs.example.com:8443", DomainLabel("https://docs.example.com:8443/"))
}

package render

import (
	"regexp"
	"strings"
)

const gitHubDomain = "github.com"

var gitHubContributeSentence = regexp.MustCompile(`\s*Contribute to \S+ development by creating an account on GitHub\.`)

// CleanGitHub strips the boilerplate GitHub adds to repository titles and
// descriptions.
func CleanGitHub(title, description string) (string, string) {
	title = strings.TrimPrefix(title, "GitHub - ")
	if i := strings.Index(title, ":"); i >= 0 {
		title = title[:i]
	}
	title = strings.TrimSpace(title)

	description = strings.TrimSpace(gitHubContributeSentence.ReplaceAllString(description, ""))
	if title != "" {
		description = strings.TrimSuffix(description, " - "+title)
	}
	return title, strings.TrimSpace(description)
}

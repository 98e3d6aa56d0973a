package markdown

import (
	"github.com/yuin/goldmark/ast"

	"github.com/user/linkcard/internal/entity"
)

// KindCard is the node kind of a resolved link card.
var KindCard = ast.NewNodeKind("LinkCard")

// CardNode replaces a tagged link once its metadata is known. It has no
// children; the original link text survives only as Options.LinkTitle.
type CardNode struct {
	ast.BaseInline
	Metadata *entity.Metadata
	Options  entity.CardOptions
}

func (n *CardNode) Kind() ast.NodeKind {
	return KindCard
}

func (n *CardNode) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{
		"Href":      n.Options.Href,
		"LinkTitle": n.Options.LinkTitle,
		"Title":     n.Metadata.Title,
	}, nil)
}

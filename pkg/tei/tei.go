// CLAUDE:SUMMARY Grafts the character declaration and one <c> element per cluster into a TEI skeleton.
package tei

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"

	"github.com/karina-jasmin/quran-collate/pkg/segment"
)

var (
	encodingDescExpr = xpath.MustCompile(`//*[local-name()='encodingDesc']`)
	contentExpr      = xpath.MustCompile(`//*[local-name()='body']/*[local-name()='p']`)
)

var (
	ErrNoEncodingDesc = errors.New("skeleton has no encodingDesc")
	ErrNoContent      = errors.New("skeleton has no body/p")
	ErrNoCharDecl     = errors.New("character declaration has no root element")
)

// Assemble returns the skeleton extended with the character declaration
// and the clusters. Neither input is modified.
func Assemble(skeleton, charDecl []byte, clusters []segment.Cluster) ([]byte, error) {
	doc, err := xmlquery.Parse(bytes.NewReader(skeleton))
	if err != nil {
		return nil, fmt.Errorf("parse skeleton: %w", err)
	}
	decl, err := xmlquery.Parse(bytes.NewReader(charDecl))
	if err != nil {
		return nil, fmt.Errorf("parse character declaration: %w", err)
	}

	encodingDesc := xmlquery.QuerySelector(doc, encodingDescExpr)
	if encodingDesc == nil {
		return nil, ErrNoEncodingDesc
	}
	content := xmlquery.QuerySelector(doc, contentExpr)
	if content == nil {
		return nil, ErrNoContent
	}
	declRoot := rootElement(decl)
	if declRoot == nil {
		return nil, ErrNoCharDecl
	}

	xmlquery.RemoveFromTree(declRoot)
	xmlquery.AddChild(encodingDesc, declRoot)

	ns := content.NamespaceURI
	for _, c := range clusters {
		xmlquery.AddChild(content, clusterElement(c, ns))
	}

	var buf bytes.Buffer
	if err := doc.WriteWithOptions(&buf, xmlquery.WithOutputSelf(), xmlquery.WithPreserveSpace()); err != nil {
		return nil, fmt.Errorf("write document: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func rootElement(doc *xmlquery.Node) *xmlquery.Node {
	for n := doc.FirstChild; n != nil; n = n.NextSibling {
		if n.Type == xmlquery.ElementNode {
			return n
		}
	}
	return nil
}

func clusterElement(c segment.Cluster, ns string) *xmlquery.Node {
	el := &xmlquery.Node{Type: xmlquery.ElementNode, Data: "c", NamespaceURI: ns}
	for _, g := range c.Graphemes() {
		xmlquery.AddChild(el, graphemeElement(g, ns))
	}
	return el
}

// graphemeElement renders one grapheme as <g>. Attribute order is type,
// rend, ref, cert; rend is written for archigraphemes only.
func graphemeElement(g segment.Grapheme, ns string) *xmlquery.Node {
	el := &xmlquery.Node{Type: xmlquery.ElementNode, Data: "g", NamespaceURI: ns}
	el.SetAttr("type", g.Kind.String())
	if g.Kind == segment.KindArchigrapheme && g.Position != segment.PositionNone {
		el.SetAttr("rend", g.Position.String())
	}
	if g.RefID != "" {
		el.SetAttr("ref", "#"+g.RefID)
	}
	if g.Certainty != "" {
		el.SetAttr("cert", g.Certainty)
	}
	xmlquery.AddChild(el, &xmlquery.Node{Type: xmlquery.TextNode, Data: g.Text})
	return el
}

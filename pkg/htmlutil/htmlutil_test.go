package htmlutil

import (
	"context"
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

const page = `<html><body>
<a href="event?e=41&f=MO">  Modern
   Challenge </a>
<a href="event?e=42&d=900&f=MO">Deck</a>
<a>no href</a>
<a href="https://other.example/x?e=abc">External</a>
</body></html>`

func TestGetAnchors(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	require.NoError(t, err)

	base, err := url.Parse("https://www.mtgtop8.com/format?f=MO")
	require.NoError(t, err)

	anchors := GetAnchors(context.Background(), base, doc.Find("a"))
	require.Len(t, anchors, 3)

	require.Equal(t, "Modern Challenge", anchors[0].Name)
	require.Equal(t, "https://www.mtgtop8.com/event?e=41&f=MO", anchors[0].Href.String())

	id, ok := anchors[0].QueryInt("e")
	require.True(t, ok)
	require.Equal(t, int64(41), id)
	require.False(t, anchors[0].HasQuery("e", "d"))

	require.True(t, anchors[1].HasQuery("e", "d"))
	deck, ok := anchors[1].QueryInt("d")
	require.True(t, ok)
	require.Equal(t, int64(900), deck)

	_, ok = anchors[2].QueryInt("e")
	require.False(t, ok)
}

func TestGetText(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`<div>a<b>b</b><i>c</i></div>`))
	require.NoError(t, err)
	require.Equal(t, "abc", GetText(doc.Find("div").Nodes[0]))
}

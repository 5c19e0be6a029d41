package scrape

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageText(t *testing.T) {
	html := `<html><head><title> Acme  Corp </title><style>p{}</style></head>
<body><nav><li>Menu</li></nav><h1>Welcome</h1><p>We build   great products.</p>
<script>var x = 1;</script><footer><p>Copyright 2024</p></footer></body></html>`

	title, text := PageText(html)

	assert.Equal(t, "Acme Corp", title)
	assert.Equal(t, "Welcome\nWe build great products.", text)
}

func TestDescription_MetaFirst(t *testing.T) {
	page := &Page{HTML: `<html><head>
<meta name="description" content="Acme builds reusable rockets for small satellites.">
<meta property="og:description" content="OG text that should lose.">
</head><body><section><p>` + longText + `</p></section></body></html>`}

	assert.Equal(t, "Acme builds reusable rockets for small satellites.", Description(page))
}

func TestDescription_OpenGraph(t *testing.T) {
	page := &Page{HTML: `<html><head>
<meta property="og:description" content="Acme is the launch company for everyone.">
</head><body></body></html>`}

	assert.Equal(t, "Acme is the launch company for everyone.", Description(page))
}

const longText = "Acme designs and operates small launch vehicles that carry satellites to orbit every week."

func TestDescription_SelectorOrder(t *testing.T) {
	page := &Page{HTML: `<html><body>
<main><p>` + "Main paragraph that is long enough to be selected as a description here." + `</p></main>
<div class="about-us"><p>Too short.</p><p>` + longText + `</p></div>
</body></html>`}

	assert.Equal(t, longText, Description(page))
}

func TestDescription_SkipsOversizedParagraphs(t *testing.T) {
	huge := make([]byte, 600)
	for i := range huge {
		huge[i] = 'a'
	}
	page := &Page{HTML: `<html><body><section><p>` + string(huge) + `</p><p>` + longText + `</p></section></body></html>`}

	assert.Equal(t, longText, Description(page))
}

func TestDescription_TextOnly(t *testing.T) {
	page := &Page{Text: "# Acme\n\n![logo](x.png)\nShort line\n" + longText + "\nMore text"}
	assert.Equal(t, longText, Description(page))
}

func TestDescription_Nothing(t *testing.T) {
	assert.Empty(t, Description(nil))
	assert.Empty(t, Description(&Page{HTML: `<html><body><p>tiny</p></body></html>`}))
}

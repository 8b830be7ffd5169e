package demo

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubKeywords(t *testing.T) {
	g := MustNew()

	got := g.SubKeywords(" coffee ")
	require.NotEmpty(t, got)
	for _, s := range got {
		assert.True(t, strings.HasPrefix(s, "coffee "), s)
	}
}

func TestArticle_KoreanRequest(t *testing.T) {
	g := MustNew()

	title, body := g.Article(ArticleData{Topic: "coffee", Audience: "일반인", Tone: "친근한"})
	assert.Equal(t, "coffee 완벽 가이드", title)
	assert.NotEmpty(t, strings.TrimSpace(body))
	assert.Contains(t, body, "일반인")
	assert.Contains(t, body, "친근한")
	assert.Contains(t, body, "## 1. coffee 기초 가이드")
	assert.NotContains(t, body, "<no value>")
}

func TestArticle_LengthControlsSections(t *testing.T) {
	g := MustNew()

	_, short := g.Article(ArticleData{Topic: "tea", Length: "short"})
	_, long := g.Article(ArticleData{Topic: "tea", Length: "long"})

	assert.Contains(t, short, "## 2. ")
	assert.NotContains(t, short, "## 3. ")
	assert.Contains(t, long, "## 5. ")
}

func TestArticle_SubKeywordAndKeywords(t *testing.T) {
	g := MustNew()

	title, body := g.Article(ArticleData{
		Topic:      "coffee",
		SubKeyword: "coffee 기초 가이드",
		Keywords:   []string{"핸드드립", "원두"},
	})
	assert.Equal(t, "coffee 기초 가이드: coffee 완벽 가이드", title)
	// the sub-keyword used in the title is not repeated as a section
	assert.NotContains(t, body, ". coffee 기초 가이드\n")
	assert.Contains(t, body, "- 핸드드립")
	assert.Contains(t, body, "- 원두")
}

func TestArticle_DefaultsWhenBlank(t *testing.T) {
	g := MustNew()

	_, body := g.Article(ArticleData{Topic: "coffee"})
	assert.Contains(t, body, "일반인 독자")
}

func TestParse_RejectsIncompleteCatalogue(t *testing.T) {
	_, err := parse([]byte("title: x\n"))
	assert.Error(t, err)

	_, err = parse([]byte("subkeywords: [\n"))
	assert.Error(t, err)
}

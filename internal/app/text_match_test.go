package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeText_StripsDiacritics(t *testing.T) {
	// "مَرْحَبا" with tashkeel folds to the plain "مرحبا".
	assert.Equal(t, "مرحبا", normalizeText("مَرْحَبا"))
}

func TestNormalizeText_FoldsAlefVariants(t *testing.T) {
	assert.Equal(t, "اهلا", normalizeText("أهلا"))
	assert.Equal(t, "اهلا", normalizeText("إهلا"))
	assert.Equal(t, "اهلا", normalizeText("آهلا"))
}

func TestNormalizeText_FoldsTaMarbutaAndAlefMaqsura(t *testing.T) {
	assert.Equal(t, "دوره", normalizeText("دورة"))
	assert.Equal(t, "علي", normalizeText("على"))
}

func TestNormalizeText_Lowercases(t *testing.T) {
	assert.Equal(t, "hello world", normalizeText("  Hello WORLD  "))
}

func TestTokenSet_SplitsOnWhitespaceAndDeduplicates(t *testing.T) {
	set := tokenSet("كيف كيف ابدا التسجيل")
	assert.Len(t, set, 3)
	assert.Contains(t, set, "كيف")
	assert.Contains(t, set, "ابدا")
	assert.Contains(t, set, "التسجيل")
}

func TestTokenSet_VariantSpellingsShareTokens(t *testing.T) {
	a := tokenSet("أبدأ الدورة")
	b := tokenSet("ابدا الدوره")
	assert.Equal(t, a, b)
}

func TestJaccardSimilarity(t *testing.T) {
	a := tokenSet("how do i register")
	b := tokenSet("how do i pay")

	// 3 shared tokens of 5 distinct.
	assert.InDelta(t, 0.6, jaccardSimilarity(a, b), 1e-9)
}

func TestJaccardSimilarity_Identical(t *testing.T) {
	a := tokenSet("register now")
	assert.Equal(t, 1.0, jaccardSimilarity(a, a))
}

func TestJaccardSimilarity_Disjoint(t *testing.T) {
	assert.Equal(t, 0.0, jaccardSimilarity(tokenSet("alpha"), tokenSet("beta")))
}

func TestJaccardSimilarity_EmptyUnionIsZero(t *testing.T) {
	assert.Equal(t, 0.0, jaccardSimilarity(tokenSet(""), tokenSet("")))
}

package slug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromTitle(t *testing.T) {
	cases := map[string]string{
		"Handmade Leather Bag!!":  "handmade-leather-bag",
		"  Silver   Ring  ":       "silver-ring",
		"Wooden\tToy\nSet":        "wooden-toy-set",
		"Çanta 2024":              "anta-2024",
		"already-slugged-title":   "already-slugged-title",
		"":                        "",
	}
	for in, want := range cases {
		assert.Equal(t, want, FromTitle(in), "input %q", in)
	}
}

func TestFromName(t *testing.T) {
	assert.Equal(t, "handmade-leather-bag", FromName("Handmade Leather Bag!!"))
	assert.Equal(t, "a-b", FromName("--a__b--"))
	assert.Equal(t, "product", FromName("!!!"))
}

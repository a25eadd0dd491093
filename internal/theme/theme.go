// Package theme is the display-preference configuration table: every theme
// and font variant lives here as data, keyed by name.
package theme

import (
	"strings"

	"gagyebu/internal/core"
)

const (
	DefaultTheme = "modern"
	DefaultFont  = "sans"
)

type (
	// Theme carries the style classes the clients render with, including a
	// per-category badge map.
	Theme struct {
		Name       string                   `json:"name"`
		Label      string                   `json:"label"`
		Background string                   `json:"background"`
		Text       string                   `json:"text"`
		Primary    string                   `json:"primary"`
		Card       string                   `json:"card"`
		Categories map[core.Category]string `json:"categories"`
	}

	// Font is a named font stack.
	Font struct {
		Name  string `json:"name"`
		Label string `json:"label"`
		Class string `json:"class"`
	}
)

var themes = map[string]Theme{
	"modern": {
		Name:       "modern",
		Label:      "모던",
		Background: "bg-slate-50",
		Text:       "text-slate-900",
		Primary:    "bg-slate-900 text-white",
		Card:       "bg-white",
		Categories: map[core.Category]string{
			core.CategoryFood:      "bg-emerald-100 text-emerald-700",
			core.CategoryTransport: "bg-sky-100 text-sky-700",
			core.CategoryShopping:  "bg-violet-100 text-violet-700",
			core.CategoryCulture:   "bg-pink-100 text-pink-700",
			core.CategoryUtilities: "bg-amber-100 text-amber-700",
			core.CategoryEtc:       "bg-gray-100 text-gray-700",
		},
	},
	"nightsky": {
		Name:       "nightsky",
		Label:      "밤하늘",
		Background: "bg-slate-900",
		Text:       "text-slate-50",
		Primary:    "bg-indigo-600 text-white",
		Card:       "bg-slate-800",
		Categories: map[core.Category]string{
			core.CategoryFood:      "bg-emerald-900 text-emerald-300",
			core.CategoryTransport: "bg-sky-900 text-sky-300",
			core.CategoryShopping:  "bg-violet-900 text-violet-300",
			core.CategoryCulture:   "bg-pink-900 text-pink-300",
			core.CategoryUtilities: "bg-amber-900 text-amber-300",
			core.CategoryEtc:       "bg-gray-700 text-gray-300",
		},
	},
	"coral": {
		Name:       "coral",
		Label:      "코랄핑크",
		Background: "bg-rose-50",
		Text:       "text-rose-950",
		Primary:    "bg-rose-400 text-white",
		Card:       "bg-white",
		Categories: map[core.Category]string{
			core.CategoryFood:      "bg-orange-100 text-orange-700",
			core.CategoryTransport: "bg-cyan-100 text-cyan-700",
			core.CategoryShopping:  "bg-purple-100 text-purple-700",
			core.CategoryCulture:   "bg-pink-100 text-pink-700",
			core.CategoryUtilities: "bg-amber-100 text-amber-700",
			core.CategoryEtc:       "bg-rose-100 text-rose-700",
		},
	},
}

var fonts = map[string]Font{
	"sans":  {Name: "sans", Label: "기본", Class: "font-sans"},
	"mono":  {Name: "mono", Label: "고딕", Class: "font-mono"},
	"serif": {Name: "serif", Label: "세리프", Class: "font-serif"},
}

// Lookup returns the theme for name.
func Lookup(name string) (Theme, bool) {
	t, ok := themes[name]
	return t, ok
}

// LookupFont returns the font for name.
func LookupFont(name string) (Font, bool) {
	f, ok := fonts[name]
	return f, ok
}

// Names returns the theme names in display order.
func Names() []string {
	return []string{"modern", "nightsky", "coral"}
}

// FontNames returns the font names in display order.
func FontNames() []string {
	return []string{"sans", "mono", "serif"}
}

// Normalize maps a loaded theme name onto a known one, falling back to the
// default for anything unrecognized.
func Normalize(name string) string {
	if _, ok := themes[name]; ok {
		return name
	}
	return DefaultTheme
}

// NormalizeFont maps a loaded font name onto a known one. Early documents
// stored the raw class name ("font-sans"); the prefix is stripped for them.
func NormalizeFont(name string) string {
	name = strings.TrimPrefix(name, "font-")
	if _, ok := fonts[name]; ok {
		return name
	}
	return DefaultFont
}

package toc

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveOutline_Defaults(t *testing.T) {
	levels, err := ResolveOutline(Directive{Outline: "h1,h2,h3"}, OutlineOptions{})
	require.NoError(t, err)
	require.Len(t, levels, 3)

	for i, l := range levels {
		assert.Equal(t, i, l.Index)
		assert.Nil(t, l.Block, "default block wrapper is none")
		require.NotNil(t, l.Line)
		assert.Equal(t, Wrapper{Name: "div"}, *l.Line)
	}
	assert.Equal(t, "h1", levels[0].Name)
	assert.Equal(t, "h3", levels[2].Name)
}

func TestResolveOutline_WrapperSpecs(t *testing.T) {
	d := Directive{
		Outline:   " h1 , h2 ,h3 ",
		BlockTags: "ul . toc, ,ol",
		LineTags:  "li.entry",
	}
	levels, err := ResolveOutline(d, OutlineOptions{})
	require.NoError(t, err)
	require.Len(t, levels, 3)

	assert.Equal(t, []string{"h1", "h2", "h3"}, []string{levels[0].Name, levels[1].Name, levels[2].Name})

	assert.Equal(t, &Wrapper{Name: "ul", Class: "toc"}, levels[0].Block)
	assert.Nil(t, levels[1].Block, "empty entry falls back to the default")
	assert.Equal(t, &Wrapper{Name: "ol"}, levels[2].Block)

	assert.Equal(t, &Wrapper{Name: "li", Class: "entry"}, levels[0].Line)
	assert.Equal(t, &Wrapper{Name: "div"}, levels[1].Line, "missing entry is padded")
	assert.Equal(t, &Wrapper{Name: "div"}, levels[2].Line)
}

func TestResolveOutline_ClassWithoutTag(t *testing.T) {
	levels, err := ResolveOutline(Directive{Outline: "h1", LineTags: ".orphan"}, OutlineOptions{})
	require.NoError(t, err)
	assert.Nil(t, levels[0].Line)
}

func TestResolveOutline_Errors(t *testing.T) {
	tests := []struct {
		name     string
		outline  string
		code     Code
		index    int
		conflict int
	}{
		{"empty", "", ErrEmptyOutline, -1, -1},
		{"blank", "   ", ErrEmptyOutline, -1, -1},
		{"empty first entry", ",h2", ErrEmptyOutlineEntry, 0, -1},
		{"empty middle entry", "h1,,h3", ErrEmptyOutlineEntry, 1, -1},
		{"trailing comma", "h1,h2,", ErrEmptyOutlineEntry, 2, -1},
		{"duplicate", "h1,h2,h1", ErrDuplicateOutlineEntry, 2, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ResolveOutline(Directive{Outline: tt.outline}, OutlineOptions{})
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.code))

			var te *Error
			require.True(t, errors.As(err, &te))
			assert.Equal(t, tt.index, te.Index)
			assert.Equal(t, tt.conflict, te.Conflict)
			assert.Equal(t, ClassConfig, te.Code.Class())
		})
	}
}

func TestResolveOutline_Strict(t *testing.T) {
	d := Directive{Outline: "h1,h2", BlockTags: "ul"}

	_, err := ResolveOutline(d, OutlineOptions{})
	require.NoError(t, err)

	_, err = ResolveOutline(d, OutlineOptions{Strict: true})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingWrapper))
	assert.Contains(t, err.Error(), "blocktags")

	_, err = ResolveOutline(Directive{Outline: "h1", LineTags: "li,li"}, OutlineOptions{Strict: true})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSurplusWrapper))
	assert.Contains(t, err.Error(), "linetags")
	assert.Equal(t, ClassConfig, ErrSurplusWrapper.Class())

	_, err = ResolveOutline(Directive{Outline: "h1,h2", BlockTags: "ul,ol", LineTags: "li,li"}, OutlineOptions{Strict: true})
	require.NoError(t, err)

	// An absent list still means "all defaults".
	_, err = ResolveOutline(Directive{Outline: "h1,h2"}, OutlineOptions{Strict: true})
	assert.NoError(t, err)
}

func TestResolveOutline_WarnsOnSurplusWrappers(t *testing.T) {
	var warnings []error
	opts := OutlineOptions{Warn: func(err error) { warnings = append(warnings, err) }}

	levels, err := ResolveOutline(Directive{Outline: "h1", LineTags: "li,li,li"}, opts)
	require.NoError(t, err)
	require.Len(t, levels, 1)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Error(), "linetags lists 3 entries for an outline of 1")
}

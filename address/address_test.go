package address

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		raw       string
		scheme    string
		path      string
		basePath  string
		folder    string
		filename  string
		extension string
		noExt     string
		fragment  string
	}{
		{
			raw: "pkg://models/hero.mesh", scheme: "pkg", path: "models/hero.mesh",
			basePath: "models/hero.mesh", folder: "models", filename: "hero.mesh",
			extension: "mesh", noExt: "models/hero",
		},
		{
			raw: "textures/ui/button.png", path: "textures/ui/button.png",
			basePath: "textures/ui/button.png", folder: "textures", filename: "button.png",
			extension: "png", noExt: "textures/ui/button",
		},
		{
			raw: "file://readme", scheme: "file", path: "readme", basePath: "readme",
			filename: "readme", noExt: "readme",
		},
		{
			raw: "pkg://atlas/icons.atlas#sword", scheme: "pkg", path: "atlas/icons.atlas#sword",
			basePath: "atlas/icons.atlas", folder: "atlas", filename: "icons.atlas",
			extension: "atlas", noExt: "atlas/icons", fragment: "sword",
		},
		{
			raw: "pkg://shaders.v2/lit", scheme: "pkg", path: "shaders.v2/lit",
			basePath: "shaders.v2/lit", folder: "shaders.v2", filename: "lit", noExt: "shaders.v2/lit",
		},
		{raw: ""},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			a := Parse(tt.raw)
			assert.Equal(t, tt.raw, a.String())
			assert.Equal(t, tt.scheme, a.Scheme())
			assert.Equal(t, tt.path, a.Path())
			assert.Equal(t, tt.basePath, a.BasePath())
			assert.Equal(t, tt.folder, a.Folder())
			assert.Equal(t, tt.filename, a.Filename())
			assert.Equal(t, tt.extension, a.Extension())
			assert.Equal(t, tt.noExt, a.PathWithoutExtension())
			assert.Equal(t, tt.fragment, a.Fragment())
		})
	}
}

func TestEquality(t *testing.T) {
	assert.Equal(t, Parse("pkg://a/b.png"), Parse("pkg://a/b.png"))
	assert.NotEqual(t, Parse("pkg://a/b.png"), Parse("disk://a/b.png"))
	assert.Equal(t, Parse("pkg://a/b.png").Path(), Parse("disk://a/b.png").Path())
	assert.True(t, Address{}.IsZero())
}

func TestFragments(t *testing.T) {
	a := Parse("pkg://atlas/icons.atlas")
	assert.False(t, a.HasFragment())
	assert.Equal(t, a, a.Base())

	sub := a.WithFragment("shield")
	assert.Equal(t, "pkg://atlas/icons.atlas#shield", sub.String())
	assert.True(t, sub.HasFragment())
	assert.Equal(t, a, sub.Base())
	assert.Equal(t, "pkg://atlas/icons.atlas#axe", sub.WithFragment("axe").String())
	assert.Equal(t, a, sub.WithFragment(""))
}

func TestComponentsAreSubslices(t *testing.T) {
	a := Parse("pkg://models/hero.mesh")
	allocs := testing.AllocsPerRun(100, func() {
		_ = a.Scheme()
		_ = a.Path()
		_ = a.Folder()
		_ = a.Filename()
		_ = a.Extension()
		_ = a.PathWithoutExtension()
	})
	assert.Zero(t, allocs)
}

package resource

import (
	"fmt"
	"strings"
)

// Kind separates resource namespaces so a shader and a texture sharing a name never collide.
type Kind uint8

const (
	KindShader Kind = iota + 1
	KindTexture
	KindCubeMap
	KindSound
)

func (k Kind) String() string {
	switch k {
	case KindShader:
		return "shader"
	case KindTexture:
		return "texture"
	case KindCubeMap:
		return "cubemap"
	case KindSound:
		return "sound"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Key identifies a cache entry.
type Key struct {
	Kind Kind
	Name string
}

func (k Key) String() string {
	return k.Kind.String() + ":" + k.Name
}

// TextureKey derives a texture name from its source path and load flags, so the
// same file loaded flipped and unflipped gets two entries.
type TextureKey struct {
	Path   string
	Flip   bool
	Mipmap bool
}

// Name returns the cache name for the key.
func (k TextureKey) Name() string {
	var b strings.Builder
	b.WriteString(k.Path)
	if k.Flip {
		b.WriteString("#flip")
	}
	if k.Mipmap {
		b.WriteString("#mip")
	}
	return b.String()
}

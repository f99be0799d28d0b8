package address

import "strings"

const (
	schemeSeparator   = "://"
	fragmentSeparator = '#'
)

// Address is an immutable, parsed resource identifier.
//
// Two addresses are equal (==) iff their raw strings are equal: all other
// fields are derived from the raw string.
type Address struct {
	raw string

	// pathStart is the offset of the path inside raw (0 without a scheme).
	pathStart int
	// fragment is the offset of '#' inside raw, or len(raw) if absent.
	fragment int
}

// Parse decomposes s. It never fails.
func Parse(s string) Address {
	a := Address{raw: s, fragment: len(s)}

	if i := strings.Index(s, schemeSeparator); i >= 0 {
		a.pathStart = i + len(schemeSeparator)
	}

	if i := strings.IndexByte(s[a.pathStart:], fragmentSeparator); i >= 0 {
		a.fragment = a.pathStart + i
	}

	return a
}

// String returns the raw identifier.
func (a Address) String() string { return a.raw }

// IsZero reports whether a is the zero Address.
func (a Address) IsZero() bool { return a.raw == "" }

// Scheme returns the portion before "://", or "" if there is none.
func (a Address) Scheme() string {
	if a.pathStart == 0 {
		return ""
	}
	return a.raw[:a.pathStart-len(schemeSeparator)]
}

// Path returns everything after "://" including a fragment, or the whole
// string if there is no scheme. It is the cache key.
func (a Address) Path() string { return a.raw[a.pathStart:] }

// BasePath returns Path without its fragment. Backends read this path.
func (a Address) BasePath() string { return a.raw[a.pathStart:a.fragment] }

// Fragment returns the sub-resource name after '#', or "".
func (a Address) Fragment() string {
	if a.fragment >= len(a.raw) {
		return ""
	}
	return a.raw[a.fragment+1:]
}

// HasFragment reports whether a addresses a sub-resource.
func (a Address) HasFragment() bool { return a.fragment < len(a.raw) }

// Base returns the address of the composite file a points into, keeping the
// scheme. It returns a itself when there is no fragment.
func (a Address) Base() Address {
	if !a.HasFragment() {
		return a
	}
	return Parse(a.raw[:a.fragment])
}

// Folder returns the portion of BasePath before the first '/'.
func (a Address) Folder() string {
	p := a.BasePath()
	i := strings.IndexByte(p, '/')
	if i < 0 {
		return ""
	}
	return p[:i]
}

// Filename returns the portion of BasePath after the last '/'.
func (a Address) Filename() string {
	p := a.BasePath()
	return p[strings.LastIndexByte(p, '/')+1:]
}

// Extension returns the portion of Filename after the last '.', or "".
func (a Address) Extension() string {
	f := a.Filename()
	i := strings.LastIndexByte(f, '.')
	if i < 0 {
		return ""
	}
	return f[i+1:]
}

// PathWithoutExtension returns BasePath with ".ext" removed.
func (a Address) PathWithoutExtension() string {
	p := a.BasePath()
	ext := a.Extension()
	if ext == "" {
		return p
	}
	return p[:len(p)-len(ext)-1]
}

// WithFragment returns the address of sub-resource name inside a's file.
func (a Address) WithFragment(name string) Address {
	base := a.raw[:a.fragment]
	if name == "" {
		return Parse(base)
	}
	return Parse(base + string(fragmentSeparator) + name)
}

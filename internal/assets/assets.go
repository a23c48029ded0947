// Package assets maps nightlords, spawn points and patterns to display
// images under an asset root. Missing files resolve to a placeholder, never
// to an error.
package assets

import (
	"io/fs"
	"os"
	"path"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Asset is a resolved image reference.
type Asset struct {
	// Path is relative to the asset root. Empty for placeholders.
	Path        string
	Placeholder bool
	Alt         string
}

func (a Asset) String() string {
	if a.Placeholder {
		return "[" + a.Alt + "]"
	}
	return a.Path
}

var patternExts = []string{"", ".png", ".jpg", ".jpeg", ".webp"}

// Resolver looks assets up in a file system laid out as
//
//	bosses/<nightlord, lowercased>.jpg
//	spawnPoints/<spawn point>.png
//	patterns/<pattern id>[.png|.jpg|.jpeg|.webp]
type Resolver struct {
	fsys  fs.FS
	lower cases.Caser
}

// NewResolver resolves assets under the directory root. An empty root
// yields a resolver that always falls back.
func NewResolver(root string) *Resolver {
	if root == "" {
		return NewFSResolver(nil)
	}
	return NewFSResolver(os.DirFS(root))
}

// NewFSResolver resolves assets in fsys. A nil fsys always falls back.
func NewFSResolver(fsys fs.FS) *Resolver {
	return &Resolver{fsys: fsys, lower: cases.Lower(language.Und)}
}

func (r *Resolver) Nightlord(name string) Asset {
	return r.first(name, "bosses/"+r.lower.String(name)+".jpg")
}

func (r *Resolver) SpawnPoint(name string) Asset {
	return r.first(name, "spawnPoints/"+name+".png")
}

func (r *Resolver) Pattern(id string) Asset {
	candidates := make([]string, len(patternExts))
	for i, ext := range patternExts {
		candidates[i] = "patterns/" + id + ext
	}
	return r.first("Pattern "+id, candidates...)
}

func (r *Resolver) first(alt string, candidates ...string) Asset {
	if r.fsys != nil {
		for _, c := range candidates {
			if !valid(c) {
				continue
			}
			if info, err := fs.Stat(r.fsys, c); err == nil && !info.IsDir() {
				return Asset{Path: c, Alt: alt}
			}
		}
	}
	return Asset{Placeholder: true, Alt: alt}
}

// valid rejects names that would escape their directory, such as a facet
// value containing "..".
func valid(name string) bool {
	if !fs.ValidPath(name) {
		return false
	}
	dir, file := path.Split(name)
	return file != "" && !strings.Contains(strings.TrimSuffix(dir, "/"), "/")
}

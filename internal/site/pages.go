// Package site manages the pages of a project and the per-page element lists
// and histories behind them.
package site

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/conneroisu/webbuilder/internal/errors"
)

// HomePath is the path the home page is pinned to.
const HomePath = "/"

// Page is one page of the site.
type Page struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Path       string `json:"path"`
	IsHomePage bool   `json:"isHomePage"`
}

// PageSet is an ordered set of pages with exactly one home page. Rejected
// operations leave the set unchanged.
type PageSet struct {
	pages []Page
}

// NewPageSet returns a set holding the initial home page.
func NewPageSet() *PageSet {
	return &PageSet{pages: []Page{{ID: "page-1", Name: "Главная", Path: HomePath, IsHomePage: true}}}
}

// RestorePageSet rebuilds a set from persisted pages, repairing the home invariant:
// the first flagged page stays home, any further flags are cleared, and a set
// without a home gets its first page promoted.
func RestorePageSet(pages []Page) *PageSet {
	if len(pages) == 0 {
		return NewPageSet()
	}
	ps := &PageSet{pages: append([]Page(nil), pages...)}
	home := -1
	for i := range ps.pages {
		if ps.pages[i].IsHomePage && home < 0 {
			home = i
			continue
		}
		ps.pages[i].IsHomePage = false
	}
	if home < 0 {
		home = 0
	}
	ps.pages[home].IsHomePage = true
	ps.pages[home].Path = HomePath

	return ps
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// Slug derives a page path from a name: "/" plus the lower-cased name with
// whitespace runs replaced by dashes.
func Slug(name string) string {
	return "/" + whitespaceRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
}

func normalizePath(path string) string {
	path = strings.TrimSpace(path)
	if path != "" && !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	return path
}

// List returns a copy of the pages in order.
func (ps *PageSet) List() []Page {
	return append([]Page(nil), ps.pages...)
}

// Len returns the number of pages.
func (ps *PageSet) Len() int { return len(ps.pages) }

// Home returns the home page.
func (ps *PageSet) Home() Page {
	for _, p := range ps.pages {
		if p.IsHomePage {
			return p
		}
	}

	return Page{}
}

// Get returns the page with id.
func (ps *PageSet) Get(id string) (Page, error) {
	i := ps.find(id)
	if i < 0 {
		return Page{}, pageNotFound(id)
	}

	return ps.pages[i], nil
}

// ByPath returns the page served at path.
func (ps *PageSet) ByPath(path string) (Page, bool) {
	path = normalizePath(path)
	for _, p := range ps.pages {
		if p.Path == path {
			return p, true
		}
	}

	return Page{}, false
}

// Add creates a page. An empty path is derived from the name. The first page
// of an empty set becomes the home page.
func (ps *PageSet) Add(name, path string) (Page, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Page{}, errors.NewValidationError(errors.CodeEmptyPageName, "page name is required")
	}
	path = normalizePath(path)
	if path == "" {
		path = Slug(name)
	}

	p := Page{ID: "page-" + uuid.New().String(), Name: name, Path: path}
	if len(ps.pages) == 0 {
		p.IsHomePage = true
		p.Path = HomePath
	}
	if ps.pathTaken(p.Path, "") {
		return Page{}, duplicatePath(p.Path)
	}
	ps.pages = append(ps.pages, p)

	return p, nil
}

// Rename changes a page's name and, for pages other than home, its path.
// An empty path keeps the current one.
func (ps *PageSet) Rename(id, name, path string) (Page, error) {
	i := ps.find(id)
	if i < 0 {
		return Page{}, pageNotFound(id)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return Page{}, errors.NewValidationError(errors.CodeEmptyPageName, "page name is required")
	}

	p := ps.pages[i]
	path = normalizePath(path)
	if path == "" {
		path = p.Path
	}
	if p.IsHomePage && path != HomePath {
		return Page{}, errors.NewValidationError(errors.CodeHomePathLocked,
			"the home page path is always /")
	}
	if ps.pathTaken(path, id) {
		return Page{}, duplicatePath(path)
	}

	p.Name = name
	p.Path = path
	ps.pages[i] = p

	return p, nil
}

// Delete removes a page. The home page and the last remaining page cannot be deleted.
func (ps *PageSet) Delete(id string) error {
	i := ps.find(id)
	if i < 0 {
		return pageNotFound(id)
	}
	if ps.pages[i].IsHomePage {
		return errors.NewValidationError(errors.CodeDeleteHomePage, "the home page cannot be deleted")
	}
	if len(ps.pages) == 1 {
		return errors.NewValidationError(errors.CodeDeleteLastPage, "a site needs at least one page")
	}
	ps.pages = append(ps.pages[:i:i], ps.pages[i+1:]...)

	return nil
}

// SetHome makes the page with id the home page. The previous home page gets a
// path derived from its name, suffixed when that path is already in use.
func (ps *PageSet) SetHome(id string) (Page, error) {
	i := ps.find(id)
	if i < 0 {
		return Page{}, pageNotFound(id)
	}
	if ps.pages[i].IsHomePage {
		return ps.pages[i], nil
	}

	for j := range ps.pages {
		if ps.pages[j].IsHomePage {
			ps.pages[j].IsHomePage = false
			ps.pages[j].Path = ps.freePath(Slug(ps.pages[j].Name), ps.pages[j].ID, ps.pages[i].ID)
		}
	}
	ps.pages[i].IsHomePage = true
	ps.pages[i].Path = HomePath

	return ps.pages[i], nil
}

func (ps *PageSet) freePath(base, self, incoming string) string {
	if base == HomePath {
		base = "/home"
	}
	candidate := base
	for n := 2; ps.pathTaken(candidate, self) && !ps.isPage(candidate, incoming); n++ {
		candidate = fmt.Sprintf("%s-%d", base, n)
	}

	return candidate
}

// isPage reports whether path belongs to the page with id. The incoming home
// page is about to give its path up, so it does not block reuse.
func (ps *PageSet) isPage(path, id string) bool {
	for _, p := range ps.pages {
		if p.ID == id {
			return p.Path == path
		}
	}

	return false
}

func (ps *PageSet) pathTaken(path, except string) bool {
	for _, p := range ps.pages {
		if p.ID != except && p.Path == path {
			return true
		}
	}

	return false
}

func (ps *PageSet) find(id string) int {
	for i, p := range ps.pages {
		if p.ID == id {
			return i
		}
	}

	return -1
}

func pageNotFound(id string) error {
	return errors.NewNotFoundError(errors.CodePageNotFound, fmt.Sprintf("page %q not found", id))
}

func duplicatePath(path string) error {
	return errors.NewConflictError(errors.CodeDuplicatePath, fmt.Sprintf("path %q already exists", path))
}

package platform

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

type ID string

const (
	LeetCode      ID = "leetcode"
	Codeforces    ID = "codeforces"
	AtCoder       ID = "atcoder"
	GitHub        ID = "github"
	CodeChef      ID = "codechef"
	GeeksForGeeks ID = "geeksforgeeks"
)

// Kind says how a platform's stats are obtained.
type Kind string

const (
	// KindImage platforms are rendered by a third-party card service; we only build the URL.
	KindImage Kind = "image"
	// KindJSON platforms expose a stats API whose payload we parse.
	KindJSON Kind = "json"
)

type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

func (t Theme) IsDark() bool {
	return t != ThemeLight
}

var ErrUnknownPlatform = errors.New("unknown platform")

type Platform struct {
	ID   ID
	Name string
	Kind Kind
	// Themed platforms embed a theme token in their card URL.
	Themed bool
	// SuccessKey is the top-level payload key whose truthiness marks a found user.
	SuccessKey string
	BaseURL    string

	lightToken string
	build      func(base, handle, themeToken string) string
	profile    string
}

// CardURL builds the image source of an image-card platform.
func (p Platform) CardURL(handle string, theme Theme) string {
	if p.Kind != KindImage {
		return ""
	}
	return p.build(p.BaseURL, handle, p.ThemeToken(theme))
}

// StatsURL builds the endpoint of a JSON platform.
func (p Platform) StatsURL(handle string) string {
	if p.Kind != KindJSON {
		return ""
	}
	return p.build(p.BaseURL, handle, "")
}

func (p Platform) ProfileURL(handle string) string {
	return strings.ReplaceAll(p.profile, "{handle}", url.PathEscape(handle))
}

// ThemeToken is the value the card service expects for the theme query parameter.
func (p Platform) ThemeToken(theme Theme) string {
	if !p.Themed {
		return ""
	}
	if theme.IsDark() {
		return "dark"
	}
	return p.lightToken
}

// EmptyHandleMessage is the prompt shown when the handle is missing.
func (p Platform) EmptyHandleMessage() string {
	return fmt.Sprintf("Please enter a %s username", p.Name)
}

func (p Platform) NotFoundMessage() string {
	return fmt.Sprintf("%s username not found.", p.Name)
}

func (p Platform) FailureMessage() string {
	return fmt.Sprintf("Failed to fetch %s stats.", p.Name)
}

func pathHandle(h string) string  { return url.PathEscape(h) }
func queryHandle(h string) string { return url.QueryEscape(h) }

// defaults is the catalog order: image cards first, then JSON cards.
func defaults() []Platform {
	return []Platform{
		{
			ID: LeetCode, Name: "LeetCode", Kind: KindImage, Themed: true, lightToken: "light",
			BaseURL: "https://leetcard.jacoblin.cool",
			build: func(base, h, theme string) string {
				return fmt.Sprintf("%s/%s?theme=%s&font=Ubuntu&cache=14400&ext=contest", base, pathHandle(h), theme)
			},
			profile: "https://leetcode.com/{handle}",
		},
		{
			ID: Codeforces, Name: "Codeforces", Kind: KindImage,
			BaseURL: "https://codeforces-readme-stats.vercel.app",
			build: func(base, h, _ string) string {
				return fmt.Sprintf("%s/api/card?username=%s", base, queryHandle(h))
			},
			profile: "https://codeforces.com/profile/{handle}",
		},
		{
			ID: AtCoder, Name: "AtCoder", Kind: KindImage,
			BaseURL: "https://atcoder-readme-stats.vercel.app",
			build: func(base, h, _ string) string {
				return fmt.Sprintf("%s/api?username=%s", base, queryHandle(h))
			},
			profile: "https://atcoder.jp/users/{handle}",
		},
		{
			ID: GitHub, Name: "GitHub", Kind: KindImage, Themed: true, lightToken: "default",
			BaseURL: "https://github-readme-stats.vercel.app",
			build: func(base, h, theme string) string {
				return fmt.Sprintf("%s/api?username=%s&show_icons=true&theme=%s", base, queryHandle(h), theme)
			},
			profile: "https://github.com/{handle}",
		},
		{
			ID: CodeChef, Name: "CodeChef", Kind: KindJSON, SuccessKey: "currentRating",
			BaseURL: "https://codechef-api.vercel.app",
			build: func(base, h, _ string) string {
				return fmt.Sprintf("%s/handle/%s", base, pathHandle(h))
			},
			profile: "https://www.codechef.com/users/{handle}",
		},
		{
			ID: GeeksForGeeks, Name: "GeeksForGeeks", Kind: KindJSON, SuccessKey: "info",
			BaseURL: "https://geeks-for-geeks-stats-api.vercel.app",
			build: func(base, h, _ string) string {
				return fmt.Sprintf("%s/?raw=Y&userName=%s", base, queryHandle(h))
			},
			profile: "https://www.geeksforgeeks.org/user/{handle}/",
		},
	}
}

type Catalog struct {
	ordered []Platform
	byID    map[ID]int
}

// NewCatalog returns the built-in platforms. overrides replaces base URLs by platform ID;
// unknown IDs are rejected so a typo in config.yaml does not go unnoticed.
func NewCatalog(overrides map[string]string) (*Catalog, error) {
	c := &Catalog{ordered: defaults(), byID: make(map[ID]int)}
	for i, p := range c.ordered {
		c.byID[p.ID] = i
	}
	for key, base := range overrides {
		i, ok := c.byID[ID(strings.ToLower(key))]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownPlatform, key)
		}
		if base != "" {
			c.ordered[i].BaseURL = strings.TrimRight(base, "/")
		}
	}
	return c, nil
}

// DefaultCatalog is NewCatalog without overrides.
func DefaultCatalog() *Catalog {
	c, _ := NewCatalog(nil)
	return c
}

func (c *Catalog) Get(id ID) (Platform, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Platform{}, false
	}
	return c.ordered[i], true
}

func (c *Catalog) All() []Platform {
	out := make([]Platform, len(c.ordered))
	copy(out, c.ordered)
	return out
}

// Parse resolves a user-supplied platform name such as "LeetCode" or "gfg".
func (c *Catalog) Parse(name string) (Platform, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "gfg" {
		key = string(GeeksForGeeks)
	}
	p, ok := c.Get(ID(key))
	if !ok {
		return Platform{}, fmt.Errorf("%w: %q", ErrUnknownPlatform, name)
	}
	return p, nil
}

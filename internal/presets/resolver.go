// Package presets resolves named format presets from the configuration.
// Names and aliases match case-insensitively and an alias may belong to
// only one preset.
package presets

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nowwaveradio/jdatetime/internal/config"
	"github.com/nowwaveradio/jdatetime/internal/dateutil"
	"github.com/nowwaveradio/jdatetime/internal/directive"
	"github.com/nowwaveradio/jdatetime/internal/locale"
)

// Preset is a resolved format preset
type Preset struct {
	Name        string
	Pattern     string
	Locale      locale.Tag
	Description string
}

// Resolver handles preset alias resolution and lookup operations
type Resolver struct {
	formats  map[string]config.FormatConfig
	aliasMap map[string]string // normalized name or alias -> preset name
	names    []string          // sorted preset names
}

// NewResolver creates a new preset resolver from the given configuration
func NewResolver(cfg *config.Config) (*Resolver, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	r := &Resolver{
		formats:  cfg.Formats,
		aliasMap: make(map[string]string),
		names:    make([]string, 0, len(cfg.Formats)),
	}

	if err := r.buildAliasMap(); err != nil {
		return nil, fmt.Errorf("building alias map: %w", err)
	}
	return r, nil
}

// buildAliasMap constructs the alias-to-name mapping and rejects conflicts
func (r *Resolver) buildAliasMap() error {
	claims := make(map[string][]string)

	for name, format := range r.formats {
		r.names = append(r.names, name)

		key := normalize(name)
		r.aliasMap[key] = name
		claims[key] = append(claims[key], name)

		for _, alias := range format.Aliases {
			key := normalize(alias)
			if key == "" {
				continue
			}
			r.aliasMap[key] = name
			if !contains(claims[key], name) {
				claims[key] = append(claims[key], name)
			}
		}
	}
	sort.Strings(r.names)

	var conflicts []string
	for alias, owners := range claims {
		if len(owners) > 1 {
			sort.Strings(owners)
			conflicts = append(conflicts, fmt.Sprintf("'%s' is used by %v", alias, owners))
		}
	}
	if len(conflicts) > 0 {
		sort.Strings(conflicts)
		return fmt.Errorf("alias conflict: %s", strings.Join(conflicts, "; "))
	}
	return nil
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// FindKey resolves a preset name or alias to its primary name.
// Returns empty string if the preset is not found.
func (r *Resolver) FindKey(nameOrAlias string) string {
	return r.aliasMap[normalize(nameOrAlias)]
}

// FindFormat resolves a preset name or alias. Returns false if the preset
// is not found.
func (r *Resolver) FindFormat(nameOrAlias string) (Preset, bool) {
	name := r.FindKey(nameOrAlias)
	if name == "" {
		return Preset{}, false
	}
	format := r.formats[name]
	tag, _ := locale.Parse(format.Locale)
	return Preset{
		Name:        name,
		Pattern:     format.Pattern,
		Locale:      tag,
		Description: format.Description,
	}, true
}

// Pattern returns the directive pattern for a preset name, or the input
// itself when it already is a pattern. YYYY/MM/DD style patterns are
// translated. The returned locale is None unless
// the preset pins one.
func (r *Resolver) Pattern(nameOrPattern string) (string, locale.Tag, error) {
	if strings.Contains(nameOrPattern, "%") {
		return nameOrPattern, locale.None, nil
	}
	if preset, ok := r.FindFormat(nameOrPattern); ok {
		return preset.Pattern, preset.Locale, nil
	}
	if isUserPattern(nameOrPattern) {
		return dateutil.ToDirectivePattern(nameOrPattern), locale.None, nil
	}
	return "", locale.None, fmt.Errorf("unknown format preset %q", nameOrPattern)
}

// isUserPattern reports a YYYY/MM/DD style pattern
func isUserPattern(s string) bool {
	return strings.Contains(s, "YY") || strings.Contains(s, "DD")
}

// List returns all preset names in sorted order
func (r *Resolver) List() []string {
	result := make([]string, len(r.names))
	copy(result, r.names)
	return result
}

// Aliases returns all aliases for a given preset name
func (r *Resolver) Aliases(name string) []string {
	format, ok := r.formats[name]
	if !ok {
		return []string{}
	}
	aliases := make([]string, len(format.Aliases))
	copy(aliases, format.Aliases)
	return aliases
}

// Validate checks every preset pattern and locale
func (r *Resolver) Validate() error {
	var errs []string

	for _, name := range r.names {
		format := r.formats[name]
		if strings.TrimSpace(format.Pattern) == "" {
			errs = append(errs, fmt.Sprintf("preset '%s': pattern is required", name))
		} else if unknown := directive.Unknown(format.Pattern); len(unknown) > 0 {
			errs = append(errs, fmt.Sprintf("preset '%s': unknown directives %s", name, strings.Join(unknown, ", ")))
		}
		if _, err := locale.Parse(format.Locale); err != nil {
			errs = append(errs, fmt.Sprintf("preset '%s': invalid locale %q", name, format.Locale))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("preset validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Package ini loads extraction profiles from INI files.
// Each section declares one profile: a url pattern plus the keys of
// exactly one extraction strategy. Validation is eager and all-or-nothing
// so a bad profile file fails at startup, not in the middle of a batch.
package ini

import (
	"io"
	"os"
	"sort"
	"strings"

	"github.com/DervishD/sacamantecas"
	"gopkg.in/ini.v1"
)

var _ sacamantecas.ProfileRegistry = (*Registry)(nil)

// Profile keys recognized in a section. Key names are matched
// case-insensitively; empty values are treated as absent.
const (
	urlKey      = "url"
	keyClass    = "k_class"
	valueClass  = "v_class"
	markerTag   = "m_tag"
	markerAttr  = "m_attr"
	markerValue = "m_value"
)

// Registry holds the profiles of one INI file in declaration order.
type Registry struct {
	profiles []*sacamantecas.Profile
}

// LoadFile loads profiles from the INI file at path.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, sacamantecas.Errorf(sacamantecas.ECONFIG, "cannot read profiles file %q: %v", path, err)
	}
	return load(data)
}

// Load loads profiles from r.
func Load(r io.Reader) (*Registry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, sacamantecas.Errorf(sacamantecas.ECONFIG, "cannot read profiles: %v", err)
	}
	return load(data)
}

func load(data []byte) (*Registry, error) {
	f, err := ini.Load(data)
	if err != nil {
		return nil, sacamantecas.Errorf(sacamantecas.ECONFIG, "invalid profiles file: %v", err)
	}

	registry := &Registry{}
	for _, sec := range f.Sections() {
		if sec.Name() == ini.DefaultSection {
			continue
		}
		cfg := make(map[string]string)
		for _, key := range sec.Keys() {
			if key.Value() == "" {
				continue
			}
			cfg[strings.ToLower(key.Name())] = key.Value()
		}
		// Sections with no usable keys declare nothing.
		if len(cfg) == 0 {
			continue
		}
		profile, err := buildProfile(sec.Name(), cfg)
		if err != nil {
			return nil, err
		}
		registry.profiles = append(registry.profiles, profile)
	}
	return registry, nil
}

func buildProfile(name string, cfg map[string]string) (*sacamantecas.Profile, error) {
	urlExpr, ok := cfg[urlKey]
	if !ok {
		return nil, sacamantecas.Errorf(sacamantecas.ECONFIG, "profile %q: missing %q pattern", name, urlKey)
	}
	delete(cfg, urlKey)

	urlPattern, err := compile(name, urlKey, urlExpr)
	if err != nil {
		return nil, err
	}
	strategy, err := buildStrategy(name, cfg)
	if err != nil {
		return nil, err
	}
	return &sacamantecas.Profile{Name: name, URL: urlPattern, Strategy: strategy}, nil
}

// buildStrategy requires the remaining keys of a section to form exactly
// one strategy: partial sets, mixed sets and unknown keys all make the
// profile invalid.
func buildStrategy(name string, cfg map[string]string) (sacamantecas.Strategy, error) {
	switch {
	case len(cfg) == 2 && has(cfg, keyClass) && has(cfg, valueClass):
		key, err := compile(name, keyClass, cfg[keyClass])
		if err != nil {
			return nil, err
		}
		value, err := compile(name, valueClass, cfg[valueClass])
		if err != nil {
			return nil, err
		}
		return &sacamantecas.ClassAttributeStrategy{Key: key, Value: value}, nil
	case len(cfg) == 3 && has(cfg, markerTag) && has(cfg, markerAttr) && has(cfg, markerValue):
		return &sacamantecas.TaggedBlockStrategy{
			Tag:   cfg[markerTag],
			Attr:  cfg[markerAttr],
			Value: cfg[markerValue],
		}, nil
	}
	return nil, sacamantecas.Errorf(sacamantecas.ECONFIG,
		"profile %q: keys [%s] match no extraction strategy", name, keyList(cfg))
}

func compile(profile, key, expr string) (*sacamantecas.Pattern, error) {
	p, err := sacamantecas.CompilePattern(expr)
	if err != nil {
		return nil, sacamantecas.Errorf(sacamantecas.ECONFIG, "profile %q: key %q: %v", profile, key, err)
	}
	return p, nil
}

func has(cfg map[string]string, key string) bool {
	_, ok := cfg[key]
	return ok
}

func keyList(cfg map[string]string) string {
	keys := make([]string, 0, len(cfg))
	for k := range cfg {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return strings.Join(keys, " ")
}

// Match returns the first profile, in declaration order, whose URL
// pattern matches uri.
// Returns ENOPROFILE if no profile matches.
func (r *Registry) Match(uri string) (*sacamantecas.Profile, error) {
	for _, p := range r.profiles {
		if p.URL.Match(uri) {
			return p, nil
		}
	}
	return nil, sacamantecas.Errorf(sacamantecas.ENOPROFILE, "no profile matches %q", uri)
}

// Profiles returns the loaded profiles in declaration order.
func (r *Registry) Profiles() []*sacamantecas.Profile {
	return append([]*sacamantecas.Profile(nil), r.profiles...)
}

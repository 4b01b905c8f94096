package inventory

import (
	"net/netip"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/bmatcuk/doublestar/v4"
)

func newFuncMap() template.FuncMap {
	fm := sprig.TxtFuncMap()

	extra := map[string]any{
		"glob": func(pattern string, value any) bool {
			ok, err := doublestar.Match(pattern, toString(value))
			return err == nil && ok
		},
		"inSubnet": func(cidr string, value any) bool {
			prefix, err := netip.ParsePrefix(cidr)
			if err != nil {
				return false
			}
			addr, err := netip.ParseAddr(toString(value))
			return err == nil && prefix.Contains(addr)
		},
	}

	for name, fn := range extra {
		fm[name] = fn
	}

	return fm
}

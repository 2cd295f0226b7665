package strategy

import (
	"strings"

	"github.com/specialistvlad/compositor/internal/dom"
)

// CopyAttributes copies the attributes of source onto target. See
// MergeAttributes for the rules.
func CopyAttributes(source, target *dom.Node) {
	MergeAttributes(target, source.Attributes())
}

// MergeAttributes adds attrs to target. "@evt" becomes "x-on:evt" and ":attr"
// becomes "x-bind:attr". Class lists and x-init statements are concatenated
// with the incoming value first; x-data is never copied; any other attribute
// already present on target is kept.
func MergeAttributes(target *dom.Node, attrs []dom.Attr) {
	for _, a := range attrs {
		key := a.Key
		switch {
		case strings.HasPrefix(key, "@"):
			key = "x-on:" + key[1:]
		case strings.HasPrefix(key, ":"):
			key = "x-bind:" + key[1:]
		}

		existing, has := target.GetAttribute(key)
		switch key {
		case "x-data":
			continue
		case "x-init":
			if has && existing != "" {
				target.SetAttribute(key, a.Val+";"+existing)
				continue
			}
		case "class":
			if has && existing != "" {
				target.SetAttribute(key, strings.TrimSpace(a.Val+" "+existing))
				continue
			}
		default:
			if has {
				continue
			}
		}
		target.SetAttribute(key, a.Val)
	}
}

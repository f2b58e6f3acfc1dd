package altupdater

// PruneDuplicateShapes drops the attrs object of a type "image" node when it
// only repeats the node's own top-level src and alt.
func PruneDuplicateShapes(doc any) (any, bool) {
	switch v := doc.(type) {
	case *Object:
		if v == nil {
			return doc, false
		}
		changed := false
		if t, _ := stringField(v, "type"); t == "image" {
			src, hasSrc := v.Get("src")
			if attrs, ok := objectField(v, "attrs"); ok && hasSrc {
				attrSrc, ok := attrs.Get("src")
				attrAlt, _ := attrs.Get("alt")
				alt, _ := v.Get("alt")
				if ok && sameValue(attrSrc, src) && sameValue(attrAlt, alt) {
					v.Delete("attrs")
					changed = true
				}
			}
		}
		for _, k := range v.Keys() {
			child, _ := v.Get(k)
			if nv, ch := PruneDuplicateShapes(child); ch {
				v.Set(k, nv)
				changed = true
			}
		}
		return v, changed

	case []any:
		var out []any
		for i, item := range v {
			nv, ch := PruneDuplicateShapes(item)
			if !ch {
				continue
			}
			if out == nil {
				out = make([]any, len(v))
				copy(out, v)
			}
			out[i] = nv
		}
		if out != nil {
			return out, true
		}
		return v, false
	}
	return doc, false
}

// sameValue compares two decoded JSON scalars. Missing values compare equal
// to each other only.
func sameValue(a, b any) bool {
	switch av := a.(type) {
	case nil:
		return b == nil
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	}
	return false
}

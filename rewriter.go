package altupdater

const DefaultMaxDepth = 512

// Update records one image node whose alt text (and possibly source) changed.
// NewSrc is empty when the source was left as is.
type Update struct {
	File   string `json:"file"`
	OldSrc string `json:"old_src"`
	Alt    string `json:"alt"`
	NewSrc string `json:"new_src,omitempty"`
	Shape  string `json:"shape"`
}

func (u Update) Rewritten() bool {
	return u.NewSrc != ""
}

// Rewriter applies an Index to JSON documents decoded by DecodeDocument into
// *Object, []any and scalar values. A Rewriter never writes to its Index and keeps no
// state between calls, so one Rewriter may serve concurrent documents.
type Rewriter struct {
	Index *Index
	// RewriteSrc enables replacing sources found in the rewrite table.
	RewriteSrc bool
	// MaxDepth bounds the nesting level visited. Values below it are passed
	// through untouched. Zero means DefaultMaxDepth.
	MaxDepth int
}

type Result struct {
	Value         any
	Changed       bool
	Updates       []Update
	DepthExceeded bool
}

// Rewrite is a shorthand for a Rewriter with the default depth guard.
func Rewrite(doc any, idx *Index, rewriteSrc bool, fileID string) (any, bool, []Update) {
	r := Rewriter{Index: idx, RewriteSrc: rewriteSrc}
	res := r.Rewrite(doc, fileID)
	return res.Value, res.Changed, res.Updates
}

// Rewrite walks doc depth first in document order, visiting each object
// before its children, and sets alt text on every image node the index can resolve. Objects are
// modified in place except for rich-node attrs, which are replaced by a
// fresh copy. Arrays are copied when one of their elements is replaced.
func (r *Rewriter) Rewrite(doc any, fileID string) Result {
	w := walker{
		idx:        r.Index,
		rewriteSrc: r.RewriteSrc,
		maxDepth:   r.MaxDepth,
		fileID:     fileID,
	}
	if w.maxDepth <= 0 {
		w.maxDepth = DefaultMaxDepth
	}
	if w.idx == nil {
		w.idx = newIndex()
	}

	value, changed := w.walk(doc, 0)
	return Result{
		Value:         value,
		Changed:       changed,
		Updates:       w.updates,
		DepthExceeded: w.depthExceeded,
	}
}

type walker struct {
	idx           *Index
	rewriteSrc    bool
	maxDepth      int
	fileID        string
	updates       []Update
	depthExceeded bool
}

func (w *walker) walk(value any, depth int) (any, bool) {
	if depth > w.maxDepth {
		w.depthExceeded = true
		return value, false
	}

	switch v := value.(type) {
	case *Object:
		if v == nil {
			return value, false
		}
		changed := w.visit(v)

		for _, k := range v.Keys() {
			child, _ := v.Get(k)
			nv, ch := w.walk(child, depth+1)
			if ch {
				v.Set(k, nv)
				changed = true
			}
		}
		return v, changed

	case []any:
		var out []any
		for i, item := range v {
			nv, ch := w.walk(item, depth+1)
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

	return value, false
}

func (w *walker) visit(node *Object) bool {
	img, ok := Locate(node, w.idx)
	if !ok {
		return false
	}

	if w.rewriteSrc {
		if entry, ok := w.idx.RewriteFor(NormalizePath(img.Src)); ok {
			if !writeImage(node, img.Shape, entry.NewPath, entry.Alt) {
				return false
			}
			w.record(img, entry.Alt, entry.NewPath)
			return true
		}
	}

	alt := w.idx.Resolve(img.Src)
	if alt == "" {
		return false
	}
	if !writeImage(node, img.Shape, "", alt) {
		return false
	}
	w.record(img, alt, "")
	return true
}

func (w *walker) record(img ImageNode, alt, newSrc string) {
	w.updates = append(w.updates, Update{
		File:   w.fileID,
		OldSrc: img.Src,
		Alt:    alt,
		NewSrc: newSrc,
		Shape:  img.Shape.String(),
	})
}

// writeImage sets alt, and src when newSrc is not empty, on the fields that
// belong to shape. It reports whether any value actually changed.
func writeImage(node *Object, shape Shape, newSrc, alt string) bool {
	switch shape {
	case ShapeNested:
		image, ok := objectField(node, "image")
		if !ok {
			return false
		}
		return setPair(image, "src", "alt", newSrc, alt)

	case ShapeFlat:
		return setPair(node, "imageSrc", "imageAlt", newSrc, alt)

	case ShapeRichNode:
		attrs, ok := objectField(node, "attrs")
		if !ok {
			return false
		}
		// attrs may be shared with other parts of the caller's data.
		next := attrs.Clone()
		if !setPair(next, "src", "alt", newSrc, alt) {
			return false
		}
		node.Set("attrs", next)
		return true

	case ShapeTagged, ShapeGeneric:
		return setPair(node, "src", "alt", newSrc, alt)
	}
	return false
}

func setPair(m *Object, srcKey, altKey, newSrc, alt string) bool {
	changed := false
	if newSrc != "" && setString(m, srcKey, newSrc) {
		changed = true
	}
	if setString(m, altKey, alt) {
		changed = true
	}
	return changed
}

func setString(m *Object, key, value string) bool {
	if cur, ok := stringField(m, key); ok && cur == value {
		return false
	}
	m.Set(key, value)
	return true
}

package altupdater

// Shape names the convention a document uses to carry an image reference.
type Shape int

const (
	ShapeNone Shape = iota
	// {"image": {"src": ..., "alt": ...}}
	ShapeNested
	// {"imageSrc": ..., "imageAlt": ...}
	ShapeFlat
	// {"type": "image", "attrs": {"src": ..., "alt": ...}}
	ShapeRichNode
	// {"type": "image", "src": ..., "alt": ...}
	ShapeTagged
	// {"src": ..., "alt": ...}
	ShapeGeneric
)

func (s Shape) String() string {
	switch s {
	case ShapeNested:
		return "nested"
	case ShapeFlat:
		return "flat"
	case ShapeRichNode:
		return "rich-node"
	case ShapeTagged:
		return "tagged"
	case ShapeGeneric:
		return "generic"
	default:
		return "none"
	}
}

// ImageNode is the result of classifying an object node: the shape it was
// recognized as and the image source found under that shape.
type ImageNode struct {
	Shape Shape
	Src   string
}

// Locate classifies node and returns its image source. The first matching
// convention wins: nested image object, flat imageSrc, type "image" (rich
// attrs or tagged src), then a generic src that either looks like an image
// or is known to the index. A node whose matching convention carries no
// usable string source has no image source at all.
func Locate(node *Object, idx *Index) (ImageNode, bool) {
	if image, ok := objectField(node, "image"); ok {
		if src, ok := image.Get("src"); ok {
			return imageNode(ShapeNested, src)
		}
	}

	if src, ok := node.Get("imageSrc"); ok {
		return imageNode(ShapeFlat, src)
	}

	if t, ok := stringField(node, "type"); ok && t == "image" {
		if attrs, ok := objectField(node, "attrs"); ok {
			if src, ok := attrs.Get("src"); ok {
				return imageNode(ShapeRichNode, src)
			}
		}
		if src, ok := node.Get("src"); ok {
			return imageNode(ShapeTagged, src)
		}
		return ImageNode{}, false
	}

	if src, ok := stringField(node, "src"); ok {
		if IsImagePath(src) || (idx != nil && idx.knows(src)) {
			return imageNode(ShapeGeneric, src)
		}
	}
	return ImageNode{}, false
}

func imageNode(shape Shape, value any) (ImageNode, bool) {
	src, ok := value.(string)
	if !ok || src == "" {
		return ImageNode{}, false
	}
	return ImageNode{Shape: shape, Src: src}, true
}

func objectField(node *Object, key string) (*Object, bool) {
	v, ok := node.Get(key)
	if !ok {
		return nil, false
	}
	obj, ok := v.(*Object)
	return obj, ok && obj != nil
}

func stringField(node *Object, key string) (string, bool) {
	v, ok := node.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

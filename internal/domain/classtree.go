package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ClassTree is a node of the particle-classification taxonomy: either a leaf
// count or an ordered mapping of class names to subtrees. The zero value is an
// empty mapping.
type ClassTree struct {
	leaf     bool
	count    float64
	children []ClassChild
}

// ClassChild is one named entry of a ClassTree mapping.
type ClassChild struct {
	Key  string
	Tree ClassTree
}

func Leaf(count float64) ClassTree { return ClassTree{leaf: true, count: count} }

func Node(children ...ClassChild) ClassTree { return ClassTree{children: children} }

func (t ClassTree) IsLeaf() bool { return t.leaf }

func (t ClassTree) Count() float64 { return t.count }

func (t ClassTree) Children() []ClassChild { return t.children }

// Empty reports whether t is a mapping without entries.
func (t ClassTree) Empty() bool { return !t.leaf && len(t.children) == 0 }

func (t ClassTree) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := t.encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (t ClassTree) encode(buf *bytes.Buffer) error {
	if t.leaf {
		b, err := json.Marshal(t.count)
		if err != nil {
			return err
		}
		buf.Write(b)
		return nil
	}
	buf.WriteByte('{')
	for i, c := range t.children {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(c.Key)
		if err != nil {
			return err
		}
		buf.Write(k)
		buf.WriteByte(':')
		if err := c.Tree.encode(buf); err != nil {
			return err
		}
	}
	buf.WriteByte('}')
	return nil
}

// UnmarshalJSON keeps key order. Values that are neither numbers nor objects
// carry no counts and are dropped.
func (t *ClassTree) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	tree, ok, err := decodeClassValue(dec)
	if err != nil {
		return fmt.Errorf("decode particle classes: %w", err)
	}
	if !ok {
		tree = ClassTree{}
	}
	*t = tree
	return nil
}

func decodeClassValue(dec *json.Decoder) (ClassTree, bool, error) {
	tok, err := dec.Token()
	if err != nil {
		return ClassTree{}, false, err
	}
	switch v := tok.(type) {
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return ClassTree{}, false, err
		}
		return Leaf(f), true, nil
	case json.Delim:
		switch v {
		case '{':
			var node ClassTree
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return ClassTree{}, false, err
				}
				key, _ := keyTok.(string)
				child, ok, err := decodeClassValue(dec)
				if err != nil {
					return ClassTree{}, false, err
				}
				if ok {
					node.children = append(node.children, ClassChild{Key: key, Tree: child})
				}
			}
			if _, err := dec.Token(); err != nil {
				return ClassTree{}, false, err
			}
			return node, true, nil
		case '[':
			for dec.More() {
				if _, _, err := decodeClassValue(dec); err != nil {
					return ClassTree{}, false, err
				}
			}
			if _, err := dec.Token(); err != nil {
				return ClassTree{}, false, err
			}
		}
	}
	return ClassTree{}, false, nil
}

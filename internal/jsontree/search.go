package jsontree

import "strings"

// walk visits objects in depth-first pre-order: an object before its
// descendants, siblings in document order. visit returning false stops the walk.
func walk(root *Value, visit func(obj *Value) bool) {
	if root == nil {
		return
	}
	stack := []*Value{root}
	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if v == nil {
			continue
		}

		switch v.kind {
		case Object:
			if !visit(v) {
				return
			}
			for i := len(v.members) - 1; i >= 0; i-- {
				stack = append(stack, v.members[i].Value)
			}
		case Array:
			for i := len(v.items) - 1; i >= 0; i-- {
				stack = append(stack, v.items[i])
			}
		}
	}
}

// FindByKey returns the first value stored under key anywhere in tree. At each
// object its own keys are checked before any nested value is entered.
func FindByKey(tree *Value, key string) (*Value, bool) {
	var found *Value
	walk(tree, func(obj *Value) bool {
		if v := obj.Get(key); v != nil {
			found = v
			return false
		}
		return true
	})
	return found, found != nil
}

// FindAllURLLists collects every array stored under a key equal to "urlList"
// (any case) and returns the last one discovered.
func FindAllURLLists(tree *Value) (*Value, bool) {
	var last *Value
	walk(tree, func(obj *Value) bool {
		for _, m := range obj.members {
			if m.Value.Kind() == Array && strings.EqualFold(m.Key, "urlList") {
				last = m.Value
			}
		}
		return true
	})
	return last, last != nil
}

package jsontree

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/go-json-experiment/json/jsontext"
)

// ErrSyntax wraps every parse failure.
var ErrSyntax = errors.New("jsontree: malformed json")

type frame struct {
	v      *Value
	key    string
	hasKey bool
}

// Parse decodes a single JSON document; anything but whitespace after it is an
// error. It builds the tree with an explicit
// stack, so nesting depth is bounded by the tokenizer and not the goroutine stack.
func Parse(data []byte) (*Value, error) {
	dec := jsontext.NewDecoder(bytes.NewReader(data),
		jsontext.AllowDuplicateNames(true),
		jsontext.AllowInvalidUTF8(true),
	)

	var (
		root  *Value
		stack []*frame
	)

	attach := func(v *Value) {
		if len(stack) == 0 {
			root = v
			return
		}
		top := stack[len(stack)-1]
		if top.v.kind == Object {
			top.v.members = append(top.v.members, Member{Key: top.key, Value: v})
			top.hasKey = false
			return
		}
		top.v.items = append(top.v.items, v)
	}

	for {
		tok, err := dec.ReadToken()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("%w: unexpected end of input", ErrSyntax)
			}
			return nil, fmt.Errorf("%w: %v", ErrSyntax, err)
		}

		if n := len(stack); n > 0 && stack[n-1].v.kind == Object && !stack[n-1].hasKey && tok.Kind() != '}' {
			stack[n-1].key = tok.String()
			stack[n-1].hasKey = true
			continue
		}

		switch tok.Kind() {
		case '{', '[':
			kind := Object
			if tok.Kind() == '[' {
				kind = Array
			}
			v := &Value{kind: kind}
			attach(v)
			stack = append(stack, &frame{v: v})
			continue
		case '}', ']':
			stack = stack[:len(stack)-1]
		case 'n':
			attach(&Value{kind: Null})
		case 't':
			attach(&Value{kind: Bool, boolean: true})
		case 'f':
			attach(&Value{kind: Bool})
		case '"':
			attach(&Value{kind: String, text: tok.String()})
		case '0':
			attach(&Value{kind: Number, text: tok.String()})
		default:
			return nil, fmt.Errorf("%w: unexpected token %v", ErrSyntax, tok.Kind())
		}

		if len(stack) == 0 {
			break
		}
	}

	if _, err := dec.ReadToken(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after offset %d", ErrSyntax, dec.InputOffset())
	}
	return root, nil
}

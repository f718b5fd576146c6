package predictform

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Form holds the current values of the prediction form inputs.
type Form struct {
	mu     sync.RWMutex
	specs  []FieldSpec
	values map[string]string
	token  string
}

// NewForm builds an empty form for the given fields and anti-forgery token.
func NewForm(specs []FieldSpec, token string) *Form {
	return &Form{
		specs:  append([]FieldSpec(nil), specs...),
		values: make(map[string]string, len(specs)),
		token:  token,
	}
}

// Fields returns the declared inputs in document order.
func (f *Form) Fields() []FieldSpec {
	return append([]FieldSpec(nil), f.specs...)
}

// Field looks up a declared input by name.
func (f *Form) Field(name string) (FieldSpec, bool) {
	for _, spec := range f.specs {
		if spec.Name == name {
			return spec, true
		}
	}
	return FieldSpec{}, false
}

// Set stores the raw value of a declared input.
func (f *Form) Set(name, value string) error {
	if _, ok := f.Field(name); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	f.mu.Lock()
	f.values[name] = value
	f.mu.Unlock()
	return nil
}

// Value returns the raw value of an input, "" when unset.
func (f *Form) Value(name string) string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.values[name]
}

// CSRFToken returns the value of the hidden anti-forgery input.
func (f *Form) CSRFToken() string {
	return f.token
}

// Reset clears every input except the anti-forgery token.
func (f *Form) Reset() {
	f.mu.Lock()
	f.values = make(map[string]string, len(f.specs))
	f.mu.Unlock()
}

// Serialize builds a fresh Record of all inputs. The token is never included.
func (f *Form) Serialize() Record {
	f.mu.RLock()
	defer f.mu.RUnlock()
	rec := make(Record, len(f.specs))
	for _, spec := range f.specs {
		if spec.Name == TokenField {
			continue
		}
		rec[spec.Name] = f.values[spec.Name]
	}
	return rec
}

// ParseForm reads an HTML document and extracts the form with the given id:
// its number inputs (with min/max/step and initial values), their labels and
// the hidden anti-forgery token.
func ParseForm(r io.Reader, formID string) (*Form, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	root := findElement(doc, func(n *html.Node) bool {
		return n.DataAtom == atom.Form && attr(n, "id") == formID
	})
	if root == nil {
		return nil, fmt.Errorf("%w: #%s", ErrFormNotFound, formID)
	}

	labels := map[string]string{}
	walk(root, func(n *html.Node) {
		if n.DataAtom == atom.Label {
			if target := attr(n, "for"); target != "" {
				labels[target] = strings.TrimSpace(textContent(n))
			}
		}
	})

	var (
		specs  []FieldSpec
		values = map[string]string{}
		token  string
	)
	walk(root, func(n *html.Node) {
		if n.DataAtom != atom.Input {
			return
		}
		name := attr(n, "name")
		if name == "" {
			return
		}
		if name == TokenField {
			token = attr(n, "value")
			return
		}
		if !strings.EqualFold(attr(n, "type"), "number") {
			return
		}
		label := labels[attr(n, "id")]
		if label == "" {
			label = humanize(name)
		}
		specs = append(specs, FieldSpec{
			Name:  name,
			Label: strings.TrimSuffix(label, ":"),
			Min:   attrFloat(n, "min"),
			Max:   attrFloat(n, "max"),
			Step:  attrFloat(n, "step"),
		})
		if v := attr(n, "value"); v != "" {
			values[name] = v
		}
	})

	form := NewForm(specs, token)
	for name, v := range values {
		form.values[name] = v
	}
	return form, nil
}

func walk(n *html.Node, fn func(*html.Node)) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			fn(c)
		}
		walk(c, fn)
	}
}

func findElement(n *html.Node, match func(*html.Node) bool) *html.Node {
	if n.Type == html.ElementNode && match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, match); found != nil {
			return found
		}
	}
	return nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// attrFloat parses a numeric attribute; missing or malformed values become NaN.
func attrFloat(n *html.Node, key string) float64 {
	raw := strings.TrimSpace(attr(n, key))
	if raw == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return strings.Join(strings.Fields(b.String()), " ")
}

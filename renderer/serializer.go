package renderer

import (
	"encoding/json"
	"fmt"
	"strings"
)

// voidElements is HTML's self-closing set. Tokenization emits a CloseTag
// for every element, these included; the serializer drops the close tag
// for void elements, so they are written as a bare open tag.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

// serializer walks a Token slice into HTML (spec.md §4.3, Serializer).
type serializer struct {
	seen map[string]bool
	b    strings.Builder
}

// Serialize renders tokens to an HTML string, deduping signal-definition
// scripts by signal id within this call.
func Serialize(tokens []Token) string {
	s := &serializer{seen: make(map[string]bool)}
	for _, t := range tokens {
		s.write(t)
	}
	return s.b.String()
}

func (s *serializer) write(t Token) {
	switch t.Kind {
	case OpenTag:
		s.b.WriteByte('<')
		s.b.WriteString(t.Tag)
		for k, v := range t.Attrs {
			s.b.WriteByte(' ')
			s.b.WriteString(k)
			s.b.WriteString(`="`)
			s.b.WriteString(escapeAttr(fmt.Sprint(v)))
			s.b.WriteByte('"')
		}
		s.b.WriteByte('>')
	case CloseTag:
		if voidElements[t.Tag] {
			return
		}
		s.b.WriteString("</")
		s.b.WriteString(t.Tag)
		s.b.WriteByte('>')
	case TextToken:
		s.b.WriteString(escapeText(t.Text))
	case RawHTML:
		s.b.WriteString(t.Text)
	case BindMarkerOpen:
		s.b.WriteString("<!--^")
		s.b.WriteString(t.Id)
		s.b.WriteString("-->")
	case BindMarkerClose:
		s.b.WriteString("<!--/")
		s.b.WriteString(t.Id)
		s.b.WriteString("-->")
	case SignalDefinition:
		if t.Signal == nil || s.seen[t.Signal.Id] {
			return
		}
		s.seen[t.Signal.Id] = true
		payload, err := json.Marshal(map[string]any{"kind": "signal-definition", "signal": t.Signal})
		if err != nil {
			return
		}
		s.b.WriteString("<script>weaver.push(")
		s.b.Write(payload)
		s.b.WriteString(")</script>")
	}
}

func escapeAttr(v string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;", "'", "&#39;")
	return r.Replace(v)
}

func escapeText(v string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(v)
}

func lowerPropName(name string) string {
	return strings.ToLower(name)
}

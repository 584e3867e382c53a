// Package ssml turns model output into a well-formed SSML document for the
// speech vendor.
package ssml

import (
	"encoding/xml"
	"errors"
	"io"
	"regexp"
	"strings"

	"github.com/steveyiyo/avatar-voice/internal/core/fence"
)

const (
	NamespaceSynthesis = "http://www.w3.org/2001/10/synthesis"
	NamespaceMSTTS     = "http://www.w3.org/2001/mstts"
	namespaceXML       = "http://www.w3.org/XML/1998/namespace"
)

// Envelope describes the wrapper every synthesized document gets.
type Envelope struct {
	Voice       string
	Lang        string
	Style       string
	StyleDegree string
}

var (
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	attrEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
	tagPattern  = regexp.MustCompile(`</?[A-Za-z_:][^<>]*>`)
	// a '<' that cannot open markup, as in "I <3 you" or "5 < 6"
	strayLT     = regexp.MustCompile(`<([^A-Za-z_:/!?]|$)`)
)

// wrappers are removed wherever they appear so the envelope is never nested.
var wrappers = map[string]bool{
	"speak":      true,
	"voice":      true,
	"express-as": true,
}

func (e Envelope) Open() string {
	var b strings.Builder
	b.WriteString(`<speak version="1.0" xmlns="` + NamespaceSynthesis + `" xmlns:mstts="` + NamespaceMSTTS + `" xml:lang="`)
	b.WriteString(attrEscaper.Replace(e.Lang))
	b.WriteString(`"><voice name="`)
	b.WriteString(attrEscaper.Replace(e.Voice))
	b.WriteString(`">`)
	if e.Style != "" {
		b.WriteString(`<mstts:express-as style="`)
		b.WriteString(attrEscaper.Replace(e.Style))
		b.WriteString(`"`)
		if e.StyleDegree != "" {
			b.WriteString(` styledegree="`)
			b.WriteString(attrEscaper.Replace(e.StyleDegree))
			b.WriteString(`"`)
		}
		b.WriteString(`>`)
	}
	return b.String()
}

func (e Envelope) Close() string {
	if e.Style != "" {
		return `</mstts:express-as></voice></speak>`
	}
	return `</voice></speak>`
}

func (e Envelope) Wrap(inner string) string {
	return e.Open() + inner + e.Close()
}

// Plain speaks text verbatim.
func Plain(text string, env Envelope) string {
	return env.Wrap(textEscaper.Replace(strings.TrimSpace(text)))
}

// Normalize strips code fences, drops any wrapper elements the model produced
// and re-serializes the remaining markup inside env. When the markup cannot be
// tokenized the tags are stripped and the text is spoken plainly; the bool
// result reports that fallback. A stray '<' is spoken as text either way.
func Normalize(text string, env Envelope) (string, bool) {
	body := fence.Strip(text)
	inner, err := Inner(body)
	if err != nil {
		plain := tagPattern.ReplaceAllString(body, " ")
		return Plain(strings.Join(strings.Fields(plain), " "), env), true
	}
	return env.Wrap(inner), false
}

// Inner returns the content of body with speak, voice and express-as
// elements removed, re-encoded as markup.
func Inner(body string) (string, error) {
	dec := xml.NewDecoder(strings.NewReader(strayLT.ReplaceAllString(body, "&lt;$1")))
	dec.Strict = false
	dec.AutoClose = xml.HTMLAutoClose
	dec.Entity = xml.HTMLEntity

	w := &writer{}
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var syn *xml.SyntaxError
			if errors.As(err, &syn) && strings.Contains(syn.Msg, "unexpected EOF") {
				// unclosed elements at the end; close what we kept
				break
			}
			return "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			// unknown namespaces would be undeclared in the envelope; keep
			// only their text
			if _, known := qualify(t.Name); wrappers[t.Name.Local] || !known {
				w.skip = append(w.skip, true)
				continue
			}
			w.skip = append(w.skip, false)
			w.start(t)
		case xml.EndElement:
			if len(w.skip) == 0 {
				continue
			}
			skipped := w.skip[len(w.skip)-1]
			w.skip = w.skip[:len(w.skip)-1]
			if !skipped {
				w.end()
			}
		case xml.CharData:
			w.text(string(t))
		}
	}
	for len(w.skip) > 0 {
		skipped := w.skip[len(w.skip)-1]
		w.skip = w.skip[:len(w.skip)-1]
		if !skipped {
			w.end()
		}
	}
	return strings.TrimSpace(w.b.String()), nil
}

type writer struct {
	b       strings.Builder
	open    []string
	skip    []bool
	pending bool
}

func (w *writer) flush() {
	if w.pending {
		w.b.WriteString(">")
		w.pending = false
	}
}

func (w *writer) start(t xml.StartElement) {
	w.flush()
	name, _ := qualify(t.Name)
	w.b.WriteString("<" + name)
	for _, a := range t.Attr {
		if a.Name.Space == "xmlns" || (a.Name.Space == "" && a.Name.Local == "xmlns") {
			continue
		}
		an, ok := qualify(a.Name)
		if !ok {
			continue
		}
		w.b.WriteString(" " + an + `="` + attrEscaper.Replace(a.Value) + `"`)
	}
	w.open = append(w.open, name)
	w.pending = true
}

func (w *writer) end() {
	name := w.open[len(w.open)-1]
	w.open = w.open[:len(w.open)-1]
	if w.pending {
		w.b.WriteString("/>")
		w.pending = false
		return
	}
	w.b.WriteString("</" + name + ">")
}

func (w *writer) text(s string) {
	w.flush()
	w.b.WriteString(textEscaper.Replace(s))
}

// qualify maps n onto the prefixes the envelope declares. ok is false for any
// other namespace.
func qualify(n xml.Name) (name string, ok bool) {
	switch n.Space {
	case "", NamespaceSynthesis:
		return n.Local, true
	case NamespaceMSTTS, "https://www.w3.org/2001/mstts", "mstts":
		return "mstts:" + n.Local, true
	case namespaceXML, "xml":
		return "xml:" + n.Local, true
	}
	return "", false
}

// Text returns the spoken words of doc with all markup removed.
func Text(doc string) string {
	dec := xml.NewDecoder(strings.NewReader(doc))
	dec.Strict = false
	dec.Entity = xml.HTMLEntity
	var b strings.Builder
	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		if cd, ok := tok.(xml.CharData); ok {
			b.Write(cd)
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

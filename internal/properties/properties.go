// Package properties reads and writes the line-oriented key=value format
// tracking files are stored in. The syntax is that of Java .properties
// files, encoded as UTF-8.
package properties

import (
	"bytes"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/magiconair/properties"

	"github.com/Iron-Ham/trackstore/internal/errors"
)

// Decode parses every entry in r. Later duplicates of a key win.
// ${...} references in values are kept literally.
func Decode(r io.Reader) (map[string]string, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	l := &properties.Loader{Encoding: properties.UTF8, DisableExpansion: true}
	p, err := l.LoadBytes(buf)
	if err != nil {
		return nil, errors.Wrap(err, "parse properties")
	}
	return p.Map(), nil
}

// headerLines splits header on every line terminator the parser honors.
var headerLines = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// Encode writes m to w in sorted key order, preceded by header as a comment.
// Each line of a multi-line header becomes its own comment line; an empty
// header writes none. Output is buffered and handed to w in a single Write,
// so nothing is written when m holds an empty key.
func Encode(w io.Writer, m map[string]string, header string) error {
	if _, ok := m[""]; ok {
		return errors.Wrap(errors.ErrInvalidInput, "empty key")
	}

	var buf bytes.Buffer

	if header != "" {
		for _, line := range strings.Split(headerLines.Replace(header), "\n") {
			buf.WriteString("#")
			buf.WriteString(line)
			buf.WriteString("\n")
		}
	}

	for _, k := range slices.Sorted(maps.Keys(m)) {
		buf.WriteString(escape(k, true))
		buf.WriteString("=")
		buf.WriteString(escape(m[k], false))
		buf.WriteString("\n")
	}

	_, err := w.Write(buf.Bytes())
	return err
}

// escape quotes the characters the parser would otherwise treat as syntax.
// Spaces are escaped everywhere in keys but only at the start of values,
// since the parser trims leading whitespace from values.
func escape(s string, isKey bool) string {
	var b strings.Builder
	b.Grow(len(s))

	for i, r := range s {
		switch r {
		case ' ':
			if isKey || i == 0 {
				b.WriteString(`\ `)
			} else {
				b.WriteRune(r)
			}
		case '\t':
			b.WriteString(`\t`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\f':
			b.WriteString(`\f`)
		case '\\':
			b.WriteString(`\\`)
		case '=', ':', '#', '!':
			b.WriteByte('\\')
			b.WriteRune(r)
		default:
			if r < 0x20 || r == 0x7f {
				fmt.Fprintf(&b, `\u%04X`, r)
			} else {
				b.WriteRune(r)
			}
		}
	}
	return b.String()
}

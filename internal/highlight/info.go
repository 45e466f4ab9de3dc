package highlight

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// BlockOptions are the code-block options accepted in a fence info string:
//
//	```python {linenos=true hl_lines="1 3-4" caption="Example" emphasize_text="foo" name="ex"}
type BlockOptions struct {
	Language      string
	LineNos       bool
	LineNoStart   int
	HLLines       [][2]int
	Caption       string
	EmphasizeText string
	Name          string
}

// ParseInfo parses a fence info string into block options. The attribute
// block uses goldmark attribute syntax. Unknown keys are ignored and
// malformed line ranges are skipped.
func ParseInfo(info string) BlockOptions {
	info = strings.TrimSpace(info)
	var opts BlockOptions
	attrs := ""
	if i := strings.IndexByte(info, '{'); i >= 0 {
		attrs = info[i:]
		info = strings.TrimSpace(info[:i])
	}
	if fields := strings.Fields(info); len(fields) > 0 {
		opts.Language = fields[0]
	}
	if attrs != "" {
		if parsed, ok := parser.ParseAttributes(text.NewReader([]byte(attrs))); ok {
			for _, attr := range parsed {
				opts.set(string(attr.Name), attrString(attr.Value))
			}
		}
	}
	return opts
}

func (o *BlockOptions) set(key, value string) {
	switch key {
	case "linenos":
		o.LineNos = value == "" || value == "true" || value == "table" || value == "inline"
	case "linenostart", "lineno-start":
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			o.LineNoStart = n
			o.LineNos = true
		}
	case "hl_lines", "emphasize-lines":
		o.HLLines = ParseLineRanges(value)
	case "caption":
		o.Caption = value
	case "emphasize_text":
		o.EmphasizeText = value
	case "name", "id":
		o.Name = value
	}
}

// ParseLineRanges parses "1 3-4" or "1,3-4" into inclusive ranges.
func ParseLineRanges(s string) [][2]int {
	var out [][2]int
	for _, f := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || unicode.IsSpace(r) }) {
		lo, hi, isRange := strings.Cut(f, "-")
		a, err := strconv.Atoi(lo)
		if err != nil || a < 1 {
			continue
		}
		b := a
		if isRange {
			if b, err = strconv.Atoi(hi); err != nil || b < a {
				continue
			}
		}
		out = append(out, [2]int{a, b})
	}
	return out
}

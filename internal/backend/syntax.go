package backend

import (
	"strings"
	"unicode"
)

// TokenKind classifies a run of characters for highlighting.
type TokenKind uint8

// Token kinds.
const (
	TokenText TokenKind = iota
	TokenKeyword
	TokenString
	TokenNumber
	TokenComment
	TokenPunct
)

// Token is a highlighted span of a line, in rune offsets [Start, End).
type Token struct {
	Start int
	End   int
	Kind  TokenKind
}

// Syntax describes how a language is tokenized and indented.
type Syntax struct {
	Name        string
	Keywords    map[string]bool
	LineComment string
	BlockStart  string
	BlockEnd    string
	Quotes      string

	// Open and Close list the characters that change indent depth.
	Open  string
	Close string

	// Tags enables markup indentation, where depth follows element nesting.
	Tags bool
}

func words(s string) map[string]bool {
	m := make(map[string]bool)
	for _, w := range strings.Fields(s) {
		m[w] = true
	}
	return m
}

var (
	scriptSyntax = &Syntax{
		Name: "javascript",
		Keywords: words(`break case catch class const continue debugger default delete do
			else export extends false finally for function if import in instanceof let new
			null return super switch this throw true try typeof undefined var void while with yield`),
		LineComment: "//",
		BlockStart:  "/*",
		BlockEnd:    "*/",
		Quotes:      "\"'`",
		Open:        "{([",
		Close:       "})]",
	}

	styleSyntax = &Syntax{
		Name:        "css",
		Keywords:    words(`important media import charset font-face keyframes supports page`),
		BlockStart:  "/*",
		BlockEnd:    "*/",
		Quotes:      "\"'",
		Open:        "{(",
		Close:       "})",
	}

	scssSyntax = &Syntax{
		Name:        "scss",
		Keywords:    words(`important media import mixin include extend if else each for function return`),
		LineComment: "//",
		BlockStart:  "/*",
		BlockEnd:    "*/",
		Quotes:      "\"'",
		Open:        "{(",
		Close:       "})",
	}

	markupSyntax = &Syntax{
		Name: "html",
		Keywords: words(`html head body title meta link script style div span p a ul ol li
			table tr td th thead tbody form input button label select option textarea
			img br hr h1 h2 h3 h4 h5 h6 header footer nav section article main pre code`),
		BlockStart: "<!--",
		BlockEnd:   "-->",
		Quotes:     "\"'",
		Tags:       true,
	}
)

// voidElements never take a closing tag.
var voidElements = words(`area base br col embed hr img input link meta source track wbr`)

// hasAt reports whether rs contains marker at position i.
func hasAt(rs []rune, i int, marker string) bool {
	if marker == "" {
		return false
	}
	for _, m := range marker {
		if i >= len(rs) || rs[i] != m {
			return false
		}
		i++
	}
	return true
}

// indexFrom returns the first position >= from where marker starts, or -1.
func indexFrom(rs []rune, from int, marker string) int {
	for i := from; i < len(rs); i++ {
		if hasAt(rs, i, marker) {
			return i
		}
	}
	return -1
}

func isWordRune(r rune) bool {
	return r == '_' || r == '$' || r == '-' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// Tokenize splits line into tokens. inBlock is the block-comment state at
// the start of the line; the returned bool is the state at its end.
func (s *Syntax) Tokenize(line string, inBlock bool) ([]Token, bool) {
	rs := []rune(line)
	var toks []Token
	i := 0
	blockFrom := 0
	for i < len(rs) {
		if inBlock {
			end := indexFrom(rs, blockFrom, s.BlockEnd)
			if end < 0 {
				toks = append(toks, Token{Start: i, End: len(rs), Kind: TokenComment})
				return toks, true
			}
			stop := end + len([]rune(s.BlockEnd))
			toks = append(toks, Token{Start: i, End: stop, Kind: TokenComment})
			i, inBlock = stop, false
			continue
		}

		r := rs[i]
		switch {
		case hasAt(rs, i, s.BlockStart):
			inBlock = true
			blockFrom = i + len([]rune(s.BlockStart))
		case hasAt(rs, i, s.LineComment):
			toks = append(toks, Token{Start: i, End: len(rs), Kind: TokenComment})
			return toks, false
		case strings.ContainsRune(s.Quotes, r):
			j := i + 1
			for j < len(rs) && rs[j] != r {
				if rs[j] == '\\' {
					j++
				}
				j++
			}
			if j < len(rs) {
				j++
			}
			toks = append(toks, Token{Start: i, End: min(j, len(rs)), Kind: TokenString})
			i = min(j, len(rs))
		case unicode.IsDigit(r):
			j := i
			for j < len(rs) && (unicode.IsDigit(rs[j]) || rs[j] == '.') {
				j++
			}
			toks = append(toks, Token{Start: i, End: j, Kind: TokenNumber})
			i = j
		case isWordRune(r):
			j := i
			for j < len(rs) && isWordRune(rs[j]) {
				j++
			}
			kind := TokenText
			if s.Keywords[strings.ToLower(string(rs[i:j]))] {
				kind = TokenKeyword
			}
			toks = append(toks, Token{Start: i, End: j, Kind: kind})
			i = j
		case unicode.IsSpace(r):
			i++
		default:
			toks = append(toks, Token{Start: i, End: i + 1, Kind: TokenPunct})
			i++
		}
	}
	return toks, inBlock
}

// depth returns how a line affects indentation: lead is the change applied
// to the line itself (closers at its start), delta the change for the lines
// after it.
func (s *Syntax) depth(line string, inBlock bool) (lead, delta int) {
	if s.Tags {
		return tagDepth(line)
	}
	toks, _ := s.Tokenize(line, inBlock)
	rs := []rune(line)
	leading := true
	for _, t := range toks {
		if t.Kind != TokenPunct {
			leading = false
			continue
		}
		r := rs[t.Start]
		switch {
		case strings.ContainsRune(s.Open, r):
			delta++
			leading = false
		case strings.ContainsRune(s.Close, r):
			delta--
			if leading {
				lead--
			}
		default:
			leading = false
		}
	}
	return lead, delta
}

// tagDepth counts element nesting on a single markup line.
func tagDepth(line string) (lead, delta int) {
	trimmed := strings.TrimSpace(line)
	leading := true
	for i := 0; i < len(trimmed); i++ {
		if trimmed[i] != '<' {
			continue
		}
		end := strings.IndexByte(trimmed[i:], '>')
		if end < 0 {
			break
		}
		tag := trimmed[i+1 : i+end]
		switch {
		case strings.HasPrefix(tag, "/"):
			delta--
			if leading && i == 0 {
				lead--
			}
		case strings.HasPrefix(tag, "!"), strings.HasSuffix(tag, "/"):
		default:
			name := tag
			if k := strings.IndexAny(name, " \t"); k >= 0 {
				name = name[:k]
			}
			if !voidElements[strings.ToLower(name)] {
				delta++
			}
		}
		leading = false
		i += end
	}
	return lead, delta
}

package page

import (
	"math"
	"strconv"
	"strings"
)

// textRun is one string painted by a content stream, positioned in PDF
// user space (y up).
type textRun struct {
	x, y   float64
	size   float64
	text   string
	skewed bool // rotated or sheared matrix; corner geometry unreliable
}

// matrix is a PDF transformation matrix [a b c d e f], row-vector
// convention: (x y 1) * M.
type matrix struct{ a, b, c, d, e, f float64 }

var identity = matrix{a: 1, d: 1}

// concat returns m applied before n.
func concat(m, n matrix) matrix {
	return matrix{
		a: m.a*n.a + m.b*n.c,
		b: m.a*n.b + m.b*n.d,
		c: m.c*n.a + m.d*n.c,
		d: m.c*n.b + m.d*n.d,
		e: m.e*n.a + m.f*n.c + n.e,
		f: m.e*n.b + m.f*n.d + n.f,
	}
}

func translate(tx, ty float64) matrix { return matrix{a: 1, d: 1, e: tx, f: ty} }

// interpretTextStream walks a decoded content stream and returns every
// positioned text run. Only the text and graphics-state operators that
// influence position are interpreted; painting operators are skipped.
func interpretTextStream(data []byte) []textRun {
	var (
		runs     []textRun
		ctm      = identity
		ctmStack []matrix
		tm       = identity // text matrix
		lm       = identity // line matrix
		leading  float64
		fontSize float64

		nums     []float64
		strs     []string
		arrParts []string
		inArray  bool
	)

	num := func(i int) float64 {
		if i < len(nums) {
			return nums[len(nums)-1-i]
		}
		return 0
	}
	nextLine := func(tx, ty float64) {
		lm = concat(translate(tx, ty), lm)
		tm = lm
	}
	emit := func(s string) {
		if s == "" {
			return
		}
		m := concat(tm, ctm)
		size := fontSize * math.Hypot(m.c, m.d)
		if size <= 0 {
			size = 10
		}
		runs = append(runs, textRun{
			x:      m.e,
			y:      m.f,
			size:   size,
			text:   s,
			skewed: m.b != 0 || m.c != 0,
		})
	}

	tk := newStreamTokenizer(data)
	for {
		t, ok := tk.next()
		if !ok {
			break
		}
		switch t.kind {
		case tokNumber:
			if !inArray {
				nums = append(nums, t.num)
			}
			continue
		case tokString:
			if inArray {
				arrParts = append(arrParts, t.str)
			} else {
				strs = append(strs, t.str)
			}
			continue
		case tokArrayOpen:
			inArray = true
			arrParts = nil
			continue
		case tokArrayClose:
			inArray = false
			continue
		case tokName, tokDictOpen, tokDictClose:
			continue
		}

		// Operator.
		switch t.str {
		case "q":
			ctmStack = append(ctmStack, ctm)
		case "Q":
			if n := len(ctmStack); n > 0 {
				ctm = ctmStack[n-1]
				ctmStack = ctmStack[:n-1]
			}
		case "cm":
			if len(nums) >= 6 {
				ctm = concat(matrix{num(5), num(4), num(3), num(2), num(1), num(0)}, ctm)
			}
		case "BT":
			tm, lm = identity, identity
		case "ET":
		case "Tf":
			fontSize = num(0)
		case "TL":
			leading = num(0)
		case "Td":
			nextLine(num(1), num(0))
		case "TD":
			leading = -num(0)
			nextLine(num(1), num(0))
		case "Tm":
			lm = matrix{num(5), num(4), num(3), num(2), num(1), num(0)}
			tm = lm
		case "T*":
			nextLine(0, -leading)
		case "Tj":
			if len(strs) > 0 {
				emit(strs[len(strs)-1])
			}
		case "'":
			nextLine(0, -leading)
			if len(strs) > 0 {
				emit(strs[len(strs)-1])
			}
		case "\"":
			nextLine(0, -leading)
			if len(strs) > 0 {
				emit(strs[len(strs)-1])
			}
		case "TJ":
			if s := strings.Join(arrParts, ""); s != "" {
				emit(s)
			}
		}
		nums, strs, arrParts = nums[:0], strs[:0], nil
	}
	return runs
}

// ---------------------------------------------------------------------------
// Tokenizer
// ---------------------------------------------------------------------------

type tokenKind int

const (
	tokNumber tokenKind = iota
	tokString
	tokName
	tokArrayOpen
	tokArrayClose
	tokDictOpen
	tokDictClose
	tokOperator
)

type streamToken struct {
	kind tokenKind
	num  float64
	str  string
}

type streamTokenizer struct {
	data []byte
	pos  int
}

func newStreamTokenizer(data []byte) *streamTokenizer {
	return &streamTokenizer{data: data}
}

func (tk *streamTokenizer) next() (streamToken, bool) {
	tk.skipSpace()
	if tk.pos >= len(tk.data) {
		return streamToken{}, false
	}
	c := tk.data[tk.pos]
	switch {
	case c == '(':
		return streamToken{kind: tokString, str: tk.literalString()}, true
	case c == '<':
		if tk.pos+1 < len(tk.data) && tk.data[tk.pos+1] == '<' {
			tk.pos += 2
			return streamToken{kind: tokDictOpen}, true
		}
		return streamToken{kind: tokString, str: tk.hexString()}, true
	case c == '>':
		if tk.pos+1 < len(tk.data) && tk.data[tk.pos+1] == '>' {
			tk.pos += 2
			return streamToken{kind: tokDictClose}, true
		}
		tk.pos++
		return tk.next()
	case c == '[':
		tk.pos++
		return streamToken{kind: tokArrayOpen}, true
	case c == ']':
		tk.pos++
		return streamToken{kind: tokArrayClose}, true
	case c == '/':
		tk.pos++
		return streamToken{kind: tokName, str: tk.regularRun()}, true
	case c == '+' || c == '-' || c == '.' || (c >= '0' && c <= '9'):
		start := tk.pos
		tk.pos++
		for tk.pos < len(tk.data) && isNumberChar(tk.data[tk.pos]) {
			tk.pos++
		}
		v, err := strconv.ParseFloat(string(tk.data[start:tk.pos]), 64)
		if err != nil {
			return tk.next()
		}
		return streamToken{kind: tokNumber, num: v}, true
	case c == '\'' || c == '"':
		tk.pos++
		return streamToken{kind: tokOperator, str: string(c)}, true
	default:
		op := tk.regularRun()
		if op == "" {
			tk.pos++
			return tk.next()
		}
		return streamToken{kind: tokOperator, str: op}, true
	}
}

func (tk *streamTokenizer) skipSpace() {
	for tk.pos < len(tk.data) {
		c := tk.data[tk.pos]
		if c == '%' {
			for tk.pos < len(tk.data) && tk.data[tk.pos] != '\n' {
				tk.pos++
			}
			continue
		}
		if !isPDFSpace(c) {
			return
		}
		tk.pos++
	}
}

// regularRun reads a maximal run of regular characters (operator and
// name bodies).
func (tk *streamTokenizer) regularRun() string {
	start := tk.pos
	for tk.pos < len(tk.data) && isRegular(tk.data[tk.pos]) {
		tk.pos++
	}
	return string(tk.data[start:tk.pos])
}

// literalString decodes a parenthesized PDF string, handling balanced
// nested parentheses, escape sequences, and octal codes.
func (tk *streamTokenizer) literalString() string {
	var b strings.Builder
	depth := 0
	i := tk.pos
	for i < len(tk.data) {
		c := tk.data[i]
		switch c {
		case '(':
			depth++
			if depth > 1 {
				b.WriteByte(c)
			}
			i++
		case ')':
			depth--
			if depth == 0 {
				tk.pos = i + 1
				return b.String()
			}
			b.WriteByte(c)
			i++
		case '\\':
			if i+1 >= len(tk.data) {
				i++
				continue
			}
			i++
			e := tk.data[i]
			switch e {
			case 'n':
				b.WriteByte('\n')
				i++
			case 'r':
				b.WriteByte('\r')
				i++
			case 't':
				b.WriteByte('\t')
				i++
			case 'b':
				b.WriteByte('\b')
				i++
			case 'f':
				b.WriteByte('\f')
				i++
			case '(', ')', '\\':
				b.WriteByte(e)
				i++
			case '\n':
				i++ // line continuation
			case '\r':
				i++
				if i < len(tk.data) && tk.data[i] == '\n' {
					i++
				}
			default:
				if e >= '0' && e <= '7' {
					v := 0
					for n := 0; n < 3 && i < len(tk.data); n++ {
						d := tk.data[i]
						if d < '0' || d > '7' {
							break
						}
						v = v*8 + int(d-'0')
						i++
					}
					b.WriteByte(byte(v))
				} else {
					b.WriteByte(e)
					i++
				}
			}
		default:
			b.WriteByte(c)
			i++
		}
	}
	tk.pos = i
	return b.String()
}

// hexString decodes an angle-bracketed hex string. An odd final digit
// is padded with zero per the PDF spec.
func (tk *streamTokenizer) hexString() string {
	i := tk.pos + 1
	var digits []byte
	for i < len(tk.data) && tk.data[i] != '>' {
		c := tk.data[i]
		if isHexDigit(c) {
			digits = append(digits, c)
		}
		i++
	}
	if i < len(tk.data) {
		i++
	}
	tk.pos = i
	if len(digits)%2 == 1 {
		digits = append(digits, '0')
	}
	var b strings.Builder
	for j := 0; j+1 < len(digits); j += 2 {
		b.WriteByte(hexVal(digits[j])<<4 | hexVal(digits[j+1]))
	}
	return b.String()
}

func isPDFSpace(c byte) bool {
	switch c {
	case 0, '\t', '\n', '\f', '\r', ' ':
		return true
	}
	return false
}

// isRegular reports whether c can appear inside a name or operator
// token (neither whitespace nor a delimiter).
func isRegular(c byte) bool {
	if isPDFSpace(c) {
		return false
	}
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%', '\'', '"':
		return false
	}
	return true
}

func isNumberChar(c byte) bool {
	return (c >= '0' && c <= '9') || c == '.' || c == '-' || c == '+'
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func hexVal(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}

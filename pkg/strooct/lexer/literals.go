package lexer

import "bytes"

// recognizer reports the kind and length of the construct at the start of
// b, or a zero length when the construct is not present.
type recognizer func(b []byte) (TokenKind, int)

// recognizers run after the keyword table, in this order. The time
// literal precedes identifiers so that T#1s is not split into T and #1s,
// comments precede the operators and delimiters they start with, and
// numbers precede operators so that signed literals stay whole.
var recognizers = []recognizer{
	lineComment,
	blockComment,
	pragma,
	timeLiteral,
	identifier,
	stringLiteral,
	numberLiteral,
	operator,
	delimiter,
}

// lineComment matches // up to, not including, the end of the line.
func lineComment(b []byte) (TokenKind, int) {
	if !bytes.HasPrefix(b, []byte("//")) {
		return ILLEGAL, 0
	}
	if i := bytes.IndexByte(b, '\n'); i >= 0 {
		return COMMENT, i
	}
	return COMMENT, len(b)
}

// blockComment matches (* ... *) including both markers. Block comments
// do not nest.
func blockComment(b []byte) (TokenKind, int) {
	if !bytes.HasPrefix(b, []byte("(*")) {
		return ILLEGAL, 0
	}
	if i := bytes.Index(b[2:], []byte("*)")); i >= 0 {
		return COMMENT, i + 4
	}
	return ILLEGAL, 0
}

// pragma matches # up to the next whitespace.
func pragma(b []byte) (TokenKind, int) {
	if len(b) == 0 || b[0] != '#' {
		return ILLEGAL, 0
	}
	n := 1
	for n < len(b) && !isSpace(b[n]) {
		n++
	}
	return PRAGMA, n
}

// timeUnits are the duration units in descending magnitude. A literal
// uses each at most once, largest first.
var timeUnits = [...]string{"d", "h", "m", "s", "ms"}

// unitsByLength is the order units are tried in, so that ms wins over m.
var unitsByLength = [...]int{4, 0, 1, 2, 3}

// timeLiteral matches T# followed by one or more number/unit pairs.
func timeLiteral(b []byte) (TokenKind, int) {
	if len(b) < 2 || b[0] != 'T' || b[1] != '#' {
		return ILLEGAL, 0
	}

	i, end, next := 2, 0, 0
	for {
		d := digitRun(b[i:])
		if d == 0 {
			break
		}
		unit, n := timeUnit(b[i+d:], next)
		if n == 0 {
			break
		}
		i += d + n
		end = i
		next = unit + 1
	}

	if end == 0 {
		return ILLEGAL, 0
	}
	return TIME, end
}

// timeUnit matches the longest unit at the start of b whose index is at
// least from. Units are case-insensitive.
func timeUnit(b []byte, from int) (int, int) {
	for _, u := range unitsByLength {
		if u < from {
			continue
		}
		text := timeUnits[u]
		if len(b) >= len(text) && bytes.EqualFold(b[:len(text)], []byte(text)) {
			return u, len(text)
		}
	}
	return 0, 0
}

// identifier matches a letter or underscore followed by letters, digits
// and underscores.
func identifier(b []byte) (TokenKind, int) {
	if len(b) == 0 || !isLetter(b[0]) {
		return ILLEGAL, 0
	}
	n := 1
	for n < len(b) && (isLetter(b[n]) || isDigit(b[n])) {
		n++
	}
	return IDENT, n
}

// stringLiteral matches a quote up to and including the next occurrence
// of the same quote. There are no escapes; an unterminated string does
// not match.
func stringLiteral(b []byte) (TokenKind, int) {
	if len(b) == 0 || (b[0] != '\'' && b[0] != '"') {
		return ILLEGAL, 0
	}
	if i := bytes.IndexByte(b[1:], b[0]); i >= 0 {
		return STRING, i + 2
	}
	return ILLEGAL, 0
}

// numberLiteral matches [+-]digits[.digits][(e|E)[+-]digits]. The
// fraction and exponent are only consumed when digits follow them, so
// the range 1..10 lexes as 1, two dots, and 10.
func numberLiteral(b []byte) (TokenKind, int) {
	i := 0
	if i < len(b) && (b[i] == '+' || b[i] == '-') {
		i++
	}

	d := digitRun(b[i:])
	if d == 0 {
		return ILLEGAL, 0
	}
	i += d

	if i+1 < len(b) && b[i] == '.' && isDigit(b[i+1]) {
		i++
		i += digitRun(b[i:])
	}

	if i < len(b) && (b[i] == 'e' || b[i] == 'E') {
		j := i + 1
		if j < len(b) && (b[j] == '+' || b[j] == '-') {
			j++
		}
		if e := digitRun(b[j:]); e > 0 {
			i = j + e
		}
	}

	return NUMBER, i
}

// operator matches the arithmetic, relational and assignment operators.
// Two-character operators are checked before their one-character
// prefixes.
func operator(b []byte) (TokenKind, int) {
	if len(b) == 0 {
		return ILLEGAL, 0
	}

	var second byte
	if len(b) > 1 {
		second = b[1]
	}

	switch b[0] {
	case '+':
		return PLUS, 1
	case '-':
		return MINUS, 1
	case '*':
		return ASTERISK, 1
	case '/':
		return SLASH, 1
	case '%':
		return PERCENT, 1
	case ':':
		if second == '=' {
			return ASSIGN, 2
		}
	case '=':
		return EQ, 1
	case '<':
		switch second {
		case '>':
			return NOT_EQ, 2
		case '=':
			return LTE, 2
		}
		return LT, 1
	case '>':
		if second == '=' {
			return GTE, 2
		}
		return GT, 1
	}
	return ILLEGAL, 0
}

// delimiter matches single-character punctuation.
func delimiter(b []byte) (TokenKind, int) {
	if len(b) == 0 {
		return ILLEGAL, 0
	}

	switch b[0] {
	case '.':
		return DOT, 1
	case ',':
		return COMMA, 1
	case ':':
		return COLON, 1
	case ';':
		return SEMICOLON, 1
	case '(':
		return LPAREN, 1
	case ')':
		return RPAREN, 1
	case '[':
		return LBRACKET, 1
	case ']':
		return RBRACKET, 1
	case '{':
		return LBRACE, 1
	case '}':
		return RBRACE, 1
	}
	return ILLEGAL, 0
}

// digitRun counts the leading ASCII digits of b.
func digitRun(b []byte) int {
	n := 0
	for n < len(b) && isDigit(b[n]) {
		n++
	}
	return n
}

// isLetter checks for an ASCII letter or underscore
func isLetter(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

// isDigit checks if the character is a digit
func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

// isSpace matches the C locale isspace class
func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\v' || ch == '\f' || ch == '\r'
}

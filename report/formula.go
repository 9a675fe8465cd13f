package report

import "strings"

// PlainFormula flattens the TeX subset produced by the calculators into a
// single line of text that core PDF fonts can render:
//
//	\frac{a}{b}   (a)/(b)
//	\sqrt{x}      sqrt(x)
//	\times        ×
//	\cdot         ·
//	\Rightarrow   =>
//	m^2           m²
func PlainFormula(tex string) string {
	var b strings.Builder
	for i := 0; i < len(tex); {
		c := tex[i]
		switch c {
		case '\\':
			j := i + 1
			for j < len(tex) && isLetter(tex[j]) {
				j++
			}
			cmd := tex[i+1 : j]
			if cmd == "" {
				// Escaped symbol or spacing command: \, \; \%
				if j < len(tex) {
					switch tex[j] {
					case ',', ';', ':', '!', ' ':
						b.WriteByte(' ')
					default:
						b.WriteByte(tex[j])
					}
					j++
				}
				i = j
				continue
			}
			switch cmd {
			case "frac":
				num, k := group(tex, j)
				den, k := group(tex, k)
				b.WriteString("(" + PlainFormula(num) + ")/(" + PlainFormula(den) + ")")
				i = k
				continue
			case "sqrt":
				arg, k := group(tex, j)
				b.WriteString("sqrt(" + PlainFormula(arg) + ")")
				i = k
				continue
			case "text", "mathrm":
				arg, k := group(tex, j)
				b.WriteString(PlainFormula(arg))
				i = k
				continue
			case "times":
				b.WriteString(" × ")
			case "cdot":
				b.WriteString(" · ")
			case "Rightarrow":
				b.WriteString(" => ")
			default:
				b.WriteString(cmd)
			}
			i = j
		case '^':
			arg, k := group(tex, i+1)
			switch arg {
			case "2":
				b.WriteString("²")
			case "3":
				b.WriteString("³")
			default:
				b.WriteString("^" + PlainFormula(arg))
			}
			i = k
		case '_':
			arg, k := group(tex, i+1)
			b.WriteString("_" + PlainFormula(arg))
			i = k
		case '{', '}':
			i++
		default:
			b.WriteByte(c)
			i++
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// group returns the argument starting at i, either a braced group or a
// single character, and the index just past it.
func group(s string, i int) (string, int) {
	for i < len(s) && s[i] == ' ' {
		i++
	}
	if i >= len(s) {
		return "", i
	}
	if s[i] != '{' {
		return s[i : i+1], i + 1
	}
	depth := 0
	for j := i; j < len(s); j++ {
		switch s[j] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[i+1 : j], j + 1
			}
		}
	}
	return s[i+1:], len(s)
}

func isLetter(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

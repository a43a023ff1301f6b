package pipeline

import (
	_ "embed"
	"strconv"
	"strings"

	tlerrors "tlog.app/go/errors"

	"mathmap/internal/errors"
)

// DefaultTemplate is the C source the generated code is substituted into
//
//go:embed template.c.tmpl
var DefaultTemplate string

// Tokens are the values substituted for the $ escapes of a template
type Tokens struct {
	MaxTupleLength int    // $l
	Plugin         bool   // $g
	Code           string // $m
	CurvePoints    int    // $p
	GradientPoints int    // $q
	OpenStep       bool   // $o
}

func flag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// Substitute expands the $ escapes of template. A $ followed by any other
// character yields that character, so $$ is a literal dollar sign.
func Substitute(template string, tok Tokens) (string, error) {
	var b strings.Builder
	b.Grow(len(template) + len(tok.Code))

	for i := 0; i < len(template); i++ {
		c := template[i]
		if c != '$' {
			b.WriteByte(c)
			continue
		}

		i++
		if i == len(template) {
			return "", &errors.ExternalError{
				Stage: errors.StageTemplate,
				Err:   tlerrors.New("template ends in an unfinished $ escape"),
			}
		}

		switch template[i] {
		case 'l':
			b.WriteString(strconv.Itoa(tok.MaxTupleLength))
		case 'g':
			b.WriteString(flag(tok.Plugin))
		case 'm':
			b.WriteString(tok.Code)
		case 'p':
			b.WriteString(strconv.Itoa(tok.CurvePoints))
		case 'q':
			b.WriteString(strconv.Itoa(tok.GradientPoints))
		case 'o':
			b.WriteString(flag(tok.OpenStep))
		default:
			b.WriteByte(template[i])
		}
	}

	return b.String(), nil
}

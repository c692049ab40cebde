package pattern

import (
	"fmt"
	"regexp"
	"time"

	"github.com/dlclark/regexp2"

	"github.com/arthur-debert/rulelint/pkg/logging"
)

// Engine names
const (
	EngineRE2        = "re2"
	EngineECMAScript = "ecmascript"
)

// matchTimeout bounds a single ecmascript match, backtracking can be exponential
const matchTimeout = 2 * time.Second

// Regex is a compiled regular expression
type Regex interface {
	MatchString(s string) bool
	String() string
}

// Compiler compiles regular expressions with one engine
type Compiler struct {
	engine  string
	timeout time.Duration
}

// NewCompiler returns a compiler for the named engine
func NewCompiler(engine string) (*Compiler, error) {
	switch engine {
	case "", EngineRE2:
		return &Compiler{engine: EngineRE2}, nil
	case EngineECMAScript:
		return &Compiler{engine: EngineECMAScript, timeout: matchTimeout}, nil
	default:
		return nil, fmt.Errorf("unknown regex engine %q", engine)
	}
}

// Engine returns the engine name
func (c *Compiler) Engine() string {
	return c.engine
}

// Regex compiles expr
func (c *Compiler) Regex(expr string) (Regex, error) {
	if c.engine == EngineECMAScript {
		re, err := regexp2.Compile(expr, regexp2.ECMAScript)
		if err != nil {
			return nil, err
		}
		re.MatchTimeout = c.timeout
		return &ecmaRegex{re: re}, nil
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, err
	}
	return re, nil
}

type ecmaRegex struct {
	re *regexp2.Regexp
}

// MatchString reports a failed match, such as a timeout, as no match and
// logs a warning
func (e *ecmaRegex) MatchString(s string) bool {
	ok, err := e.re.MatchString(s)
	if err != nil {
		logger := logging.GetLogger("pattern")
		logger.Warn().
			Err(err).
			Str("pattern", e.re.String()).
			Int("inputLen", len(s)).
			Msg("regex match failed, treating as no match")
		return false
	}
	return ok
}

func (e *ecmaRegex) String() string {
	return e.re.String()
}

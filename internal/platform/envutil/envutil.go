package envutil

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

func String(name, def string) string {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	return v
}

func List(name string) []string {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Parser reads typed variables. An unset variable yields the default; a set but unparsable one
// yields the default and is recorded, so Err reports every bad variable at once.
type Parser struct {
	errs []error
}

func (p *Parser) Err() error {
	return errors.Join(p.errs...)
}

func (p *Parser) fail(name, raw, want string) {
	p.errs = append(p.errs, fmt.Errorf("%s=%q: want %s", name, raw, want))
}

func (p *Parser) Int(name string, def int) int {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		p.fail(name, v, "an integer")
		return def
	}
	return i
}

func (p *Parser) Int64(name string, def int64) int64 {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		p.fail(name, v, "an integer")
		return def
	}
	return i
}

func (p *Parser) Float(name string, def float64) float64 {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		p.fail(name, v, "a number")
		return def
	}
	return f
}

func (p *Parser) Bool(name string, def bool) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(name)))
	switch v {
	case "":
		return def
	case "1", "t", "true", "y", "yes", "on":
		return true
	case "0", "f", "false", "n", "no", "off":
		return false
	default:
		p.fail(name, v, "a boolean")
		return def
	}
}

// Duration accepts Go duration strings ("30s") or a bare integer number of seconds.
func (p *Parser) Duration(name string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	p.fail(name, v, "a duration such as 30s or a number of seconds")
	return def
}

package webstore

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

type expirationForm int

const (
	formRelative expirationForm = iota + 1
	formAbsolute
)

// Expiration is either a relative "<n><unit>" expression or an absolute instant.
type Expiration struct {
	form expirationForm
	expr string
	at   time.Time
}

// After returns a relative expiration. Units are s, m, h and d.
// An empty expression means no expiration.
func After(expr string) Expiration {
	return Expiration{form: formRelative, expr: expr}
}

// At returns an absolute expiration.
func At(t time.Time) Expiration {
	return Expiration{form: formAbsolute, at: t}
}

func (e Expiration) String() string {
	switch e.form {
	case formRelative:
		return e.expr
	case formAbsolute:
		return e.at.Format(time.RFC3339Nano)
	default:
		return ""
	}
}

func (e Expiration) resolve(now time.Time) (time.Time, error) {
	switch e.form {
	case formRelative:
		if e.expr == "" {
			return time.Time{}, nil
		}
		return ParseExpiration(e.expr, now)
	case formAbsolute:
		if e.at.IsZero() {
			return time.Time{}, fmt.Errorf("%w: zero instant", ErrInvalidExpiration)
		}
		return e.at, nil
	default:
		return time.Time{}, nil
	}
}

// ParseExpiration resolves an expression such as "160s", "15m", "20h" or
// "7d" to an absolute instant relative to now. The magnitude is a base-10
// integer and may be negative. Compound expressions are not supported.
func ParseExpiration(expr string, now time.Time) (time.Time, error) {
	if len(expr) < 2 {
		return time.Time{}, fmt.Errorf("%w: %q is too short, use e.g. '20h', '160s', '15d'", ErrInvalidExpiration, expr)
	}

	unit := expr[len(expr)-1]
	n, err := strconv.Atoi(expr[:len(expr)-1])
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q has no integer magnitude, use e.g. '20h', '160s', '15d'", ErrInvalidExpiration, expr)
	}

	var step time.Duration
	switch unit {
	case 's':
		step = time.Second
	case 'm':
		step = time.Minute
	case 'h':
		step = time.Hour
	case 'd':
		step = 24 * time.Hour
	default:
		return time.Time{}, fmt.Errorf("%w: unknown unit %q in %q, use s, m, h or d", ErrInvalidExpiration, unit, expr)
	}

	limit := int64(math.MaxInt64 / step)
	if int64(n) > limit || int64(n) < -limit {
		return time.Time{}, fmt.Errorf("%w: %q is out of range", ErrInvalidExpiration, expr)
	}

	if unit == 'd' {
		return now.AddDate(0, 0, n), nil
	}
	return now.Add(time.Duration(n) * step), nil
}

package validator

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	errs "user-portal/pkg/common/errors"
)

// maxSafeInteger is the largest integer a JSON number (IEEE-754 double)
// represents exactly.
const maxSafeInteger = 1<<53 - 1

// ID accepts integers, JSON numbers and numeric strings.
func (v *Validator) ID(raw any) (int64, error) {
	switch id := raw.(type) {
	case string:
		if strings.TrimSpace(id) == "" {
			return 0, errs.ErrUserIDLength
		}
		if !v.idPattern.MatchString(id) {
			return 0, errs.ErrUserIDFormat
		}
		n, err := strconv.ParseInt(strings.TrimSpace(id), 10, 64)
		if err != nil {
			return 0, errs.ErrUserIDFormat
		}
		return n, nil
	case float64:
		return safeFloat(id)
	case float32:
		return safeFloat(float64(id))
	case json.Number:
		if n, err := id.Int64(); err == nil {
			return safeInt(n)
		}
		f, err := id.Float64()
		if err != nil {
			return 0, errs.ErrUserIDUnsafe
		}
		return safeFloat(f)
	case int:
		return safeInt(int64(id))
	case int32:
		return safeInt(int64(id))
	case int64:
		return safeInt(id)
	case uint:
		if uint64(id) > maxSafeInteger {
			return 0, errs.ErrUserIDUnsafe
		}
		return int64(id), nil
	case uint32:
		return int64(id), nil
	case uint64:
		if id > maxSafeInteger {
			return 0, errs.ErrUserIDUnsafe
		}
		return int64(id), nil
	default:
		return 0, errs.ErrUserIDType
	}
}

func safeInt(n int64) (int64, error) {
	if n > maxSafeInteger || n < -maxSafeInteger {
		return 0, errs.ErrUserIDUnsafe
	}
	return n, nil
}

func safeFloat(f float64) (int64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || math.Abs(f) > maxSafeInteger {
		return 0, errs.ErrUserIDUnsafe
	}
	return int64(f), nil
}

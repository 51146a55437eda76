package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidCatalog is matched by every validation failure returned from the loader
var ErrInvalidCatalog = errors.New("invalid catalog")

// ErrorKind classifies a single validation failure
type ErrorKind string

const (
	// KindMissingField marks a required field that is absent, null or empty
	KindMissingField ErrorKind = "missing-field"
	// KindWrongType marks a field holding a value of the wrong type
	KindWrongType ErrorKind = "wrong-type"
	// KindInvalidEnum marks a string outside its closed set of values
	KindInvalidEnum ErrorKind = "invalid-enum-value"
	// KindOutOfRange marks a number outside its allowed range
	KindOutOfRange ErrorKind = "out-of-range"
	// KindDuplicate marks an id already used by an earlier record
	KindDuplicate ErrorKind = "duplicate-value"
)

// ValidationError describes one offending field
type ValidationError struct {
	Path    string    // e.g. items[3].usaToCanada.status
	Kind    ErrorKind // failure class
	Message string    // human-readable reason
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// ValidationErrors aggregates all failures found in one document
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, 0, len(v))
	for _, e := range v {
		msgs = append(msgs, e.Error())
	}
	return fmt.Sprintf("%s: %d problem(s): %s", ErrInvalidCatalog, len(v), strings.Join(msgs, "; "))
}

// Is makes errors.Is(err, ErrInvalidCatalog) true for any ValidationErrors
func (v ValidationErrors) Is(target error) bool {
	return target == ErrInvalidCatalog
}

var (
	statusValues = []string{string(StatusAllowed), string(StatusRestricted), string(StatusProhibited)}
	periodValues = []string{string(PeriodPerPerson), string(PeriodPerTrip), string(PeriodPerDay)}
	sourceValues = []string{string(SourceCBSA), string(SourceCBP), string(SourceOther)}
)

// validator walks a generic decoded document and collects failures
type validator struct {
	errs ValidationErrors
}

func (v *validator) fail(path string, kind ErrorKind, format string, args ...any) {
	v.errs = append(v.errs, ValidationError{Path: path, Kind: kind, Message: fmt.Sprintf(format, args...)})
}

func join(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

// lookup returns the field value, treating explicit null as absent
func lookup(obj map[string]any, key string) (any, bool) {
	val, ok := obj[key]
	if !ok || val == nil {
		return nil, false
	}
	return val, true
}

// requiredString checks for a present, non-empty string
func (v *validator) requiredString(obj map[string]any, path, key string) (string, bool) {
	p := join(path, key)
	val, ok := lookup(obj, key)
	if !ok {
		v.fail(p, KindMissingField, "is required")
		return "", false
	}
	s, ok := asString(val)
	if !ok {
		v.fail(p, KindWrongType, "must be a string")
		return "", false
	}
	if s == "" {
		v.fail(p, KindMissingField, "must not be empty")
		return "", false
	}
	return s, true
}

func (v *validator) optionalString(obj map[string]any, path, key string) {
	val, ok := lookup(obj, key)
	if !ok {
		return
	}
	if _, ok := asString(val); !ok {
		v.fail(join(path, key), KindWrongType, "must be a string")
	}
}

func (v *validator) requiredBool(obj map[string]any, path, key string) {
	p := join(path, key)
	val, ok := lookup(obj, key)
	if !ok {
		v.fail(p, KindMissingField, "is required")
		return
	}
	if _, ok := val.(bool); !ok {
		v.fail(p, KindWrongType, "must be a boolean")
	}
}

func (v *validator) enum(obj map[string]any, path, key string, allowed []string) {
	p := join(path, key)
	val, ok := lookup(obj, key)
	if !ok {
		v.fail(p, KindMissingField, "is required")
		return
	}
	s, ok := val.(string)
	if !ok {
		v.fail(p, KindWrongType, "must be a string")
		return
	}
	for _, a := range allowed {
		if s == a {
			return
		}
	}
	v.fail(p, KindInvalidEnum, "must be one of: %s", strings.Join(allowed, ", "))
}

// list checks for an array and returns its elements
func (v *validator) list(obj map[string]any, path, key string, required bool) ([]any, bool) {
	p := join(path, key)
	val, ok := lookup(obj, key)
	if !ok {
		if required {
			v.fail(p, KindMissingField, "is required")
		}
		return nil, false
	}
	arr, ok := val.([]any)
	if !ok {
		v.fail(p, KindWrongType, "must be an array")
		return nil, false
	}
	return arr, true
}

func (v *validator) stringList(obj map[string]any, path, key string, required bool) {
	arr, ok := v.list(obj, path, key, required)
	if !ok {
		return
	}
	for i, el := range arr {
		if _, ok := asString(el); !ok {
			v.fail(fmt.Sprintf("%s[%d]", join(path, key), i), KindWrongType, "must be a string")
		}
	}
}

// object checks for a mapping and returns it
func (v *validator) object(obj map[string]any, path, key string, required bool) (map[string]any, bool) {
	p := join(path, key)
	val, ok := lookup(obj, key)
	if !ok {
		if required {
			v.fail(p, KindMissingField, "is required")
		}
		return nil, false
	}
	m, ok := asObject(val)
	if !ok {
		v.fail(p, KindWrongType, "must be an object")
		return nil, false
	}
	return m, true
}

// number checks for a numeric value, returning it as float64
func (v *validator) number(obj map[string]any, path, key string, required bool) (float64, bool) {
	p := join(path, key)
	val, ok := lookup(obj, key)
	if !ok {
		if required {
			v.fail(p, KindMissingField, "is required")
		}
		return 0, false
	}
	n, kind := asNumber(val)
	switch kind {
	case KindWrongType:
		v.fail(p, kind, "must be a number")
		return 0, false
	case KindOutOfRange:
		v.fail(p, kind, "exceeds the number range")
		return 0, false
	}
	return n, true
}

// nonNegativeInt checks for an integer >= 0 that fits the typed int field
func (v *validator) nonNegativeInt(obj map[string]any, path, key string, required bool) {
	p := join(path, key)
	val, ok := lookup(obj, key)
	if !ok {
		if required {
			v.fail(p, KindMissingField, "is required")
		}
		return
	}

	n, kind := asInt(val)
	switch kind {
	case KindWrongType:
		v.fail(p, kind, "must be a whole number")
		return
	case KindOutOfRange:
		v.fail(p, kind, "exceeds the integer range")
		return
	}
	if n < 0 {
		v.fail(p, KindOutOfRange, "must be non-negative, got %d", n)
	}
}

func asObject(val any) (map[string]any, bool) {
	switch m := val.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		res := make(map[string]any, len(m))
		for k, el := range m {
			ks, ok := k.(string)
			if !ok {
				return nil, false
			}
			res[ks] = el
		}
		return res, true
	default:
		return nil, false
	}
}

// asString accepts strings and plain YAML timestamps, which decode as time.Time
// but still land in string fields as their original text
func asString(val any) (string, bool) {
	switch s := val.(type) {
	case string:
		return s, true
	case time.Time:
		if s.IsZero() {
			return "", false
		}
		if s.Equal(s.Truncate(24 * time.Hour)) {
			return s.Format(time.DateOnly), true
		}
		return s.Format(time.RFC3339Nano), true
	default:
		return "", false
	}
}

// asNumber converts a decoded number to float64. The returned kind is empty on success.
// JSON numbers arrive as json.Number, YAML ones as int, uint64 or float64.
func asNumber(val any) (float64, ErrorKind) {
	switch n := val.(type) {
	case int:
		return float64(n), ""
	case int64:
		return float64(n), ""
	case uint64:
		return float64(n), ""
	case float64:
		return n, ""
	case json.Number:
		f, err := strconv.ParseFloat(string(n), 64)
		if errors.Is(err, strconv.ErrRange) {
			return 0, KindOutOfRange
		}
		if err != nil {
			return 0, KindWrongType
		}
		return f, ""
	default:
		return 0, KindWrongType
	}
}

// asInt converts a decoded number to int64, rejecting anything the typed decoders can't put
// into an int: fractions, non-integer JSON literals such as 18.0, and values beyond int64.
func asInt(val any) (int64, ErrorKind) {
	switch n := val.(type) {
	case int:
		return int64(n), ""
	case int64:
		return n, ""
	case uint64:
		if n > math.MaxInt64 {
			return 0, KindOutOfRange
		}
		return int64(n), ""
	case float64:
		if n != math.Trunc(n) {
			return 0, KindWrongType
		}
		if n >= math.MaxInt64 || n < math.MinInt64 {
			return 0, KindOutOfRange
		}
		return int64(n), ""
	case json.Number:
		i, err := strconv.ParseInt(string(n), 10, 64)
		if errors.Is(err, strconv.ErrRange) {
			return 0, KindOutOfRange
		}
		if err != nil {
			return 0, KindWrongType
		}
		return i, ""
	default:
		return 0, KindWrongType
	}
}

// ValidateItems checks a decoded items document ({items: [...], lastUpdated}).
// It returns nil when the document is valid.
func ValidateItems(doc any) error {
	v := &validator{}
	root, ok := asObject(doc)
	if !ok {
		v.fail("(root)", KindWrongType, "must be an object")
		return v.errs
	}

	if items, ok := v.list(root, "", "items", true); ok {
		seen := make(map[string]int, len(items))
		for i, raw := range items {
			path := fmt.Sprintf("items[%d]", i)
			item, ok := asObject(raw)
			if !ok {
				v.fail(path, KindWrongType, "must be an object")
				continue
			}
			if id, ok := v.validateEntry(item, path); ok {
				if first, dup := seen[id]; dup {
					v.fail(join(path, "id"), KindDuplicate, "duplicates id of items[%d]: %q", first, id)
					continue
				}
				seen[id] = i
			}
		}
	}
	v.requiredString(root, "", "lastUpdated")

	if len(v.errs) == 0 {
		return nil
	}
	return v.errs
}

// validateEntry checks one entry and returns its id if the id itself is valid
func (v *validator) validateEntry(item map[string]any, path string) (string, bool) {
	id, idOK := v.requiredString(item, path, "id")
	v.requiredString(item, path, "name")
	v.requiredString(item, path, "category")
	v.stringList(item, path, "aliases", true)
	v.optionalString(item, path, "parentRegulation")
	v.requiredString(item, path, "lastUpdated")

	for _, d := range Directions {
		if rule, ok := v.object(item, path, string(d), true); ok {
			v.validateRule(rule, join(path, string(d)))
		}
	}

	if sources, ok := v.list(item, path, "officialSources", true); ok {
		for i, raw := range sources {
			spath := fmt.Sprintf("%s[%d]", join(path, "officialSources"), i)
			src, ok := asObject(raw)
			if !ok {
				v.fail(spath, KindWrongType, "must be an object")
				continue
			}
			v.requiredString(src, spath, "name")
			v.requiredString(src, spath, "url")
			v.enum(src, spath, "type", sourceValues)
		}
	}
	return id, idOK
}

func (v *validator) validateRule(rule map[string]any, path string) {
	v.enum(rule, path, "status", statusValues)
	v.requiredBool(rule, path, "declarationRequired")
	v.requiredBool(rule, path, "dutyApplies")

	if limit, ok := v.object(rule, path, "quantityLimit", false); ok {
		lpath := join(path, "quantityLimit")
		if amount, ok := v.number(limit, lpath, "amount", true); ok && amount <= 0 {
			v.fail(join(lpath, "amount"), KindOutOfRange, "must be greater than zero, got %v", amount)
		}
		v.requiredString(limit, lpath, "unit")
		v.enum(limit, lpath, "period", periodValues)
	}

	v.nonNegativeInt(rule, path, "ageRestriction", false)
	v.stringList(rule, path, "specialRequirements", false)
	v.optionalString(rule, path, "notes")
	v.optionalString(rule, path, "inheritedFrom")
}

// ValidateCategories checks a decoded categories document ({categories: [...], lastUpdated}).
// It returns nil when the document is valid.
func ValidateCategories(doc any) error {
	v := &validator{}
	root, ok := asObject(doc)
	if !ok {
		v.fail("(root)", KindWrongType, "must be an object")
		return v.errs
	}

	if cats, ok := v.list(root, "", "categories", true); ok {
		seen := make(map[string]int, len(cats))
		for i, raw := range cats {
			path := fmt.Sprintf("categories[%d]", i)
			cat, ok := asObject(raw)
			if !ok {
				v.fail(path, KindWrongType, "must be an object")
				continue
			}
			id, idOK := v.requiredString(cat, path, "id")
			v.requiredString(cat, path, "name")
			v.requiredString(cat, path, "description")
			v.requiredString(cat, path, "icon")
			v.nonNegativeInt(cat, path, "itemCount", true)
			if !idOK {
				continue
			}
			if first, dup := seen[id]; dup {
				v.fail(join(path, "id"), KindDuplicate, "duplicates id of categories[%d]: %q", first, id)
				continue
			}
			seen[id] = i
		}
	}
	v.requiredString(root, "", "lastUpdated")

	if len(v.errs) == 0 {
		return nil
	}
	return v.errs
}

// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package validate

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/nyaruka/phonenumbers"
)

// defaultPhoneRegion is used by "phone" when the rule carries no region.
const defaultPhoneRegion = "NP"

var (
	emailRegex             = regexp.MustCompile(`^(([^<>()\[\]\\.,;:\s@"]+(\.[^<>()\[\]\\.,;:\s@"]+)*)|(".+"))@((\[[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3}\])|(([a-zA-Z\-0-9]+\.)+[a-zA-Z]{2,}))$`)
	alphabetRegex          = regexp.MustCompile(`^[a-zA-Z]+$`)
	alphanumericRegex      = regexp.MustCompile(`^[a-zA-Z0-9]+$`)
	alphabetWithSpaceRegex = regexp.MustCompile(`^[a-zA-Z\s]+$`)

	errOneParam = errors.New("exactly one parameter is required")
)

// IsEmail reports whether s looks like a routable email address.
func IsEmail(s string) bool {
	return emailRegex.MatchString(strings.ToLower(s))
}

// builtinRules is the rule set every [Registry] starts with.
func builtinRules() map[string]RuleFactory {
	return map[string]RuleFactory{
		"required":          requiredRule,
		"string":            typeRule("string", func(v any) bool { _, ok := v.(string); return ok }),
		"boolean":           typeRule("boolean", func(v any) bool { _, ok := v.(bool); return ok }),
		"email":             stringRule("Invalid email address", IsEmail),
		"alphabet":          stringRule("%s can only contain alphabets", alphabetRegex.MatchString),
		"alphanumeric":      stringRule("%s must be alphanumeric", alphanumericRegex.MatchString),
		"alphabetWithSpace": stringRule("%s can only contain alphabets", alphabetWithSpaceRegex.MatchString),
		"phone":             phoneRule,
		"anyOne":            anyOneRule,
		"min":               lengthRule(true),
		"max":               lengthRule(false),
		"regex":             regexRule,
		"number":            numberRule,
		"lt":                compareRule("less", func(v, bound float64) bool { return v < bound }),
		"gt":                compareRule("greater", func(v, bound float64) bool { return v > bound }),
	}
}

// hasInput mirrors how a JSON body is read: absent, null and "" are all empty.
func hasInput(value any) bool {
	if value == nil {
		return false
	}
	if s, ok := value.(string); ok && s == "" {
		return false
	}
	return true
}

// # Built-in Factories

func requiredRule(_ []string) (Predicate, error) {
	return func(field string, value any) (string, bool) {
		if !hasInput(value) {
			return field + " is required", false
		}
		return "", true
	}, nil
}

func typeRule(kind string, match func(any) bool) RuleFactory {
	return func(_ []string) (Predicate, error) {
		return func(field string, value any) (string, bool) {
			if hasInput(value) && !match(value) {
				return fmt.Sprintf("%s must be %s", field, kind), false
			}
			return "", true
		}, nil
	}
}

// stringRule builds a rule that applies match to string values. A message
// containing %s gets the field name.
func stringRule(message string, match func(string) bool) RuleFactory {
	return func(_ []string) (Predicate, error) {
		return func(field string, value any) (string, bool) {
			if !hasInput(value) {
				return "", true
			}
			s, ok := value.(string)
			if ok && match(s) {
				return "", true
			}
			if strings.Contains(message, "%s") {
				return fmt.Sprintf(message, field), false
			}
			return message, false
		}, nil
	}
}

// phoneRule accepts optional region codes, e.g. "phone" or "phone:NP,IN".
func phoneRule(params []string) (Predicate, error) {
	regions := params
	if len(regions) == 0 {
		regions = []string{defaultPhoneRegion}
	}
	for _, region := range regions {
		if phonenumbers.GetCountryCodeForRegion(strings.ToUpper(region)) == 0 {
			return nil, fmt.Errorf("unknown phone region %q", region)
		}
	}

	return func(field string, value any) (string, bool) {
		if !hasInput(value) {
			return "", true
		}
		s, ok := value.(string)
		if !ok {
			return "Invalid Phone", false
		}
		for _, region := range regions {
			number, err := phonenumbers.Parse(s, strings.ToUpper(region))
			if err == nil && phonenumbers.IsValidNumberForRegion(number, strings.ToUpper(region)) {
				return "", true
			}
		}
		return "Invalid Phone", false
	}, nil
}

func anyOneRule(params []string) (Predicate, error) {
	if len(params) == 0 {
		return nil, errors.New("at least one allowed value is required")
	}
	allowed := slices.Clone(params)

	return func(field string, value any) (string, bool) {
		if !hasInput(value) {
			return "", true
		}
		s, ok := value.(string)
		if ok && slices.Contains(allowed, s) {
			return "", true
		}
		return "Invalid value for " + field, false
	}, nil
}

// lengthRule counts characters. An absent value stops the field's chain
// without a message, so "min" never fires on an optional empty field.
func lengthRule(isMin bool) RuleFactory {
	return func(params []string) (Predicate, error) {
		if len(params) != 1 {
			return nil, errOneParam
		}
		bound, err := strconv.Atoi(params[0])
		if err != nil || bound < 0 {
			return nil, fmt.Errorf("length bound %q must be a non-negative integer", params[0])
		}

		return func(field string, value any) (string, bool) {
			if !hasInput(value) {
				return "", false
			}
			s, ok := value.(string)
			if !ok {
				return field + " must be string", false
			}

			length := utf8.RuneCountInString(s)
			switch {
			case isMin && length < bound:
				return fmt.Sprintf("%s must be at least %d characters long", field, bound), false
			case !isMin && length > bound:
				return fmt.Sprintf("%s must be less then or equals to %d characters", field, bound), false
			}
			return "", true
		}, nil
	}
}

func regexRule(params []string) (Predicate, error) {
	if len(params) != 1 {
		return nil, errOneParam
	}
	pattern, err := regexp.Compile(params[0])
	if err != nil {
		return nil, err
	}

	return func(field string, value any) (string, bool) {
		if !hasInput(value) {
			return "", true
		}
		s, ok := value.(string)
		if ok && pattern.MatchString(s) {
			return "", true
		}
		return field + " is invalid", false
	}, nil
}

// asNumber accepts JSON numbers and numeric strings.
func asNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return n, err == nil
	default:
		return 0, false
	}
}

func numberRule(_ []string) (Predicate, error) {
	return func(field string, value any) (string, bool) {
		if !hasInput(value) {
			return "", true
		}
		if _, ok := asNumber(value); !ok {
			return field + " must be number", false
		}
		return "", true
	}, nil
}

// compareRule leaves non-numeric values to the "number" rule.
func compareRule(word string, holds func(v, bound float64) bool) RuleFactory {
	return func(params []string) (Predicate, error) {
		if len(params) != 1 {
			return nil, errOneParam
		}
		bound, err := strconv.ParseFloat(params[0], 64)
		if err != nil {
			return nil, fmt.Errorf("bound %q must be numeric", params[0])
		}

		return func(field string, value any) (string, bool) {
			if !hasInput(value) {
				return "", true
			}
			n, ok := asNumber(value)
			if !ok || holds(n, bound) {
				return "", true
			}
			return fmt.Sprintf("%s must be %s than %s", field, word, params[0]), false
		}, nil
	}
}

// Package common provides configuration, logging and process helpers.
//
// String settings may reference .env or environment values with the {KEY}
// syntax. References are resolved once at load time.
//
// Example:
//
//	Input:  "base_url = {STAGING_URL}"
//	Values: {"STAGING_URL": "https://staging.turngreen.pt"}
//	Output: "base_url = https://staging.turngreen.pt"
//
// Replacement is case-sensitive. Unresolved references are left unchanged and
// logged as warnings.
package common

import (
	"fmt"
	"reflect"
	"regexp"

	"github.com/ternarybob/arbor"
)

// keyRefPattern matches {KEY} references in strings
var keyRefPattern = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// ReplaceKeyReferences replaces all {KEY} references in input with values.
// Missing keys are left unchanged.
func ReplaceKeyReferences(input string, values map[string]string, logger arbor.ILogger) string {
	if input == "" {
		return input
	}

	logUnresolvedKeys(input, values, logger)

	return keyRefPattern.ReplaceAllStringFunc(input, func(match string) string {
		if value, exists := values[match[1:len(match)-1]]; exists {
			return value
		}
		return match
	})
}

func logUnresolvedKeys(input string, values map[string]string, logger arbor.ILogger) {
	for _, match := range keyRefPattern.FindAllStringSubmatch(input, -1) {
		if _, exists := values[match[1]]; !exists {
			logger.Warn().
				Str("reference", match[0]).
				Msg("Unresolved key reference")
		}
	}
}

// ReplaceInStruct walks the exported string, []string and map[string]string
// fields of a struct pointer and replaces {KEY} references in place. Values
// are never logged since they may hold credentials.
func ReplaceInStruct(v interface{}, values map[string]string, logger arbor.ILogger) error {
	val := reflect.ValueOf(v)
	if val.Kind() != reflect.Ptr {
		return fmt.Errorf("ReplaceInStruct requires a pointer, got %T", v)
	}

	val = val.Elem()
	if val.Kind() != reflect.Struct {
		return fmt.Errorf("ReplaceInStruct requires a struct pointer, got pointer to %v", val.Kind())
	}

	replaceInStructValue(val, values, logger)
	return nil
}

func replaceInStructValue(val reflect.Value, values map[string]string, logger arbor.ILogger) {
	typ := val.Type()

	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		name := typ.Field(i).Name

		if !field.CanSet() {
			continue
		}

		switch field.Kind() {
		case reflect.String:
			if replaced := ReplaceKeyReferences(field.String(), values, logger); replaced != field.String() {
				field.SetString(replaced)
				logger.Debug().Str("field", name).Msg("Replaced key reference in struct field")
			}

		case reflect.Struct:
			replaceInStructValue(field, values, logger)

		case reflect.Ptr:
			if !field.IsNil() && field.Elem().Kind() == reflect.Struct {
				replaceInStructValue(field.Elem(), values, logger)
			}

		case reflect.Map:
			if field.Type().Key().Kind() != reflect.String || field.Type().Elem().Kind() != reflect.String {
				continue
			}
			m := field.Interface().(map[string]string)
			for key, value := range m {
				if replaced := ReplaceKeyReferences(value, values, logger); replaced != value {
					m[key] = replaced
					logger.Debug().Str("field", name).Str("key", key).Msg("Replaced key reference in map field")
				}
			}

		case reflect.Slice:
			if field.Type().Elem().Kind() != reflect.String {
				continue
			}
			for j := 0; j < field.Len(); j++ {
				elem := field.Index(j)
				if replaced := ReplaceKeyReferences(elem.String(), values, logger); replaced != elem.String() {
					elem.SetString(replaced)
					logger.Debug().Str("field", name).Int("index", j).Msg("Replaced key reference in slice field")
				}
			}
		}
	}
}

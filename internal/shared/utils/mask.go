package utils

import (
	"reflect"
	"strings"
)

const maskedValue = "******"

// MaskEmail masks an email address for safe logging.
// Example: "kiosk@project.iam.gserviceaccount.com" -> "k***@project.iam.gserviceaccount.com"
func MaskEmail(email string) string {
	parts := strings.SplitN(email, "@", 2)
	if len(parts) != 2 {
		return "***"
	}
	local := parts[0]
	if len(local) <= 1 {
		return local + "***@" + parts[1]
	}
	return string(local[0]) + "***@" + parts[1]
}

// Truncate shortens s to maxLen bytes, appending "..." when it was cut.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return "..."
	}
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// MaskSecrets returns a copy of the struct pointed to by v in which every
// non-empty string field tagged `mask:"true"` is replaced, recursing into
// nested structs. Non-struct values are returned unchanged.
func MaskSecrets(v interface{}) interface{} {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return v
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return v
	}

	out := reflect.New(rv.Type()).Elem()
	out.Set(rv)
	maskStruct(out)
	return out.Addr().Interface()
}

func maskStruct(rv reflect.Value) {
	rt := rv.Type()
	for i := 0; i < rv.NumField(); i++ {
		field := rv.Field(i)
		if !field.CanSet() {
			continue
		}
		switch field.Kind() {
		case reflect.Struct:
			maskStruct(field)
		case reflect.String:
			if rt.Field(i).Tag.Get("mask") == "true" && field.String() != "" {
				field.SetString(maskedValue)
			}
		}
	}
}

// Package munge holds the pieces shared by every stage of the tool: the
// format and compression tags and the error taxonomy.
package munge

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Error codes.
const (
	CodeIO         = "IOErr"
	CodeFormat     = "FormatErr"
	CodeParse      = "ParseErr"
	CodeEvaluation = "EvaluationErr"
	CodeKey        = "KeyErr"
	CodeConfig     = "ConfigErr"
)

// Err is the error type returned by every package in this module.
//
// Data carries context for the message; an entry under "error" holding an
// error is treated as the cause and returned by Unwrap.
type Err struct {
	Code  string
	Title string
	Data  map[string]any
}

func (e Err) Error() string {
	fields := []string{
		e.Code + ": " + e.Title,
	}

	keys := make([]string, 0, len(e.Data))
	for k := range e.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		v := e.Data[k]
		if err, ok := v.(error); ok {
			v = err.Error()
		}

		fields = append(fields, fmt.Sprintf("%s = %+v", k, v))
	}

	return strings.Join(fields, "; ")
}

func (e Err) Unwrap() error {
	if cause, ok := e.Data["error"].(error); ok {
		return cause
	}
	return nil
}

// ErrIs reports whether err, or anything it wraps, is an Err with the given code.
func ErrIs(err error, code string) bool {
	var e Err
	if !errors.As(err, &e) {
		return false
	}

	return e.Code == code
}

func IOErr(title string, data map[string]any) error {
	return Err{Code: CodeIO, Title: title, Data: data}
}

func FormatErr(title string, data map[string]any) error {
	return Err{Code: CodeFormat, Title: title, Data: data}
}

func ParseErr(title string, data map[string]any) error {
	return Err{Code: CodeParse, Title: title, Data: data}
}

func EvaluationErr(title string, data map[string]any) error {
	return Err{Code: CodeEvaluation, Title: title, Data: data}
}

func KeyErr(title string, data map[string]any) error {
	return Err{Code: CodeKey, Title: title, Data: data}
}

func ConfigErr(title string, data map[string]any) error {
	return Err{Code: CodeConfig, Title: title, Data: data}
}

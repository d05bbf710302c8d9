package errors

import (
	"fmt"
	"strings"
)

// Append combines all given errors into a single error. Nil values are
// ignored. If all values are nil, nil is returned. A single non nil error is
// returned unchanged.
//
// Use it to collect all validation problems of a structure instead of
// failing on the first one.
func Append(errs ...error) error {
	var res []error
	for _, e := range errs {
		if isNilErr(e) {
			continue
		}
		if m, ok := e.(*multiErr); ok {
			res = append(res, m.errs...)
			continue
		}
		res = append(res, e)
	}
	switch len(res) {
	case 0:
		return nil
	case 1:
		return res[0]
	default:
		return &multiErr{errs: res}
	}
}

// AppendField is a shortcut for Append(err, Field(field, fieldErr, "")).
func AppendField(err error, field string, fieldErr error) error {
	return Append(err, Field(field, fieldErr, ""))
}

type multiErr struct {
	errs []error
}

func (m *multiErr) Error() string {
	points := make([]string, len(m.errs))
	for i, err := range m.errs {
		points[i] = fmt.Sprintf("* %s", err)
	}
	return fmt.Sprintf("%d errors occurred:\n\t%s\n", len(m.errs), strings.Join(points, "\n\t"))
}

// Field returns an error instance that wraps the original error with
// additional information about the field the problem relates to. It returns
// nil if provided error is nil.
//
// Use Go naming for the field name, for example Owners or Amount. For nested
// fields use dot notation (Action.Recipient) and element indexes for
// iterables (Owners.2).
func Field(fieldName string, err error, description string, args ...interface{}) error {
	if isNilErr(err) {
		return nil
	}
	if len(args) > 0 {
		description = fmt.Sprintf(description, args...)
	}
	if description == "" {
		return Wrap(err, fieldName)
	}
	return Wrap(err, fieldName+": "+description)
}

func isNilErr(err error) bool {
	if err == nil {
		return true
	}
	if e, ok := err.(*Error); ok && e == nil {
		return true
	}
	return false
}

// Copyright 2024 Alexandre Mahdhaoui
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package flaterrors joins errors into a single flat error.
//
// Unlike errors.Join, nested joined errors are unwrapped so that the resulting
// error message does not grow an extra level of indentation for every layer
// that wraps it.
package flaterrors

type joinError struct {
	errs []error
}

// Join returns an error wrapping every non-nil error in errs. Errors that are
// themselves joins are flattened. Join returns nil if every value is nil.
func Join(errs ...error) error {
	flat := make([]error, 0, len(errs))
	for _, err := range errs {
		flat = appendFlat(flat, err)
	}

	if len(flat) == 0 {
		return nil
	}

	return &joinError{errs: flat}
}

func appendFlat(out []error, err error) []error {
	if err == nil {
		return out
	}

	if j, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range j.Unwrap() {
			out = appendFlat(out, e)
		}
		return out
	}

	return append(out, err)
}

func (e *joinError) Error() string {
	if len(e.errs) == 1 {
		return e.errs[0].Error()
	}

	b := []byte(e.errs[0].Error())
	for _, err := range e.errs[1:] {
		b = append(b, ": "...)
		b = append(b, err.Error()...)
	}

	return string(b)
}

func (e *joinError) Unwrap() []error {
	return e.errs
}

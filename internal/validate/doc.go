// Package validate checks a user draft against the form rules.
//
// Validate is a pure function: the same draft always yields the same Result,
// and nothing is cached between calls. Field failures never leave this
// package as errors; callers read Result.Valid and the per-field reasons.
//
// Rules:
//   - name: required, non-empty after trim
//   - age: required ("" is no value, not zero), whole number, 1..120
//   - phone: required, international format, see ValidPhone
//   - country: required, any non-empty code
package validate

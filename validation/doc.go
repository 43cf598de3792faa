// Package validation provides input validation used across the
// pipeline: a fluent field Validator producing *errors.AppError, and
// tag-driven struct validation backed by go-playground/validator.
//
// The council uses struct validation as its structural-validity check
// on raw judge output before accepting an evaluation as successful.
package validation

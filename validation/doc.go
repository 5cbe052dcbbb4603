// Package validation validates request bodies and configuration sections.
//
// Struct-tag validation goes through go-playground/validator with field names
// taken from json or mapstructure tags; a "culture" rule checks BCP 47
// identifiers. Validator covers hand-written cross-field checks. Both report
// an INVALID_INPUT AppError listing every failing field.
package validation

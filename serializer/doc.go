// Package serializer provides the process JSON serializer. The naming mode
// decides how exported Go field names without an explicit json tag are
// written on the wire:
//
//	camelcase  FirstName -> firstName
//	lowercase  FirstName -> firstname
//	snakecase  FirstName -> first_name
//
// Each serializer owns a frozen json-iterator configuration, so several modes
// can coexist in one process without touching global state.
package serializer

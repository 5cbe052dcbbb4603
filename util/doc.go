// Package util holds small parsing helpers shared by configuration types.
package util

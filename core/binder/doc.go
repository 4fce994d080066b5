// Package binder decodes HTTP request bodies into Go values.
package binder

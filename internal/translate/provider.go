package translate

import (
	"context"
	"errors"
)

// Script-variant target languages handled by the local conversion tables
// instead of a remote backend.
const (
	LangZhHant = "zh-Hant"
	LangZhHans = "zh-Hans"
)

// ErrMissingTable is returned when a local conversion table is absent. It
// signals a packaging defect, not a transient failure, so callers are expected
// to surface it loudly instead of degrading silently.
var ErrMissingTable = errors.New("translate: conversion table not found")

// Provider converts text between languages. One call, one attempt:
// implementations do not retry and do not cache.
type Provider interface {
	Translate(ctx context.Context, from, to, text string) (string, error)
}

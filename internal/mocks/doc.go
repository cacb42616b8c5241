// Package mocks provides hand-written test doubles for the store and
// service interfaces. Each mock has optional function fields to override
// behavior per test, backed by a default in-memory implementation.
package mocks

// Package id provides unique identifier generation utilities.
//
// This is the canonical source for ID generation across the seedstore
// codebase. Record identifiers are UUID v4 strings; Short produces a
// 16-character hex ID for contexts where brevity matters (test fixtures,
// log correlation).
package id

// Package app is the application layer, the only component that references
// multiple domain components. It orchestrates registration, authentication,
// and the book application lifecycle, and re-verifies the caller's admin
// flag for every admin-only operation independent of the HTTP access gate.
package app

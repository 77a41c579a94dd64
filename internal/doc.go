// Package internal holds helpers shared by the authcore root package that
// must not become part of the public API surface: random code generation and
// identifier minting.
package internal

// Package ports defines the interfaces between the dialogue engine and its
// collaborators: context persistence, template storage, the client book, the
// generative fallback service, and the swappable text-processing concerns.
//
// Each concern is injected at construction time; selecting different behavior
// means selecting a different implementation up front, never mutating the
// engine at runtime.
package ports

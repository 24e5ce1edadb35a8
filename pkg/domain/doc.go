// Package domain contains the core types of the Plume dialogue engine:
// dialogue states, the per-session conversation context, transition rules,
// client records and template descriptors.
//
// The package has no dependencies. Behavior lives in the engine and the
// adapters; domain only defines the vocabulary they share.
package domain

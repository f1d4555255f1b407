// Package domain defines the data model of the pass-code dialog: sessions
// and steps, inbound events, outbound replies, language bundles and the
// completed-dialog record. It is dependency-free by design; behavior lives
// in the engine and in the adapters around it.
package domain

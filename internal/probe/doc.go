// Package probe invokes the multiplexer's JSON identify call and exposes
// typed track records, including the container-delay computation that
// feeds the delay normalizer (C10).
package probe

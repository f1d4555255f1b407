// Package ports declares the interfaces the dialog engine depends on:
// the session store, the external language source and the record sink.
// Adapters implement them; the engine never imports an adapter.
package ports

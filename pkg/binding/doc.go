// Package binding defines the contract between the benchmark harness and
// database bindings. A binding translates the harness's generic key/field
// record model into a target database's data model and reports every data
// operation as a two-valued status code.
//
// Bindings register themselves in the global registry from their package
// init functions; the harness creates one binding instance per worker
// through the registry and drives the capability surface (Init, Cleanup,
// Insert, Read, Update, Delete, Scan) against it.
package binding

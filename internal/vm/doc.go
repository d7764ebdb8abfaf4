// Package vm executes compiled bytecode modules. The Runtime owns a value
// stack and a call frame stack; every loaded module becomes an Import object
// whose globals the running code reads and writes. Imports are resolved
// through a pluggable ModuleLoader and cached, so a module's top-level code
// runs at most once per runtime.
package vm

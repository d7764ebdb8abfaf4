// Package manifest loads the HCL project manifest (lox.hcl): workspace
// members, lint policy, and dependency paths. The manifest extends the
// import search path and configures the compiler's warning levels; when no
// manifest exists, Default supplies the policy for bare scripts.
package manifest

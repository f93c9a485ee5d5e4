// Package wpcore implements the WordPress core provisioning engine:
// version normalization, the remote version catalog, constraint
// resolution, the install decision, and the staged payload replacement.
//
// Everything here is single-threaded and synchronous: the engine runs as
// one step inside a host tool's sequential lifecycle, with one archive to
// fetch and one directory to replace per run.
package wpcore

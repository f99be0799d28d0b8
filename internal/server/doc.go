// Package server runs a content.Service as a daemon: it mounts the configured
// backends, drives Tick from one locked OS thread and serves diagnostics
// over HTTP.
package server

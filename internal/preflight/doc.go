// Package preflight runs the environment checks behind the status command:
// directory permissions for the configured paths and availability of the
// external transcoder.
package preflight

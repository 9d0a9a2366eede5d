// Package util holds small helpers shared by the client, the CLI and the
// mock API.
package util

// Package testsupport provides shared helpers for package tests: temp-dir
// backed configurations and option hooks for overriding individual settings.
package testsupport

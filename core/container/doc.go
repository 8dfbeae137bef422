// Package container keeps named service definitions and builds their
// instances on demand. A definition names the adapter used to construct the
// instance, whether the instance is shared, and the raw options handed to the
// adapter. Shared instances are built once and cached until Close; unshared
// definitions produce a fresh instance on every Get.
package container

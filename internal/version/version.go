// ABOUTME: Build identity constants
// ABOUTME: Referenced in logs and mDNS advertisement
package version

const (
	// Version is the editor release version.
	Version = "0.1.0"

	// Product is the user-visible product name.
	Product = "Cue Point Editor"
)

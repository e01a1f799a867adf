// Package buildinfo exposes values injected at link time:
//
//	go build -ldflags "-X github.com/dmitrijs2005/evento/internal/buildinfo.Version=1.2.0 \
//	  -X github.com/dmitrijs2005/evento/internal/buildinfo.VaultSecret=$EVENTO_VAULT_SECRET"
package buildinfo

import (
	"fmt"
	"io"
)

var (
	Version   = "N/A"
	BuildDate = "N/A"
	Commit    = "N/A"

	// VaultSecret keys the remember-me cookie cipher. It is a build-time
	// value and is never read from user input or runtime configuration.
	// It ships inside the binary and can be recovered from it.
	VaultSecret = "evento-development-vault-secret"
)

// PrintBuildData writes the build banner to w.
func PrintBuildData(w io.Writer) {
	fmt.Fprintf(w, "Build version: %s\n", Version)
	fmt.Fprintf(w, "Build date: %s\n", BuildDate)
	fmt.Fprintf(w, "Build commit: %s\n", Commit)
}

// Package filekit defines the storage abstraction drivers implement and the
// path helpers they share.
//
// A driver registers itself from init and is selected by name:
//
//	import _ "github.com/gobeaver/filekit-wxwork/filekit/driver/wxwork"
//
//	fs, err := filekit.New(filekit.Config{Driver: "wxwork"})
//	err = fs.Upload(ctx, "docs/report.pdf", f, filekit.WithContentType("application/pdf"))
//
// Paths are canonicalized with NormalizePath before use. The root directory
// is the empty string.
package filekit

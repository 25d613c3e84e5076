// Package wxwork is a filekit driver that keeps file content in the WeCom
// temporary media store and simulates a directory tree in a key/value cache.
//
// The media API only knows opaque media ids, so every path is mapped to a
// cached Record holding the id and the file's metadata. Writing a file also
// writes a directory record for each of its ancestors, which is what makes
// listings and existence checks on intermediate directories work. Records of
// files expire after three days by default, matching the lifetime of
// temporary media on the platform; directory records never expire.
//
// Known limitations:
//   - Deleting a file leaves its now empty parent directories in place.
//   - DeleteDir, Rename and Copy act on a single record and never recurse.
//   - Exists trusts the cache and does not ask the platform.
//   - Content is never deleted remotely.
//
// Usage:
//
//	store, _ := kvstore.New(kvstore.Config{Driver: "redis", URL: "redis://localhost:6379/0"})
//	fs, _ := wxwork.New(store, wxwork.ConnectionProfile("sales"))
//
//	rec, err := fs.Write(ctx, "docs/report.pdf", f)
//	fmt.Println(rec.MediaID)
package wxwork

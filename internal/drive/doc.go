// Package drive is a thin shim over the Google Drive API: search, metadata,
// and upload. Token lifecycle lives in the auth package.
package drive

// Package fetch retrieves component library assets from a remote source and
// classifies failures.
//
// A Source resolves an Asset to a location under its base and returns the
// raw content. Failures are reported as *Error with a Kind:
//
//   - KindNotFound: the asset does not exist (HTTP 404, S3 NoSuchKey)
//   - KindRateLimited: the host refused because the caller's quota is spent
//   - KindNetwork: transport failure, timeout, or a truncated body
//   - KindUnexpectedStatus: any other non-200 response
//
// Nothing is retried. Callers decide whether a failure is fatal.
//
// # Sources
//
//	https://host/path  HTTPSource  GET <base>/<kind>/<name>.<ext>
//	s3://bucket/prefix S3Source    GetObject <prefix>/<kind>/<name>.<ext>
//	file:///dir        DirSource   read <dir>/<kind>/<name>.<ext>
package fetch

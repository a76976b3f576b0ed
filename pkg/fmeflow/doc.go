// Package fmeflow is an HTTP client for the REST v3 API of an FME Flow style
// processing server. Client implements workspace.Client for repository
// listings and parameter lookups; Submitter uploads attachments to the
// temporary shared resource and posts job or schedule requests built from
// form payloads.
package fmeflow

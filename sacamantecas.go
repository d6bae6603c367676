// Package sacamantecas retrieves library catalogue pages describing books
// and extracts bibliographic metadata from them as ordered key/value
// records. Which URIs are handled, and how metadata is recognized inside
// their markup, is driven entirely by profiles loaded from an INI file.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., ini/, goquery/, sqlite/).
package sacamantecas

// Version is the application version, reported by the CLI and embedded in
// the retriever's User-Agent.
const Version = "1.0.0"

// Repository is the canonical home of the application, advertised in the
// retriever's User-Agent so catalogue operators can identify the traffic.
const Repository = "https://github.com/DervishD/sacamantecas"

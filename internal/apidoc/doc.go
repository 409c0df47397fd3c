// Package apidoc converts extracted XML into structured-text fragments,
// removes fragments already documented by the core component and writes one
// module index per component.
//
// Fragments are compared by file name only. The extraction tool derives file
// names from fully qualified symbol names, so equal names denote the same
// symbol; content is never compared.
package apidoc

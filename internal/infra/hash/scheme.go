// Package hash provides the concrete credential hashing strategies behind
// the service.CredentialHasher contract.
package hash

import (
	"regexp"
	"strings"

	"ftpadmin/internal/errors"
)

// SchemeKind enumerates the recognized hashing strategies. The
// passwd_encryption config string is parsed once into a Scheme; all
// dispatch afterwards is an exhaustive switch over the kind.
type SchemeKind int

const (
	// SchemePBKDF2 derives the credential locally with PBKDF2-SHA1.
	SchemePBKDF2 SchemeKind = iota
	// SchemeCrypt produces a traditional unix crypt(3)-compatible hash.
	SchemeCrypt
	// SchemeDigest delegates to a database-side digest function and wraps
	// the result in a "{digest}base64" marker the FTP daemon recognizes.
	SchemeDigest
	// SchemeFunction applies a named database-side one-argument hash
	// function directly to the plaintext.
	SchemeFunction
)

// Scheme is the parsed form of the passwd_encryption option.
type Scheme struct {
	Kind SchemeKind

	// Digest is the digest algorithm name for SchemeDigest (e.g. "sha256").
	Digest string

	// Function is the database function name for SchemeFunction.
	Function string
}

const opensslPrefix = "OpenSSL:"

// functionNamePattern bounds what may be interpolated into SQL. Digest and
// function names come from configuration, not user input, but they still
// end up inside a query fragment.
var functionNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ParseScheme parses a passwd_encryption configuration string.
// Recognized forms: "pbkdf2", "crypt", "OpenSSL:<digest>", and any other
// bare identifier, which is taken as the name of a database-side hash
// function.
func ParseScheme(raw string) (Scheme, error) {
	switch {
	case raw == "pbkdf2":
		return Scheme{Kind: SchemePBKDF2}, nil

	case raw == "crypt":
		return Scheme{Kind: SchemeCrypt}, nil

	case strings.HasPrefix(raw, opensslPrefix):
		digest := strings.ToLower(raw[len(opensslPrefix):])
		if !functionNamePattern.MatchString(digest) {
			return Scheme{}, errors.Errorf("invalid digest name in passwd_encryption: %q", raw)
		}

		return Scheme{Kind: SchemeDigest, Digest: digest}, nil

	case functionNamePattern.MatchString(raw):
		return Scheme{Kind: SchemeFunction, Function: raw}, nil

	default:
		return Scheme{}, errors.Errorf("unsupported passwd_encryption: %q", raw)
	}
}

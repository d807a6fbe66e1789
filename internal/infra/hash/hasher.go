package hash

import (
	"crypto/sha1"
	"encoding/hex"

	"ftpadmin/config"
	"ftpadmin/internal/domain/service"
	"ftpadmin/internal/errors"

	"github.com/GehirnInc/crypt"
	_ "github.com/GehirnInc/crypt/md5_crypt"
	"golang.org/x/crypto/pbkdf2"
)

// PBKDF2 parameters matching the credential format the FTP daemon was
// deployed with. The salt is the login name: weak, since equal passwords
// under equal logins collide, but the daemon-side verifier depends on it.
const (
	pbkdf2Iterations = 5000
	pbkdf2KeyBytes   = 20 // hex-encodes to the 40-character stored form
)

// credentialHasher implements service.CredentialHasher for one parsed scheme.
type credentialHasher struct {
	scheme Scheme
}

// New parses the configured passwd_encryption string and returns the
// matching hasher.
func New(cfg *config.Config) (service.CredentialHasher, error) {
	scheme, err := ParseScheme(cfg.Provisioning.PasswdEncryption)
	if err != nil {
		return nil, err
	}

	return &credentialHasher{scheme: scheme}, nil
}

// NewWithScheme builds a hasher for an already-parsed scheme.
func NewWithScheme(scheme Scheme) service.CredentialHasher {
	return &credentialHasher{scheme: scheme}
}

// Hash produces the storable credential for plaintext under the configured
// scheme. Locally computed schemes return a literal value; database-side
// schemes return a SQL expression the repository embeds unescaped.
func (h *credentialHasher) Hash(plaintext, login string) (service.Credential, error) {
	switch h.scheme.Kind {
	case SchemePBKDF2:
		key := pbkdf2.Key([]byte(plaintext), []byte(login), pbkdf2Iterations, pbkdf2KeyBytes, sha1.New)

		return service.LiteralCredential(hex.EncodeToString(key)), nil

	case SchemeCrypt:
		crypter := crypt.MD5.New()
		hashed, err := crypter.Generate([]byte(plaintext), nil)
		if err != nil {
			return service.Credential{}, errors.Wrap(err, "crypt hashing failed")
		}

		return service.LiteralCredential(hashed), nil

	case SchemeDigest:
		// pgcrypto: digest(data, type). The "{<digest>}" marker tells the
		// daemon which scheme produced the stored value.
		expr := "'{" + h.scheme.Digest + "}' || encode(digest(?, ?), 'base64')"

		return service.ExpressionCredential(expr, plaintext, h.scheme.Digest), nil

	case SchemeFunction:
		return service.ExpressionCredential(h.scheme.Function+"(?)", plaintext), nil

	default:
		return service.Credential{}, errors.Errorf("unknown hashing scheme kind: %d", h.scheme.Kind)
	}
}

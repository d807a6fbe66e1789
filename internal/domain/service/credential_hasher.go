// Package service defines interfaces for core, stateless domain logic.
// These services encapsulate business rules that don't naturally fit within a single entity.
package service

// Credential is the storable result of hashing a plaintext password. It is
// either a literal value the repository binds as ordinary escaped data, or
// a SQL expression the storage engine evaluates itself (schemes delegating
// to database-side digest functions). The distinction is part of the
// hasher contract: it decides whether the repository treats the credential
// as data or as a pass-through expression.
type Credential struct {
	value string
	expr  string
	args  []any
}

// LiteralCredential wraps a ready-to-store hash value.
func LiteralCredential(value string) Credential {
	return Credential{value: value}
}

// ExpressionCredential wraps a SQL fragment with bind parameters that the
// storage layer must embed unescaped into the write.
func ExpressionCredential(expr string, args ...any) Credential {
	return Credential{expr: expr, args: args}
}

// IsExpression reports whether the credential must be computed by the
// storage engine.
func (c Credential) IsExpression() bool {
	return c.expr != ""
}

// Value returns the literal hash. Only meaningful when IsExpression is false.
func (c Credential) Value() string {
	return c.value
}

// Expression returns the SQL fragment and its bind parameters. Only
// meaningful when IsExpression is true.
func (c Credential) Expression() (string, []any) {
	return c.expr, c.args
}

// CredentialHasher turns a plaintext password into a storable credential
// under the configured hashing scheme. The login name is part of the
// contract because one legacy scheme derives its salt from it.
type CredentialHasher interface {
	Hash(plaintext, login string) (Credential, error)
}

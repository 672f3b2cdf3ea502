// Package secret resolves secret references in textops configuration.
//
// Config values such as the Redis password or the JWT signing key may name
// a secret instead of carrying it:
//
//	secretref:env:TEXTOPS_REDIS_PASSWORD
//	secretref:file:/run/secrets/jwt_key
//	Bearer secretref:env:TOKEN
//
// Values are first expanded with ExpandEnvStrict, then any reference is
// handed to the Provider registered under its name. EnvProvider and
// FileProvider are built in.
package secret

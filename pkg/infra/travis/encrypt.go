package travis

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
)

// EncryptSecureVar encrypts a NAME=value pair with the repository's public
// key for use as a `secure:` entry in .travis.yml.
func EncryptSecureVar(key *rsa.PublicKey, name, value string) (string, error) {
	plaintext := fmt.Sprintf("%s=%s", name, value)
	ciphertext, err := rsa.EncryptPKCS1v15(rand.Reader, key, []byte(plaintext))
	if err != nil {
		return "", goerr.Wrap(err, "failed to encrypt secure variable", goerr.V("name", name))
	}
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

package resolver

import (
	"bytes"
	"errors"
	"fmt"

	"go.mozilla.org/pkcs7"
)

// pkcs7Magic is the byte sequence this engine looks for
// to locate an embedded PKCS#7 Authenticode signature blob within a
// mapped PE image, mirroring saferwall/pe's certificate-table parsing
// (IMAGE_DIRECTORY_ENTRY_SECURITY) without reproducing its full PE
// parser, which is out of scope here (assembly loading is
// delegated to an external metadata reader).
var pkcs7Magic = []byte{0x30, 0x80} // indefinite-length SEQUENCE, as emitted by signtool

// verifySignature looks for a PKCS#7 signedData blob trailing the
// image and verifies it. Verification failure or absence of a
// signature is never fatal — it is documented as
// advisory, since the engine has no trust/sandboxing model to enforce
// against an unsigned or invalid assembly.
func verifySignature(image []byte) error {
	idx := bytes.Index(image, pkcs7Magic)
	if idx < 0 {
		return errors.New("resolver: no embedded signature found")
	}
	p7, err := pkcs7.Parse(image[idx:])
	if err != nil {
		return fmt.Errorf("resolver: parsing signature: %w", err)
	}
	if err := p7.Verify(); err != nil {
		return fmt.Errorf("resolver: signature verification failed: %w", err)
	}
	return nil
}

package middleware

import (
	"crypto/cipher"
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"

	appcrypto "github.com/Lamdon-co/Backend/internal/crypto"
)

// HeaderAPIKey is the boundary credential header every /v1 route requires.
const HeaderAPIKey = "x-api-key"

// APIKey validates the x-api-key header. Both the presented key and the
// configured reference are ciphertexts; the comparison happens on the
// decrypted values, so two independently minted keys for the same secret
// both pass even though their ciphertexts differ.
func APIKey(aead cipher.AEAD, referenceCiphertext string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		presented := c.Get(HeaderAPIKey)
		if presented == "" {
			return errorJSON(c, fiber.StatusUnauthorized, "Authorization failed: no API key provided")
		}

		got, err := appcrypto.DecryptString(aead, presented)
		if err != nil {
			return errorJSON(c, fiber.StatusUnauthorized, "Authorization failed: invalid API key")
		}
		want, err := appcrypto.DecryptString(aead, referenceCiphertext)
		if err != nil {
			return errorJSON(c, fiber.StatusUnauthorized, "Authorization failed: invalid API key")
		}
		if subtle.ConstantTimeCompare([]byte(got), []byte(want)) != 1 {
			return errorJSON(c, fiber.StatusUnauthorized, "Authorization failed: invalid API key")
		}
		return c.Next()
	}
}

// Package encryption seals short secrets, such as a stored session token,
// with an AEAD cipher keyed from a passphrase.
//
// Sealed values are text: the algorithm name, a colon, then base64 of the
// nonce followed by the ciphertext. Each value is bound to a context string,
// so a value copied under another key does not open.
//
//	enc, err := encryption.New(passphrase, encryption.WithAlgorithm(encryption.AlgorithmChaCha20))
//	sealed, err := enc.Encrypt(token, "auth_token")
//	token, err = enc.Decrypt(sealed, "auth_token")
package encryption

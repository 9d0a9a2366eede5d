// Package session persists the signed-in state of the bookstore client.
//
// A Store is a string key-value capability. The API client reads the bearer
// token from KeyAuthToken; login and register write KeyAuthToken and KeyUser;
// logout deletes both. Three backends are provided: MemoryStore for tests and
// single-process use, FileStore for the CLI, and RedisStore for shared
// deployments. Setting an encryption key wraps the file and redis backends in
// an EncryptedStore.
package session

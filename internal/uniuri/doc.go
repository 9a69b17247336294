// Package uniuri generates random strings from crypto/rand for generated
// credentials such as the bootstrap super admin password.
package uniuri

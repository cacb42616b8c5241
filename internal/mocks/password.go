package mocks

import "errors"

// ErrPasswordMismatch is returned by MockPasswordVerifier when the
// plaintext does not match the stored hash.
var ErrPasswordMismatch = errors.New("password does not match")

// MockPasswordHasher implements auth.PasswordHasher for testing. The
// default implementation prefixes the plaintext so tests can assert on
// the stored value without running bcrypt.
type MockPasswordHasher struct {
	HashFn    func(password string) (string, error)
	HashError error
}

// Hash implements the PasswordHasher interface.
func (m *MockPasswordHasher) Hash(password string) (string, error) {
	if m.HashFn != nil {
		return m.HashFn(password)
	}
	if m.HashError != nil {
		return "", m.HashError
	}
	return "hashed:" + password, nil
}

// MockPasswordVerifier implements auth.PasswordVerifier for testing. Its
// default implementation accepts hashes produced by MockPasswordHasher.
type MockPasswordVerifier struct {
	CompareFn func(hashedPassword, password string) error
}

// Compare implements the PasswordVerifier interface.
func (m *MockPasswordVerifier) Compare(hashedPassword, password string) error {
	if m.CompareFn != nil {
		return m.CompareFn(hashedPassword, password)
	}
	if hashedPassword != "hashed:"+password {
		return ErrPasswordMismatch
	}
	return nil
}

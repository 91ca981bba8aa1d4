package webservice

import "testing"

func TestTokenRoundTrip(t *testing.T) {
	s := &Service{jwtSecret: []byte("test-secret")}
	token, err := s.generateToken("viewer")
	if err != nil {
		t.Fatal(err)
	}
	if !s.validateToken(token) {
		t.Error("freshly issued token rejected")
	}
}

func TestTokenWrongSecret(t *testing.T) {
	issuer := &Service{jwtSecret: []byte("secret-a")}
	verifier := &Service{jwtSecret: []byte("secret-b")}
	token, err := issuer.generateToken("viewer")
	if err != nil {
		t.Fatal(err)
	}
	if verifier.validateToken(token) {
		t.Error("token signed with another secret accepted")
	}
}

func TestTokenGarbage(t *testing.T) {
	s := &Service{jwtSecret: []byte("test-secret")}
	if s.validateToken("not.a.jwt") {
		t.Error("garbage token accepted")
	}
}

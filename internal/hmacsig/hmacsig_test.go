package hmacsig

import "testing"

const secret = "test-secret"

func TestVerify_CorrectSignature(t *testing.T) {
	body := []byte(`{"app_name":"demo"}`)
	header := Prefix + Sign(secret, body)
	if !Verify(secret, body, header) {
		t.Fatal("valid signature rejected")
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	body := []byte(`{"app_name":"demo"}`)
	header := Prefix + Sign("other-secret", body)
	if Verify(secret, body, header) {
		t.Fatal("signature under wrong secret accepted")
	}
}

func TestVerify_TamperedBody(t *testing.T) {
	header := Prefix + Sign(secret, []byte(`{"a":1}`))
	if Verify(secret, []byte(`{"a":2}`), header) {
		t.Fatal("tampered body accepted")
	}
}

func TestVerify_MissingOrMalformedHeader(t *testing.T) {
	body := []byte("x")
	cases := []string{
		"",
		"deadbeef",                  // no prefix
		"sha256=",                   // empty digest
		"sha256=nothex",             // not hex
		"sha1=" + Sign(secret, body), // wrong algorithm tag
	}
	for _, header := range cases {
		if Verify(secret, body, header) {
			t.Errorf("header %q accepted", header)
		}
	}
}

func TestVerify_EmptySecretNeverVerifies(t *testing.T) {
	body := []byte("x")
	header := Prefix + Sign("", body)
	if Verify("", body, header) {
		t.Fatal("empty secret must always fail verification")
	}
}

func TestVerifyRead(t *testing.T) {
	header := Prefix + Sign(secret, []byte(ReadPayload))
	if !VerifyRead(secret, header) {
		t.Fatal("valid read signature rejected")
	}
	if VerifyRead(secret, Prefix+Sign(secret, []byte("write"))) {
		t.Fatal("signature over wrong payload accepted")
	}
}

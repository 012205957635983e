package integration

import (
	"fmt"
	"strconv"
	"time"

	"github.com/cucumber/godog"
	"github.com/golang-jwt/jwt/v5"

	"github.com/code4-fun/password-storage-Laravel-Vue3/pkg/authn"
)

func registerTokenSteps(s *StepsContext, sc *godog.ScenarioContext) {
	sc.Step(`^I use no token$`, s.iUseNoToken)
	sc.Step(`^I use an expired token for "([^"]*)"$`, s.iUseAnExpiredTokenFor)
	sc.Step(`^I use a token for "([^"]*)" signed with another secret$`, s.iUseATokenSignedWithAnotherSecret)
	sc.Step(`^I use the token "([^"]*)"$`, s.iUseTheToken)
}

func (s *StepsContext) iUseNoToken() error {
	s.authToken = ""
	return nil
}

func (s *StepsContext) iUseTheToken(token string) error {
	s.authToken = token
	return nil
}

func (s *StepsContext) signFor(name string, secret []byte, expiresAt time.Time) (string, error) {
	acc, ok := s.accounts[name]
	if !ok {
		return "", fmt.Errorf("unknown user %q", name)
	}

	claims := authn.Claims{
		Name: name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(acc.id), 10),
			IssuedAt:  jwt.NewNumericDate(expiresAt.Add(-time.Hour)),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func (s *StepsContext) iUseAnExpiredTokenFor(name string) error {
	token, err := s.signFor(name, s.tc.TokenSecret, time.Now().Add(-time.Minute))
	if err != nil {
		return err
	}
	s.authToken = token
	return nil
}

func (s *StepsContext) iUseATokenSignedWithAnotherSecret(name string) error {
	other := []byte("some-other-secret-that-is-long-enough-000")
	token, err := s.signFor(name, other, time.Now().Add(time.Hour))
	if err != nil {
		return err
	}
	s.authToken = token
	return nil
}

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/cucumber/godog"

	"github.com/code4-fun/password-storage-Laravel-Vue3/pkg/authn"
	"github.com/code4-fun/password-storage-Laravel-Vue3/pkg/model"
	gormstore "github.com/code4-fun/password-storage-Laravel-Vue3/pkg/server/store/gorm"
)

const testPassword = "correct-horse-battery"

type account struct {
	id    uint
	token string
}

// StepsContext holds state shared between step definitions
type StepsContext struct {
	tc           *TestContext
	response     *http.Response
	responseBody []byte
	accounts     map[string]*account
	current      string
	groups       map[string]uint
	passwords    map[string]uint
	authToken    string
}

// NewStepsContext creates a new steps context
func NewStepsContext(tc *TestContext) *StepsContext {
	return &StepsContext{
		tc:        tc,
		accounts:  make(map[string]*account),
		groups:    make(map[string]uint),
		passwords: make(map[string]uint),
	}
}

// RegisterSteps registers all step definitions
func (s *StepsContext) RegisterSteps(sc *godog.ScenarioContext) {
	sc.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		return ctx, s.tc.Reset()
	})

	// Background steps
	sc.Step(`^a pwstore server is running$`, s.aPwstoreServerIsRunning)
	sc.Step(`^a user "([^"]*)" is registered$`, s.aUserIsRegistered)
	sc.Step(`^an admin "([^"]*)" exists$`, s.anAdminExists)
	sc.Step(`^I am "([^"]*)"$`, s.iAm)

	// Authentication steps
	sc.Step(`^I register as "([^"]*)" with email "([^"]*)"$`, s.iRegisterAs)
	sc.Step(`^I log in as "([^"]*)" with password "([^"]*)"$`, s.iLogInAs)

	// Response steps
	sc.Step(`^the response status should be (\d+)$`, s.theResponseStatusShouldBe)
	sc.Step(`^the response should contain "([^"]*)"$`, s.theResponseShouldContain)
	sc.Step(`^I should receive a bearer token$`, s.iShouldReceiveABearerToken)

	// Group steps
	sc.Step(`^I create the group "([^"]*)"$`, s.iCreateTheGroup)
	sc.Step(`^I rename the group "([^"]*)" to "([^"]*)"$`, s.iRenameTheGroup)
	sc.Step(`^I delete the group "([^"]*)"$`, s.iDeleteTheGroup)

	// Password steps
	sc.Step(`^I create the password "([^"]*)"$`, s.iCreateThePassword)
	sc.Step(`^I create the password "([^"]*)" in group "([^"]*)" shared with "([^"]*)"$`, s.iCreateThePasswordInGroupSharedWith)
	sc.Step(`^I fetch the password "([^"]*)"$`, s.iFetchThePassword)
	sc.Step(`^I rename the password "([^"]*)" to "([^"]*)"$`, s.iRenameThePassword)
	sc.Step(`^I delete the password "([^"]*)"$`, s.iDeleteThePassword)
	sc.Step(`^I move the password "([^"]*)" from group "([^"]*)"$`, s.iMoveThePasswordOutOfGroup)
	sc.Step(`^I set "([^"]*)" permitted to (true|false) on "([^"]*)"$`, s.iSetPermitted)

	// Listing steps
	sc.Step(`^I list my passwords$`, s.iListMyPasswords)
	sc.Step(`^the listing should show "([^"]*)" in group "([^"]*)"$`, s.theListingShouldShowInGroup)
	sc.Step(`^the listing should show "([^"]*)" without a group$`, s.theListingShouldShowWithoutGroup)
	sc.Step(`^the listing should not show "([^"]*)"$`, s.theListingShouldNotShow)
	sc.Step(`^the admin listing should show "([^"]*)" with (\d+) users?$`, s.theAdminListingShouldShowWithUsers)

	registerTokenSteps(s, sc)
}

// Request helpers

func (s *StepsContext) do(method, path string, body interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, s.tc.ServerURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+s.authToken)
	}

	s.response, err = s.tc.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	s.responseBody, err = io.ReadAll(s.response.Body)
	_ = s.response.Body.Close()
	return err
}

func (s *StepsContext) expectStatus(codes ...int) error {
	for _, code := range codes {
		if s.response.StatusCode == code {
			return nil
		}
	}
	return fmt.Errorf("unexpected status %d: %s", s.response.StatusCode, string(s.responseBody))
}

func (s *StepsContext) dataID() (uint, error) {
	var resp struct {
		Data struct {
			ID uint `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(s.responseBody, &resp); err != nil {
		return 0, err
	}
	return resp.Data.ID, nil
}

func (s *StepsContext) passwordID(name string) (uint, error) {
	id, ok := s.passwords[name]
	if !ok {
		return 0, fmt.Errorf("unknown password %q", name)
	}
	return id, nil
}

func (s *StepsContext) groupID(name string) (uint, error) {
	id, ok := s.groups[name]
	if !ok {
		return 0, fmt.Errorf("unknown group %q", name)
	}
	return id, nil
}

// Background steps

func (s *StepsContext) aPwstoreServerIsRunning() error {
	// Server is already running via TestContext
	return nil
}

func (s *StepsContext) aUserIsRegistered(name string) error {
	if err := s.iRegisterAs(name, name+"@example.com"); err != nil {
		return err
	}
	return s.expectStatus(http.StatusCreated)
}

func (s *StepsContext) anAdminExists(name string) error {
	users := gormstore.NewUsersStore(s.tc.DB)
	_, err := authn.NewAuthenticator(users).Register(context.Background(), authn.Registration{
		Name:     name,
		Email:    name + "@example.com",
		Password: testPassword,
		Role:     model.RoleAdmin,
	})
	if err != nil {
		return err
	}
	if err := s.iLogInAs(name, testPassword); err != nil {
		return err
	}
	return s.expectStatus(http.StatusOK)
}

func (s *StepsContext) iAm(name string) error {
	acc, ok := s.accounts[name]
	if !ok {
		return fmt.Errorf("unknown user %q", name)
	}
	s.current = name
	s.authToken = acc.token
	return nil
}

// Authentication steps

func (s *StepsContext) rememberToken(name string) error {
	var resp struct {
		Data struct {
			Token string `json:"token"`
			User  struct {
				ID uint `json:"id"`
			} `json:"user"`
		} `json:"data"`
	}
	if err := json.Unmarshal(s.responseBody, &resp); err != nil {
		return err
	}
	s.accounts[name] = &account{id: resp.Data.User.ID, token: resp.Data.Token}
	return nil
}

func (s *StepsContext) iRegisterAs(name, email string) error {
	s.authToken = ""
	err := s.do("POST", "/auth/register", map[string]string{
		"name":                  name,
		"email":                 email,
		"password":              testPassword,
		"password_confirmation": testPassword,
	})
	if err != nil {
		return err
	}
	if s.response.StatusCode == http.StatusCreated {
		return s.rememberToken(name)
	}
	return nil
}

func (s *StepsContext) iLogInAs(name, password string) error {
	s.authToken = ""
	err := s.do("POST", "/auth/login", map[string]string{
		"email":    name + "@example.com",
		"password": password,
	})
	if err != nil {
		return err
	}
	if s.response.StatusCode == http.StatusOK {
		return s.rememberToken(name)
	}
	return nil
}

// Response steps

func (s *StepsContext) theResponseStatusShouldBe(code int) error {
	return s.expectStatus(code)
}

func (s *StepsContext) theResponseShouldContain(text string) error {
	if !strings.Contains(string(s.responseBody), text) {
		return fmt.Errorf("response %q does not contain %q", string(s.responseBody), text)
	}
	return nil
}

func (s *StepsContext) iShouldReceiveABearerToken() error {
	var resp struct {
		Data struct {
			Token     string `json:"token"`
			TokenType string `json:"token_type"`
		} `json:"data"`
	}
	if err := json.Unmarshal(s.responseBody, &resp); err != nil {
		return err
	}
	if resp.Data.Token == "" || resp.Data.TokenType != "Bearer" {
		return fmt.Errorf("no bearer token in %s", string(s.responseBody))
	}
	return nil
}

// Group steps

func (s *StepsContext) iCreateTheGroup(name string) error {
	if err := s.do("POST", "/api/v1/groups", map[string]string{"name": name}); err != nil {
		return err
	}
	if err := s.expectStatus(http.StatusCreated); err != nil {
		return err
	}
	id, err := s.dataID()
	if err != nil {
		return err
	}
	s.groups[name] = id
	return nil
}

func (s *StepsContext) iRenameTheGroup(name, newName string) error {
	id, err := s.groupID(name)
	if err != nil {
		return err
	}
	if err := s.do("PUT", fmt.Sprintf("/api/v1/groups/%d", id), map[string]string{"name": newName}); err != nil {
		return err
	}
	if s.response.StatusCode == http.StatusOK {
		s.groups[newName] = id
	}
	return nil
}

func (s *StepsContext) iDeleteTheGroup(name string) error {
	id, err := s.groupID(name)
	if err != nil {
		return err
	}
	return s.do("DELETE", fmt.Sprintf("/api/v1/groups/%d", id), nil)
}

// Password steps

func (s *StepsContext) createPassword(name string, body map[string]interface{}) error {
	body["name"] = name
	body["password"] = "secret-" + name
	body["description"] = name + " login"
	if err := s.do("POST", "/api/v1/passwords", body); err != nil {
		return err
	}
	if s.response.StatusCode != http.StatusCreated {
		return nil
	}
	id, err := s.dataID()
	if err != nil {
		return err
	}
	s.passwords[name] = id
	return nil
}

func (s *StepsContext) iCreateThePassword(name string) error {
	return s.createPassword(name, map[string]interface{}{})
}

func (s *StepsContext) iCreateThePasswordInGroupSharedWith(name, group, users string) error {
	gid, err := s.groupID(group)
	if err != nil {
		return err
	}

	allowed := []uint{}
	for _, u := range strings.Split(users, ",") {
		acc, ok := s.accounts[strings.TrimSpace(u)]
		if !ok {
			return fmt.Errorf("unknown user %q", u)
		}
		allowed = append(allowed, acc.id)
	}

	return s.createPassword(name, map[string]interface{}{
		"toGroupId":    gid,
		"allowedUsers": allowed,
	})
}

func (s *StepsContext) iFetchThePassword(name string) error {
	id, err := s.passwordID(name)
	if err != nil {
		return err
	}
	return s.do("GET", fmt.Sprintf("/api/v1/passwords/%d", id), nil)
}

func (s *StepsContext) iRenameThePassword(name, newName string) error {
	id, err := s.passwordID(name)
	if err != nil {
		return err
	}
	return s.do("PUT", fmt.Sprintf("/api/v1/passwords/%d", id), map[string]interface{}{
		"name":      newName,
		"toGroupId": -1,
	})
}

func (s *StepsContext) iDeleteThePassword(name string) error {
	id, err := s.passwordID(name)
	if err != nil {
		return err
	}
	return s.do("DELETE", fmt.Sprintf("/api/v1/passwords/%d", id), nil)
}

func (s *StepsContext) iMoveThePasswordOutOfGroup(name, group string) error {
	pid, err := s.passwordID(name)
	if err != nil {
		return err
	}
	gid, err := s.groupID(group)
	if err != nil {
		return err
	}
	return s.do("PATCH", "/api/v1/passwords/groups", map[string]interface{}{
		"password_id":   pid,
		"from_group_id": gid,
	})
}

func (s *StepsContext) iSetPermitted(user, permitted, name string) error {
	pid, err := s.passwordID(name)
	if err != nil {
		return err
	}
	acc, ok := s.accounts[user]
	if !ok {
		return fmt.Errorf("unknown user %q", user)
	}
	return s.do("PATCH", fmt.Sprintf("/api/v1/passwords/%d/users/%d", pid, acc.id), map[string]bool{
		"permitted": permitted == "true",
	})
}

// Listing steps

type listing struct {
	Data struct {
		Groups []struct {
			Name      string `json:"name"`
			Passwords []struct {
				Name string `json:"name"`
			} `json:"passwords"`
		} `json:"groups"`
		Passwords []struct {
			Name  string `json:"name"`
			Users []struct {
				ID uint `json:"id"`
			} `json:"users"`
		} `json:"passwords"`
	} `json:"data"`
}

func (s *StepsContext) iListMyPasswords() error {
	if err := s.do("GET", "/api/v1/passwords", nil); err != nil {
		return err
	}
	return s.expectStatus(http.StatusOK)
}

func (s *StepsContext) parseListing() (*listing, error) {
	var l listing
	if err := json.Unmarshal(s.responseBody, &l); err != nil {
		return nil, err
	}
	return &l, nil
}

func (s *StepsContext) theListingShouldShowInGroup(name, group string) error {
	l, err := s.parseListing()
	if err != nil {
		return err
	}
	for _, g := range l.Data.Groups {
		if g.Name != group {
			continue
		}
		for _, p := range g.Passwords {
			if p.Name == name {
				return nil
			}
		}
	}
	return fmt.Errorf("%q not listed in group %q: %s", name, group, string(s.responseBody))
}

func (s *StepsContext) theListingShouldShowWithoutGroup(name string) error {
	l, err := s.parseListing()
	if err != nil {
		return err
	}
	for _, p := range l.Data.Passwords {
		if p.Name == name {
			return nil
		}
	}
	return fmt.Errorf("%q not listed without a group: %s", name, string(s.responseBody))
}

func (s *StepsContext) theListingShouldNotShow(name string) error {
	l, err := s.parseListing()
	if err != nil {
		return err
	}
	for _, p := range l.Data.Passwords {
		if p.Name == name {
			return fmt.Errorf("%q is listed: %s", name, string(s.responseBody))
		}
	}
	for _, g := range l.Data.Groups {
		for _, p := range g.Passwords {
			if p.Name == name {
				return fmt.Errorf("%q is listed in group %q", name, g.Name)
			}
		}
	}
	return nil
}

func (s *StepsContext) theAdminListingShouldShowWithUsers(name string, users int) error {
	l, err := s.parseListing()
	if err != nil {
		return err
	}
	for _, p := range l.Data.Passwords {
		if p.Name == name {
			if len(p.Users) != users {
				return fmt.Errorf("%q has %d users, want %d", name, len(p.Users), users)
			}
			return nil
		}
	}
	return fmt.Errorf("%q not in admin listing: %s", name, string(s.responseBody))
}

package secrets

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	// “Service” groups this app’s secrets in the OS keychain.
	KeyringService = "sourcing-advisor"
)

// GetRuleStoreToken reads the team's rule-store API token from the keychain.
func GetRuleStoreToken(account string) (string, error) {
	if strings.TrimSpace(account) == "" {
		return "", errors.New("keyring account name is empty")
	}
	tok, err := keyring.Get(KeyringService, account)
	if err != nil || strings.TrimSpace(tok) == "" {
		return "", errors.New("rule-store token not found (set it in the keychain)")
	}
	return tok, nil
}

func SetRuleStoreToken(account, token string) error {
	if strings.TrimSpace(account) == "" {
		return errors.New("keyring account name is empty")
	}
	if strings.TrimSpace(token) == "" {
		return errors.New("token is empty")
	}
	return keyring.Set(KeyringService, account, token)
}

func DeleteRuleStoreToken(account string) error {
	if strings.TrimSpace(account) == "" {
		return errors.New("keyring account name is empty")
	}
	return keyring.Delete(KeyringService, account)
}

// RuleStoreAccount derives the keychain account name for a team.
func RuleStoreAccount(team string) string {
	return fmt.Sprintf("sourcing-advisor:rulestore:%s", team)
}

package host

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

const (
	firstRegularUID = 1000
	nobodyUID       = 65534
)

var placeholderHomes = map[string]struct{}{
	"":             {},
	"/":            {},
	"/nonexistent": {},
	"/dev/null":    {},
}

type passwdAccounts struct {
	sh *shell
}

func (a *passwdAccounts) LoginAccounts(ctx context.Context) ([]Account, error) {
	output, err := a.sh.run(ctx, "getent passwd")
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return parsePasswd(output)
}

// parsePasswd returns root and the regular users from passwd(5) content.
func parsePasswd(output string) ([]Account, error) {
	var root *Account
	var users []Account
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, ":")
		if len(fields) < 7 {
			return nil, fmt.Errorf("unexpected passwd entry: %s", line)
		}
		uid, err := strconv.Atoi(fields[2])
		if err != nil {
			return nil, fmt.Errorf("unexpected uid in passwd entry: %s", line)
		}
		account := Account{Name: fields[0], UID: uid, Home: fields[5]}
		if _, ok := placeholderHomes[account.Home]; ok {
			continue
		}
		switch {
		case uid == 0 && root == nil:
			root = &account
		case uid >= firstRegularUID && uid != nobodyUID:
			users = append(users, account)
		}
	}

	accounts := make([]Account, 0, len(users)+1)
	if root != nil {
		accounts = append(accounts, *root)
	}
	return append(accounts, users...), nil
}

package session

import (
	"strings"

	"restaurant-system/internal/common/config"
	"restaurant-system/internal/domain"
)

type account struct {
	password string
	identity domain.Identity
}

// Directory resolves sign-in credentials to identities. It is trusted input
// for the floor terminal, not an access-control layer.
type Directory struct {
	accounts map[string]account
	order    []string
}

func NewDirectory(accounts []config.Account) (*Directory, error) {
	d := &Directory{accounts: map[string]account{}}
	for _, a := range accounts {
		id := domain.Identity{
			ID:       a.Username,
			Username: a.Username,
			FullName: a.FullName,
			Role:     domain.Role(strings.ToUpper(a.Role)),
			TableID:  a.TableID,
		}
		if err := validate(id); err != nil {
			return nil, err
		}
		key := strings.ToLower(a.Username)
		if _, dup := d.accounts[key]; dup {
			return nil, domain.Invalid("username", "duplicate account "+a.Username)
		}
		d.accounts[key] = account{password: a.Password, identity: id}
		d.order = append(d.order, key)
	}
	return d, nil
}

// Authenticate returns ValidationError for unknown users and wrong passwords
// alike.
func (d *Directory) Authenticate(username, password string) (domain.Identity, error) {
	a, ok := d.accounts[strings.ToLower(strings.TrimSpace(username))]
	if !ok || a.password != password {
		return domain.Identity{}, domain.Invalid("credentials", "invalid username or password")
	}
	return a.identity, nil
}

// Identities lists every account in configuration order.
func (d *Directory) Identities() []domain.Identity {
	out := make([]domain.Identity, 0, len(d.order))
	for _, k := range d.order {
		out = append(out, d.accounts[k].identity)
	}
	return out
}

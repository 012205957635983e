// Package access computes which passwords and groups a user can see.
//
// Resolve is pure: the caller loads a Snapshot of the relevant rows and the
// resolver shapes them into a View according to the user's Capability.
package access

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/code4-fun/password-storage-Laravel-Vue3/pkg/model"
)

// Snapshot is the set of rows Resolve works from. For CapabilityAllAccess it
// must hold every password with its user links and the linked users; for
// CapabilityOwnAccessOnly the user's own links, the passwords and groups they
// point to, and the group_password rows of those groups.
type Snapshot struct {
	Passwords      []model.Password
	Users          []model.User
	PasswordUsers  []model.PasswordUser
	Groups         []model.Group
	GroupUsers     []model.GroupUser
	GroupPasswords []model.GroupPassword
}

// UserAccess is one user's link to a password, as shown to admins.
type UserAccess struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Owner     bool   `json:"owner"`
	Permitted bool   `json:"permitted"`
}

// AdminPassword is a password as shown to admins, secret included.
type AdminPassword struct {
	ID          uint         `json:"id"`
	Name        string       `json:"name"`
	Password    string       `json:"password"`
	Description string       `json:"description"`
	Updated     string       `json:"updated"`
	Users       []UserAccess `json:"users"`
}

// PasswordItem is a password as shown in a user's own listing.
type PasswordItem struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Owner       bool   `json:"owner"`
	Updated     string `json:"updated"`
}

type GroupItem struct {
	ID        uint           `json:"id"`
	Name      string         `json:"name"`
	Passwords []PasswordItem `json:"passwords"`
}

// View is the resolved listing. Admin views fill All; user views fill
// Groups and Passwords.
type View struct {
	Capability Capability
	All        []AdminPassword
	Groups     []GroupItem
	Passwords  []PasswordItem
}

func (v View) MarshalJSON() ([]byte, error) {
	if v.Capability == CapabilityAllAccess {
		all := v.All
		if all == nil {
			all = []AdminPassword{}
		}
		return json.Marshal(map[string]interface{}{"passwords": all})
	}

	groups, passwords := v.Groups, v.Passwords
	if groups == nil {
		groups = []GroupItem{}
	}
	if passwords == nil {
		passwords = []PasswordItem{}
	}
	return json.Marshal(map[string]interface{}{
		"groups":    groups,
		"passwords": passwords,
	})
}

// Updated renders the relative "updated" label of a password.
func Updated(updatedAt, now time.Time) string {
	return humanize.RelTime(updatedAt, now, "ago", "from now")
}

// Resolve builds the view of snap that a user with capability c may see.
// Each visible password appears exactly once: under the first of the user's
// visible groups that holds it, or else in the standalone list.
func Resolve(c Capability, userID uint, snap Snapshot, now time.Time) View {
	if c == CapabilityAllAccess {
		return View{Capability: c, All: resolveAll(snap, now)}
	}
	groups, passwords := resolveOwn(userID, snap, now)
	return View{Capability: c, Groups: groups, Passwords: passwords}
}

func resolveAll(snap Snapshot, now time.Time) []AdminPassword {
	names := make(map[uint]string, len(snap.Users))
	for _, u := range snap.Users {
		names[u.ID] = u.Name
	}

	links := make(map[uint][]UserAccess)
	for _, pu := range snap.PasswordUsers {
		links[pu.PasswordID] = append(links[pu.PasswordID], UserAccess{
			ID:        pu.UserID,
			Name:      names[pu.UserID],
			Owner:     pu.Owner,
			Permitted: pu.Permitted,
		})
	}

	passwords := sortedPasswords(snap.Passwords)
	out := make([]AdminPassword, 0, len(passwords))
	for _, p := range passwords {
		users := links[p.ID]
		sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
		if users == nil {
			users = []UserAccess{}
		}
		out = append(out, AdminPassword{
			ID:          p.ID,
			Name:        p.Name,
			Password:    p.Password,
			Description: p.Description,
			Updated:     Updated(p.UpdatedAt, now),
			Users:       users,
		})
	}
	return out
}

func resolveOwn(userID uint, snap Snapshot, now time.Time) ([]GroupItem, []PasswordItem) {
	byID := make(map[uint]model.Password, len(snap.Passwords))
	for _, p := range snap.Passwords {
		byID[p.ID] = p
	}

	// permitted password links of the user, with their owner flag
	permitted := make(map[uint]bool)
	for _, pu := range snap.PasswordUsers {
		if pu.UserID == userID && pu.Permitted {
			permitted[pu.PasswordID] = pu.Owner
		}
	}

	visibleGroups := make(map[uint]bool)
	for _, gu := range snap.GroupUsers {
		if gu.UserID == userID && gu.Permitted {
			visibleGroups[gu.GroupID] = true
		}
	}

	members := make(map[uint][]uint)
	for _, gp := range snap.GroupPasswords {
		members[gp.GroupID] = append(members[gp.GroupID], gp.PasswordID)
	}

	item := func(p model.Password) PasswordItem {
		return PasswordItem{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			Owner:       permitted[p.ID],
			Updated:     Updated(p.UpdatedAt, now),
		}
	}

	listed := make(map[uint]bool)
	groups := make([]GroupItem, 0)
	for _, g := range sortedGroups(snap.Groups) {
		if !visibleGroups[g.ID] {
			continue
		}
		ids := members[g.ID]
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

		entry := GroupItem{ID: g.ID, Name: g.Name, Passwords: []PasswordItem{}}
		for _, id := range ids {
			p, ok := byID[id]
			if _, allowed := permitted[id]; !ok || !allowed || listed[id] {
				continue
			}
			listed[id] = true
			entry.Passwords = append(entry.Passwords, item(p))
		}
		groups = append(groups, entry)
	}

	standalone := make([]PasswordItem, 0)
	for _, p := range sortedPasswords(snap.Passwords) {
		if _, allowed := permitted[p.ID]; !allowed || listed[p.ID] {
			continue
		}
		standalone = append(standalone, item(p))
	}

	return groups, standalone
}

func sortedPasswords(in []model.Password) []model.Password {
	out := make([]model.Password, len(in))
	copy(out, in)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func sortedGroups(in []model.Group) []model.Group {
	out := make([]model.Group, len(in))
	copy(out, in)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

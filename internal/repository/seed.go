package repository

import (
	_ "embed"
	"encoding/json"

	"gatehouse/internal/model"
)

//go:embed users.json
var seedData []byte

// SeedUsers returns the bundled user dataset. Records missing a role
// fall back to "user"; a missing display name defaults to the
// username.
func SeedUsers() []model.User {
	var users []model.User
	if err := json.Unmarshal(seedData, &users); err != nil {
		// the dataset is compiled in; a parse failure is a build defect
		panic("repository: invalid bundled user dataset: " + err.Error())
	}
	for i := range users {
		normalize(&users[i])
	}
	return users
}

func normalize(u *model.User) {
	if !u.Role.Valid() {
		u.Role = model.RoleUser
	}
	if u.DisplayName == "" {
		u.DisplayName = u.Username
	}
}

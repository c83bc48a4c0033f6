package policy

import "gorm.io/gorm"

// ownerColumn is the column holding the owning agent of each row.
var ownerColumn = map[Resource]string{
	Client:   "clients.agent_id",
	Property: "properties.owner_id",
	Contract: "contracts.agent_id",
	Visit:    "visits.agent_id",
}

// Scope returns the visibility filter for res as a GORM scope.
//
// Admins see every row, agents see the rows they own (contact forms through
// the owner of the referenced property) and viewers see nothing. Favorites
// are always limited to the requester's own rows.
func Scope(req Requester, res Resource) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if !req.Authenticated {
			return none(db)
		}
		if res == Favorite {
			return db.Where("favorites.user_id = ?", req.UserID)
		}

		switch req.Role {
		case Admin:
			return db
		case Agent:
			if res == ContactForm {
				return db.Where("contact_forms.property_id IN (?)",
					db.Session(&gorm.Session{NewDB: true}).
						Table("properties").Select("id").Where("owner_id = ?", req.UserID))
			}
			if column, ok := ownerColumn[res]; ok {
				return db.Where(column+" = ?", req.UserID)
			}
			return none(db)
		case Viewer:
			return none(db)
		}
		return none(db)
	}
}

func none(db *gorm.DB) *gorm.DB {
	return db.Where("1 = 0")
}

// OwnsRow reports whether the requester may update or delete a row owned
// by ownerID.
func OwnsRow(req Requester, ownerID uint64) bool {
	if !req.Authenticated {
		return false
	}
	switch req.Role {
	case Admin:
		return true
	case Agent:
		return ownerID == req.UserID
	case Viewer:
		return false
	}
	return false
}

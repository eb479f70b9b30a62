package metamob

import (
	"bytes"
	"strconv"
	"time"
)

// TypeArchimonster is the rare subset used as the default crawl filter.
const TypeArchimonster = "archimonstre"

// Count is an integer the API reports either as a number or a string
// ("quantite": "3"). Empty and null decode to zero.
type Count int64

func (c *Count) UnmarshalJSON(b []byte) error {
	b = bytes.Trim(b, `"`)
	s := string(b)
	if s == "" || s == "null" {
		*c = 0
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return err
	}
	*c = Count(n)
	return nil
}

// UserMonster is one record of the per-user monster listing.
type UserMonster struct {
	ID         Count  `json:"id"`
	Name       string `json:"nom"`
	NormalName string `json:"nom_normal"`
	Type       string `json:"type"`
	Zone       string `json:"zone"`
	Subzone    string `json:"souszone"`
	Step       Count  `json:"etape"`
	Owned      Count  `json:"quantite"`
	ForTrade   Count  `json:"propose"`
	Searched   Count  `json:"recherche"`
}

func (m UserMonster) Rare() bool {
	return m.Type == TypeArchimonster
}

// UserProfile is the public profile of a metamob account.
type UserProfile struct {
	Pseudo         string `json:"pseudo"`
	ProfileURL     string `json:"lien"`
	LastConnection string `json:"derniere_connexion"`
}

// LastSeen parses the profile's last connection timestamp. A missing or
// malformed value yields the zero time.
func (p UserProfile) LastSeen() time.Time {
	t, err := time.Parse("2006-01-02 15:04:05", p.LastConnection)
	if err != nil {
		return time.Time{}
	}
	return t
}

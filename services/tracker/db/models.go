package db

type User struct {
	Pseudo      string
	DisplayName string
	ProfileURL  string
	LastSeen    int64
}

type Monster struct {
	ID         int64
	Name       string
	NormalName string
	Type       string
	Zone       string
	Subzone    string
	Step       int64
}

type Holding struct {
	Pseudo    string
	MonsterID int64
	Owned     int64
	ForTrade  int64
	Searched  int64
	UpdatedAt int64
}

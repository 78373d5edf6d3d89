package model

import "strconv"

// IdentifierKind 标识符的类型
type IdentifierKind string

const (
	KindID       IdentifierKind = "id"
	KindUsername IdentifierKind = "username"
	KindEmail    IdentifierKind = "email"
)

// Identifier is a user reference that may be a numeric id, a username or an
// email. Value holds the normalized text form for every kind.
type Identifier struct {
	Kind  IdentifierKind
	ID    int64
	Value string
}

func IDIdentifier(id int64) Identifier {
	return Identifier{Kind: KindID, ID: id, Value: strconv.FormatInt(id, 10)}
}

func UsernameIdentifier(username string) Identifier {
	return Identifier{Kind: KindUsername, Value: username}
}

func EmailIdentifier(email string) Identifier {
	return Identifier{Kind: KindEmail, Value: email}
}

func (i Identifier) String() string {
	return string(i.Kind) + ":" + i.Value
}

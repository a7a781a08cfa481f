package models

type Municipality struct {
	ID       int    `bson:"_id" json:"municipality_id"`
	Name     string `bson:"name" json:"name"`
	Location string `bson:"location" json:"location"`
}

type Category struct {
	ID   int    `bson:"_id" json:"category_id"`
	Name string `bson:"name" json:"name"`
}

// Contractor links a contractor id to a user. A user counts as a contractor
// only when the role is Contractor and a link row exists.
type Contractor struct {
	ID     int `bson:"_id" json:"contractor_id"`
	UserID int `bson:"user_id" json:"user_id"`
}

package b

type User struct {
	ID string
}

var seed = []User{{ID: "1234"}}

const name = "b"

func lookup() map[string]User {
	result := map[string]User{}
	for _, usr := range seed {
		result[usr.ID] = usr
	}
	return result
}
